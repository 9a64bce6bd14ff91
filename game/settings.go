/*
 * Copyright (c) Joseph Prichard 2025
 */

package game

import "fmt"

const (
	MinRounds       = 1
	MaxRounds       = 10
	MinDrawTimeSecs = 30
	MaxDrawTimeSecs = 180
	MinPlayerLimit  = 2
	MaxPlayerLimit  = 16

	ChooseTimeSecs    = 15 // time the drawer has to pick a word
	RoundEndDelaySecs = 5  // pause on the round summary before the next turn
	HintIntervalSecs  = 20 // cadence of letter reveals while drawing
	WordOptionCount   = 3
)

// settings for a room, fixed at creation and adjustable by the owner in lobby
type RoomSettings struct {
	TotalRounds  int      `json:"totalRounds"`
	DrawTimeSecs int      `json:"drawTime"`
	MaxPlayers   int      `json:"maxPlayers"`
	IsPublic     bool     `json:"isPublic"`
	WordPacks    []string `json:"wordPacks"`
	CustomWords  []string `json:"customWords"`
}

func SettingsWithDefaults(settings *RoomSettings) {
	if settings.TotalRounds == 0 {
		settings.TotalRounds = 2
	}
	if settings.DrawTimeSecs == 0 {
		settings.DrawTimeSecs = 80
	}
	if settings.MaxPlayers == 0 {
		settings.MaxPlayers = 8
	}
	if len(settings.WordPacks) == 0 {
		settings.WordPacks = PackIDs()
	}
}

func IsSettingsValid(settings RoomSettings) error {
	if settings.TotalRounds < MinRounds || settings.TotalRounds > MaxRounds {
		return fmt.Errorf("Total rounds must be between %d and %d", MinRounds, MaxRounds)
	}
	if settings.DrawTimeSecs < MinDrawTimeSecs || settings.DrawTimeSecs > MaxDrawTimeSecs {
		return fmt.Errorf("Draw time must be between %d and %d seconds", MinDrawTimeSecs, MaxDrawTimeSecs)
	}
	if settings.MaxPlayers < MinPlayerLimit || settings.MaxPlayers > MaxPlayerLimit {
		return fmt.Errorf("Player limit must be between %d and %d", MinPlayerLimit, MaxPlayerLimit)
	}
	return nil
}
