/*
 * Copyright (c) Joseph Prichard 2025
 */

package game

import (
	"encoding/json"
	"log/slog"
)

// inbound event tags (client -> server)
const (
	EvQuickPlay       = "quickPlay"
	EvJoinRoom        = "joinRoom"
	EvUpdateSettings  = "updateSettings"
	EvStartGame       = "startGame"
	EvSelectWord      = "selectWord"
	EvSendMessage     = "sendMessage"
	EvDraw            = "draw"
	EvClearCanvas     = "clearCanvas"
	EvCanvasSync      = "canvasSync"
	EvDrawingReaction = "drawingReaction"
	EvLobbyMessage    = "lobbyMessage"
	EvSendEmote       = "sendEmote"
	EvTyping          = "typing"
	EvNextRound       = "nextRound"
	EvResetGame       = "resetGame"
	EvKickPlayer      = "kickPlayer"
)

// outbound event tags (server -> client)
const (
	EvRoomState       = "roomState"
	EvPlayersUpdate   = "playersUpdate"
	EvPlayerJoined    = "playerJoined"
	EvOwnerUpdate     = "ownerUpdate"
	EvSettingsUpdate  = "settingsUpdate"
	EvGamePhaseChange = "gamePhaseChange"
	EvWordOptions     = "wordOptions"
	EvCurrentWord     = "currentWord"
	EvTimerUpdate     = "timerUpdate"
	EvWordHintUpdate  = "wordHintUpdate"
	EvChatMessage     = "chatMessage"
	EvRoundEnd        = "roundEnd"
	EvGameEnd         = "gameEnd"
	EvGameReset       = "gameReset"
	EvKicked          = "kicked"
	EvEmote           = "emote"
	EvPlayerTyping    = "playerTyping"
	EvQuickPlayResult = "quickPlayResult"
	EvRoomClosed      = "roomClosed"
	EvOccupancyUpdate = "occupancyUpdate"
	EvError           = "error"
)

// Envelope is the tagged wire format for every event in both directions.
type Envelope struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// MarshalEvent wraps a payload in an envelope and serializes it. Marshal
// failures are programming errors, logged and returned as a nil frame the
// broadcast path skips.
func MarshalEvent(event string, payload any) []byte {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			slog.Error("failed to marshal event payload", "event", event, "error", err)
			return nil
		}
		raw = b
	}
	b, err := json.Marshal(Envelope{Event: event, Payload: raw})
	if err != nil {
		slog.Error("failed to marshal event envelope", "event", event, "error", err)
		return nil
	}
	return b
}

// payload schemas shared by the gateway and the room

type JoinRoomPayload struct {
	RoomID       string          `json:"roomId"`
	PlayerName   string          `json:"playerName"`
	IsPublic     *bool           `json:"isPublic,omitempty"`
	CustomAvatar json.RawMessage `json:"customAvatar,omitempty"`
}

type QuickPlayPayload struct {
	PlayerName string `json:"playerName"`
}

type QuickPlayResultPayload struct {
	RoomID string `json:"roomId"`
}

type UpdateSettingsPayload struct {
	TotalRounds int      `json:"totalRounds"`
	DrawTime    int      `json:"drawTime"`
	WordPacks   []string `json:"wordPacks,omitempty"`
	CustomWords []string `json:"customWords,omitempty"`
}

type SettingsUpdatePayload struct {
	TotalRounds int `json:"totalRounds"`
	MaxDrawTime int `json:"maxDrawTime"`
}

type TextPayload struct {
	Text string `json:"text"`
}

type WordPayload struct {
	Word string `json:"word"`
}

type ReactionPayload struct {
	Reaction string `json:"reaction"` // "like" or "dislike"
}

type EmotePayload struct {
	Emote      string `json:"emote"`
	PlayerName string `json:"playerName,omitempty"`
}

type TypingPayload struct {
	PlayerName string `json:"playerName"`
}

type KickPayload struct {
	PlayerID string `json:"playerId"`
}

type KickedPayload struct {
	Reason string `json:"reason"`
}

type PhaseChangePayload struct {
	GamePhase          Phase  `json:"gamePhase"`
	WordHint           string `json:"wordHint,omitempty"`
	RoundTime          int    `json:"roundTime"`
	CurrentRound       int    `json:"currentRound,omitempty"`
	CurrentTurn        int    `json:"currentTurn,omitempty"`
	TotalTurns         int    `json:"totalTurns,omitempty"`
	TotalRounds        int    `json:"totalRounds,omitempty"`
	MaxDrawTime        int    `json:"maxDrawTime,omitempty"`
	CurrentDrawerIndex int    `json:"currentDrawerIndex"`
}

type RoundEndPayload struct {
	Word    string   `json:"word"`
	Players []Player `json:"players"`
	Delay   int      `json:"delay"`
}

type GameEndPayload struct {
	Players []Player `json:"players"`
}

type GameResetPayload struct {
	TotalRounds int    `json:"totalRounds"`
	MaxDrawTime int    `json:"maxDrawTime"`
	OwnerID     string `json:"ownerId"`
}

type ErrorPayload struct {
	ErrorDesc string `json:"errorDesc"`
}
