/*
 * Copyright (c) Joseph Prichard 2025
 */

package game

import (
	"crypto/rand"
	"log/slog"
	"sort"
	"sync"
	"time"
)

const codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

const codeLength = 6

// RoomCode generates a short join code. Codes are sampled uniformly from an
// uppercase alphanumeric alphabet, collisions are handled by the caller.
func RoomCode() (string, error) {
	b := make([]byte, codeLength)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = codeAlphabet[int(b[i])%len(codeAlphabet)]
	}
	return string(b), nil
}

// Registry is the lookup surface the gateway needs: resolving join codes,
// creating rooms, and listing what is joinable.
type Registry interface {
	Get(code string) Room
	GetOrCreate(code string, settings RoomSettings) Room
	Create(settings RoomSettings) (Room, error)
	ListPublic() []RoomInfo
	QuickPlay() (Room, error)
}

// RoomStore tracks every live room by code. Each room runs its own goroutine;
// the store only holds references and reaps rooms that expire or empty out.
type RoomStore struct {
	m      map[string]Room
	mu     sync.Mutex
	logger *slog.Logger
}

func NewRoomStore(cleanupPeriod time.Duration, logger *slog.Logger) *RoomStore {
	store := &RoomStore{
		m:      make(map[string]Room),
		logger: logger,
	}
	go store.startCleanup(cleanupPeriod)
	return store
}

func (store *RoomStore) Get(code string) Room {
	store.mu.Lock()
	defer store.mu.Unlock()

	room, ok := store.m[code]
	if !ok || room.IsExpired(time.Now()) {
		return nil
	}
	return room
}

// GetOrCreate resolves a join code, creating a room under that code when no
// live room holds it. Joining an unknown code is how private rooms are made.
func (store *RoomStore) GetOrCreate(code string, settings RoomSettings) Room {
	store.mu.Lock()
	defer store.mu.Unlock()

	if room, ok := store.m[code]; ok && !room.IsExpired(time.Now()) {
		return room
	}

	room := NewGameRoom(NewRoomState(code, settings), store, store.logger)
	store.m[code] = room
	go room.Start()

	store.logger.Info("room created", "room", code, "public", settings.IsPublic)
	return room
}

func (store *RoomStore) Create(settings RoomSettings) (Room, error) {
	store.mu.Lock()
	defer store.mu.Unlock()

	var code string
	for {
		c, err := RoomCode()
		if err != nil {
			return nil, err
		}
		if _, taken := store.m[c]; !taken {
			code = c
			break
		}
	}

	room := NewGameRoom(NewRoomState(code, settings), store, store.logger)
	store.m[code] = room
	go room.Start()

	store.logger.Info("room created", "room", code, "public", settings.IsPublic)
	return room, nil
}

// OnEmpty removes a room once its last player leaves. Called from the room's
// own goroutine, so the room is already past the point of accepting joins.
func (store *RoomStore) OnEmpty(code string) {
	store.mu.Lock()
	defer store.mu.Unlock()

	delete(store.m, code)
	store.logger.Info("room removed", "room", code)
}

func (store *RoomStore) ListPublic() []RoomInfo {
	store.mu.Lock()
	defer store.mu.Unlock()

	infos := make([]RoomInfo, 0)
	for _, room := range store.m {
		info := room.Info()
		if info.IsPublic && info.PlayerCount > 0 {
			infos = append(infos, info)
		}
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].Code < infos[j].Code
	})
	return infos
}

// QuickPlay matches a player into an existing public room, preferring rooms
// still in the lobby and then fuller rooms, or spins up a fresh public room
// when nothing joinable exists.
func (store *RoomStore) QuickPlay() (Room, error) {
	store.mu.Lock()

	var candidates []RoomInfo
	for _, room := range store.m {
		info := room.Info()
		joinable := info.GamePhase == PhaseLobby || info.GamePhase == PhaseChoosing || info.GamePhase == PhaseDrawing
		if info.IsPublic && joinable && info.PlayerCount < info.MaxPlayers {
			candidates = append(candidates, info)
		}
	}
	sort.Slice(candidates, func(i, j int) bool {
		a, b := candidates[i], candidates[j]
		aLobby, bLobby := a.GamePhase == PhaseLobby, b.GamePhase == PhaseLobby
		if aLobby != bLobby {
			return aLobby
		}
		return a.PlayerCount > b.PlayerCount
	})

	for _, info := range candidates {
		if room, ok := store.m[info.Code]; ok && !room.IsExpired(time.Now()) {
			store.mu.Unlock()
			return room, nil
		}
	}
	store.mu.Unlock()

	settings := RoomSettings{IsPublic: true}
	SettingsWithDefaults(&settings)
	return store.Create(settings)
}

func (store *RoomStore) purgeExpired(now time.Time) {
	store.mu.Lock()
	defer store.mu.Unlock()

	for code, room := range store.m {
		if room.IsExpired(now) {
			store.logger.Info("reaping expired room", "room", code)
			room.Stop()
			delete(store.m, code)
		}
	}
}

func (store *RoomStore) startCleanup(period time.Duration) {
	for now := range time.NewTicker(period).C {
		store.purgeExpired(now)
	}
}
