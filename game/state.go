/*
 * Copyright (c) Joseph Prichard 2025
 */

package game

import (
	"encoding/json"
	"fmt"
	"math/rand"
	"strings"

	"github.com/google/uuid"
)

type Phase string

const (
	PhaseLobby    Phase = "lobby"
	PhaseChoosing Phase = "choosing"
	PhaseDrawing  Phase = "drawing"
	PhaseRoundEnd Phase = "roundEnd"
	PhaseGameEnd  Phase = "gameEnd"
)

var avatars = []string{"🎨", "🖌️", "✏️", "🖍️", "🎭", "🎪", "🎯", "🎲", "🎮", "🎸"}

type Player struct {
	ID           string          `json:"id"`
	Name         string          `json:"name"`
	Score        int             `json:"score"`
	Avatar       string          `json:"avatar"`
	CustomAvatar json.RawMessage `json:"customAvatar,omitempty"`
	HasGuessed   bool            `json:"hasGuessed"`
	IsDrawing    bool            `json:"isDrawing"`
	present      bool            // false once the connection is gone, kept for reconnection
}

type ChatMessage struct {
	ID         string `json:"id"`
	PlayerID   string `json:"playerId"`
	PlayerName string `json:"playerName"`
	Text       string `json:"text"`
	IsCorrect  bool   `json:"isCorrect"`
	IsSystem   bool   `json:"isSystem"`
}

// represents the entire state of one room at any given point in time
type RoomState struct {
	code               string
	players            []Player // join order defines turn rotation, absent entries retained
	currentDrawerIndex int
	currentWord        string
	wordHint           string
	roundTime          int
	currentRound       int
	currentTurn        int
	phase              Phase
	chatLog            []ChatMessage
	wordOptions        []string
	revealedLetters    int
	revealedIndices    []int
	ownerID            string
	settings           RoomSettings
}

func NewRoomState(code string, settings RoomSettings) RoomState {
	return RoomState{
		code:         code,
		players:      make([]Player, 0),
		chatLog:      make([]ChatMessage, 0),
		currentRound: 1,
		currentTurn:  1,
		phase:        PhaseLobby,
		settings:     settings,
	}
}

func (state *RoomState) Code() string {
	return state.code
}

func (state *RoomState) Phase() Phase {
	return state.phase
}

func (state *RoomState) OwnerID() string {
	return state.ownerID
}

func (state *RoomState) Settings() RoomSettings {
	return state.settings
}

func (state *RoomState) CurrentWord() string {
	return state.currentWord
}

func (state *RoomState) WordHint() string {
	return state.wordHint
}

func (state *RoomState) RoundTime() int {
	return state.roundTime
}

func (state *RoomState) WordOptions() []string {
	return state.wordOptions
}

// Players returns the connected roster in join order.
func (state *RoomState) Players() []Player {
	players := make([]Player, 0)
	for _, player := range state.players {
		if player.present {
			players = append(players, player)
		}
	}
	return players
}

func (state *RoomState) PlayerCount() int {
	count := 0
	for _, player := range state.players {
		if player.present {
			count++
		}
	}
	return count
}

func (state *RoomState) playerIndex(id string) int {
	for i, player := range state.players {
		if player.ID == id {
			return i
		}
	}
	return -1
}

func (state *RoomState) FindPlayer(id string) (Player, bool) {
	index := state.playerIndex(id)
	if index < 0 {
		return Player{}, false
	}
	return state.players[index], true
}

func (state *RoomState) CurrentDrawer() (Player, bool) {
	if state.currentDrawerIndex < 0 || state.currentDrawerIndex >= len(state.players) {
		return Player{}, false
	}
	return state.players[state.currentDrawerIndex], true
}

func (state *RoomState) IsDrawer(id string) bool {
	drawer, ok := state.CurrentDrawer()
	return ok && drawer.ID == id
}

func (state *RoomState) IsOwner(id string) bool {
	return state.ownerID != "" && state.ownerID == id
}

// JoinOutcome classifies how a join request was reconciled against the roster.
type JoinOutcome int

const (
	JoinNew    JoinOutcome = iota // a brand new player was added
	JoinRebind                    // an absent player was rebound to a new connection
	JoinRename                    // name collided with a connected player, renamed
	JoinResync                    // the same connection joined twice, state resent
	JoinFull                      // room is at its player limit
)

// Join reconciles a join request against the roster, keyed by connection id
// and by name against the liveness of any existing entry with that name.
func (state *RoomState) Join(id string, name string, customAvatar json.RawMessage) (Player, JoinOutcome) {
	if name == "" {
		name = "Player"
	}

	// the same identity joining twice refreshes name and avatar; if the
	// previous connection dropped, the entry is rebound with score, flags,
	// and turn position intact
	if index := state.playerIndex(id); index >= 0 {
		player := &state.players[index]
		player.Name = name
		if customAvatar != nil {
			player.CustomAvatar = customAvatar
		}
		if !player.present {
			player.present = true
			return *player, JoinRebind
		}
		return *player, JoinResync
	}

	outcome := JoinNew
	for i := range state.players {
		if state.players[i].Name != name {
			continue
		}
		if !state.players[i].present {
			// the old connection is dead: rebind the identity, keeping
			// score, flags, and position in the turn order
			player := &state.players[i]
			player.ID = id
			player.present = true
			if customAvatar != nil {
				player.CustomAvatar = customAvatar
			}
			return *player, JoinRebind
		}
		// still connected: deterministic rename
		name = state.dedupeName(name)
		outcome = JoinRename
		break
	}

	if state.PlayerCount() >= state.settings.MaxPlayers {
		return Player{}, JoinFull
	}

	player := Player{
		ID:           id,
		Name:         name,
		Avatar:       avatars[rand.Intn(len(avatars))],
		CustomAvatar: customAvatar,
		present:      true,
	}
	state.players = append(state.players, player)

	if state.PlayerCount() == 1 {
		state.ownerID = id
	}
	return player, outcome
}

func (state *RoomState) dedupeName(name string) string {
	for count := 2; ; count++ {
		candidate := fmt.Sprintf("%s %d", name, count)
		taken := false
		for _, player := range state.players {
			if player.Name == candidate {
				taken = true
				break
			}
		}
		if !taken {
			return candidate
		}
	}
}

// Disconnect marks a player as absent, retaining the entry so a later join
// by the same name can rebind to it. Returns the player that left.
func (state *RoomState) Disconnect(id string) (Player, bool) {
	index := state.playerIndex(id)
	if index < 0 || !state.players[index].present {
		return Player{}, false
	}
	state.players[index].present = false
	return state.players[index], true
}

// RemovePlayer deletes a roster entry outright (kicks), keeping the drawer
// index pointing at the same player where possible.
func (state *RoomState) RemovePlayer(id string) (Player, bool) {
	index := state.playerIndex(id)
	if index < 0 {
		return Player{}, false
	}
	player := state.players[index]
	state.players = append(state.players[:index], state.players[index+1:]...)

	if index < state.currentDrawerIndex {
		state.currentDrawerIndex--
	} else if index == state.currentDrawerIndex && len(state.players) > 0 {
		state.currentDrawerIndex = state.currentDrawerIndex % len(state.players)
	}
	if state.currentDrawerIndex < 0 {
		state.currentDrawerIndex = 0
	}
	return player, true
}

// TransferOwner reassigns ownership to the first connected player when the
// current owner is gone. Returns the new owner if a change was made.
func (state *RoomState) TransferOwner() (Player, bool) {
	if index := state.playerIndex(state.ownerID); index >= 0 && state.players[index].present {
		return Player{}, false
	}
	for _, player := range state.players {
		if player.present {
			state.ownerID = player.ID
			return player, true
		}
	}
	return Player{}, false
}

// purgeAbsent drops disconnected entries; the reconnection window ends when
// a game starts or the room returns to lobby.
func (state *RoomState) purgeAbsent() {
	kept := state.players[:0]
	for _, player := range state.players {
		if player.present {
			kept = append(kept, player)
		}
	}
	state.players = kept
}

func (state *RoomState) firstPresentIndex() int {
	for i, player := range state.players {
		if player.present {
			return i
		}
	}
	return 0
}

// StartGame moves the room from lobby to the first choosing phase. The
// caller enforces the owner and minimum player preconditions.
func (state *RoomState) StartGame() Player {
	state.purgeAbsent()

	state.phase = PhaseChoosing
	state.currentRound = 1
	state.currentTurn = 1
	state.currentDrawerIndex = state.firstPresentIndex()
	state.roundTime = ChooseTimeSecs
	state.currentWord = ""
	state.wordHint = ""
	state.chatLog = make([]ChatMessage, 0)

	for i := range state.players {
		state.players[i].Score = 0
		state.players[i].HasGuessed = false
		state.players[i].IsDrawing = false
	}
	state.players[state.currentDrawerIndex].IsDrawing = true

	pool := WordsForSelection(state.settings.WordPacks, state.settings.CustomWords)
	state.wordOptions = SampleWords(pool, WordOptionCount)

	return state.players[state.currentDrawerIndex]
}

// SelectWord accepts the drawer's choice, which must be one of the offered
// options, and moves the room into the drawing phase.
func (state *RoomState) SelectWord(word string) bool {
	offered := false
	for _, option := range state.wordOptions {
		if option == word {
			offered = true
			break
		}
	}
	if !offered {
		return false
	}
	state.beginDrawing(word)
	return true
}

// AutoPickWord selects uniformly among the offered options when the choose
// timer expires without a selection.
func (state *RoomState) AutoPickWord() (string, bool) {
	if len(state.wordOptions) == 0 {
		return "", false
	}
	word := state.wordOptions[rand.Intn(len(state.wordOptions))]
	state.beginDrawing(word)
	return word, true
}

func (state *RoomState) beginDrawing(word string) {
	state.currentWord = word
	state.revealedLetters = 0
	state.revealedIndices = nil
	state.wordHint, _ = RevealHint(word, 0, nil)
	state.phase = PhaseDrawing
	state.roundTime = state.settings.DrawTimeSecs
}

// GuessResult reports the effect of one submitted guess.
type GuessResult struct {
	Message      ChatMessage
	Correct      bool
	Points       int
	DrawerPoints int
	RoundOver    bool // every connected non-drawer has now guessed
}

// TryGuess arbitrates a guess. Guards: drawing phase, sender connected, not
// the drawer, not already a correct guesser. Violations return ok=false with
// no state change.
func (state *RoomState) TryGuess(id string, text string) (GuessResult, bool) {
	if state.phase != PhaseDrawing {
		return GuessResult{}, false
	}
	index := state.playerIndex(id)
	if index < 0 || !state.players[index].present {
		return GuessResult{}, false
	}
	player := &state.players[index]
	if player.IsDrawing || player.HasGuessed {
		return GuessResult{}, false
	}

	correct := strings.EqualFold(strings.TrimSpace(text), state.currentWord)

	message := ChatMessage{
		ID:         uuid.NewString(),
		PlayerID:   player.ID,
		PlayerName: player.Name,
		Text:       text,
		IsCorrect:  correct,
	}
	if correct {
		// mask the text so the chat log doesn't leak the answer
		message.Text = strings.Repeat("*", len([]rune(text)))
	}
	state.chatLog = append(state.chatLog, message)

	result := GuessResult{Message: message, Correct: correct}
	if !correct {
		return result, true
	}

	points := state.roundTime * 10
	if points < 100 {
		points = 100
	}
	player.Score += points
	player.HasGuessed = true
	result.Points = points

	if drawerIndex := state.currentDrawerIndex; drawerIndex >= 0 && drawerIndex < len(state.players) {
		result.DrawerPoints = points / 2
		state.players[drawerIndex].Score += points / 2
	}

	result.RoundOver = state.allGuessed()
	return result, true
}

func (state *RoomState) allGuessed() bool {
	for _, player := range state.players {
		if player.present && !player.IsDrawing && !player.HasGuessed {
			return false
		}
	}
	return true
}

// FinishTurn moves the room into the round-end pause.
func (state *RoomState) FinishTurn() {
	state.phase = PhaseRoundEnd
	state.roundTime = RoundEndDelaySecs
}

// AdvanceTurn rotates the drawer to the next connected player and sets up
// the choosing phase, or ends the game once every round has been played.
// Returns the new drawer and whether the game is over.
func (state *RoomState) AdvanceTurn() (Player, bool) {
	next := state.nextPresentIndex(state.currentDrawerIndex)
	if next < 0 {
		state.phase = PhaseGameEnd
		return Player{}, true
	}

	wrapped := next <= state.currentDrawerIndex
	state.currentDrawerIndex = next

	if wrapped {
		state.currentRound++
		state.currentTurn = 1
		if state.currentRound > state.settings.TotalRounds {
			state.phase = PhaseGameEnd
			return Player{}, true
		}
	} else {
		state.currentTurn++
	}

	state.phase = PhaseChoosing
	state.roundTime = ChooseTimeSecs
	state.currentWord = ""
	state.wordHint = ""
	state.revealedLetters = 0
	state.revealedIndices = nil

	pool := WordsForSelection(state.settings.WordPacks, state.settings.CustomWords)
	state.wordOptions = SampleWords(pool, WordOptionCount)

	for i := range state.players {
		state.players[i].HasGuessed = false
		state.players[i].IsDrawing = false
	}
	state.players[state.currentDrawerIndex].IsDrawing = true

	return state.players[state.currentDrawerIndex], false
}

// nextPresentIndex finds the next connected player after the given position,
// cyclically, or -1 when no connected player exists.
func (state *RoomState) nextPresentIndex(after int) int {
	n := len(state.players)
	for step := 1; step <= n; step++ {
		i := (after + step) % n
		if state.players[i].present {
			return i
		}
	}
	return -1
}

// EndGame jumps straight to the game-end phase (win by attrition).
func (state *RoomState) EndGame() {
	state.phase = PhaseGameEnd
}

// Reset returns the room to the lobby, keeping the connected roster and
// owner but reinitializing all round, score, and chat state.
func (state *RoomState) Reset() {
	state.purgeAbsent()

	state.phase = PhaseLobby
	state.currentRound = 1
	state.currentTurn = 1
	state.currentWord = ""
	state.wordHint = ""
	state.chatLog = make([]ChatMessage, 0)
	state.wordOptions = nil
	state.revealedLetters = 0
	state.revealedIndices = nil
	state.currentDrawerIndex = 0

	for i := range state.players {
		state.players[i].Score = 0
		state.players[i].HasGuessed = false
		state.players[i].IsDrawing = false
	}
}

// UpdateSettings applies owner-set options; out-of-range values are ignored.
func (state *RoomState) UpdateSettings(totalRounds int, drawTime int, wordPacks []string, customWords []string) {
	if totalRounds >= MinRounds && totalRounds <= MaxRounds {
		state.settings.TotalRounds = totalRounds
	}
	if drawTime >= MinDrawTimeSecs && drawTime <= MaxDrawTimeSecs {
		state.settings.DrawTimeSecs = drawTime
	}
	if wordPacks != nil {
		state.settings.WordPacks = wordPacks
	}
	if customWords != nil {
		state.settings.CustomWords = customWords
	}
}

// DecrementTime ticks the countdown down one second and reports the new value.
func (state *RoomState) DecrementTime() int {
	state.roundTime--
	return state.roundTime
}

// ShouldRevealHint reports whether this drawing-phase tick lands on the
// reveal cadence; the very first and very last tick never reveal.
func (state *RoomState) ShouldRevealHint() bool {
	return state.phase == PhaseDrawing &&
		state.roundTime > 0 &&
		state.roundTime < state.settings.DrawTimeSecs &&
		state.roundTime%HintIntervalSecs == 0
}

// RevealNextLetter shows one more letter of the secret word, preserving all
// previously revealed positions, and returns the new masked hint.
func (state *RoomState) RevealNextLetter() string {
	state.revealedLetters++
	state.wordHint, state.revealedIndices = RevealHint(state.currentWord, state.revealedLetters, state.revealedIndices)
	return state.wordHint
}

// AppendSystemMessage records a system line in the chat log.
func (state *RoomState) AppendSystemMessage(text string) ChatMessage {
	message := ChatMessage{
		ID:         uuid.NewString(),
		PlayerID:   "system",
		PlayerName: "System",
		Text:       text,
		IsSystem:   true,
	}
	state.chatLog = append(state.chatLog, message)
	return message
}

// AppendChatMessage records an ordinary player line in the chat log.
func (state *RoomState) AppendChatMessage(id string, text string) (ChatMessage, bool) {
	index := state.playerIndex(id)
	if index < 0 || !state.players[index].present {
		return ChatMessage{}, false
	}
	message := ChatMessage{
		ID:         uuid.NewString(),
		PlayerID:   id,
		PlayerName: state.players[index].Name,
		Text:       text,
	}
	state.chatLog = append(state.chatLog, message)
	return message, true
}

// StateSnapshot is the full room state sent to one client on join, with the
// secret word and word options filled in only for the current drawer.
type StateSnapshot struct {
	ID                 string        `json:"id"`
	Players            []Player      `json:"players"`
	CurrentDrawerIndex int           `json:"currentDrawerIndex"`
	WordHint           string        `json:"wordHint"`
	RoundTime          int           `json:"roundTime"`
	MaxDrawTime        int           `json:"maxDrawTime"`
	CurrentRound       int           `json:"currentRound"`
	CurrentTurn        int           `json:"currentTurn"`
	TotalRounds        int           `json:"totalRounds"`
	GamePhase          Phase         `json:"gamePhase"`
	ChatMessages       []ChatMessage `json:"chatMessages"`
	OwnerID            string        `json:"ownerId"`
	IsPublic           bool          `json:"isPublic"`
	CurrentWord        string        `json:"currentWord"`
	WordOptions        []string      `json:"wordOptions"`
}

// visibleDrawerIndex maps the internal drawer index onto the connected-only
// roster that clients see.
func (state *RoomState) visibleDrawerIndex() int {
	visible := 0
	for i, player := range state.players {
		if i == state.currentDrawerIndex {
			return visible
		}
		if player.present {
			visible++
		}
	}
	return 0
}

func (state *RoomState) Snapshot(forID string) StateSnapshot {
	snapshot := StateSnapshot{
		ID:                 state.code,
		Players:            state.Players(),
		CurrentDrawerIndex: state.visibleDrawerIndex(),
		WordHint:           state.wordHint,
		RoundTime:          state.roundTime,
		MaxDrawTime:        state.settings.DrawTimeSecs,
		CurrentRound:       state.currentRound,
		CurrentTurn:        state.currentTurn,
		TotalRounds:        state.settings.TotalRounds,
		GamePhase:          state.phase,
		ChatMessages:       state.chatLog,
		OwnerID:            state.ownerID,
		IsPublic:           state.settings.IsPublic,
		WordOptions:        make([]string, 0),
	}
	if state.phase == PhaseDrawing && state.IsDrawer(forID) {
		snapshot.CurrentWord = state.currentWord
	}
	if state.phase == PhaseChoosing && state.IsDrawer(forID) {
		snapshot.WordOptions = state.wordOptions
	}
	return snapshot
}

// RoomInfo is the registry's concurrency-safe view of a room, published by
// the room's own goroutine after every mutation.
type RoomInfo struct {
	Code        string `json:"code"`
	GamePhase   Phase  `json:"gamePhase"`
	PlayerCount int    `json:"playerCount"`
	MaxPlayers  int    `json:"maxPlayers"`
	IsPublic    bool   `json:"isPublic"`
}

func (state *RoomState) Info() RoomInfo {
	return RoomInfo{
		Code:        state.code,
		GamePhase:   state.phase,
		PlayerCount: state.PlayerCount(),
		MaxPlayers:  state.settings.MaxPlayers,
		IsPublic:    state.settings.IsPublic,
	}
}
