/*
 * Copyright (c) Joseph Prichard 2025
 */

package game

import (
	"encoding/json"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"
)

type recordingHandler struct {
	emptied chan string
}

func newRecordingHandler() *recordingHandler {
	return &recordingHandler{emptied: make(chan string, 1)}
}

func (handler *recordingHandler) OnEmpty(code string) {
	handler.emptied <- code
}

func newTestRoom(t *testing.T) (*GameRoom, *recordingHandler) {
	t.Helper()
	handler := newRecordingHandler()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	room := NewGameRoom(NewRoomState("ROOM01", testSettings()), handler, logger)
	go room.Start()
	return room, handler
}

func joinRoom(t *testing.T, room *GameRoom, id string, name string) chan []byte {
	t.Helper()
	subscriber := make(chan []byte, 64)
	room.Join(SubscriberMsg{Subscriber: subscriber, PlayerID: id, PlayerName: name})
	waitForEvent(t, subscriber, EvRoomState)
	return subscriber
}

// waitForEvent reads frames off a subscriber channel until one matches the
// wanted event tag, failing the test on close or timeout.
func waitForEvent(t *testing.T, subscriber chan []byte, event string) json.RawMessage {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case frame, ok := <-subscriber:
			if !ok {
				t.Fatalf("Subscriber channel closed while waiting for %s", event)
			}
			var envelope Envelope
			if err := json.Unmarshal(frame, &envelope); err != nil {
				t.Fatalf("Failed to unmarshal frame: %v", err)
			}
			if envelope.Event == event {
				return envelope.Payload
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for event %s", event)
		}
	}
}

func waitForClose(t *testing.T, subscriber chan []byte) {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, ok := <-subscriber:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for the subscriber channel to close")
		}
	}
}

func sendEvent(room *GameRoom, sender chan []byte, event string, payload any) {
	room.SendMessage(SentMsg{Message: MarshalEvent(event, payload), Sender: sender})
}

func TestGameRoom_JoinReceivesSnapshot(t *testing.T) {
	room, _ := newTestRoom(t)
	defer room.Stop()

	subscriber := make(chan []byte, 64)
	room.Join(SubscriberMsg{Subscriber: subscriber, PlayerID: "p1", PlayerName: "alice"})

	payload := waitForEvent(t, subscriber, EvRoomState)
	var snapshot StateSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		t.Fatalf("Failed to unmarshal the snapshot: %v", err)
	}
	if snapshot.ID != "ROOM01" {
		t.Fatalf("Expected the snapshot to carry the room code but got %q", snapshot.ID)
	}
	if snapshot.OwnerID != "p1" {
		t.Fatalf("Expected the first joiner to own the room but got %q", snapshot.OwnerID)
	}
	if snapshot.GamePhase != PhaseLobby {
		t.Fatalf("Expected a fresh room in the lobby but got %s", snapshot.GamePhase)
	}
}

func TestGameRoom_JoinAnnouncedToOthers(t *testing.T) {
	room, _ := newTestRoom(t)
	defer room.Stop()

	alice := joinRoom(t, room, "p1", "alice")
	joinRoom(t, room, "p2", "bob")

	payload := waitForEvent(t, alice, EvPlayerJoined)
	var joined Player
	if err := json.Unmarshal(payload, &joined); err != nil {
		t.Fatalf("Failed to unmarshal the joined player: %v", err)
	}
	if joined.Name != "bob" {
		t.Fatalf("Expected the join broadcast to carry bob but got %q", joined.Name)
	}
}

func TestGameRoom_StartGame(t *testing.T) {
	room, _ := newTestRoom(t)
	defer room.Stop()

	alice := joinRoom(t, room, "p1", "alice")
	bob := joinRoom(t, room, "p2", "bob")

	sendEvent(room, alice, EvStartGame, nil)

	optionsPayload := waitForEvent(t, alice, EvWordOptions)
	var options []string
	if err := json.Unmarshal(optionsPayload, &options); err != nil {
		t.Fatalf("Failed to unmarshal the word options: %v", err)
	}
	if len(options) != WordOptionCount {
		t.Fatalf("Expected %d word options for the drawer but got %d", WordOptionCount, len(options))
	}

	phasePayload := waitForEvent(t, bob, EvGamePhaseChange)
	var phase PhaseChangePayload
	if err := json.Unmarshal(phasePayload, &phase); err != nil {
		t.Fatalf("Failed to unmarshal the phase change: %v", err)
	}
	if phase.GamePhase != PhaseChoosing {
		t.Fatalf("Expected the choosing phase but got %s", phase.GamePhase)
	}
	if phase.RoundTime != ChooseTimeSecs {
		t.Fatalf("Expected the choose timer at %d but got %d", ChooseTimeSecs, phase.RoundTime)
	}
}

func TestGameRoom_NonOwnerCannotStart(t *testing.T) {
	room, _ := newTestRoom(t)
	defer room.Stop()

	joinRoom(t, room, "p1", "alice")
	bob := joinRoom(t, room, "p2", "bob")

	sendEvent(room, bob, EvStartGame, nil)

	// a later joiner's snapshot reflects every message handled before it
	carol := make(chan []byte, 64)
	room.Join(SubscriberMsg{Subscriber: carol, PlayerID: "p3", PlayerName: "carol"})
	payload := waitForEvent(t, carol, EvRoomState)

	var snapshot StateSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		t.Fatalf("Failed to unmarshal the snapshot: %v", err)
	}
	if snapshot.GamePhase != PhaseLobby {
		t.Fatalf("Expected the room to stay in the lobby but got %s", snapshot.GamePhase)
	}
}

func TestGameRoom_GuessRound(t *testing.T) {
	room, _ := newTestRoom(t)
	defer room.Stop()

	alice := joinRoom(t, room, "p1", "alice")
	bob := joinRoom(t, room, "p2", "bob")

	sendEvent(room, alice, EvStartGame, nil)

	var options []string
	if err := json.Unmarshal(waitForEvent(t, alice, EvWordOptions), &options); err != nil {
		t.Fatalf("Failed to unmarshal the word options: %v", err)
	}
	sendEvent(room, alice, EvSelectWord, WordPayload{Word: options[0]})

	var word string
	if err := json.Unmarshal(waitForEvent(t, alice, EvCurrentWord), &word); err != nil {
		t.Fatalf("Failed to unmarshal the secret word: %v", err)
	}
	if word != options[0] {
		t.Fatalf("Expected the drawer to receive the selected word but got %q", word)
	}

	sendEvent(room, bob, EvSendMessage, TextPayload{Text: "wrong guess"})
	var wrong ChatMessage
	if err := json.Unmarshal(waitForEvent(t, bob, EvChatMessage), &wrong); err != nil {
		t.Fatalf("Failed to unmarshal the chat message: %v", err)
	}
	if wrong.IsCorrect || wrong.Text != "wrong guess" {
		t.Fatalf("Expected the wrong guess relayed verbatim but got %+v", wrong)
	}

	sendEvent(room, bob, EvSendMessage, TextPayload{Text: word})
	payload := waitForEvent(t, bob, EvRoundEnd)
	var roundEnd RoundEndPayload
	if err := json.Unmarshal(payload, &roundEnd); err != nil {
		t.Fatalf("Failed to unmarshal the round end: %v", err)
	}
	if roundEnd.Word != word {
		t.Fatalf("Expected the round end to reveal %q but got %q", word, roundEnd.Word)
	}
	for _, player := range roundEnd.Players {
		if player.ID == "p2" && player.Score == 0 {
			t.Fatalf("Expected the guesser to have scored")
		}
	}
}

func TestGameRoom_KickedPlayerRemoved(t *testing.T) {
	room, _ := newTestRoom(t)
	defer room.Stop()

	alice := joinRoom(t, room, "p1", "alice")
	bob := joinRoom(t, room, "p2", "bob")

	sendEvent(room, alice, EvKickPlayer, KickPayload{PlayerID: "p2"})

	waitForEvent(t, bob, EvKicked)
	waitForClose(t, bob)

	carol := make(chan []byte, 64)
	room.Join(SubscriberMsg{Subscriber: carol, PlayerID: "p3", PlayerName: "carol"})
	payload := waitForEvent(t, carol, EvRoomState)
	var snapshot StateSnapshot
	if err := json.Unmarshal(payload, &snapshot); err != nil {
		t.Fatalf("Failed to unmarshal the snapshot: %v", err)
	}
	for _, player := range snapshot.Players {
		if player.ID == "p2" {
			t.Fatalf("Expected the kicked player gone from the roster")
		}
	}
}

func TestGameRoom_LastPlayerWinsOnLeave(t *testing.T) {
	room, _ := newTestRoom(t)
	defer room.Stop()

	alice := joinRoom(t, room, "p1", "alice")
	bob := joinRoom(t, room, "p2", "bob")

	sendEvent(room, alice, EvStartGame, nil)
	waitForEvent(t, alice, EvWordOptions)

	room.Leave(bob)

	// the leave announcement arrives first, the win message right after
	var win ChatMessage
	for i := 0; i < 5 && !strings.Contains(win.Text, "wins!"); i++ {
		if err := json.Unmarshal(waitForEvent(t, alice, EvChatMessage), &win); err != nil {
			t.Fatalf("Failed to unmarshal the chat message: %v", err)
		}
	}
	if !strings.Contains(win.Text, "alice wins!") {
		t.Fatalf("Expected alice declared the winner but got %q", win.Text)
	}

	payload := waitForEvent(t, alice, EvGameEnd)
	var gameEnd GameEndPayload
	if err := json.Unmarshal(payload, &gameEnd); err != nil {
		t.Fatalf("Failed to unmarshal the game end: %v", err)
	}
	if len(gameEnd.Players) != 1 || gameEnd.Players[0].ID != "p1" {
		t.Fatalf("Expected only the survivor in the final standings but got %+v", gameEnd.Players)
	}
}

func TestGameRoom_KickToOnePlayerEndsGame(t *testing.T) {
	room, _ := newTestRoom(t)
	defer room.Stop()

	alice := joinRoom(t, room, "p1", "alice")
	bob := joinRoom(t, room, "p2", "bob")

	sendEvent(room, alice, EvStartGame, nil)
	waitForEvent(t, alice, EvWordOptions)

	sendEvent(room, alice, EvKickPlayer, KickPayload{PlayerID: "p2"})
	waitForClose(t, bob)

	waitForEvent(t, alice, EvGameEnd)
}

func TestGameRoom_LastLeaveDestroysRoom(t *testing.T) {
	room, handler := newTestRoom(t)

	alice := joinRoom(t, room, "p1", "alice")
	room.Leave(alice)

	select {
	case code := <-handler.emptied:
		if code != "ROOM01" {
			t.Fatalf("Expected the registry notified for ROOM01 but got %s", code)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("Timed out waiting for the empty-room callback")
	}
	waitForClose(t, alice)
}

func TestGameRoom_StopClosesSubscribers(t *testing.T) {
	room, _ := newTestRoom(t)

	alice := joinRoom(t, room, "p1", "alice")
	room.Stop()

	waitForEvent(t, alice, EvRoomClosed)
	waitForClose(t, alice)
}

func TestGameRoom_OwnerTransferOnLeave(t *testing.T) {
	room, _ := newTestRoom(t)
	defer room.Stop()

	alice := joinRoom(t, room, "p1", "alice")
	bob := joinRoom(t, room, "p2", "bob")

	room.Leave(alice)

	payload := waitForEvent(t, bob, EvOwnerUpdate)
	var ownerID string
	if err := json.Unmarshal(payload, &ownerID); err != nil {
		t.Fatalf("Failed to unmarshal the owner update: %v", err)
	}
	if ownerID != "p2" {
		t.Fatalf("Expected ownership to pass to bob but got %q", ownerID)
	}
}

func TestGameRoom_IsExpired(t *testing.T) {
	room, _ := newTestRoom(t)
	defer room.Stop()

	if room.IsExpired(time.Now()) {
		t.Fatalf("Expected a fresh room not to be expired")
	}
	if !room.IsExpired(time.Now().Add(16 * time.Minute)) {
		t.Fatalf("Expected a room idle past its deadline to be expired")
	}
}
