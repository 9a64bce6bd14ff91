/*
 * Copyright (c) Joseph Prichard 2025
 */

package servers

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"sketchparty/game"

	"github.com/gorilla/websocket"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// stub implementation of an authenticator that returns a fixed identity
type StubAuthenticator struct {
	identity Identity
}

func (stub *StubAuthenticator) GetSession(_ string) (*JwtSession, error) { return nil, nil }

func (stub *StubAuthenticator) GetIdentity(_ string) Identity { return stub.identity }

func newTestGateway() (*RoomsServer, *game.RoomStore) {
	registry := game.NewRoomStore(time.Hour, testLogger())
	auth := &StubAuthenticator{identity: Identity{ID: "p1", Name: "alice"}}
	return NewRoomsServer(registry, auth, testLogger()), registry
}

func TestRoomsServer_CreateRoom(t *testing.T) {
	server, registry := newTestGateway()

	b, _ := json.Marshal(game.RoomSettings{IsPublic: true})
	r := httptest.NewRequest("POST", "/api/rooms/create", strings.NewReader(string(b)))
	w := httptest.NewRecorder()

	server.CreateRoom(w, r)

	resp := w.Result()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("Expected a 200 response but got %d", resp.StatusCode)
	}

	var roomCode RoomCodeResp
	if err := json.NewDecoder(resp.Body).Decode(&roomCode); err != nil {
		t.Fatalf("Failed to decode the create response: %v", err)
	}
	if roomCode.Code == "" {
		t.Fatalf("Expected a room code in the response")
	}
	if roomCode.Settings.TotalRounds == 0 || roomCode.Settings.MaxPlayers == 0 {
		t.Fatalf("Expected defaulted settings in the response but got %+v", roomCode.Settings)
	}
	if registry.Get(roomCode.Code) == nil {
		t.Fatalf("Expected the created room registered under its code")
	}
}

func TestRoomsServer_CreateRoom_InvalidSettings(t *testing.T) {
	server, _ := newTestGateway()

	b, _ := json.Marshal(game.RoomSettings{TotalRounds: 99, DrawTimeSecs: 80, MaxPlayers: 8})
	r := httptest.NewRequest("POST", "/api/rooms/create", strings.NewReader(string(b)))
	w := httptest.NewRecorder()

	server.CreateRoom(w, r)

	if w.Result().StatusCode != http.StatusBadRequest {
		t.Fatalf("Expected a 400 response but got %d", w.Result().StatusCode)
	}
}

func TestRoomsServer_GetRooms(t *testing.T) {
	server, registry := newTestGateway()

	settings := game.RoomSettings{IsPublic: true}
	game.SettingsWithDefaults(&settings)
	room := registry.GetOrCreate("PUBLIC", settings)
	defer room.Stop()

	subscriber := make(chan []byte, 64)
	room.Join(game.SubscriberMsg{Subscriber: subscriber, PlayerID: "p9", PlayerName: "zoe"})

	// a second round trip through the room loop guarantees the join and its
	// occupancy snapshot are fully processed
	room.SendMessage(game.SentMsg{Message: game.MarshalEvent(game.EvLobbyMessage, game.TextPayload{Text: "ping"}), Sender: subscriber})
	deadline := time.After(2 * time.Second)
	for waiting := true; waiting; {
		select {
		case frame := <-subscriber:
			var envelope game.Envelope
			if err := json.Unmarshal(frame, &envelope); err != nil {
				t.Fatalf("Failed to unmarshal the frame: %v", err)
			}
			if envelope.Event == game.EvChatMessage {
				var chat game.ChatMessage
				_ = json.Unmarshal(envelope.Payload, &chat)
				if chat.Text == "ping" {
					waiting = false
				}
			}
		case <-deadline:
			t.Fatalf("Timed out waiting for the room to process the join")
		}
	}

	r := httptest.NewRequest("GET", "/api/rooms", nil)
	w := httptest.NewRecorder()

	server.GetRooms(w, r)

	var infos []game.RoomInfo
	if err := json.NewDecoder(w.Result().Body).Decode(&infos); err != nil {
		t.Fatalf("Failed to decode the rooms response: %v", err)
	}
	if len(infos) != 1 || infos[0].Code != "PUBLIC" {
		t.Fatalf("Expected the occupied public room listed but got %v", infos)
	}
}

func dialSocket(t *testing.T, s *httptest.Server) *websocket.Conn {
	t.Helper()
	u := "ws" + strings.TrimPrefix(s.URL, "http")
	ws, _, err := websocket.DefaultDialer.Dial(u, nil)
	if err != nil {
		t.Fatalf("Failed to dial the websocket: %v", err)
	}
	return ws
}

func readEnvelope(t *testing.T, ws *websocket.Conn) game.Envelope {
	t.Helper()
	_ = ws.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, buf, err := ws.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read a frame: %v", err)
	}
	var envelope game.Envelope
	if err := json.Unmarshal(buf, &envelope); err != nil {
		t.Fatalf("Failed to unmarshal the frame: %v", err)
	}
	return envelope
}

func writeEnvelope(t *testing.T, ws *websocket.Conn, event string, payload any) {
	t.Helper()
	if err := ws.WriteMessage(websocket.TextMessage, game.MarshalEvent(event, payload)); err != nil {
		t.Fatalf("Failed to write a frame: %v", err)
	}
}

func TestRoomsServer_JoinOverWebsocket(t *testing.T) {
	server, _ := newTestGateway()
	s := httptest.NewServer(http.HandlerFunc(server.HandleSocket))
	defer s.Close()

	ws := dialSocket(t, s)
	defer ws.Close()

	writeEnvelope(t, ws, game.EvJoinRoom, game.JoinRoomPayload{RoomID: "PARTY1", PlayerName: "alice"})

	envelope := readEnvelope(t, ws)
	if envelope.Event != game.EvRoomState {
		t.Fatalf("Expected a room state frame on join but got %s", envelope.Event)
	}

	var snapshot game.StateSnapshot
	if err := json.Unmarshal(envelope.Payload, &snapshot); err != nil {
		t.Fatalf("Failed to unmarshal the snapshot: %v", err)
	}
	if snapshot.ID != "PARTY1" {
		t.Fatalf("Expected to join PARTY1 but got %q", snapshot.ID)
	}
	if len(snapshot.Players) != 1 || snapshot.Players[0].Name != "alice" {
		t.Fatalf("Expected alice alone in the room but got %v", snapshot.Players)
	}
}

func TestRoomsServer_QuickPlayOverWebsocket(t *testing.T) {
	server, registry := newTestGateway()
	s := httptest.NewServer(http.HandlerFunc(server.HandleSocket))
	defer s.Close()

	ws := dialSocket(t, s)
	defer ws.Close()

	writeEnvelope(t, ws, game.EvQuickPlay, game.QuickPlayPayload{PlayerName: "alice"})

	envelope := readEnvelope(t, ws)
	if envelope.Event != game.EvQuickPlayResult {
		t.Fatalf("Expected a quick play result but got %s", envelope.Event)
	}
	var result game.QuickPlayResultPayload
	if err := json.Unmarshal(envelope.Payload, &result); err != nil {
		t.Fatalf("Failed to unmarshal the quick play result: %v", err)
	}
	if result.RoomID == "" {
		t.Fatalf("Expected a room id in the quick play result")
	}
	room := registry.Get(result.RoomID)
	if room == nil {
		t.Fatalf("Expected the quick play room registered")
	}
	defer room.Stop()
	if !room.Info().IsPublic {
		t.Fatalf("Expected the quick play room to be public")
	}

	writeEnvelope(t, ws, game.EvJoinRoom, game.JoinRoomPayload{RoomID: result.RoomID, PlayerName: "alice"})
	envelope = readEnvelope(t, ws)
	if envelope.Event != game.EvRoomState {
		t.Fatalf("Expected a room state frame after joining the quick play room but got %s", envelope.Event)
	}
}

func TestRoomsServer_ChatOverWebsocket(t *testing.T) {
	server, _ := newTestGateway()
	s := httptest.NewServer(http.HandlerFunc(server.HandleSocket))
	defer s.Close()

	ws := dialSocket(t, s)
	defer ws.Close()

	writeEnvelope(t, ws, game.EvJoinRoom, game.JoinRoomPayload{RoomID: "PARTY1", PlayerName: "alice"})
	readEnvelope(t, ws) // roomState
	readEnvelope(t, ws) // playerJoined
	readEnvelope(t, ws) // playersUpdate
	readEnvelope(t, ws) // system chat line

	writeEnvelope(t, ws, game.EvLobbyMessage, game.TextPayload{Text: "hello there"})

	envelope := readEnvelope(t, ws)
	if envelope.Event != game.EvChatMessage {
		t.Fatalf("Expected a chat frame but got %s", envelope.Event)
	}
	var chat game.ChatMessage
	if err := json.Unmarshal(envelope.Payload, &chat); err != nil {
		t.Fatalf("Failed to unmarshal the chat message: %v", err)
	}
	if chat.Text != "hello there" || chat.PlayerName != "alice" {
		t.Fatalf("Expected the lobby message echoed back but got %+v", chat)
	}
}
