/*
 * Copyright (c) Joseph Prichard 2025
 */

package servers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"sketchparty/game"

	"github.com/gorilla/websocket"
)

// buffer size for a connection's outbound frame channel; the room drops
// frames for a connection that falls this far behind
const subscriberBuffer = 64

type RoomsServer struct {
	upgrade       websocket.Upgrader
	registry      game.Registry
	authenticator Authenticator
	logger        *slog.Logger
}

func NewRoomsServer(registry game.Registry, authenticator Authenticator, logger *slog.Logger) *RoomsServer {
	return &RoomsServer{
		upgrade:       CreateUpgrade(),
		registry:      registry,
		authenticator: authenticator,
		logger:        logger,
	}
}

type RoomCodeResp struct {
	Code     string            `json:"code"`
	Settings game.RoomSettings `json:"settings"`
}

func (server *RoomsServer) CreateRoom(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	var settings game.RoomSettings
	if err := ReadJson(r, &settings); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	game.SettingsWithDefaults(&settings)
	if err := game.IsSettingsValid(settings); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	room, err := server.registry.Create(settings)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to create a room")
		return
	}

	w.WriteHeader(http.StatusOK)
	WriteJson(w, RoomCodeResp{Code: room.Info().Code, Settings: settings})
}

func (server *RoomsServer) GetRooms(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	w.WriteHeader(http.StatusOK)
	WriteJson(w, server.registry.ListPublic())
}

// HandleSocket upgrades the connection and hands it to a session goroutine.
// The session resolves pre-join events against the registry on its own, so a
// client can quick-play, browse, and join over a single connection.
func (server *RoomsServer) HandleSocket(w http.ResponseWriter, r *http.Request) {
	identity := server.authenticator.GetIdentity(r.URL.Query().Get("token"))

	ws, err := server.upgrade.Upgrade(w, r, nil)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to upgrade to websocket")
		return
	}

	server.logger.Debug("socket session opened", "player", identity.ID)
	go server.sessionListener(ws, identity)
}

// sessionListener reads frames before a room is bound. Only quick-play and
// join-room are meaningful here; anything else is dropped.
func (server *RoomsServer) sessionListener(ws *websocket.Conn, identity Identity) {
	bound := false
	defer func() {
		if !bound {
			_ = ws.Close()
		}
		if panicInfo := recover(); panicInfo != nil {
			server.logger.Error("fatal error in socket session", "panic", panicInfo)
		}
	}()

	for {
		_, buf, err := ws.ReadMessage()
		if err != nil {
			server.logger.Debug("client closed connection before joining", "error", err)
			return
		}

		var envelope game.Envelope
		if err := json.Unmarshal(buf, &envelope); err != nil {
			server.logger.Debug("dropping malformed frame before join", "error", err)
			continue
		}

		switch envelope.Event {
		case game.EvQuickPlay:
			room, err := server.registry.QuickPlay()
			if err != nil {
				server.writeFrame(ws, game.MarshalEvent(game.EvError, game.ErrorPayload{ErrorDesc: "Quick play failed"}))
				continue
			}
			server.writeFrame(ws, game.MarshalEvent(game.EvQuickPlayResult, game.QuickPlayResultPayload{RoomID: room.Info().Code}))

		case game.EvJoinRoom:
			var payload game.JoinRoomPayload
			if err := json.Unmarshal(envelope.Payload, &payload); err != nil {
				server.logger.Debug("dropping malformed join payload", "error", err)
				continue
			}
			if server.bindToRoom(ws, identity, payload) {
				bound = true
				return
			}

		default:
			server.logger.Debug("dropping event before join", "event", envelope.Event)
		}
	}
}

// bindToRoom resolves the join code, subscribes the connection, and starts
// the listener pair that pumps frames between the socket and the room.
func (server *RoomsServer) bindToRoom(ws *websocket.Conn, identity Identity, payload game.JoinRoomPayload) bool {
	if payload.RoomID == "" {
		server.writeFrame(ws, game.MarshalEvent(game.EvError, game.ErrorPayload{ErrorDesc: "A room id is required to join"}))
		return false
	}

	settings := game.RoomSettings{}
	if payload.IsPublic != nil {
		settings.IsPublic = *payload.IsPublic
	}
	game.SettingsWithDefaults(&settings)

	room := server.registry.GetOrCreate(payload.RoomID, settings)

	name := payload.PlayerName
	if name == "" {
		name = identity.Name
	}

	subscriber := make(chan []byte, subscriberBuffer)
	room.Join(game.SubscriberMsg{
		Subscriber:   subscriber,
		PlayerID:     identity.ID,
		PlayerName:   name,
		CustomAvatar: payload.CustomAvatar,
	})

	server.logger.Debug("socket bound to room", "room", payload.RoomID, "player", identity.ID, "name", name)

	go server.subscriberListener(ws, subscriber)
	go server.socketListener(ws, room, subscriber)
	return true
}

// socketListener reads messages from the socket and forwards them to the room.
func (server *RoomsServer) socketListener(ws *websocket.Conn, room game.Room, subscriber chan []byte) {
	defer func() {
		room.Leave(subscriber)
		_ = ws.Close()
		if panicInfo := recover(); panicInfo != nil {
			server.logger.Error("fatal error in socket listener", "panic", panicInfo)
		}
	}()
	for {
		_, buf, err := ws.ReadMessage()
		if err != nil {
			server.logger.Debug("client closed connection", "error", err)
			return
		}
		room.SendMessage(game.SentMsg{Message: buf, Sender: subscriber})
	}
}

// subscriberListener reads frames from the subscribed channel and writes them
// to the socket, closing it when the room closes the channel.
func (server *RoomsServer) subscriberListener(ws *websocket.Conn, subscriber chan []byte) {
	defer func() {
		_ = ws.Close()
		if panicInfo := recover(); panicInfo != nil {
			server.logger.Error("fatal error in subscriber listener", "panic", panicInfo)
		}
	}()
	for frame := range subscriber {
		if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
			server.logger.Debug("error writing frame to socket", "error", err)
			return
		}
	}
}

func (server *RoomsServer) writeFrame(ws *websocket.Conn, frame []byte) {
	if frame == nil {
		return
	}
	if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
		server.logger.Debug("error writing frame to socket", "error", err)
	}
}
