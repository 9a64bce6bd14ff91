/*
 * Copyright (c) Joseph Prichard 2025
 */

package servers

import (
	"log/slog"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"

	"sketchparty/game"
)

// TelemetryServer pushes live occupancy numbers to subscribed clients: how
// many sockets are connected and how many public rooms are open.
type TelemetryServer struct {
	upgrade      websocket.Upgrader
	registry     game.Registry
	clientsCount int
	subscribers  map[chan OccupancyUpdate]struct{}
	mu           sync.Mutex
	logger       *slog.Logger
}

type OccupancyUpdate struct {
	ClientCount int `json:"clientCount"`
	OpenRooms   int `json:"openRooms"`
}

func NewTelemetryServer(registry game.Registry, logger *slog.Logger) *TelemetryServer {
	return &TelemetryServer{
		upgrade:     CreateUpgrade(),
		registry:    registry,
		subscribers: make(map[chan OccupancyUpdate]struct{}),
		logger:      logger,
	}
}

func (server *TelemetryServer) AddSubscriber(subscriber chan OccupancyUpdate) {
	server.mu.Lock()
	defer server.mu.Unlock()

	server.clientsCount++
	server.subscribers[subscriber] = struct{}{}
	server.broadcast()
}

func (server *TelemetryServer) RemoveSubscriber(subscriber chan OccupancyUpdate) {
	server.mu.Lock()
	defer server.mu.Unlock()

	server.clientsCount--
	delete(server.subscribers, subscriber)
	close(subscriber)
	server.broadcast()
}

func (server *TelemetryServer) broadcast() {
	update := OccupancyUpdate{
		ClientCount: server.clientsCount,
		OpenRooms:   len(server.registry.ListPublic()),
	}
	for s := range server.subscribers {
		select {
		case s <- update:
		default:
		}
	}
}

func (server *TelemetryServer) Subscribe(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	subscriber := make(chan OccupancyUpdate, 8)

	ws, err := server.upgrade.Upgrade(w, r, nil)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "Failed to upgrade to websocket")
		return
	}

	go server.subscriberListener(ws, subscriber)
	go server.socketListener(ws, subscriber)

	server.AddSubscriber(subscriber)
}

func (server *TelemetryServer) socketListener(ws *websocket.Conn, subscriber chan OccupancyUpdate) {
	defer func() {
		server.RemoveSubscriber(subscriber)
		_ = ws.Close()
		if panicInfo := recover(); panicInfo != nil {
			server.logger.Error("fatal error in telemetry socket listener", "panic", panicInfo)
		}
	}()
	for {
		if _, _, err := ws.ReadMessage(); err != nil {
			server.logger.Debug("telemetry client closed connection", "error", err)
			return
		}
	}
}

func (server *TelemetryServer) subscriberListener(ws *websocket.Conn, subscriber chan OccupancyUpdate) {
	defer func() {
		_ = ws.Close()
		if panicInfo := recover(); panicInfo != nil {
			server.logger.Error("fatal error in telemetry subscriber listener", "panic", panicInfo)
		}
	}()
	for update := range subscriber {
		frame := game.MarshalEvent(game.EvOccupancyUpdate, update)
		if frame == nil {
			continue
		}
		if err := ws.WriteMessage(websocket.TextMessage, frame); err != nil {
			server.logger.Debug("error writing telemetry frame", "error", err)
			return
		}
	}
}
