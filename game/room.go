/*
 * Copyright (c) Joseph Prichard 2025
 */

package game

import (
	"encoding/json"
	"log/slog"
	"sync/atomic"
	"time"
)

// a room interface that provides flow control for a client to subscribe to
// and send messages to
type Room interface {
	Start()
	Join(m SubscriberMsg)
	Leave(s chan []byte)
	SendMessage(m SentMsg)
	Stop()
	IsExpired(now time.Time) bool
	Info() RoomInfo
}

// RoomHandler receives lifecycle callbacks from a room, implemented by the
// registry so empty rooms are removed.
type RoomHandler interface {
	OnEmpty(code string)
}

type SentMsg struct {
	Message []byte
	Sender  chan []byte
}

type SubscriberMsg struct {
	Subscriber   chan []byte
	PlayerID     string
	PlayerName   string
	CustomAvatar json.RawMessage
}

// an implementation of the game against the room interface flow control:
// every mutation of the room state happens on the goroutine running Start,
// fed by the channels below and by the countdown ticker
type GameRoom struct {
	join        chan SubscriberMsg
	leave       chan chan []byte
	sendMessage chan SentMsg
	stop        chan struct{}
	done        chan struct{}
	state       RoomState
	subscribers map[chan []byte]string // subscriber channel to player id
	conns       map[string]chan []byte // player id to subscriber channel
	ticker      *time.Ticker
	tick        <-chan time.Time // nil whenever no countdown is active
	expireTime  atomic.Int64
	info        atomic.Pointer[RoomInfo]
	handler     RoomHandler
	logger      *slog.Logger
}

func NewGameRoom(initialState RoomState, handler RoomHandler, logger *slog.Logger) *GameRoom {
	room := &GameRoom{
		join:        make(chan SubscriberMsg),
		leave:       make(chan chan []byte),
		sendMessage: make(chan SentMsg),
		stop:        make(chan struct{}),
		done:        make(chan struct{}),
		state:       initialState,
		subscribers: make(map[chan []byte]string),
		conns:       make(map[string]chan []byte),
		handler:     handler,
		logger:      logger.With("room", initialState.Code()),
	}
	room.postponeExpiration()
	room.publishInfo()
	return room
}

func (room *GameRoom) Start() {
	defer func() {
		if panicInfo := recover(); panicInfo != nil {
			room.logger.Error("fatal error in room", "panic", panicInfo)
		}
		close(room.done)
	}()
	for {
		select {
		case subMsg := <-room.join:
			room.onJoin(subMsg)
		case subscriber := <-room.leave:
			if room.onLeave(subscriber) {
				return
			}
		case sentMsg := <-room.sendMessage:
			room.onMessage(sentMsg)
		case <-room.tick:
			room.onTick()
		case <-room.stop:
			room.onTerminate()
			return
		}
		room.publishInfo()
	}
}

func (room *GameRoom) Join(m SubscriberMsg) {
	select {
	case room.join <- m:
	case <-room.done:
		close(m.Subscriber)
	}
}

func (room *GameRoom) Leave(s chan []byte) {
	select {
	case room.leave <- s:
	case <-room.done:
	}
}

func (room *GameRoom) SendMessage(m SentMsg) {
	select {
	case room.sendMessage <- m:
	case <-room.done:
	}
}

func (room *GameRoom) Stop() {
	select {
	case room.stop <- struct{}{}:
	case <-room.done:
	}
}

func (room *GameRoom) IsExpired(now time.Time) bool {
	return now.Unix() >= room.expireTime.Load()
}

func (room *GameRoom) Info() RoomInfo {
	return *room.info.Load()
}

func (room *GameRoom) publishInfo() {
	info := room.state.Info()
	room.info.Store(&info)
}

func (room *GameRoom) postponeExpiration() {
	// idle rooms are swept by the registry after 15 minutes
	room.expireTime.Store(time.Now().Unix() + 15*60)
}

// startCountdown begins the one second tick if it isn't already running.
func (room *GameRoom) startCountdown() {
	if room.ticker == nil {
		room.ticker = time.NewTicker(time.Second)
		room.tick = room.ticker.C
	}
}

// resetCountdown realigns the tick to a full second from now. Any previous
// ticker is always stopped first so a room never runs two timers.
func (room *GameRoom) resetCountdown() {
	room.stopCountdown()
	room.startCountdown()
}

func (room *GameRoom) stopCountdown() {
	if room.ticker != nil {
		room.ticker.Stop()
		room.ticker = nil
		room.tick = nil
	}
}

// broadcast fans a frame out to every subscriber. Sends never block: a
// subscriber whose buffer is full misses the frame rather than stalling the
// room.
func (room *GameRoom) broadcast(frame []byte) {
	if frame == nil {
		return
	}
	for s := range room.subscribers {
		select {
		case s <- frame:
		default:
		}
	}
}

// broadcastExcept relays a frame to everyone but the sender.
func (room *GameRoom) broadcastExcept(sender chan []byte, frame []byte) {
	if frame == nil {
		return
	}
	for s := range room.subscribers {
		if s == sender {
			continue
		}
		select {
		case s <- frame:
		default:
		}
	}
}

// sendTo delivers a frame to a single player's connection.
func (room *GameRoom) sendTo(playerID string, frame []byte) {
	if frame == nil {
		return
	}
	if s, ok := room.conns[playerID]; ok {
		select {
		case s <- frame:
		default:
		}
	}
}

func (room *GameRoom) onJoin(subMsg SubscriberMsg) {
	room.postponeExpiration()

	player, outcome := room.state.Join(subMsg.PlayerID, subMsg.PlayerName, subMsg.CustomAvatar)
	if outcome == JoinFull {
		subMsg.Subscriber <- MarshalEvent(EvError, ErrorPayload{ErrorDesc: "Room is at its player limit"})
		close(subMsg.Subscriber)
		return
	}

	room.subscribers[subMsg.Subscriber] = player.ID
	room.conns[player.ID] = subMsg.Subscriber

	// the joiner always gets the full current room state
	subMsg.Subscriber <- MarshalEvent(EvRoomState, room.state.Snapshot(player.ID))

	if outcome == JoinResync || outcome == JoinRebind {
		room.logger.Debug("player rebound to room", "player", player.Name)
		room.broadcast(MarshalEvent(EvPlayersUpdate, room.state.Players()))
		return
	}

	// mid-game joiners also need the phase specifics the snapshot lacks
	switch room.state.Phase() {
	case PhaseDrawing:
		room.sendTo(player.ID, MarshalEvent(EvGamePhaseChange, PhaseChangePayload{
			GamePhase:          PhaseDrawing,
			WordHint:           room.state.WordHint(),
			RoundTime:          room.state.RoundTime(),
			CurrentRound:       room.state.currentRound,
			CurrentDrawerIndex: room.state.visibleDrawerIndex(),
		}))
	case PhaseChoosing:
		room.sendTo(player.ID, MarshalEvent(EvGamePhaseChange, PhaseChangePayload{
			GamePhase:          PhaseChoosing,
			RoundTime:          room.state.RoundTime(),
			CurrentRound:       room.state.currentRound,
			CurrentDrawerIndex: room.state.visibleDrawerIndex(),
		}))
	}

	room.logger.Debug("player joined room", "player", player.Name)

	room.broadcast(MarshalEvent(EvPlayerJoined, player))
	room.broadcast(MarshalEvent(EvPlayersUpdate, room.state.Players()))

	text := player.Name + " joined the game!"
	if room.state.Phase() == PhaseDrawing {
		text = player.Name + " joined! Start guessing!"
	}
	joined := room.state.AppendSystemMessage(text)
	room.broadcast(MarshalEvent(EvChatMessage, joined))
}

// onLeave handles a dropped connection. Reports whether the room emptied
// out and the loop should exit.
func (room *GameRoom) onLeave(subscriber chan []byte) bool {
	playerID, ok := room.subscribers[subscriber]
	if !ok {
		// already removed by a kick or terminate
		return false
	}
	delete(room.subscribers, subscriber)
	close(subscriber)

	player, ok := room.state.Disconnect(playerID)
	if !ok {
		return false
	}
	if room.conns[playerID] == subscriber {
		delete(room.conns, playerID)
	}
	room.logger.Debug("player disconnected", "player", player.Name)

	if room.state.PlayerCount() == 0 {
		return room.destroy()
	}

	left := room.state.AppendSystemMessage(player.Name + " left the game")
	room.broadcast(MarshalEvent(EvChatMessage, left))
	room.broadcast(MarshalEvent(EvPlayersUpdate, room.state.Players()))

	if newOwner, changed := room.state.TransferOwner(); changed {
		room.broadcast(MarshalEvent(EvOwnerUpdate, newOwner.ID))
	}

	if player.IsDrawing && room.state.Phase() == PhaseDrawing {
		room.endRound()
	}
	room.checkAttrition(room.winnerName() + " wins! All other players left the game.")
	return false
}

// destroy cancels the timer, tells the registry the room is gone, and stops
// the loop.
func (room *GameRoom) destroy() bool {
	room.logger.Info("room is empty, destroying")
	room.stopCountdown()
	room.publishInfo()
	room.handler.OnEmpty(room.state.Code())
	for s := range room.subscribers {
		delete(room.subscribers, s)
		close(s)
	}
	return true
}

// onTerminate is the registry-initiated shutdown of an expired room.
func (room *GameRoom) onTerminate() {
	room.stopCountdown()
	room.broadcast(MarshalEvent(EvRoomClosed, nil))
	room.handler.OnEmpty(room.state.Code())
	for s := range room.subscribers {
		delete(room.subscribers, s)
		close(s)
	}
}
