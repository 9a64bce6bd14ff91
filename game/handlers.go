/*
 * Copyright (c) Joseph Prichard 2025
 */

package game

import (
	"encoding/json"
	"fmt"
)

// onMessage dispatches one inbound frame from a connected player. Frames
// violating a precondition are dropped without a reply: the permissive but
// inert stance means a client never sees an error for a rejected action.
func (room *GameRoom) onMessage(sentMsg SentMsg) {
	playerID, ok := room.subscribers[sentMsg.Sender]
	if !ok {
		return
	}

	var envelope Envelope
	if err := json.Unmarshal(sentMsg.Message, &envelope); err != nil {
		room.logger.Debug("dropping malformed frame", "error", err)
		return
	}

	room.postponeExpiration()

	switch envelope.Event {
	case EvUpdateSettings:
		room.handleUpdateSettings(playerID, envelope.Payload)
	case EvStartGame:
		room.handleStartGame(playerID)
	case EvSelectWord:
		room.handleSelectWord(playerID, envelope.Payload)
	case EvSendMessage:
		room.handleGuess(playerID, envelope.Payload)
	case EvDraw, EvClearCanvas, EvCanvasSync:
		room.handleCanvasRelay(playerID, sentMsg.Sender, envelope)
	case EvDrawingReaction:
		room.handleReaction(playerID, envelope.Payload)
	case EvLobbyMessage:
		room.handleLobbyMessage(playerID, envelope.Payload)
	case EvSendEmote:
		room.handleEmote(playerID, envelope.Payload)
	case EvTyping:
		room.handleTyping(playerID, sentMsg.Sender)
	case EvNextRound:
		room.handleNextRound(playerID)
	case EvResetGame:
		room.handleResetGame(playerID)
	case EvKickPlayer:
		room.handleKickPlayer(playerID, envelope.Payload)
	default:
		room.logger.Debug("dropping unknown event", "event", envelope.Event)
	}
}

func (room *GameRoom) handleUpdateSettings(playerID string, payload json.RawMessage) {
	if !room.state.IsOwner(playerID) || room.state.Phase() != PhaseLobby {
		return
	}
	var msg UpdateSettingsPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}

	room.state.UpdateSettings(msg.TotalRounds, msg.DrawTime, msg.WordPacks, msg.CustomWords)

	settings := room.state.Settings()
	room.broadcast(MarshalEvent(EvSettingsUpdate, SettingsUpdatePayload{
		TotalRounds: settings.TotalRounds,
		MaxDrawTime: settings.DrawTimeSecs,
	}))
}

func (room *GameRoom) handleStartGame(playerID string) {
	if !room.state.IsOwner(playerID) || room.state.Phase() != PhaseLobby {
		return
	}
	if room.state.PlayerCount() < MinPlayerLimit {
		return
	}

	drawer := room.state.StartGame()
	room.logger.Info("game started", "players", room.state.PlayerCount())

	room.sendTo(drawer.ID, MarshalEvent(EvWordOptions, room.state.WordOptions()))
	room.broadcastChoosingPhase()
	room.broadcast(MarshalEvent(EvPlayersUpdate, room.state.Players()))
	room.broadcast(MarshalEvent(EvClearCanvas, nil))

	room.resetCountdown()
}

func (room *GameRoom) handleSelectWord(playerID string, payload json.RawMessage) {
	if room.state.Phase() != PhaseChoosing || !room.state.IsDrawer(playerID) {
		return
	}
	var msg WordPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}
	if !room.state.SelectWord(msg.Word) {
		room.logger.Debug("drawer picked a word that was not offered", "word", msg.Word)
		return
	}
	room.beginDrawingPhase(msg.Word)
	room.resetCountdown()
}

// beginDrawingPhase announces the drawing phase: the secret word goes to the
// drawer alone, everyone else sees only the masked hint.
func (room *GameRoom) beginDrawingPhase(word string) {
	if drawer, ok := room.state.CurrentDrawer(); ok {
		room.sendTo(drawer.ID, MarshalEvent(EvCurrentWord, word))
	}
	room.broadcast(MarshalEvent(EvGamePhaseChange, PhaseChangePayload{
		GamePhase:          PhaseDrawing,
		WordHint:           room.state.WordHint(),
		RoundTime:          room.state.RoundTime(),
		CurrentDrawerIndex: room.state.visibleDrawerIndex(),
	}))
}

func (room *GameRoom) handleGuess(playerID string, payload json.RawMessage) {
	var msg TextPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}

	result, ok := room.state.TryGuess(playerID, msg.Text)
	if !ok {
		return
	}
	room.broadcast(MarshalEvent(EvChatMessage, result.Message))

	if !result.Correct {
		return
	}

	congrats := room.state.AppendSystemMessage(
		fmt.Sprintf("🎉 %s guessed the word! (+%d pts)", result.Message.PlayerName, result.Points))
	room.broadcast(MarshalEvent(EvChatMessage, congrats))
	room.broadcast(MarshalEvent(EvPlayersUpdate, room.state.Players()))

	if result.RoundOver {
		room.endRound()
	}
}

// handleCanvasRelay forwards drawing traffic to everyone but the drawer.
// Payload contents are opaque to the room, only authorization is checked.
func (room *GameRoom) handleCanvasRelay(playerID string, sender chan []byte, envelope Envelope) {
	if !room.state.IsDrawer(playerID) {
		return
	}
	room.broadcastExcept(sender, MarshalEvent(envelope.Event, envelope.Payload))
}

func (room *GameRoom) handleReaction(playerID string, payload json.RawMessage) {
	if room.state.Phase() != PhaseDrawing {
		return
	}
	player, ok := room.state.FindPlayer(playerID)
	if !ok || player.IsDrawing {
		return
	}
	var msg ReactionPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}

	emoji, action := "👍", "liked"
	if msg.Reaction != "like" {
		emoji, action = "👎", "disliked"
	}
	reaction := room.state.AppendSystemMessage(
		fmt.Sprintf("%s %s %s this drawing!", player.Name, emoji, action))
	room.broadcast(MarshalEvent(EvChatMessage, reaction))
}

func (room *GameRoom) handleLobbyMessage(playerID string, payload json.RawMessage) {
	if room.state.Phase() != PhaseLobby {
		return
	}
	var msg TextPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}
	message, ok := room.state.AppendChatMessage(playerID, msg.Text)
	if !ok {
		return
	}
	room.broadcast(MarshalEvent(EvChatMessage, message))
}

func (room *GameRoom) handleEmote(playerID string, payload json.RawMessage) {
	if room.state.Phase() != PhaseDrawing {
		return
	}
	player, ok := room.state.FindPlayer(playerID)
	if !ok || player.IsDrawing {
		return
	}
	var msg EmotePayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}
	room.broadcast(MarshalEvent(EvEmote, EmotePayload{Emote: msg.Emote, PlayerName: player.Name}))
}

func (room *GameRoom) handleTyping(playerID string, sender chan []byte) {
	player, ok := room.state.FindPlayer(playerID)
	if !ok {
		return
	}
	room.broadcastExcept(sender, MarshalEvent(EvPlayerTyping, TypingPayload{PlayerName: player.Name}))
}

func (room *GameRoom) handleNextRound(playerID string) {
	if !room.state.IsOwner(playerID) {
		return
	}
	if phase := room.state.Phase(); phase != PhaseRoundEnd && phase != PhaseDrawing && phase != PhaseChoosing {
		return
	}
	room.startNextTurn()
}

func (room *GameRoom) handleResetGame(playerID string) {
	if !room.state.IsOwner(playerID) {
		return
	}

	room.stopCountdown()
	room.state.Reset()

	settings := room.state.Settings()
	room.broadcast(MarshalEvent(EvGameReset, GameResetPayload{
		TotalRounds: settings.TotalRounds,
		MaxDrawTime: settings.DrawTimeSecs,
		OwnerID:     room.state.OwnerID(),
	}))
	room.broadcast(MarshalEvent(EvPlayersUpdate, room.state.Players()))
}

func (room *GameRoom) handleKickPlayer(playerID string, payload json.RawMessage) {
	if !room.state.IsOwner(playerID) {
		return
	}
	var msg KickPayload
	if err := json.Unmarshal(payload, &msg); err != nil {
		return
	}
	if msg.PlayerID == playerID {
		return
	}

	target, ok := room.state.FindPlayer(msg.PlayerID)
	if !ok {
		return
	}
	wasDrawing := target.IsDrawing

	room.sendTo(target.ID, MarshalEvent(EvKicked, KickedPayload{Reason: "You have been kicked by the host"}))
	if s, ok := room.conns[target.ID]; ok {
		delete(room.subscribers, s)
		delete(room.conns, target.ID)
		close(s)
	}
	room.state.RemovePlayer(target.ID)
	room.logger.Info("player kicked", "player", target.Name)

	kicked := room.state.AppendSystemMessage(target.Name + " was kicked from the game")
	room.broadcast(MarshalEvent(EvChatMessage, kicked))
	room.broadcast(MarshalEvent(EvPlayersUpdate, room.state.Players()))

	if wasDrawing && room.state.Phase() == PhaseDrawing && room.state.PlayerCount() > 0 {
		room.endRound()
	}
	room.checkAttrition(fmt.Sprintf("%s wins! All other players were kicked or left.",
		room.winnerName()))
}

func (room *GameRoom) winnerName() string {
	players := room.state.Players()
	if len(players) == 0 {
		return ""
	}
	return players[0].Name
}

// checkAttrition declares the last connected player the winner when kicks or
// disconnects thin an active game down to one.
func (room *GameRoom) checkAttrition(text string) {
	phase := room.state.Phase()
	active := phase == PhaseChoosing || phase == PhaseDrawing || phase == PhaseRoundEnd
	if !active || room.state.PlayerCount() != 1 {
		return
	}

	room.stopCountdown()
	room.state.EndGame()

	win := room.state.AppendSystemMessage("🏆 " + text)
	room.broadcast(MarshalEvent(EvChatMessage, win))
	room.broadcast(MarshalEvent(EvGameEnd, GameEndPayload{Players: room.state.Players()}))
}

// onTick drives the countdown: one decrement per second, the periodic hint
// reveal during drawing, and the timeout transition for the current phase.
func (room *GameRoom) onTick() {
	remaining := room.state.DecrementTime()

	switch room.state.Phase() {
	case PhaseChoosing, PhaseDrawing:
		room.broadcast(MarshalEvent(EvTimerUpdate, remaining))
	}

	if room.state.ShouldRevealHint() {
		hint := room.state.RevealNextLetter()
		room.broadcast(MarshalEvent(EvWordHintUpdate, hint))
	}

	if remaining > 0 {
		return
	}
	switch room.state.Phase() {
	case PhaseChoosing:
		room.autoPickWord()
	case PhaseDrawing:
		room.endRound()
	case PhaseRoundEnd:
		room.startNextTurn()
	default:
		room.stopCountdown()
	}
}

// autoPickWord is the choose-timeout fallback: the same transition as an
// explicit selection, with the word drawn uniformly from the options.
func (room *GameRoom) autoPickWord() {
	word, ok := room.state.AutoPickWord()
	if !ok {
		room.endRound()
		return
	}
	room.logger.Debug("choose timer expired, word auto-picked")
	room.beginDrawingPhase(word)
}

// endRound freezes the turn and reveals the word to everyone. The next turn
// starts automatically after the round-end delay, or earlier if the owner
// advances manually.
func (room *GameRoom) endRound() {
	room.state.FinishTurn()
	room.startCountdown()

	room.broadcast(MarshalEvent(EvRoundEnd, RoundEndPayload{
		Word:    room.state.CurrentWord(),
		Players: room.state.Players(),
		Delay:   RoundEndDelaySecs,
	}))
}

func (room *GameRoom) startNextTurn() {
	drawer, over := room.state.AdvanceTurn()
	if over {
		room.stopCountdown()
		room.broadcast(MarshalEvent(EvGameEnd, GameEndPayload{Players: room.state.Players()}))
		return
	}

	room.sendTo(drawer.ID, MarshalEvent(EvWordOptions, room.state.WordOptions()))
	room.broadcastChoosingPhase()
	room.broadcast(MarshalEvent(EvPlayersUpdate, room.state.Players()))
	room.broadcast(MarshalEvent(EvClearCanvas, nil))

	room.resetCountdown()
}

func (room *GameRoom) broadcastChoosingPhase() {
	settings := room.state.Settings()
	room.broadcast(MarshalEvent(EvGamePhaseChange, PhaseChangePayload{
		GamePhase:          PhaseChoosing,
		RoundTime:          room.state.RoundTime(),
		CurrentRound:       room.state.currentRound,
		CurrentTurn:        room.state.currentTurn,
		TotalTurns:         room.state.PlayerCount(),
		TotalRounds:        settings.TotalRounds,
		MaxDrawTime:        settings.DrawTimeSecs,
		CurrentDrawerIndex: room.state.visibleDrawerIndex(),
	}))
}
