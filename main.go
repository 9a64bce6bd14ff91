/*
 * Copyright (c) Joseph Prichard 2025
 */

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"sketchparty/config"
	"sketchparty/game"
	"sketchparty/servers"

	"github.com/gorilla/mux"
)

func main() {
	cfg := config.Load()

	logger := newLogger(cfg.Logging)
	slog.SetDefault(logger)

	rooms := game.NewRoomStore(cfg.Game.CleanupPeriod, logger)
	authServer := servers.NewAuthServer(cfg.Server.JwtSecretKey)
	roomsServer := servers.NewRoomsServer(rooms, authServer, logger)
	telemetryServer := servers.NewTelemetryServer(rooms, logger)

	router := mux.NewRouter()
	apiRouter := router.PathPrefix("/api").Subrouter()
	apiRouter.HandleFunc("/session", authServer.EstablishSession)
	apiRouter.HandleFunc("/rooms/create", roomsServer.CreateRoom)
	apiRouter.HandleFunc("/rooms", roomsServer.GetRooms)
	apiRouter.HandleFunc("/ws", roomsServer.HandleSocket)
	apiRouter.HandleFunc("/telemetry/subscribe", telemetryServer.Subscribe)
	router.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("healthy"))
	})

	server := &http.Server{
		Addr:    cfg.Addr(),
		Handler: router,
	}

	go func() {
		logger.Info("starting the server", "addr", cfg.Addr(), "env", cfg.Server.Env)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped unexpectedly", "error", err)
			os.Exit(1)
		}
	}()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM, os.Interrupt)
	<-sigCh
	logger.Info("shutdown signal received, draining connections")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown did not complete cleanly", "error", err)
	}
}

func newLogger(cfg config.LoggingConfig) *slog.Logger {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "json" {
		return slog.New(slog.NewJSONHandler(os.Stdout, opts))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, opts))
}
