/*
 * Copyright (c) Joseph Prichard 2025
 */

package servers

import (
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

type ErrorResp struct {
	Status    int    `json:"status"`
	ErrorDesc string `json:"errorDesc"`
}

func WriteError(w http.ResponseWriter, status int, errorDesc string) {
	resp := ErrorResp{Status: status, ErrorDesc: errorDesc}
	b, err := json.Marshal(resp)
	if err != nil {
		slog.Error("failed to serialize error for http response", "error", err)
		return
	}
	w.WriteHeader(status)
	if _, err = w.Write(b); err != nil {
		slog.Error("failed to write error body to response", "error", err)
	}
}

func ReadJson[T any](r *http.Request, result *T) error {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		return errors.New("failed to read data from request body")
	}
	if err = json.Unmarshal(body, result); err != nil {
		return errors.New("invalid format for request body")
	}
	return nil
}

func WriteJson(w http.ResponseWriter, v any) {
	b, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal json response", "error", err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	if _, err = w.Write(b); err != nil {
		slog.Error("failed to write body as response", "error", err)
	}
}

func EnableCors(w *http.ResponseWriter) {
	header := (*w).Header()
	header.Set("Access-Control-Allow-Origin", "*")
	header.Set("Access-Control-Allow-Headers", "*")
}

func CreateUpgrade() websocket.Upgrader {
	upgrade := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
	}
	upgrade.CheckOrigin = func(r *http.Request) bool {
		return true
	}
	return upgrade
}
