/*
 * Copyright (c) Joseph Prichard 2025
 */

package servers

import (
	"fmt"
	"log/slog"
	"math/rand"
	"net/http"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Identity is the player identity carried by a session token. Every visitor
// is a guest; the token just keeps the id stable across reconnects.
type Identity struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type Authenticator interface {
	GetSession(token string) (*JwtSession, error)
	GetIdentity(token string) Identity
}

type AuthServer struct {
	jwtKey []byte
}

func NewAuthServer(jwtKey string) *AuthServer {
	return &AuthServer{jwtKey: []byte(jwtKey)}
}

func (server *AuthServer) keyFunc(_ *jwt.Token) (interface{}, error) {
	return server.jwtKey, nil
}

func (server *AuthServer) GenerateToken(session JwtSession) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, session)
	tokenString, err := token.SignedString(server.jwtKey)
	if err != nil {
		return "", fmt.Errorf("failed to generate token for session %s: %w", session.Identity.ID, err)
	}
	return tokenString, nil
}

// GetSession parses and verifies a session token. An empty token yields a nil
// session without an error.
func (server *AuthServer) GetSession(token string) (*JwtSession, error) {
	if token == "" {
		return nil, nil
	}
	var session JwtSession
	jwtToken, err := jwt.ParseWithClaims(token, &session, server.keyFunc)
	if err != nil {
		slog.Debug("failed to parse session token", "error", err)
		return nil, err
	}
	if !jwtToken.Valid {
		return nil, nil
	}
	return &session, nil
}

// GetIdentity resolves a token to a player identity, minting a fresh guest
// when the token is missing or invalid.
func (server *AuthServer) GetIdentity(token string) Identity {
	session, err := server.GetSession(token)
	if err == nil && session != nil {
		return session.Identity
	}
	return GuestIdentity()
}

// EstablishSession returns the caller's session token, minting a guest
// session when the presented token is absent or invalid.
func (server *AuthServer) EstablishSession(w http.ResponseWriter, r *http.Request) {
	EnableCors(&w)

	token := r.Header.Get("token")
	session, err := server.GetSession(token)
	if err != nil || session == nil {
		newSession := NewSession(GuestIdentity())
		session = &newSession
		token, err = server.GenerateToken(newSession)
		if err != nil {
			WriteError(w, http.StatusInternalServerError, err.Error())
			return
		}
	}
	slog.Debug("session established", "player", session.Identity.ID)

	type TokenResp struct {
		Token    string   `json:"token"`
		Identity Identity `json:"identity"`
	}
	w.WriteHeader(http.StatusOK)
	WriteJson(w, TokenResp{Token: token, Identity: session.Identity})
}

type JwtSession struct {
	Identity Identity `json:"identity"`
	jwt.RegisteredClaims
}

func NewSession(identity Identity) JwtSession {
	expiry := time.Now().Add(24 * time.Hour)
	claims := jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(expiry)}
	return JwtSession{Identity: identity, RegisteredClaims: claims}
}

func GuestIdentity() Identity {
	return Identity{
		ID:   uuid.NewString(),
		Name: fmt.Sprintf("Guest %d", 10+rand.Intn(89)),
	}
}
