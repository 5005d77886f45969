package music

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"mini-music/internal/store"
	"mini-music/internal/tgauth"
)

type contextKey string

const userIDKey contextKey = "userID"

// identity resolves the caller's user id. Order: session JWT, then the
// X-User-Id header (trusted only behind a gateway), then the anonymous
// sentinel for browsers outside Telegram.
func (s *Server) identity(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		userID := s.resolveUserID(r)
		ctx := context.WithValue(r.Context(), userIDKey, userID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func (s *Server) resolveUserID(r *http.Request) string {
	if auth := r.Header.Get("Authorization"); strings.HasPrefix(auth, "Bearer ") && s.auth != nil {
		token := strings.TrimPrefix(auth, "Bearer ")
		userID, err := s.auth.ParseToken(token)
		if err == nil {
			return userID
		}
		log.Printf("mini-music: parse token: %v", err)
	}
	if userID := r.Header.Get("X-User-Id"); userID != "" {
		return userID
	}
	return store.AnonUserID
}

func userID(r *http.Request) string {
	if id, ok := r.Context().Value(userIDKey).(string); ok && id != "" {
		return id
	}
	return store.AnonUserID
}

// handleAuthTelegram exchanges Telegram WebApp init data for a session token.
// POST /auth/telegram
func (s *Server) handleAuthTelegram(w http.ResponseWriter, r *http.Request) {
	if s.auth == nil {
		writeError(w, http.StatusServiceUnavailable, "telegram auth not configured")
		return
	}

	var body struct {
		InitData string `json:"initData"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	user, err := s.auth.VerifyInitData(body.InitData, time.Now())
	if err != nil {
		if errors.Is(err, tgauth.ErrExpired) {
			writeError(w, http.StatusUnauthorized, "init data expired")
			return
		}
		writeError(w, http.StatusUnauthorized, "init data verification failed")
		return
	}

	token, err := s.auth.IssueToken(user, time.Now())
	if err != nil {
		log.Printf("mini-music: issue token: %v", err)
		writeError(w, http.StatusInternalServerError, "token error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}
