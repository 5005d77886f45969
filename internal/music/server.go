package music

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"mini-music/internal/realtime"
	"mini-music/internal/session"
	"mini-music/internal/tgauth"
)

type Server struct {
	sessions *session.Manager
	auth     *tgauth.Authenticator
	hub      *realtime.Hub
}

// NewServer wires the API together. auth may be nil when no bot token is
// configured (local development outside Telegram); hub may be nil in tests.
func NewServer(sessions *session.Manager, auth *tgauth.Authenticator, hub *realtime.Hub) *Server {
	return &Server{
		sessions: sessions,
		auth:     auth,
		hub:      hub,
	}
}

func (s *Server) Router(middlewares ...func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	r.Get("/health", s.handleHealth)
	r.Post("/auth/telegram", s.handleAuthTelegram)
	r.Get("/catalog", s.handleCatalog)
	r.Get("/ws", s.handleWS)

	r.Group(func(r chi.Router) {
		r.Use(s.identity)

		r.Get("/state", s.handleGetState)

		r.Get("/playlists", s.handleListPlaylists)
		r.Post("/playlists", s.handleCreatePlaylist)
		r.Delete("/playlists/{id}", s.handleDeletePlaylist)
		r.Post("/playlists/{id}/save", s.handleSavePlaylist)

		r.Get("/library", s.handleListLibrary)
		r.Post("/library", s.handleAddLibraryTrack)

		r.Post("/playlists/{id}/tracks", s.handleAddTrack)
		r.Delete("/playlists/{id}/tracks/{trackId}", s.handleRemoveTrack)
		r.Post("/playlists/{id}/tracks/{trackId}/move", s.handleMoveTrack)

		// Transport & media notifications
		r.Get("/player", s.handlePlayerStatus)
		r.Post("/player/queue", s.handleStartQueue)
		r.Post("/player/toggle", s.handleTogglePlay)
		r.Post("/player/next", s.handleNext)
		r.Post("/player/prev", s.handlePrev)
		r.Post("/player/seek", s.handleSeek)
		r.Post("/player/clear", s.handleClearPlayer)
		r.Post("/player/events", s.handleMediaEvent)
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "mini-music",
	})
}
