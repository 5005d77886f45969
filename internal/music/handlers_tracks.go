package music

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"mini-music/internal/state"
)

// handleListLibrary returns the shared track pool in insertion order.
// GET /library
func (s *Server) handleListLibrary(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), userID(r))
	if err != nil {
		log.Printf("mini-music: list library: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, sess.State().LibraryTracks())
}

// handleAddLibraryTrack adds (or replaces) a track in the library.
// POST /library
func (s *Server) handleAddLibraryTrack(w http.ResponseWriter, r *http.Request) {
	var body state.Track
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	body.Title = strings.TrimSpace(body.Title)
	body.Artist = strings.TrimSpace(body.Artist)
	body.URL = strings.TrimSpace(body.URL)
	if body.URL == "" {
		writeError(w, http.StatusBadRequest, "missing track url")
		return
	}
	if body.ID == "" {
		body.ID = uuid.NewString()
	}
	if body.DurationSec < 0 {
		body.DurationSec = 0
	}

	sess, err := s.sessions.Get(r.Context(), userID(r))
	if err != nil {
		log.Printf("mini-music: add library track: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	_, err = sess.Update(r.Context(), func(st *state.State) (*state.State, error) {
		return state.AddTrackToLibrary(st, body), nil
	})
	if err != nil {
		log.Printf("mini-music: add library track update: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.publishStateChanged(sess.UserID())
	writeJSON(w, http.StatusCreated, body)
}

// handleAddTrack appends a library track to a playlist. Duplicates collapse;
// a missing playlist is a silent no-op.
// POST /playlists/{id}/tracks
func (s *Server) handleAddTrack(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "id")

	var body struct {
		TrackID string `json:"trackId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.TrackID == "" {
		writeError(w, http.StatusBadRequest, "missing trackId")
		return
	}

	sess, err := s.sessions.Get(r.Context(), userID(r))
	if err != nil {
		log.Printf("mini-music: add track: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	next, err := sess.Update(r.Context(), func(st *state.State) (*state.State, error) {
		return state.AddTrackToPlaylist(st, playlistID, body.TrackID), nil
	})
	if err != nil {
		log.Printf("mini-music: add track update: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.publishStateChanged(sess.UserID())
	writeJSON(w, http.StatusOK, map[string]any{"state": next})
}

// handleRemoveTrack drops a track from a playlist's reference list; the
// track itself stays in the library.
// DELETE /playlists/{id}/tracks/{trackId}
func (s *Server) handleRemoveTrack(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "id")
	trackID := chi.URLParam(r, "trackId")

	sess, err := s.sessions.Get(r.Context(), userID(r))
	if err != nil {
		log.Printf("mini-music: remove track: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	next, err := sess.Update(r.Context(), func(st *state.State) (*state.State, error) {
		return state.RemoveTrackFromPlaylist(st, playlistID, trackID), nil
	})
	if err != nil {
		log.Printf("mini-music: remove track update: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.publishStateChanged(sess.UserID())
	writeJSON(w, http.StatusOK, map[string]any{"state": next})
}

// handleMoveTrack moves a track between two playlists in one atomic state
// transition — the long-press menu's "move to playlist" action.
// POST /playlists/{id}/tracks/{trackId}/move
func (s *Server) handleMoveTrack(w http.ResponseWriter, r *http.Request) {
	fromID := chi.URLParam(r, "id")
	trackID := chi.URLParam(r, "trackId")

	var body struct {
		ToPlaylistID string `json:"toPlaylistId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if body.ToPlaylistID == "" {
		writeError(w, http.StatusBadRequest, "missing toPlaylistId")
		return
	}

	sess, err := s.sessions.Get(r.Context(), userID(r))
	if err != nil {
		log.Printf("mini-music: move track: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	next, err := sess.Update(r.Context(), func(st *state.State) (*state.State, error) {
		return state.MoveTrack(st, fromID, body.ToPlaylistID, trackID), nil
	})
	if err != nil {
		log.Printf("mini-music: move track update: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.publishStateChanged(sess.UserID())
	writeJSON(w, http.StatusOK, map[string]any{"state": next})
}
