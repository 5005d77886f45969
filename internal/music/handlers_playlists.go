package music

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"

	"github.com/go-chi/chi/v5"

	"mini-music/internal/catalog"
	"mini-music/internal/state"
)

// handleCatalog lists the curated playlists. They are shared and read-only,
// so no identity is needed.
// GET /catalog
func (s *Server) handleCatalog(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, catalog.List())
}

// handleGetState returns the caller's full normalized state document.
// GET /state
func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), userID(r))
	if err != nil {
		log.Printf("mini-music: get state: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}
	writeJSON(w, http.StatusOK, sess.State())
}

// playlistView decorates a playlist with its resolved track count for list
// rendering.
type playlistView struct {
	state.Playlist
	TrackCount int `json:"trackCount"`
}

// handleListPlaylists lists the caller's own playlists.
// GET /playlists
func (s *Server) handleListPlaylists(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(r.Context(), userID(r))
	if err != nil {
		log.Printf("mini-music: list playlists: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	st := sess.State()
	playlists := make([]playlistView, 0, len(st.Playlists))
	for _, pl := range st.Playlists {
		playlists = append(playlists, playlistView{
			Playlist:   pl,
			TrackCount: len(st.PlaylistTracks(pl.ID)),
		})
	}
	sort.Slice(playlists, func(i, j int) bool {
		if playlists[i].Title != playlists[j].Title {
			return playlists[i].Title < playlists[j].Title
		}
		return playlists[i].ID < playlists[j].ID
	})

	writeJSON(w, http.StatusOK, playlists)
}

// handleCreatePlaylist creates a new private playlist.
// POST /playlists
func (s *Server) handleCreatePlaylist(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Title string `json:"title"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, err := s.sessions.Get(r.Context(), userID(r))
	if err != nil {
		log.Printf("mini-music: create playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	var created state.Playlist
	next, err := sess.Update(r.Context(), func(st *state.State) (*state.State, error) {
		out, pl, err := state.CreatePlaylist(st, body.Title)
		created = pl
		return out, err
	})
	if err != nil {
		var vErr *state.ValidationError
		if errors.As(err, &vErr) {
			writeError(w, http.StatusBadRequest, vErr.Msg)
			return
		}
		log.Printf("mini-music: create playlist update: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.publishStateChanged(sess.UserID())
	writeJSON(w, http.StatusCreated, map[string]any{
		"playlist": created,
		"state":    next,
	})
}

// handleDeletePlaylist removes a playlist. The frontend asks the user for
// confirmation through the Telegram dialog before calling this; tracks stay
// in the library either way. Deleting a missing playlist is a no-op.
// DELETE /playlists/{id}
func (s *Server) handleDeletePlaylist(w http.ResponseWriter, r *http.Request) {
	playlistID := chi.URLParam(r, "id")
	if playlistID == "" {
		writeError(w, http.StatusBadRequest, "missing playlist id")
		return
	}

	sess, err := s.sessions.Get(r.Context(), userID(r))
	if err != nil {
		log.Printf("mini-music: delete playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	_, err = sess.Update(r.Context(), func(st *state.State) (*state.State, error) {
		return state.DeletePlaylist(st, playlistID), nil
	})
	if err != nil {
		log.Printf("mini-music: delete playlist update: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.publishStateChanged(sess.UserID())
	w.WriteHeader(http.StatusNoContent)
}

// handleSavePlaylist copies a curated playlist into the caller's state
// ("save to self"). Saving twice is a silent no-op thanks to the derived
// copy id.
// POST /playlists/{id}/save
func (s *Server) handleSavePlaylist(w http.ResponseWriter, r *http.Request) {
	sourceID := chi.URLParam(r, "id")
	entry, ok := catalog.Lookup(sourceID)
	if !ok {
		writeError(w, http.StatusNotFound, "playlist not found")
		return
	}

	sess, err := s.sessions.Get(r.Context(), userID(r))
	if err != nil {
		log.Printf("mini-music: save playlist: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return
	}

	next, err := sess.Update(r.Context(), func(st *state.State) (*state.State, error) {
		return state.CopyPlaylist(st, entry.Playlist, entry.Tracks), nil
	})
	if err != nil {
		log.Printf("mini-music: save playlist update: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.publishStateChanged(sess.UserID())
	writeJSON(w, http.StatusOK, map[string]any{
		"playlist": next.Playlists[state.SavedCopyID(sourceID)],
	})
}

func (s *Server) publishStateChanged(userID string) {
	if s.hub == nil {
		return
	}
	s.hub.Publish(userID, map[string]any{
		"type": "state.changed",
	})
}
