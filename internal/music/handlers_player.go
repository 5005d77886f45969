package music

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/gorilla/websocket"

	"mini-music/internal/catalog"
	"mini-music/internal/player"
	"mini-music/internal/realtime"
	"mini-music/internal/session"
	"mini-music/internal/state"
)

var upgrader = websocket.Upgrader{
	// The mini-app is served from the Telegram webview; origin filtering
	// happens at the gateway.
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// handleWS opens the event feed carrying player commands and state-change
// notifications for the caller.
// GET /ws?token=...
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		writeError(w, http.StatusServiceUnavailable, "events not configured")
		return
	}

	// Browsers cannot set headers on websocket dials, so the session token
	// rides in the query string.
	uid := ""
	if token := r.URL.Query().Get("token"); token != "" && s.auth != nil {
		parsed, err := s.auth.ParseToken(token)
		if err != nil {
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		uid = parsed
	}
	if uid == "" {
		uid = s.resolveUserID(r)
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("mini-music: ws upgrade: %v", err)
		return
	}
	realtime.NewClient(s.hub, conn, uid).Start()
}

func (s *Server) playerSession(w http.ResponseWriter, r *http.Request) (*session.Session, bool) {
	sess, err := s.sessions.Get(r.Context(), userID(r))
	if err != nil {
		log.Printf("mini-music: player session: %v", err)
		writeError(w, http.StatusInternalServerError, "storage error")
		return nil, false
	}
	return sess, true
}

// handlePlayerStatus returns the mirrored transport state.
// GET /player
func (s *Server) handlePlayerStatus(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.playerSession(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Player().Status())
}

// handleStartQueue snapshots a track source into the play queue and starts
// at the requested index. Sources: a user playlist, the library, a curated
// catalog playlist, or a single track.
// POST /player/queue
func (s *Server) handleStartQueue(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Source string `json:"source"` // "playlist" | "library" | "catalog" | "track"
		ID     string `json:"id"`
		Index  int    `json:"index"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, ok := s.playerSession(w, r)
	if !ok {
		return
	}

	var tracks []state.Track
	switch body.Source {
	case "playlist":
		tracks = sess.State().PlaylistTracks(body.ID)
	case "library":
		tracks = sess.State().LibraryTracks()
	case "catalog":
		entry, found := catalog.Lookup(body.ID)
		if !found {
			writeError(w, http.StatusNotFound, "playlist not found")
			return
		}
		tracks = entry.Tracks
	case "track":
		if tr, found := sess.State().Tracks[body.ID]; found {
			tracks = []state.Track{tr}
		}
	default:
		writeError(w, http.StatusBadRequest, "invalid source")
		return
	}

	if err := sess.Player().StartQueue(tracks, body.Index); err != nil {
		if errors.Is(err, player.ErrIndexOutOfRange) {
			writeError(w, http.StatusBadRequest, "index out of range")
			return
		}
		log.Printf("mini-music: start queue: %v", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.publishPlayerState(sess)
	writeJSON(w, http.StatusOK, sess.Player().Status())
}

// POST /player/toggle
func (s *Server) handleTogglePlay(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.playerSession(w, r)
	if !ok {
		return
	}
	sess.Player().TogglePlay()
	writeJSON(w, http.StatusOK, sess.Player().Status())
}

// POST /player/next
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.playerSession(w, r)
	if !ok {
		return
	}
	sess.Player().Next()
	s.publishPlayerState(sess)
	writeJSON(w, http.StatusOK, sess.Player().Status())
}

// POST /player/prev
func (s *Server) handlePrev(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.playerSession(w, r)
	if !ok {
		return
	}
	sess.Player().Prev()
	s.publishPlayerState(sess)
	writeJSON(w, http.StatusOK, sess.Player().Status())
}

// POST /player/seek
func (s *Server) handleSeek(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Ratio float64 `json:"ratio"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, ok := s.playerSession(w, r)
	if !ok {
		return
	}
	sess.Player().Seek(body.Ratio)
	writeJSON(w, http.StatusOK, sess.Player().Status())
}

// POST /player/clear
func (s *Server) handleClearPlayer(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.playerSession(w, r)
	if !ok {
		return
	}
	sess.Player().Clear()
	s.publishPlayerState(sess)
	writeJSON(w, http.StatusOK, sess.Player().Status())
}

// handleMediaEvent ingests notifications from the client's audio element.
// The transport mirrors these rather than assuming command outcomes.
// POST /player/events
func (s *Server) handleMediaEvent(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Type  string  `json:"type"`
		Value float64 `json:"value"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, ok := s.playerSession(w, r)
	if !ok {
		return
	}

	p := sess.Player()
	switch body.Type {
	case "timeupdate":
		p.OnTimeUpdate(body.Value)
	case "loadedmetadata":
		p.OnMetadataLoaded(body.Value)
	case "ended":
		p.OnEnded()
		s.publishPlayerState(sess)
	case "play":
		p.OnPlay()
	case "pause":
		p.OnPause()
	default:
		writeError(w, http.StatusBadRequest, "unknown event type")
		return
	}

	writeJSON(w, http.StatusOK, p.Status())
}

func (s *Server) publishPlayerState(sess *session.Session) {
	if s.hub == nil {
		return
	}
	st := sess.Player().Status()
	s.hub.Publish(sess.UserID(), map[string]any{
		"type": "player.state_changed",
		"payload": map[string]any{
			"currentIndex": st.CurrentIndex,
			"isPlaying":    st.IsPlaying,
			"track":        st.Track,
		},
	})
}
