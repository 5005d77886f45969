package state

import (
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
)

const maxPlaylistTitleLen = 40

// savedPrefix derives the synthetic id for playlists copied from the curated
// catalog, so "already saved" detection stays idempotent.
const savedPrefix = "saved-"

// ValidationError reports user input that was rejected before any state
// change. The message is safe to show to the user.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string {
	return e.Msg
}

// All mutations below are pure: they take a state, return a new state, and
// never modify the input. Operations on missing playlists or tracks return
// the input state unchanged rather than erroring.

// CreatePlaylist inserts a new private playlist with a fresh id and no
// tracks. The title is trimmed and must be non-empty and at most 40
// characters.
func CreatePlaylist(s *State, title string) (*State, Playlist, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return s, Playlist{}, &ValidationError{Msg: "playlist title must not be empty"}
	}
	if utf8.RuneCountInString(title) > maxPlaylistTitleLen {
		return s, Playlist{}, &ValidationError{Msg: "playlist title must be at most 40 characters"}
	}

	pl := Playlist{
		ID:       uuid.NewString(),
		Title:    title,
		IsPublic: false,
		TrackIDs: []string{},
	}

	out := s.Clone()
	out.Playlists[pl.ID] = pl
	return out, pl, nil
}

// DeletePlaylist removes a playlist entry. Tracks referenced by it stay in
// the library.
func DeletePlaylist(s *State, playlistID string) *State {
	if _, ok := s.Playlists[playlistID]; !ok {
		return s
	}
	out := s.Clone()
	delete(out.Playlists, playlistID)
	return out
}

// AddTrackToLibrary inserts a track into the store, overwriting any entry
// with the same id. New ids are appended to the library order.
func AddTrackToLibrary(s *State, tr Track) *State {
	out := s.Clone()
	out.Tracks[tr.ID] = tr
	out.appendLibraryID(tr.ID)
	return out
}

// AddTrackToPlaylist appends a track id to a playlist unless it is already
// present.
func AddTrackToPlaylist(s *State, playlistID, trackID string) *State {
	pl, ok := s.Playlists[playlistID]
	if !ok {
		return s
	}
	if containsID(pl.TrackIDs, trackID) {
		return s
	}
	out := s.Clone()
	pl = out.Playlists[playlistID]
	pl.TrackIDs = append(pl.TrackIDs, trackID)
	out.Playlists[playlistID] = pl
	return out
}

// RemoveTrackFromPlaylist drops a track id from a playlist's reference list.
// The track store is untouched.
func RemoveTrackFromPlaylist(s *State, playlistID, trackID string) *State {
	pl, ok := s.Playlists[playlistID]
	if !ok {
		return s
	}
	if !containsID(pl.TrackIDs, trackID) {
		return s
	}
	out := s.Clone()
	pl = out.Playlists[playlistID]
	pl.TrackIDs = removeID(pl.TrackIDs, trackID)
	out.Playlists[playlistID] = pl
	return out
}

// MoveTrack removes a track id from one playlist and unions it into another
// as a single state transition, so no intermediate state with the track in
// both or neither playlist is ever observable.
func MoveTrack(s *State, fromID, toID, trackID string) *State {
	from, okFrom := s.Playlists[fromID]
	to, okTo := s.Playlists[toID]
	if !okFrom || !okTo {
		return s
	}

	out := s.Clone()
	from = out.Playlists[fromID]
	from.TrackIDs = removeID(from.TrackIDs, trackID)
	out.Playlists[fromID] = from

	to = out.Playlists[toID]
	if !containsID(to.TrackIDs, trackID) {
		to.TrackIDs = append(to.TrackIDs, trackID)
	}
	out.Playlists[toID] = to
	return out
}

// SavedCopyID returns the synthetic playlist id a catalog copy is stored
// under.
func SavedCopyID(sourceID string) string {
	return savedPrefix + sourceID
}

// CopyPlaylist clones an external (curated) playlist into the user's state
// under a synthetic id derived from the source id. Its tracks are copied into
// the track store. If a copy with that id already exists the operation
// silently no-ops, so saving twice never creates a duplicate.
func CopyPlaylist(s *State, src Playlist, tracks []Track) *State {
	copyID := SavedCopyID(src.ID)
	if _, exists := s.Playlists[copyID]; exists {
		return s
	}

	out := s.Clone()
	ids := make([]string, 0, len(tracks))
	for _, tr := range tracks {
		out.Tracks[tr.ID] = tr
		out.appendLibraryID(tr.ID)
		ids = appendUnique(ids, tr.ID)
	}
	out.Playlists[copyID] = Playlist{
		ID:       copyID,
		Title:    src.Title,
		IsPublic: false,
		TrackIDs: ids,
	}
	return out
}

func containsID(ids []string, id string) bool {
	for _, existing := range ids {
		if existing == id {
			return true
		}
	}
	return false
}

func removeID(ids []string, id string) []string {
	out := ids[:0:0]
	for _, existing := range ids {
		if existing != id {
			out = append(out, existing)
		}
	}
	return out
}
