package state

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"time"
)

// Normalize upgrades whatever was persisted into the canonical State shape.
// It never fails: malformed or absent input degrades to an empty state. The
// transform is idempotent, so it is safe to run on every load; callers are
// expected to persist the result immediately so future loads skip the
// migration work.
func Normalize(raw []byte) *State {
	if len(raw) == 0 {
		return NewState()
	}
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		log.Printf("mini-music: normalize: discarding malformed state: %v", err)
		return NewState()
	}
	return NormalizeValue(v)
}

// NormalizeValue is Normalize for already-decoded JSON values.
func NormalizeValue(v any) *State {
	obj, ok := v.(map[string]any)
	if !ok {
		return NewState()
	}

	st := NewState()

	// Library entries are track ids in the current schema generation; the
	// legacy generation stored embedded track objects instead. Objects are
	// merged into the track store (existing entries win) and collapse to
	// their id.
	if lib, ok := obj["library"].([]any); ok {
		for _, entry := range lib {
			switch e := entry.(type) {
			case string:
				st.appendLibraryID(e)
			case map[string]any:
				if tr, ok := trackFromValue(e); ok {
					st.mergeTrack(tr)
				}
			}
		}
	}

	// Legacy flat track map at the root. First-seen wins on id collisions.
	// Keys are sorted so the resulting library order is stable across runs.
	if tracks, ok := obj["tracks"].(map[string]any); ok {
		ids := make([]string, 0, len(tracks))
		for id := range tracks {
			ids = append(ids, id)
		}
		sort.Strings(ids)
		for _, id := range ids {
			cand, ok := tracks[id].(map[string]any)
			if !ok {
				continue
			}
			tr, ok := trackFromValue(cand)
			if !ok {
				continue
			}
			if tr.ID == "" {
				tr.ID = id
			}
			st.mergeTrack(tr)
		}
	}

	if playlists, ok := obj["playlists"].(map[string]any); ok {
		keys := make([]string, 0, len(playlists))
		for key := range playlists {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		for _, key := range keys {
			raw, ok := playlists[key].(map[string]any)
			if !ok {
				continue
			}
			pl := st.normalizePlaylist(key, raw)
			st.Playlists[pl.ID] = pl
		}
	}

	return st
}

// normalizePlaylist repairs a single playlist record and absorbs its legacy
// "tracks" field, which held an array of bare track-id strings and/or
// embedded track objects. Post-normalization playlists carry only trackIds.
func (s *State) normalizePlaylist(key string, raw map[string]any) Playlist {
	pl := Playlist{TrackIDs: []string{}}

	if id, ok := raw["id"].(string); ok && id != "" {
		pl.ID = id
	} else if key != "" {
		pl.ID = key
	} else {
		pl.ID = newTimeID()
	}

	if title, ok := raw["title"].(string); ok && title != "" {
		pl.Title = title
	} else {
		pl.Title = "Untitled"
	}

	if isPublic, ok := raw["isPublic"].(bool); ok {
		pl.IsPublic = isPublic
	}

	if ids, ok := raw["trackIds"].([]any); ok {
		for _, entry := range ids {
			if id, ok := entry.(string); ok {
				pl.TrackIDs = appendUnique(pl.TrackIDs, id)
			}
		}
	}

	if legacy, ok := raw["tracks"].([]any); ok {
		for _, entry := range legacy {
			switch e := entry.(type) {
			case string:
				pl.TrackIDs = appendUnique(pl.TrackIDs, e)
			case map[string]any:
				tr, ok := trackFromValue(e)
				if !ok {
					continue
				}
				s.mergeTrack(tr)
				pl.TrackIDs = appendUnique(pl.TrackIDs, tr.ID)
			}
		}
	}

	return pl
}

// mergeTrack adds a track to the store unless an entry with the same id
// already exists (existing entries take priority over incoming ones).
func (s *State) mergeTrack(tr Track) {
	if _, exists := s.Tracks[tr.ID]; !exists {
		s.Tracks[tr.ID] = tr
	}
	s.appendLibraryID(tr.ID)
}

func (s *State) appendLibraryID(id string) {
	s.Library = appendUnique(s.Library, id)
}

func appendUnique(ids []string, id string) []string {
	for _, existing := range ids {
		if existing == id {
			return ids
		}
	}
	return append(ids, id)
}

func trackFromValue(v map[string]any) (Track, bool) {
	var tr Track
	id, _ := v["id"].(string)
	if id == "" {
		return tr, false
	}
	tr.ID = id
	tr.Title, _ = v["title"].(string)
	tr.Artist, _ = v["artist"].(string)
	tr.URL, _ = v["url"].(string)
	if d, ok := v["durationSec"].(float64); ok && d > 0 {
		tr.DurationSec = d
	}
	return tr, true
}

func newTimeID() string {
	return fmt.Sprintf("pl-%d", time.Now().UnixNano())
}
