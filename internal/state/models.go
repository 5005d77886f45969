package state

// Track is a single entry in the shared library. Tracks are immutable once
// stored (bulk replace aside) and are never deleted by playlist edits.
type Track struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Artist      string  `json:"artist"`
	DurationSec float64 `json:"durationSec"`
	URL         string  `json:"url"`
}

// Playlist is a named, ordered, deduplicated reference list into the library.
// TrackIDs may contain dangling references; readers filter them out.
type Playlist struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	IsPublic bool     `json:"isPublic"`
	TrackIDs []string `json:"trackIds"`
}

// State is the root persisted object for one user. Library holds track ids in
// store insertion order; Tracks is the id-keyed track store; Playlists is
// keyed by playlist id.
type State struct {
	Library   []string            `json:"library"`
	Tracks    map[string]Track    `json:"tracks"`
	Playlists map[string]Playlist `json:"playlists"`
}

// NewState returns the default empty state.
func NewState() *State {
	return &State{
		Library:   []string{},
		Tracks:    map[string]Track{},
		Playlists: map[string]Playlist{},
	}
}

// Clone returns a deep copy. Mutations operate on clones so callers never
// observe a partially updated state.
func (s *State) Clone() *State {
	out := &State{
		Library:   make([]string, len(s.Library)),
		Tracks:    make(map[string]Track, len(s.Tracks)),
		Playlists: make(map[string]Playlist, len(s.Playlists)),
	}
	copy(out.Library, s.Library)
	for id, tr := range s.Tracks {
		out.Tracks[id] = tr
	}
	for id, pl := range s.Playlists {
		ids := make([]string, len(pl.TrackIDs))
		copy(ids, pl.TrackIDs)
		pl.TrackIDs = ids
		out.Playlists[id] = pl
	}
	return out
}

// LibraryTracks resolves the library order against the track store, skipping
// dangling ids.
func (s *State) LibraryTracks() []Track {
	tracks := make([]Track, 0, len(s.Library))
	for _, id := range s.Library {
		if tr, ok := s.Tracks[id]; ok {
			tracks = append(tracks, tr)
		}
	}
	return tracks
}

// PlaylistTracks resolves a playlist's reference list, skipping dangling ids.
// Returns nil if the playlist does not exist.
func (s *State) PlaylistTracks(playlistID string) []Track {
	pl, ok := s.Playlists[playlistID]
	if !ok {
		return nil
	}
	tracks := make([]Track, 0, len(pl.TrackIDs))
	for _, id := range pl.TrackIDs {
		if tr, ok := s.Tracks[id]; ok {
			tracks = append(tracks, tr)
		}
	}
	return tracks
}
