// Package catalog holds the curated playlists the app ships with. They are
// read-only: users browse and play them directly, or copy one into their own
// state with the save-to-self action.
package catalog

import "mini-music/internal/state"

// Entry pairs a curated playlist with its resolved tracks.
type Entry struct {
	Playlist state.Playlist `json:"playlist"`
	Tracks   []state.Track  `json:"tracks"`
}

var entries = []Entry{
	{
		Playlist: state.Playlist{ID: "p1", Title: "Избранное", IsPublic: false, TrackIDs: []string{"t1", "t2"}},
		Tracks: []state.Track{
			{ID: "t1", Title: "Test Track 1", Artist: "Demo", URL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-1.mp3"},
			{ID: "t2", Title: "Test Track 2", Artist: "Demo", URL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-2.mp3"},
		},
	},
	{
		Playlist: state.Playlist{ID: "p2", Title: "Bass Night (из группы)", IsPublic: true, TrackIDs: []string{"t3"}},
		Tracks: []state.Track{
			{ID: "t3", Title: "Test Track 3", Artist: "Demo", URL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-3.mp3"},
		},
	},
	{
		Playlist: state.Playlist{ID: "p3", Title: "Для бега", IsPublic: true, TrackIDs: []string{"t4"}},
		Tracks: []state.Track{
			{ID: "t4", Title: "Test Track 4", Artist: "Demo", URL: "https://www.soundhelix.com/examples/mp3/SoundHelix-Song-4.mp3"},
		},
	},
}

// List returns all curated entries in display order.
func List() []Entry {
	out := make([]Entry, len(entries))
	copy(out, entries)
	return out
}

// Lookup finds a curated entry by playlist id.
func Lookup(id string) (Entry, bool) {
	for _, e := range entries {
		if e.Playlist.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}
