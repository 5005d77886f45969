package music

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-music/internal/state"
)

func addLibraryTrack(t *testing.T, srv *Server, tr state.Track) state.Track {
	t.Helper()
	var created state.Track
	rec := doRequest(t, srv, http.MethodPost, "/library", tr, &created)
	require.Equal(t, http.StatusCreated, rec.Code)
	return created
}

func createPlaylist(t *testing.T, srv *Server, title string) state.Playlist {
	t.Helper()
	var resp struct {
		Playlist state.Playlist `json:"playlist"`
	}
	rec := doRequest(t, srv, http.MethodPost, "/playlists", map[string]string{"title": title}, &resp)
	require.Equal(t, http.StatusCreated, rec.Code)
	return resp.Playlist
}

func TestAddLibraryTrack(t *testing.T) {
	srv, _ := newTestServer(t)

	created := addLibraryTrack(t, srv, state.Track{
		Title:  "  Intro  ",
		Artist: "Demo",
		URL:    "https://example.com/intro.mp3",
	})

	assert.NotEmpty(t, created.ID, "server assigns an id when none is given")
	assert.Equal(t, "Intro", created.Title)

	var lib []state.Track
	doRequest(t, srv, http.MethodGet, "/library", nil, &lib)
	require.Len(t, lib, 1)
	assert.Equal(t, created.ID, lib[0].ID)
}

func TestAddLibraryTrack_MissingURL(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/library", state.Track{Title: "x"}, nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestAddLibraryTrack_SameIDOverwrites(t *testing.T) {
	srv, _ := newTestServer(t)

	addLibraryTrack(t, srv, state.Track{ID: "t1", Title: "Old", URL: "https://example.com/a.mp3"})
	addLibraryTrack(t, srv, state.Track{ID: "t1", Title: "New", URL: "https://example.com/b.mp3"})

	var lib []state.Track
	doRequest(t, srv, http.MethodGet, "/library", nil, &lib)
	require.Len(t, lib, 1)
	assert.Equal(t, "New", lib[0].Title)
}

func TestAddTrackToPlaylist(t *testing.T) {
	srv, _ := newTestServer(t)

	tr := addLibraryTrack(t, srv, state.Track{ID: "t1", Title: "A", URL: "https://example.com/a.mp3"})
	pl := createPlaylist(t, srv, "Gym")

	var resp struct {
		State state.State `json:"state"`
	}
	rec := doRequest(t, srv, http.MethodPost, "/playlists/"+pl.ID+"/tracks", map[string]string{"trackId": tr.ID}, &resp)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{tr.ID}, resp.State.Playlists[pl.ID].TrackIDs)

	// Adding again collapses to a single reference.
	rec = doRequest(t, srv, http.MethodPost, "/playlists/"+pl.ID+"/tracks", map[string]string{"trackId": tr.ID}, &resp)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{tr.ID}, resp.State.Playlists[pl.ID].TrackIDs)
}

func TestAddTrackToPlaylist_MissingPlaylistIsNoOp(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp struct {
		State state.State `json:"state"`
	}
	rec := doRequest(t, srv, http.MethodPost, "/playlists/nope/tracks", map[string]string{"trackId": "t1"}, &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.State.Playlists)
}

func TestRemoveTrackFromPlaylist(t *testing.T) {
	srv, _ := newTestServer(t)

	tr := addLibraryTrack(t, srv, state.Track{ID: "t1", Title: "A", URL: "https://example.com/a.mp3"})
	pl := createPlaylist(t, srv, "Gym")
	doRequest(t, srv, http.MethodPost, "/playlists/"+pl.ID+"/tracks", map[string]string{"trackId": tr.ID}, nil)

	var resp struct {
		State state.State `json:"state"`
	}
	rec := doRequest(t, srv, http.MethodDelete, "/playlists/"+pl.ID+"/tracks/"+tr.ID, nil, &resp)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.State.Playlists[pl.ID].TrackIDs)
	assert.Contains(t, resp.State.Tracks, tr.ID, "track survives in the library")
}

func TestMoveTrack(t *testing.T) {
	srv, _ := newTestServer(t)

	tr := addLibraryTrack(t, srv, state.Track{ID: "t1", Title: "A", URL: "https://example.com/a.mp3"})
	gym := createPlaylist(t, srv, "Gym")
	chill := createPlaylist(t, srv, "Chill")
	doRequest(t, srv, http.MethodPost, "/playlists/"+gym.ID+"/tracks", map[string]string{"trackId": tr.ID}, nil)

	var resp struct {
		State state.State `json:"state"`
	}
	rec := doRequest(t, srv, http.MethodPost, "/playlists/"+gym.ID+"/tracks/"+tr.ID+"/move",
		map[string]string{"toPlaylistId": chill.ID}, &resp)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, resp.State.Playlists[gym.ID].TrackIDs)
	assert.Equal(t, []string{tr.ID}, resp.State.Playlists[chill.ID].TrackIDs)
}

func TestMoveTrack_MissingTarget(t *testing.T) {
	srv, _ := newTestServer(t)

	tr := addLibraryTrack(t, srv, state.Track{ID: "t1", Title: "A", URL: "https://example.com/a.mp3"})
	gym := createPlaylist(t, srv, "Gym")
	doRequest(t, srv, http.MethodPost, "/playlists/"+gym.ID+"/tracks", map[string]string{"trackId": tr.ID}, nil)

	var resp struct {
		State state.State `json:"state"`
	}
	rec := doRequest(t, srv, http.MethodPost, "/playlists/"+gym.ID+"/tracks/"+tr.ID+"/move",
		map[string]string{"toPlaylistId": "nope"}, &resp)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, []string{tr.ID}, resp.State.Playlists[gym.ID].TrackIDs, "source untouched when target is missing")
}
