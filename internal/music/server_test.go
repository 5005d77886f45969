package music

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mini-music/internal/player"
	"mini-music/internal/session"
	"mini-music/internal/store"
)

// memStore is an in-memory Store for handler tests.
type memStore struct {
	mu   sync.Mutex
	data map[string][]byte
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string][]byte)}
}

func (m *memStore) Load(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.data[key]
	if !ok {
		return nil, store.ErrNotFound
	}
	return data, nil
}

func (m *memStore) Save(_ context.Context, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = append([]byte(nil), data...)
	return nil
}

// nopMedia satisfies player.Media without doing anything; handler tests only
// care about the resulting transport state.
type nopMedia struct{}

func (nopMedia) SetSource(string) {}

func (nopMedia) Unload() {}

func (nopMedia) Load() {}

func (nopMedia) Play() error { return nil }

func (nopMedia) Pause() {}

func (nopMedia) SetCurrentTime(float64) {}

func newTestServer(t *testing.T) (*Server, *memStore) {
	t.Helper()
	ms := newMemStore()
	sessions := session.NewManager(ms, func(string) player.Media {
		return nopMedia{}
	})
	return NewServer(sessions, nil, nil), ms
}

// doRequest runs one request against a fresh router and decodes the JSON
// response into out (when out is non-nil).
func doRequest(t *testing.T, srv *Server, method, path string, body any, out any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("X-User-Id", "u1")
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	if out != nil {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), out))
	}
	return rec
}

func TestHealth(t *testing.T) {
	srv, _ := newTestServer(t)

	var resp map[string]string
	rec := doRequest(t, srv, http.MethodGet, "/health", nil, &resp)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", resp["status"])
}

func TestIdentity_AnonWithoutHeaders(t *testing.T) {
	srv, ms := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/state", nil)
	rec := httptest.NewRecorder()
	srv.Router().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	_, ok := ms.data[store.UserKey(store.AnonUserID)]
	assert.True(t, ok, "anonymous session should persist under the anon key")
}

func TestIdentity_HeaderScopesState(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/playlists", map[string]string{"title": "Mine"}, nil)
	require.Equal(t, http.StatusCreated, rec.Code)

	// A different user sees an empty playlist list.
	req := httptest.NewRequest(http.MethodGet, "/playlists", nil)
	req.Header.Set("X-User-Id", "u2")
	other := httptest.NewRecorder()
	srv.Router().ServeHTTP(other, req)

	require.Equal(t, http.StatusOK, other.Code)
	var playlists []playlistView
	require.NoError(t, json.Unmarshal(other.Body.Bytes(), &playlists))
	assert.Empty(t, playlists)
}

func TestAuthTelegram_NotConfigured(t *testing.T) {
	srv, _ := newTestServer(t)

	rec := doRequest(t, srv, http.MethodPost, "/auth/telegram", map[string]string{"initData": "x"}, nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
