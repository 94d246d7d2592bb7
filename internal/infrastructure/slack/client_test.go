package slack

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const usersListBody = `{
	"ok": true,
	"members": [
		{"id": "U1", "name": "alice", "real_name": "Alice Example",
		 "profile": {"display_name": "alice-oncall", "email": "alice@example.com"}},
		{"id": "U2", "name": "bot", "is_bot": true,
		 "profile": {"display_name": "bot", "email": "bot@example.com"}},
		{"id": "U3", "name": "gone", "deleted": true,
		 "profile": {"display_name": "gone", "email": "gone@example.com"}}
	]
}`

func testSlackClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("xoxb-test", slog.New(slog.DiscardHandler), srv.URL+"/")
}

func TestClient_PostMessage(t *testing.T) {
	var gotPath string
	c := testSlackClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true, "channel": "C1", "ts": "123.456"}`))
	})

	err := c.PostMessage(context.Background(), "C1", "hello")
	require.NoError(t, err)
	assert.Equal(t, "/chat.postMessage", gotPath)
}

func TestClient_PostMessageError(t *testing.T) {
	c := testSlackClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": false, "error": "channel_not_found"}`))
	})

	err := c.PostMessage(context.Background(), "C404", "hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "channel_not_found")
}

func TestClient_UserByID(t *testing.T) {
	c := testSlackClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"ok": true, "user": {"id": "U1", "name": "alice",
			"profile": {"email": "alice@example.com"}}}`))
	})

	user, err := c.UserByID(context.Background(), "U1")
	require.NoError(t, err)
	assert.Equal(t, "U1", user.ID)
	assert.Equal(t, "alice", user.Name)
	assert.Equal(t, "alice@example.com", user.ProfileEmail)
}

func TestClient_UserByName(t *testing.T) {
	c := testSlackClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(usersListBody))
	})

	tests := []struct {
		query  string
		wantID string
	}{
		{"alice", "U1"},
		{"@alice", "U1"},
		{"ALICE-ONCALL", "U1"},
		{"Alice Example", "U1"},
	}
	for _, tt := range tests {
		user, err := c.UserByName(context.Background(), tt.query)
		require.NoError(t, err)
		require.NotNil(t, user, "query %q", tt.query)
		assert.Equal(t, tt.wantID, user.ID)
	}
}

func TestClient_UserByNameSkipsBotsAndDeleted(t *testing.T) {
	c := testSlackClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(usersListBody))
	})

	user, err := c.UserByName(context.Background(), "bot")
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = c.UserByName(context.Background(), "gone")
	require.NoError(t, err)
	assert.Nil(t, user)
}
