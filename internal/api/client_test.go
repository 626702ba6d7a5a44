package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"main/internal/session"
	"main/pkg/exception"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *session.Store) {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	sess := session.NewMemory()
	client := New(sess, Option{BaseURL: server.URL, Timeout: 2 * time.Second})
	return client, sess
}

func TestLoginStoresSession(t *testing.T) {
	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/v1/users/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "chef", req.Username)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"code": 200,
			"msg":  "ok",
			"data": map[string]any{
				"token": "jwt-abc",
				"user":  map[string]any{"id": 7, "username": "chef", "role": "user"},
			},
		})
	})

	result, err := client.Login(context.Background(), LoginRequest{Username: "chef", Password: "secret"})
	require.NoError(t, err)
	assert.Equal(t, "jwt-abc", result.Token)
	assert.Equal(t, "jwt-abc", sess.Token())
	require.NotNil(t, sess.User())
	assert.Equal(t, int64(7), sess.User().ID)
}

func TestBearerHeaderInjected(t *testing.T) {
	var gotAuth string
	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 200})
	})
	sess.SetToken("jwt-abc")

	_, err := client.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Bearer jwt-abc", gotAuth)
}

func TestNoHeaderWhenLoggedOut(t *testing.T) {
	var gotAuth string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 200})
	})

	_, err := client.Profile(context.Background())
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestUnauthorizedClearsSession(t *testing.T) {
	client, sess := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	})
	sess.SetToken("stale")
	sess.SetUser(&session.User{ID: 1})

	_, err := client.Profile(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrUnauthorized))
	assert.Empty(t, sess.Token())
	assert.Nil(t, sess.User())
}

func TestRejectedEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"code": 40001, "msg": "duplicate username"})
	})

	err := client.Register(context.Background(), RegisterRequest{Username: "chef"})
	require.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrRequestRejected))
	assert.Contains(t, err.Error(), "duplicate username")
}

func TestMalformedEnvelope(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html>gateway error</html>"))
	})

	_, err := client.Profile(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, exception.ErrBadEnvelope))
}

func TestPageValues(t *testing.T) {
	testCases := []struct {
		desc     string
		page     Page
		expected string
	}{
		{"both set", Page{Page: 2, Size: 10}, "page=2&size=10"},
		{"zero values omitted", Page{}, ""},
		{"page only", Page{Page: 3}, "page=3"},
	}

	for _, tc := range testCases {
		t.Run(tc.desc, func(t *testing.T) {
			if got := tc.page.values().Encode(); got != tc.expected {
				t.Fatalf("query mismatch! should be %q but got %q", tc.expected, got)
			}
		})
	}
}
