package httpc

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostSendsBody(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		got = string(data)
	}))
	defer srv.Close()

	resp, err := Post(srv.URL, "text/plain", []byte("hello"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, "hello", got)
}

func TestPostJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var in map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&in))
		json.NewEncoder(w).Encode(map[string]string{"echo": in["name"]})
	}))
	defer srv.Close()

	var out map[string]string
	err := PostJSON(context.Background(), nil, srv.URL, map[string]string{"Authorization": "Bearer tok"},
		map[string]string{"name": "moodshell"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "moodshell", out["echo"])
}

func TestPostJSONStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusBadGateway)
	}))
	defer srv.Close()

	err := PostJSON(context.Background(), srv.Client(), srv.URL, nil, struct{}{}, nil)

	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusBadGateway, se.StatusCode)
	assert.Equal(t, "boom", se.Body)
	assert.True(t, se.Temporary())
}

func TestPostJSONEmptyResponse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	var out map[string]any
	assert.NoError(t, PostJSON(context.Background(), nil, srv.URL, nil, struct{}{}, &out))
}

func TestPostJSONCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := PostJSON(ctx, nil, "http://127.0.0.1:1", nil, struct{}{}, nil)
	assert.ErrorIs(t, err, context.Canceled)
}
