package mood

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientCreate(t *testing.T) {
	var got Entry
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, MoodsPath, r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		assert.NotEmpty(t, r.Header.Get("X-Request-ID"))

		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]any{"id": 17, "mood_score": got.MoodScore})
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/", "tok", srv.Client())
	created, err := c.Create(context.Background(), NewManualEntry(8, "good day"))

	require.NoError(t, err)
	assert.Equal(t, float64(17), created.ID)
	assert.Equal(t, 8, created.MoodScore)
	assert.Equal(t, 8, got.MoodScore)
	require.NotNil(t, got.Note)
	assert.Equal(t, "good day", *got.Note)
}

func TestClientCreateNoToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		w.Write([]byte(`{"id":"abc"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "", nil)
	_, err := c.Create(context.Background(), NewManualEntry(5, ""))
	require.NoError(t, err)

	c.SetToken("later")
	assert.Equal(t, "later", c.Token())
}

func TestClientCreateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"message":"mood_score is required"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", srv.Client())
	_, err := c.Create(context.Background(), NewManualEntry(5, ""))

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, http.StatusUnprocessableEntity, apiErr.StatusCode)
	assert.Equal(t, "mood_score is required", apiErr.Message)
}

func TestClientCreateRejectsInvalidEntry(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "tok", srv.Client())
	_, err := c.Create(context.Background(), NewManualEntry(42, ""))

	assert.ErrorIs(t, err, ErrInvalidScore)
	assert.False(t, called)
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "bad", errorMessage(`{"message":"bad"}`))
	assert.Equal(t, "nope", errorMessage(`{"error":"nope"}`))
	assert.Equal(t, "plain text", errorMessage("plain text"))
}
