package push

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teslashibe/go-moodshell/internal/httpc"
)

func newTestRegistrar(t *testing.T, url string) (*Registrar, *[]time.Duration) {
	t.Helper()
	r := NewRegistrar(Config{
		Endpoint:  url,
		UserID:    "42",
		AuthToken: "tok",
		Platform:  "ios",
	}, nil)

	var delays []time.Duration
	r.sleep = func(ctx context.Context, d time.Duration) error {
		delays = append(delays, d)
		return ctx.Err()
	}
	return r, &delays
}

func TestBackoff(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{0, time.Second},
		{1, time.Second},
		{2, 2 * time.Second},
		{3, 4 * time.Second},
		{4, 8 * time.Second},
		{5, 10 * time.Second},
		{60, 10 * time.Second},
	}

	for _, tt := range tests {
		if got := Backoff(tt.attempt, time.Second, 10*time.Second); got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestRegisterSuccess(t *testing.T) {
	var got Registration
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
	}))
	defer srv.Close()

	r, delays := newTestRegistrar(t, srv.URL)
	require.NoError(t, r.Register(context.Background(), "ExponentPushToken[abc]"))

	assert.Equal(t, "42", got.UserID)
	assert.Equal(t, "ios", got.Platform)
	assert.Equal(t, "ExponentPushToken[abc]", got.PushToken)
	assert.Nil(t, got.HasPermission)
	assert.Empty(t, *delays)
}

func TestRegisterWithoutPermission(t *testing.T) {
	var body map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&body)
	}))
	defer srv.Close()

	r, _ := newTestRegistrar(t, srv.URL)
	require.NoError(t, r.Register(context.Background(), ""))

	assert.Equal(t, false, body["hasPermission"])
	assert.NotContains(t, body, "pushToken")
}

func TestRegisterRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
	}))
	defer srv.Close()

	r, delays := newTestRegistrar(t, srv.URL)
	require.NoError(t, r.Register(context.Background(), "tok"))

	assert.Equal(t, int32(3), calls.Load())
	assert.Equal(t, []time.Duration{time.Second, 2 * time.Second}, *delays)
}

func TestRegisterGivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	r, delays := newTestRegistrar(t, srv.URL)
	err := r.Register(context.Background(), "tok")

	require.Error(t, err)
	var se *httpc.StatusError
	assert.True(t, errors.As(err, &se))
	assert.Equal(t, int32(DefaultMaxAttempts), calls.Load())
	assert.Len(t, *delays, DefaultMaxAttempts-1)
}

func TestRegisterClientErrorNoRetry(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer srv.Close()

	r, delays := newTestRegistrar(t, srv.URL)
	err := r.Register(context.Background(), "tok")

	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
	assert.Empty(t, *delays)
}

func TestRegisterTransportErrorRetries(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	r, delays := newTestRegistrar(t, url)
	require.Error(t, r.Register(context.Background(), "tok"))
	assert.Len(t, *delays, DefaultMaxAttempts-1)
}

func TestRegisterCanceledDuringBackoff(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	r, _ := newTestRegistrar(t, srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	r.sleep = func(context.Context, time.Duration) error {
		cancel()
		return context.Canceled
	}

	assert.ErrorIs(t, r.Register(ctx, "tok"), context.Canceled)
}

func TestUnregister(t *testing.T) {
	var got Registration
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
	}))
	defer srv.Close()

	r, _ := newTestRegistrar(t, srv.URL)
	require.NoError(t, r.Unregister(context.Background()))
	assert.True(t, got.Remove)
	assert.Empty(t, got.PushToken)
}

func TestMissingParams(t *testing.T) {
	r := NewRegistrar(Config{Endpoint: "http://example.invalid"}, nil)
	assert.ErrorIs(t, r.Register(context.Background(), "tok"), ErrMissingParams)
}

func TestSleepCtx(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleepCtx(ctx, time.Hour), context.Canceled)
	assert.NoError(t, sleepCtx(context.Background(), time.Millisecond))
}
