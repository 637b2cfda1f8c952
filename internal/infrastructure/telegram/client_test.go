package telegram

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	jsoniter "github.com/json-iterator/go"
	"github.com/playforge/arcade-api/internal/platform/logging"
	"github.com/playforge/arcade-api/internal/usecase"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, baseURL string, failureThreshold int) *Client {
	t.Helper()

	return NewClient(ClientConfig{
		BaseURL:          baseURL,
		Token:            "bot-secret",
		Timeout:          2 * time.Second,
		Logger:           logging.NewNop(),
		FailureThreshold: failureThreshold,
		OpenTimeout:      time.Minute,
		HalfOpenMaxReq:   1,
	})
}

func TestClientSendMessage_PostsChatIDAndText(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/botbot-secret/sendMessage", r.URL.Path)

		var req map[string]string
		require.NoError(t, jsoniter.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "100", req["chat_id"])
		require.Equal(t, "season is closing soon", req["text"])

		w.Header().Set("Content-Type", "application/json")
		_ = jsoniter.NewEncoder(w).Encode(map[string]any{"ok": true})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 5)

	err := client.SendMessage(context.Background(), "100", "season is closing soon")
	require.NoError(t, err)
}

func TestClientSendMessage_RequiresChatID(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "http://127.0.0.1:0", 5)

	err := client.SendMessage(context.Background(), "   ", "hello")
	require.ErrorIs(t, err, usecase.ErrInvalidInput)
}

func TestClientSendMessage_APIRejectionDoesNotTripBreaker(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = jsoniter.NewEncoder(w).Encode(map[string]any{
			"ok":          false,
			"description": "chat not found",
		})
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 1)

	err := client.SendMessage(context.Background(), "404", "hello")
	require.ErrorContains(t, err, "sendMessage rejected: chat not found")

	// A business rejection is not a transport failure, so the next call must
	// still go through even with a threshold of one.
	err = client.SendMessage(context.Background(), "404", "hello")
	require.Error(t, err)
	require.NotErrorIs(t, err, usecase.ErrDependencyUnavailable)
}

func TestClientSendMessage_ServerErrorsOpenBreaker(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL, 2)

	require.Error(t, client.SendMessage(context.Background(), "100", "a"))
	require.Error(t, client.SendMessage(context.Background(), "100", "b"))

	err := client.SendMessage(context.Background(), "100", "c")
	require.ErrorIs(t, err, usecase.ErrDependencyUnavailable)
	require.Equal(t, int32(2), calls.Load(), "open breaker must short-circuit before the transport")
}

func TestClientRedact_StripsToken(t *testing.T) {
	t.Parallel()

	client := newTestClient(t, "http://127.0.0.1:0", 5)

	got := client.redact(`Post "http://host/botbot-secret/sendMessage": dial tcp: refused`)
	require.NotContains(t, got, "bot-secret")
	require.Contains(t, got, "REDACTED")
}
