package completion

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"chatd/pkg/config"
	"chatd/pkg/models"
)

func history(texts ...string) []models.Message {
	msgs := make([]models.Message, 0, len(texts))
	role := models.RoleUser
	for _, tx := range texts {
		msgs = append(msgs, models.Message{Role: role, Content: tx, CreatedAt: time.Now().UTC()})
		if role == models.RoleUser {
			role = models.RoleAssistant
		} else {
			role = models.RoleUser
		}
	}
	return msgs
}

func TestCompleteNotConfigured(t *testing.T) {
	c := NewOpenAI(config.CompletionConfig{})

	_, err := c.Complete(context.Background(), history("hello"))
	ce, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, KindNotConfigured, ce.Kind)
}

func TestCompleteSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/chat/completions", r.URL.Path)
		require.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"  hi there  "}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(config.CompletionConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	reply, err := c.Complete(context.Background(), history("hello"))
	require.NoError(t, err)
	require.Equal(t, "hi there", reply)
}

func TestCompleteProviderRejected(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"rate limited","type":"requests"}}`))
	}))
	defer srv.Close()

	c := NewOpenAI(config.CompletionConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
	_, err := c.Complete(context.Background(), history("hello"))
	ce, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, KindProviderRejected, ce.Kind)
}

func TestCompleteMalformedResponse(t *testing.T) {
	cases := map[string]string{
		"no choices":    `{"choices":[]}`,
		"empty content": `{"choices":[{"message":{"role":"assistant","content":"   "}}]}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(body))
			}))
			defer srv.Close()

			c := NewOpenAI(config.CompletionConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1"})
			_, err := c.Complete(context.Background(), history("hello"))
			ce, ok := AsError(err)
			require.True(t, ok)
			require.Equal(t, KindMalformedResponse, ce.Kind)
		})
	}
}

func TestCompleteTransportFailure(t *testing.T) {
	c := NewOpenAI(config.CompletionConfig{
		APIKey:  "test-key",
		BaseURL: "http://127.0.0.1:1/v1",
		Timeout: config.Duration(time.Second),
	})
	_, err := c.Complete(context.Background(), history("hello"))
	ce, ok := AsError(err)
	require.True(t, ok)
	require.Equal(t, KindTransport, ce.Kind)
}

func TestCompleteSendsFullHistory(t *testing.T) {
	var gotBody []byte
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotBody, _ = io.ReadAll(r.Body)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"ok"}}]}`))
	}))
	defer srv.Close()

	c := NewOpenAI(config.CompletionConfig{APIKey: "test-key", BaseURL: srv.URL + "/v1", Model: "gpt-4o-mini"})
	_, err := c.Complete(context.Background(), history("q1", "a1", "q2"))
	require.NoError(t, err)
	require.Contains(t, string(gotBody), `"q1"`)
	require.Contains(t, string(gotBody), `"a1"`)
	require.Contains(t, string(gotBody), `"q2"`)
	require.Contains(t, string(gotBody), `"gpt-4o-mini"`)
}
