package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/sixhats/backend/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(url string) *Client {
	cfg := config.Default()
	cfg.LLM.APIURL = url
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.Model = "test-model"
	return NewClient(cfg)
}

func TestNewClient(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIURL = "https://api.example.com/v1/"
	cfg.LLM.APIKey = "test-key"
	cfg.LLM.MaxTokens = 2000

	client := NewClient(cfg)

	assert.Equal(t, "https://api.example.com/v1", client.BaseURL)
	assert.Equal(t, "https://api.example.com/v1/chat/completions", client.endpoint())
	assert.Equal(t, 2000, client.MaxTokens)
	assert.InDelta(t, 0.3, client.Temperature, 0.0001)
	require.NotNil(t, client.Client)

	client.BaseURL = "https://infer.example.com/v1/chat/completions"
	assert.Equal(t, "https://infer.example.com/v1/chat/completions", client.endpoint())
}

func TestClientCompleteChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		require.Len(t, req.Messages, 2)
		assert.Equal(t, "system", req.Messages[0].Role)
		assert.Equal(t, "be blue", req.Messages[0].Content)
		assert.Equal(t, "user", req.Messages[1].Role)

		_, _ = w.Write([]byte(`{"choices":[{"index":0,"message":{"role":"assistant","content":"  ## Blue Hat Summary\n"}}]}`))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).Complete(context.Background(), "be blue", "doc")
	require.NoError(t, err)
	assert.Equal(t, "## Blue Hat Summary", text)
}

func TestClientCompleteGeneratedText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"generated_text":"plain output"}`))
	}))
	defer server.Close()

	text, err := newTestClient(server.URL).Complete(context.Background(), "s", "u")
	require.NoError(t, err)
	assert.Equal(t, "plain output", text)
}

func TestClientCompleteErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{
			name:   "rate limited",
			status: http.StatusTooManyRequests,
			body:   `{"error":{"message":"slow down"}}`,
			check: func(t *testing.T, err error) {
				var apiErr *APIError
				require.True(t, errors.As(err, &apiErr))
				assert.Equal(t, http.StatusTooManyRequests, apiErr.StatusCode)
				assert.True(t, IsRateLimited(err))
			},
		},
		{
			name:   "server error",
			status: http.StatusBadGateway,
			body:   `bad gateway`,
			check: func(t *testing.T, err error) {
				assert.EqualError(t, err, "model API returned HTTP 502")
				assert.False(t, IsRateLimited(err))
			},
		},
		{
			name:   "malformed json",
			status: http.StatusOK,
			body:   `not json`,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrMalformedResponse))
			},
		},
		{
			name:   "unknown shape",
			status: http.StatusOK,
			body:   `{"id":"x"}`,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrMalformedResponse))
			},
		},
		{
			name:   "empty content",
			status: http.StatusOK,
			body:   `{"choices":[{"message":{"content":"   "}}]}`,
			check: func(t *testing.T, err error) {
				assert.True(t, errors.Is(err, ErrEmptyResponse))
			},
		},
		{
			name:   "api error payload",
			status: http.StatusOK,
			body:   `{"error":{"message":"model overloaded"}}`,
			check: func(t *testing.T, err error) {
				assert.Contains(t, err.Error(), "model overloaded")
				assert.True(t, errors.Is(err, ErrAPIErrorPayload))
				assert.False(t, IsRateLimited(err))
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Complete(context.Background(), "s", "u")
			require.Error(t, err)
			tt.check(t, err)
		})
	}
}

func TestClientCompleteHonorsContext(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer server.Close()
	defer close(release)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := newTestClient(server.URL).Complete(ctx, "s", "u")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestNewCompleter(t *testing.T) {
	cfg := config.Default()
	cfg.LLM.APIKey = "k"

	c, err := NewCompleter(cfg)
	require.NoError(t, err)
	_, ok := c.(*Client)
	assert.True(t, ok)

	cfg.LLM.Provider = "unknown"
	_, err = NewCompleter(cfg)
	assert.Error(t, err)
}

func TestIsRateLimitedFromMessage(t *testing.T) {
	assert.False(t, IsRateLimited(nil))
	assert.True(t, IsRateLimited(errors.New("error, status code: 429, message: Rate limit reached")))
	assert.True(t, IsRateLimited(fmt.Errorf("generate: %w", errors.New("Too Many Requests"))))
	assert.False(t, IsRateLimited(errors.New("connection reset by peer")))
	assert.False(t, IsRateLimited(&APIError{StatusCode: http.StatusInternalServerError, Body: "rate limit"}))
}

func TestIsRateLimitedIgnoresTransportErrors(t *testing.T) {
	// 端口号中含有 429 的连接失败不是限流
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := listener.Addr().String()
	require.NoError(t, listener.Close())

	client := newTestClient("http://" + addr + "/v1")
	_, err = client.Complete(context.Background(), "s", "u")
	require.Error(t, err)
	assert.False(t, IsRateLimited(err))

	dialErr := fmt.Errorf("request failed: %w", &url.Error{
		Op:  "Post",
		URL: "http://127.0.0.1:42900/v1/chat/completions",
		Err: &net.OpError{Op: "dial", Net: "tcp", Err: errors.New("connect: connection refused")},
	})
	assert.False(t, IsRateLimited(dialErr))

	assert.False(t, IsRateLimited(errors.New("model gemma-429b not found")))
	assert.True(t, IsRateLimited(errors.New("error, status code: 429, status: 429 Too Many Requests")))
	assert.True(t, IsRateLimited(errors.New("upstream returned HTTP 429")))
}
