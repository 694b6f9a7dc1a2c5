package ollamaLLM

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestGateway(t *testing.T, handler http.HandlerFunc) *ollamaClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return &ollamaClient{baseURL: srv.URL, httpClient: srv.Client()}
}

func TestGenerateStream_EmitsTokensUntilDone(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		enc := json.NewEncoder(w)
		require.NoError(t, enc.Encode(generateResponse{Response: "hello"}))
		require.NoError(t, enc.Encode(generateResponse{Response: " world"}))
		require.NoError(t, enc.Encode(generateResponse{Done: true}))
	})

	tokens, err := gateway.GenerateStream(context.Background(), "a prompt", "mistral")
	require.NoError(t, err)

	var answer string
	for token := range tokens {
		require.NoError(t, token.Err)
		answer += token.Text
	}
	assert.Equal(t, "hello world", answer)
}

// A cancelled turn with a full token buffer must still release the producer
// goroutine and close the channel.
func TestGenerateStream_CancelWithSlowConsumerClosesChannel(t *testing.T) {
	gateway := newTestGateway(t, func(w http.ResponseWriter, r *http.Request) {
		enc := json.NewEncoder(w)
		flusher, _ := w.(http.Flusher)
		for i := 0; i < 500; i++ {
			if err := enc.Encode(generateResponse{Response: "x"}); err != nil {
				return
			}
			if flusher != nil {
				flusher.Flush()
			}
		}
		enc.Encode(generateResponse{Done: true})
	})

	ctx, cancel := context.WithCancel(context.Background())
	tokens, err := gateway.GenerateStream(ctx, "a prompt", "mistral")
	require.NoError(t, err)

	// let the producer fill the buffer, then cancel without reading
	time.Sleep(50 * time.Millisecond)
	cancel()

	deadline := time.After(2 * time.Second)
	for {
		select {
		case _, open := <-tokens:
			if !open {
				return
			}
		case <-deadline:
			t.Fatal("token channel never closed after cancellation")
		}
	}
}
