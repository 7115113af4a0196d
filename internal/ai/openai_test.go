package ai

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseChunk(content string) string {
	return fmt.Sprintf("data: {\"choices\":[{\"delta\":{\"content\":%q}}]}\n\n", content)
}

func TestStreamDeliversChunksUntilDone(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseChunk("Hello, "))
		io.WriteString(w, sseChunk("world."))
		io.WriteString(w, "data: [DONE]\n\n")
		io.WriteString(w, sseChunk("never delivered"))
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "test-model", "")
	var got string
	err := p.Stream(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	}, func(chunk string) error {
		got += chunk
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "Hello, world.", got)
}

// A turn cancelled mid-stream must surface an error so the caller knows to
// throw away the partial output instead of committing it.
func TestStreamCancelDiscardsPartial(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseChunk("partial"))
		w.(http.Flusher).Flush()
		// Hold the stream open until the client walks away.
		select {
		case <-r.Context().Done():
		case <-time.After(5 * time.Second):
		}
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "test-model", "")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var got []string
	err := p.Stream(ctx, Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	}, func(chunk string) error {
		got = append(got, chunk)
		cancel()
		return nil
	})
	require.Error(t, err)
	assert.Equal(t, []string{"partial"}, got)
}

func TestStreamCallbackErrorAborts(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		io.WriteString(w, sseChunk("one"))
		io.WriteString(w, sseChunk("two"))
		io.WriteString(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "test-model", "")
	wantErr := fmt.Errorf("enough")
	var calls int
	err := p.Stream(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	}, func(chunk string) error {
		calls++
		return wantErr
	})
	assert.ErrorIs(t, err, wantErr)
	assert.Equal(t, 1, calls)
}

func TestStreamStatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	p := NewOpenAIProvider(srv.URL, "test-model", "")
	err := p.Stream(context.Background(), Request{
		Messages: []Message{{Role: "user", Content: "hi"}},
	}, func(string) error { return nil })

	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusTooManyRequests, se.Code)
}
