package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"runtime"
	"testing"
	"time"

	"minima-be/pkg/llm"
)

func streamLine(content string, done bool) string {
	return fmt.Sprintf("{\"message\":{\"content\":%q},\"done\":%t}\n", content, done)
}

func TestChatStreamDeliversChunks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, streamLine("Hello ", false))
		fmt.Fprint(w, streamLine("world", false))
		fmt.Fprint(w, streamLine("", true))
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "test-model")
	stream, err := provider.ChatStream(context.Background(), []llm.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	var got string
	for d := range stream {
		if d.Err != nil {
			t.Fatalf("unexpected delta error: %v", d.Err)
		}
		got += d.Content
	}
	if got != "Hello world" {
		t.Fatalf("streamed text = %q, want %q", got, "Hello world")
	}
}

func TestChatStreamCancelReleasesGoroutine(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fl, ok := w.(http.Flusher)
		if !ok {
			t.Error("response writer is not a flusher")
			return
		}
		fmt.Fprint(w, streamLine("Hello", false))
		fl.Flush()
		// hold the stream open until the client goes away
		<-r.Context().Done()
	}))
	defer srv.Close()

	provider := NewOllamaProvider(srv.URL, "test-model")
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	before := runtime.NumGoroutine()
	stream, err := provider.ChatStream(ctx, []llm.Message{{Role: "user", Content: "hi"}})
	if err != nil {
		t.Fatalf("ChatStream: %v", err)
	}

	if d := <-stream; d.Content != "Hello" {
		t.Fatalf("first delta = %+v", d)
	}

	// cancel without draining the channel, like a disconnected client
	cancel()

	deadline := time.Now().Add(2 * time.Second)
	for runtime.NumGoroutine() > before {
		if time.Now().After(deadline) {
			t.Fatalf("%d goroutines still running after cancel", runtime.NumGoroutine()-before)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestClientHasNoWholeRequestTimeout(t *testing.T) {
	provider := NewOllamaProvider("http://localhost:11434", "test-model")
	// a client-level timeout would cut streamed generations mid-body
	if provider.Client.Timeout != 0 {
		t.Fatalf("client timeout = %v, want none", provider.Client.Timeout)
	}
}
