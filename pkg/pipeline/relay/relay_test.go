package relay

import (
	"context"
	"errors"
	"testing"
	"time"

	"minima-be/pkg/llm"
)

// scriptedProvider replays a fixed sequence of deltas.
type scriptedProvider struct {
	deltas  []llm.Delta
	openErr error
}

func (p *scriptedProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not implemented")
}

func (p *scriptedProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "", errors.New("not implemented")
}

func (p *scriptedProvider) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (<-chan llm.Delta, error) {
	if p.openErr != nil {
		return nil, p.openErr
	}
	out := make(chan llm.Delta)
	go func() {
		defer close(out)
		for _, d := range p.deltas {
			select {
			case out <- d:
			case <-ctx.Done():
				return
			}
		}
	}()
	return out, nil
}

// blockingProvider never produces a delta until its context is cancelled.
type blockingProvider struct{}

func (p *blockingProvider) Chat(ctx context.Context, history []llm.Message, options ...llm.Option) (string, error) {
	return "", errors.New("not implemented")
}

func (p *blockingProvider) Generate(ctx context.Context, prompt string, options ...llm.Option) (string, error) {
	return "", errors.New("not implemented")
}

func (p *blockingProvider) ChatStream(ctx context.Context, history []llm.Message, options ...llm.Option) (<-chan llm.Delta, error) {
	out := make(chan llm.Delta)
	go func() {
		defer close(out)
		<-ctx.Done()
	}()
	return out, nil
}

func collect(t *testing.T, s *Stream) []string {
	t.Helper()
	var chunks []string
	for chunk := range s.Chunks() {
		chunks = append(chunks, chunk)
	}
	return chunks
}

func TestRelayForwardsChunksInOrder(t *testing.T) {
	provider := &scriptedProvider{deltas: []llm.Delta{
		{Content: "Hel"},
		{Content: "lo "},
		{Content: "world"},
	}}

	stream, err := New(provider).Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	chunks := collect(t, stream)
	want := []string{"Hel", "lo ", "world"}
	if len(chunks) != len(want) {
		t.Fatalf("got %d chunks, want %d", len(chunks), len(want))
	}
	for i := range want {
		if chunks[i] != want[i] {
			t.Errorf("chunk[%d] = %q, want %q", i, chunks[i], want[i])
		}
	}
	if stream.Text() != "Hello world" {
		t.Errorf("Text() = %q, want %q", stream.Text(), "Hello world")
	}
	if stream.Err() != nil {
		t.Errorf("Err() = %v, want nil", stream.Err())
	}
}

func TestRelayDegradesMidStream(t *testing.T) {
	provider := &scriptedProvider{deltas: []llm.Delta{
		{Content: "Hello"},
		{Err: errors.New("upstream exploded")},
		{Content: "never delivered"},
	}}

	stream, err := New(provider).Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	chunks := collect(t, stream)
	if len(chunks) != 2 {
		t.Fatalf("got %d chunks, want 2", len(chunks))
	}
	if chunks[0] != "Hello" {
		t.Errorf("chunk[0] = %q, want %q", chunks[0], "Hello")
	}
	if chunks[1] != DegradedChunk {
		t.Errorf("chunk[1] = %q, want the degraded chunk", chunks[1])
	}
	if stream.Text() != "Hello"+DegradedChunk {
		t.Errorf("Text() = %q, want %q", stream.Text(), "Hello"+DegradedChunk)
	}
	if stream.Err() == nil {
		t.Error("Err() = nil, want the upstream error")
	}
}

func TestRelayOpenFailure(t *testing.T) {
	provider := &scriptedProvider{openErr: errors.New("connection refused")}

	_, err := New(provider).Open(context.Background(), nil)
	if err == nil {
		t.Fatal("Open succeeded, want error")
	}
}

func TestRelayCancelStopsStream(t *testing.T) {
	stream, err := New(&blockingProvider{}).Open(context.Background(), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	stream.Cancel()

	done := make(chan struct{})
	go func() {
		for range stream.Chunks() {
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not terminate after Cancel")
	}
}
