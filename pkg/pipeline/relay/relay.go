// Package relay forwards a generator's token stream to the caller chunk by
// chunk while accumulating the full answer text for persistence.
package relay

import (
	"context"
	"strings"

	"minima-be/pkg/llm"
)

// DegradedChunk is the literal text appended to the stream when the upstream
// generator fails mid-flight. Output already delivered cannot be retracted, so
// the failure is surfaced inline and the stream terminates cleanly.
const DegradedChunk = "Error generating response."

type Relay struct {
	provider llm.LLMProvider
}

func New(provider llm.LLMProvider) *Relay {
	return &Relay{provider: provider}
}

// Stream is one in-flight generation. Chunks are delivered in provider order
// with no batching. After the chunk channel closes, Text returns the full
// concatenated output (degraded chunk included) and Err reports the upstream
// failure, if any.
type Stream struct {
	ch     chan string
	cancel context.CancelFunc

	// written only by the forwarding goroutine; reads are ordered after the
	// channel close.
	full strings.Builder
	err  error
}

// Open starts a generation request and begins forwarding chunks. The returned
// stream owns a derived context: Cancel releases the upstream request.
func (r *Relay) Open(ctx context.Context, messages []llm.Message, options ...llm.Option) (*Stream, error) {
	ctx, cancel := context.WithCancel(ctx)

	deltas, err := r.provider.ChatStream(ctx, messages, options...)
	if err != nil {
		cancel()
		return nil, err
	}

	s := &Stream{
		ch:     make(chan string),
		cancel: cancel,
	}

	go func() {
		defer close(s.ch)
		defer cancel()

		for delta := range deltas {
			if delta.Err != nil {
				s.err = delta.Err
				s.full.WriteString(DegradedChunk)
				select {
				case s.ch <- DegradedChunk:
				case <-ctx.Done():
				}
				return
			}
			s.full.WriteString(delta.Content)
			select {
			case s.ch <- delta.Content:
			case <-ctx.Done():
				return
			}
		}
	}()

	return s, nil
}

// Chunks returns the ordered chunk channel. It closes when the response is
// complete, degraded, or cancelled.
func (s *Stream) Chunks() <-chan string {
	return s.ch
}

// Cancel aborts the upstream generation request. Safe to call more than once.
func (s *Stream) Cancel() {
	s.cancel()
}

// Text returns the accumulated response. Valid once Chunks has closed.
func (s *Stream) Text() string {
	return s.full.String()
}

// Err reports a mid-stream upstream failure. Valid once Chunks has closed.
func (s *Stream) Err() error {
	return s.err
}
