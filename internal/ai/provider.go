// Package ai abstracts the text-completion service. The core never depends
// on a vendor's request/response shape beyond this contract.
package ai

import "context"

// Message is one entry of the ordered conversation history.
type Message struct {
	Role    string `json:"role"` // "system" | "user" | "assistant"
	Content string `json:"content"`
}

// Request is a single completion call. System is kept separate from the
// history so providers can place it wherever their API wants it.
type Request struct {
	System      string
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Provider generates one completion for a request.
type Provider interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// StreamProvider yields incremental chunks; the call returns when the stream
// completes or ctx is cancelled. On cancellation the partial output must be
// discarded by the caller, never merged into state.
type StreamProvider interface {
	Provider
	Stream(ctx context.Context, req Request, fn func(chunk string) error) error
}
