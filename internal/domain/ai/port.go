package ai

import "context"

// Request is one model invocation. ImageURL switches the call to the vision model.
type Request struct {
	System      string
	Prompt      string
	ImageURL    string
	Temperature float32
	MaxTokens   int
}

// Client returns the model's raw text reply.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}
