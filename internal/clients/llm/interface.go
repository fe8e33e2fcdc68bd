package llm

//go:generate mockgen -destination=mock/mock_client.go -package=mockllm -source=interface.go

import (
	"context"
	"io"
)

// Client is a streaming chat-completion gateway client
type Client interface {
	// StreamCompletion issues a streaming completion request and
	// returns the raw SSE response body. The caller must read it to
	// completion and close it.
	StreamCompletion(ctx context.Context, req *CompletionRequest) (io.ReadCloser, error)
}
