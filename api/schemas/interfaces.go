package schemas

import "context"

// CompletionOptions controls the text generation parameters for a single
// completion call.
type CompletionOptions struct {
	Temperature     float64 `json:"temperature"`       // Lower is more deterministic.
	MaxTokens       int     `json:"max_tokens"`        // Upper bound on the reply length.
	ForceJSONFormat bool    `json:"force_json_format"` // Ask the provider for a JSON-only reply where supported.
}

// CompletionRequest encapsulates one round trip to a completion provider: a
// fixed system instruction, a per-request user message, and generation options.
type CompletionRequest struct {
	SystemPrompt string            `json:"system_prompt"`
	UserPrompt   string            `json:"user_prompt"`
	Options      CompletionOptions `json:"options"`
}

// CompletionClient is the narrow interface the analyzer uses to talk to a
// completion provider, abstracting the underlying vendor API.
type CompletionClient interface {
	// Complete submits the request and returns the model's raw text reply.
	Complete(ctx context.Context, req CompletionRequest) (string, error)
	// Close releases any resources held by the client.
	Close() error
}
