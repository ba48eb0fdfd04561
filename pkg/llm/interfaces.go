// Package llm provides clients for the text-completion oracle that produces
// the judgments the engine cannot compute deterministically.
package llm

import "context"

// CompleteOptions controls a single completion request.
type CompleteOptions struct {
	// Temperature in [0, 2]. Zero keeps the provider default.
	Temperature float64

	// MaxTokens bounds the completion size. Zero keeps the provider default.
	MaxTokens int

	// JSONMode requests a strict JSON object completion where the provider
	// supports it. Callers must still validate the result; a completion is
	// never trusted to be well-formed.
	JSONMode bool
}

// Client is the injected oracle capability. Use this interface for
// dependency injection so tests can substitute canned (including malformed)
// completions.
type Client interface {
	// Complete sends a system instruction plus a user prompt and returns the
	// raw completion text. It blocks for the provider's full round trip; the
	// only way to bound it is through ctx.
	Complete(ctx context.Context, prompt string, systemMessage string, opts CompleteOptions) (string, error)

	// Model returns the configured model name.
	Model() string
}
