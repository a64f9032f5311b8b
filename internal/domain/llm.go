package domain

import "context"

// CompletionRequest is a single-shot prompt to a text-completion model.
type CompletionRequest struct {
	System string
	Prompt string
	// JSON asks the provider to constrain output to a JSON object where supported.
	JSON bool
}

// Completer is the LLM capability used for classification, extraction and composition.
type Completer interface {
	Complete(ctx context.Context, req CompletionRequest) (string, error)
}
