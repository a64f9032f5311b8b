package domain

import (
	"context"
	"sync/atomic"
)

type turnUsageKey struct{}

// TurnUsage collects provider usage for a single turn.
// The handler puts a pointer into the context before calling the pipeline;
// embedders and completers record into it; the handler reads it for response headers.
type TurnUsage struct {
	embeddingTokens atomic.Int64
	llmCalls        atomic.Int64
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *TurnUsage) {
	u := &TurnUsage{}
	return context.WithValue(ctx, turnUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *TurnUsage {
	u, _ := ctx.Value(turnUsageKey{}).(*TurnUsage)
	return u
}

// AddEmbeddingTokens records consumed embedding tokens.
func (u *TurnUsage) AddEmbeddingTokens(n int) {
	if u != nil {
		u.embeddingTokens.Add(int64(n))
	}
}

// AddLLMCall records one completion call.
func (u *TurnUsage) AddLLMCall() {
	if u != nil {
		u.llmCalls.Add(1)
	}
}

// EmbeddingTokens returns the recorded embedding token count.
func (u *TurnUsage) EmbeddingTokens() int64 {
	if u == nil {
		return 0
	}
	return u.embeddingTokens.Load()
}

// LLMCalls returns the recorded completion call count.
func (u *TurnUsage) LLMCalls() int64 {
	if u == nil {
		return 0
	}
	return u.llmCalls.Load()
}
