package classify

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/strategy"
)

// --- Mocks ---

type mockLLM struct {
	reply   string
	err     error
	lastReq domain.CompletionRequest
}

func (m *mockLLM) Complete(_ context.Context, req domain.CompletionRequest) (string, error) {
	m.lastReq = req
	return m.reply, m.err
}

// --- Tests ---

func TestClassify(t *testing.T) {
	tests := []struct {
		reply     string
		want      strategy.Strategy
		ambiguous bool
	}{
		{"semantic", strategy.Semantic, false},
		{"Structured\n", strategy.Structured, false},
		{`"both".`, strategy.Both, false},
		{"<think>The user names a brand and a price cap.</think>\nstructured", strategy.Structured, false},
		{"I think you want semantic search", strategy.Semantic, true},
		{"hybrid", strategy.Semantic, true},
		{"", strategy.Semantic, true},
	}
	for _, tt := range tests {
		t.Run(tt.reply, func(t *testing.T) {
			svc := New(&mockLLM{reply: tt.reply})
			got, err := svc.Classify(context.Background(), "Nike shoes under $100")
			if got != tt.want {
				t.Errorf("strategy = %s, want %s", got, tt.want)
			}
			if tt.ambiguous != errors.Is(err, domain.ErrClassificationAmbiguous) {
				t.Errorf("ambiguous = %v, err = %v", !tt.ambiguous, err)
			}
		})
	}
}

func TestClassify_LLMFailureDefaultsToSemantic(t *testing.T) {
	svc := New(&mockLLM{err: domain.ErrLLMUnavailable})

	got, err := svc.Classify(context.Background(), "q")
	if got != strategy.Semantic {
		t.Errorf("strategy = %s, want semantic", got)
	}
	if !errors.Is(err, domain.ErrClassificationAmbiguous) || !errors.Is(err, domain.ErrLLMUnavailable) {
		t.Errorf("expected both sentinels in chain, got %v", err)
	}
}

func TestClassify_PromptCarriesQuery(t *testing.T) {
	llm := &mockLLM{reply: "semantic"}
	New(llm).Classify(context.Background(), "waterproof hiking boots")

	if llm.lastReq.JSON {
		t.Error("classification must not request JSON mode")
	}
	if !strings.Contains(llm.lastReq.Prompt, `"waterproof hiking boots"`) {
		t.Errorf("prompt does not quote the query: %s", llm.lastReq.Prompt)
	}
}

func TestExtract_NikeUnder100(t *testing.T) {
	llm := &mockLLM{reply: `{"brand": "Nike", "max_price": 100}`}

	c, err := New(llm).Extract(context.Background(), "Nike shoes under $100")
	if err != nil {
		t.Fatalf("Extract: %v", err)
	}
	if !llm.lastReq.JSON {
		t.Error("extraction must request JSON mode")
	}
	if c.Brand() != "Nike" {
		t.Errorf("brand = %q", c.Brand())
	}
	if c.MaxPrice() == nil || *c.MaxPrice() != 100 {
		t.Errorf("max_price = %v", c.MaxPrice())
	}
	if c.MinPrice() != nil || c.Category() != "" || c.NameContains() != "" {
		t.Errorf("unexpected extra constraints: %s", c)
	}
}

func TestExtract_LLMFailure(t *testing.T) {
	_, err := New(&mockLLM{err: domain.ErrLLMUnavailable}).Extract(context.Background(), "q")
	if !errors.Is(err, domain.ErrFilterExtractionFailed) {
		t.Fatalf("expected ErrFilterExtractionFailed, got %v", err)
	}
}

func TestParseCriteria(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"plain", `{"brand":"Adidas","min_price":50}`, false},
		{"code fence", "```json\n{\"category\": \"running\"}\n```", false},
		{"prose around", `Sure! Here are the filters: {"name_contains": "air"} Hope it helps.`, false},
		{"reasoning block", "<think>brand {maybe}</think>{\"brand\":\"Puma\"}", false},
		{"nulls", `{"brand":null,"max_price":null}`, false},
		{"empty object", `{}`, false},
		{"brace in string", `{"name_contains":"a}b"}`, false},
		{"not json", `brand is Nike`, true},
		{"truncated", `{"brand": "Nike"`, true},
		{"unknown key", `{"color":"red"}`, true},
		{"price as string", `{"max_price":"cheap"}`, true},
		{"brand as number", `{"brand": 42}`, true},
		{"negative price", `{"min_price": -5}`, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCriteria(tt.raw)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseCriteria(%q) error = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
			if err != nil && !errors.Is(err, domain.ErrFilterExtractionFailed) {
				t.Errorf("error must wrap ErrFilterExtractionFailed: %v", err)
			}
		})
	}
}

func TestParseCriteria_BraceInString(t *testing.T) {
	c, err := ParseCriteria(`{"name_contains":"a}b"}`)
	if err != nil {
		t.Fatalf("ParseCriteria: %v", err)
	}
	if c.NameContains() != "a}b" {
		t.Errorf("name_contains = %q", c.NameContains())
	}
}
