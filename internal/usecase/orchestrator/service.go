// Package orchestrator sequences one chat turn:
// classify -> {similarity | extract+filter} -> compose.
package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/request"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/result"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/search/strategy"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/domain/turn"
	logpkg "github.com/duylongpro99/rag-agentic-ecommerce/internal/logger"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/metrics"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/tracing"
	"github.com/duylongpro99/rag-agentic-ecommerce/internal/usecase/compose"
)

// Pipeline step names used for spans and metrics.
const (
	stepClassify   = "classify"
	stepExtract    = "extract"
	stepSimilarity = "similarity"
	stepFilter     = "filter"
	stepCompose    = "compose"
)

// Config holds per-turn limits.
type Config struct {
	TopK        int
	StepTimeout time.Duration
}

// Reply is the outcome of one turn.
type Reply struct {
	Response  string
	Strategy  strategy.Strategy
	Route     turn.Route
	Items     []result.Item
	Fallbacks []turn.Fallback
}

// Service runs chat turns. It keeps no state between turns and is safe for concurrent use.
type Service struct {
	classifier Classifier
	similarity Similarity
	filter     Filter
	composer   Composer
	cfg        Config
	logger     *zap.Logger
	tracer     trace.Tracer
}

// New creates an orchestrator.
func New(cls Classifier, sim Similarity, flt Filter, cmp Composer, cfg Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		classifier: cls,
		similarity: sim,
		filter:     flt,
		composer:   cmp,
		cfg:        cfg,
		logger:     logger,
		tracer:     tracing.Tracer("productfinder/orchestrator"),
	}
}

type retrieval struct {
	route turn.Route
	items []result.Item
	err   error
}

// Chat answers a single query. ClassificationAmbiguous and FilterExtractionFailed
// are recovered and recorded as fallbacks; retrieval infrastructure failures and
// CompositionFailed fail the turn and no partial reply is returned.
func (s *Service) Chat(ctx context.Context, query string) (Reply, error) {
	start := time.Now()
	log := logpkg.FromContextOr(ctx, s.logger)

	req, err := request.New(query, s.cfg.TopK)
	if err != nil {
		return Reply{}, err
	}

	ctx, span := s.tracer.Start(ctx, "chat_turn")
	defer span.End()

	t := turn.New(req.Query())

	reply, err := s.run(ctx, t, req, log)

	outcome := "ok"
	if err != nil {
		outcome = "failed"
		tracing.Fail(span, err)
	}
	metrics.TurnsTotal.WithLabelValues(t.Strategy().String(), outcome).Inc()
	span.SetAttributes(
		attribute.String("turn.strategy", t.Strategy().String()),
		attribute.String("turn.route", string(t.Route())),
		attribute.Int("turn.result_count", len(t.Items())),
	)

	usage := domain.UsageFromContext(ctx)
	fields := []zap.Field{
		zap.String("strategy", t.Strategy().String()),
		zap.String("route", string(t.Route())),
		zap.String("state", t.State().String()),
		zap.Any("fallbacks", t.Fallbacks()),
		zap.Int("result_count", len(t.Items())),
		zap.Int64("embedding_tokens", usage.EmbeddingTokens()),
		zap.Int64("llm_calls", usage.LLMCalls()),
		zap.Duration("latency", time.Since(start)),
	}
	if err != nil {
		log.Error("chat_turn", append(fields, zap.Error(err))...)
		return Reply{}, err
	}
	log.Info("chat_turn", fields...)
	return reply, nil
}

func (s *Service) run(ctx context.Context, t *turn.Turn, req request.Request, log *zap.Logger) (Reply, error) {
	// start -> classified
	var strat strategy.Strategy
	_ = s.step(ctx, stepClassify, func(ctx context.Context) error {
		var err error
		strat, err = s.classifier.Classify(ctx, req.Query())
		if err == nil && !strat.IsValid() {
			err = fmt.Errorf("%w: no strategy", domain.ErrClassificationAmbiguous)
		}
		if err != nil {
			strat = strategy.Default
			s.fallback(t, turn.FallbackClassification, log, err)
		}
		return err
	})
	if err := t.Classify(strat); err != nil {
		return Reply{}, fmt.Errorf("classify: %w", err)
	}

	// classified -> retrieved
	r := strategy.Match(t.Strategy(),
		func() retrieval { return s.searchSimilar(ctx, req) },
		func() retrieval { return s.searchStructured(ctx, t, req, log) },
		// Mixed intent is served by similarity search alone.
		func() retrieval { return s.searchSimilar(ctx, req) },
	)
	if r.err != nil {
		return Reply{}, r.err
	}
	if err := t.Retrieve(r.route, r.items); err != nil {
		return Reply{}, fmt.Errorf("retrieve: %w", err)
	}
	metrics.RetrievedItems.WithLabelValues(string(r.route)).Observe(float64(len(r.items)))

	// retrieved -> composed
	var block string
	if r.route == turn.RouteFilter {
		block = compose.FormatFilter(r.items)
	} else {
		block = compose.FormatSimilarity(req.Query(), r.items)
	}

	var text string
	if err := s.step(ctx, stepCompose, func(ctx context.Context) error {
		var err error
		text, err = s.composer.Compose(ctx, req.Query(), block)
		return err
	}); err != nil {
		if !errors.Is(err, domain.ErrCompositionFailed) {
			err = fmt.Errorf("%w: %w", domain.ErrCompositionFailed, err)
		}
		return Reply{}, err
	}
	if err := t.Compose(text); err != nil {
		return Reply{}, fmt.Errorf("compose: %w", err)
	}

	// composed -> done
	resp, err := t.Finish()
	if err != nil {
		return Reply{}, fmt.Errorf("finish: %w", err)
	}

	return Reply{
		Response:  resp,
		Strategy:  t.Strategy(),
		Route:     t.Route(),
		Items:     t.Items(),
		Fallbacks: t.Fallbacks(),
	}, nil
}

func (s *Service) searchSimilar(ctx context.Context, req request.Request) retrieval {
	var items []result.Item
	err := s.step(ctx, stepSimilarity, func(ctx context.Context) error {
		var err error
		items, err = s.similarity.Search(ctx, req)
		return err
	})
	if err != nil {
		return retrieval{err: fmt.Errorf("similarity search: %w", err)}
	}
	return retrieval{route: turn.RouteSimilarity, items: items}
}

func (s *Service) searchStructured(ctx context.Context, t *turn.Turn, req request.Request, log *zap.Logger) retrieval {
	var extractErr error
	_ = s.step(ctx, stepExtract, func(ctx context.Context) error {
		c, err := s.classifier.Extract(ctx, req.Query())
		if err != nil {
			extractErr = err
			return err
		}
		extractErr = t.SetCriteria(c)
		return extractErr
	})
	if extractErr != nil {
		s.fallback(t, turn.FallbackFilterExtraction, log, extractErr)
		return s.searchSimilar(ctx, req)
	}

	var items []result.Item
	err := s.step(ctx, stepFilter, func(ctx context.Context) error {
		var err error
		items, err = s.filter.Filter(ctx, *t.Criteria())
		return err
	})
	if err != nil {
		return retrieval{err: fmt.Errorf("structured filter: %w", err)}
	}
	return retrieval{route: turn.RouteFilter, items: items}
}

func (s *Service) fallback(t *turn.Turn, f turn.Fallback, log *zap.Logger, cause error) {
	t.RecordFallback(f)
	metrics.FallbacksTotal.WithLabelValues(string(f)).Inc()
	log.Warn("Recovered pipeline degradation",
		zap.String("fallback", string(f)),
		zap.Error(cause),
	)
}

// step runs fn under its own span and deadline. An expired deadline surfaces as fn's error.
func (s *Service) step(ctx context.Context, name string, fn func(context.Context) error) error {
	ctx, span := s.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	if s.cfg.StepTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.cfg.StepTimeout)
		defer cancel()
	}

	start := time.Now()
	err := fn(ctx)
	metrics.StepDuration.WithLabelValues(name).Observe(time.Since(start).Seconds())

	if err != nil {
		tracing.Fail(span, err)
	}
	return err
}
