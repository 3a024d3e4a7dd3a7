// Package explain wires a source host, the reference collector and the
// budget planner into a single explain request.
package explain

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/phobologic/llmexplain/internal/budget"
	"github.com/phobologic/llmexplain/internal/collect"
	"github.com/phobologic/llmexplain/internal/model"
	"github.com/phobologic/llmexplain/internal/progress"
	"github.com/phobologic/llmexplain/internal/source"
)

// Service runs explain requests against one host.
type Service struct {
	source    source.Provider
	planner   *budget.Planner
	collector *collect.Collector
	progress  progress.Sink
	logger    *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger used by the service and its collector.
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) { s.logger = l }
}

// WithProgress sets the sink for the collecting stage. Pass the same sink to
// the planner to see the later stages.
func WithProgress(p progress.Sink) Option {
	return func(s *Service) { s.progress = p }
}

// New returns a Service.
func New(src source.Provider, planner *budget.Planner, opts ...Option) *Service {
	s := &Service{
		source:   src,
		planner:  planner,
		logger:   zap.NewNop(),
		progress: progress.Nop,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.collector = collect.New(s.logger)
	return s
}

// Prepare locates name and collects its distinct references.
func (s *Service) Prepare(ctx context.Context, name string) (*model.PreparedMethod, error) {
	s.progress.Report(progress.Event{Stage: progress.Collecting, Message: "Collecting references"})

	target, err := s.source.Function(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("locating %s: %w", name, err)
	}
	refs, err := s.source.References(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("resolving references of %s: %w", name, err)
	}

	method := s.collector.Collect(target, refs)
	s.logger.Debug("collected references",
		zap.String("function", method.Name),
		zap.Int("call_sites", len(refs)),
		zap.Int("references", len(method.References)),
	)
	return method, nil
}

// Explain prepares name and asks the planner for its explanation.
func (s *Service) Explain(ctx context.Context, name string) (*model.ExplanationResult, error) {
	method, err := s.Prepare(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.planner.Explain(ctx, method)
}
