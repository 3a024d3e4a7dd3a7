// Package budget decides whether a method's references fit the model's
// context window, summarizes them when they do not, and requests the final
// explanation.
package budget

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/llmexplain/internal/llm"
	"github.com/phobologic/llmexplain/internal/model"
	"github.com/phobologic/llmexplain/internal/progress"
	"github.com/phobologic/llmexplain/internal/prompt"
	"github.com/phobologic/llmexplain/internal/tokenizer"
)

// Config holds the tunables of a Planner.
type Config struct {
	// MaxContextTokens is the largest estimate for which references are
	// embedded verbatim.
	MaxContextTokens   int
	FastModel          string
	CapableModel       string
	Temperature        float64
	SummaryConcurrency int
}

// Planner runs the budget decision and both completion stages.
// A Planner holds no per-request state and may serve concurrent requests.
type Planner struct {
	cfg        Config
	completer  llm.Completer
	counter    tokenizer.Counter
	logger     *zap.Logger
	progress   progress.Sink
	promptHook func(string)
}

// Option configures a Planner.
type Option func(*Planner)

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(p *Planner) { p.logger = l }
}

// WithProgress sets the sink for stage updates.
func WithProgress(s progress.Sink) Option {
	return func(p *Planner) { p.progress = s }
}

// WithPromptHook registers fn to observe every assembled explanation prompt
// before it is sent.
func WithPromptHook(fn func(string)) Option {
	return func(p *Planner) { p.promptHook = fn }
}

// New returns a Planner.
func New(cfg Config, completer llm.Completer, counter tokenizer.Counter, opts ...Option) *Planner {
	if cfg.SummaryConcurrency < 1 {
		cfg.SummaryConcurrency = 1
	}
	p := &Planner{
		cfg:       cfg,
		completer: completer,
		counter:   counter,
		logger:    zap.NewNop(),
		progress:  progress.Nop,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Estimate returns the worst-case token count of method: its body plus every
// reference source, without prompt scaffolding.
func (p *Planner) Estimate(method *model.PreparedMethod) int {
	var b strings.Builder
	b.WriteString(method.Body)
	for _, ref := range method.References {
		b.WriteString(ref.Source)
	}
	return p.counter.CountTokens(b.String())
}

func (p *Planner) estimateMaterials(method *model.PreparedMethod, materials []model.ReferenceMaterial) int {
	var b strings.Builder
	b.WriteString(method.Body)
	for _, m := range materials {
		b.WriteString(m.Content)
	}
	return p.counter.CountTokens(b.String())
}

// OverBudget reports whether an estimate forces summarization.
func (p *Planner) OverBudget(estimate int) bool {
	return estimate > p.cfg.MaxContextTokens
}

// Explain produces the explanation of method. Cancellation is checked
// between stages and before every completion call; a cancelled request
// returns the context error and no result.
func (p *Planner) Explain(ctx context.Context, method *model.PreparedMethod) (*model.ExplanationResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("explaining %s: %w", method.Name, err)
	}

	p.report(progress.Event{Stage: progress.Estimating, Message: "Estimating context size"})
	estimate := p.Estimate(method)
	logger := p.logger.With(zap.String("function", method.Name))

	var materials []model.ReferenceMaterial
	if p.OverBudget(estimate) {
		logger.Info("context over budget, summarizing references",
			zap.Int("tokens", estimate),
			zap.Int("max_tokens", p.cfg.MaxContextTokens),
			zap.Int("references", len(method.References)),
		)
		var err error
		materials, err = p.summarize(ctx, method.References)
		if err != nil {
			return nil, err
		}
		if after := p.estimateMaterials(method, materials); p.OverBudget(after) {
			// No chunked fallback: the request goes ahead and may overflow.
			logger.Warn("context still over budget after summarization",
				zap.Int("tokens", after),
				zap.Int("max_tokens", p.cfg.MaxContextTokens),
			)
		}
	} else {
		logger.Debug("context within budget, using raw references",
			zap.Int("tokens", estimate),
			zap.Int("max_tokens", p.cfg.MaxContextTokens),
		)
		materials = rawMaterials(method.References)
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("explaining %s: %w", method.Name, err)
	}

	text := prompt.Explanation(method, materials)
	if p.promptHook != nil {
		p.promptHook(text)
	}

	p.report(progress.Event{Stage: progress.Explaining, Message: "Requesting explanation"})
	out, err := p.completer.Complete(ctx, llm.Request{
		Model:       p.cfg.CapableModel,
		Temperature: p.cfg.Temperature,
		Prompt:      text,
	})
	if err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("explaining %s: %w", method.Name, ctx.Err())
		}
		return nil, &UpstreamFailure{Stage: StageExplain, Err: err}
	}
	if strings.TrimSpace(out) == "" {
		return nil, &UpstreamFailure{Stage: StageExplain}
	}

	p.report(progress.Event{Stage: progress.Done, Message: "Explanation ready"})
	return &model.ExplanationResult{Text: prompt.StripFence(out)}, nil
}

func rawMaterials(refs []model.Reference) []model.ReferenceMaterial {
	out := make([]model.ReferenceMaterial, len(refs))
	for i, ref := range refs {
		out[i] = model.ReferenceMaterial{Kind: model.Raw, Identifier: ref.Identifier, Content: ref.Source}
	}
	return out
}

// summarize asks the fast tier for one summary per reference. Results are
// stored by index so the prompt order matches the reference order whatever
// the completion order. Any failure fails the whole batch.
func (p *Planner) summarize(ctx context.Context, refs []model.Reference) ([]model.ReferenceMaterial, error) {
	out := make([]model.ReferenceMaterial, len(refs))
	total := len(refs)
	p.report(progress.Event{Stage: progress.Summarizing, Message: "Summarizing references", Total: total})

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.SummaryConcurrency)

	var done atomic.Int32
	for i, ref := range refs {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			text, err := p.completer.Complete(gctx, llm.Request{
				Model:       p.cfg.FastModel,
				Temperature: p.cfg.Temperature,
				Prompt:      prompt.Summary(ref),
			})
			if err != nil {
				if ctx.Err() != nil {
					return err
				}
				return &UpstreamFailure{Stage: StageSummarize, Identifier: ref.Identifier, Err: err}
			}
			if strings.TrimSpace(text) == "" {
				return &UpstreamFailure{Stage: StageSummarize, Identifier: ref.Identifier}
			}
			out[i] = model.ReferenceMaterial{
				Kind:       model.Summary,
				Identifier: ref.Identifier,
				Content:    strings.TrimSpace(text),
			}
			p.report(progress.Event{
				Stage:   progress.Summarizing,
				Message: "Summarizing references",
				Done:    int(done.Add(1)),
				Total:   total,
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("summarizing references: %w", ctx.Err())
		}
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("summarizing references: %w", err)
	}
	return out, nil
}

func (p *Planner) report(e progress.Event) {
	if p.progress != nil {
		p.progress.Report(e)
	}
}
