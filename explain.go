package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phobologic/llmexplain/internal/budget"
	"github.com/phobologic/llmexplain/internal/explain"
	"github.com/phobologic/llmexplain/internal/lang"
	"github.com/phobologic/llmexplain/internal/llm"
	"github.com/phobologic/llmexplain/internal/progress"
	"github.com/phobologic/llmexplain/internal/source/treesitter"
)

type sourceFlags struct {
	root      string
	file      string
	langs     []string
	skipTests bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.root, "root", ".", "repository root to search")
	cmd.Flags().StringVar(&f.file, "file", "", "only look for the function in this file")
	cmd.Flags().StringSliceVarP(&f.langs, "langs", "l", nil,
		fmt.Sprintf("comma-separated languages to include (%s)", strings.Join(lang.Names(), ", ")))
	cmd.Flags().BoolVar(&f.skipTests, "skip-tests", false, "leave test files out of the search")
}

func (f *sourceFlags) options(logger *zap.Logger) (treesitter.Options, error) {
	for _, l := range f.langs {
		if _, ok := lang.Languages[l]; !ok {
			return treesitter.Options{}, fmt.Errorf("unknown language %q (supported: %s)", l, strings.Join(lang.Names(), ", "))
		}
	}
	return treesitter.Options{
		File:      f.file,
		Languages: f.langs,
		SkipTests: f.skipTests,
		Logger:    logger,
	}, nil
}

// open validates the flags and parses the tree under root.
func (f *sourceFlags) open(ctx context.Context, logger *zap.Logger) (*treesitter.Source, error) {
	opts, err := f.options(logger)
	if err != nil {
		return nil, err
	}
	return treesitter.Open(ctx, f.root, opts)
}

func newExplainCmd(c *cli) *cobra.Command {
	var (
		src        sourceFlags
		showPrompt bool
		quiet      bool
	)

	cmd := &cobra.Command{
		Use:   "explain FUNCTION",
		Short: "Explain a function",
		Long: `Explain a function.

FUNCTION is a function name or Type.method. Progress is printed to stderr and
the explanation to stdout. Interrupting cancels the request between model
calls.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if err := cfg.Validate(); err != nil {
				return err
			}
			logger := c.logger(cfg)
			defer func() { _ = logger.Sync() }()

			counter, err := newCounter(cfg.Budget.Encoding, cfg.LLM.CapableModel, logger)
			if err != nil {
				return fmt.Errorf("loading tokenizer: %w", err)
			}
			client, err := llm.NewClient(cfg.LLM, llm.WithLogger(logger))
			if err != nil {
				return err
			}

			host, err := src.open(ctx, logger)
			if err != nil {
				return err
			}

			var sink progress.Sink = progress.NewWriter(c.stderr)
			if quiet {
				sink = progress.Nop
			}
			opts := []budget.Option{budget.WithLogger(logger), budget.WithProgress(sink)}
			if showPrompt {
				opts = append(opts, budget.WithPromptHook(func(p string) {
					_, _ = fmt.Fprintf(c.stderr, "----- prompt -----\n%s\n------------------\n", p)
				}))
			}
			planner := budget.New(budget.Config{
				MaxContextTokens:   cfg.Budget.MaxContextTokens,
				FastModel:          cfg.LLM.FastModel,
				CapableModel:       cfg.LLM.CapableModel,
				Temperature:        cfg.LLM.Temperature,
				SummaryConcurrency: cfg.Budget.SummaryConcurrency,
			}, llm.NewRetrying(client, cfg.LLM.MaxRetries, logger), counter, opts...)

			svc := explain.New(host, planner, explain.WithLogger(logger), explain.WithProgress(sink))
			res, err := svc.Explain(ctx, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(c.stdout, res.Text)
			return nil
		},
	}

	src.register(cmd)
	cmd.Flags().BoolVar(&showPrompt, "show-prompt", false, "print the final prompt to stderr before sending it")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "do not print progress")
	return cmd
}
