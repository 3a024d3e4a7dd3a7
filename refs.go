package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/phobologic/llmexplain/internal/budget"
	"github.com/phobologic/llmexplain/internal/explain"
	"github.com/phobologic/llmexplain/internal/toon"
)

func newRefsCmd(c *cli) *cobra.Command {
	var src sourceFlags

	cmd := &cobra.Command{
		Use:   "refs FUNCTION",
		Short: "Show the references and budget decision for a function",
		Long: `Show the references and budget decision for a function.

Prints, in TOON format, the distinct references that would be sent with
FUNCTION, their token counts, and whether they would be sent raw or
summarized. No model is called and no credential is needed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			logger := c.logger(cfg)
			defer func() { _ = logger.Sync() }()

			counter, err := newCounter(cfg.Budget.Encoding, cfg.LLM.CapableModel, logger)
			if err != nil {
				return fmt.Errorf("loading tokenizer: %w", err)
			}
			host, err := src.open(ctx, logger)
			if err != nil {
				return err
			}

			planner := budget.New(budget.Config{MaxContextTokens: cfg.Budget.MaxContextTokens}, nil, counter,
				budget.WithLogger(logger))
			method, err := explain.New(host, planner, explain.WithLogger(logger)).Prepare(ctx, args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(c.stdout, toon.EncodePlan(planner.Plan(method)))
			return nil
		},
	}

	src.register(cmd)
	return cmd
}
