// llmexplain explains a function with a language model, giving the model the
// functions it calls as context.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/phobologic/llmexplain/internal/config"
	"github.com/phobologic/llmexplain/internal/logging"
	"github.com/phobologic/llmexplain/internal/tokenizer"
)

var version = "dev"

// newCounter builds the token counter. An empty encoding means the one used
// by model. Tests replace it to avoid loading BPE ranks.
var newCounter = func(encoding, model string, logger *zap.Logger) (tokenizer.Counter, error) {
	var (
		t   *tokenizer.Tiktoken
		err error
	)
	if encoding == "" {
		t, err = tokenizer.ForModel(model)
	} else {
		t, err = tokenizer.New(encoding)
	}
	if err != nil {
		return nil, err
	}
	logger.Debug("loaded tokenizer", zap.String("encoding", t.Encoding()), zap.String("model", model))
	return t, nil
}

func main() {
	if err := run(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		if errors.Is(err, context.Canceled) {
			os.Exit(130)
		}
		os.Exit(1)
	}
}

func run(args []string, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd := newRootCmd(stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

// cli holds state shared by every subcommand.
type cli struct {
	configPath string
	stdout     io.Writer
	stderr     io.Writer
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	c := &cli{stdout: stdout, stderr: stderr}

	root := &cobra.Command{
		Use:   "llmexplain",
		Short: "Explain a function using the code it calls as context",
		Long: `llmexplain explains a single function with a language model.

Every function it calls that is defined in the repository is sent along as
context. When the whole set would not fit the model's context budget, each
callee is first summarized by a faster model.

Examples:
  llmexplain explain parse_config
  llmexplain explain --root ./src Server.Handle
  llmexplain refs --file api/handlers.py create_user`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetVersionTemplate("llmexplain {{.Version}}\n")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "YAML config file")

	root.AddCommand(
		newExplainCmd(c),
		newRefsCmd(c),
		newConfigCmd(c),
		newInitCmd(c),
	)
	return root
}

func (c *cli) loadConfig() (*config.Config, error) {
	return config.Load(c.configPath)
}

func (c *cli) logger(cfg *config.Config) *zap.Logger {
	return logging.New(cfg.Log, c.stderr)
}
