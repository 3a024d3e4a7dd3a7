package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"github.com/phobologic/llmexplain/internal/config"
)

const defaultConfigPath = "llmexplain.yaml"

const configHeader = `# llmexplain configuration.
#
# Every key can be overridden with an LLMEXPLAIN_* environment variable, for
# example LLMEXPLAIN_LLM_CAPABLE_MODEL. Leave api_key empty to read the
# credential from LLMEXPLAIN_LLM_API_KEY or OPENAI_API_KEY instead of storing
# it here.
`

func newInitCmd(c *cli) *cobra.Command {
	var dryRun, force bool

	cmd := &cobra.Command{
		Use:   "init [PATH]",
		Short: "Write a starter config file",
		Long: `Write a config file holding the built-in defaults, ready to edit.

PATH defaults to ./llmexplain.yaml. An existing file is left alone unless
--force is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			content, err := starterConfig()
			if err != nil {
				return err
			}

			if dryRun {
				_, _ = fmt.Fprint(c.stdout, content)
				return nil
			}

			path := defaultConfigPath
			if len(args) > 0 {
				path = args[0]
			}

			if !force {
				if _, err := os.Stat(path); err == nil {
					return fmt.Errorf("%s already exists (use --force to overwrite)", path)
				} else if !errors.Is(err, fs.ErrNotExist) {
					return fmt.Errorf("checking %s: %w", path, err)
				}
			}

			if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", path, err)
			}
			_, _ = fmt.Fprintf(c.stderr, "wrote default configuration to %s\n", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print the file instead of writing it")
	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing file")
	return cmd
}

// starterConfig renders the defaults with an explanatory header.
func starterConfig() (string, error) {
	body, err := config.Default().YAML()
	if err != nil {
		return "", err
	}
	return configHeader + "\n" + string(body), nil
}
