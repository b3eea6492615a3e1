package cmd

import (
	"io"

	"github.com/charmbracelet/log"
	"github.com/samzong/gpush/internal/config"
	"github.com/samzong/gpush/internal/workflow"
	"github.com/spf13/cobra"
)

var firstPushCmd = &cobra.Command{
	Use:   "first-push [repositoryUrl]",
	Short: "Initialize a repository, commit everything and push it to a new remote",
	Long: `Runs git init, adds every file, commits them as "initial Commit", renames the branch
to main, adds the remote as origin and pushes with upstream tracking.

The repository URL is asked for interactively when it is not given.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runFirstPush,
}

func init() {
	rootCmd.AddCommand(firstPushCmd)
}

func runFirstPush(cmd *cobra.Command, args []string) error {
	// bootstrapping needs no LLM settings, so a broken configuration only warns
	cfg, ignored := fallbackConfig()
	container, err := newContainer(streams{Out: outWriter(), Err: errWriter()}, func() (*config.Config, error) {
		return cfg, nil
	})
	if err != nil {
		return err
	}

	return container.Invoke(func(b *workflow.Bootstrapper, logger *log.Logger) error {
		if ignored != nil {
			logger.Warn("Ignoring configuration error, using defaults", "err", ignored)
		}
		_, err := b.Run(cmd.Context(), remoteURLSource(args, inReader(), errWriter()))
		return handleErrors(logger, err)
	})
}

// remoteURLSource prefers a non-empty argument and otherwise asks the user.
func remoteURLSource(args []string, in io.Reader, out io.Writer) workflow.RemoteURLSource {
	if len(args) > 0 && args[0] != "" {
		return workflow.StaticSource(args[0])
	}
	return &workflow.InteractiveSource{In: in, Out: out}
}
