package cmd

import (
	"github.com/charmbracelet/log"
	"github.com/samzong/gpush/internal/config"
	"github.com/samzong/gpush/internal/git"
	"github.com/samzong/gpush/internal/workflow"
	"github.com/spf13/cobra"
)

var pushCmd = &cobra.Command{
	Use:   "push",
	Short: "Commit all changes with a generated message and push them",
	Long: `Unstages everything, reads the working tree diff and the untracked files, asks the
configured LLM for a commit message, then adds every change, commits and pushes.

Nothing happens when the working tree is clean.`,
	Args: cobra.NoArgs,
	RunE: runPush,
}

func init() {
	rootCmd.AddCommand(pushCmd)
}

func runPush(cmd *cobra.Command, _ []string) error {
	if err := requireConfig(); err != nil {
		return err
	}
	container, err := newContainer(streams{Out: outWriter(), Err: errWriter()}, config.GetConfig)
	if err != nil {
		return err
	}

	return container.Invoke(func(g *git.Client, c *workflow.Committer, logger *log.Logger) error {
		if err := g.CheckGitRepository(); err != nil {
			logger.Error("Cannot push", "err", err)
			return nil
		}
		_, err := c.Run(cmd.Context())
		return handleErrors(logger, err)
	})
}
