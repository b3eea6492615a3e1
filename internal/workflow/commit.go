package workflow

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/samzong/gpush/internal/formatter"
	"github.com/samzong/gpush/internal/git"
	"github.com/samzong/gpush/internal/ui"
)

type CommitOptions struct {
	MaxDiffBytes   int
	PromptTemplate string
	OutWriter      io.Writer
}

// Committer stages all working tree changes, commits them with a generated message and pushes.
type Committer struct {
	git    GitClient
	gen    Generator
	logger *log.Logger
	opts   CommitOptions
}

func NewCommitter(git GitClient, gen Generator, logger *log.Logger, opts CommitOptions) *Committer {
	if opts.OutWriter == nil {
		opts.OutWriter = io.Discard
	}
	return &Committer{git: git, gen: gen, logger: logger, opts: opts}
}

func (c *Committer) Run(ctx context.Context) (*Report, error) {
	var (
		snapshot formatter.Snapshot
		message  formatter.Message
	)

	return runSteps(ctx, c.logger, []step{
		{
			name:    StepReset,
			okMsg:   "All changes unstaged successfully",
			failMsg: "Error unstaging changes",
			run:     func(ctx context.Context) error { return opError("reset", c.git.Reset(ctx)) },
		},
		{
			name:    StepInspect,
			failMsg: "Error reading working tree changes",
			run: func(ctx context.Context) error {
				var err error
				snapshot, err = c.readSnapshot(ctx)
				if err != nil {
					return err
				}
				if snapshot.Empty() {
					c.logger.Info("there are no changes to be committed")
					return errFinished
				}
				c.logger.Debug("working tree changes",
					"kind", snapshot.Kind(), "diff_bytes", len(snapshot.Diff), "new_files", len(snapshot.NotAdded))
				return nil
			},
		},
		{
			name:    StepGenerate,
			failMsg: "Error generating commit message",
			run: func(ctx context.Context) error {
				var err error
				message, err = c.generateMessage(ctx, snapshot)
				return err
			},
		},
		{
			name:    StepStage,
			okMsg:   "File(s) added to staging area.",
			failMsg: "Error adding files",
			run:     func(ctx context.Context) error { return opError("add", c.git.AddAll(ctx)) },
		},
		{
			name:    StepCommit,
			okMsg:   "Successfully committed.",
			failMsg: "Error committing",
			run: func(ctx context.Context) error {
				return opError("commit", c.git.Commit(ctx, message.Paragraphs()...))
			},
		},
		{
			name:    StepPush,
			okMsg:   "Changes pushed successfully to remote repository.",
			failMsg: "Error pushing changes to remote repository",
			run:     func(ctx context.Context) error { return opError("push", c.git.Push(ctx, git.PushOptions{})) },
		},
	})
}

func (c *Committer) readSnapshot(ctx context.Context) (formatter.Snapshot, error) {
	diff, err := c.git.Diff(ctx)
	if err != nil {
		return formatter.Snapshot{}, opError("diff", err)
	}
	status, err := c.git.Status(ctx)
	if err != nil {
		return formatter.Snapshot{}, opError("status", err)
	}
	return formatter.Snapshot{Diff: diff, NotAdded: status.NotAdded}, nil
}

func (c *Committer) generateMessage(ctx context.Context, snapshot formatter.Snapshot) (formatter.Message, error) {
	prompt, err := formatter.BuildPrompt(snapshot, formatter.PromptOptions{
		MaxDiffBytes: c.opts.MaxDiffBytes,
		TemplateFile: c.opts.PromptTemplate,
	})
	if err != nil {
		return formatter.Message{}, &GenerationError{Err: fmt.Errorf("build prompt: %w", err)}
	}

	var text string
	err = ui.NewSpinner("Generating commit message...").While(func() error {
		var genErr error
		text, genErr = c.gen.GenerateContent(ctx, prompt)
		return genErr
	})
	if err != nil {
		return formatter.Message{}, &GenerationError{Err: err}
	}
	c.logger.Debug("generator response", "text", text)

	message, err := formatter.ParseMessage(text)
	if err != nil {
		return formatter.Message{}, &GenerationError{Err: err}
	}

	fmt.Fprintln(c.opts.OutWriter, "Generated Commit Message:")
	fmt.Fprintln(c.opts.OutWriter, message.String())
	return message, nil
}

// IsNothingToCommit reports whether a push run ended because the tree was clean.
func IsNothingToCommit(r *Report) bool {
	return r != nil && r.Outcome == OutcomeNothingToCommit
}

// ErrorKind names the taxonomy bucket of a workflow error, for logging.
func ErrorKind(err error) string {
	var (
		opErr  *OperationError
		genErr *GenerationError
		valErr *ValidationError
	)
	switch {
	case errors.As(err, &valErr):
		return "validation"
	case errors.As(err, &genErr):
		return "generation"
	case errors.As(err, &opErr):
		return "operation"
	default:
		return "unknown"
	}
}
