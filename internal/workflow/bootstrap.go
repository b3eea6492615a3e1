package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samzong/gpush/internal/git"
)

const (
	InitialCommitMessage = "initial Commit"
	DefaultBranch        = "main"
	DefaultRemote        = "origin"
)

// Step names shared by both workflows.
const (
	StepInit         = "init"
	StepStage        = "stage"
	StepCommit       = "commit"
	StepRenameBranch = "rename-branch"
	StepAddRemote    = "add-remote"
	StepPush         = "push"
	StepReset        = "reset"
	StepInspect      = "inspect"
	StepGenerate     = "generate"
)

// Bootstrapper initializes the current directory as a repository and pushes it to a new remote.
type Bootstrapper struct {
	git    GitClient
	logger *log.Logger
}

func NewBootstrapper(git GitClient, logger *log.Logger) *Bootstrapper {
	return &Bootstrapper{git: git, logger: logger}
}

// Run obtains the remote URL from src, then runs init, stage, commit, rename,
// add-remote and push in that order, halting on the first failure.
func (b *Bootstrapper) Run(ctx context.Context, src RemoteURLSource) (*Report, error) {
	remoteURL, err := src.RemoteURL(ctx)
	if err != nil {
		b.logger.Error("Could not obtain the repository URL", "err", err)
		return &Report{Outcome: OutcomeFailed}, err
	}
	remoteURL = strings.TrimSpace(remoteURL)
	b.logger.Info("Using remote", "url", remoteURL)

	return runSteps(ctx, b.logger, []step{
		{
			name:    StepInit,
			okMsg:   "Initialized empty Git repository.",
			failMsg: "Error initializing Git repository",
			run:     func(ctx context.Context) error { return opError("init", b.git.Init(ctx)) },
		},
		{
			name:    StepStage,
			okMsg:   "File(s) added to staging area.",
			failMsg: "Error adding files",
			run:     func(ctx context.Context) error { return opError("add", b.git.AddAll(ctx)) },
		},
		{
			name:    StepCommit,
			okMsg:   "Successfully committed.",
			failMsg: "Error committing",
			run: func(ctx context.Context) error {
				return opError("commit", b.git.Commit(ctx, InitialCommitMessage))
			},
		},
		{
			name:    StepRenameBranch,
			okMsg:   fmt.Sprintf("Successfully changed branch to %s.", DefaultBranch),
			failMsg: fmt.Sprintf("Error changing branch to %s", DefaultBranch),
			run: func(ctx context.Context) error {
				return opError("branch", b.git.RenameBranch(ctx, DefaultBranch))
			},
		},
		{
			name:    StepAddRemote,
			okMsg:   fmt.Sprintf("Added remote %q with URL %q", DefaultRemote, remoteURL),
			failMsg: fmt.Sprintf("Error adding remote %s", DefaultRemote),
			run: func(ctx context.Context) error {
				return opError("remote add", b.git.AddRemote(ctx, DefaultRemote, remoteURL))
			},
		},
		{
			name:    StepPush,
			okMsg:   "Changes pushed successfully to remote repository.",
			failMsg: "Error pushing changes to remote repository",
			run: func(ctx context.Context) error {
				return opError("push", b.git.Push(ctx, git.PushOptions{
					Remote:      DefaultRemote,
					Branch:      DefaultBranch,
					SetUpstream: true,
				}))
			},
		},
	})
}
