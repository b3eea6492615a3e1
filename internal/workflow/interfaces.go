// Package workflow provides the first-push and push workflow orchestration logic.
package workflow

import (
	"context"

	"github.com/samzong/gpush/internal/git"
)

// GitClient abstracts git operations for testability.
type GitClient interface {
	Init(ctx context.Context) error
	AddAll(ctx context.Context) error
	Commit(ctx context.Context, messages ...string) error
	RenameBranch(ctx context.Context, name string) error
	AddRemote(ctx context.Context, name, url string) error
	Push(ctx context.Context, opts git.PushOptions) error
	Diff(ctx context.Context) (string, error)
	Status(ctx context.Context) (git.Status, error)
	Reset(ctx context.Context) error
}

// Generator abstracts the language model that drafts commit messages.
type Generator interface {
	GenerateContent(ctx context.Context, prompt string) (string, error)
}

// RemoteURLSource obtains the remote URL for first-push.
type RemoteURLSource interface {
	RemoteURL(ctx context.Context) (string, error)
}
