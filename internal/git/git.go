package git

import (
	"context"
	"errors"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	gogit "github.com/go-git/go-git/v5"
	"github.com/samzong/gpush/internal/gitcmd"
	"github.com/samzong/gpush/internal/gitutil"
)

type Options struct {
	Verbose bool
	Dir     string
	Logger  *log.Logger

	// Progress receives push output when Verbose is set.
	Progress io.Writer
}

// Client runs repository operations through the system git binary.
type Client struct {
	runner   gitcmd.Runner
	progress io.Writer
}

func NewClient(opts Options) *Client {
	return &Client{
		runner: gitcmd.Runner{
			Verbose: opts.Verbose,
			Dir:     opts.Dir,
			Logger:  opts.Logger,
		},
		progress: opts.Progress,
	}
}

// PushOptions selects the refspec for Push. Empty Remote and Branch push to the configured upstream.
type PushOptions struct {
	Remote      string
	Branch      string
	SetUpstream bool
}

// Status is the subset of `git status` the workflows care about.
type Status struct {
	NotAdded []string
	Staged   []string
	Modified []string
}

// IsGitRepository reports whether the working directory is inside a git repository.
func (c *Client) IsGitRepository() bool {
	dir := c.runner.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return false
		}
		dir = wd
	}
	_, err := gogit.PlainOpenWithOptions(dir, &gogit.PlainOpenOptions{DetectDotGit: true})
	return err == nil
}

func (c *Client) CheckGitRepository() error {
	if !c.IsGitRepository() {
		return errors.New("not a git repository (or any of the parent directories)")
	}
	return nil
}

func (c *Client) Init(ctx context.Context) error {
	if err := c.guardTestRepo(); err != nil {
		return err
	}
	result, err := c.runner.Run(ctx, "init")
	if err != nil {
		return gitutil.WrapGitError("git init failed", result, err)
	}
	return nil
}

// AddAll executes git add .
func (c *Client) AddAll(ctx context.Context) error {
	result, err := c.runner.Run(ctx, "add", ".")
	if err != nil {
		return gitutil.WrapGitError("git add failed", result, err)
	}
	return nil
}

// Commit passes each message as its own -m paragraph.
func (c *Client) Commit(ctx context.Context, messages ...string) error {
	if err := c.guardTestRepo(); err != nil {
		return err
	}
	if len(messages) == 0 {
		return errors.New("commit message cannot be empty")
	}

	args := []string{"commit"}
	for _, m := range messages {
		args = append(args, "-m", m)
	}
	result, err := c.runner.Run(ctx, args...)
	if err != nil {
		return gitutil.WrapGitError("git commit failed", result, err)
	}
	return nil
}

// RenameBranch force-renames the current branch (git branch -M).
func (c *Client) RenameBranch(ctx context.Context, name string) error {
	if err := gitutil.ValidateBranchName(name); err != nil {
		return err
	}
	result, err := c.runner.Run(ctx, "branch", "-M", name)
	if err != nil {
		return gitutil.WrapGitError("git branch -M failed", result, err)
	}
	return nil
}

func (c *Client) AddRemote(ctx context.Context, name, url string) error {
	if err := gitutil.ValidateRemoteURL(url); err != nil {
		return err
	}
	result, err := c.runner.Run(ctx, "remote", "add", name, strings.TrimSpace(url))
	if err != nil {
		return gitutil.WrapGitError("git remote add failed", result, err)
	}
	return nil
}

func (c *Client) Push(ctx context.Context, opts PushOptions) error {
	if err := c.guardTestRepo(); err != nil {
		return err
	}
	var (
		result gitcmd.Result
		err    error
	)
	if c.runner.Verbose && c.progress != nil {
		result, err = c.runner.RunWithWriters(ctx, c.progress, c.progress, pushArgs(opts)...)
	} else {
		result, err = c.runner.Run(ctx, pushArgs(opts)...)
	}
	if err != nil {
		return gitutil.WrapGitError("git push failed", result, err)
	}
	return nil
}

func pushArgs(opts PushOptions) []string {
	args := []string{"push"}
	if opts.Remote != "" {
		args = append(args, opts.Remote)
		if opts.Branch != "" {
			args = append(args, opts.Branch)
		}
	}
	if opts.SetUpstream {
		args = append(args, "-u")
	}
	return args
}

// Diff returns unstaged changes to tracked files.
func (c *Client) Diff(ctx context.Context) (string, error) {
	result, err := c.runner.Run(ctx, "diff")
	if err != nil {
		return "", gitutil.WrapGitError("git diff failed", result, err)
	}
	return result.StdoutString(false), nil
}

func (c *Client) Status(ctx context.Context) (Status, error) {
	result, err := c.runner.Run(ctx, "status", "--porcelain", "-z")
	if err != nil {
		return Status{}, gitutil.WrapGitError("git status failed", result, err)
	}
	return parseStatus(result.StdoutString(false)), nil
}

// Reset runs `git reset --`, unstaging everything while keeping the working tree.
func (c *Client) Reset(ctx context.Context) error {
	result, err := c.runner.Run(ctx, "reset", "--")
	if err != nil {
		return gitutil.WrapGitError("git reset failed", result, err)
	}
	return nil
}

// parseStatus reads `git status --porcelain -z` output. Renames and copies carry
// the original path in the following NUL-separated field.
func parseStatus(output string) Status {
	var status Status
	entries := strings.Split(output, "\x00")
	for i := 0; i < len(entries); i++ {
		entry := entries[i]
		if len(entry) < 4 {
			continue
		}
		x, y, path := entry[0], entry[1], entry[3:]

		if x == '?' && y == '?' {
			status.NotAdded = append(status.NotAdded, path)
			continue
		}
		if x == '!' {
			continue
		}
		if x != ' ' {
			status.Staged = append(status.Staged, path)
		}
		if y != ' ' {
			status.Modified = append(status.Modified, path)
		}
		if x == 'R' || x == 'C' {
			i++
		}
	}
	return status
}
