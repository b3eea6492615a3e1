package workflow

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/mattn/go-isatty"
	"github.com/samzong/gpush/internal/gitutil"
)

const remoteURLPrompt = "Enter the repository you wish to push to"

// StaticSource is a remote URL supplied on the command line.
type StaticSource string

func (s StaticSource) RemoteURL(context.Context) (string, error) {
	url := strings.TrimSpace(string(s))
	if err := validateRemoteURL(url); err != nil {
		return "", err
	}
	return url, nil
}

// InteractiveSource asks the user for the remote URL until a valid one is entered.
// A huh form is used on a terminal; other readers get a plain line prompt.
type InteractiveSource struct {
	In  io.Reader
	Out io.Writer
}

func (p *InteractiveSource) RemoteURL(ctx context.Context) (string, error) {
	in := p.In
	if in == nil {
		in = os.Stdin
	}
	out := p.Out
	if out == nil {
		out = os.Stderr
	}

	if f, ok := in.(*os.File); ok && (isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())) {
		return p.runForm(ctx)
	}
	return promptLines(ctx, in, out)
}

func (p *InteractiveSource) runForm(ctx context.Context) (string, error) {
	var url string
	input := huh.NewInput().
		Title(remoteURLPrompt).
		Placeholder("https://github.com/user/repo.git").
		Validate(gitutil.ValidateRemoteURL).
		Value(&url)

	if err := huh.NewForm(huh.NewGroup(input)).RunWithContext(ctx); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return "", errors.New("cancelled by user")
		}
		return "", err
	}
	return strings.TrimSpace(url), nil
}

// promptLines re-prompts on invalid input and gives up at EOF.
func promptLines(ctx context.Context, in io.Reader, out io.Writer) (string, error) {
	reader := bufio.NewReader(in)
	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		fmt.Fprintf(out, "%s: ", remoteURLPrompt)
		line, err := reader.ReadString('\n')
		if err != nil && !errors.Is(err, io.EOF) {
			return "", fmt.Errorf("failed to read user input: %w", err)
		}

		url := strings.TrimSpace(line)
		if vErr := validateRemoteURL(url); vErr != nil {
			if errors.Is(err, io.EOF) {
				return "", vErr
			}
			fmt.Fprintln(out, vErr.(*ValidationError).Err)
			continue
		}
		return url, nil
	}
}

func validateRemoteURL(url string) error {
	if err := gitutil.ValidateRemoteURL(url); err != nil {
		return &ValidationError{Field: "repository URL", Err: err}
	}
	return nil
}
