package gitcmd

import (
	"bytes"
	"context"
	"io"
	"os/exec"
	"strings"

	"github.com/charmbracelet/log"
)

// Runner executes git commands with shared logging and output handling.
type Runner struct {
	Verbose bool
	Dir     string
	Logger  *log.Logger
}

// Result contains captured stdout/stderr for a git command.
type Result struct {
	Stdout []byte
	Stderr []byte
}

func (r Result) StdoutString(trim bool) string {
	output := string(r.Stdout)
	if trim {
		return strings.TrimSpace(output)
	}
	return output
}

func (r Runner) command(ctx context.Context, args ...string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, "git", args...)
	if r.Dir != "" {
		cmd.Dir = r.Dir
	}
	return cmd
}

func (r Runner) log(args []string) {
	if !r.Verbose || r.Logger == nil {
		return
	}
	r.Logger.Info("running", "cmd", "git "+strings.Join(args, " "))
}

// Run executes a git command, logs it when verbose, and captures stdout/stderr.
func (r Runner) Run(ctx context.Context, args ...string) (Result, error) {
	r.log(args)
	cmd := r.command(ctx, args...)
	var outBuf bytes.Buffer
	var errBuf bytes.Buffer
	cmd.Stdout = &outBuf
	cmd.Stderr = &errBuf

	err := cmd.Run()
	return Result{Stdout: outBuf.Bytes(), Stderr: errBuf.Bytes()}, err
}

// RunWithWriters executes a git command with its output streamed to the given writers.
// Stderr is still captured so failures can report it.
func (r Runner) RunWithWriters(ctx context.Context, stdout io.Writer, stderr io.Writer, args ...string) (Result, error) {
	r.log(args)
	cmd := r.command(ctx, args...)
	var errBuf bytes.Buffer
	if stdout != nil {
		cmd.Stdout = stdout
	}
	if stderr != nil {
		cmd.Stderr = io.MultiWriter(stderr, &errBuf)
	} else {
		cmd.Stderr = &errBuf
	}

	err := cmd.Run()
	return Result{Stderr: errBuf.Bytes()}, err
}
