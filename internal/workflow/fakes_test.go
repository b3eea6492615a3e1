package workflow

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/samzong/gpush/internal/git"
)

// call is one recorded collaborator invocation
type call struct {
	Op   string
	Args []string
}

type recorder struct {
	calls []call
}

func (r *recorder) record(op string, args ...string) {
	r.calls = append(r.calls, call{Op: op, Args: args})
}

func (r *recorder) ops() []string {
	ops := make([]string, len(r.calls))
	for i, c := range r.calls {
		ops[i] = c.Op
	}
	return ops
}

func (r *recorder) count(op string) int {
	n := 0
	for _, c := range r.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (r *recorder) args(op string) []string {
	for _, c := range r.calls {
		if c.Op == op {
			return c.Args
		}
	}
	return nil
}

// fakeGit records every call and fails the ops listed in failOn
type fakeGit struct {
	rec    *recorder
	failOn map[string]error
	diff   string
	status git.Status
}

func newFakeGit(rec *recorder) *fakeGit {
	return &fakeGit{rec: rec, failOn: map[string]error{}}
}

func (f *fakeGit) result(op string) error {
	return f.failOn[op]
}

func (f *fakeGit) Init(context.Context) error {
	f.rec.record("init")
	return f.result("init")
}

func (f *fakeGit) AddAll(context.Context) error {
	f.rec.record("add", ".")
	return f.result("add")
}

func (f *fakeGit) Commit(_ context.Context, messages ...string) error {
	f.rec.record("commit", messages...)
	return f.result("commit")
}

func (f *fakeGit) RenameBranch(_ context.Context, name string) error {
	f.rec.record("branch", "-M", name)
	return f.result("branch")
}

func (f *fakeGit) AddRemote(_ context.Context, name, url string) error {
	f.rec.record("addRemote", name, url)
	return f.result("addRemote")
}

func (f *fakeGit) Push(_ context.Context, opts git.PushOptions) error {
	var args []string
	if opts.Remote != "" {
		args = append(args, opts.Remote)
	}
	if opts.Branch != "" {
		args = append(args, opts.Branch)
	}
	if opts.SetUpstream {
		args = append(args, "-u")
	}
	f.rec.record("push", args...)
	return f.result("push")
}

func (f *fakeGit) Diff(context.Context) (string, error) {
	f.rec.record("diff")
	return f.diff, f.result("diff")
}

func (f *fakeGit) Status(context.Context) (git.Status, error) {
	f.rec.record("status")
	return f.status, f.result("status")
}

func (f *fakeGit) Reset(context.Context) error {
	f.rec.record("reset", "--")
	return f.result("reset")
}

type fakeGenerator struct {
	rec     *recorder
	reply   string
	err     error
	prompts []string
}

func (g *fakeGenerator) GenerateContent(_ context.Context, prompt string) (string, error) {
	g.rec.record("generate")
	g.prompts = append(g.prompts, prompt)
	return g.reply, g.err
}

type fakeSource struct {
	rec *recorder
	url string
	err error
}

func (s *fakeSource) RemoteURL(context.Context) (string, error) {
	s.rec.record("prompt")
	return s.url, s.err
}

func newTestLogger() (*log.Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})
	return logger, &buf
}

func errBoom(op string) error {
	return fmt.Errorf("%s exploded", strings.ToUpper(op))
}
