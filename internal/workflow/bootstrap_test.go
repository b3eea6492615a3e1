package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const repoURL = "https://github.com/user/repo.git"

func TestBootstrapper_RunsAllStepsInOrder(t *testing.T) {
	rec := &recorder{}
	logger, logs := newTestLogger()
	b := NewBootstrapper(newFakeGit(rec), logger)

	report, err := b.Run(context.Background(), StaticSource(repoURL))

	require.NoError(t, err)
	assert.Equal(t, OutcomeSucceeded, report.Outcome)
	assert.Equal(t, []call{
		{Op: "init"},
		{Op: "add", Args: []string{"."}},
		{Op: "commit", Args: []string{"initial Commit"}},
		{Op: "branch", Args: []string{"-M", "main"}},
		{Op: "addRemote", Args: []string{"origin", repoURL}},
		{Op: "push", Args: []string{"origin", "main", "-u"}},
	}, rec.calls)

	for _, s := range report.Steps {
		assert.Equal(t, StepSucceeded, s.State, s.Name)
	}
	assert.Contains(t, logs.String(), "Changes pushed successfully to remote repository.")
}

func TestBootstrapper_PromptsBeforeInit(t *testing.T) {
	rec := &recorder{}
	logger, _ := newTestLogger()
	b := NewBootstrapper(newFakeGit(rec), logger)

	_, err := b.Run(context.Background(), &fakeSource{rec: rec, url: "  " + repoURL + "\n"})

	require.NoError(t, err)
	assert.Equal(t, []string{"prompt", "init", "add", "commit", "branch", "addRemote", "push"}, rec.ops())
	assert.Equal(t, []string{"origin", repoURL}, rec.args("addRemote"))
}

func TestBootstrapper_InvalidURLNeverReachesInit(t *testing.T) {
	for _, url := range []string{"", "   ", "\t\n"} {
		rec := &recorder{}
		logger, _ := newTestLogger()
		b := NewBootstrapper(newFakeGit(rec), logger)

		report, err := b.Run(context.Background(), StaticSource(url))

		var valErr *ValidationError
		require.ErrorAs(t, err, &valErr)
		assert.Equal(t, "validation", ErrorKind(err))
		assert.Equal(t, OutcomeFailed, report.Outcome)
		assert.Empty(t, rec.calls)
	}
}

func TestBootstrapper_SourceErrorHalts(t *testing.T) {
	rec := &recorder{}
	logger, logs := newTestLogger()
	b := NewBootstrapper(newFakeGit(rec), logger)

	_, err := b.Run(context.Background(), &fakeSource{rec: rec, err: errors.New("cancelled by user")})

	require.Error(t, err)
	assert.Equal(t, []string{"prompt"}, rec.ops())
	assert.Contains(t, logs.String(), "Could not obtain the repository URL")
}

func TestBootstrapper_FailFast(t *testing.T) {
	order := []string{"init", "add", "commit", "branch", "addRemote", "push"}
	stepNames := []string{StepInit, StepStage, StepCommit, StepRenameBranch, StepAddRemote, StepPush}

	for i, failing := range order {
		t.Run(failing, func(t *testing.T) {
			rec := &recorder{}
			fg := newFakeGit(rec)
			fg.failOn[failing] = errBoom(failing)
			logger, logs := newTestLogger()

			report, err := NewBootstrapper(fg, logger).Run(context.Background(), StaticSource(repoURL))

			require.Error(t, err)
			var opErr *OperationError
			require.ErrorAs(t, err, &opErr)
			assert.ErrorIs(t, err, fg.failOn[failing])
			assert.Equal(t, "operation", ErrorKind(err))

			assert.Equal(t, order[:i+1], rec.ops(), "later steps must not run")
			for _, op := range order[:i+1] {
				assert.Equal(t, 1, rec.count(op), op)
			}

			assert.Equal(t, OutcomeFailed, report.Outcome)
			failed, ok := report.Failed()
			require.True(t, ok)
			assert.Equal(t, stepNames[i], failed.Name)
			for j, name := range stepNames {
				switch {
				case j < i:
					assert.Equal(t, StepSucceeded, report.State(name), name)
				case j == i:
					assert.Equal(t, StepFailed, report.State(name), name)
				default:
					assert.Equal(t, StepPending, report.State(name), name)
				}
			}
			assert.Contains(t, logs.String(), "exploded")
		})
	}
}
