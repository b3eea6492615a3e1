//go:build !prod

package git

import (
	"os"
	"os/exec"
	"testing"
)

// CreateSafeTempRepo creates an initialized git repository in a temporary directory
// and returns a client bound to it. The directory is removed when the test ends.
func CreateSafeTempRepo(t *testing.T) (string, *Client) {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git not available")
	}

	tempDir, err := os.MkdirTemp("", "gpush_git_test_*")
	if err != nil {
		t.Fatalf("Failed to create temp directory: %v", err)
	}
	t.Cleanup(func() {
		if err := os.RemoveAll(tempDir); err != nil {
			t.Errorf("Warning: Failed to remove temp directory: %v", err)
		}
	})

	if !isTempPath(tempDir) {
		t.Fatalf("SAFETY: temp repo %s is not recognised as a temp path", tempDir)
	}

	return tempDir, NewClient(Options{Dir: tempDir})
}

// ConfigureTestIdentity sets a local user so commits work on machines without global git config.
func ConfigureTestIdentity(t *testing.T, dir string) {
	t.Helper()

	for _, args := range [][]string{
		{"config", "user.name", "Test"},
		{"config", "user.email", "test@test.com"},
		{"config", "commit.gpgsign", "false"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		if out, err := cmd.CombinedOutput(); err != nil {
			t.Fatalf("git %v failed: %v: %s", args, err, out)
		}
	}
}

// AssertNotInRealRepo ensures the test is not running in a real git repository.
func AssertNotInRealRepo(t *testing.T, dir string) {
	t.Helper()

	if !isTempPath(dir) {
		t.Fatal("SAFETY: Test is running outside a temporary directory. " +
			"This is dangerous and could corrupt the repository. " +
			"Current directory: " + dir)
	}
}
