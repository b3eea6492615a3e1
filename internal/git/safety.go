package git

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
)

// testEnvVar is set by this package's TestMain. While it is set, mutating commands
// refuse to run outside a temporary directory.
const testEnvVar = "GO_TEST_ENV"

var errUnsafeTestRepo = errors.New("SAFETY: refusing to modify a repository outside a temp directory during tests")

func (c *Client) guardTestRepo() error {
	if os.Getenv(testEnvVar) != "1" {
		return nil
	}
	dir := c.runner.Dir
	if dir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return err
		}
		dir = wd
	}
	if !isTempPath(dir) {
		return errUnsafeTestRepo
	}
	return nil
}

func isTempPath(dir string) bool {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return false
	}
	tmp, err := filepath.EvalSymlinks(os.TempDir())
	if err != nil {
		tmp = os.TempDir()
	}
	if resolved, err := filepath.EvalSymlinks(abs); err == nil {
		abs = resolved
	}
	return strings.HasPrefix(abs, tmp) ||
		strings.Contains(abs, "/tmp/") ||
		strings.Contains(abs, "\\Temp\\") ||
		strings.Contains(abs, "gpush_git_test")
}
