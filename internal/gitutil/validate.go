package gitutil

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-git/go-git/v5/plumbing/transport"
)

// ErrEmptyRemoteURL is returned when a remote URL is blank.
var ErrEmptyRemoteURL = errors.New("repository URL cannot be empty")

// ValidateBranchName validates a git branch name for common illegal patterns.
func ValidateBranchName(name string) error {
	if name == "" {
		return errors.New("branch name cannot be empty")
	}
	if strings.HasPrefix(name, "-") {
		return fmt.Errorf("branch name cannot start with '-': %s", name)
	}
	if strings.Contains(name, "..") {
		return fmt.Errorf("branch name cannot contain '..': %s", name)
	}
	for _, ch := range []string{" ", "~", "^", ":", "?", "*", "["} {
		if strings.Contains(name, ch) {
			return fmt.Errorf("branch name contains invalid character %q: %s", ch, name)
		}
	}
	return nil
}

// ValidateRemoteURL rejects blank URLs and anything git could not use as a remote endpoint.
// Accepted forms include https://, ssh://, scp-like git@host:path and local paths.
func ValidateRemoteURL(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return ErrEmptyRemoteURL
	}
	if strings.HasPrefix(url, "-") {
		return fmt.Errorf("repository URL cannot start with '-': %s", url)
	}
	if _, err := transport.NewEndpoint(url); err != nil {
		return fmt.Errorf("invalid repository URL %q: %w", url, err)
	}
	return nil
}
