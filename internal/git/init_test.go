package git

import (
	"os"
	"testing"
)

// TestMain runs before all tests in this package
func TestMain(m *testing.M) {
	// Set test environment flag to enable safety checks
	os.Setenv(testEnvVar, "1")

	code := m.Run()

	os.Unsetenv(testEnvVar)

	os.Exit(code)
}
