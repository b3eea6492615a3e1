package cmd

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/samzong/gpush/internal/config"
	"github.com/samzong/gpush/internal/git"
	"github.com/samzong/gpush/internal/llm"
	"github.com/samzong/gpush/internal/workflow"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// captureStreams points the command I/O at buffers for the duration of the test.
func captureStreams(t *testing.T) (stdout, stderr *bytes.Buffer) {
	t.Helper()
	stdout, stderr = &bytes.Buffer{}, &bytes.Buffer{}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
	})
	return stdout, stderr
}

// isolateConfig gives the test a fresh viper state backed by a temp config file.
func isolateConfig(t *testing.T) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("GPUSH_CONFIG", "")
	t.Setenv("GOOGLE_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("GPUSH_NO_SPINNER", "1")

	path := filepath.Join(dir, "gpush", "config.yaml")
	require.NoError(t, config.InitConfig(path))

	origErr := configErr
	configErr = nil
	t.Cleanup(func() { configErr = origErr })
	return path
}

func TestVersion(t *testing.T) {
	assert.Equal(t, "dev", Version)
	assert.Equal(t, "unknown", BuildTime)

	assert.NotNil(t, versionCmd)
	assert.Equal(t, "version", versionCmd.Use)
	assert.Equal(t, "Show gpush version information", versionCmd.Short)

	stdout, _ := captureStreams(t)
	versionCmd.Run(versionCmd, nil)
	assert.Equal(t, "gpush version dev (built at unknown)\n", stdout.String())
}

func TestRootCommand(t *testing.T) {
	assert.NotNil(t, rootCmd)
	assert.Equal(t, "gpush", rootCmd.Use)
	assert.Equal(t, "gpush - Git push assistant", rootCmd.Short)
	assert.Contains(t, rootCmd.Long, "gpush is a CLI tool")
	assert.True(t, rootCmd.SilenceErrors)
	assert.True(t, rootCmd.SilenceUsage)
	assert.Same(t, rootCmd, RootCmd())
}

func TestSubcommandsRegistered(t *testing.T) {
	names := map[string]bool{}
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"first-push", "push", "init", "config", "version", "completion"} {
		assert.True(t, names[want], want)
	}
}

func TestCommandFlags(t *testing.T) {
	persistentFlags := rootCmd.PersistentFlags()

	configFlag := persistentFlags.Lookup("config")
	require.NotNil(t, configFlag)
	assert.Equal(t, "string", configFlag.Value.Type())

	verboseFlag := persistentFlags.Lookup("verbose")
	require.NotNil(t, verboseFlag)
	assert.Equal(t, "bool", verboseFlag.Value.Type())
	assert.Equal(t, "V", verboseFlag.Shorthand)

	logLevelFlag := persistentFlags.Lookup("log-level")
	require.NotNil(t, logLevelFlag)
	assert.Equal(t, "string", logLevelFlag.Value.Type())
}

func TestCommandArgs(t *testing.T) {
	assert.NoError(t, firstPushCmd.Args(firstPushCmd, nil))
	assert.NoError(t, firstPushCmd.Args(firstPushCmd, []string{"https://github.com/user/repo.git"}))
	assert.Error(t, firstPushCmd.Args(firstPushCmd, []string{"a", "b"}))

	assert.NoError(t, pushCmd.Args(pushCmd, nil))
	assert.Error(t, pushCmd.Args(pushCmd, []string{"extra"}))
}

func TestRemoteURLSource(t *testing.T) {
	in := &bytes.Buffer{}

	src := remoteURLSource([]string{"git@github.com:user/repo.git"}, in, &bytes.Buffer{})
	assert.Equal(t, workflow.StaticSource("git@github.com:user/repo.git"), src)

	src = remoteURLSource(nil, in, &bytes.Buffer{})
	assert.IsType(t, &workflow.InteractiveSource{}, src)

	src = remoteURLSource([]string{""}, in, &bytes.Buffer{})
	assert.IsType(t, &workflow.InteractiveSource{}, src, "an empty argument falls back to the prompt")
}

func TestHandleErrors(t *testing.T) {
	var buf bytes.Buffer
	logger := log.NewWithOptions(&buf, log.Options{Level: log.DebugLevel})

	t.Run("returns nil for nil error", func(t *testing.T) {
		assert.NoError(t, handleErrors(logger, nil))
	})

	t.Run("swallows workflow error", func(t *testing.T) {
		err := &workflow.OperationError{Op: "push", Err: errors.New("rejected")}
		assert.NoError(t, handleErrors(logger, err))
		assert.Contains(t, buf.String(), "kind=operation")
		assert.Contains(t, buf.String(), "rejected")
	})
}

func TestNewLogger(t *testing.T) {
	orig := logLevel
	t.Cleanup(func() { logLevel = orig })

	tests := []struct {
		name       string
		flag       string
		configured string
		want       log.Level
		wantErr    bool
	}{
		{name: "Default", want: log.InfoLevel},
		{name: "From config", configured: "warn", want: log.WarnLevel},
		{name: "Flag wins", flag: "DEBUG", configured: "error", want: log.DebugLevel},
		{name: "Invalid", configured: "loud", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logLevel = tt.flag
			logger, err := newLogger(&bytes.Buffer{}, tt.configured)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, logger.GetLevel())
		})
	}
}

func TestRequireConfig(t *testing.T) {
	orig := configErr
	t.Cleanup(func() { configErr = orig })

	configErr = errors.New("test config error")
	err := requireConfig()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "configuration error")
	assert.Contains(t, err.Error(), "test config error")

	configErr = nil
	assert.NoError(t, requireConfig())
}

func TestRunPush_RefusesBrokenConfig(t *testing.T) {
	orig := configErr
	t.Cleanup(func() { configErr = orig })
	configErr = errors.New("bad yaml")

	assert.ErrorContains(t, runPush(pushCmd, nil), "bad yaml")
}

func TestRunFirstPush_BrokenConfigOnlyWarns(t *testing.T) {
	isolateConfig(t)
	_, stderr := captureStreams(t)
	firstPushCmd.SetContext(context.Background())
	configErr = errors.New("bad yaml")

	err := runFirstPush(firstPushCmd, []string{"--upload-pack=evil"})

	assert.NoError(t, err)
	assert.Contains(t, stderr.String(), "Ignoring configuration error")
	assert.Contains(t, stderr.String(), "bad yaml")
	assert.Contains(t, stderr.String(), "Could not obtain the repository URL")
}

func TestFallbackConfig(t *testing.T) {
	isolateConfig(t)
	viper.Set("provider", "openai")

	cfg, err := fallbackConfig()
	require.NoError(t, err)
	assert.Equal(t, "openai", cfg.Provider)

	viper.Set("timeout", -1)
	cfg, err = fallbackConfig()
	assert.ErrorContains(t, err, "timeout must not be negative")
	assert.Equal(t, config.Defaults(), cfg)

	viper.Set("timeout", 0)
	viper.Set("log_level", "chatty")
	cfg, err = fallbackConfig()
	assert.ErrorContains(t, err, "invalid log level")
	assert.Equal(t, config.DefaultLogLevel, cfg.LogLevel)

	configErr = errors.New("bad yaml")
	cfg, err = fallbackConfig()
	assert.ErrorContains(t, err, "bad yaml")
	assert.Equal(t, config.Defaults(), cfg)
}

func TestNewContainer(t *testing.T) {
	isolateConfig(t)
	viper.Set("provider", "openai")
	viper.Set("api_key", "sk-test")
	viper.Set("timeout", 7)

	container, err := newContainer(streams{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}, config.GetConfig)
	require.NoError(t, err)

	err = container.Invoke(func(
		cfg *config.Config, g *git.Client, gen *llm.Client,
		b *workflow.Bootstrapper, c *workflow.Committer, logger *log.Logger,
	) {
		assert.Equal(t, "openai", cfg.Provider)
		assert.Equal(t, 7, cfg.Timeout)
		assert.Equal(t, "openai", gen.Provider())
		assert.Equal(t, llm.DefaultModel("openai"), gen.Model())
		assert.NotNil(t, g)
		assert.NotNil(t, b)
		assert.NotNil(t, c)
		assert.Equal(t, log.InfoLevel, logger.GetLevel())
	})
	assert.NoError(t, err)
}

func TestNewContainer_InvalidLogLevel(t *testing.T) {
	isolateConfig(t)
	viper.Set("log_level", "chatty")

	container, err := newContainer(streams{Out: &bytes.Buffer{}, Err: &bytes.Buffer{}}, config.GetConfig)
	require.NoError(t, err)

	err = container.Invoke(func(*log.Logger) {})
	assert.ErrorContains(t, err, "invalid log level")
}

func TestRunPush_OutsideRepository(t *testing.T) {
	isolateConfig(t)
	_, stderr := captureStreams(t)
	pushCmd.SetContext(context.Background())

	err := runPush(pushCmd, nil)

	assert.NoError(t, err, "workflow failures never change the exit status")
	assert.Contains(t, stderr.String(), "not a git repository")
}

func TestRunFirstPush_InvalidURLNeverTouchesDisk(t *testing.T) {
	path := isolateConfig(t)
	_, stderr := captureStreams(t)
	firstPushCmd.SetContext(context.Background())

	err := runFirstPush(firstPushCmd, []string{"--upload-pack=evil"})

	assert.NoError(t, err)
	assert.Contains(t, stderr.String(), "Could not obtain the repository URL")
	_, statErr := os.Stat(filepath.Join(filepath.Dir(filepath.Dir(path)), ".git"))
	assert.True(t, os.IsNotExist(statErr), "git init must not run")
}

func TestConfigCommandStructure(t *testing.T) {
	assert.Equal(t, "config", configCmd.Use)
	assert.Equal(t, "Manage gpush configuration", configCmd.Short)
	assert.Equal(t, "set <key> <value>", configSetCmd.Use)
	assert.Equal(t, "get", configGetCmd.Use)
	assert.Error(t, configSetCmd.Args(configSetCmd, []string{"model"}))
}

func TestCompleteConfigKeys(t *testing.T) {
	keys, _ := completeConfigKeys(configSetCmd, nil, "")
	assert.Equal(t, config.SettableKeys(), keys)

	providers, _ := completeConfigKeys(configSetCmd, []string{"provider"}, "")
	assert.Equal(t, config.GetSuggestedProviders(), providers)
}

func TestParseConfigValue(t *testing.T) {
	tests := []struct {
		key     string
		raw     string
		want    any
		wantErr bool
	}{
		{key: "provider", raw: "OpenAI", want: "openai"},
		{key: "provider", raw: "claude", wantErr: true},
		{key: "timeout", raw: "30", want: 30},
		{key: "timeout", raw: "-1", wantErr: true},
		{key: "max_diff_bytes", raw: "many", wantErr: true},
		{key: "model", raw: " gemini-1.5-flash ", want: "gemini-1.5-flash"},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.raw, func(t *testing.T) {
			got, err := parseConfigValue(tt.key, tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSetConfigValue(t *testing.T) {
	path := isolateConfig(t)
	var out bytes.Buffer

	require.NoError(t, setConfigValue(&out, "api_key", "sk-1234567890"))
	require.NoError(t, setConfigValue(&out, "timeout", "15"))

	assert.Contains(t, out.String(), "Set api_key to sk-1...7890")
	assert.NotContains(t, out.String(), "sk-1234567890")
	assert.Contains(t, out.String(), "Set timeout to 15")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "timeout: 15")

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	assert.ErrorContains(t, setConfigValue(&out, "role", "dev"), "unknown configuration key")
}

func TestPrintConfig(t *testing.T) {
	var out bytes.Buffer
	printConfig(&out, &config.Config{
		Provider:     "gemini",
		APIKey:       "AIzaSyExampleKey",
		MaxDiffBytes: 16000,
		LogLevel:     "info",
	})

	s := out.String()
	assert.Contains(t, s, "Provider: gemini")
	assert.Contains(t, s, "Model: gemini-pro (default)")
	assert.Contains(t, s, "API Key: AIza...eKey")
	assert.Contains(t, s, "API Base: <not set>")
	assert.Contains(t, s, "Timeout: none")
	assert.Contains(t, s, "Max diff bytes: 16000")
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "<not set>", maskAPIKey(""))
	assert.Equal(t, "********", maskAPIKey("short"))
	assert.Equal(t, "abcd...wxyz", maskAPIKey("abcdefghijklmnopqrstuvwxyz"))
}

func TestRunCompletion(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish", "powershell"} {
		t.Run(shell, func(t *testing.T) {
			stdout, _ := captureStreams(t)
			require.NoError(t, runCompletion(completionCmd, []string{shell}))
			assert.Contains(t, stdout.String(), "gpush")
		})
	}
}
