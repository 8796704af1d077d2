package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"buildtest/internal/config"
)

func writeConfig(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, config.ConfigFileName)

	err := os.WriteFile(path, []byte(content), 0o600)
	require.NoError(t, err)

	return path
}

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir})
	require.NoError(t, err)

	require.Equal(t, "/var/tmp", cfg.ScratchRoot)
	require.Equal(t, filepath.Join("/var/tmp", "build_and_test_tmp"), cfg.ScratchDir)
	require.Equal(t, 75*time.Minute, cfg.TestTimeout)
	require.Equal(t, "-D warnings", cfg.StrictEnv["RUSTFLAGS"])
	require.Equal(t, dir, cfg.EffectiveCwd)
	require.Empty(t, cfg.Source)

	// Collaborator paths resolve relative to the working directory.
	require.Equal(t, filepath.Join(dir, "tools", "ci_env.sh"), cfg.EnvSetupScript)
}

func TestLoadHuJSONFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `{
		// CI driver config, comments and trailing commas allowed.
		"scratch_root": "/var/tmp",
		"scratch_name": "omicron_tmp",
		"timeout": "30m",
		"test_command": ["./run-tests", "--ci"],
		"job": {
			"name": "build-and-test",
			"variety": "basic",
			"target": "helios-2.0",
			"toolchain": "1.78.0",
			"output_rules": ["/work/**",],
		},
	}`)

	cfg, err := config.Load(config.LoadInput{WorkDirOverride: dir})
	require.NoError(t, err)

	require.Equal(t, "/var/tmp/omicron_tmp", cfg.ScratchDir)
	require.Equal(t, 30*time.Minute, cfg.TestTimeout)
	require.Equal(t, []string{"./run-tests", "--ci"}, cfg.TestCommand)
	require.Equal(t, "1.78.0", cfg.Job.Toolchain)
	require.NotEmpty(t, cfg.Source)
}

func TestLoadExplicitConfigMustExist(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	_, err := config.Load(config.LoadInput{
		WorkDirOverride: dir,
		ConfigPath:      "nope.json",
	})
	require.ErrorIs(t, err, config.ErrConfigNotFound)
}

func TestOverridesWinOverFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `{"scratch_root": "/var/tmp", "timeout": "30m"}`)

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: dir,
		Overrides: config.Overrides{
			ScratchRoot: dir,
			Timeout:     "90s",
		},
	})
	require.NoError(t, err)

	require.Equal(t, dir, cfg.ScratchRoot)
	require.Equal(t, 90*time.Second, cfg.TestTimeout)
}

func TestLoadRejectsBadTimeout(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `{"timeout": "soon"}`)

	_, err := config.Load(config.LoadInput{WorkDirOverride: dir})
	require.ErrorIs(t, err, config.ErrTimeoutInvalid)
}

func TestLoadRejectsEmptyTestCommand(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `{"test_command": []}`)

	_, err := config.Load(config.LoadInput{WorkDirOverride: dir})
	require.ErrorIs(t, err, config.ErrTestCommandEmpty)
}

func TestLoadExpandsEnvReferences(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `{
		"scratch_root": "${WORK}/tmp",
		"test_command": ["./run-tests", "--jobs", "$JOBS"],
	}`)

	cfg, err := config.Load(config.LoadInput{
		WorkDirOverride: dir,
		Env:             map[string]string{"WORK": "/work", "JOBS": "4"},
	})
	require.NoError(t, err)

	require.Equal(t, "/work/tmp", cfg.ScratchRoot)
	require.Equal(t, "4", cfg.TestCommand[2])
}

func TestLoadFailsOnUnsetVariable(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeConfig(t, dir, `{"scratch_root": "${NOT_SET_ANYWHERE}/tmp"}`)

	_, err := config.Load(config.LoadInput{WorkDirOverride: dir})
	require.ErrorIs(t, err, config.ErrUnsetVariable)
	require.ErrorContains(t, err, "NOT_SET_ANYWHERE")
}

func TestExpand(t *testing.T) {
	t.Parallel()

	env := map[string]string{"A": "1", "EMPTY": ""}

	tests := []struct {
		name    string
		in      string
		want    string
		wantErr bool
	}{
		{name: "no refs", in: "plain", want: "plain"},
		{name: "braced", in: "${A}x", want: "1x"},
		{name: "bare", in: "$A", want: "1"},
		{name: "set but empty", in: "x${EMPTY}y", want: "xy"},
		{name: "escaped dollar", in: "cost: $$5", want: "cost: $5"},
		{name: "unset", in: "$MISSING", wantErr: true},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			got, err := config.Expand(testCase.in, env)
			if testCase.wantErr {
				require.ErrorIs(t, err, config.ErrUnsetVariable)

				return
			}

			require.NoError(t, err)
			require.Equal(t, testCase.want, got)
		})
	}
}
