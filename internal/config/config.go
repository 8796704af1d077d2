// Package config loads the driver configuration.
//
// Configuration comes from a HuJSON file (comments and trailing commas
// allowed) merged over built-in defaults, with CLI flags taking
// precedence over both. String fields may reference environment
// variables as $NAME or ${NAME}; referencing an unset variable is a
// fatal error.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/tailscale/hujson"

	"buildtest/internal/job"
)

// ConfigFileName is the default config file name, looked up in the
// working directory.
const ConfigFileName = "buildtest.json"

// Config holds all configuration options.
type Config struct {
	// From config file (serialized)

	// ScratchRoot is the externally supplied directory the dedicated
	// scratch dir is created under.
	ScratchRoot string `json:"scratch_root"`

	// ScratchName is the dedicated scratch dir's name. Empty derives
	// "<job name>_tmp" with non-path characters mapped to '_'.
	ScratchName string `json:"scratch_name,omitempty"`

	// EnvSetupScript is sourced in a shell before the run; the PATH it
	// produces is carried into every later command.
	EnvSetupScript string `json:"env_setup"`

	// PrereqScript installs build prerequisites. It is invoked with
	// PrereqConfirmFlag so it never prompts.
	PrereqScript      string `json:"prereq_install"`
	PrereqConfirmFlag string `json:"prereq_confirm_flag,omitempty"`

	// VersionCommands are run first, one per toolchain component.
	VersionCommands [][]string `json:"version_commands"`

	// TestCommand is the test-runner invocation.
	TestCommand []string `json:"test_command"`

	// Timeout bounds the test-runner invocation's wall-clock time.
	// A [time.ParseDuration] string; "0" disables the bound.
	Timeout string `json:"timeout"`

	// StrictEnv is set on the test-runner's environment. Defaults
	// promote compiler and lint warnings to errors and enable
	// diagnostic backtraces.
	StrictEnv map[string]string `json:"strict_env"`

	// ReportPath, if set, is where the machine-readable run report is
	// written. Empty disables the report.
	ReportPath string `json:"report_path,omitempty"`

	// Job is the metadata block the orchestrator consumes.
	Job job.Metadata `json:"job"`

	// Resolved values (computed, not serialized)

	// EffectiveCwd is the absolute working directory.
	EffectiveCwd string `json:"-"`

	// ScratchDir is the absolute path of the dedicated scratch dir.
	ScratchDir string `json:"-"`

	// TestTimeout is the parsed Timeout.
	TestTimeout time.Duration `json:"-"`

	// Source is the config file that was loaded, empty if none.
	Source string `json:"-"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ScratchRoot:       "/var/tmp",
		EnvSetupScript:    "./tools/ci_env.sh",
		PrereqScript:      "./tools/install_prerequisites.sh",
		PrereqConfirmFlag: "-y",
		VersionCommands: [][]string{
			{"cargo", "--version"},
			{"rustc", "--version"},
		},
		TestCommand: []string{"cargo", "nextest", "run", "--profile", "ci", "--verbose"},
		Timeout:     "75m",
		StrictEnv: map[string]string{
			"RUSTFLAGS":      "-D warnings",
			"RUSTDOCFLAGS":   "-D warnings",
			"RUST_BACKTRACE": "1",
		},
		Job: job.Metadata{
			Name:      "build-and-test",
			Variety:   "basic",
			Target:    "helios-2.0",
			Toolchain: "stable",
		},
	}
}

// Overrides are the CLI flag values layered on top of the file config.
// Zero values mean "not set".
type Overrides struct {
	ScratchRoot string
	Timeout     string
	ReportPath  string
}

// LoadInput holds the inputs for [Load].
type LoadInput struct {
	// WorkDirOverride is the -C/--cwd flag value; empty uses os.Getwd.
	WorkDirOverride string

	// ConfigPath is the -c/--config flag value. If set, the file must
	// exist. If empty, ConfigFileName in the working directory is
	// loaded when present.
	ConfigPath string

	// Overrides are the flag-level overrides.
	Overrides Overrides

	// Env is the ambient environment used for $VAR expansion.
	Env map[string]string
}

// Load loads configuration with the following precedence (highest
// wins): defaults, config file, CLI overrides. All string fields are
// then expanded against the environment and all paths resolved to
// absolute.
func Load(input LoadInput) (Config, error) {
	workDir := input.WorkDirOverride
	if workDir == "" {
		var err error

		workDir, err = os.Getwd()
		if err != nil {
			return Config{}, fmt.Errorf("cannot get working directory: %w", err)
		}
	}

	cfg := Default()

	path, mustExist := configFilePath(workDir, input.ConfigPath)
	if path != "" {
		loaded, err := loadFile(&cfg, path, mustExist)
		if err != nil {
			return Config{}, err
		}

		if loaded {
			cfg.Source = path
		}
	}

	applyOverrides(&cfg, input.Overrides)

	if err := expandAll(&cfg, input.Env); err != nil {
		return Config{}, err
	}

	if err := validate(cfg); err != nil {
		return Config{}, err
	}

	resolve(&cfg, workDir)

	return cfg, nil
}

func configFilePath(workDir, explicit string) (path string, mustExist bool) {
	if explicit != "" {
		if !filepath.IsAbs(explicit) {
			explicit = filepath.Join(workDir, explicit)
		}

		return explicit, true
	}

	return filepath.Join(workDir, ConfigFileName), false
}

func loadFile(cfg *Config, path string, mustExist bool) (bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) && !mustExist {
			return false, nil
		}

		if os.IsNotExist(err) {
			return false, fmt.Errorf("%w: %s", ErrConfigNotFound, path)
		}

		return false, fmt.Errorf("%w %s: %w", ErrConfigRead, path, err)
	}

	std, err := hujson.Standardize(data)
	if err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	if err := json.Unmarshal(std, cfg); err != nil {
		return false, fmt.Errorf("%w %s: %w", ErrConfigInvalid, path, err)
	}

	return true, nil
}

func applyOverrides(cfg *Config, o Overrides) {
	if o.ScratchRoot != "" {
		cfg.ScratchRoot = o.ScratchRoot
	}

	if o.Timeout != "" {
		cfg.Timeout = o.Timeout
	}

	if o.ReportPath != "" {
		cfg.ReportPath = o.ReportPath
	}
}

// expandAll expands $VAR references in every user-visible string field,
// including command argv elements and strict-env values.
func expandAll(cfg *Config, env map[string]string) error {
	fields := []*string{
		&cfg.ScratchRoot,
		&cfg.ScratchName,
		&cfg.EnvSetupScript,
		&cfg.PrereqScript,
		&cfg.ReportPath,
	}

	for _, f := range fields {
		expanded, err := Expand(*f, env)
		if err != nil {
			return err
		}

		*f = expanded
	}

	for _, argv := range cfg.VersionCommands {
		if err := expandArgv(argv, env); err != nil {
			return err
		}
	}

	if err := expandArgv(cfg.TestCommand, env); err != nil {
		return err
	}

	// Deterministic order so the first unset variable reported is stable.
	keys := make([]string, 0, len(cfg.StrictEnv))
	for k := range cfg.StrictEnv {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	for _, k := range keys {
		expanded, err := Expand(cfg.StrictEnv[k], env)
		if err != nil {
			return err
		}

		cfg.StrictEnv[k] = expanded
	}

	return nil
}

func expandArgv(argv []string, env map[string]string) error {
	for i, arg := range argv {
		expanded, err := Expand(arg, env)
		if err != nil {
			return err
		}

		argv[i] = expanded
	}

	return nil
}

func validate(cfg Config) error {
	if cfg.ScratchRoot == "" {
		return ErrScratchRootEmpty
	}

	if len(cfg.TestCommand) == 0 {
		return ErrTestCommandEmpty
	}

	for _, argv := range cfg.VersionCommands {
		if len(argv) == 0 {
			return ErrVersionCommandEmpty
		}
	}

	if _, err := time.ParseDuration(cfg.Timeout); err != nil {
		return fmt.Errorf("%w: %q", ErrTimeoutInvalid, cfg.Timeout)
	}

	if err := cfg.Job.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrConfigInvalid, err)
	}

	return nil
}

func resolve(cfg *Config, workDir string) {
	cfg.EffectiveCwd = workDir

	if !filepath.IsAbs(cfg.ScratchRoot) {
		cfg.ScratchRoot = filepath.Join(workDir, cfg.ScratchRoot)
	}

	name := cfg.ScratchName
	if name == "" {
		name = scratchNameFor(cfg.Job.Name)
	}

	cfg.ScratchDir = filepath.Join(cfg.ScratchRoot, name)

	if cfg.ReportPath != "" && !filepath.IsAbs(cfg.ReportPath) {
		cfg.ReportPath = filepath.Join(workDir, cfg.ReportPath)
	}

	for _, p := range []*string{&cfg.EnvSetupScript, &cfg.PrereqScript} {
		if *p != "" && !filepath.IsAbs(*p) {
			*p = filepath.Join(workDir, *p)
		}
	}

	// Timeout already validated.
	cfg.TestTimeout, _ = time.ParseDuration(cfg.Timeout)
}

// scratchNameFor derives a scratch dir name from the job name.
func scratchNameFor(jobName string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, jobName)

	return mapped + "_tmp"
}
