package cli_test

import (
	"bytes"
	"strings"
	"testing"

	"buildtest/internal/cli"
)

func TestRunDispatch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		args       []string
		wantExit   int
		wantStdout string
		wantStderr string
	}{
		{
			name:       "no args prints usage",
			args:       []string{"buildtest"},
			wantExit:   0,
			wantStdout: "Usage: buildtest",
		},
		{
			name:       "help flag prints usage",
			args:       []string{"buildtest", "--help"},
			wantExit:   0,
			wantStdout: "Usage: buildtest",
		},
		{
			name:       "help command prints usage",
			args:       []string{"buildtest", "help"},
			wantExit:   0,
			wantStdout: "Usage: buildtest",
		},
		{
			name:       "unknown command",
			args:       []string{"buildtest", "frobnicate"},
			wantExit:   1,
			wantStderr: "unknown command: frobnicate",
		},
		{
			name:       "unknown global flag",
			args:       []string{"buildtest", "--frobnicate", "run"},
			wantExit:   1,
			wantStderr: "unknown flag",
		},
		{
			name:       "meta help",
			args:       []string{"buildtest", "meta", "--help"},
			wantExit:   0,
			wantStdout: "Usage: buildtest meta",
		},
		{
			name:       "run rejects arguments",
			args:       []string{"buildtest", "run", "extra"},
			wantExit:   1,
			wantStderr: "run takes no arguments",
		},
		{
			name:       "bad timeout override",
			args:       []string{"buildtest", "--timeout", "eventually", "run"},
			wantExit:   1,
			wantStderr: "invalid timeout",
		},
	}

	for _, testCase := range tests {
		testCase := testCase
		t.Run(testCase.name, func(t *testing.T) {
			t.Parallel()

			tmpDir := t.TempDir()

			args := append([]string{testCase.args[0], "-C", tmpDir}, testCase.args[1:]...)

			var stdout, stderr bytes.Buffer

			exitCode := cli.Run(nil, &stdout, &stderr, args, nil, nil)

			if exitCode != testCase.wantExit {
				t.Errorf("exit code = %d, want %d\nstderr: %s", exitCode, testCase.wantExit, stderr.String())
			}

			if testCase.wantStdout != "" && !strings.Contains(stdout.String(), testCase.wantStdout) {
				t.Errorf("stdout = %q, want to contain %q", stdout.String(), testCase.wantStdout)
			}

			if testCase.wantStderr != "" && !strings.Contains(stderr.String(), testCase.wantStderr) {
				t.Errorf("stderr = %q, want to contain %q", stderr.String(), testCase.wantStderr)
			}
		})
	}
}

func TestMetaPrintsJobMetadata(t *testing.T) {
	t.Parallel()

	r := cli.NewCLI(t)

	out := r.MustRun("meta")

	for _, want := range []string{`"name": "build-and-test"`, `"variety": "basic"`, `"target":`} {
		if !strings.Contains(out, want) {
			t.Errorf("meta output missing %s:\n%s", want, out)
		}
	}
}

func TestPrintConfigShowsResolvedScratchDir(t *testing.T) {
	t.Parallel()

	r := cli.NewCLI(t)

	stdout, stderr, code := r.Run("--scratch-root", r.Dir, "print-config")
	if code != 0 {
		t.Fatalf("print-config failed: %s", stderr)
	}

	if !strings.Contains(stderr, "scratch dir: "+r.Dir) {
		t.Errorf("stderr should name the resolved scratch dir:\n%s", stderr)
	}

	if !strings.Contains(stdout, `"scratch_root"`) {
		t.Errorf("stdout should carry the config JSON:\n%s", stdout)
	}
}
