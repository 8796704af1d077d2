// Package job describes the metadata a CI job declares for the
// orchestrator: identity, target platform, toolchain pin, and the rules
// selecting which generated artifacts the orchestrator collects.
//
// The driver itself only validates and reprints this metadata; it is
// consumed by the orchestration system that schedules the job.
package job

import (
	"encoding/json"
	"fmt"
)

// Metadata identifies a job to the orchestrator.
type Metadata struct {
	// Name is the job's display name, e.g. "build-and-test".
	Name string `json:"name"`

	// Variety selects the orchestrator's execution strategy.
	Variety string `json:"variety"`

	// Target is the platform identifier the job runs on.
	Target string `json:"target"`

	// Toolchain pins the compiler toolchain version.
	Toolchain string `json:"toolchain"`

	// OutputRules are glob patterns describing which generated paths
	// the orchestrator preserves. A leading '!' excludes matches.
	OutputRules []string `json:"output_rules"`
}

// Validate checks the metadata is complete enough for the orchestrator
// and that every output rule compiles.
func (m Metadata) Validate() error {
	if m.Name == "" {
		return ErrNameEmpty
	}

	if m.Variety == "" {
		return ErrVarietyEmpty
	}

	if m.Target == "" {
		return ErrTargetEmpty
	}

	if _, err := CompileRules(m.OutputRules); err != nil {
		return fmt.Errorf("%w: %w", ErrRulesInvalid, err)
	}

	return nil
}

// JSON returns the canonical JSON form consumed by the orchestrator.
func (m Metadata) JSON() ([]byte, error) {
	b, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding job metadata: %w", err)
	}

	return append(b, '\n'), nil
}
