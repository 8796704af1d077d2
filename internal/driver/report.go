package driver

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/docker/go-units"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"

	"buildtest/internal/job"
	"buildtest/internal/runner"
)

// Run results.
const (
	ResultPass = "pass"
	ResultFail = "fail"
)

// Step statuses.
const (
	StepOK     = "ok"
	StepFailed = "failed"
)

const reportPerm = 0o644

// Report is the machine-readable record of one run, written when a
// report path is configured.
type Report struct {
	Job     job.Metadata   `json:"job"`
	Started time.Time      `json:"started"`
	Result  string         `json:"result"`
	Steps   []StepReport   `json:"steps"`
	Test    *runner.Result `json:"test,omitempty"`
	Host    *HostInfo      `json:"host,omitempty"`
}

// StepReport records one step's outcome.
type StepReport struct {
	Name    string        `json:"name"`
	Elapsed time.Duration `json:"elapsed_ns"`
	Status  string        `json:"status"`
	Error   string        `json:"error,omitempty"`
}

// HostInfo is a coarse snapshot of the machine the job ran on.
type HostInfo struct {
	CPUs            int    `json:"cpus,omitempty"`
	MemoryTotal     uint64 `json:"memory_total,omitempty"`
	MemoryAvailable uint64 `json:"memory_available,omitempty"`
}

func newReport(meta job.Metadata, started time.Time) *Report {
	return &Report{
		Job:     meta,
		Started: started.UTC(),
		Result:  ResultFail,
	}
}

func (r *Report) record(name string, elapsed time.Duration, err error) {
	sr := StepReport{Name: name, Elapsed: elapsed, Status: StepOK}
	if err != nil {
		sr.Status = StepFailed
		sr.Error = err.Error()
	}

	r.Steps = append(r.Steps, sr)
}

// collectHost snapshots CPU count and memory. Failures degrade to a
// partial snapshot; the report is diagnostic, not contractual.
func collectHost() *HostInfo {
	info := &HostInfo{}

	if n, err := cpu.Counts(true); err == nil {
		info.CPUs = n
	}

	if vm, err := mem.VirtualMemory(); err == nil {
		info.MemoryTotal = vm.Total
		info.MemoryAvailable = vm.Available
	}

	return info
}

// printResourceSummary echoes the test run's resource usage, the moral
// equivalent of running it under `ptime -m`.
func (d *Driver) printResourceSummary(res runner.Result) {
	ru := res.Rusage

	fmt.Fprintf(d.errOut, "real %s  user %s  sys %s  maxrss %s\n",
		res.Elapsed.Round(time.Millisecond),
		ru.User.Round(time.Millisecond),
		ru.Sys.Round(time.Millisecond),
		units.BytesSize(float64(ru.MaxRSS)))

	if host := d.report.Host; host != nil && host.MemoryTotal > 0 {
		fmt.Fprintf(d.errOut, "host: %d cpus, mem %s total, %s available\n",
			host.CPUs,
			units.BytesSize(float64(host.MemoryTotal)),
			units.BytesSize(float64(host.MemoryAvailable)))
	}
}

// writeReport writes the report atomically, if a path is configured.
func (d *Driver) writeReport() error {
	if d.cfg.ReportPath == "" {
		return nil
	}

	b, err := json.MarshalIndent(d.report, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding run report: %w", err)
	}

	b = append(b, '\n')

	if err := d.fsys.WriteFileAtomic(d.cfg.ReportPath, b, reportPerm); err != nil {
		return fmt.Errorf("writing run report: %w", err)
	}

	return nil
}
