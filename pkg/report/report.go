// Package report collects per-building findings across a run and
// produces the end-of-run summary: buildings requested, written, and
// skipped with reasons.
package report

import "fmt"

// Stage indicates which pipeline stage produced the finding.
type Stage string

const (
	StageInput       Stage = "input"
	StageGeneration  Stage = "generation"
	StageGeometry    Stage = "geometry"
	StageConsistency Stage = "consistency"
	StageOutput      Stage = "output"
)

// Severity indicates how critical a finding is.
type Severity string

const (
	SeverityError   Severity = "error"
	SeverityWarning Severity = "warning"
	SeverityInfo    Severity = "info"
)

// Finding is a single reported event.
type Finding struct {
	Stage      Stage    `json:"stage"`
	Severity   Severity `json:"severity"`
	BuildingID string   `json:"building_id,omitempty"`
	Message    string   `json:"message"`
}

// Skip records one building withheld from the output.
type Skip struct {
	BuildingID string `json:"building_id"`
	Stage      Stage  `json:"stage"`
	Reason     string `json:"reason"`
}

// Report is the complete run ledger.
type Report struct {
	Requested int       `json:"requested"`
	Written   int       `json:"written"`
	Findings  []Finding `json:"findings"`
	Skipped   []Skip    `json:"skipped"`
}

// New creates an empty report for a run of the given size.
func New(requested int) *Report {
	return &Report{Requested: requested}
}

// AddError records an error finding.
func (r *Report) AddError(stage Stage, buildingID, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Stage:      stage,
		Severity:   SeverityError,
		BuildingID: buildingID,
		Message:    fmt.Sprintf(format, args...),
	})
}

// AddWarning records a warning finding.
func (r *Report) AddWarning(stage Stage, buildingID, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Stage:      stage,
		Severity:   SeverityWarning,
		BuildingID: buildingID,
		Message:    fmt.Sprintf(format, args...),
	})
}

// AddInfo records an informational finding.
func (r *Report) AddInfo(stage Stage, format string, args ...any) {
	r.Findings = append(r.Findings, Finding{
		Stage:    stage,
		Severity: SeverityInfo,
		Message:  fmt.Sprintf(format, args...),
	})
}

// MarkSkipped records that a building was withheld and why. The reason
// also lands in the findings so it shows in the detailed listing.
func (r *Report) MarkSkipped(stage Stage, buildingID, reason string) {
	r.Skipped = append(r.Skipped, Skip{BuildingID: buildingID, Stage: stage, Reason: reason})
	r.AddWarning(stage, buildingID, "skipped: %s", reason)
}

// MarkWritten counts one building successfully serialized.
func (r *Report) MarkWritten() {
	r.Written++
}

// Merge combines another report into this one.
func (r *Report) Merge(other *Report) {
	r.Requested += other.Requested
	r.Written += other.Written
	r.Findings = append(r.Findings, other.Findings...)
	r.Skipped = append(r.Skipped, other.Skipped...)
}

// Errors returns the error-severity findings.
func (r *Report) Errors() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityError {
			out = append(out, f)
		}
	}
	return out
}

// Summary returns the one-line run outcome.
func (r *Report) Summary() string {
	return fmt.Sprintf("%d requested, %d written, %d skipped",
		r.Requested, r.Written, len(r.Skipped))
}
