// Package reporter reads request streams and formats classification
// verdicts for the command line.
package reporter

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bebsworthy/pathsieve/internal/filter"
)

// Format selects how verdicts are written.
type Format string

const (
	// FormatText writes one aligned line per request
	FormatText Format = "text"
	// FormatJSON writes one JSON object per request
	FormatJSON Format = "json"
)

// ParseFormat converts a --format value
func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(s)) {
	case FormatText, "":
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown format %q (expected text or json)", s)
}

const (
	colorRed   = "\x1b[31m"
	colorGreen = "\x1b[32m"
	colorReset = "\x1b[0m"
)

// VerdictReporter turns a batch of decisions into command output
type VerdictReporter struct {
	Format Format

	// Color wraps text verdicts in ANSI colors
	Color bool

	// FailOnBlock makes any blocked request exit with code 2
	FailOnBlock bool
}

// NewVerdictReporter creates a reporter for plain text output
func NewVerdictReporter() *VerdictReporter {
	return &VerdictReporter{Format: FormatText}
}

// ReportResult contains the final report output
type ReportResult struct {
	// Exit code (0 for success, 2 when blocks should fail the run, 1 for other errors)
	ExitCode int
	// Standard error output (for errors and the summary)
	Stderr string
	// Standard output (one verdict per request)
	Stdout string
}

type verdictLine struct {
	Index        int    `json:"index"`
	Decision     string `json:"decision"`
	Identifier   string `json:"identifier,omitempty"`
	Path         string `json:"path"`
	ContentIndex int    `json:"contentIndex,omitempty"`
}

// Report formats the decisions of a batch in request order
func (r *VerdictReporter) Report(requests []filter.Request, result *filter.BatchResult) *ReportResult {
	var out strings.Builder

	for i, req := range requests {
		d := filter.Allow
		if i < len(result.Decisions) {
			d = result.Decisions[i]
		}
		r.writeLine(&out, i, req, d)
	}

	res := &ReportResult{
		Stdout: out.String(),
		Stderr: Summary(len(requests), result),
	}
	if r.FailOnBlock && result.Blocked > 0 {
		res.ExitCode = 2
	}
	return res
}

// Line formats the verdict for the request at position index of a stream
func (r *VerdictReporter) Line(index int, req filter.Request, d filter.Decision) string {
	var out strings.Builder
	r.writeLine(&out, index, req, d)
	return out.String()
}

func (r *VerdictReporter) writeLine(out *strings.Builder, i int, req filter.Request, d filter.Decision) {
	if r.Format == FormatJSON {
		r.writeJSON(out, i, req, d)
	} else {
		r.writeText(out, req, d)
	}
}

func (r *VerdictReporter) writeJSON(out *strings.Builder, i int, req filter.Request, d filter.Decision) {
	// Marshalling strings and ints cannot fail
	data, _ := json.Marshal(verdictLine{
		Index:        i,
		Decision:     d.String(),
		Identifier:   req.Identifier,
		Path:         req.Path,
		ContentIndex: req.ContentIndex,
	})
	out.Write(data)
	out.WriteByte('\n')
}

func (r *VerdictReporter) writeText(out *strings.Builder, req filter.Request, d filter.Decision) {
	verdict := fmt.Sprintf("%-5s", d)
	if r.Color {
		color := colorGreen
		if d == filter.Block {
			color = colorRed
		}
		verdict = color + verdict + colorReset
	}

	out.WriteString(verdict)
	out.WriteString("  ")
	if req.Identifier != "" {
		fmt.Fprintf(out, "[%s] ", req.Identifier)
	}
	out.WriteString(req.Path)
	if req.ContentIndex != 0 {
		fmt.Fprintf(out, " @%d", req.ContentIndex)
	}
	out.WriteByte('\n')
}

// Summary describes a batch in one line
func Summary(total int, result *filter.BatchResult) string {
	s := fmt.Sprintf("%d requests, %d blocked, %d allowed", total, result.Blocked, total-result.Blocked-result.Skipped)
	if result.Skipped > 0 {
		s += fmt.Sprintf(", %d skipped", result.Skipped)
	}
	return s + fmt.Sprintf(" in %s", result.TotalTime.Round(time.Microsecond))
}

// ReportSingleError creates a report for a single error message
func (r *VerdictReporter) ReportSingleError(errorType string, message string, details ...string) *ReportResult {
	var stderr strings.Builder

	stderr.WriteString(fmt.Sprintf("[PATHSIEVE ERROR] %s: %s\n", errorType, message))

	if len(details) > 0 {
		stderr.WriteString("\nDetails:\n")
		for _, detail := range details {
			stderr.WriteString(fmt.Sprintf("- %s\n", detail))
		}
	}

	stderr.WriteString("\nDebug with: pathsieve --debug <command>")

	return &ReportResult{
		ExitCode: 1,
		Stderr:   stderr.String(),
	}
}
