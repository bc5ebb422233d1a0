package incident

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// Placeholder replaces every empty text field in an export.
const Placeholder = "[Not provided]"

// #region export
type exportLine struct {
	label string
	value string
}

type exportSection struct {
	header string
	lines  []exportLine
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}

func orPlaceholder(s string) string {
	if strings.TrimSpace(s) == "" {
		return Placeholder
	}
	return s
}

func sections(r Record) []exportSection {
	return []exportSection{
		{"DATE/TIME", []exportLine{
			{"Date", orPlaceholder(r.StopDate)},
			{"Time", orPlaceholder(r.StopTime)},
		}},
		{"LOCATION", []exportLine{
			{"Location", orPlaceholder(r.Location)},
		}},
		{"OFFICER INFORMATION", []exportLine{
			{"Name", orPlaceholder(r.OfficerName)},
			{"Badge", orPlaceholder(r.Badge)},
			{"Agency", orPlaceholder(r.Agency)},
		}},
		{"RECORDING EQUIPMENT", []exportLine{
			{"Recording status", orPlaceholder(r.Recording)},
		}},
		{"TIMELINE", []exportLine{
			{"Reason stated by officer", orPlaceholder(r.Reason)},
			{"Actions observed", orPlaceholder(r.Actions)},
		}},
		{"DIALOGUE", []exportLine{
			{"Consent requests & responses", orPlaceholder(r.ConsentRequests)},
		}},
		{"SEARCH", []exportLine{
			{"Consent to search requested", yesNo(r.ConsentRequested)},
			{"Search conducted", yesNo(r.SearchConducted)},
			{"Searched / seized", orPlaceholder(r.Searches)},
		}},
		{"WITNESSES", []exportLine{
			{"Passengers / witnesses", orPlaceholder(r.Passengers)},
		}},
		{"NOTES", []exportLine{
			{"Follow-up needed", orPlaceholder(r.FollowUp)},
			{"Personal notes", orPlaceholder(r.PersonalNotes)},
		}},
	}
}

// ExportText renders r as the plain-text incident report. Section order and
// labels are fixed; empty text fields print Placeholder and non-empty values
// are copied verbatim.
func ExportText(r Record, generatedAt time.Time) string {
	var b strings.Builder
	b.WriteString("TRAFFIC STOP INCIDENT REPORT\n")
	fmt.Fprintf(&b, "Generated: %s\n", generatedAt.UTC().Format(time.RFC3339))
	for _, s := range sections(r) {
		fmt.Fprintf(&b, "\n=== %s ===\n", s.header)
		for _, l := range s.lines {
			fmt.Fprintf(&b, "%s: %s\n", l.label, l.value)
		}
	}
	return b.String()
}

// ExportFilename names the export file for the given day.
func ExportFilename(t time.Time) string {
	return "traffic-stop-log-" + t.Format(time.DateOnly) + ".txt"
}

// WriteExport writes the report for r into dir and returns the file path.
func WriteExport(dir string, r Record, now time.Time) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("export dir %s: %w", dir, err)
	}
	path := filepath.Join(dir, ExportFilename(now))
	if err := os.WriteFile(path, []byte(ExportText(r, now)), 0o644); err != nil {
		return "", fmt.Errorf("write export %s: %w", path, err)
	}
	return path, nil
}
// #endregion export
