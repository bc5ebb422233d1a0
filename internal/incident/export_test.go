package incident

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var generated = time.Date(2026, 10, 15, 18, 45, 0, 0, time.UTC)

func TestExportSectionsInOrder(t *testing.T) {
	text := ExportText(Defaults(), generated)

	headers := []string{
		"DATE/TIME", "LOCATION", "OFFICER INFORMATION", "RECORDING EQUIPMENT",
		"TIMELINE", "DIALOGUE", "SEARCH", "WITNESSES", "NOTES",
	}
	last := -1
	for _, h := range headers {
		idx := strings.Index(text, "=== "+h+" ===")
		require.NotEqual(t, -1, idx, "missing section %s", h)
		assert.Greater(t, idx, last, "section %s out of order", h)
		last = idx
	}
	assert.True(t, strings.HasPrefix(text, "TRAFFIC STOP INCIDENT REPORT\nGenerated: 2026-10-15T18:45:00Z\n"))
}

func TestExportPlaceholderForEmptyFields(t *testing.T) {
	r := Record{
		Location:    "US-60 & Main\nnear the gas station",
		OfficerName: "Ofc. Reyes",
		Badge:       "   ",
	}
	text := ExportText(r, generated)

	assert.Contains(t, text, "Location: US-60 & Main\nnear the gas station\n")
	assert.Contains(t, text, "Name: Ofc. Reyes\n")
	assert.Contains(t, text, "Badge: "+Placeholder+"\n")
	assert.Contains(t, text, "Date: "+Placeholder+"\n")
	assert.Contains(t, text, "Personal notes: "+Placeholder+"\n")
	assert.Contains(t, text, "Search conducted: No\n")

	// 14 text fields, two of them filled.
	assert.Equal(t, 12, strings.Count(text, Placeholder))
}

func TestExportEveryFieldFilled(t *testing.T) {
	var r Record
	for _, f := range Fields() {
		require.NoError(t, r.Set(f, "x"))
	}
	r.ConsentRequested = true
	text := ExportText(r, generated)

	assert.NotContains(t, text, Placeholder)
	assert.Contains(t, text, "Consent to search requested: Yes\n")
}

func TestWriteExport(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "exports")
	path, err := WriteExport(dir, Record{Agency: "LMPD"}, generated)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "traffic-stop-log-2026-10-15.txt"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "Agency: LMPD\n")
}
