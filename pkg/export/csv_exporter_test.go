package export

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCSVRenderOrderedRows(t *testing.T) {
	data := Dataset{Headers: []string{"date", "time", "course"}}
	data.Append("2026-09-10", "10:00", "MATH101")
	data.Append("2026-09-12", "14:00", "CS201")

	content, err := NewCSVExporter().Render(data)
	require.NoError(t, err)
	assert.Equal(t, "date,time,course\n2026-09-10,10:00,MATH101\n2026-09-12,14:00,CS201\n", string(content))
}

func TestCSVRenderRejectsMismatchedRow(t *testing.T) {
	data := Dataset{Headers: []string{"date", "time"}}
	data.Append("2026-09-10")

	_, err := NewCSVExporter().Render(data)
	assert.Error(t, err)
}

func TestCSVRenderRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}
