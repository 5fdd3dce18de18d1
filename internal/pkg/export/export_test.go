package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func sample() []Table {
	return []Table{
		{
			Sheet:   "Projects",
			Title:   "Project report 2024-06-01 to 2024-06-30",
			Headers: []string{"Project", "Hours"},
			Widths:  []float64{30, 12},
			Rows:    [][]interface{}{{"Portal", 16.5}, {"Audit", 2}},
		},
		{
			Sheet:   "Users",
			Headers: []string{"User", "Hours"},
			Rows:    [][]interface{}{{"Dina", 10}},
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteXLSX(&buf, sample()...))

	f, err := excelize.OpenReader(&buf)
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{"Projects", "Users"}, f.GetSheetList())

	title, err := f.GetCellValue("Projects", "A1")
	require.NoError(t, err)
	assert.Equal(t, "Project report 2024-06-01 to 2024-06-30", title)

	head, err := f.GetCellValue("Projects", "A3")
	require.NoError(t, err)
	assert.Equal(t, "Project", head)

	name, err := f.GetCellValue("Projects", "A4")
	require.NoError(t, err)
	assert.Equal(t, "Portal", name)

	user, err := f.GetCellValue("Users", "A2")
	require.NoError(t, err)
	assert.Equal(t, "Dina", user)
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()[0]))
	assert.Equal(t, "Project,Hours\nPortal,16.5\nAudit,2\n", buf.String())
}

func TestWriteCSV_Sections(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sample()...))
	assert.Equal(t, "Project,Hours\nPortal,16.5\nAudit,2\n\nUsers\nUser,Hours\nDina,10\n", buf.String())
}
