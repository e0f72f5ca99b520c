package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	buf := &bytes.Buffer{}
	err := WriteCSV(buf, Table{
		Columns: []string{"ID", "Status"},
		Rows:    [][]string{{"r1", "pending"}, {"r2", "completed"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "ID,Status\nr1,pending\nr2,completed\n", buf.String())
}

func TestWriteCSVRejectsRaggedRows(t *testing.T) {
	err := WriteCSV(&bytes.Buffer{}, Table{
		Columns: []string{"ID", "Status"},
		Rows:    [][]string{{"r1"}},
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "row 0")
}

func TestRenderPDF(t *testing.T) {
	data, err := RenderPDF(Table{
		Columns: []string{"Field", "Value"},
		Rows:    [][]string{{"Title", "Incident report copy"}},
	}, "Records Request r1")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF")))
}

func TestRenderPDFRequiresColumns(t *testing.T) {
	_, err := RenderPDF(Table{}, "empty")
	require.Error(t, err)
}
