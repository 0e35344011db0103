package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	err := WriteCSV(&buf, Table{
		Headers: []string{"Student", "English"},
		Rows:    [][]string{{"Ada, Obi", "85"}},
	})
	require.NoError(t, err)
	assert.Equal(t, "Student,English\n\"Ada, Obi\",85\n", buf.String())
}

func TestWriteCSVRejectsRaggedRows(t *testing.T) {
	assert.Error(t, WriteCSV(&bytes.Buffer{}, Table{}))
	assert.Error(t, WriteCSV(&bytes.Buffer{}, Table{Headers: []string{"a", "b"}, Rows: [][]string{{"1"}}}))
}
