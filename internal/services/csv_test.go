package services

import (
	"bytes"
	"encoding/csv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteCSV(t *testing.T) {
	taxonomy := testTaxonomy()
	rows := Flatten(fixtureProjects(), fixtureLabels())

	data, err := WriteCSV(rows, taxonomy)
	require.NoError(t, err)
	require.True(t, bytes.HasPrefix(data, utf8BOM), "csv must start with a UTF-8 BOM")

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)

	assert.Equal(t, ReportColumns(taxonomy), records[0])
	assert.Equal(t, "Alpha", records[1][0])
	assert.Equal(t, "2025-09-05", records[1][9])
	assert.Equal(t, "AWS-TW", records[1][11])
	assert.Equal(t, "3", records[2][10])
}

func TestWriteCSVEmpty(t *testing.T) {
	data, err := WriteCSV(nil, testTaxonomy())
	require.NoError(t, err)

	records, err := csv.NewReader(bytes.NewReader(data[len(utf8BOM):])).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 1, "header row is written even without data")
}
