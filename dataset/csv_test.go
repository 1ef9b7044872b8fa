package dataset_test

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warriorguo/reteflow/dataset"
	"github.com/warriorguo/reteflow/types"
)

func TestReadCSV(t *testing.T) {
	input := "\uFEFFpill_id, is_cracked ,weight,color\n" +
		"P001,false,0.71,blue\n" +
		"P002,TRUE,0.92,\n" +
		"P003, , not a number ,black\n"

	source, err := dataset.ReadCSV(strings.NewReader(input))
	assert.Nil(t, err)
	assert.Equal(t, []string{"pill_id", "is_cracked", "weight", "color"}, source.Columns())

	rows, err := source.Rows()
	assert.Nil(t, err)
	assert.Len(t, rows, 3)

	assert.Equal(t, "P001", rows[0]["pill_id"])
	assert.Equal(t, false, rows[0]["is_cracked"])
	assert.Equal(t, 0.71, rows[0]["weight"])

	assert.Equal(t, true, rows[1]["is_cracked"])
	assert.Nil(t, rows[1]["color"])

	assert.Nil(t, rows[2]["is_cracked"])
	assert.Equal(t, "not a number", rows[2]["weight"])
}

func TestReadCSVRaggedRecords(t *testing.T) {
	input := "pill_id,weight\nP001\nP002,0.5,surplus\n"

	source, err := dataset.ReadCSV(strings.NewReader(input))
	assert.Nil(t, err)

	rows, err := source.Rows()
	assert.Nil(t, err)
	assert.Len(t, rows, 2)
	assert.Nil(t, rows[0]["weight"])
	assert.Equal(t, 0.5, rows[1]["weight"])
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := dataset.ReadCSV(strings.NewReader(""))
	assert.NotNil(t, err)

	source, err := dataset.ReadCSV(strings.NewReader("pill_id,weight\n"))
	assert.Nil(t, err)
	rows, err := source.Rows()
	assert.Nil(t, err)
	assert.Empty(t, rows)
}

func TestTypeValue(t *testing.T) {
	assert.Nil(t, dataset.TypeValue(""))
	assert.Nil(t, dataset.TypeValue("   "))
	assert.Equal(t, true, dataset.TypeValue("True"))
	assert.Equal(t, false, dataset.TypeValue("FALSE"))
	assert.Equal(t, 0.92, dataset.TypeValue("0.92"))
	assert.Equal(t, float64(-3), dataset.TypeValue("-3"))
	assert.Equal(t, "blue", dataset.TypeValue(" blue "))
}

func TestWriteCSV(t *testing.T) {
	columns := []string{"pill_id", "weight", "is_cracked", "note", "workflow_decision"}
	rows := []types.Row{
		{"pill_id": "P001", "weight": 0.9, "is_cracked": true, "note": nil, "workflow_decision": "DISCARD"},
		{"pill_id": "P002", "weight": 0.5, "is_cracked": false, "note": "has, comma", "workflow_decision": "ACCEPT"},
	}

	var buf bytes.Buffer
	err := dataset.WriteCSV(&buf, columns, rows)
	assert.Nil(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, "pill_id,weight,is_cracked,note,workflow_decision", lines[0])
	assert.Equal(t, "P001,0.9,true,,DISCARD", lines[1])
	assert.Equal(t, "P002,0.5,false,\"has, comma\",ACCEPT", lines[2])

	// a written file reads back with the same types
	source, err := dataset.ReadCSV(strings.NewReader(buf.String()))
	assert.Nil(t, err)
	back, err := source.Rows()
	assert.Nil(t, err)
	assert.Equal(t, 0.9, back[0]["weight"])
	assert.Equal(t, true, back[0]["is_cracked"])
	assert.Nil(t, back[0]["note"])
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "pills.csv")

	sink := dataset.NewCSVSink(path)
	err := sink.Write([]string{"pill_id", "weight"}, []types.Row{
		{"pill_id": "P001", "weight": 0.42},
	})
	assert.Nil(t, err)

	source, err := dataset.OpenCSV(path)
	assert.Nil(t, err)
	assert.Equal(t, []string{"pill_id", "weight"}, source.Columns())

	rows, err := source.Rows()
	assert.Nil(t, err)
	assert.Len(t, rows, 1)
	assert.Equal(t, 0.42, rows[0]["weight"])
}

func TestOpenCSVMissingFile(t *testing.T) {
	_, err := dataset.OpenCSV(filepath.Join(t.TempDir(), "nope.csv"))
	assert.NotNil(t, err)
}
