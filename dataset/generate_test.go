package dataset_test

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/warriorguo/reteflow/dataset"
)

func TestGenerateSample(t *testing.T) {
	palette := map[string]bool{
		"blue": true, "black": true, "white": true, "red": true, "pink": true,
		"green": true, "yellow": true, "purple": true, "orange": true,
	}

	source, err := dataset.GenerateSample(200, 0.05, 42)
	assert.Nil(t, err)
	assert.Equal(t, []string{"pill_id", "is_cracked", "weight", "color"}, source.Columns())

	rows, err := source.Rows()
	assert.Nil(t, err)
	assert.Len(t, rows, 200)
	assert.Equal(t, "P001", rows[0]["pill_id"])
	assert.Equal(t, "P200", rows[199]["pill_id"])

	for _, row := range rows {
		weight, ok := row["weight"].(float64)
		assert.True(t, ok)
		assert.True(t, weight >= 0.05 && weight <= 1.0)
		assert.True(t, palette[row["color"].(string)])
		_, ok = row["is_cracked"].(bool)
		assert.True(t, ok)
	}
	fmt.Printf("sample row: %v\n", rows[0])
}

func TestGenerateSampleDeterminism(t *testing.T) {
	first, err := dataset.GenerateSample(50, 0.1, 7)
	assert.Nil(t, err)
	second, err := dataset.GenerateSample(50, 0.1, 7)
	assert.Nil(t, err)

	firstRows, _ := first.Rows()
	secondRows, _ := second.Rows()
	assert.Equal(t, firstRows, secondRows)
}

func TestGenerateSampleRejects(t *testing.T) {
	_, err := dataset.GenerateSample(0, 0.05, 1)
	assert.NotNil(t, err)

	_, err = dataset.GenerateSample(10, 1.5, 1)
	assert.NotNil(t, err)

	_, err = dataset.GenerateSample(10, -0.1, 1)
	assert.NotNil(t, err)
}
