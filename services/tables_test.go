package services

import (
	"testing"

	"restaurant-backoffice/models"

	"github.com/stretchr/testify/assert"
)

func TestSortTables(t *testing.T) {
	ts := []models.Table{
		{ID: 1, Label: "10"},
		{ID: 2, Label: "2"},
		{ID: 3, Label: "Bar 1"},
		{ID: 4, Label: "1"},
		{ID: 5, Label: "Terrace 12"},
		{ID: 6, Label: "Terrace 3"},
		{ID: 7, Label: "02"},
	}
	SortTables(ts)

	var labels []string
	for _, tb := range ts {
		labels = append(labels, tb.Label)
	}
	assert.Equal(t, []string{"1", "2", "02", "10", "Bar 1", "Terrace 3", "Terrace 12"}, labels)
}

func TestNaturalLess(t *testing.T) {
	assert.True(t, naturalLess("T2", "T10"))
	assert.False(t, naturalLess("T10", "T2"))
	assert.True(t, naturalLess("A", "B"))
	assert.True(t, naturalLess("T1", "T1a"))
	assert.False(t, naturalLess("T1", "T1"))
}

func TestValidTableStatus(t *testing.T) {
	assert.True(t, ValidTableStatus(models.TableReserved))
	assert.False(t, ValidTableStatus("dirty"))
}
