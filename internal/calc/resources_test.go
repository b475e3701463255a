package calc

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/alexanderramin/taskup/internal/domain"
)

func TestSummarizeResources(t *testing.T) {
	resources := []*domain.Resource{
		{Type: domain.ResourceEquipment, Total: 10, Available: 10},
		{Type: domain.ResourceEquipment, Total: 10, Available: 1},
		{Type: domain.ResourceHuman, Total: 5, Available: 0},
		{Type: domain.ResourceMaterial, Total: 0, Available: 0},
		{Type: domain.ResourceMaterial, Total: 10, Available: 2},
	}

	got := SummarizeResources(resources)
	assert.Equal(t, 5, got.Total)
	assert.Equal(t, 3, got.Available)
	assert.Equal(t, 1, got.LowStock, "2 of 10 sits on the line and is not low")
	assert.Equal(t, 2, got.OutOfStock)
	assert.Equal(t, map[domain.ResourceType]int{
		domain.ResourceEquipment: 2,
		domain.ResourceHuman:     1,
		domain.ResourceMaterial:  2,
	}, got.ByType)
}

func TestSummarizeResources_Empty(t *testing.T) {
	got := SummarizeResources(nil)
	assert.Zero(t, got.Total)
	assert.NotNil(t, got.ByType)
}
