package formatter

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRenderCompactBar(t *testing.T) {
	tests := []struct {
		name  string
		pct   float64
		width int
		dim   bool
	}{
		{"0% normal", 0.0, 10, false},
		{"50% normal", 0.5, 10, false},
		{"100% normal", 1.0, 10, false},
		{"50% dimmed", 0.5, 10, true},
		{"over 100% clamps", 1.5, 10, false},
		{"negative clamps", -0.5, 10, false},
		{"tiny width clamps to 2", 0.5, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RenderCompactBar(tt.pct, tt.width, tt.dim)
			assert.NotEmpty(t, got)
			assert.NotContains(t, got, "[")
			assert.NotContains(t, got, "%")
		})
	}
}

func TestRenderCompactBarBlocks(t *testing.T) {
	assert.Equal(t, strings.Repeat(emptyBlock, 4), RenderCompactBar(0.0, 4, true))
	assert.Equal(t, strings.Repeat(filledBlock, 4), RenderCompactBar(1.0, 4, true))
	assert.Equal(t, filledBlock+filledBlock+emptyBlock+emptyBlock, RenderCompactBar(0.5, 4, true))
}

func TestRenderProgress(t *testing.T) {
	got := RenderProgress(0.45, 10)
	assert.Contains(t, got, "45%")
	assert.Contains(t, got, "[")
}

func TestRenderAllocationBar(t *testing.T) {
	assert.Contains(t, RenderAllocationBar(75, 8), "75%")
	assert.Contains(t, RenderAllocationBar(75, 8), strings.Repeat(filledBlock, 6))
	assert.Contains(t, RenderAllocationBar(120, 8), "120%")
}
