package formatter

import (
	"fmt"
	"strings"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

func clampBar(pct float64, width int) (float64, int, int) {
	if pct < 0 {
		pct = 0
	}
	if pct > 1 {
		pct = 1
	}
	if width < 2 {
		width = 2
	}
	filled := int(pct * float64(width))
	if filled > width {
		filled = width
	}
	return pct, filled, width - filled
}

// RenderProgress renders a progress bar like [████░░░░]  45%.
// Green above 66%, yellow from 33%, red below.
func RenderProgress(pct float64, width int) string {
	pct, filled, empty := clampBar(pct, width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, empty)

	style := StyleGreen
	if pct < 0.33 {
		style = StyleRed
	} else if pct < 0.66 {
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %3.0f%%", style.Render(bar), pct*100)
}

// RenderAllocationBar shows how much of a project's ownership is taken.
// Unlike RenderProgress the colors run the other way: a full allocation
// is yellow and an over-allocated one is red.
func RenderAllocationBar(total float64, width int) string {
	_, filled, empty := clampBar(total/100, width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, empty)

	style := StyleGreen
	switch {
	case total > 100:
		style = StyleRed
	case total >= 100:
		style = StyleYellow
	}
	return fmt.Sprintf("[%s] %s", style.Render(bar), Percent(total))
}

// RenderCompactBar renders a bare bar with no brackets or label.
func RenderCompactBar(pct float64, width int, dim bool) string {
	_, filled, empty := clampBar(pct, width)
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, empty)
	if dim {
		return bar
	}
	return StyleBlue.Render(bar)
}
