// Package components provides reusable TUI components.
package components

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ChudiNnorukam/conservative-twitter-outreach-clean/internal/tui/styles"
)

// QuotaGauge contains data needed to render one daily action pool.
type QuotaGauge struct {
	Action    string
	Used      int
	Limit     int
	Remaining int
}

// RenderQuotaGauge renders a pool as a labelled usage bar. The bar
// turns yellow when the pool is three-quarters spent and red when it
// is empty.
func RenderQuotaGauge(styleSet styles.Styles, gauge QuotaGauge, barWidth int) string {
	if barWidth < 4 {
		barWidth = 4
	}

	filled := 0
	if gauge.Limit > 0 {
		filled = gauge.Used * barWidth / gauge.Limit
		if filled > barWidth {
			filled = barWidth
		}
		if filled == 0 && gauge.Used > 0 {
			filled = 1
		}
	}

	bar := gaugeStyle(styleSet, gauge).Render(strings.Repeat("#", filled)) +
		styleSet.Border.Render(strings.Repeat("-", barWidth-filled))

	label := styleSet.Text.Render(fmt.Sprintf("%-14s", strings.ReplaceAll(gauge.Action, "_", " ")))
	count := styleSet.Muted.Render(fmt.Sprintf("%3d/%-3d", gauge.Used, gauge.Limit))

	return fmt.Sprintf("%s [%s] %s", label, bar, count)
}

func gaugeStyle(styleSet styles.Styles, gauge QuotaGauge) lipgloss.Style {
	switch {
	case gauge.Remaining <= 0:
		return styleSet.GaugeEmpty
	case gauge.Limit > 0 && gauge.Used*4 >= gauge.Limit*3:
		return styleSet.GaugeLow
	default:
		return styleSet.GaugeFull
	}
}
