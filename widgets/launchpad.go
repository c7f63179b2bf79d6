package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-soundboard/midi"
)

// RenderLED renders a single controller light
func RenderLED(color [3]uint8) string {
	style := lipgloss.NewStyle().Foreground(lipgloss.Color(rgbToHex(color)))
	return style.Render("■")
}

// RenderLaunchpad mirrors controller lights as laid out on the device:
// the top button row first, then grid rows 7..0 each followed by its
// scene button. Buttons without an update are drawn in off.
func RenderLaunchpad(leds []midi.LEDUpdate, off [3]uint8) string {
	var lit [midi.TopRow + 1][midi.SceneCol + 1]*[3]uint8
	for i := range leds {
		l := leds[i]
		if l.Row >= 0 && l.Row <= midi.TopRow && l.Col >= 0 && l.Col <= midi.SceneCol {
			lit[l.Row][l.Col] = &leds[i].Color
		}
	}

	var lines []string
	for row := midi.TopRow; row >= 0; row-- {
		var line strings.Builder
		for col := 0; col <= midi.SceneCol; col++ {
			if row == midi.TopRow && col == midi.SceneCol {
				break // no button at 8,8
			}
			if col > 0 {
				line.WriteString(" ")
			}
			if c := lit[row][col]; c != nil {
				line.WriteString(RenderLED(*c))
			} else {
				line.WriteString(RenderLED(off))
			}
		}
		lines = append(lines, line.String())
	}
	return strings.Join(lines, "\n")
}

// RenderLegendItem renders a single legend item: "■ Name - description"
func RenderLegendItem(color [3]uint8, name, desc string) string {
	return fmt.Sprintf("  %s %s - %s", RenderLED(color), name, desc)
}

func rgbToHex(c [3]uint8) string {
	return fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2])
}
