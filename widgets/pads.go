package widgets

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"go-soundboard/board"
	"go-soundboard/theme"
)

// Pad cell geometry in terminal cells
const (
	PadWidth  = 7
	PadHeight = 3
	PadGap    = 1 // blank columns between pads
)

// GridWidth is the rendered width of the pad grid
const GridWidth = board.GridCols*PadWidth + (board.GridCols-1)*PadGap

// RenderPad renders a single pad showing its key glyph
func RenderPad(th *theme.Theme, key rune, h board.Highlight) string {
	fg := th.FG()
	if h != board.HighlightNone {
		fg = th.BG()
	}
	return lipgloss.NewStyle().
		Width(PadWidth).
		Height(PadHeight).
		Align(lipgloss.Center, lipgloss.Center).
		Bold(true).
		Foreground(fg).
		Background(th.PadColor(h)).
		Render(string(key))
}

// RenderPadGrid renders the pads in table order, GridCols per row
func RenderPadGrid(th *theme.Theme, s board.State) string {
	var rows []string
	gap := strings.Repeat(" ", PadGap)
	for start := 0; start < board.NumPads; start += board.GridCols {
		var cells []string
		for i := start; i < start+board.GridCols && i < board.NumPads; i++ {
			if i > start {
				cells = append(cells, gap)
			}
			key := board.Pads[i].Key
			cells = append(cells, RenderPad(th, key, s.HighlightFor(key)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

// PadAtPoint maps a point relative to the grid's top-left corner to a pad.
// Points on gaps or outside the grid return false.
func PadAtPoint(x, y int) (board.PadDefinition, bool) {
	if x < 0 || y < 0 {
		return board.PadDefinition{}, false
	}
	stride := PadWidth + PadGap
	col := x / stride
	if x%stride >= PadWidth {
		return board.PadDefinition{}, false
	}
	return board.PadAt(y/PadHeight, col)
}

// RenderSwitch renders a labeled on/off toggle
func RenderSwitch(th *theme.Theme, label string, on bool) string {
	knob := lipgloss.NewStyle().Foreground(th.Muted()).Render(th.Symbols.SwitchOff + " off")
	if on {
		knob = lipgloss.NewStyle().Foreground(th.On()).Render(th.Symbols.SwitchOn + " on ")
	}
	name := lipgloss.NewStyle().Bold(true).Foreground(th.FG()).Width(SwitchLabelWidth).Render(label)
	return name + knob
}

// Switch geometry: label column, then the knob ("● on " / "○ off")
const (
	SwitchLabelWidth = 7
	SwitchKnobWidth  = 5
)

// SliderWidth is the number of cells in the volume bar
const SliderWidth = 20

// RenderSlider renders the volume bar with its value
func RenderSlider(th *theme.Theme, percent int) string {
	filled := percent * SliderWidth / 100
	bar := strings.Repeat(string(th.Symbols.SliderFull), filled) +
		strings.Repeat(string(th.Symbols.SliderEmpty), SliderWidth-filled)
	return lipgloss.NewStyle().Foreground(th.Accent()).Render(bar) +
		lipgloss.NewStyle().Foreground(th.FG()).Render(fmt.Sprintf(" %3d", percent))
}

// SliderValueAt maps a column on the slider bar to a volume percent
func SliderValueAt(x int) int {
	if x < 0 {
		return 0
	}
	if x >= SliderWidth-1 {
		return 100
	}
	return x * 100 / (SliderWidth - 1)
}

// RenderDisplay renders the text display panel
func RenderDisplay(th *theme.Theme, text string) string {
	return lipgloss.NewStyle().
		Width(GridWidth).
		Align(lipgloss.Center).
		Foreground(th.BG()).
		Background(th.Display()).
		Render(text)
}
