package theme

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"go-soundboard/board"
)

// Theme maps color roles onto a palette. The palette can be swapped at
// runtime (config reload) while the TUI keeps rendering.
type Theme struct {
	mu      sync.RWMutex
	palette *Palette
	Symbols Symbols
}

type Symbols struct {
	SwitchOn    string // ●
	SwitchOff   string // ○
	SliderFull  rune   // █
	SliderEmpty rune   // ░
}

func New(palette *Palette) *Theme {
	return &Theme{
		palette: palette,
		Symbols: Symbols{
			SwitchOn:    "●",
			SwitchOff:   "○",
			SliderFull:  '█',
			SliderEmpty: '░',
		},
	}
}

// SetPalette swaps the palette
func (t *Theme) SetPalette(p *Palette) {
	t.mu.Lock()
	t.palette = p
	t.mu.Unlock()
}

// Palette returns the current palette
func (t *Theme) Palette() *Palette {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.palette
}

// Color roles mapped to palette positions (0-1)
const (
	RoleBG        = 0.0 // deep violet
	RoleSurface   = 0.1 // idle pad face
	RoleMuted     = 0.3 // help text
	RoleAccent    = 0.4 // header
	RoleFG        = 0.6 // labels
	RolePadOff    = 0.7 // pulse while powered off (gray)
	RoleDisplayBG = 0.8 // display panel
	RolePadOn     = 0.9 // pulse while powered (amber)
	RoleSwitchOn  = 1.0 // switch knob
)

// Style helpers

func (t *Theme) BG() lipgloss.Color { return t.Color(RoleBG) }
func (t *Theme) FG() lipgloss.Color { return t.Color(RoleFG) }
func (t *Theme) Accent() lipgloss.Color { return t.Color(RoleAccent) }
func (t *Theme) Muted() lipgloss.Color { return t.Color(RoleMuted) }
func (t *Theme) Surface() lipgloss.Color { return t.Color(RoleSurface) }
func (t *Theme) Display() lipgloss.Color { return t.Color(RoleDisplayBG) }
func (t *Theme) On() lipgloss.Color { return t.Color(RoleSwitchOn) }

// PadColor returns the pad background for a highlight state
func (t *Theme) PadColor(h board.Highlight) lipgloss.Color {
	return rgbToLipgloss(t.PadRGB(h))
}

// PadRGB returns the raw pad color (for controller LEDs)
func (t *Theme) PadRGB(h board.Highlight) RGB {
	switch h {
	case board.HighlightPowered:
		return t.RGB(RolePadOn)
	case board.HighlightUnpowered:
		return t.RGB(RolePadOff)
	default:
		return t.RGB(RoleSurface)
	}
}

// Color returns lipgloss color for any normalized value 0-1
func (t *Theme) Color(norm float64) lipgloss.Color {
	return rgbToLipgloss(t.RGB(norm))
}

// RGB returns raw RGB for any normalized value
func (t *Theme) RGB(norm float64) RGB {
	return t.Palette().Lookup(norm)
}

func rgbToLipgloss(c RGB) lipgloss.Color {
	return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", c[0], c[1], c[2]))
}
