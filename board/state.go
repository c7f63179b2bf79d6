package board

import "time"

// Revert delays for the transient fields
const (
	DisplayRevert = 700 * time.Millisecond
	ActiveRevert  = 500 * time.Millisecond
)

// Volume bounds in percent
const (
	MinVolume     = 0
	MaxVolume     = 100
	DefaultVolume = 50
)

// NoKey marks the absence of an active pad
const NoKey rune = 0

// State is everything the presentation layer needs to render the board
type State struct {
	Power         bool   `json:"power"`
	BankActive    bool   `json:"bankActive"`
	VolumePercent int    `json:"volumePercent"`
	DisplayText   string `json:"displayText"` // transient
	ActiveKey     rune   `json:"activeKey"`   // transient, NoKey when idle
}

// DefaultState is the state at mount: powered, primary bank, half volume
func DefaultState() State {
	return State{
		Power:         true,
		VolumePercent: DefaultVolume,
	}
}

// Highlight is the visual state of one pad
type Highlight int

const (
	HighlightNone Highlight = iota
	HighlightPowered
	HighlightUnpowered
)

func (h Highlight) String() string {
	switch h {
	case HighlightPowered:
		return "powered"
	case HighlightUnpowered:
		return "unpowered"
	default:
		return "none"
	}
}

// HighlightFor derives a pad's highlight from the state
func (s State) HighlightFor(key rune) Highlight {
	if s.ActiveKey == NoKey || s.ActiveKey != key {
		return HighlightNone
	}
	if s.Power {
		return HighlightPowered
	}
	return HighlightUnpowered
}

func clampVolume(v int) int {
	if v < MinVolume {
		return MinVolume
	}
	if v > MaxVolume {
		return MaxVolume
	}
	return v
}
