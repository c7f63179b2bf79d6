// Package surface drives the board from MIDI controllers and mirrors
// board state back onto their LEDs.
package surface

import (
	"go-soundboard/board"
	"go-soundboard/midi"
	"go-soundboard/theme"
)

// Launchpad layout: the pads occupy the bottom-left 3x3 block, the first
// two top-row buttons are power and bank, the scene column is the volume.
const (
	PowerCol = 0
	BankCol  = 1
)

// VolumeSteps is the number of scene buttons used for volume
const VolumeSteps = midi.GridRows

// BaseNote is the note of the first pad on a keyboard (GM kick)
const BaseNote = 36

// Action is what a controller button does on the board
type Action int

const (
	ActionNone Action = iota
	ActionPad
	ActionPower
	ActionBank
	ActionVolume
)

// Resolve maps a grid button to a board action.
// key is set for ActionPad, volume for ActionVolume.
func Resolve(row, col int) (a Action, key rune, volume int) {
	switch {
	case row == midi.TopRow && col == PowerCol:
		return ActionPower, 0, 0
	case row == midi.TopRow && col == BankCol:
		return ActionBank, 0, 0
	case col == midi.SceneCol && row >= 0 && row < VolumeSteps:
		return ActionVolume, 0, VolumeForRow(row)
	}
	if key, ok := PadForGrid(row, col); ok {
		return ActionPad, key, 0
	}
	return ActionNone, 0, 0
}

// PadForGrid returns the pad under a Launchpad grid button (row 0 = bottom)
func PadForGrid(row, col int) (rune, bool) {
	rows := board.NumPads / board.GridCols
	if row < 0 || row >= rows {
		return 0, false
	}
	p, ok := board.PadAt(rows-1-row, col)
	return p.Key, ok
}

// GridForPad returns the Launchpad button of pad index i
func GridForPad(i int) (row, col int) {
	rows := board.NumPads / board.GridCols
	return rows - 1 - i/board.GridCols, i % board.GridCols
}

// VolumeForRow maps a scene button to a volume, bottom = 0, top = 100
func VolumeForRow(row int) int {
	return row * board.MaxVolume / (VolumeSteps - 1)
}

// PadForNote returns the pad a keyboard note triggers
func PadForNote(note uint8) (rune, bool) {
	i := int(note) - BaseNote
	if i < 0 || i >= board.NumPads {
		return 0, false
	}
	return board.Pads[i].Key, true
}

// NoteForPad is the note echoed for pad index i
func NoteForPad(i int) uint8 {
	return uint8(BaseNote + i)
}

// RenderLEDs returns the lights for a board state. Unlisted buttons are dark.
func RenderLEDs(s board.State, th *theme.Theme) []midi.LEDUpdate {
	leds := make([]midi.LEDUpdate, 0, board.NumPads+2+VolumeSteps)

	for i, p := range board.Pads {
		row, col := GridForPad(i)
		leds = append(leds, midi.LEDUpdate{
			Row:   row,
			Col:   col,
			Color: th.PadRGB(s.HighlightFor(p.Key)),
		})
	}

	if s.Power {
		leds = append(leds, midi.LEDUpdate{Row: midi.TopRow, Col: PowerCol, Color: th.RGB(theme.RoleSwitchOn)})
	}
	if s.BankActive {
		leds = append(leds, midi.LEDUpdate{Row: midi.TopRow, Col: BankCol, Color: th.RGB(theme.RoleSwitchOn)})
	}

	// Volume meter: light every step at or below the current volume
	for row := 0; row < VolumeSteps; row++ {
		if row > 0 && VolumeForRow(row) > s.VolumePercent {
			break
		}
		leds = append(leds, midi.LEDUpdate{Row: row, Col: midi.SceneCol, Color: th.RGB(theme.RoleAccent)})
	}
	return leds
}
