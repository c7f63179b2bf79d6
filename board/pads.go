package board

// PadDefinition binds a key to its two samples
type PadDefinition struct {
	Key          rune // trigger key and display glyph
	PrimaryURL   string
	BankURL      string
	PrimaryLabel string
	BankLabel    string
}

// URL returns the sample for the given bank
func (p PadDefinition) URL(bank bool) string {
	if bank {
		return p.BankURL
	}
	return p.PrimaryURL
}

// Label returns the display name for the given bank
func (p PadDefinition) Label(bank bool) string {
	if bank {
		return p.BankLabel
	}
	return p.PrimaryLabel
}

// NumPads is the size of the pad grid
const NumPads = 9

// GridCols is the number of pads per row
const GridCols = 3

const (
	heaterBase = "https://cdn.freecodecamp.org/testable-projects-fcc/audio/"
	chordBase  = "https://s3.amazonaws.com/freecodecamp/drums/"
)

// Pads is the fixed sample table in grid order (top-left to bottom-right)
var Pads = [NumPads]PadDefinition{
	{Key: 'Q', PrimaryURL: heaterBase + "Heater-1.mp3", BankURL: chordBase + "Chord_1.mp3", PrimaryLabel: "Heater 1", BankLabel: "Chord 1"},
	{Key: 'W', PrimaryURL: heaterBase + "Heater-2.mp3", BankURL: chordBase + "Chord_2.mp3", PrimaryLabel: "Heater 2", BankLabel: "Chord 2"},
	{Key: 'E', PrimaryURL: heaterBase + "Heater-3.mp3", BankURL: chordBase + "Chord_3.mp3", PrimaryLabel: "Heater 3", BankLabel: "Chord 3"},
	{Key: 'A', PrimaryURL: heaterBase + "Heater-4_1.mp3", BankURL: chordBase + "Give_us_a_light.mp3", PrimaryLabel: "Heater 4", BankLabel: "Shaker"},
	{Key: 'S', PrimaryURL: heaterBase + "Heater-6.mp3", BankURL: chordBase + "Dry_Ohh.mp3", PrimaryLabel: "Clap", BankLabel: "Open HH"},
	{Key: 'D', PrimaryURL: heaterBase + "Dsc_Oh.mp3", BankURL: chordBase + "Bld_H1.mp3", PrimaryLabel: "Open-HH", BankLabel: "Close HH"},
	{Key: 'Z', PrimaryURL: heaterBase + "Kick_n_Hat.mp3", BankURL: chordBase + "punchy_kick_1.mp3", PrimaryLabel: "Kick-n'-Hat", BankLabel: "Punchy Kick"},
	{Key: 'X', PrimaryURL: heaterBase + "Kick_n_Hat.mp3", BankURL: chordBase + "side_stick_1.mp3", PrimaryLabel: "Kick", BankLabel: "Side Stick"},
	{Key: 'C', PrimaryURL: heaterBase + "Kick_n_Hat.mp3", BankURL: chordBase + "Brk_Snr.mp3", PrimaryLabel: "Closed-HH", BankLabel: "Snare"},
}

// PadIndex returns the grid position of key, or -1 if no pad uses it
func PadIndex(key rune) int {
	for i := range Pads {
		if Pads[i].Key == key {
			return i
		}
	}
	return -1
}

// LookupPad returns the pad bound to key
func LookupPad(key rune) (PadDefinition, bool) {
	if i := PadIndex(key); i >= 0 {
		return Pads[i], true
	}
	return PadDefinition{}, false
}

// PadAt returns the pad at grid row/col (row 0 is the top row)
func PadAt(row, col int) (PadDefinition, bool) {
	if row < 0 || col < 0 || col >= GridCols {
		return PadDefinition{}, false
	}
	i := row*GridCols + col
	if i >= NumPads {
		return PadDefinition{}, false
	}
	return Pads[i], true
}

// SampleURLs lists every sample in both banks, without duplicates
func SampleURLs() []string {
	seen := map[string]bool{}
	var urls []string
	for _, p := range Pads {
		for _, u := range []string{p.PrimaryURL, p.BankURL} {
			if !seen[u] {
				seen[u] = true
				urls = append(urls, u)
			}
		}
	}
	return urls
}
