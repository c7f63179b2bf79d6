package midi

import (
	"fmt"
	"sync"
	"sync/atomic"

	"go-soundboard/debug"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

var ledSendCount uint64

// LaunchpadController handles a Novation Launchpad X
type LaunchpadController struct {
	id        string
	outPort   drivers.Out
	inPort    drivers.In
	send      func(msg gomidi.Message) error
	stopFunc  func()
	closeOnce sync.Once

	padChan  chan PadEvent
	noteChan chan NoteEvent
}

// Launchpad X SysEx bodies (F0 ... F7 added by gomidi)
var (
	sysexProgrammerMode = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x00, 0x7F}
	sysexMaxBrightness  = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x08, 0x7F}
	sysexLEDFeedback    = []byte{0x00, 0x20, 0x29, 0x02, 0x0C, 0x0A, 0x01, 0x01}
)

// NewLaunchpadController switches the device to programmer mode and starts
// listening. Either port may be nil.
func NewLaunchpadController(id string, inPort drivers.In, outPort drivers.Out) (*LaunchpadController, error) {
	lp := &LaunchpadController{
		id:       id,
		inPort:   inPort,
		outPort:  outPort,
		padChan:  make(chan PadEvent, 32),
		noteChan: make(chan NoteEvent, 32),
	}

	if outPort != nil {
		send, err := gomidi.SendTo(outPort)
		if err != nil {
			return nil, fmt.Errorf("open output: %w", err)
		}
		lp.send = send
		for _, body := range [][]byte{sysexProgrammerMode, sysexMaxBrightness, sysexLEDFeedback} {
			if err := lp.send(gomidi.SysEx(body)); err != nil {
				return nil, fmt.Errorf("configure %s: %w", id, err)
			}
		}
	}

	if inPort != nil {
		stop, err := gomidi.ListenTo(inPort, func(msg gomidi.Message, timestampms int32) {
			lp.handleMessage(msg)
		})
		if err != nil {
			return nil, fmt.Errorf("open input: %w", err)
		}
		lp.stopFunc = stop
	}

	return lp, nil
}

// handleMessage turns a press (grid note or top-row CC) into a PadEvent.
// Releases and unmapped messages are dropped, as are events nobody reads.
func (lp *LaunchpadController) handleMessage(msg gomidi.Message) {
	var channel, note, velocity, cc, value uint8
	row, col, vel := -1, -1, uint8(0)

	switch {
	case msg.GetNoteOn(&channel, &note, &velocity) && velocity > 0:
		row, col = noteToRowCol(note)
		vel = velocity
	case msg.GetControlChange(&channel, &cc, &value) && value > 0:
		row, col = ccToRowCol(cc)
		vel = value
	}
	if row < 0 {
		return
	}

	select {
	case lp.padChan <- PadEvent{Row: row, Col: col, Velocity: vel}:
	default:
		debug.Log("lp", "%s: pad event dropped", lp.id)
	}
}

func (lp *LaunchpadController) ID() string {
	return lp.id
}

func (lp *LaunchpadController) Type() ControllerType {
	return ControllerLaunchpad
}

func (lp *LaunchpadController) PadEvents() <-chan PadEvent {
	return lp.padChan
}

func (lp *LaunchpadController) NoteEvents() <-chan NoteEvent {
	return lp.noteChan // Launchpad doesn't send note events in the keyboard sense
}

// SetLEDBatch sends multiple LED updates using individual NoteOn messages
// (SysEx batching had color issues - this is simpler and still benefits from
// the caller batching logic which reduces redundant updates)
func (lp *LaunchpadController) SetLEDBatch(updates []LEDUpdate) error {
	if lp.send == nil || len(updates) == 0 {
		return nil
	}

	for _, u := range updates {
		note := rowColToNote(u.Row, u.Col)
		color := mapRGBToLaunchpad(u.Color)
		lp.send(gomidi.NoteOn(u.Channel, note, color))
	}

	atomic.AddUint64(&ledSendCount, uint64(len(updates)))

	debug.LogEvery(50, "lp-send", "batch count=%d (this batch=%d)", atomic.LoadUint64(&ledSendCount), len(updates))

	return nil
}

// ledColor is a light color before palette matching
type ledColor = [3]uint8

// launchpadPalette approximates the Launchpad X velocity palette
var launchpadPalette = []struct {
	velocity uint8
	rgb      ledColor
}{
	{0, ledColor{0, 0, 0}},         // off
	{5, ledColor{255, 0, 0}},       // red
	{6, ledColor{255, 80, 80}},     // bright red
	{7, ledColor{180, 60, 60}},     // dim red
	{9, ledColor{255, 100, 0}},     // orange
	{11, ledColor{180, 80, 40}},    // dim orange
	{13, ledColor{255, 200, 0}},    // yellow
	{17, ledColor{0, 180, 0}},      // green
	{19, ledColor{0, 100, 0}},      // dim green
	{21, ledColor{0, 255, 0}},      // bright green
	{37, ledColor{0, 200, 200}},    // cyan
	{43, ledColor{40, 60, 120}},    // dim blue
	{45, ledColor{0, 100, 255}},    // blue
	{47, ledColor{80, 150, 255}},   // bright blue
	{49, ledColor{150, 0, 200}},    // purple
	{53, ledColor{255, 80, 180}},   // pink
	{78, ledColor{100, 100, 255}},  // light blue
	{84, ledColor{255, 150, 50}},   // bright orange
	{87, ledColor{150, 255, 100}},  // lime
	{97, ledColor{180, 180, 60}},   // dim yellow
	{119, ledColor{255, 255, 255}}, // white
}

// mapRGBToLaunchpad returns the palette velocity nearest to rgb
func mapRGBToLaunchpad(rgb ledColor) uint8 {
	best, bestDist := uint8(0), -1
	for _, p := range launchpadPalette {
		dist := 0
		for i := range rgb {
			d := int(rgb[i]) - int(p.rgb[i])
			dist += d * d
		}
		if bestDist < 0 || dist < bestDist {
			best, bestDist = p.velocity, dist
		}
	}
	return best
}

func (lp *LaunchpadController) Close() error {
	lp.closeOnce.Do(func() {
		// Clear all LEDs on close via batch
		if lp.send != nil {
			var updates []LEDUpdate
			for row := 0; row <= TopRow; row++ {
				for col := 0; col <= SceneCol; col++ {
					if row == TopRow && col == SceneCol {
						continue // no LED at 8,8
					}
					updates = append(updates, LEDUpdate{Row: row, Col: col})
				}
			}
			lp.SetLEDBatch(updates)
		}
		if lp.stopFunc != nil {
			lp.stopFunc()
		}
		close(lp.padChan)
		close(lp.noteChan)
	})
	return nil
}

// Launchpad X note mapping
// 8x8 Grid:  Row 0 (bottom) = notes 11-18, Row 7 = notes 81-88
// Side col:  Col 8 (right side scene buttons) = notes 19, 29, 39, 49, 59, 69, 79, 89
// Top row:   Row 8 (top control row) = CC 91-98 (handled via CC messages)

func rowColToNote(row, col int) uint8 {
	// Top row uses CC, but for LED control we use notes 91-98
	if row == TopRow {
		return uint8(91 + col)
	}
	return uint8((row+1)*10 + col + 1)
}

func noteToRowCol(note uint8) (row, col int) {
	// Top row notes (91-98)
	if note >= 91 && note <= 98 {
		return TopRow, int(note - 91)
	}
	row = int(note/10) - 1
	col = int(note%10) - 1
	// Accept 8x8 grid (rows 0-7, cols 0-7) plus side column (col 8)
	if row < 0 || row >= GridRows || col < 0 || col > SceneCol {
		return -1, -1
	}
	return row, col
}

// ccToRowCol converts CC messages to row/col (for top row buttons)
func ccToRowCol(cc uint8) (row, col int) {
	if cc >= 91 && cc <= 98 {
		return TopRow, int(cc - 91)
	}
	return -1, -1
}
