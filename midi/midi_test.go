package midi

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	gomidi "gitlab.com/gomidi/midi/v2"
)

func TestNoteMapping_RoundTrip(t *testing.T) {
	for row := 0; row < GridRows; row++ {
		for col := 0; col <= SceneCol; col++ {
			r, c := noteToRowCol(rowColToNote(row, col))
			require.Equal(t, [2]int{row, col}, [2]int{r, c})
		}
	}
}

func TestNoteMapping_Known(t *testing.T) {
	require.Equal(t, uint8(11), rowColToNote(0, 0))
	require.Equal(t, uint8(88), rowColToNote(7, 7))
	require.Equal(t, uint8(19), rowColToNote(0, SceneCol))
	require.Equal(t, uint8(91), rowColToNote(TopRow, 0))

	r, c := noteToRowCol(95)
	require.Equal(t, TopRow, r)
	require.Equal(t, 4, c)
}

func TestNoteMapping_OutOfGrid(t *testing.T) {
	for _, note := range []uint8{0, 5, 10, 20, 99, 127} {
		r, c := noteToRowCol(note)
		require.Equal(t, -1, r, "note %d", note)
		require.Equal(t, -1, c, "note %d", note)
	}
}

func TestCCToRowCol(t *testing.T) {
	r, c := ccToRowCol(91)
	require.Equal(t, TopRow, r)
	require.Equal(t, 0, c)

	r, _ = ccToRowCol(7)
	require.Equal(t, -1, r)
}

func TestMapRGBToLaunchpad(t *testing.T) {
	require.Equal(t, uint8(0), mapRGBToLaunchpad([3]uint8{0, 0, 0}))
	require.Equal(t, uint8(5), mapRGBToLaunchpad([3]uint8{250, 5, 5}))
	require.Equal(t, uint8(119), mapRGBToLaunchpad([3]uint8{255, 255, 255}))
	require.Equal(t, uint8(21), mapRGBToLaunchpad([3]uint8{10, 250, 10}))
}

func TestClassifyPort(t *testing.T) {
	tests := []struct {
		name string
		want ControllerType
	}{
		{"Launchpad X:Launchpad X LPX MIDI In 20:1", ControllerLaunchpad},
		{"Launchpad X LPX DAW Out", ControllerUnknown},
		{"Midi Through:Midi Through Port-0 14:0", ControllerUnknown},
		{"MPK mini 3", ControllerKeyboard},
		{"", ControllerUnknown},
	}
	for _, tt := range tests {
		require.Equal(t, tt.want, ClassifyPort(tt.name), tt.name)
	}
}

func TestControllerType_String(t *testing.T) {
	require.Equal(t, "launchpad", ControllerLaunchpad.String())
	require.Equal(t, "keyboard", ControllerKeyboard.String())
	require.Equal(t, "unknown", ControllerUnknown.String())
}

func TestKeyboardController_NoPorts(t *testing.T) {
	kb, err := NewKeyboardController("kb", nil)
	require.NoError(t, err)
	require.Equal(t, ControllerKeyboard, kb.Type())
	require.NoError(t, kb.SetLEDBatch([]LEDUpdate{{Row: 1}}))
	require.NoError(t, kb.Close())
	require.NoError(t, kb.Close(), "close is idempotent")

	_, open := <-kb.NoteEvents()
	require.False(t, open)
}

func TestLaunchpadController_NoPorts(t *testing.T) {
	lp, err := NewLaunchpadController("lp", nil, nil)
	require.NoError(t, err)
	require.Equal(t, "lp", lp.ID())
	require.NoError(t, lp.SetLEDBatch([]LEDUpdate{{Row: 0, Col: 0}}))
	require.NoError(t, lp.Close())
	require.NoError(t, lp.Close())
}

type recorder struct {
	mu   sync.Mutex
	msgs []gomidi.Message
}

func (r *recorder) send(msg gomidi.Message) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.msgs = append(r.msgs, msg)
	return nil
}

func (r *recorder) len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.msgs)
}

func TestOutput_NoteOnThenOff(t *testing.T) {
	rec := &recorder{}
	out := &Output{name: "test", channel: 9, send: rec.send}

	require.NoError(t, out.Note(38, 100))
	require.Equal(t, 1, rec.len())

	var ch, key, vel uint8
	require.True(t, rec.msgs[0].GetNoteOn(&ch, &key, &vel))
	require.Equal(t, uint8(9), ch)
	require.Equal(t, uint8(38), key)
	require.Equal(t, uint8(100), vel)

	require.Eventually(t, func() bool { return rec.len() == 2 }, time.Second, 10*time.Millisecond)
	rec.mu.Lock()
	defer rec.mu.Unlock()
	require.True(t, rec.msgs[1].GetNoteOff(&ch, &key, &vel))
	require.Equal(t, uint8(38), key)
}

func TestOutput_CloseWithoutPort(t *testing.T) {
	require.NoError(t, (&Output{}).Close())
}

func TestLaunchpad_HandleMessage(t *testing.T) {
	lp, err := NewLaunchpadController("lp", nil, nil)
	require.NoError(t, err)
	defer lp.Close()

	lp.handleMessage(gomidi.NoteOn(0, 13, 90))         // row 0 col 2
	lp.handleMessage(gomidi.NoteOn(0, 13, 0))          // release
	lp.handleMessage(gomidi.ControlChange(0, 92, 127)) // top row col 1
	lp.handleMessage(gomidi.ControlChange(0, 92, 0))   // release
	lp.handleMessage(gomidi.NoteOn(0, 5, 100))         // off grid

	require.Equal(t, PadEvent{Row: 0, Col: 2, Velocity: 90}, <-lp.PadEvents())
	require.Equal(t, PadEvent{Row: TopRow, Col: 1, Velocity: 127}, <-lp.PadEvents())
	require.Empty(t, lp.padChan)
}

func TestKeyboard_HandleMessage(t *testing.T) {
	kb, err := NewKeyboardController("kb", nil)
	require.NoError(t, err)
	defer kb.Close()

	kb.handleMessage(gomidi.NoteOn(9, 38, 64))
	kb.handleMessage(gomidi.NoteOff(9, 38))
	kb.handleMessage(gomidi.ControlChange(0, 1, 64))

	require.Equal(t, NoteEvent{Note: 38, Velocity: 64, Channel: 9}, <-kb.NoteEvents())
	require.Empty(t, kb.noteChan)
}
