package surface

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go-soundboard/board"
	"go-soundboard/board/boardtest"
	"go-soundboard/midi"
	"go-soundboard/theme"
)

type fakeController struct {
	id    string
	pads  chan midi.PadEvent
	notes chan midi.NoteEvent

	mu      sync.Mutex
	batches [][]midi.LEDUpdate
}

func newFakeController(id string) *fakeController {
	return &fakeController{
		id:    id,
		pads:  make(chan midi.PadEvent, 8),
		notes: make(chan midi.NoteEvent, 8),
	}
}

func (f *fakeController) ID() string { return f.id }
func (f *fakeController) Type() midi.ControllerType { return midi.ControllerLaunchpad }
func (f *fakeController) PadEvents() <-chan midi.PadEvent { return f.pads }
func (f *fakeController) NoteEvents() <-chan midi.NoteEvent { return f.notes }

func (f *fakeController) SetLEDBatch(updates []midi.LEDUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batches = append(f.batches, updates)
	return nil
}

func (f *fakeController) Close() error {
	close(f.pads)
	close(f.notes)
	return nil
}

func (f *fakeController) lastBatch() []midi.LEDUpdate {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.batches) == 0 {
		return nil
	}
	return f.batches[len(f.batches)-1]
}

func (f *fakeController) batchCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.batches)
}

func newTestSurface(t *testing.T) (*Surface, *board.Controller, *boardtest.Set) {
	t.Helper()
	b := board.New(board.NewManualClock())
	set := boardtest.NewSet()
	b.Mount(set.Handles())
	return New(b, theme.New(theme.MustBuiltin(theme.DefaultPalette))), b, set
}

func TestPadForGrid_BottomLeftBlock(t *testing.T) {
	tests := []struct {
		row, col int
		key      rune
	}{
		{2, 0, 'Q'}, {2, 2, 'E'},
		{1, 1, 'S'},
		{0, 0, 'Z'}, {0, 2, 'C'},
	}
	for _, tt := range tests {
		key, ok := PadForGrid(tt.row, tt.col)
		require.True(t, ok)
		require.Equal(t, tt.key, key, "row %d col %d", tt.row, tt.col)
	}

	for _, rc := range [][2]int{{3, 0}, {0, 3}, {-1, 0}, {7, 7}} {
		_, ok := PadForGrid(rc[0], rc[1])
		require.False(t, ok, "row %d col %d", rc[0], rc[1])
	}
}

func TestGridForPad_InvertsPadForGrid(t *testing.T) {
	for i, p := range board.Pads {
		row, col := GridForPad(i)
		key, ok := PadForGrid(row, col)
		require.True(t, ok)
		require.Equal(t, p.Key, key)
	}
}

func TestResolve(t *testing.T) {
	a, _, _ := Resolve(midi.TopRow, PowerCol)
	require.Equal(t, ActionPower, a)

	a, _, _ = Resolve(midi.TopRow, BankCol)
	require.Equal(t, ActionBank, a)

	a, _, vol := Resolve(7, midi.SceneCol)
	require.Equal(t, ActionVolume, a)
	require.Equal(t, 100, vol)

	a, _, vol = Resolve(0, midi.SceneCol)
	require.Equal(t, ActionVolume, a)
	require.Equal(t, 0, vol)

	a, key, _ := Resolve(2, 0)
	require.Equal(t, ActionPad, a)
	require.Equal(t, 'Q', key)

	a, _, _ = Resolve(midi.TopRow, 5)
	require.Equal(t, ActionNone, a)
	a, _, _ = Resolve(5, 5)
	require.Equal(t, ActionNone, a)
}

func TestPadForNote(t *testing.T) {
	key, ok := PadForNote(36)
	require.True(t, ok)
	require.Equal(t, 'Q', key)

	key, ok = PadForNote(44)
	require.True(t, ok)
	require.Equal(t, 'C', key)

	_, ok = PadForNote(35)
	require.False(t, ok)
	_, ok = PadForNote(45)
	require.False(t, ok)
}

func TestHandlePad_RoutesToBoard(t *testing.T) {
	s, b, set := newTestSurface(t)

	s.HandlePad(2, 0)
	require.Equal(t, 1, set[0].Plays())
	require.Equal(t, 'Q', b.Snapshot().ActiveKey)

	s.HandlePad(midi.TopRow, BankCol)
	require.True(t, b.Snapshot().BankActive)

	s.HandlePad(midi.TopRow, PowerCol)
	require.False(t, b.Snapshot().Power)

	s.HandlePad(7, midi.SceneCol)
	require.Equal(t, 100, b.Snapshot().VolumePercent)
	require.Equal(t, "Volume: 100", b.Snapshot().DisplayText)
}

func TestHandleNote_TriggersPad(t *testing.T) {
	s, b, set := newTestSurface(t)

	s.HandleNote(40)
	require.Equal(t, 1, set[4].Plays())
	require.Equal(t, 'S', b.Snapshot().ActiveKey)

	s.HandleNote(60)
	require.Equal(t, 1, set.TotalPlays())
}

func TestAttach_RoutesControllerEvents(t *testing.T) {
	s, _, set := newTestSurface(t)
	fc := newFakeController("lp")

	s.HandleDeviceEvent(midi.DeviceEvent{Type: midi.DeviceConnected, Controller: fc, ID: "lp"})
	require.Equal(t, 1, s.Attached())

	fc.pads <- midi.PadEvent{Row: 0, Col: 0, Velocity: 100}
	fc.notes <- midi.NoteEvent{Note: 37, Velocity: 90}

	require.Eventually(t, func() bool {
		return set[6].Plays() == 1 && set[1].Plays() == 1
	}, time.Second, 5*time.Millisecond)

	s.HandleDeviceEvent(midi.DeviceEvent{Type: midi.DeviceDisconnected, ID: "lp"})
	require.Zero(t, s.Attached())
	fc.Close()
}

func TestRenderLEDs_Default(t *testing.T) {
	th := theme.New(theme.MustBuiltin(theme.DefaultPalette))
	leds := RenderLEDs(board.DefaultState(), th)

	byPos := map[[2]int]midi.LEDUpdate{}
	for _, l := range leds {
		byPos[[2]int{l.Row, l.Col}] = l
	}

	// nine pads + power on + volume meter up to 50
	_, ok := byPos[[2]int{midi.TopRow, PowerCol}]
	require.True(t, ok)
	_, ok = byPos[[2]int{midi.TopRow, BankCol}]
	require.False(t, ok)
	require.Equal(t, [3]uint8(th.PadRGB(board.HighlightNone)), byPos[[2]int{2, 0}].Color)

	lit := 0
	for row := 0; row < VolumeSteps; row++ {
		if _, ok := byPos[[2]int{row, midi.SceneCol}]; ok {
			lit++
		}
	}
	require.Equal(t, 4, lit) // 0, 14, 28, 42
}

func TestRenderLEDs_ActivePad(t *testing.T) {
	th := theme.New(theme.MustBuiltin(theme.DefaultPalette))
	s := board.DefaultState()
	s.ActiveKey = 'E'

	for _, l := range RenderLEDs(s, th) {
		if l.Row == 2 && l.Col == 2 {
			require.Equal(t, [3]uint8(th.PadRGB(board.HighlightPowered)), l.Color)
			return
		}
	}
	t.Fatal("pad E not rendered")
}

func TestFlushLEDs_SendsOnlyChanges(t *testing.T) {
	s, b, _ := newTestSurface(t)
	fc := newFakeController("lp")
	s.Attach(fc)
	defer fc.Close()

	s.flushLEDs()
	first := len(fc.lastBatch())
	require.Equal(t, len(RenderLEDs(b.Snapshot(), s.theme)), first)

	s.flushLEDs()
	require.Equal(t, 1, fc.batchCount(), "unchanged state sends nothing")

	b.ToggleBank()
	s.flushLEDs()
	require.Len(t, fc.lastBatch(), 1)
	require.Equal(t, BankCol, fc.lastBatch()[0].Col)

	b.ToggleBank()
	s.flushLEDs()
	require.Len(t, fc.lastBatch(), 1)
	require.Equal(t, [3]uint8{}, fc.lastBatch()[0].Color, "removed light is cleared")
}

func TestRun_FlushesOnBoardChange(t *testing.T) {
	s, b, _ := newTestSurface(t)
	fc := newFakeController("lp")
	s.Attach(fc)
	defer fc.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go s.Run(ctx)

	require.Eventually(t, func() bool { return fc.batchCount() == 1 }, time.Second, 5*time.Millisecond)
	b.TogglePower()
	require.Eventually(t, func() bool { return fc.batchCount() == 2 }, time.Second, 5*time.Millisecond)
}

type noteRecorder struct {
	notes []uint8
	vels  []uint8
}

func (r *noteRecorder) Note(note, velocity uint8) error {
	r.notes = append(r.notes, note)
	r.vels = append(r.vels, velocity)
	return nil
}

func TestEcho(t *testing.T) {
	rec := &noteRecorder{}
	b := board.New(board.NewManualClock(), board.WithTriggerListener(Echo(rec)))
	b.Mount(boardtest.NewSet().Handles())

	b.TriggerPad('W')
	b.SetVolume(100)
	b.TriggerPad('C')
	b.TogglePower()
	b.TriggerPad('Q')

	require.Equal(t, []uint8{37, 44}, rec.notes)
	require.Equal(t, []uint8{64, 127}, rec.vels)
}
