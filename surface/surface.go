package surface

import (
	"context"
	"sync"
	"time"

	"go-soundboard/board"
	"go-soundboard/debug"
	"go-soundboard/midi"
	"go-soundboard/theme"
)

const ledFPS = 30

// Surface connects MIDI controllers to a board controller
type Surface struct {
	board *board.Controller
	theme *theme.Theme

	mu          sync.Mutex
	controllers map[string]midi.Controller
	prevLEDs    map[string]map[[2]int]midi.LEDUpdate // per controller, for diffing
	ledDirty    bool
}

// New creates a surface for b, coloring LEDs with th
func New(b *board.Controller, th *theme.Theme) *Surface {
	return &Surface{
		board:       b,
		theme:       th,
		controllers: make(map[string]midi.Controller),
		prevLEDs:    make(map[string]map[[2]int]midi.LEDUpdate),
	}
}

// Attach starts routing a controller's input to the board
func (s *Surface) Attach(c midi.Controller) {
	s.mu.Lock()
	s.controllers[c.ID()] = c
	s.prevLEDs[c.ID()] = make(map[[2]int]midi.LEDUpdate)
	s.ledDirty = true
	s.mu.Unlock()

	debug.Log("surface", "attach %s (%s)", c.ID(), c.Type())

	go func() {
		for ev := range c.PadEvents() {
			s.HandlePad(ev.Row, ev.Col)
		}
	}()
	go func() {
		for ev := range c.NoteEvents() {
			s.HandleNote(ev.Note)
		}
	}()
}

// Detach forgets a controller. Its event channels close with the device.
func (s *Surface) Detach(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.controllers, id)
	delete(s.prevLEDs, id)
	debug.Log("surface", "detach %s", id)
}

// Attached returns the number of attached controllers
func (s *Surface) Attached() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.controllers)
}

// HandleDeviceEvent attaches or detaches per a device manager event
func (s *Surface) HandleDeviceEvent(ev midi.DeviceEvent) {
	switch ev.Type {
	case midi.DeviceConnected:
		if ev.Controller != nil {
			s.Attach(ev.Controller)
		}
	case midi.DeviceDisconnected:
		s.Detach(ev.ID)
	}
}

// HandlePad applies a grid button press
func (s *Surface) HandlePad(row, col int) {
	action, key, volume := Resolve(row, col)
	switch action {
	case ActionPad:
		s.board.TriggerPad(key)
	case ActionPower:
		s.board.TogglePower()
	case ActionBank:
		s.board.ToggleBank()
	case ActionVolume:
		s.board.SetVolume(volume)
	}
}

// HandleNote applies a keyboard note
func (s *Surface) HandleNote(note uint8) {
	if key, ok := PadForNote(note); ok {
		s.board.TriggerPad(key)
	}
}

// MarkDirty schedules an LED refresh on the next frame
func (s *Surface) MarkDirty() {
	s.mu.Lock()
	s.ledDirty = true
	s.mu.Unlock()
}

// Run refreshes LEDs on board changes at a fixed FPS until ctx is done
func (s *Surface) Run(ctx context.Context) {
	updates := s.board.Subscribe()
	ticker := time.NewTicker(time.Second / ledFPS)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-updates:
			s.MarkDirty()
		case <-ticker.C:
			s.mu.Lock()
			dirty := s.ledDirty
			s.ledDirty = false
			s.mu.Unlock()

			if dirty {
				s.flushLEDs()
			}
		}
	}
}

// flushLEDs sends only changed LEDs to each controller (diffing + batching)
func (s *Surface) flushLEDs() {
	leds := RenderLEDs(s.board.Snapshot(), s.theme)
	newMap := make(map[[2]int]midi.LEDUpdate, len(leds))
	for _, led := range leds {
		newMap[[2]int{led.Row, led.Col}] = led
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, c := range s.controllers {
		prev := s.prevLEDs[id]
		var updates []midi.LEDUpdate

		for key, led := range newMap {
			if old, ok := prev[key]; !ok || old != led {
				updates = append(updates, led)
			}
		}
		// Clear LEDs that are no longer present
		for key := range prev {
			if _, ok := newMap[key]; !ok {
				updates = append(updates, midi.LEDUpdate{Row: key[0], Col: key[1]})
			}
		}

		if len(updates) > 0 {
			debug.Log("led", "flushLEDs %s: batch=%d prev=%d", id, len(updates), len(prev))
			if err := c.SetLEDBatch(updates); err != nil {
				debug.Log("led", "%s: %v", id, err)
			}
		}
		s.prevLEDs[id] = newMap
	}
}

// NoteSender plays a note (midi.Output)
type NoteSender interface {
	Note(note, velocity uint8) error
}

// Echo returns a trigger listener that plays each sounding pad on out
func Echo(out NoteSender) func(board.Trigger) {
	return func(t board.Trigger) {
		if !t.Played {
			return
		}
		vel := uint8(1 + t.Volume*126/board.MaxVolume)
		if err := out.Note(NoteForPad(t.Index), vel); err != nil {
			debug.Log("surface", "echo %c: %v", t.Pad.Key, err)
		}
	}
}
