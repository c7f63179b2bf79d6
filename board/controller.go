package board

import (
	"fmt"
	"strings"
	"sync"
	"unicode/utf8"

	"go-soundboard/debug"
)

// PlaybackHandle is the per-pad audio output the controller drives
type PlaybackHandle interface {
	SetSource(url string)
	SetVolume(v float64) // 0.0-1.0
	SeekStart()
	Play()
}

// Trigger describes one pad activation
type Trigger struct {
	Index  int
	Pad    PadDefinition
	Played bool // false when powered off or the handle is not mounted
	Volume int
}

// Controller owns the board state and the pad playback handles.
// All operations are safe to call from any goroutine.
type Controller struct {
	mu      sync.Mutex
	state   State
	handles [NumPads]PlaybackHandle // fixed at Mount, nil = unmounted
	clock   Clock

	subs      []chan struct{}
	onTrigger []func(Trigger)
}

// Option configures a Controller
type Option func(*Controller)

// WithState overrides the initial state (volume is clamped, transients cleared)
func WithState(s State) Option {
	return func(c *Controller) {
		s.VolumePercent = clampVolume(s.VolumePercent)
		s.DisplayText = ""
		s.ActiveKey = NoKey
		c.state = s
	}
}

// WithTriggerListener registers fn to be called after every pad trigger
func WithTriggerListener(fn func(Trigger)) Option {
	return func(c *Controller) {
		c.onTrigger = append(c.onTrigger, fn)
	}
}

// New creates a controller in the default state. A nil clock uses WallClock.
func New(clock Clock, opts ...Option) *Controller {
	if clock == nil {
		clock = WallClock{}
	}
	c := &Controller{
		state: DefaultState(),
		clock: clock,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Mount installs the playback handles (index i belongs to Pads[i]) and
// resolves each handle's source for the current bank
func (c *Controller) Mount(handles [NumPads]PlaybackHandle) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handles = handles
	c.resolveSources()
	debug.Log("board", "mounted bank=%v", c.state.BankActive)
}

// Unmount detaches all handles. Later triggers still pulse but play nothing.
func (c *Controller) Unmount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handles = [NumPads]PlaybackHandle{}
	debug.Log("board", "unmounted")
}

// resolveSources binds every mounted handle to the active bank (caller holds mu)
func (c *Controller) resolveSources() {
	for i, h := range c.handles {
		if h != nil {
			h.SetSource(Pads[i].URL(c.state.BankActive))
		}
	}
}

// TogglePower flips power. In-flight audio and pending reverts are untouched.
func (c *Controller) TogglePower() {
	c.mu.Lock()
	c.state.Power = !c.state.Power
	debug.Log("board", "power=%v", c.state.Power)
	c.notifyLocked()
	c.mu.Unlock()
}

// ToggleBank flips the sample bank and rebinds the handles to it
func (c *Controller) ToggleBank() {
	c.mu.Lock()
	c.state.BankActive = !c.state.BankActive
	c.resolveSources()
	debug.Log("board", "bank=%v", c.state.BankActive)
	c.notifyLocked()
	c.mu.Unlock()
}

// SetVolume sets the volume and shows it for DisplayRevert
func (c *Controller) SetVolume(v int) {
	c.mu.Lock()
	v = clampVolume(v)
	c.state.VolumePercent = v
	c.state.DisplayText = fmt.Sprintf("Volume: %d", v)
	c.notifyLocked()
	c.mu.Unlock()

	// Each change clears on its own schedule, even if a newer change
	// has replaced the text by then.
	c.clock.AfterFunc(DisplayRevert, c.clearDisplay)
}

func (c *Controller) clearDisplay() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.DisplayText == "" {
		return
	}
	c.state.DisplayText = ""
	c.notifyLocked()
}

func (c *Controller) clearActive() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state.ActiveKey == NoKey {
		return
	}
	c.state.ActiveKey = NoKey
	c.notifyLocked()
}

// TriggerPad activates the pad bound to key. Unknown keys are ignored.
func (c *Controller) TriggerPad(key rune) {
	idx := PadIndex(key)
	if idx < 0 {
		return
	}
	pad := Pads[idx]

	c.mu.Lock()
	c.state.ActiveKey = key
	t := Trigger{Index: idx, Pad: pad, Volume: c.state.VolumePercent}

	if c.state.Power {
		if h := c.handles[idx]; h != nil {
			h.SetVolume(float64(c.state.VolumePercent) / 100)
			h.SeekStart()
			h.Play()
			c.state.DisplayText = pad.Label(c.state.BankActive)
			t.Played = true
		}
	}
	debug.Log("board", "trigger %c played=%v vol=%d", key, t.Played, t.Volume)
	c.notifyLocked()
	listeners := c.onTrigger
	c.mu.Unlock()

	c.clock.AfterFunc(ActiveRevert, c.clearActive)

	for _, fn := range listeners {
		fn(t)
	}
}

// HandleExternalKey routes a raw key name from any input source.
// Only single characters naming a pad (case-insensitive) trigger it.
func (c *Controller) HandleExternalKey(raw string) {
	key := strings.ToUpper(raw)
	if utf8.RuneCountInString(key) != 1 {
		return
	}
	r, _ := utf8.DecodeRuneInString(key)
	if PadIndex(r) < 0 {
		return
	}
	c.TriggerPad(r)
}

// Snapshot returns a copy of the current state
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Highlight returns the current highlight of the pad bound to key
func (c *Controller) Highlight(key rune) Highlight {
	return c.Snapshot().HighlightFor(key)
}

// Subscribe returns a channel that receives a signal after state changes.
// Signals coalesce: a slow reader sees at most one pending signal.
func (c *Controller) Subscribe() <-chan struct{} {
	c.mu.Lock()
	defer c.mu.Unlock()
	ch := make(chan struct{}, 1)
	c.subs = append(c.subs, ch)
	return ch
}

func (c *Controller) notifyLocked() {
	for _, ch := range c.subs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
}
