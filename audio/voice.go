package audio

import (
	"context"
	"math"
	"sync"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/effects"

	"go-soundboard/debug"
)

// Voice is one pad's playback handle. A pad has at most one sounding
// instance: playing again restarts it, like retriggering a sampler slot.
type Voice struct {
	engine *Engine
	key    rune

	mu   sync.Mutex
	src  string
	buf  *beep.Buffer // nil until src has loaded
	gain float64

	// current instance in the mix (guarded by the engine lock)
	seeker beep.StreamSeeker
	vol    *effects.Volume
	ctrl   *beep.Ctrl
}

func newVoice(e *Engine, key rune) *Voice {
	return &Voice{engine: e, key: key, gain: 1}
}

// SetSource binds the voice to a sample. The sounding instance, if any,
// keeps playing the old sample until the next Play.
func (v *Voice) SetSource(src string) {
	v.mu.Lock()
	if src == v.src {
		v.mu.Unlock()
		return
	}
	v.src = src
	v.buf = nil
	if buf, ok := v.engine.loader.Cached(src); ok {
		v.buf = buf
		v.mu.Unlock()
		return
	}
	v.mu.Unlock()

	go func() {
		buf, err := v.engine.loader.Load(context.Background(), src)
		if err != nil {
			debug.Log("audio", "pad %c: %v", v.key, err)
			return
		}
		v.mu.Lock()
		if v.src == src {
			v.buf = buf
		}
		v.mu.Unlock()
	}()
}

// Ready reports whether the bound sample has loaded
func (v *Voice) Ready() bool {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.buf != nil
}

// SetVolume sets linear gain 0-1; applies to the sounding instance too
func (v *Voice) SetVolume(gain float64) {
	v.mu.Lock()
	v.gain = gain
	v.mu.Unlock()

	defer v.engine.lock()()
	if v.vol != nil {
		applyGain(v.vol, gain)
	}
}

// SeekStart rewinds the sounding instance, if any
func (v *Voice) SeekStart() {
	defer v.engine.lock()()
	if v.seeker != nil {
		if err := v.seeker.Seek(0); err != nil {
			debug.Log("audio", "pad %c seek: %v", v.key, err)
		}
	}
}

// Play starts the bound sample from the beginning, cutting off the
// previous instance. Without a loaded sample it does nothing.
func (v *Voice) Play() {
	v.mu.Lock()
	buf, gain := v.buf, v.gain
	v.mu.Unlock()

	if buf == nil {
		debug.Log("audio", "pad %c: sample not loaded", v.key)
		return
	}

	seeker := buf.Streamer(0, buf.Len())
	vol := &effects.Volume{Streamer: seeker, Base: 2}
	applyGain(vol, gain)
	ctrl := &beep.Ctrl{Streamer: vol}

	defer v.engine.lock()()
	if v.ctrl != nil {
		// a nil streamer makes the mixer drop the old instance
		v.ctrl.Streamer = nil
	}
	v.seeker, v.vol, v.ctrl = seeker, vol, ctrl
	v.engine.mixer.Add(ctrl)
}

// applyGain maps linear gain onto beep's exponential volume
func applyGain(vol *effects.Volume, gain float64) {
	vol.Volume, vol.Silent = gainToVolume(gain)
}

func gainToVolume(gain float64) (volume float64, silent bool) {
	if gain <= 0 || math.IsNaN(gain) {
		return 0, true
	}
	if gain > 1 {
		gain = 1
	}
	return math.Log2(gain), false
}
