package audio

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/speaker"
	"golang.org/x/sync/errgroup"

	"go-soundboard/board"
	"go-soundboard/debug"
)

// prefetchLimit bounds concurrent sample downloads
const prefetchLimit = 4

// Engine mixes every pad voice into one output stream
type Engine struct {
	loader *Loader
	mixer  *beep.Mixer
	out    beep.Streamer

	mu      sync.Mutex // guards started
	started bool
	mixMu   sync.Mutex // guards the mixer while the speaker is not running
}

// NewEngine creates an engine. Nothing is audible until Start.
func NewEngine(loader *Loader) *Engine {
	m := &beep.Mixer{}
	return &Engine{
		loader: loader,
		mixer:  m,
		out:    &liveMixer{m: m},
	}
}

// Start opens the speaker and begins playing the mix
func (e *Engine) Start(buffer time.Duration) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		return nil
	}
	sr := e.loader.Format().SampleRate
	if err := speaker.Init(sr, sr.N(buffer)); err != nil {
		return fmt.Errorf("init speaker: %w", err)
	}
	speaker.Play(e.out)
	e.started = true
	debug.Log("audio", "speaker started rate=%d buffer=%s", sr, buffer)
	return nil
}

// Close stops output and drops every voice
func (e *Engine) Close() {
	unlock := e.lock()
	e.mixer.Clear()
	unlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if e.started {
		speaker.Close()
		e.started = false
	}
}

// Output returns the mixed stream (what the speaker pulls from)
func (e *Engine) Output() beep.Streamer {
	return e.out
}

// Active returns the number of voices currently in the mix
func (e *Engine) Active() int {
	defer e.lock()()
	return e.mixer.Len()
}

// lock guards the mixer: through the speaker once it runs, locally before
func (e *Engine) lock() (unlock func()) {
	e.mu.Lock()
	started := e.started
	e.mu.Unlock()
	if started {
		speaker.Lock()
		return speaker.Unlock
	}
	e.mixMu.Lock()
	return e.mixMu.Unlock
}

// Handles creates one voice per pad for board.Controller.Mount
func (e *Engine) Handles() [board.NumPads]board.PlaybackHandle {
	var out [board.NumPads]board.PlaybackHandle
	for i := range out {
		out[i] = newVoice(e, board.Pads[i].Key)
	}
	return out
}

// Prefetch loads every source so bank switches never wait.
// Failures are logged; the first one is returned. Successful loads stay cached.
func (e *Engine) Prefetch(ctx context.Context, urls []string) error {
	var g errgroup.Group
	g.SetLimit(prefetchLimit)
	for _, u := range urls {
		g.Go(func() error {
			if _, err := e.loader.Load(ctx, u); err != nil {
				debug.Log("audio", "prefetch failed: %v", err)
				return err
			}
			return nil
		})
	}
	return g.Wait()
}

// liveMixer keeps the speaker fed with silence when no voice is playing
type liveMixer struct {
	m *beep.Mixer
}

func (l *liveMixer) Stream(samples [][2]float64) (int, bool) {
	n, ok := l.m.Stream(samples)
	if !ok {
		n = 0
	}
	for i := n; i < len(samples); i++ {
		samples[i] = [2]float64{}
	}
	return len(samples), true
}

func (l *liveMixer) Err() error {
	return nil
}
