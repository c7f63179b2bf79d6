// Package boardtest provides playback doubles for board tests.
package boardtest

import (
	"sync"

	"go-soundboard/board"
)

// Call is one recorded handle invocation
type Call struct {
	Op     string // "source", "volume", "seek", "play"
	URL    string
	Volume float64
}

// Handle records every call made to it
type Handle struct {
	mu    sync.Mutex
	calls []Call
}

func (h *Handle) record(c Call) {
	h.mu.Lock()
	h.calls = append(h.calls, c)
	h.mu.Unlock()
}

func (h *Handle) SetSource(url string) { h.record(Call{Op: "source", URL: url}) }
func (h *Handle) SetVolume(v float64) { h.record(Call{Op: "volume", Volume: v}) }
func (h *Handle) SeekStart() { h.record(Call{Op: "seek"}) }
func (h *Handle) Play() { h.record(Call{Op: "play"}) }

// Calls returns a copy of the recorded calls
func (h *Handle) Calls() []Call {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]Call(nil), h.calls...)
}

// Plays counts Play calls
func (h *Handle) Plays() int {
	n := 0
	for _, c := range h.Calls() {
		if c.Op == "play" {
			n++
		}
	}
	return n
}

// Source returns the most recently bound URL
func (h *Handle) Source() string {
	calls := h.Calls()
	for i := len(calls) - 1; i >= 0; i-- {
		if calls[i].Op == "source" {
			return calls[i].URL
		}
	}
	return ""
}

// Reset forgets recorded calls
func (h *Handle) Reset() {
	h.mu.Lock()
	h.calls = nil
	h.mu.Unlock()
}

// Set is a full arena of recording handles
type Set [board.NumPads]*Handle

// NewSet creates nine recording handles
func NewSet() *Set {
	var s Set
	for i := range s {
		s[i] = &Handle{}
	}
	return &s
}

// Handles converts the set for Controller.Mount
func (s *Set) Handles() [board.NumPads]board.PlaybackHandle {
	var out [board.NumPads]board.PlaybackHandle
	for i, h := range s {
		out[i] = h
	}
	return out
}

// TotalPlays sums Play calls over the set
func (s *Set) TotalPlays() int {
	n := 0
	for _, h := range s {
		n += h.Plays()
	}
	return n
}

// Reset clears every handle
func (s *Set) Reset() {
	for _, h := range s {
		h.Reset()
	}
}
