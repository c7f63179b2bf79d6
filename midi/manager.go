package midi

import (
	"context"
	"strings"
	"sync"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
	_ "gitlab.com/gomidi/midi/v2/drivers/rtmididrv" // Register MIDI driver

	"go-soundboard/debug"
)

// DeviceEvent is emitted when controllers connect/disconnect
type DeviceEvent struct {
	Type       DeviceEventType
	Controller Controller
	ID         string
}

type DeviceEventType int

const (
	DeviceConnected DeviceEventType = iota
	DeviceDisconnected
)

func (t DeviceEventType) String() string {
	if t == DeviceConnected {
		return "connected"
	}
	return "disconnected"
}

// portTimeout bounds a port listing (CoreMIDI can hang)
const portTimeout = 3 * time.Second

// DeviceManager handles hot-plug detection of MIDI controllers
type DeviceManager struct {
	controllers map[string]Controller
	mu          sync.RWMutex
	events      chan DeviceEvent
	pollRate    time.Duration
}

// NewDeviceManager creates a device manager that rescans every pollRate
func NewDeviceManager(pollRate time.Duration) *DeviceManager {
	if pollRate <= 0 {
		pollRate = time.Second
	}
	return &DeviceManager{
		controllers: make(map[string]Controller),
		events:      make(chan DeviceEvent, 16),
		pollRate:    pollRate,
	}
}

// Events returns a channel of device connect/disconnect events
func (dm *DeviceManager) Events() <-chan DeviceEvent {
	return dm.events
}

// Controllers returns a snapshot of connected controllers
func (dm *DeviceManager) Controllers() map[string]Controller {
	dm.mu.RLock()
	defer dm.mu.RUnlock()
	out := make(map[string]Controller, len(dm.controllers))
	for k, v := range dm.controllers {
		out[k] = v
	}
	return out
}

// Run starts the polling loop (blocking - run in goroutine)
func (dm *DeviceManager) Run(ctx context.Context) {
	ticker := time.NewTicker(dm.pollRate)
	defer ticker.Stop()

	// Initial scan
	dm.scan()

	for {
		select {
		case <-ctx.Done():
			dm.closeAll()
			close(dm.events)
			return
		case <-ticker.C:
			dm.scan()
		}
	}
}

// ListPorts returns the current MIDI ports, or ok=false if the driver hung
func ListPorts() (ins []drivers.In, outs []drivers.Out, ok bool) {
	type portsResult struct {
		ins  []drivers.In
		outs []drivers.Out
	}

	ch := make(chan portsResult, 1)
	go func() {
		ch <- portsResult{ins: gomidi.GetInPorts(), outs: gomidi.GetOutPorts()}
	}()

	select {
	case r := <-ch:
		return r.ins, r.outs, true
	case <-time.After(portTimeout):
		return nil, nil, false
	}
}

func (dm *DeviceManager) scan() {
	inPorts, outPorts, ok := ListPorts()
	if !ok {
		// User needs to run: sudo killall coreaudiod midiserver
		debug.Log("midi", "port scan timed out")
		return
	}

	// Build map of what we see now
	seenIDs := make(map[string]bool)

	for i, inPort := range inPorts {
		kind := ClassifyPort(inPort.String())
		if kind == ControllerUnknown {
			continue
		}
		id := inPort.String()
		seenIDs[id] = true

		dm.mu.RLock()
		_, exists := dm.controllers[id]
		dm.mu.RUnlock()
		if exists {
			continue
		}

		var c Controller
		var err error
		switch kind {
		case ControllerLaunchpad:
			c, err = NewLaunchpadController(id, inPorts[i], matchingOut(id, outPorts))
		case ControllerKeyboard:
			c, err = NewKeyboardController(id, inPorts[i])
		}
		if err != nil {
			debug.Log("midi", "open %s: %v", id, err)
			continue
		}

		dm.mu.Lock()
		dm.controllers[id] = c
		dm.mu.Unlock()

		debug.Log("midi", "%s connected: %s", kind, id)
		dm.events <- DeviceEvent{
			Type:       DeviceConnected,
			Controller: c,
			ID:         id,
		}
	}

	// Check for disconnects
	dm.mu.Lock()
	var toRemove []string
	for id := range dm.controllers {
		if !seenIDs[id] {
			toRemove = append(toRemove, id)
		}
	}
	for _, id := range toRemove {
		dm.controllers[id].Close()
		delete(dm.controllers, id)
		debug.Log("midi", "disconnected: %s", id)
		dm.events <- DeviceEvent{
			Type: DeviceDisconnected,
			ID:   id,
		}
	}
	dm.mu.Unlock()
}

func (dm *DeviceManager) closeAll() {
	dm.mu.Lock()
	defer dm.mu.Unlock()
	for _, c := range dm.controllers {
		c.Close()
	}
	dm.controllers = make(map[string]Controller)
}

// matchingOut finds the output port with the same name as an input
func matchingOut(name string, outs []drivers.Out) drivers.Out {
	for _, op := range outs {
		if strings.EqualFold(op.String(), name) {
			return op
		}
	}
	return nil
}

// ClassifyPort decides what kind of controller an input port name is.
// Virtual through ports and the Launchpad's DAW port are ignored.
func ClassifyPort(name string) ControllerType {
	name = strings.ToLower(name)
	switch {
	case isLaunchpad(name):
		return ControllerLaunchpad
	case strings.Contains(name, "launchpad"):
		return ControllerUnknown // DAW port
	case strings.Contains(name, "through"), strings.Contains(name, "midi thru"):
		return ControllerUnknown
	case name == "":
		return ControllerUnknown
	default:
		return ControllerKeyboard
	}
}

func isLaunchpad(name string) bool {
	name = strings.ToLower(name)
	return strings.Contains(name, "launchpad") && strings.Contains(name, "midi")
}
