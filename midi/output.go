package midi

import (
	"fmt"
	"strings"
	"time"

	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/drivers"
)

// NoteLength is how long an echoed note is held before its NoteOff
const NoteLength = 100 * time.Millisecond

// Output sends notes to one MIDI output port
type Output struct {
	name    string
	channel uint8 // 0-based
	send    func(msg gomidi.Message) error
	close   func() error
}

// OpenOutput opens the output port whose name contains name (case-insensitive).
// channel is 1-based as printed on hardware.
func OpenOutput(name string, channel int) (*Output, error) {
	if channel < 1 || channel > 16 {
		return nil, fmt.Errorf("midi channel %d out of range 1-16", channel)
	}
	_, outs, ok := ListPorts()
	if !ok {
		return nil, fmt.Errorf("list midi ports: timed out")
	}
	port := findOut(name, outs)
	if port == nil {
		return nil, fmt.Errorf("midi output %q not found", name)
	}
	send, err := gomidi.SendTo(port)
	if err != nil {
		return nil, fmt.Errorf("open output %s: %w", port.String(), err)
	}
	return &Output{
		name:    port.String(),
		channel: uint8(channel - 1),
		send:    send,
		close:   port.Close,
	}, nil
}

func findOut(name string, outs []drivers.Out) drivers.Out {
	want := strings.ToLower(name)
	for _, op := range outs {
		if strings.Contains(strings.ToLower(op.String()), want) {
			return op
		}
	}
	return nil
}

// Name is the opened port's full name
func (o *Output) Name() string {
	return o.name
}

// Note sends NoteOn now and NoteOff after NoteLength
func (o *Output) Note(note, velocity uint8) error {
	if err := o.send(gomidi.NoteOn(o.channel, note, velocity)); err != nil {
		return fmt.Errorf("note on: %w", err)
	}
	time.AfterFunc(NoteLength, func() {
		o.send(gomidi.NoteOff(o.channel, note))
	})
	return nil
}

func (o *Output) Close() error {
	if o.close == nil {
		return nil
	}
	return o.close()
}
