package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"go-soundboard/board"
	"go-soundboard/midi"
	"go-soundboard/surface"
	"go-soundboard/theme"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		return
	}

	switch os.Args[1] {
	case "list":
		listPorts()
	case "watch":
		watch()
	case "leds":
		testLEDs()
	default:
		usage()
	}
}

func usage() {
	fmt.Println("Soundboard MIDI Test")
	fmt.Println("")
	fmt.Println("Commands:")
	fmt.Println("  list    - List MIDI ports and how each is classified")
	fmt.Println("  watch   - Print the board action for every pad or note")
	fmt.Println("  leds    - Show the default board state on a Launchpad")
}

func listPorts() {
	fmt.Println("=== MIDI Input Ports ===")
	fmt.Println("(waiting up to 3 seconds...)")

	ins, outs, ok := midi.ListPorts()
	if !ok {
		fmt.Println("\nTIMEOUT! CoreMIDI is hung.")
		fmt.Println("Fix: sudo killall coreaudiod midiserver")
		return
	}
	for i, p := range ins {
		fmt.Printf("  %d: %s (%s)\n", i, p.String(), midi.ClassifyPort(p.String()))
	}
	fmt.Println("\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Printf("  %d: %s\n", i, p.String())
	}
}

func describe(row, col int) string {
	action, key, volume := surface.Resolve(row, col)
	switch action {
	case surface.ActionPad:
		p, _ := board.LookupPad(key)
		return fmt.Sprintf("pad %c (%s / %s)", key, p.PrimaryLabel, p.BankLabel)
	case surface.ActionPower:
		return "power"
	case surface.ActionBank:
		return "bank"
	case surface.ActionVolume:
		return fmt.Sprintf("volume %d", volume)
	}
	return "unmapped"
}

func watch() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	dm := midi.NewDeviceManager(time.Second)
	go dm.Run(ctx)

	fmt.Println("Watching for controllers (Ctrl+C to stop)...")
	for ev := range dm.Events() {
		fmt.Printf("%s: %s\n", ev.Type, ev.ID)
		if ev.Type != midi.DeviceConnected {
			continue
		}
		c := ev.Controller
		go func() {
			for pad := range c.PadEvents() {
				fmt.Printf("  %s row=%d col=%d vel=%d -> %s\n", c.ID(), pad.Row, pad.Col, pad.Velocity, describe(pad.Row, pad.Col))
			}
		}()
		go func() {
			for n := range c.NoteEvents() {
				target := "unmapped"
				if key, ok := surface.PadForNote(n.Note); ok {
					target = fmt.Sprintf("pad %c", key)
				}
				fmt.Printf("  %s note=%d vel=%d ch=%d -> %s\n", c.ID(), n.Note, n.Velocity, n.Channel, target)
			}
		}()
	}
}

func testLEDs() {
	ins, outs, ok := midi.ListPorts()
	if !ok {
		fmt.Println("TIMEOUT! CoreMIDI is hung.")
		return
	}

	var lp *midi.LaunchpadController
	for _, in := range ins {
		if midi.ClassifyPort(in.String()) != midi.ControllerLaunchpad {
			continue
		}
		for _, out := range outs {
			if out.String() == in.String() {
				c, err := midi.NewLaunchpadController(in.String(), in, out)
				if err != nil {
					fmt.Printf("Error: %v\n", err)
					return
				}
				lp = c
			}
		}
	}
	if lp == nil {
		fmt.Println("No Launchpad found")
		return
	}
	defer lp.Close()

	th := theme.New(theme.MustBuiltin(theme.DefaultPalette))
	s := board.DefaultState()

	fmt.Println("Default board state...")
	lp.SetLEDBatch(surface.RenderLEDs(s, th))
	time.Sleep(time.Second)

	fmt.Println("Walking the pads (powered highlight)...")
	for _, p := range board.Pads {
		s.ActiveKey = p.Key
		lp.SetLEDBatch(surface.RenderLEDs(s, th))
		time.Sleep(150 * time.Millisecond)
	}

	fmt.Println("Press Enter to clear...")
	fmt.Scanln()
}
