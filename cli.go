package main

import (
	"context"
	"fmt"
	"io"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/gopxl/beep/v2"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"go-soundboard/audio"
	"go-soundboard/board"
	"go-soundboard/config"
	"go-soundboard/debug"
	"go-soundboard/midi"
	"go-soundboard/surface"
	"go-soundboard/theme"
	"go-soundboard/tui"
)

var (
	cfgFile  string
	debugLog bool
	noMIDI   bool
	noAudio  bool
	showURLs bool
)

var rootCmd = &cobra.Command{
	Use:   "go-soundboard",
	Short: "Nine-pad drum machine for the terminal",
	Long: `Play drum samples with Q W E / A S D / Z X C.
A Launchpad or any MIDI keyboard plugged in at any time works as a second pad grid.`,
	SilenceUsage: true,
	RunE:         runBoard,
}

var padsCmd = &cobra.Command{
	Use:   "pads",
	Short: "List the pads and their samples",
	RunE:  runPads,
}

var portsCmd = &cobra.Command{
	Use:   "ports",
	Short: "List MIDI ports and how they would be used",
	RunE:  runPorts,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.config/go-soundboard/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugLog, "debug", false, "write a debug log")
	rootCmd.Flags().BoolVar(&noMIDI, "no-midi", false, "disable MIDI controllers and note echo")
	rootCmd.Flags().BoolVar(&noAudio, "no-audio", false, "run without opening the speaker")
	padsCmd.Flags().BoolVar(&showURLs, "urls", false, "show sample URLs instead of labels")

	rootCmd.AddCommand(padsCmd, portsCmd)
}

// loadConfig reads the config file and applies command-line overrides
func loadConfig() (*viper.Viper, *config.Config, error) {
	v := config.New(cfgFile)
	cfg, err := config.Load(v)
	if err != nil {
		return nil, nil, err
	}
	if debugLog {
		cfg.Debug.Enabled = true
	}
	if noMIDI {
		cfg.MIDI.Enabled = false
	}
	if noAudio {
		cfg.Audio.Enabled = false
	}
	return v, cfg, nil
}

func runBoard(cmd *cobra.Command, args []string) error {
	v, cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Debug.Enabled {
		if err := debug.Enable(debug.Options{
			Path:       cfg.Debug.LogPath,
			MaxSizeMB:  cfg.Debug.MaxSizeMB,
			MaxBackups: cfg.Debug.MaxBackups,
		}); err != nil {
			return err
		}
		defer debug.Disable()
	}

	palette, err := theme.LoadPalette(cfg.Theme.Palette)
	if err != nil {
		return err
	}
	th := theme.New(palette)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	var opts []board.Option
	if cfg.MIDI.Enabled && cfg.MIDI.OutputPort != "" {
		out, err := midi.OpenOutput(cfg.MIDI.OutputPort, cfg.MIDI.OutputChannel)
		if err != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "note echo off: %v\n", err)
		} else {
			defer out.Close()
			opts = append(opts, board.WithTriggerListener(surface.Echo(out)))
			debug.Log("main", "echoing pads to %s ch %d", out.Name(), cfg.MIDI.OutputChannel)
		}
	}

	b := board.New(board.WallClock{}, opts...)

	if cfg.Audio.Enabled {
		engine, err := startAudio(ctx, cfg.Audio)
		if err != nil {
			// Pads still light up; they just make no sound
			fmt.Fprintf(cmd.ErrOrStderr(), "audio off: %v\n", err)
			debug.Log("main", "audio off: %v", err)
		} else {
			defer engine.Close()
			b.Mount(engine.Handles())
			defer b.Unmount()
		}
	}

	var deviceMgr *midi.DeviceManager
	var surf *surface.Surface
	if cfg.MIDI.Enabled {
		// Create MIDI device manager (handles hot-plug)
		deviceMgr = midi.NewDeviceManager(cfg.MIDI.PollInterval)
		go deviceMgr.Run(ctx)
		surf = surface.New(b, th)
		go surf.Run(ctx)
	}

	m := tui.NewModel(b, th, deviceMgr, surf)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseAllMotion(), tea.WithContext(ctx))

	if v.ConfigFileUsed() != "" {
		config.Watch(v, func(c *config.Config) {
			pal, err := theme.LoadPalette(c.Theme.Palette)
			if err != nil {
				debug.Log("config", "palette reload: %v", err)
				return
			}
			p.Send(tui.PaletteMsg{Palette: pal})
		}, func(err error) {
			debug.Log("config", "%v", err)
		})
	}

	if _, err := p.Run(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("run tui: %w", err)
	}
	return nil
}

// startAudio opens the speaker and starts fetching both banks in the background
func startAudio(ctx context.Context, cfg config.AudioConfig) (*audio.Engine, error) {
	format := beep.Format{SampleRate: beep.SampleRate(cfg.SampleRate), NumChannels: 2, Precision: 2}
	engine := audio.NewEngine(audio.NewLoader(format, cfg.FetchTimeout, cfg.CacheTTL))
	if err := engine.Start(cfg.Buffer); err != nil {
		return nil, err
	}
	go func() {
		if err := engine.Prefetch(ctx, board.SampleURLs()); err != nil {
			debug.Log("main", "prefetch incomplete: %v", err)
		}
	}()
	return engine, nil
}

func runPads(cmd *cobra.Command, args []string) error {
	writePads(cmd.OutOrStdout(), showURLs)
	return nil
}

func writePads(w io.Writer, urls bool) {
	headers := []string{"KEY", "PRIMARY", "BANK"}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...)
	for _, p := range board.Pads {
		if urls {
			t.Row(string(p.Key), p.PrimaryURL, p.BankURL)
		} else {
			t.Row(string(p.Key), p.PrimaryLabel, p.BankLabel)
		}
	}
	fmt.Fprintln(w, t.Render())
}

func runPorts(cmd *cobra.Command, args []string) error {
	ins, outs, ok := midi.ListPorts()
	if !ok {
		return fmt.Errorf("listing MIDI ports timed out (CoreMIDI hung? try: sudo killall coreaudiod midiserver)")
	}
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, "=== MIDI Input Ports ===")
	for i, p := range ins {
		fmt.Fprintf(w, "  %d: %-40s %s\n", i, p.String(), midi.ClassifyPort(p.String()))
	}
	fmt.Fprintln(w, "\n=== MIDI Output Ports ===")
	for i, p := range outs {
		fmt.Fprintf(w, "  %d: %s\n", i, p.String())
	}
	return nil
}
