package tui

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"go-soundboard/board"
	"go-soundboard/midi"
	"go-soundboard/surface"
	"go-soundboard/theme"
	"go-soundboard/widgets"
)

// layoutBounds holds the rows of clickable widgets from the last View
type layoutBounds struct {
	gridTop int
	powerY  int
	bankY   int
	sliderY int
}

type Model struct {
	Board     *board.Controller
	Theme     *theme.Theme
	Keys      KeyMap
	DeviceMgr *midi.DeviceManager // nil when MIDI is off
	Surface   *surface.Surface    // nil when MIDI is off

	updates  <-chan struct{}
	help     help.Model
	devices  map[string]midi.ControllerType
	quitting bool
	tooltip  string
	bounds   *layoutBounds
}

// UpdateMsg signals a board state change
type UpdateMsg struct{}

type DeviceEventMsg midi.DeviceEvent

// PaletteMsg swaps the theme palette (config reload)
type PaletteMsg struct {
	Palette *theme.Palette
}

func NewModel(b *board.Controller, th *theme.Theme, deviceMgr *midi.DeviceManager, surf *surface.Surface) Model {
	h := help.New()
	h.Styles.ShortKey = lipgloss.NewStyle().Foreground(th.Accent())
	h.Styles.ShortDesc = lipgloss.NewStyle().Foreground(th.Muted())
	h.Styles.FullKey = h.Styles.ShortKey
	h.Styles.FullDesc = h.Styles.ShortDesc
	return Model{
		Board:     b,
		Theme:     th,
		Keys:      DefaultKeyMap(),
		DeviceMgr: deviceMgr,
		Surface:   surf,
		updates:   b.Subscribe(),
		help:      h,
		devices:   make(map[string]midi.ControllerType),
		bounds:    &layoutBounds{},
	}
}

func ListenForUpdates(updates <-chan struct{}) tea.Cmd {
	return func() tea.Msg {
		<-updates
		return UpdateMsg{}
	}
}

func ListenForDevices(deviceMgr *midi.DeviceManager) tea.Cmd {
	return func() tea.Msg {
		event, ok := <-deviceMgr.Events()
		if !ok {
			return nil
		}
		return DeviceEventMsg(event)
	}
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{ListenForUpdates(m.updates)}
	if m.DeviceMgr != nil {
		cmds = append(cmds, ListenForDevices(m.DeviceMgr))
	}
	return tea.Batch(cmds...)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.Keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.Keys.Power):
			m.Board.TogglePower()
		case key.Matches(msg, m.Keys.Bank):
			m.Board.ToggleBank()
		case key.Matches(msg, m.Keys.VolumeUp):
			m.Board.SetVolume(m.Board.Snapshot().VolumePercent + VolumeStep)
		case key.Matches(msg, m.Keys.VolumeDown):
			m.Board.SetVolume(m.Board.Snapshot().VolumePercent - VolumeStep)
		case key.Matches(msg, m.Keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		default:
			m.Board.HandleExternalKey(msg.String())
		}

	case tea.MouseMsg:
		m.tooltip = m.hoverText(msg.X, msg.Y)
		if msg.Action == tea.MouseActionPress && msg.Button == tea.MouseButtonLeft {
			m.click(msg.X, msg.Y)
		}

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width

	case UpdateMsg:
		return m, ListenForUpdates(m.updates)

	case PaletteMsg:
		if msg.Palette != nil {
			m.Theme.SetPalette(msg.Palette)
			if m.Surface != nil {
				m.Surface.MarkDirty()
			}
		}

	case DeviceEventMsg:
		event := midi.DeviceEvent(msg)
		if event.Type == midi.DeviceConnected && event.Controller != nil {
			m.devices[event.ID] = event.Controller.Type()
		} else if event.Type == midi.DeviceDisconnected {
			delete(m.devices, event.ID)
		}
		if m.Surface != nil {
			m.Surface.HandleDeviceEvent(event)
		}
		return m, ListenForDevices(m.DeviceMgr)
	}

	return m, nil
}

// click applies a left click at screen position x, y
func (m Model) click(x, y int) {
	b := m.bounds
	switch {
	case y == b.powerY && x < widgets.SwitchLabelWidth+widgets.SwitchKnobWidth:
		m.Board.TogglePower()
	case y == b.bankY && x < widgets.SwitchLabelWidth+widgets.SwitchKnobWidth:
		m.Board.ToggleBank()
	case y == b.sliderY && x >= widgets.SwitchLabelWidth && x < widgets.SwitchLabelWidth+widgets.SliderWidth:
		m.Board.SetVolume(widgets.SliderValueAt(x - widgets.SwitchLabelWidth))
	default:
		if p, ok := widgets.PadAtPoint(x, y-b.gridTop); ok {
			m.Board.TriggerPad(p.Key)
		}
	}
}

func (m Model) hoverText(x, y int) string {
	if p, ok := widgets.PadAtPoint(x, y-m.bounds.gridTop); ok {
		return fmt.Sprintf("%c  %s", p.Key, p.Label(m.Board.Snapshot().BankActive))
	}
	return ""
}

func (m Model) View() string {
	if m.quitting {
		return ""
	}

	s := m.Board.Snapshot()

	// Styles
	headerStyle := lipgloss.NewStyle().Foreground(m.Theme.Accent())
	tooltipStyle := lipgloss.NewStyle().
		Foreground(m.Theme.FG()).
		Background(m.Theme.Muted()).
		Padding(0, 1)
	labelStyle := lipgloss.NewStyle().Bold(true).Foreground(m.Theme.FG()).Width(widgets.SwitchLabelWidth)

	header := headerStyle.Render("go-soundboard" + m.deviceStatus())
	display := widgets.RenderDisplay(m.Theme, s.DisplayText)
	grid := widgets.RenderPadGrid(m.Theme, s)
	controls := lipgloss.JoinVertical(lipgloss.Left,
		widgets.RenderSwitch(m.Theme, "Power", s.Power),
		widgets.RenderSwitch(m.Theme, "Bank", s.BankActive),
		labelStyle.Render("Volume")+widgets.RenderSlider(m.Theme, s.VolumePercent),
	)
	helpView := m.help.View(m.Keys)

	// Compute layout bounds (blank line, header, blank, display, blank)
	top := 1 + lipgloss.Height(header) + 1 + lipgloss.Height(display) + 1
	m.bounds.gridTop = top
	m.bounds.powerY = top + lipgloss.Height(grid) + 1
	m.bounds.bankY = m.bounds.powerY + 1
	m.bounds.sliderY = m.bounds.bankY + 1

	// Build output
	var out strings.Builder
	out.WriteString("\n")
	out.WriteString(header)
	out.WriteString("\n\n")
	out.WriteString(display)
	out.WriteString("\n\n")
	out.WriteString(grid)
	out.WriteString("\n\n")
	out.WriteString(controls)
	out.WriteString("\n\n")
	if m.hasLaunchpad() {
		out.WriteString(m.launchpadView(s))
		out.WriteString("\n\n")
	}
	out.WriteString(helpView)

	if m.tooltip != "" {
		out.WriteString("\n")
		out.WriteString(tooltipStyle.Render(m.tooltip))
	}

	return out.String()
}

func (m Model) hasLaunchpad() bool {
	for _, t := range m.devices {
		if t == midi.ControllerLaunchpad {
			return true
		}
	}
	return false
}

// launchpadView mirrors the Launchpad lights next to a legend
func (m Model) launchpadView(s board.State) string {
	on := [3]uint8(m.Theme.RGB(theme.RoleSwitchOn))
	legend := lipgloss.JoinVertical(lipgloss.Left,
		widgets.RenderLegendItem(m.Theme.PadRGB(board.HighlightNone), "pads", "bottom-left 3x3"),
		widgets.RenderLegendItem(on, "power", "top row 1"),
		widgets.RenderLegendItem(on, "bank", "top row 2"),
		widgets.RenderLegendItem(m.Theme.RGB(theme.RoleAccent), "volume", "scene buttons"),
	)
	mirror := widgets.RenderLaunchpad(surface.RenderLEDs(s, m.Theme), m.Theme.RGB(theme.RoleBG))
	return lipgloss.JoinHorizontal(lipgloss.Top, mirror, "  ", legend)
}

// deviceStatus lists connected controllers, e.g. "  LP KB"
func (m Model) deviceStatus() string {
	if len(m.devices) == 0 {
		return ""
	}
	var tags []string
	for _, t := range m.devices {
		switch t {
		case midi.ControllerLaunchpad:
			tags = append(tags, "LP")
		case midi.ControllerKeyboard:
			tags = append(tags, "KB")
		}
	}
	sort.Strings(tags)
	return "  " + strings.Join(tags, " ")
}
