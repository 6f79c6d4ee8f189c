// Package preview is a terminal viewer that steps through the slices of a
// rendered volume.
package preview

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/chazu/twirl/pkg/volume"
)

// DefaultInterval is the playback delay between slices.
const DefaultInterval = 60 * time.Millisecond

// tickMsg advances playback. id ties it to the play session that
// scheduled it so pausing and resuming never doubles the rate.
type tickMsg struct {
	id int
}

// VolumeMsg swaps the volume being shown, for example after the script
// was edited. A non-nil Err keeps the current volume and shows the error.
type VolumeMsg struct {
	Volume *volume.Volume
	Err    error
}

// Model is a bubbletea model over one volume.
type Model struct {
	vol    *volume.Volume
	title  string
	status string

	width  int
	height int

	depth    int
	playing  bool
	tickID   int
	interval time.Duration

	keys keyMap
	help help.Model
}

// Option configures a Model.
type Option func(*Model)

// WithTitle sets the header text.
func WithTitle(title string) Option {
	return func(m *Model) { m.title = title }
}

// WithInterval sets the playback delay between slices.
func WithInterval(d time.Duration) Option {
	return func(m *Model) {
		if d > 0 {
			m.interval = d
		}
	}
}

// New returns a model positioned on the first slice.
func New(v *volume.Volume, opts ...Option) Model {
	m := Model{
		vol:      v,
		title:    "twirl",
		interval: DefaultInterval,
		keys:     defaultKeyMap(),
		help:     help.New(),
	}
	for _, o := range opts {
		o(&m)
	}
	return m
}

// NewProgram returns a full-screen program over v. Callers that reload
// the volume send VolumeMsg through the program.
func NewProgram(v *volume.Volume, opts ...Option) *tea.Program {
	return tea.NewProgram(New(v, opts...), tea.WithAltScreen())
}

// Depth returns the slice being shown.
func (m Model) Depth() int { return m.depth }

// Playing reports whether playback is running.
func (m Model) Playing() bool { return m.playing }

func (m Model) last() int {
	return max(m.vol.Len()-1, 0)
}

func (m *Model) seek(d int) {
	m.depth = min(max(d, 0), m.last())
}

func (m *Model) tick() tea.Cmd {
	id := m.tickID
	return tea.Tick(m.interval, func(time.Time) tea.Msg { return tickMsg{id: id} })
}

func (m Model) Init() tea.Cmd { return nil }

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width

	case VolumeMsg:
		if msg.Err != nil {
			m.status = "reload failed: " + msg.Err.Error()
			return m, nil
		}
		m.vol = msg.Volume
		m.seek(m.depth)
		m.status = fmt.Sprintf("reloaded, %d slices", m.vol.Len())

	case tickMsg:
		if !m.playing || msg.id != m.tickID {
			return m, nil
		}
		if m.depth >= m.last() {
			m.depth = 0
		} else {
			m.depth++
		}
		return m, m.tick()

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Prev):
			m.seek(m.depth - 1)
		case key.Matches(msg, m.keys.Next):
			m.seek(m.depth + 1)
		case key.Matches(msg, m.keys.Back):
			m.seek(m.depth - 10)
		case key.Matches(msg, m.keys.Forward):
			m.seek(m.depth + 10)
		case key.Matches(msg, m.keys.First):
			m.seek(0)
		case key.Matches(msg, m.keys.Last):
			m.seek(m.last())
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Play):
			m.playing = !m.playing
			m.tickID++
			if m.playing {
				return m, m.tick()
			}
		}
	}
	return m, nil
}

func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}

	state := "paused"
	if m.playing {
		state = "playing"
	}
	header := lipgloss.JoinHorizontal(lipgloss.Bottom,
		titleStyle.Render(" "+m.title+" "),
		dimStyle.Render(fmt.Sprintf(" depth %d/%d  %d voxels  %s", m.depth, m.last(), m.vol.Slice(m.depth).Count(), state)),
	)

	footer := m.help.View(m.keys)
	if m.status != "" {
		footer = lipgloss.JoinVertical(lipgloss.Left, dimStyle.Render(" "+m.status), footer)
	}
	footerHeight := lipgloss.Height(footer)

	// Two cells of border around the canvas.
	canvasW := max(m.width-2, 2)
	canvasH := max(m.height-1-footerHeight-2, 1)
	lines := renderSlice(m.vol.Slice(m.depth), canvasW, canvasH)
	canvas := canvasStyle.Render(strings.Join(lines, "\n"))

	ui := lipgloss.JoinVertical(lipgloss.Left, header, canvas, footer)
	return appStyle.Width(m.width).Height(m.height).Render(ui)
}
