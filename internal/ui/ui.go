package ui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/desertthunder/stripd/internal/models"
	"github.com/desertthunder/stripd/internal/registry"
	"github.com/desertthunder/stripd/internal/render"
)

// FrameInterval is how often the preview redraws.
const FrameInterval = 50 * time.Millisecond

// Source provides the configuration to preview.
type Source interface {
	Data(ctx context.Context) (registry.Snapshot, error)
}

// Clocked is implemented by sources that can report their render clock.
type Clocked interface {
	Now(ctx context.Context) (uint64, error)
}

// SourceFunc adapts a function to [Source].
type SourceFunc func(ctx context.Context) (registry.Snapshot, error)

func (f SourceFunc) Data(ctx context.Context) (registry.Snapshot, error) { return f(ctx) }

// Model represents the preview state.
type Model struct {
	ctx    context.Context
	source Source
	name   string
	clock  render.Clock

	snapshot registry.Snapshot
	spans    []render.Span
	frame    render.Frame
	offset   int64
	paused   bool
	pausedAt uint64
	loads    int

	width int
	err   error
	help  help.Model
	keys  keyMap
}

// NewModel creates a preview of source. name labels the source in the title.
func NewModel(ctx context.Context, source Source, name string) *Model {
	return &Model{
		ctx:    ctx,
		source: source,
		name:   name,
		clock:  render.NewClock(),
		width:  80,
		help:   help.New(),
		keys:   newKeyMap(),
	}
}

// Init loads the snapshot and starts the animation.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.load(), tick())
}

// Update handles incoming messages and updates the model state.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.pause):
			m.togglePause()
			return m, nil
		case key.Matches(msg, m.keys.reload):
			return m, m.load()
		}

	case tickMsg:
		m.frame = render.Compose(m.frame, m.snapshot, m.now())
		return m, tick()

	case loadedMsg:
		m.err = msg.err
		if msg.err != nil {
			return m, nil
		}
		m.loads++
		m.snapshot = msg.snapshot
		m.spans = render.Layout(msg.snapshot)
		if msg.hasClock {
			m.offset = int64(msg.remoteNow) - int64(m.clock.Millis())
		}
		m.frame = render.Compose(m.frame, m.snapshot, m.now())
		return m, nil
	}

	return m, nil
}

func (m *Model) togglePause() {
	if m.paused {
		m.offset = int64(m.pausedAt) - int64(m.clock.Millis())
		m.paused = false
		return
	}
	m.pausedAt = m.now()
	m.paused = true
}

// now returns the animation time, aligned with the source clock when known.
func (m *Model) now() uint64 {
	if m.paused {
		return m.pausedAt
	}
	t := int64(m.clock.Millis()) + m.offset
	if t < 0 {
		return 0
	}
	return uint64(t)
}

func (m *Model) load() tea.Cmd {
	return func() tea.Msg {
		snap, err := m.source.Data(m.ctx)
		if err != nil {
			return loadedMsg{err: err}
		}
		msg := loadedMsg{snapshot: snap}
		if c, ok := m.source.(Clocked); ok {
			if now, err := c.Now(m.ctx); err == nil {
				msg.remoteNow, msg.hasClock = now, true
			}
		}
		return msg
	}
}

func tick() tea.Cmd {
	return tea.Tick(FrameInterval, func(t time.Time) tea.Msg { return tickMsg(t) })
}

// View renders the segment table and the strip.
func (m *Model) View() string {
	var b strings.Builder

	title := fmt.Sprintf("stripd preview · %s", m.name)
	if m.paused {
		title += " · paused"
	}
	b.WriteString(styles.title.Render(title))
	b.WriteString("\n")

	if m.err != nil {
		b.WriteString(styles.err.Render(fmt.Sprintf("Error: %v", m.err)))
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView([]key.Binding{m.keys.reload, m.keys.quit}))
		return b.String()
	}
	if m.loads == 0 {
		b.WriteString(styles.help.Render("loading..."))
		return b.String()
	}
	if m.snapshot.Len() == 0 {
		b.WriteString(styles.warn.Render("no segments configured"))
		b.WriteString("\n\n")
		b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
		return b.String()
	}

	swatchWidth := max(4, min(24, m.width-40))
	for _, span := range m.spans {
		px := m.frame[span.Start]
		fmt.Fprintf(&b, "%-12s %4d-%-4d %s %s\n",
			span.ID, span.Start, span.End, px.Color.Hex(), Swatch(px.Color, swatchWidth))
	}

	b.WriteString("\n")
	b.WriteString(m.renderStrip())
	b.WriteString("\n")
	b.WriteString(styles.ok.Render(fmt.Sprintf("%d segments · %d pixels · t=%dms", m.snapshot.Len(), len(m.frame), m.now())))
	b.WriteString("\n\n")
	b.WriteString(m.help.ShortHelpView(m.keys.ShortHelp()))
	return b.String()
}

// renderStrip draws the whole frame squeezed or stretched to the terminal width.
func (m *Model) renderStrip() string {
	width := max(1, m.width-2)
	if len(m.frame) == 0 {
		return ""
	}
	cells := Sample(m.frame, width)
	var b strings.Builder
	for i := 0; i < len(cells); {
		j := i + 1
		for j < len(cells) && cells[j] == cells[i] {
			j++
		}
		b.WriteString(Swatch(cells[i], j-i))
		i = j
	}
	return b.String()
}

// Sample picks width colors evenly spaced along frame.
func Sample(frame render.Frame, width int) []models.Color {
	if width <= 0 || len(frame) == 0 {
		return nil
	}
	cells := make([]models.Color, width)
	for i := range cells {
		cells[i] = frame[i*len(frame)/width].Color
	}
	return cells
}
