package sinks

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/desertthunder/stripd/internal/models"
	"github.com/desertthunder/stripd/internal/shared"
)

// Terminal draws each frame as one line of colored blocks, redrawing in place.
type Terminal struct {
	w        io.Writer
	renderer *lipgloss.Renderer
	pixels   []models.Color
	line     strings.Builder
}

// NewTerminal creates a [Terminal] sink. A nil writer draws to stdout.
func NewTerminal(w io.Writer, length int) *Terminal {
	if w == nil {
		w = os.Stdout
	}
	return &Terminal{w: w, renderer: lipgloss.NewRenderer(w), pixels: make([]models.Color, length)}
}

func (t *Terminal) SetPixel(index int, c models.Color, brightness uint8, diag Diagnostics) {
	if !checkIndex(index, len(t.pixels), diag) {
		return
	}
	t.pixels[index] = c.Scale(brightness)
}

func (t *Terminal) Flush() error {
	t.line.Reset()
	t.line.WriteString("\r")
	t.line.WriteString(RenderBlocks(t.renderer, t.pixels))
	if _, err := io.WriteString(t.w, t.line.String()); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSink, err)
	}
	return nil
}

func (t *Terminal) Len() int { return len(t.pixels) }

// RenderBlocks renders one block per color, merging runs of equal colors into one styled span.
func RenderBlocks(r *lipgloss.Renderer, colors []models.Color) string {
	var b strings.Builder
	for i := 0; i < len(colors); {
		j := i + 1
		for j < len(colors) && colors[j] == colors[i] {
			j++
		}
		style := r.NewStyle().Foreground(lipgloss.Color(colors[i].Hex()))
		b.WriteString(style.Render(strings.Repeat("█", j-i)))
		i = j
	}
	return b.String()
}
