package render

import (
	"github.com/desertthunder/stripd/internal/models"
	"github.com/desertthunder/stripd/internal/registry"
)

// Frame holds one [models.Pixel] per strip index.
type Frame []models.Pixel

// Span is the half-open pixel range [Start, End) occupied by a segment.
type Span struct {
	ID    string
	Start int
	End   int
}

// Len returns the number of pixels in the span.
func (s Span) Len() int { return s.End - s.Start }

// Layout returns the pixel range of every segment in registry order.
func Layout(snap registry.Snapshot) []Span {
	spans := make([]Span, 0, snap.Len())
	offset := 0
	snap.Each(func(_ int, e registry.Entry) bool {
		end := offset + int(e.Segment.Length)
		spans = append(spans, Span{ID: e.ID, Start: offset, End: end})
		offset = end
		return true
	})
	return spans
}

// Compose renders snap at now into dst, growing or shrinking it to snap.TotalLength() pixels, and returns it.
//
// Each segment's color is computed once and copied across its range.
func Compose(dst Frame, snap registry.Snapshot, now uint64) Frame {
	total := snap.TotalLength()
	if cap(dst) < total {
		dst = make(Frame, total)
	}
	dst = dst[:total]

	offset := 0
	snap.Each(func(_ int, e registry.Entry) bool {
		px := models.Pixel{Color: e.Segment.ColorAt(now), Brightness: e.Segment.Brightness}
		end := offset + int(e.Segment.Length)
		for i := offset; i < end; i++ {
			dst[i] = px
		}
		offset = end
		return true
	})
	return dst
}
