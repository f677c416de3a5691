package models

import (
	"fmt"

	"github.com/desertthunder/stripd/internal/shared"
)

// Segment is a contiguous run of pixels that all show the same animated color.
//
// Offset and Period are milliseconds. Brightness scales the rendered color when the frame is composed
// and does not take part in the interpolation.
type Segment struct {
	Length     uint32 `json:"length"`
	Mirrored   bool   `json:"mirrored"`
	Start      Color  `json:"start"`
	End        Color  `json:"end"`
	Offset     uint32 `json:"offset"`
	Period     uint32 `json:"period"`
	Brightness uint8  `json:"brightness"`
}

// NewSegment constructs a [Segment] with zero offset and full brightness.
func NewSegment(length uint32, mirrored bool, start, end Color, period uint32) Segment {
	return Segment{
		Length:     length,
		Mirrored:   mirrored,
		Start:      start,
		End:        end,
		Period:     period,
		Brightness: 255,
	}
}

// Validate checks Length > 0 and Period > 0.
func (s Segment) Validate() error {
	if s.Length == 0 {
		return fmt.Errorf("%w: length must be positive", shared.ErrInvalidSegment)
	}
	if s.Period == 0 {
		return fmt.Errorf("%w: period must be positive", shared.ErrInvalidSegment)
	}
	return nil
}

// Static reports whether the segment shows a single color for its whole cycle.
func (s Segment) Static() bool {
	return s.Start == s.End
}

// Phase returns the position within the current cycle, in [0, Period), after applying Offset and Mirrored.
func (s Segment) Phase(now uint64) uint64 {
	p := uint64(s.Period)
	if p == 0 {
		return 0
	}
	x := (now%p + uint64(s.Offset)%p) % p
	if s.Mirrored {
		x = (p - x) % p
	}
	return x
}

// ColorAt returns the segment color at now milliseconds since start.
//
// Phase 0 renders Start, phase Period/2 renders End, with linear interpolation on both sides. Channels are
// truncated toward Start, so Period/2 is the only phase that renders End.
// A Period of 0 or 1 has no room for a sweep and renders Start.
func (s Segment) ColorAt(now uint64) Color {
	p := uint64(s.Period)
	peak := p / 2
	if peak == 0 || s.Static() {
		return s.Start
	}

	x := s.Phase(now)
	num, den := x, peak
	if x > peak {
		num, den = p-x, p-peak
	}

	return Color{
		Red:   lerp(s.Start.Red, s.End.Red, num, den),
		Green: lerp(s.Start.Green, s.End.Green, num, den),
		Blue:  lerp(s.Start.Blue, s.End.Blue, num, den),
	}
}

// lerp moves num/den of the way from a to b, truncating toward a. num <= den.
//
// b is only reached when num == den, so End is shown at exactly one instant per cycle.
func lerp(a, b uint8, num, den uint64) uint8 {
	if b >= a {
		return a + uint8(uint64(b-a)*num/den)
	}
	return a - uint8(uint64(a-b)*num/den)
}
