package models

// slowdown stretches the starter palette's periods into a slow ambient drift.
const slowdown = 16

// DefaultBrightness is the brightness of the built-in segments.
const DefaultBrightness = 40

// DefaultSegment pairs a stable id with a built-in [Segment].
type DefaultSegment struct {
	ID      string
	Segment Segment
}

// DefaultSegments returns the built-in starter palette in strip order.
func DefaultSegments() []DefaultSegment {
	seg := func(length uint32, start, end Color, period uint32) Segment {
		s := NewSegment(length, false, start, end, period*slowdown)
		s.Brightness = DefaultBrightness
		return s
	}

	return []DefaultSegment{
		{ID: "0", Segment: seg(144, RGB(255, 150, 0), RGB(255, 30, 20), 4100)},
		{ID: "1", Segment: seg(60, RGB(166, 0, 255), RGB(2, 192, 192), 6100)},
		{ID: "2", Segment: seg(30, RGB(20, 200, 141), RGB(200, 176, 20), 5400)},
		{ID: "3", Segment: seg(30, RGB(200, 20, 30), RGB(200, 200, 10), 7100)},
	}
}
