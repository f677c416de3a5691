// Package models defines the value types that describe what the strip shows.
//
//   - [Color] : an 8-bit-per-channel RGB value
//   - [Segment] : a run of pixels animated between two colors over a period
//
// [Segment.ColorAt] is the animation contract: a pure function of elapsed milliseconds that is periodic in
// [Segment.Period], shifted by [Segment.Offset], and reversed in time when [Segment.Mirrored] is set.
// The curve is a linear, channel-wise ping-pong: Start at the beginning of each cycle, End at its midpoint,
// and back to Start as the cycle wraps.
//
// [DefaultSegments] is the palette a device starts with when nothing has been stored yet.
package models
