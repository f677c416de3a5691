package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/lucasb-eyer/go-colorful"
)

// Color is an 8-bit-per-channel RGB value.
type Color struct {
	Red   uint8 `json:"red"`
	Green uint8 `json:"green"`
	Blue  uint8 `json:"blue"`
}

// RGB constructs a [Color].
func RGB(r, g, b uint8) Color {
	return Color{Red: r, Green: g, Blue: b}
}

// Colorful converts c to a [colorful.Color] in sRGB space.
func (c Color) Colorful() colorful.Color {
	return colorful.Color{R: float64(c.Red) / 255, G: float64(c.Green) / 255, B: float64(c.Blue) / 255}
}

// Hex returns c formatted as "#rrggbb".
func (c Color) Hex() string {
	return c.Colorful().Hex()
}

// String implements [fmt.Stringer].
func (c Color) String() string {
	return c.Hex()
}

// Scale multiplies every channel by brightness/255, rounding to nearest.
func (c Color) Scale(brightness uint8) Color {
	scale := func(ch uint8) uint8 {
		return uint8((uint16(ch)*uint16(brightness) + 127) / 255)
	}
	return Color{Red: scale(c.Red), Green: scale(c.Green), Blue: scale(c.Blue)}
}

// ParseHex parses "#rrggbb" (or "#rgb") into a [Color].
func ParseHex(s string) (Color, error) {
	cf, err := colorful.Hex(s)
	if err != nil {
		return Color{}, fmt.Errorf("invalid hex color %q: %w", s, err)
	}
	r, g, b := cf.RGB255()
	return RGB(r, g, b), nil
}

type colorFields Color

// UnmarshalJSON accepts either the {"red","green","blue"} object written by [json.Marshal] or a "#rrggbb" string.
func (c *Color) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		parsed, err := ParseHex(s)
		if err != nil {
			return err
		}
		*c = parsed
		return nil
	}

	var fields colorFields
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&fields); err != nil {
		return err
	}
	*c = Color(fields)
	return nil
}
