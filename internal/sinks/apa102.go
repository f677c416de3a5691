package sinks

import (
	"fmt"
	"io"
	"os"

	"github.com/desertthunder/stripd/internal/models"
	"github.com/desertthunder/stripd/internal/shared"
)

const apa102Header = 0xE0

// APA102 encodes frames for APA102-style strips: a 32-bit zero start frame, one
// 0b111BBBBB,B,G,R word per LED, and an end frame of ones long enough to clock data through the whole strip.
type APA102 struct {
	w      io.Writer
	length int
	frame  []byte
	leds   []byte
}

// NewAPA102 creates an [APA102] sink of length pixels that writes each frame to w in one call.
func NewAPA102(w io.Writer, length int) *APA102 {
	endFrame := max(4, (length+15)/16)
	frame := make([]byte, 4+4*length+endFrame)
	leds := frame[4 : 4+4*length]
	for i := 0; i < len(leds); i += 4 {
		leds[i] = apa102Header
	}
	for i := 4 + 4*length; i < len(frame); i++ {
		frame[i] = 0xFF
	}
	return &APA102{w: w, length: length, frame: frame, leds: leds}
}

// OpenAPA102 opens the SPI device at path for writing.
func OpenAPA102(path string, length int) (*APA102, error) {
	f, err := os.OpenFile(path, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open %s: %v", shared.ErrSink, path, err)
	}
	return NewAPA102(f, length), nil
}

// GlobalBrightness maps an 8-bit brightness onto the 5-bit APA102 scale. Any non-zero brightness stays lit.
func GlobalBrightness(b uint8) uint8 {
	if b == 0 {
		return 0
	}
	return max(1, uint8((uint16(b)*31+127)/255))
}

func (a *APA102) SetPixel(index int, c models.Color, brightness uint8, diag Diagnostics) {
	if !checkIndex(index, a.length, diag) {
		return
	}
	led := a.leds[4*index : 4*index+4]
	led[0] = apa102Header | GlobalBrightness(brightness)
	led[1] = c.Blue
	led[2] = c.Green
	led[3] = c.Red
}

func (a *APA102) Flush() error {
	if _, err := a.w.Write(a.frame); err != nil {
		return fmt.Errorf("%w: %v", shared.ErrSink, err)
	}
	return nil
}

func (a *APA102) Len() int { return a.length }

func (a *APA102) Close() error {
	if c, ok := a.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
