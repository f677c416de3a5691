package sinks

import (
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/desertthunder/stripd/internal/models"
	"github.com/desertthunder/stripd/internal/shared"
)

const (
	SinkAPA102   = "apa102"
	SinkArtNet   = "artnet"
	SinkTerminal = "terminal"
	SinkDiscard  = "discard"
)

// Diagnostics receives non-fatal anomalies from a sink.
type Diagnostics interface {
	Diagnose(msg string)
}

// PixelSink is a strip that pixels can be written to and flushed.
type PixelSink interface {
	// SetPixel stages one pixel. Indices outside [0, Len()) are reported to diag and ignored.
	SetPixel(index int, c models.Color, brightness uint8, diag Diagnostics)
	// Flush pushes the staged frame to the device.
	Flush() error
	// Len returns the number of addressable pixels.
	Len() int
}

// NopDiagnostics drops every message.
type NopDiagnostics struct{}

func (NopDiagnostics) Diagnose(string) {}

// LogDiagnostics writes diagnostics to a logger as warnings, at most limit messages per second.
//
// Messages over the limit are counted and the count is attached to the next message that gets through.
type LogDiagnostics struct {
	logger  *log.Logger
	limiter *rate.Limiter
	dropped atomic.Int64
}

// NewLogDiagnostics creates a [LogDiagnostics] that allows burst messages at once and one per every.
func NewLogDiagnostics(logger *log.Logger, every time.Duration, burst int) *LogDiagnostics {
	return &LogDiagnostics{
		logger:  logger,
		limiter: rate.NewLimiter(rate.Every(every), burst),
	}
}

func (d *LogDiagnostics) Diagnose(msg string) {
	if !d.limiter.Allow() {
		d.dropped.Add(1)
		return
	}
	if n := d.dropped.Swap(0); n > 0 {
		d.logger.Warn(msg, "suppressed", n)
		return
	}
	d.logger.Warn(msg)
}

// Discard is a sink of a fixed length that drops every frame.
type Discard struct {
	length int
}

// NewDiscard creates a [Discard] sink of length pixels.
func NewDiscard(length int) *Discard {
	return &Discard{length: length}
}

func (d *Discard) SetPixel(index int, _ models.Color, _ uint8, diag Diagnostics) {
	checkIndex(index, d.length, diag)
}

func (d *Discard) Flush() error { return nil }
func (d *Discard) Len() int     { return d.length }
func (d *Discard) Close() error { return nil }

// checkIndex reports index to diag when it falls outside [0, length).
func checkIndex(index, length int, diag Diagnostics) bool {
	if index >= 0 && index < length {
		return true
	}
	if diag != nil {
		diag.Diagnose(fmt.Sprintf("pixel index %d out of range [0, %d)", index, length))
	}
	return false
}

// Options holds the values [New] needs beyond [shared.StripConfig].
type Options struct {
	// Output is where the terminal sink draws. Defaults to stdout.
	Output io.Writer
	Logger *log.Logger
}

// New builds the sink named by cfg.Sink.
func New(cfg shared.StripConfig, opts Options) (PixelSink, error) {
	if cfg.Length <= 0 {
		return nil, fmt.Errorf("%w: strip length must be positive", shared.ErrInvalidConfig)
	}

	switch strings.ToLower(cfg.Sink) {
	case SinkAPA102:
		sink, err := OpenAPA102(cfg.Device, cfg.Length)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case SinkArtNet:
		sink, err := DialArtNet(cfg.ArtNetAddr, cfg.ArtNetUniverse, cfg.Length)
		if err != nil {
			return nil, err
		}
		return sink, nil
	case SinkTerminal:
		return NewTerminal(opts.Output, cfg.Length), nil
	case SinkDiscard, "":
		return NewDiscard(cfg.Length), nil
	default:
		return nil, fmt.Errorf("%w: %q", shared.ErrUnknownSink, cfg.Sink)
	}
}

// Close releases the sink's device when it holds one.
func Close(s PixelSink) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
