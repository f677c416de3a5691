package render

import (
	"context"
	"io"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/stripd/internal/models"
	"github.com/desertthunder/stripd/internal/registry"
	"github.com/desertthunder/stripd/internal/sinks"
)

const (
	DefaultTick                = 10 * time.Millisecond
	DefaultOverrunWarnInterval = 10 * time.Second
)

// LoopOptions configures a [Loop]. Zero values select the defaults.
type LoopOptions struct {
	Tick                time.Duration
	OverrunWarnInterval time.Duration
	Clock               Clock
	Diagnostics         sinks.Diagnostics
	Logger              *log.Logger
}

// Loop renders the registry to a sink, one frame per tick.
//
// After each frame it sleeps a fixed Tick, so the effective period is Tick plus render time; there is no drift
// correction. A frame that alone takes longer than Tick is an overrun, and overruns are logged at most once per
// OverrunWarnInterval.
type Loop struct {
	registry *registry.Registry
	sink     sinks.PixelSink
	clock    Clock
	diag     sinks.Diagnostics
	logger   *log.Logger

	tick         time.Duration
	warnInterval time.Duration
	lastWarning  time.Time

	frame  Frame
	frames atomic.Uint64
}

// NewLoop creates a [Loop] reading from reg and writing to sink.
func NewLoop(reg *registry.Registry, sink sinks.PixelSink, opts LoopOptions) *Loop {
	if opts.Tick <= 0 {
		opts.Tick = DefaultTick
	}
	if opts.OverrunWarnInterval <= 0 {
		opts.OverrunWarnInterval = DefaultOverrunWarnInterval
	}
	if opts.Clock == nil {
		opts.Clock = NewClock()
	}
	if opts.Diagnostics == nil {
		opts.Diagnostics = sinks.NopDiagnostics{}
	}
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}

	return &Loop{
		registry:     reg,
		sink:         sink,
		clock:        opts.Clock,
		diag:         opts.Diagnostics,
		logger:       opts.Logger,
		tick:         opts.Tick,
		warnInterval: opts.OverrunWarnInterval,
	}
}

// Tick renders and flushes a single frame.
//
// Sink pixels past the end of the frame are switched off so a shorter configuration does not leave stale LEDs lit.
// The frame is flushed even when some pixels were rejected; the flush error is returned.
func (l *Loop) Tick() error {
	now := l.clock.Millis()
	snap := l.registry.Snapshot()
	l.frame = Compose(l.frame, snap, now)

	for i, px := range l.frame {
		l.sink.SetPixel(i, px.Color, px.Brightness, l.diag)
	}
	for i := len(l.frame); i < l.sink.Len(); i++ {
		l.sink.SetPixel(i, models.Color{}, 0, l.diag)
	}

	l.frames.Add(1)
	return l.sink.Flush()
}

// Frames returns how many frames have been rendered.
func (l *Loop) Frames() uint64 {
	return l.frames.Load()
}

// Run ticks until ctx is cancelled. Flush errors are logged and rendering continues.
func (l *Loop) Run(ctx context.Context) error {
	l.logger.Info("render loop started", "tick", l.tick, "pixels", l.sink.Len())

	timer := time.NewTimer(0)
	defer timer.Stop()
	<-timer.C

	for {
		start := time.Now()
		if err := l.Tick(); err != nil {
			l.logger.Warn("failed to flush frame", "error", err)
		}
		l.checkOverrun(time.Since(start))

		timer.Reset(l.tick)
		select {
		case <-ctx.Done():
			l.logger.Info("render loop stopped", "frames", l.Frames())
			return ctx.Err()
		case <-timer.C:
		}
	}
}

func (l *Loop) checkOverrun(elapsed time.Duration) {
	if elapsed <= l.tick {
		return
	}
	if !l.lastWarning.IsZero() && time.Since(l.lastWarning) < l.warnInterval {
		return
	}
	l.lastWarning = time.Now()
	l.logger.Warn("render loop cannot keep up with tick", "elapsed", elapsed, "tick", l.tick)
}
