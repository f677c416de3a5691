package sinks

import (
	"bytes"
	"errors"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/stripd/internal/models"
	"github.com/desertthunder/stripd/internal/shared"
)

type recordingDiagnostics struct {
	messages []string
}

func (r *recordingDiagnostics) Diagnose(msg string) {
	r.messages = append(r.messages, msg)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("bus error") }

func TestAPA102(t *testing.T) {
	t.Run("frame layout", func(t *testing.T) {
		var buf bytes.Buffer
		sink := NewAPA102(&buf, 2)
		sink.SetPixel(0, models.RGB(10, 20, 30), 255, NopDiagnostics{})
		sink.SetPixel(1, models.RGB(1, 2, 3), 0, NopDiagnostics{})

		if err := sink.Flush(); err != nil {
			t.Fatalf("Flush() = %v", err)
		}

		want := []byte{
			0, 0, 0, 0,
			0xE0 | 31, 30, 20, 10,
			0xE0, 3, 2, 1,
			0xFF, 0xFF, 0xFF, 0xFF,
		}
		if !bytes.Equal(buf.Bytes(), want) {
			t.Errorf("frame = % x\nwant    % x", buf.Bytes(), want)
		}
	})

	t.Run("end frame grows with length", func(t *testing.T) {
		var buf bytes.Buffer
		sink := NewAPA102(&buf, 512)
		if err := sink.Flush(); err != nil {
			t.Fatal(err)
		}
		if got, want := buf.Len(), 4+4*512+32; got != want {
			t.Errorf("frame length = %d, want %d", got, want)
		}
	})

	t.Run("out of range is diagnosed", func(t *testing.T) {
		var buf bytes.Buffer
		diag := &recordingDiagnostics{}
		sink := NewAPA102(&buf, 3)
		sink.SetPixel(3, models.RGB(1, 1, 1), 255, diag)
		sink.SetPixel(-1, models.RGB(1, 1, 1), 255, diag)

		if len(diag.messages) != 2 {
			t.Fatalf("got %d diagnostics, want 2", len(diag.messages))
		}
		if !strings.Contains(diag.messages[0], "out of range") {
			t.Errorf("unexpected message %q", diag.messages[0])
		}
		if err := sink.Flush(); err != nil {
			t.Errorf("partial frame should still flush: %v", err)
		}
	})

	t.Run("write failure wraps ErrSink", func(t *testing.T) {
		sink := NewAPA102(failingWriter{}, 1)
		if err := sink.Flush(); !errors.Is(err, shared.ErrSink) {
			t.Errorf("Flush() = %v, want ErrSink", err)
		}
	})
}

func TestGlobalBrightness(t *testing.T) {
	tests := []struct {
		in   uint8
		want uint8
	}{
		{0, 0},
		{1, 1},
		{40, 5},
		{128, 16},
		{255, 31},
	}
	for _, tt := range tests {
		if got := GlobalBrightness(tt.in); got != tt.want {
			t.Errorf("GlobalBrightness(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestArtNet(t *testing.T) {
	t.Run("header", func(t *testing.T) {
		h := BuildArtDmxHeader(3, 510)
		if string(h[:8]) != "Art-Net\x00" {
			t.Errorf("signature = %q", h[:8])
		}
		if h[8] != 0x00 || h[9] != 0x50 {
			t.Errorf("opcode bytes = %x %x, want 00 50", h[8], h[9])
		}
		if h[14] != 3 || h[15] != 0 {
			t.Errorf("universe bytes = %x %x", h[14], h[15])
		}
		if h[16] != 0x01 || h[17] != 0xFE {
			t.Errorf("length bytes = %x %x, want 01 fe", h[16], h[17])
		}
	})

	t.Run("rejects universes outside 15 bits", func(t *testing.T) {
		tc := []struct {
			name     string
			universe int
			length   int
		}{
			{name: "negative base", universe: -1, length: 10},
			{name: "base above range", universe: shared.MaxArtNetUniverse + 1, length: 10},
			{name: "strip spills past the last universe", universe: shared.MaxArtNetUniverse, length: PixelsPerUniverse + 1},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				_, err := DialArtNet("127.0.0.1", tt.universe, tt.length)
				if !errors.Is(err, shared.ErrInvalidConfig) {
					t.Errorf("DialArtNet(%d, %d) = %v, want ErrInvalidConfig", tt.universe, tt.length, err)
				}
			})
		}
	})

	t.Run("splits universes over udp", func(t *testing.T) {
		pc, err := net.ListenPacket("udp", "127.0.0.1:0")
		if err != nil {
			t.Skipf("udp unavailable: %v", err)
		}
		defer pc.Close()

		sink, err := DialArtNet(pc.LocalAddr().String(), 1, 200)
		if err != nil {
			t.Fatalf("DialArtNet: %v", err)
		}
		defer sink.Close()

		if sink.Universes() != 2 {
			t.Fatalf("Universes() = %d, want 2", sink.Universes())
		}

		sink.SetPixel(0, models.RGB(255, 0, 0), 255, NopDiagnostics{})
		sink.SetPixel(170, models.RGB(0, 200, 0), 128, NopDiagnostics{})
		if err := sink.Flush(); err != nil {
			t.Fatalf("Flush() = %v", err)
		}

		buf := make([]byte, 1024)
		pc.SetReadDeadline(time.Now().Add(2 * time.Second))

		n, _, err := pc.ReadFrom(buf)
		if err != nil {
			t.Fatalf("read first universe: %v", err)
		}
		if n != artDmxHeaderLen+510 || buf[14] != 1 {
			t.Errorf("first packet: %d bytes, universe %d", n, buf[14])
		}
		if buf[18] != 255 || buf[19] != 0 || buf[20] != 0 {
			t.Errorf("first pixel = %v", buf[18:21])
		}

		n, _, err = pc.ReadFrom(buf)
		if err != nil {
			t.Fatalf("read second universe: %v", err)
		}
		if n != artDmxHeaderLen+30*3 || buf[14] != 2 {
			t.Errorf("second packet: %d bytes, universe %d", n, buf[14])
		}
		if buf[19] != 100 {
			t.Errorf("scaled green = %d, want 100", buf[19])
		}
		if buf[12] != 1 {
			t.Errorf("sequence = %d, want 1", buf[12])
		}
	})
}

func TestTerminal(t *testing.T) {
	var buf bytes.Buffer
	sink := NewTerminal(&buf, 4)
	for i := range 4 {
		sink.SetPixel(i, models.RGB(255, 0, 0), 255, NopDiagnostics{})
	}
	if err := sink.Flush(); err != nil {
		t.Fatalf("Flush() = %v", err)
	}
	out := buf.String()
	if !strings.HasPrefix(out, "\r") {
		t.Error("terminal frame should start with a carriage return")
	}
	if strings.Count(out, "█") != 4 {
		t.Errorf("expected 4 blocks in %q", out)
	}
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     shared.StripConfig
		wantErr error
	}{
		{"discard", shared.StripConfig{Length: 10, Sink: SinkDiscard}, nil},
		{"default is discard", shared.StripConfig{Length: 10}, nil},
		{"terminal", shared.StripConfig{Length: 10, Sink: "Terminal"}, nil},
		{"unknown", shared.StripConfig{Length: 10, Sink: "ws2812"}, shared.ErrUnknownSink},
		{"zero length", shared.StripConfig{Length: 0, Sink: SinkDiscard}, shared.ErrInvalidConfig},
		{"missing device", shared.StripConfig{Length: 10, Sink: SinkAPA102, Device: "/nonexistent/spidev"}, shared.ErrSink},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sink, err := New(tt.cfg, Options{Output: &bytes.Buffer{}})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("New() error = %v, want %v", err, tt.wantErr)
				}
				if sink != nil {
					t.Error("sink should be nil on error")
				}
				return
			}
			if err != nil {
				t.Fatalf("New() = %v", err)
			}
			if sink.Len() != tt.cfg.Length {
				t.Errorf("Len() = %d", sink.Len())
			}
			if err := Close(sink); err != nil {
				t.Errorf("Close() = %v", err)
			}
		})
	}
}

func TestLogDiagnostics(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(&buf)
	diag := NewLogDiagnostics(logger, time.Hour, 2)

	for range 5 {
		diag.Diagnose("pixel index 9 out of range [0, 4)")
	}

	if got := strings.Count(buf.String(), "out of range"); got != 2 {
		t.Errorf("logged %d messages, want 2 (burst)", got)
	}
	if diag.dropped.Load() != 3 {
		t.Errorf("dropped = %d, want 3", diag.dropped.Load())
	}
}
