package models

import (
	"errors"
	"testing"

	"github.com/desertthunder/stripd/internal/shared"
	"pgregory.net/rapid"
)

func drawColor(t *rapid.T, label string) Color {
	return RGB(
		rapid.Uint8().Draw(t, label+"-r"),
		rapid.Uint8().Draw(t, label+"-g"),
		rapid.Uint8().Draw(t, label+"-b"),
	)
}

func drawSegment(t *rapid.T) Segment {
	return Segment{
		Length:     rapid.Uint32Range(1, 1024).Draw(t, "length"),
		Mirrored:   rapid.Bool().Draw(t, "mirrored"),
		Start:      drawColor(t, "start"),
		End:        drawColor(t, "end"),
		Offset:     rapid.Uint32().Draw(t, "offset"),
		Period:     rapid.Uint32Range(2, 1<<20).Draw(t, "period"),
		Brightness: rapid.Uint8().Draw(t, "brightness"),
	}
}

func TestSegmentColorAt(t *testing.T) {
	t.Run("periodicity", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			s := drawSegment(t)
			now := rapid.Uint64Range(0, 1<<40).Draw(t, "now")

			if got, want := s.ColorAt(now+uint64(s.Period)), s.ColorAt(now); got != want {
				t.Fatalf("ColorAt(now+period) = %v, ColorAt(now) = %v", got, want)
			}
		})
	})

	t.Run("endpoints are reached every cycle", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			s := drawSegment(t)
			p := uint64(s.Period)
			base := rapid.Uint64Range(0, 1000).Draw(t, "cycle") * p

			// at returns the instant within the cycle starting at base whose phase is phase.
			at := func(phase uint64) uint64 {
				x := phase
				if s.Mirrored {
					x = (p - phase) % p
				}
				return base + (x+p-uint64(s.Offset)%p)%p
			}

			if got := s.ColorAt(at(0)); got != s.Start {
				t.Fatalf("phase 0 = %v, want start %v", got, s.Start)
			}
			if got := s.ColorAt(at(p / 2)); got != s.End {
				t.Fatalf("phase period/2 = %v, want end %v", got, s.End)
			}
		})
	})

	t.Run("end color is shown at exactly one instant per cycle", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			s := drawSegment(t)
			s.Period = rapid.Uint32Range(2, 4096).Draw(t, "short-period")
			if s.Start == s.End {
				t.Skip("static segment")
			}
			base := rapid.Uint64Range(0, 1<<30).Draw(t, "base")

			ends := 0
			for now := base; now < base+uint64(s.Period); now++ {
				if s.ColorAt(now) == s.End {
					ends++
				}
			}
			if ends != 1 {
				t.Fatalf("end color shown at %d instants of period %d, want 1", ends, s.Period)
			}
		})
	})

	t.Run("end instant is unique for small deltas and extreme offsets", func(t *testing.T) {
		tc := []struct {
			name       string
			start, end Color
			period     uint32
		}{
			{name: "wide delta even period", start: RGB(0, 0, 0), end: RGB(200, 100, 50), period: 1000},
			{name: "wide delta odd period", start: RGB(0, 0, 0), end: RGB(200, 100, 50), period: 1001},
			{name: "one step delta", start: RGB(0, 0, 0), end: RGB(1, 1, 1), period: 1000},
			{name: "falling delta", start: RGB(9, 9, 9), end: RGB(8, 9, 9), period: 777},
			{name: "period two", start: RGB(0, 0, 0), end: RGB(255, 255, 255), period: 2},
			{name: "period three", start: RGB(0, 0, 0), end: RGB(255, 255, 255), period: 3},
		}

		for _, tt := range tc {
			for _, mirrored := range []bool{false, true} {
				s := Segment{Length: 1, Mirrored: mirrored, Start: tt.start, End: tt.end, Offset: 4294967295, Period: tt.period}
				ends := 0
				for now := uint64(0); now < uint64(tt.period); now++ {
					if s.ColorAt(now) == s.End {
						ends++
					}
				}
				if ends != 1 {
					t.Errorf("%s (mirrored=%v): end shown %d times, want 1", tt.name, mirrored, ends)
				}
			}
		}
	})

	t.Run("phase offset only moves the time origin", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			s := drawSegment(t)
			now := rapid.Uint64Range(0, 1<<40).Draw(t, "now")

			shifted := s
			shifted.Offset = 0
			if got, want := s.ColorAt(now), shifted.ColorAt(now+uint64(s.Offset)); got != want {
				t.Fatalf("offset segment = %v, unshifted at now+offset = %v", got, want)
			}
		})
	})

	t.Run("mirrored is time reversal", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			s := drawSegment(t)
			s.Offset = 0
			s.Mirrored = false
			mirrored := s
			mirrored.Mirrored = true

			p := uint64(s.Period)
			x := rapid.Uint64Range(0, p-1).Draw(t, "phase")
			if got, want := mirrored.ColorAt(x), s.ColorAt((p-x)%p); got != want {
				t.Fatalf("mirrored(%d) = %v, forward(%d) = %v", x, got, (p-x)%p, want)
			}
		})
	})

	t.Run("continuity across the wrap", func(t *testing.T) {
		rapid.Check(t, func(t *rapid.T) {
			s := drawSegment(t)
			s.Period = rapid.Uint32Range(512, 1<<20).Draw(t, "long-period")
			s.Offset = 0
			k := rapid.Uint64Range(1, 1000).Draw(t, "k")
			wrap := k * uint64(s.Period)

			before, after := s.ColorAt(wrap-1), s.ColorAt(wrap)
			for _, d := range []int{
				int(before.Red) - int(after.Red),
				int(before.Green) - int(after.Green),
				int(before.Blue) - int(after.Blue),
			} {
				if d > 2 || d < -2 {
					t.Fatalf("jump at wrap: %v -> %v", before, after)
				}
			}
		})
	})

	t.Run("red to blue sweep", func(t *testing.T) {
		s := Segment{Length: 5, Start: RGB(255, 0, 0), End: RGB(0, 0, 255), Period: 1000, Brightness: 10}

		tc := []struct {
			name string
			now  uint64
			want Color
		}{
			{name: "cycle start", now: 0, want: RGB(255, 0, 0)},
			{name: "quarter", now: 250, want: RGB(128, 0, 127)},
			{name: "just before half", now: 499, want: RGB(1, 0, 254)},
			{name: "half", now: 500, want: RGB(0, 0, 255)},
			{name: "just after half", now: 501, want: RGB(1, 0, 254)},
			{name: "three quarters", now: 750, want: RGB(128, 0, 127)},
			{name: "next cycle", now: 1000, want: RGB(255, 0, 0)},
		}

		for _, tt := range tc {
			t.Run(tt.name, func(t *testing.T) {
				if got := s.ColorAt(tt.now); got != tt.want {
					t.Errorf("ColorAt(%d) = %v, want %v", tt.now, got, tt.want)
				}
			})
		}
	})

	t.Run("static segment", func(t *testing.T) {
		s := NewSegment(3, false, RGB(1, 2, 3), RGB(1, 2, 3), 100)
		for now := uint64(0); now < 200; now += 7 {
			if got := s.ColorAt(now); got != RGB(1, 2, 3) {
				t.Fatalf("static segment changed color at %d: %v", now, got)
			}
		}
	})

	t.Run("degenerate periods are total", func(t *testing.T) {
		for _, period := range []uint32{0, 1} {
			s := NewSegment(1, true, RGB(9, 9, 9), RGB(200, 0, 0), period)
			if got := s.ColorAt(12345); got != s.Start {
				t.Errorf("period %d: expected start color, got %v", period, got)
			}
		}
	})
}

func TestSegmentValidate(t *testing.T) {
	tc := []struct {
		name    string
		segment Segment
		wantErr bool
	}{
		{name: "valid", segment: NewSegment(1, false, RGB(0, 0, 0), RGB(1, 1, 1), 1)},
		{name: "zero length", segment: NewSegment(0, false, RGB(0, 0, 0), RGB(1, 1, 1), 10), wantErr: true},
		{name: "zero period", segment: NewSegment(5, false, RGB(0, 0, 0), RGB(1, 1, 1), 0), wantErr: true},
	}

	for _, tt := range tc {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.segment.Validate()
			if tt.wantErr && !errors.Is(err, shared.ErrInvalidSegment) {
				t.Errorf("expected ErrInvalidSegment, got %v", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestDefaultSegments(t *testing.T) {
	defaults := DefaultSegments()
	if len(defaults) != 4 {
		t.Fatalf("expected 4 default segments, got %d", len(defaults))
	}

	seen := map[string]bool{}
	for _, d := range defaults {
		if err := d.Segment.Validate(); err != nil {
			t.Errorf("default segment %s invalid: %v", d.ID, err)
		}
		if seen[d.ID] {
			t.Errorf("duplicate default id %s", d.ID)
		}
		seen[d.ID] = true
	}

	if defaults[0].Segment.Length != 144 || defaults[0].Segment.Period != 4100*16 {
		t.Errorf("unexpected first default segment %+v", defaults[0].Segment)
	}
}
