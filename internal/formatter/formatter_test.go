package formatter

import (
	"encoding/csv"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/desertthunder/stripd/internal/models"
	"github.com/desertthunder/stripd/internal/registry"
	"github.com/desertthunder/stripd/internal/shared"
	tu "github.com/desertthunder/stripd/internal/testing"
)

func sample() registry.Snapshot {
	a := models.NewSegment(2, false, models.RGB(255, 0, 0), models.RGB(0, 0, 255), 1500)
	b := models.NewSegment(3, true, models.RGB(0, 255, 0), models.RGB(0, 0, 0), 250)
	b.Offset = 100
	b.Brightness = 40
	return registry.NewSnapshot(
		registry.Entry{ID: "a", Segment: a},
		registry.Entry{ID: "b", Segment: b},
	)
}

func TestExporters(t *testing.T) {
	t.Run("ExportToCSV", func(t *testing.T) {
		data, err := ExportToCSV(sample())
		if err != nil {
			t.Fatalf("ExportToCSV failed: %v", err)
		}

		records, err := csv.NewReader(strings.NewReader(string(data))).ReadAll()
		if err != nil {
			t.Fatalf("output is not valid CSV: %v", err)
		}
		if len(records) != 3 {
			t.Fatalf("expected header + 2 rows, got %d", len(records))
		}
		if records[0][0] != "ID" || records[0][9] != "Brightness" {
			t.Errorf("CSV headers = %v", records[0])
		}

		want := [][]string{
			{"a", "0", "2", "2", "false", "#ff0000", "#0000ff", "0", "1500", "255"},
			{"b", "2", "5", "3", "true", "#00ff00", "#000000", "100", "250", "40"},
		}
		for i, row := range want {
			if strings.Join(records[i+1], ",") != strings.Join(row, ",") {
				t.Errorf("row %d = %v, want %v", i+1, records[i+1], row)
			}
		}
	})

	t.Run("ExportToMarkdown", func(t *testing.T) {
		data, err := ExportToMarkdown(sample())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}

		output := string(data)
		for _, want := range []string{
			"# Strip configuration",
			"**Segments**: 2",
			"**Pixels**: 5",
			"| `a` | 0–1 | `#ff0000` → `#0000ff` | 1.5s | 0s | no | 255 |",
			"| `b` | 2–4 |",
		} {
			if !strings.Contains(output, want) {
				t.Errorf("Markdown missing %q, got:\n%s", want, output)
			}
		}
	})

	t.Run("ExportToMarkdown empty", func(t *testing.T) {
		data, err := ExportToMarkdown(registry.NewSnapshot())
		if err != nil {
			t.Fatalf("ExportToMarkdown failed: %v", err)
		}
		if !strings.Contains(string(data), "dark") {
			t.Errorf("empty configuration should say so, got: %s", data)
		}
		if strings.Contains(string(data), "| ID |") {
			t.Error("empty configuration should not render a table")
		}
	})

	t.Run("ExportToText", func(t *testing.T) {
		data, err := ExportToText(sample())
		if err != nil {
			t.Fatalf("ExportToText failed: %v", err)
		}

		output := string(data)
		if !strings.Contains(output, "1. a: 2 px #ff0000 -> #0000ff every 1.5s") {
			t.Errorf("text missing first segment, got:\n%s", output)
		}
		if !strings.Contains(output, "2. b: 3 px #00ff00 -> #000000 every 250ms") {
			t.Errorf("text missing second segment, got:\n%s", output)
		}
	})
}

func TestExport(t *testing.T) {
	snap := sample()

	tests := []struct {
		name   string
		format string
		check  func(t *testing.T, data []byte)
	}{
		{
			name:   "json matches the wire encoding",
			format: FormatJSON,
			check: func(t *testing.T, data []byte) {
				decoded, err := registry.Decode(data)
				if err != nil {
					t.Fatalf("decode: %v", err)
				}
				if !decoded.Equal(snap) {
					t.Error("JSON export does not round-trip")
				}
			},
		},
		{
			name:   "empty format is json",
			format: "",
			check: func(t *testing.T, data []byte) {
				if !strings.HasPrefix(string(data), `{"a":`) {
					t.Errorf("got %s", data)
				}
			},
		},
		{
			name:   "csv",
			format: FormatCSV,
			check: func(t *testing.T, data []byte) {
				if !strings.HasPrefix(string(data), "ID,Start,End") {
					t.Errorf("got %s", data)
				}
			},
		},
		{
			name:   "markdown alias",
			format: "markdown",
			check: func(t *testing.T, data []byte) {
				if !strings.HasPrefix(string(data), "# Strip configuration") {
					t.Errorf("got %s", data)
				}
			},
		},
		{
			name:   "txt alias",
			format: "txt",
			check: func(t *testing.T, data []byte) {
				if !strings.HasPrefix(string(data), "Segments: 2") {
					t.Errorf("got %s", data)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := Export(snap, tt.format, false)
			if err != nil {
				t.Fatalf("Export(%q) failed: %v", tt.format, err)
			}
			tt.check(t, data)
		})
	}

	t.Run("unknown format", func(t *testing.T) {
		_, err := Export(snap, "yaml", false)
		if !errors.Is(err, shared.ErrInvalidArgument) {
			t.Errorf("Export(yaml) = %v, want ErrInvalidArgument", err)
		}
	})
}

func TestWriteExport(t *testing.T) {
	dir := t.TempDir()

	t.Run("json gets a trailing newline", func(t *testing.T) {
		path := filepath.Join(dir, "strip.json")
		if err := WriteExport(sample(), FormatJSON, path); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		tu.AssertFileExists(t, path)
		content := tu.MustReadFile(t, path)
		if !strings.HasSuffix(content, "}\n") {
			t.Errorf("expected trailing newline, got %q", content)
		}
		if !strings.Contains(content, "\n  \"a\": {") {
			t.Errorf("expected indented JSON, got %s", content)
		}
	})

	t.Run("csv", func(t *testing.T) {
		path := filepath.Join(dir, "strip.csv")
		if err := WriteExport(sample(), FormatCSV, path); err != nil {
			t.Fatalf("WriteExport failed: %v", err)
		}
		if !strings.HasPrefix(tu.MustReadFile(t, path), "ID,") {
			t.Error("expected CSV header")
		}
	})

	t.Run("unwritable path", func(t *testing.T) {
		if err := WriteExport(sample(), FormatText, filepath.Join(dir, "missing", "strip.txt")); err == nil {
			t.Error("expected error for missing directory")
		}
	})
}
