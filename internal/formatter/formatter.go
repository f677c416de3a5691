// package formatter renders segment configurations as CSV, Markdown or plain text for the CLI
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/desertthunder/stripd/internal/registry"
	"github.com/desertthunder/stripd/internal/shared"
)

// Supported output formats.
const (
	FormatJSON     = "json"
	FormatCSV      = "csv"
	FormatMarkdown = "md"
	FormatText     = "text"
)

// Formats lists every name accepted by [Export].
var Formats = []string{FormatJSON, FormatCSV, FormatMarkdown, FormatText}

// Export renders snap in the named format. JSON output is the same document GET /data serves.
func Export(snap registry.Snapshot, format string, pretty bool) ([]byte, error) {
	switch format {
	case "", FormatJSON:
		if pretty {
			return registry.MarshalIndent(snap, "", "  ")
		}
		return registry.Marshal(snap)
	case FormatCSV:
		return ExportToCSV(snap)
	case FormatMarkdown, "markdown":
		return ExportToMarkdown(snap)
	case FormatText, "txt":
		return ExportToText(snap)
	}
	return nil, fmt.Errorf("%w: unknown format %q (want one of %v)", shared.ErrInvalidArgument, format, Formats)
}

// ExportToCSV converts a snapshot to CSV with columns: ID, Start, End, Length, Mirrored, Start Color, End Color,
// Offset, Period, Brightness
//
// Start and End are the pixel span the segment covers on the strip.
func ExportToCSV(snap registry.Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"ID", "Start", "End", "Length", "Mirrored", "Start Color", "End Color", "Offset", "Period", "Brightness"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	var writeErr error
	var pos uint64
	snap.Each(func(_ int, e registry.Entry) bool {
		seg := e.Segment
		end := pos + uint64(seg.Length)
		record := []string{
			e.ID,
			strconv.FormatUint(pos, 10),
			strconv.FormatUint(end, 10),
			strconv.FormatUint(uint64(seg.Length), 10),
			strconv.FormatBool(seg.Mirrored),
			seg.Start.Hex(),
			seg.End.Hex(),
			strconv.FormatUint(uint64(seg.Offset), 10),
			strconv.FormatUint(uint64(seg.Period), 10),
			strconv.Itoa(int(seg.Brightness)),
		}
		pos = end
		if err := writer.Write(record); err != nil {
			writeErr = fmt.Errorf("failed to write CSV record: %w", err)
			return false
		}
		return true
	})
	if writeErr != nil {
		return nil, writeErr
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown converts a snapshot to a Markdown document with a summary and one table row per segment.
func ExportToMarkdown(snap registry.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString("# Strip configuration\n\n")
	buf.WriteString(fmt.Sprintf("**Segments**: %d\n", snap.Len()))
	buf.WriteString(fmt.Sprintf("**Pixels**: %d\n\n", snap.TotalLength()))

	if snap.Len() == 0 {
		buf.WriteString("_The strip is dark._\n")
		return buf.Bytes(), nil
	}

	buf.WriteString("| ID | Pixels | Colors | Period | Offset | Mirrored | Brightness |\n")
	buf.WriteString("|---|---|---|---|---|---|---|\n")

	var pos uint64
	snap.Each(func(_ int, e registry.Entry) bool {
		seg := e.Segment
		end := pos + uint64(seg.Length)
		buf.WriteString(fmt.Sprintf("| `%s` | %d–%d | `%s` → `%s` | %s | %s | %s | %d |\n",
			e.ID, pos, end-1, seg.Start.Hex(), seg.End.Hex(),
			formatMillis(seg.Period), formatMillis(seg.Offset), yesNo(seg.Mirrored), seg.Brightness))
		pos = end
		return true
	})

	return buf.Bytes(), nil
}

// ExportToText converts a snapshot to plain text, one line per segment.
func ExportToText(snap registry.Snapshot) ([]byte, error) {
	var buf bytes.Buffer

	buf.WriteString(fmt.Sprintf("Segments: %d\n", snap.Len()))
	buf.WriteString(fmt.Sprintf("Pixels: %d\n\n", snap.TotalLength()))

	snap.Each(func(i int, e registry.Entry) bool {
		seg := e.Segment
		buf.WriteString(fmt.Sprintf("%d. %s: %d px %s -> %s every %s\n",
			i+1, e.ID, seg.Length, seg.Start.Hex(), seg.End.Hex(), formatMillis(seg.Period)))
		return true
	})

	return buf.Bytes(), nil
}

// WriteExport renders snap and writes it to path.
func WriteExport(snap registry.Snapshot, format, path string) error {
	data, err := Export(snap, format, true)
	if err != nil {
		return err
	}
	if format == "" || format == FormatJSON {
		data = append(data, '\n')
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}

func formatMillis(ms uint32) string {
	return (time.Duration(ms) * time.Millisecond).String()
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}
