package registry

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/desertthunder/stripd/internal/models"
	"github.com/desertthunder/stripd/internal/shared"
)

// wireSegment mirrors [models.Segment] with pointers so required fields can be told apart from zero values.
type wireSegment struct {
	Length     *uint32       `json:"length"`
	Mirrored   bool          `json:"mirrored"`
	Start      *models.Color `json:"start"`
	End        *models.Color `json:"end"`
	Offset     uint32        `json:"offset"`
	Period     *uint32       `json:"period"`
	Brightness *uint8        `json:"brightness"`
}

func (w wireSegment) segment() (models.Segment, error) {
	switch {
	case w.Length == nil:
		return models.Segment{}, errors.New("missing field \"length\"")
	case w.Start == nil:
		return models.Segment{}, errors.New("missing field \"start\"")
	case w.End == nil:
		return models.Segment{}, errors.New("missing field \"end\"")
	case w.Period == nil:
		return models.Segment{}, errors.New("missing field \"period\"")
	}

	seg := models.Segment{
		Length:     *w.Length,
		Mirrored:   w.Mirrored,
		Start:      *w.Start,
		End:        *w.End,
		Offset:     w.Offset,
		Period:     *w.Period,
		Brightness: 255,
	}
	if w.Brightness != nil {
		seg.Brightness = *w.Brightness
	}
	return seg, nil
}

// Marshal encodes s as a JSON object keyed by segment id, in strip order.
func Marshal(s Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, e := range s.entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(e.ID)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(e.Segment)
		if err != nil {
			return nil, fmt.Errorf("failed to encode segment %s: %w", e.ID, err)
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalIndent is like [Marshal] but indents the output for humans.
func MarshalIndent(s Snapshot, prefix, indent string) ([]byte, error) {
	data, err := Marshal(s)
	if err != nil {
		return nil, err
	}
	var out bytes.Buffer
	if err := json.Indent(&out, data, prefix, indent); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// Unmarshal decodes a JSON object keyed by segment id, keeping the key order of the document.
//
// Non-object input, repeated keys, unknown or missing segment fields, and trailing data are rejected with an
// error wrapping [shared.ErrInvalidFormat]. Segment values are not validated; see [Snapshot.Validate].
func Unmarshal(data []byte) (Snapshot, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()

	tok, err := dec.Token()
	if err != nil {
		return Snapshot{}, formatError(err)
	}
	if delim, ok := tok.(json.Delim); !ok || delim != '{' {
		return Snapshot{}, fmt.Errorf("%w: expected an object keyed by segment id", shared.ErrInvalidFormat)
	}

	seen := make(map[string]struct{})
	var entries []Entry
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Snapshot{}, formatError(err)
		}
		id, ok := tok.(string)
		if !ok {
			return Snapshot{}, fmt.Errorf("%w: unexpected token %v", shared.ErrInvalidFormat, tok)
		}
		if _, dup := seen[id]; dup {
			return Snapshot{}, fmt.Errorf("%w: duplicate segment id %q", shared.ErrInvalidFormat, id)
		}
		seen[id] = struct{}{}

		var w wireSegment
		if err := dec.Decode(&w); err != nil {
			return Snapshot{}, fmt.Errorf("%w: segment %q: %v", shared.ErrInvalidFormat, id, err)
		}
		seg, err := w.segment()
		if err != nil {
			return Snapshot{}, fmt.Errorf("%w: segment %q: %v", shared.ErrInvalidFormat, id, err)
		}
		entries = append(entries, Entry{ID: id, Segment: seg})
	}

	if _, err := dec.Token(); err != nil {
		return Snapshot{}, formatError(err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Snapshot{}, fmt.Errorf("%w: trailing data after object", shared.ErrInvalidFormat)
	}

	return NewSnapshot(entries...), nil
}

// Decode unmarshals data and validates every segment, so the result is safe to hand to [Registry.Replace].
func Decode(data []byte) (Snapshot, error) {
	s, err := Unmarshal(data)
	if err != nil {
		return Snapshot{}, err
	}
	if err := s.Validate(); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %w", shared.ErrInvalidFormat, err)
	}
	return s, nil
}

func formatError(err error) error {
	if errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: unexpected end of input", shared.ErrInvalidFormat)
	}
	return fmt.Errorf("%w: %v", shared.ErrInvalidFormat, err)
}
