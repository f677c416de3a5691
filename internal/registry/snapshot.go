package registry

import "github.com/desertthunder/stripd/internal/models"

// Entry is one keyed segment in strip order.
type Entry struct {
	ID      string
	Segment models.Segment
}

// Snapshot is an immutable, ordered mapping from segment id to [models.Segment].
//
// The zero value is an empty snapshot.
type Snapshot struct {
	entries []Entry
	index   map[string]int
}

// NewSnapshot builds a snapshot from entries in order.
//
// A repeated id replaces the earlier value in place, like assigning to an ordered map.
func NewSnapshot(entries ...Entry) Snapshot {
	s := Snapshot{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		if i, ok := s.index[e.ID]; ok {
			s.entries[i].Segment = e.Segment
			continue
		}
		s.index[e.ID] = len(s.entries)
		s.entries = append(s.entries, e)
	}
	return s
}

// DefaultSnapshot returns the built-in starter palette from [models.DefaultSegments].
func DefaultSnapshot() Snapshot {
	defaults := models.DefaultSegments()
	entries := make([]Entry, len(defaults))
	for i, d := range defaults {
		entries[i] = Entry{ID: d.ID, Segment: d.Segment}
	}
	return NewSnapshot(entries...)
}

// Len returns the number of segments.
func (s Snapshot) Len() int {
	return len(s.entries)
}

// Entries returns a copy of the entries in strip order.
func (s Snapshot) Entries() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Each calls fn for every entry in strip order without copying, stopping early when fn returns false.
func (s Snapshot) Each(fn func(i int, e Entry) bool) {
	for i, e := range s.entries {
		if !fn(i, e) {
			return
		}
	}
}

// IDs returns the segment ids in strip order.
func (s Snapshot) IDs() []string {
	ids := make([]string, len(s.entries))
	for i, e := range s.entries {
		ids[i] = e.ID
	}
	return ids
}

// Get returns the segment stored under id.
func (s Snapshot) Get(id string) (models.Segment, bool) {
	i, ok := s.index[id]
	if !ok {
		return models.Segment{}, false
	}
	return s.entries[i].Segment, true
}

// TotalLength returns the sum of all segment lengths, which may exceed the physical strip.
func (s Snapshot) TotalLength() int {
	total := 0
	for _, e := range s.entries {
		total += int(e.Segment.Length)
	}
	return total
}

// Validate checks every segment, reporting the first invalid id.
func (s Snapshot) Validate() error {
	for _, e := range s.entries {
		if err := e.Segment.Validate(); err != nil {
			return &SegmentError{ID: e.ID, Err: err}
		}
	}
	return nil
}

// Equal reports whether both snapshots hold the same ids, in the same order, with equal segments.
func (s Snapshot) Equal(other Snapshot) bool {
	if len(s.entries) != len(other.entries) {
		return false
	}
	for i := range s.entries {
		if s.entries[i] != other.entries[i] {
			return false
		}
	}
	return true
}

// SegmentError ties a validation failure to the segment id that caused it.
type SegmentError struct {
	ID  string
	Err error
}

func (e *SegmentError) Error() string {
	return "segment " + e.ID + ": " + e.Err.Error()
}

func (e *SegmentError) Unwrap() error {
	return e.Err
}
