package repositories

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/stripd/internal/registry"
	"github.com/desertthunder/stripd/internal/shared"
)

// SegmentsKey is the storage key holding the serialized segment configuration.
const SegmentsKey = "strip_segments"

// SegmentStore is the persistence adapter between a [registry.Snapshot] and [Storage].
type SegmentStore struct {
	storage Storage
	logger  *log.Logger
	buf     []byte
}

// NewSegmentStore creates a [SegmentStore]. A nil logger discards log output.
func NewSegmentStore(storage Storage, logger *log.Logger) *SegmentStore {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &SegmentStore{storage: storage, logger: logger}
}

// Load reads the persisted snapshot. It returns false with a nil error when nothing has been saved yet.
//
// Bytes that do not decode to a valid snapshot are reported with an error wrapping [shared.ErrCorruptState].
// SegmentStore is not safe for concurrent Load calls; callers serialize access.
func (s *SegmentStore) Load() (registry.Snapshot, bool, error) {
	n, ok, err := s.storage.Len(SegmentsKey)
	if err != nil {
		return registry.Snapshot{}, false, err
	}
	if !ok {
		return registry.Snapshot{}, false, nil
	}
	if cap(s.buf) < n {
		s.buf = make([]byte, 0, n)
	}

	data, ok, err := s.storage.GetRaw(SegmentsKey, s.buf)
	if err != nil {
		return registry.Snapshot{}, false, err
	}
	if !ok {
		return registry.Snapshot{}, false, nil
	}
	s.buf = data[:0]

	snap, err := registry.Decode(data)
	if err != nil {
		return registry.Snapshot{}, false, fmt.Errorf("%w: %w", shared.ErrCorruptState, err)
	}
	return snap, true, nil
}

// Save serializes snap and overwrites the persisted configuration.
func (s *SegmentStore) Save(snap registry.Snapshot) error {
	data, err := registry.Marshal(snap)
	if err != nil {
		return fmt.Errorf("%w: %w", shared.ErrPersist, err)
	}
	if err := s.storage.PutRaw(SegmentsKey, data); err != nil {
		return fmt.Errorf("%w: %w", shared.ErrPersist, err)
	}
	return nil
}

// Restore returns the snapshot to start rendering with: the persisted one when it loads cleanly, otherwise
// [registry.DefaultSnapshot]. Failures are logged and never returned.
func (s *SegmentStore) Restore() registry.Snapshot {
	snap, ok, err := s.Load()
	switch {
	case errors.Is(err, shared.ErrCorruptState):
		s.logger.Warn("persisted segments are unreadable, using defaults", "key", SegmentsKey, "error", err)
	case err != nil:
		s.logger.Warn("failed to load persisted segments, using defaults", "key", SegmentsKey, "error", err)
	case !ok:
		s.logger.Info("no persisted segments, using defaults", "key", SegmentsKey)
	default:
		kv := []any{"count", snap.Len(), "pixels", snap.TotalLength()}
		if ts, ok := s.storage.(Timestamped); ok {
			if at, found, err := ts.UpdatedAt(SegmentsKey); err == nil && found {
				kv = append(kv, "saved_at", at.Format(time.RFC3339))
			}
		}
		s.logger.Info("restored persisted segments", kv...)
		return snap
	}
	return registry.DefaultSnapshot()
}
