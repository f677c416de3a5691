package server

import (
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/stripd/internal/registry"
	"github.com/desertthunder/stripd/internal/shared"
)

// Saver persists a snapshot. [repositories.SegmentStore] is the production implementation.
type Saver interface {
	Save(registry.Snapshot) error
}

// WriteResult describes an accepted configuration write.
type WriteResult struct {
	// Persisted is false when the configuration was applied but could not be saved.
	Persisted bool
	Segments  int
	Pixels    int
	Version   uint64
}

// ConfigHandler reads and replaces the live configuration.
type ConfigHandler struct {
	registry *registry.Registry
	store    Saver
	strict   bool
	logger   *log.Logger

	mu sync.Mutex
}

// NewConfigHandler creates a [ConfigHandler].
//
// With strict set, a configuration that cannot be saved is rejected instead of applied.
func NewConfigHandler(reg *registry.Registry, store Saver, strict bool, logger *log.Logger) *ConfigHandler {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &ConfigHandler{registry: reg, store: store, strict: strict, logger: logger}
}

// Read returns the current configuration serialized as JSON.
func (h *ConfigHandler) Read() ([]byte, error) {
	return registry.Marshal(h.registry.Snapshot())
}

// Write decodes body and makes it the live configuration.
//
// Malformed or invalid input returns an error wrapping [shared.ErrInvalidFormat] and changes nothing. A save
// failure is logged and reported through [WriteResult.Persisted]; in strict mode it is returned as an error wrapping
// [shared.ErrPersist] and the registry is left unchanged.
func (h *ConfigHandler) Write(body []byte) (WriteResult, error) {
	snap, err := registry.Decode(body)
	if err != nil {
		return WriteResult{}, err
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	result := WriteResult{Persisted: true, Segments: snap.Len(), Pixels: snap.TotalLength()}
	if err := h.store.Save(snap); err != nil {
		if !errors.Is(err, shared.ErrPersist) {
			err = fmt.Errorf("%w: %w", shared.ErrPersist, err)
		}
		if h.strict {
			h.logger.Error("configuration rejected, failed to persist", "error", err)
			return WriteResult{}, err
		}
		h.logger.Warn("configuration applied but not persisted", "error", err)
		result.Persisted = false
	}

	h.registry.Replace(snap)
	result.Version = h.registry.Version()
	h.logger.Info("configuration replaced", "segments", result.Segments, "pixels", result.Pixels, "persisted", result.Persisted)
	return result, nil
}

// IsFormatError reports whether err came from rejected client input.
func IsFormatError(err error) bool {
	return errors.Is(err, shared.ErrInvalidFormat)
}
