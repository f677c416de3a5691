package ui

import (
	"time"

	"github.com/desertthunder/stripd/internal/registry"
)

// tickMsg advances the animation.
type tickMsg time.Time

// loadedMsg carries the result of reading the [Source].
type loadedMsg struct {
	snapshot registry.Snapshot
	// remoteNow is the source clock at load time when hasClock is set.
	remoteNow uint64
	hasClock  bool
	err       error
}
