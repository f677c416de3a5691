package repositories

import "time"

// Storage is a key → blob store. Values are written and read whole.
type Storage interface {
	// Len reports the size of the value stored under key, or false when the key has never been written.
	Len(key string) (int, bool, error)
	// GetRaw reads the value under key, reusing buf when it is large enough.
	GetRaw(key string, buf []byte) ([]byte, bool, error)
	// PutRaw overwrites the value under key.
	PutRaw(key string, data []byte) error
}

// Timestamped is implemented by storage that records when each key was last written.
type Timestamped interface {
	UpdatedAt(key string) (time.Time, bool, error)
}
