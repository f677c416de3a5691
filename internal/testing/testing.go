// package testing contains shared test doubles and helpers
package testing

import (
	"errors"
	"net/http"
	"os"
	"sync"
	"testing"

	"github.com/desertthunder/stripd/internal/models"
	"github.com/desertthunder/stripd/internal/sinks"
)

// ErrInjected is returned by the failing doubles in this package.
var ErrInjected = errors.New("injected failure")

// MemoryStorage is an in-memory [repositories.Storage].
type MemoryStorage struct {
	mu     sync.Mutex
	blobs  map[string][]byte
	writes int
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{blobs: make(map[string][]byte)}
}

func (m *MemoryStorage) Len(key string) (int, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.blobs[key]
	return len(v), ok, nil
}

func (m *MemoryStorage) GetRaw(key string, buf []byte) ([]byte, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.blobs[key]
	if !ok {
		return nil, false, nil
	}
	return append(buf[:0], v...), true, nil
}

func (m *MemoryStorage) PutRaw(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[key] = append([]byte(nil), data...)
	m.writes++
	return nil
}

// Get returns a copy of the value under key.
func (m *MemoryStorage) Get(key string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.blobs[key]
	return append([]byte(nil), v...), ok
}

// Writes returns how many times PutRaw succeeded.
func (m *MemoryStorage) Writes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.writes
}

// FailingStorage wraps [MemoryStorage] and fails reads or writes on demand.
type FailingStorage struct {
	*MemoryStorage
	mu        sync.Mutex
	failRead  bool
	failWrite bool
}

func NewFailingStorage(failRead, failWrite bool) *FailingStorage {
	return &FailingStorage{MemoryStorage: NewMemoryStorage(), failRead: failRead, failWrite: failWrite}
}

// SetFailWrite toggles write failures.
func (f *FailingStorage) SetFailWrite(fail bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failWrite = fail
}

func (f *FailingStorage) Len(key string) (int, bool, error) {
	f.mu.Lock()
	fail := f.failRead
	f.mu.Unlock()
	if fail {
		return 0, false, ErrInjected
	}
	return f.MemoryStorage.Len(key)
}

func (f *FailingStorage) GetRaw(key string, buf []byte) ([]byte, bool, error) {
	f.mu.Lock()
	fail := f.failRead
	f.mu.Unlock()
	if fail {
		return nil, false, ErrInjected
	}
	return f.MemoryStorage.GetRaw(key, buf)
}

func (f *FailingStorage) PutRaw(key string, data []byte) error {
	f.mu.Lock()
	fail := f.failWrite
	f.mu.Unlock()
	if fail {
		return ErrInjected
	}
	return f.MemoryStorage.PutRaw(key, data)
}

// RecordingSink is a [sinks.PixelSink] that keeps every flushed frame.
type RecordingSink struct {
	mu       sync.Mutex
	length   int
	pending  []models.Pixel
	flushed  [][]models.Pixel
	flushErr error
}

func NewRecordingSink(length int) *RecordingSink {
	return &RecordingSink{length: length, pending: make([]models.Pixel, length)}
}

func (r *RecordingSink) SetPixel(index int, c models.Color, brightness uint8, diag sinks.Diagnostics) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if index < 0 || index >= r.length {
		diag.Diagnose("pixel index out of range")
		return
	}
	r.pending[index] = models.Pixel{Color: c, Brightness: brightness}
}

func (r *RecordingSink) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushed = append(r.flushed, append([]models.Pixel(nil), r.pending...))
	return r.flushErr
}

func (r *RecordingSink) Len() int { return r.length }

// SetFlushError makes every following Flush return err after recording the frame.
func (r *RecordingSink) SetFlushError(err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flushErr = err
}

// Frames returns copies of all flushed frames.
func (r *RecordingSink) Frames() [][]models.Pixel {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([][]models.Pixel(nil), r.flushed...)
}

// Last returns the most recently flushed frame.
func (r *RecordingSink) Last() []models.Pixel {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.flushed) == 0 {
		return nil
	}
	return r.flushed[len(r.flushed)-1]
}

// CountingDiagnostics counts reported messages.
type CountingDiagnostics struct {
	mu       sync.Mutex
	Messages []string
}

func (c *CountingDiagnostics) Diagnose(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Messages = append(c.Messages, msg)
}

func (c *CountingDiagnostics) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.Messages)
}

// FWriter always returns an error on Write
type FWriter struct{}

func (f *FWriter) Write(p []byte) (n int, err error) {
	return 0, errors.New("write failed")
}

// MockRoundTripper allows custom HTTP responses for testing
type MockRoundTripper struct {
	response *http.Response
	err      error
}

func NewMockRoundTripper(r *http.Response, e error) *MockRoundTripper {
	return &MockRoundTripper{response: r, err: e}
}

func (m *MockRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return m.response, m.err
}

// FCloser simulates a failure when reading response body
type FCloser struct{}

func (f *FCloser) Read(p []byte) (n int, err error) {
	return 0, errors.New("read failed")
}

func (f *FCloser) Close() error {
	return nil
}

func MustGetwd(t *testing.T) string {
	t.Helper()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("Failed to get working directory: %v", err)
	}
	return wd
}

func MustChdir(t *testing.T, dir string) {
	t.Helper()
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("Failed to change directory to %s: %v", dir, err)
	}
}

func AssertFileExists(t *testing.T, path string) {
	t.Helper()
	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Errorf("File does not exist: %s", path)
	}
}

func MustReadFile(t *testing.T, path string) string {
	t.Helper()
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read file %s: %v", path, err)
	}
	return string(content)
}
