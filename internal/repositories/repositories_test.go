package repositories

import (
	"bytes"
	"database/sql"
	"errors"
	"strings"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/desertthunder/stripd/internal/models"
	"github.com/desertthunder/stripd/internal/registry"
	"github.com/desertthunder/stripd/internal/shared"
	tu "github.com/desertthunder/stripd/internal/testing"
)

// setupTestDB creates an in-memory SQLite database with migrations applied
func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:"})
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBlobRepository(t *testing.T) {
	t.Run("missing key", func(t *testing.T) {
		repo := NewBlobRepository(setupTestDB(t))

		n, ok, err := repo.Len("nope")
		if err != nil || ok || n != 0 {
			t.Errorf("Len() = %d, %v, %v; want 0, false, nil", n, ok, err)
		}
		data, ok, err := repo.GetRaw("nope", nil)
		if err != nil || ok || data != nil {
			t.Errorf("GetRaw() = %q, %v, %v", data, ok, err)
		}
	})

	t.Run("put then get", func(t *testing.T) {
		repo := NewBlobRepository(setupTestDB(t))

		if err := repo.PutRaw("k", []byte("hello")); err != nil {
			t.Fatalf("PutRaw() = %v", err)
		}
		n, ok, err := repo.Len("k")
		if err != nil || !ok || n != 5 {
			t.Errorf("Len() = %d, %v, %v; want 5, true, nil", n, ok, err)
		}

		buf := make([]byte, 0, 16)
		data, ok, err := repo.GetRaw("k", buf)
		if err != nil || !ok {
			t.Fatalf("GetRaw() = %v, %v", ok, err)
		}
		if string(data) != "hello" {
			t.Errorf("GetRaw() = %q", data)
		}
		if &data[0] != &buf[:1][0] {
			t.Error("GetRaw should reuse a large enough buffer")
		}
	})

	t.Run("put overwrites whole value", func(t *testing.T) {
		repo := NewBlobRepository(setupTestDB(t))

		_ = repo.PutRaw("k", []byte("a much longer value"))
		if err := repo.PutRaw("k", []byte("short")); err != nil {
			t.Fatalf("PutRaw() = %v", err)
		}
		data, _, _ := repo.GetRaw("k", nil)
		if string(data) != "short" {
			t.Errorf("GetRaw() = %q, want short", data)
		}
		if _, ok, err := repo.UpdatedAt("k"); !ok || err != nil {
			t.Errorf("UpdatedAt() = %v, %v", ok, err)
		}
	})

	t.Run("empty value is stored", func(t *testing.T) {
		repo := NewBlobRepository(setupTestDB(t))
		if err := repo.PutRaw("k", nil); err != nil {
			t.Fatalf("PutRaw(nil) = %v", err)
		}
		n, ok, _ := repo.Len("k")
		if !ok || n != 0 {
			t.Errorf("Len() = %d, %v", n, ok)
		}
	})

	t.Run("closed database wraps ErrStorage", func(t *testing.T) {
		db := setupTestDB(t)
		repo := NewBlobRepository(db)
		db.Close()

		if err := repo.PutRaw("k", []byte("x")); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("PutRaw() = %v, want ErrStorage", err)
		}
		if _, _, err := repo.Len("k"); !errors.Is(err, shared.ErrStorage) {
			t.Errorf("Len() = %v, want ErrStorage", err)
		}
	})
}

func sampleSnapshot() registry.Snapshot {
	return registry.NewSnapshot(
		registry.Entry{ID: "left", Segment: models.NewSegment(10, true, models.RGB(1, 2, 3), models.RGB(4, 5, 6), 900)},
		registry.Entry{ID: "right", Segment: models.NewSegment(20, false, models.RGB(7, 8, 9), models.RGB(10, 11, 12), 1200)},
	)
}

func TestSegmentStore(t *testing.T) {
	t.Run("load before any save", func(t *testing.T) {
		store := NewSegmentStore(NewBlobRepository(setupTestDB(t)), nil)
		_, ok, err := store.Load()
		if ok || err != nil {
			t.Errorf("Load() = %v, %v; want false, nil", ok, err)
		}
	})

	t.Run("save then load round trips", func(t *testing.T) {
		store := NewSegmentStore(NewBlobRepository(setupTestDB(t)), nil)
		want := sampleSnapshot()

		if err := store.Save(want); err != nil {
			t.Fatalf("Save() = %v", err)
		}
		got, ok, err := store.Load()
		if err != nil || !ok {
			t.Fatalf("Load() = %v, %v", ok, err)
		}
		if !got.Equal(want) {
			t.Errorf("Load() = %v, want %v", got.Entries(), want.Entries())
		}
	})

	t.Run("save overwrites", func(t *testing.T) {
		storage := tu.NewMemoryStorage()
		store := NewSegmentStore(storage, nil)
		_ = store.Save(sampleSnapshot())
		_ = store.Save(registry.DefaultSnapshot())

		got, _, _ := store.Load()
		if !got.Equal(registry.DefaultSnapshot()) {
			t.Errorf("second save did not replace the first: %v", got.IDs())
		}
		if storage.Writes() != 2 {
			t.Errorf("Writes() = %d", storage.Writes())
		}
	})

	t.Run("corrupt blob", func(t *testing.T) {
		storage := tu.NewMemoryStorage()
		_ = storage.PutRaw(SegmentsKey, []byte(`{"a":{"length":`))
		store := NewSegmentStore(storage, nil)

		_, ok, err := store.Load()
		if ok || !errors.Is(err, shared.ErrCorruptState) {
			t.Errorf("Load() = %v, %v; want ErrCorruptState", ok, err)
		}
		if !errors.Is(err, shared.ErrInvalidFormat) {
			t.Errorf("corrupt state should keep the format cause: %v", err)
		}
	})

	t.Run("save failure wraps ErrPersist", func(t *testing.T) {
		store := NewSegmentStore(tu.NewFailingStorage(false, true), nil)
		err := store.Save(sampleSnapshot())
		if !errors.Is(err, shared.ErrPersist) || !errors.Is(err, tu.ErrInjected) {
			t.Errorf("Save() = %v, want ErrPersist wrapping the cause", err)
		}
	})
}

func TestSegmentStoreRestore(t *testing.T) {
	tests := []struct {
		name    string
		storage func() Storage
		want    registry.Snapshot
		logged  string
	}{
		{
			name:    "nothing saved",
			storage: func() Storage { return tu.NewMemoryStorage() },
			want:    registry.DefaultSnapshot(),
			logged:  "no persisted segments",
		},
		{
			name: "persisted",
			storage: func() Storage {
				s := tu.NewMemoryStorage()
				data, _ := registry.Marshal(sampleSnapshot())
				_ = s.PutRaw(SegmentsKey, data)
				return s
			},
			want:   sampleSnapshot(),
			logged: "restored persisted segments",
		},
		{
			name: "corrupt",
			storage: func() Storage {
				s := tu.NewMemoryStorage()
				_ = s.PutRaw(SegmentsKey, []byte("not json"))
				return s
			},
			want:   registry.DefaultSnapshot(),
			logged: "unreadable",
		},
		{
			name: "invalid segment",
			storage: func() Storage {
				s := tu.NewMemoryStorage()
				_ = s.PutRaw(SegmentsKey, []byte(`{"a":{"length":0,"start":"#000000","end":"#000000","period":5}}`))
				return s
			},
			want:   registry.DefaultSnapshot(),
			logged: "unreadable",
		},
		{
			name:    "read failure",
			storage: func() Storage { return tu.NewFailingStorage(true, false) },
			want:    registry.DefaultSnapshot(),
			logged:  "failed to load persisted segments",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			store := NewSegmentStore(tt.storage(), log.New(&buf))

			got := store.Restore()
			if !got.Equal(tt.want) {
				t.Errorf("Restore() = %v, want %v", got.IDs(), tt.want.IDs())
			}
			if !strings.Contains(buf.String(), tt.logged) {
				t.Errorf("expected log containing %q, got %q", tt.logged, buf.String())
			}
		})
	}

	t.Run("logs when the configuration was saved", func(t *testing.T) {
		repo := NewBlobRepository(setupTestDB(t))
		if err := NewSegmentStore(repo, nil).Save(sampleSnapshot()); err != nil {
			t.Fatalf("Save: %v", err)
		}

		var buf bytes.Buffer
		got := NewSegmentStore(repo, log.New(&buf)).Restore()
		if !got.Equal(sampleSnapshot()) {
			t.Errorf("Restore() = %v, want %v", got.IDs(), sampleSnapshot().IDs())
		}
		if !strings.Contains(buf.String(), "saved_at") {
			t.Errorf("expected saved_at in %q", buf.String())
		}
	})

}
