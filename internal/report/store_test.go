package report

import (
	"errors"
	"reflect"
	"testing"

	"github.com/substantialcattle5/mde/testutil"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := testutil.TempDir(t, "store-test")
	store := NewFileStore()
	path := SidecarPath(dir)

	want := sampleReport()
	if err := store.Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !store.Exists(path) {
		t.Fatal("sidecar should exist after save")
	}

	got, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\ngot  %+v\nwant %+v", got, want)
	}
}

func TestFileStoreLoadErrors(t *testing.T) {
	dir := testutil.TempDir(t, "store-error-test")
	store := NewFileStore()

	t.Run("absent sidecar", func(t *testing.T) {
		_, err := store.Load(SidecarPath(dir))
		if !errors.Is(err, ErrNotFound) {
			t.Errorf("got %v, want ErrNotFound", err)
		}
	})

	t.Run("malformed sidecar", func(t *testing.T) {
		path := testutil.CreateTestFile(t, dir, "malformed.json", "{not json")
		_, err := store.Load(path)
		if !errors.Is(err, ErrMalformed) {
			t.Errorf("got %v, want ErrMalformed", err)
		}
	})

	t.Run("newer schema version", func(t *testing.T) {
		path := testutil.CreateTestFile(t, dir, "future.json", `{"version": 99, "groups": []}`)
		_, err := store.Load(path)
		if !errors.Is(err, ErrVersion) {
			t.Errorf("got %v, want ErrVersion", err)
		}
	})

	t.Run("missing version tag", func(t *testing.T) {
		path := testutil.CreateTestFile(t, dir, "untagged.json", `{"groups": []}`)
		_, err := store.Load(path)
		if !errors.Is(err, ErrVersion) {
			t.Errorf("got %v, want ErrVersion", err)
		}
	})
}

func TestFileStoreLoadRejectsInvalidGroups(t *testing.T) {
	store := NewFileStore()

	// A group without exactly one original would put the keeper itself on
	// the deletion plan, so Load must refuse it outright.
	tests := []struct {
		name   string
		mutate func(*Report)
	}{
		{"no original", func(r *Report) { r.Groups[0].Members[0].Original = false }},
		{"two originals", func(r *Report) { r.Groups[0].Members[1].Original = true }},
		{"single member", func(r *Report) { r.Groups[0].Members = r.Groups[0].Members[:1] }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rpt := sampleReport()
			tt.mutate(rpt)

			path := SidecarPath(testutil.TempDir(t, "store-invalid-test"))
			if err := store.Save(path, rpt); err != nil {
				t.Fatalf("Save: %v", err)
			}
			if _, err := store.Load(path); !errors.Is(err, ErrMalformed) {
				t.Errorf("got %v, want ErrMalformed", err)
			}
		})
	}
}

func TestFileStoreDelete(t *testing.T) {
	dir := testutil.TempDir(t, "store-delete-test")
	store := NewFileStore()
	path := SidecarPath(dir)

	if err := store.Save(path, sampleReport()); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Delete(path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Exists(path) {
		t.Error("sidecar should be gone after delete")
	}

	// Deleting an absent sidecar is not an error.
	if err := store.Delete(path); err != nil {
		t.Errorf("second delete: %v", err)
	}
}

func TestMemStore(t *testing.T) {
	store := NewMemStore()
	path := "/virtual/duplicates.json"

	if _, err := store.Load(path); !errors.Is(err, ErrNotFound) {
		t.Errorf("empty store load: got %v, want ErrNotFound", err)
	}

	want := sampleReport()
	if err := store.Save(path, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !store.Exists(path) {
		t.Error("report should exist after save")
	}

	got, err := store.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch: got %+v, want %+v", got, want)
	}

	if err := store.Delete(path); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if store.Exists(path) {
		t.Error("report should be gone after delete")
	}
}
