package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/evtb/evtb/pkg/domain"
)

func TestFileStoreRoundTrip(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "state")
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error: %v", err)
	}

	if _, ok, err := s.Get(AuthKey); err != nil || ok {
		t.Fatalf("Get on empty store = ok %v, err %v; want missing", ok, err)
	}

	if err := s.Set(AuthKey, `{"token":"abc"}`); err != nil {
		t.Fatalf("Set() error: %v", err)
	}
	got, ok, err := s.Get(AuthKey)
	if err != nil || !ok {
		t.Fatalf("Get() = ok %v, err %v", ok, err)
	}
	if got != `{"token":"abc"}` {
		t.Errorf("Get() = %q", got)
	}

	info, err := os.Stat(filepath.Join(dir, AuthKey))
	if err != nil {
		t.Fatal(err)
	}
	if perm := info.Mode().Perm(); perm != 0600 {
		t.Errorf("file mode = %o, want 600", perm)
	}

	if err := s.Remove(AuthKey); err != nil {
		t.Fatalf("Remove() error: %v", err)
	}
	if _, ok, _ := s.Get(AuthKey); ok {
		t.Error("key still present after Remove")
	}
	if err := s.Remove(AuthKey); err != nil {
		t.Errorf("Remove of missing key error: %v", err)
	}
}

func TestFileStoreRejectsPathKeys(t *testing.T) {
	s, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("../escape", "x"); err == nil {
		t.Error("expected error for key with path separators")
	}
}

func TestFileStoreLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatal(err)
	}
	for i := 0; i < 3; i++ {
		if err := s.Set(DemoModeKey, "true"); err != nil {
			t.Fatal(err)
		}
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("dir has %d entries, want 1", len(entries))
	}
}

func TestAuthHelpers(t *testing.T) {
	s := NewMemoryStore()

	rec, err := LoadAuth(s)
	if err != nil || rec != nil {
		t.Fatalf("LoadAuth on empty = %v, %v; want nil, nil", rec, err)
	}

	want := &domain.AuthRecord{Token: "tok", User: &domain.User{ID: 3, Email: "a@b.c"}}
	if err := SaveAuth(s, want); err != nil {
		t.Fatalf("SaveAuth() error: %v", err)
	}
	rec, err = LoadAuth(s)
	if err != nil {
		t.Fatalf("LoadAuth() error: %v", err)
	}
	if rec.Token != "tok" || rec.User.Email != "a@b.c" || rec.Profile != nil {
		t.Errorf("LoadAuth() = %+v", rec)
	}

	if err := ClearAuth(s); err != nil {
		t.Fatal(err)
	}
	if rec, _ := LoadAuth(s); rec != nil {
		t.Error("record still present after ClearAuth")
	}
}

func TestLoadAuthCorrupt(t *testing.T) {
	s := NewMemoryStore()
	s.Set(AuthKey, "{not json") //nolint:errcheck
	if _, err := LoadAuth(s); !errors.Is(err, ErrCorrupt) {
		t.Errorf("LoadAuth() error = %v, want ErrCorrupt", err)
	}
}

func TestDemoMode(t *testing.T) {
	s := NewMemoryStore()
	if DemoMode(s) {
		t.Error("demo mode should default to off")
	}
	if err := SetDemoMode(s, true); err != nil {
		t.Fatal(err)
	}
	if !DemoMode(s) {
		t.Error("demo mode should be on")
	}
	if v, _, _ := s.Get(DemoModeKey); v != "true" {
		t.Errorf("stored flag = %q, want %q", v, "true")
	}
	SetDemoMode(s, false) //nolint:errcheck
	if DemoMode(s) {
		t.Error("demo mode should be off")
	}
}
