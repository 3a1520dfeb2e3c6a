package storage

import (
	"path/filepath"
	"testing"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := New(filepath.Join(t.TempDir(), "users.json"))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestUserRoundTrip(t *testing.T) {
	s := newTestStorage(t)

	if _, ok, err := s.GetUser("u1"); ok || err != nil {
		t.Fatalf("GetUser() before create = ok=%v err=%v, want absent", ok, err)
	}

	want := UserRecord{Language: "en-US", Voice: "en-US-Wavenet-A", TTSEnabled: true}
	if err := s.SetUser("u1", want); err != nil {
		t.Fatalf("SetUser() error = %v", err)
	}

	got, ok, err := s.GetUser("u1")
	if err != nil || !ok {
		t.Fatalf("GetUser() = ok=%v err=%v", ok, err)
	}
	if got != want {
		t.Fatalf("GetUser() = %+v, want %+v", got, want)
	}
}

func TestTTSEnabled(t *testing.T) {
	s := newTestStorage(t)

	if s.TTSEnabled("unknown") {
		t.Fatalf("TTSEnabled() for unknown user = true, want false")
	}

	s.SetUser("u1", UserRecord{Voice: "en-US-Wavenet-A", TTSEnabled: true})
	s.SetUser("u2", UserRecord{Voice: "en-US-Wavenet-B", TTSEnabled: false})

	if !s.TTSEnabled("u1") {
		t.Fatalf("TTSEnabled(u1) = false, want true")
	}
	if s.TTSEnabled("u2") {
		t.Fatalf("TTSEnabled(u2) = true, want false")
	}
}

func TestRecordsSurviveReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "users.json")

	s, err := New(path)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	s.SetUser("u1", UserRecord{Language: "de-DE", Voice: "de-DE-Wavenet-D", TTSEnabled: true})
	if err := s.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	reopened, err := New(path)
	if err != nil {
		t.Fatalf("New() on existing file error = %v", err)
	}
	defer reopened.Close()

	got, ok, err := reopened.GetUser("u1")
	if err != nil || !ok {
		t.Fatalf("GetUser() after reopen = ok=%v err=%v", ok, err)
	}
	if got.Voice != "de-DE-Wavenet-D" || !got.TTSEnabled {
		t.Fatalf("GetUser() after reopen = %+v", got)
	}
}
