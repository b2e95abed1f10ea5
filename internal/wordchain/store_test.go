package wordchain

import (
	"testing"
	"unicode/utf8"
)

func TestRegistryEnsureDefaults(t *testing.T) {
	r := NewUserRegistry()
	u := r.Ensure("1234567890", "")
	if u.DisplayName != "بازیکن 12345678" {
		t.Fatalf("default display name = %q", u.DisplayName)
	}
	// A later Ensure with a real name upgrades the record.
	u = r.Ensure("1234567890", "آرش")
	if u.DisplayName != "آرش" {
		t.Fatalf("display name not updated: %q", u.DisplayName)
	}
	// Ensure never resets the score.
	r.SetScore("1234567890", 7)
	if u := r.Ensure("1234567890", "آرش"); u.Score != 7 {
		t.Fatalf("Ensure clobbered score: %d", u.Score)
	}
}

func TestRegistryDefaultNameTruncatesByRunes(t *testing.T) {
	r := NewUserRegistry()
	u := r.Ensure("بازیکن‌شمارهٔ‌نود", "")
	if !utf8.ValidString(u.DisplayName) {
		t.Fatalf("display name is not valid UTF-8: %q", u.DisplayName)
	}
	if want := "بازیکن " + "بازیکن‌ش"; u.DisplayName != want {
		t.Fatalf("display name = %q, want %q", u.DisplayName, want)
	}
}

func TestRegistrySnapshotOrderAndCopies(t *testing.T) {
	r := NewUserRegistry()
	r.Ensure("a", "الف")
	r.Ensure("b", "ب")
	r.SetScore("b", 3)

	snap := r.Snapshot([]string{"b", "a", "missing"})
	if len(snap) != 2 || snap[0].ID != "b" || snap[1].ID != "a" {
		t.Fatalf("snapshot order wrong: %+v", snap)
	}
	snap[0].Score = 99
	if r.Get("b").Score != 3 {
		t.Fatal("snapshot must return copies")
	}
}

func TestSessionStoreReusesEntry(t *testing.T) {
	s := NewSessionStore()
	a := s.get("chat")
	b := s.get("chat")
	if a != b {
		t.Fatal("same session id must map to one entry")
	}
	if s.get("other") == a {
		t.Fatal("distinct sessions must not share entries")
	}
}
