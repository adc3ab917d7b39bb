package password

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	salt, err := LoadOrCreateSalt(filepath.Join(t.TempDir(), "secret.salt"))
	if err != nil {
		t.Fatalf("LoadOrCreateSalt() error: %v", err)
	}
	return NewStore(map[string]string{"srv2": "letmein"}, salt)
}

func TestLookup(t *testing.T) {
	store := newTestStore(t)
	pw, ok := store.Lookup("srv2")
	if !ok || pw != "letmein" {
		t.Errorf("Lookup(srv2) = %q, %v; want letmein, true", pw, ok)
	}
	if _, ok := store.Lookup("srv1"); ok {
		t.Error("Lookup(srv1) should miss")
	}
}

func TestHashDeterministic(t *testing.T) {
	store := newTestStore(t)
	a := store.Hash("secret")
	b := store.Hash("secret")
	if a != b {
		t.Errorf("same cleartext hashed differently: %q vs %q", a, b)
	}
	if a == "" || a == "secret" {
		t.Errorf("hash looks wrong: %q", a)
	}
	if store.Hash("other") == a {
		t.Error("different cleartexts produced the same hash")
	}
}

func TestSaltPersists(t *testing.T) {
	path := filepath.Join(t.TempDir(), "secret.salt")
	first, err := LoadOrCreateSalt(path)
	if err != nil {
		t.Fatalf("LoadOrCreateSalt() error: %v", err)
	}
	second, err := LoadOrCreateSalt(path)
	if err != nil {
		t.Fatalf("LoadOrCreateSalt() second call error: %v", err)
	}
	if string(first) != string(second) {
		t.Error("salt changed between loads")
	}

	// The hash, and with it any rebuilt URI, must be stable across restarts.
	h1 := NewStore(nil, first).Hash("secret")
	h2 := NewStore(nil, second).Hash("secret")
	if h1 != h2 {
		t.Errorf("hash not stable across salt reloads: %q vs %q", h1, h2)
	}
}
