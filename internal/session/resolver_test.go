package session

import (
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/tonhe/spyglass/internal/fleet"
	"github.com/tonhe/spyglass/internal/password"
)

// fakePresenter scripts presenter behavior for router and resolver tests.
type fakePresenter struct {
	mu         sync.Mutex
	selected   *int
	end        bool
	promptResp string
	promptOK   bool
	prompted   int
	messages   []string
	rendered   int
	cleared    int
}

func (f *fakePresenter) Render(hosts []fleet.HostView) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.rendered++
}

func (f *fakePresenter) ShowMessage(text string, hint time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.messages = append(f.messages, text)
}

func (f *fakePresenter) PromptInput(label string, mask bool) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.prompted++
	if !mask {
		panic("password prompts must be masked")
	}
	return f.promptResp, f.promptOK
}

func (f *fakePresenter) SelectedIndex() (int, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.selected == nil {
		return 0, false
	}
	return *f.selected, true
}

func (f *fakePresenter) ClearSelection() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selected = nil
	f.cleared++
}

func (f *fakePresenter) EndRequested() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.end
}

func newTestStore(t *testing.T, passwords map[string]string) *password.Store {
	t.Helper()
	salt, err := password.LoadOrCreateSalt(filepath.Join(t.TempDir(), "salt"))
	if err != nil {
		t.Fatal(err)
	}
	return password.NewStore(passwords, salt)
}

func TestResolveExistingSecret(t *testing.T) {
	pres := &fakePresenter{}
	r := NewResolver(newTestStore(t, nil), pres)

	host := fleet.NewHostRecord("srv1", "10.0.0.5", 61209, "user")
	host.SetPassword("ALREADYHASHED")

	secret, ok := r.Resolve(host)
	if !ok || secret != "ALREADYHASHED" {
		t.Errorf("Resolve() = %q, %v; want existing secret", secret, ok)
	}
	if pres.prompted != 0 {
		t.Error("existing secret must not prompt")
	}
}

func TestResolveFromStore(t *testing.T) {
	pres := &fakePresenter{}
	store := newTestStore(t, map[string]string{"srv1": "letmein"})
	r := NewResolver(store, pres)

	host := fleet.NewHostRecord("srv1", "10.0.0.5", 61209, "user")
	secret, ok := r.Resolve(host)
	if !ok || secret != store.Hash("letmein") {
		t.Errorf("Resolve() = %q, %v; want hash of store entry", secret, ok)
	}
	if pres.prompted != 0 {
		t.Error("store hit must not prompt")
	}
}

func TestResolvePromptsOnStoreMiss(t *testing.T) {
	pres := &fakePresenter{promptResp: "secret", promptOK: true}
	store := newTestStore(t, nil)
	r := NewResolver(store, pres)

	host := fleet.NewHostRecord("srv1", "10.0.0.5", 61209, "user")
	secret, ok := r.Resolve(host)
	if !ok || secret != store.Hash("secret") {
		t.Errorf("Resolve() = %q, %v; want hash of prompted input", secret, ok)
	}
	if pres.prompted != 1 {
		t.Errorf("expected 1 prompt, got %d", pres.prompted)
	}
}

func TestResolveRepromptsWhenProtected(t *testing.T) {
	pres := &fakePresenter{promptResp: "fresh", promptOK: true}
	store := newTestStore(t, map[string]string{"srv1": "stale"})
	r := NewResolver(store, pres)

	// Status PROTECTED means the stored entry was already rejected once, so
	// the user is prompted even though the store has an entry.
	host := fleet.NewHostRecord("srv1", "10.0.0.5", 61209, "user")
	host.SetStatus(fleet.StatusProtected)

	secret, ok := r.Resolve(host)
	if !ok || secret != store.Hash("fresh") {
		t.Errorf("Resolve() = %q; want hash of fresh input", secret)
	}
	if pres.prompted != 1 {
		t.Errorf("expected re-prompt for PROTECTED host, prompts = %d", pres.prompted)
	}
}

func TestResolveDeclined(t *testing.T) {
	pres := &fakePresenter{promptOK: false}
	r := NewResolver(newTestStore(t, nil), pres)

	host := fleet.NewHostRecord("srv1", "10.0.0.5", 61209, "user")
	secret, ok := r.Resolve(host)
	if ok || secret != "" {
		t.Errorf("declined prompt must leave the secret unset, got %q, %v", secret, ok)
	}
}
