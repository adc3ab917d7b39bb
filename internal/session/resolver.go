package session

import (
	"fmt"

	"github.com/tonhe/spyglass/internal/fleet"
	"github.com/tonhe/spyglass/internal/password"
)

// Resolver produces the hashed secret to connect to a host with. A secret
// already on the record is used as-is; otherwise the password store is
// consulted, and the user is prompted when the store misses or the host is
// known to be PROTECTED (a stored entry was already rejected once).
type Resolver struct {
	store *password.Store
	pres  Presenter
}

// NewResolver creates a Resolver over the store, prompting through pres.
func NewResolver(store *password.Store, pres Presenter) *Resolver {
	return &Resolver{store: store, pres: pres}
}

// Resolve returns the hashed secret for host, or false when the user
// declined and the connection should proceed without credentials. It does
// not mutate the record; the caller stores the result.
func (r *Resolver) Resolve(host *fleet.HostRecord) (string, bool) {
	if secret := host.Password(); secret != "" {
		return secret, true
	}

	clear, ok := r.store.Lookup(host.Name())
	if !ok || host.Status() == fleet.StatusProtected {
		clear, ok = r.pres.PromptInput(fmt.Sprintf("Password needed for %s: ", host.Name()), true)
	}
	if !ok || clear == "" {
		return "", false
	}
	return r.store.Hash(clear), true
}
