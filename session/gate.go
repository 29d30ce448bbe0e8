// Package session guards the admin panel behind a credential check and keeps
// the resulting flag in a kv.Store so a reload does not force a new login.
//
// The gate has two states. Anonymous moves to Authenticated only through a
// successful AttemptLogin; Authenticated moves back only through Logout.
// RestoreSession may enter either state directly from persisted data.
// There is no expiry: a restored session is valid until Logout.
package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/eringen/folio/kv"
)

// AuthKey is the kv key holding the persisted authentication flag.
const AuthKey = "isAuthenticated"

// ErrPersistence wraps a failed write of the authentication flag. The
// in-memory state has already changed when it is returned.
var ErrPersistence = errors.New("session state not persisted")

// State is the gate's authentication state.
type State int

const (
	Anonymous State = iota
	Authenticated
)

func (s State) String() string {
	if s == Authenticated {
		return "authenticated"
	}
	return "anonymous"
}

// Gate is not safe for concurrent use; build one per request or per user.
type Gate struct {
	store    kv.Store
	verifier Verifier
	state    State
}

// NewGate returns an Anonymous gate. Call RestoreSession to pick up a
// previously persisted login.
func NewGate(store kv.Store, verifier Verifier) *Gate {
	return &Gate{store: store, verifier: verifier}
}

// State reports the current state.
func (g *Gate) State() State { return g.state }

// IsAuthenticated reports whether the gate is in the Authenticated state.
func (g *Gate) IsAuthenticated() bool { return g.state == Authenticated }

// AttemptLogin checks the credentials. On failure the state is left as it
// was and ErrInvalidCredentials is returned. On success the gate becomes
// Authenticated; if the flag cannot be persisted the error wraps
// ErrPersistence but the login still stands.
func (g *Gate) AttemptLogin(ctx context.Context, username, password string) error {
	if err := g.verifier.Verify(ctx, username, password); err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			return ErrInvalidCredentials
		}
		return fmt.Errorf("verify credentials: %w", err)
	}
	g.state = Authenticated
	if err := g.store.Set(ctx, AuthKey, "true"); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// Logout clears the persisted flag and returns to Anonymous. The in-memory
// state is reset even when the delete fails.
func (g *Gate) Logout(ctx context.Context) error {
	g.state = Anonymous
	if err := g.store.Delete(ctx, AuthKey); err != nil {
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}

// RestoreSession initializes the state from the persisted flag. A missing
// or unreadable flag means Anonymous.
func (g *Gate) RestoreSession(ctx context.Context) error {
	v, ok, err := g.store.Get(ctx, AuthKey)
	if err != nil {
		g.state = Anonymous
		return fmt.Errorf("restore session: %w", err)
	}
	if ok && v == "true" {
		g.state = Authenticated
	} else {
		g.state = Anonymous
	}
	return nil
}
