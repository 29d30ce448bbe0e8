package session

import (
	"context"
	"crypto/subtle"
	"errors"
)

// ErrInvalidCredentials is the only failure a Verifier reports for a bad
// username/password pair. It never says which of the two was wrong.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Verifier checks a username/password pair. A real identity provider can be
// plugged in here without touching the Gate.
type Verifier interface {
	Verify(ctx context.Context, username, password string) error
}

// StaticVerifier accepts exactly one fixed credential pair.
type StaticVerifier struct {
	Username string
	Password string
}

// Verify compares both fields in constant time and always evaluates both.
func (v StaticVerifier) Verify(_ context.Context, username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(v.Username))
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(v.Password))
	if userOK&passOK != 1 || v.Password == "" {
		return ErrInvalidCredentials
	}
	return nil
}

// VerifierFunc adapts a function to the Verifier interface.
type VerifierFunc func(ctx context.Context, username, password string) error

func (f VerifierFunc) Verify(ctx context.Context, username, password string) error {
	return f(ctx, username, password)
}
