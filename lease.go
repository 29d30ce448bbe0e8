package folio

import (
	"context"
	"time"

	"github.com/eringen/folio/kv"
)

// LeaseKey is refreshed in the store while a server runs. The server's
// in-memory project list overwrites the stored one on every save, so
// offline tools check it before writing.
const LeaseKey = "server.lease"

const (
	leaseRefresh = 30 * time.Second
	leaseTTL     = 3 * leaseRefresh
)

// holdLease marks the store as held by this server until ctx is done.
func (a *App) holdLease(ctx context.Context) {
	a.renewLease(ctx)
	done := make(chan struct{})
	a.leaseDone = done
	go func() {
		defer close(done)
		t := time.NewTicker(leaseRefresh)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-t.C:
				a.renewLease(ctx)
			}
		}
	}()
}

func (a *App) renewLease(ctx context.Context) {
	if err := a.Store.Set(ctx, LeaseKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		a.Logger.Warn("server lease not written", "error", err)
	}
}

// releaseLease waits for the refresh loop to stop and removes the lease.
func (a *App) releaseLease() {
	if a.leaseDone == nil {
		return
	}
	<-a.leaseDone
	a.leaseDone = nil
	if err := a.Store.Delete(context.Background(), LeaseKey); err != nil {
		a.Logger.Warn("server lease not removed", "error", err)
	}
}

// ServerActive reports whether a server refreshed its lease on store
// recently. A lease left behind by a crashed server expires after a few
// missed refreshes.
func ServerActive(ctx context.Context, store kv.Store) (bool, error) {
	v, ok, err := store.Get(ctx, LeaseKey)
	if err != nil || !ok {
		return false, err
	}
	at, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return false, nil
	}
	return time.Since(at) < leaseTTL, nil
}
