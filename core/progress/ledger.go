// Package progress maintains the per-user created/submitted/marked counters.
//
// Increments are best-effort: they run after the primary write they account for, and a failed
// increment leaves the counter behind until Reconcile repairs it.
package progress

import (
	"context"
	"fmt"

	"github.com/pkg/errors"

	"github.com/studysphere/backend/core"
	"github.com/studysphere/backend/core/user"
)

type (
	// Store is the part of user.Repository the Ledger writes through.
	Store interface {
		IncrementProgress(ctx context.Context, email string, counter user.Counter) (bool, error)
	}

	Ledger struct {
		store  Store
		logger core.Logger
	}
)

func NewLedger(store Store, logger core.Logger) *Ledger {
	return &Ledger{store: store, logger: logger}
}

func (l *Ledger) IncrementCreated(ctx context.Context, email string) error {
	return l.increment(ctx, email, user.CounterCreated)
}

func (l *Ledger) IncrementSubmitted(ctx context.Context, email string) error {
	return l.increment(ctx, email, user.CounterSubmitted)
}

func (l *Ledger) IncrementMarked(ctx context.Context, email string) error {
	return l.increment(ctx, email, user.CounterMarked)
}

// increment drops the update when no user is registered under email.
func (l *Ledger) increment(ctx context.Context, email string, counter user.Counter) error {
	email = core.CleanEmail(email)
	matched, err := l.store.IncrementProgress(ctx, email, counter)
	if err != nil {
		return errors.Wrapf(err, "incrementing %s counter", counter)
	}
	if !matched {
		l.logger.Debug(fmt.Sprintf("progress: no user %q, %s increment dropped", email, counter))
	}
	return nil
}
