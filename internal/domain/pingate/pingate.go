// Package pingate is the lockout state machine guarding withdrawal mutations.
package pingate

import (
	"database/sql"
	"errors"
	"time"

	"github.com/manalab/backend/config"
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/pkg/crypto"
	"github.com/manalab/backend/pkg/errorx"
)

type Gate struct {
	maxAttempts     int
	lockoutDuration time.Duration
	compare         func(hashed, pin string) error
}

func New(cfg config.PinConfigs) Gate {
	return Gate{
		maxAttempts:     cfg.MaxAttempts,
		lockoutDuration: cfg.LockoutDuration,
		compare:         crypto.ComparePin,
	}
}

// WithComparer replaces the hash comparison.
func (g Gate) WithComparer(compare func(hashed, pin string) error) Gate {
	g.compare = compare
	return g
}

// Verify checks pin against the account and updates its lockout fields in memory. The
// returned bool tells whether the account changed and must be persisted, which is also the
// case when the verification fails.
func (g Gate) Verify(a *entity.Account, pin string, now time.Time) (bool, error) {
	if a.LockedUntil.Valid && now.Before(a.LockedUntil.Time) {
		return false, errorx.New(errorx.Locked,
			"Too many incorrect PIN attempts, try again after %s", a.LockedUntil.Time.Format(time.RFC3339))
	}

	if a.PinHash == "" {
		return false, errorx.New(errorx.PinNotSet, "PIN has not been set")
	}

	changed := false
	if a.LockedUntil.Valid {
		// The previous lock has run out.
		a.LockedUntil = sql.NullTime{}
		a.FailedAttempts = 0
		changed = true
	}

	err := g.compare(a.PinHash, pin)
	if err == nil {
		if a.FailedAttempts != 0 {
			a.FailedAttempts = 0
			changed = true
		}

		return changed, nil
	}

	if !errors.Is(err, crypto.ErrMismatchedPin) {
		return changed, err
	}

	a.FailedAttempts++
	if a.FailedAttempts >= g.maxAttempts {
		a.FailedAttempts = g.maxAttempts
		a.LockedUntil = sql.NullTime{Time: now.Add(g.lockoutDuration), Valid: true}
		return true, errorx.New(errorx.Locked,
			"Too many incorrect PIN attempts, try again after %s", a.LockedUntil.Time.Format(time.RFC3339))
	}

	return true, errorx.New(errorx.IncorrectPin,
		"Incorrect PIN, %d attempts left", g.maxAttempts-a.FailedAttempts)
}

// ValidateFormat checks a new PIN before hashing it.
func ValidateFormat(cfg config.PinConfigs, pin string) error {
	if len(pin) < cfg.MinLength || len(pin) > cfg.MaxLength {
		return errorx.New(errorx.BadRequest, "PIN must have from %d to %d digits", cfg.MinLength, cfg.MaxLength)
	}

	for _, c := range pin {
		if c < '0' || c > '9' {
			return errorx.New(errorx.BadRequest, "PIN must contain only digits")
		}
	}

	return nil
}
