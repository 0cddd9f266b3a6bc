package common

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"github.com/manalab/backend/internal/domain/pingate"
	"github.com/manalab/backend/internal/repository"
	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// PinVerifier runs the PIN gate against the stored account and persists the attempt counters
// in their own transaction, so a failed attempt is recorded even when the request that asked
// for the PIN is rejected.
type PinVerifier struct {
	accountRepo repository.AccountRepository
	gate        pingate.Gate
	clock       clockwork.Clock
}

func NewPinVerifier(
	accountRepo repository.AccountRepository, gate pingate.Gate, clock clockwork.Clock,
) *PinVerifier {
	return &PinVerifier{accountRepo: accountRepo, gate: gate, clock: clock}
}

func (v *PinVerifier) Verify(ctx context.Context, userID, pin string) error {
	_, err := RetryOnConflict(ctx, "verify_pin", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, v.verify(ctx, userID, pin)
	})

	PromCounters[PinVerificationTotal].WithLabelValues(ResultCode(err)).Inc()
	return err
}

func (v *PinVerifier) verify(ctx context.Context, userID, pin string) error {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	account, err := v.accountRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.PinNotSet, "PIN has not been set")
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return errorx.Unknown
	}

	changed, verifyErr := v.gate.Verify(account, pin, v.clock.Now())
	if changed {
		if err := v.accountRepo.UpdateWithVersion(ctx, account); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errorx.New(errorx.Conflict, "Account was changed by another request, please try again")
			}

			xcontext.Logger(ctx).Errorf("Cannot update pin attempts: %v", err)
			return errorx.Unknown
		}

		if _, err := xcontext.WithCommitDBTransaction(ctx); err != nil {
			xcontext.Logger(ctx).Errorf("Cannot commit pin attempts: %v", err)
			return errorx.Unknown
		}
	}

	var errx errorx.Error
	if verifyErr != nil && !errors.As(verifyErr, &errx) {
		xcontext.Logger(ctx).Errorf("Cannot compare pin: %v", verifyErr)
		return errorx.Unknown
	}

	return verifyErr
}
