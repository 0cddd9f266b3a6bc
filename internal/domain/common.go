package domain

import (
	"context"
	"errors"

	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/internal/repository"
	"github.com/manalab/backend/pkg/enum"
	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/money"
	"github.com/manalab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

// parseAmount parses a positive decimal amount into minor units.
func parseAmount(field, s string) (int64, error) {
	amount, err := money.Parse(s)
	if err != nil {
		return 0, errorx.New(errorx.BadRequest, "Invalid %s: %v", field, err)
	}

	if amount <= 0 {
		return 0, errorx.New(errorx.BadRequest, "The %s must be positive", field)
	}

	return amount, nil
}

func checkLimit(ctx context.Context, limit int) (int, error) {
	apiCfg := xcontext.Configs(ctx).ApiServer
	if limit == 0 {
		limit = apiCfg.DefaultLimit
	}

	if limit < 0 {
		return 0, errorx.New(errorx.BadRequest, "Limit must be positive")
	}

	if limit > apiCfg.MaxLimit {
		return 0, errorx.New(errorx.BadRequest, "Exceed the maximum of limit (%d)", apiCfg.MaxLimit)
	}

	return limit, nil
}

// parseStatusFilter converts an optional status query into a filter list.
func parseStatusFilter[T ~string](status string) ([]T, error) {
	if status == "" {
		return nil, nil
	}

	s, err := enum.ToEnum[T](status)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid status %s", status)
	}

	return []T{s}, nil
}

// updateError maps the error of a guarded update. A guard matching no row means another
// request committed first, which the caller may retry.
func updateError(ctx context.Context, err error, object string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errorx.New(errorx.Conflict, "The %s was changed by another request, please try again", object)
	}

	xcontext.Logger(ctx).Errorf("Cannot update %s: %v", object, err)
	return errorx.Unknown
}

// loadOrCreateAccount returns the account of the requesting user, creating it on the first
// request. Accounts are keyed by the id issued by the identity service.
func loadOrCreateAccount(
	ctx context.Context, accountRepo repository.AccountRepository,
) (*entity.Account, error) {
	token := xcontext.RequestAccessToken(ctx)
	userID := xcontext.RequestUserID(ctx)
	if userID == "" {
		return nil, errorx.New(errorx.Unauthenticated, "You need to authenticate before")
	}

	err := accountRepo.CreateIfNotExists(ctx, &entity.Account{
		Base:        entity.Base{ID: userID},
		DisplayName: token.Name,
		KYCStatus:   entity.KYCPending,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create account: %v", err)
		return nil, errorx.Unknown
	}

	account, err := accountRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	return account, nil
}
