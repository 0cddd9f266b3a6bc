package domain

import (
	"context"
	"database/sql"

	"github.com/manalab/backend/internal/common"
	"github.com/manalab/backend/internal/domain/pingate"
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/internal/model"
	"github.com/manalab/backend/internal/repository"
	"github.com/manalab/backend/pkg/crypto"
	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/xcontext"
)

type PinDomain interface {
	SetPin(context.Context, *model.SetPinRequest) (*model.SetPinResponse, error)
	ChangePin(context.Context, *model.ChangePinRequest) (*model.ChangePinResponse, error)
	VerifyPin(context.Context, *model.VerifyPinRequest) (*model.VerifyPinResponse, error)
}

type pinDomain struct {
	accountRepo repository.AccountRepository
	pinVerifier *common.PinVerifier
}

func NewPinDomain(accountRepo repository.AccountRepository, pinVerifier *common.PinVerifier) *pinDomain {
	return &pinDomain{accountRepo: accountRepo, pinVerifier: pinVerifier}
}

func (d *pinDomain) SetPin(ctx context.Context, req *model.SetPinRequest) (*model.SetPinResponse, error) {
	if err := pingate.ValidateFormat(xcontext.Configs(ctx).Pin, req.Pin); err != nil {
		return nil, err
	}

	account, err := loadOrCreateAccount(ctx, d.accountRepo)
	if err != nil {
		return nil, err
	}

	if account.PinHash != "" {
		return nil, errorx.New(errorx.AlreadyExists, "PIN has already been set, use change PIN instead")
	}

	if err := d.storePin(ctx, account, req.Pin); err != nil {
		return nil, err
	}

	return &model.SetPinResponse{}, nil
}

func (d *pinDomain) ChangePin(
	ctx context.Context, req *model.ChangePinRequest,
) (*model.ChangePinResponse, error) {
	if err := pingate.ValidateFormat(xcontext.Configs(ctx).Pin, req.NewPin); err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)
	if err := d.pinVerifier.Verify(ctx, userID, req.OldPin); err != nil {
		return nil, err
	}

	account, err := d.accountRepo.GetByID(ctx, userID)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.storePin(ctx, account, req.NewPin); err != nil {
		return nil, err
	}

	return &model.ChangePinResponse{}, nil
}

func (d *pinDomain) VerifyPin(
	ctx context.Context, req *model.VerifyPinRequest,
) (*model.VerifyPinResponse, error) {
	if err := d.pinVerifier.Verify(ctx, xcontext.RequestUserID(ctx), req.Pin); err != nil {
		return nil, err
	}

	return &model.VerifyPinResponse{}, nil
}

func (d *pinDomain) storePin(ctx context.Context, account *entity.Account, pin string) error {
	hashed, err := crypto.HashPin(pin, xcontext.Configs(ctx).Pin.HashCost)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot hash pin: %v", err)
		return errorx.Unknown
	}

	account.PinHash = hashed
	account.FailedAttempts = 0
	account.LockedUntil = sql.NullTime{}
	if err := d.accountRepo.UpdateWithVersion(ctx, account); err != nil {
		return updateError(ctx, err, "account")
	}

	return nil
}
