package domain

import (
	"context"
	"errors"

	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/internal/model"
	"github.com/manalab/backend/internal/repository"
	"github.com/manalab/backend/pkg/enum"
	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type AccountDomain interface {
	GetMyAccount(context.Context, *model.GetMyAccountRequest) (*model.GetMyAccountResponse, error)
	UpdateKYCStatus(context.Context, *model.UpdateKYCStatusRequest) (*model.UpdateKYCStatusResponse, error)
}

type accountDomain struct {
	accountRepo repository.AccountRepository
}

func NewAccountDomain(accountRepo repository.AccountRepository) *accountDomain {
	return &accountDomain{accountRepo: accountRepo}
}

func (d *accountDomain) GetMyAccount(
	ctx context.Context, req *model.GetMyAccountRequest,
) (*model.GetMyAccountResponse, error) {
	account, err := loadOrCreateAccount(ctx, d.accountRepo)
	if err != nil {
		return nil, err
	}

	return &model.GetMyAccountResponse{Account: convertAccount(account)}, nil
}

// UpdateKYCStatus records the decision of the external identity verification channel.
func (d *accountDomain) UpdateKYCStatus(
	ctx context.Context, req *model.UpdateKYCStatusRequest,
) (*model.UpdateKYCStatusResponse, error) {
	status, err := enum.ToEnum[entity.KYCStatus](req.Status)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid kyc status %s", req.Status)
	}

	if err := d.accountRepo.UpdateKYCStatus(ctx, req.UserID, status); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found account")
		}

		xcontext.Logger(ctx).Errorf("Cannot update kyc status: %v", err)
		return nil, errorx.Unknown
	}

	xcontext.Logger(ctx).Infof("KYC status of %s was set to %s by %s",
		req.UserID, status, xcontext.RequestUserID(ctx))
	return &model.UpdateKYCStatusResponse{}, nil
}
