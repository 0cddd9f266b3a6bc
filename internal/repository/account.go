package repository

import (
	"context"

	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/pkg/xcontext"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AccountRepository interface {
	CreateIfNotExists(ctx context.Context, account *entity.Account) error
	GetByID(ctx context.Context, id string) (*entity.Account, error)

	// UpdateWithVersion writes every mutable field of account if nobody updated it since it
	// was read. It returns gorm.ErrRecordNotFound on a version mismatch.
	UpdateWithVersion(ctx context.Context, account *entity.Account) error
	IncreaseBalance(ctx context.Context, id string, amount int64) error
	UpdateKYCStatus(ctx context.Context, id string, status entity.KYCStatus) error
}

type accountRepository struct{}

func NewAccountRepository() *accountRepository {
	return &accountRepository{}
}

func (r *accountRepository) CreateIfNotExists(ctx context.Context, account *entity.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	return xcontext.DB(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(account).Error
}

func (r *accountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	var result entity.Account
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *accountRepository) UpdateWithVersion(ctx context.Context, account *entity.Account) error {
	if err := account.Validate(); err != nil {
		return err
	}

	tx := xcontext.DB(ctx).
		Model(&entity.Account{}).
		Where("id=? AND version=?", account.ID, account.Version).
		Updates(map[string]any{
			"display_name":    account.DisplayName,
			"balance":         account.Balance,
			"kyc_status":      account.KYCStatus,
			"pin_hash":        account.PinHash,
			"failed_attempts": account.FailedAttempts,
			"locked_until":    account.LockedUntil,
			"version":         account.Version + 1,
		})
	if err := checkAffected(tx); err != nil {
		return err
	}

	account.Version++
	return nil
}

func (r *accountRepository) IncreaseBalance(ctx context.Context, id string, amount int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Account{}).
		Where("id=?", id).
		Updates(map[string]any{
			"balance": gorm.Expr("balance+?", amount),
			"version": gorm.Expr("version+1"),
		})

	return checkAffected(tx)
}

func (r *accountRepository) UpdateKYCStatus(ctx context.Context, id string, status entity.KYCStatus) error {
	tx := xcontext.DB(ctx).
		Model(&entity.Account{}).
		Where("id=?", id).
		Updates(map[string]any{
			"kyc_status": status,
			"version":    gorm.Expr("version+1"),
		})

	return checkAffected(tx)
}
