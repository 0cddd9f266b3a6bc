package repository

import (
	"context"

	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/pkg/xcontext"
)

type ContractFilter struct {
	OwnerID string
	Status  []entity.ContractStatus
	Offset  int
	Limit   int
}

type ContractRepository interface {
	Create(ctx context.Context, contract *entity.DonationContract) error
	GetByID(ctx context.Context, id int64) (*entity.DonationContract, error)
	GetList(ctx context.Context, filter ContractFilter) ([]entity.DonationContract, error)

	// UpdateWithVersion writes the lifecycle fields of contract if nobody updated it since it
	// was read. It returns gorm.ErrRecordNotFound on a version mismatch.
	UpdateWithVersion(ctx context.Context, contract *entity.DonationContract) error
}

type contractRepository struct{}

func NewContractRepository() *contractRepository {
	return &contractRepository{}
}

func (r *contractRepository) Create(ctx context.Context, contract *entity.DonationContract) error {
	if err := contract.Validate(); err != nil {
		return err
	}

	return xcontext.DB(ctx).Create(contract).Error
}

func (r *contractRepository) GetByID(ctx context.Context, id int64) (*entity.DonationContract, error) {
	var result entity.DonationContract
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *contractRepository) GetList(
	ctx context.Context, filter ContractFilter,
) ([]entity.DonationContract, error) {
	tx := xcontext.DB(ctx).Model(&entity.DonationContract{})
	if filter.OwnerID != "" {
		tx = tx.Where("owner_id=?", filter.OwnerID)
	}

	if len(filter.Status) > 0 {
		tx = tx.Where("status IN (?)", filter.Status)
	}

	if filter.Limit > 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.DonationContract
	if err := tx.Order("id ASC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *contractRepository) UpdateWithVersion(ctx context.Context, contract *entity.DonationContract) error {
	if err := contract.Validate(); err != nil {
		return err
	}

	tx := xcontext.DB(ctx).
		Model(&entity.DonationContract{}).
		Where("id=? AND version=?", contract.ID, contract.Version).
		Updates(map[string]any{
			"status":             contract.Status,
			"start_at":           contract.StartAt,
			"end_at":             contract.EndAt,
			"last_withdrawal_at": contract.LastWithdrawalAt,
			"withdrawal_count":   contract.WithdrawalCount,
			"total_withdrawn":    contract.TotalWithdrawn,
			"reviewed_by":        contract.ReviewedBy,
			"reject_reason":      contract.RejectReason,
			"version":            contract.Version + 1,
		})
	if err := checkAffected(tx); err != nil {
		return err
	}

	contract.Version++
	return nil
}
