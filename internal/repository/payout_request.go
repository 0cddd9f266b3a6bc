package repository

import (
	"context"
	"database/sql"

	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/pkg/xcontext"
)

type PayoutRequestFilter struct {
	OwnerID string
	Status  []entity.PayoutStatus
	Offset  int
	Limit   int
}

type PayoutRequestRepository interface {
	Create(ctx context.Context, request *entity.PayoutRequest) error
	GetByID(ctx context.Context, id string) (*entity.PayoutRequest, error)
	GetList(ctx context.Context, filter PayoutRequestFilter) ([]entity.PayoutRequest, error)

	// UpdateStatus moves a request whose current status is one of from. It returns
	// gorm.ErrRecordNotFound if the request is in none of them.
	UpdateStatus(
		ctx context.Context, id string, from []entity.PayoutStatus, to entity.PayoutStatus,
		processedBy string, processedAt sql.NullTime, note string,
	) error
}

type payoutRequestRepository struct{}

func NewPayoutRequestRepository() *payoutRequestRepository {
	return &payoutRequestRepository{}
}

func (r *payoutRequestRepository) Create(ctx context.Context, request *entity.PayoutRequest) error {
	if err := request.Validate(); err != nil {
		return err
	}

	return xcontext.DB(ctx).Create(request).Error
}

func (r *payoutRequestRepository) GetByID(ctx context.Context, id string) (*entity.PayoutRequest, error) {
	var result entity.PayoutRequest
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *payoutRequestRepository) GetList(
	ctx context.Context, filter PayoutRequestFilter,
) ([]entity.PayoutRequest, error) {
	tx := xcontext.DB(ctx).Model(&entity.PayoutRequest{})
	if filter.OwnerID != "" {
		tx = tx.Where("owner_id=?", filter.OwnerID)
	}

	if len(filter.Status) > 0 {
		tx = tx.Where("status IN (?)", filter.Status)
	}

	if filter.Limit > 0 {
		tx = tx.Offset(filter.Offset).Limit(filter.Limit)
	}

	var result []entity.PayoutRequest
	if err := tx.Order("requested_at DESC").Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}

func (r *payoutRequestRepository) UpdateStatus(
	ctx context.Context, id string, from []entity.PayoutStatus, to entity.PayoutStatus,
	processedBy string, processedAt sql.NullTime, note string,
) error {
	tx := xcontext.DB(ctx).
		Model(&entity.PayoutRequest{}).
		Where("id=? AND status IN (?)", id, from).
		Updates(map[string]any{
			"status":       to,
			"processed_by": processedBy,
			"processed_at": processedAt,
			"note":         note,
		})

	return checkAffected(tx)
}
