package repository

import (
	"context"
	"errors"

	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type RewardRepository interface {
	CreatePool(ctx context.Context, pool *entity.RewardPool) error
	GetActivePool(ctx context.Context) (*entity.RewardPool, error)
	GetPoolByID(ctx context.Context, id string) (*entity.RewardPool, error)
	GetLastGeneration(ctx context.Context) (int64, error)
	DeactivateActive(ctx context.Context) error
	IsCodeUsed(ctx context.Context, code string) (bool, error)

	// DecreaseRemaining draws amount from an active pool. It returns gorm.ErrRecordNotFound if
	// the pool is inactive or holds less than amount.
	DecreaseRemaining(ctx context.Context, poolID string, amount int64) error

	CreateClaim(ctx context.Context, claim *entity.RewardClaim) error
	GetClaim(ctx context.Context, userID, code string) (*entity.RewardClaim, error)
	GetClaimsByUserID(ctx context.Context, userID string, offset, limit int) ([]entity.RewardClaim, error)
	GetClaimsByPoolID(ctx context.Context, poolID string) ([]entity.RewardClaim, error)
}

type rewardRepository struct{}

func NewRewardRepository() *rewardRepository {
	return &rewardRepository{}
}

func (r *rewardRepository) CreatePool(ctx context.Context, pool *entity.RewardPool) error {
	if err := pool.Validate(); err != nil {
		return err
	}

	return xcontext.DB(ctx).Create(pool).Error
}

func (r *rewardRepository) GetActivePool(ctx context.Context) (*entity.RewardPool, error) {
	var result entity.RewardPool
	err := xcontext.DB(ctx).
		Where("is_active=?", true).
		Order("generation DESC").
		Take(&result).Error
	if err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *rewardRepository) GetPoolByID(ctx context.Context, id string) (*entity.RewardPool, error) {
	var result entity.RewardPool
	if err := xcontext.DB(ctx).Take(&result, "id=?", id).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *rewardRepository) GetLastGeneration(ctx context.Context) (int64, error) {
	var result entity.RewardPool
	err := xcontext.DB(ctx).Order("generation DESC").Take(&result).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}

		return 0, err
	}

	return result.Generation, nil
}

func (r *rewardRepository) DeactivateActive(ctx context.Context) error {
	return xcontext.DB(ctx).
		Model(&entity.RewardPool{}).
		Where("is_active=?", true).
		Update("is_active", false).Error
}

func (r *rewardRepository) IsCodeUsed(ctx context.Context, code string) (bool, error) {
	var count int64
	err := xcontext.DB(ctx).
		Model(&entity.RewardPool{}).
		Where("code=?", code).
		Count(&count).Error
	if err != nil {
		return false, err
	}

	return count > 0, nil
}

func (r *rewardRepository) DecreaseRemaining(ctx context.Context, poolID string, amount int64) error {
	tx := xcontext.DB(ctx).
		Model(&entity.RewardPool{}).
		Where("id=? AND is_active=? AND remaining_pool>=?", poolID, true, amount).
		Update("remaining_pool", gorm.Expr("remaining_pool-?", amount))

	return checkAffected(tx)
}

func (r *rewardRepository) CreateClaim(ctx context.Context, claim *entity.RewardClaim) error {
	if err := claim.Validate(); err != nil {
		return err
	}

	return xcontext.DB(ctx).Create(claim).Error
}

func (r *rewardRepository) GetClaim(ctx context.Context, userID, code string) (*entity.RewardClaim, error) {
	var result entity.RewardClaim
	if err := xcontext.DB(ctx).Take(&result, "user_id=? AND code=?", userID, code).Error; err != nil {
		return nil, err
	}

	return &result, nil
}

func (r *rewardRepository) GetClaimsByUserID(
	ctx context.Context, userID string, offset, limit int,
) ([]entity.RewardClaim, error) {
	var result []entity.RewardClaim
	err := xcontext.DB(ctx).
		Where("user_id=?", userID).
		Order("claimed_at DESC").
		Offset(offset).
		Limit(limit).
		Find(&result).Error
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (r *rewardRepository) GetClaimsByPoolID(ctx context.Context, poolID string) ([]entity.RewardClaim, error) {
	var result []entity.RewardClaim
	if err := xcontext.DB(ctx).Where("pool_id=?", poolID).Find(&result).Error; err != nil {
		return nil, err
	}

	return result, nil
}
