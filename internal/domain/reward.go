package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/manalab/backend/internal/common"
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/internal/model"
	"github.com/manalab/backend/internal/repository"
	"github.com/manalab/backend/pkg/crypto"
	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/money"
	"github.com/manalab/backend/pkg/xcontext"
	"github.com/manalab/backend/pkg/xredis"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const generatedRewardCodeLength = 8

type RewardDomain interface {
	Claim(context.Context, *model.ClaimRewardRequest) (*model.ClaimRewardResponse, error)
	GetPool(context.Context, *model.GetRewardPoolRequest) (*model.GetRewardPoolResponse, error)
	GetMyClaims(context.Context, *model.GetMyRewardClaimsRequest) (*model.GetMyRewardClaimsResponse, error)
	Rotate(context.Context, *model.RotateRewardPoolRequest) (*model.RotateRewardPoolResponse, error)
}

type rewardDomain struct {
	rewardRepo  repository.RewardRepository
	accountRepo repository.AccountRepository
	redisClient xredis.Client
	clock       clockwork.Clock
}

func NewRewardDomain(
	rewardRepo repository.RewardRepository,
	accountRepo repository.AccountRepository,
	redisClient xredis.Client,
	clock clockwork.Clock,
) *rewardDomain {
	return &rewardDomain{
		rewardRepo:  rewardRepo,
		accountRepo: accountRepo,
		redisClient: redisClient,
		clock:       clock,
	}
}

func (d *rewardDomain) Claim(
	ctx context.Context, req *model.ClaimRewardRequest,
) (*model.ClaimRewardResponse, error) {
	claim, err := d.claim(ctx, req)
	common.PromCounters[common.RewardClaimTotal].WithLabelValues(common.ResultCode(err)).Inc()
	if err != nil {
		return nil, err
	}

	return &model.ClaimRewardResponse{Amount: money.Format(claim.Amount)}, nil
}

func (d *rewardDomain) claim(ctx context.Context, req *model.ClaimRewardRequest) (*entity.RewardClaim, error) {
	code := entity.NormalizeRewardCode(req.Code)
	if code == "" {
		return nil, errorx.New(errorx.BadRequest, "Code is required")
	}

	account, err := loadOrCreateAccount(ctx, d.accountRepo)
	if err != nil {
		return nil, err
	}

	displayName := req.UserDisplayName
	if displayName == "" {
		displayName = account.DisplayName
	}

	idempotencyKey := req.IdempotencyKey
	if idempotencyKey == "" {
		idempotencyKey = xcontext.IdempotencyKey(ctx)
	}

	claim := &entity.RewardClaim{
		UserID:          account.ID,
		Code:            code,
		UserDisplayName: displayName,
		IdempotencyKey:  idempotencyKey,
	}

	_, err = common.RetryOnConflict(ctx, "claim_reward", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, d.claimOnce(ctx, claim)
	})
	if err != nil {
		if errors.Is(err, errorx.Error{Code: errorx.AlreadyClaimed}) && idempotencyKey != "" {
			return d.replay(ctx, claim, err)
		}

		return nil, err
	}

	d.invalidatePoolCache(ctx)
	return claim, nil
}

// claimOnce draws a random amount from the active pool into the balance of the claimer. The
// pool decrement, the claim record and the balance increase commit together or not at all.
func (d *rewardDomain) claimOnce(ctx context.Context, claim *entity.RewardClaim) error {
	now := d.clock.Now()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	pool, err := d.rewardRepo.GetActivePool(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.PoolNotFound, "There is no active reward pool")
		}

		xcontext.Logger(ctx).Errorf("Cannot get active reward pool: %v", err)
		return errorx.Unknown
	}

	if pool.Code != claim.Code {
		return errorx.New(errorx.CodeMismatch, "The code is not valid")
	}

	_, err = d.rewardRepo.GetClaim(ctx, claim.UserID, claim.Code)
	if err == nil {
		return errorx.New(errorx.AlreadyClaimed, "You have already claimed this code")
	}

	if !errors.Is(err, gorm.ErrRecordNotFound) {
		xcontext.Logger(ctx).Errorf("Cannot get reward claim: %v", err)
		return errorx.Unknown
	}

	if now.After(pool.ExpiresAt) {
		return errorx.New(errorx.PoolExpired, "The reward pool has expired")
	}

	if pool.RemainingPool <= 0 {
		return errorx.New(errorx.PoolDepleted, "The reward pool has been depleted")
	}

	rewardCfg := xcontext.Configs(ctx).Reward
	amount := crypto.RandRange(rewardCfg.MinClaimAmount, rewardCfg.MaxClaimAmount)
	if amount > pool.RemainingPool {
		amount = pool.RemainingPool
	}

	if err := d.rewardRepo.DecreaseRemaining(ctx, pool.ID, amount); err != nil {
		return updateError(ctx, err, "reward pool")
	}

	claim.ID = uuid.NewString()
	claim.PoolID = pool.ID
	claim.Amount = amount
	claim.ClaimedAt = now
	if err := d.rewardRepo.CreateClaim(ctx, claim); err != nil {
		if repository.IsDuplicateKey(err) {
			return errorx.New(errorx.AlreadyClaimed, "You have already claimed this code")
		}

		xcontext.Logger(ctx).Errorf("Cannot create reward claim: %v", err)
		return errorx.Unknown
	}

	if err := d.accountRepo.IncreaseBalance(ctx, claim.UserID, amount); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errorx.New(errorx.NotFound, "Not found account")
		}

		xcontext.Logger(ctx).Errorf("Cannot increase balance: %v", err)
		return errorx.Unknown
	}

	if _, err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit reward claim: %v", err)
		return errorx.Unknown
	}

	return nil
}

// replay answers a retried claim carrying the idempotency key of the stored one with the
// original amount. Any other collision stays claimErr.
func (d *rewardDomain) replay(
	ctx context.Context, claim *entity.RewardClaim, claimErr error,
) (*entity.RewardClaim, error) {
	stored, err := d.rewardRepo.GetClaim(ctx, claim.UserID, claim.Code)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the stored reward claim: %v", err)
		return nil, claimErr
	}

	if stored.IdempotencyKey != claim.IdempotencyKey {
		return nil, claimErr
	}

	return stored, nil
}

func (d *rewardDomain) GetPool(
	ctx context.Context, req *model.GetRewardPoolRequest,
) (*model.GetRewardPoolResponse, error) {
	key := common.RedisKeyActiveRewardPool()

	var cached model.RewardPool
	err := d.redisClient.GetObj(ctx, key, &cached)
	if err == nil {
		return &model.GetRewardPoolResponse{Pool: cached}, nil
	}

	if !errors.Is(err, redis.Nil) {
		xcontext.Logger(ctx).Warnf("Cannot get cached reward pool: %v", err)
	}

	pool, err := d.rewardRepo.GetActivePool(ctx)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.PoolNotFound, "There is no active reward pool")
		}

		xcontext.Logger(ctx).Errorf("Cannot get active reward pool: %v", err)
		return nil, errorx.Unknown
	}

	view := convertRewardPool(pool)
	if err := d.redisClient.SetObj(ctx, key, view, xcontext.Configs(ctx).Reward.CacheTTL); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot cache reward pool: %v", err)
	}

	return &model.GetRewardPoolResponse{Pool: view}, nil
}

func (d *rewardDomain) GetMyClaims(
	ctx context.Context, req *model.GetMyRewardClaimsRequest,
) (*model.GetMyRewardClaimsResponse, error) {
	limit, err := checkLimit(ctx, req.Limit)
	if err != nil {
		return nil, err
	}

	claims, err := d.rewardRepo.GetClaimsByUserID(ctx, xcontext.RequestUserID(ctx), req.Offset, limit)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get reward claims: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.RewardClaim{}
	for i := range claims {
		result = append(result, convertRewardClaim(&claims[i]))
	}

	return &model.GetMyRewardClaimsResponse{Claims: result}, nil
}

// Rotate opens a new generation of the reward pool with a fresh code and closes the current
// one. Codes of previous generations can never be reused.
func (d *rewardDomain) Rotate(
	ctx context.Context, req *model.RotateRewardPoolRequest,
) (*model.RotateRewardPoolResponse, error) {
	totalPool, err := parseAmount("total pool", req.TotalPool)
	if err != nil {
		return nil, err
	}

	if !req.ExpiresAt.After(d.clock.Now()) {
		return nil, errorx.New(errorx.BadRequest, "Expiration must be in the future")
	}

	code := entity.NormalizeRewardCode(req.Code)
	if code == "" {
		code = crypto.GenerateRandomCode(generatedRewardCodeLength)
	}

	pool, err := common.RetryOnConflict(ctx, "rotate_reward_pool", func(ctx context.Context) (*entity.RewardPool, error) {
		return d.rotateOnce(ctx, code, totalPool, req)
	})
	if err != nil {
		return nil, err
	}

	d.invalidatePoolCache(ctx)
	xcontext.Logger(ctx).Infof("Reward pool generation %d was opened by %s", pool.Generation, pool.RotatedBy)

	return &model.RotateRewardPoolResponse{Pool: convertRewardPool(pool), Code: pool.Code}, nil
}

func (d *rewardDomain) rotateOnce(
	ctx context.Context, code string, totalPool int64, req *model.RotateRewardPoolRequest,
) (*entity.RewardPool, error) {
	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	used, err := d.rewardRepo.IsCodeUsed(ctx, code)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot check reward code: %v", err)
		return nil, errorx.Unknown
	}

	if used {
		return nil, errorx.New(errorx.AlreadyExists, "The code was used by a previous generation")
	}

	generation, err := d.rewardRepo.GetLastGeneration(ctx)
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get the last generation: %v", err)
		return nil, errorx.Unknown
	}

	if err := d.rewardRepo.DeactivateActive(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot deactivate reward pool: %v", err)
		return nil, errorx.Unknown
	}

	pool := &entity.RewardPool{
		Base:          entity.Base{ID: uuid.NewString()},
		Generation:    generation + 1,
		Code:          code,
		TotalPool:     totalPool,
		RemainingPool: totalPool,
		ExpiresAt:     req.ExpiresAt,
		IsActive:      true,
		RotatedBy:     xcontext.RequestUserID(ctx),
	}

	if err := d.rewardRepo.CreatePool(ctx, pool); err != nil {
		if repository.IsDuplicateKey(err) {
			return nil, errorx.New(errorx.Conflict, "Another rotation is running, please try again")
		}

		xcontext.Logger(ctx).Errorf("Cannot create reward pool: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit reward pool rotation: %v", err)
		return nil, errorx.Unknown
	}

	return pool, nil
}

func (d *rewardDomain) invalidatePoolCache(ctx context.Context) {
	if err := d.redisClient.Del(ctx, common.RedisKeyActiveRewardPool()); err != nil {
		xcontext.Logger(ctx).Warnf("Cannot invalidate reward pool cache: %v", err)
	}
}
