package repository_test

import (
	"testing"
	"time"

	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/internal/repository"
	"github.com/manalab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func Test_accountRepository_UpdateWithVersion(t *testing.T) {
	ctx := testutil.CreateFixtureContext()
	repo := repository.NewAccountRepository()

	first, err := repo.GetByID(ctx, testutil.Account1.ID)
	require.NoError(t, err)
	stale, err := repo.GetByID(ctx, testutil.Account1.ID)
	require.NoError(t, err)

	first.Balance = 500
	require.NoError(t, repo.UpdateWithVersion(ctx, first))
	require.Equal(t, stale.Version+1, first.Version)

	stale.Balance = 700
	require.ErrorIs(t, repo.UpdateWithVersion(ctx, stale), gorm.ErrRecordNotFound)

	stored, err := repo.GetByID(ctx, testutil.Account1.ID)
	require.NoError(t, err)
	require.Equal(t, int64(500), stored.Balance)

	stored.Balance = -1
	require.Error(t, repo.UpdateWithVersion(ctx, stored))
}

func Test_accountRepository_IncreaseBalance(t *testing.T) {
	ctx := testutil.CreateFixtureContext()
	repo := repository.NewAccountRepository()

	require.NoError(t, repo.IncreaseBalance(ctx, testutil.Account2.ID, 250))
	require.ErrorIs(t, repo.IncreaseBalance(ctx, "nobody", 250), gorm.ErrRecordNotFound)

	account, err := repo.GetByID(ctx, testutil.Account2.ID)
	require.NoError(t, err)
	require.Equal(t, int64(250), account.Balance)
}

func Test_rewardRepository_DecreaseRemaining(t *testing.T) {
	ctx := testutil.CreateFixtureContext()
	repo := repository.NewRewardRepository()

	pool := &entity.RewardPool{
		Base:          entity.Base{ID: "pool1"},
		Generation:    1,
		Code:          "ABC",
		TotalPool:     10,
		RemainingPool: 10,
		ExpiresAt:     time.Now().Add(time.Hour),
		IsActive:      true,
	}
	require.NoError(t, repo.CreatePool(ctx, pool))

	require.NoError(t, repo.DecreaseRemaining(ctx, pool.ID, 7))
	require.ErrorIs(t, repo.DecreaseRemaining(ctx, pool.ID, 4), gorm.ErrRecordNotFound)
	require.NoError(t, repo.DecreaseRemaining(ctx, pool.ID, 3))

	stored, err := repo.GetPoolByID(ctx, pool.ID)
	require.NoError(t, err)
	require.Equal(t, int64(0), stored.RemainingPool)

	require.NoError(t, repo.DeactivateActive(ctx))
	_, err = repo.GetActivePool(ctx)
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	used, err := repo.IsCodeUsed(ctx, "ABC")
	require.NoError(t, err)
	require.True(t, used)

	generation, err := repo.GetLastGeneration(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), generation)
}

func Test_rewardRepository_CreateClaimDuplicate(t *testing.T) {
	ctx := testutil.CreateFixtureContext()
	repo := repository.NewRewardRepository()

	claim := entity.RewardClaim{
		Base:   entity.Base{ID: "claim1"},
		UserID: testutil.Account1.ID,
		Code:   "ABC",
		PoolID: "pool1",
		Amount: 3,
	}
	require.NoError(t, repo.CreateClaim(ctx, &claim))

	claim.ID = "claim2"
	err := repo.CreateClaim(ctx, &claim)
	require.Error(t, err)
	require.True(t, repository.IsDuplicateKey(err))

	claim.ID = "claim3"
	claim.Amount = 0
	err = repo.CreateClaim(ctx, &claim)
	require.Error(t, err)
	require.False(t, repository.IsDuplicateKey(err))
}
