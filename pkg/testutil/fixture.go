package testutil

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/internal/repository"
	"github.com/manalab/backend/pkg/crypto"
	"github.com/manalab/backend/pkg/xcontext"
)

// Pin1 is the PIN of every fixture account.
const Pin1 = "123456"

var (
	// Account1 is verified and has a PIN.
	Account1 = entity.Account{
		Base:        entity.Base{ID: "user1"},
		DisplayName: "User 1",
		KYCStatus:   entity.KYCVerified,
	}

	// Account2 is verified and has a PIN.
	Account2 = entity.Account{
		Base:        entity.Base{ID: "user2"},
		DisplayName: "User 2",
		KYCStatus:   entity.KYCVerified,
	}

	// Account3 has not passed the identity verification.
	Account3 = entity.Account{
		Base:        entity.Base{ID: "user3"},
		DisplayName: "User 3",
		KYCStatus:   entity.KYCPending,
	}

	Admin = "admin1"
)

func CreateFixtureContext() context.Context {
	ctx := MockContext()
	InsertAccounts(ctx)
	return ctx
}

func InsertAccounts(ctx context.Context) {
	hashed, err := crypto.HashPin(Pin1, xcontext.Configs(ctx).Pin.HashCost)
	if err != nil {
		panic(err)
	}

	accountRepo := repository.NewAccountRepository()
	for _, account := range []entity.Account{Account1, Account2, Account3} {
		account.PinHash = hashed
		if err := accountRepo.CreateIfNotExists(ctx, &account); err != nil {
			panic(err)
		}
	}
}

// SetBalance overwrites the balance of an account.
func SetBalance(ctx context.Context, userID string, balance int64) {
	err := xcontext.DB(ctx).Model(&entity.Account{}).Where("id=?", userID).Update("balance", balance).Error
	if err != nil {
		panic(err)
	}
}

// InsertActiveContract stores a contract approved at startAt. Modifiers are applied before
// the contract is written.
func InsertActiveContract(
	ctx context.Context, id int64, ownerID string, principal int64, startAt time.Time,
	modifiers ...func(*entity.DonationContract),
) *entity.DonationContract {
	termMonths := xcontext.Configs(ctx).Contract.TermMonths
	contract := &entity.DonationContract{
		SnowFlakeBase: entity.SnowFlakeBase{ID: id},
		OwnerID:       ownerID,
		Principal:     principal,
		Status:        entity.ContractActive,
		StartAt:       sql.NullTime{Time: startAt, Valid: true},
		EndAt:         sql.NullTime{Time: startAt.AddDate(0, termMonths, 0), Valid: true},
		ReviewedBy:    Admin,
	}

	for _, modify := range modifiers {
		modify(contract)
	}

	if err := repository.NewContractRepository().Create(ctx, contract); err != nil {
		panic(err)
	}

	return contract
}

// InsertRewardPool stores an active pool of the next generation.
func InsertRewardPool(
	ctx context.Context, generation int64, code string, total int64, expiresAt time.Time,
) *entity.RewardPool {
	pool := &entity.RewardPool{
		Base:          entity.Base{ID: uuid.NewString()},
		Generation:    generation,
		Code:          entity.NormalizeRewardCode(code),
		TotalPool:     total,
		RemainingPool: total,
		ExpiresAt:     expiresAt,
		IsActive:      true,
		RotatedBy:     Admin,
	}

	if err := repository.NewRewardRepository().CreatePool(ctx, pool); err != nil {
		panic(err)
	}

	return pool
}
