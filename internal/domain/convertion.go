package domain

import (
	"database/sql"
	"time"

	"github.com/manalab/backend/internal/domain/eligibility"
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/internal/model"
	"github.com/manalab/backend/pkg/idutil"
	"github.com/manalab/backend/pkg/money"
)

const defaultTimeLayout = time.RFC3339

func formatNullTime(t sql.NullTime) string {
	if !t.Valid {
		return ""
	}

	return t.Time.Format(defaultTimeLayout)
}

func convertEligibility(result eligibility.Result) *model.Eligibility {
	e := &model.Eligibility{
		Permitted:     result.Permitted,
		Withdrawable:  money.Format(result.Withdrawable),
		Estimate:      money.Format(result.Estimate),
		MonthsElapsed: result.MonthsElapsed,
	}

	if !result.NextEligibleAt.IsZero() {
		e.NextEligibleAt = result.NextEligibleAt.Format(defaultTimeLayout)
	}

	return e
}

func convertContract(contract *entity.DonationContract, eligible *model.Eligibility) model.Contract {
	if contract == nil {
		return model.Contract{}
	}

	return model.Contract{
		ID:               idutil.FormatID(contract.ID),
		OwnerID:          contract.OwnerID,
		Principal:        money.Format(contract.Principal),
		Status:           string(contract.Status),
		StartAt:          formatNullTime(contract.StartAt),
		EndAt:            formatNullTime(contract.EndAt),
		LastWithdrawalAt: formatNullTime(contract.LastWithdrawalAt),
		WithdrawalCount:  contract.WithdrawalCount,
		TotalWithdrawn:   money.Format(contract.TotalWithdrawn),
		ReceiptURL:       contract.ReceiptURL,
		ReviewedBy:       contract.ReviewedBy,
		RejectReason:     contract.RejectReason,
		CreatedAt:        contract.CreatedAt.Format(defaultTimeLayout),
		Eligibility:      eligible,
	}
}

func convertPayoutSources(sources []entity.PayoutSource) []model.PayoutSource {
	result := []model.PayoutSource{}
	for _, s := range sources {
		result = append(result, model.PayoutSource{
			SourceID:   s.SourceID,
			SourceKind: string(s.SourceKind),
			Amount:     money.Format(s.Amount),
		})
	}

	return result
}

func convertPayoutRequest(request *entity.PayoutRequest) model.PayoutRequest {
	if request == nil {
		return model.PayoutRequest{}
	}

	return model.PayoutRequest{
		ID:              request.ID,
		OwnerID:         request.OwnerID,
		SourceBreakdown: convertPayoutSources(request.SourceBreakdown),
		TotalAmount:     money.Format(request.TotalAmount),
		Status:          string(request.Status),
		RequestedAt:     request.RequestedAt.Format(defaultTimeLayout),
		ProcessedAt:     formatNullTime(request.ProcessedAt),
		ProcessedBy:     request.ProcessedBy,
		Note:            request.Note,
	}
}

func convertRewardPool(pool *entity.RewardPool) model.RewardPool {
	if pool == nil {
		return model.RewardPool{}
	}

	return model.RewardPool{
		ID:            pool.ID,
		Generation:    pool.Generation,
		TotalPool:     money.Format(pool.TotalPool),
		RemainingPool: money.Format(pool.RemainingPool),
		ExpiresAt:     pool.ExpiresAt.Format(defaultTimeLayout),
		IsActive:      pool.IsActive,
	}
}

func convertRewardClaim(claim *entity.RewardClaim) model.RewardClaim {
	if claim == nil {
		return model.RewardClaim{}
	}

	return model.RewardClaim{
		ID:              claim.ID,
		PoolID:          claim.PoolID,
		Code:            claim.Code,
		UserDisplayName: claim.UserDisplayName,
		Amount:          money.Format(claim.Amount),
		ClaimedAt:       claim.ClaimedAt.Format(defaultTimeLayout),
	}
}

func convertAccount(account *entity.Account) model.Account {
	if account == nil {
		return model.Account{}
	}

	return model.Account{
		ID:             account.ID,
		DisplayName:    account.DisplayName,
		Balance:        money.Format(account.Balance),
		KYCStatus:      string(account.KYCStatus),
		PinSet:         account.PinHash != "",
		FailedAttempts: account.FailedAttempts,
		LockedUntil:    formatNullTime(account.LockedUntil),
	}
}
