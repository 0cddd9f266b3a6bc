// Package eligibility computes how much of a donation contract can be withdrawn at a given
// time.
//
// Two figures are produced. The period-gated amount is authoritative: a withdrawal is
// permitted only once a full period has passed since the last withdrawal (or the approval),
// and each withdrawal releases at most one period's share of the principal. The accrual
// estimate is a display figure only; it is zero whenever the gate is closed, so the two never
// disagree on whether a withdrawal is permitted.
package eligibility

import (
	"time"

	"github.com/manalab/backend/config"
	"github.com/manalab/backend/internal/entity"
	"github.com/shopspring/decimal"
)

const day = 24 * time.Hour

var hundred = decimal.NewFromInt(100)

type Policy struct {
	PeriodDays     int
	ReleasePercent int64
	MaxWithdrawals int
}

func NewPolicy(cfg config.ContractConfigs) Policy {
	return Policy{
		PeriodDays:     cfg.PeriodDays,
		ReleasePercent: cfg.ReleasePercent,
		MaxWithdrawals: cfg.MaxWithdrawals,
	}
}

type Result struct {
	// Permitted tells whether a withdrawal can be settled now.
	Permitted bool

	// Withdrawable is the most a single withdrawal may take now.
	Withdrawable int64

	// Estimate is the accrued-but-not-withdrawn amount shown to the owner.
	Estimate int64

	// MonthsElapsed counts whole periods since the reference date.
	MonthsElapsed int

	// NextEligibleAt is when the gate opens again. It is zero if the contract cannot be
	// withdrawn from anymore.
	NextEligibleAt time.Time
}

// PerPeriodAmount is the share of principal released by one withdrawal.
func (p Policy) PerPeriodAmount(principal int64) int64 {
	amount := share(principal, decimal.NewFromInt(p.ReleasePercent), hundred)
	if amount <= 0 && principal > 0 {
		amount = 1
	}

	return amount
}

// Calculate never mutates c.
func (p Policy) Calculate(c *entity.DonationContract, now time.Time) Result {
	if c.Status != entity.ContractActive || !c.StartAt.Valid {
		return Result{}
	}

	if c.EndAt.Valid && now.After(c.EndAt.Time) {
		return Result{}
	}

	remaining := c.Principal - c.TotalWithdrawn
	if remaining <= 0 || c.WithdrawalCount >= p.MaxWithdrawals {
		return Result{}
	}

	reference := c.StartAt.Time
	if c.LastWithdrawalAt.Valid {
		reference = c.LastWithdrawalAt.Time
	}

	period := time.Duration(p.PeriodDays) * day
	result := Result{
		MonthsElapsed:  elapsedDays(reference, now) / p.PeriodDays,
		NextEligibleAt: reference.Add(period),
	}

	if result.MonthsElapsed < 1 {
		if c.EndAt.Valid && result.NextEligibleAt.After(c.EndAt.Time) {
			result.NextEligibleAt = time.Time{}
		}

		return result
	}

	result.Permitted = true
	result.NextEligibleAt = now
	result.Withdrawable = min64(p.PerPeriodAmount(c.Principal), remaining)
	result.Estimate = p.accrued(c, now)
	return result
}

// accrued is the continuous accrual since approval, capped at the principal.
func (p Policy) accrued(c *entity.DonationContract, now time.Time) int64 {
	days := int64(elapsedDays(c.StartAt.Time, now))
	earned := share(
		c.Principal,
		decimal.NewFromInt(p.ReleasePercent).Mul(decimal.NewFromInt(days)),
		hundred.Mul(decimal.NewFromInt(int64(p.PeriodDays))),
	)
	if earned < c.TotalWithdrawn {
		return 0
	}

	return earned - c.TotalWithdrawn
}

// share is floor(principal * num / den), capped at principal. The product is computed in
// decimal since it overflows int64 for large principals.
func share(principal int64, num, den decimal.Decimal) int64 {
	q, _ := decimal.NewFromInt(principal).Mul(num).QuoRem(den, 0)
	if !q.LessThanOrEqual(decimal.NewFromInt(principal)) {
		return principal
	}

	return q.IntPart()
}

func elapsedDays(from, to time.Time) int {
	if !to.After(from) {
		return 0
	}

	return int(to.Sub(from) / day)
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}
