// Package lifecycle owns the state transitions of a donation contract:
//
//	pending --approve--> active --settle--> active | completed
//	active  --(end of term passed)--> expired
//	pending --reject--> rejected
//
// Transitions mutate the contract in memory only; persisting them, together with the payout
// request they belong to, is the caller's transaction.
package lifecycle

import (
	"database/sql"
	"time"

	"github.com/manalab/backend/config"
	"github.com/manalab/backend/internal/domain/eligibility"
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/pkg/errorx"
)

type Manager struct {
	policy     eligibility.Policy
	termMonths int
}

func NewManager(cfg config.ContractConfigs) Manager {
	return Manager{
		policy:     eligibility.NewPolicy(cfg),
		termMonths: cfg.TermMonths,
	}
}

func (m Manager) Policy() eligibility.Policy {
	return m.policy
}

func (m Manager) Approve(c *entity.DonationContract, reviewer string, now time.Time) error {
	if err := m.checkPending(c, "approved"); err != nil {
		return err
	}

	c.Status = entity.ContractActive
	c.StartAt = sql.NullTime{Time: now, Valid: true}
	c.EndAt = sql.NullTime{Time: now.AddDate(0, m.termMonths, 0), Valid: true}
	c.ReviewedBy = reviewer
	return nil
}

func (m Manager) Reject(c *entity.DonationContract, reviewer, reason string) error {
	if err := m.checkPending(c, "rejected"); err != nil {
		return err
	}

	c.Status = entity.ContractRejected
	c.ReviewedBy = reviewer
	c.RejectReason = reason
	return nil
}

func (m Manager) checkPending(c *entity.DonationContract, action string) error {
	switch {
	case c.Status == entity.ContractPending:
		return nil
	case c.IsTerminal():
		return errorx.New(errorx.ContractNotActive, "Contract is %s and cannot be %s", c.Status, action)
	default:
		return errorx.New(errorx.InvalidTransition, "Contract is already %s", c.Status)
	}
}

// Refresh applies the transitions that depend only on time or on the withdrawal totals. It
// returns true if c changed.
func (m Manager) Refresh(c *entity.DonationContract, now time.Time) bool {
	if c.Status != entity.ContractActive {
		return false
	}

	if c.WithdrawalCount >= m.policy.MaxWithdrawals || c.TotalWithdrawn >= c.Principal {
		c.Status = entity.ContractCompleted
		return true
	}

	if c.EndAt.Valid && now.After(c.EndAt.Time) {
		c.Status = entity.ContractExpired
		return true
	}

	return false
}

// Settle applies one withdrawal of amount. The amount is checked against the eligibility
// recomputed from c, never against a figure supplied by the caller.
func (m Manager) Settle(c *entity.DonationContract, amount int64, now time.Time) error {
	m.Refresh(c, now)

	if c.Status != entity.ContractActive {
		return errorx.New(errorx.ContractNotActive, "Contract is %s", c.Status)
	}

	if amount <= 0 {
		return errorx.New(errorx.BadRequest, "Withdrawal amount must be positive")
	}

	eligible := m.policy.Calculate(c, now)
	if !eligible.Permitted {
		if eligible.NextEligibleAt.IsZero() {
			return errorx.New(errorx.InsufficientAvailableBalance,
				"Contract %d has no withdrawal left within its term", c.ID)
		}

		return errorx.New(errorx.InsufficientAvailableBalance,
			"Contract %d is not eligible for withdrawal until %s",
			c.ID, eligible.NextEligibleAt.Format(time.RFC3339))
	}

	if amount > eligible.Withdrawable {
		return errorx.New(errorx.InsufficientAvailableBalance,
			"Contract %d can release at most %d now", c.ID, eligible.Withdrawable)
	}

	c.TotalWithdrawn += amount
	c.WithdrawalCount++
	c.LastWithdrawalAt = sql.NullTime{Time: now, Valid: true}

	if c.WithdrawalCount >= m.policy.MaxWithdrawals || c.TotalWithdrawn >= c.Principal {
		c.Status = entity.ContractCompleted
	}

	return nil
}
