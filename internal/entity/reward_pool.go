package entity

import (
	"errors"
	"strings"
	"time"
)

// RewardPool is one generation of the shared MANA pool. Rotation inserts a new generation
// and deactivates the previous one, so claims stay attributable to the generation they
// drew from.
type RewardPool struct {
	Base

	Generation    int64  `gorm:"uniqueIndex;not null"`
	Code          string `gorm:"index;not null"`
	TotalPool     int64  `gorm:"not null"`
	RemainingPool int64  `gorm:"not null"`
	ExpiresAt     time.Time
	IsActive      bool `gorm:"index"`
	RotatedBy     string
}

func (p *RewardPool) Validate() error {
	if p.ID == "" || p.Code == "" {
		return errors.New("reward pool requires id and code")
	}

	if p.Code != NormalizeRewardCode(p.Code) {
		return errors.New("reward code is not normalized")
	}

	if p.TotalPool <= 0 {
		return errors.New("total pool must be positive")
	}

	if p.RemainingPool < 0 || p.RemainingPool > p.TotalPool {
		return errors.New("remaining pool is out of range")
	}

	if p.ExpiresAt.IsZero() {
		return errors.New("reward pool requires an expiration")
	}

	return nil
}

type RewardClaim struct {
	Base

	UserID          string `gorm:"uniqueIndex:idx_reward_claim_user_code;not null"`
	Code            string `gorm:"uniqueIndex:idx_reward_claim_user_code;not null"`
	PoolID          string `gorm:"index;not null"`
	UserDisplayName string
	Amount          int64 `gorm:"not null"`
	IdempotencyKey  string
	ClaimedAt       time.Time
}

func (c *RewardClaim) Validate() error {
	if c.ID == "" || c.UserID == "" || c.Code == "" || c.PoolID == "" {
		return errors.New("reward claim requires id, user, code and pool")
	}

	if c.Amount <= 0 {
		return errors.New("reward claim amount must be positive")
	}

	return nil
}

// NormalizeRewardCode makes codes case-insensitive.
func NormalizeRewardCode(code string) string {
	return strings.ToUpper(strings.TrimSpace(code))
}
