package entity

import (
	"database/sql"
	"errors"

	"github.com/manalab/backend/pkg/enum"
)

type ContractStatus string

var (
	ContractPending   = enum.New(ContractStatus("pending"))
	ContractActive    = enum.New(ContractStatus("active"))
	ContractCompleted = enum.New(ContractStatus("completed"))
	ContractExpired   = enum.New(ContractStatus("expired"))
	ContractRejected  = enum.New(ContractStatus("rejected"))
)

type DonationContract struct {
	SnowFlakeBase

	OwnerID   string         `gorm:"index;not null"`
	Principal int64          `gorm:"not null"`
	Status    ContractStatus `gorm:"index;not null"`

	StartAt          sql.NullTime
	EndAt            sql.NullTime
	LastWithdrawalAt sql.NullTime
	WithdrawalCount  int   `gorm:"not null"`
	TotalWithdrawn   int64 `gorm:"not null"`

	ReceiptURL   string
	ReviewedBy   string
	RejectReason string

	// Version is bumped by every update and guards concurrent writers.
	Version int64 `gorm:"not null"`
}

func (c *DonationContract) IsTerminal() bool {
	return c.Status == ContractCompleted || c.Status == ContractExpired || c.Status == ContractRejected
}

// Validate rejects records missing the fields the lifecycle invariants depend on.
func (c *DonationContract) Validate() error {
	if c.ID == 0 {
		return errors.New("contract id is required")
	}

	if c.OwnerID == "" {
		return errors.New("contract owner is required")
	}

	if c.Principal <= 0 {
		return errors.New("contract principal must be positive")
	}

	if _, err := enum.ToEnum[ContractStatus](string(c.Status)); err != nil {
		return err
	}

	if c.TotalWithdrawn < 0 || c.TotalWithdrawn > c.Principal {
		return errors.New("total withdrawn is out of range")
	}

	if c.WithdrawalCount < 0 {
		return errors.New("withdrawal count must not be negative")
	}

	if c.Status != ContractPending && c.Status != ContractRejected && (!c.StartAt.Valid || !c.EndAt.Valid) {
		return errors.New("an approved contract requires start and end time")
	}

	return nil
}
