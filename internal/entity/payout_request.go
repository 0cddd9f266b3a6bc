package entity

import (
	"database/sql"
	"errors"
	"time"

	"github.com/manalab/backend/pkg/enum"
)

type SourceKind string

var (
	SourceContract = enum.New(SourceKind("contract"))
	SourceBalance  = enum.New(SourceKind("balance"))
)

type PayoutStatus string

var (
	PayoutPending    = enum.New(PayoutStatus("pending"))
	PayoutProcessing = enum.New(PayoutStatus("processing"))
	PayoutCompleted  = enum.New(PayoutStatus("completed"))
	PayoutFailed     = enum.New(PayoutStatus("failed"))
)

type PayoutSource struct {
	SourceID   string     `json:"source_id"`
	SourceKind SourceKind `json:"source_kind"`
	Amount     int64      `json:"amount"`
}

type PayoutRequest struct {
	Base

	OwnerID         string              `gorm:"index;not null"`
	SourceBreakdown Array[PayoutSource] `gorm:"not null"`
	TotalAmount     int64               `gorm:"not null"`
	Status          PayoutStatus        `gorm:"index;not null"`
	RequestedAt     time.Time
	ProcessedAt     sql.NullTime
	ProcessedBy     string
	Note            string
}

func (p *PayoutRequest) IsTerminal() bool {
	return p.Status == PayoutCompleted || p.Status == PayoutFailed
}

func (p *PayoutRequest) Validate() error {
	if p.ID == "" || p.OwnerID == "" {
		return errors.New("payout request requires id and owner")
	}

	if len(p.SourceBreakdown) == 0 {
		return errors.New("payout request requires at least one source")
	}

	var sum int64
	for _, s := range p.SourceBreakdown {
		if s.Amount <= 0 {
			return errors.New("every source must draw a positive amount")
		}

		if s.SourceKind != SourceContract && s.SourceKind != SourceBalance {
			return errors.New("invalid source kind")
		}

		sum += s.Amount
	}

	if sum != p.TotalAmount {
		return errors.New("source breakdown does not sum to the total amount")
	}

	if _, err := enum.ToEnum[PayoutStatus](string(p.Status)); err != nil {
		return err
	}

	return nil
}
