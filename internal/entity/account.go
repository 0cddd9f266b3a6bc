package entity

import (
	"database/sql"
	"errors"

	"github.com/manalab/backend/pkg/enum"
)

type KYCStatus string

var (
	KYCPending  = enum.New(KYCStatus("pending"))
	KYCVerified = enum.New(KYCStatus("verified"))
	KYCRejected = enum.New(KYCStatus("rejected"))
)

// Account is the owner side of the settlement core. Its id is the user id issued by the
// identity service.
type Account struct {
	Base

	DisplayName string
	Balance     int64     `gorm:"not null"`
	KYCStatus   KYCStatus `gorm:"not null"`

	PinHash        string
	FailedAttempts int `gorm:"not null"`
	LockedUntil    sql.NullTime

	Version int64 `gorm:"not null"`
}

func (a *Account) Validate() error {
	if a.ID == "" {
		return errors.New("account id is required")
	}

	if a.Balance < 0 {
		return errors.New("balance must not be negative")
	}

	if _, err := enum.ToEnum[KYCStatus](string(a.KYCStatus)); err != nil {
		return err
	}

	if a.FailedAttempts < 0 {
		return errors.New("failed attempts must not be negative")
	}

	return nil
}
