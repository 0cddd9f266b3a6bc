package entity

import (
	"context"

	"github.com/manalab/backend/pkg/xcontext"
)

func MigrateTable(ctx context.Context) error {
	return xcontext.DB(ctx).AutoMigrate(
		&Account{},
		&DonationContract{},
		&PayoutRequest{},
		&RewardPool{},
		&RewardClaim{},
	)
}
