// Package allocation splits one requested withdrawal across the owner's spendable balance and
// eligible contracts.
package allocation

import (
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/pkg/errorx"
	"golang.org/x/exp/slices"
)

// Source is a contract together with what it may release now.
type Source struct {
	ContractID   int64
	Withdrawable int64
}

type Draw struct {
	Kind       entity.SourceKind
	ContractID int64
	Amount     int64
}

// Capacity is the most that can be withdrawn from balance and sources together.
func Capacity(balance int64, sources []Source) int64 {
	total := int64(0)
	if balance > 0 {
		total = balance
	}

	for _, s := range sources {
		if s.Withdrawable > 0 {
			total += s.Withdrawable
		}
	}

	return total
}

// Allocate draws target from the balance first, then from sources ordered by ascending
// contract id. Amounts are integer minor units so the draws always sum to target exactly.
// Nothing is drawn if the capacity is below target.
func Allocate(target, balance int64, sources []Source) ([]Draw, error) {
	if target <= 0 {
		return nil, errorx.New(errorx.BadRequest, "Withdrawal amount must be positive")
	}

	if capacity := Capacity(balance, sources); capacity < target {
		return nil, errorx.New(errorx.InsufficientAvailableBalance,
			"Requested amount exceeds the available %d", capacity)
	}

	ordered := make([]Source, 0, len(sources))
	for _, s := range sources {
		if s.Withdrawable > 0 {
			ordered = append(ordered, s)
		}
	}

	slices.SortStableFunc(ordered, func(a, b Source) bool {
		return a.ContractID < b.ContractID
	})

	draws := []Draw{}
	remaining := target
	if balance > 0 {
		amount := min64(balance, remaining)
		draws = append(draws, Draw{Kind: entity.SourceBalance, Amount: amount})
		remaining -= amount
	}

	for _, s := range ordered {
		if remaining == 0 {
			break
		}

		amount := min64(s.Withdrawable, remaining)
		draws = append(draws, Draw{Kind: entity.SourceContract, ContractID: s.ContractID, Amount: amount})
		remaining -= amount
	}

	return draws, nil
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}

	return b
}
