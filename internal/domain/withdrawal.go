package domain

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/manalab/backend/internal/common"
	"github.com/manalab/backend/internal/domain/allocation"
	"github.com/manalab/backend/internal/domain/lifecycle"
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/internal/model"
	"github.com/manalab/backend/internal/repository"
	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/idutil"
	"github.com/manalab/backend/pkg/money"
	"github.com/manalab/backend/pkg/pubsub"
	"github.com/manalab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type WithdrawalDomain interface {
	Withdraw(context.Context, *model.WithdrawRequest) (*model.WithdrawResponse, error)
	GetQuote(context.Context, *model.GetWithdrawalQuoteRequest) (*model.GetWithdrawalQuoteResponse, error)
}

type withdrawalDomain struct {
	accountRepo       repository.AccountRepository
	contractRepo      repository.ContractRepository
	payoutRequestRepo repository.PayoutRequestRepository
	lifecycle         lifecycle.Manager
	pinVerifier       *common.PinVerifier
	publisher         pubsub.Publisher
	clock             clockwork.Clock
}

func NewWithdrawalDomain(
	accountRepo repository.AccountRepository,
	contractRepo repository.ContractRepository,
	payoutRequestRepo repository.PayoutRequestRepository,
	lifecycleManager lifecycle.Manager,
	pinVerifier *common.PinVerifier,
	publisher pubsub.Publisher,
	clock clockwork.Clock,
) *withdrawalDomain {
	return &withdrawalDomain{
		accountRepo:       accountRepo,
		contractRepo:      contractRepo,
		payoutRequestRepo: payoutRequestRepo,
		lifecycle:         lifecycleManager,
		pinVerifier:       pinVerifier,
		publisher:         publisher,
		clock:             clock,
	}
}

// withdrawalPlan is the state a withdrawal is decided on, loaded inside its transaction.
type withdrawalPlan struct {
	account   *entity.Account
	contracts map[int64]*entity.DonationContract
	sources   []allocation.Source
}

func (d *withdrawalDomain) Withdraw(
	ctx context.Context, req *model.WithdrawRequest,
) (*model.WithdrawResponse, error) {
	payout, err := d.withdraw(ctx, req)
	common.PromCounters[common.WithdrawalTotal].WithLabelValues(common.ResultCode(err)).Inc()
	if err != nil {
		return nil, err
	}

	for _, source := range payout.SourceBreakdown {
		common.PromCounters[common.WithdrawnAmountTotal].
			WithLabelValues(string(source.SourceKind)).
			Add(float64(source.Amount))
	}

	d.publishCreated(ctx, payout)
	return &model.WithdrawResponse{PayoutRequest: convertPayoutRequest(payout)}, nil
}

func (d *withdrawalDomain) withdraw(
	ctx context.Context, req *model.WithdrawRequest,
) (*entity.PayoutRequest, error) {
	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	userID := xcontext.RequestUserID(ctx)
	if err := d.pinVerifier.Verify(ctx, userID, req.Pin); err != nil {
		return nil, err
	}

	return common.RetryOnConflict(ctx, "withdraw", func(ctx context.Context) (*entity.PayoutRequest, error) {
		return d.settle(ctx, userID, amount)
	})
}

// settle moves amount out of the balance and eligible contracts of the user and records the
// payout request, all in one transaction.
func (d *withdrawalDomain) settle(
	ctx context.Context, userID string, amount int64,
) (*entity.PayoutRequest, error) {
	now := d.clock.Now()

	ctx = xcontext.WithDBTransaction(ctx)
	defer xcontext.WithRollbackDBTransaction(ctx)

	plan, err := d.loadPlan(ctx, userID)
	if err != nil {
		return nil, err
	}

	if plan.account.KYCStatus != entity.KYCVerified {
		return nil, errorx.New(errorx.NotVerified, "Please complete the identity verification before withdrawing")
	}

	draws, err := allocation.Allocate(amount, plan.account.Balance, plan.sources)
	if err != nil {
		return nil, err
	}

	breakdown := entity.Array[entity.PayoutSource]{}
	for _, draw := range draws {
		switch draw.Kind {
		case entity.SourceBalance:
			plan.account.Balance -= draw.Amount
			if err := d.accountRepo.UpdateWithVersion(ctx, plan.account); err != nil {
				return nil, updateError(ctx, err, "account")
			}

			breakdown = append(breakdown, entity.PayoutSource{
				SourceID:   plan.account.ID,
				SourceKind: entity.SourceBalance,
				Amount:     draw.Amount,
			})

		case entity.SourceContract:
			contract := plan.contracts[draw.ContractID]
			if err := d.lifecycle.Settle(contract, draw.Amount, now); err != nil {
				return nil, err
			}

			if err := d.contractRepo.UpdateWithVersion(ctx, contract); err != nil {
				return nil, updateError(ctx, err, "contract")
			}

			breakdown = append(breakdown, entity.PayoutSource{
				SourceID:   idutil.FormatID(contract.ID),
				SourceKind: entity.SourceContract,
				Amount:     draw.Amount,
			})
		}
	}

	payout := &entity.PayoutRequest{
		Base:            entity.Base{ID: uuid.NewString()},
		OwnerID:         userID,
		SourceBreakdown: breakdown,
		TotalAmount:     amount,
		Status:          entity.PayoutPending,
		RequestedAt:     now,
	}

	if err := d.payoutRequestRepo.Create(ctx, payout); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create payout request: %v", err)
		return nil, errorx.Unknown
	}

	if _, err := xcontext.WithCommitDBTransaction(ctx); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot commit withdrawal: %v", err)
		return nil, errorx.Unknown
	}

	return payout, nil
}

func (d *withdrawalDomain) GetQuote(
	ctx context.Context, req *model.GetWithdrawalQuoteRequest,
) (*model.GetWithdrawalQuoteResponse, error) {
	plan, err := d.loadPlan(ctx, xcontext.RequestUserID(ctx))
	if err != nil {
		return nil, err
	}

	capacity := allocation.Capacity(plan.account.Balance, plan.sources)
	resp := &model.GetWithdrawalQuoteResponse{
		Capacity:        money.Format(capacity),
		SourceBreakdown: []model.PayoutSource{},
	}

	if req.Amount == "" {
		return resp, nil
	}

	amount, err := parseAmount("amount", req.Amount)
	if err != nil {
		return nil, err
	}

	if amount > capacity {
		return resp, nil
	}

	draws, err := allocation.Allocate(amount, plan.account.Balance, plan.sources)
	if err != nil {
		return nil, err
	}

	for _, draw := range draws {
		source := model.PayoutSource{
			SourceID:   plan.account.ID,
			SourceKind: string(draw.Kind),
			Amount:     money.Format(draw.Amount),
		}

		if draw.Kind == entity.SourceContract {
			source.SourceID = idutil.FormatID(draw.ContractID)
		}

		resp.SourceBreakdown = append(resp.SourceBreakdown, source)
	}

	return resp, nil
}

// loadPlan reads the account and active contracts of the user. Contracts whose term has
// passed or which are fully withdrawn are moved to their terminal state on the way; inside a
// transaction that write commits with the withdrawal, outside of it (quotes) only the
// in-memory state changes.
func (d *withdrawalDomain) loadPlan(ctx context.Context, userID string) (*withdrawalPlan, error) {
	now := d.clock.Now()

	account, err := d.accountRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found account")
		}

		xcontext.Logger(ctx).Errorf("Cannot get account: %v", err)
		return nil, errorx.Unknown
	}

	contracts, err := d.contractRepo.GetList(ctx, repository.ContractFilter{
		OwnerID: userID,
		Status:  []entity.ContractStatus{entity.ContractActive},
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get active contracts: %v", err)
		return nil, errorx.Unknown
	}

	plan := &withdrawalPlan{
		account:   account,
		contracts: map[int64]*entity.DonationContract{},
		sources:   []allocation.Source{},
	}

	inTx := xcontext.InTransaction(ctx)
	for i := range contracts {
		contract := &contracts[i]
		if d.lifecycle.Refresh(contract, now) {
			if inTx {
				if err := d.contractRepo.UpdateWithVersion(ctx, contract); err != nil {
					return nil, updateError(ctx, err, "contract")
				}
			}

			continue
		}

		eligible := d.lifecycle.Policy().Calculate(contract, now)
		if !eligible.Permitted || eligible.Withdrawable <= 0 {
			continue
		}

		plan.contracts[contract.ID] = contract
		plan.sources = append(plan.sources, allocation.Source{
			ContractID:   contract.ID,
			Withdrawable: eligible.Withdrawable,
		})
	}

	return plan, nil
}

func (d *withdrawalDomain) publishCreated(ctx context.Context, payout *entity.PayoutRequest) {
	pack, err := pubsub.NewJSONPack(payout.ID, model.PayoutRequestCreatedEvent{
		PayoutRequest: convertPayoutRequest(payout),
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot marshal payout event: %v", err)
		return
	}

	topic := xcontext.Configs(ctx).Kafka.PayoutEventsTopic
	if err := d.publisher.Publish(ctx, topic, pack); err != nil {
		// The request is committed and stays visible through the admin listing.
		xcontext.Logger(ctx).Errorf("Cannot publish payout request %s: %v", payout.ID, err)
	}
}
