package domain

import (
	"context"
	"errors"

	"github.com/jonboulle/clockwork"
	"github.com/manalab/backend/internal/common"
	"github.com/manalab/backend/internal/domain/lifecycle"
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/internal/model"
	"github.com/manalab/backend/internal/repository"
	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/idutil"
	"github.com/manalab/backend/pkg/money"
	"github.com/manalab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type ContractDomain interface {
	Create(context.Context, *model.CreateContractRequest) (*model.CreateContractResponse, error)
	Get(context.Context, *model.GetContractRequest) (*model.GetContractResponse, error)
	GetMyList(context.Context, *model.GetMyContractsRequest) (*model.GetMyContractsResponse, error)
	GetList(context.Context, *model.GetListContractRequest) (*model.GetListContractResponse, error)
	Approve(context.Context, *model.ApproveContractRequest) (*model.ApproveContractResponse, error)
	Reject(context.Context, *model.RejectContractRequest) (*model.RejectContractResponse, error)
}

type contractDomain struct {
	contractRepo repository.ContractRepository
	accountRepo  repository.AccountRepository
	lifecycle    lifecycle.Manager
	idGenerator  idutil.Generator
	clock        clockwork.Clock
}

func NewContractDomain(
	contractRepo repository.ContractRepository,
	accountRepo repository.AccountRepository,
	lifecycleManager lifecycle.Manager,
	idGenerator idutil.Generator,
	clock clockwork.Clock,
) *contractDomain {
	return &contractDomain{
		contractRepo: contractRepo,
		accountRepo:  accountRepo,
		lifecycle:    lifecycleManager,
		idGenerator:  idGenerator,
		clock:        clock,
	}
}

func (d *contractDomain) Create(
	ctx context.Context, req *model.CreateContractRequest,
) (*model.CreateContractResponse, error) {
	principal, err := parseAmount("principal", req.Principal)
	if err != nil {
		return nil, err
	}

	cfg := xcontext.Configs(ctx).Contract
	if principal < cfg.MinPrincipal {
		return nil, errorx.New(errorx.BadRequest, "The principal must be at least %s", money.Format(cfg.MinPrincipal))
	}

	if principal > cfg.MaxPrincipal {
		return nil, errorx.New(errorx.BadRequest, "The principal must be at most %s", money.Format(cfg.MaxPrincipal))
	}

	account, err := loadOrCreateAccount(ctx, d.accountRepo)
	if err != nil {
		return nil, err
	}

	contract := &entity.DonationContract{
		SnowFlakeBase: entity.SnowFlakeBase{ID: d.idGenerator.Generate()},
		OwnerID:       account.ID,
		Principal:     principal,
		Status:        entity.ContractPending,
		ReceiptURL:    req.ReceiptURL,
	}

	if err := d.contractRepo.Create(ctx, contract); err != nil {
		xcontext.Logger(ctx).Errorf("Cannot create contract: %v", err)
		return nil, errorx.Unknown
	}

	return &model.CreateContractResponse{Contract: convertContract(contract, nil)}, nil
}

func (d *contractDomain) Get(
	ctx context.Context, req *model.GetContractRequest,
) (*model.GetContractResponse, error) {
	contract, err := d.getByID(ctx, req.ID)
	if err != nil {
		return nil, err
	}

	token := xcontext.RequestAccessToken(ctx)
	if contract.OwnerID != xcontext.RequestUserID(ctx) && token.Role != xcontext.Configs(ctx).Auth.AdminRole {
		return nil, errorx.New(errorx.NotFound, "Not found contract")
	}

	return &model.GetContractResponse{Contract: d.view(contract)}, nil
}

func (d *contractDomain) GetMyList(
	ctx context.Context, req *model.GetMyContractsRequest,
) (*model.GetMyContractsResponse, error) {
	contracts, err := d.getList(ctx, xcontext.RequestUserID(ctx), req.Status, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	return &model.GetMyContractsResponse{Contracts: contracts}, nil
}

func (d *contractDomain) GetList(
	ctx context.Context, req *model.GetListContractRequest,
) (*model.GetListContractResponse, error) {
	contracts, err := d.getList(ctx, req.OwnerID, req.Status, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	return &model.GetListContractResponse{Contracts: contracts}, nil
}

func (d *contractDomain) Approve(
	ctx context.Context, req *model.ApproveContractRequest,
) (*model.ApproveContractResponse, error) {
	contract, err := d.review(ctx, req.ID, func(c *entity.DonationContract) error {
		return d.lifecycle.Approve(c, xcontext.RequestUserID(ctx), d.clock.Now())
	})
	if err != nil {
		return nil, err
	}

	xcontext.Logger(ctx).Infof("Contract %d was approved by %s", contract.ID, contract.ReviewedBy)
	return &model.ApproveContractResponse{Contract: d.view(contract)}, nil
}

func (d *contractDomain) Reject(
	ctx context.Context, req *model.RejectContractRequest,
) (*model.RejectContractResponse, error) {
	if req.Reason == "" {
		return nil, errorx.New(errorx.BadRequest, "Reject reason is required")
	}

	contract, err := d.review(ctx, req.ID, func(c *entity.DonationContract) error {
		return d.lifecycle.Reject(c, xcontext.RequestUserID(ctx), req.Reason)
	})
	if err != nil {
		return nil, err
	}

	xcontext.Logger(ctx).Infof("Contract %d was rejected by %s", contract.ID, contract.ReviewedBy)
	return &model.RejectContractResponse{Contract: d.view(contract)}, nil
}

// review applies an administrator decision to a pending contract.
func (d *contractDomain) review(
	ctx context.Context, id string, transition func(*entity.DonationContract) error,
) (*entity.DonationContract, error) {
	contractID, err := idutil.ParseID(id)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid contract id")
	}

	return common.RetryOnConflict(ctx, "review_contract", func(ctx context.Context) (*entity.DonationContract, error) {
		contract, err := d.contractRepo.GetByID(ctx, contractID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "Not found contract")
			}

			xcontext.Logger(ctx).Errorf("Cannot get contract: %v", err)
			return nil, errorx.Unknown
		}

		if err := transition(contract); err != nil {
			return nil, err
		}

		if err := d.contractRepo.UpdateWithVersion(ctx, contract); err != nil {
			return nil, updateError(ctx, err, "contract")
		}

		return contract, nil
	})
}

func (d *contractDomain) getByID(ctx context.Context, id string) (*entity.DonationContract, error) {
	contractID, err := idutil.ParseID(id)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid contract id")
	}

	contract, err := d.contractRepo.GetByID(ctx, contractID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errorx.New(errorx.NotFound, "Not found contract")
		}

		xcontext.Logger(ctx).Errorf("Cannot get contract: %v", err)
		return nil, errorx.Unknown
	}

	return contract, nil
}

func (d *contractDomain) getList(
	ctx context.Context, ownerID, status string, offset, limit int,
) ([]model.Contract, error) {
	limit, err := checkLimit(ctx, limit)
	if err != nil {
		return nil, err
	}

	statuses, err := parseStatusFilter[entity.ContractStatus](status)
	if err != nil {
		return nil, err
	}

	contracts, err := d.contractRepo.GetList(ctx, repository.ContractFilter{
		OwnerID: ownerID,
		Status:  statuses,
		Offset:  offset,
		Limit:   limit,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get contract list: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.Contract{}
	for i := range contracts {
		result = append(result, d.view(&contracts[i]))
	}

	return result, nil
}

// view renders a contract as it is now. A contract whose term has passed is shown as
// expired even before the next write persists the transition.
func (d *contractDomain) view(contract *entity.DonationContract) model.Contract {
	now := d.clock.Now()
	d.lifecycle.Refresh(contract, now)
	if contract.Status != entity.ContractActive {
		return convertContract(contract, nil)
	}

	return convertContract(contract, convertEligibility(d.lifecycle.Policy().Calculate(contract, now)))
}
