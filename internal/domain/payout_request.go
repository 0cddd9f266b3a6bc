package domain

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jonboulle/clockwork"
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/internal/model"
	"github.com/manalab/backend/internal/repository"
	"github.com/manalab/backend/pkg/enum"
	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/xcontext"
	"gorm.io/gorm"
)

type PayoutRequestDomain interface {
	GetMyList(context.Context, *model.GetMyPayoutRequestsRequest) (*model.GetMyPayoutRequestsResponse, error)
	GetList(context.Context, *model.GetListPayoutRequestRequest) (*model.GetListPayoutRequestResponse, error)
	Update(context.Context, *model.UpdatePayoutRequestRequest) (*model.UpdatePayoutRequestResponse, error)
}

type payoutRequestDomain struct {
	payoutRequestRepo repository.PayoutRequestRepository
	clock             clockwork.Clock
}

func NewPayoutRequestDomain(
	payoutRequestRepo repository.PayoutRequestRepository, clock clockwork.Clock,
) *payoutRequestDomain {
	return &payoutRequestDomain{payoutRequestRepo: payoutRequestRepo, clock: clock}
}

// payoutTransitions lists, for each target status, the statuses a request may leave to reach
// it. Completed and failed requests are immutable.
var payoutTransitions = map[entity.PayoutStatus][]entity.PayoutStatus{
	entity.PayoutProcessing: {entity.PayoutPending},
	entity.PayoutCompleted:  {entity.PayoutPending, entity.PayoutProcessing},
	entity.PayoutFailed:     {entity.PayoutPending, entity.PayoutProcessing},
}

func (d *payoutRequestDomain) GetMyList(
	ctx context.Context, req *model.GetMyPayoutRequestsRequest,
) (*model.GetMyPayoutRequestsResponse, error) {
	result, err := d.getList(ctx, xcontext.RequestUserID(ctx), req.Status, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	return &model.GetMyPayoutRequestsResponse{PayoutRequests: result}, nil
}

func (d *payoutRequestDomain) GetList(
	ctx context.Context, req *model.GetListPayoutRequestRequest,
) (*model.GetListPayoutRequestResponse, error) {
	result, err := d.getList(ctx, req.OwnerID, req.Status, req.Offset, req.Limit)
	if err != nil {
		return nil, err
	}

	return &model.GetListPayoutRequestResponse{PayoutRequests: result}, nil
}

func (d *payoutRequestDomain) Update(
	ctx context.Context, req *model.UpdatePayoutRequestRequest,
) (*model.UpdatePayoutRequestResponse, error) {
	status, err := enum.ToEnum[entity.PayoutStatus](req.Status)
	if err != nil {
		return nil, errorx.New(errorx.BadRequest, "Invalid status %s", req.Status)
	}

	from, ok := payoutTransitions[status]
	if !ok {
		return nil, errorx.New(errorx.BadRequest, "Cannot move a payout request to %s", status)
	}

	var processedAt sql.NullTime
	if status == entity.PayoutCompleted || status == entity.PayoutFailed {
		processedAt = sql.NullTime{Time: d.clock.Now(), Valid: true}
	}

	err = d.payoutRequestRepo.UpdateStatus(
		ctx, req.ID, from, status, xcontext.RequestUserID(ctx), processedAt, req.Note)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			xcontext.Logger(ctx).Errorf("Cannot update payout request: %v", err)
			return nil, errorx.Unknown
		}

		current, err := d.payoutRequestRepo.GetByID(ctx, req.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, errorx.New(errorx.NotFound, "Not found payout request")
			}

			xcontext.Logger(ctx).Errorf("Cannot get payout request: %v", err)
			return nil, errorx.Unknown
		}

		return nil, errorx.New(errorx.InvalidTransition,
			"Payout request is %s and cannot be moved to %s", current.Status, status)
	}

	// A failed payout keeps the settled contracts and balance as they are; the owner is
	// reimbursed through manual reconciliation.
	xcontext.Logger(ctx).Infof("Payout request %s was marked %s by %s",
		req.ID, status, xcontext.RequestUserID(ctx))
	return &model.UpdatePayoutRequestResponse{}, nil
}

func (d *payoutRequestDomain) getList(
	ctx context.Context, ownerID, status string, offset, limit int,
) ([]model.PayoutRequest, error) {
	limit, err := checkLimit(ctx, limit)
	if err != nil {
		return nil, err
	}

	statuses, err := parseStatusFilter[entity.PayoutStatus](status)
	if err != nil {
		return nil, err
	}

	requests, err := d.payoutRequestRepo.GetList(ctx, repository.PayoutRequestFilter{
		OwnerID: ownerID,
		Status:  statuses,
		Offset:  offset,
		Limit:   limit,
	})
	if err != nil {
		xcontext.Logger(ctx).Errorf("Cannot get payout request list: %v", err)
		return nil, errorx.Unknown
	}

	result := []model.PayoutRequest{}
	for i := range requests {
		result = append(result, convertPayoutRequest(&requests[i]))
	}

	return result, nil
}
