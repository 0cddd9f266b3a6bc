package domain

import (
	"testing"
	"time"

	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/internal/model"
	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
)

// withdrawOnce creates one pending payout request of 1.00 for userID.
func (s *suite) withdrawOnce(t *testing.T, userID string) string {
	testutil.SetBalance(s.ctx, userID, 100)
	resp, err := s.withdrawalDomain().Withdraw(s.userCtx(userID),
		&model.WithdrawRequest{Amount: "1", Pin: testutil.Pin1})
	require.NoError(t, err)
	return resp.PayoutRequest.ID
}

func Test_payoutRequestDomain_Update(t *testing.T) {
	s := newSuite(t)
	d := s.payoutRequestDomain()
	id := s.withdrawOnce(t, testutil.Account1.ID)

	steps := []struct {
		name    string
		id      string
		status  string
		wantErr errorx.Code
	}{
		{name: "invalid status", id: id, status: "done", wantErr: errorx.BadRequest},
		{name: "back to pending", id: id, status: "pending", wantErr: errorx.BadRequest},
		{name: "not found", id: "unknown", status: "processing", wantErr: errorx.NotFound},
		{name: "processing", id: id, status: "processing"},
		{name: "processing twice", id: id, status: "processing", wantErr: errorx.InvalidTransition},
		{name: "completed", id: id, status: "completed"},
		{name: "terminal", id: id, status: "failed", wantErr: errorx.InvalidTransition},
	}

	for _, tt := range steps {
		_, err := d.Update(s.adminCtx(), &model.UpdatePayoutRequestRequest{
			ID:     tt.id,
			Status: tt.status,
			Note:   "bank transfer " + tt.name,
		})
		if tt.wantErr != 0 {
			require.ErrorIs(t, err, errorx.Error{Code: tt.wantErr}, tt.name)
			continue
		}

		require.NoError(t, err, tt.name)
	}

	stored, err := s.payoutRequestRepo.GetByID(s.ctx, id)
	require.NoError(t, err)
	require.Equal(t, entity.PayoutCompleted, stored.Status)
	require.Equal(t, testutil.Admin, stored.ProcessedBy)
	require.Equal(t, "bank transfer completed", stored.Note)
	require.True(t, stored.ProcessedAt.Valid)
	require.True(t, stored.ProcessedAt.Time.Equal(startTime))
}

func Test_payoutRequestDomain_Update_FailedKeepsSettlement(t *testing.T) {
	s := newSuite(t)
	d := s.payoutRequestDomain()
	id := s.withdrawOnce(t, testutil.Account1.ID)

	_, err := d.Update(s.adminCtx(), &model.UpdatePayoutRequestRequest{ID: id, Status: "failed"})
	require.NoError(t, err)

	// The balance drawn by the request is not returned.
	require.Equal(t, int64(0), s.account(t, testutil.Account1.ID).Balance)
}

func Test_payoutRequestDomain_GetList(t *testing.T) {
	s := newSuite(t)
	d := s.payoutRequestDomain()

	first := s.withdrawOnce(t, testutil.Account1.ID)
	s.clock.Advance(time.Minute)
	second := s.withdrawOnce(t, testutil.Account1.ID)
	s.clock.Advance(time.Minute)
	other := s.withdrawOnce(t, testutil.Account2.ID)

	_, err := d.Update(s.adminCtx(), &model.UpdatePayoutRequestRequest{ID: first, Status: "processing"})
	require.NoError(t, err)

	mine, err := d.GetMyList(s.userCtx(testutil.Account1.ID), &model.GetMyPayoutRequestsRequest{})
	require.NoError(t, err)
	require.Len(t, mine.PayoutRequests, 2)
	require.Equal(t, second, mine.PayoutRequests[0].ID)
	require.Equal(t, first, mine.PayoutRequests[1].ID)
	require.Equal(t, "1.00", mine.PayoutRequests[0].TotalAmount)

	pending, err := d.GetMyList(s.userCtx(testutil.Account1.ID), &model.GetMyPayoutRequestsRequest{Status: "pending"})
	require.NoError(t, err)
	require.Len(t, pending.PayoutRequests, 1)
	require.Equal(t, second, pending.PayoutRequests[0].ID)

	_, err = d.GetMyList(s.userCtx(testutil.Account1.ID), &model.GetMyPayoutRequestsRequest{Status: "unknown"})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	_, err = d.GetMyList(s.userCtx(testutil.Account1.ID), &model.GetMyPayoutRequestsRequest{Limit: 51})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	all, err := d.GetList(s.adminCtx(), &model.GetListPayoutRequestRequest{})
	require.NoError(t, err)
	require.Len(t, all.PayoutRequests, 3)
	require.Equal(t, other, all.PayoutRequests[0].ID)

	byOwner, err := d.GetList(s.adminCtx(), &model.GetListPayoutRequestRequest{OwnerID: testutil.Account2.ID})
	require.NoError(t, err)
	require.Len(t, byOwner.PayoutRequests, 1)
	require.Equal(t, testutil.Account2.ID, byOwner.PayoutRequests[0].OwnerID)
}
