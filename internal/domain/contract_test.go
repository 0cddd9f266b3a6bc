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

func Test_contractDomain_Create(t *testing.T) {
	s := newSuite(t)
	d := s.contractDomain()

	tests := []struct {
		name    string
		userID  string
		req     *model.CreateContractRequest
		wantErr errorx.Code
	}{
		{
			name:   "happy case",
			userID: testutil.Account1.ID,
			req:    &model.CreateContractRequest{Principal: "10000", ReceiptURL: "https://receipt/1"},
		},
		{
			name:   "first contract of a new user",
			userID: "user9",
			req:    &model.CreateContractRequest{Principal: "250.50"},
		},
		{
			name:    "invalid amount",
			userID:  testutil.Account1.ID,
			req:     &model.CreateContractRequest{Principal: "abc"},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "too precise amount",
			userID:  testutil.Account1.ID,
			req:     &model.CreateContractRequest{Principal: "100.001"},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "negative amount",
			userID:  testutil.Account1.ID,
			req:     &model.CreateContractRequest{Principal: "-5"},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "below the minimum principal",
			userID:  testutil.Account1.ID,
			req:     &model.CreateContractRequest{Principal: "0.50"},
			wantErr: errorx.BadRequest,
		},
		{
			name:   "at the maximum principal",
			userID: testutil.Account1.ID,
			req:    &model.CreateContractRequest{Principal: "1000000000"},
		},
		{
			name:    "above the maximum principal",
			userID:  testutil.Account1.ID,
			req:     &model.CreateContractRequest{Principal: "1000000000.01"},
			wantErr: errorx.BadRequest,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := d.Create(s.userCtx(tt.userID), tt.req)
			if tt.wantErr != 0 {
				require.ErrorIs(t, err, errorx.Error{Code: tt.wantErr})
				return
			}

			require.NoError(t, err)
			require.Equal(t, string(entity.ContractPending), resp.Contract.Status)
			require.Equal(t, tt.userID, resp.Contract.OwnerID)
			require.Equal(t, "0.00", resp.Contract.TotalWithdrawn)
			require.Empty(t, resp.Contract.StartAt)

			// The owner account is created on the first request.
			s.account(t, tt.userID)
		})
	}
}

func Test_contractDomain_Review(t *testing.T) {
	s := newSuite(t)
	d := s.contractDomain()
	userCtx := s.userCtx(testutil.Account1.ID)
	adminCtx := s.adminCtx()

	first, err := d.Create(userCtx, &model.CreateContractRequest{Principal: "10000"})
	require.NoError(t, err)
	second, err := d.Create(userCtx, &model.CreateContractRequest{Principal: "500"})
	require.NoError(t, err)

	approved, err := d.Approve(adminCtx, &model.ApproveContractRequest{ID: first.Contract.ID})
	require.NoError(t, err)
	require.Equal(t, string(entity.ContractActive), approved.Contract.Status)
	require.Equal(t, startTime.Format(time.RFC3339), approved.Contract.StartAt)
	require.Equal(t, startTime.AddDate(1, 0, 0).Format(time.RFC3339), approved.Contract.EndAt)
	require.Equal(t, testutil.Admin, approved.Contract.ReviewedBy)
	require.NotNil(t, approved.Contract.Eligibility)
	require.False(t, approved.Contract.Eligibility.Permitted)
	require.Equal(t, startTime.Add(30*day).Format(time.RFC3339), approved.Contract.Eligibility.NextEligibleAt)

	_, err = d.Approve(adminCtx, &model.ApproveContractRequest{ID: first.Contract.ID})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.InvalidTransition})

	_, err = d.Reject(adminCtx, &model.RejectContractRequest{ID: first.Contract.ID, Reason: "duplicate"})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.InvalidTransition})

	_, err = d.Reject(adminCtx, &model.RejectContractRequest{ID: second.Contract.ID})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	rejected, err := d.Reject(adminCtx, &model.RejectContractRequest{ID: second.Contract.ID, Reason: "invalid receipt"})
	require.NoError(t, err)
	require.Equal(t, string(entity.ContractRejected), rejected.Contract.Status)
	require.Equal(t, "invalid receipt", rejected.Contract.RejectReason)
	require.Nil(t, rejected.Contract.Eligibility)

	_, err = d.Approve(adminCtx, &model.ApproveContractRequest{ID: second.Contract.ID})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.ContractNotActive})

	_, err = d.Approve(adminCtx, &model.ApproveContractRequest{ID: "999"})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.NotFound})

	_, err = d.Approve(adminCtx, &model.ApproveContractRequest{ID: "abc"})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	stored := s.contract(t, 1)
	require.Equal(t, entity.ContractActive, stored.Status)
	require.Equal(t, int64(1), stored.Version)
}

func Test_contractDomain_Get(t *testing.T) {
	s := newSuite(t)
	d := s.contractDomain()
	testutil.InsertActiveContract(s.ctx, 7, testutil.Account1.ID, 1_000_000, startTime)

	_, err := d.Get(s.userCtx(testutil.Account2.ID), &model.GetContractRequest{ID: "7"})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.NotFound})

	s.clock.Advance(45 * day)
	resp, err := d.Get(s.userCtx(testutil.Account1.ID), &model.GetContractRequest{ID: "7"})
	require.NoError(t, err)
	require.Equal(t, "10000.00", resp.Contract.Principal)
	require.True(t, resp.Contract.Eligibility.Permitted)
	require.Equal(t, "3000.00", resp.Contract.Eligibility.Withdrawable)
	require.Equal(t, "4500.00", resp.Contract.Eligibility.Estimate)
	require.Equal(t, 1, resp.Contract.Eligibility.MonthsElapsed)

	// Admins see every contract, and the term is over one year later.
	s.clock.Advance(365 * day)
	resp, err = d.Get(s.adminCtx(), &model.GetContractRequest{ID: "7"})
	require.NoError(t, err)
	require.Equal(t, string(entity.ContractExpired), resp.Contract.Status)
	require.Nil(t, resp.Contract.Eligibility)
}

func Test_contractDomain_GetMyList(t *testing.T) {
	s := newSuite(t)
	d := s.contractDomain()
	testutil.InsertActiveContract(s.ctx, 100, testutil.Account1.ID, 1_000_000, startTime)
	testutil.InsertActiveContract(s.ctx, 101, testutil.Account2.ID, 1_000_000, startTime)

	ctx := s.userCtx(testutil.Account1.ID)
	_, err := d.Create(ctx, &model.CreateContractRequest{Principal: "200"})
	require.NoError(t, err)

	resp, err := d.GetMyList(ctx, &model.GetMyContractsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Contracts, 2)
	require.Equal(t, "1", resp.Contracts[0].ID)
	require.Equal(t, "100", resp.Contracts[1].ID)

	resp, err = d.GetMyList(ctx, &model.GetMyContractsRequest{Status: "active"})
	require.NoError(t, err)
	require.Len(t, resp.Contracts, 1)
	require.Equal(t, "100", resp.Contracts[0].ID)

	_, err = d.GetMyList(ctx, &model.GetMyContractsRequest{Status: "unknown"})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	_, err = d.GetMyList(ctx, &model.GetMyContractsRequest{Limit: 1000})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.BadRequest})

	all, err := d.GetList(s.adminCtx(), &model.GetListContractRequest{Status: "active"})
	require.NoError(t, err)
	require.Len(t, all.Contracts, 2)
}
