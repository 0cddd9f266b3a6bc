package domain

import (
	"database/sql"
	"encoding/json"
	"testing"

	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/internal/model"
	"github.com/manalab/backend/pkg/errorx"
	"github.com/manalab/backend/pkg/testutil"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"
)

func Test_withdrawalDomain_Withdraw_FirstPeriod(t *testing.T) {
	s := newSuite(t)
	d := s.withdrawalDomain()
	ctx := s.userCtx(testutil.Account1.ID)
	testutil.InsertActiveContract(s.ctx, 1, testutil.Account1.ID, 1_000_000, startTime)

	s.clock.Advance(29 * day)
	_, err := d.Withdraw(ctx, &model.WithdrawRequest{Amount: "3000", Pin: testutil.Pin1})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.InsufficientAvailableBalance})

	s.clock.Advance(day)
	resp, err := d.Withdraw(ctx, &model.WithdrawRequest{Amount: "3000", Pin: testutil.Pin1})
	require.NoError(t, err)
	require.Equal(t, "3000.00", resp.PayoutRequest.TotalAmount)
	require.Equal(t, string(entity.PayoutPending), resp.PayoutRequest.Status)
	require.Equal(t, []model.PayoutSource{
		{SourceID: "1", SourceKind: string(entity.SourceContract), Amount: "3000.00"},
	}, resp.PayoutRequest.SourceBreakdown)

	contract := s.contract(t, 1)
	require.Equal(t, int64(300_000), contract.TotalWithdrawn)
	require.Equal(t, 1, contract.WithdrawalCount)
	require.Equal(t, entity.ContractActive, contract.Status)
	require.True(t, contract.LastWithdrawalAt.Time.Equal(startTime.Add(30*day)))

	// The gate is closed again until another period passes.
	_, err = d.Withdraw(ctx, &model.WithdrawRequest{Amount: "1", Pin: testutil.Pin1})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.InsufficientAvailableBalance})

	require.Len(t, s.payoutRequests(t, testutil.Account1.ID), 1)
	messages := s.publisher.Messages()
	require.Len(t, messages, 1)
	require.Equal(t, "payout_request", messages[0].Topic)

	var event model.PayoutRequestCreatedEvent
	require.NoError(t, json.Unmarshal(messages[0].Pack.Msg, &event))
	require.Equal(t, resp.PayoutRequest.ID, event.PayoutRequest.ID)
	require.Equal(t, resp.PayoutRequest.ID, string(messages[0].Pack.Key))
}

func Test_withdrawalDomain_Withdraw_CompletesContract(t *testing.T) {
	s := newSuite(t)
	d := s.withdrawalDomain()
	ctx := s.userCtx(testutil.Account1.ID)
	testutil.InsertActiveContract(s.ctx, 1, testutil.Account1.ID, 1_000_000, startTime)

	// 3000 + 3000 + 3000 + 1000 releases the whole principal in four periods.
	for _, amount := range []string{"3000", "3000", "3000", "1000"} {
		s.clock.Advance(30 * day)
		_, err := d.Withdraw(ctx, &model.WithdrawRequest{Amount: amount, Pin: testutil.Pin1})
		require.NoError(t, err)
	}

	contract := s.contract(t, 1)
	require.Equal(t, entity.ContractCompleted, contract.Status)
	require.Equal(t, contract.Principal, contract.TotalWithdrawn)
	require.Equal(t, 4, contract.WithdrawalCount)

	s.clock.Advance(30 * day)
	_, err := d.Withdraw(ctx, &model.WithdrawRequest{Amount: "1", Pin: testutil.Pin1})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.InsufficientAvailableBalance})
}

func Test_withdrawalDomain_Withdraw_PooledAllocation(t *testing.T) {
	s := newSuite(t)
	d := s.withdrawalDomain()
	ctx := s.userCtx(testutil.Account1.ID)

	// Contract 1 has 100 left, contract 2 can release 300, and the balance holds 200.
	testutil.InsertActiveContract(s.ctx, 1, testutil.Account1.ID, 100_000, startTime,
		func(c *entity.DonationContract) {
			c.TotalWithdrawn = 90_000
			c.WithdrawalCount = 3
			c.LastWithdrawalAt = sql.NullTime{Time: startTime, Valid: true}
		})
	testutil.InsertActiveContract(s.ctx, 2, testutil.Account1.ID, 100_000, startTime)
	testutil.SetBalance(s.ctx, testutil.Account1.ID, 20_000)
	s.clock.Advance(30 * day)

	quote, err := d.GetQuote(ctx, &model.GetWithdrawalQuoteRequest{Amount: "500"})
	require.NoError(t, err)
	require.Equal(t, "600.00", quote.Capacity)
	require.Len(t, quote.SourceBreakdown, 3)

	resp, err := d.Withdraw(ctx, &model.WithdrawRequest{Amount: "500", Pin: testutil.Pin1})
	require.NoError(t, err)
	require.Equal(t, []model.PayoutSource{
		{SourceID: testutil.Account1.ID, SourceKind: string(entity.SourceBalance), Amount: "200.00"},
		{SourceID: "1", SourceKind: string(entity.SourceContract), Amount: "100.00"},
		{SourceID: "2", SourceKind: string(entity.SourceContract), Amount: "200.00"},
	}, resp.PayoutRequest.SourceBreakdown)
	require.Equal(t, quote.SourceBreakdown, resp.PayoutRequest.SourceBreakdown)

	require.Equal(t, int64(0), s.account(t, testutil.Account1.ID).Balance)
	require.Equal(t, entity.ContractCompleted, s.contract(t, 1).Status)

	second := s.contract(t, 2)
	require.Equal(t, entity.ContractActive, second.Status)
	require.Equal(t, int64(20_000), second.TotalWithdrawn)

	requests := s.payoutRequests(t, testutil.Account1.ID)
	require.Len(t, requests, 1)
	require.NoError(t, requests[0].Validate())
	require.Equal(t, int64(50_000), requests[0].TotalAmount)
}

func Test_withdrawalDomain_Withdraw_InsufficientLeavesNoTrace(t *testing.T) {
	s := newSuite(t)
	d := s.withdrawalDomain()
	ctx := s.userCtx(testutil.Account1.ID)
	testutil.InsertActiveContract(s.ctx, 1, testutil.Account1.ID, 1_000_000, startTime)
	testutil.SetBalance(s.ctx, testutil.Account1.ID, 10_000)
	s.clock.Advance(30 * day)

	_, err := d.Withdraw(ctx, &model.WithdrawRequest{Amount: "3100.01", Pin: testutil.Pin1})
	require.ErrorIs(t, err, errorx.Error{Code: errorx.InsufficientAvailableBalance})

	contract := s.contract(t, 1)
	require.Equal(t, int64(0), contract.TotalWithdrawn)
	require.Equal(t, 0, contract.WithdrawalCount)
	require.Equal(t, int64(0), contract.Version)
	require.Equal(t, int64(10_000), s.account(t, testutil.Account1.ID).Balance)
	require.Empty(t, s.payoutRequests(t, testutil.Account1.ID))
	require.Equal(t, 0, s.publishedCount())
}

func Test_withdrawalDomain_Withdraw_Rejections(t *testing.T) {
	s := newSuite(t)
	d := s.withdrawalDomain()
	testutil.InsertActiveContract(s.ctx, 1, testutil.Account1.ID, 1_000_000, startTime)
	testutil.InsertActiveContract(s.ctx, 2, testutil.Account3.ID, 1_000_000, startTime)
	s.clock.Advance(30 * day)

	tests := []struct {
		name    string
		userID  string
		req     *model.WithdrawRequest
		wantErr errorx.Code
	}{
		{
			name:    "invalid amount",
			userID:  testutil.Account1.ID,
			req:     &model.WithdrawRequest{Amount: "0", Pin: testutil.Pin1},
			wantErr: errorx.BadRequest,
		},
		{
			name:    "incorrect pin",
			userID:  testutil.Account1.ID,
			req:     &model.WithdrawRequest{Amount: "100", Pin: "000000"},
			wantErr: errorx.IncorrectPin,
		},
		{
			name:    "not verified",
			userID:  testutil.Account3.ID,
			req:     &model.WithdrawRequest{Amount: "100", Pin: testutil.Pin1},
			wantErr: errorx.NotVerified,
		},
		{
			name:    "pin not set",
			userID:  "user9",
			req:     &model.WithdrawRequest{Amount: "100", Pin: testutil.Pin1},
			wantErr: errorx.PinNotSet,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := d.Withdraw(s.userCtx(tt.userID), tt.req)
			require.ErrorIs(t, err, errorx.Error{Code: tt.wantErr})
		})
	}

	require.Equal(t, int64(0), s.contract(t, 1).TotalWithdrawn)
	require.Equal(t, int64(0), s.contract(t, 2).TotalWithdrawn)
	require.Equal(t, 1, s.account(t, testutil.Account1.ID).FailedAttempts)
}

func Test_withdrawalDomain_Withdraw_ExpiresLazily(t *testing.T) {
	s := newSuite(t)
	d := s.withdrawalDomain()
	ctx := s.userCtx(testutil.Account1.ID)
	testutil.InsertActiveContract(s.ctx, 1, testutil.Account1.ID, 1_000_000, startTime)
	testutil.SetBalance(s.ctx, testutil.Account1.ID, 10_000)

	s.clock.Advance(400 * day)
	resp, err := d.Withdraw(ctx, &model.WithdrawRequest{Amount: "100", Pin: testutil.Pin1})
	require.NoError(t, err)
	require.Len(t, resp.PayoutRequest.SourceBreakdown, 1)
	require.Equal(t, string(entity.SourceBalance), resp.PayoutRequest.SourceBreakdown[0].SourceKind)

	// The expiry commits together with the withdrawal that observed it.
	require.Equal(t, entity.ContractExpired, s.contract(t, 1).Status)
}

func Test_withdrawalDomain_Withdraw_Concurrent(t *testing.T) {
	s := newSuite(t)
	d := s.withdrawalDomain()
	testutil.InsertActiveContract(s.ctx, 1, testutil.Account1.ID, 1_000_000, startTime)
	s.clock.Advance(30 * day)

	const n = 5
	var eg errgroup.Group
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		i := i
		eg.Go(func() error {
			_, errs[i] = d.Withdraw(s.userCtx(testutil.Account1.ID),
				&model.WithdrawRequest{Amount: "3000", Pin: testutil.Pin1})
			return nil
		})
	}
	require.NoError(t, eg.Wait())

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}

		require.ErrorIs(t, err, errorx.Error{Code: errorx.InsufficientAvailableBalance})
	}

	require.Equal(t, 1, succeeded)
	require.Equal(t, int64(300_000), s.contract(t, 1).TotalWithdrawn)
	require.Len(t, s.payoutRequests(t, testutil.Account1.ID), 1)
}
