package domain

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/manalab/backend/internal/common"
	"github.com/manalab/backend/internal/domain/lifecycle"
	"github.com/manalab/backend/internal/domain/pingate"
	"github.com/manalab/backend/internal/entity"
	"github.com/manalab/backend/internal/repository"
	"github.com/manalab/backend/pkg/idutil"
	"github.com/manalab/backend/pkg/testutil"
	"github.com/manalab/backend/pkg/xcontext"
	"github.com/stretchr/testify/require"
)

var startTime = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

const day = 24 * time.Hour

type suite struct {
	ctx   context.Context
	clock *clockwork.FakeClock

	accountRepo       repository.AccountRepository
	contractRepo      repository.ContractRepository
	payoutRequestRepo repository.PayoutRequestRepository
	rewardRepo        repository.RewardRepository

	redisClient *testutil.MockRedisClient
	publisher   *testutil.MockPublisher

	pinVerifier *common.PinVerifier
}

func newSuite(t *testing.T) *suite {
	s := &suite{
		ctx:               testutil.CreateFixtureContext(),
		clock:             clockwork.NewFakeClockAt(startTime),
		accountRepo:       repository.NewAccountRepository(),
		contractRepo:      repository.NewContractRepository(),
		payoutRequestRepo: repository.NewPayoutRequestRepository(),
		rewardRepo:        repository.NewRewardRepository(),
		redisClient:       &testutil.MockRedisClient{},
		publisher:         &testutil.MockPublisher{},
	}

	s.pinVerifier = common.NewPinVerifier(s.accountRepo, pingate.New(xcontext.Configs(s.ctx).Pin), s.clock)
	return s
}

func (s *suite) userCtx(userID string) context.Context {
	return testutil.MockContextWithUserID(s.ctx, userID)
}

func (s *suite) adminCtx() context.Context {
	return testutil.MockContextWithAdmin(s.ctx, testutil.Admin)
}

func (s *suite) lifecycle() lifecycle.Manager {
	return lifecycle.NewManager(xcontext.Configs(s.ctx).Contract)
}

func (s *suite) contractDomain() *contractDomain {
	return NewContractDomain(s.contractRepo, s.accountRepo, s.lifecycle(), idutil.NewSequenceGenerator(1), s.clock)
}

func (s *suite) withdrawalDomain() *withdrawalDomain {
	return NewWithdrawalDomain(
		s.accountRepo, s.contractRepo, s.payoutRequestRepo, s.lifecycle(), s.pinVerifier, s.publisher, s.clock)
}

func (s *suite) payoutRequestDomain() *payoutRequestDomain {
	return NewPayoutRequestDomain(s.payoutRequestRepo, s.clock)
}

func (s *suite) rewardDomain() *rewardDomain {
	return NewRewardDomain(s.rewardRepo, s.accountRepo, s.redisClient, s.clock)
}

func (s *suite) pinDomain() *pinDomain {
	return NewPinDomain(s.accountRepo, s.pinVerifier)
}

func (s *suite) accountDomain() *accountDomain {
	return NewAccountDomain(s.accountRepo)
}

func (s *suite) account(t *testing.T, userID string) *entity.Account {
	account, err := s.accountRepo.GetByID(s.ctx, userID)
	require.NoError(t, err)
	return account
}

func (s *suite) contract(t *testing.T, id int64) *entity.DonationContract {
	contract, err := s.contractRepo.GetByID(s.ctx, id)
	require.NoError(t, err)
	return contract
}

func (s *suite) payoutRequests(t *testing.T, userID string) []entity.PayoutRequest {
	requests, err := s.payoutRequestRepo.GetList(s.ctx, repository.PayoutRequestFilter{OwnerID: userID})
	require.NoError(t, err)
	return requests
}

func (s *suite) publishedCount() int {
	return len(s.publisher.Messages())
}
