package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/manalab/backend/internal/common"
	"github.com/manalab/backend/internal/middleware"
	"github.com/manalab/backend/pkg/authenticator"
	"github.com/manalab/backend/pkg/prometheus"
	"github.com/manalab/backend/pkg/router"
	"github.com/manalab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"
)

func (s *srv) startApi(*cli.Context) error {
	defer s.close()

	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.loadRedisClient(); err != nil {
		return err
	}

	if err := s.loadPublisher(); err != nil {
		return err
	}

	s.loadRepos()
	if err := s.loadDomains(); err != nil {
		return err
	}

	s.loadRouter()

	cfg := xcontext.Configs(s.ctx)
	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%s", cfg.ApiServer.Host, cfg.ApiServer.Port),
		Handler:           middleware.AllowCors(cfg.ApiServer.AllowOrigins, s.router.Handler()),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() error {
		xcontext.Logger(s.ctx).Infof("Starting server on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	eg.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		xcontext.Logger(s.ctx).Infof("Stopping server")
		return httpServer.Shutdown(shutdownCtx)
	})

	return eg.Wait()
}

func (s *srv) loadRouter() {
	cfg := xcontext.Configs(s.ctx)

	s.router = router.New(s.ctx)
	s.router.AddCloser(middleware.Logger())
	s.router.AddCloser(middleware.Prometheus())
	s.router.Static(http.MethodGet, "/metrics", prometheus.NewHandler(common.PromCollectors()...))

	engine := authenticator.NewTokenEngine[xcontext.AccessToken](cfg.Auth.TokenSecret, 0)
	authVerifier := middleware.NewAuthVerifier(engine)

	// These following APIs need an access token issued by the identity service.
	userRouter := s.router.Branch()
	userRouter.Before(authVerifier.Middleware())
	userRouter.Before(middleware.IdempotencyKey())
	{
		// Account API
		router.GET(userRouter, "/getMyAccount", s.accountDomain.GetMyAccount)
		router.POST(userRouter, "/setPin", s.pinDomain.SetPin)
		router.POST(userRouter, "/changePin", s.pinDomain.ChangePin)
		router.POST(userRouter, "/verifyPin", s.pinDomain.VerifyPin)

		// Contract API
		router.POST(userRouter, "/createContract", s.contractDomain.Create)
		router.GET(userRouter, "/getContract", s.contractDomain.Get)
		router.GET(userRouter, "/getMyContracts", s.contractDomain.GetMyList)

		// Withdrawal API
		router.GET(userRouter, "/getWithdrawalQuote", s.withdrawalDomain.GetQuote)
		router.POST(userRouter, "/withdraw", s.withdrawalDomain.Withdraw)
		router.GET(userRouter, "/getMyPayoutRequests", s.payoutRequestDomain.GetMyList)

		// Reward API
		router.POST(userRouter, "/claimReward", s.rewardDomain.Claim)
		router.GET(userRouter, "/getMyRewardClaims", s.rewardDomain.GetMyClaims)
	}

	// These following APIs are used by the administrator and fulfillment channels.
	adminRouter := userRouter.Branch()
	adminRouter.Before(middleware.OnlyAdmin())
	{
		router.GET(adminRouter, "/getListContract", s.contractDomain.GetList)
		router.POST(adminRouter, "/approveContract", s.contractDomain.Approve)
		router.POST(adminRouter, "/rejectContract", s.contractDomain.Reject)
		router.GET(adminRouter, "/getListPayoutRequest", s.payoutRequestDomain.GetList)
		router.POST(adminRouter, "/updatePayoutRequest", s.payoutRequestDomain.Update)
		router.POST(adminRouter, "/rotateRewardPool", s.rewardDomain.Rotate)
		router.POST(adminRouter, "/updateKYCStatus", s.accountDomain.UpdateKYCStatus)
	}

	// Public API.
	router.GET(s.router, "/getRewardPool", s.rewardDomain.GetPool)
}
