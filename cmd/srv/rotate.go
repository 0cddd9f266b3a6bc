package main

import (
	"github.com/manalab/backend/internal/model"
	"github.com/manalab/backend/pkg/xcontext"
	"github.com/urfave/cli/v2"
)

func (s *srv) startRotate(cctx *cli.Context) error {
	defer s.close()

	if err := s.loadDatabase(); err != nil {
		return err
	}

	if err := s.loadRedisClient(); err != nil {
		return err
	}

	s.loadRepos()
	if err := s.loadDomains(); err != nil {
		return err
	}

	ctx := xcontext.WithAccessToken(s.ctx, xcontext.AccessToken{
		ID:   cctx.String("operator"),
		Role: xcontext.Configs(s.ctx).Auth.AdminRole,
	})

	resp, err := s.rewardDomain.Rotate(ctx, &model.RotateRewardPoolRequest{
		Code:      cctx.String("code"),
		TotalPool: cctx.String("total"),
		ExpiresAt: s.clock.Now().Add(cctx.Duration("expires-in")),
	})
	if err != nil {
		return err
	}

	xcontext.Logger(s.ctx).Infof("Generation %d is open until %s with code %s",
		resp.Pool.Generation, resp.Pool.ExpiresAt, resp.Code)
	return nil
}
