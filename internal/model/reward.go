package model

import "time"

type ClaimRewardRequest struct {
	Code            string `json:"code"`
	UserDisplayName string `json:"user_display_name"`
	IdempotencyKey  string `json:"idempotency_key"`
}

type ClaimRewardResponse struct {
	Amount string `json:"amount"`
}

type GetRewardPoolRequest struct{}

type GetRewardPoolResponse struct {
	Pool RewardPool `json:"pool"`
}

type GetMyRewardClaimsRequest struct {
	Offset int `json:"offset"`
	Limit  int `json:"limit"`
}

type GetMyRewardClaimsResponse struct {
	Claims []RewardClaim `json:"claims"`
}

type RotateRewardPoolRequest struct {
	// Code is generated if empty.
	Code      string    `json:"code"`
	TotalPool string    `json:"total_pool"`
	ExpiresAt time.Time `json:"expires_at"`
}

type RotateRewardPoolResponse struct {
	Pool RewardPool `json:"pool"`
	Code string     `json:"code"`
}
