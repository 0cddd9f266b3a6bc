package model

type Eligibility struct {
	Permitted      bool   `json:"permitted"`
	Withdrawable   string `json:"withdrawable"`
	Estimate       string `json:"estimate"`
	MonthsElapsed  int    `json:"months_elapsed"`
	NextEligibleAt string `json:"next_eligible_at,omitempty"`
}

type Contract struct {
	ID               string       `json:"id"`
	OwnerID          string       `json:"owner_id"`
	Principal        string       `json:"principal"`
	Status           string       `json:"status"`
	StartAt          string       `json:"start_at,omitempty"`
	EndAt            string       `json:"end_at,omitempty"`
	LastWithdrawalAt string       `json:"last_withdrawal_at,omitempty"`
	WithdrawalCount  int          `json:"withdrawal_count"`
	TotalWithdrawn   string       `json:"total_withdrawn"`
	ReceiptURL       string       `json:"receipt_url,omitempty"`
	ReviewedBy       string       `json:"reviewed_by,omitempty"`
	RejectReason     string       `json:"reject_reason,omitempty"`
	CreatedAt        string       `json:"created_at"`
	Eligibility      *Eligibility `json:"eligibility,omitempty"`
}

type PayoutSource struct {
	SourceID   string `json:"source_id"`
	SourceKind string `json:"source_kind"`
	Amount     string `json:"amount"`
}

type PayoutRequest struct {
	ID              string         `json:"id"`
	OwnerID         string         `json:"owner_id"`
	SourceBreakdown []PayoutSource `json:"source_breakdown"`
	TotalAmount     string         `json:"total_amount"`
	Status          string         `json:"status"`
	RequestedAt     string         `json:"requested_at"`
	ProcessedAt     string         `json:"processed_at,omitempty"`
	ProcessedBy     string         `json:"processed_by,omitempty"`
	Note            string         `json:"note,omitempty"`
}

// RewardPool never carries the code, which is distributed out of band.
type RewardPool struct {
	ID            string `json:"id"`
	Generation    int64  `json:"generation"`
	TotalPool     string `json:"total_pool"`
	RemainingPool string `json:"remaining_pool"`
	ExpiresAt     string `json:"expires_at"`
	IsActive      bool   `json:"is_active"`
}

type RewardClaim struct {
	ID              string `json:"id"`
	PoolID          string `json:"pool_id"`
	Code            string `json:"code"`
	UserDisplayName string `json:"user_display_name"`
	Amount          string `json:"amount"`
	ClaimedAt       string `json:"claimed_at"`
}

type Account struct {
	ID             string `json:"id"`
	DisplayName    string `json:"display_name"`
	Balance        string `json:"balance"`
	KYCStatus      string `json:"kyc_status"`
	PinSet         bool   `json:"pin_set"`
	FailedAttempts int    `json:"failed_attempts"`
	LockedUntil    string `json:"locked_until,omitempty"`
}
