package model

type GetMyPayoutRequestsRequest struct {
	Status string `json:"status"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetMyPayoutRequestsResponse struct {
	PayoutRequests []PayoutRequest `json:"payout_requests"`
}

type GetListPayoutRequestRequest struct {
	OwnerID string `json:"owner_id"`
	Status  string `json:"status"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

type GetListPayoutRequestResponse struct {
	PayoutRequests []PayoutRequest `json:"payout_requests"`
}

type UpdatePayoutRequestRequest struct {
	ID     string `json:"id"`
	Status string `json:"status"`
	Note   string `json:"note"`
}

type UpdatePayoutRequestResponse struct{}

// PayoutRequestCreatedEvent is published to the payout fulfillment channel once the request
// is committed.
type PayoutRequestCreatedEvent struct {
	PayoutRequest PayoutRequest `json:"payout_request"`
}
