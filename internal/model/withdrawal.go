package model

type WithdrawRequest struct {
	Amount string `json:"amount"`
	Pin    string `json:"pin"`
}

type WithdrawResponse struct {
	PayoutRequest PayoutRequest `json:"payout_request"`
}

type GetWithdrawalQuoteRequest struct {
	Amount string `json:"amount"`
}

type GetWithdrawalQuoteResponse struct {
	// Capacity is the most that can be withdrawn now.
	Capacity string `json:"capacity"`

	// SourceBreakdown previews how Amount would be split. It is empty if Amount is not given
	// or exceeds Capacity.
	SourceBreakdown []PayoutSource `json:"source_breakdown"`
}
