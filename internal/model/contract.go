package model

type CreateContractRequest struct {
	Principal  string `json:"principal"`
	ReceiptURL string `json:"receipt_url"`
}

type CreateContractResponse struct {
	Contract Contract `json:"contract"`
}

type GetContractRequest struct {
	ID string `json:"id"`
}

type GetContractResponse struct {
	Contract Contract `json:"contract"`
}

type GetMyContractsRequest struct {
	Status string `json:"status"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

type GetMyContractsResponse struct {
	Contracts []Contract `json:"contracts"`
}

type GetListContractRequest struct {
	OwnerID string `json:"owner_id"`
	Status  string `json:"status"`
	Offset  int    `json:"offset"`
	Limit   int    `json:"limit"`
}

type GetListContractResponse struct {
	Contracts []Contract `json:"contracts"`
}

type ApproveContractRequest struct {
	ID string `json:"id"`
}

type ApproveContractResponse struct {
	Contract Contract `json:"contract"`
}

type RejectContractRequest struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type RejectContractResponse struct {
	Contract Contract `json:"contract"`
}
