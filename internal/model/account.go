package model

type GetMyAccountRequest struct{}

type GetMyAccountResponse struct {
	Account Account `json:"account"`
}

type UpdateKYCStatusRequest struct {
	UserID string `json:"user_id"`
	Status string `json:"status"`
}

type UpdateKYCStatusResponse struct{}

type SetPinRequest struct {
	Pin string `json:"pin"`
}

type SetPinResponse struct{}

type ChangePinRequest struct {
	OldPin string `json:"old_pin"`
	NewPin string `json:"new_pin"`
}

type ChangePinResponse struct{}

type VerifyPinRequest struct {
	Pin string `json:"pin"`
}

type VerifyPinResponse struct{}
