package dto

type InitiateSignInRequest struct {
	State        string `form:"state" binding:"required"`
	DeviceID     string `form:"device_id" binding:"required"`
	AuthRedirect string `form:"auth_redirect" binding:"required,url"`
}

type CompletePairingRequest struct {
	DeviceID    string `json:"device_id" binding:"required"`
	State       string `json:"state" binding:"required"`
	AcceptTerms bool   `json:"accept_terms"`
}

type RetrieveTokenRequest struct {
	DeviceID string `form:"device_id" binding:"required"`
	State    string `form:"state" binding:"required"`
}

type CompletePairingResponse struct {
	Success     bool   `json:"success"`
	Token       string `json:"token"`
	RedirectURL string `json:"redirect_url"`
}

type RetrieveTokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}
