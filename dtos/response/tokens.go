package response

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type LoginResponse struct {
	// RequiresTOTP signals the caller to follow up with the one-time
	// code before any tokens are issued.
	RequiresTOTP bool    `json:"requires_totp"`
	Tokens       *Tokens `json:"tokens,omitempty"`
}
