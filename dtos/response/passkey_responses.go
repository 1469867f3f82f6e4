package response

import "time"

// PasskeySummary is the safe projection of a stored credential: no public
// key or counter material crosses the API.
type PasskeySummary struct {
	Id           uint       `json:"id"`
	Name         string     `json:"name"`
	CredentialId string     `json:"credential_id"` // base64url
	Transports   []string   `json:"transports,omitempty"`
	CreatedAt    *time.Time `json:"created_at"`
	LastUsedAt   *time.Time `json:"last_used_at,omitempty"`
}

type FinishRegistrationResponse struct {
	Success    bool            `json:"success"`
	Credential *PasskeySummary `json:"credential"`
}

type BeginLoginResponse struct {
	// SessionId is only set for anonymous (discoverable) ceremonies and
	// must be echoed back on finish.
	SessionId string      `json:"sessionId,omitempty"`
	Options   interface{} `json:"options"`
}

type FinishLoginResponse struct {
	Tokens *Tokens `json:"tokens"`
}
