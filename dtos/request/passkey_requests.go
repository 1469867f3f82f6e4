package request

import "encoding/json"

type BeginRegistrationRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type FinishRegistrationRequest struct {
	Email string `json:"email" validate:"required,email"`
	// Name is an optional friendly label for the new passkey.
	Name string `json:"name" validate:"omitempty,max=100"`
	// Credential is the raw PublicKeyCredential JSON produced by
	// navigator.credentials.create().
	Credential json.RawMessage `json:"credential" validate:"required"`
}

type BeginLoginRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
}

type FinishLoginRequest struct {
	Email string `json:"email" validate:"omitempty,email"`
	// SessionId identifies an anonymous (discoverable) ceremony; it is
	// the value echoed back by the begin call.
	SessionId  string          `json:"sessionId" validate:"omitempty,max=100"`
	Credential json.RawMessage `json:"credential" validate:"required"`
}
