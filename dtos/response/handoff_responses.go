package response

import "encoding/json"

type HandoffCreatedResponse struct {
	SessionId string `json:"sessionId"`
	Url       string `json:"url"`
	// QrPng is the PNG-encoded QR rendering of Url, base64 in JSON.
	QrPng []byte `json:"qr_png"`
}

type HandoffStateResponse struct {
	SessionId string `json:"sessionId"`
	Status    string `json:"status"`
	Detail    string `json:"detail,omitempty"`
	// RegistrationOptions is present only while the session is pending;
	// a completed or expired session is unusable by the second device.
	RegistrationOptions json.RawMessage `json:"registrationOptions,omitempty"`
}
