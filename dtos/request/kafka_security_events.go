package request

// Events published to the notification service. Delivery is
// fire-and-forget: a lost event never fails the ceremony that raised it.

type PasskeyRegisteredEvent struct {
	UserID      uint   `json:"user_id"`
	Email       string `json:"email"`
	PasskeyName string `json:"passkey_name"`
}

type PasskeyAuthenticatedEvent struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

type SecurityAlertEvent struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
	Reason string `json:"reason"`
}
