package apperrors

var (
	// Ceremony errors. Terminal for the current attempt, never retried
	// by the service layer.
	ErrUserNotFound        = New(CodeUserNotFound, "user not found")
	ErrNoPendingChallenge  = New(CodeNoPendingChallenge, "no pending challenge for this ceremony")
	ErrVerificationFailed  = New(CodeVerificationFailed, "credential verification failed")
	ErrDuplicateCredential = New(CodeDuplicateCredential, "authenticator is already registered")
	ErrUnknownCredential   = New(CodeUnknownCredential, "credential is not registered")
	ErrCounterRegressed    = New(CodeCounterRegressed, "authenticator counter regressed")
	ErrNoCredentials       = New(CodeNoCredentials, "no passkeys registered for this account")

	// Hand-off errors
	ErrSessionNotFound  = New(CodeSessionNotFound, "hand-off session not found or expired")
	ErrAlreadyCompleted = New(CodeAlreadyCompleted, "hand-off session already completed")

	// Store errors
	ErrCredentialNotFound = New(CodeNotFound, "credential not found")

	ErrInvalidCredentials = New(CodeUnauthenticated, "invalid email or password")
	ErrInvalidTOTPCode    = New(CodeUnauthenticated, "invalid one-time code")
	ErrInvalidToken       = New(CodeUnauthenticated, "invalid or expired token")
)

func ErrCeremonyFailed(cause error) error {
	return Wrap(CodeVerificationFailed, "credential verification failed", cause)
}

func ErrStorageFailure(cause error) error {
	return Wrap(CodeInternal, "storage failure", cause)
}
