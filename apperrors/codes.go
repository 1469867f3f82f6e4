package apperrors

type Code string

const (
	CodeUnknown             Code = "UNKNOWN"
	CodeInvalidArgument     Code = "INVALID_ARGUMENT"
	CodeUserNotFound        Code = "USER_NOT_FOUND"
	CodeNoPendingChallenge  Code = "NO_PENDING_CHALLENGE"
	CodeVerificationFailed  Code = "VERIFICATION_FAILED"
	CodeDuplicateCredential Code = "DUPLICATE_CREDENTIAL"
	CodeUnknownCredential   Code = "UNKNOWN_CREDENTIAL"
	CodeCounterRegressed    Code = "COUNTER_REGRESSED"
	CodeSessionNotFound     Code = "SESSION_NOT_FOUND"
	CodeAlreadyCompleted    Code = "ALREADY_COMPLETED"
	CodeNoCredentials       Code = "NO_CREDENTIALS_REGISTERED"
	CodeNotFound            Code = "NOT_FOUND"
	CodeUnauthenticated     Code = "UNAUTHENTICATED"
	CodeInternal            Code = "INTERNAL"
)
