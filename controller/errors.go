package controller

import (
	"passkey_auth_ms/apperrors"

	"github.com/gofiber/fiber/v2"
)

var codeToStatus = map[apperrors.Code]int{
	apperrors.CodeInvalidArgument:     fiber.StatusBadRequest,
	apperrors.CodeUserNotFound:        fiber.StatusNotFound,
	apperrors.CodeSessionNotFound:     fiber.StatusNotFound,
	apperrors.CodeNotFound:            fiber.StatusNotFound,
	apperrors.CodeNoPendingChallenge:  fiber.StatusUnauthorized,
	apperrors.CodeVerificationFailed:  fiber.StatusUnauthorized,
	apperrors.CodeCounterRegressed:    fiber.StatusUnauthorized,
	apperrors.CodeUnknownCredential:   fiber.StatusUnauthorized,
	apperrors.CodeUnauthenticated:     fiber.StatusUnauthorized,
	apperrors.CodeDuplicateCredential: fiber.StatusConflict,
	apperrors.CodeAlreadyCompleted:    fiber.StatusConflict,
	apperrors.CodeNoCredentials:       fiber.StatusConflict,
	apperrors.CodeInternal:            fiber.StatusInternalServerError,
}

// respondError maps the error taxonomy onto HTTP statuses. The code is
// included so clients can distinguish cases that share a status.
func respondError(c *fiber.Ctx, err error) error {
	code := apperrors.CodeOf(err)
	status, ok := codeToStatus[code]
	if !ok {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(fiber.Map{
		"code":  code,
		"error": err.Error(),
	})
}
