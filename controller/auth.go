package controller

import (
	"passkey_auth_ms/dtos/request"
	"passkey_auth_ms/services"

	"github.com/gofiber/fiber/v2"
)

type IAuthController interface {
	LoginLocal(c *fiber.Ctx) error
	RefreshToken(c *fiber.Ctx) error
	SetupTOTP(c *fiber.Ctx) error
	EnableTOTP(c *fiber.Ctx) error
	VerifyLoginTOTP(c *fiber.Ctx) error
}

type AuthController struct {
	auth services.IAuthService
	totp services.ITOTPService
}

func NewAuthController(auth services.IAuthService, totp services.ITOTPService) IAuthController {
	return &AuthController{auth: auth, totp: totp}
}

func (ac *AuthController) LoginLocal(c *fiber.Ctx) error {
	body := c.Locals("body").(*request.LoginRequest)

	resp, err := ac.auth.LoginLocal(body)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (ac *AuthController) RefreshToken(c *fiber.Ctx) error {
	body := c.Locals("body").(*request.RefreshTokenRequest)

	tokens, err := ac.auth.RefreshToken(body.RefreshToken)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tokens)
}

func (ac *AuthController) SetupTOTP(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}

	resp, err := ac.totp.Setup(userID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(resp)
}

func (ac *AuthController) EnableTOTP(c *fiber.Ctx) error {
	userID, ok := currentUserID(c)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "unauthorized"})
	}
	body := c.Locals("body").(*request.EnableTOTPRequest)

	if err := ac.totp.Enable(userID, body.Code); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (ac *AuthController) VerifyLoginTOTP(c *fiber.Ctx) error {
	body := c.Locals("body").(*request.VerifyLoginTOTPRequest)

	tokens, err := ac.totp.VerifyLogin(body.Email, body.Code)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(tokens)
}

// currentUserID reads the subject the auth middleware stored.
func currentUserID(c *fiber.Ctx) (uint, bool) {
	sub, ok := c.Locals("userId").(float64)
	if !ok {
		return 0, false
	}
	return uint(sub), true
}
