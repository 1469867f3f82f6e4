package controller

import (
	"passkey_auth_ms/dtos/request"
	"passkey_auth_ms/dtos/response"
	"passkey_auth_ms/services"

	"github.com/gofiber/fiber/v2"
)

type IPasskeyController interface {
	RegisterBegin(c *fiber.Ctx) error
	RegisterFinish(c *fiber.Ctx) error
	LoginBegin(c *fiber.Ctx) error
	LoginFinish(c *fiber.Ctx) error
	ListPasskeys(c *fiber.Ctx) error
}

type PasskeyController struct {
	registration services.IRegistrationService
	login        services.IPasskeyLoginService
}

func NewPasskeyController(registration services.IRegistrationService, login services.IPasskeyLoginService) IPasskeyController {
	return &PasskeyController{registration: registration, login: login}
}

func (pc *PasskeyController) RegisterBegin(c *fiber.Ctx) error {
	body := c.Locals("body").(*request.BeginRegistrationRequest)

	options, err := pc.registration.BeginRegistration(body.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(options)
}

func (pc *PasskeyController) RegisterFinish(c *fiber.Ctx) error {
	body := c.Locals("body").(*request.FinishRegistrationRequest)

	summary, err := pc.registration.FinishRegistration(body.Email, body.Name, body.Credential)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(response.FinishRegistrationResponse{
		Success:    true,
		Credential: summary,
	})
}

func (pc *PasskeyController) LoginBegin(c *fiber.Ctx) error {
	body := c.Locals("body").(*request.BeginLoginRequest)

	options, sessionID, err := pc.login.BeginLogin(body.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(response.BeginLoginResponse{
		SessionId: sessionID,
		Options:   options,
	})
}

func (pc *PasskeyController) LoginFinish(c *fiber.Ctx) error {
	body := c.Locals("body").(*request.FinishLoginRequest)

	tokens, err := pc.login.FinishLogin(body.Email, body.SessionId, body.Credential)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(response.FinishLoginResponse{Tokens: tokens})
}

func (pc *PasskeyController) ListPasskeys(c *fiber.Ctx) error {
	email := c.Params("email")
	if email == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "email is required"})
	}

	summaries, err := pc.registration.ListPasskeys(email)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(summaries)
}
