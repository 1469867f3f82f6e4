package controller

import (
	"passkey_auth_ms/dtos/request"
	"passkey_auth_ms/services"

	"github.com/gofiber/fiber/v2"
)

type IHandoffController interface {
	Create(c *fiber.Ctx) error
	Get(c *fiber.Ctx) error
	Complete(c *fiber.Ctx) error
}

type HandoffController struct {
	handoff services.IHandoffService
}

func NewHandoffController(handoff services.IHandoffService) IHandoffController {
	return &HandoffController{handoff: handoff}
}

func (hc *HandoffController) Create(c *fiber.Ctx) error {
	body := c.Locals("body").(*request.CreateHandoffRequest)

	created, err := hc.handoff.CreateHandoff(body.Email)
	if err != nil {
		return respondError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(created)
}

func (hc *HandoffController) Get(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session id is required"})
	}

	state, err := hc.handoff.GetHandoff(sessionID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(state)
}

func (hc *HandoffController) Complete(c *fiber.Ctx) error {
	sessionID := c.Params("id")
	if sessionID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "session id is required"})
	}
	body := c.Locals("body").(*request.CompleteHandoffRequest)

	if err := hc.handoff.CompleteHandoff(sessionID, *body.Success, body.Detail); err != nil {
		return respondError(c, err)
	}
	return c.JSON(fiber.Map{"status": "ok"})
}
