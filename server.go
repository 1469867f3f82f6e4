package main

import (
	"time"

	"passkey_auth_ms/config"
	"passkey_auth_ms/controller"
	"passkey_auth_ms/dtos/request"
	"passkey_auth_ms/middleware"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

type Server struct {
	PasskeyController controller.IPasskeyController
	HandoffController controller.IHandoffController
	AuthController    controller.IAuthController
	Logger            *zap.Logger
}

// NOTE: Server Constructor
func NewServer(
	PasskeyController controller.IPasskeyController,
	HandoffController controller.IHandoffController,
	AuthController controller.IAuthController,
	Logger *zap.Logger,
) *Server {
	return &Server{
		PasskeyController: PasskeyController,
		HandoffController: HandoffController,
		AuthController:    AuthController,
		Logger:            Logger,
	}
}

// NOTE: Start Fiber Server
func (s *Server) Start() *fiber.App {
	app := fiber.New()

	app.Use(middleware.RecoveryMiddleware(s.Logger))
	app.Use(middleware.LoggingMiddleware(s.Logger))

	// NOTE: Define API paths (context path and grouping by version)
	contextPath := app.Group(config.Conf.Application.Server.ContextPath)
	apiVersion := contextPath.Group(config.Conf.Application.Server.ApiVersion)

	ceremonyLimiter := middleware.RouteRateLimiter(10, 30*time.Second)

	passkeyGroup := apiVersion.Group("/passkey", ceremonyLimiter)
	passkeyGroup.Post("/register/begin", middleware.ValidateBody[request.BeginRegistrationRequest](), s.PasskeyController.RegisterBegin)
	passkeyGroup.Post("/register/finish", middleware.ValidateBody[request.FinishRegistrationRequest](), s.PasskeyController.RegisterFinish)
	passkeyGroup.Post("/authenticate/begin", middleware.ValidateBody[request.BeginLoginRequest](), s.PasskeyController.LoginBegin)
	passkeyGroup.Post("/authenticate/finish", middleware.ValidateBody[request.FinishLoginRequest](), s.PasskeyController.LoginFinish)

	// Cross-device hand-off
	passkeyGroup.Post("/session", middleware.ValidateBody[request.CreateHandoffRequest](), s.HandoffController.Create)
	passkeyGroup.Get("/session/:id", s.HandoffController.Get)
	passkeyGroup.Post("/session/:id/complete", middleware.ValidateBody[request.CompleteHandoffRequest](), s.HandoffController.Complete)

	apiVersion.Get("/passkeys/:email", middleware.AuthMiddleware(), s.PasskeyController.ListPasskeys)

	authGroup := apiVersion.Group("/auth", middleware.GlobalRateLimiter())
	authGroup.Post("/login", middleware.ValidateBody[request.LoginRequest](), s.AuthController.LoginLocal)
	authGroup.Post("/refresh-token", middleware.ValidateBody[request.RefreshTokenRequest](), s.AuthController.RefreshToken)
	authGroup.Post("/2fa/setup", middleware.AuthMiddleware(), s.AuthController.SetupTOTP)
	authGroup.Post("/2fa/enable", middleware.AuthMiddleware(), middleware.ValidateBody[request.EnableTOTPRequest](), s.AuthController.EnableTOTP)
	authGroup.Post("/2fa/verify", middleware.ValidateBody[request.VerifyLoginTOTPRequest](), s.AuthController.VerifyLoginTOTP)

	return app
}
