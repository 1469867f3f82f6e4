package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"passkey_auth_ms/config"
	"passkey_auth_ms/controller"
	"passkey_auth_ms/middleware"
	"passkey_auth_ms/repository"
	"passkey_auth_ms/services"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type service struct {
	//DB
	dbConnection *gorm.DB

	//Redis Client
	redisClient *redis.Client

	//WebAuthn Conf
	webAuthn *webauthn.WebAuthn

	//Logger
	logger *zap.Logger

	// Repository
	userRepository    repository.IUserRepository
	passkeyRepository repository.IPasskeyRepository

	// Service
	cacheService        services.ICacheService
	jwtService          services.IJWTService
	eventPublisher      services.IEventPublisher
	registrationService services.IRegistrationService
	loginService        services.IPasskeyLoginService
	handoffService      services.IHandoffService
	authService         services.IAuthService
	totpService         services.ITOTPService

	// Controller
	passkeyController controller.IPasskeyController
	handoffController controller.IHandoffController
	authController    controller.IAuthController
}

// NOTE: Service Start
func (s *service) Start() {
	log.Info("Opening database connection...")
	s.dbConnection = config.OpenDatabaseConnection(config.Conf.Application.Datasource.PrimaryURL)
	config.Migrate(config.Conf.Application.Datasource.PrimaryURL)

	log.Info("Opening redis connection...")
	s.redisClient = config.ConnectToRedis(config.Conf.Application.Redis.Host)

	log.Info("WebAuthn config")
	s.webAuthn = config.InitWebAuthn()

	s.logger = config.InitLogger()
	middleware.InitValidator()

	// NOTE: Dependency Injections
	s.DependencyInjection()

	// NOTE: Start Fiber server...
	app := NewServer(s.passkeyController, s.handoffController, s.authController, s.logger).Start()

	log.Info("Server starting..")
	go func() {
		if err := app.Listen(config.Conf.Application.Server.Port); err != nil {
			log.Fatal("Server failed to start")
		}
	}()
	// NOTE: Keep OS signals for graceful shutdown
	s.gracefulShutdown(app)
}

// NOTE: Depency Injection Operation
func (s *service) DependencyInjection() {
	security := config.Conf.Application.Security
	s.jwtService = services.NewJWTService(
		[]byte(security.Secret),
		security.Issuer,
		time.Duration(security.TokenValidityInSeconds)*time.Second,
		time.Duration(security.TokenValidityInSecondsForRememberMe)*time.Second,
	)

	// NOTE: Repositories Injections
	s.userRepository = repository.NewUserRepository()
	s.passkeyRepository = repository.NewPasskeyRepository()

	// NOTE: Services Injections
	s.cacheService = services.NewRedisCacheService(s.redisClient)

	publisher, err := services.NewKafkaEventPublisher(config.Conf.Application.Kafka.Brokers, s.logger)
	if err != nil {
		// The notification sink is fire-and-forget; run without it.
		s.logger.Warn("kafka unavailable, events will be dropped", zap.Error(err))
		s.eventPublisher = services.NewNoopEventPublisher(s.logger)
	} else {
		s.eventPublisher = publisher
	}

	challengeTTL := config.ChallengeTTL()
	s.registrationService = services.NewRegistrationService(
		s.webAuthn, s.dbConnection, s.userRepository, s.passkeyRepository,
		s.cacheService, s.eventPublisher, s.logger, challengeTTL,
	)
	s.loginService = services.NewPasskeyLoginService(
		s.webAuthn, s.dbConnection, s.userRepository, s.passkeyRepository,
		s.cacheService, s.jwtService, s.eventPublisher, s.logger, challengeTTL,
	)
	s.handoffService = services.NewHandoffService(
		s.registrationService, s.cacheService, s.logger,
		config.Conf.Application.WebAuthn.RpOrigin, config.HandoffSessionTTL(),
	)
	s.authService = services.NewAuthService(s.dbConnection, s.userRepository, s.cacheService, s.jwtService)
	s.totpService = services.NewTOTPService(s.dbConnection, s.userRepository, s.cacheService, s.jwtService, security.Issuer)

	// NOTE: Controllers Injections
	s.passkeyController = controller.NewPasskeyController(s.registrationService, s.loginService)
	s.handoffController = controller.NewHandoffController(s.handoffService)
	s.authController = controller.NewAuthController(s.authService, s.totpService)
}

// NOTE: Graceful shutdown operation
func (s *service) gracefulShutdown(app *fiber.App) {

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	<-sigChan
	log.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	// NOTE: Shutdown Fiber server
	if err := app.Shutdown(); err != nil {
		log.Error("error while shutting down app", err)
	}

	if closer, ok := s.eventPublisher.(*services.KafkaEventPublisher); ok {
		if err := closer.Close(); err != nil {
			log.Error("error while closing kafka producer", err)
		}
	}

	// NOTE: Shutdown Database connection
	done := make(chan bool)
	go func() {
		config.CloseDatabaseConnection(s.dbConnection)
		done <- true
	}()

	select {
	case <-ctx.Done():
		log.Error("timeout while shutting down database", ctx.Err())
	case <-done:
		log.Info("database is gracefully shutdown")
	}
}
