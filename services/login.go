package services

import (
	"bytes"
	"fmt"
	"time"

	"passkey_auth_ms/apperrors"
	"passkey_auth_ms/domain"
	"passkey_auth_ms/dtos/request"
	"passkey_auth_ms/dtos/response"
	"passkey_auth_ms/repository"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/hashicorp/go-uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type IPasskeyLoginService interface {
	// BeginLogin builds assertion options. With an email the allow-list
	// is scoped to that account's credentials; without one the
	// discoverable flow is used and the returned session id must be
	// echoed back on finish.
	BeginLogin(email string) (*protocol.CredentialAssertion, string, error)
	FinishLogin(email, sessionID string, credential []byte) (*response.Tokens, error)
}

type PasskeyLoginService struct {
	wa           *webauthn.WebAuthn
	db           *gorm.DB
	userRepo     repository.IUserRepository
	passkeyRepo  repository.IPasskeyRepository
	cache        ICacheService
	jwt          IJWTService
	publisher    IEventPublisher
	logger       *zap.Logger
	challengeTTL time.Duration
}

func NewPasskeyLoginService(
	wa *webauthn.WebAuthn,
	db *gorm.DB,
	userRepo repository.IUserRepository,
	passkeyRepo repository.IPasskeyRepository,
	cache ICacheService,
	jwt IJWTService,
	publisher IEventPublisher,
	logger *zap.Logger,
	challengeTTL time.Duration,
) IPasskeyLoginService {
	return &PasskeyLoginService{
		wa:           wa,
		db:           db,
		userRepo:     userRepo,
		passkeyRepo:  passkeyRepo,
		cache:        cache,
		jwt:          jwt,
		publisher:    publisher,
		logger:       logger,
		challengeTTL: challengeTTL,
	}
}

func userLoginKey(userID uint) string {
	return fmt.Sprintf("user:%d", userID)
}

func anonLoginKey(sessionID string) string {
	return fmt.Sprintf("anon:%s", sessionID)
}

func (s *PasskeyLoginService) BeginLogin(email string) (*protocol.CredentialAssertion, string, error) {
	if email == "" {
		return s.beginDiscoverableLogin()
	}

	user, err := s.userRepo.GetByEmailWithPasskeys(s.db, email)
	if err != nil {
		return nil, "", err
	}
	if len(user.Passkeys) == 0 {
		// Caller should fall back to another auth method.
		return nil, "", apperrors.ErrNoCredentials
	}

	allowed := make([]protocol.CredentialDescriptor, 0, len(user.Passkeys))
	for _, p := range user.Passkeys {
		allowed = append(allowed, p.Descriptor())
	}

	options, sessionData, err := s.wa.BeginLogin(user, webauthn.WithAllowedCredentials(allowed))
	if err != nil {
		return nil, "", apperrors.Internal("failed to begin login", err)
	}

	if err := s.cache.StoreLoginSession(userLoginKey(user.Id), sessionData, s.challengeTTL); err != nil {
		return nil, "", apperrors.ErrStorageFailure(err)
	}
	return options, "", nil
}

func (s *PasskeyLoginService) beginDiscoverableLogin() (*protocol.CredentialAssertion, string, error) {
	sessionID, err := uuid.GenerateUUID()
	if err != nil {
		return nil, "", apperrors.Internal("failed to mint session id", err)
	}

	options, sessionData, err := s.wa.BeginDiscoverableLogin()
	if err != nil {
		return nil, "", apperrors.Internal("failed to begin login", err)
	}

	if err := s.cache.StoreLoginSession(anonLoginKey(sessionID), sessionData, s.challengeTTL); err != nil {
		return nil, "", apperrors.ErrStorageFailure(err)
	}
	return options, sessionID, nil
}

func (s *PasskeyLoginService) FinishLogin(email, sessionID string, credential []byte) (*response.Tokens, error) {
	if sessionID != "" {
		return s.finishLogin(anonLoginKey(sessionID), nil, credential)
	}
	if email == "" {
		return nil, apperrors.New(apperrors.CodeInvalidArgument, "email or sessionId is required")
	}

	user, err := s.userRepo.GetByEmailWithPasskeys(s.db, email)
	if err != nil {
		return nil, err
	}
	return s.finishLogin(userLoginKey(user.Id), user, credential)
}

func (s *PasskeyLoginService) finishLogin(key string, scopedUser *domain.User, credential []byte) (*response.Tokens, error) {
	sessionData, err := s.cache.TakeLoginSession(key)
	if err != nil {
		return nil, apperrors.ErrStorageFailure(err)
	}
	if sessionData == nil {
		return nil, apperrors.ErrNoPendingChallenge
	}

	parsed, err := protocol.ParseCredentialRequestResponseBody(bytes.NewReader(credential))
	if err != nil {
		s.logger.Warn("passkey login rejected",
			zap.String("reason", "malformed assertion response"),
			zap.Error(err),
		)
		return nil, apperrors.ErrCeremonyFailed(err)
	}

	// Resolve the stored credential before any cryptographic work so an
	// unregistered credential id is reported as such.
	user, err := s.passkeyRepo.FindUserByCredentialID(s.db, parsed.RawID)
	if err != nil {
		return nil, err
	}
	if scopedUser != nil && scopedUser.Id != user.Id {
		return nil, apperrors.ErrUnknownCredential
	}

	var cred *webauthn.Credential
	if scopedUser != nil {
		cred, err = s.wa.ValidateLogin(user, *sessionData, parsed)
	} else {
		_, cred, err = s.wa.ValidatePasskeyLogin(func(rawID, userHandle []byte) (webauthn.User, error) {
			return user, nil
		}, *sessionData, parsed)
	}
	if err != nil {
		s.auditFailure(user, "assertion verification failed", err)
		return nil, apperrors.ErrCeremonyFailed(err)
	}

	// A non-increasing counter on an authenticator that uses counters is
	// a replay/clone signal. State stays untouched. Authenticators that
	// always report zero never trip this.
	if cred.Authenticator.CloneWarning {
		s.auditFailure(user, "signature counter regressed", nil)
		s.publisher.PublishSecurityAlert(&request.SecurityAlertEvent{
			UserID: user.Id,
			Email:  user.Email,
			Reason: "authenticator signature counter regressed",
		})
		return nil, apperrors.ErrCounterRegressed
	}

	if err := s.passkeyRepo.UpdateCounterAndUsage(s.db, cred.ID, cred.Authenticator.SignCount); err != nil {
		return nil, err
	}

	tokens, err := s.jwt.GenerateTokens(user)
	if err != nil {
		return nil, apperrors.Internal("failed to issue tokens", err)
	}
	if err := s.cache.SetRefreshToken(user.Id, tokens.RefreshToken, s.jwt.RefreshTokenTTL()); err != nil {
		return nil, apperrors.ErrStorageFailure(err)
	}

	s.publisher.PublishPasskeyAuthenticated(&request.PasskeyAuthenticatedEvent{
		UserID: user.Id,
		Email:  user.Email,
	})

	return tokens, nil
}

func (s *PasskeyLoginService) auditFailure(user *domain.User, reason string, err error) {
	s.logger.Warn("passkey login rejected",
		zap.Uint("user_id", user.Id),
		zap.String("reason", reason),
		zap.Error(err),
	)
}
