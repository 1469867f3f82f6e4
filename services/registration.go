package services

import (
	"bytes"
	"encoding/base64"
	"time"

	"passkey_auth_ms/apperrors"
	"passkey_auth_ms/domain"
	"passkey_auth_ms/dtos/request"
	"passkey_auth_ms/dtos/response"
	"passkey_auth_ms/repository"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type IRegistrationService interface {
	BeginRegistration(email string) (*protocol.CredentialCreation, error)
	FinishRegistration(email, name string, credential []byte) (*response.PasskeySummary, error)
	ListPasskeys(email string) ([]response.PasskeySummary, error)
}

type RegistrationService struct {
	wa           *webauthn.WebAuthn
	db           *gorm.DB
	userRepo     repository.IUserRepository
	passkeyRepo  repository.IPasskeyRepository
	cache        ICacheService
	publisher    IEventPublisher
	logger       *zap.Logger
	challengeTTL time.Duration
}

func NewRegistrationService(
	wa *webauthn.WebAuthn,
	db *gorm.DB,
	userRepo repository.IUserRepository,
	passkeyRepo repository.IPasskeyRepository,
	cache ICacheService,
	publisher IEventPublisher,
	logger *zap.Logger,
	challengeTTL time.Duration,
) IRegistrationService {
	return &RegistrationService{
		wa:           wa,
		db:           db,
		userRepo:     userRepo,
		passkeyRepo:  passkeyRepo,
		cache:        cache,
		publisher:    publisher,
		logger:       logger,
		challengeTTL: challengeTTL,
	}
}

// BeginRegistration builds creation options for the resolved account and
// caches the challenge keyed by user id. A repeated begin overwrites the
// previous pending challenge: only the newest one is ever valid.
func (s *RegistrationService) BeginRegistration(email string) (*protocol.CredentialCreation, error) {
	user, err := s.userRepo.GetByEmailWithPasskeys(s.db, email)
	if err != nil {
		return nil, err
	}

	opts := []webauthn.RegistrationOption{
		webauthn.WithAuthenticatorSelection(protocol.AuthenticatorSelection{
			ResidentKey:      protocol.ResidentKeyRequirementPreferred,
			UserVerification: protocol.VerificationPreferred,
		}),
		webauthn.WithConveyancePreference(protocol.PreferNoAttestation),
	}
	if len(user.Passkeys) > 0 {
		// Exclude already-registered authenticators.
		exclusions := make([]protocol.CredentialDescriptor, 0, len(user.Passkeys))
		for _, p := range user.Passkeys {
			exclusions = append(exclusions, p.Descriptor())
		}
		opts = append(opts, webauthn.WithExclusions(exclusions))
	}

	options, sessionData, err := s.wa.BeginRegistration(user, opts...)
	if err != nil {
		return nil, apperrors.Internal("failed to begin registration", err)
	}

	if err := s.cache.StoreRegistrationSession(user.Id, sessionData, s.challengeTTL); err != nil {
		return nil, apperrors.ErrStorageFailure(err)
	}

	return options, nil
}

// FinishRegistration consumes the pending challenge for the account and
// validates the attestation response against it. Challenge consumption is
// single-shot: a second finish for the same begin gets NoPendingChallenge.
func (s *RegistrationService) FinishRegistration(email, name string, credential []byte) (*response.PasskeySummary, error) {
	user, err := s.userRepo.GetByEmailWithPasskeys(s.db, email)
	if err != nil {
		return nil, err
	}

	sessionData, err := s.cache.TakeRegistrationSession(user.Id)
	if err != nil {
		return nil, apperrors.ErrStorageFailure(err)
	}
	if sessionData == nil {
		return nil, apperrors.ErrNoPendingChallenge
	}

	parsed, err := protocol.ParseCredentialCreationResponseBody(bytes.NewReader(credential))
	if err != nil {
		s.auditFailure(user, "malformed attestation response", err)
		return nil, apperrors.ErrCeremonyFailed(err)
	}

	cred, err := s.wa.CreateCredential(user, *sessionData, parsed)
	if err != nil {
		s.auditFailure(user, "attestation verification failed", err)
		return nil, apperrors.ErrCeremonyFailed(err)
	}

	if name == "" {
		name = domain.DefaultPasskeyName
	}
	passkey := &domain.Passkey{
		UserID:          user.Id,
		CredentialID:    cred.ID,
		PublicKey:       cred.PublicKey,
		SignCount:       cred.Authenticator.SignCount,
		Transports:      domain.JoinTransports(cred.Transport),
		DisplayName:     name,
		AAGUID:          cred.Authenticator.AAGUID,
		AttestationType: cred.AttestationType,
		BackupEligible:  cred.Flags.BackupEligible,
		BackupState:     cred.Flags.BackupState,
	}
	if err := s.passkeyRepo.Insert(s.db, passkey); err != nil {
		return nil, err
	}

	s.publisher.PublishPasskeyRegistered(&request.PasskeyRegisteredEvent{
		UserID:      user.Id,
		Email:       user.Email,
		PasskeyName: passkey.DisplayName,
	})

	summary := toSummary(passkey)
	return &summary, nil
}

func (s *RegistrationService) ListPasskeys(email string) ([]response.PasskeySummary, error) {
	user, err := s.userRepo.GetByEmail(s.db, email)
	if err != nil {
		return nil, err
	}

	passkeys, err := s.passkeyRepo.FindByUser(s.db, user.Id)
	if err != nil {
		return nil, err
	}

	summaries := make([]response.PasskeySummary, 0, len(passkeys))
	for i := range passkeys {
		summaries = append(summaries, toSummary(&passkeys[i]))
	}
	return summaries, nil
}

func (s *RegistrationService) auditFailure(user *domain.User, reason string, err error) {
	s.logger.Warn("passkey registration rejected",
		zap.Uint("user_id", user.Id),
		zap.String("reason", reason),
		zap.Error(err),
	)
}

func toSummary(p *domain.Passkey) response.PasskeySummary {
	var transports []string
	if p.Transports != "" {
		for _, t := range p.TransportList() {
			transports = append(transports, string(t))
		}
	}
	return response.PasskeySummary{
		Id:           p.ID,
		Name:         p.DisplayName,
		CredentialId: base64.RawURLEncoding.EncodeToString(p.CredentialID),
		Transports:   transports,
		CreatedAt:    p.CreatedAt,
		LastUsedAt:   p.LastUsedAt,
	}
}
