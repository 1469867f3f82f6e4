package services

import (
	"encoding/json"
	"fmt"
	"time"

	"passkey_auth_ms/apperrors"
	"passkey_auth_ms/dtos/response"

	"github.com/hashicorp/go-uuid"
	"github.com/skip2/go-qrcode"
	"go.uber.org/zap"
)

// IHandoffService coordinates cross-device passkey registration: device A
// creates a session carrying registration options for the target account,
// shares its URL (QR) with device B, and polls until device B reports a
// terminal result. The session TTL is the backstop if device B never
// responds.
type IHandoffService interface {
	CreateHandoff(email string) (*response.HandoffCreatedResponse, error)
	GetHandoff(sessionID string) (*response.HandoffStateResponse, error)
	CompleteHandoff(sessionID string, success bool, detail string) error
}

type HandoffService struct {
	registration IRegistrationService
	cache        ICacheService
	logger       *zap.Logger
	baseURL      string
	sessionTTL   time.Duration
}

func NewHandoffService(
	registration IRegistrationService,
	cache ICacheService,
	logger *zap.Logger,
	baseURL string,
	sessionTTL time.Duration,
) IHandoffService {
	return &HandoffService{
		registration: registration,
		cache:        cache,
		logger:       logger,
		baseURL:      baseURL,
		sessionTTL:   sessionTTL,
	}
}

func (s *HandoffService) CreateHandoff(email string) (*response.HandoffCreatedResponse, error) {
	options, err := s.registration.BeginRegistration(email)
	if err != nil {
		return nil, err
	}
	optionsJSON, err := json.Marshal(options)
	if err != nil {
		return nil, apperrors.Internal("failed to encode registration options", err)
	}

	sessionID, err := uuid.GenerateUUID()
	if err != nil {
		return nil, apperrors.Internal("failed to mint session id", err)
	}

	session := &HandoffSession{
		SessionId:           sessionID,
		TargetEmail:         email,
		RegistrationOptions: optionsJSON,
		Status:              HandoffStatusPending,
		CreatedAt:           time.Now(),
	}
	if err := s.cache.StoreHandoffSession(session, s.sessionTTL); err != nil {
		return nil, apperrors.ErrStorageFailure(err)
	}

	url := fmt.Sprintf("%s/passkey/session/%s", s.baseURL, sessionID)
	png, err := qrcode.Encode(url, qrcode.Medium, 256)
	if err != nil {
		return nil, apperrors.Internal("failed to render QR code", err)
	}

	return &response.HandoffCreatedResponse{
		SessionId: sessionID,
		Url:       url,
		QrPng:     png,
	}, nil
}

// GetHandoff serves both sides: device B reads the embedded registration
// options while the session is pending; device A polls for the status.
// Options are withheld once the session is terminal, so a completed
// session is unusable by the second device.
func (s *HandoffService) GetHandoff(sessionID string) (*response.HandoffStateResponse, error) {
	session, err := s.cache.GetHandoffSession(sessionID)
	if err != nil {
		return nil, apperrors.ErrStorageFailure(err)
	}
	if session == nil {
		return nil, apperrors.ErrSessionNotFound
	}

	state := &response.HandoffStateResponse{
		SessionId: session.SessionId,
		Status:    string(session.Status),
		Detail:    session.ResultDetail,
	}
	if session.Status == HandoffStatusPending {
		state.RegistrationOptions = session.RegistrationOptions
	}
	return state, nil
}

// CompleteHandoff transitions a pending session to a terminal status
// exactly once. The SETNX claim makes concurrent completion attempts
// resolve to a single winner; every other caller gets AlreadyCompleted.
func (s *HandoffService) CompleteHandoff(sessionID string, success bool, detail string) error {
	session, err := s.cache.GetHandoffSession(sessionID)
	if err != nil {
		return apperrors.ErrStorageFailure(err)
	}
	if session == nil {
		return apperrors.ErrSessionNotFound
	}
	if session.Status != HandoffStatusPending {
		return apperrors.ErrAlreadyCompleted
	}

	claimed, err := s.cache.ClaimHandoffCompletion(sessionID, s.sessionTTL)
	if err != nil {
		return apperrors.ErrStorageFailure(err)
	}
	if !claimed {
		return apperrors.ErrAlreadyCompleted
	}

	if success {
		session.Status = HandoffStatusSuccess
	} else {
		session.Status = HandoffStatusFailure
		if detail == "" {
			detail = "registration failed on the second device"
		}
	}
	session.ResultDetail = detail
	session.RegistrationOptions = nil

	if err := s.cache.UpdateHandoffSession(session); err != nil {
		return apperrors.ErrStorageFailure(err)
	}

	s.logger.Info("hand-off session completed",
		zap.String("session_id", sessionID),
		zap.String("status", string(session.Status)),
	)
	return nil
}
