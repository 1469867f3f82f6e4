package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

// HandoffStatus values are the terminal/pending states of a cross-device
// registration session.
type HandoffStatus string

const (
	HandoffStatusPending HandoffStatus = "PENDING"
	HandoffStatusSuccess HandoffStatus = "COMPLETED_SUCCESS"
	HandoffStatusFailure HandoffStatus = "COMPLETED_FAILURE"
	HandoffStatusExpired HandoffStatus = "EXPIRED"
)

// HandoffSession is the server-held state of a cross-device registration:
// created once by device A, transitioned to a terminal status exactly once
// by device B, polled read-only by device A.
type HandoffSession struct {
	SessionId           string          `json:"sessionId"`
	TargetEmail         string          `json:"targetEmail"`
	RegistrationOptions json.RawMessage `json:"registrationOptions,omitempty"`
	Status              HandoffStatus   `json:"status"`
	ResultDetail        string          `json:"resultDetail,omitempty"`
	CreatedAt           time.Time       `json:"createdAt"`
}

type ICacheService interface {
	// Registration/login challenge state. Store overwrites any pending
	// entry for the same key (one outstanding ceremony per key); Take is
	// an atomic read-then-delete and returns (nil, nil) when the entry is
	// absent, expired or already consumed.
	StoreRegistrationSession(userID uint, data *webauthn.SessionData, ttl time.Duration) error
	TakeRegistrationSession(userID uint) (*webauthn.SessionData, error)
	StoreLoginSession(key string, data *webauthn.SessionData, ttl time.Duration) error
	TakeLoginSession(key string) (*webauthn.SessionData, error)

	// Cross-device hand-off sessions.
	StoreHandoffSession(session *HandoffSession, ttl time.Duration) error
	GetHandoffSession(sessionID string) (*HandoffSession, error)
	UpdateHandoffSession(session *HandoffSession) error
	ClaimHandoffCompletion(sessionID string, ttl time.Duration) (bool, error)

	SetRefreshToken(userID uint, refreshToken string, ttl time.Duration) error
	GetRefreshToken(userID uint) (string, error)
	DelRefreshToken(userID uint)
}

type RedisCacheService struct {
	rdb *redis.Client
}

func NewRedisCacheService(rdb *redis.Client) ICacheService {
	return &RedisCacheService{rdb: rdb}
}

func registrationKey(userID uint) string {
	return fmt.Sprintf("webauthn:reg:%d", userID)
}

func loginKey(key string) string {
	return fmt.Sprintf("webauthn:login:%s", key)
}

func handoffKey(sessionID string) string {
	return fmt.Sprintf("handoff:%s", sessionID)
}

func (s *RedisCacheService) StoreRegistrationSession(userID uint, data *webauthn.SessionData, ttl time.Duration) error {
	return s.storeSession(registrationKey(userID), data, ttl)
}

func (s *RedisCacheService) TakeRegistrationSession(userID uint) (*webauthn.SessionData, error) {
	return s.takeSession(registrationKey(userID))
}

func (s *RedisCacheService) StoreLoginSession(key string, data *webauthn.SessionData, ttl time.Duration) error {
	return s.storeSession(loginKey(key), data, ttl)
}

func (s *RedisCacheService) TakeLoginSession(key string) (*webauthn.SessionData, error) {
	return s.takeSession(loginKey(key))
}

func (s *RedisCacheService) storeSession(key string, data *webauthn.SessionData, ttl time.Duration) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, key, raw, ttl).Err()
}

// takeSession consumes the challenge with GETDEL so that concurrent finish
// calls for the same key cannot both observe it.
func (s *RedisCacheService) takeSession(key string) (*webauthn.SessionData, error) {
	val, err := s.rdb.GetDel(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sessionData webauthn.SessionData
	if err := json.Unmarshal([]byte(val), &sessionData); err != nil {
		return nil, err
	}
	return &sessionData, nil
}

func (s *RedisCacheService) StoreHandoffSession(session *HandoffSession, ttl time.Duration) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, handoffKey(session.SessionId), raw, ttl).Err()
}

func (s *RedisCacheService) GetHandoffSession(sessionID string) (*HandoffSession, error) {
	val, err := s.rdb.Get(ctx, handoffKey(sessionID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var session HandoffSession
	if err := json.Unmarshal([]byte(val), &session); err != nil {
		return nil, err
	}
	return &session, nil
}

// UpdateHandoffSession rewrites the session body without extending its TTL.
func (s *RedisCacheService) UpdateHandoffSession(session *HandoffSession) error {
	raw, err := json.Marshal(session)
	if err != nil {
		return err
	}
	return s.rdb.Set(ctx, handoffKey(session.SessionId), raw, redis.KeepTTL).Err()
}

// ClaimHandoffCompletion marks a session as claimed for completion. SETNX
// guarantees at most one caller wins even under concurrent complete calls.
func (s *RedisCacheService) ClaimHandoffCompletion(sessionID string, ttl time.Duration) (bool, error) {
	return s.rdb.SetNX(ctx, fmt.Sprintf("handoff:claim:%s", sessionID), "1", ttl).Result()
}

func (s *RedisCacheService) SetRefreshToken(userID uint, refreshToken string, ttl time.Duration) error {
	return s.rdb.Set(ctx, fmt.Sprintf("refresh_%d", userID), refreshToken, ttl).Err()
}

func (s *RedisCacheService) GetRefreshToken(userID uint) (string, error) {
	return s.rdb.Get(ctx, fmt.Sprintf("refresh_%d", userID)).Result()
}

func (s *RedisCacheService) DelRefreshToken(userID uint) {
	s.rdb.Del(ctx, fmt.Sprintf("refresh_%d", userID))
}
