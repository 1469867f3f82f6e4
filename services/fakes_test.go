package services

import (
	"fmt"
	"sync"
	"time"

	"passkey_auth_ms/apperrors"
	"passkey_auth_ms/domain"
	"passkey_auth_ms/dtos/request"

	"github.com/go-webauthn/webauthn/webauthn"
	"gorm.io/gorm"
)

// fakeCache is an in-memory ICacheService with real TTL semantics driven
// by an adjustable clock, so expiry can be tested without sleeping.
type fakeCache struct {
	mu      sync.Mutex
	now     time.Time
	entries map[string]fakeEntry
}

type fakeEntry struct {
	value     []byte
	session   *webauthn.SessionData
	handoff   *HandoffSession
	expiresAt time.Time
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		now:     time.Now(),
		entries: make(map[string]fakeEntry),
	}
}

func (c *fakeCache) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func (c *fakeCache) get(key string) (fakeEntry, bool) {
	entry, ok := c.entries[key]
	if !ok || c.now.After(entry.expiresAt) {
		delete(c.entries, key)
		return fakeEntry{}, false
	}
	return entry, true
}

func (c *fakeCache) StoreRegistrationSession(userID uint, data *webauthn.SessionData, ttl time.Duration) error {
	return c.storeSession(registrationKey(userID), data, ttl)
}

func (c *fakeCache) TakeRegistrationSession(userID uint) (*webauthn.SessionData, error) {
	return c.takeSession(registrationKey(userID))
}

func (c *fakeCache) StoreLoginSession(key string, data *webauthn.SessionData, ttl time.Duration) error {
	return c.storeSession(loginKey(key), data, ttl)
}

func (c *fakeCache) TakeLoginSession(key string) (*webauthn.SessionData, error) {
	return c.takeSession(loginKey(key))
}

func (c *fakeCache) storeSession(key string, data *webauthn.SessionData, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = fakeEntry{session: data, expiresAt: c.now.Add(ttl)}
	return nil
}

func (c *fakeCache) takeSession(key string) (*webauthn.SessionData, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.get(key)
	if !ok {
		return nil, nil
	}
	delete(c.entries, key)
	return entry.session, nil
}

func (c *fakeCache) StoreHandoffSession(session *HandoffSession, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	copied := *session
	c.entries[handoffKey(session.SessionId)] = fakeEntry{handoff: &copied, expiresAt: c.now.Add(ttl)}
	return nil
}

func (c *fakeCache) GetHandoffSession(sessionID string) (*HandoffSession, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.get(handoffKey(sessionID))
	if !ok {
		return nil, nil
	}
	copied := *entry.handoff
	return &copied, nil
}

func (c *fakeCache) UpdateHandoffSession(session *HandoffSession) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := handoffKey(session.SessionId)
	entry, ok := c.get(key)
	if !ok {
		return nil
	}
	copied := *session
	entry.handoff = &copied
	c.entries[key] = entry
	return nil
}

func (c *fakeCache) ClaimHandoffCompletion(sessionID string, ttl time.Duration) (bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	key := "handoff:claim:" + sessionID
	if _, ok := c.get(key); ok {
		return false, nil
	}
	c.entries[key] = fakeEntry{value: []byte("1"), expiresAt: c.now.Add(ttl)}
	return true, nil
}

func (c *fakeCache) SetRefreshToken(userID uint, refreshToken string, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[refreshKey(userID)] = fakeEntry{value: []byte(refreshToken), expiresAt: c.now.Add(ttl)}
	return nil
}

func (c *fakeCache) GetRefreshToken(userID uint) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.get(refreshKey(userID))
	if !ok {
		return "", nil
	}
	return string(entry.value), nil
}

func (c *fakeCache) DelRefreshToken(userID uint) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, refreshKey(userID))
}

func refreshKey(userID uint) string {
	return fmt.Sprintf("refresh_%d", userID)
}

// fakeStore backs both repository interfaces with maps, ignoring the *gorm.DB
// handle the production repositories thread through.
type fakeStore struct {
	mu       sync.Mutex
	nextUser uint
	nextKey  uint
	users    map[uint]*domain.User
	passkeys map[uint]*domain.Passkey
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextUser: 1,
		nextKey:  1,
		users:    make(map[uint]*domain.User),
		passkeys: make(map[uint]*domain.Passkey),
	}
}

func (s *fakeStore) addUser(email, password string) *domain.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	user := &domain.User{Id: s.nextUser, Email: email, Password: password}
	s.users[user.Id] = user
	s.nextUser++
	return user
}

func (s *fakeStore) userWithPasskeys(user *domain.User) *domain.User {
	copied := *user
	copied.Passkeys = nil
	for _, p := range s.passkeys {
		if p.UserID == copied.Id {
			copied.Passkeys = append(copied.Passkeys, *p)
		}
	}
	return &copied
}

func (s *fakeStore) GetByID(_ *gorm.DB, id uint) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

func (s *fakeStore) GetByEmail(_ *gorm.DB, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *fakeStore) GetByEmailWithPasskeys(_ *gorm.DB, email string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, user := range s.users {
		if user.Email == email {
			return s.userWithPasskeys(user), nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

func (s *fakeStore) GetWithPasskeys(_ *gorm.DB, id uint) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return s.userWithPasskeys(user), nil
}

func (s *fakeStore) Create(_ *gorm.DB, entity *domain.User) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entity.Id = s.nextUser
	s.nextUser++
	s.users[entity.Id] = entity
	return entity, nil
}

func (s *fakeStore) Update(_ *gorm.DB, entity *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[entity.Id]; !ok {
		return apperrors.ErrUserNotFound
	}
	copied := *entity
	s.users[entity.Id] = &copied
	return nil
}

func (s *fakeStore) FindByUser(_ *gorm.DB, userID uint) ([]domain.Passkey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []domain.Passkey
	for _, p := range s.passkeys {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (s *fakeStore) FindByCredentialID(_ *gorm.DB, credentialID []byte) (*domain.Passkey, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findByCredentialID(credentialID)
	if p == nil {
		return nil, apperrors.ErrUnknownCredential
	}
	copied := *p
	return &copied, nil
}

func (s *fakeStore) FindUserByCredentialID(_ *gorm.DB, credentialID []byte) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findByCredentialID(credentialID)
	if p == nil {
		return nil, apperrors.ErrUnknownCredential
	}
	user, ok := s.users[p.UserID]
	if !ok {
		return nil, apperrors.ErrUnknownCredential
	}
	return s.userWithPasskeys(user), nil
}

func (s *fakeStore) findByCredentialID(credentialID []byte) *domain.Passkey {
	for _, p := range s.passkeys {
		if string(p.CredentialID) == string(credentialID) {
			return p
		}
	}
	return nil
}

func (s *fakeStore) Insert(_ *gorm.DB, passkey *domain.Passkey) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.findByCredentialID(passkey.CredentialID) != nil {
		return apperrors.ErrDuplicateCredential
	}
	passkey.ID = s.nextKey
	now := time.Now()
	passkey.CreatedAt = &now
	s.nextKey++
	copied := *passkey
	s.passkeys[copied.ID] = &copied
	return nil
}

func (s *fakeStore) UpdateCounterAndUsage(_ *gorm.DB, credentialID []byte, signCount uint32) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p := s.findByCredentialID(credentialID)
	if p == nil {
		return apperrors.ErrCredentialNotFound
	}
	now := time.Now()
	p.SignCount = signCount
	p.LastUsedAt = &now
	return nil
}

func (s *fakeStore) Delete(_ *gorm.DB, userID uint, passkeyID uint) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.passkeys[passkeyID]
	if !ok || p.UserID != userID {
		return apperrors.ErrCredentialNotFound
	}
	delete(s.passkeys, passkeyID)
	return nil
}

// recordingPublisher captures events instead of talking to a broker.
type recordingPublisher struct {
	mu            sync.Mutex
	registered    []*request.PasskeyRegisteredEvent
	authenticated []*request.PasskeyAuthenticatedEvent
	alerts        []*request.SecurityAlertEvent
}

func (p *recordingPublisher) PublishPasskeyRegistered(ev *request.PasskeyRegisteredEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.registered = append(p.registered, ev)
}

func (p *recordingPublisher) PublishPasskeyAuthenticated(ev *request.PasskeyAuthenticatedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.authenticated = append(p.authenticated, ev)
}

func (p *recordingPublisher) PublishSecurityAlert(ev *request.SecurityAlertEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.alerts = append(p.alerts, ev)
}

func (p *recordingPublisher) alertCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.alerts)
}
