package services

import (
	"passkey_auth_ms/apperrors"
	"passkey_auth_ms/dtos/response"
	"passkey_auth_ms/repository"

	"github.com/pquerna/otp/totp"
	"github.com/skip2/go-qrcode"
	"gorm.io/gorm"
)

type ITOTPService interface {
	Setup(userID uint) (*response.TOTPSetupResponse, error)
	Enable(userID uint, code string) error
	VerifyLogin(email, code string) (*response.Tokens, error)
}

type TOTPService struct {
	db       *gorm.DB
	userRepo repository.IUserRepository
	cache    ICacheService
	jwt      IJWTService
	issuer   string
}

func NewTOTPService(db *gorm.DB, userRepo repository.IUserRepository, cache ICacheService, jwt IJWTService, issuer string) ITOTPService {
	return &TOTPService{db: db, userRepo: userRepo, cache: cache, jwt: jwt, issuer: issuer}
}

// Setup generates a fresh TOTP secret for the account. The secret is only
// armed once Enable confirms the user can produce a valid code.
func (s *TOTPService) Setup(userID uint) (*response.TOTPSetupResponse, error) {
	user, err := s.userRepo.GetByID(s.db, userID)
	if err != nil {
		return nil, err
	}

	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      s.issuer,
		AccountName: user.Email,
	})
	if err != nil {
		return nil, apperrors.Internal("failed to generate TOTP secret", err)
	}

	user.TOTPSecret = key.Secret()
	user.TOTPEnabled = false
	if err := s.userRepo.Update(s.db, user); err != nil {
		return nil, apperrors.ErrStorageFailure(err)
	}

	png, err := qrcode.Encode(key.URL(), qrcode.Medium, 256)
	if err != nil {
		return nil, apperrors.Internal("failed to render QR code", err)
	}

	return &response.TOTPSetupResponse{
		Secret: key.Secret(),
		Url:    key.URL(),
		QrPng:  png,
	}, nil
}

func (s *TOTPService) Enable(userID uint, code string) error {
	user, err := s.userRepo.GetByID(s.db, userID)
	if err != nil {
		return err
	}
	if user.TOTPSecret == "" || !totp.Validate(code, user.TOTPSecret) {
		return apperrors.ErrInvalidTOTPCode
	}

	user.TOTPEnabled = true
	return s.userRepo.Update(s.db, user)
}

func (s *TOTPService) VerifyLogin(email, code string) (*response.Tokens, error) {
	user, err := s.userRepo.GetByEmail(s.db, email)
	if err != nil {
		return nil, apperrors.ErrInvalidTOTPCode
	}
	if !user.TOTPEnabled || !totp.Validate(code, user.TOTPSecret) {
		return nil, apperrors.ErrInvalidTOTPCode
	}

	tokens, err := s.jwt.GenerateTokens(user)
	if err != nil {
		return nil, apperrors.Internal("failed to issue tokens", err)
	}
	if err := s.cache.SetRefreshToken(user.Id, tokens.RefreshToken, s.jwt.RefreshTokenTTL()); err != nil {
		return nil, apperrors.ErrStorageFailure(err)
	}
	return tokens, nil
}
