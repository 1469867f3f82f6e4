package services

import (
	"passkey_auth_ms/apperrors"
	"passkey_auth_ms/dtos/request"
	"passkey_auth_ms/dtos/response"
	"passkey_auth_ms/repository"
	"passkey_auth_ms/util"

	"gorm.io/gorm"
)

type IAuthService interface {
	LoginLocal(req *request.LoginRequest) (*response.LoginResponse, error)
	RefreshToken(refreshToken string) (*response.Tokens, error)
}

type AuthService struct {
	db       *gorm.DB
	userRepo repository.IUserRepository
	cache    ICacheService
	jwt      IJWTService
}

func NewAuthService(db *gorm.DB, userRepo repository.IUserRepository, cache ICacheService, jwt IJWTService) IAuthService {
	return &AuthService{db: db, userRepo: userRepo, cache: cache, jwt: jwt}
}

func (s *AuthService) LoginLocal(req *request.LoginRequest) (*response.LoginResponse, error) {
	user, err := s.userRepo.GetByEmail(s.db, req.Email)
	if err != nil {
		// Do not reveal whether the account exists.
		return nil, apperrors.ErrInvalidCredentials
	}
	if !util.VerifyPassword(req.Password, user.Password) {
		return nil, apperrors.ErrInvalidCredentials
	}

	if user.TOTPEnabled {
		return &response.LoginResponse{RequiresTOTP: true}, nil
	}

	tokens, err := s.jwt.GenerateTokens(user)
	if err != nil {
		return nil, apperrors.Internal("failed to issue tokens", err)
	}
	if err := s.cache.SetRefreshToken(user.Id, tokens.RefreshToken, s.jwt.RefreshTokenTTL()); err != nil {
		return nil, apperrors.ErrStorageFailure(err)
	}
	return &response.LoginResponse{Tokens: tokens}, nil
}

// RefreshToken rotates the refresh token: the presented token must match
// the one held in the cache for that account, and is replaced on success.
func (s *AuthService) RefreshToken(refreshToken string) (*response.Tokens, error) {
	token, err := s.jwt.ParseJWT(refreshToken)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	claims, err := s.jwt.GetClaims(token)
	if err != nil {
		return nil, apperrors.ErrInvalidToken
	}
	sub, ok := claims["sub"].(float64)
	if !ok {
		return nil, apperrors.ErrInvalidToken
	}
	userID := uint(sub)

	stored, err := s.cache.GetRefreshToken(userID)
	if err != nil || stored != refreshToken {
		return nil, apperrors.ErrInvalidToken
	}

	user, err := s.userRepo.GetByID(s.db, userID)
	if err != nil {
		return nil, err
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
