package repository

import (
	"errors"
	"time"

	"passkey_auth_ms/apperrors"
	"passkey_auth_ms/domain"

	"gorm.io/gorm"
)

type IPasskeyRepository interface {
	FindByUser(db *gorm.DB, userID uint) ([]domain.Passkey, error)
	FindByCredentialID(db *gorm.DB, credentialID []byte) (*domain.Passkey, error)
	FindUserByCredentialID(db *gorm.DB, credentialID []byte) (*domain.User, error)
	Insert(db *gorm.DB, passkey *domain.Passkey) error
	UpdateCounterAndUsage(db *gorm.DB, credentialID []byte, signCount uint32) error
	Delete(db *gorm.DB, userID uint, passkeyID uint) error
}

type PasskeyRepository struct {
}

func NewPasskeyRepository() IPasskeyRepository {
	return &PasskeyRepository{}
}

func (r *PasskeyRepository) FindByUser(db *gorm.DB, userID uint) ([]domain.Passkey, error) {
	var passkeys []domain.Passkey
	if err := db.Where("user_id = ?", userID).Find(&passkeys).Error; err != nil {
		return nil, apperrors.ErrStorageFailure(err)
	}
	return passkeys, nil
}

func (r *PasskeyRepository) FindByCredentialID(db *gorm.DB, credentialID []byte) (*domain.Passkey, error) {
	var passkey domain.Passkey
	if err := db.Where("credential_id = ?", credentialID).First(&passkey).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnknownCredential
		}
		return nil, apperrors.ErrStorageFailure(err)
	}
	return &passkey, nil
}

func (r *PasskeyRepository) FindUserByCredentialID(db *gorm.DB, credentialID []byte) (*domain.User, error) {
	var user domain.User
	err := db.Preload("Passkeys").
		Joins("JOIN user_passkeys ON users.id = user_passkeys.user_id").
		Where("user_passkeys.credential_id = ?", credentialID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUnknownCredential
		}
		return nil, apperrors.ErrStorageFailure(err)
	}
	return &user, nil
}

// Insert relies on the unique index over credential_id: the identifier is
// globally unique across all accounts, and the constraint is what holds
// under concurrent registrations of the same physical authenticator.
func (r *PasskeyRepository) Insert(db *gorm.DB, passkey *domain.Passkey) error {
	if err := db.Create(passkey).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return apperrors.ErrDuplicateCredential
		}
		return apperrors.ErrStorageFailure(err)
	}
	return nil
}

func (r *PasskeyRepository) UpdateCounterAndUsage(db *gorm.DB, credentialID []byte, signCount uint32) error {
	now := time.Now()
	res := db.Model(&domain.Passkey{}).
		Where("credential_id = ?", credentialID).
		Updates(map[string]interface{}{
			"sign_count":   signCount,
			"last_used_at": now,
		})
	if res.Error != nil {
		return apperrors.ErrStorageFailure(res.Error)
	}
	// Credential vanished between verification and update. Hard failure.
	if res.RowsAffected == 0 {
		return apperrors.ErrCredentialNotFound
	}
	return nil
}

func (r *PasskeyRepository) Delete(db *gorm.DB, userID uint, passkeyID uint) error {
	res := db.Where("user_id = ? AND id = ?", userID, passkeyID).Delete(&domain.Passkey{})
	if res.Error != nil {
		return apperrors.ErrStorageFailure(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperrors.ErrCredentialNotFound
	}
	return nil
}
