package repository

import (
	"errors"

	"passkey_auth_ms/apperrors"
	"passkey_auth_ms/domain"

	"gorm.io/gorm"
)

type IUserRepository interface {
	GetByID(db *gorm.DB, id uint) (*domain.User, error)
	GetByEmail(db *gorm.DB, email string) (*domain.User, error)
	GetByEmailWithPasskeys(db *gorm.DB, email string) (*domain.User, error)
	GetWithPasskeys(db *gorm.DB, id uint) (*domain.User, error)
	Create(db *gorm.DB, entity *domain.User) (*domain.User, error)
	Update(db *gorm.DB, entity *domain.User) error
}

type UserRepository struct {
}

func NewUserRepository() IUserRepository {
	return &UserRepository{}
}

func (u *UserRepository) GetByID(db *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User
	if err := db.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.ErrStorageFailure(err)
	}
	return &user, nil
}

func (u *UserRepository) GetByEmail(db *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	if err := db.Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.ErrStorageFailure(err)
	}
	return &user, nil
}

func (u *UserRepository) GetByEmailWithPasskeys(db *gorm.DB, email string) (*domain.User, error) {
	var user domain.User
	if err := db.Preload("Passkeys").Where("email = ?", email).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.ErrStorageFailure(err)
	}
	return &user, nil
}

func (u *UserRepository) GetWithPasskeys(db *gorm.DB, id uint) (*domain.User, error) {
	var user domain.User
	if err := db.Preload("Passkeys").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, apperrors.ErrStorageFailure(err)
	}
	return &user, nil
}

func (u *UserRepository) Create(db *gorm.DB, entity *domain.User) (*domain.User, error) {
	return entity, db.Create(entity).Error
}

func (u *UserRepository) Update(db *gorm.DB, entity *domain.User) error {
	return db.Save(entity).Error
}
