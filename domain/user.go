package domain

import (
	"strconv"
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

type User struct {
	Id            uint       `gorm:"primaryKey" json:"id"`
	CreatedAt     *time.Time `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     *time.Time `gorm:"default:null" json:"updated_at"`
	DeletedAt     *time.Time `gorm:"default:null" json:"deleted_at"`
	Email         string     `gorm:"size:100;not null;uniqueIndex" json:"email"`
	DisplayName   string     `gorm:"size:100;not null" json:"display_name"`
	Password      string     `gorm:"size:100;not null" json:"-"`
	EmailVerified bool       `json:"email_verified"`
	TOTPSecret    string     `gorm:"size:100" json:"-"`
	TOTPEnabled   bool       `gorm:"default:false" json:"totp_enabled"`
	Passkeys      []Passkey  `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"user_passkeys"`
}

func (u User) WebAuthnID() []byte {
	return []byte(strconv.Itoa(int(u.Id)))
}

func (u User) WebAuthnName() string {
	return u.Email
}

func (u User) WebAuthnDisplayName() string {
	if u.DisplayName != "" {
		return u.DisplayName
	}
	return u.Email
}

func (u User) WebAuthnCredentials() []webauthn.Credential {
	creds := make([]webauthn.Credential, 0, len(u.Passkeys))
	for _, p := range u.Passkeys {
		creds = append(creds, p.ToWebAuthnCredential())
	}
	return creds
}
