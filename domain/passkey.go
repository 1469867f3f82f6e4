package domain

import (
	"strings"
	"time"

	"github.com/go-webauthn/webauthn/protocol"
	"github.com/go-webauthn/webauthn/webauthn"
)

const DefaultPasskeyName = "Passkey"

type Passkey struct {
	ID              uint       `gorm:"primaryKey" json:"id"`
	UserID          uint       `gorm:"not null;index" json:"user_id"` // foreign key
	CredentialID    []byte     `gorm:"not null;unique" json:"credential_id"`
	PublicKey       []byte     `gorm:"not null" json:"public_key"`
	SignCount       uint32     `gorm:"not null" json:"sign_count"`
	Transports      string     `gorm:"size:100" json:"transports"` // comma separated hints
	DisplayName     string     `gorm:"size:100;not null" json:"display_name"`
	CreatedAt       *time.Time `gorm:"autoCreateTime" json:"created_at"`
	LastUsedAt      *time.Time `gorm:"default:null" json:"last_used_at"`
	AAGUID          []byte     `json:"aa_guid"`
	AttestationType string     `json:"attestation_type"`
	BackupEligible  bool       `gorm:"not null;default:false" json:"backup_eligible"`
	BackupState     bool       `gorm:"not null;default:false" json:"backup_state"`
}

func (Passkey) TableName() string {
	return "user_passkeys"
}

func (p Passkey) TransportList() []protocol.AuthenticatorTransport {
	if p.Transports == "" {
		return nil
	}
	parts := strings.Split(p.Transports, ",")
	transports := make([]protocol.AuthenticatorTransport, 0, len(parts))
	for _, t := range parts {
		transports = append(transports, protocol.AuthenticatorTransport(t))
	}
	return transports
}

func (p Passkey) ToWebAuthnCredential() webauthn.Credential {
	return webauthn.Credential{
		ID:              p.CredentialID,
		PublicKey:       p.PublicKey,
		AttestationType: p.AttestationType,
		Transport:       p.TransportList(),
		Flags: webauthn.CredentialFlags{
			BackupEligible: p.BackupEligible,
			BackupState:    p.BackupState,
		},
		Authenticator: webauthn.Authenticator{
			AAGUID:    p.AAGUID,
			SignCount: p.SignCount,
		},
	}
}

func (p Passkey) Descriptor() protocol.CredentialDescriptor {
	return protocol.CredentialDescriptor{
		Type:         protocol.PublicKeyCredentialType,
		CredentialID: p.CredentialID,
		Transport:    p.TransportList(),
	}
}

// JoinTransports flattens authenticator transport hints for storage.
func JoinTransports(transports []protocol.AuthenticatorTransport) string {
	parts := make([]string, 0, len(transports))
	for _, t := range transports {
		parts = append(parts, string(t))
	}
	return strings.Join(parts, ",")
}
