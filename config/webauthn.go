package config

import (
	"time"

	"github.com/go-webauthn/webauthn/webauthn"
)

const (
	defaultChallengeTTL = 5 * time.Minute
	defaultHandoffTTL   = 5 * time.Minute
)

func InitWebAuthn() *webauthn.WebAuthn {
	wa, err := webauthn.New(&webauthn.Config{
		RPDisplayName: Conf.Application.WebAuthn.RpDisplayName,
		RPID:          Conf.Application.WebAuthn.RpID,
		RPOrigins:     []string{Conf.Application.WebAuthn.RpOrigin},
	})

	if err != nil {
		panic(err)
	}
	return wa
}

func ChallengeTTL() time.Duration {
	if s := Conf.Application.WebAuthn.ChallengeTTLInSeconds; s > 0 {
		return time.Duration(s) * time.Second
	}
	return defaultChallengeTTL
}

func HandoffSessionTTL() time.Duration {
	if s := Conf.Application.WebAuthn.HandoffSessionTTLInSeconds; s > 0 {
		return time.Duration(s) * time.Second
	}
	return defaultHandoffTTL
}
