package services

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/go-webauthn/webauthn/protocol"
	"github.com/stretchr/testify/require"
)

const (
	testRPID   = "localhost"
	testOrigin = "http://localhost:3000"
)

// fakeAuthenticator emulates a platform authenticator well enough to drive
// full ceremonies: it mints an ES256 key pair, packs a "none" attestation
// object for registration and signs assertions for login. The counter it
// reports is controlled by the test.
type fakeAuthenticator struct {
	t            *testing.T
	key          *ecdsa.PrivateKey
	credentialID []byte
}

func newFakeAuthenticator(t *testing.T) *fakeAuthenticator {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	credentialID := make([]byte, 16)
	_, err = rand.Read(credentialID)
	require.NoError(t, err)

	return &fakeAuthenticator{t: t, key: key, credentialID: credentialID}
}

func (a *fakeAuthenticator) coseKey() []byte {
	a.t.Helper()

	x := a.key.PublicKey.X.FillBytes(make([]byte, 32))
	y := a.key.PublicKey.Y.FillBytes(make([]byte, 32))
	raw, err := cbor.Marshal(map[int]interface{}{
		1:  2,  // kty: EC2
		3:  -7, // alg: ES256
		-1: 1,  // crv: P-256
		-2: x,
		-3: y,
	})
	require.NoError(a.t, err)
	return raw
}

func (a *fakeAuthenticator) authData(flags byte, counter uint32, withCredential bool) []byte {
	rpIDHash := sha256.Sum256([]byte(testRPID))

	data := make([]byte, 0, 128)
	data = append(data, rpIDHash[:]...)
	data = append(data, flags)
	data = binary.BigEndian.AppendUint32(data, counter)

	if withCredential {
		aaguid := make([]byte, 16)
		data = append(data, aaguid...)
		data = binary.BigEndian.AppendUint16(data, uint16(len(a.credentialID)))
		data = append(data, a.credentialID...)
		data = append(data, a.coseKey()...)
	}
	return data
}

func (a *fakeAuthenticator) clientDataJSON(ceremony string, challenge protocol.URLEncodedBase64) []byte {
	a.t.Helper()

	raw, err := json.Marshal(map[string]interface{}{
		"type":      ceremony,
		"challenge": base64.RawURLEncoding.EncodeToString(challenge),
		"origin":    testOrigin,
	})
	require.NoError(a.t, err)
	return raw
}

// AttestationResponse builds the JSON body a browser would POST after
// navigator.credentials.create resolved against the given options.
func (a *fakeAuthenticator) AttestationResponse(options *protocol.CredentialCreation, counter uint32) []byte {
	a.t.Helper()

	clientData := a.clientDataJSON("webauthn.create", options.Response.Challenge)

	// UP, UV and AT flags set.
	authData := a.authData(0x45, counter, true)
	attObj, err := cbor.Marshal(map[string]interface{}{
		"fmt":      "none",
		"attStmt":  map[string]interface{}{},
		"authData": authData,
	})
	require.NoError(a.t, err)

	credID := base64.RawURLEncoding.EncodeToString(a.credentialID)
	body, err := json.Marshal(map[string]interface{}{
		"id":    credID,
		"rawId": credID,
		"type":  "public-key",
		"response": map[string]interface{}{
			"attestationObject": base64.RawURLEncoding.EncodeToString(attObj),
			"clientDataJSON":    base64.RawURLEncoding.EncodeToString(clientData),
			"transports":        []string{"internal"},
		},
	})
	require.NoError(a.t, err)
	return body
}

// AssertionResponse builds the JSON body for a login ceremony. userHandle is
// the account the discoverable credential belongs to; scoped flows accept it
// as well since it matches the session's user.
func (a *fakeAuthenticator) AssertionResponse(options *protocol.CredentialAssertion, counter uint32, userHandle []byte) []byte {
	a.t.Helper()

	clientData := a.clientDataJSON("webauthn.get", options.Response.Challenge)

	// UP and UV flags set.
	authData := a.authData(0x05, counter, false)

	clientDataHash := sha256.Sum256(clientData)
	digest := sha256.Sum256(append(append([]byte{}, authData...), clientDataHash[:]...))
	sig, err := ecdsa.SignASN1(rand.Reader, a.key, digest[:])
	require.NoError(a.t, err)

	credID := base64.RawURLEncoding.EncodeToString(a.credentialID)
	body, err := json.Marshal(map[string]interface{}{
		"id":    credID,
		"rawId": credID,
		"type":  "public-key",
		"response": map[string]interface{}{
			"authenticatorData": base64.RawURLEncoding.EncodeToString(authData),
			"clientDataJSON":    base64.RawURLEncoding.EncodeToString(clientData),
			"signature":         base64.RawURLEncoding.EncodeToString(sig),
			"userHandle":        base64.RawURLEncoding.EncodeToString(userHandle),
		},
	})
	require.NoError(a.t, err)
	return body
}
