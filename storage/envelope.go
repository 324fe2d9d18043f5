package storage

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"

	"github.com/jmcleod/ironvault/internal/util"
	"github.com/jmcleod/ironvault/vaulterr"
)

// Envelope is the on-disk record for one AES-256-GCM encrypted payload.
// Ciphertext and Nonce are standard base64; Salt is carried verbatim so the
// key can be re-derived from the passphrase.
type Envelope struct {
	Ciphertext string `json:"ciphertext"`
	Nonce      string `json:"nonce"`
	Salt       string `json:"salt"`
}

// SealRecord encrypts plaintext under key with a fresh nonce. salt must be
// the salt key was derived from.
func SealRecord(plaintext string, key []byte, salt string) (*Envelope, error) {
	sealed, err := util.EncryptAES([]byte(plaintext), key)
	if err != nil {
		return nil, fmt.Errorf("sealing record: %w", err)
	}

	// util.EncryptAES returns nonce || ciphertext.
	return &Envelope{
		Ciphertext: util.Base64Encode(sealed[util.AESNonceSize:]),
		Nonce:      util.Base64Encode(sealed[:util.AESNonceSize]),
		Salt:       salt,
	}, nil
}

// OpenRecord decrypts env under key.
func OpenRecord(key []byte, env *Envelope) (string, error) {
	const op = "storage.OpenRecord"

	nonce, err := util.Base64Decode(env.Nonce)
	if err != nil {
		return "", vaulterr.E(vaulterr.InvalidEnvelope, op, fmt.Errorf("decoding nonce: %w", err))
	}
	if len(nonce) != util.AESNonceSize {
		return "", vaulterr.E(vaulterr.InvalidEnvelope, op, fmt.Errorf("nonce is %d bytes, want %d", len(nonce), util.AESNonceSize))
	}
	ciphertext, err := util.Base64Decode(env.Ciphertext)
	if err != nil {
		return "", vaulterr.E(vaulterr.InvalidEnvelope, op, fmt.Errorf("decoding ciphertext: %w", err))
	}

	// Reconstruct nonce || ciphertext without touching the envelope.
	full := make([]byte, 0, len(nonce)+len(ciphertext))
	full = append(full, nonce...)
	full = append(full, ciphertext...)

	plaintext, err := util.DecryptAES(full, key)
	if err != nil {
		return "", vaulterr.E(vaulterr.AuthenticationFailed, op, err)
	}
	if !utf8.Valid(plaintext) {
		util.WipeBytes(plaintext)
		return "", vaulterr.E(vaulterr.DecodedTextInvalid, op, nil)
	}
	return string(plaintext), nil
}

// Marshal serializes the envelope as JSON.
func (e *Envelope) Marshal() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEnvelope decodes a serialized envelope. All three fields must be
// present.
func ParseEnvelope(data []byte) (*Envelope, error) {
	var raw struct {
		Ciphertext *string `json:"ciphertext"`
		Nonce      *string `json:"nonce"`
		Salt       *string `json:"salt"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, vaulterr.E(vaulterr.InvalidEnvelope, "storage.ParseEnvelope", err)
	}
	switch {
	case raw.Ciphertext == nil:
		return nil, vaulterr.E(vaulterr.InvalidEnvelope, "storage.ParseEnvelope", fmt.Errorf("missing field %q", "ciphertext"))
	case raw.Nonce == nil:
		return nil, vaulterr.E(vaulterr.InvalidEnvelope, "storage.ParseEnvelope", fmt.Errorf("missing field %q", "nonce"))
	case raw.Salt == nil:
		return nil, vaulterr.E(vaulterr.InvalidEnvelope, "storage.ParseEnvelope", fmt.Errorf("missing field %q", "salt"))
	}
	return &Envelope{Ciphertext: *raw.Ciphertext, Nonce: *raw.Nonce, Salt: *raw.Salt}, nil
}

// Encrypt seals plaintext and serializes the resulting envelope.
func Encrypt(plaintext string, key []byte, salt string) ([]byte, error) {
	env, err := SealRecord(plaintext, key, salt)
	if err != nil {
		return nil, err
	}
	return env.Marshal()
}

// Decrypt parses a serialized envelope and opens it under key.
func Decrypt(data []byte, key []byte) (string, error) {
	env, err := ParseEnvelope(data)
	if err != nil {
		return "", err
	}
	return OpenRecord(key, env)
}
