// Package crypto turns a master passphrase into the 256-bit key that seals a
// vault envelope.
package crypto

import (
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/jmcleod/ironvault/internal/util"
	"github.com/jmcleod/ironvault/vaulterr"
)

// Argon2idParams configures Argon2id key derivation.
type Argon2idParams = util.Argon2idParams

const (
	// KeySize is the length of a derived key in bytes.
	KeySize = 32
	// SaltSize is the length of a freshly generated salt in bytes.
	SaltSize = 16

	minSaltBytes = 8
	maxSaltBytes = 48
)

// Named KDF profiles.
const (
	KDFProfileInteractive = util.KDFProfileInteractive // default; matches vaults written by earlier releases
	KDFProfileModerate    = util.KDFProfileModerate
	KDFProfileSensitive   = util.KDFProfileSensitive
)

// DefaultArgon2idParams returns the parameters every vault is derived with
// unless the caller overrides them.
func DefaultArgon2idParams() Argon2idParams {
	return util.DefaultArgon2idParams()
}

// Argon2idProfile returns the Argon2idParams for a named profile.
func Argon2idProfile(name string) (Argon2idParams, error) {
	return util.Argon2idProfile(name)
}

// DeriveOption is a functional option for DeriveKey.
type DeriveOption func(*deriveOptions)

type deriveOptions struct {
	params Argon2idParams
}

// WithArgonParams sets the Argon2id parameters.
func WithArgonParams(params Argon2idParams) DeriveOption {
	return func(o *deriveOptions) {
		o.params = params
	}
}

// GenerateSalt returns SaltSize random bytes encoded as unpadded standard
// base64.
func GenerateSalt() (string, error) {
	b, err := util.RandomBytes(SaltSize)
	if err != nil {
		return "", err
	}
	return base64.RawStdEncoding.EncodeToString(b), nil
}

// DecodeSalt parses a text salt. Trailing padding is tolerated.
func DecodeSalt(salt string) ([]byte, error) {
	b, err := base64.RawStdEncoding.Strict().DecodeString(strings.TrimRight(salt, "="))
	if err != nil {
		return nil, vaulterr.E(vaulterr.InvalidSalt, "crypto.DecodeSalt", err)
	}
	if len(b) < minSaltBytes || len(b) > maxSaltBytes {
		return nil, vaulterr.E(vaulterr.InvalidSalt, "crypto.DecodeSalt",
			fmt.Errorf("salt is %d bytes, want %d..%d", len(b), minSaltBytes, maxSaltBytes))
	}
	return b, nil
}

// DeriveKey derives a KeySize key from passphrase and salt with Argon2id and
// returns it together with the salt text it was derived from. An empty salt
// means "none yet": a fresh one is generated. The passphrase bytes are hashed
// exactly as given, so visually identical passphrases with different Unicode
// encodings derive different keys. The caller owns the returned key and
// should wipe it.
func DeriveKey(passphrase string, salt string, opts ...DeriveOption) ([]byte, string, error) {
	options := deriveOptions{params: DefaultArgon2idParams()}
	for _, opt := range opts {
		opt(&options)
	}

	if salt == "" {
		var err error
		if salt, err = GenerateSalt(); err != nil {
			return nil, "", vaulterr.E(vaulterr.DerivationFailed, "crypto.DeriveKey", err)
		}
	}
	rawSalt, err := DecodeSalt(salt)
	if err != nil {
		return nil, "", err
	}

	secret := []byte(passphrase)
	defer util.WipeBytes(secret)

	key, err := util.DeriveArgon2idKey(secret, rawSalt, options.params)
	if err != nil {
		return nil, "", vaulterr.E(vaulterr.DerivationFailed, "crypto.DeriveKey", err)
	}
	return key, salt, nil
}
