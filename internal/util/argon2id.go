package util

import (
	"fmt"

	"golang.org/x/crypto/argon2"
)

// Argon2idParams configures Argon2id key derivation.
type Argon2idParams struct {
	Time        uint32 `json:"time"`
	MemoryKiB   uint32 `json:"memory"`
	Parallelism uint8  `json:"parallelism"`
	KeyLen      uint32 `json:"key_len"`
}

// Named KDF profiles.
const (
	KDFProfileInteractive = "interactive"
	KDFProfileModerate    = "moderate"
	KDFProfileSensitive   = "sensitive"
)

var argon2idProfiles = map[string]Argon2idParams{
	KDFProfileInteractive: {Time: 2, MemoryKiB: 19 * 1024, Parallelism: 1, KeyLen: 32},
	KDFProfileModerate:    {Time: 3, MemoryKiB: 64 * 1024, Parallelism: 4, KeyLen: 32},
	KDFProfileSensitive:   {Time: 4, MemoryKiB: 128 * 1024, Parallelism: 4, KeyLen: 32},
}

// DefaultArgon2idParams returns the interactive profile. Vault files do not
// record their KDF parameters, so changing the default makes existing vaults
// undecryptable.
func DefaultArgon2idParams() Argon2idParams {
	return argon2idProfiles[KDFProfileInteractive]
}

// Argon2idProfile returns the parameters for a named profile.
func Argon2idProfile(name string) (Argon2idParams, error) {
	p, ok := argon2idProfiles[name]
	if !ok {
		return Argon2idParams{}, fmt.Errorf("unknown argon2id profile %q", name)
	}
	return p, nil
}

// ValidateArgon2idParams rejects parameters argon2.IDKey would panic on or
// that cannot produce a 256-bit key.
func ValidateArgon2idParams(p Argon2idParams) error {
	switch {
	case p.KeyLen != 32:
		return fmt.Errorf("argon2id key length must be 32 bytes, got %d", p.KeyLen)
	case p.Time < 1:
		return fmt.Errorf("argon2id time must be at least 1")
	case p.Parallelism < 1:
		return fmt.Errorf("argon2id parallelism must be at least 1")
	case p.MemoryKiB < 8*uint32(p.Parallelism):
		return fmt.Errorf("argon2id memory must be at least %d KiB for parallelism %d", 8*uint32(p.Parallelism), p.Parallelism)
	}
	return nil
}

func DeriveArgon2idKey(passphrase []byte, salt []byte, params Argon2idParams) ([]byte, error) {
	if err := ValidateArgon2idParams(params); err != nil {
		return nil, err
	}
	return argon2.IDKey(passphrase, salt, params.Time, params.MemoryKiB, params.Parallelism, params.KeyLen), nil
}
