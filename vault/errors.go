package vault

import "github.com/jmcleod/ironvault/vaulterr"

// Error kinds returned by the lifecycle operations. Match them with
// errors.Is.
var (
	ErrInvalidSalt          = vaulterr.ErrInvalidSalt
	ErrDerivationFailed     = vaulterr.ErrDerivationFailed
	ErrInvalidEnvelope      = vaulterr.ErrInvalidEnvelope
	ErrAuthenticationFailed = vaulterr.ErrAuthenticationFailed
	ErrDecodedTextInvalid   = vaulterr.ErrDecodedTextInvalid
	ErrNotLoggedIn          = vaulterr.ErrNotLoggedIn
	ErrNotInitialized       = vaulterr.ErrNotInitialized
	ErrPathWriteFailed      = vaulterr.ErrPathWriteFailed
	ErrPathReadFailed       = vaulterr.ErrPathReadFailed
)
