package vault

import (
	"log/slog"

	"github.com/jmcleod/ironvault/crypto"
)

// VaultOption configures a Vault.
type VaultOption func(*Vault)

// WithSessionManager shares an existing SessionManager with the vault, e.g.
// so an idle timer can lock it independently.
func WithSessionManager(m *SessionManager) VaultOption {
	return func(v *Vault) {
		v.sessions = m
	}
}

// WithKDFParams overrides the Argon2id parameters. Envelopes do not record
// them, so every process opening the same vault must use the same values.
func WithKDFParams(params crypto.Argon2idParams) VaultOption {
	return func(v *Vault) {
		v.kdfParams = params
	}
}

// WithLogger sets the structured logger. Defaults to slog.Default().
func WithLogger(logger *slog.Logger) VaultOption {
	return func(v *Vault) {
		v.logger = logger
	}
}
