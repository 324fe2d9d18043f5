// Package vault implements the lifecycle of a passphrase-protected vault
// file: creating it, unlocking it, and reading and writing its payload while
// a session is live.
package vault

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jmcleod/ironvault/crypto"
	"github.com/jmcleod/ironvault/internal/util"
	"github.com/jmcleod/ironvault/storage"
	"github.com/jmcleod/ironvault/vaulterr"
)

// EmptyPayload is the body of a newly initialized vault. Load also returns
// it for a configured vault that has never been written.
const EmptyPayload = "[]"

// Vault drives the vault lifecycle over a storage backend. The payload is an
// opaque string owned by the caller.
type Vault struct {
	repo      storage.Repository
	paths     PathResolver
	sessions  *SessionManager
	kdfParams crypto.Argon2idParams
	logger    *slog.Logger
}

// New creates a Vault over repo. paths resolves the current vault location
// for Login, Save and Load.
func New(repo storage.Repository, paths PathResolver, opts ...VaultOption) *Vault {
	v := &Vault{
		repo:      repo,
		paths:     paths,
		kdfParams: crypto.DefaultArgon2idParams(),
	}
	for _, opt := range opts {
		opt(v)
	}
	if v.sessions == nil {
		v.sessions = NewSessionManager()
	}
	if v.logger == nil {
		v.logger = slog.Default()
	}
	return v
}

// Sessions returns the session manager backing this vault.
func (v *Vault) Sessions() *SessionManager {
	return v.sessions
}

// Unlocked reports whether a session is live.
func (v *Vault) Unlocked() bool {
	return v.sessions.Unlocked()
}

// Initialize creates a new vault at path holding EmptyPayload, sealed with a
// key derived from passphrase and a fresh salt, and unlocks it. An existing
// file at path is replaced.
func (v *Vault) Initialize(ctx context.Context, path string, passphrase string) error {
	const op = "vault.Initialize"
	if err := ctx.Err(); err != nil {
		return err
	}

	key, salt, err := crypto.DeriveKey(passphrase, "", crypto.WithArgonParams(v.kdfParams))
	if err != nil {
		return vaulterr.WithOp(op, err)
	}
	defer util.WipeBytes(key)

	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := storage.Encrypt(EmptyPayload, key, salt)
	if err != nil {
		return vaulterr.WithOp(op, err)
	}
	if err := v.repo.Put(path, data); err != nil {
		v.logger.Warn("vault initialize failed", slog.String("path", path), slog.String("error", err.Error()))
		return vaulterr.E(vaulterr.PathWriteFailed, op, err)
	}

	s := v.sessions.Set(key, salt)
	v.logger.Info("vault initialized",
		slog.String("path", path),
		slog.String("session_id", s.ID()))
	return nil
}

// Open unlocks the vault at path. The passphrase is verified by decrypting
// the stored envelope; on any failure the current session is left as it was.
func (v *Vault) Open(ctx context.Context, path string, passphrase string) error {
	return v.unlock(ctx, "vault.Open", path, passphrase)
}

// Login unlocks the configured vault. If nothing has been written at the
// configured path yet, it falls back to provisionWithoutWrite.
func (v *Vault) Login(ctx context.Context, passphrase string) error {
	const op = "vault.Login"
	if err := ctx.Err(); err != nil {
		return err
	}

	path, err := v.resolve(ctx, op)
	if err != nil {
		return err
	}

	exists, err := v.repo.Exists(path)
	if err != nil {
		return vaulterr.E(vaulterr.PathReadFailed, op, err)
	}
	if !exists {
		return v.provisionWithoutWrite(ctx, op, path, passphrase)
	}
	return v.unlock(ctx, op, path, passphrase)
}

// provisionWithoutWrite holds a key derived from passphrase and a fresh salt
// without writing anything. The first Save creates the file. It is only
// reachable when the repository reports no vault at path, and the session
// stays provisional until that Save, which refuses to replace a vault that
// appeared in the meantime.
func (v *Vault) provisionWithoutWrite(ctx context.Context, op, path, passphrase string) error {
	key, salt, err := crypto.DeriveKey(passphrase, "", crypto.WithArgonParams(v.kdfParams))
	if err != nil {
		return vaulterr.WithOp(op, err)
	}
	defer util.WipeBytes(key)

	if err := ctx.Err(); err != nil {
		return err
	}

	s := v.sessions.setProvisional(key, salt)
	v.logger.Warn("no vault file at configured path, holding a new key without writing",
		slog.String("path", path),
		slog.String("session_id", s.ID()))
	return nil
}

func (v *Vault) unlock(ctx context.Context, op, path, passphrase string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := v.repo.Get(path)
	if err != nil {
		v.logger.Warn("vault unlock failed", slog.String("op", op), slog.String("path", path), slog.String("error", err.Error()))
		return vaulterr.E(vaulterr.PathReadFailed, op, err)
	}
	env, err := storage.ParseEnvelope(data)
	if err != nil {
		return v.unlockFailed(op, path, err)
	}

	key, salt, err := crypto.DeriveKey(passphrase, env.Salt, crypto.WithArgonParams(v.kdfParams))
	if err != nil {
		return v.unlockFailed(op, path, err)
	}
	defer util.WipeBytes(key)

	if err := ctx.Err(); err != nil {
		return err
	}

	if _, err := storage.OpenRecord(key, env); err != nil {
		return v.unlockFailed(op, path, err)
	}

	s := v.sessions.Set(key, salt)
	v.logger.Info("vault unlocked",
		slog.String("op", op),
		slog.String("path", path),
		slog.String("session_id", s.ID()))
	return nil
}

func (v *Vault) unlockFailed(op, path string, err error) error {
	v.logger.Warn("vault unlock failed",
		slog.String("op", op),
		slog.String("path", path),
		slog.String("kind", vaulterr.KindOf(err).String()))
	return vaulterr.WithOp(op, err)
}

// Save seals payload with the session key and writes it to the configured
// vault path. The envelope carries the session salt so the same passphrase
// keeps re-deriving the key. A provisional session's first Save fails with
// ErrPathWriteFailed if a vault file now exists at the path.
func (v *Vault) Save(ctx context.Context, payload string) error {
	const op = "vault.Save"
	if err := ctx.Err(); err != nil {
		return err
	}

	s, err := v.sessions.Get()
	if err != nil {
		return vaulterr.WithOp(op, err)
	}
	path, err := v.resolve(ctx, op)
	if err != nil {
		return err
	}
	if s.provisional.Load() {
		exists, err := v.repo.Exists(path)
		if err != nil {
			return vaulterr.E(vaulterr.PathReadFailed, op, err)
		}
		if exists {
			v.logger.Warn("vault file appeared since login, refusing to replace it",
				slog.String("path", path),
				slog.String("session_id", s.ID()))
			return vaulterr.E(vaulterr.PathWriteFailed, op, fmt.Errorf("a vault was created at %s after login; log in again", path))
		}
	}

	var data []byte
	err = s.withKey(func(key []byte) error {
		var err error
		data, err = storage.Encrypt(payload, key, s.Salt())
		return err
	})
	if err != nil {
		return vaulterr.WithOp(op, err)
	}

	if err := v.repo.Put(path, data); err != nil {
		v.logger.Warn("vault save failed", slog.String("path", path), slog.String("error", err.Error()))
		return vaulterr.E(vaulterr.PathWriteFailed, op, err)
	}
	s.provisional.Store(false)
	v.logger.Debug("vault saved", slog.String("path", path), slog.String("session_id", s.ID()))
	return nil
}

// Load decrypts the configured vault with the session key. A vault that has
// never been written yields EmptyPayload. ErrAuthenticationFailed here means
// the file does not belong to the live session.
func (v *Vault) Load(ctx context.Context) (string, error) {
	const op = "vault.Load"
	if err := ctx.Err(); err != nil {
		return "", err
	}

	s, err := v.sessions.Get()
	if err != nil {
		return "", vaulterr.WithOp(op, err)
	}
	path, err := v.resolve(ctx, op)
	if err != nil {
		return "", err
	}

	data, err := v.repo.Get(path)
	if errors.Is(err, storage.ErrNotFound) {
		return EmptyPayload, nil
	}
	if err != nil {
		return "", vaulterr.E(vaulterr.PathReadFailed, op, err)
	}

	var payload string
	err = s.withKey(func(key []byte) error {
		var err error
		payload, err = storage.Decrypt(data, key)
		return err
	})
	if err != nil {
		v.logger.Warn("vault load failed",
			slog.String("path", path),
			slog.String("session_id", s.ID()),
			slog.String("kind", vaulterr.KindOf(err).String()))
		return "", vaulterr.WithOp(op, err)
	}
	return payload, nil
}

// Lock discards the session key. It is safe to call when already locked.
func (v *Vault) Lock() {
	if v.sessions.Clear() {
		v.logger.Info("vault locked")
	}
}

// Logout is an alias for Lock.
func (v *Vault) Logout() {
	v.Lock()
}

func (v *Vault) resolve(ctx context.Context, op string) (string, error) {
	path, err := v.paths.VaultPath(ctx)
	if err != nil {
		if vaulterr.KindOf(err) == vaulterr.Unknown {
			return "", vaulterr.E(vaulterr.NotInitialized, op, err)
		}
		return "", vaulterr.WithOp(op, err)
	}
	if path == "" {
		return "", vaulterr.E(vaulterr.NotInitialized, op, fmt.Errorf("no vault path configured"))
	}
	return path, nil
}
