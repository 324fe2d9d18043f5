package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
	"go.etcd.io/bbolt"
	"golang.org/x/term"

	"github.com/jmcleod/ironvault/crypto"
	"github.com/jmcleod/ironvault/internal/config"
	"github.com/jmcleod/ironvault/internal/util"
	"github.com/jmcleod/ironvault/storage"
	boltstore "github.com/jmcleod/ironvault/storage/bbolt"
	"github.com/jmcleod/ironvault/storage/file"
	"github.com/jmcleod/ironvault/vault"
)

const (
	backendFile = "file"
	backendBolt = "bolt"

	boltFileName = "vaults.db"
)

// settings is the part of config.Store the commands use.
type settings interface {
	Path() string
	VaultPath(ctx context.Context) (string, error)
	SetVaultPath(path string) error
	AutoLockMinutes() (uint32, error)
	SetAutoLockMinutes(minutes uint32) error
}

var _ settings = (*config.Store)(nil)

// app is the state shared by every command: one vault controller, the
// config store acting as its path resolver, and the terminal streams.
type app struct {
	cfg        settings
	vault      *vault.Vault
	backend    string
	logger     *slog.Logger
	in         *bufio.Reader
	out        io.Writer
	errOut     io.Writer
	readSecret secretReader
	closer     io.Closer
}

func newApp(cmd *cobra.Command) (*app, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(logLevel)); err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", logLevel)
	}
	logger := newLogger(cmd.ErrOrStderr(), level)

	params, err := crypto.Argon2idProfile(kdfProfile)
	if err != nil {
		return nil, err
	}

	dir := configDir
	if dir == "" {
		if dir, err = config.DefaultDir(); err != nil {
			return nil, err
		}
	}
	store := config.NewStore(dir)

	var (
		repo   storage.Repository
		closer io.Closer
	)
	switch backend {
	case backendFile:
		repo = file.NewRepository()
	case backendBolt:
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
		bolt, err := boltstore.NewRepositoryFromFile(filepath.Join(dir, boltFileName), &bbolt.Options{Timeout: time.Second})
		if err != nil {
			return nil, fmt.Errorf("failed to open vault storage: %w", err)
		}
		repo, closer = bolt, bolt
	default:
		return nil, fmt.Errorf("unknown --backend %q (want %s or %s)", backend, backendFile, backendBolt)
	}

	in := bufio.NewReader(cmd.InOrStdin())
	return &app{
		cfg:        store,
		vault:      vault.New(repo, store, vault.WithKDFParams(params), vault.WithLogger(logger)),
		backend:    backend,
		logger:     logger,
		in:         in,
		out:        cmd.OutOrStdout(),
		errOut:     cmd.ErrOrStderr(),
		readSecret: newSecretReader(cmd.InOrStdin(), in, cmd.ErrOrStderr()),
		closer:     closer,
	}, nil
}

// newLogger writes colored logs to a terminal and plain key=value text
// everywhere else.
func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	if f, ok := w.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		return slog.New(tint.NewHandler(f, &tint.Options{Level: level, TimeFormat: time.Kitchen}))
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// withApp adapts a function over app into a cobra RunE. The vault is locked
// and the backend closed when the command returns.
func withApp(fn func(ctx context.Context, a *app, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := newApp(cmd)
		if err != nil {
			return err
		}
		defer a.close()
		return fn(cmd.Context(), a, args)
	}
}

func (a *app) close() {
	a.vault.Lock()
	if a.closer != nil {
		if err := a.closer.Close(); err != nil {
			a.logger.Warn("closing storage", slog.String("error", err.Error()))
		}
	}
}

// location normalises a user-supplied vault location. Files are recorded by
// absolute path so the config stays valid from any working directory.
func (a *app) location(arg string) (string, error) {
	if a.backend != backendFile {
		return arg, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", arg, err)
	}
	return abs, nil
}

func (a *app) initVault(ctx context.Context, arg string) error {
	path, err := a.location(arg)
	if err != nil {
		return err
	}
	pass, err := a.readSecret("New master passphrase: ")
	if err != nil {
		return err
	}
	confirm, err := a.readSecret("Confirm master passphrase: ")
	if err != nil {
		return err
	}
	if pass == "" {
		return errors.New("passphrase must not be empty")
	}
	if pass != confirm {
		return errors.New("passphrases do not match")
	}
	if util.HasAmbiguousEncoding(pass) {
		fmt.Fprintln(a.errOut, "warning: the passphrase contains characters with more than one Unicode encoding;"+
			" another keyboard or OS may type different bytes and fail to unlock this vault")
	}

	if err := a.vault.Initialize(ctx, path, pass); err != nil {
		return err
	}
	if err := a.recordVaultPath(path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Initialized vault at %s\n", path)
	return nil
}

func (a *app) openVault(ctx context.Context, arg string) error {
	path, err := a.location(arg)
	if err != nil {
		return err
	}
	pass, err := a.readSecret("Master passphrase: ")
	if err != nil {
		return err
	}
	if err := a.vault.Open(ctx, path, pass); err != nil {
		return err
	}
	if err := a.recordVaultPath(path); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "Opened vault at %s\n", path)
	return nil
}

// recordVaultPath makes path the configured vault. If the config cannot name
// it, the vault is locked so Save and Load never pair the new session key
// with the vault the config still points at.
func (a *app) recordVaultPath(path string) error {
	if err := a.cfg.SetVaultPath(path); err != nil {
		a.vault.Lock()
		return fmt.Errorf("recording vault path (vault locked): %w", err)
	}
	return nil
}

func (a *app) login(ctx context.Context) error {
	pass, err := a.readSecret("Master passphrase: ")
	if err != nil {
		return err
	}
	if err := a.vault.Login(ctx, pass); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Unlocked")
	return nil
}

// ensureUnlocked logs in unless a session is already live.
func (a *app) ensureUnlocked(ctx context.Context) error {
	if a.vault.Unlocked() {
		return nil
	}
	pass, err := a.readSecret("Master passphrase: ")
	if err != nil {
		return err
	}
	return a.vault.Login(ctx, pass)
}

func (a *app) load(ctx context.Context) error {
	payload, err := a.vault.Load(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, payload)
	return nil
}

func (a *app) save(ctx context.Context, payload string) error {
	if err := a.vault.Save(ctx, payload); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Saved")
	return nil
}

// readPayload reads the payload for save from a file, or from the input
// stream when src is empty or "-". One trailing newline is dropped.
func (a *app) readPayload(src string) (string, error) {
	var (
		data []byte
		err  error
	)
	if src == "" || src == "-" {
		data, err = io.ReadAll(a.in)
	} else {
		data, err = os.ReadFile(src)
	}
	if err != nil {
		return "", fmt.Errorf("reading payload: %w", err)
	}
	payload := strings.TrimSuffix(string(data), "\n")
	return strings.TrimSuffix(payload, "\r"), nil
}

func (a *app) status(ctx context.Context) error {
	vaultPath := "(not configured)"
	if p, err := a.cfg.VaultPath(ctx); err == nil {
		vaultPath = p
	}
	minutes, err := a.cfg.AutoLockMinutes()
	if err != nil {
		return err
	}
	autoLock := "disabled"
	if minutes > 0 {
		autoLock = fmt.Sprintf("%d minutes", minutes)
	}
	state := "locked"
	if a.vault.Unlocked() {
		state = "unlocked"
	}

	fmt.Fprintf(a.out, "config:    %s\n", a.cfg.Path())
	fmt.Fprintf(a.out, "vault:     %s\n", vaultPath)
	fmt.Fprintf(a.out, "backend:   %s\n", a.backend)
	fmt.Fprintf(a.out, "auto-lock: %s\n", autoLock)
	fmt.Fprintf(a.out, "state:     %s\n", state)
	return nil
}
