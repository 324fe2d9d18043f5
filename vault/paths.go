package vault

import (
	"context"

	"github.com/jmcleod/ironvault/vaulterr"
)

// PathResolver resolves the location of the current vault. Implementations
// return ErrNotInitialized when no vault has been configured.
type PathResolver interface {
	VaultPath(ctx context.Context) (string, error)
}

// StaticPath is a PathResolver that always resolves to itself.
type StaticPath string

func (p StaticPath) VaultPath(ctx context.Context) (string, error) {
	if p == "" {
		return "", vaulterr.E(vaulterr.NotInitialized, "vault.StaticPath", nil)
	}
	return string(p), nil
}
