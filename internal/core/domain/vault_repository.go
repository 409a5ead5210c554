package domain

import (
	"context"
)

// VaultRepository gives access to the singleton Vault of the engine
type VaultRepository interface {
	// GetOrCreateVault returns the stored vault, creating it with the
	// provided key material when missing. A stored vault bound to a different
	// account key is rejected with ErrVaultWalletMismatch
	GetOrCreateVault(
		ctx context.Context, accountXPub, baseDerivationPath string,
	) (*Vault, error)
	// GetVault returns the stored vault, or ErrVaultNotInitialized
	GetVault(ctx context.Context) (*Vault, error)
	// UpdateVault applies the update function to the stored vault and
	// persists the returned value, all atomically
	UpdateVault(
		ctx context.Context,
		updateFn func(v *Vault) (*Vault, error),
	) error
}
