package domain

import (
	"github.com/outpointlabs/wallet-engine/pkg/wallet"
)

// Vault is the persistent state of the wallet's derivation activity: the
// frontier of the external and internal branches, next index to derive per
// branch, and the index mapping every derived output script to its derivation
// path. The account extended public key pins the vault to the wallet it
// belongs to
type Vault struct {
	AccountXPub            string
	BaseDerivationPath     string
	NextExternalIndex      uint32
	NextInternalIndex      uint32
	DerivationPathByScript map[string]string
}

// NewVault returns a Vault tracking the wallet subtree rooted at the provided
// base path, with both branch frontiers starting at index 0
func NewVault(accountXPub, baseDerivationPath string) (*Vault, error) {
	if len(accountXPub) <= 0 {
		return nil, ErrNullAccountKey
	}
	if len(baseDerivationPath) <= 0 {
		return nil, ErrNullBasePath
	}
	if _, err := wallet.ParseDerivationPath(baseDerivationPath); err != nil {
		return nil, err
	}

	return &Vault{
		AccountXPub:            accountXPub,
		BaseDerivationPath:     baseDerivationPath,
		DerivationPathByScript: map[string]string{},
	}, nil
}
