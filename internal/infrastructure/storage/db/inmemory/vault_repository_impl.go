package inmemory

import (
	"context"
	"sync"

	"github.com/outpointlabs/wallet-engine/internal/core/domain"
)

type vaultRepositoryImpl struct {
	vault *domain.Vault
	lock  *sync.RWMutex
}

// NewVaultRepositoryImpl returns an in-memory implementation of the domain
// VaultRepository.
func NewVaultRepositoryImpl() domain.VaultRepository {
	return &vaultRepositoryImpl{
		lock: &sync.RWMutex{},
	}
}

func (r *vaultRepositoryImpl) GetOrCreateVault(
	ctx context.Context, accountXPub, baseDerivationPath string,
) (*domain.Vault, error) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.vault != nil {
		if !r.vault.BelongsTo(accountXPub) {
			return nil, domain.ErrVaultWalletMismatch
		}
		return copyVault(r.vault), nil
	}

	vault, err := domain.NewVault(accountXPub, baseDerivationPath)
	if err != nil {
		return nil, err
	}
	r.vault = vault
	return copyVault(vault), nil
}

func (r *vaultRepositoryImpl) GetVault(
	ctx context.Context,
) (*domain.Vault, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	if r.vault == nil {
		return nil, domain.ErrVaultNotInitialized
	}
	return copyVault(r.vault), nil
}

func (r *vaultRepositoryImpl) UpdateVault(
	ctx context.Context,
	updateFn func(vault *domain.Vault) (*domain.Vault, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if r.vault == nil {
		return domain.ErrVaultNotInitialized
	}

	updatedVault, err := updateFn(copyVault(r.vault))
	if err != nil {
		return err
	}

	r.vault = copyVault(updatedVault)
	return nil
}

// copyVault clones the script index too, so that update functions cannot
// leak partial writes into the stored vault.
func copyVault(v *domain.Vault) *domain.Vault {
	pathsByScript := make(map[string]string, len(v.DerivationPathByScript))
	for script, path := range v.DerivationPathByScript {
		pathsByScript[script] = path
	}

	return &domain.Vault{
		AccountXPub:            v.AccountXPub,
		BaseDerivationPath:     v.BaseDerivationPath,
		NextExternalIndex:      v.NextExternalIndex,
		NextInternalIndex:      v.NextInternalIndex,
		DerivationPathByScript: pathsByScript,
	}
}
