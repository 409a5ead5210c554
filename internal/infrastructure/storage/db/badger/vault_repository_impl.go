package dbbadger

import (
	"context"

	"github.com/dgraph-io/badger/v3"
	"github.com/outpointlabs/wallet-engine/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

// The vault is a singleton, stored under a fixed key.
const vaultKey = "vault"

type vaultRepositoryImpl struct {
	db *DbManager
}

// NewVaultRepositoryImpl returns a badger implementation of the domain
// VaultRepository.
func NewVaultRepositoryImpl(db *DbManager) domain.VaultRepository {
	return vaultRepositoryImpl{
		db: db,
	}
}

func (v vaultRepositoryImpl) GetOrCreateVault(
	ctx context.Context, accountXPub, baseDerivationPath string,
) (*domain.Vault, error) {
	vault, err := v.getVault()
	if err != nil && err != domain.ErrVaultNotInitialized {
		return nil, err
	}

	if vault != nil {
		if !vault.BelongsTo(accountXPub) {
			return nil, domain.ErrVaultWalletMismatch
		}
		return vault, nil
	}

	vault, err = domain.NewVault(accountXPub, baseDerivationPath)
	if err != nil {
		return nil, err
	}
	if err := v.db.VaultStore.Insert(vaultKey, *vault); err != nil {
		return nil, err
	}
	return vault, nil
}

func (v vaultRepositoryImpl) GetVault(
	ctx context.Context,
) (*domain.Vault, error) {
	return v.getVault()
}

func (v vaultRepositoryImpl) UpdateVault(
	ctx context.Context,
	updateFn func(vault *domain.Vault) (*domain.Vault, error),
) error {
	return v.db.VaultStore.Badger().Update(func(tx *badger.Txn) error {
		var currentVault domain.Vault
		if err := v.db.VaultStore.TxGet(tx, vaultKey, &currentVault); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrVaultNotInitialized
			}
			return err
		}

		updatedVault, err := updateFn(&currentVault)
		if err != nil {
			return err
		}

		return v.db.VaultStore.TxUpdate(tx, vaultKey, *updatedVault)
	})
}

func (v vaultRepositoryImpl) getVault() (*domain.Vault, error) {
	var vault domain.Vault
	if err := v.db.VaultStore.Get(vaultKey, &vault); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrVaultNotInitialized
		}
		return nil, err
	}
	return &vault, nil
}
