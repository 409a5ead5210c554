package inmemory

import (
	"errors"
	"testing"

	"github.com/outpointlabs/wallet-engine/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

const (
	testXPub     = "xpub6CUGRUonZSQ4TWtTMmzXdrXDtypWKiKrhko4egpiMZbpiaQL2jkwSB1icqYh2cfDfVxdx4df189oLKnC5fSwqPfgyP3hooxujYzAu3fDVmz"
	testBasePath = "m/84'/0'/0'"
)

func TestGetOrCreateVault(t *testing.T) {
	vaultRepository := NewVaultRepositoryImpl()

	_, err := vaultRepository.GetVault(ctx)
	assert.Equal(t, domain.ErrVaultNotInitialized, err)

	vault, err := vaultRepository.GetOrCreateVault(ctx, testXPub, testBasePath)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, testXPub, vault.AccountXPub)

	_, err = vaultRepository.GetOrCreateVault(
		ctx,
		"xpub6Ctx1uydbN9YF6CVVbQFC4XSTzf33rdAfPB7pktYBxYY8yZgV276nSSVdCwkdbDMvtjSbfyKyrJyKDjcZ8BnPfxjZVRGNMyMgVUDpFhmZs6",
		testBasePath,
	)
	assert.Equal(t, domain.ErrVaultWalletMismatch, err)
}

func TestUpdateVault(t *testing.T) {
	vaultRepository := NewVaultRepositoryImpl()

	if _, err := vaultRepository.GetOrCreateVault(
		ctx, testXPub, testBasePath,
	); err != nil {
		t.Fatal(err)
	}

	err := vaultRepository.UpdateVault(
		ctx, func(v *domain.Vault) (*domain.Vault, error) {
			path := v.NextExternalPath()
			v.AddScript("0014aabb", path)
			return v, nil
		},
	)
	if err != nil {
		t.Fatal(err)
	}

	vault, err := vaultRepository.GetVault(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint32(1), vault.NextExternalIndex)
	assert.True(t, vault.IsRelevantScript("0014aabb"))
}

func TestFailingUpdateVaultLeavesVaultUntouched(t *testing.T) {
	vaultRepository := NewVaultRepositoryImpl()

	if _, err := vaultRepository.GetOrCreateVault(
		ctx, testXPub, testBasePath,
	); err != nil {
		t.Fatal(err)
	}

	expectedErr := errors.New("update aborted")
	err := vaultRepository.UpdateVault(
		ctx, func(v *domain.Vault) (*domain.Vault, error) {
			path := v.NextInternalPath()
			v.AddScript("0014ccdd", path)
			return nil, expectedErr
		},
	)
	assert.Equal(t, expectedErr, err)

	vault, err := vaultRepository.GetVault(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint32(0), vault.NextInternalIndex)
	assert.False(t, vault.IsRelevantScript("0014ccdd"))
}

func TestVaultCopiesAreIsolated(t *testing.T) {
	vaultRepository := NewVaultRepositoryImpl()

	if _, err := vaultRepository.GetOrCreateVault(
		ctx, testXPub, testBasePath,
	); err != nil {
		t.Fatal(err)
	}

	vault, err := vaultRepository.GetVault(ctx)
	if err != nil {
		t.Fatal(err)
	}
	vault.AddScript("0014aabb", "m/84'/0'/0'/0/0")

	stored, err := vaultRepository.GetVault(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.False(t, stored.IsRelevantScript("0014aabb"))
}
