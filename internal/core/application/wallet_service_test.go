package application

import (
	"encoding/hex"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/stretchr/testify/assert"

	"github.com/outpointlabs/wallet-engine/internal/core/domain"
	"github.com/outpointlabs/wallet-engine/pkg/wallet"
)

func TestNewWalletService(t *testing.T) {
	svc := newTestServices(t)

	info, err := svc.walletSvc.GetInfo(ctx)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, chaincfg.RegressionNetParams.Name, info.Network)
	assert.Equal(t, false, info.WatchOnly)
	assert.Equal(t, "m/84'/0'/0'", info.BaseDerivationPath)
	assert.NotEmpty(t, info.AccountXPub)
	assert.Equal(t, uint32(0), info.NextExternalIndex)
	assert.Equal(t, uint32(0), info.NextInternalIndex)
}

func TestNewWalletServiceWithWatchOnlyWallet(t *testing.T) {
	svc := newTestServices(t)
	watchOnly := newTestWatchOnlyWallet(t, svc.wallet)

	walletSvc, err := NewWalletService(
		watchOnly, wallet.P2WPKH,
		svc.vaultRepository, svc.utxoRepository, svc.chainState,
	)
	if err != nil {
		t.Fatal(err)
	}

	info, err := walletSvc.GetInfo(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, true, info.WatchOnly)
	assert.Equal(t, "m/84'/0'/0'", info.BaseDerivationPath)
}

func TestFailingNewWalletService(t *testing.T) {
	svc := newTestServices(t)

	seed, _ := hex.DecodeString("0f0e0d0c0b0a09080706050403020100")
	otherWallet, err := wallet.NewWalletFromSeed(wallet.NewWalletFromSeedOpts{
		Seed:    seed,
		Network: &chaincfg.RegressionNetParams,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = NewWalletService(
		otherWallet, wallet.P2WPKH,
		svc.vaultRepository, svc.utxoRepository, svc.chainState,
	)
	assert.Equal(t, domain.ErrVaultWalletMismatch, err)
}

func TestNewReceiveAddress(t *testing.T) {
	svc := newTestServices(t)

	first, err := svc.walletSvc.NewReceiveAddress(ctx)
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.walletSvc.NewReceiveAddress(ctx)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, "m/84'/0'/0'/0/0", first.DerivationPath)
	assert.Equal(t, "m/84'/0'/0'/0/1", second.DerivationPath)
	assert.NotEqual(t, first.Address, second.Address)
	assert.NotEqual(t, first.Script, second.Script)

	vault, err := svc.vaultRepository.GetVault(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, vault.IsRelevantScript(first.Script))
	assert.True(t, vault.IsRelevantScript(second.Script))
	assert.Equal(t, uint32(2), vault.NextExternalIndex)
}

func TestGetBalance(t *testing.T) {
	svc := newTestServices(t)

	svc.fund(t, 100000, 100)
	svc.fund(t, 50000, 101)
	svc.fund(t, 30000, 0)

	if err := svc.listenerSvc.ConfirmBlock(ctx, 100, "hash100", "hash99"); err != nil {
		t.Fatal(err)
	}
	if err := svc.listenerSvc.ConfirmBlock(ctx, 101, "hash101", "hash100"); err != nil {
		t.Fatal(err)
	}

	balance, err := svc.walletSvc.GetBalance(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint64(150000), balance.Confirmed)
	assert.Equal(t, uint64(30000), balance.Unconfirmed)
	assert.Equal(t, uint64(0), balance.Locked)
	assert.Equal(t, uint64(180000), balance.Total)

	balance, err = svc.walletSvc.GetBalance(ctx, 2)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint64(100000), balance.Confirmed)
	assert.Equal(t, uint64(80000), balance.Unconfirmed)

	balance, err = svc.walletSvc.GetBalance(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint64(180000), balance.Confirmed)
	assert.Equal(t, uint64(0), balance.Unconfirmed)
}

func TestListUtxos(t *testing.T) {
	svc := newTestServices(t)

	info, key := svc.fund(t, 100000, 100)
	if err := svc.listenerSvc.ConfirmBlock(ctx, 101, "hash101", "hash100"); err != nil {
		t.Fatal(err)
	}

	utxos, err := svc.walletSvc.ListUtxos(ctx)
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 1, len(utxos))
	assert.Equal(t, key.TxID, utxos[0].TxID)
	assert.Equal(t, key.VOut, utxos[0].VOut)
	assert.Equal(t, uint64(100000), utxos[0].Value)
	assert.Equal(t, info.Script, utxos[0].Script)
	assert.Equal(t, info.DerivationPath, utxos[0].DerivationPath)
	assert.Equal(t, uint64(2), utxos[0].Confirmations)
	assert.Equal(t, "unspent", utxos[0].Status)
}
