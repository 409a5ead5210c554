package application

import (
	"context"
	"encoding/hex"
	"fmt"
	"testing"

	"github.com/btcsuite/btcd/chaincfg"

	"github.com/outpointlabs/wallet-engine/internal/config"
	"github.com/outpointlabs/wallet-engine/internal/core/domain"
	"github.com/outpointlabs/wallet-engine/internal/infrastructure/storage/db/inmemory"
	"github.com/outpointlabs/wallet-engine/pkg/wallet"
)

var ctx = context.Background()

const (
	testDustThreshold   = 546
	testReorgDepth      = 6
	testDefaultStrategy = "largestFirst"
)

type testServices struct {
	wallet          *wallet.Wallet
	walletSvc       WalletService
	txSvc           TransactionService
	listenerSvc     ChainListenerService
	vaultRepository domain.VaultRepository
	utxoRepository  domain.UtxoRepository
	chainState      *ChainState

	lastTxID int
}

func newTestServices(t *testing.T) *testServices {
	config.Set(config.DustThresholdKey, testDustThreshold)
	config.Set(config.ReorgDepthKey, testReorgDepth)
	config.Set(config.CoinSelectionStrategyKey, testDefaultStrategy)

	w := newTestEngineWallet(t)
	vaultRepository := inmemory.NewVaultRepositoryImpl()
	utxoRepository := inmemory.NewUtxoRepositoryImpl()
	chainState := NewChainState()

	walletSvc, err := NewWalletService(
		w, wallet.P2WPKH, vaultRepository, utxoRepository, chainState,
	)
	if err != nil {
		t.Fatal(err)
	}
	txSvc := NewTransactionService(
		w, wallet.P2WPKH, vaultRepository, utxoRepository, chainState,
	)
	listenerSvc := NewChainListenerService(
		vaultRepository, utxoRepository, chainState,
	)

	return &testServices{
		wallet:          w,
		walletSvc:       walletSvc,
		txSvc:           txSvc,
		listenerSvc:     listenerSvc,
		vaultRepository: vaultRepository,
		utxoRepository:  utxoRepository,
		chainState:      chainState,
	}
}

func newTestEngineWallet(t *testing.T) *wallet.Wallet {
	seed, err := hex.DecodeString("000102030405060708090a0b0c0d0e0f")
	if err != nil {
		t.Fatal(err)
	}
	w, err := wallet.NewWalletFromSeed(wallet.NewWalletFromSeedOpts{
		Seed:    seed,
		Network: &chaincfg.RegressionNetParams,
	})
	if err != nil {
		t.Fatal(err)
	}
	return w
}

// fund derives a fresh receive address and feeds the listener an output
// paying value sats to it, as if observed at the given height.
func (s *testServices) fund(
	t *testing.T, value, height uint64,
) (*AddressInfo, domain.UtxoKey) {
	info, err := s.walletSvc.NewReceiveAddress(ctx)
	if err != nil {
		t.Fatal(err)
	}
	script, err := hex.DecodeString(info.Script)
	if err != nil {
		t.Fatal(err)
	}

	s.lastTxID++
	key := domain.UtxoKey{TxID: fmt.Sprintf("%064x", s.lastTxID), VOut: 0}
	if err := s.listenerSvc.RecordOutput(ctx, key, value, script, height); err != nil {
		t.Fatal(err)
	}
	return info, key
}

// newTestDestination returns a payment to an address the engine wallet does
// not own.
func newTestDestination(t *testing.T, amount uint64) Destination {
	seed, err := hex.DecodeString("fffcf9f6f3f0edeae7e4e1dedbd8d5d2")
	if err != nil {
		t.Fatal(err)
	}
	w, err := wallet.NewWalletFromSeed(wallet.NewWalletFromSeedOpts{
		Seed:    seed,
		Network: &chaincfg.RegressionNetParams,
	})
	if err != nil {
		t.Fatal(err)
	}
	addr, _, err := w.DeriveAddress(wallet.DeriveAddressOpts{
		DerivationPath: "m/84'/0'/0'/0/0",
		ScriptType:     wallet.P2WPKH,
	})
	if err != nil {
		t.Fatal(err)
	}
	return Destination{Address: addr, Amount: amount}
}

func newTestWatchOnlyWallet(t *testing.T, w *wallet.Wallet) *wallet.Wallet {
	xpub, err := w.ExtendedPublicKey(wallet.ExtendedKeyOpts{
		Account: DefaultAccount,
	})
	if err != nil {
		t.Fatal(err)
	}
	watchOnly, err := wallet.NewWalletFromExtendedKey(wallet.NewWalletFromExtendedKeyOpts{
		ExtendedKey: xpub,
		BasePath:    "m/84'/0'/0'",
		Network:     &chaincfg.RegressionNetParams,
	})
	if err != nil {
		t.Fatal(err)
	}
	return watchOnly
}
