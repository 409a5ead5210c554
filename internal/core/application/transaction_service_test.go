package application

import (
	"encoding/hex"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/outpointlabs/wallet-engine/pkg/coinselect"
	"github.com/outpointlabs/wallet-engine/pkg/wallet"
)

func TestBuildAndSignTransaction(t *testing.T) {
	svc := newTestServices(t)
	_, key := svc.fund(t, 100000, 100)
	if err := svc.listenerSvc.ConfirmBlock(ctx, 100, "hash100", "hash99"); err != nil {
		t.Fatal(err)
	}

	res, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
		Destinations:   []Destination{newTestDestination(t, 50000)},
		FixedFeeAmount: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, 1, len(res.SelectedUtxos))
	assert.Equal(t, key.TxID, res.SelectedUtxos[0].TxID)
	assert.Equal(t, uint64(1000), res.FeeAmount)
	assert.Equal(t, uint64(49000), res.ChangeAmount)

	tx, err := deserializeTx(res.TxHex)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, len(tx.TxIn))
	assert.Equal(t, 2, len(tx.TxOut))
	assert.Equal(t, int64(50000), tx.TxOut[0].Value)
	assert.Equal(t, int64(49000), tx.TxOut[1].Value)

	balance, err := svc.walletSvc.GetBalance(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint64(100000), balance.Locked)
	assert.Equal(t, uint64(0), balance.Confirmed)

	vault, err := svc.vaultRepository.GetVault(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint32(1), vault.NextInternalIndex)
	assert.True(t, vault.IsRelevantScript(hex.EncodeToString(tx.TxOut[1].PkScript)))

	signed, err := svc.txSvc.SignTransaction(ctx, res.BuildID)
	if err != nil {
		t.Fatal(err)
	}
	assert.NotEmpty(t, signed.TxHex)
	assert.NotEmpty(t, signed.TxID)

	utxo, err := svc.utxoRepository.GetUtxoByKey(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, utxo.IsSpent())
	assert.Equal(t, signed.TxID, utxo.SpentByTxID)

	balance, err = svc.walletSvc.GetBalance(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint64(0), balance.Total)

	_, err = svc.txSvc.SignTransaction(ctx, res.BuildID)
	assert.Equal(t, ErrBuildNotFound, err)
}

func TestBuildTransactionWithFeeRate(t *testing.T) {
	svc := newTestServices(t)
	svc.fund(t, 100000, 100)

	res, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
		Destinations: []Destination{newTestDestination(t, 50000)},
		SatsPerVByte: decimal.NewFromInt(1),
	})
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, uint64(141), res.FeeAmount)
	assert.Equal(t, uint64(49859), res.ChangeAmount)
	assertTxBalances(t, res, 100000)
}

func TestBuildTransactionWithMultipleDestinations(t *testing.T) {
	svc := newTestServices(t)
	svc.fund(t, 100000, 100)

	res, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
		Destinations: []Destination{
			newTestDestination(t, 30000),
			newTestDestination(t, 20000),
		},
		SatsPerVByte: decimal.NewFromInt(1),
	})
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, uint64(172), res.FeeAmount)
	assert.Equal(t, uint64(49828), res.ChangeAmount)

	tx, err := deserializeTx(res.TxHex)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 3, len(tx.TxOut))
	assert.Equal(t, int64(30000), tx.TxOut[0].Value)
	assert.Equal(t, int64(20000), tx.TxOut[1].Value)
	assert.Equal(t, int64(49828), tx.TxOut[2].Value)
}

func TestBuildTransactionFoldsDustChange(t *testing.T) {
	svc := newTestServices(t)
	svc.fund(t, 50541, 100)

	res, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
		Destinations:   []Destination{newTestDestination(t, 50000)},
		FixedFeeAmount: 300,
	})
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, uint64(541), res.FeeAmount)
	assert.Equal(t, uint64(0), res.ChangeAmount)

	tx, err := deserializeTx(res.TxHex)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, len(tx.TxOut))

	vault, err := svc.vaultRepository.GetVault(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint32(0), vault.NextInternalIndex)
}

func TestBuildTransactionPreventsDoubleSelection(t *testing.T) {
	svc := newTestServices(t)
	svc.fund(t, 100000, 100)

	if _, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
		Destinations:   []Destination{newTestDestination(t, 50000)},
		FixedFeeAmount: 1000,
	}); err != nil {
		t.Fatal(err)
	}

	_, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
		Destinations:   []Destination{newTestDestination(t, 10000)},
		FixedFeeAmount: 1000,
	})
	assert.True(t, errors.Is(err, coinselect.ErrInsufficientFunds))
}

func TestFailingBuildTransaction(t *testing.T) {
	t.Run("no destinations", func(t *testing.T) {
		svc := newTestServices(t)
		svc.fund(t, 100000, 100)

		_, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
			FixedFeeAmount: 1000,
		})
		assert.Equal(t, ErrMissingDestinations, err)
	})

	t.Run("zero amount", func(t *testing.T) {
		svc := newTestServices(t)
		svc.fund(t, 100000, 100)

		dest := newTestDestination(t, 50000)
		dest.Amount = 0
		_, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
			Destinations:   []Destination{dest},
			FixedFeeAmount: 1000,
		})
		assert.Error(t, err)
	})

	t.Run("invalid address", func(t *testing.T) {
		svc := newTestServices(t)
		svc.fund(t, 100000, 100)

		_, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
			Destinations:   []Destination{{Address: "notanaddress", Amount: 10000}},
			FixedFeeAmount: 1000,
		})
		assert.Equal(t, ErrInvalidAddress, err)
	})

	t.Run("unknown strategy", func(t *testing.T) {
		svc := newTestServices(t)
		svc.fund(t, 100000, 100)

		_, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
			Destinations:          []Destination{newTestDestination(t, 10000)},
			FixedFeeAmount:        1000,
			CoinSelectionStrategy: "bestFit",
		})
		assert.Equal(t, ErrUnknownStrategy, err)
	})

	t.Run("missing fee", func(t *testing.T) {
		svc := newTestServices(t)
		svc.fund(t, 100000, 100)

		_, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
			Destinations: []Destination{newTestDestination(t, 10000)},
		})
		assert.True(t, errors.Is(err, wallet.ErrInvalidFeeRate))

		vault, err := svc.vaultRepository.GetVault(ctx)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, uint32(0), vault.NextInternalIndex)
	})

	t.Run("empty ledger", func(t *testing.T) {
		svc := newTestServices(t)

		_, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
			Destinations:   []Destination{newTestDestination(t, 50000)},
			FixedFeeAmount: 1000,
		})
		assert.True(t, errors.Is(err, coinselect.ErrInsufficientFunds))
	})

	t.Run("insufficient funds", func(t *testing.T) {
		svc := newTestServices(t)
		svc.fund(t, 10000, 100)

		_, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
			Destinations: []Destination{newTestDestination(t, 50000)},
			SatsPerVByte: decimal.NewFromInt(1),
		})
		assert.True(t, errors.Is(err, coinselect.ErrInsufficientFunds))

		vault, err := svc.vaultRepository.GetVault(ctx)
		if err != nil {
			t.Fatal(err)
		}
		assert.Equal(t, uint32(0), vault.NextInternalIndex)
	})
}

func TestAbandonTransaction(t *testing.T) {
	svc := newTestServices(t)
	_, key := svc.fund(t, 100000, 100)

	res, err := svc.txSvc.BuildTransaction(ctx, BuildTransactionRequest{
		Destinations:   []Destination{newTestDestination(t, 50000)},
		FixedFeeAmount: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}

	if err := svc.txSvc.AbandonTransaction(ctx, res.BuildID); err != nil {
		t.Fatal(err)
	}

	utxo, err := svc.utxoRepository.GetUtxoByKey(ctx, key)
	if err != nil {
		t.Fatal(err)
	}
	assert.True(t, utxo.IsSpendable())

	vault, err := svc.vaultRepository.GetVault(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint32(0), vault.NextInternalIndex)

	err = svc.txSvc.AbandonTransaction(ctx, res.BuildID)
	assert.Equal(t, ErrBuildNotFound, err)

	_, err = svc.txSvc.SignTransaction(ctx, res.BuildID)
	assert.Equal(t, ErrBuildNotFound, err)
}

func TestFailingSignTransactionWithWatchOnlyWallet(t *testing.T) {
	svc := newTestServices(t)
	svc.fund(t, 100000, 100)

	watchOnly := newTestWatchOnlyWallet(t, svc.wallet)
	watchOnlyTxSvc := NewTransactionService(
		watchOnly, wallet.P2WPKH,
		svc.vaultRepository, svc.utxoRepository, svc.chainState,
	)

	res, err := watchOnlyTxSvc.BuildTransaction(ctx, BuildTransactionRequest{
		Destinations:   []Destination{newTestDestination(t, 50000)},
		FixedFeeAmount: 1000,
	})
	if err != nil {
		t.Fatal(err)
	}

	_, err = watchOnlyTxSvc.SignTransaction(ctx, res.BuildID)
	assert.True(t, errors.Is(err, wallet.ErrMissingPrivateKey))

	spendable, err := svc.utxoRepository.GetSpendableUtxos(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, 1, len(spendable))

	vault, err := svc.vaultRepository.GetVault(ctx)
	if err != nil {
		t.Fatal(err)
	}
	assert.Equal(t, uint32(0), vault.NextInternalIndex)

	_, err = watchOnlyTxSvc.SignTransaction(ctx, res.BuildID)
	assert.Equal(t, ErrBuildNotFound, err)
}

func assertTxBalances(t *testing.T, res *BuildTransactionResult, inValue uint64) {
	tx, err := deserializeTx(res.TxHex)
	if err != nil {
		t.Fatal(err)
	}

	outValue := uint64(0)
	for _, out := range tx.TxOut {
		outValue += uint64(out.Value)
	}
	assert.Equal(t, inValue, outValue+res.FeeAmount)
}
