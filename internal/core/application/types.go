package application

import (
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/chaincfg/chainhash"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/outpointlabs/wallet-engine/internal/core/domain"
)

var supportedStrategies = map[string]struct{}{
	"":               {},
	"largestFirst":   {},
	"smallestFirst":  {},
	"minimizeChange": {},
}

// WalletInfo contains info about the wallet backing the engine.
type WalletInfo struct {
	Network            string
	WatchOnly          bool
	AccountXPub        string
	BaseDerivationPath string
	NextExternalIndex  uint32
	NextInternalIndex  uint32
}

// AddressInfo groups an address with its output script and derivation path.
type AddressInfo struct {
	Address        string
	Script         string
	DerivationPath string
}

// BalanceInfo is the breakdown of the wallet balance by utxo state.
// Confirmed counts the spendable utxos buried at least minConfirmations
// deep, Unconfirmed the spendable ones above that depth, Locked the ones
// reserved by a pending transaction.
type BalanceInfo struct {
	Confirmed   uint64
	Unconfirmed uint64
	Locked      uint64
	Total       uint64
}

// UtxoInfo is the ledger view of a wallet utxo.
type UtxoInfo struct {
	TxID           string
	VOut           uint32
	Value          uint64
	Script         string
	DerivationPath string
	Confirmations  uint64
	Status         string
	SpentByTxID    string
}

// Destination is an amount to be paid to an address.
type Destination struct {
	Address string
	Amount  uint64
}

func (d Destination) validate(net *chaincfg.Params) error {
	if err := validation.ValidateStruct(
		&d,
		validation.Field(&d.Address, validation.Required),
		validation.Field(&d.Amount, validation.By(validateAmount)),
	); err != nil {
		return err
	}

	addr, err := btcutil.DecodeAddress(d.Address, net)
	if err != nil {
		return ErrInvalidAddress
	}
	if !addr.IsForNet(net) {
		return ErrInvalidAddress
	}
	return nil
}

func (d Destination) toTxOut(net *chaincfg.Params) (*wire.TxOut, error) {
	addr, err := btcutil.DecodeAddress(d.Address, net)
	if err != nil {
		return nil, ErrInvalidAddress
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return nil, err
	}
	return wire.NewTxOut(int64(d.Amount), script), nil
}

// BuildTransactionRequest groups the args of the BuildTransaction operation.
// Either FixedFeeAmount or SatsPerVByte must be given. CoinSelectionStrategy
// falls back to the service default when empty
type BuildTransactionRequest struct {
	Destinations          []Destination
	SatsPerVByte          decimal.Decimal
	FixedFeeAmount        uint64
	CoinSelectionStrategy string
}

func (r BuildTransactionRequest) validate(net *chaincfg.Params) error {
	if len(r.Destinations) <= 0 {
		return ErrMissingDestinations
	}
	for _, dest := range r.Destinations {
		if err := dest.validate(net); err != nil {
			return err
		}
	}
	if _, ok := supportedStrategies[r.CoinSelectionStrategy]; !ok {
		return ErrUnknownStrategy
	}
	return nil
}

func (r BuildTransactionRequest) totalAmount() uint64 {
	total := uint64(0)
	for _, dest := range r.Destinations {
		total += dest.Amount
	}
	return total
}

// BuildTransactionResult is the outcome of a BuildTransaction operation. The
// selected utxos stay reserved under BuildID until the transaction is either
// signed or abandoned.
type BuildTransactionResult struct {
	BuildID       uuid.UUID
	TxHex         string
	SelectedUtxos []UtxoInfo
	FeeAmount     uint64
	ChangeAmount  uint64
}

// SignTransactionResult is the outcome of a SignTransaction operation.
type SignTransactionResult struct {
	TxHex string
	TxID  string
}

// utxoCoin adapts a ledger utxo to the coin selection interface.
type utxoCoin struct {
	utxo      domain.Utxo
	tipHeight uint64
}

func (c utxoCoin) Hash() *chainhash.Hash {
	hash, _ := chainhash.NewHashFromStr(c.utxo.TxID)
	return hash
}

func (c utxoCoin) Index() uint32 {
	return c.utxo.VOut
}

func (c utxoCoin) Value() uint64 {
	return c.utxo.Value
}

func (c utxoCoin) PkScript() []byte {
	return c.utxo.Script
}

func (c utxoCoin) NumConfs() int64 {
	return int64(c.utxo.Confirmations(c.tipHeight))
}

func utxoInfo(utxo domain.Utxo, tipHeight uint64) UtxoInfo {
	return UtxoInfo{
		TxID:           utxo.TxID,
		VOut:           utxo.VOut,
		Value:          utxo.Value,
		Script:         hex.EncodeToString(utxo.Script),
		DerivationPath: utxo.DerivationPath,
		Confirmations:  utxo.Confirmations(tipHeight),
		Status:         utxo.Status.String(),
		SpentByTxID:    utxo.SpentByTxID,
	}
}
