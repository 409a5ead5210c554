package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/wire"
	"github.com/shopspring/decimal"

	"github.com/outpointlabs/wallet-engine/pkg/coinselect"
)

const (
	// TxVersion is the version of the transactions crafted by the wallet
	TxVersion = 2

	// DefaultDustThreshold is the amount in satoshis below which an eventual
	// change is folded into the fee instead of producing an output
	DefaultDustThreshold uint64 = 546
)

// CreateTx crafts a new empty transaction
func CreateTx() *wire.MsgTx {
	return wire.NewMsgTx(TxVersion)
}

// UpdateTxOpts is the struct given to UpdateTx method
type UpdateTxOpts struct {
	Unspents             []coinselect.Coin
	Outputs              []*wire.TxOut
	ChangeDerivationPath string
	ChangeScriptType     int
	SatsPerVByte         decimal.Decimal
	FixedFeeAmount       uint64
	DustThreshold        uint64
	Selector             coinselect.Selector
}

func (o UpdateTxOpts) validate() error {
	if len(o.Outputs) <= 0 {
		return ErrEmptyOutputs
	}
	for _, out := range o.Outputs {
		if out.Value <= 0 {
			return ErrZeroOutputAmount
		}
		if len(out.PkScript) <= 0 {
			return ErrNullOutputScript
		}
	}

	if len(o.Unspents) <= 0 {
		return ErrEmptyUnspents
	}
	for _, u := range o.Unspents {
		if ScriptTypeFromScript(u.PkScript()) == NonStandard {
			return fmt.Errorf(
				"%w for unspent %s:%d", ErrUnsupportedScriptType, u.Hash(), u.Index(),
			)
		}
	}

	if len(o.ChangeDerivationPath) <= 0 {
		return ErrNullChangeDerivationPath
	}
	if _, err := ParseDerivationPath(o.ChangeDerivationPath); err != nil {
		return err
	}
	if !isDerivableScriptType(o.ChangeScriptType) {
		return ErrUnsupportedScriptType
	}

	if o.FixedFeeAmount == 0 && o.SatsPerVByte.Sign() <= 0 {
		return ErrInvalidFeeRate
	}

	return nil
}

// UpdateTxResult is the struct returned by UpdateTx method.
// UnsignedTx: the transaction with the selected inputs and all outputs
// SelectedUnspents: the subset of unspents funding the transaction
// ChangeAmount: the amount of the eventual change output, 0 if none
// FeeAmount: the amount in satoshi left to the network as fee
type UpdateTxResult struct {
	UnsignedTx       *wire.MsgTx
	SelectedUnspents []coinselect.Coin
	ChangeAmount     uint64
	FeeAmount        uint64
}

// UpdateTx selects the unspents funding the provided outputs plus the network
// fee and crafts the unsigned transaction spending them. The fee is either
// the fixed amount given, or is estimated from the fee rate by looping coin
// selection and size estimation until the selected set covers the fee it
// implies. The amount exceeding outputs and fee becomes a change output on
// the provided change path, unless below the dust threshold, in which case it
// is folded into the fee. Outputs keep the order they are given in, the
// eventual change is appended after them.
// The returned transaction always satisfies
//
//	sum(inputs) == sum(outputs) + fee
func (w *Wallet) UpdateTx(opts UpdateTxOpts) (*UpdateTxResult, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := w.validate(); err != nil {
		return nil, err
	}

	selector := opts.Selector
	if selector == nil {
		selector = coinselect.SelectLargestFirst
	}
	dustThreshold := opts.DustThreshold
	if dustThreshold == 0 {
		dustThreshold = DefaultDustThreshold
	}

	targetAmount := uint64(0)
	outScriptTypes := make([]int, 0, len(opts.Outputs)+1)
	for _, out := range opts.Outputs {
		targetAmount += uint64(out.Value)
		outScriptTypes = append(outScriptTypes, ScriptTypeFromScript(out.PkScript))
	}
	// estimations account for the eventual change output
	outScriptTypes = append(outScriptTypes, opts.ChangeScriptType)

	_, changeScript, err := w.DeriveAddress(DeriveAddressOpts{
		DerivationPath: opts.ChangeDerivationPath,
		ScriptType:     opts.ChangeScriptType,
	})
	if err != nil {
		return nil, err
	}

	var selectedUnspents []coinselect.Coin
	var changeAmount uint64
	feeAmount := opts.FixedFeeAmount

	if feeAmount > 0 {
		selectedUnspents, changeAmount, err = selector.Select(
			targetAmount+feeAmount, opts.Unspents,
		)
		if err != nil {
			return nil, err
		}
	} else {
		// the implied fee grows with the number of selected inputs, while a
		// bigger target can only grow the selection. Looping until the fee is
		// covered by the selection is therefore guaranteed to settle, or to
		// run out of funds
		for {
			selected, _, serr := selector.Select(
				targetAmount+feeAmount, opts.Unspents,
			)
			if serr != nil {
				return nil, serr
			}

			inScriptTypes := make([]int, 0, len(selected))
			for _, u := range selected {
				inScriptTypes = append(inScriptTypes, ScriptTypeFromScript(u.PkScript()))
			}
			estimatedFeeAmount := EstimateFeeAmount(
				inScriptTypes, nil, nil, outScriptTypes, nil, opts.SatsPerVByte,
			)

			if estimatedFeeAmount <= feeAmount {
				feeAmount = estimatedFeeAmount
				selectedUnspents = selected
				break
			}
			feeAmount = estimatedFeeAmount
		}

		totalAmount := uint64(0)
		for _, u := range selectedUnspents {
			totalAmount += u.Value()
		}
		changeAmount = totalAmount - targetAmount - feeAmount
	}

	if changeAmount > 0 && changeAmount < dustThreshold {
		feeAmount += changeAmount
		changeAmount = 0
	}

	tx := CreateTx()
	for _, u := range selectedUnspents {
		outpoint := wire.NewOutPoint(u.Hash(), u.Index())
		tx.AddTxIn(wire.NewTxIn(outpoint, nil, nil))
	}
	for _, out := range opts.Outputs {
		tx.AddTxOut(out)
	}
	if changeAmount > 0 {
		tx.AddTxOut(wire.NewTxOut(int64(changeAmount), changeScript))
	}

	return &UpdateTxResult{
		UnsignedTx:       tx,
		SelectedUnspents: selectedUnspents,
		ChangeAmount:     changeAmount,
		FeeAmount:        feeAmount,
	}, nil
}
