package wallet

import (
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2/ecdsa"
	"github.com/btcsuite/btcd/txscript"
	"github.com/btcsuite/btcd/wire"
)

// Input is the previous output spent by a transaction input, along with the
// derivation path and script template needed to redeem it
type Input struct {
	PrevoutScript  []byte
	PrevoutValue   uint64
	DerivationPath string
	ScriptType     int
}

func (in Input) validate() error {
	if len(in.PrevoutScript) <= 0 {
		return ErrNullOutputScript
	}
	if _, err := ParseDerivationPath(in.DerivationPath); err != nil {
		return err
	}
	if !isDerivableScriptType(in.ScriptType) {
		return ErrUnsupportedScriptType
	}
	return nil
}

// SignTransactionOpts is the struct given to SignTransaction method
type SignTransactionOpts struct {
	TxHex  string
	Inputs []Input
}

func (o SignTransactionOpts) validate() error {
	tx, err := decodeTxHex(o.TxHex)
	if err != nil {
		return err
	}
	if len(o.Inputs) <= 0 {
		return ErrEmptyInputs
	}
	if len(tx.TxIn) != len(o.Inputs) {
		return ErrInvalidInputsLength
	}

	for i, in := range o.Inputs {
		if err := in.validate(); err != nil {
			return fmt.Errorf("invalid prevout descriptor for input %d: %w", i, err)
		}
	}

	return nil
}

// SignTransaction produces a signature for every input of the provided
// transaction using the keys derived at the paths of the prevout descriptors,
// given in the same order of the tx inputs. Signatures are deterministic,
// signing the same transaction twice gives the very same result. Every
// signature is verified against the derived public key before being admitted
// to the input, and the first failure aborts the whole signing leaving no
// partially signed result. The signed transaction is returned in hex format
func (w *Wallet) SignTransaction(opts SignTransactionOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if err := w.validate(); err != nil {
		return "", err
	}

	tx, _ := decodeTxHex(opts.TxHex)

	fetcher := txscript.NewMultiPrevOutFetcher(nil)
	for i, in := range tx.TxIn {
		fetcher.AddPrevOut(in.PreviousOutPoint, wire.NewTxOut(
			int64(opts.Inputs[i].PrevoutValue), opts.Inputs[i].PrevoutScript,
		))
	}
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	for i := range tx.TxIn {
		if err := w.signInput(tx, i, sigHashes, opts.Inputs[i]); err != nil {
			return "", err
		}
	}

	return encodeTxHex(tx)
}

// SignInputOpts is the struct given to SignInput method
type SignInputOpts struct {
	TxHex   string
	InIndex uint32
	Input   Input
}

func (o SignInputOpts) validate() error {
	tx, err := decodeTxHex(o.TxHex)
	if err != nil {
		return err
	}
	if int(o.InIndex) >= len(tx.TxIn) {
		return fmt.Errorf(
			"input index must be in range [0, %d]",
			len(tx.TxIn)-1,
		)
	}
	if err := o.Input.validate(); err != nil {
		return err
	}
	return nil
}

// SignInput takes care of producing (and verifying) a signature for a
// specific input of the provided transaction, leaving the others untouched
func (w *Wallet) SignInput(opts SignInputOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if err := w.validate(); err != nil {
		return "", err
	}

	tx, _ := decodeTxHex(opts.TxHex)

	fetcher := txscript.NewCannedPrevOutputFetcher(
		opts.Input.PrevoutScript, int64(opts.Input.PrevoutValue),
	)
	sigHashes := txscript.NewTxSigHashes(tx, fetcher)

	if err := w.signInput(tx, int(opts.InIndex), sigHashes, opts.Input); err != nil {
		return "", err
	}

	return encodeTxHex(tx)
}

func (w *Wallet) signInput(
	tx *wire.MsgTx, inIndex int, sigHashes *txscript.TxSigHashes, in Input,
) error {
	prvkey, pubkey, err := w.DeriveSigningKeyPair(DeriveSigningKeyPairOpts{
		DerivationPath: in.DerivationPath,
	})
	if err != nil {
		return err
	}
	defer prvkey.Zero()

	match, err := w.MatchDerivedScript(MatchDerivedScriptOpts{
		DerivationPath: in.DerivationPath,
		ScriptType:     in.ScriptType,
		Script:         in.PrevoutScript,
	})
	if err != nil {
		return err
	}
	if !match {
		return fmt.Errorf("%w for input %d", ErrScriptMismatch, inIndex)
	}

	var hashForSignature []byte
	var redeemScript []byte
	switch in.ScriptType {
	case P2PKH:
		hashForSignature, err = txscript.CalcSignatureHash(
			in.PrevoutScript, txscript.SigHashAll, tx, inIndex,
		)
	case P2WPKH:
		hashForSignature, err = txscript.CalcWitnessSigHash(
			in.PrevoutScript, sigHashes, txscript.SigHashAll, tx, inIndex,
			int64(in.PrevoutValue),
		)
	case P2SH_P2WPKH:
		redeemScript, err = witnessProgramForPubKey(pubkey, w.network)
		if err != nil {
			return err
		}
		hashForSignature, err = txscript.CalcWitnessSigHash(
			redeemScript, sigHashes, txscript.SigHashAll, tx, inIndex,
			int64(in.PrevoutValue),
		)
	default:
		return ErrUnsupportedScriptType
	}
	if err != nil {
		return err
	}

	signature := ecdsa.Sign(prvkey, hashForSignature)

	if !signature.Verify(hashForSignature, pubkey) {
		return fmt.Errorf(
			"signature verification failed for input %d",
			inIndex,
		)
	}

	sigWithSigHashType := append(signature.Serialize(), byte(txscript.SigHashAll))

	switch in.ScriptType {
	case P2PKH:
		sigScript, err := txscript.NewScriptBuilder().
			AddData(sigWithSigHashType).
			AddData(pubkey.SerializeCompressed()).
			Script()
		if err != nil {
			return err
		}
		tx.TxIn[inIndex].SignatureScript = sigScript
	case P2WPKH:
		tx.TxIn[inIndex].Witness = wire.TxWitness{
			sigWithSigHashType, pubkey.SerializeCompressed(),
		}
	case P2SH_P2WPKH:
		tx.TxIn[inIndex].Witness = wire.TxWitness{
			sigWithSigHashType, pubkey.SerializeCompressed(),
		}
		sigScript, err := txscript.NewScriptBuilder().
			AddData(redeemScript).
			Script()
		if err != nil {
			return err
		}
		tx.TxIn[inIndex].SignatureScript = sigScript
	}

	return nil
}
