package wallet

import (
	"bytes"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil"
	"github.com/btcsuite/btcd/chaincfg"
	"github.com/btcsuite/btcd/txscript"
)

// DeriveAddressOpts is the struct given to DeriveAddress method
type DeriveAddressOpts struct {
	DerivationPath string
	ScriptType     int
}

func (o DeriveAddressOpts) validate() error {
	if _, err := ParseDerivationPath(o.DerivationPath); err != nil {
		return err
	}
	if !isDerivableScriptType(o.ScriptType) {
		return ErrUnsupportedScriptType
	}
	return nil
}

// DeriveAddress derives the wallet's public key at the provided path and
// encodes it with the provided script template. It returns the address along
// with the matching output script. The same path and template always map to
// the same address and script
func (w *Wallet) DeriveAddress(opts DeriveAddressOpts) (string, []byte, error) {
	if err := opts.validate(); err != nil {
		return "", nil, err
	}
	if err := w.validate(); err != nil {
		return "", nil, err
	}

	pubkey, err := w.DerivePublicKey(DerivePublicKeyOpts{
		DerivationPath: opts.DerivationPath,
	})
	if err != nil {
		return "", nil, err
	}

	addr, err := addressForPubKey(pubkey, opts.ScriptType, w.network)
	if err != nil {
		return "", nil, err
	}
	script, err := txscript.PayToAddrScript(addr)
	if err != nil {
		return "", nil, err
	}

	return addr.EncodeAddress(), script, nil
}

// MatchDerivedScriptOpts is the struct given to MatchDerivedScript method
type MatchDerivedScriptOpts struct {
	DerivationPath string
	ScriptType     int
	Script         []byte
}

func (o MatchDerivedScriptOpts) validate() error {
	if _, err := ParseDerivationPath(o.DerivationPath); err != nil {
		return err
	}
	if !isDerivableScriptType(o.ScriptType) {
		return ErrUnsupportedScriptType
	}
	if len(o.Script) <= 0 {
		return ErrNullOutputScript
	}
	return nil
}

// MatchDerivedScript reports whether the provided script is the one the
// wallet derives at the provided path with the provided template
func (w *Wallet) MatchDerivedScript(opts MatchDerivedScriptOpts) (bool, error) {
	if err := opts.validate(); err != nil {
		return false, err
	}
	if err := w.validate(); err != nil {
		return false, err
	}

	_, script, err := w.DeriveAddress(DeriveAddressOpts{
		DerivationPath: opts.DerivationPath,
		ScriptType:     opts.ScriptType,
	})
	if err != nil {
		return false, err
	}

	return bytes.Equal(script, opts.Script), nil
}

func isDerivableScriptType(scriptType int) bool {
	switch scriptType {
	case P2PKH, P2SH_P2WPKH, P2WPKH:
		return true
	default:
		return false
	}
}

func addressForPubKey(
	pubkey *btcec.PublicKey, scriptType int, net *chaincfg.Params,
) (btcutil.Address, error) {
	pubkeyHash := btcutil.Hash160(pubkey.SerializeCompressed())

	switch scriptType {
	case P2PKH:
		return btcutil.NewAddressPubKeyHash(pubkeyHash, net)
	case P2WPKH:
		return btcutil.NewAddressWitnessPubKeyHash(pubkeyHash, net)
	case P2SH_P2WPKH:
		redeemScript, err := witnessProgramForPubKey(pubkey, net)
		if err != nil {
			return nil, err
		}
		return btcutil.NewAddressScriptHash(redeemScript, net)
	default:
		return nil, ErrUnsupportedScriptType
	}
}

// witnessProgramForPubKey returns the native segwit output script of the
// provided public key, used as redeem script when nested under p2sh
func witnessProgramForPubKey(
	pubkey *btcec.PublicKey, net *chaincfg.Params,
) ([]byte, error) {
	pubkeyHash := btcutil.Hash160(pubkey.SerializeCompressed())
	witnessAddr, err := btcutil.NewAddressWitnessPubKeyHash(pubkeyHash, net)
	if err != nil {
		return nil, err
	}
	return txscript.PayToAddrScript(witnessAddr)
}
