package wallet

import (
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcec/v2"
	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// deriveNode walks the tree from the wallet's key material down to the node
// at the given absolute path. For wallets restored from an extended key, the
// path is resolved against the wallet's base path and must belong to its
// subtree. Nodes are cached by canonical path, so deriving the same path
// twice returns the very same node
func (w *Wallet) deriveNode(path DerivationPath) (*hdkeychain.ExtendedKey, error) {
	steps := path
	if len(w.basePath) > 0 {
		if !path.HasPrefix(w.basePath) {
			return nil, fmt.Errorf(
				"%w: path is outside the wallet subtree %s",
				ErrInvalidDerivation, w.basePath,
			)
		}
		steps = path[len(w.basePath):]
	}

	cacheKey := path.String()
	w.cacheMtx.RLock()
	if hdNode, ok := w.keyCache[cacheKey]; ok {
		w.cacheMtx.RUnlock()
		return hdNode, nil
	}
	w.cacheMtx.RUnlock()

	hdNode := w.masterKey
	for _, step := range steps {
		var err error
		hdNode, err = hdNode.Derive(step)
		if err != nil {
			if errors.Is(err, hdkeychain.ErrDeriveHardFromPublic) {
				return nil, fmt.Errorf("%w: %v", ErrInvalidDerivation, err)
			}
			return nil, err
		}
	}

	w.cacheMtx.Lock()
	w.keyCache[cacheKey] = hdNode
	w.cacheMtx.Unlock()

	return hdNode, nil
}

// DeriveExtendedKeyOpts is the struct given to DeriveExtendedKey method
type DeriveExtendedKeyOpts struct {
	DerivationPath string
	Public         bool
}

func (o DeriveExtendedKeyOpts) validate() error {
	if _, err := ParseDerivationPath(o.DerivationPath); err != nil {
		return err
	}
	return nil
}

// DeriveExtendedKey returns the extended key at the provided derivation path
// in base58 format, neutered to its public counterpart if requested
func (w *Wallet) DeriveExtendedKey(opts DeriveExtendedKeyOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if err := w.validate(); err != nil {
		return "", err
	}

	path, _ := ParseDerivationPath(opts.DerivationPath)
	hdNode, err := w.deriveNode(path)
	if err != nil {
		return "", err
	}

	if opts.Public {
		xpub, err := hdNode.Neuter()
		if err != nil {
			return "", err
		}
		return xpub.String(), nil
	}
	return hdNode.String(), nil
}

// DeriveSigningKeyPairOpts is the struct given to DeriveSigningKeyPair method
type DeriveSigningKeyPairOpts struct {
	DerivationPath string
}

func (o DeriveSigningKeyPairOpts) validate() error {
	if _, err := ParseDerivationPath(o.DerivationPath); err != nil {
		return err
	}
	return nil
}

// DeriveSigningKeyPair derives the key pair of the provided derivation path
func (w *Wallet) DeriveSigningKeyPair(opts DeriveSigningKeyPairOpts) (
	*btcec.PrivateKey,
	*btcec.PublicKey,
	error,
) {
	if err := opts.validate(); err != nil {
		return nil, nil, err
	}
	if err := w.validate(); err != nil {
		return nil, nil, err
	}
	if w.IsWatchOnly() {
		return nil, nil, ErrMissingPrivateKey
	}

	path, _ := ParseDerivationPath(opts.DerivationPath)
	hdNode, err := w.deriveNode(path)
	if err != nil {
		return nil, nil, err
	}

	privateKey, err := hdNode.ECPrivKey()
	if err != nil {
		if errors.Is(err, hdkeychain.ErrNotPrivExtKey) {
			return nil, nil, ErrMissingPrivateKey
		}
		return nil, nil, err
	}
	publicKey, err := hdNode.ECPubKey()
	if err != nil {
		return nil, nil, err
	}

	return privateKey, publicKey, nil
}

// DerivePublicKeyOpts is the struct given to DerivePublicKey method
type DerivePublicKeyOpts struct {
	DerivationPath string
}

func (o DerivePublicKeyOpts) validate() error {
	if _, err := ParseDerivationPath(o.DerivationPath); err != nil {
		return err
	}
	return nil
}

// DerivePublicKey derives the public key of the provided derivation path.
// It works for both signing and watch-only wallets, as long as the path does
// not require any hardened derivation from public key material
func (w *Wallet) DerivePublicKey(opts DerivePublicKeyOpts) (*btcec.PublicKey, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if err := w.validate(); err != nil {
		return nil, err
	}

	path, _ := ParseDerivationPath(opts.DerivationPath)
	hdNode, err := w.deriveNode(path)
	if err != nil {
		return nil, err
	}

	return hdNode.ECPubKey()
}

// ExtendedKeyOpts is the struct given to
// ExtendedPrivateKey and ExtendedPublicKey methods
type ExtendedKeyOpts struct {
	Account uint32
}

func (o ExtendedKeyOpts) validate() error {
	if o.Account > (MaxHardenedValue) {
		return ErrOutOfRangeDerivationPathAccount
	}
	return nil
}

// ExtendedPrivateKey returns the extended private key in base58 format for
// the provided account index, derived at the default base path
func (w *Wallet) ExtendedPrivateKey(opts ExtendedKeyOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if err := w.validate(); err != nil {
		return "", err
	}
	if w.IsWatchOnly() {
		return "", ErrMissingPrivateKey
	}

	xprv, err := w.deriveAccountKey(opts.Account)
	if err != nil {
		return "", err
	}
	return xprv.String(), nil
}

// ExtendedPublicKey returns the extended public key in base58 format for the
// provided account index, derived at the default base path
func (w *Wallet) ExtendedPublicKey(opts ExtendedKeyOpts) (string, error) {
	if err := opts.validate(); err != nil {
		return "", err
	}
	if err := w.validate(); err != nil {
		return "", err
	}

	xprv, err := w.deriveAccountKey(opts.Account)
	if err != nil {
		return "", err
	}

	xpub, err := xprv.Neuter()
	if err != nil {
		return "", err
	}
	return xpub.String(), nil
}

func (w *Wallet) deriveAccountKey(account uint32) (*hdkeychain.ExtendedKey, error) {
	path := make(DerivationPath, 0, len(DefaultBaseDerivationPath)+1)
	path = append(path, DefaultBaseDerivationPath...)
	path = append(path, hdkeychain.HardenedKeyStart+account)
	return w.deriveNode(path)
}
