package wallet

import (
	"errors"
	"sync"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/btcsuite/btcd/chaincfg"
)

var (
	// ErrNullNetwork ...
	ErrNullNetwork = errors.New("network params are null")
	// ErrNullSeed ...
	ErrNullSeed = errors.New("seed is null")
	// ErrNullMnemonic ...
	ErrNullMnemonic = errors.New("mnemonic is null")
	// ErrNullExtendedKey ...
	ErrNullExtendedKey = errors.New("extended key is null")
	// ErrNullMasterKey ...
	ErrNullMasterKey = errors.New("master key is null")
	// ErrNullDerivationPath ...
	ErrNullDerivationPath = errors.New("derivation path must not be null")
	// ErrNullOutputScript ...
	ErrNullOutputScript = errors.New("output script must not be null")
	// ErrNullTx ...
	ErrNullTx = errors.New("transaction must not be null")
	// ErrNullChangeDerivationPath ...
	ErrNullChangeDerivationPath = errors.New("change derivation path must not be null")

	// ErrInvalidEntropySize ...
	ErrInvalidEntropySize = errors.New(
		"entropy size must be a multiple of 32 in the range [128,256]",
	)
	// ErrInvalidSeedSize ...
	ErrInvalidSeedSize = errors.New(
		"seed size must be in the range [16,64] bytes",
	)
	// ErrInvalidMnemonic ...
	ErrInvalidMnemonic = errors.New("mnemonic is invalid")
	// ErrInvalidExtendedKey ...
	ErrInvalidExtendedKey = errors.New(
		"extended key is malformed or for a different network",
	)
	// ErrInvalidBasePath ...
	ErrInvalidBasePath = errors.New(
		"base path length must match the depth of the extended key",
	)
	// ErrInvalidDerivation ...
	ErrInvalidDerivation = errors.New(
		"path cannot be derived from the available key material",
	)
	// ErrInvalidChildIndex ...
	ErrInvalidChildIndex = errors.New(
		"path component is not a valid child index",
	)
	// ErrMalformedDerivationPath ...
	ErrMalformedDerivationPath = errors.New(
		"path must not start or end with a '/' and " +
			"can optionally start with 'm/' for absolute paths",
	)
	// ErrOutOfRangeDerivationPathAccount ...
	ErrOutOfRangeDerivationPathAccount = errors.New(
		"account index must not overflow the hardened key range",
	)
	// ErrInvalidFeeRate ...
	ErrInvalidFeeRate = errors.New("fee rate must be a positive amount")

	// ErrMissingPrivateKey ...
	ErrMissingPrivateKey = errors.New("wallet holds public key material only")
	// ErrScriptMismatch ...
	ErrScriptMismatch = errors.New(
		"script does not match the one derived for the given path",
	)
	// ErrUnsupportedScriptType ...
	ErrUnsupportedScriptType = errors.New("script type is not supported")

	// ErrEmptyInputs ...
	ErrEmptyInputs = errors.New("input list must not be empty")
	// ErrEmptyOutputs ...
	ErrEmptyOutputs = errors.New("output list must not be empty")
	// ErrEmptyUnspents ...
	ErrEmptyUnspents = errors.New("unspent list must not be empty")
	// ErrInvalidInputsLength ...
	ErrInvalidInputsLength = errors.New(
		"length of tx inputs and prevout descriptors must match",
	)
	// ErrZeroOutputAmount ...
	ErrZeroOutputAmount = errors.New("output amount must not be zero")

	// ErrWalletClosed ...
	ErrWalletClosed = errors.New("wallet is closed and its keys are wiped")
)

// Wallet holds the extended key material of a hierarchical deterministic
// wallet and allows to derive child keys, addresses and output scripts from
// it, and to sign transactions spending wallet outputs.
// The key material is either a master private key, generated from a seed or
// mnemonic, or an extended public key sitting at some base path of the tree.
// In the latter case the wallet is watch-only and any operation requiring a
// private key fails with ErrMissingPrivateKey.
// Derived nodes are cached by path, since a node only depends on the key
// material and the path itself.
type Wallet struct {
	network   *chaincfg.Params
	mnemonic  []string
	masterKey *hdkeychain.ExtendedKey
	basePath  DerivationPath
	closed    bool

	cacheMtx sync.RWMutex
	keyCache map[string]*hdkeychain.ExtendedKey
}

// NewWalletOpts is the struct given to the NewWallet method
type NewWalletOpts struct {
	EntropySize int
	Network     *chaincfg.Params
}

func (o NewWalletOpts) validate() error {
	if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
		return ErrInvalidEntropySize
	}
	if o.Network == nil {
		return ErrNullNetwork
	}
	return nil
}

// NewWallet creates a new wallet from a freshly generated mnemonic with the
// provided entropy size
func NewWallet(opts NewWalletOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	mnemonic, err := generateMnemonic(opts.EntropySize)
	if err != nil {
		return nil, err
	}

	return NewWalletFromMnemonic(NewWalletFromMnemonicOpts{
		Mnemonic: mnemonic,
		Network:  opts.Network,
	})
}

// NewMnemonicOpts is the struct given to the NewMnemonic method
type NewMnemonicOpts struct {
	EntropySize int
}

func (o NewMnemonicOpts) validate() error {
	if o.EntropySize < 0 {
		return ErrInvalidEntropySize
	}
	if o.EntropySize > 0 {
		if o.EntropySize < 128 || o.EntropySize > 256 || o.EntropySize%32 != 0 {
			return ErrInvalidEntropySize
		}
	}
	return nil
}

// NewMnemonic returns a new mnemonic as a list of words. The entropy size
// defaults to 128 bits if not given
func NewMnemonic(opts NewMnemonicOpts) ([]string, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}
	if opts.EntropySize == 0 {
		opts.EntropySize = 128
	}

	return generateMnemonic(opts.EntropySize)
}

// NewWalletFromMnemonicOpts is the struct given to the NewWalletFromMnemonic method
type NewWalletFromMnemonicOpts struct {
	Mnemonic []string
	Network  *chaincfg.Params
}

func (o NewWalletFromMnemonicOpts) validate() error {
	if len(o.Mnemonic) <= 0 {
		return ErrNullMnemonic
	}
	if !isMnemonicValid(o.Mnemonic) {
		return ErrInvalidMnemonic
	}
	if o.Network == nil {
		return ErrNullNetwork
	}
	return nil
}

// NewWalletFromMnemonic restores a wallet from the provided mnemonic
func NewWalletFromMnemonic(opts NewWalletFromMnemonicOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	seed := generateSeedFromMnemonic(opts.Mnemonic)
	defer zeroBytes(seed)

	masterKey, err := hdkeychain.NewMaster(seed, opts.Network)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		network:   opts.Network,
		mnemonic:  opts.Mnemonic,
		masterKey: masterKey,
		keyCache:  make(map[string]*hdkeychain.ExtendedKey),
	}, nil
}

// NewWalletFromSeedOpts is the struct given to the NewWalletFromSeed method
type NewWalletFromSeedOpts struct {
	Seed    []byte
	Network *chaincfg.Params
}

func (o NewWalletFromSeedOpts) validate() error {
	if len(o.Seed) <= 0 {
		return ErrNullSeed
	}
	if len(o.Seed) < hdkeychain.MinSeedBytes ||
		len(o.Seed) > hdkeychain.MaxSeedBytes {
		return ErrInvalidSeedSize
	}
	if o.Network == nil {
		return ErrNullNetwork
	}
	return nil
}

// NewWalletFromSeed restores a wallet from the provided raw seed
func NewWalletFromSeed(opts NewWalletFromSeedOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	masterKey, err := hdkeychain.NewMaster(opts.Seed, opts.Network)
	if err != nil {
		return nil, err
	}

	return &Wallet{
		network:   opts.Network,
		masterKey: masterKey,
		keyCache:  make(map[string]*hdkeychain.ExtendedKey),
	}, nil
}

// NewWalletFromExtendedKeyOpts is the struct given to the
// NewWalletFromExtendedKey method
type NewWalletFromExtendedKeyOpts struct {
	ExtendedKey string
	BasePath    string
	Network     *chaincfg.Params
}

func (o NewWalletFromExtendedKeyOpts) validate() error {
	if len(o.ExtendedKey) <= 0 {
		return ErrNullExtendedKey
	}
	if o.Network == nil {
		return ErrNullNetwork
	}
	if len(o.BasePath) > 0 {
		if _, err := ParseDerivationPath(o.BasePath); err != nil {
			return err
		}
	}
	return nil
}

// NewWalletFromExtendedKey restores a wallet from an extended key in base58
// format. The base path locates the key in the derivation tree, so that the
// wallet can resolve absolute paths against it, and must therefore match the
// key's depth. Restoring from an extended public key gives a watch-only
// wallet
func NewWalletFromExtendedKey(opts NewWalletFromExtendedKeyOpts) (*Wallet, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	masterKey, err := hdkeychain.NewKeyFromString(opts.ExtendedKey)
	if err != nil {
		return nil, ErrInvalidExtendedKey
	}
	if !masterKey.IsForNet(opts.Network) {
		return nil, ErrInvalidExtendedKey
	}

	basePath := DerivationPath{}
	if len(opts.BasePath) > 0 {
		basePath, _ = ParseDerivationPath(opts.BasePath)
	}
	if int(masterKey.Depth()) != len(basePath) {
		return nil, ErrInvalidBasePath
	}

	return &Wallet{
		network:   opts.Network,
		masterKey: masterKey,
		basePath:  basePath,
		keyCache:  make(map[string]*hdkeychain.ExtendedKey),
	}, nil
}

func (w *Wallet) validate() error {
	if w.closed {
		return ErrWalletClosed
	}
	if w.masterKey == nil {
		return ErrNullMasterKey
	}
	if w.network == nil {
		return ErrNullNetwork
	}
	return nil
}

// IsWatchOnly returns whether the wallet holds public key material only
func (w *Wallet) IsWatchOnly() bool {
	return w.masterKey != nil && !w.masterKey.IsPrivate()
}

// Network returns the network params the wallet operates on
func (w *Wallet) Network() *chaincfg.Params {
	return w.network
}

// BasePath returns the derivation path the wallet's key material sits at.
// It is the root of the subtree the wallet can derive from
func (w *Wallet) BasePath() DerivationPath {
	basePath := make(DerivationPath, len(w.basePath))
	copy(basePath, w.basePath)
	return basePath
}

// Mnemonic is the getter for the wallet's mnemonic, if it was created or
// restored from one
func (w *Wallet) Mnemonic() ([]string, error) {
	if err := w.validate(); err != nil {
		return nil, err
	}
	if len(w.mnemonic) <= 0 {
		return nil, ErrNullMnemonic
	}
	return w.mnemonic, nil
}

// Close wipes the wallet's key material, including every cached derived node.
// The wallet is unusable afterwards and any operation returns ErrWalletClosed
func (w *Wallet) Close() {
	w.cacheMtx.Lock()
	defer w.cacheMtx.Unlock()

	for _, hdNode := range w.keyCache {
		hdNode.Zero()
	}
	w.keyCache = nil
	if w.masterKey != nil {
		w.masterKey.Zero()
	}
	w.mnemonic = nil
	w.closed = true
}
