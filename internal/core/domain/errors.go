package domain

import "errors"

var (
	// ErrDuplicateOutput is thrown when recording an output whose key is
	// already tracked with a different descriptor, which means the feed of
	// chain events is inconsistent
	ErrDuplicateOutput = errors.New(
		"output is already recorded with a different descriptor",
	)
	// ErrUnknownOutput is thrown when a chain event refers to an output the
	// ledger does not track
	ErrUnknownOutput = errors.New("output is not tracked by the ledger")
	// ErrBlockFork is thrown when an announced block does not extend the last
	// known chain tip
	ErrBlockFork = errors.New("block does not extend the last known chain tip")

	// ErrUtxoNotFound ...
	ErrUtxoNotFound = errors.New("utxo not found")
	// ErrUtxoAlreadyExists ...
	ErrUtxoAlreadyExists = errors.New("utxo is already tracked by the ledger")
	// ErrUtxoAlreadyReserved is thrown when reserving a utxo already reserved
	// by another transaction
	ErrUtxoAlreadyReserved = errors.New(
		"utxo is already reserved by another transaction",
	)
	// ErrUtxoNotReserved ...
	ErrUtxoNotReserved = errors.New("utxo is not reserved")
	// ErrUtxoAlreadySpent ...
	ErrUtxoAlreadySpent = errors.New("utxo is already spent")

	// ErrVaultNotInitialized ...
	ErrVaultNotInitialized = errors.New("vault is not initialized")
	// ErrVaultWalletMismatch is thrown when the vault was initialized with the
	// key material of another wallet
	ErrVaultWalletMismatch = errors.New(
		"vault belongs to a different wallet",
	)
	// ErrNullAccountKey ...
	ErrNullAccountKey = errors.New("account extended key must not be null")
	// ErrNullBasePath ...
	ErrNullBasePath = errors.New("base derivation path must not be null")
)
