package application

import (
	"errors"
	"fmt"

	"github.com/outpointlabs/wallet-engine/pkg/coinselect"
)

var (
	// ErrWalletNotFunded is returned when building a transaction over an
	// empty ledger. It matches coinselect.ErrInsufficientFunds
	ErrWalletNotFunded = fmt.Errorf(
		"wallet not funded: %w", coinselect.ErrInsufficientFunds,
	)
	// ErrUnknownStrategy ...
	ErrUnknownStrategy = errors.New("strategy not supported")
	// ErrMissingDestinations ...
	ErrMissingDestinations = errors.New("destinations must not be null or empty")
	// ErrInvalidAddress ...
	ErrInvalidAddress = errors.New("address is not valid for the network")
	// ErrBuildNotFound is returned when signing or abandoning a transaction
	// whose build id does not match any pending build
	ErrBuildNotFound = errors.New("no pending transaction for the given build id")
	// ErrMalformedTransaction is returned when the pending transaction and the
	// reserved utxos diverge. It flags a corrupted store
	ErrMalformedTransaction = errors.New(
		"pending transaction inputs do not match the reserved utxos",
	)
)
