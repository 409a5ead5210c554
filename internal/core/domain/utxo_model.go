package domain

import (
	"github.com/google/uuid"
)

// UtxoStatus is the lifecycle state of a tracked utxo. A utxo starts unspent,
// gets reserved while funding a transaction being built and becomes spent once
// that transaction is signed or its spend is observed on chain. An abandoned
// build moves its reserved utxos back to unspent
type UtxoStatus int

const (
	// UtxoUnspent identifies a spendable utxo
	UtxoUnspent UtxoStatus = iota
	// UtxoReserved identifies a utxo locked by a transaction being built
	UtxoReserved
	// UtxoSpent identifies a utxo consumed by some transaction
	UtxoSpent
)

func (s UtxoStatus) String() string {
	switch s {
	case UtxoUnspent:
		return "unspent"
	case UtxoReserved:
		return "reserved"
	case UtxoSpent:
		return "spent"
	default:
		return "unknown"
	}
}

// UtxoKey represent the ID of an Utxo, composed by its txid and vout
type UtxoKey struct {
	TxID string
	VOut uint32
}

// Utxo is the data structure representing a wallet-owned output along with
// its lifecycle state. The derivation path ties the output script back to the
// wallet key able to spend it
type Utxo struct {
	TxID            string
	VOut            uint32
	Value           uint64
	Script          []byte
	DerivationPath  string
	ConfirmedHeight uint64
	Status          UtxoStatus
	ReservedBy      *uuid.UUID
	SpentByTxID     string
	SpentAtHeight   uint64
}
