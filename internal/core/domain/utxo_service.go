package domain

import (
	"github.com/google/uuid"
)

// Key returns the UtxoKey of the current utxo
func (u *Utxo) Key() UtxoKey {
	return UtxoKey{
		TxID: u.TxID,
		VOut: u.VOut,
	}
}

// IsKeyEqual returns whether the provided UtxoKey matches that of the current
// utxo
func (u *Utxo) IsKeyEqual(key UtxoKey) bool {
	return u.TxID == key.TxID && u.VOut == key.VOut
}

// IsSpendable returns whether the utxo can fund a new transaction
func (u *Utxo) IsSpendable() bool {
	return u.Status == UtxoUnspent
}

// IsReserved returns whether the utxo is locked by some transaction being
// built
func (u *Utxo) IsReserved() bool {
	return u.Status == UtxoReserved
}

// IsSpent returns whether the utxo is already spent
func (u *Utxo) IsSpent() bool {
	return u.Status == UtxoSpent
}

// IsConfirmed returns whether the utxo is included in some block
func (u *Utxo) IsConfirmed() bool {
	return u.ConfirmedHeight > 0
}

// Confirmations returns the depth of the utxo at the provided chain tip,
// 0 if still unconfirmed
func (u *Utxo) Confirmations(tipHeight uint64) uint64 {
	if !u.IsConfirmed() || tipHeight < u.ConfirmedHeight {
		return 0
	}
	return tipHeight - u.ConfirmedHeight + 1
}

// Reserve locks the utxo for the transaction identified by the provided id.
// Reserving twice for the same transaction is a no-op, while reserving for
// another one is rejected
func (u *Utxo) Reserve(txID uuid.UUID) error {
	switch u.Status {
	case UtxoSpent:
		return ErrUtxoAlreadySpent
	case UtxoReserved:
		if u.ReservedBy.String() != txID.String() {
			return ErrUtxoAlreadyReserved
		}
		return nil
	}

	u.Status = UtxoReserved
	u.ReservedBy = &txID
	return nil
}

// Release moves a reserved utxo back to unspent. Releasing a utxo in any
// other state leaves it untouched
func (u *Utxo) Release() {
	if u.Status != UtxoReserved {
		return
	}
	u.Status = UtxoUnspent
	u.ReservedBy = nil
}

// Spend marks the utxo as consumed by the transaction with the provided txid,
// either at signing time or when its spend is observed on chain. Observing
// again the very same spending transaction only refreshes its height
func (u *Utxo) Spend(txID string, height uint64) error {
	if u.Status == UtxoSpent {
		if u.SpentByTxID != txID {
			return ErrUtxoAlreadySpent
		}
		u.SpentAtHeight = height
		return nil
	}

	u.Status = UtxoSpent
	u.ReservedBy = nil
	u.SpentByTxID = txID
	u.SpentAtHeight = height
	return nil
}

// Confirm records the height of the block including the utxo. Heights can be
// refreshed, a reorg can move the transaction to another block
func (u *Utxo) Confirm(height uint64) {
	u.ConfirmedHeight = height
}
