package domain

import (
	"context"

	"github.com/google/uuid"
)

// UtxoRepository gives access to the set of utxos tracked by the ledger.
// Implementations must guarantee that concurrent updates of the same utxo are
// serialized, the update function reads and writes atomically
type UtxoRepository interface {
	// AddUtxo adds the provided utxo to the set, rejecting duplicated keys
	// with ErrUtxoAlreadyExists
	AddUtxo(ctx context.Context, utxo Utxo) error
	// GetUtxoByKey returns the utxo with the provided key, or ErrUtxoNotFound
	GetUtxoByKey(ctx context.Context, key UtxoKey) (*Utxo, error)
	// GetAllUtxos returns every tracked utxo, whatever its status
	GetAllUtxos(ctx context.Context) ([]Utxo, error)
	// GetSpendableUtxos returns the utxos free to fund a new transaction
	GetSpendableUtxos(ctx context.Context) ([]Utxo, error)
	// GetUtxosReservedBy returns the utxos locked by the transaction with the
	// provided id
	GetUtxosReservedBy(ctx context.Context, txID uuid.UUID) ([]Utxo, error)
	// UpdateUtxo applies the update function to the utxo with the provided
	// key and persists the returned value, all atomically
	UpdateUtxo(
		ctx context.Context,
		key UtxoKey,
		updateFn func(u *Utxo) (*Utxo, error),
	) error
	// DeleteUtxo removes the utxo with the provided key from the set
	DeleteUtxo(ctx context.Context, key UtxoKey) error
}
