package dbbadger

import (
	"context"
	"sort"

	"github.com/dgraph-io/badger/v3"
	"github.com/google/uuid"
	"github.com/outpointlabs/wallet-engine/internal/core/domain"
	"github.com/timshannon/badgerhold/v4"
)

type utxoRepositoryImpl struct {
	db *DbManager
}

// NewUtxoRepositoryImpl returns a badger implementation of the domain
// UtxoRepository. Records are keyed by their outpoint.
func NewUtxoRepositoryImpl(db *DbManager) domain.UtxoRepository {
	return utxoRepositoryImpl{
		db: db,
	}
}

func (u utxoRepositoryImpl) AddUtxo(
	ctx context.Context, utxo domain.Utxo,
) error {
	if err := u.db.UtxoStore.Insert(utxo.Key(), utxo); err != nil {
		if err == badgerhold.ErrKeyExists {
			return domain.ErrUtxoAlreadyExists
		}
		return err
	}
	return nil
}

func (u utxoRepositoryImpl) GetUtxoByKey(
	ctx context.Context, key domain.UtxoKey,
) (*domain.Utxo, error) {
	var utxo domain.Utxo
	if err := u.db.UtxoStore.Get(key, &utxo); err != nil {
		if err == badgerhold.ErrNotFound {
			return nil, domain.ErrUtxoNotFound
		}
		return nil, err
	}
	return &utxo, nil
}

func (u utxoRepositoryImpl) GetAllUtxos(
	ctx context.Context,
) ([]domain.Utxo, error) {
	return u.findUtxos(nil)
}

func (u utxoRepositoryImpl) GetSpendableUtxos(
	ctx context.Context,
) ([]domain.Utxo, error) {
	query := badgerhold.Where("Status").Eq(domain.UtxoUnspent)
	return u.findUtxos(query)
}

func (u utxoRepositoryImpl) GetUtxosReservedBy(
	ctx context.Context, id uuid.UUID,
) ([]domain.Utxo, error) {
	query := badgerhold.Where("Status").Eq(domain.UtxoReserved)
	reserved, err := u.findUtxos(query)
	if err != nil {
		return nil, err
	}

	utxos := make([]domain.Utxo, 0, len(reserved))
	for _, utxo := range reserved {
		if utxo.ReservedBy != nil && *utxo.ReservedBy == id {
			utxos = append(utxos, utxo)
		}
	}
	return utxos, nil
}

func (u utxoRepositoryImpl) UpdateUtxo(
	ctx context.Context,
	key domain.UtxoKey,
	updateFn func(utxo *domain.Utxo) (*domain.Utxo, error),
) error {
	return u.db.UtxoStore.Badger().Update(func(tx *badger.Txn) error {
		var currentUtxo domain.Utxo
		if err := u.db.UtxoStore.TxGet(tx, key, &currentUtxo); err != nil {
			if err == badgerhold.ErrNotFound {
				return domain.ErrUtxoNotFound
			}
			return err
		}

		updatedUtxo, err := updateFn(&currentUtxo)
		if err != nil {
			return err
		}

		return u.db.UtxoStore.TxUpdate(tx, key, *updatedUtxo)
	})
}

func (u utxoRepositoryImpl) DeleteUtxo(
	ctx context.Context, key domain.UtxoKey,
) error {
	if err := u.db.UtxoStore.Delete(key, domain.Utxo{}); err != nil {
		if err == badgerhold.ErrNotFound {
			return domain.ErrUtxoNotFound
		}
		return err
	}
	return nil
}

func (u utxoRepositoryImpl) findUtxos(
	query *badgerhold.Query,
) ([]domain.Utxo, error) {
	var utxos []domain.Utxo
	if err := u.db.UtxoStore.Find(&utxos, query); err != nil {
		return nil, err
	}

	sort.Slice(utxos, func(i, j int) bool {
		if utxos[i].TxID != utxos[j].TxID {
			return utxos[i].TxID < utxos[j].TxID
		}
		return utxos[i].VOut < utxos[j].VOut
	})
	return utxos, nil
}
