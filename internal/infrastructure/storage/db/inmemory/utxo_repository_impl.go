package inmemory

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/outpointlabs/wallet-engine/internal/core/domain"
)

type utxoRepositoryImpl struct {
	utxos map[domain.UtxoKey]domain.Utxo
	lock  *sync.RWMutex
}

// NewUtxoRepositoryImpl returns an in-memory implementation of the domain
// UtxoRepository.
func NewUtxoRepositoryImpl() domain.UtxoRepository {
	return &utxoRepositoryImpl{
		utxos: map[domain.UtxoKey]domain.Utxo{},
		lock:  &sync.RWMutex{},
	}
}

func (r *utxoRepositoryImpl) AddUtxo(
	ctx context.Context, utxo domain.Utxo,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.utxos[utxo.Key()]; ok {
		return domain.ErrUtxoAlreadyExists
	}
	r.utxos[utxo.Key()] = utxo
	return nil
}

func (r *utxoRepositoryImpl) GetUtxoByKey(
	ctx context.Context, key domain.UtxoKey,
) (*domain.Utxo, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	utxo, ok := r.utxos[key]
	if !ok {
		return nil, domain.ErrUtxoNotFound
	}
	return &utxo, nil
}

func (r *utxoRepositoryImpl) GetAllUtxos(
	ctx context.Context,
) ([]domain.Utxo, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.listUtxos(func(_ domain.Utxo) bool { return true }), nil
}

func (r *utxoRepositoryImpl) GetSpendableUtxos(
	ctx context.Context,
) ([]domain.Utxo, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.listUtxos(func(u domain.Utxo) bool {
		return u.IsSpendable()
	}), nil
}

func (r *utxoRepositoryImpl) GetUtxosReservedBy(
	ctx context.Context, id uuid.UUID,
) ([]domain.Utxo, error) {
	r.lock.RLock()
	defer r.lock.RUnlock()

	return r.listUtxos(func(u domain.Utxo) bool {
		return u.ReservedBy != nil && *u.ReservedBy == id
	}), nil
}

func (r *utxoRepositoryImpl) UpdateUtxo(
	ctx context.Context,
	key domain.UtxoKey,
	updateFn func(utxo *domain.Utxo) (*domain.Utxo, error),
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	currentUtxo, ok := r.utxos[key]
	if !ok {
		return domain.ErrUtxoNotFound
	}

	updatedUtxo, err := updateFn(&currentUtxo)
	if err != nil {
		return err
	}

	r.utxos[key] = *updatedUtxo
	return nil
}

func (r *utxoRepositoryImpl) DeleteUtxo(
	ctx context.Context, key domain.UtxoKey,
) error {
	r.lock.Lock()
	defer r.lock.Unlock()

	if _, ok := r.utxos[key]; !ok {
		return domain.ErrUtxoNotFound
	}
	delete(r.utxos, key)
	return nil
}

// listUtxos must be called with the lock held. Results are sorted by
// outpoint so that callers observe a stable order.
func (r *utxoRepositoryImpl) listUtxos(
	match func(domain.Utxo) bool,
) []domain.Utxo {
	utxos := make([]domain.Utxo, 0, len(r.utxos))
	for _, utxo := range r.utxos {
		if match(utxo) {
			utxos = append(utxos, utxo)
		}
	}

	sort.Slice(utxos, func(i, j int) bool {
		if utxos[i].TxID != utxos[j].TxID {
			return utxos[i].TxID < utxos[j].TxID
		}
		return utxos[i].VOut < utxos[j].VOut
	})
	return utxos
}
