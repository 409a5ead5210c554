package application

import (
	"bytes"
	"context"
	"encoding/hex"

	log "github.com/sirupsen/logrus"

	"github.com/outpointlabs/wallet-engine/internal/config"
	"github.com/outpointlabs/wallet-engine/internal/core/domain"
)

// ChainListenerService is the inbound contract for an external chain
// observer feeding the engine: outputs paying to watched scripts, spends of
// recorded outputs and block connections. The engine itself never talks to
// a node.
type ChainListenerService interface {
	RecordOutput(
		ctx context.Context,
		key domain.UtxoKey, value uint64, script []byte, height uint64,
	) error
	RecordSpend(
		ctx context.Context,
		key domain.UtxoKey, spendingTxID string, height uint64,
	) error
	ConfirmBlock(ctx context.Context, height uint64, hash, prevHash string) error
}

type chainListenerService struct {
	vaultRepository domain.VaultRepository
	utxoRepository  domain.UtxoRepository
	chainState      *ChainState
	reorgDepth      uint64
}

// NewChainListenerService returns a ChainListenerService pruning spent utxos
// once their spending transaction is buried deeper than the reorg depth set
// in the config
func NewChainListenerService(
	vaultRepository domain.VaultRepository,
	utxoRepository domain.UtxoRepository,
	chainState *ChainState,
) ChainListenerService {
	return &chainListenerService{
		vaultRepository: vaultRepository,
		utxoRepository:  utxoRepository,
		chainState:      chainState,
		reorgDepth:      uint64(config.GetInt(config.ReorgDepthKey)),
	}
}

func (s *chainListenerService) RecordOutput(
	ctx context.Context,
	key domain.UtxoKey, value uint64, script []byte, height uint64,
) error {
	vault, err := s.vaultRepository.GetVault(ctx)
	if err != nil {
		return err
	}

	scriptHex := hex.EncodeToString(script)
	derivationPath, ok := vault.PathByScript(scriptHex)
	if !ok {
		log.Debugf("skipping output %s:%d with unwatched script", key.TxID, key.VOut)
		return nil
	}

	existingUtxo, err := s.utxoRepository.GetUtxoByKey(ctx, key)
	if err != nil && err != domain.ErrUtxoNotFound {
		return err
	}

	if existingUtxo != nil {
		if !bytes.Equal(existingUtxo.Script, script) ||
			existingUtxo.DerivationPath != derivationPath ||
			existingUtxo.Value != value {
			return domain.ErrDuplicateOutput
		}
		if height > 0 {
			return s.utxoRepository.UpdateUtxo(
				ctx, key, func(u *domain.Utxo) (*domain.Utxo, error) {
					u.Confirm(height)
					return u, nil
				},
			)
		}
		return nil
	}

	utxo := domain.Utxo{
		TxID:            key.TxID,
		VOut:            key.VOut,
		Value:           value,
		Script:          script,
		DerivationPath:  derivationPath,
		ConfirmedHeight: height,
	}
	if err := s.utxoRepository.AddUtxo(ctx, utxo); err != nil {
		return err
	}

	log.Debugf(
		"recorded utxo %s:%d of %d sats at %s",
		key.TxID, key.VOut, value, derivationPath,
	)
	return nil
}

func (s *chainListenerService) RecordSpend(
	ctx context.Context,
	key domain.UtxoKey, spendingTxID string, height uint64,
) error {
	err := s.utxoRepository.UpdateUtxo(
		ctx, key, func(u *domain.Utxo) (*domain.Utxo, error) {
			if err := u.Spend(spendingTxID, height); err != nil {
				return nil, err
			}
			return u, nil
		},
	)
	if err != nil {
		if err == domain.ErrUtxoNotFound {
			return domain.ErrUnknownOutput
		}
		return err
	}

	log.Debugf("recorded spend of utxo %s:%d by %s", key.TxID, key.VOut, spendingTxID)
	return nil
}

func (s *chainListenerService) ConfirmBlock(
	ctx context.Context, height uint64, hash, prevHash string,
) error {
	block := domain.KnownBlock{Height: height, Hash: hash, PrevHash: prevHash}

	tip := s.chainState.Tip()
	if !block.Extends(tip) {
		log.Warnf(
			"block %d (%s) does not extend the known tip %d (%s)",
			height, hash, tip.Height, tip.Hash,
		)
		return domain.ErrBlockFork
	}
	s.chainState.applyTip(block)

	return s.pruneSpentUtxos(ctx, height)
}

// pruneSpentUtxos drops the utxos whose spending transaction is buried
// deeper than the reorg safety depth. Until then a spent utxo is kept
// around, since a reorg could bring it back to life
func (s *chainListenerService) pruneSpentUtxos(
	ctx context.Context, tipHeight uint64,
) error {
	utxos, err := s.utxoRepository.GetAllUtxos(ctx)
	if err != nil {
		return err
	}

	for _, utxo := range utxos {
		if !utxo.IsSpent() || utxo.SpentAtHeight == 0 {
			continue
		}
		if tipHeight < utxo.SpentAtHeight {
			continue
		}
		if tipHeight-utxo.SpentAtHeight+1 <= s.reorgDepth {
			continue
		}
		if err := s.utxoRepository.DeleteUtxo(ctx, utxo.Key()); err != nil {
			return err
		}
		log.Debugf("pruned spent utxo %s:%d", utxo.TxID, utxo.VOut)
	}
	return nil
}
