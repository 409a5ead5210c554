package application

import (
	"context"
	"encoding/hex"
	"sync"

	"github.com/btcsuite/btcd/wire"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/outpointlabs/wallet-engine/internal/config"
	"github.com/outpointlabs/wallet-engine/internal/core/domain"
	"github.com/outpointlabs/wallet-engine/pkg/coinselect"
	"github.com/outpointlabs/wallet-engine/pkg/wallet"
)

// TransactionService orchestrates the transaction lifecycle: BuildTransaction
// crafts an unsigned transaction and reserves the selected utxos under a
// build id, SignTransaction finalizes it and marks them spent,
// AbandonTransaction releases them. A build either completes entirely or
// leaves no trace: any failure releases the reservations and rolls back the
// change derivation path.
type TransactionService interface {
	BuildTransaction(
		ctx context.Context, req BuildTransactionRequest,
	) (*BuildTransactionResult, error)
	SignTransaction(
		ctx context.Context, buildID uuid.UUID,
	) (*SignTransactionResult, error)
	AbandonTransaction(ctx context.Context, buildID uuid.UUID) error
}

type pendingBuild struct {
	txHex     string
	hasChange bool
}

type transactionService struct {
	wallet          *wallet.Wallet
	scriptType      int
	dustThreshold   uint64
	defaultStrategy string
	vaultRepository domain.VaultRepository
	utxoRepository  domain.UtxoRepository
	chainState      *ChainState

	buildsMtx *sync.Mutex
	builds    map[uuid.UUID]pendingBuild
}

// NewTransactionService returns a TransactionService building transactions
// with the given script type for change outputs. The dust threshold and the
// default coin selection strategy are taken from the config
func NewTransactionService(
	w *wallet.Wallet,
	scriptType int,
	vaultRepository domain.VaultRepository,
	utxoRepository domain.UtxoRepository,
	chainState *ChainState,
) TransactionService {
	return &transactionService{
		wallet:          w,
		scriptType:      scriptType,
		dustThreshold:   uint64(config.GetInt(config.DustThresholdKey)),
		defaultStrategy: config.GetString(config.CoinSelectionStrategyKey),
		vaultRepository: vaultRepository,
		utxoRepository:  utxoRepository,
		chainState:      chainState,
		buildsMtx:       &sync.Mutex{},
		builds:          map[uuid.UUID]pendingBuild{},
	}
}

func (s *transactionService) BuildTransaction(
	ctx context.Context, req BuildTransactionRequest,
) (*BuildTransactionResult, error) {
	net := s.wallet.Network()
	if err := req.validate(net); err != nil {
		return nil, err
	}

	outputs := make([]*wire.TxOut, 0, len(req.Destinations))
	for _, dest := range req.Destinations {
		out, err := dest.toTxOut(net)
		if err != nil {
			return nil, err
		}
		outputs = append(outputs, out)
	}

	spendableUtxos, err := s.utxoRepository.GetSpendableUtxos(ctx)
	if err != nil {
		return nil, err
	}
	if len(spendableUtxos) <= 0 {
		return nil, ErrWalletNotFunded
	}

	strategy := req.CoinSelectionStrategy
	if strategy == "" {
		strategy = s.defaultStrategy
	}

	tipHeight := s.chainState.TipHeight()
	coins := make([]coinselect.Coin, 0, len(spendableUtxos))
	for _, utxo := range spendableUtxos {
		coins = append(coins, utxoCoin{utxo: utxo, tipHeight: tipHeight})
	}

	// the change path is consumed up front and rolled back if the build
	// fails or ends up without change
	var changePath string
	if err := s.vaultRepository.UpdateVault(
		ctx, func(v *domain.Vault) (*domain.Vault, error) {
			changePath = v.NextInternalPath()
			return v, nil
		},
	); err != nil {
		return nil, err
	}

	res, err := s.wallet.UpdateTx(wallet.UpdateTxOpts{
		Unspents:             coins,
		Outputs:              outputs,
		ChangeDerivationPath: changePath,
		ChangeScriptType:     s.scriptType,
		SatsPerVByte:         req.SatsPerVByte,
		FixedFeeAmount:       req.FixedFeeAmount,
		DustThreshold:        s.dustThreshold,
		Selector:             coinselect.SelectorByName(strategy),
	})
	if err != nil {
		s.rollbackChangePath(ctx)
		return nil, err
	}

	hasChange := res.ChangeAmount > 0
	if hasChange {
		if err := s.vaultRepository.UpdateVault(
			ctx, func(v *domain.Vault) (*domain.Vault, error) {
				_, script, err := s.wallet.DeriveAddress(wallet.DeriveAddressOpts{
					DerivationPath: changePath,
					ScriptType:     s.scriptType,
				})
				if err != nil {
					return nil, err
				}
				v.AddScript(hex.EncodeToString(script), changePath)
				return v, nil
			},
		); err != nil {
			s.rollbackChangePath(ctx)
			return nil, err
		}
	} else {
		s.rollbackChangePath(ctx)
	}

	buildID := uuid.New()
	reservedUtxos := make([]domain.Utxo, 0, len(res.SelectedUnspents))
	for _, coin := range res.SelectedUnspents {
		key := domain.UtxoKey{TxID: coin.Hash().String(), VOut: coin.Index()}

		var reservedUtxo domain.Utxo
		err := s.utxoRepository.UpdateUtxo(
			ctx, key, func(u *domain.Utxo) (*domain.Utxo, error) {
				if err := u.Reserve(buildID); err != nil {
					return nil, err
				}
				reservedUtxo = *u
				return u, nil
			},
		)
		if err != nil {
			s.releaseUtxos(ctx, reservedUtxos)
			if hasChange {
				s.rollbackChangePath(ctx)
			}
			return nil, err
		}
		reservedUtxos = append(reservedUtxos, reservedUtxo)
	}

	txHex, err := serializeTx(res.UnsignedTx)
	if err != nil {
		s.releaseUtxos(ctx, reservedUtxos)
		if hasChange {
			s.rollbackChangePath(ctx)
		}
		return nil, err
	}

	s.buildsMtx.Lock()
	s.builds[buildID] = pendingBuild{txHex: txHex, hasChange: hasChange}
	s.buildsMtx.Unlock()

	selectedUtxos := make([]UtxoInfo, 0, len(reservedUtxos))
	for _, utxo := range reservedUtxos {
		selectedUtxos = append(selectedUtxos, utxoInfo(utxo, tipHeight))
	}

	log.Debugf(
		"built transaction %s with %d inputs, fee %d, change %d",
		buildID, len(reservedUtxos), res.FeeAmount, res.ChangeAmount,
	)
	return &BuildTransactionResult{
		BuildID:       buildID,
		TxHex:         txHex,
		SelectedUtxos: selectedUtxos,
		FeeAmount:     res.FeeAmount,
		ChangeAmount:  res.ChangeAmount,
	}, nil
}

func (s *transactionService) SignTransaction(
	ctx context.Context, buildID uuid.UUID,
) (*SignTransactionResult, error) {
	s.buildsMtx.Lock()
	build, ok := s.builds[buildID]
	s.buildsMtx.Unlock()
	if !ok {
		return nil, ErrBuildNotFound
	}

	reservedUtxos, err := s.utxoRepository.GetUtxosReservedBy(ctx, buildID)
	if err != nil {
		return nil, err
	}

	tx, err := deserializeTx(build.txHex)
	if err != nil {
		return nil, err
	}

	utxosByOutpoint := make(map[domain.UtxoKey]domain.Utxo, len(reservedUtxos))
	for _, utxo := range reservedUtxos {
		utxosByOutpoint[utxo.Key()] = utxo
	}

	// inputs must be given in transaction order, the reserved set comes
	// back sorted by outpoint
	inputs := make([]wallet.Input, 0, len(tx.TxIn))
	for _, in := range tx.TxIn {
		key := domain.UtxoKey{
			TxID: in.PreviousOutPoint.Hash.String(),
			VOut: in.PreviousOutPoint.Index,
		}
		utxo, ok := utxosByOutpoint[key]
		if !ok {
			return nil, ErrMalformedTransaction
		}
		inputs = append(inputs, wallet.Input{
			PrevoutScript:  utxo.Script,
			PrevoutValue:   utxo.Value,
			DerivationPath: utxo.DerivationPath,
			ScriptType:     wallet.ScriptTypeFromScript(utxo.Script),
		})
	}

	signedTxHex, err := s.wallet.SignTransaction(wallet.SignTransactionOpts{
		TxHex:  build.txHex,
		Inputs: inputs,
	})
	if err != nil {
		s.releaseUtxos(ctx, reservedUtxos)
		s.dropBuild(ctx, buildID, build)
		return nil, err
	}

	signedTx, err := deserializeTx(signedTxHex)
	if err != nil {
		return nil, err
	}
	txID := signedTx.TxHash().String()

	for _, utxo := range reservedUtxos {
		if err := s.utxoRepository.UpdateUtxo(
			ctx, utxo.Key(), func(u *domain.Utxo) (*domain.Utxo, error) {
				if err := u.Spend(txID, 0); err != nil {
					return nil, err
				}
				return u, nil
			},
		); err != nil {
			return nil, err
		}
	}

	s.buildsMtx.Lock()
	delete(s.builds, buildID)
	s.buildsMtx.Unlock()

	log.Debugf("signed transaction %s spending %d utxos", txID, len(reservedUtxos))
	return &SignTransactionResult{TxHex: signedTxHex, TxID: txID}, nil
}

func (s *transactionService) AbandonTransaction(
	ctx context.Context, buildID uuid.UUID,
) error {
	s.buildsMtx.Lock()
	build, ok := s.builds[buildID]
	s.buildsMtx.Unlock()

	reservedUtxos, err := s.utxoRepository.GetUtxosReservedBy(ctx, buildID)
	if err != nil {
		return err
	}
	if !ok && len(reservedUtxos) <= 0 {
		return ErrBuildNotFound
	}

	s.releaseUtxos(ctx, reservedUtxos)
	if ok {
		s.dropBuild(ctx, buildID, build)
	}

	log.Debugf(
		"abandoned transaction build %s, released %d utxos",
		buildID, len(reservedUtxos),
	)
	return nil
}

func (s *transactionService) releaseUtxos(
	ctx context.Context, utxos []domain.Utxo,
) {
	for _, utxo := range utxos {
		if err := s.utxoRepository.UpdateUtxo(
			ctx, utxo.Key(), func(u *domain.Utxo) (*domain.Utxo, error) {
				u.Release()
				return u, nil
			},
		); err != nil {
			log.Warnf("releasing utxo %s:%d: %s", utxo.TxID, utxo.VOut, err)
		}
	}
}

func (s *transactionService) rollbackChangePath(ctx context.Context) {
	if err := s.vaultRepository.UpdateVault(
		ctx, func(v *domain.Vault) (*domain.Vault, error) {
			v.RollbackInternal()
			return v, nil
		},
	); err != nil {
		log.Warnf("rolling back change derivation path: %s", err)
	}
}

func (s *transactionService) dropBuild(
	ctx context.Context, buildID uuid.UUID, build pendingBuild,
) {
	s.buildsMtx.Lock()
	delete(s.builds, buildID)
	s.buildsMtx.Unlock()

	if build.hasChange {
		s.rollbackChangePath(ctx)
	}
}
