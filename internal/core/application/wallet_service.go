package application

import (
	"context"
	"encoding/hex"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	log "github.com/sirupsen/logrus"

	"github.com/outpointlabs/wallet-engine/internal/core/domain"
	"github.com/outpointlabs/wallet-engine/pkg/wallet"
)

// DefaultAccount is the account index the engine derives from.
const DefaultAccount uint32 = 0

// WalletService exposes the read side of the wallet: address derivation,
// balance and utxo listing.
type WalletService interface {
	GetInfo(ctx context.Context) (*WalletInfo, error)
	NewReceiveAddress(ctx context.Context) (*AddressInfo, error)
	GetBalance(ctx context.Context, minConfirmations uint64) (*BalanceInfo, error)
	ListUtxos(ctx context.Context) ([]UtxoInfo, error)
}

type walletService struct {
	wallet          *wallet.Wallet
	scriptType      int
	vaultRepository domain.VaultRepository
	utxoRepository  domain.UtxoRepository
	chainState      *ChainState
}

// NewWalletService returns a WalletService deriving addresses of the given
// script type. It binds the vault to the wallet's account extended public
// key, creating it at first use. Reopening a store written by a different
// wallet fails with ErrVaultWalletMismatch
func NewWalletService(
	w *wallet.Wallet,
	scriptType int,
	vaultRepository domain.VaultRepository,
	utxoRepository domain.UtxoRepository,
	chainState *ChainState,
) (WalletService, error) {
	accountXPub, accountPath, err := accountXPubAndPath(w)
	if err != nil {
		return nil, err
	}

	if _, err := vaultRepository.GetOrCreateVault(
		context.Background(), accountXPub, accountPath,
	); err != nil {
		return nil, err
	}

	return &walletService{
		wallet:          w,
		scriptType:      scriptType,
		vaultRepository: vaultRepository,
		utxoRepository:  utxoRepository,
		chainState:      chainState,
	}, nil
}

func (s *walletService) GetInfo(ctx context.Context) (*WalletInfo, error) {
	vault, err := s.vaultRepository.GetVault(ctx)
	if err != nil {
		return nil, err
	}

	return &WalletInfo{
		Network:            s.wallet.Network().Name,
		WatchOnly:          s.wallet.IsWatchOnly(),
		AccountXPub:        vault.AccountXPub,
		BaseDerivationPath: vault.BaseDerivationPath,
		NextExternalIndex:  vault.NextExternalIndex,
		NextInternalIndex:  vault.NextInternalIndex,
	}, nil
}

func (s *walletService) NewReceiveAddress(ctx context.Context) (*AddressInfo, error) {
	var info *AddressInfo

	if err := s.vaultRepository.UpdateVault(
		ctx, func(v *domain.Vault) (*domain.Vault, error) {
			derivationPath := v.NextExternalPath()
			addr, script, err := s.wallet.DeriveAddress(wallet.DeriveAddressOpts{
				DerivationPath: derivationPath,
				ScriptType:     s.scriptType,
			})
			if err != nil {
				return nil, err
			}

			scriptHex := hex.EncodeToString(script)
			v.AddScript(scriptHex, derivationPath)

			info = &AddressInfo{
				Address:        addr,
				Script:         scriptHex,
				DerivationPath: derivationPath,
			}
			return v, nil
		},
	); err != nil {
		return nil, err
	}

	log.Debugf("derived receive address at %s", info.DerivationPath)
	return info, nil
}

func (s *walletService) GetBalance(
	ctx context.Context, minConfirmations uint64,
) (*BalanceInfo, error) {
	utxos, err := s.utxoRepository.GetAllUtxos(ctx)
	if err != nil {
		return nil, err
	}

	tipHeight := s.chainState.TipHeight()
	balance := &BalanceInfo{}
	for _, utxo := range utxos {
		if utxo.IsSpent() {
			continue
		}
		if utxo.IsReserved() {
			balance.Locked += utxo.Value
			continue
		}
		if utxo.Confirmations(tipHeight) >= minConfirmations {
			balance.Confirmed += utxo.Value
		} else {
			balance.Unconfirmed += utxo.Value
		}
	}
	balance.Total = balance.Confirmed + balance.Unconfirmed + balance.Locked

	return balance, nil
}

func (s *walletService) ListUtxos(ctx context.Context) ([]UtxoInfo, error) {
	utxos, err := s.utxoRepository.GetAllUtxos(ctx)
	if err != nil {
		return nil, err
	}

	tipHeight := s.chainState.TipHeight()
	infos := make([]UtxoInfo, 0, len(utxos))
	for _, utxo := range utxos {
		infos = append(infos, utxoInfo(utxo, tipHeight))
	}
	return infos, nil
}

// accountXPubAndPath resolves the extended public key and the derivation
// path of the account the vault is bound to. Full wallets and wallets
// restored at the default base path derive the account node below
// DefaultBaseDerivationPath. Wallets restored from an extended key rooted
// elsewhere are bound to the node the key sits at
func accountXPubAndPath(w *wallet.Wallet) (string, string, error) {
	basePath := w.BasePath()
	if len(basePath) > 0 &&
		basePath.String() != wallet.DefaultBaseDerivationPath.String() {
		xpub, err := w.DeriveExtendedKey(wallet.DeriveExtendedKeyOpts{
			DerivationPath: basePath.String(),
			Public:         true,
		})
		if err != nil {
			return "", "", err
		}
		return xpub, basePath.String(), nil
	}

	xpub, err := w.ExtendedPublicKey(wallet.ExtendedKeyOpts{
		Account: DefaultAccount,
	})
	if err != nil {
		return "", "", err
	}

	accountPath := make(
		wallet.DerivationPath, 0, len(wallet.DefaultBaseDerivationPath)+1,
	)
	accountPath = append(accountPath, wallet.DefaultBaseDerivationPath...)
	accountPath = append(accountPath, hdkeychain.HardenedKeyStart+DefaultAccount)
	return xpub, accountPath.String(), nil
}
