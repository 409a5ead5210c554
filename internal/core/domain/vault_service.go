package domain

import (
	"fmt"
	"reflect"
	"sort"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
)

// IsZero returns whether the Vault is initialized without holding any data
func (v *Vault) IsZero() bool {
	return reflect.DeepEqual(*v, Vault{})
}

// IsInitialized returns whether the Vault is bound to some wallet
func (v *Vault) IsInitialized() bool {
	return len(v.AccountXPub) > 0
}

// BelongsTo returns whether the Vault was initialized with the provided
// account extended public key
func (v *Vault) BelongsTo(accountXPub string) bool {
	return v.AccountXPub == accountXPub
}

// NextExternalPath returns the derivation path of the next unused receive
// address and moves the external frontier past it
func (v *Vault) NextExternalPath() string {
	index := v.NextExternalIndex
	v.NextExternalIndex = nextIndex(v.NextExternalIndex)
	return v.pathForBranch(ExternalChain, index)
}

// NextInternalPath returns the derivation path of the next unused change
// address and moves the internal frontier past it
func (v *Vault) NextInternalPath() string {
	index := v.NextInternalIndex
	v.NextInternalIndex = nextIndex(v.NextInternalIndex)
	return v.pathForBranch(InternalChain, index)
}

// RollbackInternal moves the internal frontier one step back, undoing the
// last NextInternalPath. Used when the transaction holding the change gets
// abandoned, so that the next build reuses the same change path
func (v *Vault) RollbackInternal() {
	if v.NextInternalIndex > 0 {
		v.NextInternalIndex--
	}
}

// AddScript records the output script derived at the provided path in the
// vault index. Recording the same script again is a no-op
func (v *Vault) AddScript(outputScript, derivationPath string) {
	if _, ok := v.DerivationPathByScript[outputScript]; !ok {
		v.DerivationPathByScript[outputScript] = derivationPath
	}
}

// PathByScript returns the derivation path of the provided output script, if
// the vault ever derived it
func (v *Vault) PathByScript(outputScript string) (string, bool) {
	path, ok := v.DerivationPathByScript[outputScript]
	return path, ok
}

// IsRelevantScript returns whether the provided output script belongs to the
// wallet
func (v *Vault) IsRelevantScript(outputScript string) bool {
	_, ok := v.DerivationPathByScript[outputScript]
	return ok
}

// WatchedScripts returns every output script derived by the vault, sorted by
// derivation path so that the order is deterministic and grouped by branch
func (v *Vault) WatchedScripts() []string {
	type scriptAndPath struct {
		script string
		path   string
	}

	list := make([]scriptAndPath, 0, len(v.DerivationPathByScript))
	for script, path := range v.DerivationPathByScript {
		list = append(list, scriptAndPath{script, path})
	}
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].path < list[j].path
	})

	scripts := make([]string, 0, len(list))
	for _, elem := range list {
		scripts = append(scripts, elem.script)
	}
	return scripts
}

func (v *Vault) pathForBranch(chainIndex int, addressIndex uint32) string {
	return fmt.Sprintf(
		"%s/%d/%d", v.BaseDerivationPath, chainIndex, addressIndex,
	)
}

// nextIndex increments the provided index by one, restarting from 0 if it
// reached the top of the non-hardened range
func nextIndex(index uint32) uint32 {
	if index >= hdkeychain.HardenedKeyStart-1 {
		return 0
	}
	return index + 1
}
