package application

import (
	"sync"

	"github.com/outpointlabs/wallet-engine/internal/core/domain"
)

// ChainState tracks the best block announced by the chain observer. The
// listener service moves the tip forward, the other services read it to
// compute confirmation depths. A nil tip means no block was announced yet
// and every utxo counts as unconfirmed.
type ChainState struct {
	lock *sync.RWMutex
	tip  *domain.KnownBlock
}

func NewChainState() *ChainState {
	return &ChainState{
		lock: &sync.RWMutex{},
	}
}

// Tip returns a copy of the best known block, nil if none was announced.
func (s *ChainState) Tip() *domain.KnownBlock {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.tip == nil {
		return nil
	}
	tip := *s.tip
	return &tip
}

// TipHeight returns the height of the best known block, 0 if none.
func (s *ChainState) TipHeight() uint64 {
	s.lock.RLock()
	defer s.lock.RUnlock()

	if s.tip == nil {
		return 0
	}
	return s.tip.Height
}

func (s *ChainState) applyTip(block domain.KnownBlock) {
	s.lock.Lock()
	defer s.lock.Unlock()

	s.tip = &block
}
