// Package coinselect provides strategies for picking the unspent outputs
// funding a transaction.
package coinselect

import (
	"errors"
	"sort"

	"github.com/btcsuite/btcd/chaincfg/chainhash"
)

var (
	// ErrInsufficientFunds is returned when no subset of the candidate coins
	// can reach the target amount
	ErrInsufficientFunds = errors.New(
		"total coin amount does not cover target amount",
	)
)

// Coin represents a spendable transaction outpoint
type Coin interface {
	Hash() *chainhash.Hash
	Index() uint32
	Value() uint64
	PkScript() []byte
	NumConfs() int64
}

// Selector is an interface that wraps the Select method.
//
// Select attempts to pick a subset of the given coins whose total value is at
// least the target amount. It returns the subset along with the amount
// exceeding the target, the eventual change. The exact choice of coins is
// implementation specific. Implementations never mutate the given slice and
// pick every coin at most once
type Selector interface {
	Select(targetAmount uint64, coins []Coin) ([]Coin, uint64, error)
}

var (
	// SelectLargestFirst picks the biggest coins first, so that the target
	// is reached with as few inputs as possible
	SelectLargestFirst Selector = &LargestFirstSelector{}
	// SelectSmallestFirst picks the smallest coins first, consolidating
	// many little coins at the price of a bigger transaction
	SelectSmallestFirst Selector = &SmallestFirstSelector{}
	// SelectMinimizeChange picks the coins leaving the smallest change
	SelectMinimizeChange Selector = &MinimizeChangeSelector{}
)

// LargestFirstSelector accumulates coins in descending value order until the
// target amount is reached
type LargestFirstSelector struct{}

// Select implements the Selector interface
func (s *LargestFirstSelector) Select(
	targetAmount uint64, coins []Coin,
) ([]Coin, uint64, error) {
	sortedCoins := sortedCopy(coins, func(a, b Coin) bool {
		return a.Value() > b.Value()
	})
	return accumulate(targetAmount, sortedCoins)
}

// SmallestFirstSelector accumulates coins in ascending value order until the
// target amount is reached
type SmallestFirstSelector struct{}

// Select implements the Selector interface
func (s *SmallestFirstSelector) Select(
	targetAmount uint64, coins []Coin,
) ([]Coin, uint64, error) {
	sortedCoins := sortedCopy(coins, func(a, b Coin) bool {
		return a.Value() < b.Value()
	})
	return accumulate(targetAmount, sortedCoins)
}

// MinimizeChangeSelector prefers the smallest single coin covering the whole
// target amount, falling back to accumulating the smallest coins when no
// single one does
type MinimizeChangeSelector struct{}

// Select implements the Selector interface
func (s *MinimizeChangeSelector) Select(
	targetAmount uint64, coins []Coin,
) ([]Coin, uint64, error) {
	sortedCoins := sortedCopy(coins, func(a, b Coin) bool {
		return a.Value() < b.Value()
	})
	for _, coin := range sortedCoins {
		if coin.Value() >= targetAmount {
			return []Coin{coin}, coin.Value() - targetAmount, nil
		}
	}
	return accumulate(targetAmount, sortedCoins)
}

// SelectorByName returns the selector matching the given name, defaulting to
// largest-first for unknown ones
func SelectorByName(name string) Selector {
	switch name {
	case "smallestFirst":
		return SelectSmallestFirst
	case "minimizeChange":
		return SelectMinimizeChange
	default:
		return SelectLargestFirst
	}
}

func accumulate(targetAmount uint64, coins []Coin) ([]Coin, uint64, error) {
	selectedCoins := make([]Coin, 0, len(coins))
	totalAmount := uint64(0)
	for _, coin := range coins {
		selectedCoins = append(selectedCoins, coin)
		totalAmount += coin.Value()
		if totalAmount >= targetAmount {
			return selectedCoins, totalAmount - targetAmount, nil
		}
	}
	return nil, 0, ErrInsufficientFunds
}

func sortedCopy(coins []Coin, less func(a, b Coin) bool) []Coin {
	sortedCoins := make([]Coin, len(coins))
	copy(sortedCoins, coins)
	sort.SliceStable(sortedCoins, func(i, j int) bool {
		return less(sortedCoins[i], sortedCoins[j])
	})
	return sortedCoins
}
