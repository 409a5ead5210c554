package domain

// KnownBlock is a chain tip as announced by the chain observer
type KnownBlock struct {
	Height   uint64
	Hash     string
	PrevHash string
}

// Extends returns whether the block legitimately follows the provided tip.
// Any block extends a nil tip, the first announcement after a restart is
// always accepted
func (b KnownBlock) Extends(tip *KnownBlock) bool {
	if tip == nil {
		return true
	}
	return b.PrevHash == tip.Hash
}
