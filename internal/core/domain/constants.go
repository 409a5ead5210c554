package domain

const (
	// ExternalChain is the branch of the derivation tree holding receive
	// addresses
	ExternalChain = 0
	// InternalChain is the branch of the derivation tree holding change
	// addresses
	InternalChain = 1
)
