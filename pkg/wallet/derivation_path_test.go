package wallet

import (
	"testing"

	"github.com/btcsuite/btcd/btcutil/hdkeychain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDerivationPath(t *testing.T) {
	tests := []struct {
		input  string
		output DerivationPath
	}{
		// Plain absolute derivation paths
		{"m/84'/0'/0'/0", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0}},
		{"m/84'/0'/0'/128", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 128}},
		{"m/84'/0'/0'/0'", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart}},
		{"m/2147483732/2147483648/2147483648/0", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0}},

		// Hexadecimal absolute derivation paths
		{"m/0x54'/0x00'/0x00'/0x00", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0}},
		{"m/0x80000054/0x80000000/0x80000000/0x80000000", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart}},

		// Weird inputs just to ensure they work
		{"	m  /   84			'\n/\n   00	\n\n\t'   /\n0 ' /\t\t	0", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, hdkeychain.HardenedKeyStart, 0}},

		// Relative derivation paths
		{"84'/0'/0/0", DerivationPath{hdkeychain.HardenedKeyStart + 84, hdkeychain.HardenedKeyStart, 0, 0}},
		{"0'/0/0", DerivationPath{hdkeychain.HardenedKeyStart, 0, 0}},
		{"0/0", DerivationPath{0, 0}},
	}
	for _, tt := range tests {
		path, err := ParseDerivationPath(tt.input)
		require.NoError(t, err, tt.input)
		assert.Equal(t, tt.output, path)
	}
}

func TestFailingParseDerivationPath(t *testing.T) {
	tests := []struct {
		input string
		err   error
	}{
		// Empty relative derivation path
		{"", ErrNullDerivationPath},
		// Empty absolute derivation path
		{"m", ErrMalformedDerivationPath},
		// Missing last derivation component
		{"m/", ErrMalformedDerivationPath},
		// Absolute path without m prefix, might be user error
		{"/84'/0'/0'/0", ErrMalformedDerivationPath},
		// Empty intermediate component
		{"m/84'//0'/0", ErrMalformedDerivationPath},
		// Single component without m prefix
		{"0", ErrMalformedDerivationPath},
		// Not a number
		{"m/84'/0'/0'/abc", ErrInvalidChildIndex},
		// Cannot contain negative number
		{"m/-1'", ErrInvalidChildIndex},
		// Overflows the hardened key range
		{"m/2147483648'/0/0", ErrInvalidChildIndex},
		// Overflows 32 bit integer
		{"m/4294967296/0/0", ErrInvalidChildIndex},
	}
	for _, tt := range tests {
		_, err := ParseDerivationPath(tt.input)
		require.Error(t, err, tt.input)
		assert.ErrorIs(t, err, tt.err, tt.input)
	}
}

func TestDerivationPathString(t *testing.T) {
	tests := []struct {
		path   DerivationPath
		output string
	}{
		{
			DerivationPath{
				hdkeychain.HardenedKeyStart + 84,
				hdkeychain.HardenedKeyStart,
				hdkeychain.HardenedKeyStart,
				0,
			},
			"m/84'/0'/0'/0",
		},
		{DerivationPath{0, 1}, "m/0/1"},
		{nil, ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.output, tt.path.String())

		// parsing the canonical form must give back the very same path
		if len(tt.path) > 0 {
			parsed, err := ParseDerivationPath(tt.output)
			require.NoError(t, err)
			assert.Equal(t, tt.path, parsed)
		}
	}
}

func TestDerivationPathHasPrefix(t *testing.T) {
	base, err := ParseDerivationPath("m/84'/0'/0'")
	require.NoError(t, err)

	tests := []struct {
		path     string
		expected bool
	}{
		{"m/84'/0'/0'", true},
		{"m/84'/0'/0'/0", true},
		{"m/84'/0'/0'/1/42", true},
		{"m/84'/0'/1'", false},
		{"m/84'/0'", false},
		{"m/44'/0'/0'/0", false},
	}

	for _, tt := range tests {
		path, err := ParseDerivationPath(tt.path)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, path.HasPrefix(base), tt.path)
	}
}
