package wallet

import (
	"github.com/btcsuite/btcd/txscript"
	"github.com/shopspring/decimal"

	"github.com/outpointlabs/wallet-engine/pkg/mathutil"
)

const (
	P2PK = iota
	P2PKH
	P2MS
	P2SH_P2WPKH
	P2SH_P2WSH
	P2WPKH
	P2WSH

	// NonStandard identifies scripts not matching any of the templates above
	NonStandard = -1
)

// ScriptTypeFromScript returns the template of the provided output script.
// Script-hash outputs are reported as nested segwit ones, since that's the
// only p2sh flavour the wallet derives
func ScriptTypeFromScript(script []byte) int {
	switch txscript.GetScriptClass(script) {
	case txscript.PubKeyTy:
		return P2PK
	case txscript.PubKeyHashTy:
		return P2PKH
	case txscript.MultiSigTy:
		return P2MS
	case txscript.ScriptHashTy:
		return P2SH_P2WPKH
	case txscript.WitnessV0PubKeyHashTy:
		return P2WPKH
	case txscript.WitnessV0ScriptHashTy:
		return P2WSH
	default:
		return NonStandard
	}
}

// EstimateTxSize makes an estimation of the virtual size of a transaction for
// which is required to specify the type of the inputs and outputs according to
// those of the Bitcoin standard (P2PK, P2PKH, P2MS, P2SH(P2WPKH), P2SH(P2WSH),
// P2WPKH, P2WSH).
// In case some inputs or outputs are of type P2MS or P2WSH, it is mandatory to
// pass their redeem script sizes as auxiliary slices in accordance.
func EstimateTxSize(
	inScriptTypes, inAuxiliaryRedeemScriptSize, inAuxiliaryWitnessSize,
	outScriptTypes, outAuxiliaryRedeemScriptSize []int,
) int {
	baseSize := calcTxSize(
		false,
		inScriptTypes, inAuxiliaryRedeemScriptSize, inAuxiliaryWitnessSize,
		outScriptTypes, outAuxiliaryRedeemScriptSize,
	)
	totalSize := calcTxSize(
		true,
		inScriptTypes, inAuxiliaryRedeemScriptSize, inAuxiliaryWitnessSize,
		outScriptTypes, outAuxiliaryRedeemScriptSize,
	)

	weight := baseSize*3 + totalSize
	vsize := (weight + 3) / 4

	return vsize
}

// EstimateFeeAmount returns the fee amount in satoshis that a transaction of
// the given composition pays at the given rate in sats per virtual byte.
// The amount is rounded up, so that the paid rate never falls below the
// target one
func EstimateFeeAmount(
	inScriptTypes, inAuxiliaryRedeemScriptSize, inAuxiliaryWitnessSize,
	outScriptTypes, outAuxiliaryRedeemScriptSize []int,
	satsPerVByte decimal.Decimal,
) uint64 {
	txSize := EstimateTxSize(
		inScriptTypes, inAuxiliaryRedeemScriptSize, inAuxiliaryWitnessSize,
		outScriptTypes, outAuxiliaryRedeemScriptSize,
	)
	return mathutil.FeeAmountForSize(uint64(txSize), satsPerVByte)
}

func calcTxSize(
	withWitness bool,
	inScriptTypes, inAuxiliaryRedeemScriptSize, inAuxiliaryWitnessSize,
	outScriptTypes, outAuxiliaryRedeemScriptSize []int,
) int {
	txSize := calcTxBaseSize(
		inScriptTypes, inAuxiliaryRedeemScriptSize,
		outScriptTypes, outAuxiliaryRedeemScriptSize,
	)
	if withWitness && anyWitnessScriptType(inScriptTypes) {
		txSize += calcTxWitnessSize(inScriptTypes, inAuxiliaryWitnessSize)
	}
	return txSize
}

var (
	scriptSigSizeByScriptType = map[int]int{
		P2PK:        74,  // len + push + sig
		P2PKH:       108, // len + push + sig + push + pubkey
		P2SH_P2WPKH: 24,  // len + push + p2wpkh script
		P2SH_P2WSH:  36,  // len + push + p2wsh script
		P2WPKH:      1,   // no scriptsig, still len is serialized
		P2WSH:       1,   // no scriptsig
	}
	scriptPubKeySizeByScriptType = map[int]int{
		P2PK:        36, // len + push + pubkey + opcode
		P2PKH:       26, // len + opcodes (3) + hash(pubkey) + opcodes (2)
		P2SH_P2WPKH: 24, // len + opcodes (2) + hash(script) + opcode
		P2SH_P2WSH:  24, // len + opcodes (2) + hash(script) + opcode
		P2WPKH:      23, // len + opcodes (2) + hash(pubkey)
		P2WSH:       35, // len + opcodes (2) + hash(script)
	}
)

func calcTxBaseSize(
	inScriptTypes, inAuxiliaryRedeemScriptSize,
	outScriptTypes, outAuxiliaryRedeemScriptSize []int,
) int {
	// hash + index + sequence
	inBaseSize := 40
	insSize := 0
	auxCount := 0
	for _, scriptType := range inScriptTypes {
		scriptSize, ok := scriptSigSizeByScriptType[scriptType]
		if !ok {
			scriptSize = inAuxiliaryRedeemScriptSize[auxCount]
			auxCount++
		}
		insSize += inBaseSize + scriptSize
	}

	// value
	outBaseSize := 8
	outsSize := 0
	auxCount = 0
	for _, scriptType := range outScriptTypes {
		scriptSize, ok := scriptPubKeySizeByScriptType[scriptType]
		if !ok {
			scriptSize = outAuxiliaryRedeemScriptSize[auxCount]
			auxCount++
		}
		outsSize += outBaseSize + scriptSize
	}

	// version + locktime
	return 8 +
		varIntSerializeSize(uint64(len(inScriptTypes))) +
		varIntSerializeSize(uint64(len(outScriptTypes))) +
		insSize + outsSize
}

func calcTxWitnessSize(inScriptTypes, inAuxiliaryWitnessSize []int) int {
	// marker + flag
	size := 2
	auxCount := 0
	for _, scriptType := range inScriptTypes {
		switch scriptType {
		case P2SH_P2WPKH, P2WPKH:
			// count + witness[sig, pubkey]
			size += 1 + (1 + 72) + (1 + 33)
		case P2SH_P2WSH, P2WSH:
			size += inAuxiliaryWitnessSize[auxCount]
			auxCount++
		default:
			// empty witness, still count is serialized
			size++
		}
	}
	return size
}

func anyWitnessScriptType(inScriptTypes []int) bool {
	for _, scriptType := range inScriptTypes {
		switch scriptType {
		case P2SH_P2WPKH, P2SH_P2WSH, P2WPKH, P2WSH:
			return true
		}
	}
	return false
}
