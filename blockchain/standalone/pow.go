// Copyright (c) 2013-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"fmt"

	"github.com/decred/dcrd/chaincfg/chainhash"

	"github.com/anoncoin/anond/math/uint256"
)

// HashToUint256 converts the provided hash to an unsigned 256-bit integer
// that can be used to perform math comparisons.
func HashToUint256(hash *chainhash.Hash) uint256.Uint256 {
	// Hashes are stored in little-endian byte order, which is the exact byte
	// order the unsigned integer expects.
	var n uint256.Uint256
	n.SetBytes((*[32]byte)(hash))
	return n
}

// DiffBitsToUint256 converts the compact representation used to encode
// difficulty targets to an unsigned 256-bit integer.  The representation is
// similar to IEEE754 floating point numbers.
//
// Like IEEE754 floating point, there are three basic components: the sign,
// the exponent, and the mantissa.  They are broken out as follows:
//
//  1) the most significant 8 bits represent the unsigned base 256 exponent
//  2) bit 23 (the 24th bit) represents the sign bit
//  3) the least significant 23 bits represent the mantissa
//
//	-------------------------------------------------
//	|   Exponent     |    Sign    |    Mantissa     |
//	-------------------------------------------------
//	| 8 bits [31-24] | 1 bit [23] | 23 bits [22-00] |
//	-------------------------------------------------
//
// The formula to calculate N is:
//
//	N = (-1^sign) * mantissa * 256^(exponent-3)
//
// Note that this encoding is capable of representing negative numbers as well
// as numbers much larger than the maximum value of an unsigned 256-bit
// integer.  However, it is only used to encode unsigned 256-bit integers
// which represent difficulty targets, so rather than using a much less
// efficient arbitrary precision big integer, this implementation uses an
// unsigned 256-bit integer and returns flags to indicate whether or not the
// encoding was for a negative value and/or overflows a uint256 to enable
// proper error detection and stay consistent with legacy code.
func DiffBitsToUint256(bits uint32) (n uint256.Uint256, isNegative bool, isOverflow bool) {
	// Extract the mantissa, sign bit, and exponent.
	mantissa := bits & 0x007fffff
	isSignBitSet := bits&0x00800000 != 0
	exponent := bits >> 24

	// Nothing to do when the mantissa is zero as any multiple of it will
	// necessarily also be 0 and therefore it can never be negative or
	// overflow.
	if mantissa == 0 {
		return n, false, false
	}

	// Since the base for the exponent is 256, the exponent can be treated as
	// the number of bytes to represent the full 256-bit number.  So, treat
	// the exponent as the number of bytes and shift the mantissa right or
	// left accordingly.  This is equivalent to:
	// N = mantissa * 256^(exponent-3)
	if exponent <= 3 {
		n.SetUint64(uint64(mantissa >> (8 * (3 - exponent))))
	} else {
		n.SetUint64(uint64(mantissa)).Lsh(8 * (exponent - 3))
	}

	// The value is negative when the sign bit is set along with a nonzero
	// mantissa and overflows a uint256 when the shifted value exceeds 256
	// bits.
	isNegative = isSignBitSet
	isOverflow = exponent > 34 || (exponent > 33 && mantissa > 0xff) ||
		(exponent > 32 && mantissa > 0xffff)
	return n, isNegative, isOverflow
}

// Uint256ToDiffBits converts an unsigned 256-bit integer to a compact
// representation using an unsigned 32-bit integer.  The compact
// representation only provides 23 bits of precision, so values larger than
// (2^23 - 1) only encode the most significant digits of the number.  See
// DiffBitsToUint256 for details.
func Uint256ToDiffBits(n *uint256.Uint256) uint32 {
	// No need to do any work if it's zero.
	if n.IsZero() {
		return 0
	}

	// Since the base for the exponent is 256, the exponent can be treated as
	// the number of bytes.  So, shift the number right or left accordingly.
	// This is equivalent to: mantissa = n / 256^(exponent-3)
	var mantissa uint32
	exponent := uint32(n.BitLen()+7) / 8
	if exponent <= 3 {
		mantissa = uint32(n.Uint64() << (8 * (3 - exponent)))
	} else {
		var shifted uint256.Uint256
		shifted.Set(n).Rsh(8 * (exponent - 3))
		mantissa = uint32(shifted.Uint64())
	}

	// When the mantissa already has the sign bit set, the number is too large
	// to fit into the available 23-bits, so divide the number by 256 and
	// increment the exponent accordingly.
	if mantissa&0x00800000 != 0 {
		mantissa >>= 8
		exponent++
	}

	// Pack the exponent and mantissa into an unsigned 32-bit int and return
	// it.  The sign bit is never set since the targets are unsigned.
	return exponent<<24 | mantissa
}

// CheckProofOfWorkRange ensures the provided target difficulty represented by
// the given compact bits is in min/max range per the provided proof-of-work
// limit.
func CheckProofOfWorkRange(diffBits uint32, powLimit *uint256.Uint256) error {
	// The target difficulty must be larger than zero and not overflow and be
	// less than the maximum value that can be represented by a uint256.
	target, isNegative, isOverflow := DiffBitsToUint256(diffBits)
	if isNegative {
		str := fmt.Sprintf("target difficulty bits %08x is a negative value",
			diffBits)
		return ruleError(ErrUnexpectedDifficulty, str)
	}
	if isOverflow {
		str := fmt.Sprintf("target difficulty bits %08x is higher than the "+
			"max limit %s", diffBits, powLimit)
		return ruleError(ErrUnexpectedDifficulty, str)
	}
	if target.IsZero() {
		str := fmt.Sprintf("target difficulty bits %08x is zero", diffBits)
		return ruleError(ErrUnexpectedDifficulty, str)
	}

	// The target difficulty must not exceed the maximum allowed.
	if target.Gt(powLimit) {
		str := fmt.Sprintf("target difficulty of %s is higher than max of %s",
			target.String(), powLimit)
		return ruleError(ErrUnexpectedDifficulty, str)
	}

	return nil
}

// CheckProofOfWork ensures the provided hash, which is the result of hashing
// a block with the chain's proof-of-work hash function, is less than the
// target difficulty represented by given compact bits while also ensuring the
// bits are in min/max range per the provided proof-of-work limit.
func CheckProofOfWork(powHash *chainhash.Hash, diffBits uint32, powLimit *uint256.Uint256) error {
	if err := CheckProofOfWorkRange(diffBits, powLimit); err != nil {
		return err
	}

	// The block hash must be less than the target difficulty.  The range is
	// already proven valid above.
	target, _, _ := DiffBitsToUint256(diffBits)
	hashNum := HashToUint256(powHash)
	if hashNum.Gt(&target) {
		str := fmt.Sprintf("proof of work hash %s is higher than expected "+
			"max of %s", hashNum.String(), target.String())
		return ruleError(ErrHighHash, str)
	}

	return nil
}
