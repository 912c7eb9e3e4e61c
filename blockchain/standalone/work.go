// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"math"
	"sync"

	"github.com/anoncoin/anond/math/uint256"
)

// WorkProof converts the provided target difficulty to a work proof, which is
// the expected number of hash operations required to produce a hash at or
// below the target.  The conversion inverts the target, so harder targets
// (smaller values) produce larger proofs.  A target of zero produces zero.
func WorkProof(target *uint256.Uint256) uint256.Uint256 {
	// The goal is to compute 2^256 / (target+1), however, 2^256 can't be
	// represented by a uint256.  Since 2^256 is at least as large as
	// target+1, it is equal to ((2^256 - target - 1) / (target+1)) + 1, or
	// (~target / (target+1)) + 1.
	var result uint256.Uint256
	if target.IsZero() {
		return result
	}
	divisor := new(uint256.Uint256).Set(target).AddUint64(1)
	result.Set(target).Not().Div(divisor).AddUint64(1)
	return result
}

// CalcWork calculates a work value from difficulty bits.  Anoncoin increases
// the difficulty for generating a block by decreasing the value which the
// generated hash must be less than.
//
// The main chain is selected by choosing the chain that has the most proof of
// work (highest difficulty), so the work value which will be accumulated must
// be the inverse of the difficulty.  Difficulty bits that encode a negative
// or overflowed target produce a work value of zero; this should not happen
// in practice with valid blocks, but an invalid block could trigger it.
func CalcWork(diffBits uint32) uint256.Uint256 {
	target, isNegative, isOverflow := DiffBitsToUint256(diffBits)
	if isNegative || isOverflow {
		var zero uint256.Uint256
		return zero
	}
	return WorkProof(&target)
}

// Log2Work returns the given target difficulty on a logarithm scale, which is
// the primary method of reporting difficulty to the user.  256-bit numbers
// are far too large to log directly, so the target is first converted to its
// work proof and then to a float.
//
// The result is for display purposes only and never affects consensus.
func Log2Work(target *uint256.Uint256) float64 {
	workProof := WorkProof(target)
	if workProof.IsZero() {
		return 0.0
	}
	proof := workProof.Float64()
	if proof == 0.0 {
		return 0.0
	}
	return math.Log(proof) / math.Log(2.0)
}

// linearWorkState caches the proof-of-work limit multiplied by 1000 so the
// 256-bit multiply is not repeated for every conversion.  Only scrypt mining
// is currently in use, so in practice the limit never changes after startup.
var linearWorkState struct {
	sync.Mutex
	powLimit    uint256.Uint256
	powLimitX1K uint256.Uint256
}

// LinearWork returns the given target difficulty on a linear scale relative
// to the minimum work required, with three digits of precision to the right
// of the decimal point.
//
// The result is for display purposes only and never affects consensus.
func LinearWork(target, powLimit *uint256.Uint256) float64 {
	if target.IsZero() {
		return 0.0
	}

	linearWorkState.Lock()
	if !linearWorkState.powLimit.Eq(powLimit) {
		linearWorkState.powLimit.Set(powLimit)
		linearWorkState.powLimitX1K.Set(powLimit).MulUint64(1000)
	}
	scaled := new(uint256.Uint256).Set(&linearWorkState.powLimitX1K)
	linearWorkState.Unlock()

	return scaled.Div(target).Float64() / 1000.0
}
