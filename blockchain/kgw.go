// Copyright (c) 2014-2017 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math"

	"github.com/anoncoin/anond/blockchain/standalone"
	"github.com/anoncoin/anond/math/uint256"
)

const (
	// kgwMinBlocksToAvg is the minimum block mass the gravity well needs
	// before it can execute, .25 days worth of blocks.
	kgwMinBlocksToAvg = (secondsPerDay / 4) / targetSpacing

	// kgwMaxBlocksToAvg is the deepest the gravity well ever reads into the
	// chain, 7 days worth of blocks.
	kgwMaxBlocksToAvg = (secondsPerDay * 7) / targetSpacing
)

// abs64 returns the absolute value of the passed int64.
func abs64(n int64) int64 {
	if n >= 0 {
		return n
	}
	return -n
}

// kimotoGravityWell calculates the required difficulty for the block after
// the passed previous block node using the classic Kimoto gravity well: a
// running difficulty average over an adaptive window whose depth is decided
// by how far the observed block rate has deviated from the target rate.
//
// The running average recurrence is evaluated with the same wrapping
// unsigned 256-bit arithmetic the historical implementation used, which is
// required to validate the blocks mined against it.
func kimotoGravityWell(lastNode HeaderCtx, targetSpacingSecs, pastBlocksMin, pastBlocksMax uint64, powLimit *uint256.Uint256) uint32 {
	blockLastSolved := lastNode
	blockReading := lastNode
	var pastBlocksMass uint64
	var pastRateActualSeconds uint64
	var pastRateTargetSeconds uint64
	pastRateAdjustmentRatio := float64(1)
	var pastDifficultyAverage uint256.Uint256
	var pastDifficultyAveragePrev uint256.Uint256

	if blockLastSolved == nil || blockLastSolved.Height() == 0 ||
		uint64(blockLastSolved.Height()) < pastBlocksMin {

		return standalone.Uint256ToDiffBits(powLimit)
	}

	for i := uint64(1); blockReading != nil && blockReading.Height() > 0; i++ {
		if pastBlocksMax > 0 && i > pastBlocksMax {
			break
		}
		pastBlocksMass++

		if i == 1 {
			pastDifficultyAverage, _, _ =
				standalone.DiffBitsToUint256(blockReading.Bits())
		} else {
			// avg = ((sample - prevAvg) / i) + prevAvg, with the
			// subtraction wrapping modulo 2^256 when the sample is below
			// the previous average.
			sample, _, _ := standalone.DiffBitsToUint256(blockReading.Bits())
			sample.Sub(&pastDifficultyAveragePrev)
			sample.DivUint64(i)
			sample.Add(&pastDifficultyAveragePrev)
			pastDifficultyAverage = sample
		}
		pastDifficultyAveragePrev = pastDifficultyAverage

		pastRateActualSeconds = uint64(blockLastSolved.Timestamp() -
			blockReading.Timestamp())
		pastRateTargetSeconds = targetSpacingSecs * pastBlocksMass
		pastRateAdjustmentRatio = float64(1)
		if pastRateActualSeconds != 0 && pastRateTargetSeconds != 0 {
			pastRateAdjustmentRatio = float64(pastRateTargetSeconds) /
				float64(pastRateActualSeconds)
		}
		eventHorizonDeviation := 1 + 0.7084*
			math.Pow(float64(pastBlocksMass)/float64(144), -1.228)
		eventHorizonDeviationFast := eventHorizonDeviation
		eventHorizonDeviationSlow := 1 / eventHorizonDeviation

		if pastBlocksMass >= pastBlocksMin {
			if pastRateAdjustmentRatio <= eventHorizonDeviationSlow ||
				pastRateAdjustmentRatio >= eventHorizonDeviationFast {

				break
			}
		}
		if blockReading.Parent() == nil {
			break
		}
		blockReading = blockReading.Parent()
	}

	var newTarget uint256.Uint256
	newTarget.Set(&pastDifficultyAverage)
	if pastRateActualSeconds != 0 && pastRateTargetSeconds != 0 {
		newTarget.MulUint64(pastRateActualSeconds)
		newTarget.DivUint64(pastRateTargetSeconds)
	}
	if newTarget.Gt(powLimit) {
		newTarget.Set(powLimit)
	}

	log.Debugf("Difficulty retarget, Kimoto gravity well")
	log.Debugf("  PastRateAdjustmentRatio = %g", pastRateAdjustmentRatio)
	log.Debugf("  Before: %08x", blockLastSolved.Bits())
	log.Debugf("  After : %08x %s", standalone.Uint256ToDiffBits(&newTarget),
		newTarget.String())

	return standalone.Uint256ToDiffBits(&newTarget)
}

// nextWorkRequiredKgwV2 calculates the required difficulty for the block
// after the passed previous block node using the fast lookup table version of
// the gravity well.
//
// The mathematics match kimotoGravityWell with two differences: the event
// horizon comes from the precomputed kgwBlockmassCurve table rather than
// calling pow, and the running average is reformulated so the 256-bit
// unsigned integer never goes negative:
//
//	sampleDiff = |sample - avg| / i
//	avg += or -= sampleDiff based on the sign of (sample - avg)
//
// The target rate bump below occurs before the exit ratio check rather than
// after, so the first interval is counted one step early.  That ordering is
// wrong, but it is how every historical block was validated, and changing it
// reproduces different targets on replay.  It must be kept.
func nextWorkRequiredKgwV2(lastNode HeaderCtx, powLimit *uint256.Uint256) uint256.Uint256 {
	var actualRateSecs uint32
	var targetRateSecs uint32
	lastBlockSolvedTime := lastNode.Timestamp()
	var rateAdjustmentRatio float64

	// If the loop can't even start, this ensures the min pow gets returned.
	var diffAvg uint256.Uint256
	diffAvg.Not()
	blockReading := lastNode

	// A minimum of .25 days worth of blocks needs to be available before the
	// gravity well can execute.
	if lastNode.Height() >= kgwMinBlocksToAvg {
		for blockMass := int32(1); blockMass <= kgwMaxBlocksToAvg &&
			blockReading != nil && blockReading.Height() > 0; blockMass++ {

			// Full 256-bit unsigned integer of the next block's compact
			// difficulty.
			nextSample, _, _ := standalone.DiffBitsToUint256(blockReading.Bits())
			if blockMass == 1 {
				// The most recent sample is the initial difficulty.
				diffAvg.Set(&nextSample)
			} else {
				// Keep the value positive, after all, we're working with
				// unsigned big integers.  The effect of the next older
				// sample diminishes as the samples age.
				sign := nextSample.Lt(&diffAvg)
				var sampleDiff uint256.Uint256
				if sign {
					sampleDiff.Set(&diffAvg).Sub(&nextSample)
				} else {
					sampleDiff.Set(&nextSample).Sub(&diffAvg)
				}
				sampleDiff.DivUint64(uint64(blockMass))
				if sign {
					diffAvg.Sub(&sampleDiff)
				} else {
					diffAvg.Add(&sampleDiff)
				}
			}

			// Keep the times positive as well, updated while walking back.
			actualRateSecs = uint32(abs64(lastBlockSolvedTime -
				blockReading.Timestamp()))

			// The bump must stay ahead of the ratio calculation and the
			// loop exit below.  See the function comment.
			targetRateSecs += targetSpacing
			rateAdjustmentRatio = float64(1)
			if actualRateSecs != 0 {
				rateAdjustmentRatio = float64(targetRateSecs) /
					float64(actualRateSecs)
			}

			eventHorizonFast := kgwBlockmassCurve[blockMass-1]
			eventHorizonSlow := 1.0 / eventHorizonFast

			// All the horizon is ever used for is to decide when to exit.
			if blockMass >= kgwMinBlocksToAvg &&
				(rateAdjustmentRatio <= eventHorizonSlow ||
					rateAdjustmentRatio >= eventHorizonFast) {

				break
			}
			if blockReading.Parent() == nil {
				break
			}
			blockReading = blockReading.Parent()
		}
	}

	var newDifficulty uint256.Uint256
	newDifficulty.Set(&diffAvg)
	if actualRateSecs != 0 && targetRateSecs != 0 {
		// Apply 1 / <adj ratio>, tying the new difficulty to how far off
		// the time target the chain is.
		newDifficulty.MulUint64(uint64(actualRateSecs))
		newDifficulty.DivUint64(uint64(targetRateSecs))
	}

	log.Debugf("Difficulty retarget, Kimoto gravity well v2.0")
	log.Debugf("  Before: %08x", lastNode.Bits())
	log.Debugf("  After : %08x %s", standalone.Uint256ToDiffBits(&newDifficulty),
		newDifficulty.String())

	if newDifficulty.Gt(powLimit) {
		log.Infof("Block at height %d, computed next work required %08x "+
			"limited and set to minimum %08x", lastNode.Height(),
			standalone.Uint256ToDiffBits(&newDifficulty),
			standalone.Uint256ToDiffBits(powLimit))
		newDifficulty.Set(powLimit)
	}
	return newDifficulty
}
