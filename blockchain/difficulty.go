// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"math"

	"github.com/anoncoin/anond/blockchain/standalone"
	"github.com/anoncoin/anond/math/uint256"
)

const (
	// targetSpacing defines the Anoncoin block rate production in seconds.
	// The difficulty calculations and proof of work functions all use this
	// as the goal, and have since the gravity well era.  The PID parameter
	// gains are tuned for exactly this spacing value, so it serves no
	// purpose to make it a variable.
	targetSpacing = 180

	// secondsPerDay is the number of seconds in one day.
	secondsPerDay = 60 * 60 * 24

	// Difficulty protocols have changed over the years.  At specific points
	// in Anoncoin's history the following switch heights are those blocks
	// where an event occurred which required changing the way the required
	// work is calculated, aka a hard fork.
	difficultySwitchHeight  = 15420  // Protocol 1 happened here
	difficultySwitchHeight2 = 77777  // Protocol 2 starts at this block
	difficultySwitchHeight3 = 87777  // Protocol 3 began the KGW era
	difficultySwitchHeight4 = 555555 // End of the KGW era

	// aip09SwitchBits is the literal difficulty carried by the exact block
	// that activates AIP09.
	aip09SwitchBits = 0x1e0ffff0
)

// roundToInt64 rounds the provided value to the nearest whole second, away
// from zero on ties.
func roundToInt64(d float64) int64 {
	if d > 0 {
		return int64(math.Floor(d + 0.5))
	}
	return int64(math.Ceil(d - 0.5))
}

// originalNextWorkRequired calculates the required difficulty for the block
// after the passed previous block node using the original Anoncoin algorithm
// from the early months, when blocks were very new.
//
// The algorithm has two embedded mode switches.  Protocol 1 widened the
// averaging window by a factor of four and protocol 2 shrank the timespan to
// 2050 seconds with a retarget on every block.
func originalNextWorkRequired(lastNode HeaderCtx, powLimit *uint256.Uint256) uint256.Uint256 {
	// These legacy values define the original Anoncoin block rate production
	// and are used in this difficulty calculation only.
	const (
		// Originally 3.42 minutes * 60 secs was the spacing target.
		legacyTargetSpacing = 205

		// ~23.94hrs in seconds, from a 420 blocks * 205.2 seconds/block
		// calculation.
		legacyTargetTimespan = 86184

		// For when another adjustment in the timespan was made.
		newTargetTimespan = 2050
	)

	nextHeight := lastNode.Height() + 1
	newProtocol := nextHeight >= difficultySwitchHeight
	newProtocol2 := false
	timespan := int64(legacyTargetTimespan)
	if nextHeight >= difficultySwitchHeight2 {
		// Jump back to sqrt(2) as the factor of adjustment.
		newProtocol2 = true
		newProtocol = false
	}
	if newProtocol {
		timespan *= 4
	}
	if newProtocol2 {
		timespan = newTargetTimespan
	}
	interval := timespan / legacyTargetSpacing

	// Only change once per interval, or at the protocol switch height.
	prevTarget, _, _ := standalone.DiffBitsToUint256(lastNode.Bits())
	if int64(nextHeight)%interval != 0 && !newProtocol2 &&
		nextHeight != difficultySwitchHeight {

		return prevTarget
	}

	// This fixes an issue where a 51% attack can change difficulty at will.
	// Go back the full period unless it's the first retarget after genesis.
	// Code courtesy of Art Forz.
	blocksToGoBack := interval - 1
	if int64(nextHeight) != interval {
		blocksToGoBack = interval
	}
	if newProtocol2 {
		blocksToGoBack = newTargetTimespan / legacyTargetSpacing
	}
	firstNode := relativeAncestor(lastNode, blocksToGoBack)
	if firstNode == nil {
		// Not enough history to retarget against.
		return *new(uint256.Uint256).Set(powLimit)
	}

	// Limit the adjustment step.  The lower clamp for the protocol 1 era
	// divides the minimum by an extra four, giving that era an asymmetric
	// window.  The asymmetry shipped and the chain was mined against it.
	setpoint := lastNode.Timestamp() - firstNode.Timestamp()
	timespanMax := (timespan * 99) / 70
	timespanMin := (timespan * 70) / 99
	if newProtocol {
		timespanMax = timespan * 4
		timespanMin = timespan / 4
	}
	switch {
	case nextHeight >= difficultySwitchHeight2:
		if setpoint < timespanMin {
			setpoint = timespanMin
		}
		if setpoint > timespanMax {
			setpoint = timespanMax
		}
	case nextHeight > difficultySwitchHeight:
		if setpoint < timespanMin/4 {
			setpoint = timespanMin / 4
		}
		if setpoint > timespanMax {
			setpoint = timespanMax
		}
	default:
		if setpoint < timespanMin {
			setpoint = timespanMin
		}
		if setpoint > timespanMax {
			setpoint = timespanMax
		}
	}

	// Retarget.
	var newTarget uint256.Uint256
	newTarget.Set(&prevTarget)
	newTarget.MulUint64(uint64(setpoint))
	if newProtocol2 {
		newTarget.DivUint64(uint64(timespan))
	} else {
		newTarget.DivUint64(legacyTargetTimespan)
	}

	log.Debugf("Difficulty retarget, pre gravity well era")
	log.Debugf("  TargetTimespan = %d    ActualTimespan = %d", timespan,
		setpoint)
	log.Debugf("  Before: %08x", lastNode.Bits())
	log.Debugf("  After : %08x  %s", standalone.Uint256ToDiffBits(&newTarget),
		newTarget.String())

	if newTarget.Gt(powLimit) {
		log.Infof("Block at height %d, computed next work required %08x "+
			"limited and set to minimum %08x", nextHeight,
			standalone.Uint256ToDiffBits(&newTarget),
			standalone.Uint256ToDiffBits(powLimit))
		newTarget.Set(powLimit)
	}
	return newTarget
}
