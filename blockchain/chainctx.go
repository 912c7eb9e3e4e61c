// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sort"

	"github.com/decred/dcrd/chaincfg/chainhash"

	"github.com/anoncoin/anond/math/uint256"
)

// HeaderCtx is an interface that abstracts the block header chain context the
// difficulty retargeting algorithms require.  The block index is externally
// owned; the retarget engine never mutates nodes and never retains them
// beyond the memoized integrator charge point.
//
// Headers form a tree via the parent links and the main chain is a walk of
// it, so the links are never cyclic.
type HeaderCtx interface {
	// Height returns the height of the header in the chain.
	Height() int32

	// Timestamp returns the time the block was mined as a Unix timestamp.
	Timestamp() int64

	// Bits returns the compact form difficulty target of the block.
	Bits() uint32

	// ChainWork returns the total accumulated work proof from the genesis
	// block up to and including this block.
	ChainWork() uint256.Uint256

	// PowHash returns the proof-of-work hash of the block.
	PowHash() chainhash.Hash

	// Parent returns the header's parent, or nil for the genesis block.
	Parent() HeaderCtx
}

// relativeAncestor returns the ancestor of the passed node the given number
// of parent links back, or nil when the chain does not extend that far.
func relativeAncestor(node HeaderCtx, distance int64) HeaderCtx {
	for i := int64(0); node != nil && i < distance; i++ {
		node = node.Parent()
	}
	return node
}

// medianTimeBlocks is the number of previous blocks which should be used to
// calculate the median time used to validate block timestamps.
const medianTimeBlocks = 11

// calcPastMedianTime calculates the median time of the previous few blocks
// prior to, and including, the passed node.
func calcPastMedianTime(node HeaderCtx) int64 {
	// Create a slice of the previous few block timestamps used to calculate
	// the median per the number defined by the constant medianTimeBlocks.
	timestamps := make([]int64, 0, medianTimeBlocks)
	for i := 0; i < medianTimeBlocks && node != nil; i++ {
		timestamps = append(timestamps, node.Timestamp())
		node = node.Parent()
	}
	sort.Slice(timestamps, func(i, j int) bool {
		return timestamps[i] < timestamps[j]
	})

	// Fewer than medianTimeBlocks timestamps are only collected near the
	// start of the chain, in which case the median of what is available is
	// used, the same as the incorporated Bitcoin rules.
	return timestamps[len(timestamps)/2]
}
