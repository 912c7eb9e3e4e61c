// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"encoding/binary"

	"github.com/decred/dcrd/chaincfg/chainhash"

	"github.com/anoncoin/anond/blockchain/standalone"
	"github.com/anoncoin/anond/math/uint256"
)

// testNode is a block index node used to exercise the retarget algorithms
// against synthetic chains.  It satisfies the HeaderCtx interface.
type testNode struct {
	parent    *testNode
	height    int32
	timestamp int64
	bits      uint32
	chainWork uint256.Uint256
}

func (n *testNode) Height() int32              { return n.height }
func (n *testNode) Timestamp() int64           { return n.timestamp }
func (n *testNode) Bits() uint32               { return n.bits }
func (n *testNode) ChainWork() uint256.Uint256 { return n.chainWork }

func (n *testNode) Parent() HeaderCtx {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// PowHash returns a synthetic hash derived from the node height, which is
// sufficient since the retarget engine only needs per-node uniqueness.
func (n *testNode) PowHash() chainhash.Hash {
	var hash chainhash.Hash
	binary.LittleEndian.PutUint32(hash[:4], uint32(n.height))
	return hash
}

// appendTestBlock extends the chain ending at tip with a block carrying the
// given bits and timestamp, accumulating chain work along the way.
func appendTestBlock(tip *testNode, bits uint32, timestamp int64) *testNode {
	node := &testNode{
		parent:    tip,
		height:    tip.height + 1,
		timestamp: timestamp,
		bits:      bits,
	}
	work := standalone.CalcWork(bits)
	node.chainWork.Set(&tip.chainWork).Add(&work)
	return node
}

// newTestChain creates a chain of count+1 nodes with uniformly spaced
// timestamps and uniform bits ending at tipHeight.  The oldest node acts as
// the genesis for walk purposes even when its height is nonzero.
func newTestChain(tipHeight, count int32, spacing int64, bits uint32) *testNode {
	const baseTime = int64(1400000000)
	tip := &testNode{
		height:    tipHeight - count,
		timestamp: baseTime,
		bits:      bits,
	}
	for tip.height < tipHeight {
		tip = appendTestBlock(tip, bits, tip.timestamp+spacing)
	}
	return tip
}

// newTestChainTimes creates a chain whose blocks carry exactly the provided
// timestamps and uniform bits, ending at tipHeight.
func newTestChainTimes(tipHeight int32, times []int64, bits uint32) *testNode {
	tip := &testNode{
		height:    tipHeight - int32(len(times)) + 1,
		timestamp: times[0],
		bits:      bits,
	}
	for _, timestamp := range times[1:] {
		tip = appendTestBlock(tip, bits, timestamp)
	}
	return tip
}
