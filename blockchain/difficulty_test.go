// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"testing"

	"github.com/anoncoin/anond/blockchain/standalone"
	"github.com/anoncoin/anond/chaincfg"
)

// TestOriginalRetargetOffInterval ensures blocks that do not land on a
// retarget interval keep the previous difficulty in the pre-protocol-2 eras.
func TestOriginalRetargetOffInterval(t *testing.T) {
	params := chaincfg.MainNetParams()
	const bits = uint32(0x1d00ffff)

	// The original interval is 86184/205 = 420 blocks, so a tip at height
	// 100 (next height 101) is off-interval.
	tip := newTestChain(100, 50, 205, bits)
	got := originalNextWorkRequired(tip, params.PowLimit)
	if gotBits := standalone.Uint256ToDiffBits(&got); gotBits != bits {
		t.Fatalf("off-interval retarget changed bits -- got %08x, want %08x",
			gotBits, bits)
	}
}

// TestOriginalRetargetFirstInterval ensures the first retarget after genesis
// observes one block fewer, per the 51% exploit guard, and scales by the
// observed timespan.
func TestOriginalRetargetFirstInterval(t *testing.T) {
	params := chaincfg.MainNetParams()
	const bits = uint32(0x1d00ffff)

	// Next height 420 is the first retarget, which looks back 419 blocks.
	// With uniform 205 second spacing the observed timespan is 419*205 =
	// 85895 seconds, within the clamp window [60938, 121888].
	tip := newTestChain(419, 419, 205, bits)
	got := originalNextWorkRequired(tip, params.PowLimit)

	want, _, _ := standalone.DiffBitsToUint256(bits)
	want.MulUint64(419 * 205)
	want.DivUint64(86184)
	if !got.Eq(&want) {
		t.Fatalf("unexpected first retarget -- got %s, want %s",
			got.String(), want.String())
	}
}

// TestOriginalRetargetProtocol1 ensures the retarget at the first difficulty
// switch height leaves the target unchanged when the observed timespan
// clamps to the window minimum, which also equals the divisor of that era.
func TestOriginalRetargetProtocol1(t *testing.T) {
	params := chaincfg.MainNetParams()
	const bits = uint32(0x1c1fffff)

	// The protocol 1 interval is 86184*4/205 = 1681 blocks.  Uniform 51
	// second spacing observes 1681*51 = 85731 seconds, which clamps up to
	// the era minimum of 344736/4 = 86184, exactly the divisor.
	tip := newTestChain(int32(difficultySwitchHeight-1), 1700, 51, bits)
	got := originalNextWorkRequired(tip, params.PowLimit)
	if gotBits := standalone.Uint256ToDiffBits(&got); gotBits != bits {
		t.Fatalf("retarget at switch height changed bits -- got %08x, "+
			"want %08x", gotBits, bits)
	}
}

// TestOriginalRetargetProtocol2 ensures the protocol 2 era retargets on
// every block over a 10 block lookback and returns the target unchanged when
// the chain runs exactly on the 2050 second timespan.
func TestOriginalRetargetProtocol2(t *testing.T) {
	params := chaincfg.MainNetParams()
	const bits = uint32(0x1c0fffff)

	// 10 blocks at exactly 205 seconds apiece covers the full 2050 second
	// timespan.
	tip := newTestChain(int32(difficultySwitchHeight2+100), 30, 205, bits)
	got := originalNextWorkRequired(tip, params.PowLimit)
	if gotBits := standalone.Uint256ToDiffBits(&got); gotBits != bits {
		t.Fatalf("on-target protocol 2 retarget changed bits -- got %08x, "+
			"want %08x", gotBits, bits)
	}

	// Doubling the spacing doubles the target (easier), subject to the
	// clamp window [1449, 2899]: 4100 clamps to 2899.
	tip = newTestChain(int32(difficultySwitchHeight2+100), 30, 410, bits)
	got = originalNextWorkRequired(tip, params.PowLimit)
	want, _, _ := standalone.DiffBitsToUint256(bits)
	want.MulUint64(2899)
	want.DivUint64(2050)
	if !got.Eq(&want) {
		t.Fatalf("slow protocol 2 retarget -- got %s, want %s", got.String(),
			want.String())
	}
}

// TestNextWorkRequiredDispatch ensures the public entry point selects the
// correct algorithm by height.
func TestNextWorkRequiredDispatch(t *testing.T) {
	t.Run("nil tip returns the pow limit", func(t *testing.T) {
		r := New(chaincfg.MainNetParams(), nil)
		if got := r.NextWorkRequired(nil, 0); got != r.params.PowLimitBits {
			t.Fatalf("got %08x, want %08x", got, r.params.PowLimitBits)
		}
	})

	t.Run("no retargeting keeps the tip bits", func(t *testing.T) {
		r := New(chaincfg.SimNetParams(), nil)
		tip := newTestChain(500, 50, 180, 0x1d00ffff)
		if got := r.NextWorkRequired(tip, tip.timestamp+180); got != 0x1d00ffff {
			t.Fatalf("got %08x, want %08x", got, 0x1d00ffff)
		}
	})

	t.Run("AIP09 switch height returns the literal", func(t *testing.T) {
		params := chaincfg.TestNetParams()
		r := New(params, nil)
		tip := newTestChain(params.AIP09Height-1, 50, 180, 0x1c0fffff)
		if got := r.NextWorkRequired(tip, tip.timestamp+180); got != aip09SwitchBits {
			t.Fatalf("got %08x, want %08x", got, uint32(aip09SwitchBits))
		}
	})

	t.Run("beyond AIP09 uses the classic gravity well", func(t *testing.T) {
		params := chaincfg.TestNetParams()
		r := New(params, nil)

		// 151 uniformly spaced blocks: the well walks all of them and exits
		// at the oldest, leaving an actual rate of 150 intervals against a
		// target rate of 151.
		const bits = uint32(0x1c0fffff)
		tip := newTestChain(params.AIP09Height+10, 150, 180, bits)
		got := r.NextWorkRequired(tip, tip.timestamp+180)

		want, _, _ := standalone.DiffBitsToUint256(bits)
		want.MulUint64(180 * 150)
		want.DivUint64(180 * 151)
		if wantBits := standalone.Uint256ToDiffBits(&want); got != wantBits {
			t.Fatalf("got %08x, want %08x", got, wantBits)
		}
	})
}

// TestNextWorkRequiredDeterminism ensures concurrent queries with identical
// inputs produce byte-identical outputs.
func TestNextWorkRequiredDeterminism(t *testing.T) {
	params := chaincfg.TestNetParams()
	r := New(params, nil)
	tip := newTestChain(50000, 1200, 180, 0x1c0fffff)
	headerTime := tip.timestamp + 180

	want := r.NextWorkRequired(tip, headerTime)
	const workers = 8
	results := make(chan uint32, workers)
	for i := 0; i < workers; i++ {
		go func() {
			results <- r.NextWorkRequired(tip, headerTime)
		}()
	}
	for i := 0; i < workers; i++ {
		if got := <-results; got != want {
			t.Fatalf("concurrent result diverged -- got %08x, want %08x",
				got, want)
		}
	}
}

// TestMonotoneClamp ensures every algorithm clamps its result to the proof
// of work limit.
func TestMonotoneClamp(t *testing.T) {
	params := chaincfg.MainNetParams()
	powLimit := params.PowLimit

	// A legacy era chain already at the limit with very slow blocks wants
	// an easier target but may not exceed the limit.
	tip := newTestChain(419, 419, 100000, params.PowLimitBits)
	got := originalNextWorkRequired(tip, powLimit)
	if got.Gt(powLimit) {
		t.Fatalf("legacy retarget exceeded the pow limit: %s", got.String())
	}

	// Same for the v2 gravity well.
	tip = newTestChain(90000, 4000, 100000, params.PowLimitBits)
	gotV2 := nextWorkRequiredKgwV2(tip, powLimit)
	if gotV2.Gt(powLimit) {
		t.Fatalf("gravity well exceeded the pow limit: %s", gotV2.String())
	}

	// And the classic well, which returns compact form directly.
	bits := kimotoGravityWell(tip, targetSpacing, kgwMinBlocksToAvg,
		kgwMaxBlocksToAvg, powLimit)
	target, neg, over := standalone.DiffBitsToUint256(bits)
	if neg || over || target.Gt(powLimit) {
		t.Fatalf("classic gravity well result out of range: %08x", bits)
	}
}

// TestRelativeAncestor ensures chain walks stop cleanly at the end of the
// known index.
func TestRelativeAncestor(t *testing.T) {
	tip := newTestChain(100, 10, 180, 0x1d00ffff)
	if got := relativeAncestor(tip, 5); got.Height() != 95 {
		t.Fatalf("got height %d, want 95", got.Height())
	}
	if got := relativeAncestor(tip, 10); got.Height() != 90 {
		t.Fatalf("got height %d, want 90", got.Height())
	}
	if got := relativeAncestor(tip, 11); got != nil {
		t.Fatalf("expected nil beyond the known index, got height %d",
			got.Height())
	}
}

// TestCalcPastMedianTime ensures the median of the last 11 block times is
// selected.
func TestCalcPastMedianTime(t *testing.T) {
	times := []int64{1000, 1100, 1500, 1300, 1200, 1600, 1400, 1700, 2000,
		1900, 1800}
	tip := newTestChainTimes(200, times, 0x1d00ffff)
	// Sorted, the median of the 11 times is 1500.
	if got := calcPastMedianTime(tip); got != 1500 {
		t.Fatalf("got median %d, want 1500", got)
	}
}
