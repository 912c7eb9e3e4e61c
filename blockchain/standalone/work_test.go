// Copyright (c) 2019-2021 The Decred developers
// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package standalone

import (
	"math"
	"testing"

	"github.com/anoncoin/anond/math/uint256"
)

// TestWorkProof ensures converting targets to work proofs produces the
// expected values.
func TestWorkProof(t *testing.T) {
	tests := []struct {
		name   string
		target string
		want   string
	}{{
		name:   "zero target",
		target: "0",
		want:   "0",
	}, {
		name:   "max target",
		target: "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		want:   "1",
	}, {
		// (2^255 - 1) / (2^255 + 1) = 0, plus the formula's trailing +1.
		name:   "half range",
		target: "8000000000000000000000000000000000000000000000000000000000000000",
		want:   "1",
	}, {
		name:   "one",
		target: "1",
		want:   "8000000000000000000000000000000000000000000000000000000000000000",
	}}

	for _, test := range tests {
		target := hexToUint256(test.target)
		got := WorkProof(target)
		if !got.Eq(hexToUint256(test.want)) {
			t.Errorf("%s: unexpected work proof -- got %s, want %s",
				test.name, got.String(), test.want)
		}
	}
}

// TestCalcWork ensures work values derived from compact bits behave: invalid
// encodings produce zero and harder targets produce strictly more work.
func TestCalcWork(t *testing.T) {
	if got := CalcWork(0x04923456); !got.IsZero() {
		t.Errorf("negative bits: unexpected work -- got %s", got.String())
	}
	if got := CalcWork(0xff123456); !got.IsZero() {
		t.Errorf("overflowed bits: unexpected work -- got %s", got.String())
	}

	easier := CalcWork(0x1e0fffff)
	harder := CalcWork(0x1b0dd86a)
	if !harder.Gt(&easier) {
		t.Errorf("harder target did not produce more work -- %s <= %s",
			harder.String(), easier.String())
	}
}

// TestLog2Work ensures the logarithm scale display conversion is sane for a
// few known values.
func TestLog2Work(t *testing.T) {
	// The work proof of the pow limit is 2^20, so the log2 is exactly 20.
	powLimit := mockPowLimit()
	if got := Log2Work(powLimit); math.Abs(got-20.0) > 1e-9 {
		t.Errorf("pow limit: unexpected log2 work -- got %v, want 20", got)
	}

	// A target of 1 has a work proof of 2^255.
	one := hexToUint256("1")
	if got := Log2Work(one); math.Abs(got-255.0) > 1e-9 {
		t.Errorf("target one: unexpected log2 work -- got %v, want 255", got)
	}

	if got := Log2Work(hexToUint256("0")); got != 0.0 {
		t.Errorf("zero target: unexpected log2 work -- got %v, want 0", got)
	}
}

// TestLinearWork ensures the linear scale display conversion reports the
// difficulty relative to the minimum with three digits of precision.
func TestLinearWork(t *testing.T) {
	powLimit := mockPowLimit()

	// The minimum difficulty is exactly 1.
	if got := LinearWork(powLimit, powLimit); got != 1.0 {
		t.Errorf("pow limit: unexpected linear work -- got %v, want 1", got)
	}

	// A target at a quarter of the limit is 4x the minimum.
	quarter := new(uint256.Uint256).Set(powLimit).Rsh(2)
	if got := LinearWork(quarter, powLimit); got < 4.0 || got > 4.001 {
		t.Errorf("quarter limit: unexpected linear work -- got %v, want ~4",
			got)
	}

	if got := LinearWork(hexToUint256("0"), powLimit); got != 0.0 {
		t.Errorf("zero target: unexpected linear work -- got %v, want 0", got)
	}
}
