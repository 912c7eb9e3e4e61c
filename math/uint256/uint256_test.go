// Copyright (c) 2021-2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package uint256

import (
	"math"
	"testing"
)

// hexToUint256 converts the passed big-endian hex string into a Uint256.  It
// does not report errors: an invalid character ends the parse with whatever
// was accumulated to that point.  It is only intended for use with
// hard-coded, and therefore known good, hex strings.
func hexToUint256(s string) *Uint256 {
	return new(Uint256).SetHex(s)
}

// TestUint256SetHexString ensures parsing hex strings and producing them
// round trips.
func TestUint256SetHexString(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{{
		name: "zero",
		in:   "0",
		want: "0000000000000000000000000000000000000000000000000000000000000000",
	}, {
		name: "one",
		in:   "1",
		want: "0000000000000000000000000000000000000000000000000000000000000001",
	}, {
		name: "0x prefix",
		in:   "0xdeadbeef",
		want: "00000000000000000000000000000000000000000000000000000000deadbeef",
	}, {
		name: "multi word",
		in:   "ffff0000000000000000000000000000000000000000000001",
		want: "ffff0000000000000000000000000000000000000000000001",
	}, {
		name: "max value",
		in:   "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		want: "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	}}

	for _, test := range tests {
		var n Uint256
		n.SetHex(test.in)
		// Normalize the expected string to 64 characters.
		want := test.want
		for len(want) < 64 {
			want = "0" + want
		}
		if got := n.String(); got != want {
			t.Errorf("%s: unexpected result -- got %s, want %s", test.name,
				got, want)
		}
	}
}

// TestUint256AddSub ensures addition and subtraction work as expected,
// including wrapping around modulo 2^256.
func TestUint256AddSub(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		sum  string
		diff string
	}{{
		name: "small values",
		a:    "5",
		b:    "3",
		sum:  "8",
		diff: "2",
	}, {
		name: "carry across words",
		a:    "ffffffffffffffff",
		b:    "1",
		sum:  "10000000000000000",
		diff: "fffffffffffffffe",
	}, {
		name: "add wraps around",
		a:    "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		b:    "2",
		sum:  "1",
		diff: "fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffd",
	}, {
		name: "sub wraps around",
		a:    "0",
		b:    "1",
		sum:  "1",
		diff: "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	}}

	for _, test := range tests {
		a := hexToUint256(test.a)
		b := hexToUint256(test.b)
		sum := new(Uint256).Set(a).Add(b)
		if !sum.Eq(hexToUint256(test.sum)) {
			t.Errorf("%s: unexpected sum -- got %s, want %s", test.name, sum,
				test.sum)
		}
		diff := new(Uint256).Set(a).Sub(b)
		if !diff.Eq(hexToUint256(test.diff)) {
			t.Errorf("%s: unexpected difference -- got %s, want %s",
				test.name, diff, test.diff)
		}
	}
}

// TestUint256MulDiv ensures multiplication and division work as expected.
func TestUint256MulDiv(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		mul  string
		div  string
	}{{
		name: "identity",
		a:    "deadbeefcafe",
		b:    "1",
		mul:  "deadbeefcafe",
		div:  "deadbeefcafe",
	}, {
		name: "small values",
		a:    "1000",
		b:    "10",
		mul:  "10000",
		div:  "100",
	}, {
		name: "cross word boundary",
		a:    "ffffffffffffffff",
		b:    "ffffffffffffffff",
		mul:  "fffffffffffffffe0000000000000001",
		div:  "1",
	}, {
		name: "truncated division",
		a:    "7",
		b:    "2",
		mul:  "e",
		div:  "3",
	}, {
		name: "divisor larger than dividend",
		a:    "7",
		b:    "8",
		mul:  "38",
		div:  "0",
	}, {
		name: "mul wraps around",
		a:    "ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
		b:    "2",
		mul:  "fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffe",
		div:  "7fffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff",
	}}

	for _, test := range tests {
		a := hexToUint256(test.a)
		b := hexToUint256(test.b)
		mul := new(Uint256).Set(a).Mul(b)
		if !mul.Eq(hexToUint256(test.mul)) {
			t.Errorf("%s: unexpected product -- got %s, want %s", test.name,
				mul, test.mul)
		}
		div := new(Uint256).Set(a).Div(b)
		if !div.Eq(hexToUint256(test.div)) {
			t.Errorf("%s: unexpected quotient -- got %s, want %s", test.name,
				div, test.div)
		}
	}
}

// TestUint256DivByZero ensures dividing by zero produces zero rather than
// crashing.
func TestUint256DivByZero(t *testing.T) {
	var zero Uint256
	n := hexToUint256("cafe")
	if got := new(Uint256).Set(n).Div(&zero); !got.IsZero() {
		t.Errorf("unexpected quotient for division by zero -- got %s", got)
	}
	if got := new(Uint256).Set(n).DivUint64(0); !got.IsZero() {
		t.Errorf("unexpected uint64 quotient for division by zero -- got %s",
			got)
	}
}

// TestUint256Uint64Ops ensures the uint64 variants of the arithmetic match
// their full-width counterparts.
func TestUint256Uint64Ops(t *testing.T) {
	a := hexToUint256("123456789abcdef0123456789abcdef0")
	for _, v := range []uint64{1, 3, 180, 86184, 1 << 40} {
		want := new(Uint256).Set(a).Mul(new(Uint256).SetUint64(v))
		got := new(Uint256).Set(a).MulUint64(v)
		if !got.Eq(want) {
			t.Errorf("MulUint64(%d): got %s, want %s", v, got, want)
		}

		want = new(Uint256).Set(a).Div(new(Uint256).SetUint64(v))
		got = new(Uint256).Set(a).DivUint64(v)
		if !got.Eq(want) {
			t.Errorf("DivUint64(%d): got %s, want %s", v, got, want)
		}

		want = new(Uint256).Set(a).Add(new(Uint256).SetUint64(v))
		got = new(Uint256).Set(a).AddUint64(v)
		if !got.Eq(want) {
			t.Errorf("AddUint64(%d): got %s, want %s", v, got, want)
		}
	}
}

// TestUint256Shifts ensures the bitwise shifts behave across word
// boundaries and for out of range shift amounts.
func TestUint256Shifts(t *testing.T) {
	tests := []struct {
		name  string
		in    string
		shift uint32
		lsh   string
		rsh   string
	}{{
		name:  "by zero",
		in:    "deadbeef",
		shift: 0,
		lsh:   "deadbeef",
		rsh:   "deadbeef",
	}, {
		name:  "within word",
		in:    "deadbeef",
		shift: 4,
		lsh:   "deadbeef0",
		rsh:   "deadbee",
	}, {
		name:  "across words",
		in:    "deadbeef",
		shift: 68,
		lsh:   "deadbeef00000000000000000",
		rsh:   "0",
	}, {
		name:  "multiple of word size",
		in:    "deadbeef",
		shift: 128,
		lsh:   "deadbeef00000000000000000000000000000000",
		rsh:   "0",
	}, {
		name:  "entire width",
		in:    "deadbeef",
		shift: 256,
		lsh:   "0",
		rsh:   "0",
	}}

	for _, test := range tests {
		in := hexToUint256(test.in)
		if got := new(Uint256).Set(in).Lsh(test.shift); !got.Eq(hexToUint256(test.lsh)) {
			t.Errorf("%s: unexpected Lsh result -- got %s, want %s",
				test.name, got, test.lsh)
		}
		if got := new(Uint256).Set(in).Rsh(test.shift); !got.Eq(hexToUint256(test.rsh)) {
			t.Errorf("%s: unexpected Rsh result -- got %s, want %s",
				test.name, got, test.rsh)
		}
	}
}

// TestUint256BitLen ensures the reported bit lengths are accurate.
func TestUint256BitLen(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"0", 0},
		{"1", 1},
		{"ff", 8},
		{"100", 9},
		{"ffffffffffffffff", 64},
		{"10000000000000000", 65},
		{"ffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffffff", 256},
	}

	for _, test := range tests {
		if got := hexToUint256(test.in).BitLen(); got != test.want {
			t.Errorf("BitLen(%s): got %d, want %d", test.in, got, test.want)
		}
	}
}

// TestUint256Not ensures the bitwise complement works, including the
// identity used to construct the proof of work limit.
func TestUint256Not(t *testing.T) {
	got := new(Uint256).Not()
	want := hexToUint256("ffffffffffffffffffffffffffffffffffffffffffffffff" +
		"ffffffffffffffff")
	if !got.Eq(want) {
		t.Fatalf("unexpected complement of zero -- got %s", got)
	}
	if !got.Not().IsZero() {
		t.Fatal("double complement did not restore zero")
	}

	// ~0 >> 20 is the proof of work limit, 2^236 - 1.
	limit := new(Uint256).Not().Rsh(20)
	if got := limit.BitLen(); got != 236 {
		t.Fatalf("unexpected pow limit bit length -- got %d, want 236", got)
	}
}

// TestUint256Float64 ensures the lossy float conversion is sane.
func TestUint256Float64(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"0", 0},
		{"1", 1},
		{"b00b5", 721077},
		{"10000000000000000", 18446744073709551616.0},          // 2^64
		{"100000000000000000000000000000000", math.Ldexp(1, 128)}, // 2^128
	}

	for _, test := range tests {
		if got := hexToUint256(test.in).Float64(); got != test.want {
			t.Errorf("Float64(%s): got %v, want %v", test.in, got, test.want)
		}
	}
}

// TestUint256Cmp ensures the comparison operators agree with each other.
func TestUint256Cmp(t *testing.T) {
	small := hexToUint256("5")
	big := hexToUint256("50000000000000000000000000")
	if !small.Lt(big) || small.Gt(big) || small.Cmp(big) != -1 {
		t.Error("small value did not compare below big value")
	}
	if !big.Gt(small) || big.Lt(small) || big.Cmp(small) != 1 {
		t.Error("big value did not compare above small value")
	}
	other := new(Uint256).Set(small)
	if !small.Eq(other) || small.Cmp(other) != 0 {
		t.Error("equal values did not compare equal")
	}
}
