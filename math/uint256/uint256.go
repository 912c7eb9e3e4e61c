// Copyright (c) 2021-2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package uint256

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/bits"
)

// Uint256 implements a fixed precision unsigned 256-bit integer.  The zero
// value is a valid zero integer.  Operations that produce a result modify the
// receiver in place and return it to support chaining.
//
// All additive and multiplicative operations wrap around modulo 2^256 and
// division truncates toward zero.  Shifting a value right never produces a
// negative result because values are unsigned.
type Uint256 struct {
	// The integer is represented as 4 unsigned 64-bit words in little-endian
	// order, so n[0] is the least significant word.
	n [4]uint64
}

// Set assigns the given value to the receiver and returns it.
func (n *Uint256) Set(n2 *Uint256) *Uint256 {
	*n = *n2
	return n
}

// SetUint64 assigns the given unsigned 64-bit value to the receiver and
// returns it.
func (n *Uint256) SetUint64(n2 uint64) *Uint256 {
	n.n[0] = n2
	n.n[1] = 0
	n.n[2] = 0
	n.n[3] = 0
	return n
}

// SetBytes interprets the provided array as a 256-bit little-endian unsigned
// integer, assigns the result to the receiver, and returns it.  This matches
// the byte order block hashes are stored in.
func (n *Uint256) SetBytes(b *[32]byte) *Uint256 {
	n.n[0] = binary.LittleEndian.Uint64(b[0:8])
	n.n[1] = binary.LittleEndian.Uint64(b[8:16])
	n.n[2] = binary.LittleEndian.Uint64(b[16:24])
	n.n[3] = binary.LittleEndian.Uint64(b[24:32])
	return n
}

// SetHex parses the provided big-endian hex string, with an optional "0x"
// prefix, assigns the result to the receiver, and returns it.  Invalid
// characters terminate the parse with whatever was accumulated to that point,
// and inputs longer than 64 digits keep only the least significant 256 bits.
func (n *Uint256) SetHex(s string) *Uint256 {
	if len(s) > 1 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		s = s[2:]
	}
	n.SetUint64(0)
	for i := 0; i < len(s); i++ {
		var digit uint64
		switch c := s[i]; {
		case c >= '0' && c <= '9':
			digit = uint64(c - '0')
		case c >= 'a' && c <= 'f':
			digit = uint64(c-'a') + 10
		case c >= 'A' && c <= 'F':
			digit = uint64(c-'A') + 10
		default:
			return n
		}
		n.Lsh(4)
		n.n[0] |= digit
	}
	return n
}

// IsZero returns whether or not the value is zero.
func (n *Uint256) IsZero() bool {
	return n.n[0]|n.n[1]|n.n[2]|n.n[3] == 0
}

// Uint64 returns the least significant 64 bits of the value.
func (n *Uint256) Uint64() uint64 {
	return n.n[0]
}

// Eq returns whether or not the two values are equal.
func (n *Uint256) Eq(n2 *Uint256) bool {
	return n.n == n2.n
}

// Lt returns whether or not the value is less than the given one.
func (n *Uint256) Lt(n2 *Uint256) bool {
	return n.Cmp(n2) < 0
}

// Gt returns whether or not the value is greater than the given one.
func (n *Uint256) Gt(n2 *Uint256) bool {
	return n.Cmp(n2) > 0
}

// Cmp compares the two values and returns -1, 0, or 1 depending on whether
// the value is less than, equal to, or greater than the given one.
func (n *Uint256) Cmp(n2 *Uint256) int {
	for i := 3; i >= 0; i-- {
		if n.n[i] < n2.n[i] {
			return -1
		}
		if n.n[i] > n2.n[i] {
			return 1
		}
	}
	return 0
}

// Add adds the given value to the receiver modulo 2^256, assigns the result
// to the receiver, and returns it.
func (n *Uint256) Add(n2 *Uint256) *Uint256 {
	var c uint64
	n.n[0], c = bits.Add64(n.n[0], n2.n[0], 0)
	n.n[1], c = bits.Add64(n.n[1], n2.n[1], c)
	n.n[2], c = bits.Add64(n.n[2], n2.n[2], c)
	n.n[3], _ = bits.Add64(n.n[3], n2.n[3], c)
	return n
}

// AddUint64 adds the given unsigned 64-bit value to the receiver modulo
// 2^256, assigns the result to the receiver, and returns it.
func (n *Uint256) AddUint64(n2 uint64) *Uint256 {
	var c uint64
	n.n[0], c = bits.Add64(n.n[0], n2, 0)
	n.n[1], c = bits.Add64(n.n[1], 0, c)
	n.n[2], c = bits.Add64(n.n[2], 0, c)
	n.n[3], _ = bits.Add64(n.n[3], 0, c)
	return n
}

// Sub subtracts the given value from the receiver modulo 2^256, assigns the
// result to the receiver, and returns it.  Subtracting a larger value wraps.
func (n *Uint256) Sub(n2 *Uint256) *Uint256 {
	var b uint64
	n.n[0], b = bits.Sub64(n.n[0], n2.n[0], 0)
	n.n[1], b = bits.Sub64(n.n[1], n2.n[1], b)
	n.n[2], b = bits.Sub64(n.n[2], n2.n[2], b)
	n.n[3], _ = bits.Sub64(n.n[3], n2.n[3], b)
	return n
}

// Mul multiplies the receiver by the given value modulo 2^256, assigns the
// result to the receiver, and returns it.
func (n *Uint256) Mul(n2 *Uint256) *Uint256 {
	var r [4]uint64
	for i := 0; i < 4; i++ {
		if n2.n[i] == 0 {
			continue
		}
		var carry uint64
		for j := 0; i+j < 4; j++ {
			hi, lo := bits.Mul64(n.n[j], n2.n[i])
			lo, c := bits.Add64(lo, r[i+j], 0)
			hi += c
			lo, c = bits.Add64(lo, carry, 0)
			hi += c
			r[i+j] = lo
			carry = hi
		}
	}
	n.n = r
	return n
}

// MulUint64 multiplies the receiver by the given unsigned 64-bit value modulo
// 2^256, assigns the result to the receiver, and returns it.
func (n *Uint256) MulUint64(n2 uint64) *Uint256 {
	var carry uint64
	for i := 0; i < 4; i++ {
		hi, lo := bits.Mul64(n.n[i], n2)
		lo, c := bits.Add64(lo, carry, 0)
		n.n[i] = lo
		carry = hi + c
	}
	return n
}

// Div divides the receiver by the given value, assigns the truncated result
// to the receiver, and returns it.  The result of dividing by zero is zero.
func (n *Uint256) Div(n2 *Uint256) *Uint256 {
	if n2.IsZero() || n.Lt(n2) {
		return n.SetUint64(0)
	}

	// Shift-subtract long division against a copy of the divisor aligned to
	// the most significant bit of the dividend.
	var quo, den Uint256
	den.Set(n2)
	shift := n.BitLen() - n2.BitLen()
	den.Lsh(uint32(shift))
	for shift >= 0 {
		if n.Cmp(&den) >= 0 {
			n.Sub(&den)
			quo.n[shift>>6] |= 1 << (uint(shift) & 63)
		}
		den.Rsh(1)
		shift--
	}
	return n.Set(&quo)
}

// DivUint64 divides the receiver by the given unsigned 64-bit value, assigns
// the truncated result to the receiver, and returns it.  The result of
// dividing by zero is zero.
func (n *Uint256) DivUint64(n2 uint64) *Uint256 {
	if n2 == 0 {
		return n.SetUint64(0)
	}
	var r uint64
	for i := 3; i >= 0; i-- {
		n.n[i], r = bits.Div64(r, n.n[i], n2)
	}
	return n
}

// Not computes the bitwise complement of the value, assigns the result to the
// receiver, and returns it.
func (n *Uint256) Not() *Uint256 {
	n.n[0] = ^n.n[0]
	n.n[1] = ^n.n[1]
	n.n[2] = ^n.n[2]
	n.n[3] = ^n.n[3]
	return n
}

// Lsh shifts the value left by the given number of bits, assigns the result
// to the receiver, and returns it.  Bits shifted beyond 256 are discarded.
func (n *Uint256) Lsh(b uint32) *Uint256 {
	if b >= 256 {
		return n.SetUint64(0)
	}
	words := b >> 6
	rem := b & 63
	var r [4]uint64
	for i := 3; i >= int(words); i-- {
		r[i] = n.n[i-int(words)] << rem
		if rem != 0 && i > int(words) {
			r[i] |= n.n[i-int(words)-1] >> (64 - rem)
		}
	}
	n.n = r
	return n
}

// Rsh shifts the value right by the given number of bits, assigns the result
// to the receiver, and returns it.
func (n *Uint256) Rsh(b uint32) *Uint256 {
	if b >= 256 {
		return n.SetUint64(0)
	}
	words := b >> 6
	rem := b & 63
	var r [4]uint64
	for i := 0; i < 4-int(words); i++ {
		r[i] = n.n[i+int(words)] >> rem
		if rem != 0 && i+int(words) < 3 {
			r[i] |= n.n[i+int(words)+1] << (64 - rem)
		}
	}
	n.n = r
	return n
}

// BitLen returns the minimum number of bits required to represent the value.
// The result is 0 when the value is 0.
func (n *Uint256) BitLen() int {
	for i := 3; i >= 0; i-- {
		if n.n[i] != 0 {
			return 64*i + bits.Len64(n.n[i])
		}
	}
	return 0
}

// Float64 returns the nearest float64 representation of the value.  Values
// with more than 53 significant bits necessarily lose precision.
func (n *Uint256) Float64() float64 {
	var f float64
	for i := 3; i >= 0; i-- {
		f += math.Ldexp(float64(n.n[i]), 64*i)
	}
	return f
}

// String returns the value as a fixed-width 64 character big-endian hex
// string.
func (n *Uint256) String() string {
	return fmt.Sprintf("%016x%016x%016x%016x", n.n[3], n.n[2], n.n[1], n.n[0])
}
