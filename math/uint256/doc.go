// Copyright (c) 2021-2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package uint256 implements highly optimized fixed precision unsigned 256-bit
integer arithmetic.

The operations are tailored to the needs of the consensus code: all additive
and multiplicative operations wrap around modulo 2^256 and division truncates,
matching the semantics the historical chain was mined against.  Values are
always interpreted as unsigned.
*/
package uint256
