// Copyright (c) 2019-2021 The Decred developers
// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package standalone provides standalone functions useful for working with the
Anoncoin blockchain consensus rules.

The primary goal of offering these functions via a separate package is to
reduce the required dependencies to a minimum as compared to the blockchain
package which houses the full retargeting engine and requires the rest of
the chain context.

It is ideal for applications such as lightweight clients and explorers that
need to make use of the proof-of-work rules without the overhead of the chain
state.

Provided functionality:

  - Conversion between the compact "bits" encoding and 256-bit targets,
    including the negative and overflow conditions of the encoding
  - Proof-of-work checks, both the pure range-and-hash predicate and the
    chain work conversion used for best chain selection
  - The work display conversions (log2 and linear scale) used by the user
    facing difficulty reporting

Errors returned by this package are of type standalone.RuleError and fully
support the standard library errors.Is and errors.As functions.
*/
package standalone
