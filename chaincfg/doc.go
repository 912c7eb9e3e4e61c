// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines chain configuration parameters.
//
// In addition to the main Anoncoin network, which is intended for the
// transfer of monetary value, there also exists the following standard
// networks:
//
//   - testnet (the 3rd test network)
//   - simnet
//
// These networks are incompatible with each other (each sharing the same
// magic value or genesis block with another network would weaken security)
// and the test networks intentionally deal with coins that have no monetary
// value.
//
// The test networks are useful for testing changes to consensus rules, such
// as the difficulty retargeting parameters, without the expense of real
// hash power and without impacting the main network.
//
// Each network's parameters are built by its constructor function
// (MainNetParams, TestNetParams and SimNetParams), which returns a new *Params.
// A main package may keep the result of one of them as the application's
// "active" network.
package chaincfg
