// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import "time"

// TestNetParams returns the network parameters for the test currency network.
// This network is sometimes simply called "testnet".
func TestNetParams() *Params {
	// testNetPowLimit is the highest proof of work value an Anoncoin block
	// can have for the test network.  It is the value 2^236 - 1.
	testNetPowLimit := mustPowLimit()

	return &Params{
		Name:        "testnet",
		Net:         TestNet,
		DefaultPort: "19377",

		// Chain parameters.  Test networks always use the PID retarget
		// controller from the first block, so the pre-gravity-well switch
		// heights never come into play here.
		PowLimit:                 testNetPowLimit,
		PowLimitBits:             0x1e0fffff,
		PoWNoRetargeting:         false,
		AllowMinDifficultyBlocks: true,
		TargetTimePerBlock:       time.Second * 180,
		TargetTimespan:           time.Second * 86184,

		// AIP09 switches the test network to the classic gravity well so
		// the algorithm can be exercised against live miners without
		// waiting for main network activation.
		AIP09Height:     1000000,
		Hardfork2Height: 10000,

		// Initial PID controller terms.
		PidProportionalGain: 1.7,
		PidIntegratorTime:   172800,
		PidIntegratorGain:   5,
		PidDerivativeGain:   2,
	}
}
