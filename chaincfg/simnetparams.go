// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"math"
	"time"
)

// SimNetParams returns the network parameters for the simulation test
// network.  This network is similar to the normal test network except it is
// intended for private use within a group of individuals doing simulation
// testing, so difficulty retargeting is disabled entirely.
func SimNetParams() *Params {
	// simNetPowLimit is the highest proof of work value an Anoncoin block
	// can have for the simulation network.  It is the value 2^236 - 1.
	simNetPowLimit := mustPowLimit()

	return &Params{
		Name:        "simnet",
		Net:         SimNet,
		DefaultPort: "18777",

		// Chain parameters.
		PowLimit:                 simNetPowLimit,
		PowLimitBits:             0x1e0fffff,
		PoWNoRetargeting:         true,
		AllowMinDifficultyBlocks: true,
		TargetTimePerBlock:       time.Second * 180,
		TargetTimespan:           time.Second * 86184,

		AIP09Height:     math.MaxInt32,
		Hardfork2Height: 0,

		// Initial PID controller terms.
		PidProportionalGain: 1.7,
		PidIntegratorTime:   172800,
		PidIntegratorGain:   5,
		PidDerivativeGain:   2,
	}
}
