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

// MainNetParams returns the network parameters for the main Anoncoin network.
func MainNetParams() *Params {
	// mainPowLimit is the highest proof of work value an Anoncoin block can
	// have for the main network.  It is the value 2^236 - 1.
	mainPowLimit := mustPowLimit()

	return &Params{
		Name:        "mainnet",
		Net:         MainNet,
		DefaultPort: "9377",

		// Chain parameters.
		//
		// TargetTimespan is only used by the original retarget algorithm,
		// which was tuned for 205 second blocks.  Every era since the
		// gravity well uses the 3 minute block spacing directly.
		PowLimit:                 mainPowLimit,
		PowLimitBits:             0x1e0fffff,
		PoWNoRetargeting:         false,
		AllowMinDifficultyBlocks: false,
		TargetTimePerBlock:       time.Second * 180,
		TargetTimespan:           time.Second * 86184,

		// AIP09 has not activated on the main network, so the retarget
		// controller dispatch remains in effect at every height.
		AIP09Height:     math.MaxInt32,
		Hardfork2Height: 777777,

		// Initial PID controller terms.  The second era terms that take
		// over past Hardfork2Height are fixed constants of the retarget
		// engine itself.
		PidProportionalGain: 1.7,
		PidIntegratorTime:   172800,
		PidIntegratorGain:   5,
		PidDerivativeGain:   2,
	}
}
