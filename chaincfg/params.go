// Copyright (c) 2014-2016 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package chaincfg

import (
	"time"

	"github.com/anoncoin/anond/math/uint256"
)

// CurrencyNet represents which Anoncoin network a message belongs to.
type CurrencyNet uint32

// Constants used to indicate the message Anoncoin network.  They can also be
// used to seek to the next message when a stream's state is unknown, but
// this package does not provide that functionality since it's generally a
// better idea to simply disconnect clients that are misbehaving over TCP.
const (
	// MainNet represents the main Anoncoin network.
	MainNet CurrencyNet = 0xdefaced9

	// TestNet represents the test network.
	TestNet CurrencyNet = 0x0d109f07

	// SimNet represents the simulation test network.
	SimNet CurrencyNet = 0x12141c16
)

// Params defines an Anoncoin network by its parameters.  These parameters may
// be used by Anoncoin applications to differentiate networks as well as
// addresses and keys for one network from those intended for use on another
// network.
type Params struct {
	// Name defines a human-readable identifier for the network.
	Name string

	// Net defines the magic bytes used to identify the network.
	Net CurrencyNet

	// DefaultPort defines the default peer-to-peer port for the network.
	DefaultPort string

	// PowLimit defines the highest allowed proof of work value for a block
	// as a uint256.
	PowLimit *uint256.Uint256

	// PowLimitBits defines the highest allowed proof of work value for a
	// block in compact form.
	PowLimitBits uint32

	// PoWNoRetargeting defines whether the network has difficulty
	// retargeting disabled.
	PoWNoRetargeting bool

	// AllowMinDifficultyBlocks defines whether the network should allow
	// minimum difficulty blocks.  This is really only useful for test
	// networks and should not be set on a main network.
	AllowMinDifficultyBlocks bool

	// TargetTimePerBlock is the desired amount of time to generate each
	// block.  Anoncoin has used 3 minute spacing since the gravity well
	// era and the PID controller gains are tuned for exactly this value.
	TargetTimePerBlock time.Duration

	// TargetTimespan is the desired amount of time that should elapse
	// before the block difficulty requirement is examined to determine how
	// it should be changed in order to maintain the desired block
	// generation rate.  Only the original pre-gravity-well algorithm uses
	// it directly.
	TargetTimespan time.Duration

	// AIP09Height, when reached, switches difficulty retargeting to the
	// classic gravity well algorithm.  The exact switch height block
	// carries a fixed literal difficulty.  A height that can never be
	// reached leaves the retarget controller dispatch in effect.
	AIP09Height int32

	// Hardfork2Height is the height of the second hard fork, at which the
	// PID controller gains, the integrator anti-windup bounds, and the
	// output limiter percentages all change.
	Hardfork2Height int32

	// PidProportionalGain, PidIntegratorTime, PidIntegratorGain and
	// PidDerivativeGain are the initial controller terms used by the
	// retarget engine until Hardfork2Height is passed.
	PidProportionalGain float64
	PidIntegratorTime   int64
	PidIntegratorGain   float64
	PidDerivativeGain   float64
}

// IsMainNetwork returns whether or not these parameters describe the main
// network.  Test networks relax several proof-of-work rules, including the
// starting difficulty bootstrap and the retarget algorithm selection.
func (p *Params) IsMainNetwork() bool {
	return p.Net == MainNet
}

// mustPowLimit returns the standard Anoncoin proof of work limit, which is
// the value 2^256 - 1 right shifted by 20, or equivalently 2^236 - 1.
func mustPowLimit() *uint256.Uint256 {
	return new(uint256.Uint256).Not().Rsh(20)
}
