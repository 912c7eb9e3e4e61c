// Copyright (c) 2014-2018 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/dcrd/lru"

	"github.com/anoncoin/anond/blockchain/standalone"
	"github.com/anoncoin/anond/chaincfg"
	"github.com/anoncoin/anond/math/uint256"
)

// reportCacheLimit bounds the cache of recently reported retarget rows so
// repeated queries at the same tip do not duplicate spreadsheet output.
const reportCacheLimit = 256

// Retarget owns the process wide difficulty retargeting state.  It is
// created once during initialization, replaced wholesale by ResetPid, and
// lives until shutdown.
//
// A single exclusive lock guards all mutable controller state.  Every
// exported method acquires it before reading or writing, releases it before
// returning, and never calls back into user code while holding it, so all
// methods are safe for concurrent access from the validation threads, the
// miner, and the RPC handlers.
type Retarget struct {
	mtx      sync.Mutex
	params   *chaincfg.Params
	opts     *RetargetOptions
	pid      *retargetPid
	reported lru.Cache
}

// New returns a retargeting engine for the provided network.  A nil options
// value selects the defaults.
func New(params *chaincfg.Params, opts *RetargetOptions) *Retarget {
	if opts == nil {
		opts = DefaultRetargetOptions()
	}
	r := &Retarget{
		params:   params,
		opts:     opts,
		reported: lru.NewCache(reportCacheLimit),
	}
	r.pid = newRetargetPid(params.PidProportionalGain,
		params.PidIntegratorTime, params.PidIntegratorGain,
		params.PidDerivativeGain, params, opts)
	return r
}

// NextWorkRequired calculates the required difficulty for the block after
// the passed previous block node given the candidate header time.
//
// The result is a pure function of the chain snapshot ending at prevTip and
// the header time: any two calls observing the same inputs produce identical
// outputs.
//
// This function is safe for concurrent access.
func (r *Retarget) NextWorkRequired(prevTip HeaderCtx, headerTime int64) uint32 {
	if prevTip == nil {
		return r.params.PowLimitBits
	}
	if r.params.PoWNoRetargeting {
		return prevTip.Bits()
	}

	r.mtx.Lock()
	bits := r.nextWorkRequired(prevTip, headerTime)
	r.mtx.Unlock()
	return bits
}

// nextWorkRequired selects the retarget algorithm by the height of the next
// block and returns its output in compact form.
//
// This function MUST be called with the retarget lock held (for writes).
func (r *Retarget) nextWorkRequired(prevTip HeaderCtx, headerTime int64) uint32 {
	nextHeight := prevTip.Height() + 1
	switch {
	case nextHeight < r.params.AIP09Height:
		return r.nextWorkRequiredPid(prevTip, headerTime)
	case nextHeight == r.params.AIP09Height:
		// The activation block carries a fixed literal difficulty.
		return aip09SwitchBits
	default:
		return kimotoGravityWell(prevTip, targetSpacing, kgwMinBlocksToAvg,
			kgwMaxBlocksToAvg, r.params.PowLimit)
	}
}

// nextWorkRequiredPid oversees the pre-AIP09 retarget eras.  The controller
// output is always updated so its diagnostics stay live, then the main
// network may override the result with the era algorithm for the next block
// height.  Test networks always use the controller.
//
// This function MUST be called with the retarget lock held (for writes).
func (r *Retarget) nextWorkRequiredPid(prevTip HeaderCtx, headerTime int64) uint32 {
	// During index load before the genesis block is in, there is nothing to
	// do except return the minimum difficulty.
	if r.pid == nil {
		return r.params.PowLimitBits
	}

	if !r.pid.updateOutput(prevTip, headerTime) {
		log.Debugf("Insufficient block index, unable to set retarget " +
			"controller output values")
	}

	// Always a limit checked valid result.
	var result uint256.Uint256
	result.Set(&r.pid.targetAfterLimits)

	if r.params.IsMainNetwork() {
		nextHeight := prevTip.Height() + 1
		switch {
		case nextHeight > difficultySwitchHeight3 &&
			nextHeight <= difficultySwitchHeight4:
			// The KGW era.
			result = nextWorkRequiredKgwV2(prevTip, r.params.PowLimit)
		case nextHeight <= difficultySwitchHeight3:
			// Algorithms prior to the KGW era.
			result = originalNextWorkRequired(prevTip, r.params.PowLimit)
		}
	}

	return standalone.Uint256ToDiffBits(&result)
}

// CheckProofOfWork verifies a block's claim of proof of work against the
// given difficulty bits.
//
// One exception exists on test networks for chains bootstrapped with
// mocktime blocks: a hash above the claimed target is accepted when the
// claimed bits equal the configured starting difficulty and the hash still
// meets the proof of work limit.
func (r *Retarget) CheckProofOfWork(powHash *chainhash.Hash, diffBits uint32) error {
	err := standalone.CheckProofOfWork(powHash, diffBits, r.params.PowLimit)
	if err == nil || !errors.Is(err, standalone.ErrHighHash) {
		return err
	}

	if r.params.IsMainNetwork() || !r.params.AllowMinDifficultyBlocks {
		return err
	}

	r.mtx.Lock()
	startingDiffBits := standalone.Uint256ToDiffBits(&r.pid.testNetStartingDiff)
	r.mtx.Unlock()

	hashNum := standalone.HashToUint256(powHash)
	if diffBits == startingDiffBits && !hashNum.Gt(r.params.PowLimit) {
		return nil
	}
	log.Debugf("CheckProofOfWork failed, StartingDiff=0x%08x Bits=0x%08x "+
		"hash=%v", startingDiffBits, diffBits, powHash)
	return err
}

// SetRetargetToBlock charges the integrator and rebuilds the tip filter
// after a new block has been processed and verified, or any other time the
// chain tip changes, so future output calculations are fast.  Reports from
// the previous block height are run as if the new tip were a candidate
// header.
//
// This function is safe for concurrent access.
func (r *Retarget) SetRetargetToBlock(tip HeaderCtx) bool {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	// A nil tip shows up while loading the genesis block; do nothing.
	if r.pid == nil || tip == nil || tip.Parent() == nil {
		return false
	}

	r.runReports(tip.Parent(), tip.Timestamp(), tip.Bits())

	charged := r.pid.chargeIntegrator(tip)
	updated := r.pid.updateIndexTipFilter(tip)

	// Build the correct text for the log output based on the network and
	// how far the chain is from the controller activation.
	basedOnKgw := false
	var nextWork string
	if r.params.IsMainNetwork() {
		distance := int64(difficultySwitchHeight4) - int64(tip.Height())
		basedOnKgw = distance >= 0
		switch {
		case distance > 0:
			if tip.Height() > difficultySwitchHeight3 {
				nextWork = fmt.Sprintf("For this and next %d blocks, "+
					"ProofOfWork based on KGW. Required=", distance)
			} else {
				nextWork = "Next ProofOfWork based on old algo. Required="
			}
		case distance == 0:
			nextWork = "Last Block based on KGW. ProofOfWork Required="
		default:
			nextWork = fmt.Sprintf("For %d blocks ProofOfWork based on "+
				"RetargetPID, Next Required=", -distance)
		}
	} else {
		nextWork = "Next ProofOfWork Required="
	}
	if !basedOnKgw && charged && updated && r.pid.usesHeader {
		nextWork += "dynamic RightNow="
	}

	// Compute the next work required as of the present moment and report
	// it, which works for any network regardless of whether a header time
	// matters for the retarget output value.
	nextBits := r.nextWorkRequired(tip, time.Now().Unix())
	chargeState := "charged"
	if !charged {
		chargeState = "Integrator failed charge"
	}
	filterState := "updated"
	if !updated {
		filterState = "update failed"
	}
	log.Infof("RetargetPID %s to height=%d, tipfilter %s, %s0x%08x",
		chargeState, tip.Height(), filterState, nextWork, nextBits)

	return charged && updated
}

// ResetPid replaces the controller state when the four whitespace separated
// tokens (proportional gain, integration time, integrator gain, derivative
// gain) parse and differ from the current settings.  On a parse failure the
// existing state is preserved and an error returned.
//
// This function is safe for concurrent access.
func (r *Retarget) ResetPid(pidParams string, tip HeaderCtx) error {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	fields := strings.Fields(pidParams)
	if len(fields) < 4 {
		return fmt.Errorf("expected 4 controller terms, got %d", len(fields))
	}
	propGain, err := strconv.ParseFloat(fields[0], 64)
	if err != nil {
		return fmt.Errorf("invalid proportional gain %q: %w", fields[0], err)
	}
	integrationTime, err := strconv.ParseInt(fields[1], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid integration time %q: %w", fields[1], err)
	}
	integGain, err := strconv.ParseFloat(fields[2], 64)
	if err != nil {
		return fmt.Errorf("invalid integrator gain %q: %w", fields[2], err)
	}
	derivGain, err := strconv.ParseFloat(fields[3], 64)
	if err != nil {
		return fmt.Errorf("invalid derivative gain %q: %w", fields[3], err)
	}

	// Do not keep executing a reset that matches the current settings.
	if r.pid != nil && r.pid.propGain == propGain &&
		r.pid.integrationTime == integrationTime &&
		r.pid.integGain == integGain && r.pid.derivGain == derivGain {

		log.Infof("While resetting RetargetPID parameters, the values " +
			"matched current settings")
		return nil
	}

	r.pid = newRetargetPid(propGain, integrationTime, integGain, derivGain,
		r.params, r.opts)
	r.pid.chargeIntegrator(tip)
	r.pid.updateIndexTipFilter(tip)

	// At this point mining can resume and reporting begins as if it were a
	// new start.
	return nil
}

// CalcBlockIndexRequired returns the number of block index entries needed to
// cover one full integration time period ending at the passed tip, or a
// close approximation of the ideal when no tip is available.
//
// This function is safe for concurrent access.
func (r *Retarget) CalcBlockIndexRequired(tip HeaderCtx) uint32 {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if tip == nil || tip.Parent() == nil {
		return uint32(r.pid.integrationTime / targetSpacing)
	}

	oldestBlockTime := tip.Timestamp() - r.pid.integrationTime
	blocksSampled := uint32(1)
	node := tip
	for {
		node = node.Parent()
		blocksSampled++
		if node.Parent() == nil || oldestBlockTime >= node.Parent().Timestamp() {
			break
		}
	}
	return blocksSampled
}

// TipFilterSize returns the number of samples in the tip filter, including
// the candidate header slot when header times are part of the calculations.
//
// This function is safe for concurrent access.
func (r *Retarget) TipFilterSize() int32 {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	result := r.pid.tipFilterBlocks
	if r.pid.usesHeader {
		result++
	}
	return result
}

// RetargetStats is a read-only snapshot of the controller state as charged
// to a particular height.
type RetargetStats struct {
	// Static configuration.
	PropGain        float64
	IntegrationTime int64
	IntegGain       float64
	DerivGain       float64
	UsesHeader      bool
	TipFilterSize   int32
	MaxDiffIncrease uint32
	MaxDiffDecrease uint32

	// Filter weights.
	PrevDiffWeight     uint32
	SpacingErrorWeight uint32
	RateChangeWeight   uint32

	// Output state for the requested height.
	ForHeight            int32
	MinTimeAllowed       int64
	LastCalculationTime  int64
	IntegratorHeight     int32
	BlocksSampled        uint32
	IntegratorChargeTime int64
	SpacingError         float64
	RateOfChange         float64
	ProportionalTerm     float64
	IntegratorTerm       float64
	DerivativeTerm       float64
	PidOutputTime        float64
	PidOutputLimited     bool
	DifficultyLimited    bool
	PrevDiff             uint256.Uint256
	TargetDiff           uint256.Uint256
	AverageTipSpacing    float64
	TipFilter            []FilterPoint
	BlockSpacing         int64
	PrevPowHash          uint256.Uint256
}

// RetargetStats returns a snapshot of the controller state for the given
// height.  A height of zero, or any height beyond the tip, reports for the next
// block as of the present moment; any other height replays the stored
// header at that height.
//
// The integrator charge may be moved to another height to produce the
// snapshot, but it is always restored before the lock is released so
// concurrent validators keep seeing the chain tip charge.
//
// This function is safe for concurrent access.
func (r *Retarget) RetargetStats(height int32, tip HeaderCtx) (*RetargetStats, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if r.pid == nil {
		return nil, false
	}
	p := r.pid

	// The static, infrequently changing details can always be provided.
	stats := &RetargetStats{
		PropGain:           p.propGain,
		IntegrationTime:    p.integrationTime,
		IntegGain:          p.integGain,
		DerivGain:          p.derivGain,
		UsesHeader:         p.usesHeader,
		TipFilterSize:      p.tipFilterBlocks,
		MaxDiffIncrease:    p.maxDiffIncrease,
		MaxDiffDecrease:    p.maxDiffDecrease,
		PrevDiffWeight:     p.prevDiffWeight,
		SpacingErrorWeight: p.spacingErrorWeight,
		RateChangeWeight:   p.rateChangeWeight,
	}
	if p.usesHeader {
		stats.TipFilterSize++
	}

	// Remember where the integrator and filter calculations were charged
	// before this command so they can be restored.
	prevCharge := p.chargedToIndex
	prevChargeHeight := p.integratorHeight

	// Make sure the calculations can even run; otherwise the state above is
	// all that can be provided.
	if tip == nil || tip.Height() < p.tipFilterBlocks ||
		(height != 0 && height <= p.tipFilterBlocks) {
		return stats, false
	}

	// A zero height, or any height past the tip, reports for the next new block
	// with the present moment as the candidate time.  Otherwise the stored
	// header information at the requested height is replayed.
	var chargeIndex HeaderCtx
	var headerTime int64
	if height == 0 || height > tip.Height() {
		height = tip.Height() + 1
		headerTime = time.Now().Unix()
		chargeIndex = tip
	} else {
		node := tip
		for node.Height() > height {
			node = node.Parent()
		}
		headerTime = node.Timestamp()
		chargeIndex = node.Parent()
	}
	stats.ForHeight = height

	if p.updateOutput(chargeIndex, headerTime) {
		stats.MinTimeAllowed = calcPastMedianTime(chargeIndex) + 1
		stats.LastCalculationTime = p.lastCalculationTime
		stats.IntegratorHeight = p.integratorHeight
		stats.BlocksSampled = p.blocksSampled
		stats.IntegratorChargeTime = p.integratorChargeTime
		stats.SpacingError = p.spacingError
		stats.RateOfChange = p.rateOfChange
		stats.ProportionalTerm = p.proportionalTerm
		stats.IntegratorTerm = p.integratorTerm
		stats.DerivativeTerm = p.derivativeTerm
		stats.PidOutputTime = p.pidOutputTime
		stats.PrevDiff.Set(&p.prevDiffCalculated)
		stats.PidOutputLimited = p.pidOutputLimited
		stats.DifficultyLimited = p.difficultyLimited
		stats.TargetDiff.Set(&p.targetAfterLimits)
		stats.AverageTipSpacing = p.averageTipSpacing
		if p.usesHeader {
			stats.TipFilter = append([]FilterPoint(nil),
				p.tipFilterWithHeader...)
		} else {
			stats.TipFilter = append([]FilterPoint(nil), p.indexTipFilter...)
		}
		stats.BlockSpacing = p.lastCalculationTime - chargeIndex.Timestamp()
		powHash := chargeIndex.PowHash()
		stats.PrevPowHash = standalone.HashToUint256(&powHash)
	}

	// Restore the integrator charge and filter calculations to the previous
	// settings before the lock is released.
	if prevChargeHeight != 0 && prevCharge != nil &&
		prevCharge != p.chargedToIndex {
		p.chargeIntegrator(prevCharge)
		p.updateIndexTipFilter(prevCharge)
	}
	return stats, true
}
