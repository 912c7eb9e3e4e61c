// Copyright (c) 2014-2018 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"sort"

	"github.com/anoncoin/anond/blockchain/standalone"
	"github.com/anoncoin/anond/chaincfg"
	"github.com/anoncoin/anond/math/uint256"
)

// Default retarget controller configuration values.  The main network always
// runs with these; test networks may override them through RetargetOptions.
const (
	defaultTipFilterBlocks = 21
	defaultUsesHeader      = false
	defaultMaxDiffIncrease = 200
	defaultMaxDiffDecrease = 170
)

// Constants of the second controller era, which takes over for all heights
// beyond the second hard fork block.  None of these may change: they are
// part of the consensus rules.
const (
	// Output limiter percentages.  A value of 150 limits a difficulty
	// increase to 1.5x per retarget.
	maxDiffIncrease2 = 150
	maxDiffDecrease2 = 130

	// Integrator anti-windup bounds in seconds per block, for the first and
	// second eras respectively.
	minIntegrator  = 170
	minIntegrator2 = 176
	maxIntegrator  = 190
	maxIntegrator2 = 195

	// The number of newest tip filter entries averaged for the increase and
	// decrease limit anchors in the second era.  The first era used 4 and 6.
	weightedAvgTipBlocksUp   = 9
	weightedAvgTipBlocksDown = 20

	// Second era controller terms.
	pidProportionalGain2 = 1.6
	pidIntegratorTime2   = 129600
	pidIntegratorGain2   = 8
	pidDerivativeGain2   = 3
)

// FilterPoint is one sample inside the tip filter.  The spacing fields are
// only populated once the filter timing results have been calculated over
// the time-sorted samples.
type FilterPoint struct {
	// BlockTime is the time the sampled block was mined.
	BlockTime int64

	// DiffBits is the compact difficulty of the sampled block.  It is zero
	// for the synthetic sample a candidate header contributes, which is
	// never given difficulty weight.
	DiffBits uint32

	// Spacing, SpacingError and RateOfChange describe the seconds between
	// this sample and the previous one, its deviation from the target
	// spacing, and the first difference of that deviation.
	Spacing      int32
	SpacingError int32
	RateOfChange int32
}

// RetargetOptions holds the host supplied configuration consumed by the
// retarget controller.  A zero TipFilterBlocks, StartingDiff, MaxDiffIncrease
// or MaxDiffDecrease selects the value DefaultRetargetOptions uses; the
// boolean fields are taken as given, so a zero LogDiffLimits turns that
// logging off.  On the main network the consensus critical fields are forced to their
// defaults regardless of what the host supplies.
type RetargetOptions struct {
	// TipFilterBlocks is the number of blocks the tip filter samples.  A
	// minimum of 5 is enforced.
	TipFilterBlocks int32

	// UseHeader includes the candidate header time in the timing error
	// calculations.  It must not be enabled without precise control of the
	// peer clocks, since no block times from the future can be allowed
	// into the filter.
	UseHeader bool

	// StartingDiff is the number of times greater than the minimum
	// difficulty test network chains bootstrap at.
	StartingDiff float64

	// MaxDiffIncrease and MaxDiffDecrease limit how far one retarget can
	// move the difficulty, in percent.  Values are clamped to at least 101
	// (a 1.01x change).
	MaxDiffIncrease int32
	MaxDiffDecrease int32

	// RetargetCSV, DiffCurves, LogAllBlocks and LogDiffLimits control the
	// diagnostic spreadsheet output written below DataDir.
	RetargetCSV   bool
	DiffCurves    bool
	LogAllBlocks  bool
	LogDiffLimits bool
	DataDir       string
}

// DefaultRetargetOptions returns the retarget controller configuration used
// when the host supplies nothing.
func DefaultRetargetOptions() *RetargetOptions {
	return &RetargetOptions{
		TipFilterBlocks: defaultTipFilterBlocks,
		UseHeader:       defaultUsesHeader,
		StartingDiff:    1.0,
		MaxDiffIncrease: 101,
		MaxDiffDecrease: 101,
		LogDiffLimits:   true,
	}
}

// retargetPid is the discrete PID controller at the heart of the modern
// retarget engine.  It observes block timing error over the tip filter, the
// long term block rate over the integration window, and the rate of change
// of the timing error, then combines the three terms into the time output
// that scales the next required proof of work.
//
// All fields are guarded by the lock of the owning Retarget instance.
type retargetPid struct {
	// Controller terms.  These start from the chain parameters and are
	// overwritten with the second era constants past the second hard fork.
	propGain        float64
	integrationTime int64
	integGain       float64
	derivGain       float64

	// Configuration captured at creation.
	tipFilterBlocks     int32
	usesHeader          bool
	maxDiffIncrease     uint32
	maxDiffDecrease     uint32
	testNetStartingDiff uint256.Uint256
	powLimit            *uint256.Uint256
	hardfork2Height     int32

	// Computation anchors that make repeated calls at the same height
	// cheap.  chargedToIndex is borrowed from the externally owned block
	// index, never mutated, and only used to restore a previous charge.
	tipFilterInitialized bool
	integratorHeight     int32
	indexFilterHeight    int32
	lastCalculationTime  int64
	chargedToIndex       HeaderCtx

	// The tip filters.  indexTipFilter holds exactly tipFilterBlocks
	// time-sorted samples from the block index.  tipFilterWithHeader holds
	// those plus the candidate header sample when usesHeader is enabled.
	indexTipFilter      []FilterPoint
	tipFilterWithHeader []FilterPoint

	// Most recent filter results.
	spacingError       float64
	rateOfChange       float64
	averageTipSpacing  float64
	spacingErrorWeight uint32
	rateChangeWeight   uint32
	prevDiffWeight     uint32

	// Most recent integrator results.
	blocksSampled        uint32
	integratorChargeTime int64
	integratorBlockTime  float64

	// Most recent controller outputs.
	proportionalTerm   float64
	integratorTerm     float64
	derivativeTerm     float64
	pidOutputTime      float64
	outputTime         int64
	pidOutputLimited   bool
	difficultyLimited  bool
	targetBeforeLimits uint256.Uint256
	targetAfterLimits  uint256.Uint256

	// Difficulty anchors produced by the tip filter.
	prevDiffCalculated       uint256.Uint256
	prevDiffForLimitsLast    uint256.Uint256
	tipDiffUp                uint256.Uint256
	tipDiffDown              uint256.Uint256
	diffAtMaxIncreaseLast    uint256.Uint256
	diffAtMaxIncreaseTip     uint256.Uint256
	diffAtMaxDecreaseLast    uint256.Uint256
	diffAtMaxDecreaseTip     uint256.Uint256
	weightedAvgTipBlocksUp   int32
	weightedAvgTipBlocksDown int32

	// Diagnostic spreadsheet bookkeeping.
	retargetNewLog   bool
	diffCurvesNewLog bool
}

// newRetargetPid creates a retarget controller with the provided terms.  The
// consensus critical configuration is forced on the main network and taken
// from the options elsewhere.
func newRetargetPid(propGain float64, integrationTime int64, integGain, derivGain float64, params *chaincfg.Params, opts *RetargetOptions) *retargetPid {
	p := &retargetPid{
		propGain:        propGain,
		integrationTime: integrationTime,
		integGain:       integGain,
		derivGain:       derivGain,
		powLimit:        params.PowLimit,
		hardfork2Height: params.Hardfork2Height,

		retargetNewLog:   true,
		diffCurvesNewLog: true,
	}
	p.testNetStartingDiff.Set(params.PowLimit)

	if params.IsMainNetwork() {
		p.tipFilterBlocks = defaultTipFilterBlocks
		p.usesHeader = defaultUsesHeader
		p.maxDiffIncrease = defaultMaxDiffIncrease
		p.maxDiffDecrease = defaultMaxDiffDecrease
		return p
	}

	// Only test networks honor the programmable settings.
	tipFilterBlocks := opts.TipFilterBlocks
	if tipFilterBlocks == 0 {
		tipFilterBlocks = defaultTipFilterBlocks
	}
	if tipFilterBlocks < 5 {
		tipFilterBlocks = 5
	}
	p.tipFilterBlocks = tipFilterBlocks
	p.usesHeader = opts.UseHeader

	// Difficulty is harder as the 256-bit number goes down.  The previous
	// difficulty is divided by maxDiffIncrease and compared to the
	// calculated value; if it is less than that value the output is capped
	// there.  maxDiffDecrease works the other way as a multiplier.
	maxDiffIncrease := opts.MaxDiffIncrease
	if maxDiffIncrease < 101 {
		maxDiffIncrease = 101
	}
	p.maxDiffIncrease = uint32(maxDiffIncrease)
	maxDiffDecrease := opts.MaxDiffDecrease
	if maxDiffDecrease < 101 {
		maxDiffDecrease = 101
	}
	p.maxDiffDecrease = uint32(maxDiffDecrease)

	// The starting difficulty value provided is the number of times greater
	// than the minimum difficulty, so the block difficulty is the minimum
	// difficulty divided by that amount.
	startingDiff := roundToInt64(opts.StartingDiff)
	if startingDiff < 1 {
		startingDiff = 1
	}
	p.testNetStartingDiff.DivUint64(uint64(startingDiff))

	return p
}

// isUpdateRequired returns whether or not the cached controller outputs are
// stale for the given tip and candidate header time.
func (p *retargetPid) isUpdateRequired(pIndex HeaderCtx, headerTime int64) bool {
	return p.integratorHeight != pIndex.Height() ||
		p.lastCalculationTime != headerTime ||
		p.indexFilterHeight != pIndex.Height()
}

// chargeIntegrator walks back through the chain measuring the average block
// spacing over the integration window ending at the passed tip.  Returns
// true when the integration result is ready for use.
//
// The result is memoized by height: repeated calls at the same tip height
// are O(1).  The integrator does not care what the next block time is, so
// instantaneous error is not its concern.
func (p *retargetPid) chargeIntegrator(pIndex HeaderCtx) bool {
	// It's over if there is not enough data to even start.
	if pIndex == nil || pIndex.Parent() == nil {
		return false
	}

	if p.integratorHeight != pIndex.Height() {
		p.integratorHeight = pIndex.Height()
		p.chargedToIndex = pIndex
	} else {
		// The results for this height are already known.
		return true
	}

	// An integration time of zero bypasses the walk entirely and charges
	// the integrator to the ideal spacing.
	if p.integrationTime == 0 {
		p.blocksSampled = 0
		p.integratorChargeTime = 0
		p.integratorBlockTime = float64(targetSpacing)
		return true
	}

	mostRecentBlockTime := pIndex.Timestamp()
	oldestBlockTime := mostRecentBlockTime - p.integrationTime

	// Walk back until the next block to be added would have a time that
	// falls outside the integration period.  It could be the genesis block
	// and ancient, which would lead to hundreds of days of block time
	// summed, so it is not included.
	p.blocksSampled = 1
	var blockTime int64
	node := pIndex
	for {
		node = node.Parent()
		blockTime = node.Timestamp()
		p.blocksSampled++
		if node.Parent() == nil || oldestBlockTime >= node.Parent().Timestamp() {
			break
		}
	}

	p.integratorChargeTime = mostRecentBlockTime - blockTime
	p.integratorBlockTime = float64(p.integratorChargeTime) /
		float64(p.blocksSampled-1)

	// Capped to prevent integrator windup.
	switch {
	case p.integratorBlockTime < minIntegrator &&
		p.integratorHeight <= p.hardfork2Height:
		p.integratorBlockTime = minIntegrator
	case p.integratorBlockTime < minIntegrator2 &&
		p.integratorHeight > p.hardfork2Height:
		p.integratorBlockTime = minIntegrator2
	case p.integratorBlockTime > maxIntegrator &&
		p.integratorHeight <= p.hardfork2Height:
		p.integratorBlockTime = maxIntegrator
	case p.integratorBlockTime > maxIntegrator2 &&
		p.integratorHeight > p.hardfork2Height:
		p.integratorBlockTime = maxIntegrator2
	}
	return true
}

// updateIndexTipFilter rebuilds the tip filter from the block index ending at
// the passed tip and recalculates the weighted difficulty anchors the output
// limiter works from.  Returns true once the filter is initialized.
func (p *retargetPid) updateIndexTipFilter(pIndex HeaderCtx) bool {
	// Enough blocks must exist, and the genesis block's time is very old
	// and must not be included.
	if pIndex.Height() < p.tipFilterBlocks {
		return false
	}

	// Force a new block spacing error calculation next time an output is
	// requested.  Without this, results for a different header time at the
	// same height could 'appear' correct and go undetected by
	// isUpdateRequired.
	p.lastCalculationTime = 0

	if p.tipFilterInitialized && p.indexFilterHeight == pIndex.Height() {
		return true
	}

	p.spacingErrorWeight = 0
	p.rateChangeWeight = 0
	p.averageTipSpacing = 0
	p.spacingError = 0
	p.rateOfChange = 0
	p.indexTipFilter = p.indexTipFilter[:0]

	node := pIndex
	for i := p.tipFilterBlocks - 1; i >= 0 && node != nil; i-- {
		p.indexTipFilter = append(p.indexTipFilter, FilterPoint{
			BlockTime: node.Timestamp(),
			DiffBits:  node.Bits(),
		})
		node = node.Parent()
	}
	if int32(len(p.indexTipFilter)) != p.tipFilterBlocks {
		return false
	}

	// Sort the filter data by time.  Mining races mean the arrival-order
	// timestamps are not monotone.  The stable sort keeps ties in walk
	// order so every node computes the identical filter.
	sort.SliceStable(p.indexTipFilter, func(i, j int) bool {
		return p.indexTipFilter[i].BlockTime < p.indexTipFilter[j].BlockTime
	})

	// Process the difficulty values.  The newer a sample is, the more it
	// counts.
	var dividerSum uint32
	var blockPOW uint256.Uint256
	p.prevDiffCalculated.SetUint64(0)
	for i := int32(1); i <= p.tipFilterBlocks; i++ {
		blockPOW, _, _ = standalone.DiffBitsToUint256(p.indexTipFilter[i-1].DiffBits)
		blockPOW.MulUint64(uint64(i))
		p.prevDiffCalculated.Add(&blockPOW)
		dividerSum += uint32(i)
	}
	p.prevDiffWeight = dividerSum
	p.prevDiffCalculated.DivUint64(uint64(dividerSum))

	// Weighted moving average on the partial tip for difficulty up.
	dividerSum = 0
	p.weightedAvgTipBlocksUp = 4
	if pIndex.Height() > p.hardfork2Height {
		p.weightedAvgTipBlocksUp = weightedAvgTipBlocksUp
	}
	if p.weightedAvgTipBlocksUp > p.tipFilterBlocks {
		p.weightedAvgTipBlocksUp = p.tipFilterBlocks
	}
	p.tipDiffUp.SetUint64(0)
	for i := p.tipFilterBlocks - p.weightedAvgTipBlocksUp + 1; i <= p.tipFilterBlocks; i++ {
		weight := i + p.weightedAvgTipBlocksUp - p.tipFilterBlocks
		blockPOW, _, _ = standalone.DiffBitsToUint256(p.indexTipFilter[i-1].DiffBits)
		blockPOW.MulUint64(uint64(weight))
		p.tipDiffUp.Add(&blockPOW)
		dividerSum += uint32(weight)
	}
	p.tipDiffUp.DivUint64(uint64(dividerSum))

	// Weighted moving average on the partial tip for difficulty down.
	dividerSum = 0
	p.weightedAvgTipBlocksDown = 6
	if pIndex.Height() > p.hardfork2Height {
		p.weightedAvgTipBlocksDown = weightedAvgTipBlocksDown
	}
	if p.weightedAvgTipBlocksDown > p.tipFilterBlocks {
		p.weightedAvgTipBlocksDown = p.tipFilterBlocks
	}
	p.tipDiffDown.SetUint64(0)
	for i := p.tipFilterBlocks - p.weightedAvgTipBlocksDown + 1; i <= p.tipFilterBlocks; i++ {
		weight := i + p.weightedAvgTipBlocksDown - p.tipFilterBlocks
		blockPOW, _, _ = standalone.DiffBitsToUint256(p.indexTipFilter[i-1].DiffBits)
		blockPOW.MulUint64(uint64(weight))
		p.tipDiffDown.Add(&blockPOW)
		dividerSum += uint32(weight)
	}
	p.tipDiffDown.DivUint64(uint64(dividerSum))

	// The smoothed partial tip averages and the last block itself anchor
	// the maximum increase and maximum decrease limits.  Do not forget the
	// difficulty is inverse: a retarget up is a smaller target.
	p.prevDiffForLimitsLast, _, _ = standalone.DiffBitsToUint256(pIndex.Bits())

	if pIndex.Height() > p.hardfork2Height {
		p.maxDiffIncrease = maxDiffIncrease2
		p.maxDiffDecrease = maxDiffDecrease2
	}

	// The limits work in hundredths, so the minimum is 101% which is
	// equivalent to a 1.01 multiplier or divider.
	if p.maxDiffIncrease <= 101 {
		log.Warnf("maxDiffIncrease <= 101, DiffAtMaxIncrease is set to *1.01")
		p.maxDiffIncrease = 101
	}
	p.diffAtMaxIncreaseLast.Set(&p.prevDiffForLimitsLast).
		MulUint64(100).DivUint64(uint64(p.maxDiffIncrease))
	p.diffAtMaxIncreaseTip.Set(&p.tipDiffUp).
		MulUint64(100).DivUint64(uint64(p.maxDiffIncrease))

	if p.maxDiffDecrease <= 101 {
		log.Warnf("maxDiffDecrease <= 101, DiffAtMaxDecrease is set to /1.01")
		p.maxDiffDecrease = 101
	}
	p.diffAtMaxDecreaseLast.Set(&p.prevDiffForLimitsLast).
		MulUint64(uint64(p.maxDiffDecrease)).DivUint64(100)
	p.diffAtMaxDecreaseTip.Set(&p.tipDiffDown).
		MulUint64(uint64(p.maxDiffDecrease)).DivUint64(100)

	// When the header time is part of the calculations, the spacing errors
	// must be recomputed every time a new header time is given.  Otherwise
	// they only depend on the index filter and can be computed right now.
	if !p.usesHeader {
		p.updateFilterTimingResults(p.indexTipFilter)
	}

	p.indexFilterHeight = pIndex.Height()
	p.tipFilterInitialized = true
	return true
}

// updateFilterTimingResults computes the weighted spacing error, rate of
// change, and average spacing over the passed time-sorted filter, storing
// the results and annotating the filter points.
//
// When the header is included the filter is one entry larger than
// tipFilterBlocks; by using the given filter's size this code works either
// way.
func (p *retargetPid) updateFilterTimingResults(filterPoints []FilterPoint) {
	var dividerSum uint32
	var blockSpacingSum uint32
	var timeError0 int64

	filterSize := int32(len(filterPoints))
	p.spacingError = 0.0
	p.rateOfChange = 0.0
	for i := int32(1); i <= filterSize; i++ {
		if i < filterSize {
			blockSpacing := filterPoints[i].BlockTime - filterPoints[i-1].BlockTime
			filterPoints[i].Spacing = int32(blockSpacing)
			blockSpacingSum += uint32(blockSpacing)
			timeError := blockSpacing - targetSpacing
			filterPoints[i].SpacingError = int32(timeError)
			if i > 1 {
				changeRate := timeError - timeError0
				filterPoints[i].RateOfChange = int32(changeRate)
				p.rateOfChange += float64(int32(changeRate) * (i - 1))
			}
			timeError0 = timeError
			p.spacingError += float64(int32(timeError) * i)
			dividerSum += uint32(i)
		} else {
			p.averageTipSpacing = float64(blockSpacingSum) / float64(i-1)
			p.spacingErrorWeight = dividerSum
			p.spacingError /= float64(dividerSum)
			p.rateChangeWeight = dividerSum - uint32(i) + 1
			p.rateOfChange /= float64(p.rateChangeWeight)
		}
	}
}

// calcBlockTimeErrors finalizes the spacing error and rate of change results
// for the given candidate tip time.
//
// When the header is not part of the calculations the index tip filter
// already holds the results and this does nothing beyond confirming the
// filter is ready.  Otherwise the header time is merged into a copy of the
// sorted index filter at the position that keeps time ordering; the header
// time may well be older than recent block times, in which case its weight
// is far less than if it had been the newest.
func (p *retargetPid) calcBlockTimeErrors(tipTime int64) bool {
	if !p.tipFilterInitialized {
		return false
	}
	if !p.usesHeader {
		return true
	}

	// The header point is identifiable as the only one for which the
	// difficulty is infinite (zero bits).
	headerPoint := FilterPoint{BlockTime: tipTime}

	// Build the finalized tip filter, inserting the header at the correctly
	// sorted time position.  The oldest index entry is kept since it is
	// needed to compute the first spacing.
	headerAdded := false
	p.tipFilterWithHeader = p.tipFilterWithHeader[:0]
	for i := int32(0); i < p.tipFilterBlocks; i++ {
		if !headerAdded && tipTime < p.indexTipFilter[i].BlockTime {
			p.tipFilterWithHeader = append(p.tipFilterWithHeader, headerPoint)
			headerAdded = true
		}
		p.tipFilterWithHeader = append(p.tipFilterWithHeader, p.indexTipFilter[i])
	}

	// A header time newer than all previous block times goes at the end,
	// which is also where it normally lands.
	if !headerAdded {
		p.tipFilterWithHeader = append(p.tipFilterWithHeader, headerPoint)
	}

	p.updateFilterTimingResults(p.tipFilterWithHeader)
	return true
}

// setBlockTimeError prepares the tip filter for the passed tip and finalizes
// the timing error results for the candidate header time.
func (p *retargetPid) setBlockTimeError(pIndex HeaderCtx, headerTime int64) bool {
	if !p.updateIndexTipFilter(pIndex) {
		return false
	}
	result := p.calcBlockTimeErrors(headerTime)
	p.lastCalculationTime = headerTime
	return result
}

// updateOutput recomputes the controller output for the passed tip and
// candidate header time if anything relevant changed since the previous
// call.  Returns false when the output could not be calculated, in which
// case the result is set to the minimum difficulty.
func (p *retargetPid) updateOutput(pIndex HeaderCtx, headerTime int64) bool {
	if !p.isUpdateRequired(pIndex, headerTime) {
		return true
	}

	if !p.chargeIntegrator(pIndex) || !p.setBlockTimeError(pIndex, headerTime) {
		p.targetAfterLimits.Set(p.powLimit)
		return false
	}

	if pIndex.Height() > p.hardfork2Height {
		p.propGain = pidProportionalGain2
		p.integrationTime = pidIntegratorTime2
		p.integGain = pidIntegratorGain2
		p.derivGain = pidDerivativeGain2
	}

	// Short term errors show up as a correction to the time output through
	// the P and D terms.  The integrator settles the output at the
	// setpoint.
	p.proportionalTerm = p.propGain * p.spacingError
	p.integratorTerm = (p.integratorBlockTime-float64(targetSpacing))*
		p.integGain + float64(targetSpacing)
	p.derivativeTerm = p.derivGain * p.rateOfChange
	p.pidOutputTime = p.proportionalTerm + p.integratorTerm + p.derivativeTerm

	// Convert the output back into a whole number of seconds so it can be
	// used with the uint256 math.  The integrator value dominates, so the
	// output should be positive, but a high gain against a very large
	// instantaneous error could drive it negative.  The uint256 math must
	// not multiply by anything smaller than 1 second.
	p.outputTime = roundToInt64(p.pidOutputTime)
	p.targetBeforeLimits.Set(&p.prevDiffCalculated)
	if p.outputTime < 1 {
		p.outputTime = 1
		p.pidOutputTime = 1.0
		p.pidOutputLimited = true
	} else {
		p.pidOutputLimited = false
	}

	p.targetBeforeLimits.MulUint64(uint64(p.outputTime))
	p.targetBeforeLimits.DivUint64(targetSpacing)

	// Place limits on the amount of change allowed, based on the most
	// recent past blocks and the bounds set by the software.
	p.difficultyLimited = p.limitOutputDifficultyChange(&p.targetAfterLimits,
		&p.targetBeforeLimits, p.powLimit, pIndex)
	return true
}

// limitOutputDifficultyChange bounds the calculated target against the
// anchors derived from the tip filter, writing the bounded target to result
// and reporting whether bounding activated.
//
// Difficulty is inverse to the target value: a smaller target is harder.
// The anchors cap how fast difficulty can rise, while a run of slow blocks
// forces it down so the chain cannot stall after a large hash rate drop.
func (p *retargetPid) limitOutputDifficultyChange(result, calculated, powLimit *uint256.Uint256, pIndex HeaderCtx) bool {
	const (
		intervalForceDiffDecrease    = 3 * targetSpacing
		interval2ForceDiffDecrease   = 5 * targetSpacing
		intervalForceExtDiffDecrease = 10 * targetSpacing
	)

	lastBlockIndexTime := pIndex.Timestamp()
	timeSinceLastBlock := p.lastCalculationTime - lastBlockIndexTime

	prev := pIndex.Parent()
	if prev == nil || prev.Parent() == nil {
		// Not enough history for the spacing checks; only the absolute
		// limit applies.
		result.Set(calculated)
		if result.Gt(powLimit) {
			result.Set(powLimit)
			return true
		}
		return false
	}
	previousBlockIndexTime := prev.Timestamp()

	// Note the final relaxation pass below keys off this walked-back node.
	prev = prev.Parent()
	beforePreviousBlockIndexTime := prev.Timestamp()

	lastBlockSpace := lastBlockIndexTime - previousBlockIndexTime
	last2BlockSpace := lastBlockIndexTime - beforePreviousBlockIndexTime

	// Assume limits need to be applied to the result.
	limited := true

	if calculated.Lt(&p.prevDiffForLimitsLast) {
		// The new difficulty is an increase over the last block.
		if calculated.Lt(&p.diffAtMaxIncreaseTip) {
			// Cap the increase at the partial tip average.  A smaller
			// number is more difficult.
			result.Set(&p.diffAtMaxIncreaseTip)
			if lastBlockSpace >= intervalForceDiffDecrease {
				// The previous block was slow: force a decrease to the
				// max decrease value calculated from the last block.
				result.Set(&p.diffAtMaxDecreaseLast)
			}
		} else {
			// The calculated increase did not hit the upper moving
			// average from the partial tip.
			result.Set(calculated)
			limited = false
			if lastBlockSpace >= intervalForceDiffDecrease {
				limited = true
				result.Set(&p.diffAtMaxDecreaseTip)
				if result.Gt(&p.diffAtMaxDecreaseLast) {
					// Easier than the decrease computed from the last
					// block; keep the higher difficulty of the two.
					result.Set(&p.diffAtMaxDecreaseLast)
				}
			}
		}
	} else {
		// The new difficulty is a decrease from the last block.
		if calculated.Gt(&p.diffAtMaxDecreaseLast) &&
			lastBlockSpace < intervalForceDiffDecrease &&
			last2BlockSpace < interval2ForceDiffDecrease {

			// Cap the decrease for a subsequent block mined on time.
			result.Set(&p.diffAtMaxDecreaseLast)
			if result.Gt(&p.diffAtMaxDecreaseTip) &&
				lastBlockSpace < targetSpacing {
				// The decrease went below the partial tip average and
				// the previous block was quick, so jump back up to the
				// average.  A slow previous block keeps the lower
				// difficulty instead, ensuring a rapid decrease after a
				// huge hash drop while quick blocks snap it back.
				result.Set(&p.diffAtMaxDecreaseTip)
			}
		} else {
			if calculated.Gt(&p.diffAtMaxDecreaseTip) &&
				lastBlockSpace < targetSpacing {

				// Below the partial tip average with a quick previous
				// block: cap at the average.
				result.Set(&p.diffAtMaxDecreaseTip)
			} else {
				if lastBlockSpace >= intervalForceDiffDecrease ||
					last2BlockSpace >= interval2ForceDiffDecrease {
					// A very slow block activates this twice through the
					// second interval.
					result.Set(&p.diffAtMaxDecreaseLast)
				} else {
					result.Set(calculated)
					limited = false
				}
			}
		}
	}

	// A long wait since the last block relaxes the result down to the
	// partial tip decrease anchor in the second era.
	if result.Lt(&p.diffAtMaxDecreaseTip) &&
		timeSinceLastBlock >= intervalForceExtDiffDecrease &&
		prev.Height() > p.hardfork2Height {

		result.Set(&p.diffAtMaxDecreaseTip)
		limited = true
	}

	// Lastly, the difficulty may never be less than the absolute limit.
	// NextWorkRequired returns the limiter result without checking it again,
	// so this is the only place the controller output is held to the limit.
	if result.Gt(powLimit) {
		result.Set(powLimit)
		limited = true
	}
	return limited
}
