// Copyright (c) 2014-2018 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package blockchain

import (
	"fmt"
	"math"
	"os"
	"path/filepath"

	"github.com/anoncoin/anond/blockchain/standalone"
	"github.com/anoncoin/anond/math/uint256"
)

// CalcNetworkHashPS returns the average network hashes per second based on
// the last lookup blocks ending at the passed node.  A minimum of 2 blocks
// is required; the result is zero when the index cannot support the
// calculation.
//
// Chain work proofs have already been calculated and live in the index, so
// the estimate is the work delta over the observed timespan, carefully
// scaled because the spacing count is one less than the block count.
func CalcNetworkHashPS(node HeaderCtx, lookup int32) int64 {
	if node == nil || node.Height() == 0 {
		return 0
	}

	// Anything less than 2 blocks will not be a very good calculation.
	if lookup < 2 {
		lookup = 2
	}
	if lookup > node.Height() {
		lookup = node.Height()
	}

	// Do not include the genesis block time, or the timespan is so large
	// the result calculates to zero.
	minTime := node.Timestamp()
	maxTime := minTime
	oldest := node
	for i := int32(1); i < lookup && oldest.Height() > 1; i++ {
		oldest = oldest.Parent()
		blockTime := oldest.Timestamp()
		if blockTime < minTime {
			minTime = blockTime
		}
		if blockTime > maxTime {
			maxTime = blockTime
		}
	}

	// Guard the divide when every sampled time is identical.
	if minTime == maxTime {
		return 0
	}

	workDiff := node.ChainWork()
	oldestWork := oldest.ChainWork()
	workDiff.Sub(&oldestWork)
	work := workDiff.Float64() / float64(lookup)
	timespan := float64(maxTime-minTime) / float64(lookup-1)
	return roundToInt64(work / timespan)
}

// runReports updates the controller output for the passed tip and candidate
// header values, logs the result, and appends rows to the diagnostic
// spreadsheets when they are enabled.
//
// Reporting is best-effort: failures are logged and never affect any
// consensus result.
//
// This function MUST be called with the retarget lock held (for writes).
func (r *Retarget) runReports(pIndex HeaderCtx, headerTime int64, headerBits uint32) {
	p := r.pid
	if !p.updateOutput(pIndex, headerTime) {
		return
	}

	currentSpacing := p.lastCalculationTime - pIndex.Timestamp()

	// Log the controller constants and the integrator precharge only the
	// first time they are computed.
	if p.retargetNewLog {
		log.Infof("RetargetPID-v3.0 NextWorkRequired for TargetSpacing=%d "+
			"using constants PropGain=%f, IntTime=%d, IntGain=%f and "+
			"DevGain=%f", targetSpacing, p.propGain, p.integrationTime,
			p.integGain, p.derivGain)
		log.Infof("Integrator charged for=%d days %02d:%02d:%02d with %d "+
			"samples. Actual BlockTime=%fsecs",
			p.integratorChargeTime/secondsPerDay,
			(p.integratorChargeTime%secondsPerDay)/3600,
			(p.integratorChargeTime%3600)/60, p.integratorChargeTime%60,
			p.blocksSampled, p.integratorBlockTime)
	}

	log.Debugf("RetargetPID charged to height=%d output terms P=%f I=%f "+
		"D=%f, ProofOfWork Required=0x%08x Header=0x%08x",
		p.integratorHeight, p.proportionalTerm, p.integratorTerm,
		p.derivativeTerm, standalone.Uint256ToDiffBits(&p.targetAfterLimits),
		headerBits)

	if p.pidOutputLimited {
		log.Debugf("RetargetPID NOTE: OutputTime %f was < 1 second, "+
			"out-of-range value set to %d", p.pidOutputTime, p.outputTime)
	}
	if p.difficultyLimited {
		log.Debugf("RetargetPID NOTE: Difficulty %08x was out of range and "+
			"set to limit %08x",
			standalone.Uint256ToDiffBits(&p.targetBeforeLimits),
			standalone.Uint256ToDiffBits(&p.targetAfterLimits))
	}

	if !r.opts.RetargetCSV {
		p.retargetNewLog = false
		return
	}

	csvPath := filepath.Join(r.opts.DataDir, "retarget.csv")
	csvFile, err := os.OpenFile(csvPath,
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Warnf("Unable to open retarget spreadsheet: %v", err)
		p.retargetNewLog = false
		return
	}
	defer csvFile.Close()

	if p.retargetNewLog {
		fmt.Fprintf(csvFile, "Height,IndexTime,BlockTime,Space,TipsAvg,<--,"+
			"SpaceErr,ICharge,IBlocks,RateOfChg,-->,PropTerm,IntTerm,"+
			"DerTerm,PIDout,")
		if r.opts.LogDiffLimits {
			fmt.Fprintf(csvFile, "LimPrev,LimUpDiff,LimDnDiff,")
		}
		fmt.Fprintf(csvFile, "PrevDiff,NewDiff,NetKHPS,PrevLog2,NewLog2,"+
			"ChainLog2,")
		if r.params.IsMainNetwork() &&
			pIndex.Height() <= difficultySwitchHeight4 {
			fmt.Fprintf(csvFile, "KgwDiff,KgwLog2,")
		}
		fmt.Fprintf(csvFile, "PID_Difficulty_as_256_bits\n")
		p.retargetNewLog = false
	}

	// Data rows are only written when LogAllBlocks is set; no checkpoint
	// height is consulted, so otherwise only the header line is written.
	if !r.opts.LogAllBlocks {
		return
	}

	// Repeated queries at the same tip and header time have nothing new to
	// say; skip the duplicate row.
	reportKey := uint64(uint32(p.integratorHeight))<<32 |
		uint64(uint32(p.lastCalculationTime))
	if r.reported.Contains(reportKey) {
		return
	}
	r.reported.Add(reportKey)

	powLimit := r.params.PowLimit
	var errFlags string
	if p.pidOutputLimited {
		errFlags += "+"
	}
	if p.difficultyLimited {
		errFlags += "*"
	}
	if errFlags == "" {
		errFlags = "ok"
	}

	fmt.Fprintf(csvFile, "%d,%d,%d,%d,%f,,%f,%d,%d,%f,%s,%f,%f,%f,%f,",
		p.integratorHeight, pIndex.Timestamp(), p.lastCalculationTime,
		currentSpacing, p.averageTipSpacing, p.spacingError,
		p.integratorChargeTime, p.blocksSampled, p.rateOfChange, errFlags,
		p.proportionalTerm, p.integratorTerm, p.derivativeTerm,
		p.pidOutputTime)
	if r.opts.LogDiffLimits {
		fmt.Fprintf(csvFile, "%f,%f,%f,",
			standalone.LinearWork(&p.prevDiffForLimitsLast, powLimit),
			standalone.LinearWork(&p.diffAtMaxIncreaseTip, powLimit),
			standalone.LinearWork(&p.diffAtMaxDecreaseTip, powLimit))
	}
	chainWork := pIndex.ChainWork()
	netKHPS := float64(CalcNetworkHashPS(pIndex, p.tipFilterBlocks)) / 1000.0
	fmt.Fprintf(csvFile, "%f,%f,%f,%f,%f,%f,",
		standalone.LinearWork(&p.prevDiffCalculated, powLimit),
		standalone.LinearWork(&p.targetAfterLimits, powLimit),
		netKHPS,
		standalone.Log2Work(&p.prevDiffCalculated),
		standalone.Log2Work(&p.targetAfterLimits),
		chainLog2(&chainWork))
	if r.params.IsMainNetwork() && pIndex.Height() <= difficultySwitchHeight4 {
		// The KGW value for work is simply the bits found in the current
		// block header.
		kgwDiff, _, _ := standalone.DiffBitsToUint256(headerBits)
		fmt.Fprintf(csvFile, "%f,%f,",
			standalone.LinearWork(&kgwDiff, powLimit),
			standalone.Log2Work(&kgwDiff))
	}
	fmt.Fprintf(csvFile, "\"0x%s\"\n", p.targetAfterLimits.String())

	if r.opts.DiffCurves {
		r.writeDiffCurves(pIndex)
	}
}

// chainLog2 returns the accumulated chain work on a logarithm scale.  Unlike
// targets, chain work is already a work proof, so it is logged directly.
func chainLog2(work *uint256.Uint256) float64 {
	f := work.Float64()
	if f == 0.0 {
		return 0.0
	}
	return math.Log(f) / math.Log(2.0)
}

// writeDiffCurves generates a predictive difficulty curve for the next new
// block: the PI and PID outputs are projected at sample times from the
// minimum allowed block time out to 7 intervals past the best time.
//
// This function MUST be called with the retarget lock held (for writes).
func (r *Retarget) writeDiffCurves(pIndex HeaderCtx) {
	p := r.pid
	curvePath := filepath.Join(r.opts.DataDir, "diffcurves.csv")
	csvFile, err := os.OpenFile(curvePath,
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		log.Warnf("Unable to open diffcurves spreadsheet: %v", err)
		return
	}
	defer csvFile.Close()

	if p.diffCurvesNewLog {
		fmt.Fprintf(csvFile, "Height,IndexTime,F,TipTime,Space,PTerm,ITerm,"+
			"DTerm,PIout,PIDout,PIlog2,PIDlog2,PIdiff,PIDdiff\n")
		p.diffCurvesNewLog = false
	}

	const secsPerSample = targetSpacing / 6
	powLimit := r.params.PowLimit
	minTime := calcPastMedianTime(pIndex) + 1
	lastBlockIndexTime := pIndex.Timestamp()
	nextBestBlockTime := lastBlockIndexTime + targetSpacing
	// 7 intervals past the best time.
	maxTime := lastBlockIndexTime + targetSpacing*8

	bestTimeDone := false
	actualTimeDone := false
	var fullLine bool
	var uintDiffPi, uintDiffPid, uintDiffCalc uint256.Uint256
	lastCalculationTime := p.lastCalculationTime

	for tipTime := minTime; tipTime <= maxTime; tipTime += secsPerSample {
		var timeOfCalc int64
		switch {
		case !bestTimeDone:
			timeOfCalc = nextBestBlockTime
			bestTimeDone = true
			fullLine = true
		case !actualTimeDone:
			timeOfCalc = lastCalculationTime
			actualTimeDone = true
			fullLine = true
		default:
			timeOfCalc = tipTime
		}

		p.calcBlockTimeErrors(timeOfCalc)
		proportionalCalc := p.propGain * p.spacingError
		derivativeCalc := p.derivGain * p.rateOfChange

		// Run the PI controller calculations.
		outputTimePi := roundToInt64(proportionalCalc + p.integratorTerm)
		if outputTimePi < 1 {
			outputTimePi = 1
		}
		uintDiffCalc.Set(&p.prevDiffCalculated)
		uintDiffCalc.MulUint64(uint64(outputTimePi))
		uintDiffCalc.DivUint64(targetSpacing)
		p.limitOutputDifficultyChange(&uintDiffPi, &uintDiffCalc, powLimit,
			pIndex)

		// Run the PID controller calculations.
		outputTimePid := roundToInt64(proportionalCalc + p.integratorTerm +
			derivativeCalc)
		if outputTimePid < 1 {
			outputTimePid = 1
		}
		uintDiffCalc.Set(&p.prevDiffCalculated)
		uintDiffCalc.MulUint64(uint64(outputTimePid))
		uintDiffCalc.DivUint64(targetSpacing)
		p.limitOutputDifficultyChange(&uintDiffPid, &uintDiffCalc, powLimit,
			pIndex)

		if fullLine {
			flag := "#"
			if actualTimeDone && timeOfCalc == lastCalculationTime {
				flag = "@"
			}
			fmt.Fprintf(csvFile, "%d,%d,%s,", p.integratorHeight,
				lastBlockIndexTime, flag)
			tipTime -= secsPerSample
			fullLine = false
		} else {
			fmt.Fprintf(csvFile, "%d,,,", p.integratorHeight)
		}
		fmt.Fprintf(csvFile, "%d,%d,%f,%f,%f,%d,%d,%f,%f,%f,%f\n",
			timeOfCalc, timeOfCalc-lastBlockIndexTime, proportionalCalc,
			p.integratorTerm, derivativeCalc, outputTimePi, outputTimePid,
			standalone.Log2Work(&uintDiffPi), standalone.Log2Work(&uintDiffPid),
			standalone.LinearWork(&uintDiffPi, powLimit),
			standalone.LinearWork(&uintDiffPid, powLimit))
	}

	// The curve sweep left the timing errors at the final sample time, so
	// recompute them for the real calculation time before returning.
	p.calcBlockTimeErrors(lastCalculationTime)
}
