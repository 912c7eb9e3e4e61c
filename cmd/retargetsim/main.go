// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// retargetsim replays the difficulty retargeting engine against a synthetic
// chain.  Given an assumed network hash rate it projects how long each block
// takes to mine from its work proof, feeds the resulting timestamps back
// into the engine, and prints the difficulty it would require block by
// block.  This makes it possible to evaluate controller settings without
// spending real hash power.
package main

import (
	"encoding/binary"
	"fmt"
	"os"
	"strconv"

	"github.com/decred/dcrd/chaincfg/chainhash"
	"github.com/decred/slog"
	flags "github.com/jessevdk/go-flags"
	"github.com/jrick/logrotate/rotator"

	"github.com/anoncoin/anond/blockchain"
	"github.com/anoncoin/anond/blockchain/standalone"
	"github.com/anoncoin/anond/chaincfg"
	"github.com/anoncoin/anond/math/uint256"
)

// config defines the configuration options for retargetsim.
//
// The retargetpid options mirror the configuration keys the full node
// consumes, so settings proven out here transfer directly.
type config struct {
	TestNet       bool    `long:"testnet" description:"Simulate the test network instead of the main network"`
	SimNet        bool    `long:"simnet" description:"Simulate the simulation network instead of the main network"`
	HashRate      float64 `long:"hashrate" description:"Assumed network hash rate in GH/s"`
	Blocks        int64   `long:"blocks" description:"Number of blocks to simulate"`
	StartHeight   int64   `long:"startheight" description:"Height of the synthetic chain tip the simulation starts from"`
	StartBits     string  `long:"startbits" description:"Compact difficulty (hex) of the synthetic history"`
	History       int64   `long:"history" description:"Number of uniformly spaced history blocks to synthesize ahead of the start height"`
	LogFile       string  `long:"logfile" description:"Write retarget engine logs to this file (rotated)"`
	DebugLevel    string  `long:"debuglevel" description:"Logging level {trace, debug, info, warn, error, critical}"`
	TipFilter     int32   `long:"retargetpid.tipfilterblocks" description:"Number of blocks in the tip filter (minimum 5)"`
	UseHeader     bool    `long:"retargetpid.useheader" description:"Include the candidate header time in the timing errors"`
	StartingDiff  float64 `long:"retargetpid.startingdiff" description:"Test network starting difficulty divisor"`
	MaxDiffInc    int32   `long:"retargetpid.maxdiffincrease" description:"Maximum difficulty increase percent (minimum 101)"`
	MaxDiffDec    int32   `long:"retargetpid.maxdiffdecrease" description:"Maximum difficulty decrease percent (minimum 101)"`
	RetargetCSV   bool    `long:"retargetpid.retargetcsv" description:"Emit per-retarget CSV rows"`
	DiffCurves    bool    `long:"retargetpid.diffcurves" description:"Emit per-retarget projection curves"`
	LogAllBlocks  bool    `long:"retargetpid.logallblocks" description:"CSV rows for every block"`
	LogDiffLimits bool    `long:"retargetpid.logdifflimits" description:"Include limit columns in the CSV"`
	DataDir       string  `long:"datadir" description:"Directory to write CSV diagnostics to"`
}

// simNode is a minimal block index node backing the synthetic chain.  It
// satisfies blockchain.HeaderCtx.
type simNode struct {
	parent    *simNode
	height    int32
	timestamp int64
	bits      uint32
	chainWork uint256.Uint256
}

func (n *simNode) Height() int32              { return n.height }
func (n *simNode) Timestamp() int64           { return n.timestamp }
func (n *simNode) Bits() uint32               { return n.bits }
func (n *simNode) ChainWork() uint256.Uint256 { return n.chainWork }

func (n *simNode) Parent() blockchain.HeaderCtx {
	if n.parent == nil {
		return nil
	}
	return n.parent
}

// PowHash returns a synthetic hash derived from the node height.  The
// simulation never validates proof of work, so the hash only needs to be
// unique per node.
func (n *simNode) PowHash() chainhash.Hash {
	var hash chainhash.Hash
	binary.LittleEndian.PutUint32(hash[:4], uint32(n.height))
	return hash
}

// appendBlock extends the synthetic chain with a block carrying the given
// bits and timestamp.
func appendBlock(tip *simNode, bits uint32, timestamp int64) *simNode {
	node := &simNode{
		parent:    tip,
		height:    tip.height + 1,
		timestamp: timestamp,
		bits:      bits,
	}
	work := standalone.CalcWork(bits)
	node.chainWork.Set(&tip.chainWork).Add(&work)
	return node
}

// synthesizeHistory builds a chain of uniformly spaced blocks at the given
// bits so the tip filter and integrator have real history to observe.
func synthesizeHistory(startHeight, count int64, bits uint32, spacing int64, endTime int64) *simNode {
	genesis := &simNode{
		height:    int32(startHeight - count),
		timestamp: endTime - count*spacing,
		bits:      bits,
	}
	tip := genesis
	for tip.height < int32(startHeight) {
		tip = appendBlock(tip, bits, tip.timestamp+spacing)
	}
	return tip
}

func realMain() error {
	cfg := config{
		HashRate:      1.0,
		Blocks:        100,
		StartHeight:   600000,
		StartBits:     "1b0dd86a",
		History:       4200,
		DebugLevel:    "info",
		StartingDiff:  1.0,
		MaxDiffInc:    101,
		MaxDiffDec:    101,
		LogDiffLimits: true,
		DataDir:       ".",
	}
	if _, err := flags.Parse(&cfg); err != nil {
		// The flag parser prints its own usage message.
		if flagErr, ok := err.(*flags.Error); ok &&
			flagErr.Type == flags.ErrHelp {
			return nil
		}
		return err
	}
	if cfg.TestNet && cfg.SimNet {
		return fmt.Errorf("--testnet and --simnet are mutually exclusive")
	}

	params := chaincfg.MainNetParams()
	if cfg.TestNet {
		params = chaincfg.TestNetParams()
	}
	if cfg.SimNet {
		params = chaincfg.SimNetParams()
	}

	// Wire the retarget engine logs through a rotated log file when asked,
	// plain stdout otherwise.
	backendWriter := os.Stdout
	var logRotator *rotator.Rotator
	if cfg.LogFile != "" {
		var err error
		logRotator, err = rotator.New(cfg.LogFile, 10*1024, false, 3)
		if err != nil {
			return fmt.Errorf("failed to create log rotator: %w", err)
		}
		defer logRotator.Close()
	}
	backend := slog.NewBackend(&logWriter{stdout: backendWriter,
		rotator: logRotator})
	logger := backend.Logger("RTRG")
	level, ok := slog.LevelFromString(cfg.DebugLevel)
	if !ok {
		return fmt.Errorf("invalid debug level %q", cfg.DebugLevel)
	}
	logger.SetLevel(level)
	blockchain.UseLogger(logger)

	startBits64, err := strconv.ParseUint(cfg.StartBits, 16, 32)
	if err != nil {
		return fmt.Errorf("invalid start bits %q: %w", cfg.StartBits, err)
	}
	startBits := uint32(startBits64)
	if err := standalone.CheckProofOfWorkRange(startBits,
		params.PowLimit); err != nil {
		return fmt.Errorf("invalid start bits %q: %w", cfg.StartBits, err)
	}

	opts := &blockchain.RetargetOptions{
		TipFilterBlocks: cfg.TipFilter,
		UseHeader:       cfg.UseHeader,
		StartingDiff:    cfg.StartingDiff,
		MaxDiffIncrease: cfg.MaxDiffInc,
		MaxDiffDecrease: cfg.MaxDiffDec,
		RetargetCSV:     cfg.RetargetCSV,
		DiffCurves:      cfg.DiffCurves,
		LogAllBlocks:    cfg.LogAllBlocks,
		LogDiffLimits:   cfg.LogDiffLimits,
		DataDir:         cfg.DataDir,
	}
	retarget := blockchain.New(params, opts)

	targetSpacing := int64(params.TargetTimePerBlock.Seconds())
	tip := synthesizeHistory(cfg.StartHeight, cfg.History, startBits,
		targetSpacing, 1700000000)
	retarget.SetRetargetToBlock(tip)

	// Hash rate in hashes per second.
	hashRate := cfg.HashRate * 1e9
	if hashRate < 1 {
		return fmt.Errorf("hash rate must be at least 1 H/s")
	}

	fmt.Printf("|%12s|%12s|%16s|%14s|\n", "Height", "Bits", "Difficulty",
		"Time to block")
	fmt.Printf("|------------|------------|----------------|--------------|\n")

	var totalSeconds int64
	for i := int64(0); i < cfg.Blocks; i++ {
		// Mining templates stamp the candidate with the ideal next time.
		candidateTime := tip.timestamp + targetSpacing
		bits := retarget.NextWorkRequired(tip, candidateTime)

		// Project the time to mine from the work proof and the hash rate.
		work := standalone.CalcWork(bits)
		solveSeconds := int64(work.Float64() / hashRate)
		if solveSeconds < 1 {
			solveSeconds = 1
		}
		totalSeconds += solveSeconds

		target, _, _ := standalone.DiffBitsToUint256(bits)
		fmt.Printf("|%12d|%12x|%16.3f|%11dm%02ds|\n", tip.height+1, bits,
			standalone.LinearWork(&target, params.PowLimit),
			solveSeconds/60, solveSeconds%60)

		tip = appendBlock(tip, bits, tip.timestamp+solveSeconds)
		retarget.SetRetargetToBlock(tip)
	}

	blocksMined := tip.height - int32(cfg.StartHeight)
	if blocksMined > 0 {
		fmt.Printf("Mined %d blocks in %d seconds (~%d per block)\n",
			blocksMined, totalSeconds, totalSeconds/int64(blocksMined))
	}
	return nil
}

// logWriter tees the retarget engine log output to stdout and the rotated
// log file when one is configured.
type logWriter struct {
	stdout  *os.File
	rotator *rotator.Rotator
}

func (w *logWriter) Write(p []byte) (int, error) {
	w.stdout.Write(p)
	if w.rotator != nil {
		return w.rotator.Write(p)
	}
	return len(p), nil
}

func main() {
	if err := realMain(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
