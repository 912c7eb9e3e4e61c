// Copyright (c) 2013-2017 The btcsuite developers
// Copyright (c) 2015-2021 The Decred developers
// Copyright (c) 2024 The Anoncoin developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package blockchain implements Anoncoin difficulty retargeting consensus rules.

Anoncoin has changed the way the next required proof of work is computed
several times over its life.  The active algorithm is selected by block
height:

  - The original algorithm, itself with two historical mode switches
  - The classic Kimoto gravity well
  - A lookup table driven reformulation of the gravity well
  - A discrete PID controller observing the chain tip

The retarget engine is consensus critical.  Every node must compute bit
identical results for any chain height, so the historical quirks of each era
are preserved exactly, including ones the original authors documented as
mistakes.

The engine reads block headers through the HeaderCtx interface and never
takes ownership of them.  All mutable controller state is owned by a Retarget
instance and serialized by a single lock, making every exported entry point
safe for concurrent access.
*/
package blockchain
