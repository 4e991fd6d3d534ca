// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package arena implements the append-only arena backing aggregator
// graph nodes (spec §4.2): push-only, insert-order indexed, with stable
// references until the owning arena is released.
//
// Storage is a slice of pointers to separately allocated fixed-size
// blocks (blockSize slots each); growing that slice copies only the
// block pointers, never the blocks themselves. Because Go's garbage
// collector never relocates heap objects, a pointer into a block's
// slot array is already a stable address for as long as the block is
// reachable — no unsafe pointer arithmetic is required to get the
// "StablePtr<T>" the source's arena needs raw pointers for.
package arena

const blockSize = 8

type block[T any] struct {
	slots [blockSize]T
}

// Arena is a single-threaded, append-only container of T. The zero
// value is ready to use.
type Arena[T any] struct {
	blocks []*block[T]
	count  int
}

// Push appends item and returns a pointer to its stored copy. That
// pointer remains valid — dereferenceable and stable in address — until
// Release is called, matching the source's invariant that pushed items
// are never moved.
func (a *Arena[T]) Push(item T) *T {
	blockIdx := a.count / blockSize
	slotIdx := a.count % blockSize

	if blockIdx == len(a.blocks) {
		a.blocks = append(a.blocks, &block[T]{})
	}

	b := a.blocks[blockIdx]
	b.slots[slotIdx] = item
	a.count++
	return &b.slots[slotIdx]
}

// Len returns the total number of items ever pushed.
func (a *Arena[T]) Len() int { return a.count }

// At returns a stable pointer to the item at insertion-order index i.
// i must be in [0, Len()).
func (a *Arena[T]) At(i int) *T {
	return &a.blocks[i/blockSize].slots[i%blockSize]
}

// Iter calls fn for every item in insertion order, stopping early if fn
// returns false.
func (a *Arena[T]) Iter(fn func(index int, item *T) bool) {
	for i := range a.count {
		if !fn(i, a.At(i)) {
			return
		}
	}
}

// Release is the single destructive bulk-free operation (§4.2):
// afterward, dereferencing any pointer obtained from this arena prior to
// Release is undefined — the caller must ensure no such pointer is used
// again. Release drops the arena's own references to every block so the
// garbage collector can reclaim blocks with no other live pointers.
func (a *Arena[T]) Release() {
	for i := range a.blocks {
		a.blocks[i] = nil
	}
	a.blocks = nil
	a.count = 0
}
