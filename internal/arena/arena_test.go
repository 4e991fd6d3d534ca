// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package arena

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestArenaPushReturnsStablePointers(t *testing.T) {
	var a Arena[int]
	var ptrs []*int
	for i := range 20 {
		ptrs = append(ptrs, a.Push(i))
	}

	assert.Equal(t, 20, a.Len())
	for i, p := range ptrs {
		assert.Equal(t, i, *p, "pointer at index %d must still read back its original value", i)
	}
}

func TestArenaPushAcrossBlockBoundary(t *testing.T) {
	var a Arena[int]
	// blockSize is 8; push enough to span three blocks.
	for i := range 17 {
		a.Push(i * 10)
	}
	assert.Equal(t, 17, a.Len())
	assert.Equal(t, 160, *a.At(16))
	assert.Equal(t, 0, *a.At(0))
}

func TestArenaIterIsInsertionOrder(t *testing.T) {
	var a Arena[string]
	words := []string{"a", "b", "c", "d"}
	for _, w := range words {
		a.Push(w)
	}

	var seen []string
	a.Iter(func(index int, item *string) bool {
		seen = append(seen, *item)
		return true
	})
	assert.Equal(t, words, seen)
}

func TestArenaIterStopsEarly(t *testing.T) {
	var a Arena[int]
	for i := range 10 {
		a.Push(i)
	}
	var seen []int
	a.Iter(func(index int, item *int) bool {
		seen = append(seen, *item)
		return index < 2
	})
	assert.Equal(t, []int{0, 1, 2}, seen)
}

func TestArenaReleaseResetsLen(t *testing.T) {
	var a Arena[int]
	for i := range 5 {
		a.Push(i)
	}
	a.Release()
	assert.Equal(t, 0, a.Len())

	a.Push(99)
	assert.Equal(t, 1, a.Len())
	assert.Equal(t, 99, *a.At(0))
}
