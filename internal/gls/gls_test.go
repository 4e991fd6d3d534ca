// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package gls

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlotGetSetClear(t *testing.T) {
	s := NewSlot[int]()
	_, ok := s.Get()
	assert.False(t, ok)

	s.Set(7)
	v, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, 7, v)

	s.Clear()
	_, ok = s.Get()
	assert.False(t, ok)
}

func TestSlotWithRestoresPriorValue(t *testing.T) {
	s := NewSlot[string]()
	s.Set("outer")

	s.With("inner", func() {
		v, ok := s.Get()
		assert.True(t, ok)
		assert.Equal(t, "inner", v)
	})

	v, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, "outer", v)
}

func TestSlotWithRestoresAbsenceWhenNoPriorValue(t *testing.T) {
	s := NewSlot[string]()

	s.With("inner", func() {
		v, ok := s.Get()
		assert.True(t, ok)
		assert.Equal(t, "inner", v)
	})

	_, ok := s.Get()
	assert.False(t, ok)
}

func TestSlotNestedWith(t *testing.T) {
	s := NewSlot[int]()
	s.With(1, func() {
		s.With(2, func() {
			v, _ := s.Get()
			assert.Equal(t, 2, v)
		})
		v, _ := s.Get()
		assert.Equal(t, 1, v, "lexical restore must pop back to the enclosing value")
	})
	_, ok := s.Get()
	assert.False(t, ok)
}

func TestSlotIsPerGoroutine(t *testing.T) {
	s := NewSlot[int]()
	s.Set(100)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, ok := s.Get()
		assert.False(t, ok, "a fresh goroutine must not see another goroutine's slot value")
		s.Set(200)
		v, _ := s.Get()
		assert.Equal(t, 200, v)
	}()
	wg.Wait()

	v, ok := s.Get()
	assert.True(t, ok)
	assert.Equal(t, 100, v, "this goroutine's value must be unaffected by the other goroutine")
}
