// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package mproto

import "math"

// MetricAggregate is the online min/sum/max/count accumulator for one
// metric slot. Identity() is the value a fresh slot, or one just reset
// by a flush, must hold.
type MetricAggregate struct {
	Count uint64
	Sum   int64
	Min   int64
	Max   int64
}

const MetricAggregateBaseLen = 8 + 8 + 8 + 8 // 32

// Identity returns the zero-value accumulator: count=0, sum=0,
// min=+maxInt, max=-maxInt, so that Update never needs a first-sample
// branch.
func Identity() MetricAggregate {
	return MetricAggregate{
		Count: 0,
		Sum:   0,
		Min:   math.MaxInt64,
		Max:   math.MinInt64,
	}
}

// Update folds value into the accumulator in place.
func (m *MetricAggregate) Update(value int64) {
	m.Count++
	m.Sum += value
	if value < m.Min {
		m.Min = value
	}
	if value > m.Max {
		m.Max = value
	}
}

// Reset returns the accumulator to Identity(), as flush_full does to
// every metric slot a node references.
func (m *MetricAggregate) Reset() {
	*m = Identity()
}

func (m MetricAggregate) encodeInto(dst []byte, _ *scratchWriter) {
	putU64(dst[0:8], m.Count)
	putI64(dst[8:16], m.Sum)
	putI64(dst[16:24], m.Min)
	putI64(dst[24:32], m.Max)
}

func decodeMetricAggregate(base []byte, _ []byte) (MetricAggregate, error) {
	if err := need(base, MetricAggregateBaseLen); err != nil {
		return MetricAggregate{}, err
	}
	count, _ := getU64(base[0:8])
	sum, _ := getI64(base[8:16])
	min, _ := getI64(base[16:24])
	max, _ := getI64(base[24:32])
	return MetricAggregate{Count: count, Sum: sum, Min: min, Max: max}, nil
}
