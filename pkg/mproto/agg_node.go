// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package mproto

// AggNode is the wire representation of one aggregator graph node.
// BranchNext/Next reference positions within the same enclosing nodes
// sequence.
type AggNode struct {
	Op         TraceOpAggregate
	BranchNext *uint16
	Next       *uint16
}

var AggNodeBaseLen = TraceOpAggregateBaseLen + (1 + 2) + (1 + 2)

func (n AggNode) encodeInto(dst []byte, scratch *scratchWriter) {
	opLen := TraceOpAggregateBaseLen
	n.Op.encodeInto(dst[0:opLen], scratch)

	branchDst := dst[opLen : opLen+3]
	if n.BranchNext != nil {
		putOptionHeader(branchDst[0:1], true)
		putU16(branchDst[1:3], *n.BranchNext)
	} else {
		putOptionHeader(branchDst[0:1], false)
	}

	nextDst := dst[opLen+3 : opLen+6]
	if n.Next != nil {
		putOptionHeader(nextDst[0:1], true)
		putU16(nextDst[1:3], *n.Next)
	} else {
		putOptionHeader(nextDst[0:1], false)
	}
}

func decodeAggNode(base []byte, scratch []byte) (AggNode, error) {
	if err := need(base, AggNodeBaseLen); err != nil {
		return AggNode{}, err
	}
	opLen := TraceOpAggregateBaseLen
	op, err := decodeTraceOpAggregate(base[0:opLen], scratch)
	if err != nil {
		return AggNode{}, err
	}

	branchPresent, err := getOptionHeader(base[opLen : opLen+1])
	if err != nil {
		return AggNode{}, err
	}
	var branchNext *uint16
	if branchPresent {
		v, err := getU16(base[opLen+1 : opLen+3])
		if err != nil {
			return AggNode{}, err
		}
		branchNext = &v
	}

	nextPresent, err := getOptionHeader(base[opLen+3 : opLen+4])
	if err != nil {
		return AggNode{}, err
	}
	var next *uint16
	if nextPresent {
		v, err := getU16(base[opLen+4 : opLen+6])
		if err != nil {
			return AggNode{}, err
		}
		next = &v
	}

	return AggNode{Op: op, BranchNext: branchNext, Next: next}, nil
}

// encodeNodeSeq writes a sequence of AggNode into scratch and returns
// the (offset, count) descriptor for the parent's inline slot.
//
// Node bases are built in a standalone buffer, not a region reserved
// directly out of scratch.buf: a node's own Label/Metric op appends its
// name to scratch.buf via encodeInto, and any append that grows
// scratch.buf detaches a previously-taken slice of it from the live
// backing array. Writing every node's fixed-size fields into bases first
// and only then appending the whole thing to scratch with a single
// putBytes means no slice of scratch.buf is ever held across a
// subsequent append.
func encodeNodeSeq(nodes []AggNode, scratch *scratchWriter) (offset, count uint32) {
	bases := make([]byte, len(nodes)*AggNodeBaseLen)
	for i, n := range nodes {
		n.encodeInto(bases[i*AggNodeBaseLen:(i+1)*AggNodeBaseLen], scratch)
	}
	offset, _ = scratch.putBytes(bases)
	return offset, uint32(len(nodes))
}

func decodeNodeSeq(scratch []byte, offset, count uint32) ([]AggNode, error) {
	region, err := scratchSlice(scratch, offset, count*uint32(AggNodeBaseLen))
	if err != nil {
		return nil, err
	}
	out := make([]AggNode, count)
	for i := range out {
		n, err := decodeAggNode(region[int(i)*AggNodeBaseLen:(int(i)+1)*AggNodeBaseLen], scratch)
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// encodeU32Seq writes a sequence of raw u32 counters into scratch.
func encodeU32Seq(vals []uint32, scratch *scratchWriter) (offset, count uint32) {
	offset, region := scratch.reserve(len(vals) * 4)
	for i, v := range vals {
		putU32(region[i*4:(i+1)*4], v)
	}
	return offset, uint32(len(vals))
}

func decodeU32Seq(scratch []byte, offset, count uint32) ([]uint32, error) {
	region, err := scratchSlice(scratch, offset, count*4)
	if err != nil {
		return nil, err
	}
	out := make([]uint32, count)
	for i := range out {
		v, _ := getU32(region[i*4 : (i+1)*4])
		out[i] = v
	}
	return out, nil
}

// encodeMetricSeq writes a sequence of MetricAggregate into scratch.
func encodeMetricSeq(vals []MetricAggregate, scratch *scratchWriter) (offset, count uint32) {
	offset, region := scratch.reserve(len(vals) * MetricAggregateBaseLen)
	for i, m := range vals {
		m.encodeInto(region[i*MetricAggregateBaseLen:(i+1)*MetricAggregateBaseLen], scratch)
	}
	return offset, uint32(len(vals))
}

func decodeMetricSeq(scratch []byte, offset, count uint32) ([]MetricAggregate, error) {
	region, err := scratchSlice(scratch, offset, count*uint32(MetricAggregateBaseLen))
	if err != nil {
		return nil, err
	}
	out := make([]MetricAggregate, count)
	for i := range out {
		m, err := decodeMetricAggregate(region[i*MetricAggregateBaseLen:(i+1)*MetricAggregateBaseLen], nil)
		if err != nil {
			return nil, err
		}
		out[i] = m
	}
	return out, nil
}
