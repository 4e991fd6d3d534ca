// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// This file implements TraceOpAggregate: the closed, tag-byte-addressed
// union of aggregator-graph node payloads. Go has no native tagged
// union, so the owned form is a struct carrying a Kind discriminant plus
// only the fields that kind uses; on the wire it still follows the
// tag-byte + max-pad layout (§4.1) so consumers can index node arrays by
// fixed stride regardless of which variant occupies a slot.
package mproto

// TraceOpKind is the tag byte of a TraceOpAggregate.
type TraceOpKind uint8

const (
	OpCreateSource TraceOpKind = iota
	OpDeleteSource
	OpCall
	OpPushScope
	OpPopScope
	OpBranchStart
	OpBranchEnd
	OpLabel
	OpTag
	OpMetric
	OpChannelSend
	OpChannelReceive
	OpChannelTransfer
	OpGlobalChannelSend
	OpGlobalChannelReceive
	OpGlobalChannelTransfer
	opKindCount
)

func (k TraceOpKind) valid() bool { return k < opKindCount }

func (k TraceOpKind) String() string {
	names := [...]string{
		"CreateSource", "DeleteSource", "Call", "PushScope", "PopScope",
		"BranchStart", "BranchEnd", "Label", "Tag", "Metric",
		"ChannelSend", "ChannelReceive", "ChannelTransfer",
		"GlobalChannelSend", "GlobalChannelReceive", "GlobalChannelTransfer",
	}
	if int(k) < len(names) {
		return names[k]
	}
	return "Unknown"
}

// variantBaseLen is the inline payload size of each TraceOpKind,
// excluding the tag byte.
var variantBaseLen = [...]int{
	OpCreateSource:            0,
	OpDeleteSource:            0,
	OpCall:                    SourceIdBaseLen,         // source
	OpPushScope:               0,
	OpPopScope:                0,
	OpBranchStart:             2,                       // branch_end: u16
	OpBranchEnd:               2,                       // parent_branch_end: u16
	OpLabel:                   8,                       // label: string descriptor
	OpTag:                     0,
	OpMetric:                  8 + 2,                   // name: string descriptor, index: u16
	OpChannelSend:             SourceIdBaseLen,          // channel
	OpChannelReceive:          SourceIdBaseLen,          // channel
	OpChannelTransfer:         2 * SourceIdBaseLen,      // from, to
	OpGlobalChannelSend:       GlobalSourceIdBaseLen,    // channel
	OpGlobalChannelReceive:    GlobalSourceIdBaseLen,    // channel
	OpGlobalChannelTransfer:   2 * GlobalSourceIdBaseLen, // from, to
}

func maxVariantBaseLen() int {
	m := 0
	for _, n := range variantBaseLen {
		if n > m {
			m = n
		}
	}
	return m
}

// TraceOpAggregateBaseLen = 1 (tag) + max(BASE_LEN(variant_i)).
var TraceOpAggregateBaseLen = 1 + maxVariantBaseLen()

// TraceOpAggregate is the equality/hash key for a TraceOp, stripped of
// per-instance data. Only the fields relevant to Kind are meaningful;
// callers build it as a struct literal, setting Kind to one of the Op*
// constants and filling in the fields that kind uses.
type TraceOpAggregate struct {
	Kind TraceOpKind

	// OpCall
	CallSource SourceId

	// OpBranchStart
	BranchEnd uint16

	// OpBranchEnd
	ParentBranchEnd uint16

	// OpLabel
	Label string

	// OpMetric
	MetricName  string
	MetricIndex uint16

	// OpChannelSend / OpChannelReceive
	Channel SourceId

	// OpChannelTransfer
	From SourceId
	To   SourceId

	// OpGlobalChannelSend / OpGlobalChannelReceive
	GlobalChannel GlobalSourceId

	// OpGlobalChannelTransfer
	GlobalFrom GlobalSourceId
	GlobalTo   GlobalSourceId
}

// Equal implements the aggregator's ingest-time equality key (§4.5):
// metric/label ops compare by name/label only, channel ops by kind+ids
// with any per-instance version already stripped by construction.
func (a TraceOpAggregate) Equal(b TraceOpAggregate) bool {
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case OpCall:
		return a.CallSource == b.CallSource
	case OpBranchStart, OpBranchEnd:
		// BranchEnd/ParentBranchEnd are aggregator-assigned node indices,
		// not per-instance data the recorder supplies — they never
		// participate in the match.
		return true
	case OpLabel:
		return a.Label == b.Label
	case OpMetric:
		return a.MetricName == b.MetricName
	case OpChannelSend, OpChannelReceive:
		return a.Channel == b.Channel
	case OpChannelTransfer:
		return a.From == b.From && a.To == b.To
	case OpGlobalChannelSend, OpGlobalChannelReceive:
		return a.GlobalChannel == b.GlobalChannel
	case OpGlobalChannelTransfer:
		return a.GlobalFrom == b.GlobalFrom && a.GlobalTo == b.GlobalTo
	default:
		return true // CreateSource, DeleteSource, PushScope, PopScope, Tag
	}
}

func (v TraceOpAggregate) encodeInto(dst []byte, scratch *scratchWriter) {
	dst[0] = byte(v.Kind)
	payload := dst[1:]

	switch v.Kind {
	case OpCall:
		v.CallSource.encodeInto(payload[0:8], scratch)
	case OpBranchStart:
		putU16(payload[0:2], v.BranchEnd)
	case OpBranchEnd:
		putU16(payload[0:2], v.ParentBranchEnd)
	case OpLabel:
		off, length := scratch.putString(v.Label)
		putU32(payload[0:4], off)
		putU32(payload[4:8], length)
	case OpMetric:
		off, length := scratch.putString(v.MetricName)
		putU32(payload[0:4], off)
		putU32(payload[4:8], length)
		putU16(payload[8:10], v.MetricIndex)
	case OpChannelSend, OpChannelReceive:
		v.Channel.encodeInto(payload[0:8], scratch)
	case OpChannelTransfer:
		v.From.encodeInto(payload[0:8], scratch)
		v.To.encodeInto(payload[8:16], scratch)
	case OpGlobalChannelSend, OpGlobalChannelReceive:
		v.GlobalChannel.encodeInto(payload[0:16], scratch)
	case OpGlobalChannelTransfer:
		v.GlobalFrom.encodeInto(payload[0:16], scratch)
		v.GlobalTo.encodeInto(payload[16:32], scratch)
	}
	// Remaining bytes out to TraceOpAggregateBaseLen-1 are left zero by
	// virtue of dst having been allocated zeroed.
}

func decodeTraceOpAggregate(base []byte, scratch []byte) (TraceOpAggregate, error) {
	if err := need(base, TraceOpAggregateBaseLen); err != nil {
		return TraceOpAggregate{}, err
	}
	kind := TraceOpKind(base[0])
	if !kind.valid() {
		return TraceOpAggregate{}, ErrBadTag
	}
	payload := base[1:]
	out := TraceOpAggregate{Kind: kind}

	switch kind {
	case OpCall:
		src, err := decodeSourceId(payload[0:8], scratch)
		if err != nil {
			return TraceOpAggregate{}, err
		}
		out.CallSource = src
	case OpBranchStart:
		v, err := getU16(payload[0:2])
		if err != nil {
			return TraceOpAggregate{}, err
		}
		out.BranchEnd = v
	case OpBranchEnd:
		v, err := getU16(payload[0:2])
		if err != nil {
			return TraceOpAggregate{}, err
		}
		out.ParentBranchEnd = v
	case OpLabel:
		off, _ := getU32(payload[0:4])
		length, _ := getU32(payload[4:8])
		b, err := scratchSlice(scratch, off, length)
		if err != nil {
			return TraceOpAggregate{}, err
		}
		out.Label = string(b)
	case OpMetric:
		off, _ := getU32(payload[0:4])
		length, _ := getU32(payload[4:8])
		b, err := scratchSlice(scratch, off, length)
		if err != nil {
			return TraceOpAggregate{}, err
		}
		out.MetricName = string(b)
		idx, err := getU16(payload[8:10])
		if err != nil {
			return TraceOpAggregate{}, err
		}
		out.MetricIndex = idx
	case OpChannelSend, OpChannelReceive:
		ch, err := decodeSourceId(payload[0:8], scratch)
		if err != nil {
			return TraceOpAggregate{}, err
		}
		out.Channel = ch
	case OpChannelTransfer:
		from, err := decodeSourceId(payload[0:8], scratch)
		if err != nil {
			return TraceOpAggregate{}, err
		}
		to, err := decodeSourceId(payload[8:16], scratch)
		if err != nil {
			return TraceOpAggregate{}, err
		}
		out.From, out.To = from, to
	case OpGlobalChannelSend, OpGlobalChannelReceive:
		ch, err := decodeGlobalSourceId(payload[0:16], scratch)
		if err != nil {
			return TraceOpAggregate{}, err
		}
		out.GlobalChannel = ch
	case OpGlobalChannelTransfer:
		from, err := decodeGlobalSourceId(payload[0:16], scratch)
		if err != nil {
			return TraceOpAggregate{}, err
		}
		to, err := decodeGlobalSourceId(payload[16:32], scratch)
		if err != nil {
			return TraceOpAggregate{}, err
		}
		out.GlobalFrom, out.GlobalTo = from, to
	}

	return out, nil
}
