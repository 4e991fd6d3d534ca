// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package query

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClusterCockpit/cc-probius/pkg/mproto"
)

func encodedCreateSourceBuf(t *testing.T, name string, recurring bool) []byte {
	t.Helper()
	body := mproto.CreateSource{Name: name, IsRecurring: recurring}.Encode()
	header := mproto.EventHeader{
		Id:   mproto.EventId{Source: mproto.SourceId{Source: 1}, TimestampNanos: 100},
		Len:  uint16(len(body)),
		Kind: mproto.EventKindCreateSource,
	}.Encode()
	return append(header, body...)
}

func TestCompileInvalidExpressionErrors(t *testing.T) {
	_, err := Compile("name +")
	assert.Error(t, err)
}

func TestCompileNonBoolExpressionErrors(t *testing.T) {
	_, err := Compile(`"hello"`)
	assert.Error(t, err)
}

func TestMatchOnNameField(t *testing.T) {
	buf := encodedCreateSourceBuf(t, "worker", true)
	scanner := mproto.NewEventScanner(buf)
	require.True(t, scanner.Scan())
	ev := scanner.Event()

	f, err := Compile(`name == "worker" && isRecurring`)
	require.NoError(t, err)

	matched, err := f.Match(ev)
	require.NoError(t, err)
	assert.True(t, matched)
}

func TestMatchFalseWhenFieldDiffers(t *testing.T) {
	buf := encodedCreateSourceBuf(t, "worker", false)
	scanner := mproto.NewEventScanner(buf)
	require.True(t, scanner.Scan())
	ev := scanner.Event()

	f, err := Compile(`isRecurring`)
	require.NoError(t, err)

	matched, err := f.Match(ev)
	require.NoError(t, err)
	assert.False(t, matched)
}

func TestSelectFiltersAcrossMultipleEvents(t *testing.T) {
	var buf []byte
	buf = append(buf, encodedCreateSourceBuf(t, "worker-a", true)...)
	buf = append(buf, encodedCreateSourceBuf(t, "worker-b", false)...)

	f, err := Compile(`kind == "CreateSource" && isRecurring`)
	require.NoError(t, err)

	events, err := Select(buf, f)
	require.NoError(t, err)
	require.Len(t, events, 1)

	body, err := mproto.DecodeCreateSource(events[0].Body)
	require.NoError(t, err)
	assert.Equal(t, "worker-a", body.Name)
}
