// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package sink

import (
	"encoding/binary"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ClusterCockpit/cc-probius/pkg/bufpool"
)

func TestRunVoidSinkReleasesPages(t *testing.T) {
	pool := bufpool.NewPool(16, 1, 2)
	pg1 := pool.Get()
	pg2 := pool.Get()
	require.NotNil(t, pg1)
	require.NotNil(t, pg2)
	assert.Equal(t, 2, pool.Outstanding())

	served := false
	flush := func() []*bufpool.Page {
		if served {
			return nil
		}
		served = true
		return []*bufpool.Page{pg1, pg2}
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		RunVoidSink(flush, stop)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return pool.Outstanding() == 0
	}, time.Second, 5*time.Millisecond)

	close(stop)
	<-done
}

func TestFlusherSendsPagesToReceiver(t *testing.T) {
	pool := bufpool.NewPool(16, 1, 2)
	pg := pool.Get()
	require.NotNil(t, pg)

	sender, receiver := bufpool.NewQueue(4)
	flusher := NewFlusher(func() []*bufpool.Page { return []*bufpool.Page{pg} }, sender)
	flusher.Flush()

	got, ok := receiver.Recv()
	assert.True(t, ok)
	assert.Same(t, pg, got)
}

// TestTCPSinkHandshakeAndFrame implements §6's TCP sink framing: a
// handshake frame first, then one page with its headroom overwritten by
// the u16 LE payload length.
func TestTCPSinkHandshakeAndFrame(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	received := make(chan []byte, 1)
	acceptDone := make(chan struct{})
	go func() {
		defer close(acceptDone)
		conn, err := ln.Accept()
		if err != nil {
			return
		}
		defer conn.Close()

		buf := make([]byte, 4096)
		total := 0
		// Read until the peer closes or we time out; the test only
		// needs the bytes that arrived before the sink shuts down.
		conn.SetReadDeadline(time.Now().Add(2 * time.Second))
		for {
			n, err := conn.Read(buf[total:])
			total += n
			if err != nil {
				break
			}
		}
		received <- buf[:total]
	}()

	pool := bufpool.NewPool(16, 1, 2)
	pg := pool.Get()
	require.NotNil(t, pg)
	payload := []byte{9, 9, 9, 9}
	copy(pg.SliceMut(TCPSinkHeadroom, TCPSinkHeadroom+len(payload)), payload)
	pg.MarkComplete(uint32(TCPSinkHeadroom + len(payload)))

	sender, receiver := bufpool.NewQueue(4)
	sender.Send(pg)

	tcpSink := NewTCPSink("test-app", ln.Addr().String())
	stop := make(chan struct{})
	go tcpSink.Run(receiver, stop)

	var all []byte
	select {
	case all = <-received:
	case <-time.After(2 * time.Second):
		t.Fatal("did not receive any data from tcp sink")
	}
	close(stop)
	<-acceptDone

	require.GreaterOrEqual(t, len(all), 2)
	handshakeLen := int(binary.LittleEndian.Uint16(all[0:2]))
	require.GreaterOrEqual(t, len(all), 2+handshakeLen+2+len(payload))

	frameStart := 2 + handshakeLen
	pageLen := int(binary.LittleEndian.Uint16(all[frameStart : frameStart+2]))
	assert.Equal(t, len(payload), pageLen)
	assert.Equal(t, payload, all[frameStart+2:frameStart+2+len(payload)])
}
