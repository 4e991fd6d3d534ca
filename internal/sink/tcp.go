// Copyright (C) NHR@FAU, University Erlangen-Nuremberg.
// All rights reserved. This file is part of cc-probius.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.
package sink

import (
	"encoding/binary"
	"math/rand"
	"net"
	"time"

	"github.com/ClusterCockpit/cc-probius/pkg/bufpool"
	"github.com/ClusterCockpit/cc-probius/pkg/mproto"
	"github.com/ClusterCockpit/cc-probius/pkg/tracelog"
)

const reconnectBackoff = 1 * time.Second

// TCPSinkHeadroom is the number of bytes every page must reserve at its
// start for the sink's own u16 length prefix (§6 point 3).
const TCPSinkHeadroom = 2

// TCPSink streams completed pages to a remote address, framing each with
// a 2-byte little-endian length prefix written into the page's reserved
// headroom. Pages are pulled from a bufpool.Receiver whose Sender side
// the caller feeds from internal/probius's Flush.
type TCPSink struct {
	appName        string
	addr           string
	handshakeFrame []byte
}

// NewTCPSink prepares a sink for addr, pre-encoding the handshake frame
// once (the session id is random per process, not per reconnect — the
// source re-sends the same handshake on every reconnect attempt).
func NewTCPSink(appName, addr string) *TCPSink {
	handshake := mproto.SinkHandshake{
		AppName:     appName,
		SessionIdHi: rand.Uint64(),
		SessionIdLo: rand.Uint64(),
	}
	encoded := handshake.Encode()

	frame := make([]byte, 2+len(encoded))
	binary.LittleEndian.PutUint16(frame[0:2], uint16(len(encoded)))
	copy(frame[2:], encoded)

	return &TCPSink{appName: appName, addr: addr, handshakeFrame: frame}
}

// Run connects to s.addr and streams pages from receiver until stop is
// closed, reconnecting with a 1s backoff on any failure (§6 TCP sink
// framing, points 1 and 4). It never returns early on a write error —
// only a closed stop channel or a closed receiver ends the loop.
func (s *TCPSink) Run(receiver bufpool.Receiver, stop <-chan struct{}) {
	for {
		select {
		case <-stop:
			return
		default:
		}

		conn, err := net.Dial("tcp", s.addr)
		if err != nil {
			tracelog.Warnf("probius tcp sink: connect to %s failed: %v", s.addr, err)
			if !sleepOrStop(reconnectBackoff, stop) {
				return
			}
			continue
		}

		tracelog.Infof("probius tcp sink: connected to %s", s.addr)
		if _, err := conn.Write(s.handshakeFrame); err != nil {
			tracelog.Warnf("probius tcp sink: handshake write failed: %v", err)
			conn.Close()
			if !sleepOrStop(reconnectBackoff, stop) {
				return
			}
			continue
		}

		if !s.drainUntilError(conn, receiver, stop) {
			conn.Close()
			return
		}
		conn.Close()

		if !sleepOrStop(reconnectBackoff, stop) {
			return
		}
	}
}

// drainUntilError writes pages from receiver to conn until a write fails
// or stop closes. It returns false when stop is closed or receiver has
// been closed (the caller should not reconnect); a write failure returns
// true so Run reconnects.
func (s *TCPSink) drainUntilError(conn net.Conn, receiver bufpool.Receiver, stop <-chan struct{}) bool {
	for {
		select {
		case <-stop:
			return false
		case pg, ok := <-receiver.Chan():
			if !ok {
				return false
			}
			if !s.writePage(conn, pg) {
				return true
			}
		}
	}
}

// writePage overwrites the page's reserved headroom with the payload
// length and writes the frame to conn, always releasing the page
// afterward (§6 point 3/4, §7 "TCP write failure").
func (s *TCPSink) writePage(conn net.Conn, pg *bufpool.Page) bool {
	defer pg.Release()

	completeLen := int(pg.CompleteBufferLen())
	payloadLen := completeLen - TCPSinkHeadroom
	binary.LittleEndian.PutUint16(pg.SliceMut(0, 2), uint16(payloadLen))

	if _, err := conn.Write(pg.Slice(0, completeLen)); err != nil {
		tracelog.Warnf("probius tcp sink: write failed, reconnecting: %v", err)
		return false
	}
	return true
}

func sleepOrStop(d time.Duration, stop <-chan struct{}) bool {
	select {
	case <-time.After(d):
		return true
	case <-stop:
		return false
	}
}
