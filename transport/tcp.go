// The MIT License (MIT)
//
// Copyright (c) 2018 Mervin
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in all
// copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
// SOFTWARE.

package transport

import (
	"context"
	"net"
	"sync"
)

// TCPConn adapts a net.Conn to AsyncTransportRead/AsyncTransportWrite. Read is only
// ever called from the bootstrap's connection-reader goroutine. Write is called by the
// bootstrap driver loop as it drains the outbound queue; writes serialize through
// writeMu to keep one frame's bytes from interleaving with another's on the wire.
type TCPConn struct {
	conn    net.Conn
	writeMu sync.Mutex
}

// NewTCPConn wraps conn for use as both the read and write half of a TCP pipeline.
func NewTCPConn(conn net.Conn) *TCPConn {
	return &TCPConn{conn: conn}
}

func (t *TCPConn) LocalAddr() net.Addr {
	return t.conn.LocalAddr()
}

// PeerAddr always reports a fixed peer for a connected TCP socket.
func (t *TCPConn) PeerAddr() (net.Addr, bool) {
	return t.conn.RemoteAddr(), true
}

// Read reports a nil origin: the peer of a TCP stream never varies per read.
func (t *TCPConn) Read(_ context.Context, p []byte) (int, net.Addr, error) {
	n, err := t.conn.Read(p)
	return n, nil, err
}

// Write ignores target: a connected TCP socket has exactly one peer.
func (t *TCPConn) Write(_ context.Context, p []byte, _ net.Addr) (int, error) {
	t.writeMu.Lock()
	defer t.writeMu.Unlock()
	return t.conn.Write(p)
}

func (t *TCPConn) Close() error {
	return t.conn.Close()
}
