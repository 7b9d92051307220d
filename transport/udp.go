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

// UDPConn adapts a *net.UDPConn to AsyncTransportRead/AsyncTransportWrite. A single
// UDPConn is shared by every datagram the bootstrap's UDP server pipeline handles;
// peer demultiplexing, if any, is the application's job (see TaggedBytesMut.Transport.PeerAddr).
// writeMu serializes WriteToUDP calls the same way TCPConn serializes stream writes.
type UDPConn struct {
	conn    *net.UDPConn
	writeMu sync.Mutex
}

// NewUDPConn wraps conn for use as both the read and write half of a UDP pipeline.
func NewUDPConn(conn *net.UDPConn) *UDPConn {
	return &UDPConn{conn: conn}
}

func (u *UDPConn) LocalAddr() net.Addr {
	return u.conn.LocalAddr()
}

// PeerAddr reports false: a UDP socket has no fixed peer (even after net.DialUDP,
// the transport layer here always demultiplexes by the per-read origin address).
func (u *UDPConn) PeerAddr() (net.Addr, bool) {
	return nil, false
}

// Read reports the datagram's origin address.
func (u *UDPConn) Read(_ context.Context, p []byte) (int, net.Addr, error) {
	n, addr, err := u.conn.ReadFromUDP(p)
	return n, addr, err
}

// Write requires target: a UDP socket has no implicit destination.
func (u *UDPConn) Write(_ context.Context, p []byte, target net.Addr) (int, error) {
	if target == nil {
		return 0, ErrNotConnected
	}
	udpAddr, ok := target.(*net.UDPAddr)
	if !ok {
		resolved, err := net.ResolveUDPAddr("udp", target.String())
		if err != nil {
			return 0, err
		}
		udpAddr = resolved
	}
	u.writeMu.Lock()
	defer u.writeMu.Unlock()
	return u.conn.WriteToUDP(p, udpAddr)
}

func (u *UDPConn) Close() error {
	return u.conn.Close()
}
