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

package bootstrap

import (
	"context"
	"net"
	"sync"

	"golang.org/x/net/ipv4"
	"golang.org/x/net/ipv6"

	"github.com/mervinkid/conduit/transport"
)

// ecnUDPConn wraps a *net.UDPConn with per-datagram ECN codepoint access via
// golang.org/x/net/ipv4 or ipv6 control messages, picked by the local address family.
// It satisfies transport.AsyncTransportRead/Write like the plain transport.UDPConn,
// plus an extra LastECN the driver loop consults after every read.
type ecnUDPConn struct {
	conn *net.UDPConn
	v4   *ipv4.PacketConn
	v6   *ipv6.PacketConn

	writeMu sync.Mutex

	mu      sync.Mutex
	lastECN transport.EcnCodepoint
	lastSet bool
}

func newECNUDPConn(conn *net.UDPConn) (*ecnUDPConn, error) {
	e := &ecnUDPConn{conn: conn}
	if isIPv6Addr(conn.LocalAddr()) {
		e.v6 = ipv6.NewPacketConn(conn)
		if err := e.v6.SetControlMessage(ipv6.FlagTrafficClass, true); err != nil {
			return nil, err
		}
	} else {
		e.v4 = ipv4.NewPacketConn(conn)
		if err := e.v4.SetControlMessage(ipv4.FlagTOS, true); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func isIPv6Addr(addr net.Addr) bool {
	udpAddr, ok := addr.(*net.UDPAddr)
	return ok && udpAddr.IP.To4() == nil
}

func (e *ecnUDPConn) LocalAddr() net.Addr { return e.conn.LocalAddr() }

// PeerAddr reports false, mirroring the plain UDP transport: even a DialUDP'd socket
// is treated here as peer-less, and every write must carry an explicit target.
func (e *ecnUDPConn) PeerAddr() (net.Addr, bool) { return nil, false }

// Read reports the datagram's origin address and records its ECN codepoint (if any)
// for LastECN, which the driver loop consults right after this call returns --
// safe because only the bootstrap's single reader goroutine ever calls Read here.
func (e *ecnUDPConn) Read(_ context.Context, p []byte) (int, net.Addr, error) {
	if e.v6 != nil {
		n, cm, src, err := e.v6.ReadFrom(p)
		if cm != nil {
			e.recordECN(uint8(cm.TrafficClass))
		} else {
			e.clearECN()
		}
		return n, src, err
	}
	n, cm, src, err := e.v4.ReadFrom(p)
	if cm != nil {
		e.recordECN(cm.TOS)
	} else {
		e.clearECN()
	}
	return n, src, err
}

func (e *ecnUDPConn) recordECN(tosOrTrafficClass uint8) {
	cp, ok := transport.EcnCodepointFromBits(tosOrTrafficClass)
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSet = ok
	if ok {
		e.lastECN = cp
	}
}

func (e *ecnUDPConn) clearECN() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.lastSet = false
}

// LastECN returns the ECN codepoint observed on the most recently completed Read.
func (e *ecnUDPConn) LastECN() (transport.EcnCodepoint, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.lastECN, e.lastSet
}

// Write requires target, same as the plain UDP transport -- a datagram socket here
// never has an implicit destination, connected or not. No ECN codepoint is set on
// outbound datagrams: the control message passed to WriteTo is nil.
func (e *ecnUDPConn) Write(_ context.Context, p []byte, target net.Addr) (int, error) {
	if target == nil {
		return 0, transport.ErrNotConnected
	}
	udpAddr, ok := target.(*net.UDPAddr)
	if !ok {
		resolved, err := net.ResolveUDPAddr("udp", target.String())
		if err != nil {
			return 0, err
		}
		udpAddr = resolved
	}

	e.writeMu.Lock()
	defer e.writeMu.Unlock()
	if e.v6 != nil {
		return e.v6.WriteTo(p, nil, udpAddr)
	}
	return e.v4.WriteTo(p, nil, udpAddr)
}

func (e *ecnUDPConn) Close() error {
	return e.conn.Close()
}

var (
	_ transport.AsyncTransportRead  = (*ecnUDPConn)(nil)
	_ transport.AsyncTransportWrite = (*ecnUDPConn)(nil)
)
