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

// Package transport defines the async read/write contract a pipeline's transport
// handler is built on, plus the byte carrier (TaggedBytesMut) that flows between
// the bootstrap's I/O loop and the pipeline.
package transport

import (
	"context"
	"errors"
	"net"
	"time"
)

// EcnCodepoint is the two-bit IP header field used for congestion-aware transport.
type EcnCodepoint uint8

// ECN codepoints. The zero value does not appear here: it means "not ECN-capable"
// and is represented by the (EcnCodepoint, false) return of EcnCodepointFromBits.
const (
	EcnEct1 EcnCodepoint = 0b01
	EcnEct0 EcnCodepoint = 0b10
	EcnCe   EcnCodepoint = 0b11
)

// EcnCodepointFromBits extracts the ECN codepoint from the low two bits of b.
// The second return value is false when the low two bits are 0b00 (not-ECT).
func EcnCodepointFromBits(b uint8) (EcnCodepoint, bool) {
	switch b & 0b11 {
	case uint8(EcnEct1):
		return EcnEct1, true
	case uint8(EcnEct0):
		return EcnEct0, true
	case uint8(EcnCe):
		return EcnCe, true
	default:
		return 0, false
	}
}

// TransportContext identifies the local and (if known) peer endpoints of a connection.
// Copyable value type; the zero value has a nil LocalAddr/PeerAddr.
type TransportContext struct {
	LocalAddr net.Addr
	PeerAddr  net.Addr // nil when unknown (TCP read origin) or not yet connected.
	ConnID    string    // stamped by the bootstrap variant that accepted/dialed the connection.
}

// TaggedBytesMut is the canonical inbound/outbound carrier for byte-level transports.
type TaggedBytesMut struct {
	Now       time.Time
	Transport TransportContext
	Ecn       *EcnCodepoint // set only by the ECN-aware UDP bootstrap variant.
	Message   []byte
}

// ErrNotConnected is returned by AsyncTransportWrite.Write when a datagram transport
// is asked to write without a target address.
var ErrNotConnected = errors.New("transport: target address required for this write")

// TransportAddress exposes the local/peer addresses of a transport endpoint.
type TransportAddress interface {
	LocalAddr() net.Addr
	// PeerAddr returns the peer address and true if the transport has a fixed peer
	// (a connected TCP socket); for a UDP socket it returns (nil, false).
	PeerAddr() (net.Addr, bool)
}

// AsyncTransportRead is the read half of an async transport. For TCP, from is always
// nil (the peer is fixed); for UDP it is the datagram's origin address.
type AsyncTransportRead interface {
	TransportAddress
	Read(ctx context.Context, p []byte) (n int, from net.Addr, err error)
}

// AsyncTransportWrite is the write half of an async transport. UDP requires target;
// TCP ignores it.
type AsyncTransportWrite interface {
	TransportAddress
	Write(ctx context.Context, p []byte, target net.Addr) (n int, err error)
}
