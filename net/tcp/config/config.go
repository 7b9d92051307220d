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

// Package config holds the plain data structs used to configure a TCP server or
// client bootstrap, plus the socket-option knobs applied to an accepted/dialed
// net.TCPConn.
package config

import (
	"net"
	"time"
)

// TCPConfig carries the net.TCPConn-level socket options applied to every connection
// a server accepts or a client dials. KeepAlive and NoDelay are always applied (false
// turns the option off); KeepAlivePeriod (only with KeepAlive) and Linger are applied
// only when greater than zero.
type TCPConfig struct {
	KeepAlive       bool
	KeepAlivePeriod time.Duration
	NoDelay         bool
	Linger          int // >0: seconds; 0 or negative: SO_LINGER is left untouched.
}

// TryApplyTCPConfig applies cfg's socket options to conn, ignoring any option whose
// underlying syscall fails -- a connection that can't set TCP_NODELAY is still usable,
// just slower, and failing the whole accept/dial over it would be the wrong tradeoff.
func TryApplyTCPConfig(cfg *TCPConfig, conn *net.TCPConn) {
	if cfg == nil || conn == nil {
		return
	}
	_ = conn.SetKeepAlive(cfg.KeepAlive)
	if cfg.KeepAlive && cfg.KeepAlivePeriod > 0 {
		_ = conn.SetKeepAlivePeriod(cfg.KeepAlivePeriod)
	}
	_ = conn.SetNoDelay(cfg.NoDelay)
	if cfg.Linger > 0 {
		_ = conn.SetLinger(cfg.Linger)
	}
}

// ServerConfig configures a TCP server bootstrap: the address to bind and the
// per-connection socket options to apply to every accepted connection.
type ServerConfig struct {
	TCPConfig
	IP           net.IP
	Port         int
	AcceptorSize uint8 // number of parallel accept goroutines; 0 defaults to 1.
}

// ClientConfig configures a TCP client bootstrap: the remote address to dial, the
// dial timeout, and the per-connection socket options to apply once connected.
type ClientConfig struct {
	TCPConfig
	IP      net.IP
	Port    int
	Timeout time.Duration
}

// UDPConfig configures a UDP server or client bootstrap.
type UDPConfig struct {
	IP   net.IP
	Port int
	// ECN, when true, has the bootstrap read the IP-header ECN codepoint of each inbound
	// datagram using golang.org/x/net/ipv4 and ipv6 socket options. Outbound datagrams
	// are sent without an ECN codepoint.
	ECN bool
}
