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
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/mervinkid/conduit/net/tcp/config"
	"github.com/mervinkid/conduit/transport"
)

// UDPServer owns a single UDP socket and drives it with exactly one
// processPipeline-loop goroutine: there is no per-peer demultiplexing, one pipeline
// handles every datagram arriving on the socket, and handlers inspect
// TaggedBytesMut.Transport.PeerAddr to tell peers apart.
type UDPServer struct {
	Config  config.UDPConfig
	Handler ConnHandler

	mu      sync.RWMutex
	running bool
	conn    *net.UDPConn
	done    chan struct{}
	wg      sync.WaitGroup
}

// Start binds the configured UDP address and starts the single driver goroutine.
func (s *UDPServer) Start() error {
	if s.Handler.Build == nil {
		return ErrNoConnHandler
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	addr := &net.UDPAddr{IP: s.Config.IP, Port: s.Config.Port}
	conn, err := net.ListenUDP("udp", addr)
	if err != nil {
		return err
	}

	s.conn = conn
	s.done = make(chan struct{})

	var reader transport.AsyncTransportRead
	var writer transport.AsyncTransportWrite
	if s.Config.ECN {
		ecnConn, ecnErr := newECNUDPConn(conn)
		if ecnErr != nil {
			_ = conn.Close()
			return ecnErr
		}
		reader, writer = ecnConn, ecnConn
	} else {
		wrapped := transport.NewUDPConn(conn)
		reader, writer = wrapped, wrapped
	}

	transportCtx := transport.TransportContext{LocalAddr: conn.LocalAddr(), ConnID: uuid.New().String()}
	s.wg.Add(1)
	go runConnection(reader, writer, transportCtx, s.Handler, s.done, &s.wg)

	s.running = true
	return nil
}

// Stop signals the driver goroutine to exit and blocks until it returns.
func (s *UDPServer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	close(s.done)
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
}

// IsRunning reports whether the socket is currently bound and running.
func (s *UDPServer) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Sync blocks until the driver goroutine has returned.
func (s *UDPServer) Sync() {
	s.wg.Wait()
}

// UDPClient dials (connects) a single UDP socket to one remote peer and drives it
// with the same processPipeline loop the server uses.
type UDPClient struct {
	Config  config.UDPConfig
	Remote  *net.UDPAddr
	Handler ConnHandler

	mu      sync.RWMutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// Connect creates a connected UDP socket to c.Remote and starts its driver goroutine.
func (c *UDPClient) Connect() error {
	if c.Handler.Build == nil {
		return ErrNoConnHandler
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}

	localAddr := &net.UDPAddr{IP: c.Config.IP, Port: c.Config.Port}
	conn, err := net.DialUDP("udp", localAddr, c.Remote)
	if err != nil {
		return err
	}

	var reader transport.AsyncTransportRead
	var writer transport.AsyncTransportWrite
	if c.Config.ECN {
		ecnConn, ecnErr := newECNUDPConn(conn)
		if ecnErr != nil {
			_ = conn.Close()
			return ecnErr
		}
		reader, writer = ecnConn, ecnConn
	} else {
		wrapped := transport.NewUDPConn(conn)
		reader, writer = wrapped, wrapped
	}

	transportCtx := transport.TransportContext{LocalAddr: conn.LocalAddr(), PeerAddr: c.Remote, ConnID: uuid.New().String()}

	c.done = make(chan struct{})
	c.wg.Add(1)
	go runConnection(reader, writer, transportCtx, c.Handler, c.done, &c.wg)

	c.running = true
	return nil
}

// Stop signals the client's driver goroutine to exit and blocks until it returns.
func (c *UDPClient) Stop() {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return
	}
	close(c.done)
	c.running = false
	c.mu.Unlock()

	c.wg.Wait()
}

// IsRunning reports whether the client currently owns a connected socket.
func (c *UDPClient) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Sync blocks until the client's driver goroutine has returned.
func (c *UDPClient) Sync() {
	c.wg.Wait()
}
