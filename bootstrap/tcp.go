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
	"errors"
	"net"
	"sync"

	"github.com/google/uuid"
	"github.com/mervinkid/conduit/logging"
	"github.com/mervinkid/conduit/misc"
	"github.com/mervinkid/conduit/net/tcp/bind"
	"github.com/mervinkid/conduit/net/tcp/config"
	"github.com/mervinkid/conduit/transport"
)

// ErrNoConnHandler is returned by Start/Connect when Handler.Build is nil --
// bootstrapping without a pipeline factory is a configuration mistake.
var ErrNoConnHandler = errors.New("bootstrap: ConnHandler.Build is nil")

// TCPServer owns a TCP listener and spawns one driver goroutine (per the
// processPipeline loop) for every accepted connection, via a ParallelAcceptor.
type TCPServer struct {
	Config  config.ServerConfig
	Handler ConnHandler

	mu       sync.RWMutex
	running  bool
	acceptor bind.Acceptor
	wg       sync.WaitGroup
	done     chan struct{}
}

// Start binds the configured address and begins accepting connections. Safe to call
// once; a second call while already running is a no-op.
func (s *TCPServer) Start() error {
	if s.Handler.Build == nil {
		return ErrNoConnHandler
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.running {
		return nil
	}

	addr := &net.TCPAddr{IP: s.Config.IP, Port: s.Config.Port}
	listener, err := net.ListenTCP("tcp", addr)
	if err != nil {
		return err
	}

	s.done = make(chan struct{})
	parallelism := s.Config.AcceptorSize
	if parallelism == 0 {
		parallelism = 1
	}

	s.acceptor = bind.NewParallelAcceptor(bind.AcceptorProp{
		Parallelism: parallelism,
		Listener:    listener,
		AcceptCallback: func(conn net.Conn) {
			s.handleAccept(conn)
		},
	})
	if err := s.acceptor.Start(); err != nil {
		return err
	}
	s.running = true
	return nil
}

func (s *TCPServer) handleAccept(conn net.Conn) {
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		config.TryApplyTCPConfig(&s.Config.TCPConfig, tcpConn)
	}
	connID := uuid.New().String()
	logging.Trace("bootstrap: [%s] accepted connection from %s", connID, conn.RemoteAddr().String())

	wrapped := transport.NewTCPConn(conn)
	transportCtx := transport.TransportContext{LocalAddr: wrapped.LocalAddr(), PeerAddr: conn.RemoteAddr(), ConnID: connID}

	s.wg.Add(1)
	go runConnection(wrapped, wrapped, transportCtx, s.Handler, s.done, &s.wg)
}

// Stop closes the listener, broadcasts the shutdown signal to every driver goroutine,
// and blocks until all of them have returned.
func (s *TCPServer) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	if misc.LifecycleCheckRun(s.acceptor) {
		misc.LifecycleStop(s.acceptor)
	}
	close(s.done)
	s.running = false
	s.mu.Unlock()

	s.wg.Wait()
}

// IsRunning reports whether the listener is currently accepting.
func (s *TCPServer) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// Sync blocks until every driver goroutine spawned by this server has returned.
func (s *TCPServer) Sync() {
	s.wg.Wait()
}

// TCPClient dials a single TCP connection and drives it with the same
// processPipeline loop a server uses for each of its accepted connections.
type TCPClient struct {
	Config  config.ClientConfig
	Handler ConnHandler

	mu      sync.RWMutex
	running bool
	done    chan struct{}
	wg      sync.WaitGroup
}

// Connect dials the configured remote address and starts the connection's driver
// goroutine. Returns once the socket is connected; the pipeline runs in the
// background until the peer disconnects or Stop is called.
func (c *TCPClient) Connect() error {
	if c.Handler.Build == nil {
		return ErrNoConnHandler
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		return nil
	}

	remoteAddr := &net.TCPAddr{IP: c.Config.IP, Port: c.Config.Port}
	dialer := net.Dialer{Timeout: c.Config.Timeout}
	conn, err := dialer.Dial("tcp", remoteAddr.String())
	if err != nil {
		return err
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		config.TryApplyTCPConfig(&c.Config.TCPConfig, tcpConn)
	}

	wrapped := transport.NewTCPConn(conn)
	connID := uuid.New().String()
	transportCtx := transport.TransportContext{LocalAddr: wrapped.LocalAddr(), PeerAddr: conn.RemoteAddr(), ConnID: connID}
	logging.Trace("bootstrap: [%s] connected to %s", connID, conn.RemoteAddr().String())

	c.done = make(chan struct{})
	c.wg.Add(1)
	go runConnection(wrapped, wrapped, transportCtx, c.Handler, c.done, &c.wg)

	c.running = true
	return nil
}

// Stop signals the client's driver goroutine to exit and blocks until it returns.
func (c *TCPClient) Stop() {
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
func (c *TCPClient) IsRunning() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.running
}

// Sync blocks until the client's driver goroutine has returned.
func (c *TCPClient) Sync() {
	c.wg.Wait()
}
