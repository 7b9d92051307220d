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

package bootstrap_test

import (
	"net"
	"testing"
	"time"

	"github.com/mervinkid/conduit/bootstrap"
	"github.com/mervinkid/conduit/net/tcp/config"
	"github.com/mervinkid/conduit/pipeline"
	"github.com/mervinkid/conduit/transport"
	"github.com/stretchr/testify/require"
)

// freeTCPAddr reserves a loopback port by briefly binding to it and releasing it,
// so the server under test can bind the same address.
func freeTCPAddr(t *testing.T) *net.TCPAddr {
	t.Helper()
	lis, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := lis.Addr().(*net.TCPAddr)
	require.NoError(t, lis.Close())
	return addr
}

// echoConnHandler builds a minimal pipeline (transport handler only, no codec) and
// signals on active/inactive channels so a test can observe the driver goroutine's
// lifecycle without sleeping.
func echoConnHandler(active, inactive chan<- struct{}) bootstrap.ConnHandler {
	return bootstrap.ConnHandler{
		Build: func(transportCtx transport.TransportContext, sink transport.OutboundSink) (*pipeline.Pipeline, interface{}, error) {
			p := pipeline.New(transportCtx)
			if err := p.AddBack(transport.NewAsyncTransportHandler("transport", sink)); err != nil {
				return nil, nil, err
			}
			if err := p.Finalize(); err != nil {
				return nil, nil, err
			}
			return p, nil, nil
		},
		OnActive: func(interface{}) {
			active <- struct{}{}
		},
		OnInactive: func(interface{}) {
			inactive <- struct{}{}
		},
	}
}

// TestTCPServerStopJoinsDriverGoroutine proves Stop itself blocks until the
// connection's driver goroutine has returned -- by the time Stop returns,
// OnInactive must already have fired, with no separate Sync call required.
func TestTCPServerStopJoinsDriverGoroutine(t *testing.T) {
	addr := freeTCPAddr(t)
	active := make(chan struct{}, 1)
	inactive := make(chan struct{}, 1)

	server := &bootstrap.TCPServer{
		Config:  config.ServerConfig{IP: addr.IP, Port: addr.Port},
		Handler: echoConnHandler(active, inactive),
	}
	require.NoError(t, server.Start())
	defer server.Stop()

	conn, err := net.DialTimeout("tcp", addr.String(), time.Second)
	require.NoError(t, err)
	defer conn.Close()

	select {
	case <-active:
	case <-time.After(time.Second):
		t.Fatal("OnActive never fired")
	}

	server.Stop()

	select {
	case <-inactive:
	default:
		t.Fatal("OnInactive had not fired by the time Stop returned")
	}

	require.False(t, server.IsRunning())
}

// TestTCPClientStopJoinsDriverGoroutine is the client-side mirror of
// TestTCPServerStopJoinsDriverGoroutine.
func TestTCPClientStopJoinsDriverGoroutine(t *testing.T) {
	addr := freeTCPAddr(t)
	lis, err := net.ListenTCP("tcp", addr)
	require.NoError(t, err)
	defer lis.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, err := lis.Accept()
		if err == nil {
			accepted <- conn
		}
	}()

	active := make(chan struct{}, 1)
	inactive := make(chan struct{}, 1)
	client := &bootstrap.TCPClient{
		Config:  config.ClientConfig{IP: addr.IP, Port: addr.Port, Timeout: time.Second},
		Handler: echoConnHandler(active, inactive),
	}
	require.NoError(t, client.Connect())

	select {
	case <-active:
	case <-time.After(time.Second):
		t.Fatal("OnActive never fired")
	}

	var serverSide net.Conn
	select {
	case serverSide = <-accepted:
	case <-time.After(time.Second):
		t.Fatal("server never accepted")
	}
	defer serverSide.Close()

	client.Stop()

	select {
	case <-inactive:
	default:
		t.Fatal("OnInactive had not fired by the time Stop returned")
	}

	require.False(t, client.IsRunning())
}

// TestTCPServerStopIsIdempotent guards against a second Stop call (e.g. from a
// deferred cleanup after an explicit one) blocking or panicking.
func TestTCPServerStopIsIdempotent(t *testing.T) {
	addr := freeTCPAddr(t)
	active := make(chan struct{}, 1)
	inactive := make(chan struct{}, 1)

	server := &bootstrap.TCPServer{
		Config:  config.ServerConfig{IP: addr.IP, Port: addr.Port},
		Handler: echoConnHandler(active, inactive),
	}
	require.NoError(t, server.Start())

	done := make(chan struct{})
	go func() {
		server.Stop()
		server.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("second Stop call did not return")
	}
}
