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

package transport_test

import (
	"context"
	"net"
	"testing"
	"time"

	"github.com/mervinkid/conduit/pipeline"
	"github.com/mervinkid/conduit/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTCPConnReadWriteRoundTrip(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	serverConn := transport.NewTCPConn(server)
	clientConn := transport.NewTCPConn(client)

	n, err := clientConn.Write(context.Background(), []byte("hello"), nil)
	require.NoError(t, err)
	assert.Equal(t, 5, n)

	buf := make([]byte, 16)
	n, from, err := serverConn.Read(context.Background(), buf)
	require.NoError(t, err)
	assert.Nil(t, from)
	assert.Equal(t, "hello", string(buf[:n]))
}

func TestTCPConnPeerAddrIsFixed(t *testing.T) {
	server, client := net.Pipe()
	defer server.Close()
	defer client.Close()

	conn := transport.NewTCPConn(client)
	addr, ok := conn.PeerAddr()
	assert.True(t, ok)
	assert.Equal(t, client.RemoteAddr(), addr)
}

func TestUDPConnPeerAddrIsNeverFixed(t *testing.T) {
	laddr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	require.NoError(t, err)
	conn, err := net.ListenUDP("udp", laddr)
	require.NoError(t, err)
	defer conn.Close()

	u := transport.NewUDPConn(conn)
	_, ok := u.PeerAddr()
	assert.False(t, ok)
}

func TestUDPConnWriteRequiresTarget(t *testing.T) {
	laddr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	require.NoError(t, err)
	conn, err := net.ListenUDP("udp", laddr)
	require.NoError(t, err)
	defer conn.Close()

	u := transport.NewUDPConn(conn)
	_, err = u.Write(context.Background(), []byte("x"), nil)
	assert.ErrorIs(t, err, transport.ErrNotConnected)
}

func TestUDPConnReadWriteRoundTrip(t *testing.T) {
	laddr, err := net.ResolveUDPAddr("udp", "127.0.0.1:0")
	require.NoError(t, err)

	serverPC, err := net.ListenUDP("udp", laddr)
	require.NoError(t, err)
	defer serverPC.Close()

	clientPC, err := net.ListenUDP("udp", laddr)
	require.NoError(t, err)
	defer clientPC.Close()

	server := transport.NewUDPConn(serverPC)
	client := transport.NewUDPConn(clientPC)

	n, err := client.Write(context.Background(), []byte("ping"), serverPC.LocalAddr())
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	buf := make([]byte, 16)
	require.NoError(t, serverPC.SetReadDeadline(time.Now().Add(time.Second)))
	n, from, err := server.Read(context.Background(), buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf[:n]))
	assert.Equal(t, clientPC.LocalAddr().String(), from.String())
}

// fakeSink is a minimal transport.OutboundSink recording what the transport handler
// hands it, so NewAsyncTransportHandler's routing can be exercised without a real
// bootstrap driver loop.
type fakeSink struct {
	pushed []interface{}
	closed bool
}

func (s *fakeSink) Push(msg interface{}) { s.pushed = append(s.pushed, msg) }
func (s *fakeSink) Close()               { s.closed = true }

type captureExceptionHandler struct {
	pipeline.OutboundBase
	err error
}

func (h *captureExceptionHandler) Name() string                      { return "capture" }
func (h *captureExceptionHandler) Inbound() pipeline.InboundHandler   { return pipeline.InboundBase{} }
func (h *captureExceptionHandler) Outbound() pipeline.OutboundHandler { return h }

func (h *captureExceptionHandler) WriteException(_ *pipeline.OutboundContext, err error) {
	h.err = err
}

func buildTransportPipeline(t *testing.T, sink transport.OutboundSink) (*pipeline.Pipeline, *captureExceptionHandler) {
	t.Helper()
	capture := &captureExceptionHandler{}
	p := pipeline.New(transport.TransportContext{})
	require.NoError(t, p.AddBack(capture))
	require.NoError(t, p.AddBack(transport.NewAsyncTransportHandler("transport", sink)))
	require.NoError(t, p.Finalize())
	return p, capture
}

func TestAsyncTransportHandlerPushesBytesToSink(t *testing.T) {
	sink := &fakeSink{}
	p, _ := buildTransportPipeline(t, sink)

	p.Write([]byte("frame"))

	require.Len(t, sink.pushed, 1)
	assert.Equal(t, []byte("frame"), sink.pushed[0])
}

func TestAsyncTransportHandlerPushesTaggedBytesMutToSink(t *testing.T) {
	sink := &fakeSink{}
	p, _ := buildTransportPipeline(t, sink)

	tagged := transport.TaggedBytesMut{Message: []byte("datagram")}
	p.Write(tagged)

	require.Len(t, sink.pushed, 1)
	assert.Equal(t, tagged, sink.pushed[0])
}

func TestAsyncTransportHandlerRejectsUnknownMessageType(t *testing.T) {
	sink := &fakeSink{}
	p, capture := buildTransportPipeline(t, sink)

	p.Write(1234)

	assert.Empty(t, sink.pushed)
	assert.ErrorIs(t, capture.err, transport.ErrMessageTypeMismatch)
}

func TestAsyncTransportHandlerCloseClosesSink(t *testing.T) {
	sink := &fakeSink{}
	p, _ := buildTransportPipeline(t, sink)

	p.Close()

	assert.True(t, sink.closed)
}
