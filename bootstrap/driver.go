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

// Package bootstrap owns the listener or connected socket for a pipeline, spawns one
// driver goroutine per connection, and runs that goroutine's processPipeline loop:
// fire transport_active, then repeatedly race a timeout against the next outbound
// queue item and the next inbound read until the socket or the shared shutdown signal
// ends the connection, then fire transport_inactive.
package bootstrap

import (
	"context"
	"io"
	"net"
	"sync"
	"time"

	"github.com/mervinkid/conduit/logging"
	"github.com/mervinkid/conduit/pipeline"
	"github.com/mervinkid/conduit/transport"
)

// MaxDuration caps how far a connection's next wakeup may be pushed into the future
// by PollTimeout, so a handler that never arms a deadline is still revisited daily.
const MaxDuration = 24 * time.Hour

const readBufferSize = 64 * 1024

// ConnHandler supplies the per-connection wiring a bootstrap variant needs but knows
// nothing about itself: how to build the finalized pipeline for one accepted/dialed
// socket, and what to do when it becomes active or goes inactive. Build receives the
// sink its pipeline's transport handler must be constructed with (via
// transport.NewAsyncTransportHandler) so that application writes route through the
// driver loop's outbound queue instead of hitting the socket directly. Handle is
// whatever Build returns alongside the pipeline -- typically a peer.Channel -- handed
// back uninterpreted to OnActive/OnInactive for bookkeeping such as ChannelGroup
// registration.
type ConnHandler struct {
	Build      func(transportCtx transport.TransportContext, sink transport.OutboundSink) (p *pipeline.Pipeline, handle interface{}, err error)
	OnActive   func(handle interface{})
	OnInactive func(handle interface{})
}

// readResult is what the dedicated reader goroutine hands back to the driver loop's
// select -- a blocking syscall has no other way to participate in one.
type readResult struct {
	n    int
	from net.Addr // datagram origin for UDP; always nil for TCP
	err  error
	buf  []byte
	ecn  *transport.EcnCodepoint // set only when reader is the ECN-aware UDP variant
}

// ecnAwareReader is implemented by ecnUDPConn; runReader type-asserts for it so the
// plain TCP/UDP readers pay nothing for a feature they don't have.
type ecnAwareReader interface {
	LastECN() (transport.EcnCodepoint, bool)
}

// runConnection drives one connection end to end: builds its pipeline, fires
// transport_active, runs the processPipeline select loop, fires transport_inactive,
// and releases wg's slot. It returns once the connection's driver goroutine should
// exit -- on done being closed, on EOF, or on a fatal read/write error.
func runConnection(
	reader transport.AsyncTransportRead,
	writer transport.AsyncTransportWrite,
	transportCtx transport.TransportContext,
	handler ConnHandler,
	done <-chan struct{},
	wg *sync.WaitGroup,
) {
	defer wg.Done()

	sink := newConnSink(writer)
	p, handle, err := handler.Build(transportCtx, sink)
	if err != nil {
		logging.Warn("bootstrap: [%s] pipeline build failed for %s cause %s", transportCtx.ConnID, peerString(transportCtx), err.Error())
		sink.Close()
		return
	}

	p.TransportActive()
	if handler.OnActive != nil {
		handler.OnActive(handle)
	}

	readCh := make(chan readResult)
	stopReader := make(chan struct{})
	go runReader(reader, readCh, stopReader)
	defer close(stopReader)

	processPipeline(p, sink, readCh, done)

	p.TransportInactive()
	if handler.OnInactive != nil {
		handler.OnInactive(handle)
	}
}

// runReader blocks on reader.Read in a loop, handing every result to readCh. It exits
// after the first error or zero-byte read, or immediately if told to stop.
func runReader(reader transport.AsyncTransportRead, readCh chan<- readResult, stop <-chan struct{}) {
	ecnReader, _ := reader.(ecnAwareReader)
	for {
		buf := make([]byte, readBufferSize)
		n, from, err := reader.Read(context.Background(), buf)
		res := readResult{n: n, from: from, err: err, buf: buf}
		if ecnReader != nil {
			if cp, ok := ecnReader.LastECN(); ok {
				res.ecn = &cp
			}
		}
		select {
		case readCh <- res:
		case <-stop:
			return
		}
		if err != nil || n == 0 {
			return
		}
	}
}

// processPipeline is the connection's event loop for its entire lifetime: compute a
// deadline, let handlers pull it in via PollTimeout, fire HandleTimeout immediately if
// that deadline has already passed, otherwise race a timer against the done signal,
// the outbound queue's notify channel, and the next inbound read.
func processPipeline(p *pipeline.Pipeline, sink *connSink, readCh <-chan readResult, done <-chan struct{}) {
	transportCtx := p.Transport()

	for {
		now := time.Now()
		eto := now.Add(MaxDuration)
		p.PollTimeout(&eto)

		if !eto.After(now) {
			p.HandleTimeout(now)
			continue
		}

		timer := time.NewTimer(eto.Sub(now))
		select {
		case <-done:
			timer.Stop()
			return

		case t := <-timer.C:
			p.HandleTimeout(t)

		case <-sink.notify:
			timer.Stop()
			if err := sink.flush(func(werr error) {
				logging.Warn("bootstrap: [%s] write to %s dropped cause %s", transportCtx.ConnID, peerString(transportCtx), werr.Error())
			}); err != nil {
				logging.Warn("bootstrap: [%s] write to %s failed cause %s", transportCtx.ConnID, peerString(transportCtx), err.Error())
				return
			}

		case res, ok := <-readCh:
			timer.Stop()
			if !ok {
				return
			}
			if res.err != nil {
				if res.err == io.EOF {
					p.ReadEOF()
				} else {
					p.ReadException(res.err)
				}
				return
			}
			if res.n == 0 {
				p.ReadEOF()
				return
			}
			msgTransport := transportCtx
			if res.from != nil {
				msgTransport.PeerAddr = res.from
			}
			chunk := make([]byte, res.n)
			copy(chunk, res.buf[:res.n])
			p.Read(transport.TaggedBytesMut{
				Now:       time.Now(),
				Transport: msgTransport,
				Ecn:       res.ecn,
				Message:   chunk,
			})
		}
	}
}

func peerString(ctx transport.TransportContext) string {
	if ctx.PeerAddr != nil {
		return ctx.PeerAddr.String()
	}
	return "unknown"
}
