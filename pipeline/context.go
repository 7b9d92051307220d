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

package pipeline

import (
	"sync"
	"time"

	"github.com/mervinkid/conduit/logging"
	"github.com/mervinkid/conduit/transport"
)

// InboundContext is the per-link node a handler's inbound half is invoked with. It
// embeds the link's OutboundContext so a handler can write/close mid-read without
// separately resolving its outbound peer (composition, not inheritance).
type InboundContext struct {
	mu   sync.Mutex
	name string

	next        *InboundContext
	nextHandler InboundHandler

	out *OutboundContext
}

// FireTransportActive forwards to the next inbound link, or logs at end of pipeline.
func (c *InboundContext) FireTransportActive() {
	if c.next == nil {
		logging.Trace("transport_active reached end of pipeline at %s", c.name)
		return
	}
	c.next.mu.Lock()
	defer c.next.mu.Unlock()
	c.nextHandler.TransportActive(c.next)
}

func (c *InboundContext) FireTransportInactive() {
	if c.next == nil {
		logging.Trace("transport_inactive reached end of pipeline at %s", c.name)
		return
	}
	c.next.mu.Lock()
	defer c.next.mu.Unlock()
	c.nextHandler.TransportInactive(c.next)
}

func (c *InboundContext) FireRead(msg interface{}) {
	if c.next == nil {
		logging.Trace("read reached end of pipeline at %s", c.name)
		return
	}
	c.next.mu.Lock()
	defer c.next.mu.Unlock()
	c.nextHandler.Read(c.next, msg)
}

func (c *InboundContext) FireReadException(err error) {
	if c.next == nil {
		logging.Warn("read_exception reached end of pipeline at %s: %v", c.name, err)
		return
	}
	c.next.mu.Lock()
	defer c.next.mu.Unlock()
	c.nextHandler.ReadException(c.next, err)
}

func (c *InboundContext) FireReadEOF() {
	if c.next == nil {
		logging.Trace("read_eof reached end of pipeline at %s", c.name)
		return
	}
	c.next.mu.Lock()
	defer c.next.mu.Unlock()
	c.nextHandler.ReadEOF(c.next)
}

func (c *InboundContext) FireReadTimeout(now time.Time) {
	if c.next == nil {
		logging.Trace("read_timeout reached end of pipeline at %s", c.name)
		return
	}
	c.next.mu.Lock()
	defer c.next.mu.Unlock()
	c.nextHandler.ReadTimeout(c.next, now)
}

func (c *InboundContext) FirePollTimeout(deadline *time.Time) {
	if c.next == nil {
		return
	}
	c.next.mu.Lock()
	defer c.next.mu.Unlock()
	c.nextHandler.PollTimeout(c.next, deadline)
}

// FireWrite enters the outbound chain at this link's own outbound predecessor -- not
// the pipeline's tail -- per the bidirectional-linkage invariant: a handler writing
// from inside a read callback resumes the chain exactly where its own outbound half
// sits, without restarting from the last-added handler.
func (c *InboundContext) FireWrite(msg interface{}) {
	c.out.FireWrite(msg)
}

func (c *InboundContext) FireWriteException(err error) {
	c.out.FireWriteException(err)
}

func (c *InboundContext) FireClose() {
	c.out.FireClose()
}

// Transport returns the connection's TransportContext, available from any inbound callback.
func (c *InboundContext) Transport() transport.TransportContext {
	return c.out.Transport()
}

// Name returns the identifying name of the handler this context belongs to.
func (c *InboundContext) Name() string {
	return c.name
}

// OutboundContext is the per-link node a handler's outbound half is invoked with.
type OutboundContext struct {
	mu        sync.Mutex
	name      string
	transport transport.TransportContext

	next        *OutboundContext
	nextHandler OutboundHandler
}

// Transport returns the connection's TransportContext.
func (c *OutboundContext) Transport() transport.TransportContext {
	return c.transport
}

// Name returns the identifying name of the handler this context belongs to.
func (c *OutboundContext) Name() string {
	return c.name
}

func (c *OutboundContext) FireWrite(msg interface{}) {
	if c.next == nil {
		logging.Trace("write reached end of pipeline at %s", c.name)
		return
	}
	c.next.mu.Lock()
	defer c.next.mu.Unlock()
	c.nextHandler.Write(c.next, msg)
}

func (c *OutboundContext) FireWriteException(err error) {
	if c.next == nil {
		logging.Warn("write_exception reached end of pipeline at %s: %v", c.name, err)
		return
	}
	c.next.mu.Lock()
	defer c.next.mu.Unlock()
	c.nextHandler.WriteException(c.next, err)
}

func (c *OutboundContext) FireClose() {
	if c.next == nil {
		logging.Trace("close reached end of pipeline at %s", c.name)
		return
	}
	c.next.mu.Lock()
	defer c.next.mu.Unlock()
	c.nextHandler.Close(c.next)
}
