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
	"errors"
	"sync"
	"time"

	"github.com/mervinkid/conduit/transport"
)

// Errors returned by pipeline configuration mistakes -- programmer errors, not
// runtime I/O failures (see the Configuration kind in the error taxonomy).
var (
	ErrAlreadyFinalized = errors.New("pipeline: already finalized")
	ErrEmptyPipeline    = errors.New("pipeline: no handlers added")
	ErrNotFinalized     = errors.New("pipeline: not finalized")
)

// entry is one arena slot: a handler plus the pair of contexts built for it at
// Finalize time. Contexts reference their neighbors by pointer (the
// *InboundContext/*OutboundContext links built once at Finalize and never
// reallocated); the pipeline owns the slice of entries.
type entry struct {
	handler  Handler
	inbound  InboundHandler
	outbound OutboundHandler
	inCtx    *InboundContext
	outCtx   *OutboundContext
}

// Pipeline is an ordered, typed chain of handlers processing bidirectional events
// for one connection. Mutable (AddBack/AddFront) only before Finalize; after that,
// only the entry points below may be called.
type Pipeline struct {
	mu        sync.Mutex
	transport transport.TransportContext

	entries   []*entry
	finalized bool

	headIn  *entry // first-added handler: entry point for inbound events.
	tailOut *entry // last-added handler: entry point for outbound events.
}

// New creates a Pipeline for a connection identified by the given transport context.
func New(transportCtx transport.TransportContext) *Pipeline {
	return &Pipeline{transport: transportCtx}
}

// AddBack appends a handler to the end of the chain (last in inbound order, first
// reached by an application Write). Must be called before Finalize.
func (p *Pipeline) AddBack(h Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finalized {
		return ErrAlreadyFinalized
	}
	p.entries = append(p.entries, &entry{handler: h})
	return nil
}

// AddFront prepends a handler to the start of the chain. Must be called before Finalize.
func (p *Pipeline) AddFront(h Handler) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.finalized {
		return ErrAlreadyFinalized
	}
	p.entries = append([]*entry{{handler: h}}, p.entries...)
	return nil
}

// Finalize links the handler contexts into the two singly-linked chains described
// in the pipeline's finalization algorithm. A second call is a programmer error.
func (p *Pipeline) Finalize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.finalized {
		return ErrAlreadyFinalized
	}
	if len(p.entries) == 0 {
		return ErrEmptyPipeline
	}

	for _, e := range p.entries {
		e.inbound = e.handler.Inbound()
		if e.inbound == nil {
			e.inbound = InboundBase{}
		}
		e.outbound = e.handler.Outbound()
		if e.outbound == nil {
			e.outbound = OutboundBase{}
		}
		e.inCtx = &InboundContext{name: e.handler.Name()}
		e.outCtx = &OutboundContext{name: e.handler.Name(), transport: p.transport}
		e.inCtx.out = e.outCtx
	}

	n := len(p.entries)
	for i, e := range p.entries {
		if i+1 < n {
			e.inCtx.next = p.entries[i+1].inCtx
			e.inCtx.nextHandler = p.entries[i+1].inbound
		}
		if i-1 >= 0 {
			e.outCtx.next = p.entries[i-1].outCtx
			e.outCtx.nextHandler = p.entries[i-1].outbound
		}
	}

	p.headIn = p.entries[0]
	p.tailOut = p.entries[n-1]
	p.finalized = true
	return nil
}

// TransportActive fires the inbound transport-active event at the head of the chain.
func (p *Pipeline) TransportActive() {
	if p.headIn == nil {
		return
	}
	p.headIn.inbound.TransportActive(p.headIn.inCtx)
}

// TransportInactive fires the inbound transport-inactive event at the head of the chain.
func (p *Pipeline) TransportInactive() {
	if p.headIn == nil {
		return
	}
	p.headIn.inbound.TransportInactive(p.headIn.inCtx)
}

// Read injects an inbound message at the head of the chain.
func (p *Pipeline) Read(msg interface{}) {
	if p.headIn == nil {
		return
	}
	p.headIn.inbound.Read(p.headIn.inCtx, msg)
}

// ReadEOF fires an inbound EOF event at the head of the chain.
func (p *Pipeline) ReadEOF() {
	if p.headIn == nil {
		return
	}
	p.headIn.inbound.ReadEOF(p.headIn.inCtx)
}

// ReadException fires an inbound exception event at the head of the chain.
func (p *Pipeline) ReadException(err error) {
	if p.headIn == nil {
		return
	}
	p.headIn.inbound.ReadException(p.headIn.inCtx, err)
}

// PollTimeout walks the inbound chain letting handlers shrink *deadline toward
// their own next wakeup.
func (p *Pipeline) PollTimeout(deadline *time.Time) {
	if p.headIn == nil {
		return
	}
	p.headIn.inbound.PollTimeout(p.headIn.inCtx, deadline)
}

// HandleTimeout fires a timeout event at the head of the chain.
func (p *Pipeline) HandleTimeout(now time.Time) {
	if p.headIn == nil {
		return
	}
	p.headIn.inbound.ReadTimeout(p.headIn.inCtx, now)
}

// Write injects an outbound message at the outbound tail, which by the reversed
// link starts traversal from the last-added handler.
func (p *Pipeline) Write(msg interface{}) {
	if p.tailOut == nil {
		return
	}
	p.tailOut.outbound.Write(p.tailOut.outCtx, msg)
}

// Close fires the outbound-close event from the outbound tail.
func (p *Pipeline) Close() {
	if p.tailOut == nil {
		return
	}
	p.tailOut.outbound.Close(p.tailOut.outCtx)
}

// Transport returns the TransportContext captured for this connection at construction.
func (p *Pipeline) Transport() transport.TransportContext {
	return p.transport
}
