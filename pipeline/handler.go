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

// Package pipeline implements a Netty-style bidirectional handler chain: an ordered
// list of handlers processing inbound events (front to back) and outbound events
// (back to front) for one connection.
package pipeline

import "time"

// Handler is a single link in the pipeline. Name identifies the link for diagnostics
// (end-of-pipeline log lines, type-mismatch exceptions). Inbound/Outbound may each
// return nil for a pass-through half; Finalize substitutes a default forwarder.
type Handler interface {
	Name() string
	Inbound() InboundHandler
	Outbound() OutboundHandler
}

// InboundHandler processes events flowing up the pipeline (socket toward application).
// Every method has a default, pass-through-only meaning: forward to ctx.FireXxx. A
// concrete handler embeds InboundBase and overrides only what it needs.
type InboundHandler interface {
	TransportActive(ctx *InboundContext)
	TransportInactive(ctx *InboundContext)
	Read(ctx *InboundContext, msg interface{})
	ReadException(ctx *InboundContext, err error)
	ReadEOF(ctx *InboundContext)
	ReadTimeout(ctx *InboundContext, now time.Time)
	PollTimeout(ctx *InboundContext, deadline *time.Time)
}

// OutboundHandler processes events flowing down the pipeline (application toward socket).
type OutboundHandler interface {
	Write(ctx *OutboundContext, msg interface{})
	WriteException(ctx *OutboundContext, err error)
	Close(ctx *OutboundContext)
}

// InboundBase is the pass-through InboundHandler: every method forwards to the next
// link unchanged. Embed it in a concrete handler and override only the methods that
// need real behavior.
type InboundBase struct{}

func (InboundBase) TransportActive(ctx *InboundContext)   { ctx.FireTransportActive() }
func (InboundBase) TransportInactive(ctx *InboundContext) { ctx.FireTransportInactive() }
func (InboundBase) Read(ctx *InboundContext, msg interface{}) {
	ctx.FireRead(msg)
}
func (InboundBase) ReadException(ctx *InboundContext, err error) { ctx.FireReadException(err) }
func (InboundBase) ReadEOF(ctx *InboundContext)                  { ctx.FireReadEOF() }
func (InboundBase) ReadTimeout(ctx *InboundContext, now time.Time) {
	ctx.FireReadTimeout(now)
}
func (InboundBase) PollTimeout(ctx *InboundContext, deadline *time.Time) {
	ctx.FirePollTimeout(deadline)
}

// OutboundBase is the pass-through OutboundHandler.
type OutboundBase struct{}

func (OutboundBase) Write(ctx *OutboundContext, msg interface{}) { ctx.FireWrite(msg) }
func (OutboundBase) WriteException(ctx *OutboundContext, err error) {
	ctx.FireWriteException(err)
}
func (OutboundBase) Close(ctx *OutboundContext) { ctx.FireClose() }

// SimpleHandler is a Handler built from an already-constructed inbound/outbound pair,
// for the common case where a handler type implements both halves itself (or either
// half is simply nil for pass-through).
type SimpleHandler struct {
	HandlerName  string
	InboundHalf  InboundHandler
	OutboundHalf OutboundHandler
}

func (h *SimpleHandler) Name() string             { return h.HandlerName }
func (h *SimpleHandler) Inbound() InboundHandler   { return h.InboundHalf }
func (h *SimpleHandler) Outbound() OutboundHandler { return h.OutboundHalf }

// NewHandler builds a Handler pair in one call, mirroring the donor's split()-style
// construction: a handler type usually owns both an inbound and an outbound half.
func NewHandler(name string, inbound InboundHandler, outbound OutboundHandler) Handler {
	return &SimpleHandler{HandlerName: name, InboundHalf: inbound, OutboundHalf: outbound}
}
