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

// Package codec implements the built-in frame decoders/encoders that sit at the
// front of a pipeline, translating raw bytes read off a transport into typed
// application messages and back.
package codec

import (
	"github.com/mervinkid/conduit/buffer"
	"github.com/mervinkid/conduit/pipeline"
	"github.com/mervinkid/conduit/transport"
)

// MessageDecoder incrementally parses frames out of an accumulation buffer.
// Decode is called in a loop by ByteToMessageCodec every time new bytes arrive:
//   - (frame, nil)  a complete frame was parsed; the caller fires it and calls again
//     immediately, since the buffer may hold a second frame already.
//   - (nil, nil)    not enough bytes yet; the caller stops and waits for more.
//   - (nil, err)    the frame is malformed; the caller fires a read exception and stops.
type MessageDecoder interface {
	Decode(in buffer.ByteBuf) (frame interface{}, err error)
}

// ByteToMessageCodec is an inbound handler that accumulates raw []byte reads into a
// ByteBuf and repeatedly asks a MessageDecoder to carve frames out of it, firing one
// Read event per decoded frame.
type ByteToMessageCodec struct {
	pipeline.InboundBase
	Decoder MessageDecoder

	acc             buffer.ByteBuf
	transportActive bool
}

// NewByteToMessageCodec builds a pipeline.Handler around decoder.
func NewByteToMessageCodec(name string, decoder MessageDecoder) pipeline.Handler {
	return pipeline.NewHandler(name, &ByteToMessageCodec{Decoder: decoder}, nil)
}

// TransportActive marks the codec ready to decode and propagates the event.
func (c *ByteToMessageCodec) TransportActive(ctx *pipeline.InboundContext) {
	c.transportActive = true
	ctx.FireTransportActive()
}

// TransportInactive stops the decode loop from running against a dead transport and
// propagates the event.
func (c *ByteToMessageCodec) TransportInactive(ctx *pipeline.InboundContext) {
	c.transportActive = false
	ctx.FireTransportInactive()
}

// Read appends the inbound bytes (a []byte, or the Message of the TaggedBytesMut the
// bootstrap driver loop feeds in) to the accumulation buffer, then decodes frames
// out of it until the decoder reports "need more bytes" or an error. A no-op once the
// transport has gone inactive.
func (c *ByteToMessageCodec) Read(ctx *pipeline.InboundContext, msg interface{}) {
	if !c.transportActive {
		return
	}

	var chunk []byte
	switch m := msg.(type) {
	case []byte:
		chunk = m
	case transport.TaggedBytesMut:
		chunk = m.Message
	default:
		ctx.FireReadException(WrapDecodeError("ByteToMessageCodec", ErrMessageTypeMismatch))
		return
	}

	if c.acc == nil {
		c.acc = buffer.NewElasticUnsafeByteBuf(len(chunk))
	}
	c.acc.WriteBytes(chunk)

	for {
		frame, err := c.Decoder.Decode(c.acc)
		if err != nil {
			ctx.FireReadException(err)
			return
		}
		if frame == nil {
			if c.acc.ReadIndex() > 0 {
				c.acc.Release()
			}
			return
		}
		ctx.FireRead(frame)
	}
}
