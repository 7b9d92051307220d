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

package transport

import (
	"errors"

	"github.com/mervinkid/conduit/pipeline"
)

// ErrMessageTypeMismatch is fired as a write exception when the outbound chain hands
// the transport handler something other than []byte or TaggedBytesMut.
var ErrMessageTypeMismatch = errors.New("transport: message is not []byte or TaggedBytesMut")

// OutboundSink decouples the transport handler's outbound Write from the socket
// write itself. The bootstrap's per-connection driver loop owns the real write (so
// that writes and inbound reads interleave through a single select, per the
// processPipeline algorithm) -- the handler only enqueues.
type OutboundSink interface {
	Push(msg interface{})
	Close()
}

// NewAsyncTransportHandler builds the pipeline handler sitting at the very front of
// every connection's chain: its inbound half is pure pass-through (the TaggedBytesMut
// the bootstrap driver loop hands to Pipeline.Read enters here and is forwarded
// unchanged), and its outbound half hands off to sink, which the bootstrap drains to
// the real socket. A plain []byte message carries no explicit target (correct for
// TCP; the UDP transports reject a write with no target, so UDP pipelines write
// TaggedBytesMut); a TaggedBytesMut message carries its own destination for UDP servers
// replying to whichever peer sent the datagram being answered.
func NewAsyncTransportHandler(name string, sink OutboundSink) pipeline.Handler {
	return pipeline.NewHandler(name, pipeline.InboundBase{}, &asyncTransportOutbound{sink: sink})
}

type asyncTransportOutbound struct {
	sink OutboundSink
}

func (o *asyncTransportOutbound) Write(ctx *pipeline.OutboundContext, msg interface{}) {
	switch msg.(type) {
	case []byte, TaggedBytesMut:
		o.sink.Push(msg)
	default:
		ctx.FireWriteException(ErrMessageTypeMismatch)
	}
}

func (o *asyncTransportOutbound) WriteException(ctx *pipeline.OutboundContext, err error) {
	ctx.FireWriteException(err)
}

// Close tells the sink to stop accepting writes and release the socket, then lets
// the close event keep propagating down the outbound chain.
func (o *asyncTransportOutbound) Close(ctx *pipeline.OutboundContext) {
	o.sink.Close()
	ctx.FireClose()
}
