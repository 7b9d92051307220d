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

package peer

import (
	"github.com/mervinkid/conduit/pipeline"
)

// channelAdapterHandler is the last link of a peer pipeline: it turns the typed
// inbound events the codec chain produces into ChannelHandler callbacks against the
// Channel bound to this connection. It has no outbound behavior of its own -- writes
// flow down from Channel.Send/SendFuture through ctx.FireWrite at the codec layer.
type channelAdapterHandler struct {
	pipeline.InboundBase
	channel Channel
	handler ChannelHandler
}

// newChannelAdapterHandler builds the pipeline.Handler bridging to handler, bound to channel.
func newChannelAdapterHandler(channel Channel, handler ChannelHandler) pipeline.Handler {
	a := &channelAdapterHandler{channel: channel, handler: handler}
	return pipeline.NewHandler("channel-adapter", a, nil)
}

func (a *channelAdapterHandler) TransportActive(ctx *pipeline.InboundContext) {
	if err := a.handler.ChannelActivate(a.channel); err != nil {
		a.handler.ChannelError(a.channel, err)
	}
}

func (a *channelAdapterHandler) TransportInactive(ctx *pipeline.InboundContext) {
	if pc, ok := a.channel.(*pipelineChannel); ok {
		pc.markDisconnected()
	}
	if err := a.handler.ChannelInactivate(a.channel); err != nil {
		a.handler.ChannelError(a.channel, err)
	}
}

func (a *channelAdapterHandler) Read(ctx *pipeline.InboundContext, msg interface{}) {
	if err := a.handler.ChannelRead(a.channel, msg); err != nil {
		a.handler.ChannelError(a.channel, err)
	}
}

func (a *channelAdapterHandler) ReadException(ctx *pipeline.InboundContext, err error) {
	a.handler.ChannelError(a.channel, err)
}
