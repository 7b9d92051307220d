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
	"errors"

	"github.com/mervinkid/conduit/pipeline"
	"github.com/mervinkid/conduit/transport"
)

var (
	NilHandlerError = errors.New("handler is nil")
)

// PipelineInitializer supplies the codec handlers and application handler used to
// build one connection's pipeline. InitCodecHandlers runs between the transport
// handler the bootstrap installs and the channel adapter NewPeerPipeline appends.
type PipelineInitializer interface {
	InitCodecHandlers() []pipeline.Handler
	InitHandler() ChannelHandler
}

// FunctionalPipelineInitializer is a public implementation of PipelineInitializer which
// supports functional definition for pipeline initialization logic.
type FunctionalPipelineInitializer struct {
	CodecHandlersInit func() []pipeline.Handler
	HandlerInit       func() ChannelHandler
}

func (i *FunctionalPipelineInitializer) InitCodecHandlers() []pipeline.Handler {
	if i.CodecHandlersInit != nil {
		return i.CodecHandlersInit()
	}
	return nil
}

func (i *FunctionalPipelineInitializer) InitHandler() ChannelHandler {
	if i.HandlerInit != nil {
		return i.HandlerInit()
	}
	return nil
}

// NewPeerPipeline assembles a finalized pipeline for one connection: transportHandler
// first (the socket read/write adapter the bootstrap constructed for this connection),
// then the initializer's codec handlers, then a channel adapter bridging decoded
// messages to the initializer's ChannelHandler. It returns the Channel the application
// uses to send data to this connection.
func NewPeerPipeline(
	transportCtx transport.TransportContext,
	transportHandler pipeline.Handler,
	initializer PipelineInitializer,
) (*pipeline.Pipeline, Channel, error) {

	handler := initializer.InitHandler()
	if handler == nil {
		return nil, nil, NilHandlerError
	}

	p := pipeline.New(transportCtx)
	if err := p.AddBack(transportHandler); err != nil {
		return nil, nil, err
	}
	for _, h := range initializer.InitCodecHandlers() {
		if err := p.AddBack(h); err != nil {
			return nil, nil, err
		}
	}

	channel := NewChannel(p)
	if err := p.AddBack(newChannelAdapterHandler(channel, handler)); err != nil {
		return nil, nil, err
	}
	if err := p.Finalize(); err != nil {
		return nil, nil, err
	}

	return p, channel, nil
}
