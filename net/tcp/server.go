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

package tcp

import (
	"github.com/mervinkid/conduit/bootstrap"
	"github.com/mervinkid/conduit/misc"
	"github.com/mervinkid/conduit/net/tcp/config"
	"github.com/mervinkid/conduit/net/tcp/peer"
	"github.com/mervinkid/conduit/pipeline"
	"github.com/mervinkid/conduit/transport"
)

// Server is the interface that wraps the basic method to implement a tcp network server based on FSM.
type Server interface {
	misc.Lifecycle
	misc.Sync
}

// pipelineServer is the default implementation of Server: a bootstrap.TCPServer whose
// per-connection pipeline is built from Initializer, with every connected peer
// registered into a ChannelGroup so Stop can close them all.
type pipelineServer struct {
	config      config.ServerConfig
	initializer peer.PipelineInitializer

	server       bootstrap.TCPServer
	channelGroup peer.ChannelGroup
}

// Start will start server with specified address configuration.
func (s *pipelineServer) Start() error {
	s.channelGroup = peer.NewHashSafeChannelGroup()
	s.server.Config = s.config
	s.server.Handler = bootstrap.ConnHandler{
		Build: func(transportCtx transport.TransportContext, sink transport.OutboundSink) (*pipeline.Pipeline, interface{}, error) {
			transportHandler := transport.NewAsyncTransportHandler("transport", sink)
			p, channel, err := peer.NewPeerPipeline(transportCtx, transportHandler, s.initializer)
			if err != nil {
				return nil, nil, err
			}
			return p, channel, nil
		},
		OnActive: func(handle interface{}) {
			if channel, ok := handle.(peer.Channel); ok {
				s.channelGroup.Add(channel)
			}
		},
		OnInactive: func(handle interface{}) {
			if channel, ok := handle.(peer.Channel); ok {
				s.channelGroup.Remove(channel)
			}
		},
	}
	return s.server.Start()
}

// Stop will stop current server, close every connected channel, and release network resource.
func (s *pipelineServer) Stop() {
	if s.channelGroup != nil {
		s.channelGroup.CloseAll()
	}
	s.server.Stop()
}

// Sync will block current goroutine until server stop.
func (s *pipelineServer) Sync() {
	s.server.Sync()
}

// IsRunning test state of current server.
func (s *pipelineServer) IsRunning() bool {
	return s.server.IsRunning()
}

// NewPipelineServer init a new server instance with specified configuration and initializer.
func NewPipelineServer(cfg config.ServerConfig, initializer peer.PipelineInitializer) Server {
	return &pipelineServer{
		config:      cfg,
		initializer: initializer,
	}
}
