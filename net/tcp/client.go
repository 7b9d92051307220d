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
	"errors"
	"sync"

	"github.com/mervinkid/conduit/bootstrap"
	"github.com/mervinkid/conduit/misc"
	"github.com/mervinkid/conduit/net/tcp/config"
	"github.com/mervinkid/conduit/net/tcp/peer"
	"github.com/mervinkid/conduit/pipeline"
	"github.com/mervinkid/conduit/transport"
)

// ClientNotRunningError is returned by Send/SendFuture before Start has connected or
// after the connection has gone away.
var ClientNotRunningError = errors.New("client is not running")

// Client is the interface that wraps the basic method to implement a tcp network client.
type Client interface {
	misc.Lifecycle
	misc.Sync
	peer.SendMessage
}

// pipelineClient is the default implementation of Client, backed by a
// bootstrap.TCPClient and the Channel its pipeline hands back on connect.
type pipelineClient struct {
	config      config.ClientConfig
	initializer peer.PipelineInitializer

	client bootstrap.TCPClient
	mu     sync.Mutex

	channelMu sync.RWMutex
	channel   peer.Channel
}

// Start will start client and connect to remote.
func (c *pipelineClient) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.client.IsRunning() {
		return nil
	}

	c.client.Config = c.config
	c.client.Handler = bootstrap.ConnHandler{
		Build: func(transportCtx transport.TransportContext, sink transport.OutboundSink) (*pipeline.Pipeline, interface{}, error) {
			transportHandler := transport.NewAsyncTransportHandler("transport", sink)
			p, channel, err := peer.NewPeerPipeline(transportCtx, transportHandler, c.initializer)
			if err != nil {
				return nil, nil, err
			}
			return p, channel, nil
		},
		OnActive: func(handle interface{}) {
			if channel, ok := handle.(peer.Channel); ok {
				c.channelMu.Lock()
				c.channel = channel
				c.channelMu.Unlock()
			}
		},
		OnInactive: func(interface{}) {
			c.channelMu.Lock()
			c.channel = nil
			c.channelMu.Unlock()
		},
	}
	return c.client.Connect()
}

// Stop will stop client and disconnect from remote.
func (c *pipelineClient) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if channel := c.currentChannel(); channel != nil {
		channel.Close()
	}
	c.client.Stop()
}

// IsRunning returns true if client is running.
func (c *pipelineClient) IsRunning() bool {
	return c.client.IsRunning()
}

// Sync block invoker goroutine until client stop.
func (c *pipelineClient) Sync() {
	c.client.Sync()
}

func (c *pipelineClient) currentChannel() peer.Channel {
	c.channelMu.RLock()
	defer c.channelMu.RUnlock()
	return c.channel
}

// Send data synchronized.
func (c *pipelineClient) Send(data interface{}) error {
	channel := c.currentChannel()
	if channel == nil || !channel.IsConnected() {
		return ClientNotRunningError
	}
	return channel.Send(data)
}

// Send data async, the callback method will be invoked after data has been handled.
func (c *pipelineClient) SendFuture(data interface{}, callback func(err error)) {
	channel := c.currentChannel()
	if channel == nil || !channel.IsConnected() {
		if callback != nil {
			callback(ClientNotRunningError)
		}
		return
	}
	channel.SendFuture(data, callback)
}

// NewPipelineClient create a new PipelineClient instance with specified configuration and initializer.
func NewPipelineClient(cfg config.ClientConfig, initializer peer.PipelineInitializer) Client {
	return &pipelineClient{
		config:      cfg,
		initializer: initializer,
	}
}
