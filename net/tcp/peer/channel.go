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
	"net"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/mervinkid/conduit/misc"
	"github.com/mervinkid/conduit/pipeline"
)

const (
	unknownString = "unknown"
)

var (
	ErrInvalidChannel = errors.New("invalid channel")
)

type SendMessage interface {
	Send(data interface{}) error
	SendFuture(data interface{}, callback func(err error))
}

type Channel interface {
	SendMessage
	misc.Close
	// ID is a stable, process-unique identifier for this channel, stamped once at
	// creation -- suitable for correlating log lines and AckManager keys to one
	// connection's lifetime.
	ID() string
	Remote() net.Addr
	IsConnected() bool
	GetContext(key string) interface{}
	AddContext(key string, val interface{})
	DelContext(key string)
}

// pipelineChannel is the Channel implementation bound to one finalized
// *pipeline.Pipeline: Send/SendFuture push into the pipeline's outbound chain,
// Close fires the outbound close event which the transport handler turns into a
// socket close.
type pipelineChannel struct {
	p          *pipeline.Pipeline
	id         string
	connected  int32
	contextMap map[string]interface{}
}

// ID returns the channel's stable identifier, stamped once at creation.
func (c *pipelineChannel) ID() string {
	return c.id
}

// Remote returns remote address.
func (c *pipelineChannel) Remote() net.Addr {
	if c.p != nil {
		if addr := c.p.Transport().PeerAddr; addr != nil {
			return addr
		}
	}
	return &UnknownAddr{}
}

func (c *pipelineChannel) Send(data interface{}) error {
	if !c.IsConnected() {
		return ErrInvalidChannel
	}
	c.p.Write(data)
	return nil
}

// SendFuture send data async and the callback method will be invoked once the data has been handed on.
// The underlying pipeline's outbound chain has no per-message completion signal of its
// own, so the callback fires once the message has been handed to the chain, not once
// the socket write syscall returns.
func (c *pipelineChannel) SendFuture(data interface{}, callback func(err error)) {
	if !c.IsConnected() {
		if callback != nil {
			callback(ErrInvalidChannel)
		}
		return
	}
	c.p.Write(data)
	if callback != nil {
		callback(nil)
	}
}

// Close will try close the network connection which related with current channel.
func (c *pipelineChannel) Close() {
	if c.p != nil && atomic.CompareAndSwapInt32(&c.connected, 1, 0) {
		c.p.Close()
	}
}

// markDisconnected flags the channel as no longer usable; called by the channel
// adapter when the pipeline's transport goes inactive.
func (c *pipelineChannel) markDisconnected() {
	atomic.StoreInt32(&c.connected, 0)
}

// IsConnected returns true if connection is valid.
func (c *pipelineChannel) IsConnected() bool {
	return c.p != nil && atomic.LoadInt32(&c.connected) == 1
}

// GetContext get context data with specified key.
func (c *pipelineChannel) GetContext(key string) interface{} {
	if c.contextMap != nil {
		return c.contextMap[key]
	}
	return nil
}

// AddContext add context data with specified key.
func (c *pipelineChannel) AddContext(key string, val interface{}) {
	if c.contextMap != nil {
		c.contextMap[key] = val
	}
}

// DelContext remove context data with specified key.
func (c *pipelineChannel) DelContext(key string) {
	if c.contextMap != nil {
		delete(c.contextMap, key)
	}
}

// NewChannel creates a Channel bound to a finalized pipeline, already marked connected.
// Its ID is the pipeline's transport ConnID when the bootstrap stamped one, otherwise a
// freshly generated one -- a channel always has a usable correlation ID.
func NewChannel(p *pipeline.Pipeline) Channel {
	id := ""
	if p != nil {
		id = p.Transport().ConnID
	}
	if id == "" {
		id = uuid.New().String()
	}
	return &pipelineChannel{
		p:          p,
		id:         id,
		connected:  1,
		contextMap: make(map[string]interface{}),
	}
}

type UnknownAddr struct {
}

func (ua *UnknownAddr) String() string {
	return unknownString
}

func (ua *UnknownAddr) Network() string {
	return unknownString
}
