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

package bootstrap

import (
	"context"
	"errors"
	"io"
	"sync"

	"github.com/mervinkid/conduit/transport"
)

// connSink is the per-connection outbound queue: unbounded and slice-backed so a
// Channel.Send caller never blocks, guarded by a mutex with a buffered notify channel
// waking the driver loop's select. It implements transport.OutboundSink and is also
// where the driver loop pulls queued messages from to actually hit the wire.
type connSink struct {
	mu     sync.Mutex
	items  []interface{}
	notify chan struct{}
	closed bool
	writer transport.AsyncTransportWrite
}

func newConnSink(writer transport.AsyncTransportWrite) *connSink {
	return &connSink{
		notify: make(chan struct{}, 1),
		writer: writer,
	}
}

// Push appends msg to the queue and wakes the driver loop. A push after Close is
// silently dropped -- the connection is on its way out.
func (s *connSink) Push(msg interface{}) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.items = append(s.items, msg)
	s.mu.Unlock()

	select {
	case s.notify <- struct{}{}:
	default:
	}
}

func (s *connSink) drain() []interface{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.items) == 0 {
		return nil
	}
	items := s.items
	s.items = nil
	return items
}

// Close stops the queue from accepting further pushes and releases the underlying
// socket, which unblocks the driver loop's pending read with an error or EOF.
func (s *connSink) Close() {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	if closer, ok := s.writer.(io.Closer); ok {
		_ = closer.Close()
	}
}

// flush writes every currently queued message to the wire, in order, stopping at the
// first error. A UDP write attempted without a peer address (ErrNotConnected) is
// reported back through report rather than treated as fatal -- per the write-without-
// peer invariant, that drops the one message but leaves the connection running.
func (s *connSink) flush(report func(err error)) error {
	for _, msg := range s.drain() {
		var err error
		switch m := msg.(type) {
		case []byte:
			_, err = s.writer.Write(context.Background(), m, nil)
		case transport.TaggedBytesMut:
			_, err = s.writer.Write(context.Background(), m.Message, m.Transport.PeerAddr)
		}
		if err == nil {
			continue
		}
		if errors.Is(err, transport.ErrNotConnected) {
			if report != nil {
				report(err)
			}
			continue
		}
		return err
	}
	return nil
}
