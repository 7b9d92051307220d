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

package codec_test

import (
	"errors"
	"testing"

	"github.com/mervinkid/conduit/codec"
	"github.com/mervinkid/conduit/pipeline"
	"github.com/mervinkid/conduit/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// sinkHandler is the tail of a test pipeline: it records every inbound frame and
// exception fired at it, so a decoder under test can be exercised through the real
// pipeline.Read entry point rather than by calling Decode directly.
type sinkHandler struct {
	pipeline.InboundBase
	frames     []interface{}
	exceptions []error
}

func (h *sinkHandler) Name() string                    { return "sink" }
func (h *sinkHandler) Inbound() pipeline.InboundHandler { return h }
func (h *sinkHandler) Outbound() pipeline.OutboundHandler {
	return pipeline.OutboundBase{}
}

func (h *sinkHandler) Read(_ *pipeline.InboundContext, msg interface{}) {
	h.frames = append(h.frames, msg)
}

func (h *sinkHandler) ReadException(_ *pipeline.InboundContext, err error) {
	h.exceptions = append(h.exceptions, err)
}

func buildCodecPipeline(t *testing.T, codecHandler pipeline.Handler) (*pipeline.Pipeline, *sinkHandler) {
	t.Helper()
	sink := &sinkHandler{}
	p := pipeline.New(transport.TransportContext{})
	require.NoError(t, p.AddBack(codecHandler))
	require.NoError(t, p.AddBack(sink))
	require.NoError(t, p.Finalize())
	return p, sink
}

// captureHandler is the end of a test outbound pipeline (added first, so outbound
// traversal reaches it last): it records whatever gets written or the exception fired
// instead, so an encoder under test can be exercised through pipeline.Write.
type captureHandler struct {
	pipeline.OutboundBase
	written   interface{}
	exception error
}

func (h *captureHandler) Write(_ *pipeline.OutboundContext, msg interface{}) { h.written = msg }
func (h *captureHandler) WriteException(_ *pipeline.OutboundContext, err error) {
	h.exception = err
}

func buildEncoderPipeline(t *testing.T, encoderHandler pipeline.Handler) (*pipeline.Pipeline, *captureHandler) {
	t.Helper()
	capture := &captureHandler{}
	p := pipeline.New(transport.TransportContext{})
	require.NoError(t, p.AddBack(pipeline.NewHandler("capture", nil, capture)))
	require.NoError(t, p.AddBack(encoderHandler))
	require.NoError(t, p.Finalize())
	return p, capture
}

func TestByteToMessageCodecDropsReadsBeforeTransportActive(t *testing.T) {
	p, sink := buildCodecPipeline(t, codec.NewByteToMessageCodec("lines",
		codec.NewLineBasedFrameDecoder(1024, true, codec.TerminatorLF)))

	// No TransportActive fired yet -- the decode loop must not run.
	p.Read([]byte("hello\n"))

	assert.Empty(t, sink.frames)
	assert.Empty(t, sink.exceptions)
}

func TestByteToMessageCodecDecodesWhileActive(t *testing.T) {
	p, sink := buildCodecPipeline(t, codec.NewByteToMessageCodec("lines",
		codec.NewLineBasedFrameDecoder(1024, true, codec.TerminatorLF)))

	p.TransportActive()
	p.Read([]byte("hello\nworld\n"))

	require.Len(t, sink.frames, 2)
	assert.Equal(t, []byte("hello"), sink.frames[0])
	assert.Equal(t, []byte("world"), sink.frames[1])
}

func TestByteToMessageCodecStopsDecodingAfterTransportInactive(t *testing.T) {
	p, sink := buildCodecPipeline(t, codec.NewByteToMessageCodec("lines",
		codec.NewLineBasedFrameDecoder(1024, true, codec.TerminatorLF)))

	p.TransportActive()
	p.TransportInactive()
	p.Read([]byte("hello\n"))

	assert.Empty(t, sink.frames)
}

func TestLineBasedFrameDecoderTooLongIsUnwrappableToSentinel(t *testing.T) {
	p, sink := buildCodecPipeline(t, codec.NewByteToMessageCodec("lines",
		codec.NewLineBasedFrameDecoder(4, true, codec.TerminatorLF)))

	p.TransportActive()
	p.Read([]byte("way too long a line\n"))

	require.Len(t, sink.exceptions, 1)
	assert.True(t, errors.Is(sink.exceptions[0], codec.ErrFrameTooLong))
}

func TestStringCodecInvalidUTF8IsUnwrappableToSentinel(t *testing.T) {
	p, sink := buildCodecPipeline(t, codec.NewStringCodec("strings"))

	p.TransportActive()
	p.Read([]byte{0xff, 0xfe, 0xfd})

	require.Len(t, sink.exceptions, 1)
	assert.True(t, errors.Is(sink.exceptions[0], codec.ErrInvalidUTF8))
}

func TestStringCodecValidUTF8Passes(t *testing.T) {
	p, sink := buildCodecPipeline(t, codec.NewStringCodec("strings"))

	p.TransportActive()
	p.Read([]byte("hello"))

	require.Len(t, sink.frames, 1)
	assert.Equal(t, "hello", sink.frames[0])
}

func TestStringCodecWriteTypeMismatchIsUnwrappableToSentinel(t *testing.T) {
	p, capture := buildEncoderPipeline(t, codec.NewStringCodec("strings"))

	// StringCodec's outbound half only accepts string; sending anything else must
	// fire a type-mismatch exception unwrappable to the shared sentinel.
	p.Write(1234)

	require.Error(t, capture.exception)
	assert.True(t, errors.Is(capture.exception, codec.ErrMessageTypeMismatch))
}

func TestTLVFrameDecoderIllegalTagIsUnwrappableToSentinel(t *testing.T) {
	cfg := codec.TLVConfig{TagValue: 0x01, FrameLimit: 0}
	p, sink := buildCodecPipeline(t, codec.NewByteToMessageCodec("tlv", codec.NewTLVFrameDecoder(cfg)))

	p.TransportActive()
	p.Read([]byte{0x02, 0, 0, 0, 0})

	require.Len(t, sink.exceptions, 1)
	assert.True(t, errors.Is(sink.exceptions[0], codec.ErrIllegalTag))
}

func TestTLVFrameDecoderFrameTooLongIsUnwrappableToSentinel(t *testing.T) {
	cfg := codec.TLVConfig{TagValue: 0x01, FrameLimit: 6}
	p, sink := buildCodecPipeline(t, codec.NewByteToMessageCodec("tlv", codec.NewTLVFrameDecoder(cfg)))

	p.TransportActive()
	p.Read([]byte{0x01, 0, 0, 0, 2, 'h', 'i'})

	require.Len(t, sink.exceptions, 1)
	assert.True(t, errors.Is(sink.exceptions[0], codec.ErrFrameTooLong))
}

func TestTLVFrameEncoderFrameTooLongIsUnwrappableToSentinel(t *testing.T) {
	cfg := codec.TLVConfig{TagValue: 0x01, FrameLimit: 6}
	p, capture := buildEncoderPipeline(t, codec.NewTLVFrameEncoder("enc", cfg))

	p.Write([]byte("toolong"))

	require.Error(t, capture.exception)
	assert.True(t, errors.Is(capture.exception, codec.ErrFrameTooLong))
}

func TestTLVFrameDecoderRoundTrip(t *testing.T) {
	cfg := codec.TLVConfig{TagValue: 0x01, FrameLimit: 0}

	encPipeline, capture := buildEncoderPipeline(t, codec.NewTLVFrameEncoder("enc", cfg))
	encPipeline.Write([]byte("payload"))
	require.NotNil(t, capture.written)

	decPipeline, sink := buildCodecPipeline(t, codec.NewByteToMessageCodec("tlv", codec.NewTLVFrameDecoder(cfg)))
	decPipeline.TransportActive()
	decPipeline.Read(capture.written.([]byte))

	require.Len(t, sink.frames, 1)
	assert.Equal(t, []byte("payload"), sink.frames[0])
}
