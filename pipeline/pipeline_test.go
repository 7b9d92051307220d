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

package pipeline_test

import (
	"errors"
	"testing"

	"github.com/mervinkid/conduit/pipeline"
	"github.com/mervinkid/conduit/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler appends its own name to a shared trace every time one of its
// overridden methods fires, then passes the event on unchanged.
type recordingHandler struct {
	pipeline.InboundBase
	pipeline.OutboundBase
	name  string
	trace *[]string
}

func (h *recordingHandler) Name() string                    { return h.name }
func (h *recordingHandler) Inbound() pipeline.InboundHandler { return h }
func (h *recordingHandler) Outbound() pipeline.OutboundHandler {
	return h
}

func (h *recordingHandler) Read(ctx *pipeline.InboundContext, msg interface{}) {
	*h.trace = append(*h.trace, "in:"+h.name)
	ctx.FireRead(msg)
}

func (h *recordingHandler) Write(ctx *pipeline.OutboundContext, msg interface{}) {
	*h.trace = append(*h.trace, "out:"+h.name)
	ctx.FireWrite(msg)
}

func newRecordingPipeline(trace *[]string, names ...string) *pipeline.Pipeline {
	p := pipeline.New(transport.TransportContext{})
	for _, name := range names {
		_ = p.AddBack(&recordingHandler{name: name, trace: trace})
	}
	return p
}

func TestPipelineFireOrderReadIsFrontToBack(t *testing.T) {
	var trace []string
	p := newRecordingPipeline(&trace, "a", "b", "c")
	require.NoError(t, p.Finalize())

	p.Read("hello")

	assert.Equal(t, []string{"in:a", "in:b", "in:c"}, trace)
}

func TestPipelineFireOrderWriteIsBackToFront(t *testing.T) {
	var trace []string
	p := newRecordingPipeline(&trace, "a", "b", "c")
	require.NoError(t, p.Finalize())

	p.Write("hello")

	assert.Equal(t, []string{"out:c", "out:b", "out:a"}, trace)
}

func TestPipelineWriteFromInsideReadResumesAtOwnOutboundLink(t *testing.T) {
	var trace []string
	p := pipeline.New(transport.TransportContext{})
	_ = p.AddBack(&recordingHandler{name: "a", trace: &trace})

	// middle fires a write of its own the moment it sees a read -- the outbound
	// traversal it kicks off must resume at its own outbound link (b), whose next
	// outbound handler is a, not restart from the pipeline's outbound tail (c).
	middle := &writingOnReadHandler{name: "b", trace: &trace}
	_ = p.AddBack(middle)
	_ = p.AddBack(&recordingHandler{name: "c", trace: &trace})
	require.NoError(t, p.Finalize())

	p.Read("ping")

	assert.Equal(t, []string{"in:a", "in:b", "out:a"}, trace)
}

type writingOnReadHandler struct {
	pipeline.InboundBase
	pipeline.OutboundBase
	name  string
	trace *[]string
}

func (h *writingOnReadHandler) Name() string                    { return h.name }
func (h *writingOnReadHandler) Inbound() pipeline.InboundHandler { return h }
func (h *writingOnReadHandler) Outbound() pipeline.OutboundHandler {
	return h
}

func (h *writingOnReadHandler) Read(ctx *pipeline.InboundContext, msg interface{}) {
	*h.trace = append(*h.trace, "in:"+h.name)
	ctx.FireWrite(msg)
}

func (h *writingOnReadHandler) Write(ctx *pipeline.OutboundContext, msg interface{}) {
	*h.trace = append(*h.trace, "out:"+h.name)
	ctx.FireWrite(msg)
}

func TestPipelineFinalizeRejectsEmptyPipeline(t *testing.T) {
	p := pipeline.New(transport.TransportContext{})
	assert.ErrorIs(t, p.Finalize(), pipeline.ErrEmptyPipeline)
}

func TestPipelineFinalizeRejectsSecondCall(t *testing.T) {
	var trace []string
	p := newRecordingPipeline(&trace, "a")
	require.NoError(t, p.Finalize())
	assert.ErrorIs(t, p.Finalize(), pipeline.ErrAlreadyFinalized)
}

func TestPipelineAddBackRejectedAfterFinalize(t *testing.T) {
	var trace []string
	p := newRecordingPipeline(&trace, "a")
	require.NoError(t, p.Finalize())

	err := p.AddBack(&recordingHandler{name: "late", trace: &trace})
	assert.ErrorIs(t, err, pipeline.ErrAlreadyFinalized)
}

// exceptionHandler lets a test force a ReadException/WriteException at a chosen link.
type exceptionHandler struct {
	pipeline.InboundBase
	pipeline.OutboundBase
	name string
	err  error
}

func (h *exceptionHandler) Name() string                    { return h.name }
func (h *exceptionHandler) Inbound() pipeline.InboundHandler { return h }
func (h *exceptionHandler) Outbound() pipeline.OutboundHandler {
	return h
}

func (h *exceptionHandler) Read(ctx *pipeline.InboundContext, _ interface{}) {
	ctx.FireReadException(h.err)
}

func TestPipelineReadExceptionPropagatesToNextLink(t *testing.T) {
	cause := errors.New("boom")
	var seen error
	p := pipeline.New(transport.TransportContext{})
	_ = p.AddBack(&exceptionHandler{name: "source", err: cause})
	_ = p.AddBack(&catchExceptionHandler{captured: &seen})
	require.NoError(t, p.Finalize())

	p.Read("anything")

	assert.ErrorIs(t, seen, cause)
}

type catchExceptionHandler struct {
	pipeline.InboundBase
	captured *error
}

func (h *catchExceptionHandler) Name() string                    { return "catch" }
func (h *catchExceptionHandler) Inbound() pipeline.InboundHandler { return h }
func (h *catchExceptionHandler) Outbound() pipeline.OutboundHandler {
	return pipeline.OutboundBase{}
}

func (h *catchExceptionHandler) ReadException(_ *pipeline.InboundContext, err error) {
	*h.captured = err
}

func TestPipelineTransportReturnsConstructionContext(t *testing.T) {
	ctx := transport.TransportContext{ConnID: "conn-1"}
	p := pipeline.New(ctx)
	_ = p.AddBack(&recordingHandler{name: "a", trace: &[]string{}})
	require.NoError(t, p.Finalize())

	assert.Equal(t, "conn-1", p.Transport().ConnID)
}
