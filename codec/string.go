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

package codec

import (
	"unicode/utf8"

	"github.com/mervinkid/conduit/pipeline"
)

// StringCodec turns inbound []byte frames into strings and outbound strings back
// into []byte, rejecting anything that is not valid UTF-8 rather than silently
// substituting replacement characters.
type StringCodec struct {
	pipeline.InboundBase
	pipeline.OutboundBase
}

// NewStringCodec builds a pipeline.Handler performing strict UTF-8 (de)serialization.
func NewStringCodec(name string) pipeline.Handler {
	c := &StringCodec{}
	return pipeline.NewHandler(name, c, c)
}

func (c *StringCodec) Read(ctx *pipeline.InboundContext, msg interface{}) {
	raw, ok := msg.([]byte)
	if !ok {
		ctx.FireReadException(WrapDecodeError("StringCodec", ErrMessageTypeMismatch))
		return
	}
	if !utf8.Valid(raw) {
		ctx.FireReadException(WrapDecodeError("StringCodec", ErrInvalidUTF8))
		return
	}
	ctx.FireRead(string(raw))
}

func (c *StringCodec) Write(ctx *pipeline.OutboundContext, msg interface{}) {
	s, ok := msg.(string)
	if !ok {
		ctx.FireWriteException(WrapEncodeError("StringCodec", ErrMessageTypeMismatch))
		return
	}
	ctx.FireWrite([]byte(s))
}
