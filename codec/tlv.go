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
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/mervinkid/conduit/buffer"
	"github.com/mervinkid/conduit/pipeline"
)

const (
	TagSize    = 1
	LengthSize = 4
)

// TLVConfig configures both TLVFrameDecoder and TLVFrameEncoder.
//
//	+----------+-----------+-----------+
//	|    TAG   |  LENGTH   |   VALUE   |
//	| (1 byte) | (4 bytes) | (payload) |
//	+----------+-----------+-----------+
type TLVConfig struct {
	TagValue   uint8
	FrameLimit uint32
}

// TLVFrameDecoder is a MessageDecoder parsing the TLV wire format above, one field
// at a time across calls so a frame split across reads resumes where it left off.
type TLVFrameDecoder struct {
	Config TLVConfig

	hasTag      bool
	hasLength   bool
	tagValue    uint8
	lengthValue uint32
}

// NewTLVFrameDecoder creates a TLVFrameDecoder for the given configuration.
func NewTLVFrameDecoder(config TLVConfig) *TLVFrameDecoder {
	return &TLVFrameDecoder{Config: config}
}

func (c *TLVFrameDecoder) Decode(in buffer.ByteBuf) (interface{}, error) {
	if !c.hasTag {
		if in.ReadableBytes() < TagSize {
			return nil, nil
		}
		tmpBytes := in.ReadBytes(TagSize)
		var tag uint8
		if err := binary.Read(bytes.NewReader(tmpBytes), binary.BigEndian, &tag); err != nil {
			return c.decodeFailure(err)
		}
		if tag != c.Config.TagValue {
			return c.decodeFailure(ErrIllegalTag)
		}
		c.tagValue = tag
		c.hasTag = true
	}

	if c.hasTag && !c.hasLength {
		if in.ReadableBytes() < LengthSize {
			return nil, nil
		}
		tmpBytes := in.ReadBytes(LengthSize)
		var length uint32
		if err := binary.Read(bytes.NewReader(tmpBytes), binary.BigEndian, &length); err != nil {
			return c.decodeFailure(err)
		}
		c.lengthValue = length
		c.hasLength = true
	}

	if c.hasTag && c.hasLength {
		if in.ReadableBytes() < int(c.lengthValue) {
			return nil, nil
		}
		tmpBytes := in.ReadBytes(int(c.lengthValue))
		if c.Config.FrameLimit > 0 && uint64(TagSize+LengthSize)+uint64(len(tmpBytes)) > uint64(c.Config.FrameLimit) {
			return c.decodeFailure(ErrFrameTooLong)
		}
		c.resetState()
		return tmpBytes, nil
	}

	return nil, nil
}

func (c *TLVFrameDecoder) resetState() {
	c.hasTag = false
	c.hasLength = false
	c.tagValue = 0
	c.lengthValue = 0
}

func (c *TLVFrameDecoder) decodeFailure(cause error) (interface{}, error) {
	c.resetState()
	return nil, WrapDecodeError("TLVFrameDecoder", cause)
}

// TLVFrameEncoder is an outbound handler that frames a []byte payload as TLV.
type TLVFrameEncoder struct {
	pipeline.OutboundBase
	Config TLVConfig
}

// NewTLVFrameEncoder creates a pipeline.Handler wrapping a TLVFrameEncoder.
func NewTLVFrameEncoder(name string, config TLVConfig) pipeline.Handler {
	return pipeline.NewHandler(name, nil, &TLVFrameEncoder{Config: config})
}

func (c *TLVFrameEncoder) Write(ctx *pipeline.OutboundContext, msg interface{}) {
	payload, ok := msg.([]byte)
	if !ok {
		ctx.FireWriteException(WrapEncodeError("TLVFrameEncoder", ErrMessageTypeMismatch))
		return
	}

	framed, err := encodeTLV(c.Config, payload)
	if err != nil {
		ctx.FireWriteException(err)
		return
	}
	ctx.FireWrite(framed)
}

// encodeTLV is the pure framing step shared by TLVFrameEncoder and ApolloFrameEncoder
// (the latter frames an already-serialized MessagePack payload the same way).
func encodeTLV(config TLVConfig, payload []byte) ([]byte, error) {
	payloadLength := uint32(len(payload))
	frameSize := uint64(payloadLength) + LengthSize + TagSize
	if config.FrameLimit > 0 && frameSize > uint64(config.FrameLimit) {
		cause := fmt.Errorf("%w: frame size %d larger than limit %d", ErrFrameTooLong, frameSize, config.FrameLimit)
		return nil, WrapEncodeError("TLVFrameEncoder", cause)
	}

	out := buffer.NewElasticUnsafeByteBuf(int(frameSize))
	_ = binary.Write(out, binary.BigEndian, config.TagValue)
	_ = binary.Write(out, binary.BigEndian, payloadLength)
	out.WriteBytes(payload)

	return out.ReadBytes(out.ReadableBytes()), nil
}
