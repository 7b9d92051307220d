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
	"encoding/binary"

	"github.com/mervinkid/conduit/buffer"
	"github.com/mervinkid/conduit/pipeline"
	"github.com/vmihailenco/msgpack"
)

// ApolloEntity is an application message that can be looked up by a stable 16-bit
// type code and serialized with MessagePack.
type ApolloEntity interface {
	TypeCode() uint16
}

// ApolloConfig configures the TLV framing shared by ApolloFrameDecoder/Encoder and
// holds the registry of entity constructors keyed by type code.
type ApolloConfig struct {
	TLVConfig
	entityConstructors map[uint16]func() ApolloEntity
}

// RegisterEntity associates constructor's produced entity's TypeCode with that
// constructor, so a decoded frame carrying that type code can be instantiated.
func (c *ApolloConfig) RegisterEntity(constructor func() ApolloEntity) {
	c.initConfig()
	if constructor == nil {
		return
	}
	if probe := constructor(); probe != nil {
		c.entityConstructors[probe.TypeCode()] = constructor
	}
}

func (c *ApolloConfig) createEntity(typeCode uint16) ApolloEntity {
	c.initConfig()
	if constructor := c.entityConstructors[typeCode]; constructor != nil {
		return constructor()
	}
	return nil
}

func (c *ApolloConfig) initConfig() {
	if c.entityConstructors == nil {
		c.entityConstructors = make(map[uint16]func() ApolloEntity)
	}
}

// ApolloFrameDecoder is a MessageDecoder producing ApolloEntity values from a TLV
// frame whose VALUE is a 2-byte type code followed by a MessagePack payload.
//
//	+----------+-----------+---------------------------+
//	|    TAG   |  LENGTH   |           VALUE           |
//	| (1 byte) | (4 bytes) |   2 bytes   | serialized  |
//	|          |           |  type code  |    data     |
//	+----------+-----------+---------------------------+
type ApolloFrameDecoder struct {
	Config     ApolloConfig
	tlvDecoder *TLVFrameDecoder
}

// NewApolloFrameDecoder creates an ApolloFrameDecoder for the given configuration.
func NewApolloFrameDecoder(config ApolloConfig) *ApolloFrameDecoder {
	return &ApolloFrameDecoder{Config: config}
}

func (d *ApolloFrameDecoder) Decode(in buffer.ByteBuf) (interface{}, error) {
	if in.ReadableBytes() == 0 {
		return nil, nil
	}

	d.initTLVDecoder()
	tlvPayload, tlvErr := d.tlvDecoder.Decode(in)
	if tlvErr != nil {
		return d.decodeFailure(tlvErr)
	}
	if tlvPayload == nil {
		return nil, nil
	}

	payload := tlvPayload.([]byte)
	payloadBuf := buffer.NewElasticUnsafeByteBuf(len(payload))
	payloadBuf.WriteBytes(payload)

	if payloadBuf.ReadableBytes() < 2 {
		return d.decodeFailure(ErrIllegalPayload)
	}
	var typeCode uint16
	if err := binary.Read(payloadBuf, binary.BigEndian, &typeCode); err != nil {
		return d.decodeFailure(err)
	}

	serializedBytes := payloadBuf.ReadBytes(payloadBuf.ReadableBytes())
	entity := d.Config.createEntity(typeCode)
	if entity == nil {
		// Unregistered type code: the frame is consumed and skipped; go on with the
		// next one instead of reporting "need more bytes" for a buffer that may hold it.
		return d.Decode(in)
	}
	if err := msgpack.Unmarshal(serializedBytes, entity); err != nil {
		return d.decodeFailure(err)
	}
	return entity, nil
}

func (d *ApolloFrameDecoder) initTLVDecoder() {
	if d.tlvDecoder == nil {
		d.tlvDecoder = NewTLVFrameDecoder(d.Config.TLVConfig)
	}
}

func (d *ApolloFrameDecoder) decodeFailure(cause error) (interface{}, error) {
	return nil, WrapDecodeError("ApolloFrameDecoder", cause)
}

// ApolloFrameEncoder is an outbound handler serializing an ApolloEntity to the same
// TLV+type-code+MessagePack wire format ApolloFrameDecoder reads.
type ApolloFrameEncoder struct {
	pipeline.OutboundBase
	Config ApolloConfig
}

// NewApolloFrameEncoder builds a pipeline.Handler wrapping an ApolloFrameEncoder.
func NewApolloFrameEncoder(name string, config ApolloConfig) pipeline.Handler {
	return pipeline.NewHandler(name, nil, &ApolloFrameEncoder{Config: config})
}

func (e *ApolloFrameEncoder) Write(ctx *pipeline.OutboundContext, msg interface{}) {
	entity, ok := msg.(ApolloEntity)
	if !ok {
		ctx.FireWriteException(WrapEncodeError("ApolloFrameEncoder", ErrMessageTypeMismatch))
		return
	}

	marshaled, err := msgpack.Marshal(entity)
	if err != nil {
		ctx.FireWriteException(WrapEncodeError("ApolloFrameEncoder", err))
		return
	}

	payloadBuf := buffer.NewElasticUnsafeByteBuf(2 + len(marshaled))
	_ = binary.Write(payloadBuf, binary.BigEndian, entity.TypeCode())
	payloadBuf.WriteBytes(marshaled)

	framed, err := encodeTLV(e.Config.TLVConfig, payloadBuf.ReadBytes(payloadBuf.ReadableBytes()))
	if err != nil {
		ctx.FireWriteException(err)
		return
	}
	ctx.FireWrite(framed)
}
