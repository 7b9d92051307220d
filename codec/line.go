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
	"github.com/mervinkid/conduit/buffer"
)

// Terminator selects which line ending(s) LineBasedFrameDecoder will split on.
type Terminator int

const (
	// TerminatorLF splits only on a bare '\n'.
	TerminatorLF Terminator = iota
	// TerminatorCRLF splits only on "\r\n".
	TerminatorCRLF
	// TerminatorBoth splits on either "\r\n" or a bare '\n', whichever comes first.
	TerminatorBoth
)

// LineBasedFrameDecoder is a MessageDecoder that carves lines of text out of a
// stream, producing one []byte frame per line (the terminator itself stripped
// when StripDelimiter is set).
//
//	+--------+--------+-----+--------+
//	| LINE 1 | \r\n   | ... | LINE N |
//	+--------+--------+-----+--------+
//
// A line longer than MaxLength without a terminator is a decode error: the
// offending bytes are discarded rather than handed to the application.
type LineBasedFrameDecoder struct {
	MaxLength      int
	StripDelimiter bool
	Term           Terminator
}

// NewLineBasedFrameDecoder builds a LineBasedFrameDecoder with the given limits.
func NewLineBasedFrameDecoder(maxLength int, stripDelimiter bool, term Terminator) *LineBasedFrameDecoder {
	return &LineBasedFrameDecoder{MaxLength: maxLength, StripDelimiter: stripDelimiter, Term: term}
}

func (d *LineBasedFrameDecoder) Decode(in buffer.ByteBuf) (interface{}, error) {
	available := in.ReadableBytes()
	if available == 0 {
		return nil, nil
	}

	// Drain everything readable; whatever isn't consumed by a found line gets
	// written back below. ByteBuf has no peek, so this is the only way to scan
	// without permanently losing bytes on a partial line.
	data := in.ReadBytes(available)

	end, termLen := d.findTerminator(data)
	if end < 0 {
		if d.MaxLength > 0 && len(data) > d.MaxLength {
			return d.decodeFailure(ErrFrameTooLong)
		}
		in.WriteBytes(data)
		return nil, nil
	}

	if d.MaxLength > 0 && end > d.MaxLength {
		return d.decodeFailure(ErrFrameTooLong)
	}

	lineEnd := end + termLen
	if lineEnd < len(data) {
		in.WriteBytes(data[lineEnd:])
	}

	if d.StripDelimiter {
		return data[:end], nil
	}
	return data[:lineEnd], nil
}

// findTerminator returns the index of the line's content end and the terminator's
// length, or (-1, 0) if no terminator matching Term appears in data.
func (d *LineBasedFrameDecoder) findTerminator(data []byte) (end int, termLen int) {
	for i, b := range data {
		if b != '\n' {
			continue
		}
		switch d.Term {
		case TerminatorLF:
			return i, 1
		case TerminatorCRLF:
			if i > 0 && data[i-1] == '\r' {
				return i - 1, 2
			}
		case TerminatorBoth:
			if i > 0 && data[i-1] == '\r' {
				return i - 1, 2
			}
			return i, 1
		}
	}
	return -1, 0
}

func (d *LineBasedFrameDecoder) decodeFailure(cause error) (interface{}, error) {
	return nil, WrapDecodeError("LineBasedFrameDecoder", cause)
}
