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
	"errors"
	"fmt"
)

// DecodeError reports a frame that failed to decode, naming the decoder and the cause.
// The format of the complete error string is '$DECODER decode error cause $CAUSE'.
type DecodeError struct {
	decoder string
	msg     string
	cause   error
}

func (e *DecodeError) Error() string {
	var prefix string
	if e.decoder != "" {
		prefix = fmt.Sprint(e.decoder, " ")
	}
	var suffix string
	if e.msg != "" {
		suffix = fmt.Sprint(" cause ", e.msg)
	}
	return fmt.Sprint(prefix, "decode error", suffix)
}

// Cause returns the underlying error, if the DecodeError was built from one.
func (e *DecodeError) Cause() error { return e.cause }

// Unwrap supports errors.Is/errors.As against the underlying cause.
func (e *DecodeError) Unwrap() error { return e.cause }

// NewDecodeError creates a DecodeError carrying a plain message.
func NewDecodeError(decoder, msg string) error {
	return &DecodeError{decoder: decoder, msg: msg}
}

// WrapDecodeError creates a DecodeError wrapping an underlying cause.
func WrapDecodeError(decoder string, cause error) error {
	if cause == nil {
		return nil
	}
	return &DecodeError{decoder: decoder, msg: cause.Error(), cause: cause}
}

// EncodeError reports a message that failed to encode, naming the encoder and the cause.
// The format of the complete error string is '$ENCODER encode error cause $CAUSE'.
type EncodeError struct {
	encoder string
	msg     string
	cause   error
}

func (e *EncodeError) Error() string {
	var prefix string
	if e.encoder != "" {
		prefix = fmt.Sprint(e.encoder, " ")
	}
	var suffix string
	if e.msg != "" {
		suffix = fmt.Sprint(" cause ", e.msg)
	}
	return fmt.Sprint(prefix, "encode error", suffix)
}

func (e *EncodeError) Cause() error  { return e.cause }
func (e *EncodeError) Unwrap() error { return e.cause }

// NewEncodeError creates an EncodeError carrying a plain message.
func NewEncodeError(encoder, msg string) error {
	return &EncodeError{encoder: encoder, msg: msg}
}

// WrapEncodeError creates an EncodeError wrapping an underlying cause.
func WrapEncodeError(encoder string, cause error) error {
	if cause == nil {
		return nil
	}
	return &EncodeError{encoder: encoder, msg: cause.Error(), cause: cause}
}

// Sentinel causes shared by the built-in codecs.
var (
	ErrFrameTooLong        = errors.New("frame size larger than limit")
	ErrInvalidUTF8         = errors.New("payload is not valid utf-8")
	ErrMessageTypeMismatch = errors.New("unexpected message type")
	ErrIllegalTag          = errors.New("illegal tag found")
	ErrIllegalPayload      = errors.New("illegal payload")
)
