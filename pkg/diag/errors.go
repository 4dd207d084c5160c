// Package diag defines the error kinds and soft diagnostics shared by the UIX and XPR decoders.
package diag

import (
	"errors"
	"fmt"
)

// Kind identifies a class of hard decode failure.
//
// Every Kind is itself an error, so callers can match with errors.Is(err, diag.InvalidMagic).
type Kind uint8

const (
	// Unknown is returned by KindOf for errors that did not originate in this module.
	Unknown Kind = iota

	// UnexpectedEOF means fewer bytes remained than a read required.
	UnexpectedEOF

	// InvalidArgument means a caller violated an operation's contract.
	InvalidArgument

	// InvalidMagic means a container or package signature did not match.
	InvalidMagic

	// InvalidFormat means header fields contradict each other (e.g. both dimension encodings set).
	InvalidFormat

	// UnsupportedFormat means the pixel format cannot be decoded or re-encoded.
	UnsupportedFormat
)

// String returns the kind name.
func (k Kind) String() string {
	switch k {
	case UnexpectedEOF:
		return "UnexpectedEOF"
	case InvalidArgument:
		return "InvalidArgument"
	case InvalidMagic:
		return "InvalidMagic"
	case InvalidFormat:
		return "InvalidFormat"
	case UnsupportedFormat:
		return "UnsupportedFormat"
	default:
		return "Unknown"
	}
}

func (k Kind) Error() string {
	switch k {
	case UnexpectedEOF:
		return "unexpected end of data"
	case InvalidArgument:
		return "invalid argument"
	case InvalidMagic:
		return "invalid magic"
	case InvalidFormat:
		return "invalid format"
	case UnsupportedFormat:
		return "unsupported format"
	default:
		return "unknown error"
	}
}

// Error is a typed decode failure carrying its Kind and the operation that raised it.
type Error struct {
	Kind Kind
	Op   string // e.g. "read u32", "resolve width"
	Msg  string
	Err  error // optional underlying cause
}

func (e *Error) Error() string {
	if e == nil {
		return ""
	}
	msg := e.Msg
	if msg == "" {
		msg = e.Kind.Error()
	}
	if e.Op != "" {
		msg = e.Op + ": " + msg
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Is reports whether target is this error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Errorf builds an *Error of the given kind with a formatted message.
func Errorf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Msg: fmt.Sprintf(format, args...)}
}

// KindOf returns the Kind carried by err, or Unknown.
func KindOf(err error) Kind {
	if err == nil {
		return Unknown
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	var k Kind
	if errors.As(err, &k) {
		return k
	}
	return Unknown
}
