package ffi

import (
	"errors"
	"fmt"
)

// Preparation failures are recoverable and map 1:1 onto libffi's status
// codes. Contract violations that are cheap to detect (double bind, use
// after free) get their own sentinels; everything else is documented
// undefined behavior rather than a reportable error.
var (
	// ErrBadTypedef reports a malformed or oversized type descriptor.
	ErrBadTypedef = errors.New("ffi: bad type definition")

	// ErrBadABI reports a calling convention unsupported on this platform.
	ErrBadABI = errors.New("ffi: unsupported calling convention")

	// ErrBadArgType reports an argument type rejected by libffi.
	ErrBadArgType = errors.New("ffi: bad argument type")

	// ErrDoubleBind reports a second Bind on an already bound closure.
	ErrDoubleBind = errors.New("ffi: closure already bound")

	// ErrClosureFreed reports use of a closure after Free.
	ErrClosureFreed = errors.New("ffi: closure used after free")
)

// statusError converts a libffi status code to an error, nil on FFI_OK.
func statusError(op string, st int) error {
	switch st {
	case statusOK:
		return nil
	case statusBadTypedef:
		return fmt.Errorf("%s: %w", op, ErrBadTypedef)
	case statusBadABI:
		return fmt.Errorf("%s: %w", op, ErrBadABI)
	case statusBadArgType:
		return fmt.Errorf("%s: %w", op, ErrBadArgType)
	default:
		return fmt.Errorf("%s: unexpected libffi status %d", op, st)
	}
}
