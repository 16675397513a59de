//go:build ffi_complex

package ffi

/*
#include <ffi.h>
*/
import "C"

import "unsafe"

// Complex descriptors are only present when libffi was built with complex
// support, so they live behind the ffi_complex build tag. Like the other
// atomic types they are libffi's static singletons: Clone returns them
// unchanged and Destroy is a no-op on them.

func rawTypeComplexFloat() unsafe.Pointer {
	return unsafe.Pointer(&C.ffi_type_complex_float)
}
func rawTypeComplexDouble() unsafe.Pointer {
	return unsafe.Pointer(&C.ffi_type_complex_double)
}
func rawTypeComplexLongdouble() unsafe.Pointer {
	return unsafe.Pointer(&C.ffi_type_complex_longdouble)
}

// ComplexFloat returns the C _Complex float type.
func ComplexFloat() Type { return Type{raw: rawTypeComplexFloat()} }

// ComplexDouble returns the C _Complex double type.
func ComplexDouble() Type { return Type{raw: rawTypeComplexDouble()} }

// ComplexLongDouble returns the C _Complex long double type.
func ComplexLongDouble() Type { return Type{raw: rawTypeComplexLongdouble()} }
