// Package ffi calls native functions whose signatures are only known at
// runtime, and synthesizes native entry points that forward into Go.
//
// A function signature is described by Type descriptors (atomic singletons
// plus owned aggregate trees), prepared once into a Cif, and then used to
// invoke entry points resolved from a Library or to bind a Closure whose
// generated code calls back into a ClosureFunc with a bound context value.
// ABI-specific argument marshaling is delegated to the system libffi
// through cgo; this package is the memory-safety layer on top of it.
package ffi

// Version is the library version reported by the ffiprobe tool.
const Version = "0.2.0"
