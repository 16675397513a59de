package ffi

import "unsafe"

// ABI selects a calling convention. The zero of interest is DefaultABI();
// passing a value libffi does not recognize makes preparation fail with
// ErrBadABI.
type ABI int

// DefaultABI returns the platform's default calling convention.
func DefaultABI() ABI { return ABI(defaultABI()) }

// CodePtr is a callable native entry point, as resolved from a Library or
// produced by a bound Closure.
type CodePtr struct {
	addr unsafe.Pointer
}

// NewCodePtr wraps a raw function address.
func NewCodePtr(p unsafe.Pointer) CodePtr { return CodePtr{addr: p} }

// Ptr returns the raw function address.
func (p CodePtr) Ptr() unsafe.Pointer { return p.addr }

// IsNil reports whether the entry point is unset.
func (p CodePtr) IsNil() bool { return p.addr == nil }

// Cif is a prepared call interface: calling convention, result type and
// argument types, validated once and reusable across many calls.
//
// NewCif clones the descriptor trees it is given, so the Cif's view of the
// types is independent of the caller's: the caller keeps ownership of what
// it passed in and may destroy it at any time. A prepared Cif is immutable
// and safe for concurrent Call use.
type Cif struct {
	raw    unsafe.Pointer // C-heap ffi_cif
	result Type
	args   TypeArray
	abi    ABI
}

// NewCif prepares a call interface with the default calling convention.
func NewCif(result Type, args ...Type) (*Cif, error) {
	return NewCifABI(DefaultABI(), result, args...)
}

// NewCifABI prepares a call interface with an explicit calling convention.
// On failure nothing is retained: the error distinguishes an unsupported
// convention (ErrBadABI) from a malformed or oversized type (ErrBadTypedef).
func NewCifABI(abi ABI, result Type, args ...Type) (*Cif, error) {
	owned := make([]Type, len(args))
	for i, a := range args {
		owned[i] = a.Clone()
	}
	c := &Cif{
		raw:    rawCifAlloc(),
		result: result.Clone(),
		args:   NewTypeArray(owned...),
		abi:    abi,
	}
	st := rawPrepCif(c.raw, int(abi), c.args.Len(), c.result.raw, c.args.raw)
	if err := statusError("ffi_prep_cif", st); err != nil {
		c.release()
		return nil, err
	}
	return c, nil
}

func (c *Cif) release() {
	c.args.Destroy()
	c.result.Destroy()
	cFree(c.raw)
	c.raw = nil
}

// Free releases the Cif's owned descriptor clones and C storage. The Cif
// must not be used afterwards, and no closure bound to it may still be
// callable.
func (c *Cif) Free() {
	if c.raw == nil {
		return
	}
	c.release()
}

// ArgCount reports the number of declared arguments.
func (c *Cif) ArgCount() int { return c.args.Len() }

// Result returns a non-owning view of the prepared result type.
func (c *Cif) Result() Type { return c.result }

// ABI reports the prepared calling convention.
func (c *Cif) ABI() ABI { return c.abi }

// Raw exposes the underlying ffi_cif pointer.
func (c *Cif) Raw() unsafe.Pointer { return c.raw }

// Call invokes fn with the prepared signature. ret must point to storage of
// at least the result type's size (nil for a void result; note libffi
// widens integral results to a full register, see Values). args holds one
// pointer per declared argument, each referencing a correctly sized and
// aligned value; Values stages such storage on the C heap. A wrong argument
// count panics, any other shape mismatch is undefined behavior, not a
// reportable error. The call blocks until the native function returns.
func (c *Cif) Call(fn CodePtr, ret unsafe.Pointer, args []unsafe.Pointer) {
	n := c.args.Len()
	if len(args) != n {
		panic("ffi: Cif.Call: wrong number of arguments")
	}
	// Copy the vector to the C heap, sentinel-terminated like every array
	// handed to libffi.
	argv := cMalloc(uintptr(n+1) * ptrSize)
	vec := cPtrSlice(argv, n+1)
	copy(vec, args)
	vec[n] = nil
	rawCall(c.raw, fn.addr, ret, argv)
	cFree(argv)
}
