package ffi

import (
	"runtime/cgo"
	"unsafe"
)

// ClosureFunc is the host callback run when a bound closure's entry point
// is called from native code. ret points to result storage sized for the
// Cif's result type (unused for void); args holds one pointer per declared
// argument, in declared order, each referencing the value the native caller
// passed. userdata is the context bound alongside the callback.
type ClosureFunc func(cif *Cif, ret unsafe.Pointer, args []unsafe.Pointer, userdata any)

type closureState uint8

const (
	closureUnbound closureState = iota
	closureBound
	closureFreed
)

// Closure is a dynamically constructed native entry point that forwards
// calls into a ClosureFunc. It moves through three states: allocated
// (unbound), bound, and freed. The entry point is callable only while
// bound; calling it after Free is undefined behavior.
//
// A bound closure may be called concurrently from multiple threads only if
// its ClosureFunc is itself safe for that.
type Closure struct {
	alloc    unsafe.Pointer // ffi_closure*
	code     CodePtr
	state    closureState
	cif      *Cif
	fn       ClosureFunc
	userdata any
	handle   cgo.Handle
}

// AllocClosure reserves a writable/executable closure block. Exhaustion of
// executable memory is fatal, matching descriptor allocation.
func AllocClosure() *Closure {
	alloc, code := rawClosureAlloc()
	if alloc == nil {
		panic("ffi: closure allocation failed")
	}
	return &Closure{alloc: alloc, code: NewCodePtr(code)}
}

// Bind writes the trampoline so that calling the returned entry point with
// cif's argument shape runs fn(cif, ret, args, userdata). The cif must stay
// alive (not freed) for as long as the closure is callable. Binding twice
// returns ErrDoubleBind and leaves the first binding intact.
func (c *Closure) Bind(cif *Cif, fn ClosureFunc, userdata any) (CodePtr, error) {
	switch c.state {
	case closureBound:
		return CodePtr{}, ErrDoubleBind
	case closureFreed:
		return CodePtr{}, ErrClosureFreed
	}
	c.cif = cif
	c.fn = fn
	c.userdata = userdata
	c.handle = cgo.NewHandle(c)
	st := rawPrepClosure(c.alloc, cif.raw, uintptr(c.handle), c.code.addr)
	if err := statusError("ffi_prep_closure_loc", st); err != nil {
		c.handle.Delete()
		c.cif, c.fn, c.userdata = nil, nil, nil
		return CodePtr{}, err
	}
	c.state = closureBound
	return c.code, nil
}

// Code returns the closure's entry point. It panics once the closure has
// been freed; that call would otherwise jump into released memory.
func (c *Closure) Code() CodePtr {
	if c.state == closureFreed {
		panic("ffi: closure used after Free")
	}
	return c.code
}

// Free releases the executable block and invalidates the entry point.
// Safe to call more than once; everything else on the closure is not.
func (c *Closure) Free() {
	if c.state == closureFreed {
		return
	}
	if c.state == closureBound {
		c.handle.Delete()
	}
	rawClosureFree(c.alloc)
	c.alloc = nil
	c.state = closureFreed
}

// NewClosure allocates and binds in one step.
func NewClosure(cif *Cif, fn ClosureFunc, userdata any) (*Closure, error) {
	c := AllocClosure()
	if _, err := c.Bind(cif, fn, userdata); err != nil {
		c.Free()
		return nil, err
	}
	return c, nil
}

// closureDispatch is the landing point for the C thunk: it rebuilds the
// *Closure from its handle and forwards to the bound ClosureFunc.
func closureDispatch(h uintptr, ret, args unsafe.Pointer) {
	c, ok := cgo.Handle(h).Value().(*Closure)
	if !ok || c == nil || c.state != closureBound {
		return
	}
	n := c.cif.ArgCount()
	var argv []unsafe.Pointer
	if n > 0 {
		argv = cPtrSlice(args, n)
	}
	c.fn(c.cif, ret, argv, c.userdata)
}
