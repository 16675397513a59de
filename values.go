package ffi

import "unsafe"

// registerSize is the minimum slot size: libffi widens small integral
// results to a full register, and small argument values fit it trivially.
const registerSize = 8

// Values stages argument and result storage for one prepared Cif on the C
// heap, which keeps every pointer handed to libffi outside the Go heap.
// One slot is allocated per declared argument, sized by its descriptor,
// plus a result slot unless the result type is void. Free releases all of
// it, including any C strings created by SetString.
type Values struct {
	args    []unsafe.Pointer
	ret     unsafe.Pointer
	strings []unsafe.Pointer
}

// NewValues allocates zeroed slots for every argument and the result of cif.
func NewValues(cif *Cif) *Values {
	v := &Values{args: make([]unsafe.Pointer, cif.ArgCount())}
	for i := range v.args {
		v.args[i] = allocSlot(typeArraySlotSize(cif, i))
	}
	if cif.result.raw != rawTypeVoid() {
		v.ret = allocSlot(cif.result.Size())
	}
	return v
}

func typeArraySlotSize(cif *Cif, i int) uintptr {
	vec := cPtrSlice(cif.args.raw, cif.args.len)
	return rawTypeSize(vec[i])
}

func allocSlot(size uintptr) unsafe.Pointer {
	if size < registerSize {
		size = registerSize
	}
	p := cMalloc(size)
	cMemset(p, 0, size)
	return p
}

// Args returns the argument pointer vector for Cif.Call.
func (v *Values) Args() []unsafe.Pointer { return v.args }

// Ret returns the result slot, nil for a void result.
func (v *Values) Ret() unsafe.Pointer { return v.ret }

// Free releases every slot. The Values must not be used afterwards.
func (v *Values) Free() {
	for _, p := range v.args {
		cFree(p)
	}
	for _, p := range v.strings {
		cFree(p)
	}
	if v.ret != nil {
		cFree(v.ret)
	}
	v.args, v.strings, v.ret = nil, nil, nil
}

// SetInt32 stores x in argument slot i.
func (v *Values) SetInt32(i int, x int32) { *(*int32)(v.args[i]) = x }

// SetUint32 stores x in argument slot i.
func (v *Values) SetUint32(i int, x uint32) { *(*uint32)(v.args[i]) = x }

// SetInt64 stores x in argument slot i.
func (v *Values) SetInt64(i int, x int64) { *(*int64)(v.args[i]) = x }

// SetUint64 stores x in argument slot i.
func (v *Values) SetUint64(i int, x uint64) { *(*uint64)(v.args[i]) = x }

// SetFloat32 stores x in argument slot i.
func (v *Values) SetFloat32(i int, x float32) { *(*float32)(v.args[i]) = x }

// SetFloat64 stores x in argument slot i.
func (v *Values) SetFloat64(i int, x float64) { *(*float64)(v.args[i]) = x }

// SetPointer stores a raw pointer in argument slot i.
func (v *Values) SetPointer(i int, p unsafe.Pointer) { *(*unsafe.Pointer)(v.args[i]) = p }

// SetString allocates a NUL-terminated C copy of s and stores its address
// in argument slot i. The copy lives until Free.
func (v *Values) SetString(i int, s string) {
	p := cMalloc(uintptr(len(s)) + 1)
	buf := (*[1<<30 - 1]byte)(p)[: len(s)+1 : len(s)+1]
	copy(buf, s)
	buf[len(s)] = 0
	v.strings = append(v.strings, p)
	*(*unsafe.Pointer)(v.args[i]) = p
}

// SetBytes copies b into argument slot i, for aggregate values passed by
// value. The slot is sized by the argument's descriptor; b must not exceed it.
func (v *Values) SetBytes(i int, b []byte) {
	if len(b) == 0 {
		return
	}
	cMemcpy(v.args[i], unsafe.Pointer(&b[0]), uintptr(len(b)))
}

// Integral results narrower than a register come back widened to a full
// ffi_arg, so the readers below load the whole word and truncate rather
// than reading the low bytes, which would be wrong on big-endian targets.

// RetInt32 reads the result slot as int32.
func (v *Values) RetInt32() int32 { return int32(*(*uintptr)(v.ret)) }

// RetUint32 reads the result slot as uint32.
func (v *Values) RetUint32() uint32 { return uint32(*(*uintptr)(v.ret)) }

// RetInt64 reads the result slot as int64.
func (v *Values) RetInt64() int64 { return *(*int64)(v.ret) }

// RetUint64 reads the result slot as uint64.
func (v *Values) RetUint64() uint64 { return *(*uint64)(v.ret) }

// RetFloat32 reads the result slot as float32.
func (v *Values) RetFloat32() float32 { return *(*float32)(v.ret) }

// RetFloat64 reads the result slot as float64.
func (v *Values) RetFloat64() float64 { return *(*float64)(v.ret) }

// RetPointer reads the result slot as a raw pointer.
func (v *Values) RetPointer() unsafe.Pointer { return *(*unsafe.Pointer)(v.ret) }
