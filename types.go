package ffi

import "unsafe"

// Type descriptors live on the C heap because libffi reads them in place.
// Atomic types, including the complex types available under ffi_complex,
// are libffi's static singletons: never allocated, cloned, or freed by
// this package. Struct aggregates are malloc'd trees whose child list is
// a null-terminated ffi_type* array owned exclusively by the parent.

// Type describes a single C value shape for use in a Cif.
//
// Atomic Types (UInt8 through Pointer) are shared singletons; Clone returns
// them unchanged and Destroy is a no-op on them. A Type returned by Struct
// owns its field trees; destroying it twice, or destroying it while another
// un-cloned holder still uses it, is undefined behavior.
type Type struct {
	raw unsafe.Pointer // *ffi_type
}

// TypeArray is a null-terminated sequence of Type references on the C heap,
// usable as a Cif argument list. It owns its (possibly aggregate) elements.
type TypeArray struct {
	raw unsafe.Pointer // **ffi_type, sentinel-terminated
	len int
}

// isAggregate reports whether a descriptor with this tag is owned by this
// package. Only struct nodes are: every other tag, the complex statics
// included, belongs to a libffi singleton that must never be copied or
// freed.
func isAggregate(tag uint16) bool {
	return tag == typeTagStruct
}

// typeArrayLen counts elements up to (not including) the null sentinel.
func typeArrayLen(array unsafe.Pointer) int {
	n := 0
	for {
		vec := cPtrSlice(array, n+1)
		if vec[n] == nil {
			return n
		}
		n++
	}
}

// typeArrayCreateEmpty allocates a pointer array for n elements plus the
// sentinel, with the sentinel already in place.
func typeArrayCreateEmpty(n int) unsafe.Pointer {
	array := cMalloc(uintptr(n+1) * ptrSize)
	cPtrSlice(array, n+1)[n] = nil
	return array
}

// typeArrayCreate builds a sentinel-terminated array from elements,
// taking ownership of each.
func typeArrayCreate(elements []Type) unsafe.Pointer {
	array := typeArrayCreateEmpty(len(elements))
	vec := cPtrSlice(array, len(elements)+1)
	for i, t := range elements {
		vec[i] = t.raw
	}
	return array
}

// typeArrayClone deep-copies a sentinel-terminated array element by element.
// The result is independently destroyable and has the same length.
func typeArrayClone(array unsafe.Pointer) unsafe.Pointer {
	n := typeArrayLen(array)
	clone := typeArrayCreateEmpty(n)
	src := cPtrSlice(array, n+1)
	dst := cPtrSlice(clone, n+1)
	for i := 0; i < n; i++ {
		dst[i] = typeClone(src[i])
	}
	return clone
}

// typeClone copies a descriptor. Atomics are returned as-is: identity is
// load-bearing, callers compare against the singletons.
func typeClone(raw unsafe.Pointer) unsafe.Pointer {
	if raw == nil {
		return nil
	}
	if !isAggregate(rawTypeTag(raw)) {
		return raw
	}
	return rawTypeAllocStruct(typeArrayClone(rawTypeElements(raw)))
}

// typeArrayDestroy frees every element up to the sentinel, then the array.
func typeArrayDestroy(array unsafe.Pointer) {
	n := typeArrayLen(array)
	vec := cPtrSlice(array, n+1)
	for i := 0; i < n; i++ {
		typeDestroy(vec[i])
	}
	cFree(array)
}

// typeDestroy frees a descriptor if it was dynamically allocated.
func typeDestroy(raw unsafe.Pointer) {
	if raw == nil {
		return
	}
	if !isAggregate(rawTypeTag(raw)) {
		return
	}
	typeArrayDestroy(rawTypeElements(raw))
	cFree(raw)
}

// Void returns the C void type, valid only as a Cif result type.
func Void() Type { return Type{raw: rawTypeVoid()} }

// UInt8 returns the unsigned 8-bit numeric type.
func UInt8() Type { return Type{raw: rawTypeUint8()} }

// SInt8 returns the signed 8-bit numeric type.
func SInt8() Type { return Type{raw: rawTypeSint8()} }

// UInt16 returns the unsigned 16-bit numeric type.
func UInt16() Type { return Type{raw: rawTypeUint16()} }

// SInt16 returns the signed 16-bit numeric type.
func SInt16() Type { return Type{raw: rawTypeSint16()} }

// UInt32 returns the unsigned 32-bit numeric type.
func UInt32() Type { return Type{raw: rawTypeUint32()} }

// SInt32 returns the signed 32-bit numeric type.
func SInt32() Type { return Type{raw: rawTypeSint32()} }

// UInt64 returns the unsigned 64-bit numeric type.
func UInt64() Type { return Type{raw: rawTypeUint64()} }

// SInt64 returns the signed 64-bit numeric type.
func SInt64() Type { return Type{raw: rawTypeSint64()} }

// Float returns the C float (32-bit floating point) type.
func Float() Type { return Type{raw: rawTypeFloat()} }

// Double returns the C double (64-bit floating point) type.
func Double() Type { return Type{raw: rawTypeDouble()} }

// Pointer returns the C void* type, for passing any kind of pointer.
func Pointer() Type { return Type{raw: rawTypePointer()} }

// LongDouble returns the C long double (extended precision) type.
func LongDouble() Type { return Type{raw: rawTypeLongdouble()} }

// Struct builds a struct descriptor whose fields have the given types, in
// order. It takes ownership of the field trees: do not destroy them
// separately, and Clone any field you intend to reuse elsewhere.
func Struct(fields ...Type) Type {
	return Type{raw: rawTypeAllocStruct(typeArrayCreate(fields))}
}

// Clone deep-copies the descriptor tree. The copy is fully independent of
// the receiver; atomic types are returned unchanged.
func (t Type) Clone() Type { return Type{raw: typeClone(t.raw)} }

// Destroy frees an aggregate descriptor and its entire owned subtree.
// It is a no-op on atomic types and nil descriptors. The receiver must not
// be used afterwards.
func (t Type) Destroy() { typeDestroy(t.raw) }

// Size reports the descriptor's size in bytes. For aggregates the value is
// zero until a Cif preparation has computed the layout.
func (t Type) Size() uintptr { return rawTypeSize(t.raw) }

// Alignment reports the descriptor's alignment in bytes.
func (t Type) Alignment() uintptr { return rawTypeAlignment(t.raw) }

// Raw exposes the underlying ffi_type pointer for callers that need to talk
// to libffi directly.
func (t Type) Raw() unsafe.Pointer { return t.raw }

// NewTypeArray builds a sentinel-terminated argument array, taking
// ownership of the elements.
func NewTypeArray(elements ...Type) TypeArray {
	return TypeArray{raw: typeArrayCreate(elements), len: len(elements)}
}

// Len reports the number of elements, excluding the sentinel.
func (a TypeArray) Len() int { return a.len }

// Clone deep-copies the array and every element in it.
func (a TypeArray) Clone() TypeArray {
	return TypeArray{raw: typeArrayClone(a.raw), len: a.len}
}

// Destroy frees the array and every owned element. Must not be called
// twice, and not while a Cif still references the array.
func (a TypeArray) Destroy() { typeArrayDestroy(a.raw) }

// Raw exposes the underlying sentinel-terminated ffi_type** pointer.
func (a TypeArray) Raw() unsafe.Pointer { return a.raw }
