package ffi

/*
#cgo pkg-config: libffi
#cgo linux LDFLAGS: -ldl

#include <ffi.h>
#include <dlfcn.h>
#include <stdlib.h>
#include <string.h>
#include <stdint.h> // uintptr_t

static int ff_default_abi(void) {
  return FFI_DEFAULT_ABI;
}

// ffi_call wrapper: accept a generic void* fn and a void** argv vector.
// This avoids cgo's function-pointer type constraints at the call site.
static void ff_call(ffi_cif* cif, void* fn, void* rvalue, void** avalue) {
  ffi_call(cif, (void (*)(void))fn, rvalue, avalue);
}

// -------- closure helpers ----------
static void* ff_closure_alloc(void** executable) {
  return ffi_closure_alloc(sizeof(ffi_closure), executable);
}
static void ff_closure_free(void* closure) {
  ffi_closure_free((ffi_closure*)closure);
}

// Forward decl to Go; the C thunk forwards into it with an integer handle.
extern void goClosureInvoke(ffi_cif*, void*, void**, uintptr_t);
static void ff_closure_thunk(ffi_cif* cif, void* ret, void** args, void* user) {
  goClosureInvoke(cif, ret, args, (uintptr_t)user);
}
// Bind the thunk on the C side to avoid cgo func-ptr typing pitfalls.
static int ff_prep_closure(void* closure, ffi_cif* cif, void* user, void* executable) {
  return ffi_prep_closure_loc((ffi_closure*)closure, cif, ff_closure_thunk, user, executable);
}

// -------- dlopen/dlsym ----------
static void* ff_dlopen(const char* path) {
  return dlopen(path, RTLD_LAZY | RTLD_LOCAL);
}
static const char* ff_dlerror(void) {
  return dlerror();
}
static int ff_dlclose(void* h) {
  return dlclose(h);
}
// Clear dlerror, call dlsym, and return the error (if any) alongside the symbol.
static void* ff_dlsym_clear(void* h, const char* name, char** err) {
  dlerror(); // clear
  void* p = dlsym(h, name);
  char* e = dlerror();
  if (e) { if (err) *err = e; return NULL; }
  if (err) *err = NULL;
  return p;
}
*/
import "C"

import (
	"fmt"
	"unsafe"
)

// All C references live in this file; the rest of the package works over
// opaque unsafe.Pointer handles to C-heap objects.

// libffi status codes, surfaced by prepare paths.
var (
	statusOK         = int(C.FFI_OK)
	statusBadTypedef = int(C.FFI_BAD_TYPEDEF)
	statusBadABI     = int(C.FFI_BAD_ABI)
	statusBadArgType = int(C.FFI_BAD_ARGTYPE)
)

// typeTagStruct is the platform's aggregate tag for struct descriptors.
var typeTagStruct = uint16(C.FFI_TYPE_STRUCT)

var ptrSize = unsafe.Sizeof(uintptr(0))

// -------------------------
// C memory helpers
// -------------------------

func cMalloc(n uintptr) unsafe.Pointer {
	p := C.malloc(C.size_t(n))
	if p == nil {
		panic("ffi: out of memory")
	}
	return p
}
func cFree(p unsafe.Pointer) { C.free(p) }

func cMemset(dst unsafe.Pointer, b byte, n uintptr) { C.memset(dst, C.int(int(b)), C.size_t(n)) }

func cMemcpy(dst, src unsafe.Pointer, n uintptr) { C.memcpy(dst, src, C.size_t(n)) }

// cPtrSlice views a C-heap void* array as a Go slice.
func cPtrSlice(mem unsafe.Pointer, n int) []unsafe.Pointer {
	return (*[1<<30 - 1]unsafe.Pointer)(mem)[:n:n]
}

// -------------------------
// Raw ffi_type accessors
// -------------------------

func rawTypeVoid() unsafe.Pointer       { return unsafe.Pointer(&C.ffi_type_void) }
func rawTypeUint8() unsafe.Pointer      { return unsafe.Pointer(&C.ffi_type_uint8) }
func rawTypeSint8() unsafe.Pointer      { return unsafe.Pointer(&C.ffi_type_sint8) }
func rawTypeUint16() unsafe.Pointer     { return unsafe.Pointer(&C.ffi_type_uint16) }
func rawTypeSint16() unsafe.Pointer     { return unsafe.Pointer(&C.ffi_type_sint16) }
func rawTypeUint32() unsafe.Pointer     { return unsafe.Pointer(&C.ffi_type_uint32) }
func rawTypeSint32() unsafe.Pointer     { return unsafe.Pointer(&C.ffi_type_sint32) }
func rawTypeUint64() unsafe.Pointer     { return unsafe.Pointer(&C.ffi_type_uint64) }
func rawTypeSint64() unsafe.Pointer     { return unsafe.Pointer(&C.ffi_type_sint64) }
func rawTypeFloat() unsafe.Pointer      { return unsafe.Pointer(&C.ffi_type_float) }
func rawTypeDouble() unsafe.Pointer     { return unsafe.Pointer(&C.ffi_type_double) }
func rawTypePointer() unsafe.Pointer    { return unsafe.Pointer(&C.ffi_type_pointer) }
func rawTypeLongdouble() unsafe.Pointer { return unsafe.Pointer(&C.ffi_type_longdouble) }

func rawTypeTag(p unsafe.Pointer) uint16        { return uint16((*C.ffi_type)(p)._type) }
func rawTypeSize(p unsafe.Pointer) uintptr      { return uintptr((*C.ffi_type)(p).size) }
func rawTypeAlignment(p unsafe.Pointer) uintptr { return uintptr((*C.ffi_type)(p).alignment) }

func rawTypeElements(p unsafe.Pointer) unsafe.Pointer {
	return unsafe.Pointer((*C.ffi_type)(p).elements)
}

// rawTypeAllocStruct mallocs a zeroed struct-tagged ffi_type owning elements.
// Size and alignment stay zero until ffi_prep_cif computes the layout.
func rawTypeAllocStruct(elements unsafe.Pointer) unsafe.Pointer {
	p := (*C.ffi_type)(cMalloc(unsafe.Sizeof(C.ffi_type{})))
	p.size = 0
	p.alignment = 0
	p._type = C.FFI_TYPE_STRUCT
	p.elements = (**C.ffi_type)(elements)
	return unsafe.Pointer(p)
}

// -------------------------
// CIF and call
// -------------------------

func defaultABI() int { return int(C.ff_default_abi()) }

func rawCifAlloc() unsafe.Pointer {
	p := cMalloc(unsafe.Sizeof(C.ffi_cif{}))
	cMemset(p, 0, unsafe.Sizeof(C.ffi_cif{}))
	return p
}

func rawPrepCif(cif unsafe.Pointer, abi, nargs int, rtype, atypes unsafe.Pointer) int {
	st := C.ffi_prep_cif((*C.ffi_cif)(cif), C.ffi_abi(abi), C.uint(nargs),
		(*C.ffi_type)(rtype), (**C.ffi_type)(atypes))
	return int(st)
}

func rawCall(cif, fn, rvalue, avalue unsafe.Pointer) {
	C.ff_call((*C.ffi_cif)(cif), fn, rvalue, (*unsafe.Pointer)(avalue))
}

// -------------------------
// Closures
// -------------------------

func rawClosureAlloc() (closure, code unsafe.Pointer) {
	closure = C.ff_closure_alloc((*unsafe.Pointer)(unsafe.Pointer(&code)))
	return closure, code
}

func rawClosureFree(closure unsafe.Pointer) { C.ff_closure_free(closure) }

func rawPrepClosure(closure, cif unsafe.Pointer, user uintptr, code unsafe.Pointer) int {
	st := C.ff_prep_closure(closure, (*C.ffi_cif)(cif), unsafe.Pointer(user), code)
	return int(st)
}

//export goClosureInvoke
func goClosureInvoke(_ *C.ffi_cif, ret unsafe.Pointer, args *unsafe.Pointer, user C.uintptr_t) {
	closureDispatch(uintptr(user), ret, unsafe.Pointer(args))
}

// -------------------------
// dlopen/dlsym
// -------------------------

func dlerr() string {
	errC := C.ff_dlerror()
	if errC != nil {
		return C.GoString(errC)
	}
	return "unknown dlerror"
}

func dlOpen(path string) (unsafe.Pointer, error) {
	cs := C.CString(path)
	defer C.free(unsafe.Pointer(cs))
	h := C.ff_dlopen(cs)
	if h == nil {
		return nil, fmt.Errorf("dlopen(%q) failed: %s", path, dlerr())
	}
	return h, nil
}

func dlClose(h unsafe.Pointer) error {
	if int(C.ff_dlclose(h)) != 0 {
		return fmt.Errorf("dlclose failed: %s", dlerr())
	}
	return nil
}

// dlSym resolves a symbol or returns an error with dlerror detail.
func dlSym(h unsafe.Pointer, name string) (unsafe.Pointer, error) {
	cs := C.CString(name)
	defer C.free(unsafe.Pointer(cs))
	var cerr *C.char
	p := C.ff_dlsym_clear(h, cs, &cerr)
	if cerr != nil {
		return nil, fmt.Errorf("dlsym(%q) failed: %s", name, C.GoString(cerr))
	}
	return p, nil
}
