package ffi

import (
	"math"
	"runtime"
	"strings"
	"testing"
	"unsafe"
)

func needGlibcSonames(t *testing.T) {
	t.Helper()
	if runtime.GOOS != "linux" {
		t.Skip("test uses glibc sonames")
	}
}

func TestOpenMissingLibrary(t *testing.T) {
	needGlibcSonames(t)
	_, err := Open("/no/such/lib.so")
	if err == nil || !strings.Contains(err.Error(), "dlopen") {
		t.Fatalf("missing library: got %v, want dlopen error", err)
	}
}

func TestSymbolMissing(t *testing.T) {
	needGlibcSonames(t)
	lib, err := Open("libc.so.6")
	if err != nil {
		t.Fatalf("Open(libc) error: %v", err)
	}
	defer lib.Close()
	if _, err := lib.Symbol("no_such_symbol_xyz"); err == nil || !strings.Contains(err.Error(), "dlsym") {
		t.Fatalf("missing symbol: got %v, want dlsym error", err)
	}
}

func TestCallCos(t *testing.T) {
	needGlibcSonames(t)
	lib, err := Open("libm.so.6")
	if err != nil {
		t.Fatalf("Open(libm) error: %v", err)
	}
	defer lib.Close()
	cos, err := lib.Symbol("cos")
	if err != nil {
		t.Fatalf("Symbol(cos) error: %v", err)
	}

	c := mustCif(t, Double(), Double())
	defer c.Free()
	v := NewValues(c)
	defer v.Free()
	v.SetFloat64(0, 1.0)
	c.Call(cos, v.Ret(), v.Args())
	if got := v.RetFloat64(); math.Abs(got-math.Cos(1.0)) > 1e-12 {
		t.Fatalf("cos(1.0) = %v, want %v", got, math.Cos(1.0))
	}
}

func TestCallStrlen(t *testing.T) {
	needGlibcSonames(t)
	lib, err := Open("libc.so.6")
	if err != nil {
		t.Fatalf("Open(libc) error: %v", err)
	}
	defer lib.Close()
	strlen, err := lib.Symbol("strlen")
	if err != nil {
		t.Fatalf("Symbol(strlen) error: %v", err)
	}

	c := mustCif(t, UInt64(), Pointer())
	defer c.Free()
	v := NewValues(c)
	defer v.Free()
	v.SetString(0, "hello")
	c.Call(strlen, v.Ret(), v.Args())
	if got := v.RetUint64(); got != 5 {
		t.Fatalf("strlen(hello) = %d, want 5", got)
	}
}

func TestCallQsortWithClosure(t *testing.T) {
	// The classic libffi exercise: hand qsort a comparator synthesized
	// from a Go function.
	needGlibcSonames(t)
	if ptrSize != 8 {
		t.Skip("test describes size_t as u64")
	}
	lib, err := Open("libc.so.6")
	if err != nil {
		t.Fatalf("Open(libc) error: %v", err)
	}
	defer lib.Close()
	qsort, err := lib.Symbol("qsort")
	if err != nil {
		t.Fatalf("Symbol(qsort) error: %v", err)
	}

	cmpCif := mustCif(t, SInt32(), Pointer(), Pointer())
	defer cmpCif.Free()
	cmp, err := NewClosure(cmpCif, compareInt32, nil)
	if err != nil {
		t.Fatalf("NewClosure error: %v", err)
	}
	defer cmp.Free()

	// Stage the array on the C heap.
	const n = 5
	buf := cMalloc(4 * n)
	defer cFree(buf)
	elems := (*[n]int32)(buf)
	copy(elems[:], []int32{4, 1, 5, 2, 3})

	qsortCif := mustCif(t, Void(), Pointer(), UInt64(), UInt64(), Pointer())
	defer qsortCif.Free()
	v := NewValues(qsortCif)
	defer v.Free()
	v.SetPointer(0, buf)
	v.SetUint64(1, n)
	v.SetUint64(2, 4)
	v.SetPointer(3, cmp.Code().Ptr())
	qsortCif.Call(qsort, v.Ret(), v.Args())

	for i, want := range []int32{1, 2, 3, 4, 5} {
		if elems[i] != want {
			t.Fatalf("qsort result[%d] = %d, want %d", i, elems[i], want)
		}
	}
}

// compareInt32 is a qsort comparator: each argument slot holds a pointer to
// an element pointer.
func compareInt32(_ *Cif, ret unsafe.Pointer, args []unsafe.Pointer, _ any) {
	a := *(*int32)(*(*unsafe.Pointer)(args[0]))
	b := *(*int32)(*(*unsafe.Pointer)(args[1]))
	switch {
	case a < b:
		*(*int32)(ret) = -1
	case a > b:
		*(*int32)(ret) = 1
	default:
		*(*int32)(ret) = 0
	}
}
