package ffi

import (
	"encoding/binary"
	"testing"
	"unsafe"
)

func TestValuesSlotsAndFree(t *testing.T) {
	c := mustCif(t, SInt32(), SInt32(), Double(), Pointer())
	defer c.Free()
	v := NewValues(c)
	if len(v.Args()) != 3 {
		t.Fatalf("arg slots = %d, want 3", len(v.Args()))
	}
	if v.Ret() == nil {
		t.Fatal("no result slot for i32 result")
	}
	v.Free()
	if v.Args() != nil || v.Ret() != nil {
		t.Fatal("Free did not clear the slots")
	}
}

func TestValuesVoidResultHasNoSlot(t *testing.T) {
	c := mustCif(t, Void(), SInt32())
	defer c.Free()
	v := NewValues(c)
	defer v.Free()
	if v.Ret() != nil {
		t.Fatal("void result should not allocate a slot")
	}
}

func TestStructByValueThroughClosure(t *testing.T) {
	if ptrSize != 8 {
		t.Skip("offsets assume a 64-bit ABI")
	}
	pair := Struct(SInt32(), SInt32())
	defer pair.Destroy()
	c := mustCif(t, SInt32(), pair)
	defer c.Free()

	// The callback sees the aggregate argument as a pointer to its storage.
	cl, err := NewClosure(c, func(_ *Cif, ret unsafe.Pointer, args []unsafe.Pointer, _ any) {
		p := args[0]
		a := *(*int32)(p)
		b := *(*int32)(unsafe.Pointer(uintptr(p) + 4))
		*(*int32)(ret) = a + b
	}, nil)
	if err != nil {
		t.Fatalf("NewClosure error: %v", err)
	}
	defer cl.Free()

	v := NewValues(c)
	defer v.Free()
	var buf [8]byte
	binary.LittleEndian.PutUint32(buf[0:], 30)
	binary.LittleEndian.PutUint32(buf[4:], 12)
	v.SetBytes(0, buf[:])
	c.Call(cl.Code(), v.Ret(), v.Args())
	if got := v.RetInt32(); got != 42 {
		t.Fatalf("sum(pair{30,12}) = %d, want 42", got)
	}
}
