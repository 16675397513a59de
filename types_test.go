package ffi

import (
	"errors"
	"testing"
)

func mustCif(t *testing.T, result Type, args ...Type) *Cif {
	t.Helper()
	c, err := NewCif(result, args...)
	if err != nil {
		t.Fatalf("NewCif error: %v", err)
	}
	return c
}

func TestAtomicCloneIsIdentity(t *testing.T) {
	atoms := map[string]Type{
		"void":       Void(),
		"uint8":      UInt8(),
		"sint8":      SInt8(),
		"uint16":     UInt16(),
		"sint16":     SInt16(),
		"uint32":     UInt32(),
		"sint32":     SInt32(),
		"uint64":     UInt64(),
		"sint64":     SInt64(),
		"float":      Float(),
		"double":     Double(),
		"pointer":    Pointer(),
		"longdouble": LongDouble(),
	}
	for name, a := range atoms {
		t.Run(name, func(t *testing.T) {
			if a.Clone().raw != a.raw {
				t.Fatalf("clone of atomic %s is not the same singleton", name)
			}
		})
	}
}

func TestAtomicDestroyIsNoop(t *testing.T) {
	d := Double()
	d.Destroy()
	d.Destroy()
	// The singleton must survive destroy and remain usable.
	if d.Size() != 8 {
		t.Fatalf("double size after destroy = %d, want 8", d.Size())
	}
	c := mustCif(t, Double(), Double())
	defer c.Free()
}

func TestStructCreateAndDestroy(t *testing.T) {
	s := Struct(SInt64(), SInt64(), UInt64())
	if tag := rawTypeTag(s.raw); !isAggregate(tag) {
		t.Fatalf("struct tag %d not aggregate", tag)
	}
	if n := typeArrayLen(rawTypeElements(s.raw)); n != 3 {
		t.Fatalf("struct child count = %d, want 3", n)
	}
	s.Destroy()
}

func TestStructCloneIsIndependent(t *testing.T) {
	orig := Struct(SInt32(), SInt32())
	clone := orig.Clone()
	if clone.raw == orig.raw {
		t.Fatal("aggregate clone returned the same node")
	}
	if rawTypeElements(clone.raw) == rawTypeElements(orig.raw) {
		t.Fatal("aggregate clone shares its child array")
	}

	// Destroying the clone must leave the original fully usable.
	clone.Destroy()
	c := mustCif(t, orig, SInt32())
	c.Free()
	orig.Destroy()
}

func TestStructRoundTripViaClone(t *testing.T) {
	// Build, clone, destroy the original, then prepare with the clone.
	orig := Struct(SInt32(), SInt32())
	clone := orig.Clone()
	orig.Destroy()

	c := mustCif(t, clone)
	if got := c.Result().Size(); got != 8 {
		t.Fatalf("prepared struct{i32,i32} size = %d, want 8", got)
	}
	c.Free()
	clone.Destroy()
}

func TestNestedStructClone(t *testing.T) {
	inner := Struct(SInt32())
	outer := Struct(inner, Double())
	clone := outer.Clone()

	outerKids := cPtrSlice(rawTypeElements(outer.raw), 3)
	cloneKids := cPtrSlice(rawTypeElements(clone.raw), 3)
	if cloneKids[0] == outerKids[0] {
		t.Fatal("nested aggregate child was not deep-copied")
	}
	if cloneKids[1] != outerKids[1] {
		t.Fatal("atomic child lost singleton identity in clone")
	}
	if cloneKids[2] != nil {
		t.Fatal("clone is missing the sentinel")
	}

	outer.Destroy()
	// clone survives destruction of the source tree
	c := mustCif(t, Void(), clone)
	c.Free()
	clone.Destroy()
}

func TestTypeArrayClonePreservesLength(t *testing.T) {
	for _, n := range []int{0, 1, 3} {
		elems := make([]Type, n)
		for i := range elems {
			elems[i] = SInt32()
		}
		arr := NewTypeArray(elems...)
		clone := arr.Clone()
		if clone.Len() != n {
			t.Fatalf("clone len = %d, want %d", clone.Len(), n)
		}
		if got := typeArrayLen(clone.raw); got != n {
			t.Fatalf("clone sentinel scan = %d, want %d", got, n)
		}
		if cPtrSlice(clone.raw, n+1)[n] != nil {
			t.Fatalf("sentinel missing at index %d", n)
		}
		clone.Destroy()
		arr.Destroy()
	}
}

func TestTypeArrayCloneElementwise(t *testing.T) {
	arr := NewTypeArray(SInt32(), Struct(UInt16(), UInt64()))
	clone := arr.Clone()

	src := cPtrSlice(arr.raw, 3)
	dst := cPtrSlice(clone.raw, 3)
	if dst[0] != src[0] {
		t.Fatal("atomic element should clone to the same singleton")
	}
	if dst[1] == src[1] {
		t.Fatal("aggregate element should clone to a fresh node")
	}

	arr.Destroy()
	clone.Destroy()
}

func TestEmptyStructPrepare(t *testing.T) {
	// A zero-field aggregate is either a valid zero-sized marker or a
	// malformed type, depending on the platform's libffi.
	empty := Struct()
	defer empty.Destroy()
	c, err := NewCif(Void(), empty)
	if err == nil {
		c.Free()
		return
	}
	if !errors.Is(err, ErrBadTypedef) {
		t.Fatalf("empty struct: got %v, want nil or ErrBadTypedef", err)
	}
}

func TestDestroyNilIsNoop(t *testing.T) {
	typeDestroy(nil)
	var zero Type
	zero.Destroy()
}
