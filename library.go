package ffi

import "unsafe"

// Library is an open dynamic library handle.
type Library struct {
	name string
	h    unsafe.Pointer
}

// Open dlopens a library by path or soname. The dlerror detail is surfaced
// on failure.
func Open(path string) (*Library, error) {
	h, err := dlOpen(path)
	if err != nil {
		return nil, err
	}
	return &Library{name: path, h: h}, nil
}

// Name returns the path or soname the library was opened with.
func (l *Library) Name() string { return l.name }

// Symbol resolves a function symbol to a callable entry point.
func (l *Library) Symbol(name string) (CodePtr, error) {
	p, err := dlSym(l.h, name)
	if err != nil {
		return CodePtr{}, err
	}
	return NewCodePtr(p), nil
}

// Variable resolves a data symbol to the address of the object.
func (l *Library) Variable(name string) (unsafe.Pointer, error) {
	return dlSym(l.h, name)
}

// Close dlcloses the handle. Entry points resolved from the library must
// not be called afterwards.
func (l *Library) Close() error {
	if l.h == nil {
		return nil
	}
	err := dlClose(l.h)
	l.h = nil
	return err
}
