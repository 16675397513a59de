package cli

import (
	"fmt"
	"strings"

	"github.com/daios-ai/ffi"
)

// Kind classifies a signature token for argument conversion and result
// printing. The descriptor alone is not enough: str and ptr are both
// pointers at the ABI level but are parsed and printed differently.
type Kind int

const (
	KindVoid Kind = iota
	KindI8
	KindU8
	KindI16
	KindU16
	KindI32
	KindU32
	KindI64
	KindU64
	KindF32
	KindF64
	KindPtr
	KindStr
	KindStruct
)

var scalarKinds = map[string]Kind{
	"void": KindVoid,
	"i8":   KindI8,
	"u8":   KindU8,
	"i16":  KindI16,
	"u16":  KindU16,
	"i32":  KindI32,
	"u32":  KindU32,
	"i64":  KindI64,
	"u64":  KindU64,
	"f32":  KindF32,
	"f64":  KindF64,
	"ptr":  KindPtr,
	"str":  KindStr,
}

func kindType(k Kind) ffi.Type {
	switch k {
	case KindVoid:
		return ffi.Void()
	case KindI8:
		return ffi.SInt8()
	case KindU8:
		return ffi.UInt8()
	case KindI16:
		return ffi.SInt16()
	case KindU16:
		return ffi.UInt16()
	case KindI32:
		return ffi.SInt32()
	case KindU32:
		return ffi.UInt32()
	case KindI64:
		return ffi.SInt64()
	case KindU64:
		return ffi.UInt64()
	case KindF32:
		return ffi.Float()
	case KindF64:
		return ffi.Double()
	default: // KindPtr, KindStr
		return ffi.Pointer()
	}
}

// Param is one parsed slot of a signature: its conversion kind and its
// descriptor. Struct descriptors are owned by the Signature.
type Param struct {
	Kind Kind
	Type ffi.Type
}

// Signature is a parsed "ret(param,...)" declaration.
type Signature struct {
	Ret    Param
	Params []Param
}

// Destroy frees the aggregate descriptor trees the signature owns.
func (s *Signature) Destroy() {
	s.Ret.Type.Destroy()
	for _, p := range s.Params {
		p.Type.Destroy()
	}
	s.Params = nil
}

// ParseSignature parses a declaration like "f64(f64)" or
// "i32(str,struct{i32,i32})". Grammar:
//
//	sig    := type '(' [ type (',' type)* ] ')'
//	type   := scalar | 'struct' '{' [ type (',' type)* ] '}'
//	scalar := void|i8|u8|i16|u16|i32|u32|i64|u64|f32|f64|ptr|str
//
// void is only valid as the return type.
func ParseSignature(src string) (*Signature, error) {
	p := &sigParser{src: src}
	sig, err := p.parse()
	if err != nil {
		return nil, fmt.Errorf("signature %q: %w", src, err)
	}
	return sig, nil
}

type sigParser struct {
	src string
	pos int
}

func (p *sigParser) parse() (*Signature, error) {
	ret, err := p.parseType()
	if err != nil {
		return nil, err
	}
	params, err := p.parseList('(', ')')
	if err != nil {
		ret.Type.Destroy()
		return nil, err
	}
	p.skipSpace()
	if p.pos != len(p.src) {
		destroyParams(ret, params)
		return nil, fmt.Errorf("trailing input at offset %d", p.pos)
	}
	for _, prm := range params {
		if prm.Kind == KindVoid {
			destroyParams(ret, params)
			return nil, fmt.Errorf("void is only valid as the return type")
		}
	}
	return &Signature{Ret: ret, Params: params}, nil
}

func destroyParams(ret Param, params []Param) {
	ret.Type.Destroy()
	for _, p := range params {
		p.Type.Destroy()
	}
}

func (p *sigParser) parseList(open, term byte) ([]Param, error) {
	if err := p.expect(open); err != nil {
		return nil, err
	}
	var params []Param
	fail := func(err error) ([]Param, error) {
		for _, prm := range params {
			prm.Type.Destroy()
		}
		return nil, err
	}
	p.skipSpace()
	if p.peek() == term {
		p.pos++
		return nil, nil
	}
	for {
		prm, err := p.parseType()
		if err != nil {
			return fail(err)
		}
		params = append(params, prm)
		p.skipSpace()
		switch p.peek() {
		case ',':
			p.pos++
		case term:
			p.pos++
			return params, nil
		default:
			return fail(fmt.Errorf("expected ',' or %q at offset %d", string(term), p.pos))
		}
	}
}

func (p *sigParser) parseType() (Param, error) {
	p.skipSpace()
	word := p.word()
	if word == "" {
		return Param{}, fmt.Errorf("expected a type at offset %d", p.pos)
	}
	if word == "struct" {
		fields, err := p.parseList('{', '}')
		if err != nil {
			return Param{}, err
		}
		types := make([]ffi.Type, len(fields))
		for i, f := range fields {
			types[i] = f.Type
		}
		// Struct takes ownership of the field trees.
		return Param{Kind: KindStruct, Type: ffi.Struct(types...)}, nil
	}
	k, ok := scalarKinds[word]
	if !ok {
		return Param{}, fmt.Errorf("unknown type %q", word)
	}
	return Param{Kind: k, Type: kindType(k)}, nil
}

func (p *sigParser) word() string {
	start := p.pos
	for p.pos < len(p.src) {
		c := p.src[p.pos]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			p.pos++
			continue
		}
		break
	}
	return p.src[start:p.pos]
}

func (p *sigParser) expect(c byte) error {
	p.skipSpace()
	if p.peek() != c {
		return fmt.Errorf("expected %q at offset %d", string(c), p.pos)
	}
	p.pos++
	return nil
}

func (p *sigParser) peek() byte {
	if p.pos >= len(p.src) {
		return 0
	}
	return p.src[p.pos]
}

func (p *sigParser) skipSpace() {
	p.pos += len(p.src[p.pos:]) - len(strings.TrimLeft(p.src[p.pos:], " \t"))
}
