package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSignatureScalars(t *testing.T) {
	sig, err := ParseSignature("f64(f64)")
	require.NoError(t, err)
	defer sig.Destroy()

	assert.Equal(t, KindF64, sig.Ret.Kind)
	require.Len(t, sig.Params, 1)
	assert.Equal(t, KindF64, sig.Params[0].Kind)
}

func TestParseSignatureNoParams(t *testing.T) {
	sig, err := ParseSignature("void()")
	require.NoError(t, err)
	defer sig.Destroy()

	assert.Equal(t, KindVoid, sig.Ret.Kind)
	assert.Empty(t, sig.Params)
}

func TestParseSignatureMixed(t *testing.T) {
	sig, err := ParseSignature("i32(str, u64, ptr)")
	require.NoError(t, err)
	defer sig.Destroy()

	require.Len(t, sig.Params, 3)
	assert.Equal(t, KindStr, sig.Params[0].Kind)
	assert.Equal(t, KindU64, sig.Params[1].Kind)
	assert.Equal(t, KindPtr, sig.Params[2].Kind)
}

func TestParseSignatureStruct(t *testing.T) {
	sig, err := ParseSignature("i32(struct{i32,i32})")
	require.NoError(t, err)
	defer sig.Destroy()

	require.Len(t, sig.Params, 1)
	assert.Equal(t, KindStruct, sig.Params[0].Kind)
}

func TestParseSignatureNestedStruct(t *testing.T) {
	sig, err := ParseSignature("void(struct{struct{u16,u64},f64})")
	require.NoError(t, err)
	defer sig.Destroy()

	require.Len(t, sig.Params, 1)
	assert.Equal(t, KindStruct, sig.Params[0].Kind)
}

func TestParseSignatureErrors(t *testing.T) {
	cases := map[string]string{
		"missing-parens":  "i32",
		"unknown-type":    "i33(i32)",
		"void-param":      "i32(void)",
		"trailing":        "i32(i32) x",
		"unclosed-struct": "void(struct{i32)",
		"bare-comma":      "i32(,)",
		"empty":           "",
	}
	for name, src := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseSignature(src)
			assert.Error(t, err, "input %q", src)
		})
	}
}
