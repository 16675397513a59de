package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoCommand(t *testing.T) {
	buf := &bytes.Buffer{}
	cmd := NewInfoCommand(&RootOptions{})
	cmd.SetOut(buf)
	cmd.SetArgs(nil)

	require.NoError(t, cmd.Execute())

	out := buf.String()
	assert.Contains(t, out, "TYPE")
	assert.Contains(t, out, "f64")
	assert.Contains(t, out, "ptr")
	// double is 8 bytes everywhere we run
	assert.Regexp(t, `f64\s+8\s+8`, out)
}
