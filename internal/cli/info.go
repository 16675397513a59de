package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/daios-ai/ffi"
)

// NewInfoCommand creates the info command.
func NewInfoCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "info",
		Short:         "Show the built-in type descriptors and their layout",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runInfo(cmd)
		},
	}
}

func runInfo(cmd *cobra.Command) error {
	builtins := []struct {
		name string
		typ  ffi.Type
	}{
		{"void", ffi.Void()},
		{"i8", ffi.SInt8()},
		{"u8", ffi.UInt8()},
		{"i16", ffi.SInt16()},
		{"u16", ffi.UInt16()},
		{"i32", ffi.SInt32()},
		{"u32", ffi.UInt32()},
		{"i64", ffi.SInt64()},
		{"u64", ffi.UInt64()},
		{"f32", ffi.Float()},
		{"f64", ffi.Double()},
		{"longdouble", ffi.LongDouble()},
		{"ptr", ffi.Pointer()},
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TYPE\tSIZE\tALIGN")
	for _, b := range builtins {
		fmt.Fprintf(w, "%s\t%d\t%d\n", b.name, b.typ.Size(), b.typ.Alignment())
	}
	return w.Flush()
}
