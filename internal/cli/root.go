package cli

import (
	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/daios-ai/ffi"

	_ "github.com/tliron/commonlog/simple"
)

// RootOptions holds flags shared by every command.
type RootOptions struct {
	Verbose bool
}

// NewRootCommand creates the ffiprobe command tree.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "ffiprobe",
		Short: "Describe and call native functions at runtime",
		Long: `ffiprobe resolves symbols from dynamic libraries and calls them with
signatures described at runtime, using the ffi descriptor layer.`,
		Version:       ffi.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			verbosity := 0
			if opts.Verbose {
				verbosity = 1
			}
			commonlog.Configure(verbosity, nil)
		},
	}

	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "log progress to stderr")

	cmd.AddCommand(
		NewCallCommand(opts),
		NewInfoCommand(opts),
		NewReplCommand(opts),
	)

	return cmd
}
