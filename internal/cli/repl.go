package cli

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/spf13/cobra"

	"github.com/daios-ai/ffi"
)

const (
	historyFile = ".ffiprobe_history"
	promptMain  = "ffi> "
)

var replHelp = `
Lines are calls: <lib> <symbol> <sig> [args...]
Example:  libm.so.6 cos f64(f64) 1.0

Commands:
  :help    Show this help
  :quit    Exit the REPL
`

// NewReplCommand creates the repl command.
func NewReplCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "repl",
		Short:         "Interactively call native functions",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runRepl(cmd)
		},
	}
}

func historyPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return historyFile
	}
	return filepath.Join(home, historyFile)
}

func runRepl(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "ffiprobe %s\nCtrl+D exits. Type :help for help.\n", ffi.Version)

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	if f, err := os.Open(historyPath()); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.Create(historyPath()); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	for {
		input, err := line.Prompt(promptMain)
		if err == liner.ErrPromptAborted {
			continue
		}
		if err == io.EOF {
			fmt.Fprintln(out)
			return nil
		}
		if err != nil {
			return err
		}
		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)

		switch input {
		case ":quit", ":q":
			return nil
		case ":help":
			fmt.Fprint(out, replHelp)
			continue
		}

		if err := replCall(out, input); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func replCall(out io.Writer, input string) error {
	fields := strings.Fields(input)
	if len(fields) < 3 {
		return fmt.Errorf("want: <lib> <symbol> <sig> [args...]")
	}
	return invoke(out, fields[0], fields[1], fields[2], fields[3:])
}
