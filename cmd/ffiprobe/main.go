package main

import (
	"fmt"
	"os"

	"github.com/daios-ai/ffi/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "ffiprobe: %v\n", err)
		os.Exit(1)
	}
}
