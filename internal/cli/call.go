package cli

import (
	"fmt"
	"io"
	"strconv"
	"unsafe"

	"github.com/spf13/cobra"
	"github.com/tliron/commonlog"

	"github.com/daios-ai/ffi"
)

// CallOptions holds flags for the call command.
type CallOptions struct {
	*RootOptions
	Sig      string
	Bindings string
}

// NewCallCommand creates the call command.
func NewCallCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CallOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "call <lib> <symbol> [args...]",
		Short: "Call a native function described at runtime",
		Long: `Call a function from a dynamic library with a signature given on the
command line or looked up in a bindings file.

Examples:
  ffiprobe call libm.so.6 cos --sig "f64(f64)" 1.0
  ffiprobe call libc.so.6 strlen --sig "u64(str)" hello
  ffiprobe call --bindings libm.yaml cos 1.0`,
		Args:          cobra.MinimumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCall(opts, cmd, args)
		},
	}

	cmd.Flags().StringVar(&opts.Sig, "sig", "", `signature, e.g. "f64(f64)"`)
	cmd.Flags().StringVar(&opts.Bindings, "bindings", "", "YAML bindings file declaring the library and its functions")

	return cmd
}

func runCall(opts *CallOptions, cmd *cobra.Command, args []string) error {
	var libPath, symbol, sigSrc string
	var rest []string

	switch {
	case opts.Bindings != "":
		b, err := LoadBindings(opts.Bindings)
		if err != nil {
			return err
		}
		fn, ok := b.Function(args[0])
		if !ok {
			return fmt.Errorf("function %q not declared in %s", args[0], opts.Bindings)
		}
		libPath, symbol, sigSrc = b.Lib, fn.Symbol(), fn.Sig
		rest = args[1:]
	case opts.Sig != "":
		if len(args) < 2 {
			return fmt.Errorf("call needs <lib> <symbol> when --sig is used")
		}
		libPath, symbol, sigSrc = args[0], args[1], opts.Sig
		rest = args[2:]
	default:
		return fmt.Errorf("one of --sig or --bindings is required")
	}

	return invoke(cmd.OutOrStdout(), libPath, symbol, sigSrc, rest)
}

// invoke is the shared call path for the call command and the REPL.
func invoke(out io.Writer, libPath, symbol, sigSrc string, argSrc []string) error {
	log := commonlog.GetLogger("ffiprobe.call")

	sig, err := ParseSignature(sigSrc)
	if err != nil {
		return err
	}
	defer sig.Destroy()
	if len(argSrc) != len(sig.Params) {
		return fmt.Errorf("%s expects %d argument(s), got %d", symbol, len(sig.Params), len(argSrc))
	}

	lib, err := ffi.Open(libPath)
	if err != nil {
		return err
	}
	defer lib.Close()
	fn, err := lib.Symbol(symbol)
	if err != nil {
		return err
	}
	log.Infof("resolved %s in %s", symbol, libPath)

	types := make([]ffi.Type, len(sig.Params))
	for i, p := range sig.Params {
		types[i] = p.Type
	}
	cif, err := ffi.NewCif(sig.Ret.Type, types...)
	if err != nil {
		return err
	}
	defer cif.Free()

	vals := ffi.NewValues(cif)
	defer vals.Free()
	for i, src := range argSrc {
		if err := setArg(vals, i, sig.Params[i].Kind, src); err != nil {
			return fmt.Errorf("argument %d: %w", i, err)
		}
	}

	cif.Call(fn, vals.Ret(), vals.Args())
	return printResult(out, sig.Ret.Kind, vals)
}

func setArg(v *ffi.Values, i int, k Kind, src string) error {
	switch k {
	case KindI8, KindI16, KindI32:
		n, err := strconv.ParseInt(src, 0, 32)
		if err != nil {
			return err
		}
		v.SetInt32(i, int32(n))
	case KindI64:
		n, err := strconv.ParseInt(src, 0, 64)
		if err != nil {
			return err
		}
		v.SetInt64(i, n)
	case KindU8, KindU16, KindU32:
		n, err := strconv.ParseUint(src, 0, 32)
		if err != nil {
			return err
		}
		v.SetUint32(i, uint32(n))
	case KindU64:
		n, err := strconv.ParseUint(src, 0, 64)
		if err != nil {
			return err
		}
		v.SetUint64(i, n)
	case KindF32:
		f, err := strconv.ParseFloat(src, 32)
		if err != nil {
			return err
		}
		v.SetFloat32(i, float32(f))
	case KindF64:
		f, err := strconv.ParseFloat(src, 64)
		if err != nil {
			return err
		}
		v.SetFloat64(i, f)
	case KindStr:
		v.SetString(i, src)
	case KindPtr:
		if src == "null" || src == "0" {
			v.SetPointer(i, nil)
			return nil
		}
		n, err := strconv.ParseUint(src, 0, 64)
		if err != nil {
			return err
		}
		v.SetPointer(i, unsafe.Pointer(uintptr(n)))
	case KindStruct:
		return fmt.Errorf("struct values cannot be given on the command line")
	default:
		return fmt.Errorf("unsupported argument kind")
	}
	return nil
}

func printResult(out io.Writer, k Kind, v *ffi.Values) error {
	switch k {
	case KindVoid:
		return nil
	case KindI8, KindI16, KindI32:
		_, err := fmt.Fprintln(out, v.RetInt32())
		return err
	case KindI64:
		_, err := fmt.Fprintln(out, v.RetInt64())
		return err
	case KindU8, KindU16, KindU32:
		_, err := fmt.Fprintln(out, v.RetUint32())
		return err
	case KindU64:
		_, err := fmt.Fprintln(out, v.RetUint64())
		return err
	case KindF32:
		_, err := fmt.Fprintln(out, v.RetFloat32())
		return err
	case KindF64:
		_, err := fmt.Fprintln(out, v.RetFloat64())
		return err
	case KindPtr, KindStr:
		_, err := fmt.Fprintf(out, "%#x\n", uintptr(v.RetPointer()))
		return err
	default:
		return fmt.Errorf("struct results cannot be printed")
	}
}
