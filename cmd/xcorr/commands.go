package main

import (
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var (
	errMissingVector = errors.New("missing vector")
	errStdinConflict = errors.New("only one of --signal and --kernel may read stdin")
)

const (
	methodDirect = "direct"
	methodFFT    = "fft"
	methodAuto   = "auto"

	// autoFFTThreshold matches conv.Auto: kernels longer than this use FFT.
	autoFFTThreshold = 64
)

// entryForMethod returns the registry entry implementing method for a
// kernel of kernelLen taps.
func entryForMethod(method string, kernelLen int) (string, error) {
	switch method {
	case methodDirect, "":
		return "convolve", nil
	case methodFFT:
		return "convolve_fft", nil
	case methodAuto:
		if kernelLen > autoFFTThreshold {
			return "convolve_fft", nil
		}
		return "convolve", nil
	default:
		return "", fmt.Errorf("unknown method %q (want direct, fft or auto)", method)
	}
}

func newConvolveCmd(a *app) *cobra.Command {
	var signalArg, kernelArg, method string

	cmd := &cobra.Command{
		Use:   "convolve",
		Short: "Slide a kernel across a signal",
		Long: `Slide a kernel across a signal and print the dot product at every fully
overlapping position. Vectors are comma- or space-separated numbers; "-"
reads the vector from standard input.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if signalArg == "" || kernelArg == "" {
				return fmt.Errorf("%w: both --signal and --kernel are required", errMissingVector)
			}
			if signalArg == "-" && kernelArg == "-" {
				return errStdinConflict
			}
			signal, err := readVector(signalArg, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("signal: %w", err)
			}
			kernel, err := readVector(kernelArg, cmd.InOrStdin())
			if err != nil {
				return fmt.Errorf("kernel: %w", err)
			}

			entry, err := entryForMethod(method, len(kernel))
			if err != nil {
				return err
			}
			out, err := a.reg.Call(cmd.Context(), entry, signal, kernel)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), a.format, out)
		},
	}

	cmd.Flags().StringVarP(&signalArg, "signal", "s", "", `signal samples, or "-" for stdin`)
	cmd.Flags().StringVarP(&kernelArg, "kernel", "k", "", `kernel taps, or "-" for stdin`)
	cmd.Flags().StringVarP(&method, "method", "m", methodDirect, "direct, fft or auto")
	return cmd
}

func newAddCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "add A B",
		Short: "Add two numbers",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			x, err := parseVector(args[0])
			if err != nil {
				return err
			}
			y, err := parseVector(args[1])
			if err != nil {
				return err
			}
			out, err := a.reg.Call(cmd.Context(), "add", x, y)
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), a.format, out)
		},
	}
}

func newHelloCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "hello MSG",
		Short: "Print a greeting",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := a.reg.Call(cmd.Context(), "hello", args[0])
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), a.format, out)
		},
	}
}

func newDeviceInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "device-info",
		Short: "Describe the CPU the kernels run on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.reg.Call(cmd.Context(), "device_info")
			if err != nil {
				return err
			}
			return write(cmd.OutOrStdout(), a.format, out)
		},
	}
}

func newEntriesCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "entries",
		Short: "List the registered entry points",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return printEntries(cmd.OutOrStdout(), a)
		},
	}
}

func printEntries(w io.Writer, a *app) error {
	entries := a.reg.List()
	if a.format != "text" {
		type entryInfo struct {
			Name  string `json:"name" yaml:"name"`
			Arity int    `json:"arity" yaml:"arity"`
			Doc   string `json:"doc" yaml:"doc"`
		}
		infos := make([]entryInfo, len(entries))
		for i, e := range entries {
			infos[i] = entryInfo{Name: e.Name, Arity: e.Arity, Doc: e.Doc}
		}
		return write(w, a.format, infos)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tARITY\tDESCRIPTION")
	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Name, e.Arity, e.Doc)
	}
	return tw.Flush()
}
