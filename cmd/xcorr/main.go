// Command xcorr computes valid-mode sliding dot products from the command line.
//
// Usage:
//
//	xcorr [command] [flags]
//
// Examples:
//
//	xcorr convolve --signal 1,2,3,4,5 --kernel 1,0
//	xcorr convolve --signal - --kernel 0.25,0.5,0.25 --method fft < samples.txt
//	xcorr add 2 0.5
//	xcorr hello world
//	xcorr device-info --format yaml
//	xcorr batch jobs.yaml
//	xcorr entries
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "xcorr: %v\n", err)
		stop()
		os.Exit(1)
	}
}
