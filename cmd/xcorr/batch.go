package main

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/cwbudde/algo-xcorr/host"
)

var (
	errJobsFailed = errors.New("batch jobs failed")

	validate = validator.New()
)

// batchFile is the YAML document read by the batch command.
type batchFile struct {
	Jobs []batchJob `yaml:"jobs" validate:"required,min=1,dive"`
}

type batchJob struct {
	Name   string    `yaml:"name" validate:"required"`
	Signal []float64 `yaml:"signal" validate:"required,min=1"`
	Kernel []float64 `yaml:"kernel" validate:"required,min=1"`
	Method string    `yaml:"method" validate:"omitempty,oneof=direct fft auto"`
}

type batchResult struct {
	Name   string `json:"name" yaml:"name"`
	Method string `json:"method" yaml:"method"`
	Output vector `json:"output,omitempty" yaml:"output,omitempty,flow"`
	Error  string `json:"error,omitempty" yaml:"error,omitempty"`
	Kind   string `json:"kind,omitempty" yaml:"kind,omitempty"`
}

func newBatchCmd(a *app) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "batch FILE",
		Short: "Run the jobs listed in a YAML file",
		Long: `Run every job listed in a YAML file. Use "-" to read the file from stdin.

  jobs:
    - name: smooth
      signal: [1, 2, 3, 4, 5]
      kernel: [0.5, 0.5]
      method: direct   # direct (default), fft or auto

Jobs run concurrently. Each job reports either its output or its error; the
command fails if any job failed.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := readFile(args[0], cmd.InOrStdin())
			if err != nil {
				return err
			}
			jobs, err := loadBatch(data)
			if err != nil {
				return err
			}

			results, err := runBatch(cmd.Context(), a, jobs, workers)
			if err != nil {
				return err
			}
			if err := writeBatch(cmd.OutOrStdout(), a.format, results); err != nil {
				return err
			}

			failed := 0
			for _, r := range results {
				if r.Error != "" {
					failed++
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d of %d", errJobsFailed, failed, len(results))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "j", runtime.NumCPU(), "maximum number of jobs run at once")
	return cmd
}

func readFile(path string, stdin io.Reader) ([]byte, error) {
	if path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

// loadBatch decodes and validates a batch document.
func loadBatch(data []byte) ([]batchJob, error) {
	var f batchFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, errors.New("batch: empty document")
		}
		return nil, fmt.Errorf("batch: %w", err)
	}

	if err := validate.Struct(f); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, len(verrs))
			for i, fe := range verrs {
				msgs[i] = fmt.Sprintf("%s failed %q", fe.Namespace(), fe.Tag())
			}
			return nil, fmt.Errorf("batch: invalid document: %s", strings.Join(msgs, "; "))
		}
		return nil, fmt.Errorf("batch: %w", err)
	}
	return f.Jobs, nil
}

// runBatch runs jobs with at most workers in flight. Job errors are
// recorded in the results; only cancellation aborts the batch.
func runBatch(ctx context.Context, a *app, jobs []batchJob, workers int) ([]batchResult, error) {
	results := make([]batchResult, len(jobs))

	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}

	for i, job := range jobs {
		g.Go(func() error {
			method := job.Method
			if method == "" {
				method = methodDirect
			}
			res := batchResult{Name: job.Name, Method: method}

			entry, err := entryForMethod(method, len(job.Kernel))
			if err == nil {
				var out any
				out, err = a.reg.Call(ctx, entry, job.Signal, job.Kernel)
				if err == nil {
					res.Output = vector(out.([]float64))
				}
			}
			if err != nil {
				kind := host.Classify(err)
				if kind == host.KindCanceled {
					return err
				}
				res.Error = err.Error()
				res.Kind = kind.String()
				a.logger.Debug("batch job failed", zap.String("job", job.Name), zap.Error(err))
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func writeBatch(w io.Writer, format string, results []batchResult) error {
	if format != "text" {
		return write(w, format, results)
	}
	for _, r := range results {
		if r.Error != "" {
			if _, err := fmt.Fprintf(w, "%s: error: %s\n", r.Name, r.Error); err != nil {
				return err
			}
			continue
		}
		if _, err := fmt.Fprintf(w, "%s: %s\n", r.Name, formatVector(r.Output)); err != nil {
			return err
		}
	}
	return nil
}
