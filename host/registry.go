package host

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/cwbudde/algo-xcorr/dsp/conv"
)

// Func implements an entry point. args has already been checked against the
// entry's arity.
type Func func(ctx context.Context, args []any) (any, error)

// Entry describes a named, callable entry point.
type Entry struct {
	Name  string
	Arity int // number of arguments; negative accepts any number
	Doc   string
	Fn    Func
}

// registryConfig holds configuration for the Registry.
type registryConfig struct {
	strictMode bool
	logger     *zap.Logger
	limits     conv.Limits
}

func defaultRegistryConfig() registryConfig {
	return registryConfig{
		strictMode: true,
		logger:     zap.NewNop(),
		limits:     conv.DefaultLimits(),
	}
}

// RegistryOption configures a Registry instance.
type RegistryOption func(*registryConfig)

// WithStrictMode enables/disables strict mode for duplicate registrations.
// Default is true (fail on duplicates).
func WithStrictMode(enabled bool) RegistryOption {
	return func(c *registryConfig) {
		c.strictMode = enabled
	}
}

// WithLogger sets the logger used for per-call diagnostics.
func WithLogger(logger *zap.Logger) RegistryOption {
	return func(c *registryConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLimits sets the allocation bound the numeric entry points apply.
func WithLimits(lim conv.Limits) RegistryOption {
	return func(c *registryConfig) {
		c.limits = lim
	}
}

// Registry maps entry point names to implementations. It is safe for
// concurrent use.
type Registry struct {
	config  registryConfig
	entries sync.Map // map[string]Entry
}

// NewRegistry creates an empty Registry with the given options.
func NewRegistry(opts ...RegistryOption) *Registry {
	cfg := defaultRegistryConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return &Registry{config: cfg}
}

// Register adds an entry point.
func (r *Registry) Register(e Entry) error {
	if e.Name == "" || e.Fn == nil {
		return fmt.Errorf("%w: name %q", ErrInvalidEntry, e.Name)
	}
	if r.config.strictMode {
		if _, loaded := r.entries.LoadOrStore(e.Name, e); loaded {
			return fmt.Errorf("%w: %q", ErrDuplicateEntry, e.Name)
		}
		return nil
	}
	r.entries.Store(e.Name, e)
	return nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (Entry, bool) {
	v, ok := r.entries.Load(name)
	if !ok {
		return Entry{}, false
	}
	return v.(Entry), true
}

// List returns all registered entries sorted by name.
func (r *Registry) List() []Entry {
	var entries []Entry
	r.entries.Range(func(_, v any) bool {
		entries = append(entries, v.(Entry))
		return true
	})
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}

// Limits returns the allocation bound configured for numeric entry points.
func (r *Registry) Limits() conv.Limits {
	return r.config.limits
}

// Call invokes the entry point registered under name.
func (r *Registry) Call(ctx context.Context, name string, args ...any) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	e, ok := r.Lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownEntry, name)
	}
	if e.Arity >= 0 && len(args) != e.Arity {
		return nil, fmt.Errorf("%w: %s takes %d, got %d", ErrArity, name, e.Arity, len(args))
	}

	start := time.Now()
	out, err := e.Fn(ctx, args)
	elapsed := time.Since(start)

	if err != nil {
		r.config.logger.Warn("entry point failed",
			zap.String("entry", name),
			zap.Stringer("kind", Classify(err)),
			zap.Duration("duration", elapsed),
			zap.Error(err))
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	r.config.logger.Debug("entry point called",
		zap.String("entry", name),
		zap.Int("args", len(args)),
		zap.Duration("duration", elapsed))
	return out, nil
}
