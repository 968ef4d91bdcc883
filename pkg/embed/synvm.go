// Package embed provides the Go embedding API for synvm.
//
// Pass a program, get a result.
//
// Basic usage:
//
//	res, err := embed.ExecuteSource(`
//	    out 'h'
//	    out 'i'
//	    halt
//	`, embed.WithOutput(os.Stdout))
//
// Running an image with input and limits:
//
//	res, err := embed.ExecuteFile("challenge.bin",
//	    embed.WithInput(os.Stdin),
//	    embed.WithOutput(os.Stdout),
//	    embed.WithTimeout(5*time.Second),
//	    embed.WithMaxInstructions(10_000_000),
//	)
package embed

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/akhildatla/synvm/pkg/compiler"
	"github.com/akhildatla/synvm/pkg/loader"
	"github.com/akhildatla/synvm/pkg/vm"
)

// Common errors
var (
	ErrTimeout = errors.New("execution timeout exceeded")

	// ErrInstructionLimit is the VM's own sentinel so the fault location
	// survives.
	ErrInstructionLimit = vm.ErrInstructionLimit
)

// Options configures execution behavior.
type Options struct {
	// Input feeds the in instruction. Nil means no input.
	Input io.Reader

	// Output receives the out instruction. Nil discards output.
	Output io.Writer

	// Timeout sets maximum execution time. Zero means no timeout.
	// It is checked between instructions, so a program blocked on input
	// is not interrupted.
	Timeout time.Duration

	// MaxInstructions limits the number of instructions executed.
	// Zero means unlimited.
	MaxInstructions int64

	// Context for cancellation. If nil, context.Background() is used.
	Context context.Context

	// Logger receives lifecycle events tagged with the run ID.
	Logger *zap.Logger

	// RunID tags log events. A random UUID is used when empty.
	RunID string

	// Stats, when set, is filled with execution statistics.
	Stats *vm.ExecutionStats
}

// Option is a functional option for configuring execution.
type Option func(*Options)

// WithInput sets the input stream.
func WithInput(r io.Reader) Option {
	return func(o *Options) {
		o.Input = r
	}
}

// WithOutput sets the output stream.
func WithOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Output = w
	}
}

// WithTimeout sets execution timeout.
func WithTimeout(d time.Duration) Option {
	return func(o *Options) {
		o.Timeout = d
	}
}

// WithMaxInstructions sets instruction limit.
func WithMaxInstructions(n int64) Option {
	return func(o *Options) {
		o.MaxInstructions = n
	}
}

// WithContext sets the context for cancellation.
func WithContext(ctx context.Context) Option {
	return func(o *Options) {
		o.Context = ctx
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Options) {
		o.Logger = l
	}
}

// WithRunID sets the run ID attached to log events.
func WithRunID(id string) Option {
	return func(o *Options) {
		o.RunID = id
	}
}

// WithStats collects execution statistics into s.
func WithStats(s *vm.ExecutionStats) Option {
	return func(o *Options) {
		o.Stats = s
	}
}

// ExecuteSource assembles and runs source code.
func ExecuteSource(source string, opts ...Option) (vm.Result, error) {
	words, err := compiler.Assemble(source)
	if err != nil {
		return vm.Result{}, err
	}
	return Execute(words, opts...)
}

// ExecuteFile loads a program with loader.Load and runs it.
func ExecuteFile(path string, opts ...Option) (vm.Result, error) {
	words, err := loader.Load(path)
	if err != nil {
		return vm.Result{}, err
	}
	return Execute(words, opts...)
}

// Execute runs a program image.
//
// Example:
//
//	res, err := embed.Execute(words,
//	    embed.WithOutput(&buf),
//	    embed.WithTimeout(5*time.Second),
//	    embed.WithMaxInstructions(10000),
//	)
func Execute(words []vm.Word, opts ...Option) (vm.Result, error) {
	// Apply options
	options := &Options{
		Context: context.Background(),
	}
	for _, opt := range opts {
		opt(options)
	}
	if options.Context == nil {
		options.Context = context.Background()
	}
	if options.RunID == "" {
		options.RunID = uuid.NewString()
	}

	log := options.Logger
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.String("run_id", options.RunID))

	// Create VM with options
	machine := vm.NewVM()
	machine.SetLogger(log)
	machine.SetInput(options.Input)
	machine.SetOutput(options.Output)
	machine.SetMaxSteps(options.MaxInstructions)
	if options.Stats != nil {
		machine.EnableStats()
	}

	// Load program
	if err := machine.Load(words); err != nil {
		return vm.Result{}, err
	}

	// Setup timeout context
	ctx := options.Context
	if options.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, options.Timeout)
		defer cancel()
	}
	machine.SetContext(ctx)

	// Execute
	result, err := machine.Execute()
	if options.Stats != nil {
		*options.Stats = *machine.Stats()
	}
	if err != nil && errors.Is(err, context.DeadlineExceeded) {
		return result, fmt.Errorf("%w: %w", ErrTimeout, err)
	}
	return result, err
}
