// Package vm implements the synvm virtual machine.
//
// The machine executes a flat image of 16-bit words:
//   - 32768 cells of program store shared by code and data
//   - 8 registers, addressed by the raw operand values 32768..32775
//   - an unbounded call stack
//   - byte-at-a-time input (served from whole lines) and output
//
// Basic usage:
//
//	v := vm.NewVM()
//	v.SetInput(os.Stdin)
//	v.SetOutput(os.Stdout)
//	if err := v.Load(words); err != nil { ... }
//	result, err := v.Execute()
//
// With resource limits:
//
//	v := vm.NewVM()
//	v.SetMaxSteps(1_000_000)
//	v.SetContext(ctx)
//	v.Load(words)
//	result, err := v.Execute()
package vm

import (
	"context"
	"errors"
	"io"
	"time"

	"go.uber.org/zap"
)

// State is the lifecycle state of a VM.
type State uint8

const (
	StateEmpty State = iota
	StateReady
	StateRunning
	StateHalted
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StateReady:
		return "ready"
	case StateRunning:
		return "running"
	case StateHalted:
		return "halted"
	case StateAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// HaltCause records why a program halted successfully.
type HaltCause uint8

const (
	CauseNone            HaltCause = iota
	CauseHaltInstruction           // opcode 0
	CauseUnknownOpcode             // opcode outside the instruction set
	CauseEndOfMemory               // pc ran past the last cell
)

func (c HaltCause) String() string {
	switch c {
	case CauseHaltInstruction:
		return "halt instruction"
	case CauseUnknownOpcode:
		return "unknown opcode"
	case CauseEndOfMemory:
		return "end of memory"
	default:
		return "none"
	}
}

// Result describes how a run ended.
type Result struct {
	State State
	Cause HaltCause
	PC    Word  // address of the last fetched opcode
	Steps int64 // instructions executed
}

// ExecutionStats contains metrics about VM execution for observability.
type ExecutionStats struct {
	StepsExecuted   int64          // Total instructions executed
	ExecutionTimeNs int64          // Execution time in nanoseconds
	CharsWritten    int64          // Characters emitted by out
	CharsRead       int64          // Characters consumed by in
	PeakStackDepth  int            // Deepest call stack observed
	OpCounts        map[string]int // Count of each opcode executed
}

// VM represents the virtual machine.
type VM struct {
	mem       *Memory
	registers RegisterFile
	stack     Stack
	pc        int // may equal MemorySize once the last cell is consumed
	state     State

	input  *LineInput
	output *Output
	log    *zap.Logger

	// Resource limits
	maxSteps  int64
	stepCount int64

	// Context for cancellation
	ctx context.Context

	// Observability - execution statistics
	stats        ExecutionStats
	statsEnabled bool
}

// NewVM creates a new VM instance with no input, discarded output and a
// no-op logger.
func NewVM() *VM {
	return &VM{
		mem:    new(Memory),
		input:  NewLineInput(nil),
		output: NewOutput(nil),
		log:    zap.NewNop(),
	}
}

// Load copies a program image into memory and resets registers, stack and
// program counter.
func (vm *VM) Load(words []Word) error {
	if err := vm.mem.Load(words); err != nil {
		return err
	}
	vm.registers.Reset()
	vm.stack.Reset()
	vm.pc = 0
	vm.stepCount = 0
	vm.state = StateReady
	vm.log.Debug("program loaded", zap.Int("words", len(words)))
	return nil
}

// SetInput sets the line source consulted by the in instruction.
func (vm *VM) SetInput(r io.Reader) {
	vm.input = NewLineInput(r)
}

// SetOutput sets the destination of the out instruction.
func (vm *VM) SetOutput(w io.Writer) {
	vm.output = NewOutput(w)
}

// SetLogger sets the logger used for lifecycle events.
func (vm *VM) SetLogger(l *zap.Logger) {
	if l == nil {
		l = zap.NewNop()
	}
	vm.log = l
}

// SetMaxSteps sets the maximum number of execution steps. Zero means unlimited.
func (vm *VM) SetMaxSteps(n int64) {
	vm.maxSteps = n
}

// SetContext sets the context for cancellation/timeout. It is checked
// between instructions; a blocked in instruction is not interrupted.
func (vm *VM) SetContext(ctx context.Context) {
	vm.ctx = ctx
}

// EnableStats enables execution statistics collection.
func (vm *VM) EnableStats() {
	vm.statsEnabled = true
	vm.stats = ExecutionStats{
		OpCounts: make(map[string]int),
	}
}

// Stats returns the execution statistics from the last Execute() call.
// Returns nil if stats were not enabled via EnableStats().
func (vm *VM) Stats() *ExecutionStats {
	if !vm.statsEnabled {
		return nil
	}
	return &vm.stats
}

// State returns the current lifecycle state.
func (vm *VM) State() State {
	return vm.state
}

// PC returns the program counter.
func (vm *VM) PC() int {
	return vm.pc
}

// Register returns the contents of register r.
func (vm *VM) Register(r int) Word {
	return vm.registers.R[r]
}

// ReadMemory returns the word stored at addr.
func (vm *VM) ReadMemory(addr Word) Word {
	return vm.mem.Read(addr % MemorySize)
}

// StackDepth returns the number of values on the call stack.
func (vm *VM) StackDepth() int {
	return vm.stack.Len()
}

// Execute runs the loaded program until it halts or faults.
func (vm *VM) Execute() (Result, error) {
	if vm.state != StateReady {
		return Result{State: vm.state}, ErrNoProgram
	}
	vm.state = StateRunning

	var startTime time.Time
	// The output sink outlives Load, so count this run's characters only.
	startWritten := vm.output.Written()
	if vm.statsEnabled {
		startTime = time.Now()
		vm.stats.StepsExecuted = 0
		vm.stats.CharsWritten = 0
		vm.stats.CharsRead = 0
		vm.stats.PeakStackDepth = 0
		clear(vm.stats.OpCounts)
	}

	res, err := vm.run()

	if vm.statsEnabled {
		vm.stats.ExecutionTimeNs = time.Since(startTime).Nanoseconds()
		vm.stats.PeakStackDepth = vm.stack.Peak()
		vm.stats.CharsWritten = vm.output.Written() - startWritten
	}

	res.Steps = vm.stepCount
	if err != nil {
		vm.state = StateAborted
		res.State = StateAborted
		fields := []zap.Field{
			zap.Error(err),
			zap.Uint16("pc", uint16(res.PC)),
			zap.Int64("steps", res.Steps),
		}
		var fault *Fault
		if errors.As(err, &fault) {
			fields = append(fields, zap.Stringer("opcode", fault.Opcode))
		}
		vm.log.Info("aborted", fields...)
		return res, err
	}
	vm.state = StateHalted
	res.State = StateHalted
	vm.log.Info("halted",
		zap.Stringer("cause", res.Cause),
		zap.Uint16("pc", uint16(res.PC)),
		zap.Int64("steps", res.Steps))
	return res, nil
}

func (vm *VM) run() (Result, error) {
	var operands [3]Word

	for vm.pc < MemorySize {
		start := Word(vm.pc)

		// Fetch
		op := Opcode(vm.mem.Read(start))
		vm.pc++
		if !op.Valid() {
			return Result{Cause: CauseUnknownOpcode, PC: start}, nil
		}

		// Context cancellation check
		if vm.ctx != nil {
			select {
			case <-vm.ctx.Done():
				return Result{PC: start}, &Fault{Err: vm.ctx.Err(), PC: start, Opcode: op}
			default:
			}
		}

		// Resource limit check
		vm.stepCount++
		if vm.maxSteps > 0 && vm.stepCount > vm.maxSteps {
			return Result{PC: start}, &Fault{Err: ErrInstructionLimit, PC: start, Opcode: op}
		}

		// Decode
		n := op.Arity()
		if vm.pc+n > MemorySize {
			return Result{PC: start}, &Fault{Err: ErrTruncatedInstruction, PC: start, Opcode: op}
		}
		for i := 0; i < n; i++ {
			operands[i] = vm.mem.Read(Word(vm.pc))
			vm.pc++
		}

		// Track opcode execution if stats enabled
		if vm.statsEnabled {
			vm.stats.StepsExecuted++
			vm.stats.OpCounts[op.String()]++
		}

		// Execute
		halt, err := vm.dispatch(op, operands[0], operands[1], operands[2])
		if err != nil {
			return Result{PC: start}, &Fault{Err: err, PC: start, Opcode: op}
		}
		if halt {
			return Result{Cause: CauseHaltInstruction, PC: start}, nil
		}
	}

	return Result{Cause: CauseEndOfMemory, PC: MemorySize - 1}, nil
}

// dispatch applies one decoded instruction. a, b and c are raw operands.
func (vm *VM) dispatch(op Opcode, a, b, c Word) (bool, error) {
	r := &vm.registers

	switch op {
	case OpHalt:
		return true, nil

	case OpSet:
		v, err := r.Resolve(b)
		if err != nil {
			return false, err
		}
		return false, r.Set(a, v)

	case OpPush:
		v, err := r.Resolve(a)
		if err != nil {
			return false, err
		}
		vm.stack.Push(v)

	case OpPop:
		if !a.IsRegister() {
			return false, ErrInvalidRegisterTarget
		}
		v, err := vm.stack.Pop()
		if err != nil {
			return false, err
		}
		return false, r.Set(a, v)

	case OpEq, OpGt, OpAdd, OpMult, OpMod, OpAnd, OpOr:
		x, err := r.Resolve(b)
		if err != nil {
			return false, err
		}
		y, err := r.Resolve(c)
		if err != nil {
			return false, err
		}
		v, err := arith(op, x, y)
		if err != nil {
			return false, err
		}
		return false, r.Set(a, v)

	case OpNot:
		v, err := r.Resolve(b)
		if err != nil {
			return false, err
		}
		return false, r.Set(a, ^v&MaxLiteral)

	case OpJmp:
		addr, err := r.ResolveAddress(a)
		if err != nil {
			return false, err
		}
		vm.pc = int(addr)

	case OpJt, OpJf:
		cond, err := r.Resolve(a)
		if err != nil {
			return false, err
		}
		if (cond != 0) == (op == OpJt) {
			addr, err := r.ResolveAddress(b)
			if err != nil {
				return false, err
			}
			vm.pc = int(addr)
		}

	case OpRmem:
		addr, err := r.ResolveAddress(b)
		if err != nil {
			return false, err
		}
		return false, r.Set(a, vm.mem.Read(addr))

	case OpWmem:
		addr, err := r.ResolveAddress(a)
		if err != nil {
			return false, err
		}
		v, err := r.Resolve(b)
		if err != nil {
			return false, err
		}
		vm.mem.Write(addr, v)

	case OpCall:
		addr, err := r.ResolveAddress(a)
		if err != nil {
			return false, err
		}
		vm.stack.Push(Word(vm.pc))
		vm.pc = int(addr)

	case OpRet:
		v, err := vm.stack.Pop()
		if err != nil {
			return false, err
		}
		addr, err := r.ResolveAddress(v)
		if err != nil {
			return false, err
		}
		vm.pc = int(addr)

	case OpOut:
		v, err := r.Resolve(a)
		if err != nil {
			return false, err
		}
		return false, vm.output.WriteChar(v)

	case OpIn:
		if !a.IsRegister() {
			return false, ErrInvalidRegisterTarget
		}
		ch, err := vm.input.ReadChar()
		if err != nil {
			return false, err
		}
		if vm.statsEnabled {
			vm.stats.CharsRead++
		}
		return false, r.Set(a, ch)

	case OpNoop:
	}

	return false, nil
}

// arith evaluates the two-source register instructions.
func arith(op Opcode, x, y Word) (Word, error) {
	switch op {
	case OpEq:
		if x == y {
			return 1, nil
		}
		return 0, nil
	case OpGt:
		if x > y {
			return 1, nil
		}
		return 0, nil
	case OpAdd:
		return Word((uint32(x) + uint32(y)) % Modulus), nil
	case OpMult:
		return Word((uint32(x) * uint32(y)) % Modulus), nil
	case OpMod:
		if y == 0 {
			return 0, ErrArithmetic
		}
		return x % y, nil
	case OpAnd:
		return x & y, nil
	case OpOr:
		return x | y, nil
	}
	return 0, ErrInvalidOperand
}
