package vm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
)

// LineInput turns a line-oriented reader into a byte-at-a-time stream for
// the in instruction. A line is only read once the previous one has been
// fully consumed, so a program blocks on input exactly when it asks for a
// character past the end of the current line.
type LineInput struct {
	r    *bufio.Reader
	line []byte
}

// NewLineInput wraps r. A nil reader behaves as an empty input.
func NewLineInput(r io.Reader) *LineInput {
	if r == nil {
		r = bytes.NewReader(nil)
	}
	return &LineInput{r: bufio.NewReader(r)}
}

// ReadChar returns the next character of input.
//
// Each line is served with its terminator (\n or \r\n) replaced by a single
// \n. A final line with no terminator is treated the same way.
func (in *LineInput) ReadChar() (Word, error) {
	if len(in.line) == 0 {
		if err := in.fill(); err != nil {
			return 0, err
		}
	}
	c := in.line[0]
	in.line = in.line[1:]
	return Word(c), nil
}

// Buffered returns the number of characters left in the current line.
func (in *LineInput) Buffered() int {
	return len(in.line)
}

func (in *LineInput) fill() error {
	line, err := in.r.ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrInputFailed, err)
	}
	if len(line) == 0 {
		return ErrInputExhausted
	}
	line = bytes.TrimSuffix(line, []byte("\n"))
	line = bytes.TrimSuffix(line, []byte("\r"))
	in.line = append(line, '\n')
	return nil
}

// Output is the sink for the out instruction. Every character is written
// straight to the underlying writer.
type Output struct {
	w       io.Writer
	buf     [1]byte
	written int64
}

// NewOutput wraps w. A nil writer discards output.
func NewOutput(w io.Writer) *Output {
	if w == nil {
		w = io.Discard
	}
	return &Output{w: w}
}

// WriteChar writes v as a single byte.
func (o *Output) WriteChar(v Word) error {
	if v >= MaxOutput {
		return ErrInvalidOutputValue
	}
	o.buf[0] = byte(v)
	if _, err := o.w.Write(o.buf[:]); err != nil {
		return fmt.Errorf("%w: %v", ErrOutputFailed, err)
	}
	o.written++
	return nil
}

// Written returns the number of characters written so far.
func (o *Output) Written() int64 {
	return o.written
}
