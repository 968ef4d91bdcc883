// Package report renders execution statistics: a tabular opcode histogram
// for humans and a canonical CBOR run report for tooling.
package report

import (
	"fmt"
	"os"

	"github.com/fxamacker/cbor/v2"

	"github.com/akhildatla/synvm/pkg/vm"
)

// Report summarises one run.
type Report struct {
	RunID          string         `cbor:"1,keyasint"`
	Image          string         `cbor:"2,keyasint,omitempty"`
	State          string         `cbor:"3,keyasint"`
	Cause          string         `cbor:"4,keyasint,omitempty"`
	PC             uint16         `cbor:"5,keyasint"`
	Steps          int64          `cbor:"6,keyasint"`
	Error          string         `cbor:"7,keyasint,omitempty"`
	CharsRead      int64          `cbor:"8,keyasint"`
	CharsWritten   int64          `cbor:"9,keyasint"`
	PeakStackDepth int            `cbor:"10,keyasint"`
	DurationNs     int64          `cbor:"11,keyasint"`
	OpCounts       map[string]int `cbor:"12,keyasint,omitempty"`
}

// New builds a report from the outcome of a run. stats may be nil.
func New(runID, image string, res vm.Result, runErr error, stats *vm.ExecutionStats) *Report {
	r := &Report{
		RunID: runID,
		Image: image,
		State: res.State.String(),
		PC:    uint16(res.PC),
		Steps: res.Steps,
	}
	if res.Cause != vm.CauseNone {
		r.Cause = res.Cause.String()
	}
	if runErr != nil {
		r.Error = runErr.Error()
	}
	if stats != nil {
		r.CharsRead = stats.CharsRead
		r.CharsWritten = stats.CharsWritten
		r.PeakStackDepth = stats.PeakStackDepth
		r.DurationNs = stats.ExecutionTimeNs
		r.OpCounts = make(map[string]int, len(stats.OpCounts))
		for k, v := range stats.OpCounts {
			r.OpCounts[k] = v
		}
	}
	return r
}

// Canonical mode sorts map keys so equal reports encode to equal bytes.
var cborEncMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		panic(fmt.Sprintf("report: failed to create CBOR enc mode: %v", err))
	}
	cborEncMode = em
}

// Marshal serializes a Report to CBOR bytes.
func Marshal(r *Report) ([]byte, error) {
	return cborEncMode.Marshal(r)
}

// Unmarshal deserializes a Report from CBOR bytes.
func Unmarshal(data []byte) (*Report, error) {
	var r Report
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("report: unmarshal: %w", err)
	}
	return &r, nil
}

// WriteFile writes the CBOR encoding of r to path.
func WriteFile(path string, r *Report) error {
	data, err := Marshal(r)
	if err != nil {
		return fmt.Errorf("report: marshal: %w", err)
	}
	return os.WriteFile(path, data, 0o644)
}

// ReadFile reads a report written by WriteFile.
func ReadFile(path string) (*Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Unmarshal(data)
}
