package engine

import (
	"fmt"
	"strconv"
	"strings"
)

const numRegisters = 32

// RegisterFile holds the 32 integer + 32 floating registers together
// with the rename table (`stat` in Hennessy & Patterson's terms): for
// each register, either the architected value is current (stat=nil) or
// a specific ROB index will produce its next value. R0 is hardwired to
// zero: a write to it fails with ErrR0Write, except a bypassed write
// (initial load), which is silently dropped.
type RegisterFile struct {
	values map[string]Value
	stat   map[string]int // -1 means "no in-flight writer"
}

const noWriter = -1

func NewRegisterFile() *RegisterFile {
	rf := &RegisterFile{
		values: make(map[string]Value, numRegisters*2),
		stat:   make(map[string]int, numRegisters*2),
	}
	for i := 0; i < numRegisters; i++ {
		rf.values[fmt.Sprintf("R%d", i)] = IntValue(0)
		rf.values[fmt.Sprintf("F%d", i)] = FloatValue(0)
		rf.stat[fmt.Sprintf("R%d", i)] = noWriter
		rf.stat[fmt.Sprintf("F%d", i)] = noWriter
	}
	return rf
}

// ValidRegister reports whether name is one of R0..R31 or F0..F31.
func ValidRegister(name string) bool {
	if len(name) < 2 {
		return false
	}
	kind := name[0]
	if kind != 'R' && kind != 'F' {
		return false
	}
	n, err := strconv.Atoi(name[1:])
	if err != nil {
		return false
	}
	return n >= 0 && n < numRegisters
}

func (rf *RegisterFile) Get(name string) (Value, error) {
	if !ValidRegister(name) {
		return Value{}, newError(ErrInvalidRegister, "invalid register %q", name)
	}
	return rf.values[name], nil
}

// Set writes an architected value, bypassing the R0 guard only when
// bypass is true (used for config-driven initialization).
func (rf *RegisterFile) Set(name string, v Value, bypass bool) error {
	if !ValidRegister(name) {
		return newError(ErrInvalidRegister, "invalid register %q", name)
	}
	if name == "R0" {
		if !bypass {
			return newError(ErrR0Write, "cannot write hardwired zero register R0")
		}
		return nil // R0 is hardwired to zero even during bypassed initialization
	}
	rf.values[name] = v
	return nil
}

// Stat returns the ROB index currently renaming name, or (0, false) if
// the architected value is current.
func (rf *RegisterFile) Stat(name string) (int, bool) {
	idx, ok := rf.stat[name]
	if !ok || idx == noWriter {
		return 0, false
	}
	return idx, true
}

// SetStat records that robIndex is the latest in-flight writer of name.
func (rf *RegisterFile) SetStat(name string, robIndex int) {
	rf.stat[name] = robIndex
}

// ClearStatIfOwner clears the rename entry for name only if robIndex is
// still the owner (a newer renamer may have since claimed it).
func (rf *RegisterFile) ClearStatIfOwner(name string, robIndex int) {
	if rf.stat[name] == robIndex {
		rf.stat[name] = noWriter
	}
}

// ResetStat clears every rename entry (used on misprediction flush).
func (rf *RegisterFile) ResetStat() {
	for k := range rf.stat {
		rf.stat[k] = noWriter
	}
}

// IsIntegerRegister reports whether name is an R-class (integer)
// register as opposed to an F-class (float) register.
func IsIntegerRegister(name string) bool {
	return strings.HasPrefix(name, "R")
}

// Snapshot returns a read-only copy of register values and rename
// markers, keyed by register name, for the trace emitter.
func (rf *RegisterFile) Snapshot() (values map[string]Value, stat map[string]int) {
	values = make(map[string]Value, len(rf.values))
	stat = make(map[string]int, len(rf.stat))
	for k, v := range rf.values {
		values[k] = v
	}
	for k, v := range rf.stat {
		stat[k] = v
	}
	return values, stat
}
