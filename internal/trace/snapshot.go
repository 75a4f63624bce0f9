// Package trace renders per-cycle engine state for human inspection.
// It is a pure consumer (spec.md §6): Capture takes a read-only look at
// an *engine.Engine after a Step and produces an immutable Snapshot; a
// Sink then formats that snapshot however it likes. Neither side
// mutates the engine.
package trace

import (
	"fmt"
	"sort"

	"github.com/jasonKoogler/tomasulo-sim/internal/engine"
)

// RSRow is one reservation-station table row (spec.md §6 trace output).
type RSRow struct {
	Name string
	Op   string
	Time string
	Vj   string
	Vk   string
	Qj   string
	Qk   string
	Dest string
	A    string
}

// ROBRow is one reorder-buffer table row.
type ROBRow struct {
	Entry int
	Instr string
	State string
	Dest  string
	Value string
}

// RegRow is one architected register's current value and rename
// marker ("" if the architected value is current).
type RegRow struct {
	Name  string
	Value string
	Rename string
}

// Snapshot is a read-only view of engine state at the end of one cycle.
type Snapshot struct {
	Cycle     int64
	PC        int
	RS        []RSRow
	ROB       []ROBRow
	Registers []RegRow
}

// Capture builds a Snapshot from the engine's current state. Q-fields
// and rename markers render ROB indices as #<1-based-index>, per
// spec.md §6.
func Capture(eng *engine.Engine) Snapshot {
	snap := Snapshot{Cycle: eng.Clock, PC: eng.PC}

	eng.RS.All(func(u *engine.Unit) {
		row := RSRow{Name: u.Name}
		if u.Busy {
			row.Op = u.Instr.Mnemonic
			row.Dest = robRef(u.Dest)
			row.A = fmt.Sprintf("%d", u.A)
			if u.TimeSet {
				row.Time = fmt.Sprintf("%d", u.Time)
			}
			row.Vj, row.Qj = operandCells(u.Vj)
			row.Vk, row.Qk = operandCells(u.Vk)
		}
		snap.RS = append(snap.RS, row)
	})

	eng.ROB.Iterate(func(e *engine.Entry) bool {
		row := ROBRow{Entry: e.Index + 1, State: e.State.String()}
		if e.Instr.Mnemonic != "" {
			row.Instr = e.Instr.Mnemonic
		}
		if e.HasDest {
			row.Dest = e.Dest
		}
		if e.Ready {
			row.Value = e.Value.String()
		}
		snap.ROB = append(snap.ROB, row)
		return true
	})

	values, stat := eng.Regs.Snapshot()
	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		row := RegRow{Name: name, Value: values[name].String()}
		if k := stat[name]; k != noWriter {
			row.Rename = fmt.Sprintf("#%d", k+1)
		}
		snap.Registers = append(snap.Registers, row)
	}

	return snap
}

const noWriter = -1

func robRef(index int) string {
	return fmt.Sprintf("#%d", index+1)
}

// operandCells renders a unit operand as its (value, wait) display
// pair: a ready operand shows its value with no wait marker; a waiting
// operand shows no value and a "#<rob>" wait marker; an absent operand
// (the unit's unused second source) shows neither.
func operandCells(op engine.Operand) (value, wait string) {
	if !op.Present {
		return "", ""
	}
	if op.Ready {
		return op.Value.String(), ""
	}
	return "", robRef(op.Wait)
}
