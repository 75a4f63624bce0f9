package trace

import (
	"fmt"
	"io"
	"strconv"

	"github.com/olekukonko/tablewriter"
)

// TableWriter renders each cycle as three ASCII tables — reservation
// stations, ROB, registers — the same three views the source
// simulator's TextTrace wrote, using olekukonko/tablewriter in place of
// its PrettyTable dependency.
type TableWriter struct {
	w io.Writer
}

func NewTableWriter(w io.Writer) *TableWriter {
	return &TableWriter{w: w}
}

func (t *TableWriter) Update(s Snapshot) error {
	fmt.Fprintf(t.w, "%s\nCycle: %d\nProgram Counter: %d\n", sep, s.Cycle, s.PC)

	fmt.Fprintln(t.w, "Reservation stations:")
	rs := tablewriter.NewWriter(t.w)
	rs.SetHeader([]string{"Station", "Op", "Time", "Vj", "Vk", "Qj", "Qk", "Dest", "A"})
	for _, row := range s.RS {
		rs.Append([]string{row.Name, row.Op, row.Time, row.Vj, row.Vk, row.Qj, row.Qk, row.Dest, row.A})
	}
	rs.Render()

	fmt.Fprintln(t.w, "ROB:")
	rob := tablewriter.NewWriter(t.w)
	rob.SetHeader([]string{"Entry", "Instruction", "State", "Dest", "Value"})
	for _, row := range s.ROB {
		rob.Append([]string{strconv.Itoa(row.Entry), row.Instr, row.State, row.Dest, row.Value})
	}
	rob.Render()

	fmt.Fprintln(t.w, "Registers:")
	regs := tablewriter.NewWriter(t.w)
	regs.SetHeader([]string{"Register", "Value", "ROB#"})
	for _, row := range s.Registers {
		regs.Append([]string{row.Name, row.Value, row.Rename})
	}
	regs.Render()

	return nil
}

func (t *TableWriter) Close() error {
	if c, ok := t.w.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

const sep = "================================================================================"
