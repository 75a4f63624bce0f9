package trace_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonKoogler/tomasulo-sim/internal/asm"
	"github.com/jasonKoogler/tomasulo-sim/internal/config"
	"github.com/jasonKoogler/tomasulo-sim/internal/engine"
	"github.com/jasonKoogler/tomasulo-sim/internal/trace"
)

func buildEngine(t *testing.T) *engine.Engine {
	t.Helper()
	cfg := config.Default()
	cfg.Units["Load"] = config.UnitConfig{Number: 2, Latency: 3}
	cfg.Units["Add"] = config.UnitConfig{Number: 1, Latency: 2}
	cfg.Memory = config.MemoryConfig{Size: 2, Cells: []any{1.0, 2.0}}

	instrs, err := asm.Parse("L.D F0,0(R0)\nL.D F2,8(R0)\nADD.D F4,F0,F2\n")
	require.NoError(t, err)
	eng, err := engine.New(cfg, instrs)
	require.NoError(t, err)
	return eng
}

func TestCaptureReflectsBusyUnitsAndROBEntries(t *testing.T) {
	eng := buildEngine(t)

	// Cycle 1 issues the first load; cycle 2 issues the second load and
	// starts decrementing the first.
	_, err := eng.Step()
	require.NoError(t, err)
	_, err = eng.Step()
	require.NoError(t, err)

	snap := trace.Capture(eng)

	var loadRows int
	for _, row := range snap.RS {
		if row.Op == "L.D" {
			loadRows++
		}
	}
	assert.Equal(t, 2, loadRows)

	require.Len(t, snap.ROB, 2)
	assert.Equal(t, "L.D", snap.ROB[0].Instr)
	assert.Equal(t, "F0", snap.ROB[0].Dest)
}

func TestCaptureRegistersSortedWithRenameMarkers(t *testing.T) {
	eng := buildEngine(t)
	_, err := eng.Step()
	require.NoError(t, err)

	snap := trace.Capture(eng)
	require.NotEmpty(t, snap.Registers)
	for i := 1; i < len(snap.Registers); i++ {
		assert.Less(t, snap.Registers[i-1].Name, snap.Registers[i].Name)
	}

	var f0 trace.RegRow
	found := false
	for _, row := range snap.Registers {
		if row.Name == "F0" {
			f0 = row
			found = true
		}
	}
	require.True(t, found)
	assert.Equal(t, "#1", f0.Rename, "F0 is renamed to rob#1 while the load is in flight")
}

func TestTableWriterRendersWithoutError(t *testing.T) {
	eng := buildEngine(t)
	_, err := eng.Step()
	require.NoError(t, err)

	var buf bytes.Buffer
	w := trace.NewTableWriter(&buf)
	require.NoError(t, w.Update(trace.Capture(eng)))
	require.NoError(t, w.Close())

	out := buf.String()
	assert.Contains(t, out, "Reservation stations:")
	assert.Contains(t, out, "ROB:")
	assert.Contains(t, out, "Registers:")
}

func TestLaTeXWriterEmitsDocumentStructure(t *testing.T) {
	eng := buildEngine(t)
	_, err := eng.Step()
	require.NoError(t, err)

	var buf bytes.Buffer
	w := trace.NewLaTeXWriter(&buf)
	require.NoError(t, w.Update(trace.Capture(eng)))
	require.NoError(t, w.Close())

	out := buf.String()
	assert.Contains(t, out, "\\documentclass{article}")
	assert.Contains(t, out, "\\begin{tabular}")
	assert.Contains(t, out, "\\end{document}")
}

func TestMultiSinkFansOutToAllSinks(t *testing.T) {
	eng := buildEngine(t)
	_, err := eng.Step()
	require.NoError(t, err)

	var a, b bytes.Buffer
	sink := trace.MultiSink{Sinks: []trace.Sink{trace.NewTableWriter(&a), trace.NewLaTeXWriter(&b)}}
	require.NoError(t, sink.Update(trace.Capture(eng)))
	require.NoError(t, sink.Close())

	assert.NotEmpty(t, a.String())
	assert.NotEmpty(t, b.String())
}
