package engine_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jasonKoogler/tomasulo-sim/internal/asm"
	"github.com/jasonKoogler/tomasulo-sim/internal/config"
	"github.com/jasonKoogler/tomasulo-sim/internal/engine"
)

func build(t *testing.T, cfg *config.Config, source string) *engine.Engine {
	t.Helper()
	instructions, err := asm.Parse(source)
	require.NoError(t, err)
	eng, err := engine.New(cfg, instructions)
	require.NoError(t, err)
	return eng
}

func runToCompletion(t *testing.T, eng *engine.Engine, maxCycles int64) {
	t.Helper()
	cycles, err := eng.Run(maxCycles)
	require.NoError(t, err)
	require.Truef(t, eng.Done(), "program did not terminate within %d cycles (ran %d)", maxCycles, cycles)
}

// S1: immediate load and store.
func TestScenarioLoadStore(t *testing.T) {
	cfg := config.Default()
	cfg.Units["Load"] = config.UnitConfig{Number: 1, Latency: 2}
	cfg.Units["Store"] = config.UnitConfig{Number: 1, Latency: 1}
	cfg.Memory = config.MemoryConfig{Size: 4, Cells: []any{3.14, 0.0, 0.0, 0.0}}

	eng := build(t, cfg, "L.D F0,0(R0)\nS.D F0,16(R0)\n")
	runToCompletion(t, eng, 50)

	mem := eng.Mem.Snapshot()
	assert.InDelta(t, 3.14, mem[0].Float, 1e-9)
	assert.InDelta(t, 3.14, mem[2].Float, 1e-9)
}

// S2: RAW dependency resolved through the ROB via CDB broadcast.
func TestScenarioRAWThroughROB(t *testing.T) {
	cfg := config.Default()
	cfg.Units["Load"] = config.UnitConfig{Number: 1, Latency: 2}
	cfg.Units["Add"] = config.UnitConfig{Number: 1, Latency: 2}
	cfg.Memory = config.MemoryConfig{Size: 2, Cells: []any{1.0, 2.0}}

	eng := build(t, cfg, "L.D F0,0(R0)\nL.D F2,8(R0)\nADD.D F4,F0,F2\n")
	runToCompletion(t, eng, 50)

	f4, err := eng.Regs.Get("F4")
	require.NoError(t, err)
	assert.InDelta(t, 3.0, f4.Float, 1e-9)
}

// S3: a backward branch predicted taken, looping until the counter hits
// zero. The predictor's one false prediction is the loop-exit itself
// (a backward-targeted branch under backward=taken is always predicted
// taken, including on the iteration where it is not actually taken) —
// every prior iteration is predicted correctly.
func TestScenarioBackwardBranchLoop(t *testing.T) {
	cfg := config.Default() // Branch: forward=not_taken, backward=taken

	eng := build(t, cfg, "Loop:\nDADDIU R1,R1,#-1\nBNEZ R1,Loop\n")
	eng.Regs.Set("R1", engine.IntValue(3), true)

	runToCompletion(t, eng, 200)

	r1, err := eng.Regs.Get("R1")
	require.NoError(t, err)
	assert.Equal(t, int64(0), r1.Int)
	assert.Equal(t, int64(1), eng.Mispredictions, "exactly the loop-exit branch should mispredict")
}

// S4: a mispredicted forward branch flushes speculative work issued
// between the branch and its commit.
func TestScenarioMispredictedForwardBranch(t *testing.T) {
	cfg := config.Default() // Branch: forward=not_taken

	eng := build(t, cfg, "BEQ R1,R2,Skip\nDADDIU R4,R4,#1\nSkip:\nDADDIU R5,R5,#1\n")
	eng.Regs.Set("R1", engine.IntValue(5), true)
	eng.Regs.Set("R2", engine.IntValue(5), true)

	runToCompletion(t, eng, 50)

	r4, err := eng.Regs.Get("R4")
	require.NoError(t, err)
	r5, err := eng.Regs.Get("R5")
	require.NoError(t, err)

	assert.Equal(t, int64(0), r4.Int, "the speculative DADDIU R4 must leave no architectural trace")
	assert.Equal(t, int64(1), r5.Int, "the post-label DADDIU R5 must commit after the flush")
	assert.Equal(t, int64(1), eng.Mispredictions)
}

// S5: division uses div_latency, not latency.
func TestScenarioDivisionLatency(t *testing.T) {
	cfg := config.Default()
	cfg.Units["Mult"] = config.UnitConfig{Number: 1, Latency: 4, DivLatency: 10}

	eng := build(t, cfg, "DIV.D F4,F2,F0\n")
	eng.Regs.Set("F2", engine.FloatValue(20), true)
	eng.Regs.Set("F0", engine.FloatValue(4), true)

	done, err := eng.Step()
	require.NoError(t, err)
	require.False(t, done)

	units := eng.RS.Units(engine.Mult)
	require.Len(t, units, 1)
	assert.True(t, units[0].TimeSet)
	assert.Equal(t, 10, units[0].Time)
}

// S6: a full ROB forces a structural stall that re-issues the same PC
// every cycle until the head commits, with the rename table reflecting
// exactly the in-flight entries.
func TestScenarioStructuralStall(t *testing.T) {
	cfg := config.Default()
	cfg.ROBCapacity = 2
	cfg.Units["Add"] = config.UnitConfig{Number: 2, Latency: 5}

	eng := build(t, cfg, "ADD.D F2,F0,F0\nADD.D F4,F0,F0\nADD.D F6,F0,F0\n")

	// Cycle 1: issues the first ADD.D into rob#0.
	_, err := eng.Step()
	require.NoError(t, err)
	// Cycle 2: issues the second ADD.D into rob#1; the ROB is now full.
	_, err = eng.Step()
	require.NoError(t, err)
	require.True(t, eng.ROB.Full())

	// Cycle 3: the third ADD.D advances the PC to its own address but
	// finds no free Add unit, so it fails to issue.
	_, err = eng.Step()
	require.NoError(t, err)
	pcAtStall := eng.PC
	assert.Equal(t, 2, eng.ROB.Count())

	// Cycle 4: the stalled instruction is re-attempted at the same PC.
	_, err = eng.Step()
	require.NoError(t, err)
	assert.Equal(t, pcAtStall, eng.PC, "PC must be re-asserted while structurally stalled")

	_, waitingF2 := eng.Regs.Stat("F2")
	_, waitingF4 := eng.Regs.Stat("F4")
	_, waitingF6 := eng.Regs.Stat("F6")
	assert.True(t, waitingF2)
	assert.True(t, waitingF4)
	assert.False(t, waitingF6, "the stalled third instruction has not issued yet")

	runToCompletion(t, eng, 200)
	for _, name := range []string{"F2", "F4", "F6"} {
		v, err := eng.Regs.Get(name)
		require.NoError(t, err)
		assert.Equal(t, 0.0, v.Float)
	}
}

// Invariant: R0 never changes, even if something tries to write it.
func TestR0Immutability(t *testing.T) {
	cfg := config.Default()
	eng := build(t, cfg, "DADDIU R0,R0,#5\n")
	_, err := eng.Step()
	require.NoError(t, err)
	r0, err := eng.Regs.Get("R0")
	require.NoError(t, err)
	assert.Equal(t, int64(0), r0.Int)
}

func TestLoadTypeMismatchIsFatal(t *testing.T) {
	cfg := config.Default()
	cfg.Memory = config.MemoryConfig{Size: 1, Cells: []any{1}} // int-typed cell
	eng := build(t, cfg, "L.D F0,0(R0)\n")

	_, err := eng.Run(20)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrTypeMismatch)
}

func TestMisalignedAccessIsFatal(t *testing.T) {
	cfg := config.Default()
	cfg.Memory = config.MemoryConfig{Size: 4, Cells: nil}
	eng := build(t, cfg, "LD R1,3(R0)\n")

	_, err := eng.Run(20)
	require.Error(t, err)
	assert.ErrorIs(t, err, engine.ErrMisalignment)
}
