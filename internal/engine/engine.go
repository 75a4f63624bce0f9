// Package engine implements the Tomasulo pipeline controller: the
// reorder buffer, reservation stations, register renaming, branch
// speculation with rollback, and memory ordering described in spec.md
// §3–§5. It is strictly single-threaded and synchronous — one Step call
// is one simulated clock tick, run to completion before the next.
package engine

import "fmt"

// Logger is the minimal structured-logging capability the engine needs
// for its debug-mode per-step narration (spec.md SPEC_FULL §4 item 3).
// Keeping this as a tiny interface rather than importing zap directly
// keeps the engine independently testable; cmd/tomasim supplies a
// zap-backed implementation.
type Logger interface {
	Debugf(format string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debugf(string, ...any) {}

// Engine is the pipeline controller: PC, the pending branch target
// scratch (NewPC/HasNewPC), the structural concurrent-branch stall flag,
// and the four owned subsystems (ROB, reservation stations, register
// file, memory).
type Engine struct {
	ROB  *ROB
	RS   *ReservationStations
	Regs *RegisterFile
	Mem  *Memory

	Instructions []Instruction
	PC           int
	NewPC        int
	HasNewPC     bool
	Stall        bool

	Clock          int64
	Committed      int64
	Mispredictions int64

	Logger Logger
}

func (e *Engine) logger() Logger {
	if e.Logger == nil {
		return noopLogger{}
	}
	return e.Logger
}

// Done reports whether the simulation has reached its termination
// condition: the next PC to fetch (a pending NewPC, if any) is past the
// last instruction and the ROB is empty (spec.md §4.3.4).
func (e *Engine) Done() bool {
	if !e.ROB.Empty() {
		return false
	}
	if e.HasNewPC {
		return e.NewPC >= len(e.Instructions)
	}
	return e.PC+1 >= len(e.Instructions)
}

// Step advances the simulation by exactly one clock tick, in the
// reverse-pipeline order mandated by spec.md §2 and §4.3: commit, then
// the execute/writeback sweep, then the PC advance (applying any pending
// NewPC), then issue at the new PC. It returns done=true once Done()
// holds after the tick.
func (e *Engine) Step() (done bool, err error) {
	if err := e.commit(); err != nil {
		return false, err
	}
	if err := e.executeWritebackSweep(); err != nil {
		return false, err
	}

	noNewPCAtEnd := !e.HasNewPC && e.PC+1 == len(e.Instructions)
	newPCAtEnd := e.HasNewPC && e.NewPC == len(e.Instructions)
	if e.Stall || noNewPCAtEnd || newPCAtEnd {
		// No instruction issued this cycle: either a concurrent-branch
		// stall or the program has no more instructions to fetch.
	} else {
		if e.HasNewPC {
			e.PC = e.NewPC
		} else {
			e.PC++
		}
		e.HasNewPC = false
		if err := e.issue(); err != nil {
			return false, err
		}
	}

	e.Clock++
	return e.Done(), nil
}

// Run steps the engine until it terminates or maxCycles elapse,
// whichever comes first. It returns the number of cycles actually
// simulated.
func (e *Engine) Run(maxCycles int64) (int64, error) {
	var n int64
	for n = 0; n < maxCycles; n++ {
		done, err := e.Step()
		if err != nil {
			return n, err
		}
		if done {
			return n + 1, nil
		}
	}
	return n, nil
}

// commit retires the head-of-ROB entry when it is Write-state and ready,
// per spec.md §4.3.1. At most one commit happens per cycle.
func (e *Engine) commit() error {
	if e.ROB.Empty() {
		return nil
	}
	head := e.ROB.Head()
	if head.State != Write || !head.Ready {
		return nil
	}

	e.logger().Debugf("commit: rob#%d %s", head.Index+1, head.Instr.Mnemonic)

	if head.HasDest {
		if err := e.Regs.Set(head.Dest, head.Value, false); err != nil {
			return err
		}
		e.Regs.ClearStatIfOwner(head.Dest, head.Index)
	}

	if head.Instr.Unit == Store {
		if err := e.Mem.Store(head.Addr, head.Value); err != nil {
			return err
		}
	}

	if head.Instr.Unit == Branch {
		e.Stall = false
		if head.HasPred && head.Prediction != head.Value.Bool {
			e.Mispredictions++
			if head.Value.Bool {
				e.NewPC = branchTarget(head.Instr)
			} else {
				e.NewPC = head.Instr.Addr + 1
			}
			e.HasNewPC = true

			e.ROB.Reset()
			e.Regs.ResetStat()
			e.RS.Reset()
		}
	}

	e.ROB.RetireHead()
	e.Committed++
	return nil
}

// executeWritebackSweep performs the two passes of spec.md §4.3.2:
// advance (or complete) every already-running unit, then start any
// unit whose operands just became available.
func (e *Engine) executeWritebackSweep() error {
	var firstErr error

	e.RS.All(func(u *Unit) {
		if firstErr != nil || !u.Busy || !u.TimeSet {
			return
		}
		if u.Time >= 1 {
			u.Time--
			e.ROB.Entry(u.Dest).State = Execute
			return
		}

		if u.Type == Load && u.Vj.Present && u.Vj.Ready {
			if e.ROB.StoreAhead(u.Dest) {
				return // a prior store must commit first; stall this cycle
			}
			u.A = int(u.Vj.Value.Int) + u.A
			u.Vj = Operand{}
			return // effective address resolved; completes next cycle
		}

		if err := e.execInstr(u); err != nil {
			firstErr = err
			return
		}
		e.writeback(u)
	})
	if firstErr != nil {
		return firstErr
	}

	e.RS.All(func(u *Unit) {
		if u.Busy && !u.TimeSet {
			u.startIfReady()
		}
	})

	return nil
}

// issue attempts to dispatch instructions[PC] into a free functional
// unit and ROB slot, per spec.md §4.3.3.
func (e *Engine) issue() error {
	if e.PC < 0 || e.PC >= len(e.Instructions) {
		return nil
	}
	cur := e.Instructions[e.PC]

	if cur.Unit == Branch && e.ROB.HasBranch() {
		e.Stall = true
		e.HasNewPC = true
		e.NewPC = e.PC
		return nil
	}

	unit := e.RS.FindFree(cur.Unit)
	if unit == nil || e.ROB.Full() {
		e.HasNewPC = true
		e.NewPC = e.PC
		return nil
	}

	robIndex, ok := e.ROB.Allocate()
	if !ok {
		e.HasNewPC = true
		e.NewPC = e.PC
		return nil
	}

	e.logger().Debugf("issue: rob#%d %s at pc=%d", robIndex+1, cur.Mnemonic, e.PC)

	entry := e.ROB.Entry(robIndex)
	entry.Instr = cur
	entry.State = Issue
	entry.Ready = false

	unit.occupy(cur, robIndex)

	if err := e.resolveOperands(unit, cur); err != nil {
		return err
	}
	unit.startIfReady()

	if idx, ok := destIndex(cur); ok && idx < len(cur.Operands) {
		destReg := cur.Operands[idx].Reg
		entry.Dest = destReg
		entry.HasDest = true
		e.Regs.SetStat(destReg, robIndex)
	}

	if cur.Unit == Branch {
		target := branchTarget(cur)
		unit.A = target
		predicted := unit.predictor.Predict(e.PC, target)
		entry.Prediction = predicted
		entry.HasPred = true
		if predicted {
			e.HasNewPC = true
			e.NewPC = target
		}
	}
	if !e.HasNewPC {
		e.HasNewPC = true
		e.NewPC = e.PC + 1
	}

	return nil
}

// resolveOperands fills in Vj/Vk (or leaves them waiting on a ROB index)
// for each source operand, per spec.md §4.3.3 steps 5–6.
func (e *Engine) resolveOperands(unit *Unit, cur Instruction) error {
	sources := sourceIndices(cur)
	first := true
	for _, idx := range sources {
		if idx >= len(cur.Operands) {
			continue
		}
		raw := cur.Operands[idx]

		var op Operand
		switch raw.Kind {
		case OperandImmediate:
			op = ReadyOperand(IntValue(raw.Imm))
		case OperandMemory:
			unit.A = int(raw.Imm)
			resolved, err := e.resolveRegister(raw.Reg)
			if err != nil {
				return err
			}
			op = resolved
		case OperandRegister:
			resolved, err := e.resolveRegister(raw.Reg)
			if err != nil {
				return err
			}
			op = resolved
		}

		if first {
			unit.Vj = op
			first = false
		} else {
			unit.Vk = op
		}
	}
	return nil
}

// resolveRegister reads a register operand: if its rename entry points
// at an entry whose result is already available (Write or Commit), take
// the value directly; if it points at a still-in-flight entry, wait on
// that ROB index; otherwise take the architected value.
func (e *Engine) resolveRegister(name string) (Operand, error) {
	if k, waiting := e.Regs.Stat(name); waiting {
		entry := e.ROB.Entry(k)
		if entry.State == Write || entry.State == Commit {
			return ReadyOperand(entry.Value), nil
		}
		return WaitingOperand(k), nil
	}
	v, err := e.Regs.Get(name)
	if err != nil {
		return Operand{}, err
	}
	return ReadyOperand(v), nil
}

// execInstr computes the result of the instruction owned by unit,
// writing it into its ROB entry (spec.md §4.4). It does not broadcast;
// that is writeback's job.
func (e *Engine) execInstr(u *Unit) error {
	entry := e.ROB.Entry(u.Dest)
	instr := u.Instr

	switch u.Type {
	case Branch:
		outcome, err := evaluateBranch(instr, u.Vj, u.Vk)
		if err != nil {
			return err
		}
		entry.Value = BoolValue(outcome)
		if u.predictor != nil {
			u.predictor.Update(outcome)
		}
	case Store:
		entry.Addr = int(u.Vk.Value.Int) + u.A
		entry.Value = u.Vj.Value
	case Load:
		v, err := e.Mem.Load(u.A, isFloatMnemonic(instr.Mnemonic))
		if err != nil {
			return err
		}
		entry.Value = v
	default: // Add, Mult, ALU
		v, err := computeArithmetic(instr, u.Vj.Value, u.Vk.Value)
		if err != nil {
			return err
		}
		entry.Value = v
	}

	entry.State = Execute
	return nil
}

// writeback broadcasts a completed unit's result on the CDB: every unit
// waiting on this ROB index picks it up, then the ROB entry is marked
// ready and the unit is freed (spec.md §4.5).
func (e *Engine) writeback(u *Unit) {
	entry := e.ROB.Entry(u.Dest)

	if u.Type != Store {
		value := entry.Value
		e.RS.All(func(w *Unit) {
			if !w.Busy || w.TimeSet {
				return
			}
			if w.Vj.Present && !w.Vj.Ready && w.Vj.Wait == u.Dest {
				w.Vj = ReadyOperand(value)
			}
			if w.Vk.Present && !w.Vk.Ready && w.Vk.Wait == u.Dest {
				w.Vk = ReadyOperand(value)
			}
		})
	}

	entry.Ready = true
	entry.State = Write
	u.reset()
}

func evaluateBranch(instr Instruction, vj, vk Operand) (bool, error) {
	switch instr.Mnemonic {
	case "BEQ":
		return vj.Value.Num() == vk.Value.Num(), nil
	case "BNE":
		return vj.Value.Num() != vk.Value.Num(), nil
	case "BEQZ":
		return vk.Value.Num() == 0, nil
	case "BNEZ":
		return vj.Value.Num() != 0, nil
	case "J":
		return true, nil
	default:
		return false, newError(ErrUnknownBranch, "unknown branch mnemonic %q", instr.Mnemonic)
	}
}

func computeArithmetic(instr Instruction, vj, vk Value) (Value, error) {
	integer := producesInteger(instr.Mnemonic)
	switch instr.Operator {
	case "+":
		if integer {
			return IntValue(vj.Int + vk.Int), nil
		}
		return FloatValue(vj.Float + vk.Float), nil
	case "-":
		if integer {
			return IntValue(vj.Int - vk.Int), nil
		}
		return FloatValue(vj.Float - vk.Float), nil
	case "*":
		if integer {
			return IntValue(vj.Int * vk.Int), nil
		}
		return FloatValue(vj.Float * vk.Float), nil
	case "/":
		if integer {
			if vk.Int == 0 {
				return Value{}, fmt.Errorf("integer division by zero")
			}
			return IntValue(vj.Int / vk.Int), nil
		}
		return FloatValue(vj.Float / vk.Float), nil
	case "&":
		return IntValue(vj.Int & vk.Int), nil
	default:
		return Value{}, newError(ErrUnknownOperator, "unknown operator %q", instr.Operator)
	}
}

// branchTarget returns the resolved target address (the parser's label
// resolution leaves it as the last operand, an immediate).
func branchTarget(instr Instruction) int {
	if len(instr.Operands) == 0 {
		return 0
	}
	return int(instr.Operands[len(instr.Operands)-1].Imm)
}
