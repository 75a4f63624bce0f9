// Package asm decodes MIPS-64 assembly text into the engine's
// immutable Instruction stream (spec.md §6). It is the parser
// collaborator the engine treats as external: nothing here reaches
// back into engine state, and a malformed program fails before the
// engine is ever built.
package asm

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/jasonKoogler/tomasulo-sim/internal/engine"
)

var (
	memoryRef  = regexp.MustCompile(`^(-?\d+)\(([A-Za-z]\d+)\)$`)
	registerRe = regexp.MustCompile(`^[A-Za-z]\d+$`)
	immediate  = regexp.MustCompile(`^#(-?\d+)$`)
)

// Parse decodes a complete assembly source into an instruction stream.
// Labels are resolved to immediate line-index operands before an
// Instruction is ever constructed, matching spec.md §3's "labels are
// resolved by the parser to #<line>".
func Parse(source string) ([]engine.Instruction, error) {
	rawLines := strings.Split(source, "\n")

	type line struct {
		number int // 1-based
		text   string
	}
	var body []line
	labels := map[string]int{}

	for i, raw := range rawLines {
		cleaned := strings.TrimSpace(stripComment(raw))
		if cleaned == "" {
			continue
		}
		if name, ok := splitLabel(cleaned); ok {
			labels[name] = len(body)
			continue
		}
		body = append(body, line{number: i + 1, text: cleaned})
	}

	instructions := make([]engine.Instruction, 0, len(body))
	for addr, ln := range body {
		mnemonic, rest := splitMnemonic(ln.text)
		unit, operator, ok := engine.LookupMnemonic(mnemonic)
		if !ok {
			return nil, parseErrorf(ln.number, "unknown mnemonic %q", mnemonic)
		}

		tokens := splitOperands(rest)
		operands := make([]engine.RawOperand, 0, len(tokens))
		for _, tok := range tokens {
			operand, err := resolveOperand(tok, labels, ln.number)
			if err != nil {
				return nil, err
			}
			operands = append(operands, operand)
		}

		instructions = append(instructions, engine.Instruction{
			Addr:     addr,
			Mnemonic: mnemonic,
			Unit:     unit,
			Operator: operator,
			Operands: operands,
		})
	}

	return instructions, nil
}

// resolveOperand classifies one operand token: a label reference (any
// line label, resolved to the immediate `#<line>` form), a literal
// immediate, a memory reference `<imm>(<reg>)`, or a bare register.
func resolveOperand(tok string, labels map[string]int, lineNo int) (engine.RawOperand, error) {
	if target, ok := labels[tok]; ok {
		return engine.RawOperand{Kind: engine.OperandImmediate, Imm: int64(target)}, nil
	}
	if m := immediate.FindStringSubmatch(tok); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return engine.RawOperand{}, parseErrorf(lineNo, "malformed immediate %q", tok)
		}
		return engine.RawOperand{Kind: engine.OperandImmediate, Imm: n}, nil
	}
	if m := memoryRef.FindStringSubmatch(tok); m != nil {
		n, err := strconv.ParseInt(m[1], 10, 64)
		if err != nil {
			return engine.RawOperand{}, parseErrorf(lineNo, "malformed memory offset %q", tok)
		}
		if !engine.ValidRegister(strings.ToUpper(m[2])) {
			return engine.RawOperand{}, parseErrorf(lineNo, "invalid register in memory reference %q", tok)
		}
		return engine.RawOperand{Kind: engine.OperandMemory, Reg: strings.ToUpper(m[2]), Imm: n}, nil
	}
	if registerRe.MatchString(tok) && engine.ValidRegister(strings.ToUpper(tok)) {
		return engine.RawOperand{Kind: engine.OperandRegister, Reg: strings.ToUpper(tok)}, nil
	}
	return engine.RawOperand{}, parseErrorf(lineNo, "unrecognized operand %q (not a label, immediate, register, or memory reference)", tok)
}
