package engine

import "fmt"

// Kind discriminates the payload carried by a Value. MIPS-64 as modeled
// here never mixes int/float/bool in the same slot, so a single tagged
// struct replaces the source prototype's untyped Python values.
type Kind int

const (
	KindInt Kind = iota
	KindFloat
	KindBool
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	default:
		return "unknown"
	}
}

// Value is the tagged union every register, memory cell, and ROB result
// flows through: an integer, a float, or a branch outcome.
type Value struct {
	Kind  Kind
	Int   int64
	Float float64
	Bool  bool
}

func IntValue(v int64) Value   { return Value{Kind: KindInt, Int: v} }
func FloatValue(v float64) Value { return Value{Kind: KindFloat, Float: v} }
func BoolValue(v bool) Value   { return Value{Kind: KindBool, Bool: v} }

// Num returns the value as a float64 regardless of Kind, for branch
// comparisons that must mix integer and floating operands transparently
// (the way the prototype's `eval` did). Bool values are not numeric.
func (v Value) Num() float64 {
	switch v.Kind {
	case KindInt:
		return float64(v.Int)
	case KindFloat:
		return v.Float
	default:
		return 0
	}
}

func (v Value) String() string {
	switch v.Kind {
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	default:
		return "?"
	}
}

// Operand is the resolved state of a functional unit's source operand at
// issue time: either a Value ready to use (Vj/Vk in Tomasulo terms), or a
// pending wait on a ROB index (Qj/Qk). Ready and Waiting never both hold;
// the zero value means "no operand" (e.g. a unit's unused second source).
type Operand struct {
	Present bool
	Ready   bool
	Value   Value
	Wait    int // ROB index producing this operand, valid iff !Ready
}

func ReadyOperand(v Value) Operand {
	return Operand{Present: true, Ready: true, Value: v}
}

func WaitingOperand(robIndex int) Operand {
	return Operand{Present: true, Ready: false, Wait: robIndex}
}
