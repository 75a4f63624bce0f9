package engine

// Unit is a single functional unit, the tagged-variant record from
// spec.md §9's design notes: one struct with a discriminant (Type) and
// variant-specific fields (DivLatency only matters for Mult, the
// predictor only for Branch). Per-instruction operand-waiting state
// (Vj/Vk/Qj/Qk) and the countdown Time live here rather than on the ROB
// entry, matching the original Tomasulo formulation.
type Unit struct {
	Name       string
	Type       UnitType
	Latency    int
	DivLatency int // Mult only; 0 means "same as Latency"

	Busy    bool
	Dest    int // ROB index this unit will produce, valid iff Busy
	Vj, Vk  Operand
	A       int  // memory offset (Load/Store) or branch target (Branch)
	Time    int  // countdown; TimeSet indicates whether it has started
	TimeSet bool
	Instr   Instruction

	predictor Predictor // Branch only
}

// Waiting reports whether the unit still needs an operand before it can
// start its countdown.
func (u *Unit) Waiting() bool {
	return (u.Vj.Present && !u.Vj.Ready) || (u.Vk.Present && !u.Vk.Ready)
}

// reset clears all per-instruction state, preserving Name/Type/Latency/
// DivLatency/predictor (the unit's static configuration).
func (u *Unit) reset() {
	u.Busy = false
	u.Dest = 0
	u.Vj = Operand{}
	u.Vk = Operand{}
	u.A = 0
	u.Time = 0
	u.TimeSet = false
	u.Instr = Instruction{}
}

// occupy attaches instr and the owning ROB index to a freshly-claimed
// unit.
func (u *Unit) occupy(instr Instruction, robIndex int) {
	u.reset()
	u.Busy = true
	u.Instr = instr
	u.Dest = robIndex
}

// latencyFor returns the countdown to use for this unit's instruction,
// honoring the Mult latency/div_latency split from spec.md §4.2.
func (u *Unit) latencyFor() int {
	if u.Type == Mult && u.Instr.Operator == "/" {
		if u.DivLatency > 0 {
			return u.DivLatency
		}
	}
	return u.Latency
}

// startIfReady begins the countdown when both operands are available
// and the unit has not already started.
func (u *Unit) startIfReady() {
	if !u.TimeSet && !u.Waiting() {
		u.Time = u.latencyFor()
		u.TimeSet = true
	}
}

// ReservationStations is the ordered mapping from unit type to the
// functional units of that type. Iteration order is the configuration
// order (Load, Store, Add, Mult, ALU, Branch), then unit index within a
// type — the source of the engine's determinism (spec.md §5).
type ReservationStations struct {
	order map[UnitType][]*Unit
}

func NewReservationStations() *ReservationStations {
	return &ReservationStations{order: make(map[UnitType][]*Unit)}
}

// Add appends a unit of the given type, preserving insertion order.
func (rs *ReservationStations) Add(u *Unit) {
	rs.order[u.Type] = append(rs.order[u.Type], u)
}

// Units returns the units of a given type in configuration order.
func (rs *ReservationStations) Units(t UnitType) []*Unit {
	return rs.order[t]
}

// All iterates every unit in deterministic cross-type, then
// within-type, order.
func (rs *ReservationStations) All(fn func(u *Unit)) {
	for _, t := range unitTypeOrder {
		for _, u := range rs.order[t] {
			fn(u)
		}
	}
}

// FindFree scans units of the instruction's type in order and returns
// the first with Busy == false.
func (rs *ReservationStations) FindFree(t UnitType) *Unit {
	for _, u := range rs.order[t] {
		if !u.Busy {
			return u
		}
	}
	return nil
}

// Reset idles every unit (misprediction flush, spec.md §4.3.1).
func (rs *ReservationStations) Reset() {
	rs.All(func(u *Unit) { u.reset() })
}
