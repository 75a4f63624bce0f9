package engine

import (
	"fmt"

	"github.com/jasonKoogler/tomasulo-sim/internal/config"
)

// New builds an Engine from a loaded machine configuration and a decoded
// instruction stream. This is the one seam between the "external
// collaborator" config/parser layers (spec.md §6) and the pipeline
// controller itself.
func New(cfg *config.Config, instructions []Instruction) (*Engine, error) {
	if cfg == nil {
		return nil, fmt.Errorf("nil configuration")
	}

	e := &Engine{
		ROB:          NewROB(cfg.ROBCapacity),
		RS:           NewReservationStations(),
		Regs:         NewRegisterFile(),
		Mem:          NewMemory(cfg.Memory.Size),
		Instructions: instructions,
		PC:           -1, // Step's first call advances this to 0 before issuing
	}

	merged := mergeUnits(cfg.Units)
	for _, t := range unitTypeOrder {
		uc := merged[t]
		if uc.Number == 0 {
			continue
		}
		var predictor Predictor
		if t == Branch {
			forward, _ := ParseDirection(orDefault(uc.SpecForward, "not_taken"))
			backward, _ := ParseDirection(orDefault(uc.SpecBackward, "taken"))
			predictor = &StaticPredictor{Forward: forward, Backward: backward}
		}
		for i := 0; i < uc.Number; i++ {
			u := &Unit{
				Name:       fmt.Sprintf("%s%d", t, i+1),
				Type:       t,
				Latency:    uc.Latency,
				DivLatency: uc.DivLatency,
				predictor:  predictor,
			}
			e.RS.Add(u)
		}
	}

	for name, v := range cfg.Registers {
		var val Value
		if IsIntegerRegister(name) {
			val = IntValue(int64(v))
		} else {
			val = FloatValue(v)
		}
		if err := e.Regs.Set(name, val, true); err != nil {
			return nil, fmt.Errorf("initializing register %s: %w", name, err)
		}
	}

	for i, raw := range cfg.Memory.Cells {
		e.Mem.SetInitial(i, toValue(raw))
	}

	return e, nil
}

func toValue(raw any) Value {
	switch v := raw.(type) {
	case int:
		return IntValue(int64(v))
	case int64:
		return IntValue(v)
	case float64:
		return FloatValue(v)
	case float32:
		return FloatValue(float64(v))
	default:
		return FloatValue(0)
	}
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// mergeUnits fills in any unit type absent from the configuration with
// config.Default()'s values, so a minimal config file (as in the test
// scenarios of spec.md §8) only needs to override what it cares about.
func mergeUnits(units map[string]config.UnitConfig) map[UnitType]config.UnitConfig {
	defaults := config.Default().Units
	out := make(map[UnitType]config.UnitConfig, len(unitTypeOrder))
	names := map[UnitType]string{
		Load: "Load", Store: "Store", Add: "Add", Mult: "Mult", ALU: "ALU", Branch: "Branch",
	}
	for t, name := range names {
		if uc, ok := units[name]; ok {
			out[t] = uc
		} else {
			out[t] = defaults[name]
		}
	}
	return out
}
