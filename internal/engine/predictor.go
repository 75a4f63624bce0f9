package engine

// Direction is a static branch-direction policy: always taken or always
// not-taken.
type Direction bool

const (
	NotTaken Direction = false
	Taken    Direction = true
)

// ParseDirection accepts the configuration vocabulary ("taken" /
// "not_taken") used by spec.md §6.
func ParseDirection(s string) (Direction, bool) {
	switch s {
	case "taken":
		return Taken, true
	case "not_taken":
		return NotTaken, true
	default:
		return NotTaken, false
	}
}

// Predictor is the static per-direction branch predictor attached to
// Branch units (spec.md §4.4). The single polymorphic capability a
// dynamic predictor would need — Predict and Update — is exposed as an
// interface so a future implementation can slot in behind it; this
// static policy's Update is a no-op that still accepts the notification.
type Predictor interface {
	Predict(pc, target int) bool
	Update(taken bool)
}

// StaticPredictor implements the forward/backward taken policy from
// spec.md §4.4: forward_branch := target > pc; predicted taken iff
// (forward && Forward==Taken) || (!forward && Backward==Taken).
type StaticPredictor struct {
	Forward  Direction
	Backward Direction
}

func (p *StaticPredictor) Predict(pc, target int) bool {
	forwardBranch := target > pc
	if forwardBranch {
		return bool(p.Forward)
	}
	return bool(p.Backward)
}

// Update is a no-op for the static policy; the interface accepts the
// notification so dynamic predictors can be substituted without
// changing the engine's call sites.
func (p *StaticPredictor) Update(taken bool) {}
