// Package eval evaluates conditions against a state document. Evaluation
// is three-valued: a condition over data that is absent from the document
// is Residual (truth unknown), never silently false. This mirrors
// open-world policy evaluation, where absence of data must not be
// coerced to a negative answer.
package eval

// Status is the truth value of an evaluated condition.
type Status int

const (
	// StatusSatisfied: all referenced paths exist and the condition holds.
	StatusSatisfied Status = iota
	// StatusConflicted: all referenced paths exist and the condition does
	// not hold.
	StatusConflicted
	// StatusResidual: at least one referenced path is absent; truth is
	// unknown.
	StatusResidual
)

func (s Status) String() string {
	switch s {
	case StatusSatisfied:
		return "satisfied"
	case StatusConflicted:
		return "conflicted"
	case StatusResidual:
		return "residual"
	}
	return "unknown"
}

// Outcome is the result of evaluating a condition. Missing lists the
// unresolved paths when Status is StatusResidual.
type Outcome struct {
	Status  Status
	Missing []string
}

// Satisfied reports whether the condition definitely holds.
func (o Outcome) Satisfied() bool { return o.Status == StatusSatisfied }

// Conflicted reports whether the condition definitely does not hold.
func (o Outcome) Conflicted() bool { return o.Status == StatusConflicted }

// Residual reports whether truth is unknown due to absent data.
func (o Outcome) Residual() bool { return o.Status == StatusResidual }

func satisfied() Outcome  { return Outcome{Status: StatusSatisfied} }
func conflicted() Outcome { return Outcome{Status: StatusConflicted} }
func residual(missing ...string) Outcome {
	return Outcome{Status: StatusResidual, Missing: missing}
}
