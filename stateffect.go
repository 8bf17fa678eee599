// Package stateffect defines the data model for a declarative effect
// interpreter: tagged effect descriptions applied to an immutable
// associative state document, producing a new document plus a structured
// record of what happened.
//
// Effects and references are pure data with no identity beyond structural
// equality. The interpreter itself lives in the interp subpackage; this
// package holds the types shared by every component.
package stateffect

// EffectType is the tag of an effect description. Built-in tags are the
// constants below; any other value is a custom tag dispatched through the
// effect registry.
type EffectType string

const (
	Noop        EffectType = "noop"
	AssocIn     EffectType = "assoc-in"
	DissocIn    EffectType = "dissoc-in"
	UpdateIn    EffectType = "update-in"
	ConjIn      EffectType = "conj-in"
	RemoveIn    EffectType = "remove-in"
	Move        EffectType = "move"
	MergeIn     EffectType = "merge-in"
	Sequence    EffectType = "sequence"
	Transaction EffectType = "transaction"
	Let         EffectType = "let"
	Conditional EffectType = "conditional"
)

// ResidualPolicy selects how a conditional behaves when its condition
// evaluates to Residual (truth unknown because required data is absent).
type ResidualPolicy string

const (
	// ResidualBlock treats Residual as Conflicted: the else branch runs.
	// This is the default.
	ResidualBlock ResidualPolicy = "block"

	// ResidualDefer applies nothing and reports the conditional as pending.
	ResidualDefer ResidualPolicy = "defer"

	// ResidualProceed optimistically applies the then branch, annotating
	// the applied entries with the unresolved paths.
	ResidualProceed ResidualPolicy = "proceed"

	// ResidualSpeculate behaves like ResidualProceed but additionally
	// records the condition so an enclosing transaction can re-verify it
	// against the final state and roll back on contradiction.
	ResidualSpeculate ResidualPolicy = "speculate"
)

// FailurePolicy selects transaction commit semantics.
type FailurePolicy string

const (
	// FailureRollback aborts the whole transaction on the first failing or
	// pending step, restoring the starting state. This is the default.
	FailureRollback FailurePolicy = "rollback"

	// FailurePartial keeps the state produced by the steps before the
	// first failure and reports only the failing step.
	FailurePartial FailurePolicy = "partial"
)

// Binding is one name/value pair in a Let effect. Value may be a reference
// and may refer to bindings established earlier in the same Let.
type Binding struct {
	Name  string `json:"name" yaml:"name"`
	Value any    `json:"value" yaml:"value"`
}

// Effect is a tagged description of one state operation. Which fields are
// meaningful depends on Type; the schema package knows the catalog. Fields
// holding references (Path segments, Value, Fn, Args, From, To, Predicate,
// Binding values) are resolved by the ref package at apply time.
//
// Payload carries the fields of a custom-tagged effect verbatim; built-in
// handlers ignore it.
type Effect struct {
	Type EffectType `json:"type" yaml:"type"`

	Path  []any `json:"path,omitempty" yaml:"path,omitempty"`
	Value any   `json:"value,omitempty" yaml:"value,omitempty"`

	Fn   any   `json:"fn,omitempty" yaml:"fn,omitempty"`
	Args []any `json:"args,omitempty" yaml:"args,omitempty"`

	Predicate any   `json:"predicate,omitempty" yaml:"predicate,omitempty"`
	From      []any `json:"from,omitempty" yaml:"from,omitempty"`
	To        []any `json:"to,omitempty" yaml:"to,omitempty"`

	Effects   []Effect      `json:"effects,omitempty" yaml:"effects,omitempty"`
	OnFailure FailurePolicy `json:"on_failure,omitempty" yaml:"on_failure,omitempty"`

	Bindings []Binding `json:"bindings,omitempty" yaml:"bindings,omitempty"`
	Body     *Effect   `json:"body,omitempty" yaml:"body,omitempty"`

	Condition  *Condition     `json:"condition,omitempty" yaml:"condition,omitempty"`
	Then       *Effect        `json:"then,omitempty" yaml:"then,omitempty"`
	Else       *Effect        `json:"else,omitempty" yaml:"else,omitempty"`
	OnResidual ResidualPolicy `json:"on_residual,omitempty" yaml:"on_residual,omitempty"`

	Payload map[string]any `json:"payload,omitempty" yaml:"payload,omitempty"`
}

// Error kinds reported through FailedEffect. Expected domain failures are
// returned as data, never panicked or thrown.
const (
	ErrInvalidEffect       = "invalid-effect"
	ErrUnknownEffectType   = "unknown-effect-type"
	ErrUnknownFunction     = "unknown-function"
	ErrSpeculationConflict = "speculation-conflict"
	ErrInvalidPath         = "invalid-path"
	ErrInvalidCondition    = "invalid-condition"
	ErrUpdateFailed        = "update-failed"
	ErrNotACollection      = "not-a-collection"
	ErrNotAMap             = "not-a-map"
)

// AppliedEffect records one successfully applied effect. ConditionResidual
// is set when a proceed or speculate conditional fired on unknown data;
// Speculative marks entries whose enclosing transaction may still retract
// them.
type AppliedEffect struct {
	Effect               Effect     `json:"effect"`
	ConditionResidual    []string   `json:"condition_residual,omitempty"`
	Speculative          bool       `json:"speculative,omitempty"`
	SpeculationCondition *Condition `json:"speculation_condition,omitempty"`
}

// FailedEffect records one failed effect as data. Error is one of the kind
// constants above or a handler-specific kind; Detail is human-readable.
type FailedEffect struct {
	Effect Effect `json:"effect"`
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

// PendingEffect reports a deferred conditional: no mutation happened and
// the caller may retry once the residual paths exist.
type PendingEffect struct {
	Type     string   `json:"type"` // always "deferred"
	Effect   Effect   `json:"effect"`
	Residual []string `json:"residual,omitempty"`
}

// SpeculativeCondition records an assumption a speculate conditional
// proceeded under, together with the variable bindings in scope at the
// time, so the enclosing transaction can re-evaluate it later.
type SpeculativeCondition struct {
	Condition Condition      `json:"condition"`
	Bound     map[string]any `json:"bound,omitempty"`
}

// ApplyResult is the outcome of interpreting one effect tree. State is the
// resulting document (the original value on no-op or failure); the input
// document is never mutated.
type ApplyResult struct {
	State       Document               `json:"state"`
	Applied     []AppliedEffect        `json:"applied"`
	Failed      []FailedEffect         `json:"failed"`
	Pending     *PendingEffect         `json:"pending,omitempty"`
	Speculative []SpeculativeCondition `json:"speculative_conditions,omitempty"`
}

// Failure builds a single-failure result that leaves state untouched.
func Failure(state Document, eff Effect, kind, detail string) ApplyResult {
	return ApplyResult{
		State:  state,
		Failed: []FailedEffect{{Effect: eff, Error: kind, Detail: detail}},
	}
}

// Applied builds a single-entry success result.
func Applied(state Document, eff Effect) ApplyResult {
	return ApplyResult{
		State:   state,
		Applied: []AppliedEffect{{Effect: eff}},
	}
}
