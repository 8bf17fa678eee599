package stateffect

// Condition is a boolean-like expression evaluated against the current
// state document. Evaluation is three-valued: see the eval package.
//
// Exactly one form should be populated:
//
//   - comparison: Op + Path (+ Value), e.g. {Op: ">", Path: "doc.health",
//     Value: 0}. Path is either a dotted string (the leading "doc"
//     namespace refers to the document root, and gjson query syntax is
//     accepted) or a structured segment slice. Value may be a reference.
//   - expression: Expr, an expr-lang boolean expression over document
//     fields, e.g. `health > 5 && status == "active"`.
//   - composite: All, Any, or Not.
type Condition struct {
	Op    string `json:"op,omitempty" yaml:"op,omitempty"`
	Path  any    `json:"path,omitempty" yaml:"path,omitempty"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty"`

	Expr string `json:"expr,omitempty" yaml:"expr,omitempty"`

	All []Condition `json:"all,omitempty" yaml:"all,omitempty"`
	Any []Condition `json:"any,omitempty" yaml:"any,omitempty"`
	Not *Condition  `json:"not,omitempty" yaml:"not,omitempty"`
}

// Compare builds a comparison condition.
func Compare(op string, path any, value any) *Condition {
	return &Condition{Op: op, Path: path, Value: value}
}
