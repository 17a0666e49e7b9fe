package diff

// FieldDelta records one property's value on each side of a comparison.
// The field names are part of the output contract.
type FieldDelta struct {
	A any `json:"A"`
	B any `json:"B"`
}

// Result is the full delta between two snapshots. Added and Removed map
// category → name → payload, where the payload is an empty object unless
// payload retention was requested. Changed maps category → name → property
// path → field delta.
//
// All three maps are always non-nil so an empty result marshals as
// {"added":{},"removed":{},"changed":{}}.
type Result struct {
	Added   map[string]map[string]map[string]any        `json:"added"`
	Removed map[string]map[string]map[string]any        `json:"removed"`
	Changed map[string]map[string]map[string]FieldDelta `json:"changed"`
}

// NewResult returns an empty Result with all groupings allocated.
func NewResult() *Result {
	return &Result{
		Added:   make(map[string]map[string]map[string]any),
		Removed: make(map[string]map[string]map[string]any),
		Changed: make(map[string]map[string]map[string]FieldDelta),
	}
}

// Empty reports whether the result records no differences at all.
func (r *Result) Empty() bool {
	return len(r.Added) == 0 && len(r.Removed) == 0 && len(r.Changed) == 0
}

// ErrorResult is the structured payload emitted when a run hits its single
// fatal condition instead of producing a Result.
type ErrorResult struct {
	Error string `json:"error"`
	Stage string `json:"stage"`
}
