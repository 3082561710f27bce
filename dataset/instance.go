package dataset

import (
	"math"
)

var (
	negInf = math.Inf(-1)
	posInf = math.Inf(1)
)

// Missing returns the float64 sentinel that codes a missing value.
func Missing() float64 { return math.NaN() }

// Instance is one row: a dense float64 vector plus a weight, bound to the
// schema of the dataset it belongs to (nil until bound). Nominal values are
// stored as the value index widened to float64; NaN codes missing.
//
// Mutation is copy-on-write: SetValue clones the value array before
// writing, so shallow copies may share one array until either is mutated.
type Instance struct {
	values []float64
	weight float64
	schema *Schema
}

// NewInstance returns an unbound instance with n values, all missing, and
// weight 1.
func NewInstance(n int) *Instance {
	values := make([]float64, n)
	for i := range values {
		values[i] = math.NaN()
	}
	return &Instance{values: values, weight: 1}
}

// NewInstanceValues returns an unbound instance adopting the given value
// array.
func NewInstanceValues(weight float64, values []float64) *Instance {
	return &Instance{values: values, weight: weight}
}

// Schema returns the schema the instance is bound to, nil if unbound.
func (in *Instance) Schema() *Schema { return in.schema }

// Bind points the instance at a schema. It does not check compatibility and
// the schema does not know about the instance.
func (in *Instance) Bind(s *Schema) { in.schema = s }

// NumValues returns the length of the value vector.
func (in *Instance) NumValues() int { return len(in.values) }

// Value returns the i-th value in internal floating-point format.
func (in *Instance) Value(i int) float64 { return in.values[i] }

// IsMissing reports whether the i-th value is missing.
func (in *Instance) IsMissing(i int) bool { return math.IsNaN(in.values[i]) }

// SetValue sets the i-th value. The value array is cloned first so other
// instances sharing it are unaffected.
func (in *Instance) SetValue(i int, v float64) {
	in.values = in.ToFloat64s()
	in.values[i] = v
}

// Weight returns the instance's weight.
func (in *Instance) Weight() float64 { return in.weight }

// SetWeight sets the instance's weight.
func (in *Instance) SetWeight(w float64) { in.weight = w }

// Copy returns a shallow copy bound to the same schema. The value array is
// shared until either copy is mutated.
func (in *Instance) Copy() *Instance {
	return &Instance{values: in.values, weight: in.weight, schema: in.schema}
}

// ToFloat64s returns a fresh copy of the value vector, never the live
// buffer.
func (in *Instance) ToFloat64s() []float64 {
	out := make([]float64, len(in.values))
	copy(out, in.values)
	return out
}

// ClassValue returns the value of the class attribute, NaN if the bound
// schema has no class designation or the instance is unbound.
func (in *Instance) ClassValue() float64 {
	if in.schema == nil || in.schema.ClassIndex() == NoClass {
		return math.NaN()
	}
	return in.values[in.schema.ClassIndex()]
}
