package dataset

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// Dataset is a named, ordered collection of instances sharing one schema.
// The dataset owns its schema; rows hold a back-reference to it without
// owning it. Adding a row deep-copies the value array and rebinds the copy,
// so callers keep ownership of what they pass in.
type Dataset struct {
	name   string
	schema *Schema
	rows   []*Instance
}

// New returns an empty dataset over the given schema with room for
// capacity rows.
func New(name string, schema *Schema, capacity int) *Dataset {
	if capacity < 0 {
		capacity = 0
	}
	return &Dataset{name: name, schema: schema, rows: make([]*Instance, 0, capacity)}
}

// Name returns the dataset's relation name.
func (d *Dataset) Name() string { return d.name }

// SetName sets the dataset's relation name.
func (d *Dataset) SetName(name string) { d.name = name }

// Schema returns the dataset's schema.
func (d *Dataset) Schema() *Schema { return d.schema }

// NumRows returns the number of rows.
func (d *Dataset) NumRows() int { return len(d.rows) }

// Row returns the i-th row.
func (d *Dataset) Row(i int) *Instance { return d.rows[i] }

// Add appends a deep copy of the instance, rebound to the dataset's schema.
// The value-array length must match the schema. Nominal value tables are
// not translated from a foreign schema; that is an explicit copy step the
// caller owns.
func (d *Dataset) Add(in *Instance) error {
	if in.NumValues() != d.schema.NumAttributes() {
		return errors.Wrapf(ErrValueCount, "%d values for %d attributes", in.NumValues(), d.schema.NumAttributes())
	}
	c := &Instance{values: in.ToFloat64s(), weight: in.weight, schema: d.schema}
	d.rows = append(d.rows, c)
	return nil
}

// Delete removes the i-th row.
func (d *Dataset) Delete(i int) {
	d.rows = append(d.rows[:i], d.rows[i+1:]...)
}

// DeleteWithMissing removes every row whose value for attribute att is
// missing.
func (d *Dataset) DeleteWithMissing(att int) {
	kept := d.rows[:0]
	for _, r := range d.rows {
		if !r.IsMissing(att) {
			kept = append(kept, r)
		}
	}
	d.rows = kept
}

// Compactify trims the row slice capacity down to its length. Useful after
// incremental reads that over-reserved.
func (d *Dataset) Compactify() {
	if cap(d.rows) > len(d.rows) {
		rows := make([]*Instance, len(d.rows))
		copy(rows, d.rows)
		d.rows = rows
	}
}

// SetClassIndex republishes the schema with the class attribute set to i
// and rebinds every row to the new schema.
func (d *Dataset) SetClassIndex(i int) error {
	s, err := d.schema.WithClassIndex(i)
	if err != nil {
		return err
	}
	d.rebind(s)
	return nil
}

// RenameAttribute republishes the schema with attribute i renamed and
// rebinds every row.
func (d *Dataset) RenameAttribute(i int, name string) error {
	s, err := d.schema.RenameAttribute(i, name)
	if err != nil {
		return err
	}
	d.rebind(s)
	return nil
}

// RenameValue republishes the schema with one nominal value renamed and
// rebinds every row. Stored value indices are unaffected.
func (d *Dataset) RenameValue(att, val int, name string) error {
	s, err := d.schema.RenameValue(att, val, name)
	if err != nil {
		return err
	}
	d.rebind(s)
	return nil
}

func (d *Dataset) rebind(s *Schema) {
	d.schema = s
	for _, r := range d.rows {
		r.schema = s
	}
}

// SumOfWeights returns the sum of all row weights.
func (d *Dataset) SumOfWeights() float64 {
	ws := make([]float64, len(d.rows))
	for i, r := range d.rows {
		ws[i] = r.weight
	}
	return floats.Sum(ws)
}

// AttributeToFloat64s returns all values of attribute att as a fresh slice,
// one entry per row.
func (d *Dataset) AttributeToFloat64s(att int) []float64 {
	out := make([]float64, len(d.rows))
	for i, r := range d.rows {
		out[i] = r.values[att]
	}
	return out
}

// MeanOrMode returns the weighted mean of a numeric attribute or the index
// of the most frequent value of a nominal attribute, ignoring missing
// values. Returns 0 when no values are present.
func (d *Dataset) MeanOrMode(att int) float64 {
	a := d.schema.Attribute(att)
	if a.IsNominal() {
		counts := make([]float64, a.NumValues())
		for _, r := range d.rows {
			if r.IsMissing(att) {
				continue
			}
			counts[int(r.values[att])] += r.weight
		}
		if len(counts) == 0 {
			return 0
		}
		return float64(floats.MaxIdx(counts))
	}
	var sum, weights float64
	for _, r := range d.rows {
		if r.IsMissing(att) {
			continue
		}
		sum += r.values[att] * r.weight
		weights += r.weight
	}
	if weights == 0 {
		return 0
	}
	return sum / weights
}

// ClassCounts returns the per-class sum of row weights. The class attribute
// must be nominal. Rows with a missing class are skipped.
func (d *Dataset) ClassCounts() ([]float64, error) {
	ca := d.schema.ClassAttribute()
	if ca == nil || !ca.IsNominal() {
		return nil, errors.Wrap(ErrClassIndex, "class counts need a nominal class attribute")
	}
	counts := make([]float64, ca.NumValues())
	for _, r := range d.rows {
		v := r.ClassValue()
		if math.IsNaN(v) {
			continue
		}
		counts[int(v)] += r.weight
	}
	return counts, nil
}
