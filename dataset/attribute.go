// Package dataset implements the typed tabular dataset model: column
// descriptors (Attribute), row schemas (Schema), dense numeric rows
// (Instance) and named row collections (Dataset). All cell values are
// float64; nominal values are stored as the index into the attribute's
// value list, and NaN is the missing-value sentinel.
package dataset

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

// Kind is the type of an attribute.
type Kind int

const (
	// Numeric attributes hold floating-point values.
	Numeric Kind = iota
	// Nominal attributes hold an index into a fixed value list.
	Nominal
)

// Ordering describes how the values of an attribute relate to each other.
type Ordering int

const (
	// OrderingSymbolic values are plain symbols with no order.
	OrderingSymbolic Ordering = iota
	// OrderingOrdered values have a global ordering.
	OrderingOrdered
	// OrderingModulo values have an ordering which wraps around.
	OrderingModulo
)

// Schema construction and attribute metadata failures.
var (
	ErrDuplicateValue  = errors.New("nominal attribute cannot have duplicate values")
	ErrDuplicateName   = errors.New("attribute names must be unique")
	ErrInvalidMetadata = errors.New("inconsistent attribute metadata")
	ErrBadRange        = errors.New("malformed numeric range")
	ErrClassIndex      = errors.New("class index out of range")
	ErrValueCount      = errors.New("instance value count does not match schema")
)

// Attribute is an immutable column descriptor. Once an attribute has been
// published into a Schema it is never mutated in place; every change
// produces a fresh Attribute so rows referencing the old one stay valid.
type Attribute struct {
	name    string
	kind    Kind
	values  []string
	valueIx map[string]int
	index   int

	ordering   Ordering
	regular    bool
	averagable bool
	zeropoint  bool
	weight     float64

	lower, upper         float64
	lowerOpen, upperOpen bool
}

// NewNumeric returns a numeric attribute with default metadata
// (ordered, averagable, zero-pointed, weight 1, range (-inf,inf)).
func NewNumeric(name string) *Attribute {
	a, _ := NewNumericMeta(name, nil)
	return a
}

// NewNumericMeta returns a numeric attribute with the given metadata
// properties. Recognised keys: ordering, averageable, zeropoint, regular,
// weight and range.
func NewNumericMeta(name string, props map[string]string) (*Attribute, error) {
	a := &Attribute{name: name, kind: Numeric, index: -1}
	if err := a.setMetadata(props); err != nil {
		return nil, err
	}
	return a, nil
}

// NewNominal returns a nominal attribute over the given ordered value list.
func NewNominal(name string, values []string) (*Attribute, error) {
	return NewNominalMeta(name, values, nil)
}

// NewNominalMeta returns a nominal attribute with the given metadata
// properties. The value list must contain no duplicates.
func NewNominalMeta(name string, values []string, props map[string]string) (*Attribute, error) {
	a := &Attribute{
		name:    name,
		kind:    Nominal,
		values:  append([]string(nil), values...),
		valueIx: make(map[string]int, len(values)),
		index:   -1,
	}
	for i, v := range values {
		if _, dup := a.valueIx[v]; dup {
			return nil, errors.Wrapf(ErrDuplicateValue, "attribute %q value %q", name, v)
		}
		a.valueIx[v] = i
	}
	if err := a.setMetadata(props); err != nil {
		return nil, err
	}
	return a, nil
}

// Name returns the attribute's name.
func (a *Attribute) Name() string { return a.name }

// Kind returns the attribute's kind.
func (a *Attribute) Kind() Kind { return a.kind }

// IsNumeric reports whether the attribute is numeric.
func (a *Attribute) IsNumeric() bool { return a.kind == Numeric }

// IsNominal reports whether the attribute is nominal.
func (a *Attribute) IsNominal() bool { return a.kind == Nominal }

// Index returns the attribute's position in its owning schema, -1 if the
// attribute has not been published yet.
func (a *Attribute) Index() int { return a.index }

// NumValues returns the number of nominal values, 0 for numeric attributes.
func (a *Attribute) NumValues() int { return len(a.values) }

// Value returns the i-th nominal value, "" for numeric attributes.
func (a *Attribute) Value(i int) string {
	if !a.IsNominal() {
		return ""
	}
	return a.values[i]
}

// IndexOfValue returns the index of the given nominal value, or -1 if the
// value is not declared or the attribute is numeric.
func (a *Attribute) IndexOfValue(v string) int {
	if !a.IsNominal() {
		return -1
	}
	i, ok := a.valueIx[v]
	if !ok {
		return -1
	}
	return i
}

// Ordering returns the value ordering of the attribute.
func (a *Attribute) Ordering() Ordering { return a.ordering }

// IsRegular reports whether the attribute values are equally spaced.
func (a *Attribute) IsRegular() bool { return a.regular }

// IsAveragable reports whether the attribute can be averaged meaningfully.
func (a *Attribute) IsAveragable() bool { return a.averagable }

// HasZeropoint reports whether the attribute has a zero point and may be
// added meaningfully.
func (a *Attribute) HasZeropoint() bool { return a.zeropoint }

// Weight returns the attribute's weight.
func (a *Attribute) Weight() float64 { return a.weight }

// LowerBound returns the lower numeric bound and whether it is open.
func (a *Attribute) LowerBound() (float64, bool) { return a.lower, a.lowerOpen }

// UpperBound returns the upper numeric bound and whether it is open.
func (a *Attribute) UpperBound() (float64, bool) { return a.upper, a.upperOpen }

// clone returns a field-by-field copy sharing the value list and index map.
func (a *Attribute) clone() *Attribute {
	c := *a
	return &c
}

// WithName returns a copy of the attribute under a new name, sharing the
// value list. Name uniqueness is enforced by the owning schema, not here.
func (a *Attribute) WithName(name string) *Attribute {
	c := a.clone()
	c.name = name
	return c
}

// WithValue returns a copy of a nominal attribute with the i-th value
// renamed. The value list is cloned; the original attribute is untouched.
func (a *Attribute) WithValue(i int, v string) (*Attribute, error) {
	if !a.IsNominal() {
		return nil, errors.Errorf("attribute %q is not nominal", a.name)
	}
	if j, ok := a.valueIx[v]; ok && j != i {
		return nil, errors.Wrapf(ErrDuplicateValue, "attribute %q value %q", a.name, v)
	}
	c := a.clone()
	c.values = append([]string(nil), a.values...)
	c.valueIx = make(map[string]int, len(a.values))
	c.values[i] = v
	for k, s := range c.values {
		c.valueIx[s] = k
	}
	return c, nil
}

// AddValue returns a copy of a nominal attribute with one more value
// appended to a cloned value list.
func (a *Attribute) AddValue(v string) (*Attribute, error) {
	if !a.IsNominal() {
		return nil, errors.Errorf("attribute %q is not nominal", a.name)
	}
	if _, dup := a.valueIx[v]; dup {
		return nil, errors.Wrapf(ErrDuplicateValue, "attribute %q value %q", a.name, v)
	}
	c := a.clone()
	c.values = append(append([]string(nil), a.values...), v)
	c.valueIx = make(map[string]int, len(c.values))
	for k, s := range c.values {
		c.valueIx[s] = k
	}
	return c, nil
}

func metaProp(props map[string]string, key, dflt string) string {
	if props == nil {
		return dflt
	}
	if v, ok := props[key]; ok {
		return v
	}
	return dflt
}

// setMetadata applies the property defaulting and implication rules.
// A numeric attribute defaults to ordered, averagable and zero-pointed
// unless its declared ordering is modulo or symbolic; averagable or
// zero-pointed implies regular; symbolic excludes regular.
func (a *Attribute) setMetadata(props map[string]string) error {
	orderString := metaProp(props, "ordering", "")

	def := "false"
	if a.kind == Numeric && orderString != "modulo" && orderString != "symbolic" {
		def = "true"
	}
	a.averagable = metaProp(props, "averageable", def) == "true"
	a.zeropoint = metaProp(props, "zeropoint", def) == "true"
	if a.averagable || a.zeropoint {
		def = "true"
	}
	a.regular = metaProp(props, "regular", def) == "true"

	switch orderString {
	case "symbolic":
		a.ordering = OrderingSymbolic
	case "ordered":
		a.ordering = OrderingOrdered
	case "modulo":
		a.ordering = OrderingModulo
	default:
		if a.kind == Numeric || a.averagable || a.zeropoint {
			a.ordering = OrderingOrdered
		} else {
			a.ordering = OrderingSymbolic
		}
	}

	if a.averagable && !a.regular {
		return errors.Wrapf(ErrInvalidMetadata, "attribute %q: an averagable attribute must be regular", a.name)
	}
	if a.zeropoint && !a.regular {
		return errors.Wrapf(ErrInvalidMetadata, "attribute %q: a zeropoint attribute must be regular", a.name)
	}
	if a.regular && a.ordering == OrderingSymbolic {
		return errors.Wrapf(ErrInvalidMetadata, "attribute %q: a symbolic attribute cannot be regular", a.name)
	}
	if a.averagable && a.ordering != OrderingOrdered {
		return errors.Wrapf(ErrInvalidMetadata, "attribute %q: an averagable attribute must be ordered", a.name)
	}
	if a.zeropoint && a.ordering != OrderingOrdered {
		return errors.Wrapf(ErrInvalidMetadata, "attribute %q: a zeropoint attribute must be ordered", a.name)
	}

	a.weight = 1
	if ws := metaProp(props, "weight", ""); ws != "" {
		w, err := strconv.ParseFloat(ws, 64)
		if err != nil {
			return errors.Wrapf(ErrInvalidMetadata, "attribute %q: weight %q", a.name, ws)
		}
		a.weight = w
	}

	if a.kind == Numeric {
		return a.setNumericRange(metaProp(props, "range", ""))
	}
	return nil
}

// setNumericRange parses the range grammar ('['|'(') bound ',' bound
// (']'|')') with bound one of -inf, inf, +inf or a decimal. An empty string
// leaves the default [-inf,inf].
func (a *Attribute) setNumericRange(s string) error {
	a.lower = negInf
	a.upper = posInf
	a.lowerOpen, a.upperOpen = false, false
	if s == "" {
		return nil
	}

	body := strings.TrimSpace(s)
	if len(body) < 2 {
		return errors.Wrapf(ErrBadRange, "attribute %q: %q", a.name, s)
	}
	switch body[0] {
	case '[':
		a.lowerOpen = false
	case '(':
		a.lowerOpen = true
	default:
		return errors.Wrapf(ErrBadRange, "attribute %q: expected opening brace in %q", a.name, s)
	}
	switch body[len(body)-1] {
	case ']':
		a.upperOpen = false
	case ')':
		a.upperOpen = true
	default:
		return errors.Wrapf(ErrBadRange, "attribute %q: expected closing brace in %q", a.name, s)
	}

	bounds := strings.Split(body[1:len(body)-1], ",")
	if len(bounds) != 2 {
		return errors.Wrapf(ErrBadRange, "attribute %q: expected two bounds in %q", a.name, s)
	}
	var err error
	if a.lower, err = parseBound(bounds[0], true); err != nil {
		return errors.Wrapf(ErrBadRange, "attribute %q: lower bound in %q", a.name, s)
	}
	if a.upper, err = parseBound(bounds[1], false); err != nil {
		return errors.Wrapf(ErrBadRange, "attribute %q: upper bound in %q", a.name, s)
	}
	if a.upper < a.lower {
		return errors.Wrapf(ErrBadRange, "attribute %q: upper bound %v below lower bound %v", a.name, a.upper, a.lower)
	}
	return nil
}

// parseBound resolves one range bound. A bare "inf" means -inf on the lower
// side and +inf on the upper side.
func parseBound(s string, lower bool) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "-inf":
		return negInf, nil
	case "+inf":
		return posInf, nil
	case "inf":
		if lower {
			return negInf, nil
		}
		return posInf, nil
	}
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}
