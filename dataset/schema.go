package dataset

import (
	"github.com/pkg/errors"
)

// NoClass marks a schema without a designated class attribute.
const NoClass = -1

// Schema is an ordered, named set of attributes shared by all rows of a
// dataset, plus an optional class attribute index. A schema is built once;
// structural changes return a new Schema and leave already-bound instances
// pointing at the old one until they are explicitly rebound.
type Schema struct {
	attrs      []*Attribute
	byName     map[string]int
	classIndex int
}

// NewSchema builds a schema from the given attributes. Each attribute is
// republished with its index set to its position; names must be unique.
func NewSchema(attrs []*Attribute) (*Schema, error) {
	s := &Schema{
		attrs:      make([]*Attribute, len(attrs)),
		byName:     make(map[string]int, len(attrs)),
		classIndex: NoClass,
	}
	for i, a := range attrs {
		if _, dup := s.byName[a.name]; dup {
			return nil, errors.Wrapf(ErrDuplicateName, "attribute %q", a.name)
		}
		c := a.clone()
		c.index = i
		s.attrs[i] = c
		s.byName[c.name] = i
	}
	return s, nil
}

// NumAttributes returns the number of attributes.
func (s *Schema) NumAttributes() int { return len(s.attrs) }

// Attribute returns the attribute at position i.
func (s *Schema) Attribute(i int) *Attribute { return s.attrs[i] }

// AttributeByName returns the attribute with the given name, nil if absent.
func (s *Schema) AttributeByName(name string) *Attribute {
	i, ok := s.byName[name]
	if !ok {
		return nil
	}
	return s.attrs[i]
}

// ClassIndex returns the class attribute index, NoClass if none is set.
func (s *Schema) ClassIndex() int { return s.classIndex }

// ClassAttribute returns the class attribute, nil if none is set.
func (s *Schema) ClassAttribute() *Attribute {
	if s.classIndex == NoClass {
		return nil
	}
	return s.attrs[s.classIndex]
}

// NumClasses returns the number of class values: the class attribute's
// value count, or 1 when the class attribute is numeric.
func (s *Schema) NumClasses() int {
	ca := s.ClassAttribute()
	if ca == nil || !ca.IsNominal() {
		return 1
	}
	return ca.NumValues()
}

// shallow returns a copy of the schema sharing the attribute slice entries.
func (s *Schema) shallow() *Schema {
	c := &Schema{
		attrs:      append([]*Attribute(nil), s.attrs...),
		byName:     make(map[string]int, len(s.attrs)),
		classIndex: s.classIndex,
	}
	for name, i := range s.byName {
		c.byName[name] = i
	}
	return c
}

// WithClassIndex returns a new schema with the class attribute set to i.
// NoClass clears the designation.
func (s *Schema) WithClassIndex(i int) (*Schema, error) {
	if i != NoClass && (i < 0 || i >= len(s.attrs)) {
		return nil, errors.Wrapf(ErrClassIndex, "index %d of %d attributes", i, len(s.attrs))
	}
	c := s.shallow()
	c.classIndex = i
	return c, nil
}

// RenameAttribute returns a new schema with attribute i renamed. The
// attribute itself is republished copy-on-write; the old schema and its
// attributes are untouched.
func (s *Schema) RenameAttribute(i int, name string) (*Schema, error) {
	if j, dup := s.byName[name]; dup && j != i {
		return nil, errors.Wrapf(ErrDuplicateName, "attribute %q", name)
	}
	c := s.shallow()
	delete(c.byName, c.attrs[i].name)
	c.attrs[i] = c.attrs[i].WithName(name)
	c.byName[name] = i
	return c, nil
}

// RenameValue returns a new schema with value val of nominal attribute att
// renamed.
func (s *Schema) RenameValue(att, val int, name string) (*Schema, error) {
	a, err := s.attrs[att].WithValue(val, name)
	if err != nil {
		return nil, err
	}
	c := s.shallow()
	c.attrs[att] = a
	return c, nil
}

// EqualHeaders reports whether two schemas declare the same attributes in
// the same order with the same class designation.
func (s *Schema) EqualHeaders(o *Schema) bool {
	if o == nil || len(s.attrs) != len(o.attrs) || s.classIndex != o.classIndex {
		return false
	}
	for i, a := range s.attrs {
		b := o.attrs[i]
		if a.name != b.name || a.kind != b.kind || len(a.values) != len(b.values) {
			return false
		}
		for j, v := range a.values {
			if b.values[j] != v {
				return false
			}
		}
	}
	return true
}
