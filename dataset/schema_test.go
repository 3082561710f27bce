package dataset

import (
	"testing"

	"github.com/pkg/errors"
	"gotest.tools/assert"
)

func testSchema(t *testing.T) *Schema {
	t.Helper()
	cls, err := NewNominal("cls", []string{"yes", "no"})
	assert.NilError(t, err)
	s, err := NewSchema([]*Attribute{NewNumeric("a"), NewNumeric("b"), cls})
	assert.NilError(t, err)
	return s
}

func TestSchemaIndices(t *testing.T) {
	s := testSchema(t)
	assert.Equal(t, s.NumAttributes(), 3)
	for i := 0; i < s.NumAttributes(); i++ {
		assert.Equal(t, s.Attribute(i).Index(), i)
	}
	assert.Equal(t, s.AttributeByName("b").Index(), 1)
	assert.Assert(t, s.AttributeByName("nope") == nil)
	assert.Equal(t, s.ClassIndex(), NoClass)
}

func TestSchemaDuplicateNames(t *testing.T) {
	_, err := NewSchema([]*Attribute{NewNumeric("a"), NewNumeric("a")})
	assert.Equal(t, errors.Cause(err), ErrDuplicateName)
}

func TestWithClassIndex(t *testing.T) {
	s := testSchema(t)
	c, err := s.WithClassIndex(2)
	assert.NilError(t, err)
	assert.Equal(t, c.ClassIndex(), 2)
	assert.Equal(t, c.ClassAttribute().Name(), "cls")
	assert.Equal(t, c.NumClasses(), 2)

	// the original schema is untouched
	assert.Equal(t, s.ClassIndex(), NoClass)
	assert.Equal(t, s.NumClasses(), 1)

	_, err = s.WithClassIndex(3)
	assert.Equal(t, errors.Cause(err), ErrClassIndex)

	c, err = c.WithClassIndex(NoClass)
	assert.NilError(t, err)
	assert.Equal(t, c.ClassIndex(), NoClass)
}

func TestNumClassesNumeric(t *testing.T) {
	s := testSchema(t)
	c, err := s.WithClassIndex(0)
	assert.NilError(t, err)
	assert.Equal(t, c.NumClasses(), 1)
}

func TestRenameAttribute(t *testing.T) {
	s := testSchema(t)
	c, err := s.RenameAttribute(0, "alpha")
	assert.NilError(t, err)
	assert.Equal(t, c.Attribute(0).Name(), "alpha")
	assert.Equal(t, c.AttributeByName("alpha").Index(), 0)
	assert.Assert(t, c.AttributeByName("a") == nil)
	assert.Equal(t, s.Attribute(0).Name(), "a")

	_, err = s.RenameAttribute(0, "b")
	assert.Equal(t, errors.Cause(err), ErrDuplicateName)
}

func TestRenameValue(t *testing.T) {
	s := testSchema(t)
	c, err := s.RenameValue(2, 0, "maybe")
	assert.NilError(t, err)
	assert.Equal(t, c.Attribute(2).Value(0), "maybe")
	assert.Equal(t, s.Attribute(2).Value(0), "yes")

	_, err = s.RenameValue(2, 0, "no")
	assert.Equal(t, errors.Cause(err), ErrDuplicateValue)
}

func TestEqualHeaders(t *testing.T) {
	a := testSchema(t)
	b := testSchema(t)
	assert.Assert(t, a.EqualHeaders(b))

	c, err := b.WithClassIndex(2)
	assert.NilError(t, err)
	assert.Assert(t, !a.EqualHeaders(c))

	d, err := b.RenameAttribute(1, "other")
	assert.NilError(t, err)
	assert.Assert(t, !a.EqualHeaders(d))

	e, err := b.RenameValue(2, 1, "never")
	assert.NilError(t, err)
	assert.Assert(t, !a.EqualHeaders(e))

	assert.Assert(t, !a.EqualHeaders(nil))
}
