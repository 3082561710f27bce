package arff

import (
	"io"
	"strings"
	"testing"

	"gotest.tools/assert"

	"github.com/neurlang/perceptron/dataset"
)

const sampleHeader = `% weather-ish toy data
@relation test

@attribute a numeric
@attribute cls {yes,no}

@data
`

func parse(t *testing.T, text string) *dataset.Dataset {
	t.Helper()
	r, err := NewReader(strings.NewReader(text))
	assert.NilError(t, err)
	return r.Data()
}

func TestParseBasic(t *testing.T) {
	d := parse(t, sampleHeader+"1.5,yes\n?,no\n")

	assert.Equal(t, d.Name(), "test")
	s := d.Schema()
	assert.Equal(t, s.NumAttributes(), 2)
	assert.Equal(t, s.Attribute(0).Name(), "a")
	assert.Assert(t, s.Attribute(0).IsNumeric())
	assert.Equal(t, s.Attribute(0).Index(), 0)
	assert.Equal(t, s.Attribute(1).Name(), "cls")
	assert.Assert(t, s.Attribute(1).IsNominal())
	assert.Equal(t, s.Attribute(1).Index(), 1)
	assert.Equal(t, s.ClassIndex(), dataset.NoClass)

	assert.Equal(t, d.NumRows(), 2)
	assert.Equal(t, d.Row(0).Value(0), 1.5)
	assert.Equal(t, d.Row(0).Value(1), 0.0)
	assert.Assert(t, d.Row(1).IsMissing(0))
	assert.Equal(t, d.Row(1).Value(1), 1.0)
}

func TestParseComments(t *testing.T) {
	d := parse(t, sampleHeader+"% leading comment\n1.5,yes % trailing comment\n")
	assert.Equal(t, d.NumRows(), 1)
	assert.Equal(t, d.Row(0).Value(0), 1.5)
	assert.Equal(t, d.Row(0).Weight(), 1.0)
}

func TestParseQuotedValues(t *testing.T) {
	text := "@relation 'my relation'\n" +
		"@attribute desc {'hello world',plain}\n" +
		"@data\n" +
		"'hello world'\n" +
		"\"plain\"\n"
	d := parse(t, text)
	assert.Equal(t, d.Name(), "my relation")
	assert.Equal(t, d.Schema().Attribute(0).Value(0), "hello world")
	assert.Equal(t, d.Row(0).Value(0), 0.0)
	assert.Equal(t, d.Row(1).Value(0), 1.0)
}

func TestParseLastRowWithoutNewline(t *testing.T) {
	d := parse(t, sampleHeader+"1.5,yes\n2.5,no")
	assert.Equal(t, d.NumRows(), 2)
	assert.Equal(t, d.Row(1).Value(0), 2.5)
}

func TestParseWeights(t *testing.T) {
	d := parse(t, sampleHeader+"1.5,yes,{2}\n1.5,yes,{0.5}\n1.5,yes\n")
	assert.Equal(t, d.Row(0).Weight(), 2.0)
	assert.Equal(t, d.Row(1).Weight(), 0.5)
	assert.Equal(t, d.Row(2).Weight(), 1.0)
}

func TestParseUnparsableWeightFallsBack(t *testing.T) {
	d := parse(t, sampleHeader+"1.5,yes,{oops}\n2.5,no\n")
	assert.Equal(t, d.NumRows(), 2)
	assert.Equal(t, d.Row(0).Weight(), 1.0)
	assert.Equal(t, d.Row(1).Value(0), 2.5)
}

func TestParseNumericMetadata(t *testing.T) {
	text := "@relation r\n" +
		"@attribute x numeric weight=2.5 ordering=modulo\n" +
		"@data\n" +
		"1\n"
	d := parse(t, text)
	a := d.Schema().Attribute(0)
	assert.Equal(t, a.Weight(), 2.5)
	assert.Equal(t, a.Ordering(), dataset.OrderingModulo)
}

func TestParseQuotedRangeMetadata(t *testing.T) {
	// the range value contains a comma, so the whole property must be quoted
	text := "@relation r\n" +
		"@attribute x numeric 'range=[0,1]'\n" +
		"@data\n" +
		"0.5\n"
	d := parse(t, text)
	a := d.Schema().Attribute(0)
	lo, loOpen := a.LowerBound()
	hi, hiOpen := a.UpperBound()
	assert.Equal(t, lo, 0.0)
	assert.Equal(t, hi, 1.0)
	assert.Assert(t, !loOpen && !hiOpen)
}

func TestQuotedValueSpanningLines(t *testing.T) {
	// an escaped newline keeps the quoted value open across a physical line;
	// later error positions must account for it
	text := "@relation 'multi\\\nline'\n" +
		"@attribute a numeric\n" +
		"@data\n" +
		"bogus\n"
	_, err := NewReader(strings.NewReader(text))
	pe, ok := err.(*ParseError)
	assert.Assert(t, ok, "expected *ParseError, got %v", err)
	assert.Equal(t, pe.Msg, "number expected")
	assert.Equal(t, pe.Line, 5)
}

func parseError(t *testing.T, text string) *ParseError {
	t.Helper()
	_, err := NewReader(strings.NewReader(text))
	assert.Assert(t, err != nil)
	pe, ok := err.(*ParseError)
	assert.Assert(t, ok, "expected *ParseError, got %T: %v", err, err)
	return pe
}

func TestErrorMissingRelation(t *testing.T) {
	pe := parseError(t, "@foo bar\n")
	assert.Equal(t, pe.Line, 1)
	assert.Assert(t, strings.Contains(pe.Msg, KeywordRelation))
}

func TestErrorNoAttributes(t *testing.T) {
	pe := parseError(t, "@relation x\n@data\n")
	assert.Equal(t, pe.Msg, "no attributes declared")
}

func TestErrorUnknownNominalValue(t *testing.T) {
	pe := parseError(t, sampleHeader+"1.5,maybe\n")
	assert.Equal(t, pe.Line, 8)
	assert.Equal(t, pe.Msg, "nominal value not declared in header")
	assert.Equal(t, pe.Token, "maybe")
}

func TestErrorBadNumber(t *testing.T) {
	pe := parseError(t, sampleHeader+"abc,yes\n")
	assert.Equal(t, pe.Line, 8)
	assert.Equal(t, pe.Msg, "number expected")
}

func TestErrorPrematureEndOfLine(t *testing.T) {
	pe := parseError(t, sampleHeader+"1.5\n")
	assert.Equal(t, pe.Line, 8)
	assert.Equal(t, pe.Msg, "premature end of line")
}

func TestErrorTrailingToken(t *testing.T) {
	pe := parseError(t, sampleHeader+"1.5,yes,junk\n")
	assert.Equal(t, pe.Msg, "end of line expected")
}

func TestErrorUnterminatedQuote(t *testing.T) {
	pe := parseError(t, "@relation 'oops\n")
	assert.Equal(t, pe.Msg, "unterminated quoted value")
}

func TestErrorUnterminatedEnumeration(t *testing.T) {
	pe := parseError(t, "@relation r\n@attribute cls {yes,no\n@data\n")
	assert.Assert(t, strings.Contains(pe.Msg, "} expected"))
}

func TestErrorDuplicateNominalValue(t *testing.T) {
	pe := parseError(t, "@relation r\n@attribute cls {yes,yes}\n@data\n")
	assert.Assert(t, strings.Contains(pe.Msg, "duplicate"))
}

func TestErrorBadMetadata(t *testing.T) {
	pe := parseError(t, "@relation r\n@attribute x numeric ordering=symbolic regular=true\n@data\n1\n")
	assert.Equal(t, pe.Line, 2)
}

func TestIncrementalRead(t *testing.T) {
	r, err := NewHeaderReader(strings.NewReader(sampleHeader+"1.5,yes\n2.5,no\n"), 10)
	assert.NilError(t, err)

	st := r.Structure()
	assert.Equal(t, st.NumRows(), 0)
	assert.Equal(t, st.Schema(), r.Data().Schema())

	in, err := r.ReadInstance()
	assert.NilError(t, err)
	assert.Equal(t, in.Value(0), 1.5)

	in, err = r.ReadInstance()
	assert.NilError(t, err)
	assert.Equal(t, in.Value(1), 1.0)

	_, err = r.ReadInstance()
	assert.Equal(t, err, io.EOF)
	// a drained reader keeps reporting end of stream
	_, err = r.ReadInstance()
	assert.Equal(t, err, io.EOF)
}

func TestDataReaderResumedLineNumbers(t *testing.T) {
	hr, err := NewHeaderReader(strings.NewReader(sampleHeader), 0)
	assert.NilError(t, err)
	schema := hr.Data().Schema()

	r := NewDataReader(strings.NewReader("1.5,yes\nbogus,no\n"), schema, "test", 10)
	in, err := r.ReadInstance()
	assert.NilError(t, err)
	assert.Equal(t, in.Value(0), 1.5)

	_, err = r.ReadInstance()
	pe, ok := err.(*ParseError)
	assert.Assert(t, ok, "expected *ParseError, got %v", err)
	assert.Equal(t, pe.Line, 12)
}
