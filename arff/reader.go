package arff

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	"github.com/ulikunitz/xz"

	"github.com/neurlang/perceptron/dataset"
)

// Header keywords.
const (
	KeywordRelation  = "@relation"
	KeywordAttribute = "@attribute"
	KeywordData      = "@data"
)

// ParseError is a fatal format failure carrying the physical line number it
// occurred on. The first error aborts the whole read; no partial dataset is
// returned.
type ParseError struct {
	Line  int
	Msg   string
	Token string
}

func (e *ParseError) Error() string {
	if e.Token != "" {
		return fmt.Sprintf("line %d: %s, read %q", e.Line, e.Msg, e.Token)
	}
	return fmt.Sprintf("line %d: %s", e.Line, e.Msg)
}

// Reader parses the ARFF text format into a dataset. It is either fully
// consumed at construction (NewReader) or driven incrementally
// (NewHeaderReader / NewDataReader plus ReadInstance).
type Reader struct {
	tok  *tokenizer
	data *dataset.Dataset
}

// NewReader reads header and data completely. The parsed dataset is
// available via Data.
func NewReader(r io.Reader) (*Reader, error) {
	rd := &Reader{tok: newTokenizer(r, 0)}
	if err := rd.readHeader(100); err != nil {
		return nil, err
	}
	if err := rd.readAll(); err != nil {
		return nil, err
	}
	rd.data.Compactify()
	return rd, nil
}

// NewHeaderReader reads only the header and reserves capacity rows.
// Further instances are read via ReadInstance.
func NewHeaderReader(r io.Reader, capacity int) (*Reader, error) {
	if capacity < 0 {
		return nil, errors.New("arff: capacity has to be positive")
	}
	rd := &Reader{tok: newTokenizer(r, 0)}
	if err := rd.readHeader(capacity); err != nil {
		return nil, err
	}
	return rd, nil
}

// NewDataReader resumes a body-only stream against a known schema. lines is
// the number of physical lines already consumed by a prior read, so error
// line numbers stay correct across resumed parses.
func NewDataReader(r io.Reader, schema *dataset.Schema, name string, lines int) *Reader {
	return &Reader{
		tok:  newTokenizer(r, lines),
		data: dataset.New(name, schema, 100),
	}
}

// Data returns the dataset built so far.
func (r *Reader) Data() *dataset.Dataset { return r.data }

// Structure returns an empty dataset sharing the parsed schema, usable as a
// template for further incremental reads.
func (r *Reader) Structure() *dataset.Dataset {
	return dataset.New(r.data.Name(), r.data.Schema(), 0)
}

// Line returns the current physical line number.
func (r *Reader) Line() int { return r.tok.line }

func (r *Reader) errorf(tok token, format string, args ...interface{}) error {
	return &ParseError{Line: tok.line, Msg: fmt.Sprintf(format, args...), Token: tok.text}
}

// firstToken returns the next token skipping empty lines.
func (r *Reader) firstToken() (token, error) {
	for {
		tok, err := r.tok.next()
		if err != nil || tok.kind != tokEOL {
			return tok, err
		}
	}
}

// nextToken returns the next token on the current line, failing on a
// premature end of line or file.
func (r *Reader) nextToken() (token, error) {
	tok, err := r.tok.next()
	if err != nil {
		return tok, err
	}
	switch tok.kind {
	case tokEOL:
		return tok, r.errorf(tok, "premature end of line")
	case tokEOF:
		return tok, r.errorf(tok, "premature end of file")
	}
	return tok, nil
}

// lastToken consumes the end of line terminating a declaration or row.
// At end of stream EOF is accepted when eofOK is set.
func (r *Reader) lastToken(eofOK bool) error {
	tok, err := r.tok.next()
	if err != nil {
		return err
	}
	if tok.kind == tokEOL || (tok.kind == tokEOF && eofOK) {
		return nil
	}
	return r.errorf(tok, "end of line expected")
}

// readHeader parses @relation, the @attribute declarations and the @data
// marker, building the dataset's schema.
func (r *Reader) readHeader(capacity int) error {
	tok, err := r.firstToken()
	if err != nil {
		return err
	}
	if tok.kind == tokEOF {
		return r.errorf(tok, "premature end of file")
	}
	if tok.kind != tokWord || !strings.EqualFold(tok.text, KeywordRelation) {
		return r.errorf(tok, "keyword %s expected", KeywordRelation)
	}
	name, err := r.nextToken()
	if err != nil {
		return err
	}
	if name.kind != tokWord {
		return r.errorf(name, "relation name expected")
	}
	if err := r.lastToken(false); err != nil {
		return err
	}

	var attrs []*dataset.Attribute
	tok, err = r.firstToken()
	if err != nil {
		return err
	}
	for tok.kind == tokWord && strings.EqualFold(tok.text, KeywordAttribute) {
		var att *dataset.Attribute
		if att, tok, err = r.parseAttribute(); err != nil {
			return err
		}
		attrs = append(attrs, att)
	}
	if tok.kind != tokWord || !strings.EqualFold(tok.text, KeywordData) {
		return r.errorf(tok, "keyword %s expected", KeywordData)
	}
	if len(attrs) == 0 {
		return r.errorf(tok, "no attributes declared")
	}

	schema, err := dataset.NewSchema(attrs)
	if err != nil {
		return &ParseError{Line: tok.line, Msg: err.Error()}
	}
	r.data = dataset.New(name.text, schema, capacity)
	return nil
}

// parseAttribute parses one @attribute declaration and returns the first
// token of the following line. Numeric declarations may carry trailing
// key=value metadata words before end of line.
func (r *Reader) parseAttribute() (*dataset.Attribute, token, error) {
	name, err := r.nextToken()
	if err != nil {
		return nil, name, err
	}
	if name.kind != tokWord {
		return nil, name, r.errorf(name, "attribute name expected")
	}
	tok, err := r.nextToken()
	if err != nil {
		return nil, tok, err
	}

	var att *dataset.Attribute
	switch {
	case tok.kind == tokWord && !tok.quoted:
		if !strings.EqualFold(tok.text, "numeric") {
			return nil, tok, r.errorf(tok, "no valid attribute type or invalid enumeration")
		}
		props, err := r.readMetadata()
		if err != nil {
			return nil, tok, err
		}
		att, err = dataset.NewNumericMeta(name.text, props)
		if err != nil {
			return nil, tok, &ParseError{Line: tok.line, Msg: err.Error()}
		}
	case tok.kind == tokChar && tok.char == '{':
		var values []string
		for {
			v, err := r.tok.next()
			if err != nil {
				return nil, tok, err
			}
			if v.kind == tokChar && v.char == '}' {
				break
			}
			if v.kind == tokEOL || v.kind == tokEOF {
				return nil, v, r.errorf(v, "} expected at end of enumeration")
			}
			if v.kind == tokMissing {
				values = append(values, "?")
				continue
			}
			if v.kind != tokWord {
				return nil, v, r.errorf(v, "nominal value expected")
			}
			values = append(values, v.text)
		}
		var err error
		att, err = dataset.NewNominal(name.text, values)
		if err != nil {
			return nil, tok, &ParseError{Line: tok.line, Msg: err.Error()}
		}
		if err := r.lastToken(false); err != nil {
			return nil, tok, err
		}
	default:
		return nil, tok, r.errorf(tok, "attribute type expected")
	}

	next, err := r.firstToken()
	if err != nil {
		return nil, next, err
	}
	if next.kind == tokEOF {
		return nil, next, r.errorf(next, "premature end of file")
	}
	return att, next, nil
}

// readMetadata collects trailing key=value words up to end of line. Words
// without '=' are skipped, matching the tolerance of the original format.
// A value containing separators, such as a bracketed range, only survives
// tokenization when the whole property is quoted: 'range=[0,1]'.
func (r *Reader) readMetadata() (map[string]string, error) {
	var props map[string]string
	for {
		tok, err := r.tok.next()
		if err != nil {
			return nil, err
		}
		switch tok.kind {
		case tokEOL:
			return props, nil
		case tokEOF:
			return nil, r.errorf(tok, "premature end of file")
		case tokWord:
			k, v, ok := cutProperty(tok.text)
			if !ok {
				continue
			}
			if props == nil {
				props = make(map[string]string)
			}
			props[k] = v
		}
	}
}

func cutProperty(s string) (string, string, bool) {
	i := strings.IndexByte(s, '=')
	if i <= 0 {
		return "", "", false
	}
	return s[:i], s[i+1:], true
}

// readAll consumes rows until end of stream.
func (r *Reader) readAll() error {
	for {
		in, err := r.ReadInstance()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if err := r.data.Add(in); err != nil {
			return err
		}
	}
}

// ReadInstance parses one data row: one token per attribute in order, then
// an optional {weight} trailer, then end of line (end of stream is accepted
// for the last row). It returns io.EOF once the stream is exhausted.
func (r *Reader) ReadInstance() (*dataset.Instance, error) {
	schema := r.data.Schema()
	if schema.NumAttributes() == 0 {
		return nil, &ParseError{Line: r.tok.line, Msg: "no header information available"}
	}
	tok, err := r.firstToken()
	if err != nil {
		return nil, err
	}
	if tok.kind == tokEOF {
		return nil, io.EOF
	}

	values := make([]float64, schema.NumAttributes())
	for i := range values {
		if i > 0 {
			if tok, err = r.nextToken(); err != nil {
				return nil, err
			}
		}
		switch {
		case tok.kind == tokMissing:
			values[i] = dataset.Missing()
		case tok.kind != tokWord:
			return nil, r.errorf(tok, "not a valid value")
		case schema.Attribute(i).IsNominal():
			ix := schema.Attribute(i).IndexOfValue(tok.text)
			if ix == -1 {
				return nil, r.errorf(tok, "nominal value not declared in header")
			}
			values[i] = float64(ix)
		default:
			v, err := strconv.ParseFloat(tok.text, 64)
			if err != nil {
				return nil, r.errorf(tok, "number expected")
			}
			values[i] = v
		}
	}

	weight, err := r.readWeight()
	if err != nil {
		return nil, err
	}

	in := dataset.NewInstanceValues(weight, values)
	in.Bind(schema)
	return in, nil
}

// readWeight consumes the optional {weight} trailer and the terminating end
// of line. An unparsable weight falls back to 1 without failing the row.
func (r *Reader) readWeight() (float64, error) {
	tok, err := r.tok.next()
	if err != nil {
		return 0, err
	}
	if tok.kind == tokEOL || tok.kind == tokEOF {
		return 1, nil
	}
	if tok.kind != tokChar || tok.char != '{' {
		return 0, r.errorf(tok, "end of line expected")
	}
	w, err := r.tok.next()
	if err != nil {
		return 0, err
	}
	weight := 1.0
	parsed := false
	if w.kind == tokWord {
		if v, err := strconv.ParseFloat(w.text, 64); err == nil {
			weight = v
			parsed = true
		}
	}
	if !parsed {
		// Quietly fall back to the default weight and skip the rest of
		// the trailer.
		for w.kind != tokEOL && w.kind != tokEOF {
			if w, err = r.tok.next(); err != nil {
				return 0, err
			}
		}
		return 1, nil
	}
	brace, err := r.tok.next()
	if err != nil {
		return 0, err
	}
	if brace.kind != tokChar || brace.char != '}' {
		return 0, r.errorf(brace, "problem reading instance weight")
	}
	return weight, r.lastToken(true)
}

// Load reads a whole ARFF file into a dataset, transparently decompressing
// .xz sources. The file is closed on every path.
func Load(path string) (*dataset.Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrap(err, "arff: open")
	}
	defer f.Close()

	var src io.Reader = f
	if strings.HasSuffix(path, ".xz") {
		if src, err = xz.NewReader(f); err != nil {
			return nil, errors.Wrap(err, "arff: xz")
		}
	}
	r, err := NewReader(src)
	if err != nil {
		return nil, errors.Wrapf(err, "arff: %s", path)
	}
	return r.Data(), nil
}
