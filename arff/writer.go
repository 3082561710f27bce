package arff

import (
	"bufio"
	"io"
	"math"
	"strconv"

	"github.com/pkg/errors"

	"github.com/neurlang/perceptron/dataset"
)

// Write serializes a dataset to the ARFF text format. The output parses
// back to an equal schema and equal row values.
func Write(w io.Writer, ds *dataset.Dataset) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(KeywordRelation)
	bw.WriteByte(' ')
	bw.WriteString(dataset.Quote(ds.Name()))
	bw.WriteString("\n\n")

	schema := ds.Schema()
	for i := 0; i < schema.NumAttributes(); i++ {
		a := schema.Attribute(i)
		bw.WriteString(KeywordAttribute)
		bw.WriteByte(' ')
		bw.WriteString(dataset.Quote(a.Name()))
		bw.WriteByte(' ')
		if a.IsNominal() {
			bw.WriteByte('{')
			for j := 0; j < a.NumValues(); j++ {
				if j > 0 {
					bw.WriteByte(',')
				}
				bw.WriteString(dataset.Quote(a.Value(j)))
			}
			bw.WriteByte('}')
		} else {
			bw.WriteString("numeric")
		}
		bw.WriteByte('\n')
	}

	bw.WriteByte('\n')
	bw.WriteString(KeywordData)
	bw.WriteByte('\n')

	for i := 0; i < ds.NumRows(); i++ {
		writeRow(bw, ds.Row(i), schema)
	}
	return errors.Wrap(bw.Flush(), "arff: write")
}

func writeRow(bw *bufio.Writer, in *dataset.Instance, schema *dataset.Schema) {
	for i := 0; i < schema.NumAttributes(); i++ {
		if i > 0 {
			bw.WriteByte(',')
		}
		switch {
		case in.IsMissing(i):
			bw.WriteByte('?')
		case schema.Attribute(i).IsNominal():
			bw.WriteString(dataset.Quote(schema.Attribute(i).Value(int(in.Value(i)))))
		default:
			bw.WriteString(formatFloat(in.Value(i)))
		}
	}
	if in.Weight() != 1 {
		bw.WriteString(",{")
		bw.WriteString(formatFloat(in.Weight()))
		bw.WriteByte('}')
	}
	bw.WriteByte('\n')
}

func formatFloat(v float64) string {
	if math.IsInf(v, 1) {
		return "+inf"
	}
	if math.IsInf(v, -1) {
		return "-inf"
	}
	return strconv.FormatFloat(v, 'g', -1, 64)
}
