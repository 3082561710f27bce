package mlp

import (
	"compress/lzw"
	"encoding/json"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/neurlang/perceptron/dataset"
)

// Trained models travel as an lzw-compressed JSON stream carrying the
// schema, the graph topology, the weights, the prior counts and the
// normalization vectors. Node references use one flat id space: input
// nodes first in attribute order, then hidden nodes in listed order.

type modelAttr struct {
	Name   string   `json:"name"`
	Kind   string   `json:"kind"`
	Values []string `json:"values,omitempty"`
}

type modelHidden struct {
	Bias    float64   `json:"bias"`
	Inputs  []int     `json:"inputs"`
	Weights []float64 `json:"weights"`
}

type modelFile struct {
	Relation   string        `json:"relation"`
	Attributes []modelAttr   `json:"attributes"`
	ClassIndex int           `json:"classIndex"`
	Hidden     []modelHidden `json:"hidden"`
	Outputs    [][]int       `json:"outputs"`
	Priors     []float64     `json:"priors,omitempty"`
	Bases      []float64     `json:"bases,omitempty"`
	Ranges     []float64     `json:"ranges,omitempty"`
}

// WriteModel writes the network to w as an lzw-compressed JSON stream.
func WriteModel(w io.Writer, n *Network) error {
	ids := make(map[*Node]int, len(n.inputs)+len(n.hidden))
	for i, in := range n.inputs {
		ids[in] = i
	}
	for i, h := range n.hidden {
		ids[h] = len(n.inputs) + i
	}

	mf := modelFile{
		Relation:   n.relation,
		ClassIndex: n.schema.ClassIndex(),
		Priors:     n.priors,
	}
	if n.normalize {
		mf.Bases = n.bases
		mf.Ranges = n.ranges
	}
	for i := 0; i < n.schema.NumAttributes(); i++ {
		a := n.schema.Attribute(i)
		ma := modelAttr{Name: a.Name(), Kind: "numeric"}
		if a.IsNominal() {
			ma.Kind = "nominal"
			for j := 0; j < a.NumValues(); j++ {
				ma.Values = append(ma.Values, a.Value(j))
			}
		}
		mf.Attributes = append(mf.Attributes, ma)
	}
	for _, h := range n.hidden {
		mh := modelHidden{Bias: h.bias, Weights: h.weights}
		for _, src := range h.inputs {
			id, ok := ids[src]
			if !ok {
				return errors.New("mlp: hidden node wired to an unregistered node")
			}
			mh.Inputs = append(mh.Inputs, id)
		}
		mf.Hidden = append(mf.Hidden, mh)
	}
	for _, out := range n.outputs {
		var srcs []int
		for _, src := range out.inputs {
			id, ok := ids[src]
			if !ok {
				return errors.New("mlp: output node wired to an unregistered node")
			}
			srcs = append(srcs, id)
		}
		mf.Outputs = append(mf.Outputs, srcs)
	}

	lw := lzw.NewWriter(w, lzw.LSB, 8)
	if err := json.NewEncoder(lw).Encode(&mf); err != nil {
		return errors.Wrap(err, "mlp: encode model")
	}
	return errors.Wrap(lw.Close(), "mlp: encode model")
}

// ReadModel reconstructs a network from an lzw-compressed JSON stream.
// A malformed stream yields an error, never a partial network.
func ReadModel(r io.Reader) (*Network, error) {
	lr := lzw.NewReader(r, lzw.LSB, 8)
	defer lr.Close()

	var mf modelFile
	if err := json.NewDecoder(lr).Decode(&mf); err != nil {
		return nil, errors.Wrap(err, "mlp: decode model")
	}

	attrs := make([]*dataset.Attribute, 0, len(mf.Attributes))
	for _, ma := range mf.Attributes {
		switch ma.Kind {
		case "numeric":
			attrs = append(attrs, dataset.NewNumeric(ma.Name))
		case "nominal":
			a, err := dataset.NewNominal(ma.Name, ma.Values)
			if err != nil {
				return nil, errors.Wrap(err, "mlp: decode model")
			}
			attrs = append(attrs, a)
		default:
			return nil, errors.Errorf("mlp: unknown attribute kind %q", ma.Kind)
		}
	}
	schema, err := dataset.NewSchema(attrs)
	if err != nil {
		return nil, errors.Wrap(err, "mlp: decode model")
	}
	if schema, err = schema.WithClassIndex(mf.ClassIndex); err != nil {
		return nil, errors.Wrap(err, "mlp: decode model")
	}

	n, err := New(schema)
	if err != nil {
		return nil, err
	}
	n.relation = mf.Relation
	if len(mf.Outputs) != len(n.outputs) {
		return nil, errors.Errorf("mlp: %d output lists for %d classes", len(mf.Outputs), len(n.outputs))
	}

	nodes := make([]*Node, 0, len(n.inputs)+len(mf.Hidden))
	nodes = append(nodes, n.inputs...)
	for _, mh := range mf.Hidden {
		nodes = append(nodes, n.AddHidden(mh.Bias))
	}
	byID := func(id int) (*Node, error) {
		if id < 0 || id >= len(nodes) {
			return nil, errors.Errorf("mlp: node id %d out of range", id)
		}
		return nodes[id], nil
	}

	for i, mh := range mf.Hidden {
		if len(mh.Inputs) != len(mh.Weights) {
			return nil, errors.Errorf("mlp: hidden node %d has %d inputs but %d weights", i, len(mh.Inputs), len(mh.Weights))
		}
		dst := nodes[len(n.inputs)+i]
		for j, id := range mh.Inputs {
			src, err := byID(id)
			if err != nil {
				return nil, err
			}
			if err := Connect(src, dst, mh.Weights[j]); err != nil {
				return nil, err
			}
		}
	}
	for c, srcs := range mf.Outputs {
		for _, id := range srcs {
			src, err := byID(id)
			if err != nil {
				return nil, err
			}
			if err := Connect(src, n.outputs[c], 0); err != nil {
				return nil, err
			}
		}
	}

	if mf.Priors != nil {
		if err := n.SetPriors(mf.Priors); err != nil {
			return nil, err
		}
	}
	if mf.Bases != nil || mf.Ranges != nil {
		if err := n.SetNormalization(mf.Bases, mf.Ranges); err != nil {
			return nil, err
		}
	}
	return n, nil
}

// ReadModelFile loads a model from a file, closing it on every path.
func ReadModelFile(name string) (*Network, error) {
	f, err := os.Open(name)
	if err != nil {
		return nil, errors.Wrap(err, "mlp: open model")
	}
	defer f.Close()
	return ReadModel(f)
}

// WriteModelFile stores a model to a file.
func WriteModelFile(name string, n *Network) error {
	f, err := os.Create(name)
	if err != nil {
		return errors.Wrap(err, "mlp: create model")
	}
	if err := WriteModel(f, n); err != nil {
		f.Close()
		return err
	}
	return errors.Wrap(f.Close(), "mlp: close model")
}
