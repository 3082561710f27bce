// Package mlp implements a feed-forward network graph over a dataset
// schema and a memoized forward-pass evaluator. Nodes form a closed set of
// variants: inputs reading attribute values, sigmoid hidden units, and
// pass-through output accumulators, one per class.
package mlp

import (
	"github.com/pkg/errors"

	"github.com/neurlang/perceptron/dataset"
)

// NodeKind tags the variant of a network node.
type NodeKind int

const (
	// Input nodes read one attribute of the current instance.
	Input NodeKind = iota
	// Hidden nodes apply a sigmoid to a weighted sum of their inputs.
	Hidden
	// Output nodes sum their inputs with no activation.
	Output
)

// Node is one unit of the network graph. Every non-input node keeps its
// ordered input edges; output edges are kept for the compiler's layering
// pass. The memo cell is an explicit value+computed pair, cleared by reset.
type Node struct {
	kind    NodeKind
	attr    int // Input: attribute index
	class   int // Output: class index
	bias    float64
	weights []float64 // Hidden: one weight per input edge
	inputs  []*Node
	outputs []*Node

	value    float64
	computed bool
}

// NewInput returns an input node reading attribute attr.
func NewInput(attr int) *Node { return &Node{kind: Input, attr: attr} }

// NewHidden returns a sigmoid node with the given bias and no inputs yet.
func NewHidden(bias float64) *Node { return &Node{kind: Hidden, bias: bias} }

// NewOutput returns the accumulator node for class class.
func NewOutput(class int) *Node { return &Node{kind: Output, class: class} }

// Kind returns the node's variant tag.
func (n *Node) Kind() NodeKind { return n.kind }

// Attr returns the attribute index of an input node.
func (n *Node) Attr() int { return n.attr }

// Class returns the class index of an output node.
func (n *Node) Class() int { return n.class }

// Bias returns the bias of a hidden node.
func (n *Node) Bias() float64 { return n.bias }

// Weights returns the live weight slice of a hidden node, aligned with
// Inputs.
func (n *Node) Weights() []float64 { return n.weights }

// Inputs returns the node's ordered input edges.
func (n *Node) Inputs() []*Node { return n.inputs }

// Outputs returns the node's output edges.
func (n *Node) Outputs() []*Node { return n.outputs }

// Connect adds a directed edge src -> dst. For a hidden destination the
// edge carries weight; output destinations are unweighted accumulators.
func Connect(src, dst *Node, weight float64) error {
	if dst.kind == Input {
		return errors.New("mlp: input nodes cannot have inputs")
	}
	dst.inputs = append(dst.inputs, src)
	src.outputs = append(src.outputs, dst)
	if dst.kind == Hidden {
		dst.weights = append(dst.weights, weight)
	}
	return nil
}

// Network is a feed-forward graph bound to the schema it was trained
// against. It carries the per-class prior counts used when the network
// output is degenerate, and optional attribute normalization applied before
// every evaluation.
type Network struct {
	relation string
	schema   *dataset.Schema
	inputs   []*Node
	hidden   []*Node
	outputs  []*Node

	priors []float64 // per-class counts; the ZeroR fallback distribution

	normalize bool
	bases     []float64
	ranges    []float64
}

// New returns a network skeleton for the given schema: one input node per
// non-class attribute and one output node per class. The schema must have a
// nominal class attribute.
func New(schema *dataset.Schema) (*Network, error) {
	ca := schema.ClassAttribute()
	if ca == nil || !ca.IsNominal() {
		return nil, errors.New("mlp: schema needs a nominal class attribute")
	}
	n := &Network{schema: schema}
	for i := 0; i < schema.NumAttributes(); i++ {
		if i == schema.ClassIndex() {
			continue
		}
		n.inputs = append(n.inputs, NewInput(i))
	}
	for c := 0; c < ca.NumValues(); c++ {
		n.outputs = append(n.outputs, NewOutput(c))
	}
	return n, nil
}

// Schema returns the schema the network was built against.
func (n *Network) Schema() *dataset.Schema { return n.schema }

// Relation returns the name of the relation the network was trained on.
func (n *Network) Relation() string { return n.relation }

// SetRelation records the name of the relation the network was trained on.
func (n *Network) SetRelation(name string) { n.relation = name }

// NumClasses returns the number of output nodes.
func (n *Network) NumClasses() int { return len(n.outputs) }

// Inputs returns the input nodes in attribute order.
func (n *Network) Inputs() []*Node { return n.inputs }

// Hidden returns the hidden nodes in creation order.
func (n *Network) Hidden() []*Node { return n.hidden }

// Outputs returns the output nodes in class order.
func (n *Network) Outputs() []*Node { return n.outputs }

// Input returns the input node reading attribute attr, nil if the
// attribute has none.
func (n *Network) Input(attr int) *Node {
	for _, in := range n.inputs {
		if in.attr == attr {
			return in
		}
	}
	return nil
}

// Output returns the output node for class class.
func (n *Network) Output(class int) *Node { return n.outputs[class] }

// AddHidden creates a sigmoid node with the given bias and registers it
// with the network.
func (n *Network) AddHidden(bias float64) *Node {
	h := NewHidden(bias)
	n.hidden = append(n.hidden, h)
	return h
}

// Priors returns the per-class prior counts, nil if unset.
func (n *Network) Priors() []float64 { return n.priors }

// SetPriors installs the fallback per-class counts returned when every
// network output is non-positive.
func (n *Network) SetPriors(counts []float64) error {
	if len(counts) != len(n.outputs) {
		return errors.Errorf("mlp: %d priors for %d classes", len(counts), len(n.outputs))
	}
	n.priors = append([]float64(nil), counts...)
	return nil
}

// SetNormalization installs per-attribute bases and ranges applied to
// every instance before evaluation. Both slices are indexed by attribute.
func (n *Network) SetNormalization(bases, ranges []float64) error {
	if len(bases) != n.schema.NumAttributes() || len(ranges) != n.schema.NumAttributes() {
		return errors.Errorf("mlp: normalization vectors must have %d entries", n.schema.NumAttributes())
	}
	n.normalize = true
	n.bases = append([]float64(nil), bases...)
	n.ranges = append([]float64(nil), ranges...)
	return nil
}
