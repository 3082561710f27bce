package mlp

import (
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"

	"github.com/neurlang/perceptron/dataset"
)

// ErrNoDistribution is returned when an evaluation cannot produce a usable
// per-class distribution.
var ErrNoDistribution = errors.New("mlp: no usable class distribution")

// sigmoidBound saturates the logistic function to avoid overflow in the
// exponential; sigma(45) is already within double epsilon of 1.
const sigmoidBound = 45

// Sigmoid is the saturating logistic function used by hidden nodes.
func Sigmoid(x float64) float64 {
	if x < -sigmoidBound {
		return 0
	}
	if x > sigmoidBound {
		return 1
	}
	return 1 / (1 + math.Exp(-x))
}

// reset clears the memo cell of the node and, recursively, of its inputs.
// Subtrees that are already clear are not revisited, bounding the cost to
// the nodes touched by the last evaluation.
func (n *Node) reset() {
	if !n.computed {
		return
	}
	n.computed = false
	for _, in := range n.inputs {
		in.reset()
	}
}

// eval computes the node's value against the given instance, memoizing it
// until the next reset. Missing input attributes read as zero.
func (n *Node) eval(in *dataset.Instance) float64 {
	if n.computed {
		return n.value
	}
	switch n.kind {
	case Input:
		if in.IsMissing(n.attr) {
			n.value = 0
		} else {
			n.value = in.Value(n.attr)
		}
	case Hidden:
		v := n.bias
		for i, src := range n.inputs {
			v += n.weights[i] * src.eval(in)
		}
		n.value = Sigmoid(v)
	case Output:
		v := 0.0
		for _, src := range n.inputs {
			v += src.eval(in)
		}
		n.value = v
	}
	n.computed = true
	return n.value
}

// Reset clears every memo cell reachable from the output set. It is called
// automatically by Distribution; explicit use is only needed around direct
// node evaluation.
func (n *Network) Reset() {
	for _, out := range n.outputs {
		out.reset()
	}
}

// Distribution evaluates every output node against the instance and
// returns one score per class. If no output is positive the network has
// learned nothing useful for this input and the prior counts are returned
// instead, so a class can still be predicted deterministically.
func (n *Network) Distribution(in *dataset.Instance) ([]float64, error) {
	if in.Schema() == nil {
		return nil, errors.Wrap(ErrNoDistribution, "instance is not bound to a schema")
	}
	if in.NumValues() != n.schema.NumAttributes() {
		return nil, errors.Wrapf(ErrNoDistribution, "%d values for %d attributes", in.NumValues(), n.schema.NumAttributes())
	}

	// Work on a copy so normalization never mutates the caller's row.
	cur := in.Copy()
	if n.normalize {
		for a := 0; a < n.schema.NumAttributes(); a++ {
			if a == n.schema.ClassIndex() || cur.IsMissing(a) {
				continue
			}
			if n.ranges[a] != 0 {
				cur.SetValue(a, (cur.Value(a)-n.bases[a])/n.ranges[a])
			} else {
				cur.SetValue(a, cur.Value(a)-n.bases[a])
			}
		}
	}

	n.Reset()
	dist := make([]float64, len(n.outputs))
	for i, out := range n.outputs {
		dist[i] = out.eval(cur)
	}
	if floats.Sum(dist) <= 0 {
		if n.priors == nil {
			return nil, errors.Wrap(ErrNoDistribution, "degenerate output and no prior counts")
		}
		return append([]float64(nil), n.priors...), nil
	}
	return dist, nil
}

// Classify returns the predicted class index for the instance: the argmax
// of Distribution, ties broken by first occurrence.
func (n *Network) Classify(in *dataset.Instance) (int, error) {
	dist, err := n.Distribution(in)
	if err != nil {
		return 0, err
	}
	if len(dist) == 0 {
		return 0, errors.Wrap(ErrNoDistribution, "empty distribution")
	}
	return floats.MaxIdx(dist), nil
}
