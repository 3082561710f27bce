// Package compile turns a trained feed-forward network into standalone
// fixed-point inference code: it layers the graph reverse-topologically,
// assigns every node a slot in one flat value vector, quantizes weights to
// Q12 and emits a constant table plus straight-line evaluation code.
package compile

import (
	"github.com/pkg/errors"

	"github.com/neurlang/perceptron/net/mlp"
)

// ErrCycle is returned when the layering pass cannot terminate because the
// graph is not acyclic. This is an internal-consistency failure: a network
// built through the mlp package cannot trip it.
var ErrCycle = errors.New("compile: network graph is cyclic")

// Layers partitions the nodes reachable from the output set into layers.
// Layer 0 holds the outputs; a node's layer index is one more than the
// deepest layer of any of its consumers, so indices increase toward the
// inputs and every consumer sits in a strictly shallower layer than each
// of its producers. Placement is monotonic: a revisit may only deepen a
// node, never lift it.
func Layers(net *mlp.Network) ([][]*mlp.Node, error) {
	total := countNodes(net)
	depth := make(map[*mlp.Node]int, total)
	seen := make([]*mlp.Node, 0, total)

	var place func(n *mlp.Node, d int) error
	place = func(n *mlp.Node, d int) error {
		if d >= total {
			// Deeper than the node count means some node was re-deepened
			// along a closed walk.
			return ErrCycle
		}
		if cur, ok := depth[n]; ok {
			if d <= cur {
				return nil
			}
		} else {
			seen = append(seen, n)
		}
		depth[n] = d
		for _, in := range n.Inputs() {
			if err := place(in, d+1); err != nil {
				return err
			}
		}
		return nil
	}
	for _, out := range net.Outputs() {
		if err := place(out, 0); err != nil {
			return nil, err
		}
	}

	deepest := 0
	for _, d := range depth {
		if d > deepest {
			deepest = d
		}
	}
	layers := make([][]*mlp.Node, deepest+1)
	for _, n := range seen {
		layers[depth[n]] = append(layers[depth[n]], n)
	}
	return layers, nil
}

func countNodes(net *mlp.Network) int {
	visited := make(map[*mlp.Node]bool)
	var walk func(n *mlp.Node)
	walk = func(n *mlp.Node) {
		if visited[n] {
			return
		}
		visited[n] = true
		for _, in := range n.Inputs() {
			walk(in)
		}
	}
	for _, out := range net.Outputs() {
		walk(out)
	}
	return len(visited)
}

// Plan is the slot layout for one network: its layers, the value-vector
// slot of every node and the total vector length. Input nodes reuse the
// slot implied by their attribute index; every computed layer gets a
// contiguous block appended after the input block.
type Plan struct {
	Layers [][]*mlp.Node
	Slots  map[*mlp.Node]int
	// EmitMin is the lowest layer index that produces code. It is 1 when
	// every output node is a pure single-input passthrough, in which case
	// an output's slot is its producer's slot.
	EmitMin  int
	NumSlots int
}

// NewPlan layers the network and assigns slots.
func NewPlan(net *mlp.Network) (*Plan, error) {
	layers, err := Layers(net)
	if err != nil {
		return nil, err
	}
	p := &Plan{
		Layers: layers,
		Slots:  make(map[*mlp.Node]int),
	}

	// The input block spans the attribute indices the graph actually
	// reads, so input slots line up with the instance vector.
	next := 0
	for _, in := range net.Inputs() {
		p.Slots[in] = in.Attr()
		if in.Attr()+1 > next {
			next = in.Attr() + 1
		}
	}

	p.EmitMin = 1
	for _, out := range layers[0] {
		if len(out.Inputs()) != 1 {
			p.EmitMin = 0
			break
		}
	}

	for l := len(layers) - 1; l >= p.EmitMin; l-- {
		for _, n := range layers[l] {
			if n.Kind() == mlp.Input {
				continue
			}
			p.Slots[n] = next
			next++
		}
	}
	if p.EmitMin == 1 {
		for _, out := range layers[0] {
			p.Slots[out] = p.Slots[out.Inputs()[0]]
		}
	}
	p.NumSlots = next
	return p, nil
}

// OutputSlots returns the value-vector slots holding the per-class scores
// after the emitted code has run, in class order.
func (p *Plan) OutputSlots(net *mlp.Network) []int {
	slots := make([]int, 0, len(net.Outputs()))
	for _, out := range net.Outputs() {
		slots = append(slots, p.Slots[out])
	}
	return slots
}
