package compile

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/neurlang/perceptron/dataset"
	"github.com/neurlang/perceptron/net/mlp"
)

func testSchema(t *testing.T) *dataset.Schema {
	t.Helper()
	cls, err := dataset.NewNominal("cls", []string{"yes", "no"})
	if err != nil {
		t.Fatal(err)
	}
	s, err := dataset.NewSchema([]*dataset.Attribute{
		dataset.NewNumeric("a"),
		dataset.NewNumeric("b"),
		cls,
	})
	if err != nil {
		t.Fatal(err)
	}
	s, err = s.WithClassIndex(2)
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func connect(t *testing.T, src, dst *mlp.Node, w float64) {
	t.Helper()
	if err := mlp.Connect(src, dst, w); err != nil {
		t.Fatal(err)
	}
}

// diamond with a hidden-to-hidden edge and a shared producer
func diamond(t *testing.T) *mlp.Network {
	t.Helper()
	n, err := mlp.New(testSchema(t))
	if err != nil {
		t.Fatal(err)
	}
	h1 := n.AddHidden(0.5)
	h2 := n.AddHidden(-0.25)
	connect(t, n.Input(0), h1, 0.25)
	connect(t, n.Input(1), h1, -0.5)
	connect(t, n.Input(0), h2, 1)
	connect(t, h1, h2, 2)
	connect(t, h1, n.Output(0), 0)
	connect(t, h2, n.Output(0), 0)
	connect(t, h2, n.Output(1), 0)
	return n
}

func TestLayersProducersDeeper(t *testing.T) {
	net := diamond(t)
	layers, err := Layers(net)
	if err != nil {
		t.Fatal(err)
	}

	depth := make(map[*mlp.Node]int)
	for d, layer := range layers {
		for _, n := range layer {
			depth[n] = d
		}
	}
	for _, out := range net.Outputs() {
		if depth[out] != 0 {
			t.Errorf("output at depth %d, want 0", depth[out])
		}
	}
	for n, d := range depth {
		for _, in := range n.Inputs() {
			if depth[in] <= d {
				t.Errorf("producer at depth %d feeds consumer at depth %d", depth[in], d)
			}
		}
	}
}

func TestLayersSharedProducerDeepens(t *testing.T) {
	net := diamond(t)
	layers, err := Layers(net)
	if err != nil {
		t.Fatal(err)
	}
	depth := make(map[*mlp.Node]int)
	for d, layer := range layers {
		for _, n := range layer {
			depth[n] = d
		}
	}
	// h1 feeds both an output (depth 0) and h2 (depth 1); it must sit below h2
	h1, h2 := net.Hidden()[0], net.Hidden()[1]
	if depth[h1] != depth[h2]+1 {
		t.Errorf("h1 at depth %d, h2 at depth %d", depth[h1], depth[h2])
	}
}

func TestLayersCycle(t *testing.T) {
	n, err := mlp.New(testSchema(t))
	if err != nil {
		t.Fatal(err)
	}
	h1 := n.AddHidden(0)
	h2 := n.AddHidden(0)
	connect(t, h1, h2, 1)
	connect(t, h2, h1, 1)
	connect(t, h2, n.Output(0), 0)

	_, err = Layers(n)
	if errors.Cause(err) != ErrCycle {
		t.Fatalf("expected ErrCycle, got %v", err)
	}
	_, err = NewPlan(n)
	if errors.Cause(err) != ErrCycle {
		t.Fatalf("NewPlan: expected ErrCycle, got %v", err)
	}
}

func TestPlanPassthroughOutputs(t *testing.T) {
	n, err := mlp.New(testSchema(t))
	if err != nil {
		t.Fatal(err)
	}
	h := n.AddHidden(0)
	connect(t, n.Input(0), h, 1)
	connect(t, h, n.Output(0), 0)
	connect(t, h, n.Output(1), 0)

	p, err := NewPlan(n)
	if err != nil {
		t.Fatal(err)
	}
	if p.EmitMin != 1 {
		t.Fatalf("EmitMin = %d, want 1", p.EmitMin)
	}
	if p.Slots[n.Input(0)] != 0 || p.Slots[n.Input(1)] != 1 {
		t.Errorf("input slots: %d, %d", p.Slots[n.Input(0)], p.Slots[n.Input(1)])
	}
	if p.Slots[h] != 2 {
		t.Errorf("hidden slot = %d, want 2", p.Slots[h])
	}
	// passthrough outputs alias their producer's slot
	if got := p.OutputSlots(n); got[0] != 2 || got[1] != 2 {
		t.Errorf("output slots = %v, want [2 2]", got)
	}
	if p.NumSlots != 3 {
		t.Errorf("NumSlots = %d, want 3", p.NumSlots)
	}
}

func TestPlanAccumulatingOutputs(t *testing.T) {
	net := diamond(t)
	p, err := NewPlan(net)
	if err != nil {
		t.Fatal(err)
	}
	if p.EmitMin != 0 {
		t.Fatalf("EmitMin = %d, want 0", p.EmitMin)
	}

	// every node gets a slot, computed slots start after the input block
	// and never collide
	used := make(map[int]*mlp.Node)
	for _, layer := range p.Layers {
		for _, n := range layer {
			slot, ok := p.Slots[n]
			if !ok {
				t.Fatalf("node %v has no slot", n.Kind())
			}
			if n.Kind() != mlp.Input && slot < 2 {
				t.Errorf("computed node in the input block at slot %d", slot)
			}
			if prev, dup := used[slot]; dup {
				t.Errorf("slot %d assigned to both %v and %v", slot, prev.Kind(), n.Kind())
			}
			used[slot] = n
		}
	}
	if p.NumSlots != len(used) {
		t.Errorf("NumSlots = %d, %d slots in use", p.NumSlots, len(used))
	}
}
