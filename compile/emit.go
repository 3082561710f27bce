package compile

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"

	"github.com/neurlang/perceptron/net/mlp"
)

// FracBits is the number of fractional bits of the emitted fixed-point
// format (Q12).
const FracBits = 12

// One is the fixed-point representation of 1.0.
const One = 1 << FracBits

// Quantize scales x by 2^12 and truncates toward zero.
func Quantize(x float64) int32 {
	return int32(int64(x * One))
}

// FixedMul multiplies two Q12 values. The result of a negative product is
// rounded by the arithmetic right shift, not truncated toward zero; the
// original emitter behaves the same way and the asymmetry is kept.
func FixedMul(a, b int32) int32 {
	return int32((int64(a) * int64(b)) >> FracBits)
}

// SigmoidQ12 is the piecewise-linear sigmoid approximation the emitted
// code applies in place, expressed over Q12 values. It saturates at |x| >=
// 5 and mirrors around 0.5 for negative inputs. Segment breaks sit where
// the adjacent lines cross (x/8+0.625 meets x/32+0.84375 at x = 7/3), so
// the approximation is monotone.
func SigmoidQ12(x int32) int32 {
	v := x
	if v < 0 {
		v = -v
	}
	var y int32
	switch {
	case v >= 5*One:
		y = One
	case v >= 9557: // 7/3 in Q12
		y = (v >> 5) + 3456
	case v >= One:
		y = (v >> 3) + 2560
	default:
		y = (v >> 2) + 2048
	}
	if x < 0 {
		y = One - y
	}
	return y
}

// Emit writes a standalone fixed-point re-implementation of the network's
// forward pass: one flat constant table per computed layer and an
// evaluation routine of straight-line statements over a value vector v.
// v[attribute index] must hold the Q12 input values before the call; the
// per-class scores land in the slots reported by Plan.OutputSlots.
func Emit(w io.Writer, net *mlp.Network) error {
	plan, err := NewPlan(net)
	if err != nil {
		return err
	}
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "/* fixed-point (Q%d) forward pass, %d value slots */\n\n", FracBits, plan.NumSlots)
	bw.WriteString(`static void sigmoid_q12(int32_t *x)
{
    int32_t v = *x < 0 ? -*x : *x;
    int32_t y;
    if      (v >= 5 << 12) y = 1 << 12;
    else if (v >= 9557)    y = (v >> 5) + 3456;
    else if (v >= 1 << 12) y = (v >> 3) + 2560;
    else                   y = (v >> 2) + 2048;
    *x = *x < 0 ? (1 << 12) - y : y;
}

`)

	// Constant tables, one per computed layer, deepest (nearest the
	// inputs) first. Each hidden node contributes its bias followed by
	// its edge weights, concatenated in slot order.
	layerNo := 0
	for l := len(plan.Layers) - 1; l >= plan.EmitMin; l-- {
		layerNo++
		var consts []int32
		for _, n := range plan.Layers[l] {
			if n.Kind() != mlp.Hidden {
				continue
			}
			consts = append(consts, Quantize(n.Bias()))
			for _, wt := range n.Weights() {
				consts = append(consts, Quantize(wt))
			}
		}
		if len(consts) == 0 {
			continue
		}
		fmt.Fprintf(bw, "static const int32_t c%d[] = {", layerNo)
		for i, c := range consts {
			if i > 0 {
				bw.WriteByte(',')
			}
			fmt.Fprintf(bw, "%d", c)
		}
		bw.WriteString("};\n")
	}

	fmt.Fprintf(bw, "\nstatic void eval(int32_t *v)\n{\n")
	layerNo = 0
	for l := len(plan.Layers) - 1; l >= plan.EmitMin; l-- {
		layerNo++
		k := 0
		for _, n := range plan.Layers[l] {
			switch n.Kind() {
			case mlp.Input:
				continue
			case mlp.Hidden:
				slot, ok := plan.Slots[n]
				if !ok {
					return errors.Wrap(ErrCycle, "compile: node left without a slot")
				}
				fmt.Fprintf(bw, "    v[%d] = c%d[%d]", slot, layerNo, k)
				k++
				for _, in := range n.Inputs() {
					fmt.Fprintf(bw, " + (int32_t)(((int64_t)c%d[%d] * v[%d]) >> %d)", layerNo, k, plan.Slots[in], FracBits)
					k++
				}
				fmt.Fprintf(bw, ";\n    sigmoid_q12(&v[%d]);\n", slot)
			case mlp.Output:
				fmt.Fprintf(bw, "    v[%d] =", plan.Slots[n])
				if len(n.Inputs()) == 0 {
					bw.WriteString(" 0")
				}
				for i, in := range n.Inputs() {
					if i > 0 {
						bw.WriteString(" +")
					}
					fmt.Fprintf(bw, " v[%d]", plan.Slots[in])
				}
				bw.WriteString(";\n")
			}
		}
	}
	bw.WriteString("}\n")
	return errors.Wrap(bw.Flush(), "compile: emit")
}
