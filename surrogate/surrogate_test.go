// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package surrogate

import (
	"testing"

	"github.com/chewxy/math32"
	"github.com/emer/etable/v2/etensor"
)

// difTol is the numerical difference tolerance for comparing vs. target values
const difTol = float32(1.0e-7)

func tsr(vals ...float32) *etensor.Float32 {
	t := etensor.NewFloat32([]int{len(vals)}, nil, nil)
	copy(t.Values, vals)
	return t
}

func cmpVals(t *testing.T, nm string, got, cor []float32) {
	t.Helper()
	for i := range cor {
		dif := math32.Abs(got[i] - cor[i])
		if dif > difTol {
			t.Errorf("%s err: idx: %v, got: %v, cor: %v, dif: %v\n", nm, i, got[i], cor[i], dif)
		}
	}
}

func TestHeavisideForward(t *testing.T) {
	out := Heaviside{}.Forward(tsr(-1, 0, 0.5))
	// exactly 0 fires: >= not >
	cmpVals(t, "fwd", out.Values, []float32{0, 1, 1})

	out = Heaviside{}.Forward(tsr(-0.0001, -100, 100, 0.0001))
	cmpVals(t, "fwd edges", out.Values, []float32{0, 0, 1, 1})
}

func TestHeavisideBackward(t *testing.T) {
	x := tsr(-1, 0, 0.5)
	out := tsr(0, 1, 1)
	grad := tsr(3, 4, 5)
	// upstream gradient passes where the unit fired, zeroed where it did not
	down := Heaviside{}.Backward(x, out, grad)
	cmpVals(t, "bwd", down.Values, []float32{0, 4, 5})
}

func TestVariantsShareForward(t *testing.T) {
	x := tsr(-1, 0, 0.5)
	cor := []float32{0, 1, 1}
	fs := &FastSigmoid{}
	fs.Defaults()
	sg := &Sigmoid{}
	sg.Defaults()
	tr := &Triangle{}
	tr.Defaults()
	at := &ATan{}
	at.Defaults()
	cmpVals(t, "fastsigmoid", fs.Forward(x).Values, cor)
	cmpVals(t, "sigmoid", sg.Forward(x).Values, cor)
	cmpVals(t, "triangle", tr.Forward(x).Values, cor)
	cmpVals(t, "atan", at.Forward(x).Values, cor)
}

func TestFastSigmoidBackward(t *testing.T) {
	fs := &FastSigmoid{Slope: 25}
	x := tsr(0, 1, -1)
	down := fs.Backward(x, fs.Forward(x), tsr(1, 1, 1))
	cmpVals(t, "bwd", down.Values, []float32{1, 1.0 / (26 * 26), 1.0 / (26 * 26)})
}

func TestSigmoidBackward(t *testing.T) {
	sg := &Sigmoid{Slope: 4}
	x := tsr(0)
	down := sg.Backward(x, sg.Forward(x), tsr(2))
	// at x = 0: grad * slope * 0.5 * 0.5
	cmpVals(t, "bwd", down.Values, []float32{2})
}

func TestTriangleBackward(t *testing.T) {
	tr := &Triangle{Width: 1}
	x := tsr(0, 0.5, -0.5, 2, -2)
	down := tr.Backward(x, tr.Forward(x), tsr(1, 1, 1, 1, 1))
	cmpVals(t, "bwd", down.Values, []float32{1, 0.5, 0.5, 0, 0})
}

func TestATanBackward(t *testing.T) {
	at := &ATan{Alpha: 2}
	x := tsr(0)
	down := at.Backward(x, at.Forward(x), tsr(1))
	// at x = 0 the denominator term vanishes: alpha / 2
	cmpVals(t, "bwd", down.Values, []float32{1})
}
