// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package surrogate provides the spike-generation step function together with
a family of surrogate gradients.

The forward pass is identical for every variant: the exact Heaviside step,
spike = 1 where x >= 0 and 0 where x < 0, with no intermediate values.  The
boundary x == 0 fires -- this is a deliberate policy that must be preserved
exactly for reproducibility.  The step has no usable classical derivative
(zero everywhere, undefined at 0), so each variant substitutes its own
approximate backward rule, which is what allows spiking models to train
with gradient-based optimizers.

Every variant satisfies the autodiff.Function interface and can be plugged
into the snn neuron base via its SpikeFn configuration.
*/
package surrogate

import (
	"github.com/chewxy/math32"
	"github.com/emer/etable/v2/etensor"
)

// step computes the exact Heaviside forward pass shared by all variants.
func step(x *etensor.Float32) *etensor.Float32 {
	out := etensor.NewFloat32(x.Shp, nil, nil)
	for i, v := range x.Values {
		if v >= 0 {
			out.Values[i] = 1
		}
	}
	return out
}

// Heaviside is the default spiking function: Heaviside step forward, and a
// straight-through backward gated by the firing state -- the upstream
// gradient passes unchanged wherever the forward output was 1, and is
// zeroed wherever it was 0.  Although this is clearly not the analytical
// derivative of the forward pass, it holds up in practice because a reset
// necessarily follows each spike.
type Heaviside struct{}

func (hs Heaviside) Forward(x *etensor.Float32) *etensor.Float32 {
	return step(x)
}

func (hs Heaviside) Backward(x, out, grad *etensor.Float32) *etensor.Float32 {
	down := etensor.NewFloat32(grad.Shp, nil, nil)
	for i, g := range grad.Values {
		down.Values[i] = g * out.Values[i]
	}
	return down
}

// FastSigmoid uses the derivative of the fast sigmoid
// x / (1 + Slope*|x|) as its backward rule:
// grad / (1 + Slope*|x|)^2.
type FastSigmoid struct {

	// steepness of the surrogate around the firing threshold
	Slope float32 `def:"25"`
}

func (fs *FastSigmoid) Defaults() {
	fs.Slope = 25
}

func (fs *FastSigmoid) Forward(x *etensor.Float32) *etensor.Float32 {
	return step(x)
}

func (fs *FastSigmoid) Backward(x, out, grad *etensor.Float32) *etensor.Float32 {
	down := etensor.NewFloat32(grad.Shp, nil, nil)
	for i, g := range grad.Values {
		d := 1 + fs.Slope*math32.Abs(x.Values[i])
		down.Values[i] = g / (d * d)
	}
	return down
}

// Sigmoid uses the derivative of the logistic sigmoid at Slope*x as its
// backward rule: grad * Slope * sig * (1 - sig) where
// sig = 1 / (1 + exp(-Slope*x)).
type Sigmoid struct {

	// steepness of the surrogate around the firing threshold
	Slope float32 `def:"25"`
}

func (sg *Sigmoid) Defaults() {
	sg.Slope = 25
}

func (sg *Sigmoid) Forward(x *etensor.Float32) *etensor.Float32 {
	return step(x)
}

func (sg *Sigmoid) Backward(x, out, grad *etensor.Float32) *etensor.Float32 {
	down := etensor.NewFloat32(grad.Shp, nil, nil)
	for i, g := range grad.Values {
		sig := 1 / (1 + math32.Exp(-sg.Slope*x.Values[i]))
		down.Values[i] = g * sg.Slope * sig * (1 - sig)
	}
	return down
}

// Triangle uses a triangular kernel centered on the threshold as its
// backward rule: grad * max(0, 1 - |x|/Width) / Width.  Gradients vanish
// entirely beyond Width from the threshold.
type Triangle struct {

	// half-width of the triangular kernel around the firing threshold
	Width float32 `def:"1"`
}

func (tr *Triangle) Defaults() {
	tr.Width = 1
}

func (tr *Triangle) Forward(x *etensor.Float32) *etensor.Float32 {
	return step(x)
}

func (tr *Triangle) Backward(x, out, grad *etensor.Float32) *etensor.Float32 {
	down := etensor.NewFloat32(grad.Shp, nil, nil)
	for i, g := range grad.Values {
		t := 1 - math32.Abs(x.Values[i])/tr.Width
		if t > 0 {
			down.Values[i] = g * t / tr.Width
		}
	}
	return down
}

// ATan uses the derivative of a scaled arc-tangent as its backward rule:
// grad * Alpha / (2 * (1 + (Pi*Alpha*x/2)^2)).
type ATan struct {

	// steepness of the surrogate around the firing threshold
	Alpha float32 `def:"2"`
}

func (at *ATan) Defaults() {
	at.Alpha = 2
}

func (at *ATan) Forward(x *etensor.Float32) *etensor.Float32 {
	return step(x)
}

func (at *ATan) Backward(x, out, grad *etensor.Float32) *etensor.Float32 {
	down := etensor.NewFloat32(grad.Shp, nil, nil)
	for i, g := range grad.Values {
		s := math32.Pi * at.Alpha * x.Values[i] / 2
		down.Values[i] = g * at.Alpha / (2 * (1 + s*s))
	}
	return down
}
