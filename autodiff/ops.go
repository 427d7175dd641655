// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package autodiff

import "github.com/emer/etable/v2/etensor"

// Function is a forward / backward pair for an operation whose true
// derivative is undefined or unusable, such as the spike step function.
// Forward produces the output tensor; Backward produces the downstream
// gradient given the cached input x, the cached forward output out, and the
// upstream gradient grad.  The cache is explicit: the Apply graph node
// retains both tensors across the forward call, so Backward never
// recomputes the forward pass.
type Function interface {
	// Forward computes the output for input x.
	Forward(x *etensor.Float32) *etensor.Float32

	// Backward computes the gradient flowing to x, given the forward
	// input x, the cached forward output out, and the upstream gradient
	// grad.  All three have the same shape.
	Backward(x, out, grad *etensor.Float32) *etensor.Float32
}

// Broadcasting: for binary ops, the second operand may be a scalar
// (length 1) or a trailing-dims tensor (e.g. per-unit parameters of length
// nunits against a [batch, nunits] input).  Element i of the first operand
// pairs with element i % len(b) of the second, which covers the same-shape,
// scalar, and per-unit cases under row-major layout.  The gradient for the
// broadcast operand sums over the positions it was broadcast to.

// Sub returns a - b element-wise, with b broadcast as described above.
// The result joins the graph if either operand needs gradients.
func Sub(a, b *Tensor) *Tensor {
	av, bv := a.Data.Values, b.Data.Values
	out := Zeros(a.Data.Shp)
	ov := out.Data.Values
	n := len(bv)
	for i := range av {
		ov[i] = av[i] - bv[i%n]
	}
	if a.needsGrad() || b.needsGrad() {
		out.op = &subOp{a: a, b: b}
	}
	return out
}

type subOp struct {
	a, b *Tensor
}

func (o *subOp) inputs() []*Tensor { return []*Tensor{o.a, o.b} }

func (o *subOp) back(out *Tensor) {
	g := out.Grad.Values
	if o.a.needsGrad() {
		o.a.accumGrad(g)
	}
	if o.b.needsGrad() {
		gb := make([]float32, o.b.Len())
		n := len(gb)
		for i := range g {
			gb[i%n] -= g[i]
		}
		o.b.accumGrad(gb)
	}
}

// Mul returns a * b element-wise, with b broadcast as described above.
// The result joins the graph if either operand needs gradients.
func Mul(a, b *Tensor) *Tensor {
	av, bv := a.Data.Values, b.Data.Values
	out := Zeros(a.Data.Shp)
	ov := out.Data.Values
	n := len(bv)
	for i := range av {
		ov[i] = av[i] * bv[i%n]
	}
	if a.needsGrad() || b.needsGrad() {
		out.op = &mulOp{a: a, b: b}
	}
	return out
}

type mulOp struct {
	a, b *Tensor
}

func (o *mulOp) inputs() []*Tensor { return []*Tensor{o.a, o.b} }

func (o *mulOp) back(out *Tensor) {
	g := out.Grad.Values
	av, bv := o.a.Data.Values, o.b.Data.Values
	n := len(bv)
	if o.a.needsGrad() {
		ga := make([]float32, len(av))
		for i := range g {
			ga[i] = g[i] * bv[i%n]
		}
		o.a.accumGrad(ga)
	}
	if o.b.needsGrad() {
		gb := make([]float32, n)
		for i := range g {
			gb[i%n] += g[i] * av[i]
		}
		o.b.accumGrad(gb)
	}
}

// Apply runs the custom Function fn on x and records it in the graph.
// The forward output is cached on the graph node so the backward rule can
// consult it without recomputation.
func Apply(fn Function, x *Tensor) *Tensor {
	out := &Tensor{Data: fn.Forward(x.Data)}
	if x.needsGrad() {
		out.op = &applyOp{fn: fn, x: x}
	}
	return out
}

type applyOp struct {
	fn Function
	x  *Tensor
}

func (o *applyOp) inputs() []*Tensor { return []*Tensor{o.x} }

func (o *applyOp) back(out *Tensor) {
	down := o.fn.Backward(o.x.Data, out.Data, out.Grad)
	o.x.accumGrad(down.Values)
}
