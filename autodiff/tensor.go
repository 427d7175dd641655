// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package autodiff provides a minimal reverse-mode gradient engine over
etensor.Float32 tensors.

It implements only the operations that the spiking-neuron mechanisms in this
repository require: element-wise subtract and multiply (with trailing-dim
broadcasting so scalar or per-unit parameters combine with batched inputs),
and application of a custom forward / backward Function pair for
non-differentiable ops such as the spike step function.  Each operation is
recorded as a node in a graph; Backward walks the graph in reverse
topological order and accumulates gradients into the leaves that require
them (the learnable parameters).
*/
package autodiff

import "github.com/emer/etable/v2/etensor"

// Tensor is a float32 tensor with an optional gradient and a record of the
// operation that produced it.  Leaf tensors (inputs, parameters, buffers)
// have a nil op.  Only leaves with RequiresGrad set, and the interior nodes
// connecting them to the Backward root, accumulate gradients.
type Tensor struct {

	// the tensor values
	Data *etensor.Float32

	// accumulated gradient with respect to this tensor -- lazily allocated
	// during Backward, and only for tensors that need it
	Grad *etensor.Float32

	// whether this leaf accumulates gradients (learnable parameter)
	requiresGrad bool

	// operation that produced this tensor -- nil for leaves
	op op
}

// op is one recorded operation in the computation graph.
type op interface {
	// inputs are the operand tensors of this operation
	inputs() []*Tensor

	// back propagates out.Grad into the gradients of the inputs
	back(out *Tensor)
}

// New returns a new leaf tensor of the given shape, copying vals into it.
// vals may be shorter than the shape length, in which case the remainder
// is zero.
func New(shape []int, vals []float32) *Tensor {
	t := &Tensor{Data: etensor.NewFloat32(shape, nil, nil)}
	copy(t.Data.Values, vals)
	return t
}

// Scalar returns a new single-element leaf tensor holding val.
func Scalar(val float32) *Tensor {
	return New([]int{1}, []float32{val})
}

// Zeros returns a new zero-valued leaf tensor of the given shape.
func Zeros(shape []int) *Tensor {
	return &Tensor{Data: etensor.NewFloat32(shape, nil, nil)}
}

// ZerosLike returns a new zero-valued leaf tensor shaped like ref.
// The allocation is always fresh -- the result never aliases ref.
func ZerosLike(ref *Tensor) *Tensor {
	return Zeros(ref.Data.Shp)
}

// Values returns the raw value slice -- shared, not copied.
func (t *Tensor) Values() []float32 {
	return t.Data.Values
}

// Len returns the total number of elements.
func (t *Tensor) Len() int {
	return t.Data.Len()
}

// SetRequiresGrad sets whether this tensor accumulates gradients during
// Backward.  Learnable parameters set this; fixed buffers do not.
func (t *Tensor) SetRequiresGrad(rg bool) *Tensor {
	t.requiresGrad = rg
	return t
}

// RequiresGrad returns whether this tensor accumulates gradients.
func (t *Tensor) RequiresGrad() bool {
	return t.requiresGrad
}

// needsGrad is true if a gradient must be computed for this tensor during
// Backward: either it is a parameter leaf, or an interior node that
// gradients flow through.
func (t *Tensor) needsGrad() bool {
	return t.requiresGrad || t.op != nil
}

// Detach removes this tensor from the computation graph in place: the
// producing operation, any accumulated gradient, and the requires-grad flag
// are all dropped.  The values are unchanged.  Used for truncating
// backpropagation through time on hidden state tensors.
func (t *Tensor) Detach() {
	t.op = nil
	t.Grad = nil
	t.requiresGrad = false
}

// Detached returns a new leaf tensor with a copy of this tensor's values
// and no gradient history.  Backpropagating through the result contributes
// nothing to any upstream tensor.
func (t *Tensor) Detached() *Tensor {
	return New(t.Data.Shp, t.Data.Values)
}

// ZeroGrad drops any accumulated gradient, e.g. between optimizer steps.
func (t *Tensor) ZeroGrad() {
	t.Grad = nil
}

// accumGrad adds g element-wise into t.Grad, allocating it on first use.
// g must have the same length as t.
func (t *Tensor) accumGrad(g []float32) {
	if t.Grad == nil {
		t.Grad = etensor.NewFloat32(t.Data.Shp, nil, nil)
	}
	gv := t.Grad.Values
	for i := range g {
		gv[i] += g[i]
	}
}

// Backward computes gradients of this tensor with respect to every tensor
// in its graph that requires them, seeding with a gradient of ones.
// Gradients accumulate: call ZeroGrad on parameters between passes.
func (t *Tensor) Backward() {
	var order []*Tensor
	visited := map[*Tensor]bool{}
	var visit func(n *Tensor)
	visit = func(n *Tensor) {
		if visited[n] {
			return
		}
		visited[n] = true
		if n.op != nil {
			for _, in := range n.op.inputs() {
				visit(in)
			}
		}
		order = append(order, n)
	}
	visit(t)

	ones := make([]float32, t.Len())
	for i := range ones {
		ones[i] = 1
	}
	t.accumGrad(ones)

	for i := len(order) - 1; i >= 0; i-- {
		n := order[i]
		if n.op != nil && n.Grad != nil {
			n.op.back(n)
		}
	}
}
