// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import "github.com/emer/snn/autodiff"

// Group is an explicit registry of live neuron instances, used for bulk
// hidden-state operations across an entire model without holding individual
// references.  The caller constructs one Group per model and passes it to
// every NewLIF; construction is the only thing that appends to it, and
// Clear is the only thing that removes from it.  Mutation is expected from
// a single control thread (the model-construction / training-step driver);
// do not Clear concurrently with forward / backward passes on live
// instances.
type Group struct {

	// all registered neurons in construction order
	neurons []*LIF
}

// NewGroup returns a new empty neuron group.
func NewGroup() *Group {
	return &Group{}
}

// add appends a neuron -- called by NewLIF after successful construction.
func (g *Group) add(lf *LIF) {
	g.neurons = append(g.neurons, lf)
}

// N returns the number of registered neurons.
func (g *Group) N() int {
	return len(g.neurons)
}

// Neurons returns the registered neurons in construction order -- shared,
// not copied.
func (g *Group) Neurons() []*LIF {
	return g.neurons
}

// Clear empties the registry entirely.  Call when starting a fresh model
// build so stale neuron references from a previous model do not linger.
func (g *Group) Clear() {
	g.neurons = nil
}

// DetachAll detaches each given hidden-state tensor from the computation
// graph in place, for truncated backpropagation through time.  The caller
// collects the states, typically from the models registered in a Group.
func DetachAll(states ...*autodiff.Tensor) {
	for _, st := range states {
		st.Detach()
	}
}

// ZeroAll resets each given hidden-state tensor in place: values are set to
// zero and any gradient history is dropped, so the next step starts from a
// clean state.  The in-place contract makes it effective on states the
// caller continues to hold, symmetric with DetachAll.
func ZeroAll(states ...*autodiff.Tensor) {
	for _, st := range states {
		st.Data.SetZeros()
		st.Detach()
	}
}
