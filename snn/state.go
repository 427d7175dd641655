// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import "github.com/emer/snn/autodiff"

// State is one hidden-state variable of a neuron model (e.g. a membrane
// potential, or a synaptic current).  It starts as an unmaterialized
// placeholder -- shape unknown, not backed by any data -- so a model can be
// constructed before the batch size or feature shape is known, and becomes
// materialized exactly once, on the first recurrence step, when a real
// input tensor supplies the shape.  A State is either fully unmaterialized
// or fully materialized; there is no partial state.
type State struct {

	// the materialized state tensor -- nil while unmaterialized
	tsr *autodiff.Tensor
}

// InitLeaky returns the placeholder state for a neuron model tracking only
// a membrane potential.
func InitLeaky() *State {
	return &State{}
}

// InitSynaptic returns the placeholder states for a neuron model tracking a
// synaptic current and a membrane potential.
func InitSynaptic() (syn, mem *State) {
	return &State{}, &State{}
}

// InitAlpha returns the placeholder states for a neuron model tracking
// excitatory and inhibitory synaptic currents and a membrane potential.
func InitAlpha() (synExc, synInh, mem *State) {
	return &State{}, &State{}, &State{}
}

// Materialized returns whether this state is backed by a real tensor.
func (s *State) Materialized() bool {
	return s.tsr != nil
}

// Tensor returns the materialized state tensor, nil if unmaterialized.
func (s *State) Tensor() *autodiff.Tensor {
	return s.tsr
}

// Materialize backs the state with a freshly allocated zero tensor shaped
// like ref, with gradient tracking enabled, and returns it.  The placeholder
// carries no data, so this is pure allocation: calling it again simply
// allocates fresh zeros, though a model normally calls it only once, on its
// first real input.  The returned tensor never aliases ref or any other
// state.  Thereafter the calling recurrence owns the tensor and threads it
// through subsequent steps.
func (s *State) Materialize(ref *autodiff.Tensor) *autodiff.Tensor {
	s.tsr = autodiff.ZerosLike(ref).SetRequiresGrad(true)
	return s.tsr
}

// MaterializeAll materializes each state against ref, returning the new
// tensors in the same order.  Each is an independent allocation.
func MaterializeAll(ref *autodiff.Tensor, states ...*State) []*autodiff.Tensor {
	tsrs := make([]*autodiff.Tensor, len(states))
	for i, st := range states {
		tsrs[i] = st.Materialize(ref)
	}
	return tsrs
}
