// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package snn provides the leaky integrate-and-fire (LIF) neuron base that all
spiking neuron models build on.

The base owns the decay and threshold parameters (learnable or fixed), the
reset-mechanism policy, and the neuron-level operations: Fire computes the
spike output from a membrane potential via the configured surrogate step
function, FireInhibition adds winner-take-all inhibition across each batch
sample, and MemReset computes the detached reset signal.  The hidden-state
placeholder / materialization lifecycle and the Group registry for bulk
operations across a whole model live here as well.

Specific neuron models supply their own recurrence arithmetic: they accept
placeholder states at construction, Materialize them on the first real
input, call Fire (or FireInhibition) each step, and use MemReset together
with the stored reset mechanism to update their membrane state.
*/
package snn

import (
	"fmt"

	"github.com/emer/snn/autodiff"
	"github.com/emer/snn/surrogate"
	"github.com/goki/ki/kit"
)

// ResetMechanism is the policy for how a neuron's membrane potential
// changes immediately after firing.  The base only validates and stores
// the policy; enacting it belongs to each neuron model's recurrence.
type ResetMechanism int

//go:generate stringer -type=ResetMechanism

var KiT_ResetMechanism = kit.Enums.AddEnum(ResetMechanismN, kit.NotBitFlag, nil)

func (ev ResetMechanism) MarshalJSON() ([]byte, error)  { return kit.EnumMarshalJSON(ev) }
func (ev *ResetMechanism) UnmarshalJSON(b []byte) error { return kit.EnumUnmarshalJSON(ev, b) }

// The reset mechanisms
const (
	// ResetSubtract subtracts the threshold from the membrane potential
	// on spike
	ResetSubtract ResetMechanism = iota

	// ResetZero sets the membrane potential to zero on spike
	ResetZero

	ResetMechanismN
)

// Config is the construction-time configuration for a LIF neuron.
// Decay and Thr may be scalar (single-element) or per-unit tensors.
type Config struct {

	// membrane decay rate -- required
	Decay *autodiff.Tensor

	// firing threshold -- nil gets the default of 1
	Thr *autodiff.Tensor

	// substitute spike function -- nil gets the default surrogate.Heaviside
	SpikeFn autodiff.Function

	// learn the decay rate -- registers it as a parameter receiving gradients
	LearnDecay bool

	// learn the firing threshold -- registers it as a parameter receiving gradients
	LearnThr bool

	// post-spike membrane reset policy
	ResetMech ResetMechanism

	// neuron model owns its hidden state -- stored for the model's use, not interpreted here
	InitHidden bool

	// apply winner-take-all inhibition each step -- stored for the model's use, not interpreted here
	Inhibition bool

	// neuron model returns its raw membrane potential along with the spike -- stored for the model's use, not interpreted here
	Output bool
}

func (cf *Config) Defaults() {
	cf.Thr = autodiff.Scalar(1)
	cf.ResetMech = ResetSubtract
}

// LIF is the leaky integrate-and-fire neuron base.  Construct with NewLIF.
type LIF struct {

	// membrane decay rate, scalar or per-unit
	Decay *autodiff.Tensor

	// firing threshold, scalar or per-unit
	Thr *autodiff.Tensor

	// spike function applied to (membrane - threshold)
	SpikeFn autodiff.Function

	// post-spike membrane reset policy, validated at construction
	ResetMech ResetMechanism

	// see Config -- stored for neuron models, not interpreted here
	InitHidden bool

	// see Config -- stored for neuron models, not interpreted here
	Inhibition bool

	// see Config -- stored for neuron models, not interpreted here
	Output bool

	params  map[string]*autodiff.Tensor
	buffers map[string]*autodiff.Tensor
}

// NewLIF constructs a LIF neuron base from cfg, validates the reset
// mechanism, and appends it to group g (in construction order) unless g is
// nil.  A failed construction is never registered.
func NewLIF(g *Group, cfg Config) (*LIF, error) {
	if cfg.ResetMech < 0 || cfg.ResetMech >= ResetMechanismN {
		return nil, fmt.Errorf("snn.NewLIF: reset mechanism must be ResetSubtract or ResetZero, got %d", cfg.ResetMech)
	}
	if cfg.Decay == nil {
		return nil, fmt.Errorf("snn.NewLIF: decay parameter is required")
	}
	lf := &LIF{
		Decay:      cfg.Decay,
		Thr:        cfg.Thr,
		SpikeFn:    cfg.SpikeFn,
		ResetMech:  cfg.ResetMech,
		InitHidden: cfg.InitHidden,
		Inhibition: cfg.Inhibition,
		Output:     cfg.Output,
		params:     map[string]*autodiff.Tensor{},
		buffers:    map[string]*autodiff.Tensor{},
	}
	if lf.Thr == nil {
		lf.Thr = autodiff.Scalar(1)
	}
	if lf.SpikeFn == nil {
		lf.SpikeFn = surrogate.Heaviside{}
	}
	lf.register("decay", lf.Decay, cfg.LearnDecay)
	lf.register("thr", lf.Thr, cfg.LearnThr)
	if g != nil {
		g.add(lf)
	}
	return lf, nil
}

// register records a tensor as a learnable parameter or a fixed buffer.
func (lf *LIF) register(name string, t *autodiff.Tensor, learn bool) {
	t.SetRequiresGrad(learn)
	if learn {
		lf.params[name] = t
	} else {
		lf.buffers[name] = t
	}
}

// Params returns the learnable parameters by name -- the tensors that
// accumulate gradients and that an optimizer should update.
func (lf *LIF) Params() map[string]*autodiff.Tensor {
	return lf.params
}

// Buffers returns the fixed (non-learnable) tensors by name -- they move
// with the neuron but receive no gradients.
func (lf *LIF) Buffers() map[string]*autodiff.Tensor {
	return lf.buffers
}

// Fire generates the spike output for the given membrane potential:
// the configured spike function applied to (mem - Thr).  The result has
// the same shape as mem, with entries exactly 0 or 1.
func (lf *LIF) Fire(mem *autodiff.Tensor) *autodiff.Tensor {
	shifted := autodiff.Sub(mem, lf.Thr)
	return autodiff.Apply(lf.SpikeFn, shifted)
}

// FireInhibition generates spikes with winner-take-all inhibition: for each
// of the batchSize samples (rows) independently, only the unit with the
// largest (mem - Thr) margin may spike -- and only if its tentative spike
// under the step rule was nonzero -- while every other unit is held at
// exactly 0 for that step.  Ties go to the first (lowest-index) unit.
// The argmax selection uses the shifted membrane values, never the
// post-step spikes.
func (lf *LIF) FireInhibition(batchSize int, mem *autodiff.Tensor) *autodiff.Tensor {
	shifted := autodiff.Sub(mem, lf.Thr)
	spk := autodiff.Apply(lf.SpikeFn, shifted)

	nun := shifted.Len() / batchSize
	mask := autodiff.ZerosLike(shifted)
	sv := shifted.Values()
	mv := mask.Values()
	for bi := 0; bi < batchSize; bi++ {
		ri := bi * nun
		mxi := 0
		for ui := 1; ui < nun; ui++ {
			if sv[ri+ui] > sv[ri+mxi] {
				mxi = ui
			}
		}
		mv[ri+mxi] = 1
	}
	return autodiff.Mul(spk, mask)
}

// MemReset generates the reset signal for the given membrane potential:
// numerically identical to Fire, but detached from the computation graph.
// The reset decision selects a branch (subtract vs. zero) in the caller's
// recurrence -- it must never carry a gradient path, and callers rely on
// that.
func (lf *LIF) MemReset(mem *autodiff.Tensor) *autodiff.Tensor {
	shifted := autodiff.Sub(mem, lf.Thr)
	return autodiff.Apply(lf.SpikeFn, shifted).Detached()
}
