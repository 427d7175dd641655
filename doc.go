// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

/*
Package snn is the overall repository for the core spiking neural network
(SNN) mechanisms implemented in the Go language (golang), supporting
gradient-based optimization of spiking models via surrogate gradients.

This top-level of the repository has no functional code -- everything is
organized into the following sub-repositories:

* snn: the core leaky integrate-and-fire (LIF) neuron base, with spike
firing, winner-take-all inhibition firing, detached reset signals, the
hidden-state placeholder / materialization lifecycle, and the neuron group
registry used for bulk detach / reset across a whole model.

* surrogate: the spike-generation step function and its family of surrogate
gradients.  The forward pass is always the exact Heaviside step; the backward
pass substitutes a hand-specified approximate derivative so the step can
participate in backpropagation.

* autodiff: a minimal reverse-mode gradient engine over etensor.Float32
tensors, providing the subtract / multiply / custom-function operations,
parameter gradient accumulation, and graph detachment that the neuron
mechanisms require.
*/
package snn
