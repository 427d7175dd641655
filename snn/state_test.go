// Copyright (c) 2024, The Emergent Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package snn

import (
	"testing"

	"github.com/emer/etable/v2/etensor"
	"github.com/emer/snn/autodiff"
)

func TestMaterialize(t *testing.T) {
	mem := InitLeaky()
	if mem.Materialized() {
		t.Fatalf("fresh placeholder reports materialized\n")
	}
	if mem.Tensor() != nil {
		t.Fatalf("fresh placeholder has a tensor\n")
	}

	ref := autodiff.Zeros([]int{4, 10})
	tsr := mem.Materialize(ref)
	if !mem.Materialized() || mem.Tensor() != tsr {
		t.Fatalf("Materialize did not store the tensor\n")
	}
	if !etensor.EqualInts(tsr.Data.Shp, []int{4, 10}) {
		t.Errorf("shape: %v, want [4 10]\n", tsr.Data.Shp)
	}
	for i, v := range tsr.Values() {
		if v != 0 {
			t.Fatalf("nonzero value %v at %v\n", v, i)
		}
	}
	if !tsr.RequiresGrad() {
		t.Errorf("materialized state does not track gradients\n")
	}
}

func TestMaterializeIndependent(t *testing.T) {
	syn, mem := InitSynaptic()
	ref := autodiff.New([]int{2, 3}, []float32{1, 2, 3, 4, 5, 6})
	tsrs := MaterializeAll(ref, syn, mem)
	if len(tsrs) != 2 || tsrs[0] != syn.Tensor() || tsrs[1] != mem.Tensor() {
		t.Fatalf("MaterializeAll order or storage broken\n")
	}
	// fresh zeros: reference values are discarded, not converted
	for _, v := range tsrs[0].Values() {
		if v != 0 {
			t.Fatalf("materialized state copied reference values\n")
		}
	}
	tsrs[0].Values()[0] = 42
	if tsrs[1].Values()[0] != 0 {
		t.Errorf("states alias each other\n")
	}
	if ref.Values()[0] != 1 {
		t.Errorf("state aliases the reference tensor\n")
	}
}

func TestInitAlpha(t *testing.T) {
	synExc, synInh, mem := InitAlpha()
	ref := autodiff.Zeros([]int{5})
	tsrs := MaterializeAll(ref, synExc, synInh, mem)
	if len(tsrs) != 3 {
		t.Fatalf("want 3 states, got %v\n", len(tsrs))
	}
	for i, tsr := range tsrs {
		if tsr.Len() != 5 {
			t.Errorf("state %v len: %v\n", i, tsr.Len())
		}
	}
}

func TestMaterializeFresh(t *testing.T) {
	mem := InitLeaky()
	ref := autodiff.Zeros([]int{3})
	t1 := mem.Materialize(ref)
	t1.Values()[0] = 7
	t2 := mem.Materialize(ref)
	// always allocates fresh zeros
	if t2.Values()[0] != 0 || t1 == t2 {
		t.Errorf("re-materialize did not allocate fresh zeros\n")
	}
	if mem.Tensor() != t2 {
		t.Errorf("state does not hold latest materialization\n")
	}
}
