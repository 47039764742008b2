// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arena_test

import (
	"testing"

	"github.com/korrelane/corelane/arena"
)

func TestFlatAddGet(t *testing.T) {
	a := arena.NewFlat[int](4, arena.Dynamic)
	for i := range 4 {
		v := i + 10
		if err := a.Add(&v); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
	}
	for i := range 4 {
		got := a.Get(i)
		if got == nil || *got != i+10 {
			t.Fatalf("Get(%d): got %v, want %d", i, got, i+10)
		}
	}
	if got := a.Get(4); got != nil {
		t.Fatalf("Get(4) out of bounds: got %v, want nil", got)
	}
}

func TestFlatDynamicGrows(t *testing.T) {
	a := arena.NewFlat[int](2, arena.Dynamic)
	for i := range 20 {
		v := i
		if err := a.Add(&v); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
	}
	if a.Cap() < 20 {
		t.Fatalf("Cap: got %d, want >= 20", a.Cap())
	}
	for i := range 20 {
		got := a.Get(i)
		if got == nil || *got != i {
			t.Fatalf("Get(%d): got %v, want %d", i, got, i)
		}
	}
}

func TestFlatFixedOverflowReturnsError(t *testing.T) {
	a := arena.NewFlat[int](4, arena.Fixed)
	for i := range 4 {
		v := i
		if err := a.Add(&v); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
	}
	v := 999
	if err := a.Add(&v); !arena.IsOverflow(err) {
		t.Fatalf("Add on full FIXED arena: got %v, want ErrOverflow", err)
	}
	// The original allocator this is grounded on silently resets the
	// whole arena on FIXED overflow; this one must not lose data.
	if got := a.Get(0); got == nil || *got != 0 {
		t.Fatalf("FIXED overflow must not reset existing data: got %v", got)
	}
}

func TestFlatPopAndGetLast(t *testing.T) {
	a := arena.NewFlat[int](4, arena.Fixed)
	for i := range 3 {
		v := i
		if err := a.Add(&v); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
	}
	if got := a.GetLast(); got == nil || *got != 2 {
		t.Fatalf("GetLast: got %v, want 2", got)
	}
	v, ok := a.Pop()
	if !ok || v != 2 {
		t.Fatalf("Pop: got (%d, %v), want (2, true)", v, ok)
	}
	if got := a.GetLast(); got == nil || *got != 1 {
		t.Fatalf("GetLast after pop: got %v, want 1", got)
	}
}

func TestFlatReset(t *testing.T) {
	a := arena.NewFlat[int](4, arena.Fixed)
	for i := range 4 {
		v := i + 1
		if err := a.Add(&v); err != nil {
			t.Fatalf("Add(%d): %v", i, err)
		}
	}
	a.Reset()
	if a.Len() != 0 {
		t.Fatalf("Len after Reset: got %d, want 0", a.Len())
	}
	v := 7
	if err := a.Add(&v); err != nil {
		t.Fatalf("Add after Reset: %v", err)
	}
	if got := a.Get(0); got == nil || *got != 7 {
		t.Fatalf("Get(0) after Reset: got %v, want 7", got)
	}
}
