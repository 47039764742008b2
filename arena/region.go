// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arena

import (
	"code.hybscloud.com/atomix"
	"code.hybscloud.com/spin"
)

const defaultMaxRegions = 1024

// Handle is an index-based reference into a Region arena, carrying the
// epoch that was current when it was allocated. A later Get validates
// the epoch and returns ErrStaleHandle instead of silently handing
// back memory that belongs to a newer generation — this replaces the
// "caller is responsible for use-after-reset" contract of the
// allocator this type is grounded on with a checked one.
type Handle struct {
	index uint64
	epoch uint64
}

// Index is the logical allocation index the handle refers to.
func (h Handle) Index() uint64 { return h.index }

type region[T any] struct {
	data  []T
	epoch atomix.Uint64
}

// Region is a segmented arena: an ordered sequence of fixed-capacity
// regions, allocated lazily, with an epoch counter that lets Reset
// invalidate every outstanding allocation in O(1).
//
// Logical index i lives in region i/regionCapacity at offset
// i%regionCapacity. Reset never touches region memory directly; a
// region whose stored epoch has fallen behind the arena's current
// epoch is zeroed the first time Alloc touches it again.
type Region[T any] struct {
	regionCapacity uint64
	maxRegions     uint64

	regionsInUse atomix.Uint64
	count        atomix.Uint64
	currentEpoch atomix.Uint64

	regions []*region[T]
}

// NewRegion creates a Region arena. regionCapacity is the number of
// elements per region; maxRegions bounds the indirection table (0
// defaults to 1024, giving a maximum of regionCapacity*maxRegions live
// allocations per epoch). Region 0 is eagerly allocated.
func NewRegion[T any](regionCapacity int, maxRegions int) *Region[T] {
	if regionCapacity <= 0 {
		panic("arena: regionCapacity must be > 0")
	}
	if maxRegions <= 0 {
		maxRegions = defaultMaxRegions
	}
	r := &Region[T]{
		regionCapacity: uint64(regionCapacity),
		maxRegions:     uint64(maxRegions),
		regions:        make([]*region[T], maxRegions),
	}
	r.regionsInUse.StoreRelaxed(1)
	r.regions[0] = &region[T]{data: make([]T, regionCapacity)}
	return r
}

// MaxAllocations returns regionCapacity * maxRegions, the upper bound
// on live allocations within a single epoch.
func (r *Region[T]) MaxAllocations() uint64 {
	return r.regionCapacity * r.maxRegions
}

// ensureRegion implements the ensure-region protocol: if the region
// already exists, lazily zero it when its stamp is stale; otherwise
// one caller wins a CAS on regionsInUse and allocates it, while every
// other caller busy-waits with a pause hint until it appears.
func (r *Region[T]) ensureRegion(region uint64) {
	if region >= r.maxRegions {
		panic("arena: region index exceeds max_regions")
	}
	used := r.regionsInUse.LoadAcquire()
	if region < used {
		cur := r.currentEpoch.LoadAcquire()
		rg := r.regions[region]
		if rg.epoch.LoadAcquire() != cur {
			rg.epoch.StoreRelease(cur)
			var zero T
			for i := range rg.data {
				rg.data[i] = zero
			}
		}
		return
	}

	if r.regionsInUse.CompareAndSwapAcqRel(used, region+1) {
		newRg := &region[T]{data: make([]T, r.regionCapacity)}
		newRg.epoch.StoreRelease(r.currentEpoch.LoadAcquire())
		r.regions[region] = newRg
		return
	}

	sw := spin.Wait{}
	for r.regionsInUse.LoadAcquire() <= region {
		sw.Once()
	}
}

// Alloc reserves space for one element and returns a Handle plus a
// pointer to its (zero-initialized, per the current epoch) storage.
func (r *Region[T]) Alloc() (Handle, *T) {
	count := r.count.AddAcqRel(1) - 1
	region := count / r.regionCapacity
	offset := count % r.regionCapacity
	r.ensureRegion(region)
	epoch := r.currentEpoch.LoadAcquire()
	return Handle{index: count, epoch: epoch}, &r.regions[region].data[offset]
}

// Add copies val into the next available slot.
func (r *Region[T]) Add(val *T) Handle {
	h, ptr := r.Alloc()
	*ptr = *val
	return h
}

// Get returns a pointer to the element the handle refers to, or
// ErrStaleHandle if the arena has since been Reset past the handle's
// epoch.
func (r *Region[T]) Get(h Handle) (*T, error) {
	if h.epoch != r.currentEpoch.LoadAcquire() {
		return nil, ErrStaleHandle
	}
	count := r.count.LoadAcquire()
	if h.index >= count || count == 0 {
		return nil, ErrStaleHandle
	}
	region := h.index / r.regionCapacity
	offset := h.index % r.regionCapacity
	return &r.regions[region].data[offset], nil
}

// GetLast returns a pointer to the most recently allocated element, or
// nil if the arena is empty in the current epoch.
func (r *Region[T]) GetLast() *T {
	count := r.count.LoadAcquire()
	if count == 0 {
		return nil
	}
	count--
	region := count / r.regionCapacity
	offset := count % r.regionCapacity
	return &r.regions[region].data[offset]
}

// Epoch returns the arena's current epoch.
func (r *Region[T]) Epoch() uint64 {
	return r.currentEpoch.LoadAcquire()
}

// RegionsInUse returns the number of regions currently allocated.
func (r *Region[T]) RegionsInUse() uint64 {
	return r.regionsInUse.LoadAcquire()
}

// Reset is O(1): it bumps the epoch and zeroes the logical count.
// Region memory is left untouched; each region is lazily zeroed the
// next time Alloc touches it and observes a stale stamp. Every
// Handle issued before Reset becomes stale immediately.
func (r *Region[T]) Reset() {
	r.currentEpoch.AddAcqRel(1)
	r.count.StoreRelease(0)
}

// Free releases all region memory. The arena is unusable afterward.
func (r *Region[T]) Free() {
	used := r.regionsInUse.LoadAcquire()
	for i := uint64(0); i < used; i++ {
		r.regions[i] = nil
	}
	r.regions = nil
	r.count.StoreRelease(0)
}
