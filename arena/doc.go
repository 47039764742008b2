// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

// Package arena provides two bump-style allocators for transient,
// trivially-copyable values: [Flat], a single contiguous buffer with
// FIXED or DYNAMIC growth, and [Region], a segmented arena with
// epoch-based bulk reset used as the job scheduler's storage.
//
// Neither arena supports per-element free. Flat grows or rejects on
// overflow; Region never grows past its region table and instead
// recycles storage generationally: Reset bumps an epoch in O(1), and
// any region whose stamp falls behind the current epoch is lazily
// zeroed the next time something touches it.
//
// References returned by Alloc/Get/GetLast on a Region are only valid
// for the epoch that was current at allocation time. [Handle] captures
// that epoch so a later Get can detect and reject a stale reference,
// instead of silently handing back memory that belongs to a newer
// generation.
package arena
