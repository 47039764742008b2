// Copyright 2026 The Corelane Authors. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package arena

import "errors"

// ErrOverflow is returned by Flat.Add/Alloc in FIXED mode once the
// buffer is exhausted. Unlike the allocator this module is grounded
// on, overflow never silently resets the arena: the caller owns the
// decision of when and how to recycle storage.
var ErrOverflow = errors.New("arena: fixed capacity exhausted")

// ErrStaleHandle is returned by Region.Get when a Handle's epoch no
// longer matches the arena's current epoch: the generation it pointed
// into has been recycled by Reset.
var ErrStaleHandle = errors.New("arena: handle belongs to a recycled epoch")

// IsOverflow reports whether err is ErrOverflow.
func IsOverflow(err error) bool {
	return errors.Is(err, ErrOverflow)
}

// IsStaleHandle reports whether err is ErrStaleHandle.
func IsStaleHandle(err error) bool {
	return errors.Is(err, ErrStaleHandle)
}
