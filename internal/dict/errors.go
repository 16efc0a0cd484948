// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

import "errors"

var (
	// ErrKeyExists is returned by Add when the key is already present.
	ErrKeyExists = errors.New("dict: key already present")

	// ErrNilEntry is returned by EntryFree when passed a nil entry.
	ErrNilEntry = errors.New("dict: nil entry")

	// ErrExpansionRejected is returned by the internal expansion guard
	// when a rehash is already running, or the active table's current
	// fill already exceeds the requested size. Reachable only through
	// direct misuse of the internal expansion path; the demand-driven
	// expansion rule that drives normal operation never requests a size
	// that could trip it.
	ErrExpansionRejected = errors.New("dict: expansion rejected")
)
