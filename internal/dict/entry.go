// Copyright 2024 The Godis Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dict

// Entry is a live key/value pair owned by a dictionary. It doubles as the
// node of the singly-linked bucket chain it belongs to, the same way
// container/list.Element is both the public handle and the internal node.
//
// A retained Entry (returned from EntryDelete with retain=true) is owned by
// the caller and must be released with EntryFree before the dictionary is
// destroyed.
type Entry struct {
	key   any
	value any
	next  *Entry
}

// Key returns the entry's key.
func (e *Entry) Key() any {
	return e.key
}

// Value returns the entry's value.
func (e *Entry) Value() any {
	return e.value
}
