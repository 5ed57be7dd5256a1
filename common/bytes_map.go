// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package common

import (
	"bytes"
	"unsafe"

	"golang.org/x/exp/slices"
)

// BytesMap associates byte-sequence keys to values. Key equality is full
// content comparison, not slice identity. It serves as an in-process index
// avoiding repeated round-trips to the host store within one execution.
//
// The layout is a flat pair of slices scanned linearly, newest entry first,
// with a one-element cache of the last matched position. Contract workloads
// look the same few keys up over and over, which makes the repeated lookup
// O(1) while keeping the structure allocation-free on the read path.
type BytesMap[V any] struct {
	keys    [][]byte
	values  []V
	lastHit int // position of the most recently matched key, -1 when unknown
}

// NewBytesMap creates an empty map.
func NewBytesMap[V any]() *BytesMap[V] {
	return &BytesMap[V]{lastHit: -1}
}

// Get returns the value stored for the key, or false if the key is not present.
func (m *BytesMap[V]) Get(key []byte) (val V, exists bool) {
	if i := m.find(key); i >= 0 {
		return m.values[i], true
	}
	return
}

// Set associates the key with the value, replacing any previous association.
// The key content is copied, so the caller may reuse its buffer.
func (m *BytesMap[V]) Set(key []byte, val V) {
	if i := m.find(key); i >= 0 {
		m.values[i] = val
		return
	}
	m.keys = append(m.keys, slices.Clone(key))
	m.values = append(m.values, val)
	m.lastHit = len(m.keys) - 1
}

// Has returns true if the key is present.
func (m *BytesMap[V]) Has(key []byte) bool {
	return m.find(key) >= 0
}

// Delete removes the key, reporting whether it was present. The removal
// swaps the last entry into the vacated position, so iteration order is
// not preserved.
func (m *BytesMap[V]) Delete(key []byte) bool {
	i := m.find(key)
	if i < 0 {
		return false
	}
	last := len(m.keys) - 1
	m.keys[i] = m.keys[last]
	m.values[i] = m.values[last]
	m.keys[last] = nil
	var zero V
	m.values[last] = zero
	m.keys = m.keys[:last]
	m.values = m.values[:last]
	m.lastHit = -1
	return true
}

// Clear removes all entries while keeping the allocated capacity.
func (m *BytesMap[V]) Clear() {
	for i := range m.keys {
		m.keys[i] = nil
	}
	var zero V
	for i := range m.values {
		m.values[i] = zero
	}
	m.keys = m.keys[:0]
	m.values = m.values[:0]
	m.lastHit = -1
}

// Size returns the number of stored entries.
func (m *BytesMap[V]) Size() int {
	return len(m.keys)
}

// ForEach calls the callback for each stored key/value pair. The key slice
// must not be modified by the callback.
func (m *BytesMap[V]) ForEach(callback func([]byte, V)) {
	for i := range m.keys {
		callback(m.keys[i], m.values[i])
	}
}

// find locates the key, scanning newest-first after consulting the last-hit
// position. It returns the index of the entry or -1.
func (m *BytesMap[V]) find(key []byte) int {
	if m.lastHit >= 0 && m.lastHit < len(m.keys) && bytes.Equal(m.keys[m.lastHit], key) {
		return m.lastHit
	}
	for i := len(m.keys) - 1; i >= 0; i-- {
		if bytes.Equal(m.keys[i], key) {
			m.lastHit = i
			return i
		}
	}
	return -1
}

// GetMemoryFootprint provides the size of the map in memory in bytes
func (m *BytesMap[V]) GetMemoryFootprint() *MemoryFootprint {
	size := unsafe.Sizeof(*m)
	var v V
	for i := range m.keys {
		size += unsafe.Sizeof(m.keys[i]) + uintptr(cap(m.keys[i]))
		size += unsafe.Sizeof(v)
	}
	return NewMemoryFootprint(size)
}
