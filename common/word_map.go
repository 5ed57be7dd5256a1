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
	"unsafe"

	"github.com/holiman/uint256"
)

// WordMap associates 256-bit integer keys to values. It follows the same
// discipline as BytesMap: linear scan newest-first, a one-element last-hit
// cache, and swap-with-last removal. Keys of this width are typically slot
// pointers or account words, so the map doubles as a read cache in front of
// the host store.
type WordMap[V any] struct {
	keys    []uint256.Int
	values  []V
	lastHit int // position of the most recently matched key, -1 when unknown
}

// NewWordMap creates an empty map.
func NewWordMap[V any]() *WordMap[V] {
	return &WordMap[V]{lastHit: -1}
}

// Get returns the value stored for the key, or false if the key is not present.
func (m *WordMap[V]) Get(key *uint256.Int) (val V, exists bool) {
	if i := m.find(key); i >= 0 {
		return m.values[i], true
	}
	return
}

// Set associates the key with the value, replacing any previous association.
func (m *WordMap[V]) Set(key *uint256.Int, val V) {
	if i := m.find(key); i >= 0 {
		m.values[i] = val
		return
	}
	m.keys = append(m.keys, *key)
	m.values = append(m.values, val)
	m.lastHit = len(m.keys) - 1
}

// Has returns true if the key is present.
func (m *WordMap[V]) Has(key *uint256.Int) bool {
	return m.find(key) >= 0
}

// Delete removes the key, reporting whether it was present. The removal
// swaps the last entry into the vacated position; iteration order is not
// preserved.
func (m *WordMap[V]) Delete(key *uint256.Int) bool {
	i := m.find(key)
	if i < 0 {
		return false
	}
	last := len(m.keys) - 1
	m.keys[i] = m.keys[last]
	m.values[i] = m.values[last]
	var zero V
	m.values[last] = zero
	m.keys = m.keys[:last]
	m.values = m.values[:last]
	m.lastHit = -1
	return true
}

// Clear removes all entries while keeping the allocated capacity.
func (m *WordMap[V]) Clear() {
	var zero V
	for i := range m.values {
		m.values[i] = zero
	}
	m.keys = m.keys[:0]
	m.values = m.values[:0]
	m.lastHit = -1
}

// Size returns the number of stored entries.
func (m *WordMap[V]) Size() int {
	return len(m.keys)
}

// ForEach calls the callback for each stored key/value pair.
func (m *WordMap[V]) ForEach(callback func(*uint256.Int, V)) {
	for i := range m.keys {
		callback(&m.keys[i], m.values[i])
	}
}

func (m *WordMap[V]) find(key *uint256.Int) int {
	if m.lastHit >= 0 && m.lastHit < len(m.keys) && m.keys[m.lastHit].Eq(key) {
		return m.lastHit
	}
	for i := len(m.keys) - 1; i >= 0; i-- {
		if m.keys[i].Eq(key) {
			m.lastHit = i
			return i
		}
	}
	return -1
}

// GetMemoryFootprint provides the size of the map in memory in bytes
func (m *WordMap[V]) GetMemoryFootprint() *MemoryFootprint {
	size := unsafe.Sizeof(*m)
	var key uint256.Int
	var v V
	size += uintptr(cap(m.keys)) * unsafe.Sizeof(key)
	size += uintptr(cap(m.values)) * unsafe.Sizeof(v)
	return NewMemoryFootprint(size)
}
