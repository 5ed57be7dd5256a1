// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package memory

import (
	"unsafe"

	"github.com/Fantom-foundation/Strata/common"
)

// Store is an in-memory slots.Store implementation. It is the reference
// model of the host collaborator and the default backend in tests.
type Store struct {
	data map[common.Pointer]common.Slot
}

// NewStore constructs a new empty in-memory store.
func NewStore() *Store {
	return &Store{
		data: map[common.Pointer]common.Slot{},
	}
}

// Get returns the slot under the pointer, or the zero slot if not set.
func (s *Store) Get(p common.Pointer) (common.Slot, error) {
	return s.data[p], nil
}

// Set stores the slot under the pointer. The zero slot releases the entry,
// keeping absence and the default value indistinguishable.
func (s *Store) Set(p common.Pointer, v common.Slot) error {
	if v.IsZero() {
		delete(s.data, p)
		return nil
	}
	s.data[p] = v
	return nil
}

// Size returns the number of non-zero slots held.
func (s *Store) Size() int {
	return len(s.data)
}

// Flush the store
func (s *Store) Flush() error {
	return nil // no-op for in-memory store
}

// Close the store
func (s *Store) Close() error {
	return nil // no-op for in-memory store
}

// GetMemoryFootprint provides the size of the store in memory in bytes
func (s *Store) GetMemoryFootprint() *common.MemoryFootprint {
	var p common.Pointer
	var v common.Slot
	size := unsafe.Sizeof(*s) + uintptr(len(s.data))*(unsafe.Sizeof(p)+unsafe.Sizeof(v))
	return common.NewMemoryFootprint(size)
}
