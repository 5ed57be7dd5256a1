// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package cache

import (
	"unsafe"

	"github.com/Fantom-foundation/Strata/backend/slots"
	"github.com/Fantom-foundation/Strata/common"
	"github.com/holiman/uint256"
)

// Store wraps a slot store with an in-process read cache. Reads consult the
// cache first; writes go through to the wrapped store and update the cache,
// so an invocation observes its own writes without extra host round-trips.
//
// The cache is never invalidated implicitly. A nested call that may have
// mutated storage underneath must be followed by Invalidate(), otherwise
// reads can return stale data. Each invalidation bumps a generation counter
// so callers can assert they are not holding values across a boundary.
type Store struct {
	nested     slots.Store
	cache      *common.WordMap[common.Slot]
	generation uint64
}

// NewStore creates a read-caching wrapper around the given store.
func NewStore(nested slots.Store) *Store {
	return &Store{
		nested: nested,
		cache:  common.NewWordMap[common.Slot](),
	}
}

// Get returns the slot under the pointer, serving repeated reads from the cache.
func (s *Store) Get(p common.Pointer) (common.Slot, error) {
	key := new(uint256.Int).SetBytes(p[:])
	if v, exists := s.cache.Get(key); exists {
		return v, nil
	}
	v, err := s.nested.Get(p)
	if err != nil {
		return common.Slot{}, err
	}
	s.cache.Set(key, v)
	return v, nil
}

// Set writes the slot through to the wrapped store and refreshes the cache.
func (s *Store) Set(p common.Pointer, v common.Slot) error {
	if err := s.nested.Set(p, v); err != nil {
		return err
	}
	s.cache.Set(new(uint256.Int).SetBytes(p[:]), v)
	return nil
}

// Invalidate drops all cached reads. It is the hook for call boundaries
// after which storage may have been mutated by a nested invocation.
func (s *Store) Invalidate() {
	s.cache.Clear()
	s.generation++
}

// Generation returns the number of invalidations performed so far.
func (s *Store) Generation() uint64 {
	return s.generation
}

// Flush the store
func (s *Store) Flush() error {
	return s.nested.Flush()
}

// Close the store
func (s *Store) Close() error {
	return s.nested.Close()
}

// GetMemoryFootprint provides the size of the store in memory in bytes
func (s *Store) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*s))
	mf.AddChild("backingStore", s.nested.GetMemoryFootprint())
	mf.AddChild("cache", s.cache.GetMemoryFootprint())
	return mf
}
