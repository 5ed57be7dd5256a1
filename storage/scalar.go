// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package storage

import (
	"encoding/binary"
	"fmt"
	"unsafe"

	"github.com/Fantom-foundation/Strata/backend/slots"
	"github.com/Fantom-foundation/Strata/common"
)

// ErrCounterRange is returned when a counter mutation would leave uint64 range.
const ErrCounterRange = common.ConstError("counter value out of range")

// Scalar is the set of field types a packed scalar container can hold.
type Scalar interface {
	uint32 | uint64
}

// PackedScalars is a container of N identically-sized numeric fields packed
// into exactly one slot (4 fields of 64 bits or 8 fields of 32 bits).
// Fields are laid out in index order, each big-endian, field 0 first.
//
// The container shadows the slot in memory: the first access of any field
// loads the slot once and unpacks all fields, later accesses cost no host
// round-trip. Mutations only mark the container dirty when the new value
// differs from the cached one, and Save writes the slot back at most once
// per dirty period.
type PackedScalars[T Scalar] struct {
	store  slots.Store
	ptr    common.Pointer
	fields []T
	loaded bool
	dirty  bool
}

// StoredU64 is a container of four 64-bit fields backed by one slot.
type StoredU64 = PackedScalars[uint64]

// StoredU32 is a container of eight 32-bit fields backed by one slot.
type StoredU32 = PackedScalars[uint32]

// NewStoredU64 creates a four-field 64-bit container at the pointer derived
// from the namespace and the (at most 30 byte, zero-padded) sub-key.
func NewStoredU64(store slots.Store, ns common.Namespace, subKey []byte) (*StoredU64, error) {
	return newPackedScalars[uint64](store, ns, subKey)
}

// NewStoredU32 creates an eight-field 32-bit container at the pointer
// derived from the namespace and the (at most 30 byte, zero-padded) sub-key.
func NewStoredU32(store slots.Store, ns common.Namespace, subKey []byte) (*StoredU32, error) {
	return newPackedScalars[uint32](store, ns, subKey)
}

func newPackedScalars[T Scalar](store slots.Store, ns common.Namespace, subKey []byte) (*PackedScalars[T], error) {
	ptr, err := EncodeFixedPadded(ns, subKey)
	if err != nil {
		return nil, err
	}
	var t T
	count := len(common.Slot{}) / int(unsafe.Sizeof(t))
	return &PackedScalars[T]{
		store:  store,
		ptr:    ptr,
		fields: make([]T, count),
	}, nil
}

// Count returns the number of fields held by this container.
func (p *PackedScalars[T]) Count() int {
	return len(p.fields)
}

// Get returns the field at the given index, loading the slot on first access.
func (p *PackedScalars[T]) Get(index int) (T, error) {
	if err := p.load(); err != nil {
		var zero T
		return zero, err
	}
	return p.fields[index], nil
}

// Set updates the field at the given index in the in-memory shadow. The
// container becomes dirty only if the value actually changes; persisting
// requires an explicit Save.
func (p *PackedScalars[T]) Set(index int, value T) error {
	if err := p.load(); err != nil {
		return err
	}
	if p.fields[index] == value {
		return nil
	}
	p.fields[index] = value
	p.dirty = true
	return nil
}

// Save packs all fields and writes the slot back if the container is
// dirty; it is a no-op otherwise.
func (p *PackedScalars[T]) Save() error {
	if !p.dirty {
		return nil
	}
	if err := p.store.Set(p.ptr, p.pack()); err != nil {
		return err
	}
	p.dirty = false
	return nil
}

// Reset zeroes all fields and forces a write on the next Save.
func (p *PackedScalars[T]) Reset() {
	for i := range p.fields {
		p.fields[i] = 0
	}
	p.loaded = true
	p.dirty = true
}

// load fetches the slot and unpacks all fields at once; later field
// accesses are served from memory.
func (p *PackedScalars[T]) load() error {
	if p.loaded {
		return nil
	}
	slot, err := p.store.Get(p.ptr)
	if err != nil {
		return fmt.Errorf("failed to load scalar slot %v; %w", p.ptr, err)
	}
	p.unpack(slot)
	p.loaded = true
	return nil
}

func (p *PackedScalars[T]) pack() common.Slot {
	var slot common.Slot
	var t T
	size := int(unsafe.Sizeof(t))
	for i, v := range p.fields {
		if size == 8 {
			binary.BigEndian.PutUint64(slot[i*size:], uint64(v))
		} else {
			binary.BigEndian.PutUint32(slot[i*size:], uint32(v))
		}
	}
	return slot
}

func (p *PackedScalars[T]) unpack(slot common.Slot) {
	var t T
	size := int(unsafe.Sizeof(t))
	for i := range p.fields {
		if size == 8 {
			p.fields[i] = T(binary.BigEndian.Uint64(slot[i*size:]))
		} else {
			p.fields[i] = T(binary.BigEndian.Uint32(slot[i*size:]))
		}
	}
}

// StoredCounter is a single 64-bit quantity with checked increments,
// stored in the first field of a packed scalar slot.
type StoredCounter struct {
	slot *StoredU64
}

// NewStoredCounter creates a counter at the pointer derived from the
// namespace and the (at most 30 byte, zero-padded) sub-key.
func NewStoredCounter(store slots.Store, ns common.Namespace, subKey []byte) (*StoredCounter, error) {
	slot, err := NewStoredU64(store, ns, subKey)
	if err != nil {
		return nil, err
	}
	return &StoredCounter{slot: slot}, nil
}

// Get returns the current counter value.
func (c *StoredCounter) Get() (uint64, error) {
	return c.slot.Get(0)
}

// Set updates the counter value in the in-memory shadow.
func (c *StoredCounter) Set(value uint64) error {
	return c.slot.Set(0, value)
}

// Increment raises the counter by one, failing loudly instead of wrapping.
func (c *StoredCounter) Increment() (uint64, error) {
	old, err := c.Get()
	if err != nil {
		return 0, err
	}
	if old+1 < old {
		return 0, fmt.Errorf("%w: increment overflows", ErrCounterRange)
	}
	if err := c.Set(old + 1); err != nil {
		return 0, err
	}
	return old + 1, nil
}

// Decrement lowers the counter by one, failing on underflow.
func (c *StoredCounter) Decrement() (uint64, error) {
	old, err := c.Get()
	if err != nil {
		return 0, err
	}
	if old == 0 {
		return 0, fmt.Errorf("%w: decrement underflows", ErrCounterRange)
	}
	if err := c.Set(old - 1); err != nil {
		return 0, err
	}
	return old - 1, nil
}

// Save persists the counter if it changed since the last write-back.
func (c *StoredCounter) Save() error {
	return c.slot.Save()
}

// Reset zeroes the counter and forces a write on the next Save.
func (c *StoredCounter) Reset() {
	c.slot.Reset()
}
