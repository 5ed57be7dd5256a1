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
	"fmt"

	"github.com/Fantom-foundation/Strata/backend/slots"
	"github.com/Fantom-foundation/Strata/common"
	"golang.org/x/exp/slices"
)

// ErrNotFound is returned by strict lookups for keys that were never set.
const ErrNotFound = common.ConstError("key not found")

// KeyedMap gives contract code map semantics over the slot store: every key
// resolves deterministically to one slot of its namespace, the zero slot is
// the default value, and deletion is a zero write. There is no tombstone, so
// a deleted entry is indistinguishable from one never set.
//
// Maps come in two addressing flavors. Fixed-width maps require all keys to
// share one declared width of at most PayloadSize bytes and encode them
// directly into the pointer; maps over unbounded keys hash them (merged with
// the map's prefix for nested maps) instead.
type KeyedMap[V any] struct {
	store    slots.Store
	ns       common.Namespace
	codec    SlotCodec[V]
	keyWidth int    // fixed key width in bytes, 0 for hashed addressing
	prefix   []byte // merged in front of every key by nested maps
}

// NewKeyedMap creates a map over keys of unbounded length, addressed by
// hashing.
func NewKeyedMap[V any](store slots.Store, ns common.Namespace, codec SlotCodec[V]) *KeyedMap[V] {
	return &KeyedMap[V]{store: store, ns: ns, codec: codec}
}

// NewFixedKeyedMap creates a map whose keys all have the given width of at
// most PayloadSize bytes, addressed by direct pointer encoding. The uniform
// width keeps zero-padding collision-free.
func NewFixedKeyedMap[V any](store slots.Store, ns common.Namespace, codec SlotCodec[V], keyWidth int) (*KeyedMap[V], error) {
	if keyWidth <= 0 || keyWidth > PayloadSize {
		return nil, fmt.Errorf("%w: unsupported key width %d", ErrKeySize, keyWidth)
	}
	return &KeyedMap[V]{store: store, ns: ns, codec: codec, keyWidth: keyWidth}, nil
}

// pointerOf resolves a key to its slot pointer.
func (m *KeyedMap[V]) pointerOf(key []byte) (common.Pointer, error) {
	if m.keyWidth > 0 {
		if len(key) != m.keyWidth {
			return common.Pointer{}, fmt.Errorf("%w: got %d bytes, want %d", ErrKeySize, len(key), m.keyWidth)
		}
		return EncodeFixedPadded(m.ns, key)
	}
	if m.prefix != nil {
		return EncodeHashed(m.ns, MergeKeys(m.prefix, key)), nil
	}
	return EncodeHashed(m.ns, key), nil
}

// Get returns the value stored for the key, or the default value of the
// payload type for keys never set.
func (m *KeyedMap[V]) Get(key []byte) (V, error) {
	var zero V
	ptr, err := m.pointerOf(key)
	if err != nil {
		return zero, err
	}
	slot, err := m.store.Get(ptr)
	if err != nil {
		return zero, err
	}
	return m.codec.FromSlot(slot), nil
}

// GetStrict returns the value stored for the key, failing with ErrNotFound
// for keys never set (or deleted). Use Has for a non-failing presence test.
func (m *KeyedMap[V]) GetStrict(key []byte) (V, error) {
	var zero V
	ptr, err := m.pointerOf(key)
	if err != nil {
		return zero, err
	}
	slot, err := m.store.Get(ptr)
	if err != nil {
		return zero, err
	}
	if slot.IsZero() {
		return zero, fmt.Errorf("%w: key %x", ErrNotFound, key)
	}
	return m.codec.FromSlot(slot), nil
}

// Set stores the value for the key. Setting the zero value of the payload
// type is observably identical to deleting the key.
func (m *KeyedMap[V]) Set(key []byte, value V) error {
	ptr, err := m.pointerOf(key)
	if err != nil {
		return err
	}
	return m.store.Set(ptr, m.codec.ToSlot(value))
}

// Has returns true if the key holds a non-default value. It never fails on
// absent keys.
func (m *KeyedMap[V]) Has(key []byte) (bool, error) {
	ptr, err := m.pointerOf(key)
	if err != nil {
		return false, err
	}
	slot, err := m.store.Get(ptr)
	if err != nil {
		return false, err
	}
	return !slot.IsZero(), nil
}

// Delete removes the key by writing the zero slot.
func (m *KeyedMap[V]) Delete(key []byte) error {
	ptr, err := m.pointerOf(key)
	if err != nil {
		return err
	}
	return m.store.Set(ptr, common.Slot{})
}

// MultiMap is a two-level map, giving every outer key its own keyed map
// (the allowance[owner][spender] pattern). Inner maps share the outer map's
// namespace; their keys are merged with the outer key before hashing, which
// keeps the combined key space collision-free without a second pointer
// encoding pass per level.
type MultiMap[V any] struct {
	store  slots.Store
	ns     common.Namespace
	codec  SlotCodec[V]
	ncache *common.BytesMap[*KeyedMap[V]]
}

// NewMultiMap creates an empty two-level map below the given namespace.
func NewMultiMap[V any](store slots.Store, ns common.Namespace, codec SlotCodec[V]) *MultiMap[V] {
	return &MultiMap[V]{
		store:  store,
		ns:     ns,
		codec:  codec,
		ncache: common.NewBytesMap[*KeyedMap[V]](),
	}
}

// Inner returns the nested map for the outer key, instantiating it on first
// use. Instances are memoized per outer key so repeated access within one
// execution does not re-derive the container.
func (m *MultiMap[V]) Inner(outerKey []byte) *KeyedMap[V] {
	if nested, exists := m.ncache.Get(outerKey); exists {
		return nested
	}
	nested := &KeyedMap[V]{
		store:  m.store,
		ns:     m.ns,
		codec:  m.codec,
		prefix: slices.Clone(outerKey),
	}
	m.ncache.Set(outerKey, nested)
	return nested
}

// Get returns the value stored for the key pair.
func (m *MultiMap[V]) Get(outerKey, innerKey []byte) (V, error) {
	return m.Inner(outerKey).Get(innerKey)
}

// Set stores the value for the key pair.
func (m *MultiMap[V]) Set(outerKey, innerKey []byte, value V) error {
	return m.Inner(outerKey).Set(innerKey, value)
}

// Has returns true if the key pair holds a non-default value.
func (m *MultiMap[V]) Has(outerKey, innerKey []byte) (bool, error) {
	return m.Inner(outerKey).Has(innerKey)
}

// Delete removes the key pair by writing the zero slot.
func (m *MultiMap[V]) Delete(outerKey, innerKey []byte) error {
	return m.Inner(outerKey).Delete(innerKey)
}
