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
	"github.com/Fantom-foundation/Strata/backend/slots"
)

// Layout is the construction surface for the storage fields of one
// contract. It couples a slot store with a namespace allocator, handing
// every declared field its own disjoint namespace. Fields must be declared
// in a fixed order at contract construction, since allocation order
// determines the persisted addresses.
type Layout struct {
	store slots.Store
	alloc *NamespaceAllocator
}

// NewLayout creates a layout over the given store with a fresh allocator.
func NewLayout(store slots.Store) *Layout {
	return &Layout{store: store, alloc: NewNamespaceAllocator()}
}

// NewU64Field declares a four-field 64-bit scalar container.
func (l *Layout) NewU64Field(subKey []byte) (*StoredU64, error) {
	ns, err := l.alloc.Next()
	if err != nil {
		return nil, err
	}
	return NewStoredU64(l.store, ns, subKey)
}

// NewU32Field declares an eight-field 32-bit scalar container.
func (l *Layout) NewU32Field(subKey []byte) (*StoredU32, error) {
	ns, err := l.alloc.Next()
	if err != nil {
		return nil, err
	}
	return NewStoredU32(l.store, ns, subKey)
}

// NewCounterField declares a checked 64-bit counter.
func (l *Layout) NewCounterField(subKey []byte) (*StoredCounter, error) {
	ns, err := l.alloc.Next()
	if err != nil {
		return nil, err
	}
	return NewStoredCounter(l.store, ns, subKey)
}

// NewBytesField declares a chunked byte container bounded by maxSize bytes.
func (l *Layout) NewBytesField(subKey []byte, maxSize int) (*StoredBytes, error) {
	ns, err := l.alloc.Next()
	if err != nil {
		return nil, err
	}
	return NewStoredBytes(l.store, ns, subKey, maxSize)
}

// NewStringField declares a chunked text container bounded by maxSize bytes.
func (l *Layout) NewStringField(subKey []byte, maxSize int) (*StoredString, error) {
	ns, err := l.alloc.Next()
	if err != nil {
		return nil, err
	}
	return NewStoredString(l.store, ns, subKey, maxSize)
}

// NewWordsField declares a chunked word-array container bounded by maxWords
// elements.
func (l *Layout) NewWordsField(subKey []byte, maxWords int) (*StoredWords, error) {
	ns, err := l.alloc.Next()
	if err != nil {
		return nil, err
	}
	return NewStoredWords(l.store, ns, subKey, maxWords)
}

// NewSetField declares a set over members of unbounded length.
func (l *Layout) NewSetField() (*StoredSet, error) {
	ns, err := l.alloc.Next()
	if err != nil {
		return nil, err
	}
	return NewStoredSet(l.store, ns), nil
}

// NewFixedSetField declares a set over members of one fixed width.
func (l *Layout) NewFixedSetField(memberWidth int) (*StoredSet, error) {
	ns, err := l.alloc.Next()
	if err != nil {
		return nil, err
	}
	return NewFixedStoredSet(l.store, ns, memberWidth)
}

// NewMapField declares a map over keys of unbounded length. It is a free
// function since methods cannot introduce type parameters.
func NewMapField[V any](l *Layout, codec SlotCodec[V]) (*KeyedMap[V], error) {
	ns, err := l.alloc.Next()
	if err != nil {
		return nil, err
	}
	return NewKeyedMap[V](l.store, ns, codec), nil
}

// NewFixedMapField declares a map over keys of one fixed width.
func NewFixedMapField[V any](l *Layout, codec SlotCodec[V], keyWidth int) (*KeyedMap[V], error) {
	ns, err := l.alloc.Next()
	if err != nil {
		return nil, err
	}
	return NewFixedKeyedMap[V](l.store, ns, codec, keyWidth)
}

// NewMultiMapField declares a two-level map.
func NewMultiMapField[V any](l *Layout, codec SlotCodec[V]) (*MultiMap[V], error) {
	ns, err := l.alloc.Next()
	if err != nil {
		return nil, err
	}
	return NewMultiMap[V](l.store, ns, codec), nil
}
