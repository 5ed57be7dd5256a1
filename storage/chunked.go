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
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/Fantom-foundation/Strata/backend/slots"
	"github.com/Fantom-foundation/Strata/common"
	"github.com/holiman/uint256"
	"golang.org/x/exp/slices"
)

const (
	// ErrValueTooLarge is returned when an encoded value exceeds the
	// container's configured maximum; no slot is modified in that case.
	ErrValueTooLarge = common.ConstError("value exceeds configured maximum size")

	// ErrPointerOverflow is returned when deriving a chunk pointer would
	// wrap around the 256-bit address space.
	ErrPointerOverflow = common.ConstError("chunk pointer exceeds address space")

	// ErrCorruptedValue is returned when a stored chunk header does not
	// match the container's configuration.
	ErrCorruptedValue = common.ConstError("corrupted chunked value header")
)

const (
	// headerCapacity is the number of payload bytes sharing the header
	// slot with the 4-byte big-endian length prefix.
	headerCapacity = 28

	// maxChunkCount bounds the number of slots of one chunked value,
	// keeping chunk pointer arithmetic far away from address wrap-around.
	maxChunkCount = 1 << 26
)

// chunkPointer derives the address of the chunk at the given offset behind
// the base pointer by a checked big-endian addition.
func chunkPointer(base common.Pointer, offset uint64) (common.Pointer, error) {
	sum, overflow := new(uint256.Int).AddOverflow(
		new(uint256.Int).SetBytes(base[:]),
		uint256.NewInt(offset),
	)
	if overflow {
		return common.Pointer{}, fmt.Errorf("%w: base %v offset %d", ErrPointerOverflow, base, offset)
	}
	return common.Pointer(sum.Bytes32()), nil
}

// slotsFor returns the number of slots a payload of the given byte length
// occupies: the header slot plus one slot per full or partial 32-byte chunk
// beyond the header capacity.
func slotsFor(length int) int {
	if length <= headerCapacity {
		return 1
	}
	return 1 + (length-headerCapacity+31)/32
}

// chunkedValue is the engine behind all containers whose payload is not
// bounded by one slot. Slot 0 holds a 4-byte big-endian byte length followed
// by up to headerCapacity payload bytes; every further slot holds 32 payload
// bytes, at pointers derived by incrementing the base.
//
// The value is shadowed in memory with the same lazy-load and dirty-flag
// discipline as the scalar containers. Writing back first zeroes every slot
// used by the previous value, so a shrinking value leaves no stale chunk
// readable behind its new tail.
type chunkedValue struct {
	store     slots.Store
	base      common.Pointer
	maxSize   int
	value     []byte
	storedLen int // byte length currently persisted, valid once loaded
	loaded    bool
	dirty     bool
}

func newChunkedValue(store slots.Store, ns common.Namespace, subKey []byte, maxSize int) (chunkedValue, error) {
	if maxSize <= 0 || slotsFor(maxSize) > maxChunkCount {
		return chunkedValue{}, fmt.Errorf("%w: unsupported maximum size %d", ErrValueTooLarge, maxSize)
	}
	base, err := EncodeFixedPadded(ns, subKey)
	if err != nil {
		return chunkedValue{}, err
	}
	return chunkedValue{store: store, base: base, maxSize: maxSize}, nil
}

// load reads the header slot and as many chunks as its length demands.
func (c *chunkedValue) load() error {
	if c.loaded {
		return nil
	}
	head, err := c.store.Get(c.base)
	if err != nil {
		return fmt.Errorf("failed to load value header %v; %w", c.base, err)
	}
	length := int(binary.BigEndian.Uint32(head[0:4]))
	if length > c.maxSize {
		return fmt.Errorf("%w: stored length %d exceeds maximum %d", ErrCorruptedValue, length, c.maxSize)
	}

	data := make([]byte, 0, length)
	take := min(length, headerCapacity)
	data = append(data, head[4:4+take]...)
	for offset := uint64(1); len(data) < length; offset++ {
		ptr, err := chunkPointer(c.base, offset)
		if err != nil {
			return err
		}
		chunk, err := c.store.Get(ptr)
		if err != nil {
			return fmt.Errorf("failed to load chunk %d of %v; %w", offset, c.base, err)
		}
		take = min(length-len(data), len(chunk))
		data = append(data, chunk[:take]...)
	}

	c.value = data
	c.storedLen = length
	c.loaded = true
	return nil
}

// get returns a copy of the logical value.
func (c *chunkedValue) get() ([]byte, error) {
	if err := c.load(); err != nil {
		return nil, err
	}
	return slices.Clone(c.value), nil
}

// set replaces the in-memory shadow, dirtying the container only when the
// content changes. Oversized values are rejected before any slot is touched.
func (c *chunkedValue) set(value []byte) error {
	if len(value) > c.maxSize {
		return fmt.Errorf("%w: %d bytes, at most %d allowed", ErrValueTooLarge, len(value), c.maxSize)
	}
	if err := c.load(); err != nil {
		return err
	}
	if bytes.Equal(c.value, value) {
		return nil
	}
	c.value = slices.Clone(value)
	c.dirty = true
	return nil
}

// save writes the value back if dirty: all pointers are derived up front so
// address-space failures precede any write, the previously used slots are
// zeroed, and the new header and chunks are written in order.
func (c *chunkedValue) save() error {
	if !c.dirty {
		return nil
	}

	oldSlots := slotsFor(c.storedLen)
	newSlots := slotsFor(len(c.value))
	ptrs := make([]common.Pointer, max(oldSlots, newSlots))
	ptrs[0] = c.base
	for i := 1; i < len(ptrs); i++ {
		ptr, err := chunkPointer(c.base, uint64(i))
		if err != nil {
			return err
		}
		ptrs[i] = ptr
	}

	// clear the footprint of the previous value so no trailing chunk of a
	// shrinking value stays readable
	for i := 0; i < oldSlots; i++ {
		if err := c.store.Set(ptrs[i], common.Slot{}); err != nil {
			return fmt.Errorf("failed to clear chunk %d of %v; %w", i, c.base, err)
		}
	}

	length := len(c.value)
	var head common.Slot
	binary.BigEndian.PutUint32(head[0:4], uint32(length))
	copy(head[4:], c.value)
	if !head.IsZero() {
		if err := c.store.Set(c.base, head); err != nil {
			return fmt.Errorf("failed to write value header %v; %w", c.base, err)
		}
	}
	remaining := c.value[min(length, headerCapacity):]
	for i := 1; len(remaining) > 0; i++ {
		var chunk common.Slot
		take := min(len(remaining), len(chunk))
		copy(chunk[:], remaining[:take])
		remaining = remaining[take:]
		if err := c.store.Set(ptrs[i], chunk); err != nil {
			return fmt.Errorf("failed to write chunk %d of %v; %w", i, c.base, err)
		}
	}

	c.storedLen = length
	c.dirty = false
	return nil
}

// clear replaces the value with the empty payload; saving afterwards
// releases all previously used slots.
func (c *chunkedValue) clear() error {
	return c.set(nil)
}

// size returns the current logical length in bytes.
func (c *chunkedValue) size() (int, error) {
	if err := c.load(); err != nil {
		return 0, err
	}
	return len(c.value), nil
}

// StoredBytes is a chunked container for raw byte sequences.
type StoredBytes struct {
	raw chunkedValue
}

// NewStoredBytes creates a byte container below the namespace. Values are
// bounded by maxSize bytes; larger writes fail without touching storage.
func NewStoredBytes(store slots.Store, ns common.Namespace, subKey []byte, maxSize int) (*StoredBytes, error) {
	raw, err := newChunkedValue(store, ns, subKey, maxSize)
	if err != nil {
		return nil, err
	}
	return &StoredBytes{raw: raw}, nil
}

// Get returns a copy of the stored bytes, the empty slice when never set.
func (b *StoredBytes) Get() ([]byte, error) {
	return b.raw.get()
}

// Set replaces the value in the in-memory shadow.
func (b *StoredBytes) Set(value []byte) error {
	return b.raw.set(value)
}

// Size returns the current length in bytes.
func (b *StoredBytes) Size() (int, error) {
	return b.raw.size()
}

// Clear replaces the value with the empty payload.
func (b *StoredBytes) Clear() error {
	return b.raw.clear()
}

// Save writes the value back to the slot store if it changed.
func (b *StoredBytes) Save() error {
	return b.raw.save()
}

// StoredString is a chunked container for UTF-8 text.
type StoredString struct {
	raw chunkedValue
}

// NewStoredString creates a string container below the namespace, bounded
// by maxSize encoded bytes.
func NewStoredString(store slots.Store, ns common.Namespace, subKey []byte, maxSize int) (*StoredString, error) {
	raw, err := newChunkedValue(store, ns, subKey, maxSize)
	if err != nil {
		return nil, err
	}
	return &StoredString{raw: raw}, nil
}

// Get returns the stored text, the empty string when never set.
func (s *StoredString) Get() (string, error) {
	data, err := s.raw.get()
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Set replaces the text in the in-memory shadow.
func (s *StoredString) Set(value string) error {
	return s.raw.set([]byte(value))
}

// Size returns the current length in encoded bytes.
func (s *StoredString) Size() (int, error) {
	return s.raw.size()
}

// Clear replaces the text with the empty string.
func (s *StoredString) Clear() error {
	return s.raw.clear()
}

// Save writes the text back to the slot store if it changed.
func (s *StoredString) Save() error {
	return s.raw.save()
}

// StoredWords is a chunked container for arrays of 256-bit words.
type StoredWords struct {
	raw chunkedValue
}

// NewStoredWords creates a word-array container below the namespace,
// bounded by maxWords elements.
func NewStoredWords(store slots.Store, ns common.Namespace, subKey []byte, maxWords int) (*StoredWords, error) {
	raw, err := newChunkedValue(store, ns, subKey, maxWords*32)
	if err != nil {
		return nil, err
	}
	return &StoredWords{raw: raw}, nil
}

// Get returns the stored words, the empty slice when never set.
func (w *StoredWords) Get() ([]uint256.Int, error) {
	data, err := w.raw.get()
	if err != nil {
		return nil, err
	}
	if len(data)%32 != 0 {
		return nil, fmt.Errorf("%w: %d bytes is no word array", ErrCorruptedValue, len(data))
	}
	words := make([]uint256.Int, len(data)/32)
	for i := range words {
		words[i].SetBytes(data[i*32 : (i+1)*32])
	}
	return words, nil
}

// Set replaces the word array in the in-memory shadow.
func (w *StoredWords) Set(words []uint256.Int) error {
	data := make([]byte, len(words)*32)
	for i := range words {
		b32 := words[i].Bytes32()
		copy(data[i*32:], b32[:])
	}
	return w.raw.set(data)
}

// Length returns the number of stored words.
func (w *StoredWords) Length() (int, error) {
	size, err := w.raw.size()
	return size / 32, err
}

// Clear replaces the array with the empty payload.
func (w *StoredWords) Clear() error {
	return w.raw.clear()
}

// Save writes the array back to the slot store if it changed.
func (w *StoredWords) Save() error {
	return w.raw.save()
}
