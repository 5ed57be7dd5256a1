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

	"github.com/Fantom-foundation/Strata/common"
	"github.com/holiman/uint256"
)

// SlotCodec converts between one slot and a concrete value type. Each keyed
// container is instantiated with the codec for its payload kind; there is
// no runtime type inspection anywhere in the storage layer. The zero value
// of V must map to the zero slot so that absence and the default value stay
// interchangeable.
type SlotCodec[V any] interface {
	ToSlot(V) common.Slot
	FromSlot(common.Slot) V
}

// U64Codec stores a 64-bit quantity right-aligned in the slot, big-endian.
type U64Codec struct{}

func (U64Codec) ToSlot(v uint64) common.Slot {
	var s common.Slot
	binary.BigEndian.PutUint64(s[24:], v)
	return s
}

func (U64Codec) FromSlot(s common.Slot) uint64 {
	return binary.BigEndian.Uint64(s[24:])
}

// WordCodec stores a full 256-bit word.
type WordCodec struct{}

func (WordCodec) ToSlot(v uint256.Int) common.Slot {
	return common.Slot(v.Bytes32())
}

func (WordCodec) FromSlot(s common.Slot) uint256.Int {
	var v uint256.Int
	v.SetBytes(s[:])
	return v
}

// SlotIdentityCodec stores the raw slot itself.
type SlotIdentityCodec struct{}

func (SlotIdentityCodec) ToSlot(v common.Slot) common.Slot {
	return v
}

func (SlotIdentityCodec) FromSlot(s common.Slot) common.Slot {
	return s
}

// FlagCodec stores a presence flag as a single byte in the last position.
// It backs set containers, where only membership matters.
type FlagCodec struct{}

func (FlagCodec) ToSlot(v bool) common.Slot {
	var s common.Slot
	if v {
		s[31] = 1
	}
	return s
}

func (FlagCodec) FromSlot(s common.Slot) bool {
	return !s.IsZero()
}
