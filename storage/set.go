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
	"github.com/Fantom-foundation/Strata/common"
)

// StoredSet gives contract code set semantics over the slot store. Members
// are marked by a one-byte presence flag in their slot; removal writes the
// zero slot, so a removed member is indistinguishable from one never added.
type StoredSet struct {
	flags *KeyedMap[bool]
}

// NewStoredSet creates a set over members of unbounded length, addressed by
// hashing.
func NewStoredSet(store slots.Store, ns common.Namespace) *StoredSet {
	return &StoredSet{flags: NewKeyedMap[bool](store, ns, FlagCodec{})}
}

// NewFixedStoredSet creates a set whose members all have the given width of
// at most PayloadSize bytes, addressed by direct pointer encoding.
func NewFixedStoredSet(store slots.Store, ns common.Namespace, memberWidth int) (*StoredSet, error) {
	flags, err := NewFixedKeyedMap[bool](store, ns, FlagCodec{}, memberWidth)
	if err != nil {
		return nil, err
	}
	return &StoredSet{flags: flags}, nil
}

// Add marks the member as present.
func (s *StoredSet) Add(member []byte) error {
	return s.flags.Set(member, true)
}

// Has returns true if the member is present.
func (s *StoredSet) Has(member []byte) (bool, error) {
	return s.flags.Has(member)
}

// Delete removes the member.
func (s *StoredSet) Delete(member []byte) error {
	return s.flags.Delete(member)
}
