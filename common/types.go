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

import "encoding/hex"

// Pointer is the address of one slot in the host key/value store.
// Pointers are derived from a namespace and a sub-key by the pointer
// encoder; two pointers are equal iff all 32 bytes are equal.
type Pointer [32]byte

// Slot is the unit of storage provided by the host: a fixed 32-byte value.
// The all-zero slot denotes absence; there is no separate existence bit.
type Slot [32]byte

// Hash is a 32-byte cryptographic digest.
type Hash [32]byte

// Namespace identifies one logical storage field of a contract. Namespaces
// are allocated monotonically at contract construction and must stay
// disjoint for the life of the deployed state.
type Namespace uint16

// ConstError is a error type that can be used to define immutable
// error constants.
type ConstError string

func (e ConstError) Error() string {
	return string(e)
}

// IsZero returns true if the slot holds the default (absent) value.
func (s Slot) IsZero() bool {
	return s == Slot{}
}

func (p Pointer) String() string {
	return hex.EncodeToString(p[:])
}
