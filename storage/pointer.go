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

	"github.com/Fantom-foundation/Strata/common"
)

// ErrKeySize is returned when a sub-key does not fit the fixed pointer layout.
const ErrKeySize = common.ConstError("sub-key size does not match pointer payload")

// PayloadSize is the number of sub-key bytes carried in a fixed-encoded
// pointer, next to the 2-byte namespace prefix.
const PayloadSize = 30

// EncodeFixed derives the slot pointer for a namespace and a sub-key of
// exactly PayloadSize bytes. The namespace occupies the first two bytes in
// big-endian order; this byte order is part of the persisted layout and
// must never change for deployed state.
func EncodeFixed(ns common.Namespace, subKey []byte) (common.Pointer, error) {
	if len(subKey) != PayloadSize {
		return common.Pointer{}, fmt.Errorf("%w: got %d bytes, want %d", ErrKeySize, len(subKey), PayloadSize)
	}
	return encode(ns, subKey), nil
}

// EncodeFixedPadded derives the slot pointer for a sub-key of up to
// PayloadSize bytes, right-padding shorter keys with zero bytes. Padding is
// only collision-free while all keys of the namespace share one width;
// variable-width keys must go through EncodeHashed instead.
func EncodeFixedPadded(ns common.Namespace, subKey []byte) (common.Pointer, error) {
	if len(subKey) > PayloadSize {
		return common.Pointer{}, fmt.Errorf("%w: got %d bytes, at most %d allowed", ErrKeySize, len(subKey), PayloadSize)
	}
	return encode(ns, subKey), nil
}

// EncodeHashed derives the slot pointer for a sub-key of unbounded length
// by hashing it and fixed-encoding the truncated digest. Distinctness of
// pointers is inherited from the collision resistance of keccak-256.
func EncodeHashed(ns common.Namespace, subKey []byte) common.Pointer {
	hash := common.Keccak256(subKey)
	return encode(ns, hash[:PayloadSize])
}

// encode packs the namespace prefix and up to PayloadSize payload bytes,
// leaving the tail zero for shorter payloads.
func encode(ns common.Namespace, payload []byte) common.Pointer {
	var p common.Pointer
	binary.BigEndian.PutUint16(p[0:2], uint16(ns))
	copy(p[2:], payload)
	return p
}
