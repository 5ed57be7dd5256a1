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

import "encoding/binary"

// MergeKeys folds any number of sub-keys into one byte string by prefixing
// each part with its 4-byte big-endian length. The prefixes make the result
// injective over the parts: merge("ab","cdef") can never collide with
// merge("abcd","ef"). Merged keys feed hashed pointer encoding, which is
// what gives two-level maps their key space without a second encoding pass
// per level.
func MergeKeys(parts ...[]byte) []byte {
	size := 0
	for _, part := range parts {
		size += 4 + len(part)
	}
	res := make([]byte, 0, size)
	for _, part := range parts {
		res = binary.BigEndian.AppendUint32(res, uint32(len(part)))
		res = append(res, part...)
	}
	return res
}
