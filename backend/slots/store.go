// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package slots

//go:generate mockgen -source store.go -destination store_mock.go -package slots

import (
	"github.com/Fantom-foundation/Strata/common"
)

// Store is the raw slot store provided by the host: a flat key/value space
// reading and writing one fixed 32-byte slot per 32-byte pointer. There is
// no notion of existence; a slot that was never written reads as all-zero,
// and writing the all-zero slot is indistinguishable from never setting it.
//
// All calls are synchronous host calls without cancellation semantics.
// Implementations are not required to be safe for concurrent use; the
// runtime executes one invocation at a time.
type Store interface {
	// Get returns the slot stored at the given pointer, or the zero slot
	// if the pointer was never written.
	Get(p common.Pointer) (common.Slot, error)

	// Set stores the slot at the given pointer. Setting the zero slot
	// releases the pointer.
	Set(p common.Pointer, v common.Slot) error

	// provides the size of the store in memory in bytes
	common.MemoryFootprintProvider

	// Also, stores need to be flush and closable.
	common.FlushAndCloser
}
