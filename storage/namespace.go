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
	"math"

	"github.com/Fantom-foundation/Strata/common"
)

// ErrNamespacesExhausted is returned when a contract declares more storage
// fields than the 16-bit namespace space can hold.
const ErrNamespacesExhausted = common.ConstError("namespace space exhausted")

// NamespaceAllocator issues namespaces for the storage fields of one
// contract. Allocation is a deterministic monotonic sequence, so fields
// declared in the same order receive the same namespaces on every
// execution. The allocator is an explicit object threaded through contract
// construction; there is deliberately no ambient global counter.
type NamespaceAllocator struct {
	next uint32
}

// NewNamespaceAllocator creates an allocator starting at namespace 0.
func NewNamespaceAllocator() *NamespaceAllocator {
	return &NamespaceAllocator{}
}

// Next returns the next free namespace. Exhausting the 16-bit space is a
// configuration error of the contract, not a runtime condition.
func (a *NamespaceAllocator) Next() (common.Namespace, error) {
	if a.next > math.MaxUint16 {
		return 0, fmt.Errorf("%w: %d namespaces allocated", ErrNamespacesExhausted, a.next)
	}
	ns := common.Namespace(a.next)
	a.next++
	return ns, nil
}

// Allocated returns the number of namespaces issued so far.
func (a *NamespaceAllocator) Allocated() int {
	return int(a.next)
}
