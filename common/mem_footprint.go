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

import (
	"fmt"
	"sort"
	"strings"

	"golang.org/x/exp/maps"
)

// MemoryFootprint describes the memory consumption of a storage structure
type MemoryFootprint struct {
	value    uintptr
	children map[string]*MemoryFootprint
}

// NewMemoryFootprint creates a new MemoryFootprint instance for a storage structure
func NewMemoryFootprint(value uintptr) *MemoryFootprint {
	return &MemoryFootprint{
		value:    value,
		children: make(map[string]*MemoryFootprint),
	}
}

// AddChild allows to attach a MemoryFootprint of a subcomponent
func (mf *MemoryFootprint) AddChild(name string, child *MemoryFootprint) {
	mf.children[name] = child
}

// Value provides the amount of bytes consumed by the structure itself
// (excluding its subcomponents)
func (mf *MemoryFootprint) Value() uintptr {
	return mf.value
}

// Total provides the amount of bytes consumed by the structure including
// all its subcomponents. Shared subcomponents are counted only once.
func (mf *MemoryFootprint) Total() uintptr {
	visited := make(map[*MemoryFootprint]bool)
	return mf.total(visited)
}

func (mf *MemoryFootprint) total(visited map[*MemoryFootprint]bool) (sum uintptr) {
	if visited[mf] {
		return 0
	}
	visited[mf] = true
	sum = mf.value
	for _, child := range mf.children {
		sum += child.total(visited)
	}
	return sum
}

// ToString renders the footprint as a tree summary, with the given name
// used for the root.
func (mf *MemoryFootprint) ToString(name string) string {
	var sb strings.Builder
	mf.toString(&sb, name, "")
	return sb.String()
}

func (mf *MemoryFootprint) toString(sb *strings.Builder, name, indent string) {
	fmt.Fprintf(sb, "%s%s: %d B\n", indent, name, mf.Total())
	names := maps.Keys(mf.children)
	sort.Strings(names)
	for _, child := range names {
		mf.children[child].toString(sb, child, indent+"  ")
	}
}
