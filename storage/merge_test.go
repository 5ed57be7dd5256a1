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
	"testing"
)

func TestMergeKeys_Injective(t *testing.T) {
	a := MergeKeys([]byte("ab"), []byte("cdef"))
	b := MergeKeys([]byte("abcd"), []byte("ef"))
	if bytes.Equal(a, b) {
		t.Errorf("length prefixes must keep shifted splits apart: %x == %x", a, b)
	}
}

func TestMergeKeys_EmptyPartsAreSignificant(t *testing.T) {
	a := MergeKeys([]byte("x"))
	b := MergeKeys([]byte("x"), []byte{})
	if bytes.Equal(a, b) {
		t.Errorf("an empty trailing part must change the merged key")
	}
}

func TestMergeKeys_Layout(t *testing.T) {
	got := MergeKeys([]byte{0xAA}, []byte{0xBB, 0xCC})
	want := []byte{
		0x00, 0x00, 0x00, 0x01, 0xAA,
		0x00, 0x00, 0x00, 0x02, 0xBB, 0xCC,
	}
	if !bytes.Equal(got, want) {
		t.Errorf("wrong merged layout: %x, want %x", got, want)
	}
}

func TestMergeKeys_Deterministic(t *testing.T) {
	first := MergeKeys([]byte("owner"), []byte("spender"))
	second := MergeKeys([]byte("owner"), []byte("spender"))
	if !bytes.Equal(first, second) {
		t.Errorf("merging is not deterministic")
	}
}
