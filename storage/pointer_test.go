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
	"errors"
	"testing"

	"github.com/Fantom-foundation/Strata/common"
)

func TestEncodeFixed_Layout(t *testing.T) {
	subKey := make([]byte, PayloadSize)
	for i := range subKey {
		subKey[i] = byte(i + 1)
	}

	ptr, err := EncodeFixed(common.Namespace(0x0102), subKey)
	if err != nil {
		t.Fatalf("failed to encode pointer: %v", err)
	}

	// the namespace prefix is big-endian and precedes the payload
	if ptr[0] != 0x01 || ptr[1] != 0x02 {
		t.Errorf("wrong namespace prefix: %x", ptr[0:2])
	}
	if !bytes.Equal(ptr[2:], subKey) {
		t.Errorf("wrong payload: %x", ptr[2:])
	}
}

func TestEncodeFixed_RejectsWrongSize(t *testing.T) {
	for _, size := range []int{0, 1, 29, 31, 64} {
		if _, err := EncodeFixed(1, make([]byte, size)); !errors.Is(err, ErrKeySize) {
			t.Errorf("size %d must be rejected, got: %v", size, err)
		}
	}
}

func TestEncodeFixed_Deterministic(t *testing.T) {
	subKey := bytes.Repeat([]byte{0xAB}, PayloadSize)
	first, err := EncodeFixed(7, subKey)
	if err != nil {
		t.Fatalf("failed to encode pointer: %v", err)
	}
	second, err := EncodeFixed(7, subKey)
	if err != nil {
		t.Fatalf("failed to encode pointer: %v", err)
	}
	if first != second {
		t.Errorf("encoding is not deterministic: %v != %v", first, second)
	}
}

func TestEncodeFixedPadded_EqualsExplicitPadding(t *testing.T) {
	short := []byte{0x01, 0x02, 0x03}
	long := make([]byte, PayloadSize)
	copy(long, short)

	padded, err := EncodeFixedPadded(5, short)
	if err != nil {
		t.Fatalf("failed to encode padded pointer: %v", err)
	}
	exact, err := EncodeFixed(5, long)
	if err != nil {
		t.Fatalf("failed to encode exact pointer: %v", err)
	}
	if padded != exact {
		t.Errorf("padded key must match its zero-padded form: %v != %v", padded, exact)
	}
}

func TestEncodeFixedPadded_RejectsOversizedKey(t *testing.T) {
	if _, err := EncodeFixedPadded(1, make([]byte, PayloadSize+1)); !errors.Is(err, ErrKeySize) {
		t.Errorf("oversized key must be rejected, got: %v", err)
	}
}

func TestEncodeHashed_DeterministicAndNamespaced(t *testing.T) {
	key := []byte("a key of unbounded length that cannot be packed directly")

	first := EncodeHashed(3, key)
	second := EncodeHashed(3, key)
	if first != second {
		t.Errorf("hashed encoding is not deterministic: %v != %v", first, second)
	}

	other := EncodeHashed(4, key)
	if first == other {
		t.Errorf("namespaces must separate hashed pointers")
	}
	if first[0] != 0x00 || first[1] != 0x03 {
		t.Errorf("hashed pointer misses the namespace prefix: %x", first[0:2])
	}
}

func TestEncodeHashed_DiffersFromFixed(t *testing.T) {
	key := make([]byte, PayloadSize)
	key[0] = 0x01

	fixed, err := EncodeFixed(1, key)
	if err != nil {
		t.Fatalf("failed to encode pointer: %v", err)
	}
	if hashed := EncodeHashed(1, key); hashed == fixed {
		t.Errorf("hashed and fixed encoding of one key should not agree")
	}
}

func TestEncodeFixed_NamespaceSevenScenario(t *testing.T) {
	// address 0x00..01 below namespace 7, zero-padded to the payload width
	address := make([]byte, 20)
	address[19] = 0x01

	ptr, err := EncodeFixedPadded(7, address)
	if err != nil {
		t.Fatalf("failed to encode pointer: %v", err)
	}
	if ptr[0] != 0x00 || ptr[1] != 0x07 {
		t.Errorf("wrong namespace prefix: %x", ptr[0:2])
	}
	want := make([]byte, PayloadSize)
	copy(want, address)
	if !bytes.Equal(ptr[2:], want) {
		t.Errorf("payload must be the zero-padded address: %x", ptr[2:])
	}
}
