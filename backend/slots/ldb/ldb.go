// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package ldb

import (
	"errors"
	"fmt"
	"unsafe"

	"github.com/Fantom-foundation/Strata/common"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// ErrCorruptedSlot is returned when a persisted value is not slot-sized.
const ErrCorruptedSlot = common.ConstError("corrupted slot value in database")

// TableSpace divides the key/value database into spaces by prefixing keys.
type TableSpace byte

const (
	// SlotSpaceKey is the tablespace for contract storage slots
	SlotSpaceKey TableSpace = 'S'
)

// dbKey is a slot pointer prefixed with its tablespace byte.
type dbKey [33]byte

// Store is a slots.Store implementation persisting slots in LevelDB.
// Only non-zero slots occupy database entries; writing the zero slot
// deletes the key, so absence and the default value stay identical
// across restarts.
type Store struct {
	db    *leveldb.DB
	table TableSpace
	owned bool
}

// OpenStore opens (or creates) a LevelDB database at the given path and
// wraps it as a slot store. Closing the store closes the database.
func OpenStore(path string) (*Store, error) {
	db, err := leveldb.OpenFile(path, &opt.Options{})
	if err != nil {
		return nil, fmt.Errorf("failed to open leveldb at %s; %w", path, err)
	}
	return &Store{db: db, table: SlotSpaceKey, owned: true}, nil
}

// NewStore wraps an already opened database, storing slots under the given
// tablespace. The database is shared; closing the store does not close it.
func NewStore(db *leveldb.DB, table TableSpace) *Store {
	return &Store{db: db, table: table}
}

func (s *Store) key(p common.Pointer) dbKey {
	var k dbKey
	k[0] = byte(s.table)
	copy(k[1:], p[:])
	return k
}

// Get returns the slot under the pointer, or the zero slot if not present.
func (s *Store) Get(p common.Pointer) (common.Slot, error) {
	k := s.key(p)
	data, err := s.db.Get(k[:], nil)
	if errors.Is(err, leveldb.ErrNotFound) {
		return common.Slot{}, nil
	}
	if err != nil {
		return common.Slot{}, err
	}
	if len(data) != len(common.Slot{}) {
		return common.Slot{}, fmt.Errorf("%w: %d bytes under %x", ErrCorruptedSlot, len(data), k)
	}
	var v common.Slot
	copy(v[:], data)
	return v, nil
}

// Set stores the slot under the pointer, deleting the entry for the zero slot.
func (s *Store) Set(p common.Pointer, v common.Slot) error {
	k := s.key(p)
	if v.IsZero() {
		return s.db.Delete(k[:], nil)
	}
	return s.db.Put(k[:], v[:], nil)
}

// Flush the store
func (s *Store) Flush() error {
	return nil // LevelDB writes are durable once Put returns
}

// Close the store, closing the database if this store opened it.
func (s *Store) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

// GetMemoryFootprint provides the size of the store in memory in bytes
func (s *Store) GetMemoryFootprint() *common.MemoryFootprint {
	mf := common.NewMemoryFootprint(unsafe.Sizeof(*s))
	var stats leveldb.DBStats
	if err := s.db.Stats(&stats); err == nil {
		mf.AddChild("blockCache", common.NewMemoryFootprint(uintptr(stats.BlockCacheSize)))
	}
	return mf
}
