// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package badgerdb provides a kv.StoreCloser backed by badger.
package badgerdb

import (
	"bytes"

	"github.com/dgraph-io/badger/v3"
	"github.com/pkg/errors"

	"github.com/transcranial/tcs/kv"
)

var _ kv.StoreCloser = (*BadgerDB)(nil)

// BadgerDB wraps badger db.
type BadgerDB struct {
	db *badger.DB
}

// New opens or creates a persistent badger db at path.
func New(path string) (*BadgerDB, error) {
	return open(badger.DefaultOptions(path).WithLogger(nil))
}

// NewMem creates a badger db in memory.
func NewMem() (*BadgerDB, error) {
	return open(badger.DefaultOptions("").WithInMemory(true).WithLogger(nil))
}

func open(opts badger.Options) (*BadgerDB, error) {
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open badger db")
	}
	return &BadgerDB{db}, nil
}

// IsNotFound to check if the error returned by Get indicates key not found.
func (bdb *BadgerDB) IsNotFound(err error) bool {
	return errors.Is(err, badger.ErrKeyNotFound)
}

// Get retrieves value for the given key.
func (bdb *BadgerDB) Get(key []byte) (val []byte, err error) {
	err = bdb.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		if err != nil {
			return err
		}
		val, err = item.ValueCopy(nil)
		return err
	})
	return
}

// Has returns whether a key exists.
func (bdb *BadgerDB) Has(key []byte) (bool, error) {
	_, err := bdb.Get(key)
	if err != nil {
		if bdb.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Put saves value for the given key.
func (bdb *BadgerDB) Put(key, val []byte) error {
	return bdb.db.Update(func(txn *badger.Txn) error {
		return txn.Set(key, val)
	})
}

// Delete deletes the given key.
func (bdb *BadgerDB) Delete(key []byte) error {
	return bdb.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(key)
	})
}

// Close closes the db.
func (bdb *BadgerDB) Close() error {
	return bdb.db.Close()
}

// Bulk creates a bulk putter backed by a single read-write transaction.
// Keys and values must not be modified until Write returns.
func (bdb *BadgerDB) Bulk() kv.Bulk {
	var (
		txn = bdb.db.NewTransaction(true)
		n   int
	)
	return &struct {
		kv.PutFunc
		kv.DeleteFunc
		kv.LenFunc
		kv.WriteFunc
	}{
		func(key, val []byte) error {
			n++
			return txn.Set(key, val)
		},
		func(key []byte) error {
			n++
			return txn.Delete(key)
		},
		func() int { return n },
		func() error {
			defer txn.Discard()
			if err := txn.Commit(); err != nil {
				return err
			}
			txn = bdb.db.NewTransaction(true)
			n = 0
			return nil
		},
	}
}

// Iterate creates an iterator over [r.Start, r.Limit).
func (bdb *BadgerDB) Iterate(r kv.Range) kv.Iterator {
	txn := bdb.db.NewTransaction(false)
	return &iterator{
		txn:   txn,
		it:    txn.NewIterator(badger.DefaultIteratorOptions),
		start: r.Start,
		limit: r.Limit,
	}
}

type iterator struct {
	txn          *badger.Txn
	it           *badger.Iterator
	start, limit []byte
	started      bool
	key, val     []byte
	err          error
}

func (i *iterator) Next() bool {
	if i.err != nil {
		return false
	}
	if !i.started {
		i.it.Seek(i.start)
		i.started = true
	} else {
		i.it.Next()
	}
	if !i.it.Valid() {
		return false
	}
	item := i.it.Item()
	if len(i.limit) > 0 && bytes.Compare(item.Key(), i.limit) >= 0 {
		return false
	}
	i.key = item.KeyCopy(i.key[:0])
	i.val, i.err = item.ValueCopy(i.val[:0])
	return i.err == nil
}

func (i *iterator) Key() []byte   { return i.key }
func (i *iterator) Value() []byte { return i.val }
func (i *iterator) Error() error  { return i.err }

func (i *iterator) Release() {
	i.it.Close()
	i.txn.Discard()
}
