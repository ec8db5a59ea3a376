// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package badgerdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/transcranial/tcs/kv"
)

func newTestDB(t *testing.T) *BadgerDB {
	db, err := NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestBadgerDB(t *testing.T) {
	db := newTestDB(t)

	assert.NoError(t, db.Put([]byte("k"), []byte("v")))

	v, err := db.Get([]byte("k"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("v"), v)

	has, err := db.Has([]byte("k"))
	assert.NoError(t, err)
	assert.True(t, has)

	has, err = db.Has([]byte("x"))
	assert.NoError(t, err)
	assert.False(t, has)

	assert.NoError(t, db.Delete([]byte("k")))
	_, err = db.Get([]byte("k"))
	assert.True(t, db.IsNotFound(err))
}

func TestBadgerDBBulk(t *testing.T) {
	db := newTestDB(t)
	require.NoError(t, db.Put([]byte("gone"), []byte("x")))

	bulk := db.Bulk()
	assert.NoError(t, bulk.Put([]byte("a"), []byte("1")))
	assert.NoError(t, bulk.Delete([]byte("gone")))
	assert.Equal(t, 2, bulk.Len())

	has, _ := db.Has([]byte("a"))
	assert.False(t, has)

	assert.NoError(t, bulk.Write())
	assert.Equal(t, 0, bulk.Len())

	has, _ = db.Has([]byte("a"))
	assert.True(t, has)
	has, _ = db.Has([]byte("gone"))
	assert.False(t, has)

	// reusable after write
	assert.NoError(t, bulk.Put([]byte("b"), []byte("2")))
	assert.NoError(t, bulk.Write())
	v, err := db.Get([]byte("b"))
	assert.NoError(t, err)
	assert.Equal(t, []byte("2"), v)
}

func TestBadgerDBIterate(t *testing.T) {
	db := newTestDB(t)
	for _, k := range []string{"a1", "b1", "b2", "c1"} {
		require.NoError(t, db.Put([]byte(k), []byte("v"+k)))
	}

	iter := kv.Bucket("b").NewStore(db).Iterate(kv.Range{})
	defer iter.Release()

	var keys, vals []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
		vals = append(vals, string(iter.Value()))
	}
	assert.NoError(t, iter.Error())
	assert.Equal(t, []string{"1", "2"}, keys)
	assert.Equal(t, []string{"vb1", "vb2"}, vals)

	all := db.Iterate(kv.Range{})
	defer all.Release()
	n := 0
	for all.Next() {
		n++
	}
	assert.Equal(t, 4, n)
}
