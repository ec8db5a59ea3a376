// Copyright (c) 2021 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"errors"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

var errNotFound = errors.New("not found")

type mem map[string]string

func (m mem) Get(k []byte) ([]byte, error) {
	if v, ok := m[string(k)]; ok {
		return []byte(v), nil
	}
	return nil, errNotFound
}

func (m mem) Has(k []byte) (bool, error) {
	_, ok := m[string(k)]
	return ok, nil
}

func (m mem) Put(k, v []byte) error {
	m[string(k)] = string(v)
	return nil
}

func (m mem) Delete(k []byte) error {
	delete(m, string(k))
	return nil
}

func (m mem) IsNotFound(err error) bool {
	return errors.Is(err, errNotFound)
}

func (m mem) Bulk() Bulk {
	pending := mem{}
	deleted := map[string]bool{}
	return &struct {
		PutFunc
		DeleteFunc
		LenFunc
		WriteFunc
	}{
		func(k, v []byte) error { pending[string(k)] = string(v); delete(deleted, string(k)); return nil },
		func(k []byte) error { deleted[string(k)] = true; delete(pending, string(k)); return nil },
		func() int { return len(pending) + len(deleted) },
		func() error {
			for k, v := range pending {
				m[k] = v
			}
			for k := range deleted {
				delete(m, k)
			}
			return nil
		},
	}
}

func (m mem) Iterate(r Range) Iterator {
	var keys []string
	for k := range m {
		if k >= string(r.Start) && (len(r.Limit) == 0 || k < string(r.Limit)) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	i := -1
	return &struct {
		NextFunc
		KeyFunc
		ValueFunc
		ReleaseFunc
		ErrorFunc
	}{
		func() bool { i++; return i < len(keys) },
		func() []byte { return []byte(keys[i]) },
		func() []byte { return []byte(m[keys[i]]) },
		func() {},
		func() error { return nil },
	}
}

func TestBucket_GetterGet(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want string
	}{
		{Bucket(""), "k1", "v1"},
		{Bucket(""), "k2", "v2"},
		{Bucket("k"), "k1", ""},
		{Bucket("k"), "1", "v1"},
		{Bucket("k"), "2", "v2"},
	}
	for _, tt := range tests {
		got, _ := tt.b.NewGetter(m).Get([]byte(tt.key))
		assert.Equal(t, tt.want, string(got), "bucket %q key %q", tt.b, tt.key)
	}

	_, err := Bucket("x").NewGetter(m).Get([]byte("1"))
	assert.True(t, Bucket("x").NewGetter(m).IsNotFound(err))
}

func TestBucket_GetterHas(t *testing.T) {
	m := mem{"k1": "v1", "k2": "v2"}

	tests := []struct {
		b    Bucket
		key  string
		want bool
	}{
		{Bucket(""), "k1", true},
		{Bucket(""), "k2", true},
		{Bucket("k"), "k1", false},
		{Bucket("k"), "1", true},
		{Bucket("k"), "2", true},
		{Bucket("k1"), "", true},
	}
	for _, tt := range tests {
		got, _ := tt.b.NewGetter(m).Has([]byte(tt.key))
		assert.Equal(t, tt.want, got, "bucket %q key %q", tt.b, tt.key)
	}
}

func TestBucket_PutterAndBulk(t *testing.T) {
	m := mem{}
	b := Bucket("s")

	assert.NoError(t, b.NewPutter(m).Put([]byte("1"), []byte("v1")))
	assert.Equal(t, "v1", m["s1"])
	assert.NoError(t, b.NewPutter(m).Delete([]byte("1")))
	assert.Empty(t, m)

	bulk := b.NewStore(m).Bulk()
	assert.NoError(t, bulk.Put([]byte("a"), []byte("x")))
	assert.NoError(t, bulk.Put([]byte("b"), []byte("y")))
	assert.Equal(t, 2, bulk.Len())
	assert.Empty(t, m)
	assert.NoError(t, bulk.Write())
	assert.Equal(t, mem{"sa": "x", "sb": "y"}, m)
}

func TestBucket_Iterate(t *testing.T) {
	m := mem{"a1": "1", "b1": "2", "b2": "3", "c1": "4"}

	iter := Bucket("b").NewStore(m).Iterate(Range{})
	defer iter.Release()

	var keys, values []string
	for iter.Next() {
		keys = append(keys, string(iter.Key()))
		values = append(values, string(iter.Value()))
	}
	assert.NoError(t, iter.Error())
	assert.Equal(t, []string{"1", "2"}, keys)
	assert.Equal(t, []string{"2", "3"}, values)
}

func TestPrefixLimit(t *testing.T) {
	assert.Equal(t, []byte("c"), prefixLimit([]byte("b")))
	assert.Equal(t, []byte{0x02}, prefixLimit([]byte{0x01, 0xff}))
	assert.Nil(t, prefixLimit([]byte{0xff, 0xff}))
	assert.Nil(t, prefixLimit(nil))
}
