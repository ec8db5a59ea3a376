// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	lru "github.com/hashicorp/golang-lru"

	"github.com/transcranial/tcs/kv"
)

const defaultCacheSize = 4096

var (
	balanceBucket = kv.Bucket("b")
	storageBucket = kv.Bucket("s")
)

// Stater is the state creator.
type Stater struct {
	db    kv.Store
	cache *lru.Cache // full db key => value, nil value for absent key
}

// NewStater create a new stater. cacheSize <= 0 means the default size.
func NewStater(db kv.Store, cacheSize int) *Stater {
	if cacheSize <= 0 {
		cacheSize = defaultCacheSize
	}
	cache, _ := lru.New(cacheSize)
	return &Stater{db, cache}
}

// NewState create a new state object reflecting the latest committed data.
func (s *Stater) NewState() *State {
	return newState(s)
}

// get reads the value of key in bucket. Absent key yields nil value.
func (s *Stater) get(bucket kv.Bucket, key []byte) ([]byte, error) {
	full := string(bucket.Key(key))
	if v, ok := s.cache.Get(full); ok {
		return v.([]byte), nil
	}
	val, err := s.db.Get([]byte(full))
	if err != nil {
		if !s.db.IsNotFound(err) {
			return nil, err
		}
		val = nil
	}
	s.cache.Add(full, val)
	return val, nil
}
