// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package indexedset implements a set over contract storage with O(1)
// membership, insertion and swap-remove deletion. Members occupy the dense
// index range [1, Len()].
package indexedset

import (
	"encoding/binary"
	"math/big"

	"github.com/pkg/errors"

	"github.com/transcranial/tcs/builtin/solidity"
	"github.com/transcranial/tcs/builtin/staking/reverts"
	"github.com/transcranial/tcs/tcs"
)

type index uint64

func (i index) Bytes() []byte {
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(i))
	return b[:]
}

// Set is an indexed set of keys.
type Set[K solidity.Key] struct {
	count   *solidity.Uint256
	indexes *solidity.Mapping[K, uint64]
	keys    *solidity.Mapping[index, K]
}

// New creates a set rooted at pos in the storage of sctx.
func New[K solidity.Key](sctx *solidity.Context, pos tcs.Bytes32) *Set[K] {
	return &Set[K]{
		count:   solidity.NewUint256(sctx, pos),
		indexes: solidity.NewMapping[K, uint64](sctx, tcs.Blake2b(pos.Bytes(), []byte("index"))),
		keys:    solidity.NewMapping[index, K](sctx, tcs.Blake2b(pos.Bytes(), []byte("key"))),
	}
}

// Len returns the number of members.
func (s *Set[K]) Len() (uint64, error) {
	count, err := s.count.Get()
	if err != nil {
		return 0, err
	}
	return count.Uint64(), nil
}

func (s *Set[K]) setLen(n uint64) error {
	return s.count.Set(new(big.Int).SetUint64(n))
}

// Contains reports whether key is a member.
func (s *Set[K]) Contains(key K) (bool, error) {
	i, err := s.indexes.Get(key)
	if err != nil {
		return false, err
	}
	return i != 0, nil
}

// Add inserts key at index Len()+1. Adding a member is a no-op.
// It returns whether key was inserted.
func (s *Set[K]) Add(key K) (bool, error) {
	found, err := s.Contains(key)
	if err != nil || found {
		return false, err
	}
	count, err := s.Len()
	if err != nil {
		return false, err
	}
	count++
	if err := s.indexes.Set(key, count); err != nil {
		return false, err
	}
	if err := s.keys.Set(index(count), key); err != nil {
		return false, err
	}
	return true, s.setLen(count)
}

// Remove deletes key by moving the last member into its slot.
func (s *Set[K]) Remove(key K) error {
	i, err := s.indexes.Get(key)
	if err != nil {
		return err
	}
	if i == 0 {
		return reverts.ErrNotFound
	}
	count, err := s.Len()
	if err != nil {
		return err
	}
	if i != count {
		last, err := s.keys.Get(index(count))
		if err != nil {
			return err
		}
		if err := s.keys.Set(index(i), last); err != nil {
			return err
		}
		if err := s.indexes.Set(last, i); err != nil {
			return err
		}
	}
	s.keys.Delete(index(count))
	s.indexes.Delete(key)
	return s.setLen(count - 1)
}

// At returns the member at 1-based index i.
func (s *Set[K]) At(i uint64) (key K, err error) {
	count, err := s.Len()
	if err != nil {
		return key, err
	}
	if i == 0 || i > count {
		return key, errors.WithMessagef(reverts.ErrNotFound, "index %d of %d", i, count)
	}
	return s.keys.Get(index(i))
}

// Iter calls cb for members in index order. The length is read once before
// walking, so the set must not be mutated by cb.
func (s *Set[K]) Iter(cb func(K) error) error {
	count, err := s.Len()
	if err != nil {
		return err
	}
	for i := uint64(1); i <= count; i++ {
		key, err := s.keys.Get(index(i))
		if err != nil {
			return err
		}
		if err := cb(key); err != nil {
			return err
		}
	}
	return nil
}

// Members returns all members in index order.
func (s *Set[K]) Members() ([]K, error) {
	var members []K
	err := s.Iter(func(key K) error {
		members = append(members, key)
		return nil
	})
	return members, err
}
