// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

import (
	"bytes"
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/rlp"

	"github.com/transcranial/tcs/stackedmap"
	"github.com/transcranial/tcs/tcs"
)

// Error is the error caused by state access failure.
type Error struct {
	cause error
}

func (e *Error) Error() string {
	return fmt.Sprintf("state: %v", e.cause)
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.cause
}

type (
	balanceKey tcs.Address
	storageKey struct {
		addr tcs.Address
		key  tcs.Bytes32
	}
)

// State manages balances and storage of accounts.
type State struct {
	stater *Stater
	sm     *stackedmap.StackedMap
}

func newState(stater *Stater) *State {
	state := &State{stater: stater}
	state.sm = stackedmap.New(state.load)
	return state
}

// load implements stackedmap.MapGetter.
func (s *State) load(key any) (value any, exist bool, err error) {
	switch k := key.(type) {
	case balanceKey:
		data, err := s.stater.get(balanceBucket, k[:])
		if err != nil {
			return nil, false, err
		}
		return new(big.Int).SetBytes(data), true, nil
	case storageKey:
		data, err := s.stater.get(storageBucket, storageDBKey(k.addr, k.key))
		if err != nil {
			return nil, false, err
		}
		return rlp.RawValue(data), true, nil
	}
	panic(fmt.Errorf("unexpected key type %+v", key))
}

// GetBalance returns balance for the given address.
// The returned value should not be modified.
func (s *State) GetBalance(addr tcs.Address) (*big.Int, error) {
	v, _, err := s.sm.Get(balanceKey(addr))
	if err != nil {
		return nil, &Error{err}
	}
	return v.(*big.Int), nil
}

// SetBalance set balance for the given address.
func (s *State) SetBalance(addr tcs.Address, balance *big.Int) error {
	if balance.Sign() < 0 {
		return &Error{fmt.Errorf("negative balance of %v", addr)}
	}
	s.sm.Put(balanceKey(addr), new(big.Int).Set(balance))
	return nil
}

// GetStorage returns storage value for the given address and key.
func (s *State) GetStorage(addr tcs.Address, key tcs.Bytes32) (tcs.Bytes32, error) {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return tcs.Bytes32{}, err
	}
	if len(raw) == 0 {
		return tcs.Bytes32{}, nil
	}
	kind, content, _, err := rlp.Split(raw)
	if err != nil {
		return tcs.Bytes32{}, &Error{err}
	}
	if kind == rlp.List {
		// customized storage value, use hash of raw data
		return tcs.Blake2b(raw), nil
	}
	return tcs.BytesToBytes32(content), nil
}

// SetStorage set storage value for the given address and key.
func (s *State) SetStorage(addr tcs.Address, key, value tcs.Bytes32) {
	if value.IsZero() {
		s.SetRawStorage(addr, key, nil)
		return
	}
	v, _ := rlp.EncodeToBytes(bytes.TrimLeft(value[:], "\x00"))
	s.SetRawStorage(addr, key, v)
}

// GetRawStorage returns storage value in rlp raw for given address and key.
func (s *State) GetRawStorage(addr tcs.Address, key tcs.Bytes32) (rlp.RawValue, error) {
	data, _, err := s.sm.Get(storageKey{addr, key})
	if err != nil {
		return nil, &Error{err}
	}
	return data.(rlp.RawValue), nil
}

// SetRawStorage set storage value in rlp raw. Empty raw deletes the slot.
func (s *State) SetRawStorage(addr tcs.Address, key tcs.Bytes32, raw rlp.RawValue) {
	s.sm.Put(storageKey{addr, key}, raw)
}

// EncodeStorage set storage value encoded by given enc method.
// Error returned by enc will be absorbed by State instance.
func (s *State) EncodeStorage(addr tcs.Address, key tcs.Bytes32, enc func() ([]byte, error)) error {
	raw, err := enc()
	if err != nil {
		return &Error{err}
	}
	s.SetRawStorage(addr, key, raw)
	return nil
}

// DecodeStorage get and decode storage value.
// Error returned by dec will be absorbed by State instance.
func (s *State) DecodeStorage(addr tcs.Address, key tcs.Bytes32, dec func([]byte) error) error {
	raw, err := s.GetRawStorage(addr, key)
	if err != nil {
		return err
	}
	if err := dec(raw); err != nil {
		return &Error{err}
	}
	return nil
}

// NewCheckpoint makes a checkpoint of current state.
// It returns revision of the checkpoint.
func (s *State) NewCheckpoint() int {
	return s.sm.Push()
}

// RevertTo revert to checkpoint specified by revision.
func (s *State) RevertTo(revision int) {
	s.sm.PopTo(revision)
}

// Stage makes a stage object to commit changes.
func (s *State) Stage() *Stage {
	changes := make(map[string][]byte)
	var order []string

	s.sm.Journal(func(k, v any) bool {
		var dbKey string
		var val []byte
		switch key := k.(type) {
		case balanceKey:
			dbKey = string(balanceBucket.Key(key[:]))
			val = v.(*big.Int).Bytes()
		case storageKey:
			dbKey = string(storageBucket.Key(storageDBKey(key.addr, key.key)))
			val = v.(rlp.RawValue)
		default:
			return true
		}
		if _, ok := changes[dbKey]; !ok {
			order = append(order, dbKey)
		}
		changes[dbKey] = val
		return true
	})

	return &Stage{
		stater:  s.stater,
		order:   order,
		changes: changes,
	}
}

func storageDBKey(addr tcs.Address, key tcs.Bytes32) []byte {
	k := make([]byte, 0, len(addr)+len(key))
	return append(append(k, addr[:]...), key[:]...)
}
