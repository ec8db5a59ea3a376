// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package payoutqueue

import (
	"errors"
	"math/big"

	"github.com/transcranial/tcs/builtin/solidity"
	"github.com/transcranial/tcs/builtin/staking/reverts"
	"github.com/transcranial/tcs/tcs"
)

var (
	slotHead    = tcs.BytesToBytes32([]byte("payout-head"))
	slotTail    = tcs.BytesToBytes32([]byte("payout-tail"))
	slotCount   = tcs.BytesToBytes32([]byte("payout-count"))
	slotLastID  = tcs.BytesToBytes32([]byte("payout-last-id"))
	slotEntries = tcs.BytesToBytes32([]byte("payout-entries"))

	errStop = errors.New("stop")
)

// ID identifies a queue entry. IDs start at 1 and are never reused; 0 means none.
type ID uint64

func (id ID) Bytes() []byte {
	return tcs.Uint64ToBytes32(uint64(id)).Bytes()
}

// Entry is an amount owed to a recipient.
type Entry struct {
	ID        ID `rlp:"-"`
	Recipient tcs.Address
	Amount    *big.Int
	Prev      ID
	Next      ID
}

// Queue is a FIFO doubly linked list of payout entries.
type Queue struct {
	head    *solidity.Uint256
	tail    *solidity.Uint256
	count   *solidity.Uint256
	lastID  *solidity.Uint256
	entries *solidity.Mapping[ID, *Entry]
}

func New(sctx *solidity.Context) *Queue {
	return &Queue{
		head:    solidity.NewUint256(sctx, slotHead),
		tail:    solidity.NewUint256(sctx, slotTail),
		count:   solidity.NewUint256(sctx, slotCount),
		lastID:  solidity.NewUint256(sctx, slotLastID),
		entries: solidity.NewMapping[ID, *Entry](sctx, slotEntries),
	}
}

func getID(slot *solidity.Uint256) (ID, error) {
	v, err := slot.Get()
	if err != nil {
		return 0, err
	}
	return ID(v.Uint64()), nil
}

func setID(slot *solidity.Uint256, id ID) error {
	return slot.Set(new(big.Int).SetUint64(uint64(id)))
}

// Len returns the number of queued entries.
func (q *Queue) Len() (uint64, error) {
	v, err := q.count.Get()
	if err != nil {
		return 0, err
	}
	return v.Uint64(), nil
}

// Head returns the oldest entry id, 0 if the queue is empty.
func (q *Queue) Head() (ID, error) {
	return getID(q.head)
}

// Get returns the entry of id.
func (q *Queue) Get(id ID) (*Entry, error) {
	if id == 0 {
		return nil, reverts.ErrNotFound
	}
	entry, err := q.entries.Get(id)
	if err != nil {
		return nil, err
	}
	if entry.Amount == nil {
		return nil, reverts.ErrNotFound
	}
	entry.ID = id
	return entry, nil
}

// Next returns the successor of id, 0 at the end of the queue.
func (q *Queue) Next(id ID) (ID, error) {
	entry, err := q.Get(id)
	if err != nil {
		return 0, err
	}
	return entry.Next, nil
}

// Append adds an entry at the tail and returns its id.
func (q *Queue) Append(recipient tcs.Address, amount *big.Int) (ID, error) {
	if amount.Sign() <= 0 {
		return 0, reverts.ErrInvalidAmount
	}
	last, err := getID(q.lastID)
	if err != nil {
		return 0, err
	}
	tail, err := getID(q.tail)
	if err != nil {
		return 0, err
	}
	id := last + 1

	if tail == 0 {
		if err := setID(q.head, id); err != nil {
			return 0, err
		}
	} else {
		prev, err := q.Get(tail)
		if err != nil {
			return 0, err
		}
		prev.Next = id
		if err := q.entries.Set(tail, prev); err != nil {
			return 0, err
		}
	}

	entry := &Entry{
		Recipient: recipient,
		Amount:    new(big.Int).Set(amount),
		Prev:      tail,
	}
	if err := q.entries.Set(id, entry); err != nil {
		return 0, err
	}
	if err := setID(q.tail, id); err != nil {
		return 0, err
	}
	if err := setID(q.lastID, id); err != nil {
		return 0, err
	}
	return id, q.count.Add(big.NewInt(1))
}

// Remove unlinks the entry of id from anywhere in the queue.
func (q *Queue) Remove(id ID) error {
	entry, err := q.Get(id)
	if err != nil {
		return err
	}

	if entry.Prev == 0 {
		if err := setID(q.head, entry.Next); err != nil {
			return err
		}
	} else {
		prev, err := q.Get(entry.Prev)
		if err != nil {
			return err
		}
		prev.Next = entry.Next
		if err := q.entries.Set(entry.Prev, prev); err != nil {
			return err
		}
	}

	if entry.Next == 0 {
		if err := setID(q.tail, entry.Prev); err != nil {
			return err
		}
	} else {
		next, err := q.Get(entry.Next)
		if err != nil {
			return err
		}
		next.Prev = entry.Prev
		if err := q.entries.Set(entry.Next, next); err != nil {
			return err
		}
	}

	q.entries.Delete(id)
	return q.count.Sub(big.NewInt(1))
}

// Iter visits entries from head to tail until cb returns an error.
// The successor is read after cb returns, so cb must not remove the visited entry.
func (q *Queue) Iter(cb func(*Entry) error) error {
	id, err := q.Head()
	if err != nil {
		return err
	}
	for id != 0 {
		entry, err := q.Get(id)
		if err != nil {
			return err
		}
		if err := cb(entry); err != nil {
			return err
		}
		if id, err = q.Next(id); err != nil {
			return err
		}
	}
	return nil
}

// List returns all entries in FIFO order.
func (q *Queue) List() ([]*Entry, error) {
	var entries []*Entry
	err := q.Iter(func(e *Entry) error {
		entries = append(entries, e)
		return nil
	})
	return entries, err
}

// Drain selects the longest prefix of the queue whose amounts fit into available,
// stopping at the first entry that does not fit. The queue is not modified.
func (q *Queue) Drain(available *big.Int) ([]*Entry, error) {
	var (
		remaining = new(big.Int).Set(available)
		selected  []*Entry
	)
	err := q.Iter(func(e *Entry) error {
		if e.Amount.Cmp(remaining) > 0 {
			return errStop
		}
		remaining.Sub(remaining, e.Amount)
		selected = append(selected, e)
		return nil
	})
	if err != nil && err != errStop {
		return nil, err
	}
	return selected, nil
}
