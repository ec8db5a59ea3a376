// Copyright (c) 2018 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package state

// Stage abstracts the final changes of a state.
type Stage struct {
	stater  *Stater
	order   []string
	changes map[string][]byte
}

// Len returns the number of changed keys.
func (s *Stage) Len() int {
	return len(s.order)
}

// Commit writes all changes in one atomic bulk.
func (s *Stage) Commit() error {
	if len(s.order) == 0 {
		return nil
	}
	bulk := s.stater.db.Bulk()
	for _, k := range s.order {
		v := s.changes[k]
		var err error
		if len(v) == 0 {
			err = bulk.Delete([]byte(k))
		} else {
			err = bulk.Put([]byte(k), v)
		}
		if err != nil {
			return &Error{err}
		}
	}
	if err := bulk.Write(); err != nil {
		return &Error{err}
	}
	for _, k := range s.order {
		s.stater.cache.Add(k, s.changes[k])
	}
	return nil
}
