// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package logdb keeps the history of payouts and reward distributions in sqlite.
package logdb

import (
	"context"
	"database/sql"
	"math/big"

	sqlite3 "github.com/mattn/go-sqlite3"
	"github.com/pkg/errors"

	"github.com/transcranial/tcs/tcs"
)

type LogDB struct {
	path          string
	db            *sql.DB
	driverVersion string
	stmtCache     *stmtCache
}

// New create or open log db at given path.
func New(path string) (logDB *LogDB, err error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}
	defer func() {
		if logDB == nil {
			db.Close()
		}
	}()
	// one connection, or every ":memory:" connection opens its own database
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(payoutTableSchema + distributionTableSchema); err != nil {
		return nil, errors.Wrap(err, "create tables")
	}

	driverVer, _, _ := sqlite3.Version()
	return &LogDB{
		path:          path,
		db:            db,
		driverVersion: driverVer,
		stmtCache:     newStmtCache(db),
	}, nil
}

// NewMem create a log db in ram.
func NewMem() (*LogDB, error) {
	return New(":memory:")
}

// Close close the log db.
func (db *LogDB) Close() error {
	db.stmtCache.Clear()
	return db.db.Close()
}

func (db *LogDB) Path() string {
	return db.path
}

// DriverVersion returns the sqlite library version.
func (db *LogDB) DriverVersion() string {
	return db.driverVersion
}

// NewWriter creates a log writer.
func (db *LogDB) NewWriter() *Writer {
	return &Writer{db: db.db}
}

func (db *LogDB) FilterPayouts(ctx context.Context, filter *PayoutFilter) ([]*Payout, error) {
	if filter == nil {
		filter = &PayoutFilter{}
	}
	metricsHandleQuery(filter.Options, filter.Order, "payout")

	var args []any
	stmt := "SELECT seq, queueID, recipient, amount, time FROM payout WHERE seq > ?"
	args = append(args, filter.After)
	if filter.Recipient != nil {
		args = append(args, filter.Recipient.Bytes())
		stmt += " AND recipient = ?"
	}
	stmt, args = appendRange(stmt, args, filter.Range)
	stmt, args = appendOrder(stmt, args, filter.Order, filter.Options)

	rows, err := db.query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var payouts []*Payout
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			p         Payout
			recipient []byte
			amount    []byte
		)
		if err := rows.Scan(&p.Seq, &p.QueueID, &recipient, &amount, &p.Time); err != nil {
			return nil, err
		}
		p.Recipient = tcs.BytesToAddress(recipient)
		p.Amount = new(big.Int).SetBytes(amount)
		payouts = append(payouts, &p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return payouts, nil
}

func (db *LogDB) FilterDistributions(ctx context.Context, filter *DistributionFilter) ([]*Distribution, error) {
	if filter == nil {
		filter = &DistributionFilter{}
	}
	metricsHandleQuery(filter.Options, filter.Order, "distribution")

	var args []any
	stmt := "SELECT seq, amount, supply, increment, rate, iscore, time FROM distribution WHERE seq > ?"
	args = append(args, filter.After)
	stmt, args = appendRange(stmt, args, filter.Range)
	stmt, args = appendOrder(stmt, args, filter.Order, filter.Options)

	rows, err := db.query(ctx, stmt, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dists []*Distribution
	for rows.Next() {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		var (
			d                                       Distribution
			amount, supply, increment, rate, iscore []byte
		)
		if err := rows.Scan(&d.Seq, &amount, &supply, &increment, &rate, &iscore, &d.Time); err != nil {
			return nil, err
		}
		d.Amount = new(big.Int).SetBytes(amount)
		d.Supply = new(big.Int).SetBytes(supply)
		d.Increment = new(big.Int).SetBytes(increment)
		d.Rate = new(big.Int).SetBytes(rate)
		if iscore != nil {
			d.IScore = new(big.Int).SetBytes(iscore)
		}
		dists = append(dists, &d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return dists, nil
}

func (db *LogDB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	stmt, err := db.stmtCache.Prepare(query)
	if err != nil {
		return nil, err
	}
	return stmt.QueryContext(ctx, args...)
}

func appendRange(stmt string, args []any, r *Range) (string, []any) {
	if r == nil {
		return stmt, args
	}
	args = append(args, r.From)
	stmt += " AND time >= ?"
	if r.To >= r.From {
		args = append(args, r.To)
		stmt += " AND time <= ?"
	}
	return stmt, args
}

func appendOrder(stmt string, args []any, order Order, options *Options) (string, []any) {
	if order == DESC {
		stmt += " ORDER BY seq DESC"
	} else {
		stmt += " ORDER BY seq ASC"
	}
	if options != nil {
		stmt += " LIMIT ?, ?"
		args = append(args, options.Offset, options.Limit)
	}
	return stmt, args
}

// Writer appends rows inside one sql transaction.
type Writer struct {
	db    *sql.DB
	tx    *sql.Tx
	count int
}

func (w *Writer) exec(query string, args ...any) error {
	if w.tx == nil {
		tx, err := w.db.Begin()
		if err != nil {
			return err
		}
		w.tx = tx
	}
	if _, err := w.tx.Exec(query, args...); err != nil {
		return err
	}
	w.count++
	return nil
}

// WritePayout appends a payout row.
func (w *Writer) WritePayout(p *Payout) error {
	return w.exec("INSERT INTO payout(queueID, recipient, amount, time) VALUES (?, ?, ?, ?)",
		p.QueueID,
		p.Recipient.Bytes(),
		p.Amount.Bytes(),
		p.Time,
	)
}

// WriteDistribution appends a distribution row.
func (w *Writer) WriteDistribution(d *Distribution) error {
	var iscore []byte
	if d.IScore != nil {
		iscore = d.IScore.Bytes()
	}
	return w.exec("INSERT INTO distribution(amount, supply, increment, rate, iscore, time) VALUES (?, ?, ?, ?, ?, ?)",
		d.Amount.Bytes(),
		d.Supply.Bytes(),
		d.Increment.Bytes(),
		d.Rate.Bytes(),
		iscore,
		d.Time,
	)
}

// Commit commits accumulated rows.
func (w *Writer) Commit() error {
	if w.tx == nil {
		return nil
	}
	defer func() {
		w.tx = nil
	}()
	if err := w.tx.Commit(); err != nil {
		return err
	}
	metricRowsWritten().AddWithLabel(int64(w.count), map[string]string{"type": "commit"})
	w.count = 0
	return nil
}

// Rollback discards uncommitted rows.
func (w *Writer) Rollback() error {
	if w.tx == nil {
		return nil
	}
	defer func() {
		w.tx = nil
		w.count = 0
	}()
	return w.tx.Rollback()
}

// UncommittedCount returns the count of uncommitted rows.
func (w *Writer) UncommittedCount() int {
	return w.count
}
