// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

const payoutTableSchema = `
CREATE TABLE IF NOT EXISTS payout (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	queueID INTEGER NOT NULL,
	recipient BLOB(20) NOT NULL,
	amount BLOB NOT NULL,
	time INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS payoutRecipient ON payout(recipient);
CREATE INDEX IF NOT EXISTS payoutTime ON payout(time);
`

const distributionTableSchema = `
CREATE TABLE IF NOT EXISTS distribution (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	amount BLOB NOT NULL,
	supply BLOB NOT NULL,
	increment BLOB NOT NULL,
	rate BLOB NOT NULL,
	iscore BLOB,
	time INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS distributionTime ON distribution(time);
`
