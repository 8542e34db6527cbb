// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

// Package noticestore persists deferred events in a SQLite database, so
// they survive between hook invocations of the charm process.
package noticestore

import (
	"context"
	"database/sql"

	"github.com/canonical/sqlair"
	"github.com/juju/collections/transform"
	"github.com/juju/errors"
	"github.com/juju/loggo/v2"
	_ "github.com/mattn/go-sqlite3"
	"gopkg.in/yaml.v3"

	"github.com/charmed-hpc/hpc-libs/charm"
)

var logger = loggo.GetLogger("hpc.noticestore")

const schemaDDL = `
CREATE TABLE IF NOT EXISTS notice (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    observer    TEXT NOT NULL,
    kind        TEXT NOT NULL,
    snapshot    TEXT NOT NULL,
    created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_notice_observer ON notice (observer);
`

// State implements charm.Storage on a SQLite database.
type State struct {
	sqlDB *sql.DB
	db    *sqlair.DB

	insertStmt *sqlair.Statement
	selectStmt *sqlair.Statement
	deleteStmt *sqlair.Statement
}

var _ charm.Storage = (*State)(nil)

// Open opens (creating if needed) the notice database at path.
func Open(ctx context.Context, path string) (*State, error) {
	sqlDB, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, errors.Annotatef(err, "opening %q", path)
	}
	st, err := NewState(ctx, sqlDB)
	if err != nil {
		_ = sqlDB.Close()
		return nil, errors.Trace(err)
	}
	return st, nil
}

// NewState returns a State using db, creating the notice table if it
// does not exist.
func NewState(ctx context.Context, db *sql.DB) (*State, error) {
	if _, err := db.ExecContext(ctx, schemaDDL); err != nil {
		return nil, errors.Annotate(err, "creating notice schema")
	}
	insertStmt, err := sqlair.Prepare(`
INSERT INTO notice (observer, kind, snapshot, created_at)
VALUES ($dbNotice.observer, $dbNotice.kind, $dbNotice.snapshot, $dbNotice.created_at)`, dbNotice{})
	if err != nil {
		return nil, errors.Annotate(err, "preparing insert notice statement")
	}
	selectStmt, err := sqlair.Prepare(`
SELECT &dbNotice.*
FROM   notice
ORDER BY id`, dbNotice{})
	if err != nil {
		return nil, errors.Annotate(err, "preparing select notices statement")
	}
	deleteStmt, err := sqlair.Prepare(`
DELETE FROM notice
WHERE  id = $dbNotice.id`, dbNotice{})
	if err != nil {
		return nil, errors.Annotate(err, "preparing delete notice statement")
	}
	return &State{
		sqlDB:      db,
		db:         sqlair.NewDB(db),
		insertStmt: insertStmt,
		selectStmt: selectStmt,
		deleteStmt: deleteStmt,
	}, nil
}

// Close closes the underlying database.
func (s *State) Close() error {
	return errors.Trace(s.sqlDB.Close())
}

// SaveNotice is part of the charm.Storage interface.
func (s *State) SaveNotice(ctx context.Context, notice charm.Notice) error {
	if notice.Observer == "" {
		return errors.NotValidf("notice without observer")
	}
	snapshot, err := yaml.Marshal(notice.Snapshot)
	if err != nil {
		return errors.Annotatef(err, "encoding %q snapshot", notice.Kind)
	}
	row := dbNotice{
		Observer: notice.Observer,
		Kind:     notice.Kind,
		Snapshot: string(snapshot),
		Created:  notice.Created.UnixNano(),
	}
	if err := s.db.Query(ctx, s.insertStmt, row).Run(); err != nil {
		return errors.Annotatef(err, "inserting %q notice", notice.Kind)
	}
	logger.Debugf("saved %q notice for %s", notice.Kind, notice.Observer)
	return nil
}

// Notices is part of the charm.Storage interface.
func (s *State) Notices(ctx context.Context) ([]charm.Notice, error) {
	var rows []dbNotice
	err := s.db.Query(ctx, s.selectStmt).GetAll(&rows)
	if errors.Is(err, sqlair.ErrNoRows) {
		return nil, nil
	} else if err != nil {
		return nil, errors.Annotate(err, "retrieving notices")
	}
	notices := transform.Slice(rows, dbNotice.toNotice)
	for i, row := range rows {
		if err := yaml.Unmarshal([]byte(row.Snapshot), &notices[i].Snapshot); err != nil {
			return nil, errors.Annotatef(err, "decoding notice %d", row.ID)
		}
	}
	return notices, nil
}

// DropNotice is part of the charm.Storage interface.
func (s *State) DropNotice(ctx context.Context, id int64) error {
	if err := s.db.Query(ctx, s.deleteStmt, dbNotice{ID: id}).Run(); err != nil {
		return errors.Annotatef(err, "deleting notice %d", id)
	}
	return nil
}
