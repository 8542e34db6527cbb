// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package noticestore

import (
	"time"

	"github.com/charmed-hpc/hpc-libs/charm"
)

// dbNotice represents a row of the notice table.
type dbNotice struct {
	ID       int64  `db:"id"`
	Observer string `db:"observer"`
	Kind     string `db:"kind"`
	Snapshot string `db:"snapshot"`
	Created  int64  `db:"created_at"`
}

func (n dbNotice) toNotice() charm.Notice {
	return charm.Notice{
		ID:       n.ID,
		Observer: n.Observer,
		Kind:     n.Kind,
		Created:  time.Unix(0, n.Created).UTC(),
	}
}
