// Copyright 2025 Canonical Ltd.
// Licensed under the AGPLv3, see LICENCE file for details.

package charm

import (
	"context"
	"time"

	"github.com/juju/errors"
)

// Notice records an event deferred by an observer.
type Notice struct {
	// ID is assigned by the storage when the notice is saved. Notices
	// are returned in ID order.
	ID int64

	// Observer is the key of the observer that deferred the event.
	Observer string

	// Kind is the kind of the deferred event.
	Kind string

	// Snapshot holds enough of the event to rebuild it.
	Snapshot map[string]interface{}

	// Created is when the event was first deferred.
	Created time.Time
}

// Storage persists deferred events between hook invocations.
type Storage interface {
	// SaveNotice stores a new notice.
	SaveNotice(ctx context.Context, notice Notice) error

	// Notices returns all stored notices, oldest first.
	Notices(ctx context.Context) ([]Notice, error)

	// DropNotice removes the notice with the given id. Dropping an
	// unknown notice is not an error.
	DropNotice(ctx context.Context, id int64) error
}

// MemoryStorage is a Storage that keeps notices in memory. It is
// suitable for tests and for a single process handling several hooks.
type MemoryStorage struct {
	lastID  int64
	notices []Notice
}

// NewMemoryStorage returns an empty MemoryStorage.
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

// SaveNotice is part of the Storage interface.
func (s *MemoryStorage) SaveNotice(ctx context.Context, notice Notice) error {
	if notice.Observer == "" {
		return errors.NotValidf("notice without observer")
	}
	s.lastID++
	notice.ID = s.lastID
	s.notices = append(s.notices, notice)
	return nil
}

// Notices is part of the Storage interface.
func (s *MemoryStorage) Notices(ctx context.Context) ([]Notice, error) {
	out := make([]Notice, len(s.notices))
	copy(out, s.notices)
	return out, nil
}

// DropNotice is part of the Storage interface.
func (s *MemoryStorage) DropNotice(ctx context.Context, id int64) error {
	for i, n := range s.notices {
		if n.ID == id {
			s.notices = append(s.notices[:i], s.notices[i+1:]...)
			return nil
		}
	}
	return nil
}
