// Package persist is the session-scoped keyed record store.
//
// Every record carries a key, a string value and seven integer slots. Several
// records may share a key; List returns them in creation order. All stores are
// scoped to one session id fixed at construction.
package persist

import (
	"context"

	"github.com/teranos/foreman/errors"
)

// IntSlots is the number of integer slots on a record.
const IntSlots = 7

// Record is one persisted entry. Unset integer slots hold -1.
type Record struct {
	ID    int64
	Key   string
	Value string
	Ints  [IntSlots]int
}

// Store reads and writes session records.
type Store interface {
	// Get returns the first record with key, or an error matching
	// errors.ErrNotFound.
	Get(ctx context.Context, key string) (*Record, error)

	// List returns every record with key in creation order.
	List(ctx context.Context, key string) ([]*Record, error)

	// Add creates an empty record with key.
	Add(ctx context.Context, key string) (*Record, error)

	// Save writes back a record returned by Get, List or Add.
	Save(ctx context.Context, rec *Record) error

	// Delete removes a record.
	Delete(ctx context.Context, rec *Record) error
}

func newRecord(key string) *Record {
	rec := &Record{Key: key}
	for i := range rec.Ints {
		rec.Ints[i] = -1
	}
	return rec
}

func notFound(key string) error {
	return errors.Wrapf(errors.ErrNotFound, "no record for key %q", key)
}
