package journal

import (
	"context"
	"errors"
)

var (
	// ErrStorageUnavailable wraps failures of the local key-value store.
	ErrStorageUnavailable = errors.New("journal storage unavailable")
	// ErrRemoteUnavailable wraps failures of a remote backend.
	ErrRemoteUnavailable = errors.New("journal remote unavailable")
	// ErrNotFound is returned by Edit and Delete for unknown ids.
	ErrNotFound = errors.New("journal entry not found")
)

// Repository persists journal entries. LoadAll returns entries in storage
// order, which is not guaranteed to be date order.
type Repository interface {
	Append(ctx context.Context, e Entry) error
	Upsert(ctx context.Context, e Entry) error
	LoadAll(ctx context.Context) ([]Entry, error)
}

// upsertByDate replaces the first entry sharing e.Date, or appends.
func upsertByDate(entries []Entry, e Entry) []Entry {
	for i := range entries {
		if entries[i].Date == e.Date {
			out := make([]Entry, len(entries))
			copy(out, entries)
			out[i] = e
			return out
		}
	}
	return append(entries, e)
}
