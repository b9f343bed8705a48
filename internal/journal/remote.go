package journal

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"
)

// RemoteCollection is the document collection journal entries live in.
const RemoteCollection = "journalEntries"

// Document is one record of a remote document store.
type Document struct {
	ID     string
	Fields map[string]any
}

// DocumentStore is the hosted document database the remote journal uses.
type DocumentStore interface {
	Create(ctx context.Context, collection string, fields map[string]any) (string, error)
	Update(ctx context.Context, collection, id string, fields map[string]any) error
	Delete(ctx context.Context, collection, id string) error
	QueryByOwner(ctx context.Context, collection, owner string) ([]Document, error)
}

// RemoteRepository stores one document per entry, owned by a user id.
type RemoteRepository struct {
	docs  DocumentStore
	owner string
	now   func() time.Time
}

func NewRemoteRepository(docs DocumentStore, owner string) *RemoteRepository {
	return &RemoteRepository{docs: docs, owner: owner, now: time.Now}
}

func (r *RemoteRepository) Append(ctx context.Context, e Entry) error {
	if _, err := r.docs.Create(ctx, RemoteCollection, r.fields(e, true)); err != nil {
		return fmt.Errorf("%w: create: %v", ErrRemoteUnavailable, err)
	}
	return nil
}

func (r *RemoteRepository) Upsert(ctx context.Context, e Entry) error {
	entries, err := r.LoadAll(ctx)
	if err != nil {
		return err
	}
	for _, existing := range entries {
		if existing.Date == e.Date {
			if err := r.docs.Update(ctx, RemoteCollection, existing.ID, r.fields(e, false)); err != nil {
				return fmt.Errorf("%w: update %s: %v", ErrRemoteUnavailable, existing.ID, err)
			}
			return nil
		}
	}
	return r.Append(ctx, e)
}

// LoadAll returns the owner's entries in creation order.
func (r *RemoteRepository) LoadAll(ctx context.Context) ([]Entry, error) {
	docs, err := r.docs.QueryByOwner(ctx, RemoteCollection, r.owner)
	if err != nil {
		return nil, fmt.Errorf("%w: query: %v", ErrRemoteUnavailable, err)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		return toInt64(docs[i].Fields["seq"]) < toInt64(docs[j].Fields["seq"])
	})

	entries := make([]Entry, 0, len(docs))
	for _, d := range docs {
		entries = append(entries, entryFromDocument(d))
	}
	return entries, nil
}

// Edit changes selected fields of one entry. Keys follow the JSON names of
// Entry: date, drank, amount, feeling.
func (r *RemoteRepository) Edit(ctx context.Context, id string, fields map[string]any) error {
	if id == "" {
		return ErrNotFound
	}
	err := r.docs.Update(ctx, RemoteCollection, id, fields)
	if errors.Is(err, ErrNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: update %s: %v", ErrRemoteUnavailable, id, err)
	}
	return nil
}

func (r *RemoteRepository) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrNotFound
	}
	if err := r.docs.Delete(ctx, RemoteCollection, id); err != nil {
		return fmt.Errorf("%w: delete %s: %v", ErrRemoteUnavailable, id, err)
	}
	return nil
}

func (r *RemoteRepository) fields(e Entry, create bool) map[string]any {
	f := map[string]any{
		"date":    e.Date,
		"drank":   e.Drank,
		"amount":  e.Amount,
		"feeling": string(e.Feeling),
	}
	if create {
		now := r.now()
		f["ownerId"] = r.owner
		f["createdAt"] = now
		f["seq"] = now.UnixNano()
	}
	return f
}

func entryFromDocument(d Document) Entry {
	e := Entry{ID: d.ID}
	e.Date, _ = d.Fields["date"].(string)
	e.Drank, _ = d.Fields["drank"].(bool)
	e.Amount = int(max(toInt64(d.Fields["amount"]), 0))
	if label, ok := d.Fields["feeling"].(string); ok {
		e.Feeling, _ = ParseMood(label)
	}
	if e.Amount > 0 {
		e.Drank = true
	}
	return e
}

func toInt64(v any) int64 {
	switch n := v.(type) {
	case int:
		return int64(n)
	case int32:
		return int64(n)
	case int64:
		return n
	case float64:
		return int64(n)
	case string:
		return int64(ParseAmount(n))
	}
	return 0
}
