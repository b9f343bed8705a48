package journal

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"
)

// memDocs is an in-memory DocumentStore.
type memDocs struct {
	docs map[string]map[string]any
	next int
	err  error
}

func newMemDocs() *memDocs {
	return &memDocs{docs: map[string]map[string]any{}}
}

func (m *memDocs) Create(_ context.Context, _ string, fields map[string]any) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.next++
	id := fmt.Sprintf("doc-%d", m.next)
	cp := map[string]any{}
	for k, v := range fields {
		cp[k] = v
	}
	m.docs[id] = cp
	return id, nil
}

func (m *memDocs) Update(_ context.Context, _ string, id string, fields map[string]any) error {
	if m.err != nil {
		return m.err
	}
	doc, ok := m.docs[id]
	if !ok {
		return errors.New("no such document")
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

func (m *memDocs) Delete(_ context.Context, _ string, id string) error {
	if m.err != nil {
		return m.err
	}
	delete(m.docs, id)
	return nil
}

func (m *memDocs) QueryByOwner(_ context.Context, _ string, owner string) ([]Document, error) {
	if m.err != nil {
		return nil, m.err
	}
	var out []Document
	for id, f := range m.docs {
		if f["ownerId"] == owner {
			out = append(out, Document{ID: id, Fields: f})
		}
	}
	return out, nil
}

func newRemote(docs DocumentStore, owner string) *RemoteRepository {
	r := NewRemoteRepository(docs, owner)
	base := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	tick := 0
	r.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}
	return r
}

func TestRemoteAppendAndLoadInOrder(t *testing.T) {
	docs := newMemDocs()
	repo := newRemote(docs, "uid-1")
	ctx := context.Background()

	dates := []string{"2026-10-19", "2026-10-17", "2026-10-18"}
	for _, d := range dates {
		if err := repo.Append(ctx, Entry{Date: d, Feeling: MoodOkay}); err != nil {
			t.Fatal(err)
		}
	}

	entries, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(entries))
	}
	for i, d := range dates {
		if entries[i].Date != d {
			t.Fatalf("entry %d: expected %s, got %s", i, d, entries[i].Date)
		}
		if entries[i].ID == "" {
			t.Fatal("remote entries should carry their document id")
		}
	}
}

func TestRemoteOwnerIsolation(t *testing.T) {
	docs := newMemDocs()
	ctx := context.Background()
	newRemote(docs, "uid-1").Append(ctx, Entry{Date: "2026-10-19"})
	newRemote(docs, "uid-2").Append(ctx, Entry{Date: "2026-10-19"})

	entries, _ := newRemote(docs, "uid-1").LoadAll(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected only uid-1 entries, got %d", len(entries))
	}
}

func TestRemoteUpsertUpdatesExisting(t *testing.T) {
	docs := newMemDocs()
	repo := newRemote(docs, "uid-1")
	ctx := context.Background()

	repo.Upsert(ctx, Entry{Date: "2026-10-19", Feeling: MoodAwful})
	repo.Upsert(ctx, Entry{Date: "2026-10-19", Drank: true, Amount: 3, Feeling: MoodOkay})

	entries, _ := repo.LoadAll(ctx)
	if len(entries) != 1 {
		t.Fatalf("upsert should keep one document per date, got %d", len(entries))
	}
	e := entries[0]
	if !e.Drank || e.Amount != 3 || e.Feeling != MoodOkay {
		t.Fatalf("unexpected entry %+v", e)
	}
}

func TestRemoteEditAndDelete(t *testing.T) {
	docs := newMemDocs()
	repo := newRemote(docs, "uid-1")
	ctx := context.Background()
	repo.Append(ctx, Entry{Date: "2026-10-19", Feeling: MoodOkay})

	entries, _ := repo.LoadAll(ctx)
	id := entries[0].ID

	if err := repo.Edit(ctx, id, map[string]any{"feeling": string(MoodGood)}); err != nil {
		t.Fatal(err)
	}
	entries, _ = repo.LoadAll(ctx)
	if entries[0].Feeling != MoodGood {
		t.Fatalf("edit not applied: %+v", entries[0])
	}

	if err := repo.Delete(ctx, id); err != nil {
		t.Fatal(err)
	}
	entries, _ = repo.LoadAll(ctx)
	if len(entries) != 0 {
		t.Fatal("entry should be deleted")
	}

	if err := repo.Delete(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestRemoteUnavailable(t *testing.T) {
	docs := newMemDocs()
	docs.err = errors.New("deadline exceeded")
	repo := newRemote(docs, "uid-1")
	ctx := context.Background()

	if err := repo.Append(ctx, Entry{Date: "2026-10-19"}); !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("append: expected ErrRemoteUnavailable, got %v", err)
	}
	if _, err := repo.LoadAll(ctx); !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("load: expected ErrRemoteUnavailable, got %v", err)
	}
	if err := repo.Upsert(ctx, Entry{Date: "2026-10-19"}); !errors.Is(err, ErrRemoteUnavailable) {
		t.Fatalf("upsert: expected ErrRemoteUnavailable, got %v", err)
	}
}

func TestEntryFromDocumentNumericTypes(t *testing.T) {
	e := entryFromDocument(Document{ID: "x", Fields: map[string]any{
		"date":    "2026-10-19",
		"amount":  int64(2),
		"feeling": "Good",
	}})
	if e.Amount != 2 || !e.Drank || e.Feeling != MoodGood {
		t.Fatalf("unexpected entry %+v", e)
	}
	e = entryFromDocument(Document{ID: "y", Fields: map[string]any{"amount": -4.0}})
	if e.Amount != 0 {
		t.Fatalf("negative amount should clamp to 0, got %d", e.Amount)
	}
}
