package journal

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sadopc/clearway/internal/store"
)

func newTestRepo(t *testing.T) (*KVRepository, *store.Store) {
	t.Helper()
	s, err := store.NewMemory()
	if err != nil {
		t.Fatalf("new memory store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return NewKVRepository(s), s
}

// failingKV errors on every call after failAfter successful calls.
type failingKV struct {
	data      map[string]string
	calls     int
	failAfter int
}

func (f *failingKV) Get(_ context.Context, key string) (string, bool, error) {
	f.calls++
	if f.calls > f.failAfter {
		return "", false, errors.New("disk gone")
	}
	v, ok := f.data[key]
	return v, ok, nil
}

func (f *failingKV) Set(_ context.Context, key, value string) error {
	f.calls++
	if f.calls > f.failAfter {
		return errors.New("disk gone")
	}
	f.data[key] = value
	return nil
}

func TestLoadAllEmpty(t *testing.T) {
	repo, _ := newTestRepo(t)
	entries, err := repo.LoadAll(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty non-nil slice, got %#v", entries)
	}
}

func TestAppendRoundTrip(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	first := []Entry{
		{Date: "2026-10-17", Drank: true, Amount: 2, Feeling: MoodNotGreat},
		{Date: "2026-10-15", Feeling: MoodGood},
	}
	for _, e := range first {
		if err := repo.Append(ctx, e); err != nil {
			t.Fatal(err)
		}
	}

	before, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	e := Entry{Date: "2026-10-18", Feeling: MoodFantastic}
	if err := repo.Append(ctx, e); err != nil {
		t.Fatal(err)
	}
	after, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}

	want := append(before, e)
	if diff := cmp.Diff(want, after); diff != "" {
		t.Fatalf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestAppendAllowsDuplicateDates(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	repo.Append(ctx, Entry{Date: "2026-10-19", Feeling: MoodOkay})
	repo.Append(ctx, Entry{Date: "2026-10-19", Feeling: MoodGood})

	entries, _ := repo.LoadAll(ctx)
	if len(entries) != 2 {
		t.Fatalf("append must not dedupe, got %d entries", len(entries))
	}
}

func TestUpsertReplacesSameDate(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	repo.Append(ctx, Entry{Date: "2026-10-18", Feeling: MoodOkay})
	repo.Append(ctx, Entry{Date: "2026-10-19", Drank: true, Amount: 1, Feeling: MoodAwful})
	repo.Append(ctx, Entry{Date: "2026-10-20", Feeling: MoodGood})

	if err := repo.Upsert(ctx, Entry{Date: "2026-10-19", Feeling: MoodFantastic}); err != nil {
		t.Fatal(err)
	}
	entries, _ := repo.LoadAll(ctx)
	want := []Entry{
		{Date: "2026-10-18", Feeling: MoodOkay},
		{Date: "2026-10-19", Feeling: MoodFantastic},
		{Date: "2026-10-20", Feeling: MoodGood},
	}
	if diff := cmp.Diff(want, entries); diff != "" {
		t.Fatalf("upsert mismatch (-want +got):\n%s", diff)
	}
}

func TestUpsertAppendsNewDate(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()
	repo.Upsert(ctx, Entry{Date: "2026-10-19"})
	repo.Upsert(ctx, Entry{Date: "2026-10-20"})

	entries, _ := repo.LoadAll(ctx)
	if len(entries) != 2 || entries[1].Date != "2026-10-20" {
		t.Fatalf("unexpected entries %+v", entries)
	}
}

func TestMalformedBlobTreatedAsEmpty(t *testing.T) {
	repo, s := newTestRepo(t)
	ctx := context.Background()
	s.Set(ctx, EntriesKey, "{not json")

	entries, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatalf("malformed blob should not error: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}

	if err := repo.Append(ctx, Entry{Date: "2026-10-19"}); err != nil {
		t.Fatal(err)
	}
	saved, found, _ := s.Get(ctx, corruptKey)
	if !found || saved != "{not json" {
		t.Fatalf("corrupt blob not preserved: %q", saved)
	}
	entries, _ = repo.LoadAll(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after rewrite, got %d", len(entries))
	}
}

func TestBadFieldKeepsOtherEntries(t *testing.T) {
	repo, s := newTestRepo(t)
	ctx := context.Background()
	s.Set(ctx, EntriesKey, `[{"date":"2026-10-18","drank":true,"amount":2,"feeling":"Good"},{"date":20261019,"drank":false}]`)

	entries, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 || entries[0].Date != "2026-10-18" || entries[0].Amount != 2 {
		t.Fatalf("entries = %+v", entries)
	}

	if err := repo.Upsert(ctx, Entry{Date: "2026-10-19"}); err != nil {
		t.Fatal(err)
	}
	entries, _ = repo.LoadAll(ctx)
	if len(entries) != 3 || entries[0].Date != "2026-10-18" {
		t.Fatalf("upsert should keep existing entries, got %+v", entries)
	}
	if series := DeriveSeries(entries, 0); len(series.Labels) != 2 {
		t.Fatalf("undated entry should be left out of the chart, got %v", series.Labels)
	}
}

func TestConcurrentWritesKeepEveryEntry(t *testing.T) {
	repo, _ := newTestRepo(t)
	ctx := context.Background()

	const n = 100
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			d := fmt.Sprintf("2026-%02d-%02d", 1+i/28, 1+i%28)
			var err error
			if i%2 == 0 {
				err = repo.Upsert(ctx, Entry{Date: d})
			} else {
				err = repo.Append(ctx, Entry{Date: d})
			}
			if err != nil {
				t.Error(err)
			}
		}(i)
	}
	wg.Wait()

	entries, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != n {
		t.Fatalf("wrote %d distinct dates, stored %d", n, len(entries))
	}
}

func TestNullBlob(t *testing.T) {
	repo, s := newTestRepo(t)
	s.Set(context.Background(), EntriesKey, "null")
	entries, err := repo.LoadAll(context.Background())
	if err != nil || entries == nil || len(entries) != 0 {
		t.Fatalf("expected empty slice, got %#v err=%v", entries, err)
	}
}

func TestAppendStorageUnavailable(t *testing.T) {
	kv := &failingKV{data: map[string]string{}, failAfter: 1 << 30}
	repo := NewKVRepository(kv)
	ctx := context.Background()
	if err := repo.Append(ctx, Entry{Date: "2026-10-18"}); err != nil {
		t.Fatal(err)
	}
	prior := kv.data[EntriesKey]

	// Read succeeds, write fails.
	kv.failAfter = kv.calls + 1
	err := repo.Append(ctx, Entry{Date: "2026-10-19"})
	if !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable, got %v", err)
	}
	if kv.data[EntriesKey] != prior {
		t.Fatal("failed append must leave prior state unmodified")
	}

	// Read fails.
	kv.failAfter = kv.calls
	if _, err := repo.LoadAll(ctx); !errors.Is(err, ErrStorageUnavailable) {
		t.Fatalf("expected ErrStorageUnavailable on load, got %v", err)
	}
}
