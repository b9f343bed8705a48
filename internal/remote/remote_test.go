package remote

import (
	"context"
	"errors"
	"os"
	"testing"

	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"

	"github.com/sadopc/clearway/internal/journal"
)

type fakeUsers map[string]*auth.UserRecord

func (f fakeUsers) GetUserByEmail(_ context.Context, email string) (*auth.UserRecord, error) {
	if rec, ok := f[email]; ok {
		return rec, nil
	}
	return nil, errors.New("backend unavailable")
}

func record(uid, email string, disabled bool) *auth.UserRecord {
	return &auth.UserRecord{
		UserInfo: &auth.UserInfo{UID: uid, Email: email},
		Disabled: disabled,
	}
}

func TestCurrentUser(t *testing.T) {
	users := fakeUsers{
		"sam@example.com": record("uid-1", "sam@example.com", false),
		"off@example.com": record("uid-2", "off@example.com", true),
	}
	ctx := context.Background()

	u, err := CurrentUser(ctx, users, "sam@example.com")
	if err != nil {
		t.Fatal(err)
	}
	if u.UID != "uid-1" || u.Email != "sam@example.com" {
		t.Fatalf("unexpected user %+v", u)
	}

	if _, err := CurrentUser(ctx, users, ""); !errors.Is(err, ErrNoUser) {
		t.Fatalf("expected ErrNoUser, got %v", err)
	}
	if _, err := CurrentUser(ctx, users, "off@example.com"); !errors.Is(err, ErrUserDisabled) {
		t.Fatalf("expected ErrUserDisabled, got %v", err)
	}
	if _, err := CurrentUser(ctx, users, "nobody@example.com"); err == nil {
		t.Fatal("expected lookup error")
	}
}

// ============================================================
// Firestore (emulator only)
// ============================================================

func newEmulatorDocuments(t *testing.T) *Documents {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	ctx := context.Background()
	app, err := NewApp(ctx, Config{ProjectID: "clearway-test"})
	if err != nil {
		t.Fatal(err)
	}
	docs, err := NewDocuments(ctx, app)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { docs.Close() })
	return docs
}

func TestFirestoreJournalRoundTrip(t *testing.T) {
	docs := newEmulatorDocuments(t)
	ctx := context.Background()
	repo := journal.NewRemoteRepository(docs, "owner-"+uuid.NewString())

	if err := repo.Append(ctx, journal.Entry{Date: "2026-10-18", Drank: true, Amount: 2}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Upsert(ctx, journal.Entry{Date: "2026-10-19", Feeling: journal.MoodGood}); err != nil {
		t.Fatal(err)
	}
	if err := repo.Upsert(ctx, journal.Entry{Date: "2026-10-19", Feeling: journal.MoodFantastic}); err != nil {
		t.Fatal(err)
	}

	entries, err := repo.LoadAll(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %+v", entries)
	}
	if entries[0].Amount != 2 || entries[1].Feeling != journal.MoodFantastic {
		t.Fatalf("unexpected entries %+v", entries)
	}

	if err := repo.Delete(ctx, entries[0].ID); err != nil {
		t.Fatal(err)
	}
	if err := repo.Edit(ctx, "missing-"+uuid.NewString(), map[string]any{"amount": 1}); !errors.Is(err, journal.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	entries, _ = repo.LoadAll(ctx)
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry after delete, got %d", len(entries))
	}
}
