package journal

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/sadopc/clearway/internal/logger"
)

const (
	// EntriesKey holds the JSON array of entries.
	EntriesKey = "journalEntries"
	corruptKey = EntriesKey + ".corrupt"
)

// KV is the subset of the on-device store the journal needs.
type KV interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
}

// KVRepository keeps every entry as one JSON array under EntriesKey. Writes
// are read-modify-write of the whole array, serialized by mu.
type KVRepository struct {
	mu sync.Mutex
	kv KV
}

func NewKVRepository(kv KV) *KVRepository {
	return &KVRepository{kv: kv}
}

func (r *KVRepository) LoadAll(ctx context.Context) ([]Entry, error) {
	entries, _, err := r.load(ctx)
	return entries, err
}

func (r *KVRepository) Append(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, raw, err := r.load(ctx)
	if err != nil {
		return err
	}
	return r.save(ctx, append(entries, e), raw)
}

func (r *KVRepository) Upsert(ctx context.Context, e Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	entries, raw, err := r.load(ctx)
	if err != nil {
		return err
	}
	return r.save(ctx, upsertByDate(entries, e), raw)
}

// load returns the stored entries. When the blob cannot be decoded it is
// treated as empty and the raw text is returned so save can keep a copy.
func (r *KVRepository) load(ctx context.Context) ([]Entry, string, error) {
	blob, found, err := r.kv.Get(ctx, EntriesKey)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if !found || blob == "" {
		return []Entry{}, "", nil
	}

	var entries []Entry
	if err := json.Unmarshal([]byte(blob), &entries); err != nil {
		logger.Warn("Journal blob is malformed, treating as empty", "key", EntriesKey, "error", err)
		return []Entry{}, blob, nil
	}
	if entries == nil {
		entries = []Entry{}
	}
	return entries, "", nil
}

func (r *KVRepository) save(ctx context.Context, entries []Entry, corrupt string) error {
	data, err := json.Marshal(entries)
	if err != nil {
		return fmt.Errorf("marshal journal: %w", err)
	}
	if corrupt != "" {
		if err := r.kv.Set(ctx, corruptKey, corrupt); err != nil {
			return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
		}
		logger.Warn("Preserved malformed journal blob", "key", corruptKey)
	}
	if err := r.kv.Set(ctx, EntriesKey, string(data)); err != nil {
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}
