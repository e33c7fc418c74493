package hashcache_test

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"dfhash/internal/hashcache"
	"dfhash/internal/loader"
	"dfhash/internal/testsupport"
)

const digest = "e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

var commaOptions = loader.DefaultOptions().Fingerprint()

func openStore(t *testing.T, path string) *hashcache.Store {
	t.Helper()
	store, err := hashcache.Open(context.Background(), path)
	if err != nil {
		t.Fatalf("hashcache.Open: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestLookupRecordRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, filepath.Join(dir, "cache", "hashes.db"))
	data := testsupport.WriteCSV(t, dir, "data.csv", "a\n1\n")
	ctx := context.Background()

	key, _, ok, err := store.Lookup(ctx, data, commaOptions)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if ok {
		t.Fatal("expected miss on empty cache")
	}
	if !filepath.IsAbs(key.Path) {
		t.Fatalf("expected absolute key path, got %q", key.Path)
	}

	written, err := store.Record(ctx, key, digest, 1, 1)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if !written {
		t.Fatal("expected entry to be written for unchanged file")
	}

	_, got, ok, err := store.Lookup(ctx, data, commaOptions)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if !ok || got != digest {
		t.Fatalf("expected hit with %s, got ok=%v digest=%q", digest, ok, got)
	}
}

func TestLookupMissesAfterFileChanges(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, filepath.Join(dir, "hashes.db"))
	data := testsupport.WriteCSV(t, dir, "data.csv", "a\n1\n")
	ctx := context.Background()

	key, _, _, err := store.Lookup(ctx, data, commaOptions)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if _, err := store.Record(ctx, key, digest, 1, 1); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	testsupport.WriteCSV(t, dir, "data.csv", "a\n1\n2\n")
	if _, _, ok, err := store.Lookup(ctx, data, commaOptions); err != nil || ok {
		t.Fatalf("expected miss after rewrite, got ok=%v err=%v", ok, err)
	}
}

func TestLookupMissesWithDifferentLoaderOptions(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, filepath.Join(dir, "hashes.db"))
	data := testsupport.WriteCSV(t, dir, "data.csv", "a;b\n1;2\n3;4\n")
	ctx := context.Background()

	key, _, _, err := store.Lookup(ctx, data, commaOptions)
	if err != nil {
		t.Fatalf("Lookup failed: %v", err)
	}
	if _, err := store.Record(ctx, key, digest, 2, 1); err != nil {
		t.Fatalf("Record failed: %v", err)
	}

	semicolon := loader.DefaultOptions()
	semicolon.Delimiter = ';'
	if _, _, ok, err := store.Lookup(ctx, data, semicolon.Fingerprint()); err != nil || ok {
		t.Fatalf("expected miss for other delimiter, got ok=%v err=%v", ok, err)
	}
	if _, got, ok, err := store.Lookup(ctx, data, commaOptions); err != nil || !ok || got != digest {
		t.Fatalf("expected hit for original options, got ok=%v digest=%q err=%v", ok, got, err)
	}
}

func TestRecordSkipsFileChangedDuringHashing(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, filepath.Join(dir, "hashes.db"))
	data := testsupport.WriteCSV(t, dir, "data.csv", "a\n1\n")
	ctx := context.Background()

	key, err := hashcache.KeyFor(data, commaOptions)
	if err != nil {
		t.Fatalf("KeyFor failed: %v", err)
	}
	testsupport.WriteCSV(t, dir, "data.csv", "a\n12345\n")

	written, err := store.Record(ctx, key, digest, 1, 1)
	if err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if written {
		t.Fatal("expected stale key to be rejected")
	}
	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected no entries, got %d", len(entries))
	}
}

func TestListStatsAndClear(t *testing.T) {
	dir := t.TempDir()
	store := openStore(t, filepath.Join(dir, "hashes.db"))
	ctx := context.Background()

	for i, name := range []string{"a.csv", "b.csv"} {
		path := testsupport.WriteCSV(t, dir, name, "x\n1\n2\n")
		key, err := hashcache.KeyFor(path, commaOptions)
		if err != nil {
			t.Fatalf("KeyFor failed: %v", err)
		}
		if _, err := store.Record(ctx, key, strings.Repeat(string(rune('a'+i)), 64), 2, 1); err != nil {
			t.Fatalf("Record failed: %v", err)
		}
	}

	entries, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	for _, entry := range entries {
		if entry.Rows != 2 || entry.Columns != 1 || entry.HashedAt.IsZero() {
			t.Fatalf("unexpected entry %+v", entry)
		}
	}

	stats, err := store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Entries != 2 || stats.Rows != 4 || stats.SizeBytes == 0 {
		t.Fatalf("unexpected stats %+v", stats)
	}
	if stats.Newest.Before(stats.Oldest) {
		t.Fatalf("newest %v before oldest %v", stats.Newest, stats.Oldest)
	}

	removed, err := store.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear failed: %v", err)
	}
	if removed != 2 {
		t.Fatalf("expected 2 removed, got %d", removed)
	}
	stats, err = store.Stats(ctx)
	if err != nil {
		t.Fatalf("Stats failed: %v", err)
	}
	if stats.Entries != 0 || !stats.Oldest.IsZero() {
		t.Fatalf("expected empty stats, got %+v", stats)
	}
}

func TestClearFailsWhileShared(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hashes.db")
	hashing := openStore(t, path)
	if err := hashing.Share(); err != nil {
		t.Fatalf("Share failed: %v", err)
	}

	other := openStore(t, path)
	if _, err := other.Clear(context.Background()); !errors.Is(err, hashcache.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}

	if err := hashing.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
	if _, err := other.Clear(context.Background()); err != nil {
		t.Fatalf("Clear after release failed: %v", err)
	}
}

func TestReopenKeepsEntries(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hashes.db")
	data := testsupport.WriteCSV(t, dir, "data.csv", "a\n1\n")
	ctx := context.Background()

	first := openStore(t, path)
	key, err := hashcache.KeyFor(data, commaOptions)
	if err != nil {
		t.Fatalf("KeyFor failed: %v", err)
	}
	if _, err := first.Record(ctx, key, digest, 1, 1); err != nil {
		t.Fatalf("Record failed: %v", err)
	}
	if err := first.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	second := openStore(t, path)
	if _, got, ok, err := second.Lookup(ctx, data, commaOptions); err != nil || !ok || got != digest {
		t.Fatalf("expected persisted hit, got ok=%v digest=%q err=%v", ok, got, err)
	}
}
