package hashcache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// timeLayout has fixed-width fractions so stored timestamps sort as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const entryColumns = "path, size, mtime_ns, ctime_ns, device, inode, options, digest, row_count, column_count, hashed_at"

// Lookup stats path and returns its key together with the cached digest when
// the stored entry still describes the file on disk and was produced with the
// same loader options.
func (s *Store) Lookup(ctx context.Context, path, options string) (Key, string, bool, error) {
	key, err := KeyFor(path, options)
	if err != nil {
		return Key{}, "", false, err
	}
	entry, err := s.get(ctx, key.Path)
	if err != nil {
		return key, "", false, err
	}
	if entry == nil || !entry.Key.Matches(key) {
		return key, "", false, nil
	}
	return key, entry.Digest, true, nil
}

// Record stores digest under key unless the file changed since key was taken.
// It reports whether the entry was written.
func (s *Store) Record(ctx context.Context, key Key, digest string, rows, columns int) (bool, error) {
	current, err := KeyFor(key.Path, key.Options)
	if err != nil {
		return false, err
	}
	if !current.Matches(key) {
		return false, nil
	}
	err = s.Put(ctx, Entry{
		Key:      key,
		Digest:   digest,
		Rows:     rows,
		Columns:  columns,
		HashedAt: time.Now().UTC(),
	})
	if err != nil {
		return false, err
	}
	return true, nil
}

// Put inserts or replaces an entry.
func (s *Store) Put(ctx context.Context, entry Entry) error {
	if entry.HashedAt.IsZero() {
		entry.HashedAt = time.Now().UTC()
	}
	_, err := s.execWithRetry(ctx,
		`INSERT INTO entries (`+entryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			size = excluded.size,
			mtime_ns = excluded.mtime_ns,
			ctime_ns = excluded.ctime_ns,
			device = excluded.device,
			inode = excluded.inode,
			options = excluded.options,
			digest = excluded.digest,
			row_count = excluded.row_count,
			column_count = excluded.column_count,
			hashed_at = excluded.hashed_at`,
		entry.Path,
		entry.Size,
		entry.ModTimeNS,
		entry.CTimeNS,
		int64(entry.Device),
		int64(entry.Inode),
		entry.Options,
		entry.Digest,
		entry.Rows,
		entry.Columns,
		entry.HashedAt.UTC().Format(timeLayout),
	)
	if err != nil {
		return fmt.Errorf("store cache entry: %w", err)
	}
	return nil
}

func (s *Store) get(ctx context.Context, path string) (*Entry, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+entryColumns+" FROM entries WHERE path = ?", path)
	entry, err := scanEntry(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache entry: %w", err)
	}
	return entry, nil
}

// List returns all entries, most recently hashed first.
func (s *Store) List(ctx context.Context) ([]*Entry, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+entryColumns+" FROM entries ORDER BY hashed_at DESC, path")
	if err != nil {
		return nil, fmt.Errorf("list cache entries: %w", err)
	}
	defer rows.Close()

	var entries []*Entry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cache entry: %w", err)
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// Stats summarizes the cache.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	stats := Stats{Path: s.path}
	var (
		rows           sql.NullInt64
		oldest, newest sql.NullString
	)
	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(1), SUM(row_count), MIN(hashed_at), MAX(hashed_at) FROM entries",
	).Scan(&stats.Entries, &rows, &oldest, &newest)
	if err != nil {
		return stats, fmt.Errorf("summarize cache: %w", err)
	}
	stats.Rows = rows.Int64
	stats.Oldest = parseTime(oldest.String)
	stats.Newest = parseTime(newest.String)
	for _, suffix := range []string{"", "-wal", "-shm"} {
		if info, err := os.Stat(s.path + suffix); err == nil {
			stats.SizeBytes += info.Size()
		}
	}
	return stats, nil
}

// Clear removes every entry. It needs the exclusive lock and returns
// ErrLocked while a hashing run holds the shared one.
func (s *Store) Clear(ctx context.Context) (int64, error) {
	ok, err := s.lock.TryLock()
	if err != nil {
		return 0, fmt.Errorf("acquire exclusive cache lock: %w", err)
	}
	if !ok {
		return 0, ErrLocked
	}
	defer func() {
		_ = s.lock.Unlock()
		s.shared = false
	}()

	res, err := s.execWithRetry(ctx, "DELETE FROM entries")
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("clear cache: %w", err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (*Entry, error) {
	var (
		entry         Entry
		device, inode int64
		hashedAt      string
	)
	if err := row.Scan(
		&entry.Path,
		&entry.Size,
		&entry.ModTimeNS,
		&entry.CTimeNS,
		&device,
		&inode,
		&entry.Options,
		&entry.Digest,
		&entry.Rows,
		&entry.Columns,
		&hashedAt,
	); err != nil {
		return nil, err
	}
	entry.Device = uint64(device)
	entry.Inode = uint64(inode)
	entry.HashedAt = parseTime(hashedAt)
	return &entry, nil
}

func parseTime(value string) time.Time {
	if value == "" {
		return time.Time{}
	}
	t, err := time.Parse(timeLayout, value)
	if err != nil {
		return time.Time{}
	}
	return t
}
