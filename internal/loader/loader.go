package loader

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	"dfhash/internal/failure"
	"dfhash/internal/logging"
	"dfhash/internal/table"
)

// Format identifies the container of an input file.
type Format int

const (
	FormatDelimited Format = iota
	FormatGzip
	FormatZstd
	FormatParquet
)

func (f Format) String() string {
	switch f {
	case FormatGzip:
		return "gzip"
	case FormatZstd:
		return "zstd"
	case FormatParquet:
		return "parquet"
	default:
		return "delimited"
	}
}

var (
	gzipMagic    = []byte{0x1f, 0x8b}
	zstdMagic    = []byte{0x28, 0xb5, 0x2f, 0xfd}
	parquetMagic = []byte("PAR1")
)

// Options controls delimited-text parsing.
type Options struct {
	Delimiter  rune
	Encoding   string
	NullValues []string
	HasHeader  bool
}

// DefaultOptions returns comma-delimited, header-first, BOM-sniffed input
// where empty cells are null.
func DefaultOptions() Options {
	return Options{
		Delimiter:  ',',
		Encoding:   "auto",
		NullValues: []string{""},
		HasHeader:  true,
	}
}

// Fingerprint renders the options that influence how a file becomes a table.
// Equal fingerprints mean equal tables for the same bytes on disk.
func (o Options) Fingerprint() string {
	if o.Delimiter == 0 {
		o.Delimiter = ','
	}
	encoding := strings.ToLower(strings.TrimSpace(o.Encoding))
	if encoding == "" {
		encoding = "auto"
	}
	nulls := slices.Clone(o.NullValues)
	slices.Sort(nulls)
	nulls = slices.Compact(nulls)
	quoted := make([]string, len(nulls))
	for i, value := range nulls {
		quoted[i] = strconv.Quote(value)
	}
	return fmt.Sprintf("delimiter=%s encoding=%s header=%t nulls=[%s]",
		strconv.QuoteRune(o.Delimiter), encoding, o.HasHeader, strings.Join(quoted, ","))
}

// Loader reads files into typed tables. It is safe for concurrent use; each
// Load call owns the table it returns.
type Loader struct {
	opts   Options
	logger *slog.Logger
}

// New constructs a Loader. A nil logger discards diagnostics.
func New(opts Options, logger *slog.Logger) *Loader {
	if opts.Delimiter == 0 {
		opts.Delimiter = ','
	}
	if strings.TrimSpace(opts.Encoding) == "" {
		opts.Encoding = "auto"
	}
	return &Loader{opts: opts, logger: logging.NewComponentLogger(logger, "loader")}
}

// Fingerprint returns the fingerprint of the loader's options.
func (l *Loader) Fingerprint() string {
	return l.opts.Fingerprint()
}

// Load decodes path. Every error wraps failure.ErrLoad.
func (l *Loader) Load(ctx context.Context, path string) (*table.Table, error) {
	start := time.Now()
	tbl, format, err := l.load(ctx, path)
	if err != nil {
		return nil, failure.Wrap(failure.ErrLoad, "", "", err)
	}
	logging.WithContext(ctx, l.logger).Debug("loaded table",
		logging.String("format", format.String()),
		logging.Int("rows", tbl.NumRows()),
		logging.Int("columns", tbl.NumColumns()),
		logging.Duration("elapsed", time.Since(start)),
	)
	return tbl, nil
}

func (l *Loader) load(ctx context.Context, path string) (*table.Table, Format, error) {
	if err := ctx.Err(); err != nil {
		return nil, FormatDelimited, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, FormatDelimited, err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, FormatDelimited, err
	}
	if info.IsDir() {
		return nil, FormatDelimited, fmt.Errorf("%s is a directory", path)
	}

	head := make([]byte, 4)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, FormatDelimited, fmt.Errorf("read %s: %w", path, err)
	}
	format := DetectFormat(path, head[:n])
	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return nil, format, fmt.Errorf("rewind %s: %w", path, err)
	}

	opts := l.opts
	if isTSV(path) {
		opts.Delimiter = '\t'
	}

	var tbl *table.Table
	switch format {
	case FormatParquet:
		tbl, err = readParquet(ctx, file)
	case FormatGzip, FormatZstd:
		var rc io.ReadCloser
		rc, err = decompress(file, format)
		if err != nil {
			return nil, format, err
		}
		defer rc.Close()
		tbl, err = readDelimited(ctx, bufio.NewReaderSize(rc, 64*1024), opts)
	default:
		tbl, err = readDelimited(ctx, bufio.NewReaderSize(file, 64*1024), opts)
	}
	if err != nil {
		return nil, format, err
	}
	return tbl, format, nil
}

// DetectFormat identifies the container from the leading bytes of a file,
// falling back to its suffix when the bytes are inconclusive.
func DetectFormat(path string, head []byte) Format {
	switch {
	case bytes.HasPrefix(head, parquetMagic):
		return FormatParquet
	case bytes.HasPrefix(head, zstdMagic):
		return FormatZstd
	case bytes.HasPrefix(head, gzipMagic):
		return FormatGzip
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".parquet", ".pq":
		return FormatParquet
	case ".gz", ".gzip":
		return FormatGzip
	case ".zst", ".zstd":
		return FormatZstd
	}
	return FormatDelimited
}

func isTSV(path string) bool {
	name := strings.ToLower(filepath.Base(path))
	for _, suffix := range []string{".gz", ".gzip", ".zst", ".zstd"} {
		name = strings.TrimSuffix(name, suffix)
	}
	return strings.HasSuffix(name, ".tsv") || strings.HasSuffix(name, ".tab")
}
