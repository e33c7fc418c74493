package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"time"

	"golang.org/x/sync/errgroup"

	"dfhash/internal/canonical"
	"dfhash/internal/failure"
	"dfhash/internal/fingerprint"
	"dfhash/internal/hashcache"
	"dfhash/internal/logging"
	"dfhash/internal/table"
)

// Exit codes returned by Run.
const (
	ExitOK       = 0
	ExitMismatch = 1
	ExitError    = 2
)

// Loader decodes one input file.
type Loader interface {
	Load(ctx context.Context, path string) (*table.Table, error)
}

// Fingerprinter is implemented by loaders whose tables depend on their
// options. Cache entries are scoped to the fingerprint; a loader without one
// is never served from the cache.
type Fingerprinter interface {
	Fingerprint() string
}

// Cache memoizes digests of unchanged files. *hashcache.Store implements it.
type Cache interface {
	Lookup(ctx context.Context, path, options string) (hashcache.Key, string, bool, error)
	Record(ctx context.Context, key hashcache.Key, digest string, rows, columns int) (bool, error)
}

// Options configures a run.
type Options struct {
	Files   []string
	Equals  bool
	Workers int
	Format  Format
	Loader  Loader
	// Cache is optional and consulted only when hashing.
	Cache  Cache
	Logger *slog.Logger
}

// Result describes one input file.
type Result struct {
	Path    string `json:"path"`
	Digest  string `json:"digest,omitempty"`
	Rows    int    `json:"rows"`
	Columns int    `json:"columns"`
	Cached  bool   `json:"cached"`
	Error   string `json:"error,omitempty"`

	loadErr error
	hashErr error
	sorted  *table.Table
}

// Run executes one invocation and returns its exit code. Hash lines go to
// stdout; errors, warnings and verdicts go to stderr.
func Run(ctx context.Context, opts Options, stdout, stderr io.Writer) int {
	logger := logging.NewComponentLogger(opts.Logger, "runner")
	if len(opts.Files) == 0 {
		fmt.Fprintln(stderr, "Error: No files provided")
		return ExitError
	}
	if opts.Equals && len(opts.Files) < 2 {
		fmt.Fprintln(stderr, "Error: --equals requires at least two files.")
		return ExitMismatch
	}
	if opts.Loader == nil {
		fmt.Fprintln(stderr, "Error: no loader configured")
		return ExitError
	}
	format, err := ParseFormat(string(opts.Format))
	if err != nil {
		fmt.Fprintf(stderr, "Error: %v\n", err)
		return ExitError
	}
	workers := opts.Workers
	if workers < 1 {
		workers = runtime.GOMAXPROCS(0)
	}

	start := time.Now()
	r := &run{opts: opts, workers: workers, logger: logger}
	if fp, ok := opts.Loader.(Fingerprinter); ok && opts.Cache != nil {
		r.cacheScope = fp.Fingerprint()
		r.cacheable = true
	}
	results := r.process(ctx)

	exit := ExitOK
	for _, res := range results {
		if res.loadErr != nil {
			fmt.Fprintf(stderr, "Error loading %s: %s\n", res.Path, failure.Cause(res.loadErr))
			exit = ExitError
		}
	}

	printHashes := true
	if opts.Equals {
		switch {
		case exit != ExitOK:
			fmt.Fprintln(stderr, "Warning: Cannot check for equality due to previous errors.")
		case !allSorted(results):
			// Sort failures are reported with the hash errors below.
		case allEqual(results):
			printHashes = false
		default:
			fmt.Fprintln(stderr, "Error: Files do not match.")
			exit = ExitMismatch
		}
	}

	if printHashes {
		hashSorted(results)
		var printed []Result
		for _, res := range results {
			switch {
			case res.loadErr != nil:
			case res.hashErr != nil:
				fmt.Fprintf(stderr, "Error hashing %s: %s\n", res.Path, failure.Cause(res.hashErr))
				exit = ExitError
			default:
				printed = append(printed, *res)
			}
		}
		if err := WriteResults(stdout, format, printed); err != nil {
			fmt.Fprintf(stderr, "Error: write results: %v\n", err)
			exit = ExitError
		}
	}

	logging.WithContext(ctx, logger).Info("run finished",
		logging.Int("files", len(results)),
		logging.Bool("equals", opts.Equals),
		logging.Int("exit_code", exit),
		logging.Duration("elapsed", time.Since(start)),
	)
	return exit
}

type run struct {
	opts       Options
	workers    int
	logger     *slog.Logger
	cacheScope string
	cacheable  bool
}

// process loads and sorts every file concurrently. In hash mode a cache hit
// skips the load entirely.
func (r *run) process(ctx context.Context) []*Result {
	results := make([]*Result, len(r.opts.Files))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, path := range r.opts.Files {
		res := &Result{Path: path}
		results[i] = res
		g.Go(func() error {
			r.processFile(logging.WithFile(gctx, path), res)
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func (r *run) processFile(ctx context.Context, res *Result) {
	logger := logging.WithContext(ctx, r.logger)
	useCache := r.cacheable && !r.opts.Equals

	var key hashcache.Key
	if useCache {
		k, digest, ok, err := r.opts.Cache.Lookup(ctx, res.Path, r.cacheScope)
		switch {
		case err != nil:
			logger.Warn("cache lookup failed", logging.Error(err))
			useCache = false
		case ok:
			res.Digest = digest
			res.Cached = true
			logger.Debug("cache hit", logging.Int64("size", k.Size))
			return
		default:
			key = k
		}
	}

	tbl, err := r.opts.Loader.Load(ctx, res.Path)
	if err != nil {
		res.loadErr = err
		res.Error = failure.Cause(err)
		return
	}
	res.Rows = tbl.NumRows()
	res.Columns = tbl.NumColumns()

	sorted, err := canonical.Sort(ctx, tbl, canonical.WithWorkers(r.workers))
	if err != nil {
		res.hashErr = failure.Wrap(failure.ErrHash, "", "", err)
		res.Error = failure.Cause(res.hashErr)
		return
	}
	if r.opts.Equals {
		res.sorted = sorted
		return
	}

	digest, err := fingerprint.Sorted(sorted)
	if err != nil {
		res.hashErr = err
		res.Error = failure.Cause(err)
		return
	}
	res.Digest = digest
	if !useCache {
		return
	}
	written, err := r.opts.Cache.Record(ctx, key, digest, res.Rows, res.Columns)
	if err != nil {
		logger.Warn("cache record failed", logging.Error(err))
		return
	}
	if !written {
		logger.Debug("file changed while hashing; not cached")
	}
}

// hashSorted fills in digests for tables kept for an equality check.
func hashSorted(results []*Result) {
	for _, res := range results {
		if res.Digest != "" || res.sorted == nil || res.hashErr != nil {
			continue
		}
		digest, err := fingerprint.Sorted(res.sorted)
		if err != nil {
			res.hashErr = err
			res.Error = failure.Cause(err)
			continue
		}
		res.Digest = digest
	}
}

func allSorted(results []*Result) bool {
	for _, res := range results {
		if res.sorted == nil {
			return false
		}
	}
	return true
}

// allEqual compares every table with the first one. Tables are already in
// canonical order.
func allEqual(results []*Result) bool {
	first := results[0].sorted
	for _, res := range results[1:] {
		if canonical.CompareSchemas(first.Schema, res.sorted.Schema) != nil {
			return false
		}
		if !canonical.EqualSorted(first, res.sorted) {
			return false
		}
	}
	return true
}
