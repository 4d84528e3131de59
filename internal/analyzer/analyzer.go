// Package analyzer extracts a structural model from a set of source files:
// per-file symbol extraction runs in parallel, a single-threaded assembly
// step resolves imports and call edges across the whole snapshot.
package analyzer

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"runtime"
	"sync"
	"time"

	"github.com/maypok86/otter"

	"github.com/beanviz/bean/internal/model"
	"github.com/beanviz/bean/internal/parsers"
)

// Analyzer turns (path, text) pairs into a sealed model.Snapshot.
type Analyzer struct {
	workers  int
	progress ProgressReporter
	cache    otter.Cache[string, fileResult]
	hasCache bool
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithWorkers bounds extraction parallelism. Values below 1 are ignored.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n >= 1 {
			a.workers = n
		}
	}
}

// WithProgress installs a progress reporter.
func WithProgress(p ProgressReporter) Option {
	return func(a *Analyzer) {
		if p != nil {
			a.progress = p
		}
	}
}

// WithCache enables a content-addressed extraction cache. Re-analyzing a
// tree where most files are unchanged (watch mode, repeated diffs) skips
// re-parsing those files; the key is a hash of path and content, so a stale
// hit is impossible.
func WithCache(capacity int) Option {
	return func(a *Analyzer) {
		cache, err := otter.MustBuilder[string, fileResult](capacity).Build()
		if err != nil {
			log.Printf("Warning: extraction cache disabled: %v", err)
			return
		}
		a.cache = cache
		a.hasCache = true
	}
}

// New creates an Analyzer. By default it uses one worker per CPU and no
// cache.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		workers:  runtime.GOMAXPROCS(0),
		progress: NoOpProgressReporter{},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Close releases the extraction cache, if any.
func (a *Analyzer) Close() {
	if a.hasCache {
		a.cache.Close()
	}
}

// Analyze extracts every supported source file and assembles the snapshot.
// Each worker owns its file exclusively; the only shared state is the
// results slice, guarded by one mutex. Files with unsupported extensions are
// skipped; files that fail to parse become placeholder modules carrying the
// parse error. The returned error is non-nil only when the context is
// cancelled or no file at all could be parsed.
func (a *Analyzer) Analyze(ctx context.Context, root string, sources []Source) (*model.Snapshot, error) {
	start := time.Now()
	a.progress.OnExtractionStart(len(sources))

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		results []fileResult
	)
	sem := make(chan struct{}, a.workers)

	for _, src := range sources {
		if ctx.Err() != nil {
			break
		}
		if parsers.SpecForPath(src.Path) == nil {
			continue
		}
		wg.Add(1)
		sem <- struct{}{}
		go func(s Source) {
			defer wg.Done()
			defer func() { <-sem }()
			r := a.extractOne(s)
			mu.Lock()
			results = append(results, r)
			mu.Unlock()
			a.progress.OnFileExtracted(s.Path)
		}(src)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	snap, err := assemble(root, results)
	if err != nil {
		return nil, err
	}
	a.progress.OnAssemblyComplete(len(snap.Modules), len(snap.CallEdges), time.Since(start))
	return snap, nil
}

// extractOne parses and extracts a single file, consulting the cache first.
func (a *Analyzer) extractOne(s Source) fileResult {
	var key string
	if a.hasCache {
		key = cacheKey(s)
		if cached, ok := a.cache.Get(key); ok {
			return cached.clone()
		}
	}

	pf, err := parsers.Parse(s.Path, s.Text)
	if err != nil {
		pe, ok := err.(*model.ParseError)
		if !ok {
			pe = &model.ParseError{File: s.Path, Message: err.Error()}
		}
		spec := parsers.SpecForPath(s.Path)
		id := spec.PathModuleID(s.Path)
		placeholder := model.Module{
			ID:       id,
			Path:     s.Path,
			Language: spec.Name,
			Layer:    layerFor(id),
			Error:    pe,
		}
		return fileResult{Module: placeholder}
	}
	defer pf.Close()

	r := extractFile(pf, s.Path)
	if a.hasCache {
		// Store a private copy; r is about to be resolved in place.
		a.cache.Set(key, r.clone())
	}
	return r
}

func cacheKey(s Source) string {
	h := sha256.New()
	h.Write([]byte(s.Path))
	h.Write([]byte{0})
	h.Write(s.Text)
	return hex.EncodeToString(h.Sum(nil))
}
