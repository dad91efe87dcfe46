// =============================================================================
// Price Compare - Comparer Module
// =============================================================================
//
// This module orchestrates one comparison run, from source files to the
// reconciled best-price rows.
//
// COMPARISON PIPELINE:
//   1. Read every source file (workbook or delimited text)
//   2. Check the mapping's columns against the file's header row
//   3. Normalize each row into a PriceRecord
//   4. Fold all records, in mapping order, into the best-price table
//   5. Sort the result by description
//
// CONCURRENCY:
//   Steps 1-3 run in their own goroutine per source, bounded by
//   MaxConcurrency. Step 4 waits for every source and then folds them in the
//   order the mappings were given, so the result does not depend on which
//   file finished loading first.
//
// FAILURES:
//   A source that cannot be read or lacks a mapped column is skipped and
//   reported in Outcome.Sources; the remaining sources are still compared.
//
// =============================================================================

package comparer

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/ginjaninja78/price-compare/internal/config"
	"github.com/ginjaninja78/price-compare/internal/csvparser"
	"github.com/ginjaninja78/price-compare/internal/logging"
	"github.com/ginjaninja78/price-compare/internal/normalize"
	"github.com/ginjaninja78/price-compare/internal/reconcile"
	"github.com/ginjaninja78/price-compare/internal/types"
	"github.com/ginjaninja78/price-compare/internal/xlsxparser"
	"github.com/ginjaninja78/price-compare/pkg/utils"
)

// =============================================================================
// RESULT STRUCTURES
// =============================================================================

// Outcome is the result of one comparison run.
type Outcome struct {
	// Rows are the best-price rows, sorted by description.
	Rows []types.ResultRow

	// Sources reports every mapping, in the order given.
	Sources []SourceResult

	Stats Stats
}

// SourceResult is the outcome of loading one source.
type SourceResult struct {
	// File is the mapping's FileID.
	File string

	// Records is the number of rows normalized from the file.
	Records int

	// Skipped is set when the source did not contribute; Err says why.
	Skipped bool
	Err     error

	LoadTime time.Duration
}

// Stats summarizes a run.
type Stats struct {
	Sources int
	Loaded  int
	Skipped int

	// Records counts normalized rows across all loaded sources.
	Records int

	// Rows counts the distinct items in the result.
	Rows int

	Duration time.Duration
}

// =============================================================================
// COMPARER
// =============================================================================

// Comparer runs comparisons. It holds no per-run state and may be reused.
type Comparer struct {
	// maxConcurrency bounds how many sources are loaded at once.
	maxConcurrency int

	// delimiter is used for delimited sources whose mapping names none.
	delimiter string

	logger logging.Logger
}

// Option configures a Comparer.
type Option func(*Comparer)

// WithLogger sets the logger. The default discards everything.
func WithLogger(logger logging.Logger) Option {
	return func(c *Comparer) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithMaxConcurrency bounds parallel source loading. Values below 1 are
// ignored.
func WithMaxConcurrency(n int) Option {
	return func(c *Comparer) {
		if n >= 1 {
			c.maxConcurrency = n
		}
	}
}

// WithDefaultDelimiter sets the delimiter for delimited sources whose mapping
// leaves it empty.
func WithDefaultDelimiter(delimiter string) Option {
	return func(c *Comparer) {
		c.delimiter = delimiter
	}
}

// New creates a Comparer.
func New(opts ...Option) *Comparer {
	c := &Comparer{
		maxConcurrency: config.DefaultMaxConcurrency,
		delimiter:      config.DefaultCSVSeparator,
		logger:         logging.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// =============================================================================
// MAIN RUN METHOD
// =============================================================================

// Compare loads every mapped source and reconciles their prices.
//
// PARAMETERS:
//   - ctx: Cancels loading; sources not yet started are not read.
//   - mappings: The sources, in priority order for equal prices.
//
// RETURNS:
//   - The Outcome. Skipped sources are reported, not returned as errors.
//   - ctx.Err() if the context was cancelled before every source was read.
func (c *Comparer) Compare(ctx context.Context, mappings []types.SourceMapping) (Outcome, error) {
	startTime := time.Now()

	c.logger.Infof("Comparing %d source(s)", len(mappings))

	loaded := c.loadAll(ctx, mappings)
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	outcome := Outcome{
		Sources: make([]SourceResult, len(mappings)),
	}
	outcome.Stats.Sources = len(mappings)

	table := reconcile.NewTable()

	for i, ls := range loaded {
		outcome.Sources[i] = ls.result

		if ls.result.Skipped {
			outcome.Stats.Skipped++
			c.logger.Debugf("Skipping %s: %v", ls.result.File, ls.result.Err)
			continue
		}

		outcome.Stats.Loaded++
		outcome.Stats.Records += len(ls.records)

		for _, rec := range ls.records {
			table.Add(rec)
		}
	}

	outcome.Rows = table.Rows()
	outcome.Stats.Rows = len(outcome.Rows)
	outcome.Stats.Duration = time.Since(startTime)

	c.logger.Infof("Compared %d of %d source(s): %d record(s), %d item(s)",
		outcome.Stats.Loaded, outcome.Stats.Sources, outcome.Stats.Records, outcome.Stats.Rows)

	return outcome, nil
}

// loadedSource is one worker's output.
type loadedSource struct {
	index   int
	records []types.PriceRecord
	result  SourceResult
}

// loadAll reads every source concurrently and returns them in mapping order.
func (c *Comparer) loadAll(ctx context.Context, mappings []types.SourceMapping) []loadedSource {
	var wg sync.WaitGroup

	results := make(chan loadedSource, len(mappings))
	sem := make(chan struct{}, c.maxConcurrency)

	for i, m := range mappings {
		wg.Add(1)

		go func(index int, m types.SourceMapping) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				results <- loadedSource{index: index, result: SourceResult{File: m.FileID, Skipped: true, Err: ctx.Err()}}
				return
			}
			defer func() { <-sem }()

			results <- c.loadOne(index, m)
		}(i, m)
	}

	go func() {
		wg.Wait()
		close(results)
	}()

	ordered := make([]loadedSource, len(mappings))
	for ls := range results {
		ordered[ls.index] = ls
	}

	return ordered
}

func (c *Comparer) loadOne(index int, m types.SourceMapping) loadedSource {
	startTime := time.Now()

	c.logger.Debugf("Loading %s", m.FileID)

	records, err := c.LoadSource(m)
	ls := loadedSource{
		index:   index,
		records: records,
		result: SourceResult{
			File:     m.FileID,
			Records:  len(records),
			LoadTime: time.Since(startTime),
		},
	}

	if err != nil {
		ls.records = nil
		ls.result.Records = 0
		ls.result.Skipped = true
		ls.result.Err = err
		return ls
	}

	c.logger.Debugf("Loaded %d record(s) from %s in %s", len(records), m.FileID, ls.result.LoadTime)
	return ls
}

// =============================================================================
// SOURCE LOADING
// =============================================================================

// LoadSource reads and normalizes one source.
//
// RETURNS:
//   - The normalized records, in sheet order.
//   - A *types.UnreadableSourceError or *types.ColumnNotFoundError.
func (c *Comparer) LoadSource(m types.SourceMapping) ([]types.PriceRecord, error) {
	table, err := c.LoadTable(m)
	if err != nil {
		return nil, err
	}

	return normalize.NormalizeTable(table, m)
}

// LoadTable reads a source file, choosing the reader by extension.
func (c *Comparer) LoadTable(m types.SourceMapping) (*types.Table, error) {
	switch {
	case utils.IsWorkbook(m.FileID):
		return xlsxparser.Parse(m.FileID, m.Sheet, m.HeaderRow)

	case utils.IsDelimited(m.FileID):
		delimiter := m.Delimiter
		if delimiter == "" {
			delimiter = c.delimiter
		}
		return csvparser.Parse(m.FileID, delimiter, m.HeaderRow)

	default:
		return nil, &types.UnreadableSourceError{
			File: m.FileID,
			Err:  fmt.Errorf("unsupported file type %q", filepath.Ext(m.FileID)),
		}
	}
}

// SkipReasons lists "file: reason" for every skipped source.
func (o Outcome) SkipReasons() []string {
	var reasons []string
	for _, s := range o.Sources {
		if s.Skipped {
			reasons = append(reasons, fmt.Sprintf("%s: %v", filepath.Base(s.File), s.Err))
		}
	}
	return reasons
}
