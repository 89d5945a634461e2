package syncapp

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	domainsync "github.com/shop/backend/internal/domain/sync"
)

// Outcome classifies what happened to a single record
type Outcome int

const (
	// OutcomeCreated means the record produced a new canonical row
	OutcomeCreated Outcome = iota
	// OutcomeUpdated means the record refreshed an existing row
	OutcomeUpdated
	// OutcomeSkipped means the record was intentionally not applied
	OutcomeSkipped
)

// ChunkConfig controls the chunked processing loop
type ChunkConfig struct {
	// ChunkSize is the number of records per chunk
	ChunkSize int
	// FlushEvery flushes the working set after this many records within a chunk
	FlushEvery int
	// ChunkBudget is the wall-clock budget for one chunk. Once a chunk has
	// consumed its budget, the remaining records of that chunk are left for
	// the next invocation.
	ChunkBudget time.Duration
	// ChunkPause is the sleep between consecutive chunks, easing pressure on
	// the database and the provider. Zero disables pausing.
	ChunkPause time.Duration
}

// DefaultChunkConfig mirrors the production settings
func DefaultChunkConfig() ChunkConfig {
	return ChunkConfig{
		ChunkSize:   100,
		FlushEvery:  20,
		ChunkBudget: 25 * time.Second,
		ChunkPause:  500 * time.Millisecond,
	}
}

func (c ChunkConfig) withDefaults() ChunkConfig {
	if c.ChunkSize <= 0 {
		c.ChunkSize = 100
	}
	if c.FlushEvery <= 0 {
		c.FlushEvery = c.ChunkSize
	}
	if c.ChunkBudget <= 0 {
		c.ChunkBudget = 25 * time.Second
	}
	return c
}

// ProcessFunc applies one record and reports whether it created or updated
// its canonical row. Errors are isolated to the record.
type ProcessFunc[T any] func(ctx context.Context, record T) (Outcome, error)

// FlushFunc releases the working set accumulated since the previous flush
type FlushFunc func(ctx context.Context) error

// ProcessInChunks drives a record slice through process in fixed-size chunks.
// Failure containment is layered: a record error is counted and skipped, a
// chunk-level failure (flush error or panic) marks the whole chunk as errored,
// and processing always continues with the next chunk. A chunk that exhausts
// its wall-clock budget stops early; records it did not reach are not counted
// at all and stay pending for the next invocation.
func ProcessInChunks[T any](ctx context.Context, records []T, cfg ChunkConfig, logger *zap.Logger, process ProcessFunc[T], flush FlushFunc) domainsync.Counters {
	cfg = cfg.withDefaults()

	var total domainsync.Counters
	for offset := 0; offset < len(records); offset += cfg.ChunkSize {
		end := offset + cfg.ChunkSize
		if end > len(records) {
			end = len(records)
		}
		chunk := records[offset:end]

		if offset > 0 && cfg.ChunkPause > 0 {
			select {
			case <-ctx.Done():
				return total
			case <-time.After(cfg.ChunkPause):
			}
		}

		counters, err := processChunk(ctx, chunk, cfg, logger, process, flush)
		if err != nil {
			logger.Error("chunk failed",
				zap.Int("offset", offset),
				zap.Int("size", len(chunk)),
				zap.Error(err))
			counters = domainsync.Counters{Processed: len(chunk), Errors: len(chunk)}
		}
		total.Add(counters)

		if ctx.Err() != nil {
			return total
		}
	}
	return total
}

// processChunk runs one chunk under its wall-clock budget. A panic anywhere in
// record processing surfaces as the chunk error instead of killing the run.
func processChunk[T any](ctx context.Context, chunk []T, cfg ChunkConfig, logger *zap.Logger, process ProcessFunc[T], flush FlushFunc) (counters domainsync.Counters, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("chunk panic: %v", r)
		}
	}()

	started := time.Now()
	sinceFlush := 0
	for _, record := range chunk {
		if time.Since(started) > cfg.ChunkBudget {
			logger.Warn("chunk budget exhausted",
				zap.Int("processed", counters.Processed),
				zap.Int("remaining", len(chunk)-counters.Processed),
				zap.Duration("budget", cfg.ChunkBudget))
			break
		}
		if ctx.Err() != nil {
			return counters, ctx.Err()
		}

		counters.Processed++
		outcome, recordErr := process(ctx, record)
		if recordErr != nil {
			counters.Errors++
			logger.Warn("record failed", zap.Error(recordErr))
			continue
		}
		switch outcome {
		case OutcomeCreated:
			counters.Created++
		case OutcomeUpdated:
			counters.Updated++
		}

		sinceFlush++
		if flush != nil && sinceFlush >= cfg.FlushEvery {
			if flushErr := flush(ctx); flushErr != nil {
				return counters, flushErr
			}
			sinceFlush = 0
		}
	}

	if flush != nil && sinceFlush > 0 {
		if flushErr := flush(ctx); flushErr != nil {
			return counters, flushErr
		}
	}
	return counters, nil
}
