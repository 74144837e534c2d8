package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/creasty/defaults"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/workpulse-io/workpulse/model"
)

// TransformFunc converts one raw record into an Event. An error skips the
// record; it never aborts the chunk.
type TransformFunc func(record model.RawRecord) (*model.Event, error)

// LoadFunc persists one chunk's events and returns the newly inserted count.
// An error fails the whole run.
type LoadFunc func(ctx context.Context, events []*model.Event) (int, error)

// Options tune one run. Zero values take the documented defaults.
type Options struct {
	// ChunkSize is the number of contiguous raw records per concurrency unit.
	ChunkSize int `default:"500"`
	// MaxConcurrentChunks caps chunks in flight; a freed slot is refilled
	// eagerly rather than waiting for a wave to finish.
	MaxConcurrentChunks int `default:"3"`
	// StartOffset resumes a run: records before it were already loaded and
	// are not reprocessed.
	StartOffset int
	// OnProgress, when set, observes the resume cursor: the number of leading
	// records whose chunks have completed. Calls are serialized and strictly
	// increasing within a run, and the value is safe to hand back as
	// StartOffset. The callback must not block.
	OnProgress func(processed int)
}

// RunSummary is the externally visible result of one pipeline execution.
type RunSummary struct {
	ItemsExtracted  int `json:"items_extracted"`
	ItemsProcessed  int `json:"items_processed"`
	ItemsInserted   int `json:"items_inserted"`
	ChunksProcessed int `json:"chunks_processed"`
}

// Run splits records into chunks, transforms and loads each chunk under a
// bounded-concurrency scheduler, and aggregates counts. Per-record transform
// failures are logged and skipped; a load failure cancels outstanding work
// and is returned to the caller for a chunk-level retry.
func Run(ctx context.Context, records []model.RawRecord, transform TransformFunc, load LoadFunc, opts Options) (*RunSummary, error) {
	if err := defaults.Set(&opts); err != nil {
		return nil, err
	}
	if opts.ChunkSize <= 0 || opts.MaxConcurrentChunks <= 0 {
		return nil, fmt.Errorf("chunk size and concurrency must be positive")
	}
	if opts.StartOffset < 0 || opts.StartOffset > len(records) {
		return nil, fmt.Errorf("start offset %d out of range [0, %d]", opts.StartOffset, len(records))
	}

	log := zap.S().Named("pipeline")
	summary := &RunSummary{ItemsExtracted: len(records)}

	pending := records[opts.StartOffset:]
	if len(pending) == 0 {
		return summary, nil
	}

	chunks := chunk(pending, opts.ChunkSize)
	cursor := newCursor(opts.StartOffset, chunks, opts.OnProgress)

	var (
		mux       sync.Mutex
		processed int
		inserted  int
		completed int
	)

	sem := semaphore.NewWeighted(int64(opts.MaxConcurrentChunks))
	group, groupCtx := errgroup.WithContext(ctx)

	for i, c := range chunks {
		// Acquire before spawning: at most MaxConcurrentChunks chunks are
		// resident, and a slot is handed to the next chunk the moment one
		// finishes. Acquire fails once a sibling chunk failed.
		if err := sem.Acquire(groupCtx, 1); err != nil {
			break
		}

		id, records := i, c
		group.Go(func() error {
			defer sem.Release(1)

			events := make([]*model.Event, 0, len(records))
			for _, record := range records {
				event, err := transform(record)
				if err != nil {
					log.Warnf("chunk %d: skipping record: %v", id, err)
					continue
				}
				events = append(events, event)
			}

			n, err := load(groupCtx, events)
			if err != nil {
				return fmt.Errorf("chunk %d: load failed: %w", id, err)
			}
			log.Debugf("chunk %d: transformed %d/%d, inserted %d", id, len(events), len(records), n)

			mux.Lock()
			processed += len(events)
			inserted += n
			completed++
			mux.Unlock()
			cursor.complete(id)
			return nil
		})
	}

	err := group.Wait()

	summary.ItemsProcessed = processed
	summary.ItemsInserted = inserted
	summary.ChunksProcessed = completed
	if err != nil {
		return summary, err
	}
	return summary, nil
}

// chunk slices records into contiguous pieces of at most size records.
func chunk(records []model.RawRecord, size int) [][]model.RawRecord {
	chunks := make([][]model.RawRecord, 0, (len(records)+size-1)/size)
	for start := 0; start < len(records); start += size {
		end := start + size
		if end > len(records) {
			end = len(records)
		}
		chunks = append(chunks, records[start:end])
	}
	return chunks
}

// cursor tracks the contiguous prefix of completed chunks so a caller can
// heartbeat an offset that is safe to resume from: every record before the
// reported offset has been loaded, no record after it is double-counted.
type cursor struct {
	mux      sync.Mutex
	base     int
	sizes    []int
	done     []bool
	frontier int
	report   func(int)
}

func newCursor(base int, chunks [][]model.RawRecord, report func(int)) *cursor {
	sizes := make([]int, len(chunks))
	for i, c := range chunks {
		sizes[i] = len(c)
	}
	return &cursor{base: base, sizes: sizes, done: make([]bool, len(chunks)), report: report}
}

func (c *cursor) complete(chunkID int) {
	c.mux.Lock()
	defer c.mux.Unlock()

	c.done[chunkID] = true
	advanced := false
	for c.frontier < len(c.done) && c.done[c.frontier] {
		c.base += c.sizes[c.frontier]
		c.frontier++
		advanced = true
	}
	// Report under the lock: two frontier advances delivered out of order
	// would hand the caller a regressing offset.
	if advanced && c.report != nil {
		c.report(c.base)
	}
}
