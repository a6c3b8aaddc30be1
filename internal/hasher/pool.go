package hasher

import (
	"context"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Input is one file handed over by the enumerator: an absolute path and the
// size observed while walking.
type Input struct {
	Path string
	Size int64
}

// HashAll digests every input across a bounded worker pool and returns the
// complete record set in input order. Each worker owns one file at a time;
// the function only returns once every worker has finished, so callers always
// observe a full record set.
//
// onRecord, if non-nil, is invoked once per completed file (from worker
// goroutines) and is used for progress reporting. Cancellation via ctx stops
// scheduling new files and returns the context error.
func HashAll(ctx context.Context, inputs []Input, workers int, onRecord func(FileRecord)) ([]FileRecord, error) {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	records := make([]FileRecord, len(inputs))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, in := range inputs {
		i, in := i, in
		if err := ctx.Err(); err != nil {
			break
		}
		g.Go(func() error {
			records[i] = HashFile(in.Path, in.Size)
			if onRecord != nil {
				onRecord(records[i])
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return records, nil
}
