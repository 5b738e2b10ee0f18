package similarity

import (
	"context"
	"log/slog"
	"runtime"
	"sync"

	"github.com/panjf2000/ants/v2"
)

const defaultBlockSize = 64

// Exact is the all-pairs cosine Strategy. The n×n comparison is tiled
// into row blocks computed on an ants worker pool; per-block results are
// merged in block order, so output ordering is deterministic regardless
// of scheduling. O(n²) is acceptable for fiscal-year-sized batches
// (hundreds to low thousands of records).
type Exact struct {
	poolSize  int
	blockSize int
	logger    *slog.Logger
}

// ExactOption configures an Exact strategy.
type ExactOption func(*Exact) error

// WithPoolSize sets the worker pool size for pair-block computation.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) ExactOption {
	return func(e *Exact) error {
		if size < 1 {
			size = 1
		}
		e.poolSize = size
		return nil
	}
}

// WithBlockSize sets how many rows each worker task owns.
func WithBlockSize(size int) ExactOption {
	return func(e *Exact) error {
		if size < 1 {
			size = 1
		}
		e.blockSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) ExactOption {
	return func(e *Exact) error {
		if logger == nil {
			logger = slog.Default()
		}
		e.logger = logger
		return nil
	}
}

// NewExact creates the exact all-pairs strategy.
func NewExact(opts ...ExactOption) (*Exact, error) {
	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	e := &Exact{
		poolSize:  poolSize,
		blockSize: defaultBlockSize,
		logger:    slog.Default().With("component", "similarity"),
	}
	for _, opt := range opts {
		if err := opt(e); err != nil {
			return nil, err
		}
	}
	return e, nil
}

var _ Strategy = (*Exact)(nil)

// Neighbors implements Strategy. Each row block owns the pairs (i,j) with
// i inside the block and j > i, so no pair is computed twice and no two
// workers write the same result slot.
func (e *Exact) Neighbors(ctx context.Context, vectors [][]float32, minScore float64) ([]Pair, error) {
	n := len(vectors)
	if n < 2 {
		return nil, nil
	}

	numBlocks := (n + e.blockSize - 1) / e.blockSize
	results := make([][]Pair, numBlocks)

	pool, err := ants.NewPool(e.poolSize)
	if err != nil {
		return nil, err
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for b := 0; b < numBlocks; b++ {
		if err := ctx.Err(); err != nil {
			break
		}

		lo := b * e.blockSize
		hi := min(lo+e.blockSize, n)
		block := b

		task := func() {
			defer wg.Done()
			var pairs []Pair
			for i := lo; i < hi; i++ {
				if vectors[i] == nil {
					continue
				}
				for j := i + 1; j < n; j++ {
					if vectors[j] == nil {
						continue
					}
					score := Cosine(vectors[i], vectors[j])
					if score >= minScore {
						pairs = append(pairs, Pair{I: i, J: j, Score: score})
					}
				}
			}
			results[block] = pairs
		}

		wg.Add(1)
		if err := pool.Submit(task); err != nil {
			// Pool rejected the task; compute the block inline.
			task()
		}
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var out []Pair
	for _, pairs := range results {
		out = append(out, pairs...)
	}
	e.logger.Debug("computed similarity pairs", "records", n, "pairs", len(out))
	return out, nil
}
