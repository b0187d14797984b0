// Package corpus implements the bounded worker pool that parses a
// newline-delimited AST training/evaluation file into tree.Store values
// (§5's "fixed-size worker pool (default 8) consumes lines from a single
// record reader").
package corpus

import (
	"bufio"
	"bytes"
	"context"
	"io"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/tgenlab/tgen/astio"
	"github.com/tgenlab/tgen/intern"
	"github.com/tgenlab/tgen/logx"
	"github.com/tgenlab/tgen/tree"
)

// DefaultWorkers is §5's default pool size.
const DefaultWorkers = 8

// Loader reads a corpus file and builds trees from it.
type Loader struct {
	// Workers is the pool size; <= 0 means DefaultWorkers.
	Workers int
	// MaxTreeSize is forwarded to astio.Load; <= 0 means astio.DefaultMaxTreeSize.
	MaxTreeSize int
	// Log receives Warn on dropped oversized trees and Info on completion.
	// Defaults to logx.Noop().
	Log logx.Logger
}

// Sample is one parsed tree plus its position in the source file, used by
// cmd/tgen-eval to name the offending AST in error messages.
type Sample struct {
	Index int
	Store *tree.Store
}

// Load reads up to maxCount AST records (§6.4's num_training_asts /
// num_eval_asts) from r, dropping any that decode but exceed MaxTreeSize,
// and returns the parsed trees. Records are consumed by a bounded pool of
// Workers goroutines sharing a single *bufio.Scanner behind one mutex;
// results are appended behind a second mutex (§5's two-mutex design).
func (l *Loader) Load(r io.Reader, ss *intern.Interner, maxCount int) ([]Sample, error) {
	log := l.Log
	if log == nil {
		log = logx.Noop()
	}
	workers := l.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var readMu sync.Mutex
	index := 0
	nextLine := func() (line []byte, idx int, ok bool) {
		readMu.Lock()
		defer readMu.Unlock()
		if maxCount > 0 && index >= maxCount {
			return nil, 0, false
		}
		if !scanner.Scan() {
			return nil, 0, false
		}
		line = append([]byte(nil), scanner.Bytes()...)
		idx = index
		index++
		return line, idx, true
	}

	var resultMu sync.Mutex
	var results []Sample
	var dropped int

	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(workers)

	for {
		line, idx, ok := nextLine()
		if !ok {
			break
		}
		if len(line) == 0 {
			continue
		}
		g.Go(func() error {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			store, isDropped, err := parseLine(line, ss, l.MaxTreeSize)
			if err != nil {
				return err
			}
			resultMu.Lock()
			defer resultMu.Unlock()
			if isDropped {
				dropped++
				return nil
			}
			results = append(results, Sample{Index: idx, Store: store})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}

	if dropped > 0 {
		log.Warnf("dropped %d trees exceeding max_tree_size", dropped)
	}
	log.Infof("corpus load complete: %d trees loaded, %d dropped", len(results), dropped)
	return results, nil
}

func parseLine(line []byte, ss *intern.Interner, maxTreeSize int) (*tree.Store, bool, error) {
	result, err := astio.Load(bytes.NewReader(line), ss, maxTreeSize)
	if err != nil {
		return nil, false, err
	}
	if result.Dropped {
		return nil, true, nil
	}
	return result.Store, false, nil
}
