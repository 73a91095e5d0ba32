// Package search finds the noun and verb that make an Intcode program
// produce a given value.
package search

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/nf/intcode/intcode"
)

// Range is the exclusive upper bound of both the noun and the verb.
const Range = 100

// ErrNoSolution is returned when no noun and verb produce the target.
var ErrNoSolution = errors.New("no solution found")

// TrialError reports the engine error raised by one trial.
// It unwraps to the underlying intcode.Error.
type TrialError struct {
	Noun, Verb int64
	Err        error
}

func (e *TrialError) Error() string {
	return fmt.Sprintf("noun %d verb %d: %v", e.Noun, e.Verb, e.Err)
}

func (e *TrialError) Unwrap() error { return e.Err }

// Encode returns 100*noun + verb.
func Encode(noun, verb int64) int64 { return 100*noun + verb }

// Search runs a fresh copy of base for every noun and verb in
// [0, Range), noun-major, and returns the encoded pair of the first run
// whose cell 0 equals target. An engine error aborts the search.
func Search(base []int64, target int64) (int64, error) {
	for noun := int64(0); noun < Range; noun++ {
		if r := row(base, target, noun); r.done() {
			return r.result()
		}
	}
	return 0, ErrNoSolution
}

// SearchParallel is like Search but spreads nouns across workers
// goroutines. Its result, including which error is returned, is the same
// as Search's.
func SearchParallel(ctx context.Context, base []int64, target int64, workers int) (int64, error) {
	if workers < 1 {
		workers = 1
	}
	var (
		mu   sync.Mutex
		rows [Range]outcome
		best = int64(Range) // lowest noun with an outcome
	)
	skip := func(noun int64) bool {
		mu.Lock()
		defer mu.Unlock()
		return noun > best
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for noun := int64(0); noun < Range; noun++ {
		if gctx.Err() != nil {
			break
		}
		noun := noun // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			if skip(noun) {
				return nil
			}
			r := row(base, target, noun)
			if !r.done() {
				return nil
			}
			mu.Lock()
			rows[noun] = r
			if noun < best {
				best = noun
			}
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if best == Range {
		return 0, ErrNoSolution
	}
	return rows[best].result()
}

// outcome is the first event of a row: either a match or an engine error.
type outcome struct {
	found bool
	value int64
	err   error
}

func (o outcome) done() bool { return o.found || o.err != nil }

func (o outcome) result() (int64, error) {
	if o.err != nil {
		return 0, o.err
	}
	return o.value, nil
}

// row tries every verb for one noun, in order.
func row(base []int64, target, noun int64) outcome {
	for verb := int64(0); verb < Range; verb++ {
		v, err := intcode.New(base).RunWithParameters(noun, verb)
		if err != nil {
			return outcome{err: &TrialError{Noun: noun, Verb: verb, Err: err}}
		}
		if v == target {
			return outcome{found: true, value: Encode(noun, verb)}
		}
	}
	return outcome{}
}
