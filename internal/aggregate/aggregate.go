// Package aggregate groups classified tasks into verdict buckets and counts.
package aggregate

import (
	"context"
	"fmt"
	"slices"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/rezkam/careshift/internal/domain"
)

// Classifier assigns a verdict to a task. *status.Resolver implements it.
type Classifier interface {
	Classify(task domain.Task, now time.Time) (domain.StatusVerdict, error)
}

// Unresolved is a task that could not be classified and the reason.
type Unresolved struct {
	Task domain.TaskRef
	Err  error
}

// Result holds per-verdict counts and the tasks in each bucket.
//
// Every input task lands in exactly one bucket, so the counts always sum to
// the number of input tasks. Tasks that failed classification are counted
// under domain.StatusUnresolved.
type Result struct {
	Counts     map[domain.StatusVerdict]int
	Buckets    map[domain.StatusVerdict][]domain.TaskRef
	Unresolved []Unresolved
}

func newResult() Result {
	return Result{
		Counts:  make(map[domain.StatusVerdict]int, len(domain.Verdicts)+1),
		Buckets: make(map[domain.StatusVerdict][]domain.TaskRef, len(domain.Verdicts)+1),
	}
}

// Total returns the number of tasks aggregated.
func (r Result) Total() int {
	n := 0
	for _, c := range r.Counts {
		n += c
	}
	return n
}

func (r *Result) add(ref domain.TaskRef, verdict domain.StatusVerdict, err error) {
	if err != nil {
		verdict = domain.StatusUnresolved
		r.Unresolved = append(r.Unresolved, Unresolved{Task: ref, Err: err})
	}
	r.Counts[verdict]++
	r.Buckets[verdict] = append(r.Buckets[verdict], ref)
}

func (r *Result) merge(other Result) {
	for v, c := range other.Counts {
		r.Counts[v] += c
	}
	for v, refs := range other.Buckets {
		r.Buckets[v] = append(r.Buckets[v], refs...)
	}
	r.Unresolved = append(r.Unresolved, other.Unresolved...)
}

// Aggregate classifies every task once against now.
func Aggregate(tasks []domain.Task, c Classifier, now time.Time) Result {
	res := newResult()
	for _, task := range tasks {
		verdict, err := c.Classify(task, now)
		res.add(task.Ref(), verdict, err)
	}
	return res
}

// AggregateParallel splits tasks into chunks classified by up to workers
// goroutines. Counts match Aggregate exactly; the order of task refs inside a
// bucket is unspecified. It fails only if ctx is cancelled.
func AggregateParallel(ctx context.Context, tasks []domain.Task, c Classifier, now time.Time, workers int) (Result, error) {
	if workers < 1 {
		workers = 1
	}
	if len(tasks) == 0 {
		return newResult(), nil
	}

	size := (len(tasks) + workers - 1) / workers
	chunks := slices.Collect(slices.Chunk(tasks, size))
	partials := make([]Result, len(chunks))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return fmt.Errorf("aggregate chunk %d: %w", i, err)
			}
			partials[i] = Aggregate(chunk, c, now)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Result{}, err
	}

	res := newResult()
	for _, p := range partials {
		res.merge(p)
	}
	return res, nil
}
