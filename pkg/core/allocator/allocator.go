package allocator

import (
	"fmt"

	"github.com/rhowell/gradesplit/pkg/core/model"
)

// deficitTable tracks, for a single category, how far each eligible worker
// is from their ideal share
type deficitTable struct {
	workers []string
	ideal   []float64
	counts  []int
}

func newDeficitTable(quota *QuotaModel, category model.Category, assignment model.Assignment) (*deficitTable, error) {
	// Anything already in the assignment must belong to an eligible worker
	for worker, items := range assignment {
		if len(items) > 0 && !quota.IsEligible(worker) {
			return nil, fmt.Errorf("%w: %q holds %d items", ErrUnknownWorker, worker, len(items))
		}
	}

	workers := quota.EligibleWorkers()
	table := &deficitTable{
		workers: workers,
		ideal:   make([]float64, len(workers)),
		counts:  make([]int, len(workers)),
	}

	for i, worker := range workers {
		share, err := quota.IdealShare(worker, category)
		if err != nil {
			return nil, err
		}
		table.ideal[i] = share
		table.counts[i] = assignment.Count(worker, category)
	}

	return table, nil
}

// next returns the index of the worker with the strictly largest deficit.
// Ties go to the worker that comes first in eligible order.
func (t *deficitTable) next() int {
	best := 0
	bestDeficit := t.deficit(0)
	for i := 1; i < len(t.workers); i++ {
		if d := t.deficit(i); d > bestDeficit {
			best = i
			bestDeficit = d
		}
	}
	return best
}

func (t *deficitTable) deficit(i int) float64 {
	return t.ideal[i] - float64(t.counts[i])
}

// Allocate assigns every item to the worker furthest below their ideal share
// for the category, mutating assignment in place. All items must be of the
// given category; nothing is assigned if any is not.
func Allocate(items []model.Item, category model.Category, assignment model.Assignment, quota *QuotaModel) error {
	if assignment == nil {
		return fmt.Errorf("%w: assignment", ErrNilArgument)
	}
	if quota == nil {
		return fmt.Errorf("%w: quota model", ErrNilArgument)
	}
	if len(quota.workers) == 0 {
		return ErrNoEligibleWorkers
	}
	if !category.IsValid() {
		return fmt.Errorf("unknown category %q", category)
	}

	for i, item := range items {
		if item.Category() != category {
			return fmt.Errorf("%w: item %d (%s) is %s, expected %s",
				ErrCategoryMismatch, i, item.SubmissionID, item.Category(), category)
		}
	}

	if len(items) == 0 {
		return nil
	}

	table, err := newDeficitTable(quota, category, assignment)
	if err != nil {
		return err
	}

	for _, item := range items {
		idx := table.next()
		worker := table.workers[idx]
		assignment[worker] = append(assignment[worker], item)
		table.counts[idx]++
	}

	return nil
}

// Partition splits items between workers in proportion to their weights.
//
// A single QuotaModel is built from the totals, then group items are
// allocated followed by solo items. Every eligible worker appears in the
// result, with an empty list if nothing was assigned to them. Workers with
// weight 0 do not appear.
func Partition(items []model.Item, workers []model.Worker, opts Options) (model.Assignment, error) {
	assignment, _, err := PartitionWithQuota(items, workers, opts)
	return assignment, err
}

// PartitionWithQuota is Partition, also returning the QuotaModel the
// assignment was built against so callers can validate or report on it
func PartitionWithQuota(items []model.Item, workers []model.Worker, opts Options) (model.Assignment, *QuotaModel, error) {
	solo, group := SplitByCategory(items)

	quota, err := NewQuotaModel(workers, len(solo), len(group))
	if err != nil {
		return nil, nil, err
	}

	if opts.Rand != nil {
		opts.Rand.Shuffle(len(group), func(i, j int) { group[i], group[j] = group[j], group[i] })
		opts.Rand.Shuffle(len(solo), func(i, j int) { solo[i], solo[j] = solo[j], solo[i] })
	}

	assignment := make(model.Assignment, len(workers))
	for _, worker := range quota.EligibleWorkers() {
		assignment[worker] = []model.Item{}
	}

	if err := Allocate(group, model.CategoryGroup, assignment, quota); err != nil {
		return nil, nil, fmt.Errorf("failed to allocate group items: %w", err)
	}

	if err := Allocate(solo, model.CategorySolo, assignment, quota); err != nil {
		return nil, nil, fmt.Errorf("failed to allocate solo items: %w", err)
	}

	return assignment, quota, nil
}

// SplitByCategory separates items into solo and group lists, preserving order.
// The returned slices are new and safe to reorder.
func SplitByCategory(items []model.Item) (solo, group []model.Item) {
	solo = make([]model.Item, 0, len(items))
	group = make([]model.Item, 0)
	for _, item := range items {
		if item.Category() == model.CategorySolo {
			solo = append(solo, item)
		} else {
			group = append(group, item)
		}
	}
	return solo, group
}
