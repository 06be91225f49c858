package allocator

import (
	"fmt"
	"math"

	"github.com/rhowell/gradesplit/pkg/core/model"
)

// QuotaModel holds each eligible worker's ideal share of solo and group items.
// It is read-only once built.
type QuotaModel struct {
	// eligible worker IDs in input order, used for tie-breaking
	workers []string

	idealSolo  map[string]float64
	idealGroup map[string]float64

	soloCount  int
	groupCount int
}

// NewQuotaModel computes the ideal shares for every worker with a positive weight.
//
// Weights are first scaled by the largest weight so every ratio lies in (0, 1]:
//
//	normalizer = sum(weight / maxWeight)
//	ideal      = (count / normalizer) * (weight / maxWeight)
//
// Workers with weight 0 are excluded entirely.
func NewQuotaModel(workers []model.Worker, soloCount, groupCount int) (*QuotaModel, error) {
	if soloCount < 0 || groupCount < 0 {
		return nil, fmt.Errorf("%w: solo=%d group=%d", ErrInvalidCount, soloCount, groupCount)
	}
	if len(workers) == 0 {
		return nil, ErrNoEligibleWorkers
	}

	seen := make(map[string]bool, len(workers))
	maxWeight := 0.0
	for _, w := range workers {
		if w.Weight < 0 || math.IsNaN(w.Weight) || math.IsInf(w.Weight, 0) {
			return nil, fmt.Errorf("%w: %q has weight %v", ErrInvalidWeight, w.ID, w.Weight)
		}
		if seen[w.ID] {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateWorker, w.ID)
		}
		seen[w.ID] = true
		maxWeight = math.Max(maxWeight, w.Weight)
	}

	if maxWeight == 0 {
		return nil, ErrNoEligibleWorkers
	}

	normalizer := 0.0
	for _, w := range workers {
		normalizer += w.Weight / maxWeight
	}

	q := &QuotaModel{
		workers:    make([]string, 0, len(workers)),
		idealSolo:  make(map[string]float64, len(workers)),
		idealGroup: make(map[string]float64, len(workers)),
		soloCount:  soloCount,
		groupCount: groupCount,
	}

	for _, w := range workers {
		if w.Weight <= 0 {
			continue
		}
		ratio := w.Weight / maxWeight
		q.workers = append(q.workers, w.ID)
		q.idealSolo[w.ID] = (float64(soloCount) / normalizer) * ratio
		q.idealGroup[w.ID] = (float64(groupCount) / normalizer) * ratio
	}

	return q, nil
}

// EligibleWorkers returns the IDs of workers with a positive weight, in input order
func (q *QuotaModel) EligibleWorkers() []string {
	workers := make([]string, len(q.workers))
	copy(workers, q.workers)
	return workers
}

// IsEligible reports whether the worker takes part in allocation
func (q *QuotaModel) IsEligible(worker string) bool {
	_, ok := q.idealSolo[worker]
	return ok
}

// IdealSolo returns the worker's ideal number of solo items
func (q *QuotaModel) IdealSolo(worker string) (float64, error) {
	return q.IdealShare(worker, model.CategorySolo)
}

// IdealGroup returns the worker's ideal number of group items
func (q *QuotaModel) IdealGroup(worker string) (float64, error) {
	return q.IdealShare(worker, model.CategoryGroup)
}

// IdealShare returns the worker's ideal number of items in the given category
func (q *QuotaModel) IdealShare(worker string, category model.Category) (float64, error) {
	var shares map[string]float64
	switch category {
	case model.CategorySolo:
		shares = q.idealSolo
	case model.CategoryGroup:
		shares = q.idealGroup
	default:
		return 0, fmt.Errorf("unknown category %q", category)
	}

	share, ok := shares[worker]
	if !ok {
		return 0, fmt.Errorf("%w: %q", ErrUnknownWorker, worker)
	}
	return share, nil
}

// ItemCount returns the total number of items the model was built for in the given category
func (q *QuotaModel) ItemCount(category model.Category) int {
	switch category {
	case model.CategorySolo:
		return q.soloCount
	case model.CategoryGroup:
		return q.groupCount
	}
	return 0
}
