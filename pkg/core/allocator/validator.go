package allocator

import (
	"fmt"
	"math"

	"github.com/rhowell/gradesplit/pkg/core/model"
)

// fairnessTolerance absorbs floating point error in the ideal shares
const fairnessTolerance = 1e-9

// ValidationError describes a way in which an assignment breaks the partition guarantees
type ValidationError struct {
	Worker      string // Empty for errors not tied to a worker
	Category    model.Category
	Description string
}

func (e ValidationError) Error() string {
	if e.Worker == "" {
		return e.Description
	}
	return fmt.Sprintf("%s (%s): %s", e.Worker, e.Category, e.Description)
}

// ValidateAssignment checks a finished assignment against the quota model and
// the items it was built from. Returns an empty slice if the assignment is valid.
//
// Checks:
//   - every input item is assigned exactly once and nothing else is assigned
//   - only eligible workers hold items
//   - every worker's count is strictly less than one item from their ideal
//     share; a deviation of exactly one item is an error
func ValidateAssignment(assignment model.Assignment, quota *QuotaModel, items []model.Item) []ValidationError {
	errors := []ValidationError{}

	expected := make(map[string]int, len(items))
	for _, item := range items {
		expected[item.SubmissionID]++
	}

	seen := make(map[string]int, len(items))
	for _, worker := range assignment.SortedWorkers() {
		assigned := assignment[worker]
		if len(assigned) > 0 && !quota.IsEligible(worker) {
			errors = append(errors, ValidationError{
				Worker:      worker,
				Description: fmt.Sprintf("not an eligible worker but holds %d items", len(assigned)),
			})
		}
		for _, item := range assigned {
			seen[item.SubmissionID]++
		}
	}

	for id, want := range expected {
		if got := seen[id]; got != want {
			errors = append(errors, ValidationError{
				Description: fmt.Sprintf("submission %q assigned %d times, expected %d", id, got, want),
			})
		}
	}
	for id, got := range seen {
		if _, ok := expected[id]; !ok {
			errors = append(errors, ValidationError{
				Description: fmt.Sprintf("submission %q assigned %d times but was not an input", id, got),
			})
		}
	}

	for _, worker := range quota.EligibleWorkers() {
		for _, category := range []model.Category{model.CategoryGroup, model.CategorySolo} {
			ideal, err := quota.IdealShare(worker, category)
			if err != nil {
				continue
			}
			count := assignment.Count(worker, category)
			if math.Abs(float64(count)-ideal) >= 1-fairnessTolerance {
				errors = append(errors, ValidationError{
					Worker:      worker,
					Category:    category,
					Description: fmt.Sprintf("assigned %d items but ideal share is %.2f", count, ideal),
				})
			}
		}
	}

	return errors
}
