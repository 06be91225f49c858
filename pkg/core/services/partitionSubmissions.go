package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"go.uber.org/zap"

	"github.com/rhowell/gradesplit/internal/config"
	"github.com/rhowell/gradesplit/pkg/core/allocator"
	"github.com/rhowell/gradesplit/pkg/core/model"
	"github.com/rhowell/gradesplit/pkg/output"
)

// SubmissionReader defines the operation needed to load submissions
type SubmissionReader interface {
	LoadSubmissions(path string, instructors []string) ([]model.Item, error)
}

// WorkerSummary describes one instructor's share of the partition
type WorkerSummary struct {
	Worker     string
	Hours      float64
	IdealSolo  float64
	IdealGroup float64
	Solo       int
	Group      int
}

// PartitionResult contains the partition and what was done with it
type PartitionResult struct {
	RunID       string
	SoloCount   int
	GroupCount  int
	Workers     []WorkerSummary // Eligible instructors in config order
	Excluded    []string        // Instructors with 0 hours
	Assignment  model.Assignment
	Shuffled    bool
	Seed        int64
	Written     bool
	Destination string
}

// PartitionOptions controls a single partition run
type PartitionOptions struct {
	// DryRun skips writing to the sink
	DryRun bool

	// Now is used for the run timestamp and the default shuffle seed, time.Now if nil
	Now func() time.Time
}

// PartitionSubmissions loads the submissions at csvPath, splits them between
// the configured instructors and writes the result to sink
func PartitionSubmissions(
	ctx context.Context,
	reader SubmissionReader,
	sink output.Sink,
	cfg *config.Config,
	logger *zap.Logger,
	csvPath string,
	opts PartitionOptions,
) (*PartitionResult, error) {
	now := time.Now
	if opts.Now != nil {
		now = opts.Now
	}

	run := output.Run{
		ID:          uuid.New().String(),
		GeneratedAt: now(),
	}

	logger = logger.With(zap.String("run_id", run.ID))
	logger.Debug("Starting partitionSubmissions",
		zap.String("path", csvPath),
		zap.Bool("dry_run", opts.DryRun),
		zap.Bool("shuffle", cfg.Shuffle))

	// Step 1: Load submissions, excluding instructors
	logger.Debug("Loading submissions")
	items, err := reader.LoadSubmissions(csvPath, cfg.InstructorNames())
	if err != nil {
		return nil, fmt.Errorf("failed to load submissions: %w", err)
	}

	solo, group := allocator.SplitByCategory(items)
	logger.Debug("Loaded submissions",
		zap.Int("total", len(items)),
		zap.Int("solo", len(solo)),
		zap.Int("group", len(group)))

	// Step 2: Build allocation options
	allocOpts := allocator.Options{}
	result := &PartitionResult{
		RunID:      run.ID,
		SoloCount:  len(solo),
		GroupCount: len(group),
		Shuffled:   cfg.Shuffle,
	}
	if cfg.Shuffle {
		result.Seed = run.GeneratedAt.UnixNano()
		if cfg.Seed != nil {
			result.Seed = *cfg.Seed
		}
		allocOpts = allocator.ShuffledOptions(result.Seed)
		logger.Debug("Shuffling submissions", zap.Int64("seed", result.Seed))
	}

	// Step 3: Partition
	workers := cfg.Workers()
	assignment, quota, err := allocator.PartitionWithQuota(items, workers, allocOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to partition submissions: %w", err)
	}
	result.Assignment = assignment

	if err := combineValidationErrors(allocator.ValidateAssignment(assignment, quota, items)); err != nil {
		logger.Error("Partition validation failed", zap.Error(err))
		return nil, fmt.Errorf("partition failed validation: %w", err)
	}

	result.Workers, result.Excluded, err = summarize(workers, quota, assignment)
	if err != nil {
		return nil, err
	}

	for _, s := range result.Workers {
		logger.Debug("Instructor share",
			zap.String("instructor", s.Worker),
			zap.Float64("hours", s.Hours),
			zap.Int("solo", s.Solo),
			zap.Float64("ideal_solo", s.IdealSolo),
			zap.Int("group", s.Group),
			zap.Float64("ideal_group", s.IdealGroup))
	}

	// Step 4: Write
	if opts.DryRun {
		logger.Info("Dry run, partition not written")
		return result, nil
	}

	if sink == nil {
		return nil, fmt.Errorf("no output configured")
	}

	logger.Debug("Writing partition", zap.String("destination", sink.Describe()))
	if err := sink.Write(ctx, run, assignment); err != nil {
		return nil, fmt.Errorf("failed to write partition: %w", err)
	}
	result.Written = true
	result.Destination = sink.Describe()

	logger.Info("Partition written",
		zap.String("destination", result.Destination),
		zap.Int("submissions", len(items)),
		zap.Int("instructors", len(result.Workers)))

	return result, nil
}

// Quotas returns each instructor's ideal share for the given submission counts
func Quotas(cfg *config.Config, soloCount, groupCount int) ([]WorkerSummary, []string, error) {
	workers := cfg.Workers()
	quota, err := allocator.NewQuotaModel(workers, soloCount, groupCount)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to build quota model: %w", err)
	}

	return summarize(workers, quota, model.Assignment{})
}

// combineValidationErrors returns nil if there are no validation errors
func combineValidationErrors(validationErrors []allocator.ValidationError) error {
	var result *multierror.Error
	for _, ve := range validationErrors {
		result = multierror.Append(result, ve)
	}
	return result.ErrorOrNil()
}

// summarize builds one summary per eligible worker, in worker order, and lists the excluded workers
func summarize(workers []model.Worker, quota *allocator.QuotaModel, assignment model.Assignment) ([]WorkerSummary, []string, error) {
	summaries := make([]WorkerSummary, 0, len(workers))
	excluded := make([]string, 0)

	for _, w := range workers {
		if !quota.IsEligible(w.ID) {
			excluded = append(excluded, w.ID)
			continue
		}

		idealSolo, err := quota.IdealSolo(w.ID)
		if err != nil {
			return nil, nil, err
		}
		idealGroup, err := quota.IdealGroup(w.ID)
		if err != nil {
			return nil, nil, err
		}

		summaries = append(summaries, WorkerSummary{
			Worker:     w.ID,
			Hours:      w.Weight,
			IdealSolo:  idealSolo,
			IdealGroup: idealGroup,
			Solo:       assignment.Count(w.ID, model.CategorySolo),
			Group:      assignment.Count(w.ID, model.CategoryGroup),
		})
	}

	return summaries, excluded, nil
}
