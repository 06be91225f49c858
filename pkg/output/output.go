package output

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/rhowell/gradesplit/internal/config"
	"github.com/rhowell/gradesplit/pkg/clients/sheetsclient"
	"github.com/rhowell/gradesplit/pkg/core/model"
)

// Sink writes a finished assignment somewhere
type Sink interface {
	Write(ctx context.Context, run Run, assignment model.Assignment) error
	Describe() string
}

// Run carries metadata about the allocation run being written
type Run struct {
	ID          string
	GeneratedAt time.Time
}

// PartitionPublisher defines the sheets operation needed by SheetsSink
type PartitionPublisher interface {
	PublishPartition(ctx context.Context, spreadsheetID, title string, assignment model.Assignment) (*sheetsclient.PublishedSheet, error)
}

// TextSink writes one block per instructor: name, blank line, one
// tab-separated line per submission, blank line
type TextSink struct {
	Path string
}

func (s *TextSink) Describe() string {
	return s.Path
}

func (s *TextSink) Write(ctx context.Context, run Run, assignment model.Assignment) error {
	return writeFile(s.Path, func(w io.Writer) error {
		return WriteText(w, assignment)
	})
}

// WriteText renders the assignment in the plain text format
func WriteText(w io.Writer, assignment model.Assignment) error {
	bw := bufio.NewWriter(w)
	for _, worker := range assignment.SortedWorkers() {
		fmt.Fprintf(bw, "%s\n\n", worker)
		for _, item := range assignment[worker] {
			fmt.Fprintf(bw, "%s\n", strings.Join(item.Members, "\t"))
		}
		fmt.Fprint(bw, "\n")
	}
	return bw.Flush()
}

// JSONSink writes the assignment as a single JSON document
type JSONSink struct {
	Path string
}

func (s *JSONSink) Describe() string {
	return s.Path
}

// Document is the JSON representation of a run
type Document struct {
	RunID       string                `json:"runId"`
	GeneratedAt time.Time             `json:"generatedAt"`
	Partition   map[string][][]string `json:"partition"`
}

// NewDocument converts an assignment into its JSON document form
func NewDocument(run Run, assignment model.Assignment) Document {
	partition := make(map[string][][]string, len(assignment))
	for worker, items := range assignment {
		members := make([][]string, len(items))
		for i, item := range items {
			members[i] = item.Members
		}
		partition[worker] = members
	}
	return Document{
		RunID:       run.ID,
		GeneratedAt: run.GeneratedAt,
		Partition:   partition,
	}
}

func (s *JSONSink) Write(ctx context.Context, run Run, assignment model.Assignment) error {
	return writeFile(s.Path, func(w io.Writer) error {
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(NewDocument(run, assignment)); err != nil {
			return fmt.Errorf("failed to encode partition: %w", err)
		}
		return nil
	})
}

// SheetsSink publishes the assignment to a new tab in a Google spreadsheet
type SheetsSink struct {
	Publisher     PartitionPublisher
	SpreadsheetID string
	Title         string
	Logger        *zap.Logger
}

func (s *SheetsSink) Describe() string {
	return fmt.Sprintf("spreadsheet %s", s.SpreadsheetID)
}

func (s *SheetsSink) Write(ctx context.Context, run Run, assignment model.Assignment) error {
	published, err := s.Publisher.PublishPartition(ctx, s.SpreadsheetID, s.Title, assignment)
	if err != nil {
		return fmt.Errorf("failed to publish partition: %w", err)
	}

	if s.Logger != nil {
		s.Logger.Info("Published partition",
			zap.String("run_id", run.ID),
			zap.String("title", published.Title),
			zap.String("url", published.URL))
	}

	return nil
}

// New chooses the sink configured by cfg.Output
// publisher is only needed for googlesheets output
func New(cfg *config.Config, publisher PartitionPublisher, logger *zap.Logger) (Sink, error) {
	switch cfg.Output {
	case config.OutputText:
		return &TextSink{Path: cfg.ResolvedOutputPath()}, nil
	case config.OutputJSON:
		return &JSONSink{Path: cfg.ResolvedOutputPath()}, nil
	case config.OutputGoogleSheets:
		if publisher == nil {
			return nil, fmt.Errorf("googlesheets output requires a sheets client")
		}
		spreadsheetID, err := cfg.SpreadsheetID()
		if err != nil {
			return nil, fmt.Errorf("invalid sheetUrl: %w", err)
		}
		return &SheetsSink{
			Publisher:     publisher,
			SpreadsheetID: spreadsheetID,
			Title:         cfg.ResolvedWorksheetTitle(),
			Logger:        logger,
		}, nil
	default:
		return nil, fmt.Errorf("unknown output %q", cfg.Output)
	}
}

func writeFile(path string, write func(io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}

	if err := write(f); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return fmt.Errorf("failed to close %s: %w", path, err)
	}

	return nil
}
