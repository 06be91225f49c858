package submissions

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rhowell/gradesplit/pkg/core/model"
)

// Column names in the gradebook export
const (
	ColumnFirstName    = "First Name"
	ColumnLastName     = "Last Name"
	ColumnSubmissionID = "Submission ID"
	ColumnStatus       = "Status"

	StatusMissing = "Missing"
)

var requiredColumns = []string{
	ColumnFirstName,
	ColumnLastName,
	ColumnSubmissionID,
	ColumnStatus,
}

// Reader loads submissions, skipping any whose student is an instructor
type Reader struct{}

// NewReader creates a file based submission reader
func NewReader() *Reader {
	return &Reader{}
}

// LoadSubmissions reads the gradebook export at path
func (r *Reader) LoadSubmissions(path string, instructors []string) ([]model.Item, error) {
	return LoadFile(path, instructors)
}

// LoadFile opens and parses a gradebook export
func LoadFile(path string, instructors []string) ([]model.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open submissions file: %w", err)
	}
	defer f.Close()

	items, err := Parse(f, instructors)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	return items, nil
}

// Parse converts a gradebook export into submissions.
//
// Rows marked Missing are skipped, as are rows whose student name matches an
// instructor (case-insensitive). Rows sharing a Submission ID become one
// submission; submissions keep the order their IDs first appear in, and
// members keep row order.
func Parse(r io.Reader, instructors []string) ([]model.Item, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("no header row found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	fieldIndexes, err := indexColumns(header)
	if err != nil {
		return nil, err
	}

	getField := func(field string, row []string) string {
		index := fieldIndexes[field]
		if index >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[index])
	}

	excluded := make(map[string]bool, len(instructors))
	for _, name := range instructors {
		excluded[model.NormalizeName(name)] = true
	}

	var order []string
	members := make(map[string][]string)

	line := 1
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("failed to read row %d: %w", line, err)
		}

		if getField(ColumnStatus, row) == StatusMissing {
			continue
		}

		name := getField(ColumnFirstName, row)
		if last := getField(ColumnLastName, row); last != "" {
			name += " " + last
		}

		if excluded[model.NormalizeName(name)] {
			continue
		}

		id := getField(ColumnSubmissionID, row)
		if id == "" {
			return nil, fmt.Errorf("row %d has no %s", line, ColumnSubmissionID)
		}

		if _, ok := members[id]; !ok {
			order = append(order, id)
		}
		members[id] = append(members[id], name)
	}

	items := make([]model.Item, 0, len(order))
	for _, id := range order {
		items = append(items, model.Item{SubmissionID: id, Members: members[id]})
	}

	return items, nil
}

// indexColumns maps each required column to its position in the header row
func indexColumns(header []string) (map[string]int, error) {
	fieldIndexes := make(map[string]int, len(requiredColumns))
	for _, field := range requiredColumns {
		index := -1
		for i, cell := range header {
			// Exports sometimes carry a UTF-8 BOM on the first cell
			if strings.TrimSpace(strings.TrimPrefix(cell, "\ufeff")) == field {
				index = i
				break
			}
		}
		if index == -1 {
			return nil, fmt.Errorf("missing required column in header: %s", field)
		}
		fieldIndexes[field] = index
	}
	return fieldIndexes, nil
}
