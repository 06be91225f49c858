package sheetsclient

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"

	"github.com/rhowell/gradesplit/pkg/core/model"
)

// Grid layout of a published partition
const (
	instructorsPerBand   = 4
	columnsPerInstructor = 4
	memberColumns        = 3 // Columns holding member names, the rest is spacing
	firstColumn          = 1 // Column B
	bandGap              = 4 // Blank rows between the longest list and the next band
	columnWidthPixels    = 250
	borderStyle          = "SOLID_MEDIUM"

	minSheetRows    = 100
	minSheetColumns = 26
)

// PublishedSheet identifies the tab a partition was written to
type PublishedSheet struct {
	SpreadsheetID string
	SheetID       int64
	Title         string
	URL           string
}

type cell struct {
	Row, Col int
	Value    string
}

type gridRange struct {
	StartRow, EndRow int
	StartCol, EndCol int
}

// partitionLayout describes where every value and format goes, independent of any sheet
type partitionLayout struct {
	Cells      []cell
	Merges     []gridRange
	TopBorders []gridRange
	WideCols   []gridRange // Only StartCol and EndCol are used
	Rows, Cols int
}

// layoutPartition places each instructor in a block of columns, four blocks per band.
// Each block has a merged name header with a border beneath it and one row per
// submission. Every band after the first starts below the previous band's
// longest list plus a gap, with a border across the whole band.
func layoutPartition(assignment model.Assignment) partitionLayout {
	layout := partitionLayout{}
	lastColumn := firstColumn + instructorsPerBand*columnsPerInstructor - 1

	row := 0
	col := firstColumn
	longest := 0

	for i, worker := range assignment.SortedWorkers() {
		if i != 0 && i%instructorsPerBand == 0 {
			row += longest + bandGap
			longest = 0
			col = firstColumn

			layout.TopBorders = append(layout.TopBorders, gridRange{
				StartRow: row, EndRow: row + 1,
				StartCol: 0, EndCol: lastColumn,
			})
		}

		header := gridRange{StartRow: row, EndRow: row + 1, StartCol: col, EndCol: col + memberColumns}
		layout.Cells = append(layout.Cells, cell{Row: row, Col: col, Value: worker})
		layout.Merges = append(layout.Merges, header)
		layout.TopBorders = append(layout.TopBorders, gridRange{
			StartRow: row + 1, EndRow: row + 2,
			StartCol: header.StartCol, EndCol: header.EndCol,
		})

		items := assignment[worker]
		for j, item := range items {
			for k, member := range memberCells(item.Members) {
				layout.Cells = append(layout.Cells, cell{Row: row + 1 + j, Col: col + k, Value: member})
			}
		}

		longest = max(longest, len(items))
		layout.Rows = max(layout.Rows, row+1+len(items))
		col += columnsPerInstructor
	}

	for c := firstColumn; c < lastColumn; c += columnsPerInstructor {
		layout.WideCols = append(layout.WideCols, gridRange{StartCol: c, EndCol: c + memberColumns})
	}
	layout.Cols = lastColumn

	return layout
}

// memberCells spreads members over the member columns, joining any overflow into the last one
func memberCells(members []string) []string {
	if len(members) <= memberColumns {
		return members
	}
	cells := make([]string, memberColumns)
	copy(cells, members[:memberColumns-1])
	cells[memberColumns-1] = strings.Join(members[memberColumns-1:], ", ")
	return cells
}

// values converts the layout cells into a dense grid starting at A1
func (l partitionLayout) values() [][]interface{} {
	rows := make([][]interface{}, l.Rows)
	for _, c := range l.Cells {
		for len(rows[c.Row]) <= c.Col {
			rows[c.Row] = append(rows[c.Row], "")
		}
		rows[c.Row][c.Col] = c.Value
	}
	for i := range rows {
		if rows[i] == nil {
			rows[i] = []interface{}{}
		}
	}
	return rows
}

// formatRequests builds the merge, border and column width requests for the layout
func (l partitionLayout) formatRequests(sheetID int64) []*sheets.Request {
	toGrid := func(r gridRange) *sheets.GridRange {
		return &sheets.GridRange{
			SheetId:          sheetID,
			StartRowIndex:    int64(r.StartRow),
			EndRowIndex:      int64(r.EndRow),
			StartColumnIndex: int64(r.StartCol),
			EndColumnIndex:   int64(r.EndCol),
		}
	}

	requests := make([]*sheets.Request, 0, len(l.Merges)+len(l.TopBorders)+len(l.WideCols))

	for _, r := range l.TopBorders {
		requests = append(requests, &sheets.Request{
			UpdateBorders: &sheets.UpdateBordersRequest{
				Range: toGrid(r),
				Top:   &sheets.Border{Style: borderStyle},
			},
		})
	}

	for _, r := range l.Merges {
		requests = append(requests, &sheets.Request{
			MergeCells: &sheets.MergeCellsRequest{
				MergeType: "MERGE_ALL",
				Range:     toGrid(r),
			},
		})
	}

	for _, r := range l.WideCols {
		requests = append(requests, &sheets.Request{
			UpdateDimensionProperties: &sheets.UpdateDimensionPropertiesRequest{
				Range: &sheets.DimensionRange{
					SheetId:    sheetID,
					Dimension:  "COLUMNS",
					StartIndex: int64(r.StartCol),
					EndIndex:   int64(r.EndCol),
				},
				Properties: &sheets.DimensionProperties{PixelSize: columnWidthPixels},
				Fields:     "pixelSize",
			},
		})
	}

	return requests
}

// PublishPartition writes the assignment to a new tab in the spreadsheet.
// If a tab with the title already exists, a numeric suffix is added.
func (c *Client) PublishPartition(ctx context.Context, spreadsheetID, title string, assignment model.Assignment) (*PublishedSheet, error) {
	existing, err := c.SheetTitles(ctx, spreadsheetID)
	if err != nil {
		return nil, err
	}
	title = uniqueTitle(title, existing)

	layout := layoutPartition(assignment)

	sheetID, err := c.CreateSheet(ctx, spreadsheetID, title,
		int64(max(minSheetRows, layout.Rows+1)),
		int64(max(minSheetColumns, layout.Cols+1)))
	if err != nil {
		return nil, fmt.Errorf("failed to create tab: %w", err)
	}

	if requests := layout.formatRequests(sheetID); len(requests) > 0 {
		if _, err := c.BatchUpdate(ctx, spreadsheetID, requests); err != nil {
			return nil, fmt.Errorf("failed to format tab: %w", err)
		}
	}

	if values := layout.values(); len(values) > 0 {
		if err := c.UpdateValues(ctx, spreadsheetID, a1Range(title, "A1"), values); err != nil {
			return nil, fmt.Errorf("failed to write partition to tab: %w", err)
		}
	}

	return &PublishedSheet{
		SpreadsheetID: spreadsheetID,
		SheetID:       sheetID,
		Title:         title,
		URL:           fmt.Sprintf("https://docs.google.com/spreadsheets/d/%s/edit#gid=%d", spreadsheetID, sheetID),
	}, nil
}

// uniqueTitle adds " (2)", " (3)", ... to title until it matches no existing tab
func uniqueTitle(title string, existing []string) string {
	taken := make(map[string]bool, len(existing))
	for _, t := range existing {
		taken[t] = true
	}

	candidate := title
	for n := 2; taken[candidate]; n++ {
		candidate = fmt.Sprintf("%s (%d)", title, n)
	}
	return candidate
}

// a1Range quotes the sheet title for A1 notation
func a1Range(title, cellRange string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(title, "'", "''"), cellRange)
}
