package sheetsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/rhowell/gradesplit/pkg/core/model"
)

func solo(id, name string) model.Item {
	return model.Item{SubmissionID: id, Members: []string{name}}
}

func group(id string, names ...string) model.Item {
	return model.Item{SubmissionID: id, Members: names}
}

func findCell(layout partitionLayout, row, col int) (string, bool) {
	for _, c := range layout.Cells {
		if c.Row == row && c.Col == col {
			return c.Value, true
		}
	}
	return "", false
}

func TestLayoutPartition_SingleBand(t *testing.T) {
	assignment := model.Assignment{
		"Bea": {solo("1", "Alice"), group("2", "Bob", "Carol")},
		"Al":  {solo("3", "Dan")},
	}

	layout := layoutPartition(assignment)

	// Instructors are sorted: Al at B1, Bea at F1
	v, ok := findCell(layout, 0, 1)
	require.True(t, ok)
	assert.Equal(t, "Al", v)
	v, ok = findCell(layout, 0, 5)
	require.True(t, ok)
	assert.Equal(t, "Bea", v)

	v, _ = findCell(layout, 1, 1)
	assert.Equal(t, "Dan", v)
	v, _ = findCell(layout, 1, 5)
	assert.Equal(t, "Alice", v)
	v, _ = findCell(layout, 2, 5)
	assert.Equal(t, "Bob", v)
	v, _ = findCell(layout, 2, 6)
	assert.Equal(t, "Carol", v)

	assert.Equal(t, []gridRange{
		{StartRow: 0, EndRow: 1, StartCol: 1, EndCol: 4},
		{StartRow: 0, EndRow: 1, StartCol: 5, EndCol: 8},
	}, layout.Merges)

	// Only header borders in a single band
	assert.Equal(t, []gridRange{
		{StartRow: 1, EndRow: 2, StartCol: 1, EndCol: 4},
		{StartRow: 1, EndRow: 2, StartCol: 5, EndCol: 8},
	}, layout.TopBorders)

	assert.Equal(t, 3, layout.Rows)
	assert.Len(t, layout.WideCols, instructorsPerBand)
}

func TestLayoutPartition_SecondBandStartsBelowLongestList(t *testing.T) {
	assignment := model.Assignment{}
	for i := 0; i < 5; i++ {
		name := fmt.Sprintf("I%d", i)
		assignment[name] = []model.Item{}
	}
	// Longest list in the first band has 3 submissions
	assignment["I2"] = []model.Item{solo("a", "A"), solo("b", "B"), solo("c", "C")}
	assignment["I4"] = []model.Item{solo("d", "D")}

	layout := layoutPartition(assignment)

	// Fifth instructor wraps to column B, 3 + 4 rows down
	v, ok := findCell(layout, 7, 1)
	require.True(t, ok)
	assert.Equal(t, "I4", v)
	v, _ = findCell(layout, 8, 1)
	assert.Equal(t, "D", v)

	assert.Contains(t, layout.TopBorders, gridRange{StartRow: 7, EndRow: 8, StartCol: 0, EndCol: 16})
	assert.Equal(t, 9, layout.Rows)
}

func TestLayoutPartition_Empty(t *testing.T) {
	layout := layoutPartition(model.Assignment{})

	assert.Empty(t, layout.Cells)
	assert.Empty(t, layout.values())
	assert.Equal(t, 0, layout.Rows)
}

func TestMemberCells(t *testing.T) {
	assert.Equal(t, []string{"A"}, memberCells([]string{"A"}))
	assert.Equal(t, []string{"A", "B", "C"}, memberCells([]string{"A", "B", "C"}))
	assert.Equal(t, []string{"A", "B", "C, D, E"}, memberCells([]string{"A", "B", "C", "D", "E"}))
}

func TestLayoutValues_DenseGrid(t *testing.T) {
	layout := layoutPartition(model.Assignment{
		"Al": {group("1", "Bob", "Carol")},
	})

	assert.Equal(t, [][]interface{}{
		{"", "Al"},
		{"", "Bob", "Carol"},
	}, layout.values())
}

func TestFormatRequests(t *testing.T) {
	layout := layoutPartition(model.Assignment{"Al": {solo("1", "Bob")}})

	requests := layout.formatRequests(42)

	// 1 header border, 1 merge, 4 column widths
	require.Len(t, requests, 6)

	border := requests[0].UpdateBorders
	require.NotNil(t, border)
	assert.Equal(t, int64(42), border.Range.SheetId)
	assert.Equal(t, borderStyle, border.Top.Style)

	merge := requests[1].MergeCells
	require.NotNil(t, merge)
	assert.Equal(t, "MERGE_ALL", merge.MergeType)
	assert.Equal(t, int64(1), merge.Range.StartColumnIndex)
	assert.Equal(t, int64(4), merge.Range.EndColumnIndex)

	width := requests[2].UpdateDimensionProperties
	require.NotNil(t, width)
	assert.Equal(t, "COLUMNS", width.Range.Dimension)
	assert.Equal(t, int64(columnWidthPixels), width.Properties.PixelSize)
	assert.Equal(t, "pixelSize", width.Fields)
}

func TestUniqueTitle(t *testing.T) {
	assert.Equal(t, "New Assignment", uniqueTitle("New Assignment", nil))
	assert.Equal(t, "New Assignment (2)", uniqueTitle("New Assignment", []string{"New Assignment"}))
	assert.Equal(t, "New Assignment (3)", uniqueTitle("New Assignment", []string{"New Assignment", "New Assignment (2)"}))
}

func TestA1Range(t *testing.T) {
	assert.Equal(t, "'New Assignment'!A1", a1Range("New Assignment", "A1"))
	assert.Equal(t, "'Ryan''s'!A1", a1Range("Ryan's", "A1"))
}

// fakeSheetsServer records the calls made against the Sheets REST API
type fakeSheetsServer struct {
	mu            sync.Mutex
	existing      []string
	batchRequests [][]*sheets.Request
	valuePaths    []string
	values        [][]interface{}
}

func (f *fakeSheetsServer) handler(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()

		w.Header().Set("Content-Type", "application/json")

		switch {
		case r.Method == http.MethodGet && r.URL.Path == "/v4/spreadsheets/sheet-123":
			resp := &sheets.Spreadsheet{}
			for _, title := range f.existing {
				resp.Sheets = append(resp.Sheets, &sheets.Sheet{Properties: &sheets.SheetProperties{Title: title}})
			}
			assert.NoError(t, json.NewEncoder(w).Encode(resp))

		case r.Method == http.MethodPost && strings.HasSuffix(r.URL.Path, ":batchUpdate"):
			var req sheets.BatchUpdateSpreadsheetRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			f.batchRequests = append(f.batchRequests, req.Requests)

			resp := &sheets.BatchUpdateSpreadsheetResponse{}
			if len(req.Requests) > 0 && req.Requests[0].AddSheet != nil {
				resp.Replies = []*sheets.Response{{
					AddSheet: &sheets.AddSheetResponse{
						Properties: &sheets.SheetProperties{SheetId: 42, Title: req.Requests[0].AddSheet.Properties.Title},
					},
				}}
			}
			assert.NoError(t, json.NewEncoder(w).Encode(resp))

		case r.Method == http.MethodPut && strings.Contains(r.URL.Path, "/values/"):
			var vr sheets.ValueRange
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&vr))
			f.valuePaths = append(f.valuePaths, r.URL.Path)
			f.values = vr.Values
			assert.NoError(t, json.NewEncoder(w).Encode(&sheets.UpdateValuesResponse{}))

		default:
			http.Error(w, "unexpected request "+r.Method+" "+r.URL.Path, http.StatusNotFound)
		}
	}
}

func newTestClient(t *testing.T, fake *fakeSheetsServer) *Client {
	server := httptest.NewServer(fake.handler(t))
	t.Cleanup(server.Close)

	client, err := NewClientWithOptions(context.Background(),
		option.WithoutAuthentication(),
		option.WithEndpoint(server.URL+"/"),
	)
	require.NoError(t, err)
	return client
}

func TestPublishPartition(t *testing.T) {
	fake := &fakeSheetsServer{existing: []string{"Sheet1", "New Assignment"}}
	client := newTestClient(t, fake)

	assignment := model.Assignment{
		"Al":  {solo("1", "Dan")},
		"Bea": {group("2", "Bob", "Carol")},
	}

	published, err := client.PublishPartition(context.Background(), "sheet-123", "New Assignment", assignment)
	require.NoError(t, err)

	assert.Equal(t, "New Assignment (2)", published.Title)
	assert.Equal(t, int64(42), published.SheetID)
	assert.Equal(t, "https://docs.google.com/spreadsheets/d/sheet-123/edit#gid=42", published.URL)

	// Create tab, then format
	require.Len(t, fake.batchRequests, 2)
	addSheet := fake.batchRequests[0][0].AddSheet
	require.NotNil(t, addSheet)
	assert.Equal(t, "New Assignment (2)", addSheet.Properties.Title)
	assert.Equal(t, int64(minSheetRows), addSheet.Properties.GridProperties.RowCount)
	assert.Equal(t, int64(minSheetColumns), addSheet.Properties.GridProperties.ColumnCount)
	assert.NotEmpty(t, fake.batchRequests[1])

	require.Len(t, fake.valuePaths, 1)
	assert.Contains(t, fake.valuePaths[0], "'New Assignment (2)'!A1")
	assert.Equal(t, [][]interface{}{
		{"", "Al", "", "", "", "Bea"},
		{"", "Dan", "", "", "", "Bob", "Carol"},
	}, fake.values)
}

func TestPublishPartition_SpreadsheetNotFound(t *testing.T) {
	fake := &fakeSheetsServer{}
	client := newTestClient(t, fake)

	_, err := client.PublishPartition(context.Background(), "other-sheet", "New Assignment", model.Assignment{})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get spreadsheet metadata")
}

func TestPublishPartition_CancelledContext(t *testing.T) {
	fake := &fakeSheetsServer{existing: []string{"Sheet1"}}
	client := newTestClient(t, fake)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.PublishPartition(ctx, "sheet-123", "New Assignment", model.Assignment{"Al": {solo("1", "Dan")}})
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get spreadsheet metadata")

	// Nothing is created once the context is done
	fake.mu.Lock()
	defer fake.mu.Unlock()
	assert.Empty(t, fake.batchRequests)
	assert.Empty(t, fake.valuePaths)
}
