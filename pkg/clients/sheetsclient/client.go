package sheetsclient

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/rhowell/gradesplit/internal/config"
)

// OAuth scopes requested by the service account
const (
	ScopeSheets    = "https://www.googleapis.com/auth/spreadsheets"
	ScopeDriveFile = "https://www.googleapis.com/auth/drive.file"
)

// Client wraps the Google Sheets API client
type Client struct {
	service *sheets.Service
}

// NewClient creates a new Sheets client authenticated as a service account
func NewClient(ctx context.Context, key *config.ServiceAccountKey) (*Client, error) {
	keyJSON, err := key.JSON()
	if err != nil {
		return nil, fmt.Errorf("failed to read service account key: %w", err)
	}

	jwtConfig, err := google.JWTConfigFromJSON(keyJSON, ScopeSheets, ScopeDriveFile)
	if err != nil {
		return nil, fmt.Errorf("failed to create jwt config: %w", err)
	}

	return NewClientWithOptions(ctx, option.WithHTTPClient(jwtConfig.Client(ctx)))
}

// NewClientWithOptions creates a new Sheets client from raw API options
func NewClientWithOptions(ctx context.Context, opts ...option.ClientOption) (*Client, error) {
	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return &Client{
		service: service,
	}, nil
}

// UpdateValues overwrites values starting at the given range
func (c *Client) UpdateValues(ctx context.Context, spreadsheetID, sheetRange string, values [][]interface{}) error {
	valueRange := &sheets.ValueRange{
		Values: values,
	}

	_, err := c.service.Spreadsheets.Values.Update(spreadsheetID, sheetRange, valueRange).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("failed to update values: %w", err)
	}

	return nil
}

// SheetTitles returns the titles of every tab in the spreadsheet
func (c *Client) SheetTitles(ctx context.Context, spreadsheetID string) ([]string, error) {
	spreadsheet, err := c.service.Spreadsheets.Get(spreadsheetID).
		Fields("sheets.properties.title").
		Context(ctx).
		Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get spreadsheet metadata: %w", err)
	}

	titles := make([]string, 0, len(spreadsheet.Sheets))
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil {
			titles = append(titles, sheet.Properties.Title)
		}
	}

	return titles, nil
}

// CreateSheet creates a new sheet/tab in the spreadsheet with the given grid size
func (c *Client) CreateSheet(ctx context.Context, spreadsheetID, sheetTitle string, rows, cols int64) (int64, error) {
	req := &sheets.Request{
		AddSheet: &sheets.AddSheetRequest{
			Properties: &sheets.SheetProperties{
				Title: sheetTitle,
				GridProperties: &sheets.GridProperties{
					RowCount:    rows,
					ColumnCount: cols,
				},
			},
		},
	}

	resp, err := c.BatchUpdate(ctx, spreadsheetID, []*sheets.Request{req})
	if err != nil {
		return 0, fmt.Errorf("failed to create sheet: %w", err)
	}

	if len(resp.Replies) == 0 || resp.Replies[0].AddSheet == nil {
		return 0, fmt.Errorf("unexpected response from create sheet")
	}

	sheetID := resp.Replies[0].AddSheet.Properties.SheetId
	return sheetID, nil
}

// BatchUpdate sends the requests to the spreadsheet in a single call
func (c *Client) BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) (*sheets.BatchUpdateSpreadsheetResponse, error) {
	batchUpdateRequest := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}

	resp, err := c.service.Spreadsheets.BatchUpdate(spreadsheetID, batchUpdateRequest).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to batch update: %w", err)
	}

	return resp, nil
}
