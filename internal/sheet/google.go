package sheet

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// rawInput keeps values exactly as sent: "01" stays a string, "12.50" keeps
// both decimals.
const rawInput = "RAW"

// Google is the Client backed by the Sheets v4 API.
type Google struct {
	srv           *sheets.Service
	spreadsheetID string
}

// NewGoogle builds a Sheets client from service-account credentials JSON.
func NewGoogle(ctx context.Context, spreadsheetID string, credentialsJSON []byte) (*Google, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("missing spreadsheet ID")
	}
	creds, err := google.CredentialsFromJSON(ctx, credentialsJSON, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("invalid service account credentials: %w", err)
	}
	srv, err := sheets.NewService(ctx, option.WithCredentials(creds))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return &Google{srv: srv, spreadsheetID: spreadsheetID}, nil
}

// Ping fetches spreadsheet metadata to verify access.
func (g *Google) Ping(ctx context.Context) error {
	if _, err := g.srv.Spreadsheets.Get(g.spreadsheetID).Fields("spreadsheetId").Context(ctx).Do(); err != nil {
		return fmt.Errorf("unable to access spreadsheet: %w", err)
	}
	return nil
}

func (g *Google) EnsureTab(ctx context.Context, title string, header []string) error {
	ss, err := g.srv.Spreadsheets.Get(g.spreadsheetID).Fields("sheets.properties.title").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("list tabs: %w", err)
	}

	exists := false
	for _, sh := range ss.Sheets {
		if sh.Properties != nil && sh.Properties.Title == title {
			exists = true
			break
		}
	}

	if !exists {
		req := &sheets.BatchUpdateSpreadsheetRequest{
			Requests: []*sheets.Request{{
				AddSheet: &sheets.AddSheetRequest{
					Properties: &sheets.SheetProperties{Title: title},
				},
			}},
		}
		_, err := g.srv.Spreadsheets.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do()
		if err != nil && !isAlreadyExists(err) {
			return fmt.Errorf("add tab %s: %w", title, err)
		}
	}

	return ensureHeader(ctx, g, title, header)
}

func (g *Google) Get(ctx context.Context, rng string) ([][]string, error) {
	resp, err := g.srv.Spreadsheets.Values.Get(g.spreadsheetID, rng).
		ValueRenderOption("FORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		if isMissingRange(err) {
			return nil, fmt.Errorf("get %s: %w", rng, ErrTabNotFound)
		}
		return nil, fmt.Errorf("get %s: %w", rng, err)
	}

	rows := make([][]string, len(resp.Values))
	for i, row := range resp.Values {
		rows[i] = make([]string, len(row))
		for j, v := range row {
			rows[i][j] = formatCell(v)
		}
	}
	return rows, nil
}

func (g *Google) Update(ctx context.Context, rng string, values [][]any) error {
	_, err := g.srv.Spreadsheets.Values.Update(g.spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption(rawInput).
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("update %s: %w", rng, err)
	}
	return nil
}

func (g *Google) Append(ctx context.Context, rng string, values [][]any) error {
	_, err := g.srv.Spreadsheets.Values.Append(g.spreadsheetID, rng, &sheets.ValueRange{Values: values}).
		ValueInputOption(rawInput).
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append %s: %w", rng, err)
	}
	return nil
}

func (g *Google) BatchUpdate(ctx context.Context, data []ValueRange) error {
	if len(data) == 0 {
		return nil
	}
	req := &sheets.BatchUpdateValuesRequest{ValueInputOption: rawInput}
	for _, d := range data {
		req.Data = append(req.Data, &sheets.ValueRange{Range: d.Range, Values: d.Values})
	}
	if _, err := g.srv.Spreadsheets.Values.BatchUpdate(g.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("batch update (%d ranges): %w", len(data), err)
	}
	return nil
}

// isMissingRange matches the 400 the API returns for a range on a tab that
// does not exist.
func isMissingRange(err error) bool {
	var gErr *googleapi.Error
	if !errors.As(err, &gErr) || gErr.Code != http.StatusBadRequest {
		return false
	}
	return strings.Contains(gErr.Message, "Unable to parse range")
}
