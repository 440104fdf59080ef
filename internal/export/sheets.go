package export

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/yaknet/monkeysync/internal/fieldspec"
	"github.com/yaknet/monkeysync/internal/id"
	"github.com/yaknet/monkeysync/internal/model"
)

// SheetsConfig configures the spreadsheet sink.
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string // service-account JSON
	Endpoint        string // custom API endpoint, e.g. a local emulator; disables auth
}

// Sheets publishes batches as new tabs of a Google spreadsheet.
type Sheets struct {
	service       *sheets.Service
	spreadsheetID string
}

// NewSheets creates a spreadsheet sink.
func NewSheets(ctx context.Context, cfg SheetsConfig) (*Sheets, error) {
	if cfg.SpreadsheetID == "" {
		return nil, fmt.Errorf("spreadsheet id is required")
	}

	var opts []option.ClientOption
	switch {
	case cfg.Endpoint != "":
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	case cfg.CredentialsFile != "":
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile), option.WithScopes(sheets.SpreadsheetsScope))
	default:
		return nil, fmt.Errorf("sheets credentials file is required")
	}

	service, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create Sheets service: %w", err)
	}
	return &Sheets{service: service, spreadsheetID: cfg.SpreadsheetID}, nil
}

// Publish adds one tab per category titled "<category> <tag>" and fills
// it with the header and rows. It returns the created titles.
func (s *Sheets) Publish(ctx context.Context, b *model.ImportBatch) ([]string, error) {
	var titles []string
	for _, c := range model.Categories {
		t, ok := b.Tables[c]
		if !ok {
			continue
		}
		title := id.SheetTitle(string(c), b.Tag)
		if err := s.addSheet(ctx, title); err != nil {
			return titles, err
		}
		if err := s.writeValues(ctx, title, t); err != nil {
			return titles, err
		}
		titles = append(titles, title)
	}
	return titles, nil
}

func (s *Sheets) addSheet(ctx context.Context, title string) error {
	req := &sheets.BatchUpdateSpreadsheetRequest{
		Requests: []*sheets.Request{{
			AddSheet: &sheets.AddSheetRequest{
				Properties: &sheets.SheetProperties{Title: title},
			},
		}},
	}
	if _, err := s.service.Spreadsheets.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("adding sheet %q: %w", title, err)
	}
	return nil
}

func (s *Sheets) writeValues(ctx context.Context, title string, t *model.Table) error {
	values := make([][]interface{}, 0, len(t.Rows)+1)
	values = append(values, cells(t.Fields))

	spec := fieldspec.FieldSpec{Fields: t.Fields}
	for _, row := range t.Rows {
		values = append(values, cells(spec.Render(row)))
	}

	_, err := s.service.Spreadsheets.Values.Update(s.spreadsheetID, a1Range(title), &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("writing sheet %q: %w", title, err)
	}
	return nil
}

// a1Range addresses the top-left cell of a sheet. Quotes in the title are
// doubled inside the quoted sheet name.
func a1Range(title string) string {
	return "'" + strings.ReplaceAll(title, "'", "''") + "'!A1"
}

func cells(ss []string) []interface{} {
	out := make([]interface{}, len(ss))
	for i, s := range ss {
		out[i] = s
	}
	return out
}
