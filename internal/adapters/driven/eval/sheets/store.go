// Package sheets reads evaluation cases from a Google spreadsheet and writes
// the responses back to it. The first row of the worksheet is a header naming
// the Question, Follow-up, Response and Follow-up Response columns.
package sheets

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"github.com/custodia-labs/coursemate-cli/internal/core/domain"
	"github.com/custodia-labs/coursemate-cli/internal/core/ports/driven"
)

// DefaultWorksheet is used when no worksheet is given.
const DefaultWorksheet = "Sheet1"

// Header names, matched case-insensitively.
const (
	ColQuestion         = "Question"
	ColFollowUp         = "Follow-up"
	ColResponse         = "Response"
	ColFollowUpResponse = "Follow-up Response"
)

var (
	_ driven.EvalStore       = (*Store)(nil)
	_ driven.EvalStoreOpener = (*Opener)(nil)
)

// Opener opens spreadsheets. With no client options it authenticates with
// Application Default Credentials (GOOGLE_APPLICATION_CREDENTIALS or gcloud).
type Opener struct {
	Options []option.ClientOption
}

// Open connects to the spreadsheet and reads its header row.
func (o *Opener) Open(ctx context.Context, spreadsheetID, worksheet string) (driven.EvalStore, error) {
	opts := o.Options
	if len(opts) == 0 {
		creds, err := google.FindDefaultCredentials(ctx, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("finding Google credentials: %w", err)
		}
		opts = []option.ClientOption{option.WithCredentials(creds)}
	}

	svc, err := sheets.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating sheets service: %w", err)
	}
	return newStore(ctx, svc, spreadsheetID, worksheet)
}

// Store is an evaluation store over one worksheet.
type Store struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
	columns       map[string]int
	rows          [][]any
}

func newStore(ctx context.Context, svc *sheets.Service, spreadsheetID, worksheet string) (*Store, error) {
	if spreadsheetID == "" {
		return nil, fmt.Errorf("%w: spreadsheet id is required", domain.ErrInvalidInput)
	}
	if worksheet == "" {
		worksheet = DefaultWorksheet
	}

	resp, err := svc.Spreadsheets.Values.Get(spreadsheetID, worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", worksheet, err)
	}
	if len(resp.Values) == 0 {
		return nil, fmt.Errorf("%w: worksheet %s is empty", domain.ErrInvalidInput, worksheet)
	}

	columns := make(map[string]int)
	for i, cell := range resp.Values[0] {
		columns[strings.ToLower(strings.TrimSpace(fmt.Sprint(cell)))] = i
	}
	for _, name := range []string{ColQuestion, ColResponse, ColFollowUpResponse} {
		if _, ok := columns[strings.ToLower(name)]; !ok {
			return nil, fmt.Errorf("%w: worksheet %s has no %q column", domain.ErrInvalidInput, worksheet, name)
		}
	}

	return &Store{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		worksheet:     worksheet,
		columns:       columns,
		rows:          resp.Values[1:],
	}, nil
}

// cell returns the trimmed text at the named column, "" when absent.
func (s *Store) cell(row []any, name string) string {
	i, ok := s.columns[strings.ToLower(name)]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(fmt.Sprint(row[i]))
}

// Load returns one case per data row. Row numbers are sheet rows, so the
// first case is row 2.
func (s *Store) Load(_ context.Context) ([]domain.EvalCase, error) {
	cases := make([]domain.EvalCase, 0, len(s.rows))
	for i, row := range s.rows {
		cases = append(cases, domain.EvalCase{
			Row:              i + 2,
			Question:         s.cell(row, ColQuestion),
			FollowUp:         s.cell(row, ColFollowUp),
			Response:         s.cell(row, ColResponse),
			FollowUpResponse: s.cell(row, ColFollowUpResponse),
		})
	}
	return cases, nil
}

// SaveResponses writes both response cells of the case's row in one call.
func (s *Store) SaveResponses(ctx context.Context, c domain.EvalCase) error {
	if c.Row < 2 {
		return fmt.Errorf("%w: row %d is the header or out of range", domain.ErrInvalidInput, c.Row)
	}

	data := []*sheets.ValueRange{
		{
			Range:  s.a1(ColResponse, c.Row),
			Values: [][]any{{c.Response}},
		},
		{
			Range:  s.a1(ColFollowUpResponse, c.Row),
			Values: [][]any{{c.FollowUpResponse}},
		},
	}
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	if _, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("writing row %d: %w", c.Row, err)
	}
	return nil
}

// a1 builds the A1 reference of a named column in a sheet row.
func (s *Store) a1(name string, row int) string {
	return fmt.Sprintf("%s!%s%d", s.worksheet, columnLetter(s.columns[strings.ToLower(name)]), row)
}

// columnLetter converts a zero-based column index to A, B, ..., Z, AA, AB, ...
func columnLetter(i int) string {
	var b []byte
	for i++; i > 0; i = (i - 1) / 26 {
		b = append([]byte{byte('A' + (i-1)%26)}, b...)
	}
	return string(b)
}

// Close is a no-op; every save is sent immediately.
func (s *Store) Close() error {
	return nil
}
