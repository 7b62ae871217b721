package qalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"kb-assistant-be/internal/pkg/apperror"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// SheetsSink appends one row per entry to a Google spreadsheet.
type SheetsSink struct {
	svc           *sheets.Service
	spreadsheetID string
	sheetName     string
}

// NewSheetsSink authenticates with a service-account JSON key.
func NewSheetsSink(ctx context.Context, credentials, spreadsheetID, sheetName string) (*SheetsSink, error) {
	if credentials == "" || spreadsheetID == "" {
		var missing []string
		if credentials == "" {
			missing = append(missing, "GOOGLE_SHEETS_CREDENTIALS")
		}
		if spreadsheetID == "" {
			missing = append(missing, "GOOGLE_SHEETS_SPREADSHEET_ID")
		}
		return nil, &apperror.ConfigurationError{Keys: missing}
	}

	data, err := ParseCredentials(credentials)
	if err != nil {
		return nil, err
	}

	creds, err := google.CredentialsFromJSON(ctx, data, sheets.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("load sheets credentials: %w", err)
	}

	svc, err := sheets.NewService(ctx, option.WithTokenSource(creds.TokenSource))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return NewSheetsSinkWithService(svc, spreadsheetID, sheetName), nil
}

func NewSheetsSinkWithService(svc *sheets.Service, spreadsheetID, sheetName string) *SheetsSink {
	return &SheetsSink{svc: svc, spreadsheetID: spreadsheetID, sheetName: sheetName}
}

func (s *SheetsSink) Name() string { return "sheets" }

func (s *SheetsSink) Write(ctx context.Context, e Entry) error {
	vr := &sheets.ValueRange{Values: [][]interface{}{e.Row()}}

	_, err := s.svc.Spreadsheets.Values.
		Append(s.spreadsheetID, s.sheetName+"!A1:H1", vr).
		ValueInputOption("RAW").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}

// ParseCredentials accepts the service-account JSON as stored in env files,
// where it is often wrapped in quotes with raw newlines and escaped quotes.
func ParseCredentials(raw string) ([]byte, error) {
	if json.Valid([]byte(raw)) {
		return []byte(raw), nil
	}

	cleaned := strings.TrimSpace(raw)
	if len(cleaned) >= 2 && strings.HasPrefix(cleaned, `"`) && strings.HasSuffix(cleaned, `"`) {
		cleaned = cleaned[1 : len(cleaned)-1]
	}
	cleaned = strings.ReplaceAll(cleaned, "\n", `\n`)
	cleaned = strings.ReplaceAll(cleaned, `\"`, `"`)

	if !json.Valid([]byte(cleaned)) {
		return nil, fmt.Errorf("parse GOOGLE_SHEETS_CREDENTIALS: not valid JSON")
	}
	return []byte(cleaned), nil
}
