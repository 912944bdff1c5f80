// Package export mirrors created ledger records to an external Google
// Sheet. It is driven by the AMQP event queue so the request path never
// waits on the Sheets API.
package export

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"fintrack/internal/core"
)

// RowWriter appends one record as a spreadsheet row.
type RowWriter interface {
	AppendRow(ctx context.Context, r core.Record) error
}

// SheetsWriter implements RowWriter against the Sheets API.
type SheetsWriter struct {
	svc           *gsheet.Service
	spreadsheetID string
	sheetName     string
}

var _ RowWriter = (*SheetsWriter)(nil)

// NewSheetsWriterFromEnv builds a writer using service-account
// credentials from GOOGLE_SERVICE_ACCOUNT_JSON,
// GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS.
func NewSheetsWriterFromEnv(ctx context.Context, spreadsheetID, sheetName string) (*SheetsWriter, error) {
	if strings.TrimSpace(spreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet ID")
	}
	if strings.TrimSpace(sheetName) == "" {
		sheetName = "Transactions"
	}

	credentialsJSON, err := credentialsFromEnv()
	if err != nil {
		return nil, err
	}

	svc, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}

	return &SheetsWriter{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		sheetName:     sheetName,
	}, nil
}

func credentialsFromEnv() ([]byte, error) {
	if inline := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_JSON")); inline != "" {
		return []byte(inline), nil
	}

	file := strings.TrimSpace(os.Getenv("GOOGLE_SERVICE_ACCOUNT_FILE"))
	if file == "" {
		file = strings.TrimSpace(os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"))
	}
	if file == "" {
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or GOOGLE_APPLICATION_CREDENTIALS)")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return nil, fmt.Errorf("read service account file: %w", err)
	}
	return data, nil
}

// AppendRow appends the record at the bottom of the sheet.
func (w *SheetsWriter) AppendRow(ctx context.Context, r core.Record) error {
	values := &gsheet.ValueRange{
		Values: [][]any{{
			r.OccurredAt.Format("2006-01-02 15:04:05"),
			r.OwnerID,
			string(r.Kind),
			string(r.Category),
			r.Amount.Dollars(),
		}},
	}

	_, err := w.svc.Spreadsheets.Values.
		Append(w.spreadsheetID, w.sheetName+"!A:E", values).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}
	return nil
}
