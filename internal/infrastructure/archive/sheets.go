package archive

import (
	"context"
	"fmt"
	"time"

	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/wms/backend/internal/domain/report"
)

// SheetsRange is where report rows are appended
const SheetsRange = "DailyReports!A:K"

// SheetsArchive appends one row per report to a Google spreadsheet
type SheetsArchive struct {
	service       *sheetsapi.Service
	spreadsheetID string
}

// NewSheetsArchive authenticates with a service account credentials file
func NewSheetsArchive(ctx context.Context, credentialsFile, spreadsheetID string, opts ...option.ClientOption) (*SheetsArchive, error) {
	if credentialsFile != "" {
		opts = append(opts,
			option.WithCredentialsFile(credentialsFile),
			option.WithScopes(sheetsapi.SpreadsheetsScope),
		)
	}
	srv, err := sheetsapi.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return &SheetsArchive{service: srv, spreadsheetID: spreadsheetID}, nil
}

// Save appends the report as a row
func (a *SheetsArchive) Save(ctx context.Context, r report.DailyReport) error {
	vr := &sheetsapi.ValueRange{Values: [][]interface{}{reportRow(r)}}
	_, err := a.service.Spreadsheets.Values.Append(a.spreadsheetID, SheetsRange, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("append report row: %w", err)
	}
	return nil
}

func reportRow(r report.DailyReport) []interface{} {
	return []interface{}{
		r.Date.UTC().Format(time.DateOnly),
		r.ParcelsRegistered,
		r.ParcelSales.StringFixed(2),
		r.ParcelPaid.StringFixed(2),
		r.Dispatches,
		r.CODCollected.StringFixed(2),
		r.DepositsBanked.StringFixed(2),
		r.ApprovedExpenses.StringFixed(2),
		r.OutstandingBranchDebt.StringFixed(2),
		r.NetCash().StringFixed(2),
		r.GeneratedAt.UTC().Format(time.RFC3339),
	}
}

var _ report.Archive = (*SheetsArchive)(nil)
