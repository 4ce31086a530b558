package sheets

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nextax/nextax/internal/common"
	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/money"
	"github.com/nextax/nextax/internal/report"
	"github.com/nextax/nextax/internal/service"
	"github.com/shopspring/decimal"
	"google.golang.org/api/sheets/v4"
)

// reportSheetTitle names the tab created in new spreadsheets.
const reportSheetTitle = "Report"

// Writer implements the ReportWriter interface for Google Sheets.
type Writer struct {
	api    spreadsheetAPI
	logger *slog.Logger
	config Config
}

// NewWriter creates a new Google Sheets report writer.
func NewWriter(ctx context.Context, config Config, logger *slog.Logger) (*Writer, error) {
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	api, err := newGoogleAPI(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}

	return newWriterWithAPI(config, api, logger), nil
}

func newWriterWithAPI(config Config, api spreadsheetAPI, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Writer{
		config: config,
		api:    api,
		logger: logger,
	}
}

// Write implements the ReportWriter interface.
func (w *Writer) Write(ctx context.Context, rpt *report.Report) error {
	if rpt == nil {
		return fmt.Errorf("%w: nil report", report.ErrExportFailed)
	}

	w.logger.Info("starting report export",
		"year", rpt.Year,
		"transactions", len(rpt.Transactions))

	retryOpts := service.RetryOptions{
		MaxAttempts:  w.config.RetryAttempts,
		InitialDelay: w.config.RetryDelay,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	var spreadsheetID string
	err := common.WithRetry(ctx, func() error {
		id, getErr := w.getOrCreateSpreadsheet(ctx)
		spreadsheetID = id
		return getErr
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to get spreadsheet: %w", err)
	}

	if clearErr := common.WithRetry(ctx, func() error {
		return w.api.Clear(ctx, spreadsheetID, "A:Z")
	}, retryOpts); clearErr != nil {
		return fmt.Errorf("failed to clear sheet: %w", clearErr)
	}

	values := reportValues(rpt)

	err = common.WithRetry(ctx, func() error {
		return w.writeData(ctx, spreadsheetID, values)
	}, retryOpts)
	if err != nil {
		return fmt.Errorf("failed to write data: %w", err)
	}

	if w.config.EnableFormatting {
		err = common.WithRetry(ctx, func() error {
			return w.api.BatchUpdate(ctx, spreadsheetID, formattingRequests(len(values)))
		}, retryOpts)
		if err != nil {
			// Formatting is cosmetic; the data is already written.
			w.logger.Warn("failed to apply formatting", "error", err)
		}
	}

	w.logger.Info("report export completed",
		"spreadsheet_id", spreadsheetID,
		"rows_written", len(values))

	return nil
}

// getOrCreateSpreadsheet gets an existing spreadsheet or creates a new one.
func (w *Writer) getOrCreateSpreadsheet(ctx context.Context) (string, error) {
	if w.config.SpreadsheetID != "" {
		if err := w.api.Get(ctx, w.config.SpreadsheetID); err != nil {
			return "", fmt.Errorf("unable to access spreadsheet %s: %w", w.config.SpreadsheetID, err)
		}
		return w.config.SpreadsheetID, nil
	}

	id, url, err := w.api.Create(ctx, w.config.SpreadsheetName, w.config.TimeZone, reportSheetTitle)
	if err != nil {
		return "", fmt.Errorf("unable to create spreadsheet: %w", err)
	}

	w.logger.Info("created new spreadsheet", "id", id, "url", url)
	// Later retries and exports reuse the same spreadsheet.
	w.config.SpreadsheetID = id
	return id, nil
}

// writeData writes the data in batches to avoid API limits.
func (w *Writer) writeData(ctx context.Context, spreadsheetID string, values [][]any) error {
	for i := 0; i < len(values); i += w.config.BatchSize {
		end := min(i+w.config.BatchSize, len(values))
		batch := values[i:end]

		rangeStr := fmt.Sprintf("A%d", i+1)
		if err := w.api.Update(ctx, spreadsheetID, rangeStr, batch); err != nil {
			return fmt.Errorf("failed to write batch starting at row %d: %w", i+1, err)
		}

		w.logger.Debug("wrote batch", "start_row", i+1, "rows", len(batch))
	}
	return nil
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// reportValues lays the report out as rows of cells.
func reportValues(rpt *report.Report) [][]any {
	estimatedRows := 40 + len(rpt.Tax.Details) + len(rpt.Categories) + len(rpt.Transactions)
	values := make([][]any, 0, estimatedRows)

	title := "NexTax Annual Report"
	if rpt.BusinessName != "" {
		title = rpt.BusinessName
	}

	values = append(values,
		[]any{title, fmt.Sprintf("%d (พ.ศ. %d)", rpt.Year, rpt.BuddhistYear())},
		[]any{"Tax type", rpt.Regime.Label()},
		[]any{},
		[]any{"Summary"},
		[]any{"Total Income", amount(rpt.TotalIncome)},
		[]any{"Total Expense", amount(rpt.TotalExpense)},
		[]any{"Net Profit", amount(rpt.NetProfit)},
		[]any{"Taxable Income", amount(rpt.TaxableIncome)},
		[]any{"Estimated Tax", amount(rpt.Tax.TotalTax)},
		[]any{"Effective Rate", money.Percent(rpt.EffectiveRate().Round(4))},
		[]any{},
		[]any{"Tax Breakdown"},
		[]any{"Range", "Rate", "Taxable Amount", "Tax"},
	)
	for _, d := range rpt.Tax.Details {
		values = append(values, []any{d.RangeLabel, d.RateLabel, amount(d.TaxableAmount), amount(d.TaxInBracket)})
	}

	values = append(values,
		[]any{},
		[]any{"Monthly"},
		[]any{"Month", "Income", "Expense", "Profit"},
	)
	for _, m := range rpt.Monthly {
		values = append(values, []any{report.ThaiMonth(m.Month), amount(m.Income), amount(m.Expense), amount(m.Profit)})
	}

	values = append(values,
		[]any{},
		[]any{"Categories"},
		[]any{"Category", "Type", "Count", "Total", "Share"},
	)
	for _, c := range rpt.Categories {
		values = append(values, []any{
			c.Name,
			string(c.Type),
			strconv.Itoa(c.Count),
			amount(c.Total),
			c.Percent.StringFixed(1) + "%",
		})
	}

	values = append(values,
		[]any{},
		[]any{"VAT"},
		[]any{"Output VAT", amount(rpt.VAT.Output)},
		[]any{"Input VAT", amount(rpt.VAT.Input)},
		[]any{"Net VAT", amount(rpt.VAT.Net), string(rpt.VAT.Status)},
		[]any{},
		[]any{"Transactions"},
		stringsToCells(report.CSVHeader),
	)
	for _, t := range rpt.Transactions {
		values = append(values, []any{
			t.Date.Format(model.DateLayout),
			t.Description,
			t.CategoryName,
			string(t.Type),
			amount(t.Amount),
			string(t.VATType),
			amount(t.VATAmount),
			amount(t.TotalWithVAT),
			t.Notes,
		})
	}

	return values
}

func stringsToCells(in []string) []any {
	out := make([]any, len(in))
	for i, s := range in {
		out[i] = s
	}
	return out
}

// formattingRequests styles the title, section labels and amount columns.
func formattingRequests(totalRows int) []*sheets.Request {
	return []*sheets.Request{
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    0,
					EndRowIndex:      1,
					StartColumnIndex: 0,
					EndColumnIndex:   2,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{
							Bold:     true,
							FontSize: 16,
						},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    1,
					EndRowIndex:      int64(totalRows),
					StartColumnIndex: 0,
					EndColumnIndex:   1,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						TextFormat: &sheets.TextFormat{Bold: true},
					},
				},
				Fields: "userEnteredFormat.textFormat",
			},
		},
		{
			RepeatCell: &sheets.RepeatCellRequest{
				Range: &sheets.GridRange{
					SheetId:          0,
					StartRowIndex:    0,
					EndRowIndex:      int64(totalRows),
					StartColumnIndex: 1,
					EndColumnIndex:   8,
				},
				Cell: &sheets.CellData{
					UserEnteredFormat: &sheets.CellFormat{
						NumberFormat: &sheets.NumberFormat{
							Type:    "NUMBER",
							Pattern: "฿#,##0.00",
						},
					},
				},
				Fields: "userEnteredFormat.numberFormat",
			},
		},
		{
			AutoResizeDimensions: &sheets.AutoResizeDimensionsRequest{
				Dimensions: &sheets.DimensionRange{
					SheetId:    0,
					Dimension:  "COLUMNS",
					StartIndex: 0,
					EndIndex:   9,
				},
			},
		},
	}
}
