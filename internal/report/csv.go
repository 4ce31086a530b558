package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/nextax/nextax/internal/model"
)

// utf8BOM lets spreadsheet apps detect UTF-8 so Thai text displays.
const utf8BOM = "\uFEFF"

// CSVHeader is the first row of every transaction export.
var CSVHeader = []string{
	"Date", "Description", "Category", "Type", "Amount",
	"VAT Type", "VAT Amount", "Total", "Notes",
}

// DefaultCSVName returns the export file name used when none is given.
func DefaultCSVName(now time.Time) string {
	return fmt.Sprintf("nexttax_report_%d.csv", now.UnixMilli())
}

// WriteCSV writes transactions as CSV preceded by a UTF-8 byte order mark.
func WriteCSV(w io.Writer, transactions []model.Transaction) error {
	if len(transactions) == 0 {
		return ErrNothingToExport
	}

	if _, err := io.WriteString(w, utf8BOM); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	for _, t := range transactions {
		record := []string{
			t.Date.Format(model.DateLayout),
			t.Description,
			t.CategoryName,
			string(t.Type),
			t.Amount.String(),
			string(t.VATType),
			t.VATAmount.StringFixed(2),
			t.TotalWithVAT.StringFixed(2),
			t.Notes,
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("%w: %v", ErrExportFailed, err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return nil
}

// ExportCSV writes transactions to path, or to DefaultCSVName in dir when
// path is a directory or empty. It returns the file written.
func ExportCSV(path string, transactions []model.Transaction) (string, error) {
	if len(transactions) == 0 {
		return "", ErrNothingToExport
	}

	if path == "" {
		path = DefaultCSVName(time.Now())
	} else if info, err := os.Stat(path); err == nil && info.IsDir() {
		path = filepath.Join(path, DefaultCSVName(time.Now()))
	}

	// #nosec G304 - path is the user's chosen export destination
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrExportFailed, err)
	}

	if err := WriteCSV(f, transactions); err != nil {
		_ = f.Close()
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrExportFailed, err)
	}
	return path, nil
}
