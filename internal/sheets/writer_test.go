package sheets

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/nextax/nextax/internal/common"
	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/report"
	"github.com/nextax/nextax/internal/tax"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/sheets/v4"
)

type fakeAPI struct {
	getErr      error
	updateErrs  []error
	updates     map[string][][]any
	created     []string
	cleared     []string
	batchCalls  int
	updateCalls int
	mu          sync.Mutex
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(map[string][][]any)}
}

func (f *fakeAPI) Get(_ context.Context, _ string) error {
	return f.getErr
}

func (f *fakeAPI) Create(_ context.Context, title, _, _ string) (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, title)
	return "new-sheet", "https://example.invalid/new-sheet", nil
}

func (f *fakeAPI) Clear(_ context.Context, spreadsheetID, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared = append(f.cleared, spreadsheetID)
	return nil
}

func (f *fakeAPI) Update(_ context.Context, _, rangeStr string, values [][]any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updateCalls++
	if len(f.updateErrs) > 0 {
		err := f.updateErrs[0]
		f.updateErrs = f.updateErrs[1:]
		if err != nil {
			return err
		}
	}
	f.updates[rangeStr] = values
	return nil
}

func (f *fakeAPI) BatchUpdate(_ context.Context, _ string, requests []*sheets.Request) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.batchCalls++
	return nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() Config {
	config := DefaultConfig()
	config.ServiceAccountPath = "/unused.json"
	config.RetryDelay = time.Millisecond
	return config
}

func sampleReport(t *testing.T) *report.Report {
	t.Helper()
	date := time.Date(2024, time.March, 3, 0, 0, 0, 0, time.UTC)
	txns := []model.Transaction{
		{Type: model.TypeIncome, Amount: decimal.NewFromInt(600000), Date: date, VATType: model.VATNone, CategoryName: "Sales", Description: "contract"},
		{Type: model.TypeExpense, Amount: decimal.NewFromInt(100000), Date: date, VATType: model.VATExclusive, CategoryName: "Rent"},
	}
	for i := range txns {
		txns[i].ApplyVAT()
	}
	rpt, err := report.Build(2024, tax.RegimePersonal, txns)
	require.NoError(t, err)
	rpt.BusinessName = "Siam Trading"
	return rpt
}

func TestWriter_WriteCreatesSpreadsheet(t *testing.T) {
	api := newFakeAPI()
	w := newWriterWithAPI(testConfig(), api, testLogger())

	require.NoError(t, w.Write(context.Background(), sampleReport(t)))

	assert.Equal(t, []string{DefaultSpreadsheetName}, api.created)
	assert.Equal(t, []string{"new-sheet"}, api.cleared)
	assert.Equal(t, 1, api.batchCalls)

	rows := api.updates["A1"]
	require.NotEmpty(t, rows)
	assert.Equal(t, "Siam Trading", rows[0][0])
	assert.Equal(t, "2024 (พ.ศ. 2567)", rows[0][1])
	assert.Contains(t, rows, []any{"Net Profit", "500000.00"})
	assert.Contains(t, rows, []any{"Estimated Tax", "27500.00"})
	assert.Contains(t, rows, []any{"Net VAT", "-7000.00", "refundable"})
	assert.Contains(t, rows, []any{"150,000 - 300,000", "5%", "150000.00", "7500.00"})

	last := rows[len(rows)-1]
	assert.Equal(t, "2024-03-03", last[0])
	assert.Equal(t, "expense", last[3])
	assert.Equal(t, "107000.00", last[7])
}

func TestWriter_WriteUsesExistingSpreadsheet(t *testing.T) {
	api := newFakeAPI()
	config := testConfig()
	config.SpreadsheetID = "existing"
	config.EnableFormatting = false
	w := newWriterWithAPI(config, api, testLogger())

	require.NoError(t, w.Write(context.Background(), sampleReport(t)))
	assert.Empty(t, api.created)
	assert.Equal(t, []string{"existing"}, api.cleared)
	assert.Zero(t, api.batchCalls)
}

func TestWriter_WriteBatches(t *testing.T) {
	api := newFakeAPI()
	config := testConfig()
	config.BatchSize = 10
	w := newWriterWithAPI(config, api, testLogger())

	rpt := sampleReport(t)
	total := len(reportValues(rpt))
	require.NoError(t, w.Write(context.Background(), rpt))

	assert.Equal(t, (total+9)/10, api.updateCalls)
	assert.Len(t, api.updates["A11"], 10)
}

func TestWriter_WriteRetriesTransientErrors(t *testing.T) {
	api := newFakeAPI()
	api.updateErrs = []error{&googleapi.Error{Code: 503}}
	w := newWriterWithAPI(testConfig(), api, testLogger())

	require.NoError(t, w.Write(context.Background(), sampleReport(t)))
	assert.Equal(t, 2, api.updateCalls)
}

func TestWriter_WriteStopsOnClientErrors(t *testing.T) {
	api := newFakeAPI()
	api.updateErrs = []error{classify(&googleapi.Error{Code: 403})}
	w := newWriterWithAPI(testConfig(), api, testLogger())

	err := w.Write(context.Background(), sampleReport(t))
	require.Error(t, err)
	assert.Equal(t, 1, api.updateCalls)
}

func TestWriter_WriteNilReport(t *testing.T) {
	w := newWriterWithAPI(testConfig(), newFakeAPI(), testLogger())
	assert.ErrorIs(t, w.Write(context.Background(), nil), report.ErrExportFailed)
}

func TestClassify(t *testing.T) {
	assert.NoError(t, classify(nil))

	plain := errors.New("boom")
	assert.Equal(t, plain, classify(plain))

	assert.ErrorIs(t, classify(&googleapi.Error{Code: 429}), common.ErrRateLimit)

	var retryable *common.RetryableError
	require.ErrorAs(t, classify(&googleapi.Error{Code: 404}), &retryable)
	assert.False(t, retryable.Retryable)

	assert.False(t, errors.As(classify(&googleapi.Error{Code: 500}), &retryable))
}

func TestTokenRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "token.json")
	token := &oauth2.Token{AccessToken: "a", RefreshToken: "r", TokenType: "Bearer"}

	require.NoError(t, SaveToken(path, token))
	loaded, err := LoadToken(path)
	require.NoError(t, err)
	assert.Equal(t, "r", loaded.RefreshToken)

	_, err = LoadToken(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
