package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedYear(env *testEnv) {
	env.run("setup", "--business-name", "ร้านกาแฟดี", "--year", "2025")
	env.run("tx", "add", "--type", "income", "--amount", "600000", "--date", "2025-01-15", "--description", "ขายกาแฟ", "--category", "1")
	env.run("tx", "add", "--amount", "100000", "--vat", "exclusive", "--date", "2025-03-01", "--description", "ค่าเช่าร้าน", "--category", "5")
	env.run("tx", "add", "--type", "income", "--amount", "99999", "--date", "2024-12-31", "--description", "last year")
}

func TestReportCmd(t *testing.T) {
	env := newTestEnv(t)
	seedYear(env)

	out := env.run("report", "--year", "2025")
	assert.Contains(t, out, "พ.ศ. 2568 (2025)")
	assert.Contains(t, out, "ร้านกาแฟดี")
	assert.Contains(t, out, "฿600,000.00")
	assert.Contains(t, out, "฿500,000.00")
	assert.Contains(t, out, "฿27,500.00")
	assert.Contains(t, out, "มีนาคม")
	assert.Contains(t, out, "ขอคืน")
	assert.NotContains(t, out, "฿99,999.00")
}

func TestReportCmd_FollowsTaxType(t *testing.T) {
	env := newTestEnv(t)
	seedYear(env)
	env.run("settings", "set", "tax_type", "sme")

	out := env.run("report", "--year", "2025")
	// (500,000 - 300,000) * 15%
	assert.Contains(t, out, "฿30,000.00")
}

func TestReportCmd_CSV(t *testing.T) {
	env := newTestEnv(t)
	seedYear(env)

	outDir := filepath.Join(env.dir, "exports")
	require.NoError(t, os.MkdirAll(outDir, 0750))

	out := env.run("report", "--year", "2025", "--csv", outDir)
	assert.Contains(t, out, "Exported CSV to")

	files, err := filepath.Glob(filepath.Join(outDir, "nexttax_report_*.csv"))
	require.NoError(t, err)
	require.Len(t, files, 1)

	content, err := os.ReadFile(files[0])
	require.NoError(t, err)
	text := string(content)
	assert.True(t, strings.HasPrefix(text, "\uFEFF"))
	assert.Contains(t, text, "ขายกาแฟ")
	assert.Contains(t, text, "107000.00")
	assert.NotContains(t, text, "last year")

	named := filepath.Join(env.dir, "named.csv")
	env.run("report", "--year", "2025", "--csv", named)
	_, err = os.Stat(named)
	assert.NoError(t, err)
}

func TestReportCmd_RejectsStrayArguments(t *testing.T) {
	env := newTestEnv(t)
	seedYear(env)

	_, err := env.runWithInput("", "report", "--year", "2025", "stray.csv")
	assert.ErrorContains(t, err, "unknown command")

	_, err = env.runWithInput("", "summary", "extra")
	assert.ErrorContains(t, err, "unknown command")
}

func TestReportCmd_CSVEmptyYear(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runWithInput("", "report", "--year", "2030", "--csv", env.dir)
	assert.ErrorContains(t, err, "no transactions to export")
}

func TestReportCmd_ExportWithoutSheetsConfig(t *testing.T) {
	env := newTestEnv(t)
	for _, key := range []string{"GOOGLE_SHEETS_CLIENT_ID", "GOOGLE_SHEETS_CLIENT_SECRET", "GOOGLE_SHEETS_REFRESH_TOKEN", "GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH"} {
		t.Setenv(key, "")
	}

	_, err := env.runWithInput("", "report", "--year", "2025", "--export")
	assert.ErrorContains(t, err, "not configured")
}

func TestSummaryCmd(t *testing.T) {
	env := newTestEnv(t)
	seedYear(env)

	out := env.run("summary")
	assert.Contains(t, out, "2025-01-01 to 2025-12-31")
	assert.Contains(t, out, "฿600,000.00")
	assert.Contains(t, out, "฿100,000.00")
	assert.Contains(t, out, "2 transactions")

	out = env.run("summary", "--from", "2024-12-01", "--to", "2025-01-31")
	assert.Contains(t, out, "฿699,999.00")
	assert.Contains(t, out, "2 transactions")

	_, err := env.runWithInput("", "summary", "--from", "2025-02-01", "--to", "2025-01-01")
	assert.Error(t, err)
}
