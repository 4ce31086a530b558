package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetupCmd_Flags(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("setup",
		"--business-name", "ร้านกาแฟดี",
		"--tax-id", "0-1055-61234-56-7",
		"--tax-type", "cit",
		"--year", "2025")
	assert.Contains(t, out, "Saved profile for ร้านกาแฟดี")
	assert.Contains(t, out, "2025-01-01 to 2025-12-31")

	assert.Equal(t, "0105561234567\n", env.run("settings", "get", "tax_id"))
	assert.Equal(t, "sme\n", env.run("settings", "get", "tax_type"))
	assert.Equal(t, "false\n", env.run("settings", "get", "first_run"))
}

func TestSetupCmd_CustomPeriod(t *testing.T) {
	env := newTestEnv(t)

	env.run("setup", "--business-name", "Shop", "--period", "custom", "--start", "2025-04-01", "--end", "2026-03-31")
	assert.Equal(t, "2025-04-01\n", env.run("settings", "get", "accounting_period_start"))
	assert.Equal(t, "2026-03-31\n", env.run("settings", "get", "accounting_period_end"))

	_, err := env.runWithInput("", "setup", "--business-name", "Shop", "--period", "custom", "--start", "2025-04-01")
	assert.ErrorContains(t, err, "--start and --end")

	_, err = env.runWithInput("", "setup", "--business-name", "Shop", "--period", "custom", "--start", "2025-04-01", "--end", "2025-01-01")
	assert.ErrorContains(t, err, "end must be after start")
}

func TestSetupCmd_RejectsBadTaxID(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.runWithInput("", "setup", "--business-name", "Shop", "--tax-id", "12345")
	assert.ErrorContains(t, err, "13 digits")
}

func TestSetupCmd_Interactive(t *testing.T) {
	env := newTestEnv(t)

	out, err := env.runWithInput("ร้านกาแฟดี\n0105561234567\nsme\n\n2025\n", "setup")
	require.NoError(t, err)
	assert.Contains(t, out, "Business name")
	assert.Contains(t, out, "Saved profile for ร้านกาแฟดี")

	assert.Equal(t, "sme\n", env.run("settings", "get", "tax_type"))
	assert.Equal(t, "2025-01-01\n", env.run("settings", "get", "accounting_period_start"))
}

func TestSettingsCmd(t *testing.T) {
	env := newTestEnv(t)

	out := env.run("settings", "show")
	assert.Contains(t, out, "nextax setup")
	assert.Contains(t, out, "tax_type")
	assert.Contains(t, out, env.dbPath)

	assert.Contains(t, env.run("settings", "set", "tax_type", "CIT"), "tax_type = sme")
	assert.Equal(t, "sme\n", env.run("settings", "get", "tax_type"))

	_, err := env.runWithInput("", "settings", "set", "tax_type", "corporate")
	assert.Error(t, err)
	_, err = env.runWithInput("", "settings", "set", "accounting_period_start", "01/01/2025")
	assert.Error(t, err)
	_, err = env.runWithInput("", "settings", "get", "missing_key")
	assert.ErrorContains(t, err, "not set")
}

func TestSettingsResetCmd(t *testing.T) {
	env := newTestEnv(t)
	env.run("setup", "--business-name", "Shop", "--tax-type", "sme")

	out, err := env.runWithInput("n\n", "settings", "reset")
	require.NoError(t, err)
	assert.Contains(t, out, "Reset cancelled.")
	assert.Equal(t, "Shop\n", env.run("settings", "get", "business_name"))

	assert.Contains(t, env.run("settings", "reset", "--force"), "restored to defaults")
	assert.Equal(t, "\n", env.run("settings", "get", "business_name"))
	assert.Equal(t, "personal\n", env.run("settings", "get", "tax_type"))
	assert.Equal(t, "true\n", env.run("settings", "get", "first_run"))

	backups, err := filepath.Glob(filepath.Join(filepath.Dir(env.dbPath), "backups", "auto-reset-*.db"))
	require.NoError(t, err)
	assert.Len(t, backups, 1)
}

func TestReceiptsCmd(t *testing.T) {
	env := newTestEnv(t)

	assert.Equal(t, filepath.Join(filepath.Dir(env.dbPath), "Receipts")+"\n", env.run("receipts", "path"))
	_, err := os.Stat(filepath.Join(filepath.Dir(env.dbPath), "Receipts"))
	require.NoError(t, err)

	png := env.writeFile("scan.PNG", "png-bytes")
	assert.Contains(t, env.run("receipts", "validate", png), "(9 bytes)")

	txt := env.writeFile("notes.txt", "hello")
	_, err = env.runWithInput("", "receipts", "validate", txt)
	assert.Error(t, err)
}
