package config

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/nextax/nextax/internal/sheets"
	"github.com/spf13/viper"
)

// LoadSheetsConfig loads Google Sheets configuration from Viper and environment variables.
// It follows this precedence:
// 1. Viper configuration (from config file or NEXTAX_ env vars)
// 2. Direct environment variables (GOOGLE_SHEETS_*)
// 3. The token file written by 'nextax auth sheets', for the refresh token only
// 4. Default values
func LoadSheetsConfig() (*sheets.Config, error) {
	config := sheets.DefaultConfig()

	config.ServiceAccountPath = viper.GetString("sheets.service_account_path")
	config.ClientID = viper.GetString("sheets.client_id")
	config.ClientSecret = viper.GetString("sheets.client_secret")
	config.RefreshToken = viper.GetString("sheets.refresh_token")
	config.SpreadsheetID = viper.GetString("sheets.spreadsheet_id")
	if v := viper.GetString("sheets.spreadsheet_name"); v != "" {
		config.SpreadsheetName = v
	} else if v := os.Getenv("GOOGLE_SHEETS_SPREADSHEET_NAME"); v != "" {
		config.SpreadsheetName = v
	}
	if v := viper.GetString("sheets.timezone"); v != "" {
		config.TimeZone = v
	}

	config.LoadFromEnv()
	if config.RefreshToken == "" && config.ClientID != "" {
		if token, err := sheets.LoadToken(SheetsTokenPath()); err == nil {
			config.RefreshToken = token.RefreshToken
		} else if !os.IsNotExist(err) {
			slog.Warn("Ignoring unreadable sheets token file", "error", err)
		}
	}
	config.ServiceAccountPath = ExpandPath(config.ServiceAccountPath)

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// SheetsTokenPath is where 'nextax auth sheets' stores the OAuth token, next
// to the database.
func SheetsTokenPath() string {
	return filepath.Join(filepath.Dir(DatabasePath()), "sheets-token.json")
}
