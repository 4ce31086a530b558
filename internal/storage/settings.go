package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/tax"
)

// GetSetting returns the stored value for key and whether it exists.
func (s *SQLiteStorage) GetSetting(ctx context.Context, key string) (string, bool, error) {
	if err := validateContext(ctx); err != nil {
		return "", false, err
	}
	if err := validateString(key, "key"); err != nil {
		return "", false, err
	}
	return getSetting(ctx, s.db, key)
}

func getSetting(ctx context.Context, q queryable, key string) (string, bool, error) {
	var value string
	err := q.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to get setting %s: %w", key, err)
	}
	return value, true, nil
}

// SetSetting upserts a setting.
func (s *SQLiteStorage) SetSetting(ctx context.Context, key, value string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(key, "key"); err != nil {
		return err
	}
	if err := setSetting(ctx, s.db, key, value); err != nil {
		return err
	}
	slog.Info("Saved setting", "key", key)
	return nil
}

func setSetting(ctx context.Context, q queryable, key, value string) error {
	_, err := q.ExecContext(ctx, `
		INSERT INTO settings (key, value, updated_at)
		VALUES (?, ?, strftime('%s', 'now'))
		ON CONFLICT(key) DO UPDATE SET
			value = excluded.value,
			updated_at = excluded.updated_at`,
		key, value)
	if err != nil {
		return fmt.Errorf("failed to set setting %s: %w", key, err)
	}
	return nil
}

// GetAllSettings returns every stored setting.
func (s *SQLiteStorage) GetAllSettings(ctx context.Context) (map[string]string, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM settings ORDER BY key`)
	if err != nil {
		return nil, fmt.Errorf("failed to query settings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	settings := make(map[string]string)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan setting: %w", err)
		}
		settings[key] = value
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating settings: %w", err)
	}

	slog.Debug("retrieved settings", "count", len(settings))
	return settings, nil
}

// GetBusinessProfile assembles the business profile from settings.
// Missing or unparsable dates are left zero.
func (s *SQLiteStorage) GetBusinessProfile(ctx context.Context) (*model.BusinessProfile, error) {
	settings, err := s.GetAllSettings(ctx)
	if err != nil {
		return nil, err
	}

	profile := &model.BusinessProfile{
		BusinessName: settings[model.SettingBusinessName],
		TaxID:        settings[model.SettingTaxID],
		TaxType:      tax.DefaultRegime,
	}
	if regime, parseErr := tax.ParseRegime(settings[model.SettingTaxType]); parseErr == nil {
		profile.TaxType = regime
	}
	if d, parseErr := time.Parse(model.DateLayout, settings[model.SettingAccountingPeriodStart]); parseErr == nil {
		profile.PeriodStart = d
	}
	if d, parseErr := time.Parse(model.DateLayout, settings[model.SettingAccountingPeriodEnd]); parseErr == nil {
		profile.PeriodEnd = d
	}
	return profile, nil
}

// SaveBusinessProfile validates and stores the profile, clearing the first-run flag.
func (s *SQLiteStorage) SaveBusinessProfile(ctx context.Context, profile model.BusinessProfile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := profile.Validate(); err != nil {
		return err
	}

	values := []struct{ key, value string }{
		{model.SettingBusinessName, profile.BusinessName},
		{model.SettingTaxID, model.NormalizeTaxID(profile.TaxID)},
		{model.SettingTaxType, string(profile.TaxType)},
		{model.SettingAccountingPeriodStart, profile.PeriodStart.Format(model.DateLayout)},
		{model.SettingAccountingPeriodEnd, profile.PeriodEnd.Format(model.DateLayout)},
		{model.SettingFirstRun, strconv.FormatBool(false)},
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		for _, v := range values {
			if err := setSetting(ctx, tx, v.key, v.value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to save business profile: %w", err)
	}

	slog.Info("Saved business profile", "business", profile.BusinessName, "tax_type", profile.TaxType)
	return nil
}

// ResetSettings restores every setting to its default and marks the app as first-run.
func (s *SQLiteStorage) ResetSettings(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM settings`); err != nil {
			return fmt.Errorf("failed to clear settings: %w", err)
		}
		for key, value := range defaultSettings {
			if err := setSetting(ctx, tx, key, value); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to reset settings: %w", err)
	}

	slog.Info("Reset settings to defaults")
	return nil
}

// GetTaxRegime returns the configured tax regime, defaulting to personal.
func (s *SQLiteStorage) GetTaxRegime(ctx context.Context) (tax.Regime, error) {
	value, ok, err := s.GetSetting(ctx, model.SettingTaxType)
	if err != nil {
		return "", err
	}
	if !ok || value == "" {
		return tax.DefaultRegime, nil
	}
	regime, err := tax.ParseRegime(value)
	if err != nil {
		slog.Warn("Stored tax type is invalid, using default", "value", value)
		return tax.DefaultRegime, nil
	}
	return regime, nil
}

// IsFirstRun reports whether setup has not been completed yet.
func (s *SQLiteStorage) IsFirstRun(ctx context.Context) (bool, error) {
	value, ok, err := s.GetSetting(ctx, model.SettingFirstRun)
	if err != nil {
		return false, err
	}
	if !ok {
		return true, nil
	}
	firstRun, parseErr := strconv.ParseBool(value)
	if parseErr != nil {
		return true, nil
	}
	return firstRun, nil
}
