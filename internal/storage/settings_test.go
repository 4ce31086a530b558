package storage

import (
	"context"
	"testing"

	"github.com/nextax/nextax/internal/model"
	"github.com/nextax/nextax/internal/tax"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSettings_GetSet(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	value, ok, err := store.GetSetting(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Empty(t, value)

	require.NoError(t, store.SetSetting(ctx, model.SettingBusinessName, "ร้านกาแฟ"))
	require.NoError(t, store.SetSetting(ctx, model.SettingBusinessName, "ร้านกาแฟดี"))

	value, ok, err = store.GetSetting(ctx, model.SettingBusinessName)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "ร้านกาแฟดี", value)

	assert.ErrorIs(t, store.SetSetting(ctx, "", "x"), ErrEmptyString)
}

func TestSettings_BusinessProfile(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	start, end := model.CalendarYearPeriod(2024)
	profile := model.BusinessProfile{
		BusinessName: "Siam Trading",
		TaxID:        "1-2345-67890-12-3",
		TaxType:      tax.RegimeSME,
		PeriodStart:  start,
		PeriodEnd:    end,
	}
	require.NoError(t, store.SaveBusinessProfile(ctx, profile))

	got, err := store.GetBusinessProfile(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Siam Trading", got.BusinessName)
	assert.Equal(t, "1234567890123", got.TaxID)
	assert.Equal(t, tax.RegimeSME, got.TaxType)
	assert.True(t, got.PeriodStart.Equal(start))
	assert.True(t, got.PeriodEnd.Equal(end))

	firstRun, err := store.IsFirstRun(ctx)
	require.NoError(t, err)
	assert.False(t, firstRun)

	regime, err := store.GetTaxRegime(ctx)
	require.NoError(t, err)
	assert.Equal(t, tax.RegimeSME, regime)
}

func TestSettings_SaveInvalidProfileWritesNothing(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	err := store.SaveBusinessProfile(ctx, model.BusinessProfile{
		BusinessName: "",
		TaxID:        "123",
		TaxType:      "corporate",
	})
	require.ErrorIs(t, err, model.ErrInvalidProfile)

	firstRun, err := store.IsFirstRun(ctx)
	require.NoError(t, err)
	assert.True(t, firstRun)
}

func TestSettings_Reset(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	start, end := model.CalendarYearPeriod(2025)
	require.NoError(t, store.SaveBusinessProfile(ctx, model.BusinessProfile{
		BusinessName: "Shop",
		TaxType:      tax.RegimeSME,
		PeriodStart:  start,
		PeriodEnd:    end,
	}))
	require.NoError(t, store.SetSetting(ctx, "custom", "value"))

	require.NoError(t, store.ResetSettings(ctx))

	firstRun, err := store.IsFirstRun(ctx)
	require.NoError(t, err)
	assert.True(t, firstRun)

	regime, err := store.GetTaxRegime(ctx)
	require.NoError(t, err)
	assert.Equal(t, tax.RegimePersonal, regime)

	_, ok, err := store.GetSetting(ctx, "custom")
	require.NoError(t, err)
	assert.False(t, ok)

	all, err := store.GetAllSettings(ctx)
	require.NoError(t, err)
	assert.Len(t, all, len(defaultSettings))
}

func TestSettings_TaxRegimeFallsBack(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.SetSetting(ctx, model.SettingTaxType, "bogus"))
	regime, err := store.GetTaxRegime(ctx)
	require.NoError(t, err)
	assert.Equal(t, tax.DefaultRegime, regime)
}
