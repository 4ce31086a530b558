package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/nextax/nextax/internal/common"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// spreadsheetAPI is the subset of the Sheets API the writer uses.
type spreadsheetAPI interface {
	Get(ctx context.Context, spreadsheetID string) error
	Create(ctx context.Context, title, timeZone, sheetTitle string) (id, url string, err error)
	Clear(ctx context.Context, spreadsheetID, rangeStr string) error
	Update(ctx context.Context, spreadsheetID, rangeStr string, values [][]any) error
	BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error
}

// googleAPI calls the real Sheets service.
type googleAPI struct {
	service *sheets.Service
}

// newGoogleAPI authenticates with a service account key or an OAuth2
// refresh token.
func newGoogleAPI(ctx context.Context, config Config) (*googleAPI, error) {
	var tokenSource oauth2.TokenSource

	if config.ServiceAccountPath != "" {
		jsonKey, err := os.ReadFile(config.ServiceAccountPath)
		if err != nil {
			return nil, fmt.Errorf("unable to read service account key file: %w", err)
		}

		jwtConfig, err := google.JWTConfigFromJSON(jsonKey, sheets.SpreadsheetsScope)
		if err != nil {
			return nil, fmt.Errorf("unable to parse service account key: %w", err)
		}
		tokenSource = jwtConfig.TokenSource(ctx)
	} else {
		oauthConfig := oauthClientConfig(config.ClientID, config.ClientSecret, "")
		token := &oauth2.Token{
			RefreshToken: config.RefreshToken,
			TokenType:    "Bearer",
		}
		tokenSource = oauthConfig.TokenSource(ctx, token)
	}

	httpClient := oauth2.NewClient(ctx, tokenSource)
	srv, err := sheets.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("unable to create sheets service: %w", err)
	}
	return &googleAPI{service: srv}, nil
}

func (g *googleAPI) Get(ctx context.Context, spreadsheetID string) error {
	_, err := g.service.Spreadsheets.Get(spreadsheetID).Context(ctx).Do()
	return classify(err)
}

func (g *googleAPI) Create(ctx context.Context, title, timeZone, sheetTitle string) (string, string, error) {
	spreadsheet := &sheets.Spreadsheet{
		Properties: &sheets.SpreadsheetProperties{
			Title:    title,
			TimeZone: timeZone,
		},
		Sheets: []*sheets.Sheet{
			{Properties: &sheets.SheetProperties{Title: sheetTitle}},
		},
	}

	created, err := g.service.Spreadsheets.Create(spreadsheet).Context(ctx).Do()
	if err != nil {
		return "", "", classify(err)
	}
	return created.SpreadsheetId, created.SpreadsheetUrl, nil
}

func (g *googleAPI) Clear(ctx context.Context, spreadsheetID, rangeStr string) error {
	_, err := g.service.Spreadsheets.Values.Clear(spreadsheetID, rangeStr, &sheets.ClearValuesRequest{}).Context(ctx).Do()
	return classify(err)
}

func (g *googleAPI) Update(ctx context.Context, spreadsheetID, rangeStr string, values [][]any) error {
	_, err := g.service.Spreadsheets.Values.Update(spreadsheetID, rangeStr, &sheets.ValueRange{Values: values}).
		ValueInputOption("USER_ENTERED").
		Context(ctx).
		Do()
	return classify(err)
}

func (g *googleAPI) BatchUpdate(ctx context.Context, spreadsheetID string, requests []*sheets.Request) error {
	_, err := g.service.Spreadsheets.BatchUpdate(spreadsheetID, &sheets.BatchUpdateSpreadsheetRequest{
		Requests: requests,
	}).Context(ctx).Do()
	return classify(err)
}

// classify marks API errors for the retry loop: 429 is a rate limit, other
// 4xx responses will not succeed on retry.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *googleapi.Error
	if !errors.As(err, &apiErr) {
		return err
	}
	switch {
	case apiErr.Code == http.StatusTooManyRequests:
		return fmt.Errorf("%w: %v", common.ErrRateLimit, err)
	case apiErr.Code >= 400 && apiErr.Code < 500:
		return &common.RetryableError{Err: err, Retryable: false}
	default:
		return err
	}
}
