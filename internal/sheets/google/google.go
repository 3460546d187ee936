package google

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"tempo/internal/core"

	ports "tempo/internal/sheets"

	"golang.org/x/oauth2"
	gauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	entriesSheet  string
}

// Ensure interface conformance
var _ ports.EntryWriter = (*Client)(nil)

// NewFromEnv creates a Sheets client using environment variables.
// Required: GOOGLE_SPREADSHEET_ID
// Optional: GOOGLE_SHEET_NAME (default "Activities").
// Auth, in order of preference: service-account credentials
// (GOOGLE_SERVICE_ACCOUNT_JSON / GOOGLE_SERVICE_ACCOUNT_FILE /
// GOOGLE_APPLICATION_CREDENTIALS), or an OAuth client plus the token saved
// by oauth-init (GOOGLE_OAUTH_CLIENT_JSON / GOOGLE_OAUTH_CLIENT_FILE with
// GOOGLE_OAUTH_TOKEN_JSON / GOOGLE_OAUTH_TOKEN_FILE).
func NewFromEnv(ctx context.Context) (*Client, error) {
	spreadsheetID := strings.TrimSpace(os.Getenv("GOOGLE_SPREADSHEET_ID"))
	if spreadsheetID == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}

	sheetName := strings.TrimSpace(os.Getenv("GOOGLE_SHEET_NAME"))
	if sheetName == "" {
		sheetName = "Activities"
	}

	svc, err := newSheetsService(ctx)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}

	return &Client{
		svc:           svc,
		spreadsheetID: spreadsheetID,
		entriesSheet:  sheetName,
	}, nil
}

// newSheetsService initializes the Sheets API client. Service-account
// credentials win when present; otherwise the OAuth client/token pair
// written by oauth-init is used.
func newSheetsService(ctx context.Context) (*gsheet.Service, error) {
	creds, err := envJSON("GOOGLE_SERVICE_ACCOUNT_JSON",
		"GOOGLE_SERVICE_ACCOUNT_FILE", "GOOGLE_APPLICATION_CREDENTIALS")
	if err != nil {
		return nil, err
	}

	if creds != nil {
		service, err := gsheet.NewService(ctx,
			goption.WithCredentialsJSON(creds),
			goption.WithScopes(gsheet.SpreadsheetsScope))
		if err != nil {
			return nil, fmt.Errorf("create sheets service: %w", err)
		}
		slog.InfoContext(ctx, "Google Sheets service created", "auth", "service_account")
		return service, nil
	}

	httpClient, err := oauthHTTPClient(ctx)
	if err != nil {
		return nil, err
	}

	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(httpClient))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created", "auth", "oauth")
	return service, nil
}

// oauthHTTPClient assembles an authorized HTTP client from the OAuth client
// JSON and the token saved by oauth-init. The token auto-refreshes through
// its refresh token, so one oauth-init run lasts until access is revoked.
func oauthHTTPClient(ctx context.Context) (*http.Client, error) {
	clientJSON, err := envJSON("GOOGLE_OAUTH_CLIENT_JSON", "GOOGLE_OAUTH_CLIENT_FILE")
	if err != nil {
		return nil, err
	}
	if clientJSON == nil {
		return nil, errors.New("missing sheets credentials (set GOOGLE_SERVICE_ACCOUNT_JSON/FILE, GOOGLE_APPLICATION_CREDENTIALS, or GOOGLE_OAUTH_CLIENT_JSON/FILE)")
	}

	cfg, err := gauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}

	tokenJSON, err := envJSON("GOOGLE_OAUTH_TOKEN_JSON", "GOOGLE_OAUTH_TOKEN_FILE")
	if err != nil {
		return nil, err
	}
	if tokenJSON == nil {
		return nil, errors.New("missing oauth token (set GOOGLE_OAUTH_TOKEN_JSON or GOOGLE_OAUTH_TOKEN_FILE; oauth-init creates one)")
	}

	var token oauth2.Token
	if err := json.Unmarshal(tokenJSON, &token); err != nil {
		return nil, fmt.Errorf("parse oauth token: %w", err)
	}

	return cfg.Client(ctx, &token), nil
}

// envJSON resolves a credential that can arrive inline (first variable) or
// as a file path (remaining variables). Returns nil when nothing is set.
func envJSON(inlineVar string, fileVars ...string) ([]byte, error) {
	if v := strings.TrimSpace(os.Getenv(inlineVar)); v != "" {
		return []byte(v), nil
	}
	for _, fileVar := range fileVars {
		path := strings.TrimSpace(os.Getenv(fileVar))
		if path == "" {
			continue
		}
		raw, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", fileVar, err)
		}
		return raw, nil
	}
	return nil, nil
}

// Append adds one entry row to the bottom of the entries sheet and returns
// the updated range as the row reference.
func (c *Client) Append(ctx context.Context, e core.Entry, day core.Date) (string, error) {
	if err := e.Validate(); err != nil {
		return "", fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return "", errors.New("sheets service not initialized")
	}

	rng := fmt.Sprintf("%s!A:F", c.entriesSheet)
	vr := &gsheet.ValueRange{Values: [][]any{entryRow(e, day)}}

	resp, err := c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").
		InsertDataOption("INSERT_ROWS").
		Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("append to sheet %s: %w", c.entriesSheet, err)
	}

	ref := rng
	if resp.Updates != nil && resp.Updates.UpdatedRange != "" {
		ref = resp.Updates.UpdatedRange
	}

	return ref, nil
}

// entryRow renders an entry as the sheet columns
// [user, activity, minutes, timestamp, note, day].
func entryRow(e core.Entry, day core.Date) []any {
	return []any{
		e.UserID,
		e.Activity,
		e.Minutes,
		e.At.UTC().Format(time.RFC3339),
		e.Note,
		day.String(),
	}
}
