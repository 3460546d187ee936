package google

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"tempo/internal/core"
)

const testOAuthClientJSON = `{"installed":{"client_id":"test","client_secret":"test","redirect_uris":["http://localhost"],"auth_uri":"https://accounts.google.com/o/oauth2/auth","token_uri":"https://oauth2.googleapis.com/token"}}`

func clearAuthEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"GOOGLE_SERVICE_ACCOUNT_JSON",
		"GOOGLE_SERVICE_ACCOUNT_FILE",
		"GOOGLE_APPLICATION_CREDENTIALS",
		"GOOGLE_OAUTH_CLIENT_JSON",
		"GOOGLE_OAUTH_CLIENT_FILE",
		"GOOGLE_OAUTH_TOKEN_JSON",
		"GOOGLE_OAUTH_TOKEN_FILE",
	} {
		t.Setenv(key, "")
	}
}

func TestNewSheetsService_NoCredentials(t *testing.T) {
	clearAuthEnv(t)

	_, err := newSheetsService(context.Background())
	if err == nil {
		t.Fatal("expected error with no credentials set")
	}
	if !strings.Contains(err.Error(), "missing sheets credentials") {
		t.Errorf("error %q does not name the credential variables", err)
	}
}

func TestNewSheetsService_OAuthClientWithoutToken(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testOAuthClientJSON)

	_, err := newSheetsService(context.Background())
	if err == nil {
		t.Fatal("expected error with oauth client but no token")
	}
	if !strings.Contains(err.Error(), "missing oauth token") {
		t.Errorf("error %q does not point at the token variables", err)
	}
}

func TestOAuthHTTPClient_RejectsMalformedToken(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testOAuthClientJSON)
	t.Setenv("GOOGLE_OAUTH_TOKEN_JSON", "{not json")

	_, err := oauthHTTPClient(context.Background())
	if err == nil {
		t.Fatal("expected error for malformed token JSON")
	}
	if !strings.Contains(err.Error(), "parse oauth token") {
		t.Errorf("error %q, want token parse failure", err)
	}
}

func TestOAuthHTTPClient_ReadsTokenFromFile(t *testing.T) {
	clearAuthEnv(t)

	tokenPath := filepath.Join(t.TempDir(), "token.json")
	tokenJSON := `{"access_token":"abc","token_type":"Bearer","refresh_token":"def"}`
	if err := os.WriteFile(tokenPath, []byte(tokenJSON), 0600); err != nil {
		t.Fatal(err)
	}

	t.Setenv("GOOGLE_OAUTH_CLIENT_JSON", testOAuthClientJSON)
	t.Setenv("GOOGLE_OAUTH_TOKEN_FILE", tokenPath)

	client, err := oauthHTTPClient(context.Background())
	if err != nil {
		t.Fatalf("oauthHTTPClient() error: %v", err)
	}
	if client == nil {
		t.Fatal("expected a non-nil HTTP client")
	}
}

func TestEnvJSON_InlineBeatsFile(t *testing.T) {
	clearAuthEnv(t)
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_JSON", `{"inline":true}`)
	t.Setenv("GOOGLE_SERVICE_ACCOUNT_FILE", "/does/not/exist")

	raw, err := envJSON("GOOGLE_SERVICE_ACCOUNT_JSON", "GOOGLE_SERVICE_ACCOUNT_FILE")
	if err != nil {
		t.Fatalf("envJSON() error: %v", err)
	}
	if string(raw) != `{"inline":true}` {
		t.Errorf("envJSON() = %q, want the inline value", raw)
	}
}

func TestEntryRow(t *testing.T) {
	at := time.Date(2025, 6, 20, 7, 30, 0, 0, time.UTC)
	e := core.Entry{
		ID:       7,
		UserID:   "42",
		Activity: "exercise",
		Minutes:  30,
		Note:     "morning run",
		At:       at,
	}
	day := core.NewDate(2025, 6, 20)

	row := entryRow(e, day)

	if len(row) != 6 {
		t.Fatalf("entryRow() returned %d columns, want 6", len(row))
	}
	if row[0] != "42" {
		t.Errorf("user column = %v, want 42", row[0])
	}
	if row[1] != "exercise" {
		t.Errorf("activity column = %v, want exercise", row[1])
	}
	if row[2] != 30 {
		t.Errorf("minutes column = %v, want 30", row[2])
	}
	if row[3] != "2025-06-20T07:30:00Z" {
		t.Errorf("timestamp column = %v, want 2025-06-20T07:30:00Z", row[3])
	}
	if row[4] != "morning run" {
		t.Errorf("note column = %v, want morning run", row[4])
	}
	if row[5] != "2025-06-20" {
		t.Errorf("day column = %v, want 2025-06-20", row[5])
	}
}

func TestEntryRow_TimestampNormalizedToUTC(t *testing.T) {
	loc := time.FixedZone("CEST", 2*60*60)
	at := time.Date(2025, 6, 20, 9, 30, 0, 0, loc)
	e := core.Entry{UserID: "42", Activity: "reading", Minutes: 60, At: at}

	row := entryRow(e, core.NewDate(2025, 6, 20))

	if row[3] != "2025-06-20T07:30:00Z" {
		t.Errorf("timestamp column = %v, want 2025-06-20T07:30:00Z", row[3])
	}
}
