package qalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"kb-assistant-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

func sampleEntry() Entry {
	return Entry{
		ID:             "9b2f0c1e-7c55-4a4e-9d1f-2d4c1a0b7e11",
		Timestamp:      time.Date(2026, 1, 3, 7, 8, 13, 0, time.UTC),
		RequesterID:    10686206,
		RequesterName:  "山田",
		RoomID:         12345,
		Question:       "前受金について教えて",
		Answer:         "前受金は負債です",
		ProcessingTime: 2345 * time.Millisecond,
		PromptTokens:   1234,
		CitedIDs:       []string{"rule_296_26", "jm_117_381"},
		Mode:           "grounded",
	}
}

func TestEntryRow(t *testing.T) {
	row := sampleEntry().Row()

	require.Len(t, row, 8)
	assert.Equal(t, "2026-01-03 16:08:13", row[0])
	assert.Equal(t, "山田 (10686206)", row[1])
	assert.Equal(t, 2.34, row[4])
	assert.Equal(t, 1234, row[5])
	assert.Equal(t, "rule_296_26, jm_117_381", row[6])
	assert.Equal(t, "", row[7])
}

func TestEntryRowWithoutNameOrTokens(t *testing.T) {
	e := sampleEntry()
	e.RequesterName = ""
	e.PromptTokens = 0
	e.Error = "gemini generate: timeout"

	row := e.Row()
	assert.Equal(t, "10686206", row[1])
	assert.Equal(t, "", row[5])
	assert.Equal(t, "gemini generate: timeout", row[7])
}

func TestParseCredentials(t *testing.T) {
	valid := `{"type":"service_account","private_key":"-----BEGIN\nKEY\n-----END"}`
	got, err := ParseCredentials(valid)
	require.NoError(t, err)
	assert.JSONEq(t, valid, string(got))

	mangled := "\"{\\\"type\\\":\\\"service_account\\\",\\\"private_key\\\":\\\"-----BEGIN\nKEY\n-----END\\\"}\""
	got, err = ParseCredentials(mangled)
	require.NoError(t, err)

	var parsed map[string]string
	require.NoError(t, json.Unmarshal(got, &parsed))
	assert.Equal(t, "service_account", parsed["type"])
	assert.Equal(t, "-----BEGIN\nKEY\n-----END", parsed["private_key"])

	_, err = ParseCredentials("not json")
	assert.Error(t, err)
}

func TestNewSheetsSinkRequiresConfig(t *testing.T) {
	_, err := NewSheetsSink(context.Background(), "", "", "シート1")
	require.Error(t, err)
	assert.True(t, apperror.IsConfiguration(err))
	assert.Contains(t, err.Error(), "GOOGLE_SHEETS_CREDENTIALS")
}

func TestSheetsSinkAppendsRow(t *testing.T) {
	var gotValues [][]interface{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.True(t, strings.HasPrefix(r.URL.Path, "/v4/spreadsheets/sheet-id/values/"), r.URL.Path)
		assert.True(t, strings.HasSuffix(r.URL.Path, ":append"), r.URL.Path)
		assert.Equal(t, "RAW", r.URL.Query().Get("valueInputOption"))
		assert.Equal(t, "INSERT_ROWS", r.URL.Query().Get("insertDataOption"))

		var body sheets.ValueRange
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		gotValues = body.Values

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"spreadsheetId":"sheet-id"}`))
	}))
	defer srv.Close()

	svc, err := sheets.NewService(context.Background(),
		option.WithEndpoint(srv.URL+"/"),
		option.WithoutAuthentication(),
		option.WithHTTPClient(srv.Client()),
	)
	require.NoError(t, err)

	sink := NewSheetsSinkWithService(svc, "sheet-id", "シート1")
	require.NoError(t, sink.Write(context.Background(), sampleEntry()))

	require.Len(t, gotValues, 1)
	assert.Equal(t, "2026-01-03 16:08:13", gotValues[0][0])
	assert.Equal(t, "前受金について教えて", gotValues[0][2])
}

type failingSink struct{ name string }

func (f failingSink) Name() string                           { return f.name }
func (f failingSink) Write(ctx context.Context, e Entry) error { return errors.New("boom") }

type countingSink struct{ n int }

func (c *countingSink) Name() string { return "count" }
func (c *countingSink) Write(ctx context.Context, e Entry) error {
	c.n++
	return nil
}

func TestMultiSinkContinuesPastFailure(t *testing.T) {
	counter := &countingSink{}
	m := MultiSink{failingSink{name: "sheets"}, counter}

	err := m.Write(context.Background(), sampleEntry())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sheets: boom")
	assert.Equal(t, 1, counter.n)
	assert.Equal(t, "sheets+count", m.Name())
}

func TestToModel(t *testing.T) {
	e := sampleEntry()
	e.InvalidCitations = nil

	row, err := toModel(e)
	require.NoError(t, err)
	assert.Equal(t, int64(2345), row.ProcessingMs)
	assert.JSONEq(t, `["rule_296_26","jm_117_381"]`, string(row.CitedIDs))
	assert.JSONEq(t, `[]`, string(row.InvalidCitations))
}
