package kintone

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"kb-assistant-be/internal/pkg/apperror"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func fakeRecords(from, n int) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, map[string]interface{}{
			"$id": map[string]string{"type": "__ID__", "value": fmt.Sprint(from + i)},
		})
	}
	return out
}

func TestGetAllRecordsPaginates(t *testing.T) {
	var mu sync.Mutex
	var queries []string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/k/v1/records.json", r.URL.Path)
		assert.Equal(t, "secret", r.Header.Get("X-Cybozu-API-Token"))
		assert.Equal(t, "117", r.URL.Query().Get("app"))

		q := r.URL.Query().Get("query")
		mu.Lock()
		queries = append(queries, q)
		mu.Unlock()

		switch {
		case strings.HasSuffix(q, "offset 0"):
			writeJSON(w, map[string]interface{}{"records": fakeRecords(1, PageSize)})
		case strings.HasSuffix(q, "offset 100"):
			writeJSON(w, map[string]interface{}{"records": fakeRecords(101, 3)})
		default:
			t.Errorf("unexpected query %q", q)
		}
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	records, err := c.GetAllRecords(context.Background(), App{ID: "117", Token: "secret"}, `日付 >= "2025-10-01"`, "$id desc")
	require.NoError(t, err)

	assert.Len(t, records, 103)
	assert.Equal(t, "103", records[102].ID())
	require.Len(t, queries, 2)
	assert.Equal(t, `日付 >= "2025-10-01" order by $id desc limit 100 offset 0`, queries[0])
}

func TestGetRecordsUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"code":"GAIA_IQ11","message":"bad query"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, 5*time.Second)
	_, err := c.GetAllRecords(context.Background(), App{ID: "296", Token: "t"}, "", "$id asc")
	require.Error(t, err)

	var upErr *apperror.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusBadRequest, upErr.StatusCode)
	assert.Contains(t, upErr.Body, "GAIA_IQ11")
}

func TestGetRecord(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/k/v1/record.json", r.URL.Path)
		assert.Equal(t, "8", r.URL.Query().Get("id"))
		writeJSON(w, map[string]interface{}{"record": map[string]interface{}{
			"$id": map[string]string{"type": "__ID__", "value": "8"},
			"数値":  map[string]interface{}{"type": "NUMBER", "value": "22"},
		}})
	}))
	defer srv.Close()

	rec, err := NewClient(srv.URL, time.Second).GetRecord(context.Background(), App{ID: "238", Token: "t"}, "8")
	require.NoError(t, err)
	assert.Equal(t, "8", rec.ID())
	assert.Equal(t, "22", rec.String("数値"))
}

func TestFieldStringHandlesShapes(t *testing.T) {
	cases := map[string]string{
		`"text"`:   "text",
		`42`:       "42",
		`null`:     "",
		`["a"]`:    "",
		`{"a":1}`:  "",
		`-3.5`:     "-3.5",
		`"  pad "`: "  pad ",
	}
	for raw, want := range cases {
		f := Field{Value: json.RawMessage(raw)}
		assert.Equal(t, want, f.String(), raw)
	}
}
