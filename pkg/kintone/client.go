package kintone

import (
	"context"
	"fmt"
	"strings"
	"time"

	"kb-assistant-be/internal/pkg/apperror"

	"github.com/go-resty/resty/v2"
)

// PageSize is the records.json page size used while paginating.
const PageSize = 100

// App identifies one kintone app and the API token scoped to it.
type App struct {
	ID    string
	Token string
}

// Client reads records from the kintone REST API. Each call is attempted
// once; callers decide what a failure means.
type Client struct {
	http *resty.Client
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("Accept", "application/json").
		SetRetryCount(0)

	return &Client{http: http}
}

// GetRecords fetches one page of records matching a kintone query string.
func (c *Client) GetRecords(ctx context.Context, app App, query string) ([]Record, error) {
	var out recordsResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Cybozu-API-Token", app.Token).
		SetQueryParams(map[string]string{
			"app":   app.ID,
			"query": query,
		}).
		SetResult(&out).
		Get("/k/v1/records.json")
	if err != nil {
		return nil, fmt.Errorf("kintone request (app %s): %w", app.ID, err)
	}
	if resp.IsError() {
		return nil, &apperror.UpstreamError{Service: "kintone", StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return out.Records, nil
}

// GetAllRecords pages through every record until a short or empty page.
// A failed page aborts the whole read; no partial result is returned.
func (c *Client) GetAllRecords(ctx context.Context, app App, condition, orderBy string) ([]Record, error) {
	var all []Record
	offset := 0

	for {
		query := buildQuery(condition, orderBy, PageSize, offset)
		page, err := c.GetRecords(ctx, app, query)
		if err != nil {
			return nil, fmt.Errorf("offset %d: %w", offset, err)
		}

		if len(page) == 0 {
			break
		}
		all = append(all, page...)
		if len(page) < PageSize {
			break
		}

		offset += PageSize
	}

	return all, nil
}

// GetRecord fetches a single record by id.
func (c *Client) GetRecord(ctx context.Context, app App, id string) (Record, error) {
	var out recordResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("X-Cybozu-API-Token", app.Token).
		SetQueryParams(map[string]string{
			"app": app.ID,
			"id":  id,
		}).
		SetResult(&out).
		Get("/k/v1/record.json")
	if err != nil {
		return nil, fmt.Errorf("kintone request (app %s record %s): %w", app.ID, id, err)
	}
	if resp.IsError() {
		return nil, &apperror.UpstreamError{Service: "kintone", StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return out.Record, nil
}

func buildQuery(condition, orderBy string, limit, offset int) string {
	var b strings.Builder
	if condition != "" {
		b.WriteString(condition)
		b.WriteString(" ")
	}
	if orderBy != "" {
		b.WriteString("order by ")
		b.WriteString(orderBy)
		b.WriteString(" ")
	}
	fmt.Fprintf(&b, "limit %d offset %d", limit, offset)
	return b.String()
}
