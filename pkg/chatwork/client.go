package chatwork

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"kb-assistant-be/internal/pkg/apperror"

	"github.com/go-resty/resty/v2"
	"golang.org/x/time/rate"
)

const DefaultBaseURL = "https://api.chatwork.com/v2"

// Client posts messages through the Chatwork REST API. Requests share a
// token bucket so bursts of answers stay under the API quota.
type Client struct {
	http    *resty.Client
	limiter *rate.Limiter
}

func NewClient(baseURL, token string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	http := resty.New().
		SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetTimeout(timeout).
		SetHeader("X-ChatWorkToken", token).
		SetRetryCount(0)

	return &Client{
		http:    http,
		limiter: rate.NewLimiter(rate.Every(time.Second), 10),
	}
}

type postMessageResponse struct {
	MessageID string `json:"message_id"`
}

// PostMessage sends body verbatim to the room and returns the new message id.
// Any non-2xx status is returned as an *apperror.UpstreamError.
func (c *Client) PostMessage(ctx context.Context, roomID int64, body string) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("chatwork rate limit: %w", err)
	}

	var out postMessageResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetFormData(map[string]string{"body": body}).
		SetResult(&out).
		Post("/rooms/" + strconv.FormatInt(roomID, 10) + "/messages")
	if err != nil {
		return "", fmt.Errorf("chatwork request (room %d): %w", roomID, err)
	}
	if resp.IsError() {
		return "", &apperror.UpstreamError{Service: "chatwork", StatusCode: resp.StatusCode(), Body: resp.String()}
	}
	return out.MessageID, nil
}
