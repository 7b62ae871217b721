package chatwork

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"kb-assistant-be/internal/constant"
	"kb-assistant-be/internal/pkg/apperror"
	"kb-assistant-be/internal/pkg/logger"
	"kb-assistant-be/pkg/metrics"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPostMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/rooms/12345/messages", r.URL.Path)
		assert.Equal(t, "token", r.Header.Get("X-ChatWorkToken"))
		assert.Contains(t, r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
		require.NoError(t, r.ParseForm())
		assert.Equal(t, "回答です&残り", r.PostForm.Get("body"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"message_id":"1234567890"}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL+"/v2", "token", time.Second)
	id, err := c.PostMessage(context.Background(), 12345, "回答です&残り")
	require.NoError(t, err)
	assert.Equal(t, "1234567890", id)
}

func TestPostMessageUpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"errors":["Invalid API token"]}`))
	}))
	defer srv.Close()

	_, err := NewClient(srv.URL, "bad", time.Second).PostMessage(context.Background(), 1, "x")
	require.Error(t, err)

	var upErr *apperror.UpstreamError
	require.ErrorAs(t, err, &upErr)
	assert.Equal(t, http.StatusUnauthorized, upErr.StatusCode)
}

type recordingPoster struct {
	mu     sync.Mutex
	bodies []string
	err    error
}

func (p *recordingPoster) PostMessage(ctx context.Context, roomID int64, body string) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bodies = append(p.bodies, body)
	return "1", p.err
}

func TestDispatchAppendsSuffix(t *testing.T) {
	p := &recordingPoster{}
	d := NewDispatcher(p, "", "---\nAIの回答です", logger.NewNopLogger(), metrics.New())

	require.NoError(t, d.Dispatch(context.Background(), 1, "本文\n"))
	assert.Equal(t, []string{"本文\n\n---\nAIの回答です"}, p.bodies)
}

func TestSendPrefixAsync(t *testing.T) {
	p := &recordingPoster{}
	d := NewDispatcher(p, "確認中です⏳", "", logger.NewNopLogger(), metrics.New())

	ctx, cancel := context.WithCancel(context.Background())
	done := d.SendPrefixAsync(ctx, 1)
	cancel()

	assert.NoError(t, <-done)
	assert.Equal(t, []string{"確認中です⏳"}, p.bodies)
}

func TestSendPrefixAsyncDisabled(t *testing.T) {
	p := &recordingPoster{}
	d := NewDispatcher(p, "", "", logger.NewNopLogger(), nil)

	assert.False(t, d.HasPrefix())
	_, open := <-d.SendPrefixAsync(context.Background(), 1)
	assert.False(t, open)
	assert.Empty(t, p.bodies)
}

func TestSendApologyFailureIsSwallowed(t *testing.T) {
	p := &recordingPoster{err: errors.New("chatwork down")}
	d := NewDispatcher(p, "", "", logger.NewNopLogger(), metrics.New())

	d.SendApology(context.Background(), 1)
	assert.Equal(t, []string{constant.MessageApology}, p.bodies)
}
