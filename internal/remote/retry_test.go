package remote

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/annohub/anno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 1 * time.Millisecond,
		MaxBackoff:     5 * time.Millisecond,
		JitterFraction: 0.0,
	}
}

func TestIsTransient(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"nil", nil, false},
		{"bad gateway", &RemoteError{Status: http.StatusBadGateway, Code: "bad_gateway"}, true},
		{"rate limited", &RemoteError{Status: http.StatusTooManyRequests, Code: "rate_limited"}, true},
		{"unknown project", &RemoteError{Status: http.StatusNotFound, Code: "not_found"}, false},
		{"forbidden", &RemoteError{Status: http.StatusForbidden, Code: "forbidden"}, false},
		{"connection reset", errors.New("read: connection reset by peer"), true},
		{"cancelled", context.Canceled, false},
		{"deadline", context.DeadlineExceeded, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, isTransient(tt.err))
		})
	}
}

func TestRetryClient_Backoff(t *testing.T) {
	rc := NewRetryClient(nil, &RetryConfig{
		MaxRetries:     6,
		InitialBackoff: 250 * time.Millisecond,
		MaxBackoff:     2 * time.Second,
	})

	want := []time.Duration{
		250 * time.Millisecond,
		500 * time.Millisecond,
		time.Second,
		2 * time.Second,
		2 * time.Second,
	}
	for attempt, d := range want {
		assert.Equal(t, d, rc.backoff(attempt), "attempt %d", attempt)
	}
}

func TestRetryClient_BackoffJitterBounds(t *testing.T) {
	rc := NewRetryClient(nil, &RetryConfig{
		InitialBackoff: 100 * time.Millisecond,
		MaxBackoff:     time.Second,
		JitterFraction: 0.5,
	})

	for range 50 {
		d := rc.backoff(0)
		assert.GreaterOrEqual(t, d, 50*time.Millisecond)
		assert.LessOrEqual(t, d, 150*time.Millisecond)
	}
}

func TestRetryClient_Retry(t *testing.T) {
	unavailable := &RemoteError{Status: http.StatusServiceUnavailable, Code: "unavailable"}
	missing := &RemoteError{Status: http.StatusNotFound, Code: "not_found"}

	tests := []struct {
		name         string
		failures     int
		failWith     error
		wantErr      string
		wantAttempts int
	}{
		{"succeeds first time", 0, nil, "", 1},
		{"recovers after transient failures", 2, unavailable, "", 3},
		{"gives up after max retries", 10, unavailable, "after 3 retries", 4},
		{"does not retry client errors", 10, missing, "not_found", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rc := NewRetryClient(nil, fastRetry())

			attempts := 0
			err := rc.retry(context.Background(), "list classes", func() error {
				attempts++
				if attempts <= tt.failures {
					return tt.failWith
				}
				return nil
			})

			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
			assert.Equal(t, tt.wantAttempts, attempts)
		})
	}
}

func TestRetryClient_ContextCancelledDuringBackoff(t *testing.T) {
	rc := NewRetryClient(nil, &RetryConfig{
		MaxRetries:     5,
		InitialBackoff: time.Second,
		MaxBackoff:     10 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := rc.retry(ctx, "get upload urls", func() error {
		return &RemoteError{Status: http.StatusInternalServerError, Code: "internal"}
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry cancelled")
}

func TestSleep(t *testing.T) {
	assert.NoError(t, sleep(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, sleep(ctx, 10*time.Second), context.Canceled)
}

func TestRetryClient_LogsRetries(t *testing.T) {
	mock := NewMockClient()
	mock.TransientFailures = 1

	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	rc := NewRetryClient(mock, fastRetry()).WithLogger(logger)
	_, err := rc.ListTemplates(context.Background())

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "retrying")
	assert.Contains(t, buf.String(), "operation=")
}

func TestRetryClient_DelegatesAfterTransientFailures(t *testing.T) {
	mock := NewMockClient()
	mock.Classes[1] = []*models.AnnotationClass{{ID: 5, Name: "car"}}
	mock.TransientFailures = 2

	rc := NewRetryClient(mock, fastRetry())
	classes, err := rc.ListClasses(context.Background(), 1)

	assert.NoError(t, err)
	assert.Len(t, classes, 1)
	assert.Equal(t, 3, mock.CallCount("ListClasses"))
}

func TestRetryClient_CreateProjectNotRetried(t *testing.T) {
	mock := NewMockClient()
	mock.TransientFailures = 1

	rc := NewRetryClient(mock, fastRetry())
	_, err := rc.CreateProject(context.Background(), &CreateProjectRequest{Name: "p"})

	assert.Error(t, err)
	assert.Equal(t, 1, mock.CallCount("CreateProject"))
	assert.Empty(t, mock.Projects)
}

func TestRetryClient_PutObjectResendsBody(t *testing.T) {
	mock := NewMockClient()
	mock.TransientFailures = 1

	rc := NewRetryClient(mock, fastRetry())
	err := rc.PutObject(context.Background(), "mock://1/0/a.jpg.json", []byte(`{"a":1}`))

	assert.NoError(t, err)
	assert.Equal(t, []byte(`{"a":1}`), mock.Objects["mock://1/0/a.jpg.json"])
	assert.Equal(t, 2, mock.CallCount("PutObject"))
}
