package remote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math"
	"math/rand"
	"net/http"
	"time"

	"github.com/annohub/anno/internal/models"
)

// RetryConfig configures retry behavior for transient errors.
type RetryConfig struct {
	MaxRetries     int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	JitterFraction float64 // 0.0 to 1.0
}

// DefaultRetryConfig returns sensible retry defaults.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:     3,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     30 * time.Second,
		JitterFraction: 0.25,
	}
}

// RetryClient wraps a Client with automatic retry on transient errors.
type RetryClient struct {
	inner  Client
	config *RetryConfig
	logger *slog.Logger
}

var _ Client = (*RetryClient)(nil)

// NewRetryClient creates a RetryClient that wraps the given Client.
func NewRetryClient(inner Client, cfg *RetryConfig) *RetryClient {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	return &RetryClient{inner: inner, config: cfg, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// WithLogger sets the logger that records retried attempts.
func (rc *RetryClient) WithLogger(logger *slog.Logger) *RetryClient {
	rc.logger = logger
	return rc
}

// isTransient returns true for errors that are worth retrying.
func isTransient(err error) bool {
	if err == nil {
		return false
	}
	var re *RemoteError
	if errors.As(err, &re) {
		return re.Status >= 500 || re.Status == http.StatusTooManyRequests
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	return true // network errors are transient
}

// backoff computes the delay for the given attempt with jitter.
func (rc *RetryClient) backoff(attempt int) time.Duration {
	base := float64(rc.config.InitialBackoff) * math.Pow(2, float64(attempt))
	if base > float64(rc.config.MaxBackoff) {
		base = float64(rc.config.MaxBackoff)
	}
	jitter := base * rc.config.JitterFraction * (rand.Float64()*2 - 1)
	d := time.Duration(base + jitter)
	if d < 0 {
		d = 0
	}
	return d
}

// sleep waits for the given duration or until the context is cancelled.
func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// retry executes fn with retry logic. Only retries transient errors.
func (rc *RetryClient) retry(ctx context.Context, operation string, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= rc.config.MaxRetries; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}
		if !isTransient(lastErr) {
			return lastErr
		}
		if attempt < rc.config.MaxRetries {
			d := rc.backoff(attempt)
			rc.logger.Debug("retrying", "operation", operation, "attempt", attempt+1, "delay", d, "error", lastErr)
			if err := sleep(ctx, d); err != nil {
				return fmt.Errorf("%s: %w (retry cancelled)", operation, lastErr)
			}
		}
	}
	return fmt.Errorf("%s: %w (after %d retries)", operation, lastErr, rc.config.MaxRetries)
}

func (rc *RetryClient) ListProjects(ctx context.Context, name string) (projects []*models.Project, err error) {
	err = rc.retry(ctx, "list projects", func() error {
		projects, err = rc.inner.ListProjects(ctx, name)
		return err
	})
	return
}

func (rc *RetryClient) GetProject(ctx context.Context, id int) (p *models.Project, err error) {
	err = rc.retry(ctx, "get project", func() error {
		p, err = rc.inner.GetProject(ctx, id)
		return err
	})
	return
}

func (rc *RetryClient) CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error) {
	// Creation is not idempotent; a retried request could create a duplicate.
	return rc.inner.CreateProject(ctx, req)
}

func (rc *RetryClient) DeleteProject(ctx context.Context, id int) error {
	return rc.retry(ctx, "delete project", func() error {
		return rc.inner.DeleteProject(ctx, id)
	})
}

func (rc *RetryClient) ListFolders(ctx context.Context, projectID int) (folders []*models.Folder, err error) {
	err = rc.retry(ctx, "list folders", func() error {
		folders, err = rc.inner.ListFolders(ctx, projectID)
		return err
	})
	return
}

func (rc *RetryClient) CreateFolder(ctx context.Context, projectID int, name string) (*models.Folder, error) {
	return rc.inner.CreateFolder(ctx, projectID, name)
}

func (rc *RetryClient) ListImages(ctx context.Context, projectID, folderID int) (images []*models.Image, err error) {
	err = rc.retry(ctx, "list images", func() error {
		images, err = rc.inner.ListImages(ctx, projectID, folderID)
		return err
	})
	return
}

func (rc *RetryClient) ListClasses(ctx context.Context, projectID int) (classes []*models.AnnotationClass, err error) {
	err = rc.retry(ctx, "list classes", func() error {
		classes, err = rc.inner.ListClasses(ctx, projectID)
		return err
	})
	return
}

func (rc *RetryClient) CreateClasses(ctx context.Context, projectID int, classes []*models.AnnotationClass) (created []*models.AnnotationClass, err error) {
	// Existing names are returned unchanged by the server, so retry is safe.
	err = rc.retry(ctx, "create classes", func() error {
		created, err = rc.inner.CreateClasses(ctx, projectID, classes)
		return err
	})
	return
}

func (rc *RetryClient) ListTemplates(ctx context.Context) (templates []*models.Template, err error) {
	err = rc.retry(ctx, "list templates", func() error {
		templates, err = rc.inner.ListTemplates(ctx)
		return err
	})
	return
}

func (rc *RetryClient) GetUploadURLs(ctx context.Context, projectID, folderID int, names []string) (resp *AnnotationURLsResponse, err error) {
	err = rc.retry(ctx, "get upload urls", func() error {
		resp, err = rc.inner.GetUploadURLs(ctx, projectID, folderID, names)
		return err
	})
	return
}

func (rc *RetryClient) GetDownloadURLs(ctx context.Context, projectID, folderID int, names []string) (resp *AnnotationURLsResponse, err error) {
	err = rc.retry(ctx, "get download urls", func() error {
		resp, err = rc.inner.GetDownloadURLs(ctx, projectID, folderID, names)
		return err
	})
	return
}

func (rc *RetryClient) PutObject(ctx context.Context, url string, data []byte) error {
	// The body is a byte slice, so every attempt sends the full payload.
	return rc.retry(ctx, "put object", func() error {
		return rc.inner.PutObject(ctx, url, data)
	})
}

func (rc *RetryClient) GetObject(ctx context.Context, url string) (data []byte, err error) {
	err = rc.retry(ctx, "get object", func() error {
		data, err = rc.inner.GetObject(ctx, url)
		return err
	})
	return
}
