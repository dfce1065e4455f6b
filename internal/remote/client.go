package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/annohub/anno/internal/models"
	"github.com/google/uuid"
)

// Client defines the contract for talking to the annotation platform.
type Client interface {
	ListProjects(ctx context.Context, name string) ([]*models.Project, error)
	GetProject(ctx context.Context, id int) (*models.Project, error)
	CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error)
	DeleteProject(ctx context.Context, id int) error

	ListFolders(ctx context.Context, projectID int) ([]*models.Folder, error)
	CreateFolder(ctx context.Context, projectID int, name string) (*models.Folder, error)
	ListImages(ctx context.Context, projectID, folderID int) ([]*models.Image, error)

	ListClasses(ctx context.Context, projectID int) ([]*models.AnnotationClass, error)
	CreateClasses(ctx context.Context, projectID int, classes []*models.AnnotationClass) ([]*models.AnnotationClass, error)
	ListTemplates(ctx context.Context) ([]*models.Template, error)

	GetUploadURLs(ctx context.Context, projectID, folderID int, names []string) (*AnnotationURLsResponse, error)
	GetDownloadURLs(ctx context.Context, projectID, folderID int, names []string) (*AnnotationURLsResponse, error)
	PutObject(ctx context.Context, url string, data []byte) error
	GetObject(ctx context.Context, url string) ([]byte, error)
}

// HTTPClient implements Client over HTTP.
type HTTPClient struct {
	baseURL    string
	teamID     int
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPClient creates an HTTP-based client for the given team.
func NewHTTPClient(baseURL string, teamID int, token string) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		teamID:  teamID,
		token:   token,
		httpClient: &http.Client{
			Timeout: 60 * time.Second,
		},
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithLogger sets the logger used for request tracing and returns c.
func (c *HTTPClient) WithLogger(logger *slog.Logger) *HTTPClient {
	if logger != nil {
		c.logger = logger
	}
	return c
}

func (c *HTTPClient) teamURL(path string) string {
	return fmt.Sprintf("%s/api/v1/teams/%d%s", c.baseURL, c.teamID, path)
}

func (c *HTTPClient) projectURL(projectID int, path string) string {
	return c.teamURL(fmt.Sprintf("/projects/%d%s", projectID, path))
}

func (c *HTTPClient) do(ctx context.Context, method, url string, body io.Reader, headers map[string]string, auth bool) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	reqID := uuid.New().String()
	req.Header.Set("X-Request-ID", reqID)
	if auth {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Debug("request failed", "method", method, "request_id", reqID, "error", err)
		return nil, fmt.Errorf("execute request: %w", err)
	}

	c.logger.Debug("request",
		"method", method,
		"status", resp.StatusCode,
		"request_id", reqID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return resp, nil
}

func (c *HTTPClient) doJSON(ctx context.Context, method, url string, reqBody, respBody interface{}) error {
	var body io.Reader
	headers := map[string]string{"Content-Type": "application/json"}

	if reqBody != nil {
		data, err := json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		body = bytes.NewReader(data)
	}

	resp, err := c.do(ctx, method, url, body, headers, true)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}

	if respBody != nil {
		if err := json.NewDecoder(resp.Body).Decode(respBody); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}

	return nil
}

// ListProjects returns the team's projects, filtered by name when name is
// not empty.
func (c *HTTPClient) ListProjects(ctx context.Context, name string) ([]*models.Project, error) {
	u := c.teamURL("/projects")
	if name != "" {
		u += "?name=" + url.QueryEscape(name)
	}
	var projects []*models.Project
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &projects); err != nil {
		return nil, fmt.Errorf("list projects: %w", err)
	}
	return projects, nil
}

// GetProject returns a single project.
func (c *HTTPClient) GetProject(ctx context.Context, id int) (*models.Project, error) {
	var p models.Project
	if err := c.doJSON(ctx, http.MethodGet, c.projectURL(id, ""), nil, &p); err != nil {
		return nil, fmt.Errorf("get project %d: %w", id, err)
	}
	return &p, nil
}

// CreateProject creates a project.
func (c *HTTPClient) CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error) {
	var p models.Project
	if err := c.doJSON(ctx, http.MethodPost, c.teamURL("/projects"), req, &p); err != nil {
		return nil, fmt.Errorf("create project %s: %w", req.Name, err)
	}
	return &p, nil
}

// DeleteProject deletes a project.
func (c *HTTPClient) DeleteProject(ctx context.Context, id int) error {
	if err := c.doJSON(ctx, http.MethodDelete, c.projectURL(id, ""), nil, nil); err != nil {
		return fmt.Errorf("delete project %d: %w", id, err)
	}
	return nil
}

// ListFolders returns the folders of a project.
func (c *HTTPClient) ListFolders(ctx context.Context, projectID int) ([]*models.Folder, error) {
	var folders []*models.Folder
	if err := c.doJSON(ctx, http.MethodGet, c.projectURL(projectID, "/folders"), nil, &folders); err != nil {
		return nil, fmt.Errorf("list folders: %w", err)
	}
	return folders, nil
}

// CreateFolder creates a folder in a project.
func (c *HTTPClient) CreateFolder(ctx context.Context, projectID int, name string) (*models.Folder, error) {
	var f models.Folder
	req := &CreateFolderRequest{Name: name}
	if err := c.doJSON(ctx, http.MethodPost, c.projectURL(projectID, "/folders"), req, &f); err != nil {
		return nil, fmt.Errorf("create folder %s: %w", name, err)
	}
	return &f, nil
}

// ListImages returns the items of a folder.
func (c *HTTPClient) ListImages(ctx context.Context, projectID, folderID int) ([]*models.Image, error) {
	u := c.projectURL(projectID, "/images?folder_id="+strconv.Itoa(folderID))
	var images []*models.Image
	if err := c.doJSON(ctx, http.MethodGet, u, nil, &images); err != nil {
		return nil, fmt.Errorf("list images: %w", err)
	}
	return images, nil
}

// ListClasses returns a project's class catalog.
func (c *HTTPClient) ListClasses(ctx context.Context, projectID int) ([]*models.AnnotationClass, error) {
	var classes []*models.AnnotationClass
	if err := c.doJSON(ctx, http.MethodGet, c.projectURL(projectID, "/classes"), nil, &classes); err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}
	return classes, nil
}

// CreateClasses adds classes to a project's catalog and returns them with
// their server IDs.
func (c *HTTPClient) CreateClasses(ctx context.Context, projectID int, classes []*models.AnnotationClass) ([]*models.AnnotationClass, error) {
	var created []*models.AnnotationClass
	req := &CreateClassesRequest{Classes: classes}
	if err := c.doJSON(ctx, http.MethodPost, c.projectURL(projectID, "/classes"), req, &created); err != nil {
		return nil, fmt.Errorf("create classes: %w", err)
	}
	return created, nil
}

// ListTemplates returns the team's templates.
func (c *HTTPClient) ListTemplates(ctx context.Context) ([]*models.Template, error) {
	var templates []*models.Template
	if err := c.doJSON(ctx, http.MethodGet, c.teamURL("/templates"), nil, &templates); err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}
	return templates, nil
}

// GetUploadURLs returns presigned PUT URLs for the annotations of names.
func (c *HTTPClient) GetUploadURLs(ctx context.Context, projectID, folderID int, names []string) (*AnnotationURLsResponse, error) {
	var resp AnnotationURLsResponse
	req := &AnnotationURLsRequest{FolderID: folderID, Names: names}
	if err := c.doJSON(ctx, http.MethodPost, c.projectURL(projectID, "/annotations/upload-urls"), req, &resp); err != nil {
		return nil, fmt.Errorf("get upload urls: %w", err)
	}
	return &resp, nil
}

// GetDownloadURLs returns presigned GET URLs for the annotations of names.
func (c *HTTPClient) GetDownloadURLs(ctx context.Context, projectID, folderID int, names []string) (*AnnotationURLsResponse, error) {
	var resp AnnotationURLsResponse
	req := &AnnotationURLsRequest{FolderID: folderID, Names: names}
	if err := c.doJSON(ctx, http.MethodPost, c.projectURL(projectID, "/annotations/download-urls"), req, &resp); err != nil {
		return nil, fmt.Errorf("get download urls: %w", err)
	}
	return &resp, nil
}

// PutObject uploads data to a presigned URL. The platform token is not sent
// to object storage.
func (c *HTTPClient) PutObject(ctx context.Context, url string, data []byte) error {
	headers := map[string]string{"Content-Type": "application/json"}
	resp, err := c.do(ctx, http.MethodPut, url, bytes.NewReader(data), headers, false)
	if err != nil {
		return fmt.Errorf("put object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeError(resp)
	}
	return nil
}

// GetObject downloads the content behind a presigned URL.
func (c *HTTPClient) GetObject(ctx context.Context, url string) ([]byte, error) {
	resp, err := c.do(ctx, http.MethodGet, url, nil, nil, false)
	if err != nil {
		return nil, fmt.Errorf("get object: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return nil, decodeError(resp)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read object: %w", err)
	}
	return data, nil
}

// RemoteError represents a structured error from the server.
type RemoteError struct {
	Code    string
	Message string
	Status  int
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote error (%d): %s: %s", e.Status, e.Code, e.Message)
}

func decodeError(resp *http.Response) error {
	var errResp ErrorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		return &RemoteError{
			Code:    "unknown",
			Message: fmt.Sprintf("HTTP %d", resp.StatusCode),
			Status:  resp.StatusCode,
		}
	}

	return &RemoteError{
		Code:    errResp.Error,
		Message: errResp.Message,
		Status:  resp.StatusCode,
	}
}
