package remote

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"sync"

	"github.com/annohub/anno/internal/models"
)

// MockClient is an in-memory implementation of Client for testing. It is
// safe for concurrent use.
type MockClient struct {
	mu sync.Mutex

	// Projects stores projects by ID.
	Projects map[int]*models.Project
	// Folders stores folders by project ID.
	Folders map[int][]*models.Folder
	// Images stores registered items by ImageKey.
	Images map[string]*models.Image
	// Classes stores class catalogs by project ID.
	Classes map[int][]*models.AnnotationClass
	// Templates is the team's template list.
	Templates []*models.Template
	// Objects stores uploaded payloads by presigned URL.
	Objects map[string][]byte
	// Err can be set to make every method return an error.
	Err error
	// TransientFailures makes the next N calls fail with HTTP 503.
	TransientFailures int
	// Calls counts invocations per method name.
	Calls map[string]int

	nextID int
}

var _ Client = (*MockClient)(nil)

// NewMockClient creates an empty MockClient.
func NewMockClient() *MockClient {
	return &MockClient{
		Projects: make(map[int]*models.Project),
		Folders:  make(map[int][]*models.Folder),
		Images:   make(map[string]*models.Image),
		Classes:  make(map[int][]*models.AnnotationClass),
		Objects:  make(map[string][]byte),
		Calls:    make(map[string]int),
		nextID:   1000,
	}
}

// ImageKey is the Images map key of an item.
func ImageKey(projectID, folderID int, name string) string {
	return fmt.Sprintf("%d/%d/%s", projectID, folderID, name)
}

// ObjectURL is the presigned URL the mock hands out for an item's annotation.
func ObjectURL(projectID, folderID int, name string) string {
	return "mock://" + ImageKey(projectID, folderID, name) + ".json"
}

// AddImage registers an item in a folder.
func (m *MockClient) AddImage(projectID, folderID int, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID++
	m.Images[ImageKey(projectID, folderID, name)] = &models.Image{ID: m.nextID, Name: name, FolderID: folderID}
}

// Object returns the payload uploaded for an item, if any.
func (m *MockClient) Object(projectID, folderID int, name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.Objects[ObjectURL(projectID, folderID, name)]
	return data, ok
}

// CallCount returns how often method was called.
func (m *MockClient) CallCount(method string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls[method]
}

// enter records the call and returns the configured failure, if any. The
// caller must hold m.mu.
func (m *MockClient) enter(method string) error {
	m.Calls[method]++
	if m.Err != nil {
		return m.Err
	}
	if m.TransientFailures > 0 {
		m.TransientFailures--
		return &RemoteError{Code: "unavailable", Message: "try again", Status: http.StatusServiceUnavailable}
	}
	return nil
}

func notFound(format string, args ...interface{}) error {
	return &RemoteError{Code: "not_found", Message: fmt.Sprintf(format, args...), Status: http.StatusNotFound}
}

// ListProjects returns projects sorted by ID, filtered by exact name.
func (m *MockClient) ListProjects(ctx context.Context, name string) ([]*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListProjects"); err != nil {
		return nil, err
	}

	var out []*models.Project
	for _, p := range m.Projects {
		if name == "" || p.Name == name {
			out = append(out, p)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// GetProject returns a project by ID.
func (m *MockClient) GetProject(ctx context.Context, id int) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetProject"); err != nil {
		return nil, err
	}

	p, ok := m.Projects[id]
	if !ok {
		return nil, notFound("project %d not found", id)
	}
	return p, nil
}

// CreateProject stores a new project.
func (m *MockClient) CreateProject(ctx context.Context, req *CreateProjectRequest) (*models.Project, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateProject"); err != nil {
		return nil, err
	}

	m.nextID++
	p := &models.Project{ID: m.nextID, Name: req.Name, Description: req.Description, Type: req.Type}
	m.Projects[p.ID] = p
	return p, nil
}

// DeleteProject removes a project.
func (m *MockClient) DeleteProject(ctx context.Context, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("DeleteProject"); err != nil {
		return err
	}

	if _, ok := m.Projects[id]; !ok {
		return notFound("project %d not found", id)
	}
	delete(m.Projects, id)
	delete(m.Folders, id)
	delete(m.Classes, id)
	return nil
}

// ListFolders returns a project's folders.
func (m *MockClient) ListFolders(ctx context.Context, projectID int) ([]*models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListFolders"); err != nil {
		return nil, err
	}
	return m.Folders[projectID], nil
}

// CreateFolder adds a folder to a project.
func (m *MockClient) CreateFolder(ctx context.Context, projectID int, name string) (*models.Folder, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateFolder"); err != nil {
		return nil, err
	}

	m.nextID++
	f := &models.Folder{ID: m.nextID, ProjectID: projectID, Name: name}
	m.Folders[projectID] = append(m.Folders[projectID], f)
	return f, nil
}

// ListImages returns the items registered in a folder, sorted by name.
func (m *MockClient) ListImages(ctx context.Context, projectID, folderID int) ([]*models.Image, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListImages"); err != nil {
		return nil, err
	}

	prefix := ImageKey(projectID, folderID, "")
	var out []*models.Image
	for key, img := range m.Images {
		if len(key) > len(prefix) && key[:len(prefix)] == prefix {
			out = append(out, img)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

// ListClasses returns a project's catalog.
func (m *MockClient) ListClasses(ctx context.Context, projectID int) ([]*models.AnnotationClass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListClasses"); err != nil {
		return nil, err
	}
	return m.Classes[projectID], nil
}

// CreateClasses appends classes with fresh IDs, returning existing entries
// for names already in the catalog.
func (m *MockClient) CreateClasses(ctx context.Context, projectID int, classes []*models.AnnotationClass) ([]*models.AnnotationClass, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("CreateClasses"); err != nil {
		return nil, err
	}

	var out []*models.AnnotationClass
	for _, cls := range classes {
		var existing *models.AnnotationClass
		for _, c := range m.Classes[projectID] {
			if c.Name == cls.Name {
				existing = c
				break
			}
		}
		if existing != nil {
			out = append(out, existing)
			continue
		}
		created := cls.Clone()
		m.nextID++
		created.ID = m.nextID
		m.Classes[projectID] = append(m.Classes[projectID], created)
		out = append(out, created)
	}
	return out, nil
}

// ListTemplates returns the configured templates.
func (m *MockClient) ListTemplates(ctx context.Context) ([]*models.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("ListTemplates"); err != nil {
		return nil, err
	}
	return m.Templates, nil
}

// GetUploadURLs returns mock:// URLs for registered items.
func (m *MockClient) GetUploadURLs(ctx context.Context, projectID, folderID int, names []string) (*AnnotationURLsResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetUploadURLs"); err != nil {
		return nil, err
	}
	return m.urls(projectID, folderID, names), nil
}

// GetDownloadURLs returns mock:// URLs for registered items.
func (m *MockClient) GetDownloadURLs(ctx context.Context, projectID, folderID int, names []string) (*AnnotationURLsResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetDownloadURLs"); err != nil {
		return nil, err
	}
	return m.urls(projectID, folderID, names), nil
}

func (m *MockClient) urls(projectID, folderID int, names []string) *AnnotationURLsResponse {
	resp := &AnnotationURLsResponse{URLs: make(map[string]string)}
	for _, name := range names {
		if _, ok := m.Images[ImageKey(projectID, folderID, name)]; !ok {
			resp.Missing = append(resp.Missing, name)
			continue
		}
		resp.URLs[name] = ObjectURL(projectID, folderID, name)
	}
	return resp
}

// PutObject stores data under url.
func (m *MockClient) PutObject(ctx context.Context, url string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("PutObject"); err != nil {
		return err
	}
	m.Objects[url] = append([]byte(nil), data...)
	return nil
}

// GetObject returns the data stored under url.
func (m *MockClient) GetObject(ctx context.Context, url string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.enter("GetObject"); err != nil {
		return nil, err
	}
	data, ok := m.Objects[url]
	if !ok {
		return nil, notFound("object %s not found", url)
	}
	return data, nil
}
