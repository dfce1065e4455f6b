package remote

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/annohub/anno/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, handler http.HandlerFunc) *HTTPClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewHTTPClient(srv.URL, 7, "secret-token")
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func TestHTTPClient_ListProjects(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/api/v1/teams/7/projects", r.URL.Path)
		assert.Equal(t, "cars & trucks", r.URL.Query().Get("name"))
		assert.Equal(t, "Bearer secret-token", r.Header.Get("Authorization"))
		assert.Len(t, r.Header.Get("X-Request-ID"), 36)

		writeJSON(w, http.StatusOK, []*models.Project{{ID: 1, Name: "cars & trucks", Type: models.ProjectTypeVector}})
	})

	projects, err := client.ListProjects(context.Background(), "cars & trucks")
	require.NoError(t, err)
	require.Len(t, projects, 1)
	assert.Equal(t, 1, projects[0].ID)
	assert.Equal(t, models.ProjectTypeVector, projects[0].Type)
}

func TestHTTPClient_ListClasses(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v1/teams/7/projects/3/classes", r.URL.Path)
		_, _ = io.WriteString(w, `[{"id":876855,"name":"Personal vehicle","color":"#ecb65f",
			"attribute_groups":[{"id":350510,"name":"Num doors","attributes":[{"id":1208404,"name":"2"}]}]}]`)
	})

	classes, err := client.ListClasses(context.Background(), 3)
	require.NoError(t, err)
	require.Len(t, classes, 1)
	assert.Equal(t, 876855, classes[0].ID)
	require.Len(t, classes[0].AttributeGroups, 1)
	assert.Equal(t, 1208404, classes[0].AttributeGroups[0].Attributes[0].ID)
}

func TestHTTPClient_CreateClasses(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req CreateClassesRequest
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) || !assert.Len(t, req.Classes, 1) {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		created := req.Classes[0]
		created.ID = 55
		writeJSON(w, http.StatusCreated, []*models.AnnotationClass{created})
	})

	created, err := client.CreateClasses(context.Background(), 3, []*models.AnnotationClass{{Name: "bus", Color: "#ffffff"}})
	require.NoError(t, err)
	require.Len(t, created, 1)
	assert.Equal(t, 55, created[0].ID)
	assert.Equal(t, "bus", created[0].Name)
}

func TestHTTPClient_UploadFlow(t *testing.T) {
	var stored []byte
	var srvURL string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/v1/teams/7/projects/3/annotations/upload-urls":
			var req AnnotationURLsRequest
			assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
			assert.Equal(t, 9, req.FolderID)
			writeJSON(w, http.StatusOK, &AnnotationURLsResponse{
				URLs:    map[string]string{"a.jpg": srvURL + "/bucket/a.jpg.json"},
				Missing: []string{"b.jpg"},
			})
		case "/bucket/a.jpg.json":
			assert.Equal(t, http.MethodPut, r.Method)
			assert.Empty(t, r.Header.Get("Authorization"), "token must not leak to object storage")
			stored, _ = io.ReadAll(r.Body)
			w.WriteHeader(http.StatusOK)
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()
	srvURL = srv.URL

	client := NewHTTPClient(srv.URL, 7, "secret-token")
	ctx := context.Background()

	resp, err := client.GetUploadURLs(ctx, 3, 9, []string{"a.jpg", "b.jpg"})
	require.NoError(t, err)
	assert.Equal(t, []string{"b.jpg"}, resp.Missing)

	require.NoError(t, client.PutObject(ctx, resp.URLs["a.jpg"], []byte(`{"instances":[]}`)))
	assert.Equal(t, `{"instances":[]}`, string(stored))
}

func TestHTTPClient_GetObject(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, `{"tags":["x"]}`)
	})

	data, err := client.GetObject(context.Background(), client.baseURL+"/obj")
	require.NoError(t, err)
	assert.Equal(t, `{"tags":["x"]}`, string(data))

	_, err = client.GetObject(context.Background(), client.baseURL+"/missing")
	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusNotFound, re.Status)
	assert.Equal(t, "unknown", re.Code)
}

func TestHTTPClient_StructuredError(t *testing.T) {
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusForbidden, &ErrorResponse{Error: "forbidden", Message: "token has no access to team 7"})
	})

	_, err := client.GetProject(context.Background(), 1)
	require.Error(t, err)

	var re *RemoteError
	require.ErrorAs(t, err, &re)
	assert.Equal(t, http.StatusForbidden, re.Status)
	assert.Equal(t, "forbidden", re.Code)
	assert.Contains(t, err.Error(), "get project 1")
	assert.False(t, isTransient(err))
}

func TestHTTPClient_DeleteProject(t *testing.T) {
	called := false
	client := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/api/v1/teams/7/projects/12", r.URL.Path)
		called = true
		w.WriteHeader(http.StatusNoContent)
	})

	require.NoError(t, client.DeleteProject(context.Background(), 12))
	assert.True(t, called)
}
