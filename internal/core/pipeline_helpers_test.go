package core

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/annohub/anno/internal/models"
	"github.com/annohub/anno/internal/remote"
	"github.com/annohub/anno/internal/store"
	"github.com/stretchr/testify/require"
)

const (
	testProject = 7
	testFolder  = 3
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	st, err := store.New(filepath.Join(t.TempDir(), "anno.db"))
	require.NoError(t, err)
	require.NoError(t, st.Initialize())
	t.Cleanup(func() { st.Close() })
	return st
}

func vehicleClasses() []*models.AnnotationClass {
	return []*models.AnnotationClass{
		{ID: 1, Name: "car", Color: "#ff0000", AttributeGroups: []*models.AttributeGroup{
			{ID: 10, Name: "color", Attributes: []*models.Attribute{{ID: 100, Name: "red"}, {ID: 101, Name: "blue"}}},
		}},
		{ID: 2, Name: "bus", Color: "#00ff00"},
	}
}

// newTestClient returns a mock with the vehicle catalog in testProject.
func newTestClient() *remote.MockClient {
	client := remote.NewMockClient()
	client.Classes[testProject] = vehicleClasses()
	client.Templates = []*models.Template{{ID: 55, Name: "sedan"}}
	return client
}

// pulledStore returns a store with testProject's catalog already cached.
func pulledStore(t *testing.T, client remote.Client) *store.Store {
	t.Helper()
	st := newTestStore(t)
	_, err := PullCatalog(t.Context(), st, client, testProject)
	require.NoError(t, err)
	return st
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
