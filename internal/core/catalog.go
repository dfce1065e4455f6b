// Package core implements the SDK pipelines: catalog caching, annotation
// resolution, upload and download of annotation files, video conversion and
// statistics.
package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/annohub/anno/internal/classes"
	"github.com/annohub/anno/internal/models"
	"github.com/annohub/anno/internal/remote"
	"github.com/annohub/anno/internal/report"
	"github.com/annohub/anno/internal/store"
)

// ErrCatalogNotPulled is returned when a project's catalog is needed but was
// never pulled.
var ErrCatalogNotPulled = errors.New("class catalog not pulled")

// PullResult contains the outcome of a catalog pull.
type PullResult struct {
	Classes   int
	Templates int
}

// PullCatalog fetches a project's classes and the team's templates and
// caches both in the local store.
func PullCatalog(ctx context.Context, st *store.Store, client remote.Client, projectID int) (*PullResult, error) {
	cls, err := client.ListClasses(ctx, projectID)
	if err != nil {
		return nil, fmt.Errorf("list classes: %w", err)
	}

	templates, err := client.ListTemplates(ctx)
	if err != nil {
		return nil, fmt.Errorf("list templates: %w", err)
	}

	if err := st.SaveCatalog(projectID, cls); err != nil {
		return nil, fmt.Errorf("save catalog: %w", err)
	}
	if err := st.SaveTemplates(templates); err != nil {
		return nil, fmt.Errorf("save templates: %w", err)
	}

	return &PullResult{Classes: len(cls), Templates: len(templates)}, nil
}

// LoadCatalog builds a class catalog from a project's cached classes.
// Duplicate-name warnings are sent to rep.
func LoadCatalog(st *store.Store, projectID int, rep report.Reporter) (*classes.Catalog, error) {
	cached, err := st.GetCatalog(projectID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, fmt.Errorf("project %d: %w (run 'anno classes pull')", projectID, ErrCatalogNotPulled)
		}
		return nil, fmt.Errorf("get catalog: %w", err)
	}
	return classes.NewCatalog(cached.Classes, rep), nil
}

// LoadTemplates builds a template catalog from the cached templates.
func LoadTemplates(st *store.Store) (*classes.TemplateCatalog, error) {
	templates, err := st.GetTemplates()
	if err != nil {
		return nil, err
	}
	return classes.NewTemplateCatalog(templates), nil
}

// PushClasses creates the classes listed in a classes JSON file in a project
// and refreshes the cached catalog. Classes that already exist on the server
// are left unchanged. Returns the number of classes sent.
func PushClasses(ctx context.Context, st *store.Store, client remote.Client, projectID int, path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", path, err)
	}

	var cls []*models.AnnotationClass
	if err := json.Unmarshal(data, &cls); err != nil {
		return 0, fmt.Errorf("decode classes %s: %w", path, err)
	}
	if len(cls) == 0 {
		return 0, nil
	}

	if _, err := client.CreateClasses(ctx, projectID, cls); err != nil {
		return 0, fmt.Errorf("create classes: %w", err)
	}

	if _, err := PullCatalog(ctx, st, client, projectID); err != nil {
		return 0, err
	}
	return len(cls), nil
}
