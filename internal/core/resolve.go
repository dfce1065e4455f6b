package core

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/annohub/anno/internal/classes"
	"github.com/annohub/anno/internal/models"
	"github.com/annohub/anno/internal/report"
)

// Suffixes of annotation files, longest first.
var annotationSuffixes = []string{"___objects.json", "___pixel.json", ".json"}

// ResolveFile reads the annotation document at path and resolves it against
// a private clone of catalog.
func ResolveFile(path string, catalog *classes.Catalog, templates *classes.TemplateCatalog, rep report.Reporter) (models.Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return resolveBytes(data, catalog, templates, rep)
}

func resolveBytes(data []byte, catalog *classes.Catalog, templates *classes.TemplateCatalog, rep report.Reporter) (models.Document, error) {
	doc, err := models.ParseDocument(data)
	if err != nil {
		return nil, err
	}
	return classes.NewResolver(catalog.Clone(), templates, rep).Resolve(doc)
}

// ItemName returns the item an annotation file belongs to: its base name
// without the annotation suffix.
func ItemName(path string) string {
	base := filepath.Base(path)
	for _, suffix := range annotationSuffixes {
		if strings.HasSuffix(base, suffix) && len(base) > len(suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return base
}

// AnnotationFiles lists the annotation files directly under dir, sorted by
// name.
func AnnotationFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var paths []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, e.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}
