package core

import (
	"context"
	"fmt"

	"github.com/annohub/anno/internal/analytics"
	"github.com/annohub/anno/internal/classes"
	"github.com/annohub/anno/internal/report"
)

// Stats summarizes a set of resolved annotation files.
type Stats struct {
	Images     int
	Classes    []analytics.ClassCount
	Attributes map[string][]analytics.AttributeCount
	Failed     []FailedFile
}

// CollectStats resolves annotation files and aggregates class and attribute
// usage over them.
func CollectStats(ctx context.Context, paths []string, catalog *classes.Catalog, templates *classes.TemplateCatalog, rep report.Reporter) (*Stats, error) {
	db, err := analytics.Open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	stats := &Stats{Attributes: make(map[string][]analytics.AttributeCount)}

	for _, path := range paths {
		doc, err := ResolveFile(path, catalog, templates, rep)
		if err != nil {
			stats.Failed = append(stats.Failed, FailedFile{Path: path, Err: err})
			continue
		}
		if err := db.Load(ctx, ItemName(path), doc); err != nil {
			return nil, fmt.Errorf("load %s: %w", path, err)
		}
	}

	if stats.Images, err = db.Images(ctx); err != nil {
		return nil, err
	}
	if stats.Classes, err = db.ClassDistribution(ctx); err != nil {
		return nil, err
	}
	for _, c := range stats.Classes {
		attrs, err := db.AttributeDistribution(ctx, c.ClassName)
		if err != nil {
			return nil, err
		}
		if len(attrs) > 0 {
			stats.Attributes[c.ClassName] = attrs
		}
	}

	return stats, nil
}
