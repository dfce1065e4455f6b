package core

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/annohub/anno/internal/classes"
	"github.com/annohub/anno/internal/models"
	"github.com/annohub/anno/internal/report"
	"github.com/annohub/anno/internal/video"
)

// ConvertVideoFile reads a video annotation export and returns the editor
// JSON with per-instance timelines.
func ConvertVideoFile(path string, catalog *classes.Catalog, rep report.Reporter) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc models.VideoDocument
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("decode video annotation %s: %w", path, err)
	}

	out, err := json.Marshal(video.ConvertDocument(&doc, catalog, rep))
	if err != nil {
		return nil, fmt.Errorf("encode editor annotation: %w", err)
	}
	return out, nil
}
