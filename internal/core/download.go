package core

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/annohub/anno/internal/config"
	"github.com/annohub/anno/internal/remote"
	"golang.org/x/sync/errgroup"
)

// DownloadOptions configures an annotation download.
type DownloadOptions struct {
	ProjectID int
	FolderID  int
	// Names are the items to download. All items of the folder are
	// downloaded if empty.
	Names []string
	// Dir receives one <name>.json file per item. Item names containing
	// slashes are written to matching subdirectories.
	Dir     string
	Workers int
}

// DownloadResult contains the outcome of a download.
type DownloadResult struct {
	Downloaded []string
	Missing    []string
}

// DownloadAnnotations fetches the annotations of items in a folder and
// writes them to opts.Dir.
func DownloadAnnotations(ctx context.Context, client remote.Client, opts DownloadOptions, progress Progress) (*DownloadResult, error) {
	if progress == nil {
		progress = func(string, int, int) {}
	}

	names := opts.Names
	if len(names) == 0 {
		images, err := client.ListImages(ctx, opts.ProjectID, opts.FolderID)
		if err != nil {
			return nil, fmt.Errorf("list images: %w", err)
		}
		for _, img := range images {
			names = append(names, img.Name)
		}
	}

	result := &DownloadResult{}
	if len(names) == 0 {
		return result, nil
	}

	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("create output directory: %w", err)
	}

	urls := make(map[string]string, len(names))
	for start := 0; start < len(names); start += urlBatchSize {
		end := min(start+urlBatchSize, len(names))
		resp, err := client.GetDownloadURLs(ctx, opts.ProjectID, opts.FolderID, names[start:end])
		if err != nil {
			return nil, fmt.Errorf("get download urls: %w", err)
		}
		for name, url := range resp.URLs {
			urls[name] = url
		}
		result.Missing = append(result.Missing, resp.Missing...)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = config.DefaultWorkers
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	paths := make(map[string]string, len(urls))
	for name := range urls {
		rel := filepath.FromSlash(name) + ".json"
		if !filepath.IsLocal(rel) {
			return nil, fmt.Errorf("item name %q escapes the output directory", name)
		}
		paths[name] = filepath.Join(opts.Dir, rel)
	}

	for name, url := range urls {
		path := paths[name]
		g.Go(func() error {
			data, err := client.GetObject(gctx, url)
			if err != nil {
				return fmt.Errorf("download %s: %w", name, err)
			}
			if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
				return fmt.Errorf("create directory for %s: %w", path, err)
			}
			if err := os.WriteFile(path, data, 0644); err != nil {
				return fmt.Errorf("write %s: %w", path, err)
			}

			mu.Lock()
			result.Downloaded = append(result.Downloaded, name)
			progress("downloading", len(result.Downloaded), len(urls))
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(result.Downloaded)
	sort.Strings(result.Missing)
	return result, nil
}
