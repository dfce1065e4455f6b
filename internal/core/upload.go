package core

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/annohub/anno/internal/config"
	"github.com/annohub/anno/internal/models"
	"github.com/annohub/anno/internal/remote"
	"github.com/annohub/anno/internal/report"
	"github.com/annohub/anno/internal/store"
	"golang.org/x/sync/errgroup"
)

// urlBatchSize caps the number of names per presigned-URL request.
const urlBatchSize = 500

// UploadOptions configures an annotation upload.
type UploadOptions struct {
	ProjectID int
	FolderID  int
	// Paths are the annotation files to upload.
	Paths []string
	// Force uploads files even if the journal says they are unchanged.
	Force   bool
	Workers int
	// Report collects diagnostics for the whole batch. A new one is created
	// if nil.
	Report *report.Report
}

// FailedFile is an annotation file that could not be processed.
type FailedFile struct {
	Path string
	Err  error
}

// UploadResult contains the outcome of an upload.
type UploadResult struct {
	Uploaded []string
	// Skipped items are unchanged since their last upload.
	Skipped []string
	// Missing items are not registered in the target folder.
	Missing []string
	Failed  []FailedFile
	Report  *report.Report
}

// Progress is called to report pipeline progress.
type Progress func(phase string, current, total int)

type pendingUpload struct {
	name string
	data []byte
	hash string
}

// UploadAnnotations resolves annotation files against the project's cached
// catalog and uploads them to their items in a folder.
func UploadAnnotations(ctx context.Context, st *store.Store, client remote.Client, opts UploadOptions, progress Progress) (*UploadResult, error) {
	if progress == nil {
		progress = func(string, int, int) {}
	}
	rep := opts.Report
	if rep == nil {
		rep = report.New(nil)
	}
	result := &UploadResult{Report: rep}

	catalog, err := LoadCatalog(st, opts.ProjectID, rep)
	if err != nil {
		return nil, err
	}
	templates, err := LoadTemplates(st)
	if err != nil {
		return nil, fmt.Errorf("load templates: %w", err)
	}

	pending := make(map[string]*pendingUpload)
	for i, path := range opts.Paths {
		progress("resolving", i+1, len(opts.Paths))

		doc, err := ResolveFile(path, catalog, templates, rep)
		if err != nil {
			result.Failed = append(result.Failed, FailedFile{Path: path, Err: err})
			continue
		}

		data, err := json.Marshal(doc)
		if err != nil {
			result.Failed = append(result.Failed, FailedFile{Path: path, Err: fmt.Errorf("encode: %w", err)})
			continue
		}

		sum := sha256.Sum256(data)
		p := &pendingUpload{name: ItemName(path), data: data, hash: hex.EncodeToString(sum[:])}

		if !opts.Force {
			rec, err := st.GetUpload(opts.ProjectID, opts.FolderID, p.name)
			if err != nil {
				return nil, fmt.Errorf("get upload record: %w", err)
			}
			if rec != nil && rec.Hash == p.hash {
				result.Skipped = append(result.Skipped, p.name)
				continue
			}
		}
		pending[p.name] = p
	}

	if len(pending) == 0 {
		sort.Strings(result.Skipped)
		return result, nil
	}

	names := make([]string, 0, len(pending))
	for name := range pending {
		names = append(names, name)
	}
	sort.Strings(names)

	urls := make(map[string]string, len(names))
	for start := 0; start < len(names); start += urlBatchSize {
		end := min(start+urlBatchSize, len(names))
		resp, err := client.GetUploadURLs(ctx, opts.ProjectID, opts.FolderID, names[start:end])
		if err != nil {
			return nil, fmt.Errorf("get upload urls: %w", err)
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
	var done int

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, name := range names {
		url, ok := urls[name]
		if !ok {
			continue
		}
		p := pending[name]
		g.Go(func() error {
			if err := client.PutObject(gctx, url, p.data); err != nil {
				return fmt.Errorf("upload %s: %w", p.name, err)
			}
			if err := st.RecordUpload(&models.UploadRecord{
				ProjectID:  opts.ProjectID,
				FolderID:   opts.FolderID,
				Name:       p.name,
				Hash:       p.hash,
				UploadedAt: time.Now(),
			}); err != nil {
				return fmt.Errorf("record upload %s: %w", p.name, err)
			}

			mu.Lock()
			result.Uploaded = append(result.Uploaded, p.name)
			done++
			progress("uploading", done, len(urls))
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	sort.Strings(result.Uploaded)
	sort.Strings(result.Skipped)
	sort.Strings(result.Missing)
	return result, nil
}
