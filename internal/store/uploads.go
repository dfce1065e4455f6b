package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/annohub/anno/internal/models"
	bolt "go.etcd.io/bbolt"
)

// uploadKey returns the journal key "project:folder:name".
func uploadKey(projectID, folderID int, name string) []byte {
	return []byte(fmt.Sprintf("%d:%d:%s", projectID, folderID, name))
}

// RecordUpload stores or replaces a journal entry.
func (s *Store) RecordUpload(rec *models.UploadRecord) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketUploads)
		if bucket == nil {
			return fmt.Errorf("uploads bucket not found")
		}

		data, err := json.Marshal(rec)
		if err != nil {
			return fmt.Errorf("marshal upload record: %w", err)
		}
		return bucket.Put(uploadKey(rec.ProjectID, rec.FolderID, rec.Name), data)
	})
}

// GetUpload returns the journal entry for an item. Returns (nil, nil) if the
// item was never uploaded.
func (s *Store) GetUpload(projectID, folderID int, name string) (*models.UploadRecord, error) {
	var rec *models.UploadRecord

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketUploads)
		if bucket == nil {
			return nil
		}

		data := bucket.Get(uploadKey(projectID, folderID, name))
		if data == nil {
			return nil
		}

		rec = &models.UploadRecord{}
		return json.Unmarshal(data, rec)
	})
	if err != nil {
		return nil, err
	}

	return rec, nil
}

// ListUploads returns every journal entry of a project, sorted by folder and
// then name.
func (s *Store) ListUploads(projectID int) ([]*models.UploadRecord, error) {
	var records []*models.UploadRecord
	prefix := []byte(fmt.Sprintf("%d:", projectID))

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketUploads)
		if bucket == nil {
			return nil
		}

		c := bucket.Cursor()
		for k, v := c.Seek(prefix); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
			var rec models.UploadRecord
			if err := json.Unmarshal(v, &rec); err != nil {
				return fmt.Errorf("unmarshal upload record: %w", err)
			}
			records = append(records, &rec)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(records, func(i, j int) bool {
		if records[i].FolderID != records[j].FolderID {
			return records[i].FolderID < records[j].FolderID
		}
		return records[i].Name < records[j].Name
	})

	return records, nil
}
