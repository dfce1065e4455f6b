package store

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/annohub/anno/internal/models"
	bolt "go.etcd.io/bbolt"
)

func projectKey(projectID int) []byte {
	return []byte(strconv.Itoa(projectID))
}

// SaveCatalog replaces the cached class catalog of a project.
func (s *Store) SaveCatalog(projectID int, classes []*models.AnnotationClass) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketCatalogs)
		if bucket == nil {
			return fmt.Errorf("catalogs bucket not found")
		}

		if classes == nil {
			classes = []*models.AnnotationClass{}
		}
		data, err := json.Marshal(&models.CachedCatalog{
			ProjectID: projectID,
			Classes:   classes,
			FetchedAt: time.Now(),
		})
		if err != nil {
			return fmt.Errorf("marshal catalog: %w", err)
		}

		return bucket.Put(projectKey(projectID), data)
	})
}

// GetCatalog returns the cached class catalog of a project, or ErrNotFound
// if it has never been pulled.
func (s *Store) GetCatalog(projectID int) (*models.CachedCatalog, error) {
	var catalog *models.CachedCatalog

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketCatalogs)
		if bucket == nil {
			return nil
		}

		data := bucket.Get(projectKey(projectID))
		if data == nil {
			return nil
		}

		catalog = &models.CachedCatalog{}
		if err := json.Unmarshal(data, catalog); err != nil {
			return fmt.Errorf("unmarshal catalog: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if catalog == nil {
		return nil, fmt.Errorf("catalog for project %d: %w", projectID, ErrNotFound)
	}

	return catalog, nil
}

// DeleteCatalog removes a project's cached catalog. No error if absent.
func (s *Store) DeleteCatalog(projectID int) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketCatalogs)
		if bucket == nil {
			return nil
		}
		return bucket.Delete(projectKey(projectID))
	})
}

var templatesKey = []byte("team")

// SaveTemplates replaces the cached template list.
func (s *Store) SaveTemplates(templates []*models.Template) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTemplates)
		if bucket == nil {
			return fmt.Errorf("templates bucket not found")
		}

		if templates == nil {
			templates = []*models.Template{}
		}
		data, err := json.Marshal(templates)
		if err != nil {
			return fmt.Errorf("marshal templates: %w", err)
		}
		return bucket.Put(templatesKey, data)
	})
}

// GetTemplates returns the cached template list. An empty list is returned
// if templates were never pulled.
func (s *Store) GetTemplates() ([]*models.Template, error) {
	var templates []*models.Template

	err := s.db.View(func(tx *bolt.Tx) error {
		bucket := tx.Bucket(bucketTemplates)
		if bucket == nil {
			return nil
		}
		data := bucket.Get(templatesKey)
		if data == nil {
			return nil
		}
		return json.Unmarshal(data, &templates)
	})
	if err != nil {
		return nil, fmt.Errorf("get templates: %w", err)
	}

	return templates, nil
}
