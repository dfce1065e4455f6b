package models

import "time"

// UploadRecord is a journal entry for an annotation uploaded to a project.
type UploadRecord struct {
	ProjectID  int       `json:"project_id"`
	FolderID   int       `json:"folder_id"`
	Name       string    `json:"name"`
	Hash       string    `json:"hash"`
	UploadedAt time.Time `json:"uploaded_at"`
}

// CachedCatalog is a project's class catalog as last fetched from the server.
type CachedCatalog struct {
	ProjectID int                `json:"project_id"`
	Classes   []*AnnotationClass `json:"classes"`
	FetchedAt time.Time          `json:"fetched_at"`
}
