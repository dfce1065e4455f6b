package models

import "time"

// Project types supported by the platform.
const (
	ProjectTypeVector = "Vector"
	ProjectTypePixel  = "Pixel"
	ProjectTypeVideo  = "Video"
)

// Project is an annotation project.
type Project struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	CreatedAt   time.Time `json:"created_at"`
}

// Folder groups items inside a project. The root folder has ID 0 or the
// server-assigned root ID and an empty name.
type Folder struct {
	ID        int    `json:"id"`
	ProjectID int    `json:"project_id"`
	Name      string `json:"name"`
}

// Image is an item registered in a project folder.
type Image struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	FolderID         int    `json:"folder_id"`
	AnnotationStatus string `json:"annotation_status"`
}
