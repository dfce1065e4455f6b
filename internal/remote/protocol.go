// Package remote implements the client side of the annotation platform's
// REST API and the presigned object-storage transfers it hands out.
package remote

import "github.com/annohub/anno/internal/models"

// CreateProjectRequest creates a project.
type CreateProjectRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Type        string `json:"type"`
}

// CreateFolderRequest creates a folder in a project.
type CreateFolderRequest struct {
	Name string `json:"name"`
}

// CreateClassesRequest creates classes in a project's catalog. Classes whose
// name already exists on the server are returned unchanged.
type CreateClassesRequest struct {
	Classes []*models.AnnotationClass `json:"classes"`
}

// AnnotationURLsRequest asks for presigned URLs for the annotations of the
// named items in a folder.
type AnnotationURLsRequest struct {
	FolderID int      `json:"folder_id"`
	Names    []string `json:"names"`
}

// AnnotationURLsResponse maps item names to presigned URLs. Names that are
// not registered items of the folder are listed in Missing.
type AnnotationURLsResponse struct {
	URLs    map[string]string `json:"urls"`
	Missing []string          `json:"missing"`
}

// ErrorResponse is the structured error format returned by the server.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Detail  map[string]string `json:"detail,omitempty"`
}
