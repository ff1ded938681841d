package domain

import "context"

// File is an uploaded file held in memory.
type File struct {
	Name        string
	ContentType string
	Data        []byte
}

// Default upload folders.
const (
	FolderProfiles = "profiles"
	FolderEvents   = "events"
)

// ImageUploader stores an image in object storage and returns its public URL.
// An empty folder means FolderProfiles.
type ImageUploader interface {
	Upload(ctx context.Context, file *File, folder string) (string, error)
}
