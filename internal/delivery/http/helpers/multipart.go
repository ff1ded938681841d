package helpers

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"compassevent/internal/domain"
)

// ImageField is the multipart field that carries uploaded images.
const ImageField = "image"

// ParseMultipart parses a multipart/form-data body of at most maxBytes.
func ParseMultipart(w http.ResponseWriter, r *http.Request, maxBytes int64) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)
	if err := r.ParseMultipartForm(maxBytes); err != nil {
		return fmt.Errorf("%w: invalid multipart form: %v", domain.ErrInvalidInput, err)
	}
	return nil
}

// FormFile reads the named file part into memory. A missing part returns (nil, nil)
// so the service decides whether the file is mandatory.
func FormFile(r *http.Request, field string) (*domain.File, error) {
	f, header, err := r.FormFile(field)
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			return nil, nil
		}
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidInput, field, err)
	}
	defer f.Close()
	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("%w: read %s: %v", domain.ErrInvalidInput, field, err)
	}
	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}
	return &domain.File{Name: header.Filename, ContentType: contentType, Data: data}, nil
}
