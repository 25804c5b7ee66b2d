package storage

import (
	"errors"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var (
	ErrNotAnImage = errors.New("not an image")
	ErrTooLarge   = errors.New("file too large")
)

// Store persists an uploaded cover image and returns the path it will be
// served from.
type Store interface {
	Save(file *multipart.FileHeader) (string, error)
}

// detectImageType sniffs the real content type from the file bytes; the
// client-supplied header is not trusted.
func detectImageType(file *multipart.FileHeader, maxSize int64) (string, error) {
	if file.Size > maxSize {
		return "", ErrTooLarge
	}

	src, err := file.Open()
	if err != nil {
		return "", fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	mt, err := mimetype.DetectReader(src)
	if err != nil {
		return "", fmt.Errorf("detect mime type: %w", err)
	}

	contentType := strings.Split(mt.String(), ";")[0]
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrNotAnImage
	}
	return contentType, nil
}
