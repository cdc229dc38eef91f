package storage

import (
	"fmt"
)

// MaxObjectSize caps a single stored object at 25MB.
const MaxObjectSize int64 = 25 * 1024 * 1024

// AllowedContentTypes defines the MIME types that may be stored.
var AllowedContentTypes = map[string]bool{
	"application/pdf": true,
}

// ValidateObject checks content type and size before an upload.
func ValidateObject(contentType string, size int64) error {
	if !AllowedContentTypes[contentType] {
		return fmt.Errorf("content type %q is not allowed", contentType)
	}
	if size <= 0 {
		return fmt.Errorf("object is empty")
	}
	if size > MaxObjectSize {
		return fmt.Errorf("object size %d exceeds maximum of %d bytes", size, MaxObjectSize)
	}
	return nil
}
