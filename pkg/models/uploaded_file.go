package models

import (
	"errors"
	"mime"
	"path/filepath"
	"strings"
	"sync"
)

// Supported upload content types
const (
	ContentTypeText = "text/plain"
	ContentTypePDF  = "application/pdf"
	ContentTypeDOCX = "application/vnd.openxmlformats-officedocument.wordprocessingml.document"
)

// ErrPayloadConsumed is returned when an uploaded payload is read a second time
var ErrPayloadConsumed = errors.New("uploaded file payload already consumed")

var extensionTypes = map[string]string{
	".txt":  ContentTypeText,
	".pdf":  ContentTypePDF,
	".docx": ContentTypeDOCX,
}

// UploadedFile is a single uploaded document. The payload can be taken exactly once.
type UploadedFile struct {
	Name        string
	ContentType string
	Size        int

	mu       sync.Mutex
	payload  []byte
	consumed bool
}

// NewUploadedFile wraps an upload, normalizing the declared content type
func NewUploadedFile(name, declaredType string, payload []byte) *UploadedFile {
	return &UploadedFile{
		Name:        name,
		ContentType: NormalizeContentType(name, declaredType),
		Size:        len(payload),
		payload:     payload,
	}
}

// Consume hands over the payload and releases the file's reference to it
func (f *UploadedFile) Consume() ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.consumed {
		return nil, ErrPayloadConsumed
	}
	data := f.payload
	f.payload = nil
	f.consumed = true
	return data, nil
}

// Consumed reports whether the payload has been taken
func (f *UploadedFile) Consumed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.consumed
}

// NormalizeContentType strips media type parameters and falls back to the
// file extension when the client did not declare a usable type.
func NormalizeContentType(name, declared string) string {
	mediaType := strings.ToLower(strings.TrimSpace(declared))
	if parsed, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = parsed
	}

	if mediaType == "" || mediaType == "application/octet-stream" {
		if inferred, ok := extensionTypes[strings.ToLower(filepath.Ext(name))]; ok {
			return inferred
		}
	}
	return mediaType
}
