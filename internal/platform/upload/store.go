// Package upload stores files attached to medical records. Uploads are routed
// by kind (lab results, imaging, documents, general) and the caller gets back
// a URL it can embed in a record field.
package upload

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

var (
	ErrObjectNotFound     = errors.New("uploaded object not found")
	ErrFileTooLarge       = errors.New("file exceeds maximum allowed size")
	ErrInvalidContentType = errors.New("content type is not allowed for this kind")
	ErrUnknownKind        = errors.New("unknown upload kind")
	ErrMissingFileName    = errors.New("file name is required")
)

// Kind routes an upload to its storage category.
type Kind string

const (
	KindLabResults Kind = "labresults"
	KindImaging    Kind = "imaging"
	KindDocuments  Kind = "documents"
	KindGeneral    Kind = "general"
)

// ParseKind validates a kind path segment.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case KindLabResults, KindImaging, KindDocuments, KindGeneral:
		return Kind(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// allowedTypes maps each kind to the MIME types it accepts. A nil entry
// accepts anything.
var allowedTypes = map[Kind]map[string]bool{
	KindLabResults: {
		"application/pdf": true,
		"image/png":       true,
		"image/jpeg":      true,
		"text/plain":      true,
	},
	KindImaging: {
		"image/png":         true,
		"image/jpeg":        true,
		"image/dicom":       true,
		"application/dicom": true,
		"application/pdf":   true,
	},
	KindDocuments: {
		"application/pdf":    true,
		"image/png":          true,
		"image/jpeg":         true,
		"text/plain":         true,
		"application/msword": true,
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	},
	KindGeneral: nil,
}

func contentTypeAllowed(kind Kind, contentType string) bool {
	allowed := allowedTypes[kind]
	if allowed == nil {
		return true
	}
	return allowed[contentType]
}

// Object describes a stored upload.
type Object struct {
	ID          string    `json:"id"`
	Kind        Kind      `json:"kind"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	Size        int64     `json:"size"`
	URL         string    `json:"url"`
	UploadedBy  string    `json:"uploaded_by,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Store is the storage backend contract.
type Store interface {
	Put(ctx context.Context, obj Object, content io.Reader) (*Object, error)
	Open(ctx context.Context, id string) (io.ReadCloser, *Object, error)
	Delete(ctx context.Context, id string) error
}

type storedObject struct {
	meta    Object
	content []byte
}

// MemoryStore is a thread-safe in-memory Store for development and tests.
type MemoryStore struct {
	maxBytes int64
	mu       sync.RWMutex
	objects  map[string]*storedObject
}

func NewMemoryStore(maxBytes int64) *MemoryStore {
	return &MemoryStore{
		maxBytes: maxBytes,
		objects:  make(map[string]*storedObject),
	}
}

// Put validates the upload, assigns an id and URL, and keeps the content in
// memory.
func (s *MemoryStore) Put(_ context.Context, obj Object, content io.Reader) (*Object, error) {
	if obj.FileName == "" {
		return nil, ErrMissingFileName
	}
	if _, err := ParseKind(string(obj.Kind)); err != nil {
		return nil, err
	}
	if !contentTypeAllowed(obj.Kind, obj.ContentType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidContentType, obj.ContentType)
	}

	data, err := io.ReadAll(io.LimitReader(content, s.maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("reading content: %w", err)
	}
	if int64(len(data)) > s.maxBytes {
		return nil, ErrFileTooLarge
	}

	obj.ID = uuid.New().String()
	obj.Size = int64(len(data))
	obj.URL = fmt.Sprintf("/api/upload/%s/%s", obj.Kind, obj.ID)
	obj.CreatedAt = time.Now().UTC()

	s.mu.Lock()
	s.objects[obj.ID] = &storedObject{meta: obj, content: data}
	s.mu.Unlock()

	out := obj
	return &out, nil
}

func (s *MemoryStore) Open(_ context.Context, id string) (io.ReadCloser, *Object, error) {
	s.mu.RLock()
	obj, ok := s.objects[id]
	s.mu.RUnlock()
	if !ok {
		return nil, nil, ErrObjectNotFound
	}
	meta := obj.meta
	return io.NopCloser(bytes.NewReader(obj.content)), &meta, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.objects[id]; !ok {
		return ErrObjectNotFound
	}
	delete(s.objects, id)
	return nil
}
