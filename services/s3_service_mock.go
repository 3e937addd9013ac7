package services

import (
	"context"
	"fmt"
	"sync"
)

// MockS3Service keeps objects in memory for tests
type MockS3Service struct {
	objects      map[string][]byte
	contentTypes map[string]string
	mu           sync.RWMutex

	// UploadErr, when set, is returned by every UploadObject call.
	UploadErr error
}

// NewMockS3Service creates a new mock S3 service
func NewMockS3Service() *MockS3Service {
	return &MockS3Service{
		objects:      make(map[string][]byte),
		contentTypes: make(map[string]string),
	}
}

// UploadObject stores a copy of body under key
func (m *MockS3Service) UploadObject(ctx context.Context, key string, body []byte, contentType string) error {
	if m.UploadErr != nil {
		return m.UploadErr
	}

	data := make([]byte, len(body))
	copy(data, body)

	m.mu.Lock()
	m.objects[key] = data
	m.contentTypes[key] = contentType
	m.mu.Unlock()
	return nil
}

// GetPresignedURL returns a fake link for stored keys
func (m *MockS3Service) GetPresignedURL(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", nil
	}

	m.mu.RLock()
	_, exists := m.objects[key]
	m.mu.RUnlock()

	if !exists {
		return "", fmt.Errorf("file not found in mock S3: %s", key)
	}
	return fmt.Sprintf("https://test-bucket.s3.sa-east-1.amazonaws.com/%s?mock=true", key), nil
}

// DeleteFile removes key from the mock
func (m *MockS3Service) DeleteFile(ctx context.Context, key string) error {
	m.mu.Lock()
	delete(m.objects, key)
	delete(m.contentTypes, key)
	m.mu.Unlock()
	return nil
}

// Object returns the stored bytes and content type of key
func (m *MockS3Service) Object(key string) ([]byte, string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	data, ok := m.objects[key]
	return data, m.contentTypes[key], ok
}

// Keys lists every stored key
func (m *MockS3Service) Keys() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	keys := make([]string, 0, len(m.objects))
	for k := range m.objects {
		keys = append(keys, k)
	}
	return keys
}
