package memory

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

const imageURLPrefix = "memory://images/"

// Images is an in-memory domain.ImageStore.
type Images struct {
	mu     sync.Mutex
	images map[string][]byte
}

// NewImages creates an empty image store.
func NewImages() *Images {
	return &Images{images: make(map[string][]byte)}
}

// Upload keeps a copy of image and returns a memory:// URL for it.
func (s *Images) Upload(_ context.Context, image []byte) (string, error) {
	if len(image) == 0 {
		return "", errors.New("upload image: empty image")
	}
	url := imageURLPrefix + uuid.NewString() + ".jpg"

	s.mu.Lock()
	defer s.mu.Unlock()
	s.images[url] = append([]byte(nil), image...)
	return url, nil
}

// Get returns the image stored under url.
func (s *Images) Get(url string) ([]byte, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	img, ok := s.images[url]
	return img, ok
}
