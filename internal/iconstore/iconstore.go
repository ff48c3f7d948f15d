// Package iconstore keeps vessel icon images on disk, keyed by vessel id.
package iconstore

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/peterbourgon/diskv/v3"
)

// MaxImageSize bounds a single icon image.
const MaxImageSize = 2 << 20

var (
	ErrNotFound    = errors.New("icon not found")
	ErrNotAnImage  = errors.New("icon data is not an image")
	ErrImageTooBig = fmt.Errorf("icon larger than %d bytes", MaxImageSize)
)

type Store struct {
	d *diskv.Diskv
}

func New(basePath string) *Store {
	return &Store{d: diskv.New(diskv.Options{
		BasePath:          basePath,
		AdvancedTransform: keyToPath,
		InverseTransform:  pathToKey,
		CacheSizeMax:      4 << 20,
	})}
}

// keyToPath shards icons into directories named after the first two
// characters of the vessel id.
func keyToPath(key string) *diskv.PathKey {
	if len(key) < 2 {
		return &diskv.PathKey{FileName: key}
	}
	return &diskv.PathKey{Path: []string{key[:2]}, FileName: key}
}

func pathToKey(pk *diskv.PathKey) string {
	return pk.FileName
}

func validKey(id string) error {
	if id == "" || strings.ContainsAny(id, `/\.`) {
		return fmt.Errorf("invalid vessel id %q", id)
	}
	return nil
}

// Put stores image as the icon of the vessel.
func (s *Store) Put(vesselID string, image []byte) error {
	if err := validKey(vesselID); err != nil {
		return err
	}
	if len(image) > MaxImageSize {
		return ErrImageTooBig
	}
	if !strings.HasPrefix(http.DetectContentType(image), "image/") {
		return ErrNotAnImage
	}
	if err := s.d.Write(vesselID, image); err != nil {
		return fmt.Errorf("failed to write icon: %w", err)
	}
	return nil
}

// Get returns the icon bytes and their detected content type.
func (s *Store) Get(vesselID string) ([]byte, string, error) {
	if err := validKey(vesselID); err != nil {
		return nil, "", err
	}
	if !s.d.Has(vesselID) {
		return nil, "", ErrNotFound
	}
	data, err := s.d.Read(vesselID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read icon: %w", err)
	}
	return data, http.DetectContentType(data), nil
}

func (s *Store) Has(vesselID string) bool {
	return validKey(vesselID) == nil && s.d.Has(vesselID)
}

// Delete removes the icon. Deleting a missing icon is not an error.
func (s *Store) Delete(vesselID string) error {
	if !s.Has(vesselID) {
		return nil
	}
	if err := s.d.Erase(vesselID); err != nil {
		return fmt.Errorf("failed to delete icon: %w", err)
	}
	return nil
}

// Prune removes icons whose vessel no longer exists and returns how many went.
func (s *Store) Prune(ctx context.Context, keep map[string]bool) (int, error) {
	var orphans []string
	for key := range s.d.Keys(ctx.Done()) {
		if !keep[key] {
			orphans = append(orphans, key)
		}
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	for _, key := range orphans {
		if err := s.d.Erase(key); err != nil {
			return 0, fmt.Errorf("failed to prune icon %s: %w", key, err)
		}
	}
	return len(orphans), nil
}
