package iconstore

import (
	"context"
	"errors"
	"testing"
)

// smallest valid PNG header is enough for content sniffing
var pngData = append([]byte("\x89PNG\r\n\x1a\n"), make([]byte, 32)...)

func TestPutGetDelete(t *testing.T) {
	s := New(t.TempDir())
	id := "a1b2c3d4-0000-4000-8000-000000000000"

	if _, _, err := s.Get(id); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get() before Put error = %v, want ErrNotFound", err)
	}
	if err := s.Put(id, pngData); err != nil {
		t.Fatalf("Put() error = %v", err)
	}
	data, ctype, err := s.Get(id)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if len(data) != len(pngData) || ctype != "image/png" {
		t.Errorf("Get() = %d bytes, %q", len(data), ctype)
	}
	if err := s.Delete(id); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if s.Has(id) {
		t.Error("icon still present after Delete")
	}
	if err := s.Delete(id); err != nil {
		t.Errorf("Delete() of missing icon error = %v", err)
	}
}

func TestPut_Rejects(t *testing.T) {
	s := New(t.TempDir())
	tests := []struct {
		name string
		id   string
		data []byte
		want error
	}{
		{"not an image", "vessel1", []byte("hello world"), ErrNotAnImage},
		{"too big", "vessel1", make([]byte, MaxImageSize+1), ErrImageTooBig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := s.Put(tt.id, tt.data); !errors.Is(err, tt.want) {
				t.Errorf("Put() error = %v, want %v", err, tt.want)
			}
		})
	}
	if err := s.Put("../escape", pngData); err == nil {
		t.Error("Put() accepted a path traversal key")
	}
}

func TestPrune(t *testing.T) {
	s := New(t.TempDir())
	for _, id := range []string{"keep1", "gone1", "gone2"} {
		if err := s.Put(id, pngData); err != nil {
			t.Fatal(err)
		}
	}

	n, err := s.Prune(context.Background(), map[string]bool{"keep1": true})
	if err != nil {
		t.Fatalf("Prune() error = %v", err)
	}
	if n != 2 {
		t.Errorf("Prune() removed %d, want 2", n)
	}
	if !s.Has("keep1") || s.Has("gone1") {
		t.Error("Prune() removed the wrong icons")
	}
}
