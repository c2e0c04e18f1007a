package storage

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"ratehousing_backend/pkg/utils/image"
	"ratehousing_backend/pkg/utils/validation"
)

// LocalStorage writes photos into a directory that fiber serves at /uploads.
type LocalStorage struct {
	Dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("could not create uploads directory: %v", err)
	}
	return &LocalStorage{Dir: dir}, nil
}

func (s *LocalStorage) Save(file *multipart.FileHeader) (string, error) {
	if err := validation.ValidateImage(file); err != nil {
		return "", err
	}

	buf, ext, err := image.Process(file)
	if err != nil {
		return "", err
	}

	// Timestamp plus a random suffix so concurrent uploads never collide.
	name := fmt.Sprintf("%d-%s%s", time.Now().UnixMilli(), uuid.NewString()[:8], ext)

	if err := os.WriteFile(filepath.Join(s.Dir, name), buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("could not save file: %v", err)
	}

	return "/uploads/" + name, nil
}

func (s *LocalStorage) Delete(url string) error {
	// Only the basename is trusted; the URL may be absolute or relative.
	name := filepath.Base(strings.TrimPrefix(url, "/uploads/"))
	if name == "" || name == "." || name == "/" {
		return fmt.Errorf("invalid upload url: %s", url)
	}
	return os.Remove(filepath.Join(s.Dir, name))
}
