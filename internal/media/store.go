// Package media stores admin-uploaded product images under the configured
// media directory and hands back the public /media/ path.
package media

import (
	"fmt"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

type Store struct {
	Dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Store{Dir: dir}, nil
}

var allowedExt = map[string]bool{".jpg": true, ".jpeg": true, ".png": true, ".webp": true}

// SaveUpload writes an uploaded image and returns its serving path.
func (s *Store) SaveUpload(c *fiber.Ctx, fh *multipart.FileHeader) (string, error) {
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	if !allowedExt[ext] {
		return "", fmt.Errorf("unsupported image type %q", ext)
	}
	name := uuid.NewString() + ext
	if err := c.SaveFile(fh, filepath.Join(s.Dir, name)); err != nil {
		return "", err
	}
	return "/media/" + name, nil
}
