package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"
)

// AttachmentStore кладёт загруженные файлы в локальный media-каталог и
// возвращает публичный URL. Имя файла генерируется, расширение берётся
// по содержимому, а не по имени от клиента.
type AttachmentStore struct {
	dir     string
	baseURL string
}

func NewAttachmentStore(dir, baseURL string) (*AttachmentStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create media dir: %w", err)
	}
	return &AttachmentStore{dir: dir, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (s *AttachmentStore) Save(name string, data []byte) (string, error) {
	ext := mimetype.Detect(data).Extension()
	if ext == "" {
		ext = filepath.Ext(name)
	}
	filename := uuid.NewString() + ext

	if err := os.WriteFile(filepath.Join(s.dir, filename), data, 0o644); err != nil {
		return "", fmt.Errorf("write attachment: %w", err)
	}
	return s.baseURL + "/" + filename, nil
}
