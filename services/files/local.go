package filesvc

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/courcompanion/backend/core"
)

type localService struct {
	root string
}

var _ core.FileStore = (*localService)(nil)

// NewLocalService stores files under root and returns file:// URLs.
func NewLocalService(root string) *localService {
	return &localService{root: root}
}

func (svc *localService) Save(ctx context.Context, key, contentType string, content []byte) (string, error) {
	path := filepath.Join(svc.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.Wrap(err, "creating directory")
	}
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return "", errors.Wrap(err, "writing file")
	}
	return "file://" + path, nil
}

func (svc *localService) Delete(ctx context.Context, key string) error {
	path := filepath.Join(svc.root, filepath.FromSlash(key))
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing file")
	}
	return nil
}
