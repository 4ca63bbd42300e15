package file

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"feedgen/internal/application/port"
	"feedgen/internal/domain/model"
)

// Repo 输出文档写到固定路径；先写临时文件再 rename，读者不会看到半个文件
type Repo struct {
	path string
}

func New(path string) *Repo {
	return &Repo{path: path}
}

func (r *Repo) Path() string { return r.path }

func (r *Repo) SaveArtifact(ctx context.Context, rec *model.RunRecord, doc []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	dir := filepath.Dir(r.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(r.path)+".*.tmp")
	if err != nil {
		return err
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(doc); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write %s: %w", tmp.Name(), err)
	}
	if err := tmp.Sync(); err != nil {
		_ = tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), r.path)
}

func (r *Repo) LatestArtifact(ctx context.Context) ([]byte, error) {
	b, err := os.ReadFile(r.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	return b, err
}

func (r *Repo) Close() error { return nil }

var _ port.Repository = (*Repo)(nil)
