package blobstore

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
)

// LocalStorage stores objects as files under a root directory. Meant for
// development and tests; production uses S3.
type LocalStorage struct {
	root string
}

func NewLocalStorage(root string) (*LocalStorage, error) {
	if root == "" {
		return nil, errors.Join(ErrStorage, errors.New("root directory is required"))
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, errors.Join(ErrStorage, err)
	}
	return &LocalStorage{root: root}, nil
}

func (l *LocalStorage) path(key string) string {
	return filepath.Join(l.root, filepath.FromSlash(key))
}

func (l *LocalStorage) Put(ctx context.Context, key string, r io.Reader, contentType string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	dst := l.path(key)
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return errors.Join(ErrStorage, err)
	}

	f, err := os.Create(dst)
	if err != nil {
		return errors.Join(ErrStorage, err)
	}

	if _, err := io.Copy(f, r); err != nil {
		_ = f.Close()
		_ = os.Remove(dst)
		return errors.Join(ErrStorage, err)
	}
	if err := f.Close(); err != nil {
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (l *LocalStorage) Get(ctx context.Context, key string) (io.ReadCloser, error) {
	if err := validateKey(key); err != nil {
		return nil, err
	}

	f, err := os.Open(l.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, errors.Join(ErrStorage, err)
	}
	return f, nil
}

func (l *LocalStorage) Delete(ctx context.Context, key string) error {
	if err := validateKey(key); err != nil {
		return err
	}

	if err := os.Remove(l.path(key)); err != nil {
		if os.IsNotExist(err) {
			return ErrNotFound
		}
		return errors.Join(ErrStorage, err)
	}
	return nil
}

func (l *LocalStorage) Exists(ctx context.Context, key string) (bool, error) {
	if err := validateKey(key); err != nil {
		return false, err
	}

	_, err := os.Stat(l.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, errors.Join(ErrStorage, err)
	}
	return true, nil
}
