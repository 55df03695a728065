package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/rileyhilliard/lsview/internal/errors"
	"github.com/rileyhilliard/lsview/internal/lock"
)

// DefaultLockTimeout bounds how long Update waits for another writer.
const DefaultLockTimeout = 10 * time.Second

// FileStore keeps one YAML file per user and key: <dir>/<user>/<key>.yaml.
type FileStore struct {
	Dir         string
	LockTimeout time.Duration
}

// NewFileStore returns a file store rooted at dir.
func NewFileStore(dir string) *FileStore {
	return &FileStore{Dir: dir, LockTimeout: DefaultLockTimeout}
}

func (s *FileStore) path(user, key string) (string, error) {
	if err := checkName("user", user); err != nil {
		return "", err
	}
	if err := checkName("key", key); err != nil {
		return "", err
	}
	return filepath.Join(s.Dir, user, key+".yaml"), nil
}

// Load implements Store.
func (s *FileStore) Load(_ context.Context, user, key string) (map[string]any, error) {
	path, err := s.path(user, key)
	if err != nil {
		return nil, err
	}
	return readDoc(path)
}

func readDoc(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Can't read %s", path), "Check file permissions")
	}
	var doc map[string]any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("%s is not valid YAML", path),
			"Fix or delete the file; it is recreated on the next save")
	}
	return normalizeDoc(doc), nil
}

// Update implements Store. The file is replaced atomically while the lock
// is held.
func (s *FileStore) Update(ctx context.Context, user, key string, fn UpdateFunc) error {
	path, err := s.path(user, key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Can't create %s", filepath.Dir(path)), "Check options.dir")
	}

	l, err := lock.Acquire(ctx, path, s.LockTimeout, "update "+key)
	if err != nil {
		return err
	}
	defer l.Release()

	doc, err := readDoc(path)
	if err != nil {
		return err
	}
	if doc == nil {
		doc = map[string]any{}
	}
	doc, err = fn(doc)
	if err != nil {
		return err
	}
	return writeDoc(path, doc)
}

func writeDoc(path string, doc map[string]any) error {
	data, err := yaml.Marshal(doc)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore, "Can't encode settings", "")
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrStore,
			fmt.Sprintf("Can't write %s", path), "Check file permissions")
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return errors.WrapWithCode(err, errors.ErrStore, fmt.Sprintf("Can't write %s", path), "")
	}
	if err := tmp.Close(); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore, fmt.Sprintf("Can't write %s", path), "")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return errors.WrapWithCode(err, errors.ErrStore, fmt.Sprintf("Can't replace %s", path), "")
	}
	return nil
}

// Close implements Store.
func (s *FileStore) Close() error { return nil }
