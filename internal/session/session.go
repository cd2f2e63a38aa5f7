// Package session persists the logged-in user to a YAML file so later runs
// stay logged in.
package session

import (
	"os"
	"path/filepath"

	"github.com/go-faster/errors"
	"gopkg.in/yaml.v3"

	"github.com/xenking/kart-storefront/internal/domain/auth"
)

// FileMode is the permission of the session file. It holds a bearer token.
const FileMode os.FileMode = 0o600

type document struct {
	User *auth.UserInfo `yaml:"user"`
}

// File is a session stored at a path.
type File struct {
	path string
}

// NewFile returns a session stored at path.
func NewFile(path string) *File {
	return &File{path: path}
}

// DefaultPath returns the session file under the user config directory.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.Wrap(err, "user config dir")
	}
	return filepath.Join(dir, "kart-storefront", "session.yaml"), nil
}

// Path returns the file path.
func (f *File) Path() string {
	return f.path
}

// Load returns the saved user, or nil when no session is saved.
func (f *File) Load() (*auth.UserInfo, error) {
	data, err := os.ReadFile(f.path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "read session")
	}
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(err, "decode session")
	}
	if doc.User == nil || doc.User.Token == "" {
		return nil, nil
	}
	return doc.User, nil
}

// Save writes u, replacing any previous session atomically.
func (f *File) Save(u auth.UserInfo) error {
	data, err := yaml.Marshal(document{User: &u})
	if err != nil {
		return errors.Wrap(err, "encode session")
	}

	dir := filepath.Dir(f.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return errors.Wrap(err, "create session dir")
	}
	tmp, err := os.CreateTemp(dir, ".session-*.yaml")
	if err != nil {
		return errors.Wrap(err, "create temp file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "write session")
	}
	if err := tmp.Chmod(FileMode); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "chmod session")
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(err, "close session")
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		return errors.Wrap(err, "replace session")
	}
	return nil
}

// Clear removes the session. Clearing a missing session is not an error.
func (f *File) Clear() error {
	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return errors.Wrap(err, "remove session")
	}
	return nil
}
