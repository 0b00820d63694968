package job

import (
	"errors"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
)

var (
	ErrNotFound    = errors.New("job not found")
	ErrInvalidPath = errors.New("invalid job path")
)

// Store keeps job files in a directory.
type Store struct {
	Dir string
}

// SafePath resolves name below base, refusing anything that would
// escape it.
func SafePath(base, name string) (string, error) {
	if filepath.Separator != '/' && strings.ContainsRune(name, filepath.Separator) {
		return "", ErrInvalidPath
	}
	clean := path.Clean("/" + name)
	if clean == "/" {
		return "", ErrInvalidPath
	}
	dir := base
	if dir == "" {
		dir = "."
	}
	return filepath.Join(dir, filepath.FromSlash(clean)), nil
}

func notFound(err error) error {
	if os.IsNotExist(err) {
		return ErrNotFound
	}
	return err
}

// Open returns the named job for reading.
func (s *Store) Open(name string) (io.ReadCloser, error) {
	p, err := SafePath(s.Dir, name)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

// Put creates or replaces the named job with the contents of r.
func (s *Store) Put(name string, r io.Reader) error {
	p, err := SafePath(s.Dir, name)
	if err != nil {
		return err
	}
	err = os.MkdirAll(filepath.Dir(p), 0755)
	if err != nil {
		return err
	}

	// written beside the target and renamed, so a failed upload leaves
	// any previous version in place; List skips the dotfile meanwhile
	f, err := os.CreateTemp(filepath.Dir(p), ".put-*")
	if err != nil {
		return err
	}
	_, err = io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil {
		err = os.Rename(f.Name(), p)
	}
	if err != nil {
		os.Remove(f.Name())
	}
	return err
}

func (s *Store) Delete(name string) error {
	p, err := SafePath(s.Dir, name)
	if err != nil {
		return err
	}
	return notFound(os.Remove(p))
}

// List returns the names of all jobs, sorted, using '/' separators.
func (s *Store) List() ([]string, error) {
	var names []string
	err := filepath.Walk(s.Dir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || strings.HasPrefix(info.Name(), ".") {
			return nil
		}
		rel, err := filepath.Rel(s.Dir, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}
