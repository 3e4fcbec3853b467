package crashreports

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dmitrijs2005/launchserver/internal/filex"
)

// FSStorage keeps reports on the local filesystem.
type FSStorage struct {
	root string
}

func NewFSStorage(root string) (*FSStorage, error) {
	if root == "" {
		return nil, errors.New("crash report storage path is empty")
	}
	if _, err := filex.EnsureDir(root); err != nil {
		return nil, err
	}
	return &FSStorage{root: root}, nil
}

func (s *FSStorage) Root() string { return s.root }

func (s *FSStorage) Create(_ context.Context, user, name string, data []byte) (string, error) {
	dir, err := filex.Within(s.root, user)
	if err != nil {
		return "", err
	}
	if _, err := filex.EnsureDir(dir); err != nil {
		return "", err
	}
	path, err := filex.Within(s.root, user, name)
	if err != nil {
		return "", err
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", ErrExists
		}
		return "", err
	}
	if _, err := f.Write(data); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return "", err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return "", err
	}
	return path, nil
}

type fsEntry struct {
	path    string
	modTime time.Time
}

func (s *FSStorage) userReports(user string) ([]fsEntry, error) {
	dir, err := filex.Within(s.root, user)
	if err != nil {
		return nil, err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	var reports []fsEntry
	for _, e := range entries {
		if e.IsDir() || !strings.HasPrefix(e.Name(), FilePrefix) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		reports = append(reports, fsEntry{path: filepath.Join(dir, e.Name()), modTime: info.ModTime()})
	}
	return reports, nil
}

func (s *FSStorage) Prune(_ context.Context, user string, keep int) (int, error) {
	reports, err := s.userReports(user)
	if err != nil || len(reports) <= keep {
		return 0, err
	}

	slices.SortFunc(reports, func(a, b fsEntry) int {
		if c := a.modTime.Compare(b.modTime); c != 0 {
			return c
		}
		return strings.Compare(a.path, b.path)
	})

	var errs []error
	n := 0
	for _, r := range reports[:len(reports)-keep] {
		if err := os.Remove(r.path); err != nil {
			errs = append(errs, err)
			continue
		}
		n++
	}
	return n, errors.Join(errs...)
}

// Sweep walks one level of user directories. A failure on one file does not
// stop the walk.
func (s *FSStorage) Sweep(ctx context.Context, cutoff time.Time) (int, error) {
	users, err := os.ReadDir(s.root)
	if err != nil {
		return 0, fmt.Errorf("read storage root: %w", err)
	}

	var errs []error
	n := 0
	for _, u := range users {
		if !u.IsDir() {
			continue
		}
		if err := ctx.Err(); err != nil {
			return n, err
		}
		reports, err := s.userReports(u.Name())
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, r := range reports {
			if !r.modTime.Before(cutoff) {
				continue
			}
			if err := os.Remove(r.path); err != nil {
				errs = append(errs, err)
				continue
			}
			n++
		}
	}
	return n, errors.Join(errs...)
}
