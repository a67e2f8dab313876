package fetch

import (
	"context"
	"os"
	"path/filepath"

	"github.com/pantera/orderprep/backend-go/internal/source"
)

// LocalFetcher reads source files from a data directory on disk.
type LocalFetcher struct {
	dir string
}

func NewLocalFetcher(dir string) *LocalFetcher {
	return &LocalFetcher{dir: dir}
}

func (l *LocalFetcher) Fetch(ctx context.Context, name string) ([]source.Row, error) {
	f, err := os.Open(filepath.Join(l.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	defer f.Close()
	return source.ReadRows(f)
}

var _ Fetcher = (*LocalFetcher)(nil)
