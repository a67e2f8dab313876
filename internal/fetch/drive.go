package fetch

import (
	"context"
	"fmt"

	"golang.org/x/oauth2/google"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/option"

	"github.com/pantera/orderprep/backend-go/internal/source"
)

// DriveFetcher pulls source files from a Google Drive folder the accounting
// exports are dropped into.
type DriveFetcher struct {
	srv      *drive.Service
	folderID string
}

func NewDriveFetcher(ctx context.Context, credentialsJSON, folderID string) (*DriveFetcher, error) {
	config, err := google.JWTConfigFromJSON(
		[]byte(credentialsJSON),
		drive.DriveReadonlyScope,
	)
	if err != nil {
		return nil, fmt.Errorf("unable to parse credentials: %w", err)
	}

	srv, err := drive.NewService(ctx, option.WithHTTPClient(config.Client(ctx)))
	if err != nil {
		return nil, fmt.Errorf("unable to build Drive client: %w", err)
	}

	if folderID == "" {
		folderID = "root"
	}
	return &DriveFetcher{srv: srv, folderID: folderID}, nil
}

func (d *DriveFetcher) Fetch(ctx context.Context, name string) ([]source.Row, error) {
	result, err := d.srv.Files.List().
		Context(ctx).
		Q(fmt.Sprintf("'%s' in parents and name='%s' and trashed=false", d.folderID, name)).
		Fields("files(id, name)").
		Do()
	if err != nil {
		return nil, fmt.Errorf("unable to list files: %w", err)
	}
	if len(result.Files) == 0 {
		return nil, ErrNotFound
	}

	resp, err := d.srv.Files.Get(result.Files[0].Id).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("unable to download %s: %w", name, err)
	}
	defer resp.Body.Close()

	return source.ReadRows(resp.Body)
}

var _ Fetcher = (*DriveFetcher)(nil)
