package infrastructure

import (
	"context"
	"fmt"
	"io"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// DriveStore stores student documents in a single Google Drive folder, using a
// service account. File IDs are the opaque references kept in the documents table.
type DriveStore struct {
	service  *drive.Service
	folderID string
}

func NewDriveStore(ctx context.Context, credentialsFile, folderID string) (*DriveStore, error) {
	srv, err := drive.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(drive.DriveScope),
	)
	if err != nil {
		return nil, fmt.Errorf("create drive service: %w", err)
	}
	return &DriveStore{service: srv, folderID: folderID}, nil
}

func (d *DriveStore) Upload(ctx context.Context, name, mimeType string, r io.Reader) (string, error) {
	meta := &drive.File{Name: name}
	if d.folderID != "" {
		meta.Parents = []string{d.folderID}
	}
	created, err := d.service.Files.Create(meta).
		Media(r, googleapi.ContentType(mimeType)).
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("drive upload %q: %w", name, err)
	}
	return created.Id, nil
}

func (d *DriveStore) Download(ctx context.Context, fileID string) (io.ReadCloser, error) {
	resp, err := d.service.Files.Get(fileID).Context(ctx).Download()
	if err != nil {
		return nil, fmt.Errorf("drive download %s: %w", fileID, err)
	}
	return resp.Body, nil
}
