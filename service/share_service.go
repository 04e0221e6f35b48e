package service

import (
	"bytes"
	"context"
	"fmt"
	"log"

	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

// ShareService delivers generated contract documents through Google Drive:
// the PDF is uploaded, opened to anyone with the link, and the view link is
// handed back as the share result.
// Implements ShareServiceInterface.
type ShareService struct {
	client   *drive.Service
	folderID string
}

// NewShareService creates a ShareService from a Service Account JSON file.
// folderID is optional; when set, uploads land in that Drive folder.
func NewShareService(credentialsPath, folderID string) (*ShareService, error) {
	ctx := context.Background()

	driveService, err := drive.NewService(ctx, option.WithCredentialsFile(credentialsPath))
	if err != nil {
		return nil, fmt.Errorf("failed to create drive service: %w", err)
	}

	return &ShareService{
		client:   driveService,
		folderID: folderID,
	}, nil
}

// Ensure ShareService implements ShareServiceInterface
var _ ShareServiceInterface = (*ShareService)(nil)

// Available reports whether the share mechanism is usable
func (s *ShareService) Available() bool {
	return s != nil && s.client != nil
}

// SharePDF uploads the document with the accompanying note and returns a
// link anyone can open
func (s *ShareService) SharePDF(ctx context.Context, filename string, data []byte, note string) (string, error) {
	file := &drive.File{
		Name:        filename,
		Description: note,
		MimeType:    "application/pdf",
	}
	if s.folderID != "" {
		file.Parents = []string{s.folderID}
	}

	created, err := s.client.Files.Create(file).
		Media(bytes.NewReader(data), googleapi.ContentType("application/pdf")).
		Fields("id, webViewLink").
		Context(ctx).
		Do()
	if err != nil {
		return "", fmt.Errorf("failed to upload document: %w", err)
	}

	_, err = s.client.Permissions.Create(created.Id, &drive.Permission{
		Type: "anyone",
		Role: "reader",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to open document for sharing: %w", err)
	}

	link := created.WebViewLink
	if link == "" {
		link = fmt.Sprintf("https://drive.google.com/file/d/%s/view", created.Id)
	}
	log.Printf("📤 Shared %s: %s", filename, link)
	return link, nil
}
