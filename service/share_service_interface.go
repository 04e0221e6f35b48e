package service

import "context"

// ShareServiceInterface defines the contract for the export share path
type ShareServiceInterface interface {
	Available() bool
	SharePDF(ctx context.Context, filename string, data []byte, note string) (string, error)
}
