package service

import "context"

// PrintRasterizerInterface defines the contract for print-quality upgrades
type PrintRasterizerInterface interface {
	RasterizeForPrint(ctx context.Context, url string) string
}
