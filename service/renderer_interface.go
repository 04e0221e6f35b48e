package service

import "context"

// PagePrinterInterface defines the contract for the physical print path
type PagePrinterInterface interface {
	PrintHTML(ctx context.Context, html string, paperWidthIn, paperHeightIn float64, landscape bool) ([]byte, error)
}

// PageRasterizerInterface defines the contract for export page rasterization
type PageRasterizerInterface interface {
	CapturePage(ctx context.Context, html string, widthPx, heightPx int, scale float64) ([]byte, error)
}
