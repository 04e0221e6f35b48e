package service

import "context"

// ImageCacheInterface defines the contract for background image resolution
type ImageCacheInterface interface {
	Resolve(ctx context.Context, url string, forceRefresh bool) string
}
