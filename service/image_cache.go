package service

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"sync"
	"time"
)

const imageCacheDir = "cache/images"

// ImageCache resolves a remote image URL to a session-scoped blob handle
// backed by a persistent on-disk store keyed by the original URL. Entries
// never expire; the only invalidation signal is an explicit force refresh.
// Implements ImageCacheInterface.
type ImageCache struct {
	store    *HandleStore
	client   *http.Client
	dir      string
	initOnce sync.Once
	initErr  error
}

// NewImageCache creates an ImageCache over the given handle store
func NewImageCache(store *HandleStore) *ImageCache {
	return &ImageCache{
		store:  store,
		client: &http.Client{Timeout: 30 * time.Second},
		dir:    imageCacheDir,
	}
}

// Ensure ImageCache implements ImageCacheInterface
var _ ImageCacheInterface = (*ImageCache)(nil)

// Resolve returns a freshly minted blob handle over the cached bytes for
// url, fetching and storing them on a miss (or when forceRefresh is set).
// Any failure along the way degrades gracefully: the original url is
// returned unchanged so callers can still load the image directly from the
// network. Never returns an error. Each call leaves a new handle
// outstanding that the caller is responsible for releasing.
func (c *ImageCache) Resolve(ctx context.Context, url string, forceRefresh bool) string {
	if url == "" {
		return ""
	}
	handle, err := c.resolve(ctx, url, forceRefresh)
	if err != nil {
		log.Printf("⚠️  Image cache degraded to direct URL for %s: %v", url, err)
		return url
	}
	return handle
}

func (c *ImageCache) resolve(ctx context.Context, url string, forceRefresh bool) (string, error) {
	c.initOnce.Do(func() {
		c.initErr = os.MkdirAll(c.dir, 0755)
	})
	if c.initErr != nil {
		return "", fmt.Errorf("failed to open image cache store: %w", c.initErr)
	}

	path := filepath.Join(c.dir, cacheKey(url))

	if !forceRefresh {
		// Read errors are treated as a miss, not a failure
		if data, err := os.ReadFile(path); err == nil {
			return c.store.Put(data, sniffContentType(data)), nil
		}
	}

	data, err := c.fetch(ctx, url)
	if err != nil {
		return "", err
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write image cache entry: %w", err)
	}
	log.Printf("✓ Image cached: %s (%d bytes)", url, len(data))

	return c.store.Put(data, sniffContentType(data)), nil
}

func (c *ImageCache) fetch(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build image request: %w", err)
	}
	// Bypass intermediate HTTP caches; the on-disk store is the only cache
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("image fetch returned status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read image body: %w", err)
	}
	return data, nil
}

// cacheKey derives the store filename from the original remote URL. The key
// intentionally carries no content hash or versioning: same URL, same entry.
func cacheKey(url string) string {
	sum := sha1.Sum([]byte(url))
	return hex.EncodeToString(sum[:])
}

func sniffContentType(data []byte) string {
	if len(data) > 512 {
		return http.DetectContentType(data[:512])
	}
	return http.DetectContentType(data)
}
