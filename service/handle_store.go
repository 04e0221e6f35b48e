package service

import (
	"log"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// HandleBasePath is the URL prefix under which blob handles are served
const HandleBasePath = "/assets/blob/"

// BlobHandle is an ephemeral, session-scoped reference to in-memory binary
// image data. Handles are usable as image sources via the asset endpoint and
// must be explicitly released to free memory.
type BlobHandle struct {
	ID          string
	ContentType string
	Data        []byte
	CreatedAt   time.Time
}

// HandleStore keeps all outstanding blob handles for the current process.
// It is the Go-side equivalent of the browser's object-URL table: minting is
// cheap, nothing expires on its own, and the caller owns the release.
type HandleStore struct {
	mu      sync.RWMutex
	blobs   map[string]*BlobHandle
	counter uint64
}

// NewHandleStore creates an empty HandleStore
func NewHandleStore() *HandleStore {
	return &HandleStore{
		blobs: make(map[string]*BlobHandle),
	}
}

// Put registers the bytes under a freshly minted handle and returns the
// handle's serving path (e.g. "/assets/blob/blob_17_3")
func (s *HandleStore) Put(data []byte, contentType string) string {
	n := atomic.AddUint64(&s.counter, 1)
	h := &BlobHandle{
		ID:          blobID(n),
		ContentType: contentType,
		Data:        data,
		CreatedAt:   time.Now(),
	}
	s.mu.Lock()
	s.blobs[h.ID] = h
	s.mu.Unlock()
	return HandleBasePath + h.ID
}

func blobID(n uint64) string {
	return "blob_" + time.Now().Format("20060102150405") + "_" + itoa(n)
}

func itoa(n uint64) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

// Get returns the handle registered under the given id or serving path
func (s *HandleStore) Get(idOrPath string) (*BlobHandle, bool) {
	id := strings.TrimPrefix(idOrPath, HandleBasePath)
	s.mu.RLock()
	h, ok := s.blobs[id]
	s.mu.RUnlock()
	return h, ok
}

// IsHandle reports whether the given URL refers to a blob handle
func (s *HandleStore) IsHandle(url string) bool {
	return strings.HasPrefix(url, HandleBasePath) ||
		strings.Contains(url, HandleBasePath)
}

// Release frees the handle's memory. Releasing an unknown handle is a no-op.
func (s *HandleStore) Release(idOrPath string) {
	id := strings.TrimPrefix(idOrPath, HandleBasePath)
	if i := strings.Index(id, HandleBasePath); i >= 0 {
		// Absolute URL form: keep only the id segment
		id = id[i+len(HandleBasePath):]
	}
	s.mu.Lock()
	delete(s.blobs, id)
	s.mu.Unlock()
}

// ReleaseAll frees every handle in the list
func (s *HandleStore) ReleaseAll(handles []string) {
	for _, h := range handles {
		s.Release(h)
	}
	if len(handles) > 0 {
		log.Printf("🧹 Released %d temporary blob handles", len(handles))
	}
}

// Len returns the number of outstanding handles
func (s *HandleStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.blobs)
}
