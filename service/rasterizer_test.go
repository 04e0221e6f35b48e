package service

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func encodePNG(t *testing.T, width, height int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, width, height))
	for x := 0; x < width; x++ {
		for y := 0; y < height; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x % 256), G: uint8(y % 256), A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestRasterizeForPrintUpscalesToTargetWidth(t *testing.T) {
	store := NewHandleStore()
	r := NewPrintRasterizer(store)

	src := store.Put(encodePNG(t, 620, 877), "image/png")
	out := r.RasterizeForPrint(context.Background(), src)
	require.NotEqual(t, src, out)

	h, ok := store.Get(out)
	require.True(t, ok)
	assert.Equal(t, "image/jpeg", h.ContentType)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(h.Data))
	require.NoError(t, err)
	assert.Equal(t, 2480, cfg.Width)
	// 877/620 aspect preserved: 877 * 2480/620 = 3508
	assert.Equal(t, 3508, cfg.Height)
}

func TestRasterizeForPrintFromRemoteURL(t *testing.T) {
	data := encodePNG(t, 124, 124)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(data)
	}))
	defer srv.Close()

	store := NewHandleStore()
	r := NewPrintRasterizer(store)

	out := r.RasterizeForPrint(context.Background(), srv.URL+"/bg.png")
	h, ok := store.Get(out)
	require.True(t, ok)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(h.Data))
	require.NoError(t, err)
	assert.Equal(t, 2480, cfg.Width)
	assert.Equal(t, 2480, cfg.Height)
}

func TestRasterizeForPrintDegradesOnBadImage(t *testing.T) {
	store := NewHandleStore()
	r := NewPrintRasterizer(store)

	src := store.Put([]byte("not an image"), "image/png")
	// Decode failure resolves with the source untouched, never an error
	assert.Equal(t, src, r.RasterizeForPrint(context.Background(), src))
}

func TestRasterizeForPrintDegradesOnReleasedHandle(t *testing.T) {
	store := NewHandleStore()
	r := NewPrintRasterizer(store)

	src := store.Put(encodePNG(t, 10, 10), "image/png")
	store.Release(src)

	assert.Equal(t, src, r.RasterizeForPrint(context.Background(), src))
}

func TestRasterizeForPrintDegradesOnFetchFailure(t *testing.T) {
	store := NewHandleStore()
	r := NewPrintRasterizer(store)

	url := "http://127.0.0.1:1/bg.png"
	assert.Equal(t, url, r.RasterizeForPrint(context.Background(), url))
	assert.Equal(t, 0, store.Len())
}

func TestRasterizeForPrintEmptyURL(t *testing.T) {
	r := NewPrintRasterizer(NewHandleStore())
	assert.Equal(t, "", r.RasterizeForPrint(context.Background(), ""))
}
