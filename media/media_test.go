package media

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		img.Set(x, 0, color.RGBA{R: 200, A: 255})
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestProcessResizesWideImages(t *testing.T) {
	img, err := Process(bytes.NewReader(pngBytes(t, 1600, 400)), "My Screenshot.PNG")
	require.NoError(t, err)

	assert.Equal(t, "my-screenshot.jpg", img.Name)
	assert.Equal(t, MaxWidth, img.Width)
	assert.Equal(t, 200, img.Height)

	cfg, err := jpeg.DecodeConfig(bytes.NewReader(img.Data))
	require.NoError(t, err)
	assert.Equal(t, MaxWidth, cfg.Width)
}

func TestProcessKeepsSmallImages(t *testing.T) {
	img, err := Process(bytes.NewReader(pngBytes(t, 120, 80)), "logo.png")
	require.NoError(t, err)
	assert.Equal(t, 120, img.Width)
	assert.Equal(t, 80, img.Height)
}

func TestProcessRejectsGarbage(t *testing.T) {
	_, err := Process(strings.NewReader("not an image"), "x.png")
	assert.Error(t, err)
}

func TestBaseName(t *testing.T) {
	tests := map[string]string{
		"Hello World.png":  "hello-world",
		"../../etc/passwd": "passwd",
		"___.jpg":          "image",
		"2048 Game!.gif":   "2048-game",
	}
	for in, want := range tests {
		assert.Equal(t, want, baseName(in), in)
	}
}

func TestLocalStorePutAndDelete(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "uploads")
	s := NewLocalStore(dir, "/public/uploads/")
	ctx := context.Background()

	first, err := s.Put(ctx, "shot.jpg", []byte("a"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/public/uploads/shot.jpg", first)

	second, err := s.Put(ctx, "shot.jpg", []byte("b"), "image/jpeg")
	require.NoError(t, err)
	assert.Equal(t, "/public/uploads/shot-2.jpg", second)

	require.NoError(t, s.Delete(ctx, first))
	_, err = os.Stat(filepath.Join(dir, "shot.jpg"))
	assert.True(t, os.IsNotExist(err))

	assert.NoError(t, s.Delete(ctx, first), "second delete is a no-op")
	assert.NoError(t, s.Delete(ctx, "https://elsewhere.test/x.jpg"))
}
