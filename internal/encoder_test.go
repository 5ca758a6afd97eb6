package internal

import (
	"image"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pdfcombine/types"
)

type recordImportEngine struct {
	fakeEngine
	imgPath          string
	widthPt, heightPt float64
}

func (r *recordImportEngine) ImportImage(imgPath, outPath string, widthPt, heightPt float64) error {
	r.imgPath, r.widthPt, r.heightPt = imgPath, widthPt, heightPt
	return os.WriteFile(outPath, []byte("1"), 0644)
}

func TestImageReencoder(t *testing.T) {
	t.Run("page box matches pixel dimensions", func(t *testing.T) {
		eng := &recordImportEngine{}
		enc := NewReencoder(eng)
		outPath := filepath.Join(t.TempDir(), "page_0001.pdf")

		err := enc.Encode(testPage(850, 1100), 1, outPath)

		require.NoError(t, err)
		assert.Equal(t, 850.0, eng.widthPt)
		assert.Equal(t, 1100.0, eng.heightPt)
		assert.FileExists(t, outPath)
	})

	t.Run("intermediate png is cleaned up", func(t *testing.T) {
		enc := NewReencoder(&recordImportEngine{})
		outPath := filepath.Join(t.TempDir(), "page_0001.pdf")

		require.NoError(t, enc.Encode(testPage(10, 10), 1, outPath))

		assert.NoFileExists(t, outPath+".png")
	})

	t.Run("nil image is an encode error", func(t *testing.T) {
		enc := NewReencoder(&recordImportEngine{})

		err := enc.Encode(nil, 4, filepath.Join(t.TempDir(), "out.pdf"))

		var encErr *types.EncodeError
		require.ErrorAs(t, err, &encErr)
		assert.Equal(t, 4, encErr.Page)
	})

	t.Run("empty image is an encode error", func(t *testing.T) {
		enc := NewReencoder(&recordImportEngine{})

		err := enc.Encode(image.NewRGBA(image.Rect(0, 0, 0, 0)), 1, filepath.Join(t.TempDir(), "out.pdf"))

		var encErr *types.EncodeError
		assert.ErrorAs(t, err, &encErr)
	})
}
