package storage

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/veradocs/vera/internal/common"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, w, h))))
	return buf.Bytes()
}

func newService(t *testing.T, runner func(name string, args []string) error) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	svc := NewService(
		common.StorageConfig{DataDir: dir},
		common.OCRConfig{},
		runnerFunc(runner),
		nil,
	)
	return svc, dir
}

type runnerFunc func(name string, args []string) error

func (f runnerFunc) Run(_ context.Context, name string, args ...string) ([]byte, []byte, error) {
	if f == nil {
		return nil, nil, errors.New("no runner configured")
	}
	return nil, nil, f(name, args)
}

func TestSaveUploadPNG(t *testing.T) {
	svc, dir := newService(t, nil)

	upload, err := svc.SaveUpload(context.Background(), "scan.PNG", bytes.NewReader(pngBytes(t, 8, 6)))
	require.NoError(t, err)

	assert.NotEmpty(t, upload.DocumentID)
	assert.Equal(t, 8, upload.ImageWidth)
	assert.Equal(t, 6, upload.ImageHeight)
	assert.True(t, strings.HasPrefix(upload.ImageURL, "/files/"))
	assert.Equal(t, dir, filepath.Dir(upload.ImagePath))

	_, err = os.Stat(upload.ImagePath)
	assert.NoError(t, err)
}

func TestSaveUploadRejectsExtension(t *testing.T) {
	svc, _ := newService(t, nil)

	_, err := svc.SaveUpload(context.Background(), "notes.txt", strings.NewReader("hello"))
	assert.True(t, common.IsUnsupported(err))
	assert.Equal(t, common.ReasonUnsupportedFileType, common.ReasonOf(err))
}

func TestSaveUploadPDFConverted(t *testing.T) {
	img := pngBytes(t, 3, 3)
	var svc *Service
	svc, _ = newService(t, func(name string, args []string) error {
		// pdftoppm writes <prefix>-1.png; the prefix is the last arg
		prefix := args[len(args)-1]
		return os.WriteFile(prefix+"-1.png", img, 0o644)
	})

	upload, err := svc.SaveUpload(context.Background(), "doc.pdf", bytes.NewReader([]byte("%PDF-1.4")))
	require.NoError(t, err)
	assert.Equal(t, 3, upload.ImageWidth)
	assert.True(t, strings.HasSuffix(upload.ImagePath, "-1.png"))
}

func TestSaveUploadPDFNoPages(t *testing.T) {
	svc, _ := newService(t, func(string, []string) error {
		return nil // converter "succeeds" but writes nothing
	})

	_, err := svc.SaveUpload(context.Background(), "doc.pdf", bytes.NewReader([]byte("%PDF-1.4")))
	assert.True(t, common.IsUnsupported(err))
	assert.Equal(t, common.ReasonPDFNoPages, common.ReasonOf(err))
}

func TestSaveUploadPDFConvertFailed(t *testing.T) {
	svc, _ := newService(t, func(string, []string) error {
		return errors.New("corrupt pdf")
	})

	_, err := svc.SaveUpload(context.Background(), "doc.pdf", bytes.NewReader([]byte("junk")))
	assert.Equal(t, common.ReasonPDFConvertFailed, common.ReasonOf(err))
}
