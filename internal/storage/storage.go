package storage

import (
	"context"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"github.com/google/uuid"

	"github.com/veradocs/vera/constants"
	"github.com/veradocs/vera/internal/common"
	"github.com/veradocs/vera/internal/ocr"
)

// Upload describes a stored document image ready for OCR.
type Upload struct {
	DocumentID  string
	ImagePath   string
	ImageURL    string
	ImageWidth  int
	ImageHeight int
}

// Service persists uploaded files under a data directory and converts
// PDFs to a single PNG page so every document enters the pipeline as an
// image.
type Service struct {
	dataDir  string
	pdftoppm string
	dpi      int
	runner   ocr.Runner
	logger   *slog.Logger
}

func NewService(cfg common.StorageConfig, ocrCfg common.OCRConfig, runner ocr.Runner, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ocr.ExecRunner{}
	}
	pdftoppm := ocrCfg.Pdftoppm
	if pdftoppm == "" {
		pdftoppm = "pdftoppm"
	}
	dpi := ocrCfg.DPI
	if dpi <= 0 {
		dpi = 300
	}
	return &Service{
		dataDir:  cfg.DataDir,
		pdftoppm: pdftoppm,
		dpi:      dpi,
		runner:   runner,
		logger:   logger,
	}
}

// SaveUpload writes the uploaded bytes to disk, converts the first PDF
// page to PNG when needed, and measures the resulting image. The
// extension whitelist is checked before anything touches disk.
func (s *Service) SaveUpload(ctx context.Context, filename string, r io.Reader) (*Upload, error) {
	ext := constants.NormalizeExt(filepath.Ext(filename))
	if !constants.IsAllowedExt(ext) {
		return nil, common.Unsupported(common.ReasonUnsupportedFileType,
			fmt.Sprintf("extension %q is not supported", ext))
	}

	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return nil, common.Internal("create data dir", err)
	}

	id := uuid.New().String()
	origPath := filepath.Join(s.dataDir, id+"."+ext)
	if err := writeFile(origPath, r); err != nil {
		return nil, common.Internal("store upload", err)
	}

	imagePath := origPath
	if constants.IsPDFExt(ext) {
		converted, err := s.convertFirstPage(ctx, id, origPath)
		if err != nil {
			return nil, err
		}
		imagePath = converted
	}

	width, height, err := imageSize(imagePath)
	if err != nil {
		return nil, common.Unsupported(common.ReasonUnsupportedFileType,
			fmt.Sprintf("cannot decode image %s: %v", filepath.Base(imagePath), err))
	}

	s.logger.Info("storage.upload.saved",
		"document_id", id,
		"ext", ext,
		"image", filepath.Base(imagePath),
		"width", width,
		"height", height,
	)
	return &Upload{
		DocumentID:  id,
		ImagePath:   imagePath,
		ImageURL:    "/files/" + filepath.Base(imagePath),
		ImageWidth:  width,
		ImageHeight: height,
	}, nil
}

// convertFirstPage renders page 1 of a PDF to PNG via pdftoppm.
// pdftoppm numbers its output file, and the digit padding depends on
// the page count, so a few candidate names are checked.
func (s *Service) convertFirstPage(ctx context.Context, id, pdfPath string) (string, error) {
	prefix := filepath.Join(s.dataDir, id)
	args := []string{
		"-png",
		"-r", strconv.Itoa(s.dpi),
		"-f", "1",
		"-l", "1",
		pdfPath,
		prefix,
	}
	if _, stderr, err := s.runner.Run(ctx, s.pdftoppm, args...); err != nil {
		s.logger.Error("storage.pdf.convert_failed", "document_id", id, "error", err, "stderr", string(stderr))
		return "", common.Unsupported(common.ReasonPDFConvertFailed,
			fmt.Sprintf("pdftoppm failed: %v", err))
	}

	for _, suffix := range []string{"-1.png", "-01.png", "-001.png", "-0001.png"} {
		candidate := prefix + suffix
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", common.Unsupported(common.ReasonPDFNoPages, "pdf produced no pages")
}

func writeFile(path string, r io.Reader) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func imageSize(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()
	cfg, _, err := image.DecodeConfig(f)
	if err != nil {
		return 0, 0, err
	}
	return cfg.Width, cfg.Height, nil
}
