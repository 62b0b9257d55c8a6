package ocr

import (
	"context"
	"errors"
	"log/slog"
	"os/exec"
	"strconv"
	"strings"

	"github.com/veradocs/vera/internal/common"
	"github.com/veradocs/vera/internal/entity"
)

// TesseractConfig configures the shipping OCR provider.
type TesseractConfig struct {
	Binary      string // if empty -> "tesseract"
	Lang        string // if empty -> "eng"
	TessdataDir string
	PSM         int // e.g. 6 for a uniform block of text; 0 = default
}

// TesseractProvider shells out to tesseract in TSV mode, which yields one
// row per word with bbox and confidence.
type TesseractProvider struct {
	cfg    TesseractConfig
	runner Runner
	logger *slog.Logger
}

func NewTesseractProvider(cfg TesseractConfig, runner Runner, logger *slog.Logger) *TesseractProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if runner == nil {
		runner = ExecRunner{}
	}
	if cfg.Binary == "" {
		cfg.Binary = "tesseract"
	}
	if cfg.Lang == "" {
		cfg.Lang = "eng"
	}
	return &TesseractProvider{cfg: cfg, runner: runner, logger: logger}
}

func (p *TesseractProvider) Recognize(ctx context.Context, imagePath string) ([]entity.RawToken, error) {
	args := []string{imagePath, "stdout", "-l", p.cfg.Lang}
	if p.cfg.PSM > 0 {
		args = append(args, "--psm", strconv.Itoa(p.cfg.PSM))
	}
	if p.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", p.cfg.TessdataDir)
	}
	args = append(args, "tsv")

	out, _, err := p.runner.Run(ctx, p.cfg.Binary, args...)
	if err != nil {
		if errors.Is(err, exec.ErrNotFound) {
			return nil, common.Upstream(common.ReasonOCRUnavailable, "tesseract binary not found", err)
		}
		return nil, common.Upstream(common.ReasonOCRUnavailable, "tesseract failed", err)
	}

	tokens := parseTSV(string(out))
	p.logger.Debug("ocr.tesseract.ok", "path", imagePath, "tokens", len(tokens))
	return tokens, nil
}

// parseTSV reads tesseract TSV output. Word rows have 12 columns:
// level page block par line word left top width height conf text.
// Rows with conf -1 are structural (page/block/line) and skipped.
func parseTSV(out string) []entity.RawToken {
	var tokens []entity.RawToken
	for i, ln := range strings.Split(out, "\n") {
		if i == 0 || ln == "" { // skip header
			continue
		}
		cols := strings.Split(ln, "\t")
		if len(cols) < 12 {
			continue
		}
		conf, err := strconv.ParseFloat(cols[10], 64)
		if err != nil || conf < 0 {
			continue
		}
		text := strings.TrimSpace(cols[11])
		if text == "" {
			continue
		}
		left, err1 := strconv.ParseFloat(cols[6], 64)
		top, err2 := strconv.ParseFloat(cols[7], 64)
		width, err3 := strconv.ParseFloat(cols[8], 64)
		height, err4 := strconv.ParseFloat(cols[9], 64)
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		tokens = append(tokens, entity.RawToken{
			Text:       text,
			Confidence: conf / 100.0,
			BBox:       entity.BBox{left, top, width, height},
		})
	}
	return tokens
}
