package docread

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"

	"github.com/ncrp-tools/complaints-tracker/constants"
	"github.com/ncrp-tools/complaints-tracker/internal/common"
	"github.com/ncrp-tools/complaints-tracker/internal/textnorm"
)

// readImage binarizes the scan, writes it to a temp PNG and runs tesseract on
// it in single-uniform-block mode.
func (r *Reader) readImage(ctx context.Context, path string) (Result, error) {
	img, err := imaging.Open(path)
	if err != nil {
		r.logger.Error("image decode failed", "path", path, "error", err)
		return Result{Source: constants.IMAGE},
			common.NewAppError("IMAGE_DECODE", "cannot decode image", common.ErrUnreadableInput)
	}

	bin := binarize(imaging.Grayscale(img), r.cfg.Threshold)

	tmpDir, err := os.MkdirTemp("", "ct-ocr-*")
	if err != nil {
		return Result{Source: constants.IMAGE}, err
	}
	defer func() { _ = os.RemoveAll(tmpDir) }()

	prepared := filepath.Join(tmpDir, "scan.png")
	if err := imaging.Save(bin, prepared); err != nil {
		return Result{Source: constants.IMAGE}, err
	}

	txt, err := r.tesseractOCR(ctx, prepared)
	if err != nil {
		return Result{Source: constants.IMAGE}, err
	}

	return Result{
		Text:   textnorm.Normalize(txt),
		Source: constants.IMAGE,
		Pages:  1,
	}, nil
}

// binarize applies a fixed threshold to a grayscale image: >= cutoff is
// white, everything else black.
func binarize(src *image.NRGBA, cutoff uint8) *image.Gray {
	bounds := src.Bounds()
	dst := image.NewGray(bounds)
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			g := color.GrayModel.Convert(src.At(x, y)).(color.Gray)
			if g.Y >= cutoff {
				dst.SetGray(x, y, color.Gray{Y: 255})
			} else {
				dst.SetGray(x, y, color.Gray{Y: 0})
			}
		}
	}
	return dst
}

func (r *Reader) tesseractOCR(ctx context.Context, path string) (string, error) {
	args := []string{path, "stdout", "-l", r.cfg.TesseractLang, "--psm", fmt.Sprintf("%d", r.cfg.PSM)}
	if r.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", r.cfg.TessdataDir)
	}

	// tesseract <file> stdout -l <lang> --psm <n>
	out, errb, err := r.runner.Run(ctx, r.cfg.Tesseract, args...)
	if err != nil {
		return "", common.NewAppError("OCR_FAILED",
			fmt.Sprintf("tesseract: %s", truncate(string(errb), 512)), err)
	}
	return string(out), nil
}
